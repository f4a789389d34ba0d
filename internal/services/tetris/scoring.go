package tetris

// baseClearScore is the spec §4.5 base table indexed by clear count 0..4.
var baseClearScore = [5]int{0, 100, 300, 500, 800}

// perfectClearBonus is the spec §4.5 perfect-clear bonus table indexed by
// clear count 0..4.
var perfectClearBonus = [5]int{0, 800, 1200, 1800, 2000}

// clampLineClears caps the clear count at 4 for scoring purposes, per the
// §9 open-question resolution (clears beyond Quadruple are only reachable
// via modifiers that pre-fill the board, and are unspecified by the
// source).
func clampLineClears(k int) int {
	if k > 4 {
		return 4
	}
	if k < 0 {
		return 0
	}
	return k
}

// scoreInputs bundles the flags needed to compute an Accolade's score
// bonus for one LineClears resolution.
type scoreInputs struct {
	LineClears           int
	Spin                 bool
	PerfectClear         bool
	Level                int
	ConsecutiveClears    int // value *after* this clear's increment
	BackToBackSpecial    int // value *after* this clear's increment
}

// calculateScore implements spec §4.5. The combo bonus formula already
// bears its own level factor (50 x (n-1) x level), so level scaling is
// applied to the base+spin+perfect-clear subtotal before combo is added,
// matching the reference engine's CalculateScore (base*level + combo, then
// x1.5 for back-to-back) rather than double-applying level to the combo
// term.
func calculateScore(in scoreInputs) int {
	k := clampLineClears(in.LineClears)
	base := baseClearScore[k]
	if in.Spin {
		base *= 4
	}
	if in.PerfectClear {
		base += perfectClearBonus[k]
	}

	level := in.Level
	if level < 1 {
		level = 1
	}
	subtotal := base * level

	if in.ConsecutiveClears > 1 {
		subtotal += 50 * (in.ConsecutiveClears - 1) * level
	}

	if in.BackToBackSpecial > 1 {
		subtotal = (subtotal * 3) / 2
	}

	return subtotal
}

// isSpecialClear reports whether a resolved clear counts as "special" for
// back-to-back purposes: a Quadruple, or any spin that cleared lines.
func isSpecialClear(lineClears int, spin bool) bool {
	if lineClears <= 0 {
		return false
	}
	return lineClears >= 4 || spin
}
