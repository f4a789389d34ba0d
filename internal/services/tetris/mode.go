package tetris

// Stat is one of the statistics a Gamemode's Limits can bound, mirroring
// the reference engine's early Stat enum {Lines, Level, Score, Pieces,
// Time}.
type Stat int

const (
	StatLines Stat = iota
	StatLevel
	StatScore
	StatPieces
	StatTimeMillis
)

// Limit pairs a Stat with a threshold and whether reaching it ends the
// game as a failure (strict) or a success (non-strict), per spec §4.4
// step 6: "if any strict limit is exceeded, end = Err(ModeLimit); if a
// non-strict limit is reached, end = Ok(())".
type Limit struct {
	Stat   Stat
	Max    int64
	Strict bool
}

// GameMode is the immutable per-game descriptor from spec §3.
type GameMode struct {
	Name            string
	StartLevel      int
	IncreaseLevel   bool
	Limits          []Limit
	OptimizeGoal    Stat
}

// Sprint is a 40-line race against the clock: reaching 40 lines ends the
// game successfully. Grounded on the reference engine's Gamemode::sprint.
func Sprint(startLevel int) GameMode {
	return GameMode{
		Name:          "Sprint",
		StartLevel:    startLevel,
		IncreaseLevel: false,
		Limits:        []Limit{{Stat: StatLines, Max: 40, Strict: false}},
		OptimizeGoal:  StatTimeMillis,
	}
}

// Ultra is a fixed 3-minute session optimizing for lines cleared.
// Grounded on the reference engine's Gamemode::ultra.
func Ultra(startLevel int) GameMode {
	return GameMode{
		Name:          "Ultra",
		StartLevel:    startLevel,
		IncreaseLevel: false,
		Limits:        []Limit{{Stat: StatTimeMillis, Max: 3 * 60 * 1000, Strict: false}},
		OptimizeGoal:  StatLines,
	}
}

// Marathon increases level with lines cleared up to a level cap, scoring
// for points. Grounded on the reference engine's Gamemode::marathon.
func Marathon() GameMode {
	return GameMode{
		Name:          "Marathon",
		StartLevel:    1,
		IncreaseLevel: true,
		Limits:        []Limit{{Stat: StatLevel, Max: 15, Strict: false}},
		OptimizeGoal:  StatScore,
	}
}

// Endless has no mode limit at all; only top-out or forfeit end the game.
// Grounded on the reference engine's Gamemode::endless.
func Endless() GameMode {
	return GameMode{
		Name:          "Endless",
		StartLevel:    1,
		IncreaseLevel: true,
		OptimizeGoal:  StatScore,
	}
}

// limitValue reads the live value of a Stat from a GameState snapshot.
func limitValue(s *GameState, stat Stat) int64 {
	switch stat {
	case StatLines:
		return int64(s.LinesCleared)
	case StatLevel:
		return int64(s.Level)
	case StatScore:
		return int64(s.Score)
	case StatPieces:
		total := 0
		for _, c := range s.PiecesPlayed {
			total += c
		}
		return int64(total)
	case StatTimeMillis:
		return s.Time
	default:
		return 0
	}
}
