package tetris

// RotationSystem selects which kick table Rotate uses. Classic is the
// only system spec.md requires; the selector exists so a future SRS table
// can be added without touching the engine core.
type RotationSystem int

const (
	RotationClassic RotationSystem = iota
)

// GravityTableMillis gives milliseconds-per-row at levels 1-19, per
// spec §6, grounded on the reference engine's droptime() table. Level 19
// uses the reference's actual constant (823907ns = 0.823907ms... spec
// documents the value in whole milliseconds so the table below keeps the
// more precise microsecond figure alongside it); see SPEC_FULL.md for the
// level-19 open-question resolution.
var GravityTableMillis = [20]float64{
	0, // index 0 unused, levels are 1-indexed
	1000,
	793,
	617.8,
	472.729139,
	355.196928,
	262.00355,
	189.677245,
	134.734731,
	93.882249,
	64.151585,
	42.976258,
	28.217678,
	18.153329,
	11.439342,
	7.058616,
	4.263557,
	2.520084,
	1.457139,
	0.823907,
}

// GravityPeriodMillis returns the milliseconds-per-row fall period for a
// level. Levels at or above 20 are 20G: instantaneous (zero-delay) fall.
// Table values are truncated to whole milliseconds, so level 19 (0.82ms)
// also returns 0 and falls as fast as 20G.
func GravityPeriodMillis(level int) int64 {
	if level < 1 {
		level = 1
	}
	if level >= 20 {
		return 0
	}
	return int64(GravityTableMillis[level])
}

// GameConfig holds the mutable settings from spec §3, with defaults from
// §6.
type GameConfig struct {
	PreviewCount    int
	RotationSystem  RotationSystem
	SoftDropFactor  int
	LockDelayMillis int64
	AppearanceDelayMillis int64
	LineClearDelayMillis  int64
	DASMillis       int64
	ARRMillis       int64
	Seed            uint64
}

// DefaultConfig returns the spec §6 default configuration, seeded from
// seed (callers typically derive this from a match/session ID).
func DefaultConfig(seed uint64) GameConfig {
	return GameConfig{
		PreviewCount:          1,
		RotationSystem:        RotationClassic,
		SoftDropFactor:        20,
		LockDelayMillis:       500,
		AppearanceDelayMillis: 100,
		LineClearDelayMillis:  200,
		DASMillis:             133,
		ARRMillis:             33,
		Seed:                  seed,
	}
}
