package tetris

// Checkpoint identifies where in the engine's update loop a Modifier is
// invoked (spec §4.6).
type Checkpoint int

const (
	BeforeEvent Checkpoint = iota
	AfterEvent
	BeforeButtonChange
	AfterButtonChange
)

// ModifierContext is the mutable view a Modifier is given at each
// checkpoint. EventKind/Button/Pressed are only meaningful for the
// checkpoints that name them (BeforeEvent/AfterEvent carry EventKind;
// BeforeButtonChange carries Button and Pressed).
type ModifierContext struct {
	Point     Checkpoint
	EventKind EventKind
	Button    Button
	Pressed   bool

	Config   *GameConfig
	Mode     *GameMode
	State    *GameState
	Feedback *[]FeedbackEvent
}

// Modifier is the composable extensibility hook from spec §4.6: a plain
// function value, stored in a list and invoked in registration order, with
// no inheritance and no back-reference to the engine. This is the sum-of-
// function-values design spec §9 calls for.
type Modifier func(ctx *ModifierContext)
