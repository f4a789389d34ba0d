package tetris

import (
	"errors"

	model "github.com/kestrel-tetris/kestrel-backend/internal/models/tetris"
)

// GameOverReason is the cause recorded in GameState.End when a game ends.
type GameOverReason int

const (
	Fail GameOverReason = iota
	ModeLimit
	Forfeit
)

func (r GameOverReason) String() string {
	switch r {
	case Fail:
		return "Fail"
	case ModeLimit:
		return "ModeLimit"
	case Forfeit:
		return "Forfeit"
	default:
		return "Unknown"
	}
}

// EndState is nil while the game is running. Once non-nil (Won is true,
// or Reason is set), spec invariant (5) applies: no further mutation
// except via an explicit reset.
type EndState struct {
	Won    bool
	Reason GameOverReason
}

var errUpToBeforeCurrentTime = errors.New("tetris: up_to precedes current time")

// HoldSlot is spec §3's HoldSlot: either empty, or a held shape with a
// flag saying whether it may be swapped again this piece lifecycle.
type HoldSlot struct {
	Occupied     bool
	Shape        model.Tetromino
	SwapAllowed  bool
}

// ActivePieceData pairs the active piece with its lock-delay progress, as
// spec §3 groups them ("active_piece_data (the ActivePiece and its
// current lock-delay progress)"). Spin records whether the piece's most
// recent successful rotation landed it in an immobile pose; a later
// horizontal move clears it, while gravity, soft-drop and hard-drop
// descents leave it unchanged.
type ActivePieceData struct {
	Piece    model.ActivePiece
	OnGround bool
	Spin     bool
}

// pendingClearInfo is the engine's transient bridge between Lock (which
// identifies full rows and the piece that caused them) and the later
// LineClears event that actually resolves them, per spec §4.4.
type pendingClearInfo struct {
	Rows  []int
	Spin  bool
	Shape model.Tetromino
}

// GameState is spec §3's full mutable state snapshot.
type GameState struct {
	Seed uint64
	End  *EndState
	Time int64 // milliseconds since the game started

	Events eventQueue

	ButtonsPressed map[Button]bool

	Board       model.Board
	ActivePiece *ActivePieceData

	Hold      HoldSlot
	NextQueue []model.Tetromino

	PiecesPlayed map[model.Tetromino]int
	LinesCleared int
	Level        int
	Score        int

	ConsecutiveLineClears    int
	BackToBackSpecialClears  int

	pendingClear *pendingClearInfo
}

func newGameState(mode GameMode, config GameConfig) *GameState {
	s := &GameState{
		Seed:           config.Seed,
		ButtonsPressed: make(map[Button]bool),
		Board:          model.NewBoard(),
		PiecesPlayed:   make(map[model.Tetromino]int),
		Level:          mode.StartLevel,
		Events:         newEventQueue(),
	}
	if s.Level < 1 {
		s.Level = 1
	}
	return s
}
