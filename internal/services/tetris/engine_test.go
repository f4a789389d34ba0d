package tetris

import (
	"testing"

	"github.com/stretchr/testify/assert"

	model "github.com/kestrel-tetris/kestrel-backend/internal/models/tetris"
)

// TestSpawnAndFall covers spec scenario S1: spawning the first piece and
// advancing gravity by exactly one row at level 1 (1000ms/row).
func TestSpawnAndFall(t *testing.T) {
	g := NewSeeded(Marathon(), 1)

	fb, ok := g.Update(nil, 0)
	assert.True(t, ok)
	assert.NotNil(t, g.State().ActivePiece)
	assert.Equal(t, model.Skyline, g.State().ActivePiece.Piece.Anchor.Y)
	assert.Contains(t, kinds(fb), FeedbackPieceSpawned)

	fb, ok = g.Update(nil, 1000)
	assert.True(t, ok)
	assert.Equal(t, model.Skyline-1, g.State().ActivePiece.Piece.Anchor.Y)
	assert.Len(t, fb, 0)
}

// TestHardDropLock covers spec scenario S2: an O-piece hard-dropped from
// the spawn row lands on the floor and locks.
func TestHardDropLock(t *testing.T) {
	g := NewSeeded(Marathon(), 1)
	g.Update(nil, 0)

	g.state.ActivePiece = &ActivePieceData{
		Piece: model.ActivePiece{Shape: model.O, Facing: model.N, Anchor: model.Coord{X: 3, Y: model.Skyline}},
	}

	fb, ok := g.Update(ButtonChange{DropHard: true}, 50)
	assert.True(t, ok)

	var hardDrop, locked *FeedbackEvent
	for i := range fb {
		switch fb[i].Kind {
		case FeedbackHardDrop:
			hardDrop = &fb[i]
		case FeedbackPieceLocked:
			locked = &fb[i]
		}
	}
	if assert.NotNil(t, hardDrop) {
		assert.Equal(t, model.Coord{X: 3, Y: 0}, hardDrop.BottomPiece.Anchor)
	}
	if assert.NotNil(t, locked) {
		for _, c := range locked.Piece.Minos() {
			assert.True(t, c.Y == 0 || c.Y == 1)
		}
	}
	assert.Nil(t, g.State().ActivePiece)
}

// TestSingleLineClearPerfectClear covers a single-row clear that empties
// the board: row 0 is filled except columns 5..8, and a flat I-piece is
// hard-dropped into that gap.
func TestSingleLineClearPerfectClear(t *testing.T) {
	g := NewSeeded(Marathon(), 1)
	g.Update(nil, 0)

	for x := 0; x < model.Width; x++ {
		if x >= 5 && x <= 8 {
			continue
		}
		g.state.Board[0][x] = int(model.T)
	}
	g.state.ActivePiece = &ActivePieceData{
		Piece: model.ActivePiece{Shape: model.I, Facing: model.N, Anchor: model.Coord{X: 5, Y: model.Skyline}},
	}

	fb, ok := g.Update(ButtonChange{DropHard: true}, 50)
	assert.True(t, ok)

	fb2, ok := g.Update(nil, 50+g.config.LineClearDelayMillis)
	assert.True(t, ok)
	fb = append(fb, fb2...)

	var clears, accolade *FeedbackEvent
	for i := range fb {
		switch fb[i].Kind {
		case FeedbackLineClears:
			clears = &fb[i]
		case FeedbackAccolade:
			accolade = &fb[i]
		}
	}
	if assert.NotNil(t, clears) {
		assert.Equal(t, []int{0}, clears.Rows)
		assert.Equal(t, int64(200), clears.DelayMillis)
	}
	if assert.NotNil(t, accolade) {
		assert.Equal(t, 1, accolade.LineClears)
		assert.False(t, accolade.Spin)
		assert.True(t, accolade.PerfectClear)
		assert.Equal(t, (100+800)*g.state.Level, accolade.ScoreBonus)
	}
	assert.True(t, g.state.Board.IsEmpty())
}

// TestTopOut covers spec scenario S5: a filled spawn row forces Spawn to
// fail the game, and further updates then return (nil, false).
func TestTopOut(t *testing.T) {
	g := NewSeeded(Marathon(), 1)
	g.Update(nil, 0)
	g.state.ActivePiece = nil
	g.state.Events.Cancel(EventFall)

	for x := 0; x < model.Width; x++ {
		g.state.Board.Lock(model.ActivePiece{Shape: model.T, Facing: model.N, Anchor: model.Coord{X: x, Y: model.Skyline}})
	}
	g.state.Events.Schedule(EventSpawn, 100)

	_, ok := g.Update(nil, 100)
	assert.True(t, ok)
	if assert.NotNil(t, g.State().End) {
		assert.False(t, g.State().End.Won)
		assert.Equal(t, Fail, g.State().End.Reason)
	}

	fb, ok := g.Update(nil, 200)
	assert.False(t, ok)
	assert.Nil(t, fb)
}

// TestComboCounter covers spec scenario S6: four consecutive line-clearing
// placements raise consecutive_line_clears to 4, and the fourth clear's
// Accolade reports a combo of 4.
func TestComboCounter(t *testing.T) {
	g := NewSeeded(Marathon(), 1)
	g.Update(nil, 0)

	var lastAccolade *FeedbackEvent
	tNow := int64(0)
	for i := 0; i < 4; i++ {
		for x := 0; x < model.Width; x++ {
			if x == 5 {
				continue
			}
			g.state.Board.Lock(model.ActivePiece{Shape: model.T, Facing: model.N, Anchor: model.Coord{X: x, Y: 0}})
		}
		g.state.ActivePiece = &ActivePieceData{
			Piece: model.ActivePiece{Shape: model.I, Facing: model.E, Anchor: model.Coord{X: 5, Y: model.Skyline}},
		}
		tNow += 100
		g.Update(ButtonChange{DropHard: true}, tNow)
		tNow += g.config.LineClearDelayMillis
		fb, _ := g.Update(nil, tNow)
		tNow += g.config.AppearanceDelayMillis

		for j := range fb {
			if fb[j].Kind == FeedbackAccolade {
				lastAccolade = &fb[j]
			}
		}
	}

	assert.Equal(t, 4, g.state.ConsecutiveLineClears)
	if assert.NotNil(t, lastAccolade) {
		assert.Equal(t, 4, lastAccolade.Combo)
	}
}

// TestRotationNoOpOnBlockedKick covers spec scenario S7: an S-piece flush
// against the left wall cannot rotate left, and its pose is unchanged.
func TestRotationNoOpOnBlockedKick(t *testing.T) {
	g := NewSeeded(Marathon(), 1)
	g.Update(nil, 0)

	piece := model.ActivePiece{Shape: model.S, Facing: model.E, Anchor: model.Coord{X: 0, Y: model.Skyline}}
	g.state.ActivePiece = &ActivePieceData{Piece: piece}

	g.Update(ButtonChange{RotateLeft: true}, 10)

	assert.Equal(t, piece.Facing, g.state.ActivePiece.Piece.Facing)
	assert.Equal(t, piece.Anchor, g.state.ActivePiece.Piece.Anchor)
}

// TestFourRotationsReturnToOriginalOrientation is a general invariant: four
// quarter-turns in the same direction, starting and landing in open space,
// return the piece to its original facing.
func TestFourRotationsReturnToOriginalOrientation(t *testing.T) {
	g := NewSeeded(Marathon(), 1)
	g.Update(nil, 0)
	g.state.ActivePiece = &ActivePieceData{
		Piece: model.ActivePiece{Shape: model.T, Facing: model.N, Anchor: model.Coord{X: 4, Y: model.Skyline + 4}},
	}

	tNow := int64(0)
	for i := 0; i < 4; i++ {
		tNow += 10
		g.Update(ButtonChange{RotateRight: true}, tNow)
	}
	assert.Equal(t, model.N, g.state.ActivePiece.Piece.Facing)
}

// TestActivePieceNilAfterLockUntilSpawn checks that the active piece slot
// is empty in the gap between Lock and the next Spawn.
func TestActivePieceNilAfterLockUntilSpawn(t *testing.T) {
	g := NewSeeded(Marathon(), 1)
	g.Update(nil, 0)
	g.state.ActivePiece = &ActivePieceData{
		Piece: model.ActivePiece{Shape: model.O, Facing: model.N, Anchor: model.Coord{X: 3, Y: model.Skyline}},
	}

	g.Update(ButtonChange{DropHard: true}, 50)
	assert.Nil(t, g.state.ActivePiece)

	g.Update(nil, 50+g.config.AppearanceDelayMillis)
	assert.NotNil(t, g.state.ActivePiece)
}

// TestReplayDeterminism checks that two games constructed with the same
// seed and driven by the same sequence of updates produce bit-identical
// scores and board states (spec §8 property: bit-identical replay).
func TestReplayDeterminism(t *testing.T) {
	run := func() *GameState {
		g := NewSeeded(Marathon(), 42)
		g.Update(nil, 0)
		for tNow := int64(16); tNow <= 5000; tNow += 16 {
			g.Update(nil, tNow)
		}
		return g.State()
	}

	a := run()
	b := run()
	assert.Equal(t, a.Score, b.Score)
	assert.Equal(t, a.Board, b.Board)
	assert.Equal(t, a.LinesCleared, b.LinesCleared)
	assert.Equal(t, a.NextQueue, b.NextQueue)
}

// TestPiecesPlayedAccounting checks PiecesPlayed increments exactly once
// per Spawn.
func TestPiecesPlayedAccounting(t *testing.T) {
	g := NewSeeded(Marathon(), 7)
	g.Update(nil, 0)

	total := 0
	for _, c := range g.state.PiecesPlayed {
		total += c
	}
	assert.Equal(t, 1, total)
}

func kinds(events []FeedbackEvent) []FeedbackKind {
	out := make([]FeedbackKind, len(events))
	for i, e := range events {
		out[i] = e.Kind
	}
	return out
}
