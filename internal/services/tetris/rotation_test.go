package tetris

import (
	"testing"

	"github.com/stretchr/testify/assert"

	model "github.com/kestrel-tetris/kestrel-backend/internal/models/tetris"
)

// TestTSpinDoubleSpinDetection covers spec scenario S4: a classic T-spin
// double setup where a T-piece rotated into the slot ends up immobile.
func TestTSpinDoubleSpinDetection(t *testing.T) {
	var board model.Board
	// T-slot: row 0 is full except column 3 and row 1 is full except
	// columns 2..4; the cell at (2, 2) overhangs the slot so the T can
	// only settle there via a rotation.
	for x := 0; x < model.Width; x++ {
		if x != 3 {
			board[0][x] = int(model.L)
		}
		if x < 2 || x > 4 {
			board[1][x] = int(model.L)
		}
	}
	board[2][2] = int(model.L)

	piece := model.ActivePiece{Shape: model.T, Facing: model.E, Anchor: model.Coord{X: 3, Y: 0}}
	assert.True(t, board.Fits(piece))

	result := rotateClassic(&board, piece, 1)
	assert.True(t, result.Moved)
	assert.True(t, result.Spin)
}

// TestRotationNoOpWhenNoKickFits verifies rotateClassic returns Moved=false and
// the original pose when every candidate cell is occupied or out of
// bounds, leaving the piece bit-for-bit unchanged.
func TestRotationNoOpWhenNoKickFits(t *testing.T) {
	var board model.Board
	for x := 0; x < model.Width; x++ {
		board.Lock(model.ActivePiece{Shape: model.L, Facing: model.N, Anchor: model.Coord{X: x, Y: 5}})
	}

	piece := model.ActivePiece{Shape: model.I, Facing: model.N, Anchor: model.Coord{X: 3, Y: 4}}
	result := rotateClassic(&board, piece, 1)

	assert.False(t, result.Moved)
	assert.Equal(t, piece, result.Piece)
}

// TestZeroTurnRotationIsIdentity checks the 0-turn branch is a true no-op.
func TestZeroTurnRotationIsIdentity(t *testing.T) {
	var board model.Board
	piece := model.ActivePiece{Shape: model.J, Facing: model.W, Anchor: model.Coord{X: 4, Y: 10}}
	result := rotateClassic(&board, piece, 0)
	assert.True(t, result.Moved)
	assert.False(t, result.Spin)
	assert.Equal(t, piece, result.Piece)
}
