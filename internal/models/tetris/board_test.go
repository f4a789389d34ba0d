package tetris

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFitsRejectsOutOfBounds(t *testing.T) {
	b := NewBoard()
	piece := ActivePiece{Shape: I, Facing: N, Anchor: Coord{X: -1, Y: 0}}
	assert.False(t, b.Fits(piece))
}

func TestFitsRejectsOccupiedCell(t *testing.T) {
	b := NewBoard()
	b.Lock(ActivePiece{Shape: O, Facing: N, Anchor: Coord{X: 0, Y: 0}})
	assert.False(t, b.Fits(ActivePiece{Shape: O, Facing: N, Anchor: Coord{X: 0, Y: 0}}))
}

func TestFullRowsAndClearRows(t *testing.T) {
	b := NewBoard()
	for x := 0; x < Width; x += 2 {
		b.Lock(ActivePiece{Shape: O, Facing: N, Anchor: Coord{X: x, Y: 0}})
	}
	assert.Equal(t, []int{0, 1}, b.FullRows())

	b.Lock(ActivePiece{Shape: T, Facing: N, Anchor: Coord{X: 3, Y: 5}})
	b.ClearRows([]int{0})
	assert.Equal(t, int(T), b[4][4])
	assert.True(t, b.IsEmpty() == false)
}

func TestIsEmpty(t *testing.T) {
	b := NewBoard()
	assert.True(t, b.IsEmpty())
	b.Lock(ActivePiece{Shape: O, Facing: N, Anchor: Coord{X: 0, Y: 0}})
	assert.False(t, b.IsEmpty())
}
