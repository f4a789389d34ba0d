package tetris

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTetrominoCanonicalOrder(t *testing.T) {
	assert.Equal(t, Tetromino(1), O)
	assert.Equal(t, Tetromino(2), I)
	assert.Equal(t, Tetromino(3), S)
	assert.Equal(t, Tetromino(4), Z)
	assert.Equal(t, Tetromino(5), T)
	assert.Equal(t, Tetromino(6), L)
	assert.Equal(t, Tetromino(7), J)
}

func TestOrientationRotateRWrapsNegative(t *testing.T) {
	assert.Equal(t, W, N.RotateR(-1))
	assert.Equal(t, E, N.RotateR(1))
	assert.Equal(t, S, N.RotateR(2))
	assert.Equal(t, N, N.RotateR(4))
}

func TestTranslatedPreservesFacing(t *testing.T) {
	p := ActivePiece{Shape: T, Facing: E, Anchor: Coord{X: 3, Y: 4}}
	moved := p.Translated(1, -1)
	assert.Equal(t, E, moved.Facing)
	assert.Equal(t, Coord{X: 4, Y: 3}, moved.Anchor)
}

func TestRotatedPreservesAnchor(t *testing.T) {
	p := ActivePiece{Shape: L, Facing: N, Anchor: Coord{X: 5, Y: 5}}
	rotated := p.Rotated(1)
	assert.Equal(t, Coord{X: 5, Y: 5}, rotated.Anchor)
	assert.Equal(t, E, rotated.Facing)
}

func TestMinosOffsetByAnchor(t *testing.T) {
	p := ActivePiece{Shape: O, Facing: N, Anchor: Coord{X: 3, Y: 20}}
	minos := p.Minos()
	assert.Contains(t, minos, Coord{X: 3, Y: 20})
	assert.Contains(t, minos, Coord{X: 4, Y: 21})
}
