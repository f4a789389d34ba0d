package tetris

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculateScoreBaseTable(t *testing.T) {
	assert.Equal(t, 100, calculateScore(scoreInputs{LineClears: 1, Level: 1}))
	assert.Equal(t, 300, calculateScore(scoreInputs{LineClears: 2, Level: 1}))
	assert.Equal(t, 500, calculateScore(scoreInputs{LineClears: 3, Level: 1}))
	assert.Equal(t, 800, calculateScore(scoreInputs{LineClears: 4, Level: 1}))
}

func TestCalculateScoreLevelScaling(t *testing.T) {
	assert.Equal(t, 500, calculateScore(scoreInputs{LineClears: 1, Level: 5}))
}

func TestCalculateScoreSpinQuadruples(t *testing.T) {
	assert.Equal(t, 400, calculateScore(scoreInputs{LineClears: 1, Spin: true, Level: 1}))
}

func TestCalculateScorePerfectClearBonus(t *testing.T) {
	assert.Equal(t, 100+800, calculateScore(scoreInputs{LineClears: 1, PerfectClear: true, Level: 1}))
}

func TestCalculateScoreComboDoesNotDoubleApplyLevel(t *testing.T) {
	// One clear at level 3 with a combo streak of 4 (3 extra combo steps):
	// base*level + 50*(n-1)*level, not (base + 50*(n-1))*level twice over.
	got := calculateScore(scoreInputs{LineClears: 1, Level: 3, ConsecutiveClears: 4})
	want := 100*3 + 50*3*3
	assert.Equal(t, want, got)
}

func TestCalculateScoreBackToBackMultiplier(t *testing.T) {
	got := calculateScore(scoreInputs{LineClears: 4, Level: 1, BackToBackSpecial: 2})
	want := (800 * 3) / 2
	assert.Equal(t, want, got)
}

func TestIsSpecialClear(t *testing.T) {
	assert.True(t, isSpecialClear(4, false))
	assert.True(t, isSpecialClear(1, true))
	assert.False(t, isSpecialClear(2, false))
	assert.False(t, isSpecialClear(0, true))
}
