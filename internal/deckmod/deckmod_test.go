package deckmod

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kestrel-tetris/kestrel-backend/internal/models"
	model "github.com/kestrel-tetris/kestrel-backend/internal/models/tetris"
	"github.com/kestrel-tetris/kestrel-backend/internal/services/tetris"
)

func placement(shapeType string, potential int) models.TetriminoPlacement {
	return models.TetriminoPlacement{
		TetriminoType:  shapeType,
		Positions:      json.RawMessage(`[]`),
		ScorePotential: potential,
	}
}

func TestBuildScoreTableAveragesPerShape(t *testing.T) {
	table := BuildScoreTable([]models.TetriminoPlacement{
		placement("I", 100),
		placement("I", 200),
		placement("T", 50),
		placement("?", 9999), // unrecognised type is ignored
	})

	assert.Equal(t, 150, table[model.I])
	assert.Equal(t, 50, table[model.T])
	_, ok := table[model.O]
	assert.False(t, ok)
}

func TestModifierAddsLineClearBonusToScoreAndAccolade(t *testing.T) {
	table := ScoreTable{model.T: 250}
	modifier := NewModifier(table)

	game := tetris.NewSeeded(tetris.Marathon(), 0)
	state := game.State()
	startScore := state.Score
	state.Score += 100 // simulate the base score doLineClears already applied

	fb := []tetris.FeedbackEvent{
		{Kind: tetris.FeedbackLineClears, Rows: []int{0}},
		{Kind: tetris.FeedbackAccolade, ScoreBonus: 100, Shape: model.T, LineClears: 1},
	}

	ctx := &tetris.ModifierContext{
		Point:     tetris.AfterEvent,
		EventKind: tetris.EventLineClears,
		State:     state,
		Feedback:  &fb,
	}
	modifier(ctx)

	assert.Equal(t, startScore+100+250, state.Score)
	assert.Equal(t, 100+250, fb[1].ScoreBonus)
}

func TestModifierSkipsLineClearBonusWhenNoLinesCleared(t *testing.T) {
	table := ScoreTable{model.T: 250}
	modifier := NewModifier(table)

	game := tetris.NewSeeded(tetris.Marathon(), 0)
	state := game.State()
	startScore := state.Score

	fb := []tetris.FeedbackEvent{
		{Kind: tetris.FeedbackAccolade, ScoreBonus: 0, Shape: model.T, LineClears: 0},
	}
	ctx := &tetris.ModifierContext{
		Point:     tetris.AfterEvent,
		EventKind: tetris.EventLineClears,
		State:     state,
		Feedback:  &fb,
	}
	modifier(ctx)

	assert.Equal(t, startScore, state.Score)
	assert.Equal(t, 0, fb[0].ScoreBonus)
}

func TestModifierTagsSpawnedPieceScoreBonus(t *testing.T) {
	table := ScoreTable{model.O: 75}
	modifier := NewModifier(table)

	game := tetris.NewSeeded(tetris.Marathon(), 0)
	state := game.State()
	state.ActivePiece = &tetris.ActivePieceData{
		Piece: model.ActivePiece{Shape: model.O, Facing: model.N, Anchor: model.Coord{X: 3, Y: model.Skyline}},
	}

	fb := []tetris.FeedbackEvent{
		{Kind: tetris.FeedbackPieceSpawned, Shape: model.O},
	}
	ctx := &tetris.ModifierContext{
		Point:     tetris.AfterEvent,
		EventKind: tetris.EventSpawn,
		State:     state,
		Feedback:  &fb,
	}
	modifier(ctx)

	assert.Equal(t, 75, fb[0].ScoreBonus)
}

func TestModifierIgnoresOtherCheckpointsAndEvents(t *testing.T) {
	table := ScoreTable{model.O: 75}
	modifier := NewModifier(table)

	game := tetris.NewSeeded(tetris.Marathon(), 0)
	state := game.State()
	fb := []tetris.FeedbackEvent{{Kind: tetris.FeedbackAccolade, Shape: model.O, LineClears: 1}}

	ctx := &tetris.ModifierContext{
		Point:     tetris.BeforeEvent,
		EventKind: tetris.EventLineClears,
		State:     state,
		Feedback:  &fb,
	}
	modifier(ctx)

	assert.Equal(t, 0, fb[0].ScoreBonus)
}
