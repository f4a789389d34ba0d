// Package deckmod layers "contribution-driven tile scoring" onto the
// core engine purely through its Modifier hook: a user's saved deck maps
// each tetromino shape to a score potential derived from their GitHub
// contribution calendar, and this package turns that mapping into a
// score bonus applied when the matching shape clears a line.
package deckmod

import (
	model "github.com/kestrel-tetris/kestrel-backend/internal/models/tetris"
	"github.com/kestrel-tetris/kestrel-backend/internal/models"
	"github.com/kestrel-tetris/kestrel-backend/internal/services/tetris"
)

// ScoreTable gives a per-shape score potential, averaged across however
// many placements of that shape the deck contains.
type ScoreTable map[model.Tetromino]int

// shapeFromType parses the single-letter tetromino codes stored in
// tetrimino_placements.tetrimino_type ("I", "O", "T", "S", "Z", "L", "J") into the
// engine's canonical Tetromino tag. Unrecognised codes are ignored.
func shapeFromType(t string) (model.Tetromino, bool) {
	switch t {
	case "O":
		return model.O, true
	case "I":
		return model.I, true
	case "S":
		return model.S, true
	case "Z":
		return model.Z, true
	case "T":
		return model.T, true
	case "L":
		return model.L, true
	case "J":
		return model.J, true
	default:
		return 0, false
	}
}

// BuildScoreTable averages ScorePotential across a deck's placements,
// grouped by shape.
func BuildScoreTable(placements []models.TetriminoPlacement) ScoreTable {
	sums := map[model.Tetromino]int{}
	counts := map[model.Tetromino]int{}
	for _, p := range placements {
		shape, ok := shapeFromType(p.TetriminoType)
		if !ok {
			continue
		}
		sums[shape] += p.ScorePotential
		counts[shape]++
	}

	table := make(ScoreTable, len(sums))
	for shape, sum := range sums {
		table[shape] = sum / counts[shape]
	}
	return table
}

// NewModifier returns a tetris.Modifier that, at AfterEvent(LineClears),
// adds the deck's score potential for the clearing shape to both the
// running score and the Accolade feedback event, and at
// AfterEvent(Spawn) tags the spawn feedback with the newly active
// piece's potential so a client can preview it before it locks.
func NewModifier(table ScoreTable) tetris.Modifier {
	return func(ctx *tetris.ModifierContext) {
		if ctx.Point != tetris.AfterEvent {
			return
		}

		switch ctx.EventKind {
		case tetris.EventLineClears:
			applyLineClearBonus(ctx, table)
		case tetris.EventSpawn:
			tagSpawnPotential(ctx, table)
		}
	}
}

func applyLineClearBonus(ctx *tetris.ModifierContext, table ScoreTable) {
	feedback := *ctx.Feedback
	for i := len(feedback) - 1; i >= 0; i-- {
		if feedback[i].Kind != tetris.FeedbackAccolade {
			continue
		}
		if feedback[i].LineClears == 0 {
			return
		}
		bonus, ok := table[feedback[i].Shape]
		if !ok || bonus == 0 {
			return
		}
		ctx.State.Score += bonus
		feedback[i].ScoreBonus += bonus
		return
	}
}

func tagSpawnPotential(ctx *tetris.ModifierContext, table ScoreTable) {
	if ctx.State.ActivePiece == nil {
		return
	}
	shape := ctx.State.ActivePiece.Piece.Shape
	bonus, ok := table[shape]
	if !ok {
		return
	}

	feedback := *ctx.Feedback
	for i := len(feedback) - 1; i >= 0; i-- {
		if feedback[i].Kind == tetris.FeedbackPieceSpawned && feedback[i].Shape == shape {
			feedback[i].ScoreBonus = bonus
			return
		}
	}
}
