package tetris

import (
	model "github.com/kestrel-tetris/kestrel-backend/internal/models/tetris"
)

// kickOffset is a translational offset (dx, dy) attempted after a rotation.
type kickOffset struct{ dx, dy int }

// classicKick returns the single kick offset rotate_classic applies for a
// one-quarter turn of shape while facing o in direction right (true =
// clockwise). Grounded directly on the reference engine's
// rotation_systems::rotate_classic kick table; see DESIGN.md.
func classicKick(shape model.Tetromino, o model.Orientation, right bool) kickOffset {
	switch shape {
	case model.O:
		return kickOffset{0, 0}
	case model.I:
		switch o {
		case model.N, model.S:
			return kickOffset{2, -1}
		default: // E, W
			return kickOffset{-2, 1}
		}
	case model.S, model.Z:
		switch o {
		case model.N, model.S:
			return kickOffset{1, 0}
		default: // E, W
			return kickOffset{-1, 0}
		}
	default: // T, L, J
		switch o {
		case model.N:
			if right {
				return kickOffset{1, -1}
			}
			return kickOffset{-1, 1}
		case model.E:
			if right {
				return kickOffset{-1, 0}
			}
			return kickOffset{1, 0}
		case model.S:
			return kickOffset{0, 0}
		default: // W
			if right {
				return kickOffset{0, 1}
			}
			return kickOffset{0, -1}
		}
	}
}

// rotationResult is the outcome of attempting a rotation: the new pose (if
// it fit) and whether that pose is a "spin" per the immobility test.
type rotationResult struct {
	Piece model.ActivePiece
	Spin  bool
	Moved bool
}

// rotateClassic implements spec §4.3's Classic rotation system: a single
// deterministic kick per (shape, orientation, direction), 180-degree turns
// attempting only the zero kick, and 0 turns being a no-op. Returns
// Moved=false (piece unchanged) if the kicked pose does not fit.
func rotateClassic(board *model.Board, piece model.ActivePiece, rightTurns int) rotationResult {
	turns := rightTurns % 4
	if turns < 0 {
		turns += 4
	}

	var offset kickOffset
	switch turns {
	case 0:
		return rotationResult{Piece: piece, Moved: true, Spin: false}
	case 1:
		offset = classicKick(piece.Shape, piece.Facing, true)
	case 2:
		offset = kickOffset{0, 0}
	case 3:
		offset = classicKick(piece.Shape, piece.Facing, false)
	}

	candidate := piece.Rotated(rightTurns).Translated(offset.dx, offset.dy)
	if !board.Fits(candidate) {
		return rotationResult{Piece: piece, Moved: false}
	}
	return rotationResult{Piece: candidate, Moved: true, Spin: isImmobile(board, candidate)}
}

// isImmobile implements the spin-detection design note in spec §9: try the
// four single-cell translations of the post-rotation pose; if none of them
// fit, the pose is immobile and therefore the clear (if any) counts as a
// spin.
func isImmobile(board *model.Board, piece model.ActivePiece) bool {
	for _, d := range [4][2]int{{-1, 0}, {1, 0}, {0, 1}, {0, -1}} {
		if board.Fits(piece.Translated(d[0], d[1])) {
			return false
		}
	}
	return true
}
