package tetris

import model "github.com/kestrel-tetris/kestrel-backend/internal/models/tetris"

// FeedbackKind tags which variant of FeedbackEvent a value carries.
type FeedbackKind int

const (
	FeedbackPieceSpawned FeedbackKind = iota
	FeedbackPieceLocked
	FeedbackLineClears
	FeedbackHardDrop
	FeedbackAccolade
	FeedbackMessage
)

// FeedbackEvent is one entry of the taxonomy in spec §4.5. Only the fields
// relevant to Kind are populated; this mirrors a Rust enum's variant
// payloads as a single flat struct, which is the idiomatic Go rendering
// for a small closed event set consumed mostly for JSON serialisation.
type FeedbackEvent struct {
	Kind FeedbackKind `json:"kind"`

	Shape model.Tetromino `json:"shape,omitempty"`

	Piece model.ActivePiece `json:"piece,omitempty"`

	Rows       []int `json:"rows,omitempty"`
	DelayMillis int64 `json:"delay_millis,omitempty"`

	TopPiece    model.ActivePiece `json:"top_piece,omitempty"`
	BottomPiece model.ActivePiece `json:"bottom_piece,omitempty"`

	ScoreBonus   int  `json:"score_bonus,omitempty"`
	Spin         bool `json:"spin,omitempty"`
	LineClears   int  `json:"lineclears,omitempty"`
	PerfectClear bool `json:"perfect_clear,omitempty"`
	Combo        int  `json:"combo,omitempty"`
	BackToBack   bool `json:"back_to_back,omitempty"`

	Message string `json:"message,omitempty"`
}
