package models

import (
	"encoding/json"
	"time"
)

// Deck はdecksテーブルのレコードに対応する構造体です。
type Deck struct {
    ID          string    `json:"id"`
    UserID      string    `json:"userId"`      // ユーザーごとに1つのデッキを保証
    TotalScore  int       `json:"totalScore"`  // このデッキに含まれる全ブロックの合計ポテンシャルスコア
    CreatedAt   time.Time `json:"createdAt"`
    UpdatedAt   time.Time `json:"updatedAt"`
}

// DeckResponse はAPIレスポンスでデッキ情報を返す際に使用できます。
// 現時点ではDeck構造体と同じですが、将来的にAPI固有のフィールドを追加する可能性があります。
type DeckResponse struct {
    ID          string    `json:"id"`
    UserID      string    `json:"userId"`
    TotalScore  int       `json:"totalScore"`
    CreatedAt   time.Time `json:"createdAt"`
    UpdatedAt   time.Time `json:"updatedAt"`
}

// TetriminoPlacementAPI はデッキ取得APIのレスポンスに含まれる配置情報です。
// DBの TetriminoPlacement から日付・JSON整形済みの表現に変換したものです。
type TetriminoPlacementAPI struct {
	ID             string          `json:"id"`
	TetriminoType  string          `json:"type"`
	Rotation       int             `json:"rotation"`
	StartDate      string          `json:"startDate"`
	Positions      json.RawMessage `json:"positions"`
	ScorePotential int             `json:"scorePotential"`
}

// DeckWithPlacements はデッキ本体とその配置一覧をまとめてAPIへ返すための構造体です。
type DeckWithPlacements struct {
	Deck       *Deck                    `json:"deck"`
	Placements []TetriminoPlacementAPI `json:"placements"`
}