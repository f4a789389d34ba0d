package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/kestrel-tetris/kestrel-backend/internal/api/middleware"         // プロジェクトのルートパスに合わせて修正
	"github.com/kestrel-tetris/kestrel-backend/internal/models"                 // プロジェクトのルートパスに合わせて修正
	services "github.com/kestrel-tetris/kestrel-backend/internal/services/deck" // プロジェクトのルートパスに合わせて修正
)

// DeckSaveHandler はデッキ保存APIのエンドポイントを処理します。
type DeckSaveHandler struct {
	DeckService services.DeckService
}

// NewDeckSaveHandler はDeckSaveHandlerの新しいインスタンスを作成します。
func NewDeckSaveHandler(s services.DeckService) *DeckSaveHandler {
	return &DeckSaveHandler{DeckService: s}
}

// ServeHTTP は http.Handler インターフェースを実装します。
// これにより、http.Handle() 関数で直接使用できます。
func (h *DeckSaveHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// POSTメソッドのみを受け入れます
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "許可されていないメソッド")
		return
	}

	// ContextからユーザーIDを取得します (AuthMiddlewareが設定されている前提)
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		log.Println("エラー: デッキ保存ハンドラでユーザーIDがコンテキストに見つかりませんでした。認証ミドルウェアが正しく動作していることを確認してください。")
		writeError(w, http.StatusUnauthorized, "未認証: ユーザーIDが見つかりません")
		return
	}
	log.Printf("認証済みユーザーID: %s がデッキ保存リクエストを送信しました。", userID)

	// リクエストボディをパースします
	var req models.DeckSaveRequest
	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		log.Printf("リクエストボディのパースに失敗しました: %v", err)
		writeError(w, http.StatusBadRequest, "不正なリクエスト: 無効なリクエストボディです")
		return
	}

	// セキュリティ検証: リクエストボディのユーザーIDと認証済みユーザーIDが一致するか確認します。
	// クライアントから送られてくるuserIDはあくまで参考とし、JWTから取得した認証済みuserIDを信頼すべきです。
	if req.UserID != userID {
		log.Printf("不正なデッキ保存試行: リクエストユーザーID %s vs 認証済みユーザーID %s", req.UserID, userID)
		writeError(w, http.StatusUnauthorized, "未認証: ユーザーIDが一致しません")
		return
	}

	// デッキ保存のビジネスロジックを実行します
	err = h.DeckService.SaveDeck(userID, req.Tetriminos)
	if err != nil {
		log.Printf("ユーザー %s のデッキ保存に失敗しました: %v", userID, err)
		writeError(w, http.StatusInternalServerError, "内部サーバーエラー: デッキの保存に失敗しました")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "デッキが正常に保存されました"})
}