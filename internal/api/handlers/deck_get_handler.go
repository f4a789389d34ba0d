package handlers

import (
	"log"
	"net/http"

	"github.com/gorilla/mux" // mux.Vars を使用するためインポート
	"github.com/kestrel-tetris/kestrel-backend/internal/api/middleware" // プロジェクトのルートパスに合わせて修正
	"github.com/kestrel-tetris/kestrel-backend/internal/services/deck"  // deckサービスパッケージ
)

// DeckGetHandler はデッキ取得APIのエンドポイントを処理します。
type DeckGetHandler struct {
	DeckService services.DeckService
}

// NewDeckGetHandler はDeckGetHandlerの新しいインスタンスを作成します。
func NewDeckGetHandler(s services.DeckService) *DeckGetHandler {
	return &DeckGetHandler{DeckService: s}
}

// ServeHTTP は http.Handler インターフェースを実装します。
func (h *DeckGetHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// GETメソッドのみを受け入れます
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "許可されていないメソッド")
		return
	}

	// パスパラメータからuserIDを取得します
	vars := mux.Vars(r)
	requestedUserID := vars["userID"] // URLから取得したユーザーID
	if requestedUserID == "" {
		writeError(w, http.StatusBadRequest, "ユーザーIDが指定されていません。")
		return
	}
	log.Printf("リクエストされたユーザーID (URL): %s", requestedUserID)

	// Contextから認証済みユーザーIDを取得します (AuthMiddlewareが設定されている前提)
	authenticatedUserID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		log.Println("エラー: デッキ取得ハンドラで認証済みユーザーIDがコンテキストに見つかりませんでした。")
		writeError(w, http.StatusUnauthorized, "未認証: ユーザーIDが見つかりません")
		return
	}
	log.Printf("認証済みユーザーID (JWT): %s", authenticatedUserID)

	// セキュリティ検証: リクエストされたユーザーIDと認証済みユーザーIDが一致するか確認します。
	if requestedUserID != authenticatedUserID {
		log.Printf("認可エラー: リクエストユーザーID %s は認証済みユーザーID %s と一致しません。", requestedUserID, authenticatedUserID)
		writeError(w, http.StatusForbidden, "認可されていない操作: 他のユーザーのデッキにはアクセスできません")
		return
	}

	// デッキと配置のビジネスロジックを実行します
	deckWithPlacements, err := h.DeckService.GetDeckWithPlacementsByUserID(authenticatedUserID)
	if err != nil {
		log.Printf("ユーザー %s のデッキ取得に失敗しました: %v", authenticatedUserID, err)
		writeError(w, http.StatusInternalServerError, "内部サーバーエラー: デッキ情報の取得に失敗しました")
		return
	}

	if deckWithPlacements == nil || deckWithPlacements.Deck == nil {
		// デッキが存在しない場合、404 Not Found を返す
		writeError(w, http.StatusNotFound, "デッキが見つかりませんでした")
		return
	}

	writeJSON(w, http.StatusOK, deckWithPlacements)
	log.Printf("ユーザー %s のデッキが正常に取得され、返されました。", authenticatedUserID)
}