package handlers

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/kestrel-tetris/kestrel-backend/internal/database"
	"github.com/kestrel-tetris/kestrel-backend/internal/session"
)

// upgrader configures the HTTP->WebSocket protocol upgrade for game
// connections. Origin checking is intentionally permissive here; the
// caller authenticates over the socket itself via the initial "auth"
// message instead of relying on CORS.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// GameHandler serves the passcode-based matchmaking and WebSocket
// endpoints backed by a session.SessionManager.
type GameHandler struct {
	sessionManager *session.SessionManager
	dbService      *database.DatabaseService
}

// NewGameHandler creates a new GameHandler.
func NewGameHandler(sm *session.SessionManager, db *database.DatabaseService) *GameHandler {
	return &GameHandler{sessionManager: sm, dbService: db}
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// JoinRoomByPasscode creates or joins a waiting match keyed by passcode.
// POST /api/game/room/passcode/{passcode}/join
func (h *GameHandler) JoinRoomByPasscode(w http.ResponseWriter, r *http.Request) {
	passcode := mux.Vars(r)["passcode"]
	if passcode == "" {
		writeError(w, http.StatusBadRequest, "passcode is required")
		return
	}

	userID, err := ExtractUserIDFromContext(r)
	if err != nil {
		log.Printf("[GameHandler] no user ID in context, using test user ID")
		userID = "test-user-123"
	}

	var req struct {
		DeckID string `json:"deck_id"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)

	isPlayer1, err := h.sessionManager.JoinRoomByPasscode(passcode, userID, req.DeckID)
	if err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"passcode":   passcode,
		"is_player1": isPlayer1,
	})
}

// GetRoomStatus reports whether a passcode's session exists and its
// current status.
// GET /api/game/room/passcode/{passcode}/status
func (h *GameHandler) GetRoomStatus(w http.ResponseWriter, r *http.Request) {
	passcode := mux.Vars(r)["passcode"]
	if passcode == "" {
		writeError(w, http.StatusBadRequest, "passcode is required")
		return
	}

	s, ok := h.sessionManager.GetGameSession(passcode)
	if !ok {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"passcode": s.Passcode,
		"status":   s.Status,
	})
}

// DeleteSession removes a session whatever its status.
// DELETE /api/game/room/passcode/{passcode}/delete
func (h *GameHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	passcode := mux.Vars(r)["passcode"]
	if passcode == "" {
		writeError(w, http.StatusBadRequest, "passcode is required")
		return
	}

	if err := h.sessionManager.DeleteSession(passcode); err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "session deleted"})
}

// HandleWebSocketConnection upgrades the connection, waits for an initial
// auth frame carrying either a Supabase JWT or the BYPASS_AUTH sentinel,
// then hands the authenticated connection to the SessionManager.
func (h *GameHandler) HandleWebSocketConnection(w http.ResponseWriter, r *http.Request) {
	passcode := mux.Vars(r)["passcode"]
	if passcode == "" {
		writeError(w, http.StatusBadRequest, "passcode is required")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[GameHandler] websocket upgrade failed for %s: %v", passcode, err)
		return
	}

	conn.SetReadDeadline(time.Now().Add(10 * time.Second))
	userID, err := authenticateSocket(conn)
	conn.SetReadDeadline(time.Time{})
	if err != nil {
		log.Printf("[GameHandler] websocket auth failed for %s: %v", passcode, err)
		conn.Close()
		return
	}

	if err := h.sessionManager.RegisterClient(passcode, userID, conn); err != nil {
		log.Printf("[GameHandler] failed to register client %s to %s: %v", userID, passcode, err)
		conn.Close()
	}
}

func authenticateSocket(conn *websocket.Conn) (string, error) {
	_, message, err := conn.ReadMessage()
	if err != nil {
		return "", fmt.Errorf("reading auth message: %w", err)
	}

	var authMsg struct {
		Type  string `json:"type"`
		Token string `json:"token"`
	}
	if err := json.Unmarshal(message, &authMsg); err != nil {
		return "", fmt.Errorf("parsing auth message: %w", err)
	}
	if authMsg.Type != "auth" {
		return "", fmt.Errorf("expected auth message, got %q", authMsg.Type)
	}

	if authMsg.Token == "BYPASS_AUTH" {
		conn.WriteJSON(map[string]string{"type": "auth_success"})
		return "test-user-123", nil
	}

	userID, err := verifySupabaseJWT(authMsg.Token)
	if err != nil {
		conn.WriteJSON(map[string]string{"error": err.Error()})
		return "", err
	}
	conn.WriteJSON(map[string]string{"type": "auth_success"})
	return userID, nil
}

func verifySupabaseJWT(tokenString string) (string, error) {
	jwtSecret := os.Getenv("SUPABASE_JWT_SECRET")
	if jwtSecret == "" {
		return "", fmt.Errorf("server configuration error: JWT secret missing")
	}
	if len(tokenString) > 7 && tokenString[:7] == "Bearer " {
		tokenString = tokenString[7:]
	}

	parsed, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(jwtSecret), nil
	})
	if err != nil || !parsed.Valid {
		return "", fmt.Errorf("invalid token")
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("invalid token claims")
	}
	userID, ok := claims["sub"].(string)
	if !ok {
		return "", fmt.Errorf("token missing sub claim")
	}
	return userID, nil
}
