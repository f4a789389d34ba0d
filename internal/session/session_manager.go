package session

import (
	"encoding/json"
	"fmt"
	"hash/fnv"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/kestrel-tetris/kestrel-backend/internal/database"
	"github.com/kestrel-tetris/kestrel-backend/internal/deckmod"
	model "github.com/kestrel-tetris/kestrel-backend/internal/models/tetris"
	"github.com/kestrel-tetris/kestrel-backend/internal/services/tetris"
)

const tickInterval = 16 * time.Millisecond

// PlayerSlot pairs one player's identity with their own independent
// engine instance and the WebSocket client delivering their input.
type PlayerSlot struct {
	UserID string
	DeckID string
	Game   *tetris.Game
	Client *Client
}

// GameSession is a two-player head-to-head match. Each player drives
// their own tetris.Game; the session's only job is keeping both clocks
// moving and relaying feedback between sockets.
type GameSession struct {
	Passcode  string
	Status    string // "waiting", "playing", "finished"
	CreatedAt time.Time
	StartedAt time.Time

	Player1 *PlayerSlot
	Player2 *PlayerSlot

	mu sync.Mutex
}

func (s *GameSession) slotFor(userID string) *PlayerSlot {
	if s.Player1 != nil && s.Player1.UserID == userID {
		return s.Player1
	}
	if s.Player2 != nil && s.Player2.UserID == userID {
		return s.Player2
	}
	return nil
}

func (s *GameSession) opponentOf(userID string) *PlayerSlot {
	if s.Player1 != nil && s.Player1.UserID == userID {
		return s.Player2
	}
	if s.Player2 != nil && s.Player2.UserID == userID {
		return s.Player1
	}
	return nil
}

func (s *GameSession) elapsedMillis(now time.Time) int64 {
	if s.StartedAt.IsZero() {
		return 0
	}
	return now.Sub(s.StartedAt).Milliseconds()
}

// PlayerInputEvent is one button-state change arriving over a player's
// WebSocket connection, queued for processing on the SessionManager's
// single goroutine.
type PlayerInputEvent struct {
	Passcode string
	UserID   string
	Changes  tetris.ButtonChange
}

// LightweightPlayerState is the JSON projection of a player's board sent
// to both participants each tick; it excludes the buffer rows above the
// skyline and any engine bookkeeping the client does not need to render.
type LightweightPlayerState struct {
	Board        [model.Skyline][model.Width]int `json:"board"`
	ActivePiece  *model.ActivePiece              `json:"active_piece,omitempty"`
	Score        int                             `json:"score"`
	Level        int                              `json:"level"`
	LinesCleared int                              `json:"lines_cleared"`
	NextQueue    []model.Tetromino                `json:"next_queue"`
	HoldShape    *model.Tetromino                  `json:"hold_shape,omitempty"`
	GameOver     bool                              `json:"game_over"`
	Won          bool                              `json:"won,omitempty"`
}

// LightweightGameState is the full per-recipient payload broadcast over
// the WebSocket: the recipient's own state, their opponent's state, and
// any feedback events accumulated since the previous tick.
type LightweightGameState struct {
	Passcode string                  `json:"passcode"`
	Status   string                  `json:"status"`
	Self     LightweightPlayerState  `json:"self"`
	Opponent LightweightPlayerState  `json:"opponent"`
	Feedback []tetris.FeedbackEvent  `json:"feedback,omitempty"`
}

func projectPlayerState(slot *PlayerSlot) LightweightPlayerState {
	st := slot.Game.State()
	out := LightweightPlayerState{
		Score:        st.Score,
		Level:        st.Level,
		LinesCleared: st.LinesCleared,
		NextQueue:    st.NextQueue,
		GameOver:     st.End != nil,
	}
	for y := 0; y < model.Skyline; y++ {
		out.Board[y] = st.Board[y]
	}
	if st.ActivePiece != nil {
		p := st.ActivePiece.Piece
		out.ActivePiece = &p
	}
	if st.Hold.Occupied {
		shape := st.Hold.Shape
		out.HoldShape = &shape
	}
	if st.End != nil {
		out.Won = st.End.Won
	}
	return out
}

// SessionManager owns every in-progress GameSession and the single
// goroutine that advances their clocks, mirroring the reference
// session manager's register/unregister/input/broadcast/tick loop, but
// driving a deterministic tetris.Game per player instead of mutating a
// single shared board.
type SessionManager struct {
	sessions map[string]*GameSession
	clients  map[string]*Client

	register    chan *Client
	unregister  chan *Client
	inputEvents chan PlayerInputEvent
	quit        chan struct{}

	mu sync.RWMutex

	dbService  *database.DatabaseService
	deckRepo   database.DeckRepository
	resultRepo database.ResultRepository
}

// NewSessionManager creates a SessionManager and starts its Run loop in
// the background.
func NewSessionManager(db *database.DatabaseService, deckRepo database.DeckRepository, resultRepo database.ResultRepository) *SessionManager {
	sm := &SessionManager{
		sessions:    make(map[string]*GameSession),
		clients:     make(map[string]*Client),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		inputEvents: make(chan PlayerInputEvent, 256),
		quit:        make(chan struct{}),
		dbService:   db,
		deckRepo:    deckRepo,
		resultRepo:  resultRepo,
	}
	go sm.Run()
	return sm
}

// passcodeSeed derives a deterministic 64-bit seed from a passcode so
// both players in a match face the identical piece sequence, the way a
// competitive head-to-head round requires.
func passcodeSeed(passcode string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(passcode))
	return h.Sum64()
}

// newPlayerGame builds the per-player engine instance for a match: both
// players share passcodeSeed(passcode) so they see the same piece
// sequence, and if deckID resolves to a saved deck, its score-potential
// table is wired in as a Modifier (spec §4.6 hook) rather than any
// change to the core engine.
func (sm *SessionManager) newPlayerGame(passcode, deckID string) *tetris.Game {
	game := tetris.NewSeeded(tetris.Marathon(), passcodeSeed(passcode))

	if deckID == "" {
		return game
	}
	placements, err := sm.deckRepo.GetTetriminoPlacementsByDeckID(nil, deckID)
	if err != nil {
		log.Printf("[SessionManager] failed to load deck %s for scoring modifier: %v", deckID, err)
		return game
	}
	table := deckmod.BuildScoreTable(placements)
	game.AddModifier(deckmod.NewModifier(table))
	return game
}

// Run is the SessionManager's single event loop: registration,
// unregistration, input and ticks are all processed here. HTTP handlers
// also create, join and delete sessions, so the session and client maps
// are guarded by mu, each GameSession by its own mu, and Client.Send by
// the client's mutex.
func (sm *SessionManager) Run() {
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		select {
		case c := <-sm.register:
			sm.handleRegister(c)
		case c := <-sm.unregister:
			sm.handleUnregister(c)
		case ev := <-sm.inputEvents:
			sm.handleInput(ev)
		case <-ticker.C:
			sm.tick()
		case <-sm.quit:
			sm.shutdownAllClients()
			return
		}
	}
}

func (sm *SessionManager) handleRegister(c *Client) {
	sm.mu.Lock()
	sm.clients[c.UserID] = c
	sm.mu.Unlock()

	log.Printf("[SessionManager] client registered: user=%s passcode=%s", c.UserID, c.Passcode)

	sm.mu.RLock()
	session, ok := sm.sessions[c.Passcode]
	sm.mu.RUnlock()
	if !ok {
		return
	}

	session.mu.Lock()
	if slot := session.slotFor(c.UserID); slot != nil {
		slot.Client = c
	}
	bothConnected := session.Player1 != nil && session.Player1.Client != nil &&
		session.Player2 != nil && session.Player2.Client != nil
	shouldStart := bothConnected && session.Status == "waiting"
	if shouldStart {
		session.Status = "playing"
		session.StartedAt = time.Now()
	}
	session.mu.Unlock()

	if shouldStart {
		log.Printf("[SessionManager] both players connected, starting match %s", c.Passcode)
	}
}

func (sm *SessionManager) handleUnregister(c *Client) {
	sm.mu.Lock()
	if existing, ok := sm.clients[c.UserID]; ok && existing == c {
		delete(sm.clients, c.UserID)
	}
	sm.mu.Unlock()
	c.SafeClose()
	log.Printf("[SessionManager] client unregistered: user=%s", c.UserID)
}

func (sm *SessionManager) handleInput(ev PlayerInputEvent) {
	sm.mu.RLock()
	session, ok := sm.sessions[ev.Passcode]
	sm.mu.RUnlock()
	if !ok {
		return
	}

	session.mu.Lock()
	slot := session.slotFor(ev.UserID)
	playing := session.Status == "playing"
	var fb []tetris.FeedbackEvent
	if slot != nil && playing {
		now := time.Now()
		fb, _ = slot.Game.Update(ev.Changes, session.elapsedMillis(now))
	}
	session.mu.Unlock()

	if len(fb) > 0 {
		sm.broadcastSession(session, fb)
	}
}

func (sm *SessionManager) tick() {
	sm.mu.RLock()
	sessions := make([]*GameSession, 0, len(sm.sessions))
	for _, s := range sm.sessions {
		sessions = append(sessions, s)
	}
	sm.mu.RUnlock()

	now := time.Now()
	for _, session := range sessions {
		session.mu.Lock()
		if session.Status != "playing" {
			session.mu.Unlock()
			continue
		}
		elapsed := session.elapsedMillis(now)
		var combined []tetris.FeedbackEvent
		if session.Player1 != nil {
			fb, _ := session.Player1.Game.Update(nil, elapsed)
			combined = append(combined, fb...)
		}
		if session.Player2 != nil {
			fb, _ := session.Player2.Game.Update(nil, elapsed)
			combined = append(combined, fb...)
		}
		p1Over := session.Player1 != nil && session.Player1.Game.State().End != nil
		p2Over := session.Player2 != nil && session.Player2.Game.State().End != nil
		finished := p1Over || p2Over
		if finished {
			session.Status = "finished"
		}
		session.mu.Unlock()

		sm.broadcastSession(session, combined)
		if finished {
			sm.endGameSession(session)
		}
	}
}

func (sm *SessionManager) broadcastSession(session *GameSession, fb []tetris.FeedbackEvent) {
	session.mu.Lock()
	p1, p2 := session.Player1, session.Player2
	status := session.Status
	session.mu.Unlock()

	if p1 != nil && p1.Client != nil {
		state := LightweightGameState{
			Passcode: session.Passcode,
			Status:   status,
			Self:     projectPlayerState(p1),
			Feedback: fb,
		}
		if p2 != nil {
			state.Opponent = projectPlayerState(p2)
		}
		sm.sendState(p1.Client, state)
	}
	if p2 != nil && p2.Client != nil {
		state := LightweightGameState{
			Passcode: session.Passcode,
			Status:   status,
			Self:     projectPlayerState(p2),
			Feedback: fb,
		}
		if p1 != nil {
			state.Opponent = projectPlayerState(p1)
		}
		sm.sendState(p2.Client, state)
	}
}

func (sm *SessionManager) sendState(c *Client, state LightweightGameState) {
	data, err := json.Marshal(map[string]interface{}{"type": "game_state", "payload": state})
	if err != nil {
		log.Printf("[SessionManager] failed to encode game state for %s: %v", c.UserID, err)
		return
	}
	c.SafeSend(data)
}

func (sm *SessionManager) handleClientMessage(c *Client, raw []byte) {
	var msg struct {
		Type    string                `json:"type"`
		Changes tetris.ButtonChange `json:"changes"`
	}
	if err := json.Unmarshal(raw, &msg); err != nil {
		log.Printf("[SessionManager] malformed client message from %s: %v", c.UserID, err)
		return
	}
	if msg.Type != "input" {
		return
	}
	sm.inputEvents <- PlayerInputEvent{Passcode: c.Passcode, UserID: c.UserID, Changes: msg.Changes}
}

// JoinRoomByPasscode creates a new waiting session under passcode if none
// exists (the caller becomes player 1), or joins an existing waiting
// session as player 2. Returns whether the caller became player 1.
func (sm *SessionManager) JoinRoomByPasscode(passcode, userID, deckID string) (isPlayer1 bool, err error) {
	if len(passcode) < 3 || len(passcode) > 20 {
		return false, fmt.Errorf("passcode must be between 3 and 20 characters")
	}

	sm.mu.Lock()
	defer sm.mu.Unlock()

	session, exists := sm.sessions[passcode]
	if !exists {
		session = &GameSession{
			Passcode:  passcode,
			Status:    "waiting",
			CreatedAt: time.Now(),
			Player1:   &PlayerSlot{UserID: userID, DeckID: deckID, Game: sm.newPlayerGame(passcode, deckID)},
		}
		sm.sessions[passcode] = session
		log.Printf("[SessionManager] created session %s for player1=%s", passcode, userID)
		return true, nil
	}

	session.mu.Lock()
	defer session.mu.Unlock()

	if session.Player1 != nil && session.Player1.UserID == userID {
		return true, nil
	}
	if session.Player2 != nil && session.Player2.UserID == userID {
		return false, nil
	}
	if session.Status != "waiting" {
		return false, fmt.Errorf("session %s is not accepting new players (status=%s)", passcode, session.Status)
	}
	if session.Player2 != nil {
		return false, fmt.Errorf("session %s is already full", passcode)
	}

	session.Player2 = &PlayerSlot{UserID: userID, DeckID: deckID, Game: sm.newPlayerGame(passcode, deckID)}
	log.Printf("[SessionManager] player2=%s joined session %s", userID, passcode)
	return false, nil
}

// GetGameSession returns the session for passcode, if any.
func (sm *SessionManager) GetGameSession(passcode string) (*GameSession, bool) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	s, ok := sm.sessions[passcode]
	return s, ok
}

// DeleteSession removes a session and disconnects any clients still
// attached to it.
func (sm *SessionManager) DeleteSession(passcode string) error {
	sm.mu.Lock()
	session, ok := sm.sessions[passcode]
	if !ok {
		sm.mu.Unlock()
		return fmt.Errorf("session %s not found", passcode)
	}
	delete(sm.sessions, passcode)
	sm.mu.Unlock()

	session.mu.Lock()
	for _, slot := range []*PlayerSlot{session.Player1, session.Player2} {
		if slot != nil && slot.Client != nil {
			slot.Client.SafeClose()
		}
	}
	session.mu.Unlock()

	log.Printf("[SessionManager] deleted session %s", passcode)
	return nil
}

// IsUserConnected reports whether userID currently has a live client.
func (sm *SessionManager) IsUserConnected(userID string) bool {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	_, ok := sm.clients[userID]
	return ok
}

// RegisterClient upgrades a player's WebSocket connection into a running
// Client and hands it to the Run loop via the register channel.
func (sm *SessionManager) RegisterClient(passcode, userID string, conn *websocket.Conn) error {
	sm.mu.RLock()
	_, ok := sm.sessions[passcode]
	sm.mu.RUnlock()
	if !ok {
		return fmt.Errorf("session %s not found", passcode)
	}

	c := &Client{
		UserID:   userID,
		Passcode: passcode,
		Conn:     conn,
		Send:     make(chan []byte, 64),
	}

	go c.writePump()
	go c.readPump(sm)

	sm.register <- c
	return nil
}

func (sm *SessionManager) endGameSession(session *GameSession) {
	session.mu.Lock()
	p1, p2 := session.Player1, session.Player2
	session.mu.Unlock()

	for _, slot := range []*PlayerSlot{p1, p2} {
		if slot == nil {
			continue
		}
		score := slot.Game.State().Score
		if _, err := sm.resultRepo.CreateResult(nil, slot.UserID, score); err != nil {
			log.Printf("[SessionManager] failed to save result for user %s: %v", slot.UserID, err)
		}
	}

	log.Printf("[SessionManager] session %s finished", session.Passcode)
}

// Shutdown stops the Run loop and force-disconnects every client.
func (sm *SessionManager) Shutdown() {
	close(sm.quit)
}

func (sm *SessionManager) shutdownAllClients() {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	for _, c := range sm.clients {
		c.SafeClose()
		c.Conn.Close()
	}
	sm.clients = make(map[string]*Client)
}
