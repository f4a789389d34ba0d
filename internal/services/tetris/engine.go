package tetris

import model "github.com/kestrel-tetris/kestrel-backend/internal/models/tetris"

// Game is the public API surface of spec §6: a self-contained, headless,
// synchronous state machine. Nothing in this package performs I/O; the
// host drives it entirely through Update.
type Game struct {
	mode      GameMode
	config    GameConfig
	state     *GameState
	generator *RecencyGenerator
	modifiers []Modifier

	sonicDropActive bool
}

// buttonOrder fixes a deterministic iteration order over a ButtonChange
// map (Button, 0..8) so that applying several button edges in the same
// Update call never depends on Go's randomised map iteration order —
// required by spec §8 property 2 (bit-identical replay).
var buttonOrder = [...]Button{
	MoveLeft, MoveRight, RotateLeft, RotateRight, RotateAround,
	DropSoft, DropSonic, DropHard, Hold,
}

// New creates a new game with default configuration seeded from 0. Use
// NewSeeded for a reproducible, distinct replay seed.
func New(mode GameMode) *Game {
	return newGame(mode, DefaultConfig(0))
}

// WithGamemode is an alias for New, matching spec §6's named constructor.
func WithGamemode(mode GameMode) *Game {
	return New(mode)
}

// NewSeeded creates a new game with default configuration seeded from the
// given 64-bit seed (spec §4.2: "seeded by a 64-bit seed taken from
// GameState.seed").
func NewSeeded(mode GameMode, seed uint64) *Game {
	return newGame(mode, DefaultConfig(seed))
}

func newGame(mode GameMode, config GameConfig) *Game {
	g := &Game{mode: mode, config: config}
	g.state = newGameState(mode, config)
	g.generator = NewRecencyGenerator(config.Seed)
	for len(g.state.NextQueue) < config.PreviewCount {
		g.state.NextQueue = append(g.state.NextQueue, g.generator.Next())
	}
	g.state.Events.Schedule(EventSpawn, 0)
	return g
}

// State returns the engine's state snapshot. The host must treat it as
// read-only; all mutation happens via Update and AddModifier per spec §5.
func (g *Game) State() *GameState { return g.state }

// Config returns a copy of the current configuration.
func (g *Game) Config() GameConfig { return g.config }

// ConfigMut returns a pointer to the live configuration for in-place
// mutation (spec §6's config_mut).
func (g *Game) ConfigMut() *GameConfig { return &g.config }

// Mode returns the game's immutable mode descriptor.
func (g *Game) Mode() GameMode { return g.mode }

// AddModifier registers a modifier to run at every checkpoint, in
// registration order, composing with any previously registered modifiers.
func (g *Game) AddModifier(m Modifier) {
	g.modifiers = append(g.modifiers, m)
}

// Forfeit ends the game immediately as a host-requested termination.
func (g *Game) Forfeit() {
	g.endGame(false, Forfeit)
}

// Update is the engine's single entry point (spec §4.4). It drains all
// pending internal events with timestamps <= upTo in timestamp/tie-break
// order, invoking registered modifiers at each checkpoint, then applies
// changes (if any) at time upTo, then advances the clock to upTo.
//
// Returns (nil, false) if the game had already ended before this call
// (spec's `None`). Otherwise returns the feedback events accumulated
// during this call and true.
func (g *Game) Update(changes ButtonChange, upTo int64) ([]FeedbackEvent, bool) {
	if g.state.End != nil {
		return nil, false
	}
	if upTo < g.state.Time {
		panic(errUpToBeforeCurrentTime)
	}

	var feedback []FeedbackEvent

	for g.state.End == nil {
		kind, at, ok := g.state.Events.Next()
		if !ok || at > upTo {
			break
		}
		g.state.Events.Cancel(kind)
		g.invokeModifier(BeforeEvent, kind, 0, false, &feedback)
		g.executeEvent(kind, at, &feedback)
		g.invokeModifier(AfterEvent, kind, 0, false, &feedback)
		g.checkLimits()
	}

	g.applyButtonChanges(changes, upTo, &feedback)
	g.state.Time = upTo

	return feedback, true
}

func (g *Game) executeEvent(kind EventKind, t int64, fb *[]FeedbackEvent) {
	switch kind {
	case EventSpawn:
		g.doSpawn(t, fb)
	case EventFall:
		g.doFall(t)
	case EventSoftDrop:
		g.doSoftDrop(t)
	case EventGroundTimer:
		g.state.Events.Cancel(EventLockTimer)
	case EventLockTimer:
		g.state.Events.Schedule(EventLock, t)
	case EventLock:
		g.doLock(t, fb)
	case EventLineClears:
		g.doLineClears(t, fb)
	case EventHoldPiece:
		g.doHold(t)
	case EventMoveSlow:
		g.doMoveSlow(t)
	case EventMoveFast:
		g.doMoveFast(t)
	case EventRotate:
		// Reserved for an auto-repeating rotation input; the current
		// button-edge handling resolves RotateLeft/RotateRight/
		// RotateAround immediately on press, so nothing schedules this
		// event yet.
	}
}

func (g *Game) doSpawn(t int64, fb *[]FeedbackEvent) {
	if len(g.state.NextQueue) == 0 {
		g.state.NextQueue = append(g.state.NextQueue, g.generator.Next())
	}
	shape := g.state.NextQueue[0]
	g.state.NextQueue = g.state.NextQueue[1:]
	for len(g.state.NextQueue) < g.config.PreviewCount {
		g.state.NextQueue = append(g.state.NextQueue, g.generator.Next())
	}

	piece := model.ActivePiece{Shape: shape, Facing: model.N, Anchor: model.Coord{X: 3, Y: model.Skyline}}
	if !g.state.Board.Fits(piece) {
		g.endGame(false, Fail)
		return
	}

	g.state.ActivePiece = &ActivePieceData{Piece: piece}
	g.state.Hold.SwapAllowed = true
	g.state.PiecesPlayed[shape]++

	*fb = append(*fb, FeedbackEvent{Kind: FeedbackPieceSpawned, Shape: shape})

	g.state.Events.Schedule(EventFall, t+GravityPeriodMillis(g.state.Level))
	g.syncGrounding(t, false)

	if g.pressedDirection() != 0 {
		g.state.Events.Schedule(EventMoveSlow, t+g.config.DASMillis)
	}
}

func (g *Game) doFall(t int64) {
	ap := g.state.ActivePiece
	if ap == nil {
		return
	}
	moved := ap.Piece.Translated(0, -1)
	if g.state.Board.Fits(moved) {
		ap.Piece = moved
		g.state.Events.Schedule(EventFall, t+GravityPeriodMillis(g.state.Level))
	}
	g.syncGrounding(t, false)
}

func (g *Game) doSoftDrop(t int64) {
	ap := g.state.ActivePiece
	if ap == nil {
		return
	}
	moved := ap.Piece.Translated(0, -1)
	if g.state.Board.Fits(moved) {
		ap.Piece = moved
		var period int64
		if !g.sonicDropActive {
			period = GravityPeriodMillis(g.state.Level) / int64(g.config.SoftDropFactor)
		}
		g.state.Events.Schedule(EventSoftDrop, t+period)
	}
	g.syncGrounding(t, false)
}

func (g *Game) doLock(t int64, fb *[]FeedbackEvent) {
	ap := g.state.ActivePiece
	if ap == nil {
		return
	}
	piece := ap.Piece
	spin := ap.Spin

	g.state.Board.Lock(piece)
	*fb = append(*fb, FeedbackEvent{Kind: FeedbackPieceLocked, Piece: piece})
	g.state.ActivePiece = nil
	g.state.Events.Cancel(EventLockTimer)
	g.state.Events.Cancel(EventGroundTimer)
	g.state.Events.Cancel(EventFall)
	g.state.Events.Cancel(EventSoftDrop)

	rows := g.state.Board.FullRows()
	if len(rows) > 0 {
		g.state.pendingClear = &pendingClearInfo{Rows: rows, Spin: spin, Shape: piece.Shape}
		g.state.Events.Schedule(EventLineClears, t+g.config.LineClearDelayMillis)
		return
	}

	g.state.ConsecutiveLineClears = 0
	g.state.Events.Schedule(EventSpawn, t+g.config.AppearanceDelayMillis)
}

func (g *Game) doLineClears(t int64, fb *[]FeedbackEvent) {
	pc := g.state.pendingClear
	g.state.pendingClear = nil
	if pc == nil {
		g.state.Events.Schedule(EventSpawn, t+g.config.AppearanceDelayMillis)
		return
	}

	g.state.Board.ClearRows(pc.Rows)
	k := len(pc.Rows)
	g.state.LinesCleared += k

	*fb = append(*fb, FeedbackEvent{Kind: FeedbackLineClears, Rows: pc.Rows, DelayMillis: g.config.LineClearDelayMillis})

	perfectClear := g.state.Board.IsEmpty()

	if k > 0 {
		g.state.ConsecutiveLineClears++
	} else {
		g.state.ConsecutiveLineClears = 0
	}

	special := isSpecialClear(k, pc.Spin)
	if k > 0 {
		wasOnStreak := g.state.BackToBackSpecialClears > 0
		switch {
		case special && wasOnStreak:
			g.state.BackToBackSpecialClears++
		case special:
			g.state.BackToBackSpecialClears = 1
		default:
			g.state.BackToBackSpecialClears = 0
		}
	}

	score := calculateScore(scoreInputs{
		LineClears:        k,
		Spin:              pc.Spin,
		PerfectClear:      perfectClear,
		Level:             g.state.Level,
		ConsecutiveClears: g.state.ConsecutiveLineClears,
		BackToBackSpecial: g.state.BackToBackSpecialClears,
	})
	g.state.Score += score

	*fb = append(*fb, FeedbackEvent{
		Kind:         FeedbackAccolade,
		ScoreBonus:   score,
		Shape:        pc.Shape,
		Spin:         pc.Spin,
		LineClears:   k,
		PerfectClear: perfectClear,
		Combo:        g.state.ConsecutiveLineClears,
		BackToBack:   g.state.BackToBackSpecialClears > 1,
	})

	if g.mode.IncreaseLevel {
		newLevel := 1 + g.state.LinesCleared/5
		if newLevel > g.state.Level {
			g.state.Level = newLevel
		}
	}

	g.state.Events.Schedule(EventSpawn, t+g.config.AppearanceDelayMillis)
}

func (g *Game) doHold(t int64) {
	ap := g.state.ActivePiece
	if ap == nil || !g.state.Hold.SwapAllowed {
		return
	}
	current := ap.Piece.Shape
	g.state.Hold.SwapAllowed = false

	g.state.Events.Cancel(EventFall)
	g.state.Events.Cancel(EventSoftDrop)
	g.state.Events.Cancel(EventLockTimer)
	g.state.Events.Cancel(EventGroundTimer)

	if !g.state.Hold.Occupied {
		g.state.Hold.Occupied = true
		g.state.Hold.Shape = current
		g.state.ActivePiece = nil
		g.state.Events.Schedule(EventSpawn, t)
		return
	}

	heldShape := g.state.Hold.Shape
	g.state.Hold.Shape = current

	piece := model.ActivePiece{Shape: heldShape, Facing: model.N, Anchor: model.Coord{X: 3, Y: model.Skyline}}
	if !g.state.Board.Fits(piece) {
		g.endGame(false, Fail)
		return
	}
	g.state.ActivePiece = &ActivePieceData{Piece: piece}
	g.state.Events.Schedule(EventFall, t+GravityPeriodMillis(g.state.Level))
	g.syncGrounding(t, false)
}

func (g *Game) pressedDirection() int {
	left := g.state.ButtonsPressed[MoveLeft]
	right := g.state.ButtonsPressed[MoveRight]
	if left && !right {
		return -1
	}
	if right && !left {
		return 1
	}
	return 0
}

func (g *Game) doMoveSlow(t int64) {
	if g.move(t) {
		g.state.Events.Schedule(EventMoveFast, t+g.config.ARRMillis)
	}
}

func (g *Game) doMoveFast(t int64) {
	if g.move(t) {
		g.state.Events.Schedule(EventMoveFast, t+g.config.ARRMillis)
	}
}

// move attempts one auto-repeat cell of horizontal motion. It returns
// false (and leaves the relevant event uncancelled by the caller, so
// auto-repeat silently stops) when the button was released or the piece
// is blocked.
func (g *Game) move(t int64) bool {
	dir := g.pressedDirection()
	if dir == 0 {
		return false
	}
	ap := g.state.ActivePiece
	if ap == nil {
		return false
	}
	moved := ap.Piece.Translated(dir, 0)
	if !g.state.Board.Fits(moved) {
		return false
	}
	ap.Piece = moved
	ap.Spin = false
	g.syncGrounding(t, false)
	return true
}

// syncGrounding recomputes whether the active piece currently rests on
// something solid, and schedules the LockTimer/GroundTimer events that
// follow a grounding transition (spec §3's GroundTimer/LockTimer kinds).
// forceReset reschedules LockTimer even if the piece was already grounded
// — used after a successful rotation while grounded, per the button-edge
// handling paragraph in spec §4.4.
func (g *Game) syncGrounding(t int64, forceReset bool) {
	ap := g.state.ActivePiece
	if ap == nil {
		return
	}
	grounded := !g.state.Board.Fits(ap.Piece.Translated(0, -1))
	wasGrounded := ap.OnGround
	ap.OnGround = grounded

	switch {
	case grounded && (!wasGrounded || forceReset):
		g.state.Events.Schedule(EventLockTimer, t+g.config.LockDelayMillis)
	case !grounded && wasGrounded:
		g.state.Events.Schedule(EventGroundTimer, t)
	}
}

func (g *Game) applyButtonChanges(changes ButtonChange, upTo int64, fb *[]FeedbackEvent) {
	for _, button := range buttonOrder {
		pressed, ok := changes[button]
		if !ok {
			continue
		}
		g.invokeModifier(BeforeButtonChange, 0, button, pressed, fb)
		g.state.ButtonsPressed[button] = pressed
		g.handleButtonEdge(button, pressed, upTo, fb)
		g.invokeModifier(AfterButtonChange, 0, button, pressed, fb)
	}
}

func (g *Game) handleButtonEdge(button Button, pressed bool, t int64, fb *[]FeedbackEvent) {
	switch button {
	case MoveLeft, MoveRight:
		if pressed {
			g.move(t)
			g.state.Events.Schedule(EventMoveSlow, t+g.config.DASMillis)
		} else {
			g.state.Events.Cancel(EventMoveSlow)
			g.state.Events.Cancel(EventMoveFast)
		}

	case RotateLeft, RotateRight, RotateAround:
		if !pressed {
			return
		}
		ap := g.state.ActivePiece
		if ap == nil {
			return
		}
		turns := 1
		switch button {
		case RotateLeft:
			turns = -1
		case RotateAround:
			turns = 2
		}
		result := rotateClassic(&g.state.Board, ap.Piece, turns)
		if !result.Moved {
			return
		}
		ap.Piece = result.Piece
		ap.Spin = result.Spin
		g.syncGrounding(t, ap.OnGround)

	case DropSoft:
		if pressed {
			g.state.Events.Schedule(EventSoftDrop, t)
		} else if !g.sonicDropActive {
			g.state.Events.Cancel(EventSoftDrop)
		}

	case DropSonic:
		g.sonicDropActive = pressed
		if pressed {
			g.state.Events.Schedule(EventSoftDrop, t)
		} else if !g.state.ButtonsPressed[DropSoft] {
			g.state.Events.Cancel(EventSoftDrop)
		}

	case DropHard:
		if pressed {
			g.doHardDrop(t, fb)
		}

	case Hold:
		if pressed && g.state.Hold.SwapAllowed {
			g.state.Events.Schedule(EventHoldPiece, t)
		}
	}
}

func (g *Game) doHardDrop(t int64, fb *[]FeedbackEvent) {
	ap := g.state.ActivePiece
	if ap == nil {
		return
	}
	top := ap.Piece
	bottom := top
	for {
		next := bottom.Translated(0, -1)
		if !g.state.Board.Fits(next) {
			break
		}
		bottom = next
	}
	ap.Piece = bottom

	*fb = append(*fb, FeedbackEvent{Kind: FeedbackHardDrop, TopPiece: top, BottomPiece: bottom})

	g.state.Events.Cancel(EventLockTimer)
	g.state.Events.Cancel(EventGroundTimer)
	g.state.Events.Cancel(EventFall)
	g.state.Events.Cancel(EventSoftDrop)

	g.doLock(t, fb)
}

func (g *Game) checkLimits() {
	for _, lim := range g.mode.Limits {
		val := limitValue(g.state, lim.Stat)
		if val < lim.Max {
			continue
		}
		if lim.Strict {
			g.endGame(false, ModeLimit)
		} else {
			g.endGame(true, 0)
		}
		return
	}
}

func (g *Game) endGame(won bool, reason GameOverReason) {
	if g.state.End != nil {
		return
	}
	g.state.End = &EndState{Won: won, Reason: reason}
}

func (g *Game) invokeModifier(point Checkpoint, kind EventKind, button Button, pressed bool, fb *[]FeedbackEvent) {
	if len(g.modifiers) == 0 {
		return
	}
	ctx := &ModifierContext{
		Point:     point,
		EventKind: kind,
		Button:    button,
		Pressed:   pressed,
		Config:    &g.config,
		Mode:      &g.mode,
		State:     g.state,
		Feedback:  fb,
	}
	for _, m := range g.modifiers {
		m(ctx)
	}
}
