package game

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/helcomsecretariat/ecosfera-baltica-digital-sub000/internal/game/rules"
	"github.com/helcomsecretariat/ecosfera-baltica-digital-sub000/internal/game/state"
)

var (
	ErrGameNotFound = errors.New("game not found")
	ErrGameExists   = errors.New("game already exists")
	ErrGameOver     = errors.New("game is over")
	ErrNoUndo       = errors.New("nothing to undo")
)

// SnapshotStore archives encoded snapshots. Implementations live in the
// repository package.
type SnapshotStore interface {
	Save(ctx context.Context, gameID string, seq int, state string, data []byte) error
}

// GameNotification is sent to the UI layer after a session changes.
type GameNotification struct {
	Type      string
	GameID    string
	Timestamp time.Time
	Data      map[string]interface{}
}

// NotificationHandler receives game notifications.
type NotificationHandler func(notification GameNotification)

// session is one hosted game.
type session struct {
	mu        sync.Mutex
	id        string
	current   Snapshot
	history   []Snapshot
	seq       int
	startedAt time.Time
}

// Engine hosts game sessions around a Machine.
type Engine struct {
	logger              *zap.Logger
	machine             *Machine
	mu                  sync.RWMutex
	games               map[string]*session
	notificationHandler NotificationHandler
	bus                 *rules.EventBus
	store               SnapshotStore
	recorder            *ReplayRecorder

	// rollbackMax bounds the snapshots kept per game for Undo.
	rollbackMax int
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithStore archives every settled snapshot in store.
func WithStore(store SnapshotStore) EngineOption {
	return func(e *Engine) { e.store = store }
}

// WithRecorder records every settled snapshot for replay.
func WithRecorder(r *ReplayRecorder) EngineOption {
	return func(e *Engine) { e.recorder = r }
}

// WithRollbackMax sets how many snapshots Undo can step back through.
func WithRollbackMax(n int) EngineOption {
	return func(e *Engine) { e.rollbackMax = n }
}

// NewEngine creates an engine running machine.
func NewEngine(logger *zap.Logger, machine *Machine, opts ...EngineOption) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Engine{
		logger:      logger,
		machine:     machine,
		games:       make(map[string]*session),
		bus:         rules.NewEventBus(),
		rollbackMax: 16,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Bus publishes every accepted input.
func (e *Engine) Bus() *rules.EventBus { return e.bus }

// SetNotificationHandler sets the handler for game notifications.
func (e *Engine) SetNotificationHandler(handler NotificationHandler) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.notificationHandler = handler
}

// emitNotification hands n to the handler on its own goroutine so the handler
// may call back into the engine.
func (e *Engine) emitNotification(n GameNotification) {
	e.mu.RLock()
	handler := e.notificationHandler
	e.mu.RUnlock()

	if handler != nil {
		go handler(n)
	}
}

func (e *Engine) notify(kind, gameID string, data map[string]interface{}) {
	e.emitNotification(GameNotification{
		Type:      kind,
		GameID:    gameID,
		Timestamp: time.Now(),
		Data:      data,
	})
}

func (e *Engine) session(gameID string) (*session, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	g, ok := e.games[gameID]
	if !ok {
		return nil, fmt.Errorf("game %s: %w", gameID, ErrGameNotFound)
	}
	return g, nil
}

// StartGame spawns a game under gameID.
func (e *Engine) StartGame(ctx context.Context, gameID string, gc state.GameConfig) (Snapshot, error) {
	if gameID == "" {
		return Snapshot{}, fmt.Errorf("gameID is required")
	}
	snap, err := e.machine.Start(gc)
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to start game %s: %w", gameID, err)
	}

	e.mu.Lock()
	if _, exists := e.games[gameID]; exists {
		e.mu.Unlock()
		return Snapshot{}, fmt.Errorf("game %s: %w", gameID, ErrGameExists)
	}
	g := &session{id: gameID, current: snap, startedAt: time.Now()}
	e.games[gameID] = g
	e.mu.Unlock()

	if e.recorder != nil {
		e.recorder.StartRecording(gameID)
	}
	g.mu.Lock()
	e.archive(ctx, g)
	g.mu.Unlock()

	e.logger.Info("game started",
		zap.String("game_id", gameID),
		zap.String("seed", gc.Seed),
		zap.Int("players", gc.PlayersCount),
		zap.Int("difficulty", gc.Difficulty),
	)
	e.notify("GAME_STARTED", gameID, map[string]interface{}{"state": snap.Value.String()})
	return snap, nil
}

// RestoreGame hosts an existing snapshot, typically read back from the
// archive, under gameID. Undo history starts empty.
func (e *Engine) RestoreGame(gameID string, snap Snapshot) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, exists := e.games[gameID]; exists {
		return fmt.Errorf("game %s: %w", gameID, ErrGameExists)
	}
	e.games[gameID] = &session{id: gameID, current: snap, startedAt: time.Now()}
	e.logger.Info("game restored",
		zap.String("game_id", gameID),
		zap.Stringer("state", snap.Value),
		zap.Int("turn", snap.Context.Turn.Number),
	)
	return nil
}

// ProcessEvent applies ev to the game and returns the frames to render. A
// rejected input returns no frames and no error. An engine invariant
// violation leaves the game at its previous snapshot and returns an error.
func (e *Engine) ProcessEvent(ctx context.Context, gameID string, ev rules.Event) (frames []Frame, err error) {
	g, err := e.session(gameID)
	if err != nil {
		return nil, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.current.Value.IsFinal() && !ev.Type.IsPrivileged() {
		return nil, fmt.Errorf("game %s: %w", gameID, ErrGameOver)
	}

	defer func() {
		if r := recover(); r != nil {
			inv, ok := r.(*InvariantError)
			if !ok {
				panic(r)
			}
			e.logger.Error("event aborted, state kept",
				zap.String("game_id", gameID),
				zap.String("event", string(ev.Type)),
				zap.Error(inv),
			)
			frames = nil
			err = fmt.Errorf("event %s failed and state restored: %w", ev.Type, inv)
		}
	}()

	frames = e.machine.Trace(g.current, ev)
	if len(frames) == 0 {
		return nil, nil
	}

	g.history = append(g.history, g.current)
	if over := len(g.history) - e.rollbackMax; over > 0 {
		g.history = g.history[over:]
	}
	g.current = frames[len(frames)-1].Snapshot
	e.archive(ctx, g)
	e.bus.Publish(ev)

	data := map[string]interface{}{
		"event": string(ev.Type),
		"state": g.current.Value.String(),
		"turn":  g.current.Context.Turn.Number,
	}
	e.notify("GAME_STATE_CHANGE", gameID, data)
	if g.current.Value.IsFinal() {
		e.logger.Info("game over",
			zap.String("game_id", gameID),
			zap.Stringer("result", g.current.Value),
			zap.Int("turn", g.current.Context.Turn.Number),
		)
		e.notify("GAME_OVER", gameID, data)
	}
	return frames, nil
}

// archive hands the current snapshot to the store and recorder. Store
// failures are logged; the game goes on.
func (e *Engine) archive(ctx context.Context, g *session) {
	g.seq++
	if e.recorder != nil {
		e.recorder.RecordState(g.id, g.current)
	}
	if e.store == nil {
		return
	}
	data, err := MarshalSnapshot(g.current)
	if err == nil {
		err = e.store.Save(ctx, g.id, g.seq, g.current.Value.String(), data)
	}
	if err != nil {
		e.logger.Warn("failed to archive snapshot",
			zap.String("game_id", g.id),
			zap.Int("seq", g.seq),
			zap.Error(err),
		)
	}
}

// GetSnapshot returns the current snapshot of gameID.
func (e *Engine) GetSnapshot(gameID string) (Snapshot, error) {
	g, err := e.session(gameID)
	if err != nil {
		return Snapshot{}, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.current, nil
}

// Undo steps gameID back to the snapshot before its last accepted input.
func (e *Engine) Undo(gameID string) (Snapshot, error) {
	g, err := e.session(gameID)
	if err != nil {
		return Snapshot{}, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	if len(g.history) == 0 {
		return Snapshot{}, fmt.Errorf("game %s: %w", gameID, ErrNoUndo)
	}
	g.current = g.history[len(g.history)-1]
	g.history = g.history[:len(g.history)-1]

	e.logger.Info("undo", zap.String("game_id", gameID), zap.Stringer("state", g.current.Value))
	e.notify("GAME_STATE_CHANGE", gameID, map[string]interface{}{"type": "undo"})
	return g.current, nil
}

// EndGame removes gameID and saves its replay.
func (e *Engine) EndGame(gameID string) error {
	e.mu.Lock()
	_, ok := e.games[gameID]
	delete(e.games, gameID)
	e.mu.Unlock()
	if !ok {
		return fmt.Errorf("game %s: %w", gameID, ErrGameNotFound)
	}

	if e.recorder != nil {
		if err := e.recorder.SaveReplay(gameID); err != nil {
			e.logger.Warn("failed to save replay", zap.String("game_id", gameID), zap.Error(err))
		}
	}
	e.logger.Info("game ended", zap.String("game_id", gameID))
	return nil
}

// Games lists the hosted game ids.
func (e *Engine) Games() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	ids := make([]string, 0, len(e.games))
	for id := range e.games {
		ids = append(ids, id)
	}
	return ids
}
