// Package server is the renderer transport: a WebSocket endpoint that pushes
// machine frames to the browser and feeds UI events back into the engine.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/helcomsecretariat/ecosfera-baltica-digital-sub000/internal/config"
	"github.com/helcomsecretariat/ecosfera-baltica-digital-sub000/internal/game"
	"github.com/helcomsecretariat/ecosfera-baltica-digital-sub000/internal/game/rules"
	"github.com/helcomsecretariat/ecosfera-baltica-digital-sub000/internal/game/state"
	"github.com/helcomsecretariat/ecosfera-baltica-digital-sub000/internal/repository"
)

const (
	writeWait      = 10 * time.Second
	maxMessageSize = 1 << 20
	sendBuffer     = 256
)

// Message types exchanged with the renderer.
const (
	MsgStart    = "start"
	MsgEvent    = "event"
	MsgUndo     = "undo"
	MsgFrame    = "frame"
	MsgError    = "error"
	MsgGameOver = "game_over"
)

// InMessage is sent by the renderer.
type InMessage struct {
	Type   string            `json:"type"`
	Config *state.GameConfig `json:"config,omitempty"`
	Event  *rules.Event      `json:"event,omitempty"`
}

// OutMessage is pushed to the renderer. Delay is in milliseconds.
type OutMessage struct {
	Type     string         `json:"type"`
	GameID   string         `json:"game_id,omitempty"`
	Delay    int64          `json:"delay,omitempty"`
	Snapshot *game.Snapshot `json:"snapshot,omitempty"`
	Error    string         `json:"error,omitempty"`
	Result   string         `json:"result,omitempty"`
}

// Client is one renderer connection bound to a game.
type Client struct {
	id     string
	gameID string
	conn   *websocket.Conn
	send   chan []byte
}

// Hub routes frames between the engine and the connected renderers.
type Hub struct {
	engine   *game.Engine
	archive  repository.SnapshotStore
	cfg      config.ServerConfig
	logger   *zap.Logger
	upgrader websocket.Upgrader

	mu         sync.RWMutex
	clients    map[*Client]bool
	unregister chan *Client
	done       chan struct{}
}

// NewHub creates a hub for engine. archive may be nil; when set, games that are
// not hosted are resumed from their latest archived snapshot.
func NewHub(engine *game.Engine, archive repository.SnapshotStore, cfg config.ServerConfig, logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &Hub{
		engine:     engine,
		archive:    archive,
		cfg:        cfg,
		logger:     logger,
		clients:    make(map[*Client]bool),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  cfg.WebSocket.ReadBufferSize,
		WriteBufferSize: cfg.WebSocket.WriteBufferSize,
		CheckOrigin:     h.checkOrigin,
	}
	engine.SetNotificationHandler(h.onNotification)
	return h
}

func (h *Hub) checkOrigin(r *http.Request) bool {
	origins := h.cfg.WebSocket.AllowedOrigins
	if len(origins) == 0 {
		return true
	}
	return slices.Contains(origins, r.Header.Get("Origin"))
}

// Run serves unregister requests until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			h.logger.Debug("client unregistered", zap.String("client_id", client.id))

		case <-ctx.Done():
			close(h.done)
			h.mu.Lock()
			for client := range h.clients {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			return
		}
	}
}

// ServeHTTP upgrades /ws?game=<id> requests.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	gameID := r.URL.Query().Get("game")
	if gameID == "" {
		http.Error(w, "missing game parameter", http.StatusBadRequest)
		return
	}
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := &Client{
		id:     uuid.NewString(),
		gameID: gameID,
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
	}
	h.mu.Lock()
	h.clients[client] = true
	h.mu.Unlock()
	h.logger.Debug("client registered",
		zap.String("client_id", client.id),
		zap.String("game_id", gameID),
	)

	go h.writePump(client)
	go h.readPump(client)

	if snap, ok := h.lookup(r.Context(), gameID); ok {
		h.sendTo(client, OutMessage{Type: MsgFrame, GameID: gameID, Snapshot: &snap})
	}
}

// lookup returns the hosted snapshot of gameID, resuming it from the archive
// when it is not hosted yet.
func (h *Hub) lookup(ctx context.Context, gameID string) (game.Snapshot, bool) {
	snap, err := h.engine.GetSnapshot(gameID)
	if err == nil {
		return snap, true
	}
	if h.archive == nil || !errors.Is(err, game.ErrGameNotFound) {
		return game.Snapshot{}, false
	}

	record, err := h.archive.Latest(ctx, gameID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			h.logger.Warn("failed to read archive", zap.String("game_id", gameID), zap.Error(err))
		}
		return game.Snapshot{}, false
	}
	snap, err = game.UnmarshalSnapshot(record.Data)
	if err != nil {
		h.logger.Warn("archived snapshot unreadable", zap.String("game_id", gameID), zap.Error(err))
		return game.Snapshot{}, false
	}
	if err := h.engine.RestoreGame(gameID, snap); err != nil && !errors.Is(err, game.ErrGameExists) {
		return game.Snapshot{}, false
	}
	snap, err = h.engine.GetSnapshot(gameID)
	return snap, err == nil
}

func (h *Hub) readPump(c *Client) {
	defer func() {
		select {
		case h.unregister <- c:
		case <-h.done:
		}
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("websocket read error", zap.String("client_id", c.id), zap.Error(err))
			}
			return
		}

		var msg InMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			h.sendError(c, fmt.Errorf("malformed message: %w", err))
			continue
		}
		if err := h.handleMessage(c, msg); err != nil {
			h.sendError(c, err)
		}
	}
}

func (h *Hub) writePump(c *Client) {
	ticker := time.NewTicker(h.pingInterval())
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (h *Hub) pingInterval() time.Duration {
	if h.cfg.WebSocket.PingInterval > 0 {
		return h.cfg.WebSocket.PingInterval
	}
	return 30 * time.Second
}

func (h *Hub) handleMessage(c *Client, msg InMessage) error {
	ctx := context.Background()
	switch msg.Type {
	case MsgStart:
		if msg.Config == nil {
			return errors.New("start needs a config")
		}
		snap, err := h.engine.StartGame(ctx, c.gameID, *msg.Config)
		if err != nil {
			return err
		}
		h.broadcast(c.gameID, OutMessage{Type: MsgFrame, GameID: c.gameID, Snapshot: &snap})

	case MsgEvent:
		if msg.Event == nil {
			return errors.New("event message without event")
		}
		if msg.Event.Type.IsPrivileged() && !h.cfg.AllowForceContext {
			h.logger.Warn("privileged event refused",
				zap.String("client_id", c.id),
				zap.String("event", string(msg.Event.Type)),
			)
			return fmt.Errorf("event %s is not allowed", msg.Event.Type)
		}
		frames, err := h.engine.ProcessEvent(ctx, c.gameID, *msg.Event)
		if err != nil {
			return err
		}
		for i := range frames {
			h.broadcast(c.gameID, OutMessage{
				Type:     MsgFrame,
				GameID:   c.gameID,
				Delay:    frames[i].Delay.Milliseconds(),
				Snapshot: &frames[i].Snapshot,
			})
		}

	case MsgUndo:
		snap, err := h.engine.Undo(c.gameID)
		if err != nil {
			return err
		}
		h.broadcast(c.gameID, OutMessage{Type: MsgFrame, GameID: c.gameID, Snapshot: &snap})

	default:
		return fmt.Errorf("unknown message type %q", msg.Type)
	}
	return nil
}

func (h *Hub) onNotification(n game.GameNotification) {
	if n.Type != "GAME_OVER" {
		return
	}
	result, _ := n.Data["state"].(string)
	h.broadcast(n.GameID, OutMessage{Type: MsgGameOver, GameID: n.GameID, Result: result})
}

func (h *Hub) sendError(c *Client, err error) {
	h.sendTo(c, OutMessage{Type: MsgError, GameID: c.gameID, Error: err.Error()})
}

func (h *Hub) sendTo(c *Client, msg OutMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("failed to encode message", zap.Error(err))
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	if !h.clients[c] {
		return
	}
	select {
	case c.send <- data:
	default:
		h.logger.Warn("client send buffer full", zap.String("client_id", c.id))
	}
}

// broadcast sends msg to every client watching gameID.
func (h *Hub) broadcast(gameID string, msg OutMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("failed to encode message", zap.Error(err))
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients {
		if client.gameID != gameID {
			continue
		}
		select {
		case client.send <- data:
		default:
			h.logger.Warn("client send buffer full", zap.String("client_id", client.id))
		}
	}
}

// StartWebSocketServer serves the hub at /ws until ctx is done.
func StartWebSocketServer(ctx context.Context, cfg config.WebSocketConfig, hub *Hub, logger *zap.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/ws", hub)
	srv := &http.Server{
		Addr:              cfg.Address,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go hub.Run(ctx)
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	logger.Info("starting WebSocket server", zap.String("address", cfg.Address))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
