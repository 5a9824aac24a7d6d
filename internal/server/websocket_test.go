package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/helcomsecretariat/ecosfera-baltica-digital-sub000/internal/config"
	"github.com/helcomsecretariat/ecosfera-baltica-digital-sub000/internal/game"
	"github.com/helcomsecretariat/ecosfera-baltica-digital-sub000/internal/game/deck"
	"github.com/helcomsecretariat/ecosfera-baltica-digital-sub000/internal/game/effects"
	"github.com/helcomsecretariat/ecosfera-baltica-digital-sub000/internal/game/rules"
	"github.com/helcomsecretariat/ecosfera-baltica-digital-sub000/internal/game/spawn"
	"github.com/helcomsecretariat/ecosfera-baltica-digital-sub000/internal/game/state"
	"github.com/helcomsecretariat/ecosfera-baltica-digital-sub000/internal/repository"
)

type harness struct {
	engine *game.Engine
	store  *repository.MemoryStore
	server *httptest.Server
}

func newHarness(t *testing.T, cfg config.ServerConfig) *harness {
	t.Helper()
	logger := zaptest.NewLogger(t)
	deckCfg, err := deck.Default()
	require.NoError(t, err)
	reg := effects.Default()
	sp, err := spawn.New(deckCfg, reg.Has)
	require.NoError(t, err)

	store := repository.NewMemoryStore()
	machine := game.NewMachine(sp, game.WithRegistry(reg), game.WithLogger(logger), game.WithAnimationDelay(cfg.AnimationDelay))
	engine := game.NewEngine(logger, machine, game.WithStore(store))
	hub := NewHub(engine, store, cfg, logger)

	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	srv := httptest.NewServer(hub)
	t.Cleanup(func() {
		srv.Close()
		cancel()
	})
	return &harness{engine: engine, store: store, server: srv}
}

func (h *harness) dial(t *testing.T, gameID string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(h.server.URL, "http") + "/ws?game=" + gameID
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func read(t *testing.T, conn *websocket.Conn) OutMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var msg OutMessage
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

// readUntil skips messages until one of type kind arrives.
func readUntil(t *testing.T, conn *websocket.Conn, kind string) OutMessage {
	t.Helper()
	for i := 0; i < 64; i++ {
		if msg := read(t, conn); msg.Type == kind {
			return msg
		}
	}
	t.Fatalf("no %s message", kind)
	return OutMessage{}
}

var setup = state.GameConfig{Seed: "ws-test", PlayersCount: 2, Difficulty: 1}

func TestServeRejectsMissingGame(t *testing.T) {
	h := newHarness(t, config.ServerConfig{})
	resp, err := http.Get(h.server.URL + "/ws")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestStartAndPlay(t *testing.T) {
	h := newHarness(t, config.ServerConfig{AnimationDelay: 300 * time.Millisecond})
	conn := h.dial(t, "g1")

	require.NoError(t, conn.WriteJSON(InMessage{Type: MsgStart, Config: &setup}))
	start := read(t, conn)
	require.Equal(t, MsgFrame, start.Type)
	require.NotNil(t, start.Snapshot)
	assert.Equal(t, rules.StateBuying, start.Snapshot.Value)

	uid := start.Snapshot.Context.ActivePlayer().Hand[0].UID
	ev := rules.ClickHandCard(uid)
	require.NoError(t, conn.WriteJSON(InMessage{Type: MsgEvent, Event: &ev}))

	first := read(t, conn)
	second := read(t, conn)
	assert.Equal(t, rules.StateMain, first.Snapshot.Value)
	assert.Zero(t, first.Delay)
	assert.Equal(t, rules.StateBuying, second.Snapshot.Value)
	assert.Equal(t, int64(300), second.Delay)
	assert.True(t, second.Snapshot.Context.Turn.IsPlayed(uid))

	require.NoError(t, conn.WriteJSON(InMessage{Type: MsgUndo}))
	undone := read(t, conn)
	assert.False(t, undone.Snapshot.Context.Turn.IsPlayed(uid))
}

func TestErrorsAreReported(t *testing.T) {
	h := newHarness(t, config.ServerConfig{})
	conn := h.dial(t, "g1")

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{")))
	assert.Equal(t, MsgError, read(t, conn).Type)

	ev := rules.EndTurn()
	require.NoError(t, conn.WriteJSON(InMessage{Type: MsgEvent, Event: &ev}))
	msg := read(t, conn)
	assert.Equal(t, MsgError, msg.Type)
	assert.Contains(t, msg.Error, game.ErrGameNotFound.Error())

	require.NoError(t, conn.WriteJSON(InMessage{Type: "dance"}))
	assert.Equal(t, MsgError, read(t, conn).Type)
}

func TestForceContextNeedsPermission(t *testing.T) {
	patch := rules.MergeContext(json.RawMessage(`{"blockers":{"ability":{"reasons":["tooling"]}}}`))

	t.Run("refused", func(t *testing.T) {
		h := newHarness(t, config.ServerConfig{})
		conn := h.dial(t, "g1")
		require.NoError(t, conn.WriteJSON(InMessage{Type: MsgStart, Config: &setup}))
		read(t, conn)

		require.NoError(t, conn.WriteJSON(InMessage{Type: MsgEvent, Event: &patch}))
		assert.Equal(t, MsgError, read(t, conn).Type)
	})

	t.Run("allowed", func(t *testing.T) {
		h := newHarness(t, config.ServerConfig{AllowForceContext: true})
		conn := h.dial(t, "g1")
		require.NoError(t, conn.WriteJSON(InMessage{Type: MsgStart, Config: &setup}))
		read(t, conn)

		require.NoError(t, conn.WriteJSON(InMessage{Type: MsgEvent, Event: &patch}))
		msg := read(t, conn)
		require.Equal(t, MsgFrame, msg.Type)
		assert.Equal(t, []string{"tooling"}, msg.Snapshot.Context.Blockers.Ability.Reasons)
	})
}

func TestFramesReachEveryWatcher(t *testing.T) {
	h := newHarness(t, config.ServerConfig{})
	player := h.dial(t, "g1")
	require.NoError(t, player.WriteJSON(InMessage{Type: MsgStart, Config: &setup}))
	start := read(t, player)

	watcher := h.dial(t, "g1")
	joined := read(t, watcher)
	require.Equal(t, MsgFrame, joined.Type, "a late joiner gets the current snapshot")
	assert.Equal(t, start.Snapshot.Context.Turn, joined.Snapshot.Context.Turn)

	ev := rules.EndTurn()
	require.NoError(t, player.WriteJSON(InMessage{Type: MsgEvent, Event: &ev}))
	msg := readUntil(t, watcher, MsgFrame)
	assert.NotNil(t, msg.Snapshot)
}

func TestResumeFromArchive(t *testing.T) {
	h := newHarness(t, config.ServerConfig{})
	snap, err := h.engine.StartGame(context.Background(), "old", setup)
	require.NoError(t, err)
	require.NoError(t, h.engine.EndGame("old"))

	conn := h.dial(t, "old")
	msg := read(t, conn)
	require.Equal(t, MsgFrame, msg.Type)
	assert.Equal(t, snap.Context.Turn.Number, msg.Snapshot.Context.Turn.Number)
	assert.Equal(t, snap.Context.AllUIDs(), msg.Snapshot.Context.AllUIDs())
	assert.Contains(t, h.engine.Games(), "old")
}
