package game

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/helcomsecretariat/ecosfera-baltica-digital-sub000/internal/game/rules"
	"github.com/helcomsecretariat/ecosfera-baltica-digital-sub000/internal/game/state"
)

func turnSnapshot(n int) Snapshot {
	return Snapshot{Value: rules.StateBuying, Context: state.GameState{Turn: state.NewTurn(n, "p1")}}
}

func TestNewReplay(t *testing.T) {
	replay := NewReplay("game-123")
	assert.Equal(t, "game-123", replay.GameID)
	assert.Equal(t, 0, replay.CurrentIndex)
	assert.Equal(t, 0, replay.Size())
}

func TestReplayNavigation(t *testing.T) {
	replay := NewReplay("game-123")
	for i := 1; i <= 5; i++ {
		replay.RecordState(turnSnapshot(i))
	}
	assert.Equal(t, 5, replay.Size())

	replay.Start()
	snap, ok := replay.Next()
	require.True(t, ok)
	assert.Equal(t, 1, snap.Context.Turn.Number)
	snap, ok = replay.Next()
	require.True(t, ok)
	assert.Equal(t, 2, snap.Context.Turn.Number)
	assert.Equal(t, 2, replay.CurrentIndex)

	// Previous steps back onto the snapshot Next just returned.
	snap, ok = replay.Previous()
	require.True(t, ok)
	assert.Equal(t, 2, snap.Context.Turn.Number)
	snap, ok = replay.Previous()
	require.True(t, ok)
	assert.Equal(t, 1, snap.Context.Turn.Number)
	_, ok = replay.Previous()
	assert.False(t, ok)

	snap, ok = replay.Skip(10)
	require.True(t, ok)
	assert.Equal(t, 5, snap.Context.Turn.Number)
	snap, ok = replay.Skip(-2)
	require.True(t, ok)
	assert.Equal(t, 3, snap.Context.Turn.Number)
	snap, ok = replay.Skip(-10)
	require.True(t, ok)
	assert.Equal(t, 1, snap.Context.Turn.Number)

	replay.Skip(10)
	replay.Next()
	_, ok = replay.Next()
	assert.False(t, ok)
}

func TestReplayGetStateAt(t *testing.T) {
	replay := NewReplay("game-123")
	for i := 1; i <= 3; i++ {
		replay.RecordState(turnSnapshot(i))
	}

	snap, ok := replay.GetStateAt(1)
	require.True(t, ok)
	assert.Equal(t, 2, snap.Context.Turn.Number)

	_, ok = replay.GetStateAt(-1)
	assert.False(t, ok)
	_, ok = replay.GetStateAt(3)
	assert.False(t, ok)

	_, ok = NewReplay("empty").Skip(1)
	assert.False(t, ok)
}

func TestReplaySaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	m := newMachine(t)
	snap := startGame(t, m, 2, true)

	replay := NewReplay("game-123")
	replay.RecordState(snap)
	replay.RecordState(m.Send(snap, rules.ClickHandCard(snap.Context.ActivePlayer().Hand[0].UID)))
	require.NoError(t, replay.SaveToFile(dir))

	_, err := os.Stat(filepath.Join(dir, "game-123.replay"))
	require.NoError(t, err)

	loaded, err := LoadReplayFromFile(dir, "game-123")
	require.NoError(t, err)
	assert.Equal(t, "game-123", loaded.GameID)
	require.Equal(t, 2, loaded.Size())
	for i := range replay.States {
		want, err := ComputeChecksum(replay.States[i])
		require.NoError(t, err)
		ok, err := VerifyChecksum(loaded.States[i], want)
		require.NoError(t, err)
		assert.True(t, ok, "state %d", i)
	}
}

func TestLoadReplayMissingFile(t *testing.T) {
	_, err := LoadReplayFromFile(t.TempDir(), "missing")
	assert.Error(t, err)
}

func TestReplayRecorder(t *testing.T) {
	dir := t.TempDir()
	recorder := NewReplayRecorder(zap.NewNop(), dir)

	recorder.RecordState("game-123", turnSnapshot(1))
	_, exists := recorder.GetReplay("game-123")
	assert.False(t, exists, "unrecorded games are ignored")

	recorder.StartRecording("game-123")
	assert.True(t, recorder.IsRecording("game-123"))
	for i := 1; i <= 3; i++ {
		recorder.RecordState("game-123", turnSnapshot(i))
	}
	replay, exists := recorder.GetReplay("game-123")
	require.True(t, exists)
	assert.Equal(t, 3, replay.Size())

	require.NoError(t, recorder.SaveReplay("game-123"))
	assert.False(t, recorder.IsRecording("game-123"))
	assert.Error(t, recorder.SaveReplay("game-123"))

	loaded, err := recorder.LoadReplay("game-123")
	require.NoError(t, err)
	assert.Equal(t, 3, loaded.Size())

	recorder.StartRecording("game-456")
	recorder.ClearReplay("game-456")
	assert.False(t, recorder.IsRecording("game-456"))
}
