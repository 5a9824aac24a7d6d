package spawn

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helcomsecretariat/ecosfera-baltica-digital-sub000/internal/game/deck"
	"github.com/helcomsecretariat/ecosfera-baltica-digital-sub000/internal/game/state"
)

func newSpawner(t *testing.T) *Spawner {
	t.Helper()
	cfg, err := deck.Default()
	require.NoError(t, err)
	s, err := New(cfg, nil)
	require.NoError(t, err)
	return s
}

func TestSpawnIsByteIdentical(t *testing.T) {
	s := newSpawner(t)
	for _, players := range []int{1, 2, 3, 4} {
		gc := state.GameConfig{Seed: "determinism", PlayersCount: players, Difficulty: 2, UseSpecialCards: true}
		a, err := s.Spawn(gc)
		require.NoError(t, err)
		b, err := s.Spawn(gc)
		require.NoError(t, err)

		aj, err := json.Marshal(a)
		require.NoError(t, err)
		bj, err := json.Marshal(b)
		require.NoError(t, err)
		assert.Equal(t, string(aj), string(bj), "players=%d", players)
	}
}

func TestSpawnDifferentSeedsDiffer(t *testing.T) {
	s := newSpawner(t)
	a, err := s.Spawn(state.GameConfig{Seed: "a", PlayersCount: 2, Difficulty: 1})
	require.NoError(t, err)
	b, err := s.Spawn(state.GameConfig{Seed: "b", PlayersCount: 2, Difficulty: 1})
	require.NoError(t, err)
	assert.NotEqual(t, state.UIDs(a.PlantMarket.Table), state.UIDs(b.PlantMarket.Table))
}

func TestSpawnLayout(t *testing.T) {
	s := newSpawner(t)
	gs, err := s.Spawn(state.GameConfig{Seed: "layout", PlayersCount: 2, Difficulty: 1, UseSpecialCards: true})
	require.NoError(t, err)

	assert.Len(t, gs.PlantMarket.Table, 4)
	assert.Len(t, gs.AnimalMarket.Table, 4)
	assert.Empty(t, gs.ElementMarket.Table)
	assert.Empty(t, gs.DisasterMarket.Table)
	assert.Empty(t, gs.HabitatMarket.Table)
	assert.Empty(t, gs.ExtinctMarket.Table)
	assert.Empty(t, gs.PolicyMarket.Table)
	assert.Len(t, gs.PolicyMarket.Deck, 24)

	require.Len(t, gs.Players, 2)
	for _, p := range gs.Players {
		assert.Len(t, p.Hand, 4)
		assert.Len(t, p.Deck, 1)
		assert.Len(t, p.Abilities, 3)
	}
	assert.Equal(t, gs.Players[0].UID, gs.Turn.Player)
	assert.Equal(t, state.PhaseDraw, gs.Turn.Phase)
	assert.Equal(t, 1, gs.Turn.Number)
}

func TestSpawnConservesInstances(t *testing.T) {
	s := newSpawner(t)
	gc := state.GameConfig{Seed: "count", PlayersCount: 3, Difficulty: 4, UseSpecialCards: true}
	in, err := s.Deck().Deal(gc)
	require.NoError(t, err)
	gs, err := s.Spawn(gc)
	require.NoError(t, err)
	assert.Len(t, gs.AllUIDs(), in.Count())
}

func TestNewRejectsInvalidDeck(t *testing.T) {
	cfg, err := deck.Default()
	require.NoError(t, err)
	cfg.Animals[0].Habitats = []string{"volcano"}

	_, err = New(cfg, nil)
	assert.ErrorIs(t, err, deck.ErrUnknownName)
}

func TestSpawnRejectsBadGame(t *testing.T) {
	s := newSpawner(t)
	_, err := s.Spawn(state.GameConfig{Seed: "x", PlayersCount: 0, Difficulty: 1})
	assert.ErrorIs(t, err, deck.ErrMalformed)
}
