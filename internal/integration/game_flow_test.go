package integration

import (
	"context"
	"fmt"
	"slices"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/helcomsecretariat/ecosfera-baltica-digital-sub000/internal/game"
	"github.com/helcomsecretariat/ecosfera-baltica-digital-sub000/internal/game/deck"
	"github.com/helcomsecretariat/ecosfera-baltica-digital-sub000/internal/game/effects"
	"github.com/helcomsecretariat/ecosfera-baltica-digital-sub000/internal/game/rules"
	"github.com/helcomsecretariat/ecosfera-baltica-digital-sub000/internal/game/spawn"
	"github.com/helcomsecretariat/ecosfera-baltica-digital-sub000/internal/game/state"
	"github.com/helcomsecretariat/ecosfera-baltica-digital-sub000/internal/repository"
)

type gameEnv struct {
	engine   *game.Engine
	store    *repository.MemoryStore
	recorder *game.ReplayRecorder
	dir      string
	accepted int
}

func newGameEnv(t testing.TB) *gameEnv {
	t.Helper()
	logger := zaptest.NewLogger(t)

	cfg, err := deck.Default()
	if err != nil {
		t.Fatalf("failed to load deck: %v", err)
	}
	registry := effects.Default()
	spawner, err := spawn.New(cfg, registry.Has)
	if err != nil {
		t.Fatalf("failed to build spawner: %v", err)
	}
	machine := game.NewMachine(spawner, game.WithRegistry(registry), game.WithLogger(logger))

	env := &gameEnv{
		store: repository.NewMemoryStore(),
		dir:   t.TempDir(),
	}
	env.recorder = game.NewReplayRecorder(logger, env.dir)
	env.engine = game.NewEngine(logger, machine, game.WithStore(env.store), game.WithRecorder(env.recorder))
	env.engine.Bus().Subscribe(func(rules.Event) { env.accepted++ })
	return env
}

// send applies ev and reports whether the engine accepted it.
func (env *gameEnv) send(t testing.TB, gameID string, ev rules.Event) bool {
	t.Helper()
	frames, err := env.engine.ProcessEvent(context.Background(), gameID, ev)
	if err != nil {
		t.Fatalf("event %s failed: %v", ev.Type, err)
	}
	return len(frames) > 0
}

func (env *gameEnv) current(t testing.TB, gameID string) game.Snapshot {
	t.Helper()
	snap, err := env.engine.GetSnapshot(gameID)
	if err != nil {
		t.Fatalf("failed to read game %s: %v", gameID, err)
	}
	return snap
}

// playTurn plays the whole hand, buys whatever plants and animals the pool
// affords, then ends the turn and confirms every staged event.
func (env *gameEnv) playTurn(t testing.TB, gameID string) {
	t.Helper()
	snap := env.current(t, gameID)
	for _, c := range snap.Context.ActivePlayer().Hand {
		env.send(t, gameID, rules.ClickHandCard(c.UID))
		env.confirmAll(t, gameID)
	}

	for _, family := range []rules.Family{rules.FamilyPlant, rules.FamilyAnimal} {
		snap = env.current(t, gameID)
		if snap.Value != rules.StateBuying {
			break
		}
		market := snap.Context.PlantMarket
		if family == rules.FamilyAnimal {
			market = snap.Context.AnimalMarket
		}
		for _, uid := range state.UIDs(market.Table) {
			if env.send(t, gameID, rules.ClickMarketCard(family, uid)) {
				env.confirmAll(t, gameID)
				break
			}
		}
	}

	if snap = env.current(t, gameID); snap.Value.IsFinal() {
		return
	}
	if !env.send(t, gameID, rules.EndTurn()) {
		t.Fatalf("end turn rejected in %s", env.current(t, gameID).Value)
	}
	env.confirmAll(t, gameID)
}

func (env *gameEnv) confirmAll(t testing.TB, gameID string) {
	t.Helper()
	for i := 0; env.current(t, gameID).Value == rules.StateStagingEvent; i++ {
		if i == 20 {
			t.Fatalf("staged events never cleared")
		}
		env.send(t, gameID, rules.Confirm())
	}
}

func startGame(t testing.TB, env *gameEnv, gameID, seed string, players int) game.Snapshot {
	t.Helper()
	snap, err := env.engine.StartGame(context.Background(), gameID, state.GameConfig{
		Seed:         seed,
		PlayersCount: players,
		Difficulty:   1,
	})
	if err != nil {
		t.Fatalf("failed to start game: %v", err)
	}
	return snap
}

func TestFullGameFlow(t *testing.T) {
	env := newGameEnv(t)
	ctx := context.Background()
	start := startGame(t, env, "flow", "integration-flow", 2)
	total := len(start.Context.AllUIDs())

	turns := 0
	for ; turns < 25 && !env.current(t, "flow").Value.IsFinal(); turns++ {
		env.playTurn(t, "flow")
		snap := env.current(t, "flow")
		if got := len(snap.Context.AllUIDs()); got != total {
			t.Fatalf("turn %d: %d pieces, want %d", snap.Context.Turn.Number, got, total)
		}
	}
	final := env.current(t, "flow")
	t.Logf("stopped after %d turns in %s", turns, final.Value)
	if final.Context.Turn.Number < 2 {
		t.Fatalf("game never advanced past turn %d", final.Context.Turn.Number)
	}

	history, err := env.store.History(ctx, "flow")
	if err != nil {
		t.Fatalf("failed to read archive: %v", err)
	}
	if len(history) != env.accepted+1 {
		t.Fatalf("archived %d snapshots for %d accepted inputs", len(history), env.accepted)
	}
	latest := history[len(history)-1]
	if latest.State != final.Value.String() {
		t.Fatalf("latest archived state %s, want %s", latest.State, final.Value)
	}
	archived, err := game.UnmarshalSnapshot(latest.Data)
	if err != nil {
		t.Fatalf("archived snapshot unreadable: %v", err)
	}
	if !slices.Equal(archived.Context.AllUIDs(), final.Context.AllUIDs()) {
		t.Fatalf("archived snapshot lost pieces")
	}

	if err := env.engine.EndGame("flow"); err != nil {
		t.Fatalf("failed to end game: %v", err)
	}
	replay, err := game.LoadReplayFromFile(env.dir, "flow")
	if err != nil {
		t.Fatalf("failed to load replay: %v", err)
	}
	if replay.Size() != len(history) {
		t.Fatalf("replay has %d states, archive %d", replay.Size(), len(history))
	}
}

func TestSeededGamesAreReproducible(t *testing.T) {
	run := func(seed string) string {
		env := newGameEnv(t)
		startGame(t, env, "repro", seed, 3)
		for i := 0; i < 8 && !env.current(t, "repro").Value.IsFinal(); i++ {
			env.playTurn(t, "repro")
		}
		sum, err := game.ComputeChecksum(env.current(t, "repro"))
		if err != nil {
			t.Fatalf("failed to compute checksum: %v", err)
		}
		return sum.Hash
	}

	first := run("reef")
	if again := run("reef"); again != first {
		t.Fatalf("same seed diverged: %s != %s", first, again)
	}
	if other := run("lagoon"); other == first {
		t.Fatalf("different seeds produced the same game")
	}
}

func TestResumeFromArchiveContinuesIdentically(t *testing.T) {
	ctx := context.Background()
	original := newGameEnv(t)
	startGame(t, original, "live", "integration-resume", 2)
	for i := 0; i < 3; i++ {
		original.playTurn(t, "live")
	}

	record, err := original.store.Latest(ctx, "live")
	if err != nil {
		t.Fatalf("failed to read archive: %v", err)
	}
	snap, err := game.UnmarshalSnapshot(record.Data)
	if err != nil {
		t.Fatalf("failed to decode archive: %v", err)
	}
	resumed := newGameEnv(t)
	if err := resumed.engine.RestoreGame("live", snap); err != nil {
		t.Fatalf("failed to restore: %v", err)
	}

	for i := 0; i < 4; i++ {
		if original.current(t, "live").Value.IsFinal() {
			break
		}
		original.playTurn(t, "live")
		resumed.playTurn(t, "live")

		a, b := original.current(t, "live"), resumed.current(t, "live")
		where := fmt.Sprintf("turn %d", a.Context.Turn.Number)
		if a.Value != b.Value || a.Context.Turn.Number != b.Context.Turn.Number {
			t.Fatalf("%s: resumed game at %s turn %d", where, b.Value, b.Context.Turn.Number)
		}
		for p := range a.Context.Players {
			if !slices.Equal(state.UIDs(a.Context.Players[p].Hand), state.UIDs(b.Context.Players[p].Hand)) {
				t.Fatalf("%s: player %d hands differ", where, p)
			}
		}
		if !slices.Equal(state.UIDs(a.Context.PlantMarket.Table), state.UIDs(b.Context.PlantMarket.Table)) {
			t.Fatalf("%s: plant markets differ", where)
		}
	}
}
