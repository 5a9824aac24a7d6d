// Package spawn builds the initial GameState from a deck and a game setup.
package spawn

import (
	"fmt"

	"github.com/helcomsecretariat/ecosfera-baltica-digital-sub000/internal/game/counters"
	"github.com/helcomsecretariat/ecosfera-baltica-digital-sub000/internal/game/deck"
	"github.com/helcomsecretariat/ecosfera-baltica-digital-sub000/internal/game/rng"
	"github.com/helcomsecretariat/ecosfera-baltica-digital-sub000/internal/game/state"
)

// Shuffle salts, one per zone, so every zone shuffles independently.
const (
	SaltPlants      = "plants"
	SaltAnimals     = "animals"
	SaltElements    = "elements"
	SaltDisasters   = "disasters"
	SaltHabitats    = "habitats"
	SaltExtinctions = "extinctions"
	SaltPolicies    = "policies"
)

// PlayerSalt is the shuffle salt of player i's starting deck.
func PlayerSalt(i int) string {
	return fmt.Sprintf("player-%d", i)
}

// Spawner deals games from one validated deck.
type Spawner struct {
	deck *deck.Config
}

// New validates cfg and returns a Spawner for it. isPolicy, when set, reports
// whether a policy name has an effect implementation.
func New(cfg *deck.Config, isPolicy func(string) bool) (*Spawner, error) {
	if cfg == nil {
		return nil, fmt.Errorf("spawn: nil deck")
	}
	if err := cfg.Validate(isPolicy); err != nil {
		return nil, err
	}
	return &Spawner{deck: cfg}, nil
}

// Deck returns the deck the spawner deals from.
func (s *Spawner) Deck() *deck.Config {
	return s.deck
}

// Spawn deals a fresh game for gc.
func (s *Spawner) Spawn(gc state.GameConfig) (state.GameState, error) {
	in, err := s.deck.Deal(gc)
	if err != nil {
		return state.GameState{}, err
	}

	seed := gc.Seed
	table := in.Rules.MarketTable

	players := make([]state.PlayerState, 0, len(in.Players))
	for i, p := range in.Players {
		player := state.PlayerState{
			UID:            p.UID,
			Name:           p.Name,
			Deck:           rng.Shuffle(p.Deck, rng.SubSeed(seed, PlayerSalt(i))),
			Hand:           []state.Card{},
			Discard:        []state.Card{},
			Abilities:      p.Abilities,
			RefreshedPairs: []string{},
		}
		player, _ = player.Draw(in.Rules.HandSize, rng.SubSeed(seed, PlayerSalt(i)+"-reshuffle"))
		players = append(players, player)
	}

	gs := state.GameState{
		Turn:           state.NewTurn(1, players[0].UID),
		Players:        players,
		PlantMarket:    state.NewMarket(rng.Shuffle(in.Plants, rng.SubSeed(seed, SaltPlants))).DrawToTable(table),
		AnimalMarket:   state.NewMarket(rng.Shuffle(in.Animals, rng.SubSeed(seed, SaltAnimals))).DrawToTable(table),
		ElementMarket:  state.NewMarket(rng.Shuffle(in.Elements, rng.SubSeed(seed, SaltElements))),
		DisasterMarket: state.NewMarket(rng.Shuffle(in.Disasters, rng.SubSeed(seed, SaltDisasters))),
		HabitatMarket:  state.NewMarket(rng.Shuffle(in.Habitats, rng.SubSeed(seed, SaltHabitats))),
		ExtinctMarket:  state.NewMarket(rng.Shuffle(in.Extinctions, rng.SubSeed(seed, SaltExtinctions))),
		PolicyMarket: state.PolicyMarket{
			Deck:      rng.Shuffle(in.Policies, rng.SubSeed(seed, SaltPolicies)),
			Table:     []state.Card{},
			Acquired:  []state.Card{},
			Active:    []state.Card{},
			Funding:   []state.Card{},
			Exhausted: []state.Card{},
		},
		Blockers:   state.Blockers{Turn: state.Blocker{Reasons: []string{}}, Ability: state.Blocker{Reasons: []string{}}},
		Config:     gc,
		Rules:      in.Rules,
		Statistics: counters.New(),
	}
	return gs, nil
}
