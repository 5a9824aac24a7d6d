package deck

import (
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/helcomsecretariat/ecosfera-baltica-digital-sub000/internal/game/cost"
	"github.com/helcomsecretariat/ecosfera-baltica-digital-sub000/internal/game/state"
)

// namespace scopes every instance id. Ids are UUIDv5 over seed, family, name and
// copy index, so the same seed always yields the same ids.
var namespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("ecosfera-baltica/cards"))

// PlayerInstances is one player's starting material.
type PlayerInstances struct {
	UID       string
	Name      string
	Deck      []state.Card
	Abilities []state.AbilityTile
}

// Instances are the concrete, not yet shuffled, pieces of one game.
type Instances struct {
	Plants      []state.Card
	Animals     []state.Card
	Elements    []state.Card
	Disasters   []state.Card
	Policies    []state.Card
	Habitats    []state.HabitatTile
	Extinctions []state.ExtinctionTile
	Players     []PlayerInstances
	Rules       state.Rules
}

// Count returns the number of pieces dealt, ability tokens included.
func (in Instances) Count() int {
	n := len(in.Plants) + len(in.Animals) + len(in.Elements) + len(in.Disasters) +
		len(in.Policies) + len(in.Habitats) + len(in.Extinctions)
	for _, p := range in.Players {
		n += len(p.Deck) + len(p.Abilities)
	}
	return n
}

type ids struct {
	seed string
}

func (g ids) next(family, name string, i int) string {
	return uuid.NewSHA1(namespace, []byte(fmt.Sprintf("%s/%s/%s/%d", g.seed, family, name, i))).String()
}

// ElementCount applies the difficulty penalty to a base element count.
// At least one card of each element always remains.
func (c *Config) ElementCount(base, difficulty int) int {
	return max(1, base-(difficulty-c.Difficulty.Min)*c.Difficulty.ElementPenalty)
}

// CheckGame verifies that gc can be dealt from this deck.
func (c *Config) CheckGame(gc state.GameConfig) error {
	var errs []error
	if gc.PlayersCount < 1 || gc.PlayersCount > c.MaxPlayers {
		errs = append(errs, &ConfigError{Section: "game", Name: "playersCount",
			Err: fmt.Errorf("%w: %d players, allowed 1..%d", ErrMalformed, gc.PlayersCount, c.MaxPlayers)})
	}
	if gc.Difficulty < c.Difficulty.Min || gc.Difficulty > c.Difficulty.Max {
		errs = append(errs, &ConfigError{Section: "game", Name: "difficulty",
			Err: fmt.Errorf("%w: %d, allowed %d..%d", ErrMalformed, gc.Difficulty, c.Difficulty.Min, c.Difficulty.Max)})
	}
	if len(gc.PlayerNames) > gc.PlayersCount {
		errs = append(errs, &ConfigError{Section: "game", Name: "playerNames",
			Err: fmt.Errorf("%w: %d names for %d players", ErrMalformed, len(gc.PlayerNames), gc.PlayersCount)})
	}
	return errors.Join(errs...)
}

// Deal expands the deck into instances for gc. The deck must already be valid.
func (c *Config) Deal(gc state.GameConfig) (Instances, error) {
	if err := c.CheckGame(gc); err != nil {
		return Instances{}, err
	}

	g := ids{seed: gc.Seed}
	in := Instances{
		Rules: state.Rules{
			HandSize:       c.PerPlayer.HandSize,
			MarketTable:    c.MarketTable,
			ExtinctionsMax: c.Extinctions.Count,
		},
	}

	for _, p := range c.Plants {
		parsed, err := cost.ParseCost(p.Cost)
		if err != nil {
			return Instances{}, &ConfigError{Section: "plants", Name: p.Name, Err: fmt.Errorf("%w: %v", ErrMalformed, err)}
		}
		for i := 0; i < p.Count; i++ {
			in.Plants = append(in.Plants, state.Card{
				UID:       g.next("plant", p.Name, i),
				Type:      state.CardPlant,
				Name:      p.Name,
				Habitats:  p.Habitats,
				Abilities: abilityNames(p.Abilities),
				Elements:  parsed.Names(),
				Subtype:   p.Subtype,
			})
		}
	}

	for _, a := range c.Animals {
		for i := 0; i < a.Count; i++ {
			in.Animals = append(in.Animals, state.Card{
				UID:       g.next("animal", a.Name, i),
				Type:      state.CardAnimal,
				Name:      a.Name,
				Habitats:  a.Habitats,
				Abilities: abilityNames(a.Abilities),
				Subtype:   a.Subtype,
			})
		}
	}

	for _, e := range c.Elements {
		n := c.ElementCount(e.Count, gc.Difficulty)
		for i := 0; i < n; i++ {
			in.Elements = append(in.Elements, elementCard(g.next("element", e.Name, i), e.Name))
		}
	}

	for _, d := range c.Disasters {
		n := d.Count + d.PerPlayer*gc.PlayersCount
		for i := 0; i < n; i++ {
			in.Disasters = append(in.Disasters, state.Card{
				UID:  g.next("disaster", d.Name, i),
				Type: state.CardDisaster,
				Name: d.Name,
			})
		}
	}

	if gc.UseSpecialCards {
		for _, p := range c.Policies {
			for i := 0; i < p.Count; i++ {
				attrs := &state.PolicyAttrs{
					Effect: state.PolicyEffect(p.Effect),
					Theme:  p.Theme,
					Usage:  state.PolicyUsage(p.Usage),
				}
				if p.Duration != nil {
					attrs.Duration = &state.Duration{DelayTurns: p.Duration.DelayTurns, ActiveTurns: p.Duration.ActiveTurns}
				}
				in.Policies = append(in.Policies, state.Card{
					UID:    g.next("policy", p.Name, i),
					Type:   state.CardPolicy,
					Name:   p.Name,
					Policy: attrs,
				})
			}
		}
	}

	for _, h := range c.Catalog.Habitats {
		in.Habitats = append(in.Habitats, state.HabitatTile{UID: g.next("habitat", h, 0), Name: h})
	}
	for i := 0; i < c.Extinctions.Count; i++ {
		in.Extinctions = append(in.Extinctions, state.ExtinctionTile{UID: g.next("extinction", "tile", i)})
	}

	for p := 0; p < gc.PlayersCount; p++ {
		family := fmt.Sprintf("player-%d", p)
		name := fmt.Sprintf("Player %d", p+1)
		if p < len(gc.PlayerNames) && gc.PlayerNames[p] != "" {
			name = gc.PlayerNames[p]
		}
		player := PlayerInstances{UID: g.next(family, "player", 0), Name: name}
		for _, el := range c.Catalog.Elements {
			for i := 0; i < c.PerPlayer.Elements[el]; i++ {
				player.Deck = append(player.Deck, elementCard(g.next(family+"/element", el, i), el))
			}
		}
		for _, a := range c.PerPlayer.Abilities {
			player.Abilities = append(player.Abilities, state.AbilityTile{
				UID:  g.next(family+"/ability", a, 0),
				Name: state.AbilityName(a),
			})
		}
		in.Players = append(in.Players, player)
	}

	return in, nil
}

func elementCard(uid, name string) state.Card {
	return state.Card{UID: uid, Type: state.CardElement, Name: name}
}

func abilityNames(names []string) []state.AbilityName {
	if len(names) == 0 {
		return nil
	}
	out := make([]state.AbilityName, len(names))
	for i, n := range names {
		out[i] = state.AbilityName(n)
	}
	return out
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
