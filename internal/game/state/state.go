package state

import (
	"fmt"
	"slices"
	"sort"

	"github.com/helcomsecretariat/ecosfera-baltica-digital-sub000/internal/game/counters"
	"github.com/helcomsecretariat/ecosfera-baltica-digital-sub000/internal/game/rng"
)

// GameConfig is the input chosen at game setup.
type GameConfig struct {
	Seed            string   `json:"seed"`
	PlayersCount    int      `json:"playersCount"`
	Difficulty      int      `json:"difficulty"`
	UseSpecialCards bool     `json:"useSpecialCards"`
	PlayerNames     []string `json:"playerNames,omitempty"`
}

// Rules are deck-derived constants fixed at spawn time.
type Rules struct {
	HandSize       int `json:"handSize"`
	MarketTable    int `json:"marketTable"`
	ExtinctionsMax int `json:"extinctionsMax"`
}

// Stage is a pending event the player has to confirm.
type Stage struct {
	EventType string   `json:"eventType"`
	Cause     []string `json:"cause,omitempty"`
	Effect    []string `json:"effect,omitempty"`
	Outcome   string   `json:"outcome,omitempty"`
}

// CommandBar is a pending multi-click instruction shown to the player.
type CommandBar struct {
	Command string `json:"command"`
	Hint    string `json:"hint,omitempty"`
}

// Blocker gates part of the flow while it has reasons.
type Blocker struct {
	Reasons []string `json:"reasons"`
}

// IsBlocked reports whether any reason is present.
func (b Blocker) IsBlocked() bool { return len(b.Reasons) > 0 }

// With adds a reason.
func (b Blocker) With(reason string) Blocker {
	return Blocker{Reasons: AddUID(b.Reasons, reason)}
}

// Without drops a reason.
func (b Blocker) Without(reason string) Blocker {
	return Blocker{Reasons: RemoveUID(b.Reasons, reason)}
}

// Blockers hold the turn and ability gates.
type Blockers struct {
	Turn    Blocker `json:"turn"`
	Ability Blocker `json:"ability"`
}

// GameState is the root snapshot. Values are never mutated in place; every
// helper returns a new GameState.
type GameState struct {
	Turn           Turn                   `json:"turn"`
	Players        []PlayerState          `json:"players"`
	PlantMarket    Market[Card]           `json:"plantMarket"`
	AnimalMarket   Market[Card]           `json:"animalMarket"`
	ElementMarket  Market[Card]           `json:"elementMarket"`
	DisasterMarket Market[Card]           `json:"disasterMarket"`
	HabitatMarket  Market[HabitatTile]    `json:"habitatMarket"`
	ExtinctMarket  Market[ExtinctionTile] `json:"extinctMarket"`
	PolicyMarket   PolicyMarket           `json:"policyMarket"`
	Stage          *Stage                 `json:"stage,omitempty"`
	CommandBar     *CommandBar            `json:"commandBar,omitempty"`
	Blockers       Blockers               `json:"blockers"`
	Config         GameConfig             `json:"config"`
	Rules          Rules                  `json:"rules"`
	Statistics     counters.Counters      `json:"statistics"`
}

// Player returns the player with uid.
func (s GameState) Player(uid string) (PlayerState, bool) {
	for _, p := range s.Players {
		if p.UID == uid {
			return p, true
		}
	}
	return PlayerState{}, false
}

// ActivePlayer returns the player whose turn it is.
func (s GameState) ActivePlayer() PlayerState {
	p, _ := s.Player(s.Turn.Player)
	return p
}

// NextPlayer returns the uid of the player after the active one.
func (s GameState) NextPlayer() string {
	for i, p := range s.Players {
		if p.UID == s.Turn.Player {
			return s.Players[(i+1)%len(s.Players)].UID
		}
	}
	if len(s.Players) > 0 {
		return s.Players[0].UID
	}
	return ""
}

// WithPlayer swaps the player sharing p's uid.
func (s GameState) WithPlayer(p PlayerState) GameState {
	players := slices.Clone(s.Players)
	for i := range players {
		if players[i].UID == p.UID {
			players[i] = p
		}
	}
	s.Players = players
	return s
}

// WithActivePlayer applies fn to the active player.
func (s GameState) WithActivePlayer(fn func(PlayerState) PlayerState) GameState {
	return s.WithPlayer(fn(s.ActivePlayer()))
}

// Inc bumps a statistic.
func (s GameState) Inc(name counters.CounterType) GameState {
	s.Statistics = s.Statistics.Inc(name)
	return s
}

// Draw has player draw n cards. A reshuffle of the discard pile is seeded from
// the game seed, the turn and the number of earlier reshuffles.
func (s GameState) Draw(player string, n int) GameState {
	p, ok := s.Player(player)
	if !ok {
		return s
	}
	seed := rng.SubSeed(s.Config.Seed, fmt.Sprintf("reshuffle-%s-%d-%d", player, s.Turn.Number, s.Statistics.Get(counters.CounterReshuffles)))
	p, reshuffled := p.Draw(n, seed)
	s = s.WithPlayer(p)
	if reshuffled {
		s = s.Inc(counters.CounterReshuffles)
	}
	return s
}

// RemoveFromHands takes every card matching pred out of every hand and
// forgets it in the turn bookkeeping.
func (s GameState) RemoveFromHands(pred func(Card) bool) (GameState, []Card) {
	var removed []Card
	players := slices.Clone(s.Players)
	for i, p := range players {
		match, rest := Partition(p.Hand, pred)
		if len(match) == 0 {
			continue
		}
		if rest == nil {
			rest = []Card{}
		}
		p.Hand = rest
		players[i] = p
		removed = append(removed, match...)
		s.Turn = s.Turn.Forget(UIDs(match)...)
	}
	s.Players = players
	return s, removed
}

// Market returns the card market of family t. Policy cards are not in a Market.
func (s GameState) Market(t CardType) (Market[Card], bool) {
	switch t {
	case CardAnimal:
		return s.AnimalMarket, true
	case CardPlant:
		return s.PlantMarket, true
	case CardElement:
		return s.ElementMarket, true
	case CardDisaster:
		return s.DisasterMarket, true
	}
	return Market[Card]{}, false
}

// WithMarket replaces the card market of family t.
func (s GameState) WithMarket(t CardType, m Market[Card]) GameState {
	switch t {
	case CardAnimal:
		s.AnimalMarket = m
	case CardPlant:
		s.PlantMarket = m
	case CardElement:
		s.ElementMarket = m
	case CardDisaster:
		s.DisasterMarket = m
	}
	return s
}

// HandCard finds uid in the active player's hand.
func (s GameState) HandCard(uid string) (Card, bool) {
	c, i := Find(s.ActivePlayer().Hand, uid)
	return c, i >= 0
}

// AllUIDs lists every card, tile and token id in every zone, sorted.
func (s GameState) AllUIDs() []string {
	var ids []string
	for _, m := range []Market[Card]{s.PlantMarket, s.AnimalMarket, s.ElementMarket, s.DisasterMarket} {
		ids = append(ids, UIDs(m.Deck)...)
		ids = append(ids, UIDs(m.Table)...)
	}
	ids = append(ids, UIDs(s.HabitatMarket.Deck)...)
	ids = append(ids, UIDs(s.HabitatMarket.Table)...)
	ids = append(ids, UIDs(s.ExtinctMarket.Deck)...)
	ids = append(ids, UIDs(s.ExtinctMarket.Table)...)
	ids = append(ids, UIDs(s.PolicyMarket.All())...)
	for _, p := range s.Players {
		ids = append(ids, UIDs(p.Deck)...)
		ids = append(ids, UIDs(p.Hand)...)
		ids = append(ids, UIDs(p.Discard)...)
		ids = append(ids, UIDs(p.Abilities)...)
	}
	if s.Turn.BorrowedElement != nil {
		ids = append(ids, s.Turn.BorrowedElement.UID)
	}
	sort.Strings(ids)
	return ids
}
