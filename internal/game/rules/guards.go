package rules

import (
	"slices"
	"sort"
	"strings"

	"github.com/helcomsecretariat/ecosfera-baltica-digital-sub000/internal/game/cost"
	"github.com/helcomsecretariat/ecosfera-baltica-digital-sub000/internal/game/state"
)

// Escalation thresholds on disaster cards held in hand.
const (
	ExtinctionThreshold     = 2
	MassExtinctionThreshold = 3
	DisasterCap             = 3
	ElementalThreshold      = 3
	MassExtinctionTiles     = 3
)

// DisasterCount counts disaster cards in hand.
func DisasterCount(hand []state.Card) int {
	return len(state.CardsOfType(hand, state.CardDisaster))
}

// PlayedCards returns the active player's hand cards of type t that are played
// and not exhausted, in hand order.
func PlayedCards(s state.GameState, t state.CardType) []state.Card {
	var out []state.Card
	for _, c := range s.ActivePlayer().Hand {
		if c.Type == t && s.Turn.IsPlayed(c.UID) && !s.Turn.IsExhausted(c.UID) {
			out = append(out, c)
		}
	}
	return out
}

// ResourcePool lists the element cards available to pay a plant: the borrowed
// element first, then played hand elements.
func ResourcePool(s state.GameState) []cost.Resource {
	var pool []cost.Resource
	if b := s.Turn.BorrowedElement; b != nil {
		pool = append(pool, cost.Resource{UID: b.UID, Name: b.Name})
	}
	for _, c := range PlayedCards(s, state.CardElement) {
		pool = append(pool, cost.Resource{UID: c.UID, Name: c.Name})
	}
	return pool
}

// PlantPayment picks the element cards that pay for plant.
func PlantPayment(s state.GameState, plant state.Card) ([]string, bool) {
	return cost.FromNames(plant.Elements).Select(ResourcePool(s))
}

// CanBuyPlant reports whether the plant on the table can be bought now.
func CanBuyPlant(s state.GameState, uid string) bool {
	plant, i := state.Find(s.PlantMarket.Table, uid)
	if i < 0 {
		return false
	}
	_, ok := PlantPayment(s, plant)
	return ok
}

// AnimalPayment picks two played plants sharing one of the animal's habitats.
// Plants with the fewest habitats are spent first.
func AnimalPayment(s state.GameState, animal state.Card) ([]string, bool) {
	plants := PlayedCards(s, state.CardPlant)
	sort.SliceStable(plants, func(i, j int) bool {
		return len(plants[i].Habitats) < len(plants[j].Habitats)
	})
	for _, h := range animal.Habitats {
		var picked []string
		for _, p := range plants {
			if p.HasHabitat(h) {
				picked = append(picked, p.UID)
				if len(picked) == 2 {
					return picked, true
				}
			}
		}
	}
	return nil, false
}

// CanBuyAnimal reports whether the animal on the table can be bought now.
func CanBuyAnimal(s state.GameState, uid string) bool {
	animal, i := state.Find(s.AnimalMarket.Table, uid)
	if i < 0 {
		return false
	}
	_, ok := AnimalPayment(s, animal)
	return ok
}

// Unlock is the outcome of a habitat unlock.
type Unlock struct {
	Animals []string
	Tiles   []state.HabitatTile
}

func intersect(a, b []string) []string {
	var out []string
	for _, x := range a {
		if slices.Contains(b, x) && !slices.Contains(out, x) {
			out = append(out, x)
		}
	}
	return out
}

// HabitatUnlock finds the unacquired habitats shared by pairs of played animals.
// Only pairs whose shared habitats include an unacquired tile contribute.
func HabitatUnlock(s state.GameState) (Unlock, bool) {
	animals := PlayedCards(s, state.CardAnimal)
	open := map[string]bool{}
	for _, t := range s.HabitatMarket.Deck {
		open[t.Name] = true
	}

	var names []string
	var contributors []string
	for i := 0; i < len(animals); i++ {
		for j := i + 1; j < len(animals); j++ {
			shared := intersect(animals[i].Habitats, animals[j].Habitats)
			unlocks := false
			for _, h := range shared {
				if open[h] {
					unlocks = true
					if !slices.Contains(names, h) {
						names = append(names, h)
					}
				}
			}
			if unlocks {
				contributors = state.AddUID(contributors, animals[i].UID)
				contributors = state.AddUID(contributors, animals[j].UID)
			}
		}
	}
	if len(names) == 0 {
		return Unlock{}, false
	}

	var tiles []state.HabitatTile
	for _, t := range s.HabitatMarket.Deck {
		if slices.Contains(names, t.Name) {
			tiles = append(tiles, t)
		}
	}
	return Unlock{Animals: contributors, Tiles: tiles}, true
}

// ElementalDisaster reports whether the hand holds ElementalThreshold elements of
// one name while below the disaster cap.
func ElementalDisaster(hand []state.Card) bool {
	if DisasterCount(hand) >= DisasterCap {
		return false
	}
	counts := map[string]int{}
	for _, c := range state.CardsOfType(hand, state.CardElement) {
		counts[c.Name]++
		if counts[c.Name] >= ElementalThreshold {
			return true
		}
	}
	return false
}

// PairKey identifies an unordered pair of cards.
func PairKey(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return a + "+" + b
}

// RefreshablePair returns a pair of habitat-sharing animals in the active hand
// not yet spent on a refresh, provided some ability token is used.
func RefreshablePair(s state.GameState) (string, bool) {
	p := s.ActivePlayer()
	if !p.HasUsedAbility() {
		return "", false
	}
	animals := state.CardsOfType(p.Hand, state.CardAnimal)
	for i := 0; i < len(animals); i++ {
		for j := i + 1; j < len(animals); j++ {
			if len(intersect(animals[i].Habitats, animals[j].Habitats)) == 0 {
				continue
			}
			key := PairKey(animals[i].UID, animals[j].UID)
			if !slices.Contains(p.RefreshedPairs, key) {
				return key, true
			}
		}
	}
	return "", false
}

// PairMembers splits a pair key.
func PairMembers(key string) []string {
	return strings.SplitN(key, "+", 2)
}

// GameWon reports whether every habitat tile is acquired.
func GameWon(s state.GameState) bool {
	m := s.HabitatMarket
	if len(m.Deck) > 0 || len(m.Table) == 0 {
		return false
	}
	for _, t := range m.Table {
		if !t.IsAcquired {
			return false
		}
	}
	return true
}

// GameLost reports whether every extinction tile is on the table.
func GameLost(s state.GameState) bool {
	return len(s.ExtinctMarket.Deck) == 0 && len(s.ExtinctMarket.Table) > 0
}

// CanBorrow reports whether an element of name may be borrowed this turn.
func CanBorrow(s state.GameState, name string) bool {
	if s.Turn.BorrowedElement != nil || len(s.Turn.BorrowedCards) > 0 {
		return false
	}
	return slices.ContainsFunc(s.ElementMarket.Deck, func(c state.Card) bool { return c.Name == name })
}

// CanPlay reports whether the active player may toggle uid as played.
func CanPlay(s state.GameState, uid string) bool {
	c, ok := s.HandCard(uid)
	if !ok || c.Type == state.CardDisaster || c.Type == state.CardPolicy {
		return false
	}
	return !s.Turn.IsExhausted(uid)
}

// MovableCards lists the hand cards a move ability may pick, excluding the piece itself.
func MovableCards(s state.GameState, piece string) []state.Card {
	var out []state.Card
	for _, c := range s.ActivePlayer().Hand {
		if c.UID != piece && !s.Turn.IsExhausted(c.UID) {
			out = append(out, c)
		}
	}
	return out
}

// AbilityHasTarget reports whether ability name could do anything right now.
func AbilityHasTarget(s state.GameState, name state.AbilityName, piece string) bool {
	p := s.ActivePlayer()
	switch name {
	case state.AbilityPlus:
		return len(p.Deck)+len(p.Discard) > 0
	case state.AbilityRefresh:
		return s.AnimalMarket.Size() > 0 || s.PlantMarket.Size() > 0
	case state.AbilityMove:
		return len(MovableCards(s, piece)) > 0
	case state.AbilitySpecial:
		return s.Config.UseSpecialCards && len(s.PolicyMarket.Deck) > 0
	}
	return false
}

// CanUseToken reports whether the active player may start the token uid.
func CanUseToken(s state.GameState, uid string) bool {
	if s.Blockers.Ability.IsBlocked() {
		return false
	}
	token, ok := s.ActivePlayer().Ability(uid)
	if !ok || token.IsUsed {
		return false
	}
	return AbilityHasTarget(s, token.Name, uid)
}

// CardAbility returns the first ability of hand card uid that is still usable.
func CardAbility(s state.GameState, uid string) (state.AbilityName, bool) {
	if s.Blockers.Ability.IsBlocked() {
		return "", false
	}
	c, ok := s.HandCard(uid)
	if !ok || s.Turn.IsExhausted(uid) {
		return "", false
	}
	for _, name := range c.Abilities {
		if !s.Turn.HasUsedAbility(uid, name) && AbilityHasTarget(s, name, uid) {
			return name, true
		}
	}
	return "", false
}
