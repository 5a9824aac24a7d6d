package state

import (
	"slices"

	"github.com/helcomsecretariat/ecosfera-baltica-digital-sub000/internal/game/rng"
)

// PlayerState holds one player's zones and ability tokens.
type PlayerState struct {
	UID       string        `json:"uid"`
	Name      string        `json:"name"`
	Deck      []Card        `json:"deck"`
	Hand      []Card        `json:"hand"`
	Discard   []Card        `json:"discard"`
	Abilities []AbilityTile `json:"abilities"`
	// RefreshedPairs are animal pair keys already spent on an ability refresh.
	RefreshedPairs []string `json:"refreshedPairs"`
}

// Draw moves up to n cards from the deck to the hand. When the deck runs out the
// discard pile is shuffled with seed and becomes the deck. reshuffled reports
// whether that happened.
func (p PlayerState) Draw(n int, seed string) (next PlayerState, reshuffled bool) {
	deck := p.Deck
	discard := p.Discard
	var drawn []Card
	for len(drawn) < n {
		if len(deck) == 0 {
			if len(discard) == 0 {
				break
			}
			deck = rng.Shuffle(discard, seed)
			discard = []Card{}
			reshuffled = true
		}
		drawn = append(drawn, deck[0])
		deck = deck[1:]
	}
	p.Deck = slices.Clone(deck)
	p.Discard = discard
	p.Hand = slices.Concat(p.Hand, drawn)
	return p, reshuffled
}

// RemoveFromHand takes uid out of the hand.
func (p PlayerState) RemoveFromHand(uid string) (PlayerState, Card, bool) {
	hand, card, ok := Without(p.Hand, uid)
	if !ok {
		return p, card, false
	}
	p.Hand = hand
	return p, card, true
}

// AddToHand appends cards to the hand.
func (p PlayerState) AddToHand(cards ...Card) PlayerState {
	p.Hand = slices.Concat(p.Hand, cards)
	return p
}

// DiscardHand moves every hand card matching keep==false to the discard pile and
// returns the cards that matched keep separately.
func (p PlayerState) DiscardHand(keep func(Card) bool) (PlayerState, []Card) {
	kept, discarded := Partition(p.Hand, keep)
	p.Discard = slices.Concat(p.Discard, discarded)
	p.Hand = []Card{}
	return p, kept
}

// Ability returns the token with uid.
func (p PlayerState) Ability(uid string) (AbilityTile, bool) {
	a, i := Find(p.Abilities, uid)
	return a, i >= 0
}

// WithAbility swaps the token sharing a's uid.
func (p PlayerState) WithAbility(a AbilityTile) PlayerState {
	p.Abilities = Replace(p.Abilities, a)
	return p
}

// RefreshAbilities marks every token unused.
func (p PlayerState) RefreshAbilities() PlayerState {
	abilities := slices.Clone(p.Abilities)
	for i := range abilities {
		abilities[i].IsUsed = false
	}
	p.Abilities = abilities
	return p
}

// HasUsedAbility reports whether any token is used.
func (p PlayerState) HasUsedAbility() bool {
	return slices.ContainsFunc(p.Abilities, func(a AbilityTile) bool { return a.IsUsed })
}
