package ability

import (
	"fmt"

	"github.com/helcomsecretariat/ecosfera-baltica-digital-sub000/internal/game/rules"
	"github.com/helcomsecretariat/ecosfera-baltica-digital-sub000/internal/game/state"
)

// DestinationKind is where a moved card can go.
type DestinationKind string

const (
	// DestinationPlayer is another player's hand.
	DestinationPlayer DestinationKind = "PLAYER"
	// DestinationMarket is the bottom of a market deck of the card's family.
	DestinationMarket DestinationKind = "MARKET"
)

// Destination is one legal target of a move.
type Destination struct {
	Kind DestinationKind
	// Player is set for DestinationPlayer.
	Player string
	// Family is set for DestinationMarket.
	Family rules.Family
}

func (d Destination) String() string {
	if d.Kind == DestinationPlayer {
		return fmt.Sprintf("%s:%s", d.Kind, d.Player)
	}
	return fmt.Sprintf("%s:%s", d.Kind, d.Family)
}

// familyOf maps a card type to the market it returns to.
func familyOf(t state.CardType) (rules.Family, bool) {
	switch t {
	case state.CardAnimal:
		return rules.FamilyAnimal, true
	case state.CardPlant:
		return rules.FamilyPlant, true
	case state.CardElement:
		return rules.FamilyElement, true
	case state.CardDisaster:
		return rules.FamilyDisaster, true
	}
	return "", false
}

func cardType(f rules.Family) (state.CardType, bool) {
	switch f {
	case rules.FamilyAnimal:
		return state.CardAnimal, true
	case rules.FamilyPlant:
		return state.CardPlant, true
	case rules.FamilyElement:
		return state.CardElement, true
	case rules.FamilyDisaster:
		return state.CardDisaster, true
	}
	return "", false
}

// Destinations lists where card may be moved by the active player. Disasters
// only go back to their market when more than one player is seated.
func Destinations(s state.GameState, card state.Card) []Destination {
	var out []Destination
	multiplayer := len(s.Players) > 1
	if !(multiplayer && card.Type == state.CardDisaster) {
		for _, p := range s.Players {
			if p.UID != s.Turn.Player {
				out = append(out, Destination{Kind: DestinationPlayer, Player: p.UID})
			}
		}
	}
	if f, ok := familyOf(card.Type); ok {
		out = append(out, Destination{Kind: DestinationMarket, Family: f})
	}
	return out
}

// destinationOf reads the destination an input event names.
func destinationOf(ev rules.Event) (Destination, bool) {
	switch ev.Type {
	case rules.EventClickPlayerHand:
		return Destination{Kind: DestinationPlayer, Player: ev.UID}, true
	case rules.EventClickMarketDeck:
		return Destination{Kind: DestinationMarket, Family: ev.Family}, true
	}
	return Destination{}, false
}

// ValidateDestination checks that d is legal for card.
func ValidateDestination(s state.GameState, card state.Card, d Destination) error {
	for _, legal := range Destinations(s, card) {
		if legal == d {
			return nil
		}
	}
	return fmt.Errorf("%s cannot be moved to %s", card.Name, d)
}
