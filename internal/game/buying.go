package game

import (
	"slices"

	"github.com/helcomsecretariat/ecosfera-baltica-digital-sub000/internal/game/ability"
	"github.com/helcomsecretariat/ecosfera-baltica-digital-sub000/internal/game/counters"
	"github.com/helcomsecretariat/ecosfera-baltica-digital-sub000/internal/game/effects"
	"github.com/helcomsecretariat/ecosfera-baltica-digital-sub000/internal/game/rules"
	"github.com/helcomsecretariat/ecosfera-baltica-digital-sub000/internal/game/state"
)

// buying handles the active player's free actions. Every accepted action
// returns to main so the ladder runs again.
func (m *Machine) buying(snap Snapshot, ev rules.Event) (Snapshot, bool) {
	s := snap.Context
	var ok bool
	switch ev.Type {
	case rules.EventClickMarketDeck:
		if ev.Family != rules.FamilyElement {
			return snap, false
		}
		s, ok = borrow(s, ev.Name)
	case rules.EventClickBorrowed:
		s, ok = giveBack(s, ev.UID)
	case rules.EventClickHandCard:
		s, ok = togglePlay(s, ev.UID)
	case rules.EventClickMarketTable:
		s, ok = buy(s, ev.Family, ev.UID)
	case rules.EventClickAcquiredPolicy:
		s, ok = effects.ActivateAcquired(s, ev.UID)
	case rules.EventClickAbilityToken:
		run, found := ability.ForToken(s, ev.UID)
		if !found {
			return snap, false
		}
		next, run := ability.Enter(s, run)
		snap.Context = next
		return m.afterAbility(snap, run), true
	case rules.EventClickHandCardAbility:
		run, found := ability.ForCard(s, ev.UID)
		if !found {
			return snap, false
		}
		snap.Ability = &run
		snap.Value = rules.StateCardAbility
		return snap, true
	case rules.EventEndTurn:
		snap.Value = rules.StateCheckingEndHand
		return snap, true
	}
	if !ok {
		return snap, false
	}
	snap.Context = s
	snap.Value = rules.StateMain
	return snap, true
}

// borrow takes one element of name from the element market for this turn.
func borrow(s state.GameState, name string) (state.GameState, bool) {
	if !rules.CanBorrow(s, name) {
		return s, false
	}
	m, card, ok := s.ElementMarket.TakeFromDeckFunc(func(c state.Card) bool { return c.Name == name })
	if !ok {
		return s, false
	}
	s.ElementMarket = m
	s.Turn.BorrowedElement = &card
	return s, true
}

// giveBack returns the unused borrowed element.
func giveBack(s state.GameState, uid string) (state.GameState, bool) {
	b := s.Turn.BorrowedElement
	if b == nil || b.UID != uid {
		return s, false
	}
	s.ElementMarket = s.ElementMarket.ReturnToDeck(*b)
	s.Turn.BorrowedElement = nil
	return s, true
}

func togglePlay(s state.GameState, uid string) (state.GameState, bool) {
	if !rules.CanPlay(s, uid) {
		return s, false
	}
	if s.Turn.IsPlayed(uid) {
		s.Turn = s.Turn.Unplay(uid)
	} else {
		s.Turn = s.Turn.Play(uid)
	}
	return s, true
}

func buy(s state.GameState, family rules.Family, uid string) (state.GameState, bool) {
	var t state.CardType
	var payment []string
	var stat counters.CounterType
	switch family {
	case rules.FamilyPlant:
		plant, i := state.Find(s.PlantMarket.Table, uid)
		if i < 0 {
			return s, false
		}
		var ok bool
		if payment, ok = rules.PlantPayment(s, plant); !ok {
			return s, false
		}
		t, stat = state.CardPlant, counters.CounterPlantsBought
	case rules.FamilyAnimal:
		animal, i := state.Find(s.AnimalMarket.Table, uid)
		if i < 0 {
			return s, false
		}
		var ok bool
		if payment, ok = rules.AnimalPayment(s, animal); !ok {
			return s, false
		}
		t, stat = state.CardAnimal, counters.CounterAnimalsBought
	default:
		return s, false
	}

	// The borrowed element joins the hand before it is spent.
	if b := s.Turn.BorrowedElement; b != nil && slices.Contains(payment, b.UID) {
		s = s.WithActivePlayer(func(p state.PlayerState) state.PlayerState { return p.AddToHand(*b) })
		s.Turn.BorrowedCards = state.AddUID(s.Turn.BorrowedCards, b.UID)
		s.Turn.BorrowedElement = nil
	}
	s.Turn = s.Turn.Exhaust(payment...)

	m, _ := s.Market(t)
	m, card, _ := m.ReplaceFromTable(uid)
	s = s.WithMarket(t, m)
	s = s.WithActivePlayer(func(p state.PlayerState) state.PlayerState { return p.AddToHand(card) })
	s = s.Inc(stat)
	s.Turn.BoughtOrUnlocked = true
	return s, true
}
