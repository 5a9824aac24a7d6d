package effects

import (
	"github.com/helcomsecretariat/ecosfera-baltica-digital-sub000/internal/game/counters"
	"github.com/helcomsecretariat/ecosfera-baltica-digital-sub000/internal/game/rules"
	"github.com/helcomsecretariat/ecosfera-baltica-digital-sub000/internal/game/state"
)

// Default builds the registry of every policy card in check order.
func Default() *Registry {
	return NewRegistry(
		NewEffectBuilder("hazardous_substances").Destructive().Applying(cull(state.CardAnimal, "bird")).Build(),
		NewEffectBuilder("overfishing").Destructive().Applying(cull(state.CardAnimal, "fish")).Build(),
		NewEffectBuilder("eutrophication").Destructive().Applying(cull(state.CardPlant, "plant")).Build(),
		NewEffectBuilder("invasive_species").Destructive().
			Picking(Picker{
				Hint:       "pick an animal from your hand",
				Event:      rules.EventClickHandCard,
				Key:        byUID,
				Candidates: handAnimals,
			}).
			Applying(returnAnimal).Build(),
		NewEffectBuilder("oil_spill").Applying(placeExtinction).Build(),
		NewEffectBuilder("climate_change").Applying(drawDisaster).Build(),
		NewLasting("noise_pollution", BlockAbility, state.Duration{DelayTurns: 0, ActiveTurns: 2}),
		NewLasting("storm_surge", BlockTurn, state.Duration{DelayTurns: 1, ActiveTurns: 1}),
		NewEffectBuilder("hypoxia").Destructive().Applying(hypoxia).Build(),
		passive{name: ProtectionName},
		NewEffectBuilder("habitat_restoration").
			Picking(Picker{
				Hint:       "pick a habitat to restore",
				Event:      rules.EventClickMarketDeck,
				Key:        func(ev rules.Event) string { return ev.Name },
				Candidates: openHabitats,
			}).
			Applying(restoreHabitat).Build(),
		NewEffectBuilder("green_energy").Applying(refreshTokens).Build(),
		NewEffectBuilder("nutrient_reduction").Applying(returnDisasters).Build(),
		NewEffectBuilder("marine_protected_area").Applying(liftExtinction).Build(),
		NewEffectBuilder("environmental_monitoring").Applying(draw(2)).Build(),
		NewEffectBuilder("fisheries_management").
			Picking(Picker{
				Hint:       "pick an animal from the market",
				Event:      rules.EventClickMarketTable,
				Key:        byUID,
				Candidates: tableCards(state.CardAnimal),
			}).
			Applying(takeFromTable(state.CardAnimal)).Build(),
		NewEffectBuilder("seagrass_planting").
			Picking(Picker{
				Hint:       "pick a plant from the market",
				Event:      rules.EventClickMarketTable,
				Key:        byUID,
				Candidates: tableCards(state.CardPlant),
			}).
			Applying(takeFromTable(state.CardPlant)).Build(),
		NewEffectBuilder("scientific_research").Applying(both(recycle(state.CardPlant), recycle(state.CardAnimal))).Build(),
		NewEffectBuilder("offshore_wind").Applying(both(refreshTokens, drawDisaster)).Build(),
		NewEffectBuilder("coastal_tourism").Applying(both(draw(1), recycle(state.CardPlant))).Build(),
		passive{name: FundingName},
	)
}

func byUID(ev rules.Event) string { return ev.UID }

func both(first, second ApplyFunc) ApplyFunc {
	return func(s state.GameState, card state.Card, picked string) (state.GameState, []string) {
		s, a := first(s, card, picked)
		s, b := second(s, card, picked)
		return s, append(a, b...)
	}
}

// cull removes every table card of family t with subtype to the bottom of its
// deck and refills the table from the top.
func cull(t state.CardType, subtype string) ApplyFunc {
	return func(s state.GameState, _ state.Card, _ string) (state.GameState, []string) {
		m, _ := s.Market(t)
		m, removed := m.RemoveFromTableFunc(func(c state.Card) bool { return c.Subtype == subtype })
		if len(removed) == 0 {
			return s, nil
		}
		m = m.DrawToTable(len(removed)).ReturnToDeck(removed...)
		return s.WithMarket(t, m), state.UIDs(removed)
	}
}

func handAnimals(s state.GameState) []string {
	return state.UIDs(state.CardsOfType(s.ActivePlayer().Hand, state.CardAnimal))
}

func returnAnimal(s state.GameState, _ state.Card, picked string) (state.GameState, []string) {
	if picked == "" {
		return s, nil
	}
	p, card, ok := s.ActivePlayer().RemoveFromHand(picked)
	if !ok {
		return s, nil
	}
	s = s.WithPlayer(p)
	s.Turn = s.Turn.Forget(picked)
	s.AnimalMarket = s.AnimalMarket.ReturnToDeck(card)
	return s, []string{picked}
}

func placeExtinction(s state.GameState, _ state.Card, _ string) (state.GameState, []string) {
	m, tile, ok := s.ExtinctMarket.TakeFromDeck()
	if !ok {
		return s, nil
	}
	s.ExtinctMarket = m.AddToTable(tile)
	s = s.Inc(counters.CounterExtinctions)
	return s, []string{tile.UID}
}

func liftExtinction(s state.GameState, _ state.Card, _ string) (state.GameState, []string) {
	table := s.ExtinctMarket.Table
	if len(table) == 0 {
		return s, nil
	}
	tile := table[len(table)-1]
	m, _, _ := s.ExtinctMarket.TakeFromTable(tile.UID)
	s.ExtinctMarket = m.ReturnToDeck(tile)
	return s, []string{tile.UID}
}

func drawDisaster(s state.GameState, _ state.Card, _ string) (state.GameState, []string) {
	m, card, ok := s.DisasterMarket.TakeFromDeck()
	if !ok {
		return s, nil
	}
	s.DisasterMarket = m
	s = s.WithActivePlayer(func(p state.PlayerState) state.PlayerState { return p.AddToHand(card) })
	s = s.Inc(counters.CounterDisastersDrawn)
	return s, []string{card.UID}
}

func hypoxia(s state.GameState, _ state.Card, _ string) (state.GameState, []string) {
	s, removed := s.RemoveFromHands(func(c state.Card) bool {
		return c.Type == state.CardElement && c.Name == "oxygen"
	})
	s.ElementMarket = s.ElementMarket.ReturnToDeck(removed...)
	return s, state.UIDs(removed)
}

func openHabitats(s state.GameState) []string {
	var names []string
	for _, t := range s.HabitatMarket.Deck {
		names = append(names, t.Name)
	}
	return names
}

func restoreHabitat(s state.GameState, _ state.Card, picked string) (state.GameState, []string) {
	m, tile, ok := s.HabitatMarket.TakeFromDeckFunc(func(t state.HabitatTile) bool { return t.Name == picked })
	if !ok {
		return s, nil
	}
	tile.IsAcquired = true
	s.HabitatMarket = m.AddToTable(tile)
	s = s.Inc(counters.CounterHabitatsUnlocked)
	return s, []string{tile.UID}
}

func refreshTokens(s state.GameState, _ state.Card, _ string) (state.GameState, []string) {
	s = s.WithActivePlayer(state.PlayerState.RefreshAbilities)
	return s, state.UIDs(s.ActivePlayer().Abilities)
}

func returnDisasters(s state.GameState, _ state.Card, _ string) (state.GameState, []string) {
	p := s.ActivePlayer()
	disasters, rest := state.Partition(p.Hand, func(c state.Card) bool { return c.Type == state.CardDisaster })
	if len(disasters) == 0 {
		return s, nil
	}
	if rest == nil {
		rest = []state.Card{}
	}
	p.Hand = rest
	s = s.WithPlayer(p)
	s.DisasterMarket = s.DisasterMarket.ReturnToDeck(disasters...)
	return s, state.UIDs(disasters)
}

func draw(n int) ApplyFunc {
	return func(s state.GameState, _ state.Card, _ string) (state.GameState, []string) {
		before := len(s.ActivePlayer().Hand)
		s = s.Draw(s.Turn.Player, n)
		hand := s.ActivePlayer().Hand
		return s, state.UIDs(hand[before:])
	}
}

func tableCards(t state.CardType) func(state.GameState) []string {
	return func(s state.GameState) []string {
		m, _ := s.Market(t)
		return state.UIDs(m.Table)
	}
}

func takeFromTable(t state.CardType) ApplyFunc {
	return func(s state.GameState, _ state.Card, picked string) (state.GameState, []string) {
		m, _ := s.Market(t)
		m, card, ok := m.ReplaceFromTable(picked)
		if !ok {
			return s, nil
		}
		s = s.WithMarket(t, m)
		s = s.WithActivePlayer(func(p state.PlayerState) state.PlayerState { return p.AddToHand(card) })
		return s, []string{card.UID}
	}
}

func recycle(t state.CardType) ApplyFunc {
	return func(s state.GameState, _ state.Card, _ string) (state.GameState, []string) {
		m, _ := s.Market(t)
		m = m.Recycle(s.Rules.MarketTable)
		return s.WithMarket(t, m), state.UIDs(m.Table)
	}
}
