package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helcomsecretariat/ecosfera-baltica-digital-sub000/internal/game/state"
)

func element(uid, name string) state.Card {
	return state.Card{UID: uid, Type: state.CardElement, Name: name}
}

func animal(uid string, habitats ...string) state.Card {
	return state.Card{UID: uid, Type: state.CardAnimal, Name: uid, Habitats: habitats}
}

func plant(uid string, habitats ...string) state.Card {
	return state.Card{UID: uid, Type: state.CardPlant, Name: uid, Habitats: habitats}
}

func disaster(uid string) state.Card {
	return state.Card{UID: uid, Type: state.CardDisaster, Name: "storm"}
}

func withHand(hand ...state.Card) state.GameState {
	return state.GameState{
		Turn: state.NewTurn(1, "p1"),
		Players: []state.PlayerState{
			{UID: "p1", Hand: hand, Abilities: []state.AbilityTile{{UID: "t-move", Name: state.AbilityMove}, {UID: "t-plus", Name: state.AbilityPlus}}},
			{UID: "p2"},
		},
	}
}

func play(s state.GameState, uids ...string) state.GameState {
	for _, uid := range uids {
		s.Turn = s.Turn.Play(uid)
	}
	return s
}

func TestPlantPaymentNeedsEveryResource(t *testing.T) {
	target := state.Card{UID: "eelgrass", Type: state.CardPlant, Elements: []string{"nutrients", "sun"}}
	s := withHand(element("e1", "sun"), element("e2", "nutrients"), element("e3", "sun"))
	s.PlantMarket = state.Market[state.Card]{Table: []state.Card{target}}

	assert.False(t, CanBuyPlant(s, "eelgrass"), "nothing played")

	s = play(s, "e1")
	assert.False(t, CanBuyPlant(s, "eelgrass"), "only sun played")

	s = play(s, "e2", "e3")
	payment, ok := PlantPayment(s, target)
	require.True(t, ok)
	assert.ElementsMatch(t, []string{"e1", "e2"}, payment)
}

func TestPlantPaymentUsesBorrowedFirst(t *testing.T) {
	target := state.Card{UID: "wrack", Type: state.CardPlant, Elements: []string{"salinity", "sun"}}
	borrowed := element("b1", "sun")
	s := play(withHand(element("e1", "sun"), element("e2", "salinity")), "e1", "e2")
	s.Turn.BorrowedElement = &borrowed

	payment, ok := PlantPayment(s, target)
	require.True(t, ok)
	assert.Equal(t, []string{"b1", "e2"}, payment)
}

func TestPlantPaymentIgnoresExhausted(t *testing.T) {
	target := state.Card{UID: "p", Type: state.CardPlant, Elements: []string{"sun"}}
	s := play(withHand(element("e1", "sun")), "e1")
	s.Turn = s.Turn.Exhaust("e1")
	_, ok := PlantPayment(s, target)
	assert.False(t, ok)
}

func TestAnimalPaymentPrefersSpecificPlants(t *testing.T) {
	cod := animal("cod", "pelagic", "mud")
	s := play(withHand(
		plant("wide", "pelagic", "ice", "coast"),
		plant("narrow1", "pelagic"),
		plant("mid", "pelagic", "ice"),
		plant("narrow2", "pelagic"),
	), "wide", "narrow1", "mid", "narrow2")

	payment, ok := AnimalPayment(s, cod)
	require.True(t, ok)
	assert.Equal(t, []string{"narrow1", "narrow2"}, payment)
}

func TestAnimalPaymentNeedsTwoPlantsInOneHabitat(t *testing.T) {
	cod := animal("cod", "pelagic", "mud")
	s := play(withHand(plant("a", "pelagic"), plant("b", "mud")), "a", "b")
	_, ok := AnimalPayment(s, cod)
	assert.False(t, ok)

	s = play(withHand(plant("a", "pelagic"), plant("b", "mud"), plant("c", "mud", "coast")), "a", "b", "c")
	payment, ok := AnimalPayment(s, cod)
	require.True(t, ok)
	assert.Equal(t, []string{"b", "c"}, payment)
}

func habitats(names ...string) state.Market[state.HabitatTile] {
	var tiles []state.HabitatTile
	for _, n := range names {
		tiles = append(tiles, state.HabitatTile{UID: "h-" + n, Name: n})
	}
	return state.Market[state.HabitatTile]{Deck: tiles, Table: []state.HabitatTile{}}
}

func TestHabitatUnlockSharedHabitatOnly(t *testing.T) {
	s := play(withHand(
		animal("herring", "pelagic", "coast"),
		animal("porpoise", "pelagic"),
		animal("mussel", "rock", "mud"),
	), "herring", "porpoise", "mussel")
	s.HabitatMarket = habitats("pelagic", "coast", "rock", "mud")

	unlock, ok := HabitatUnlock(s)
	require.True(t, ok)
	assert.Equal(t, []string{"herring", "porpoise"}, unlock.Animals)
	require.Len(t, unlock.Tiles, 1)
	assert.Equal(t, "pelagic", unlock.Tiles[0].Name)
}

func TestHabitatUnlockIgnoresAcquired(t *testing.T) {
	s := play(withHand(animal("a", "pelagic"), animal("b", "pelagic")), "a", "b")
	s.HabitatMarket = habitats("coast")
	_, ok := HabitatUnlock(s)
	assert.False(t, ok)
}

func TestHabitatUnlockNeedsPlayedCards(t *testing.T) {
	s := play(withHand(animal("a", "pelagic"), animal("b", "pelagic")), "a")
	s.HabitatMarket = habitats("pelagic")
	_, ok := HabitatUnlock(s)
	assert.False(t, ok)
}

func TestElementalDisaster(t *testing.T) {
	assert.False(t, ElementalDisaster([]state.Card{element("1", "sun"), element("2", "sun")}))
	assert.True(t, ElementalDisaster([]state.Card{element("1", "sun"), element("2", "sun"), element("3", "sun")}))
	assert.False(t, ElementalDisaster([]state.Card{
		element("1", "sun"), element("2", "sun"), element("3", "sun"),
		disaster("d1"), disaster("d2"), disaster("d3"),
	}))
}

func TestRefreshablePair(t *testing.T) {
	s := withHand(animal("a", "pelagic"), animal("b", "pelagic", "ice"), animal("c", "rock"))
	_, ok := RefreshablePair(s)
	assert.False(t, ok, "no ability used")

	s = s.WithActivePlayer(func(p state.PlayerState) state.PlayerState {
		return p.WithAbility(state.AbilityTile{UID: "t-move", Name: state.AbilityMove, IsUsed: true})
	})
	key, ok := RefreshablePair(s)
	require.True(t, ok)
	assert.Equal(t, "a+b", key)
	assert.Equal(t, []string{"a", "b"}, PairMembers(key))

	s = s.WithActivePlayer(func(p state.PlayerState) state.PlayerState {
		p.RefreshedPairs = []string{key}
		return p
	})
	_, ok = RefreshablePair(s)
	assert.False(t, ok)
}

func TestGameWonAndLost(t *testing.T) {
	s := withHand()
	s.HabitatMarket = state.Market[state.HabitatTile]{Table: []state.HabitatTile{{UID: "h", Name: "ice", IsAcquired: true}}}
	assert.True(t, GameWon(s))
	s.HabitatMarket.Deck = []state.HabitatTile{{UID: "h2", Name: "mud"}}
	assert.False(t, GameWon(s))

	s.ExtinctMarket = state.Market[state.ExtinctionTile]{Deck: []state.ExtinctionTile{{UID: "x1"}}, Table: []state.ExtinctionTile{{UID: "x2"}}}
	assert.False(t, GameLost(s))
	s.ExtinctMarket.Deck = nil
	assert.True(t, GameLost(s))
}

func TestCanBorrowOncePerTurn(t *testing.T) {
	s := withHand()
	s.ElementMarket = state.Market[state.Card]{Deck: []state.Card{element("m1", "oxygen")}}
	assert.True(t, CanBorrow(s, "oxygen"))
	assert.False(t, CanBorrow(s, "sun"))

	s.Turn.BorrowedCards = []string{"m0"}
	assert.False(t, CanBorrow(s, "oxygen"))
}

func TestCanPlay(t *testing.T) {
	s := withHand(element("e1", "sun"), disaster("d1"))
	assert.True(t, CanPlay(s, "e1"))
	assert.False(t, CanPlay(s, "d1"))
	assert.False(t, CanPlay(s, "missing"))
	s.Turn = s.Turn.Exhaust("e1")
	assert.False(t, CanPlay(s, "e1"))
}

func TestCanUseToken(t *testing.T) {
	s := withHand(element("e1", "sun"))
	assert.True(t, CanUseToken(s, "t-move"))
	assert.False(t, CanUseToken(s, "t-plus"), "nothing to draw")

	s.Blockers.Ability = s.Blockers.Ability.With("noise")
	assert.False(t, CanUseToken(s, "t-move"))
}

func TestCardAbility(t *testing.T) {
	herring := animal("herring", "pelagic")
	herring.Abilities = []state.AbilityName{state.AbilityMove}
	s := withHand(herring, element("e1", "sun"))

	name, ok := CardAbility(s, "herring")
	require.True(t, ok)
	assert.Equal(t, state.AbilityMove, name)

	s.Turn = s.Turn.UseAbility("herring", state.AbilityMove)
	_, ok = CardAbility(s, "herring")
	assert.False(t, ok)
}
