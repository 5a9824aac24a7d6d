package ability

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helcomsecretariat/ecosfera-baltica-digital-sub000/internal/game/counters"
	"github.com/helcomsecretariat/ecosfera-baltica-digital-sub000/internal/game/rules"
	"github.com/helcomsecretariat/ecosfera-baltica-digital-sub000/internal/game/state"
)

func tokens(prefix string) []state.AbilityTile {
	return []state.AbilityTile{
		{UID: prefix + "-move", Name: state.AbilityMove},
		{UID: prefix + "-refresh", Name: state.AbilityRefresh},
		{UID: prefix + "-plus", Name: state.AbilityPlus},
	}
}

func newState() state.GameState {
	mk := func(uid string, t state.CardType, name string) state.Card {
		return state.Card{UID: uid, Type: t, Name: name}
	}
	return state.GameState{
		Turn: state.NewTurn(1, "p1"),
		Players: []state.PlayerState{
			{
				UID: "p1",
				Hand: []state.Card{
					mk("sun-1", state.CardElement, "sun"),
					mk("storm-1", state.CardDisaster, "storm"),
					{UID: "seal-1", Type: state.CardAnimal, Name: "grey seal", Abilities: []state.AbilityName{state.AbilitySpecial, state.AbilityMove}},
				},
				Deck:      []state.Card{mk("ox-1", state.CardElement, "oxygen")},
				Discard:   []state.Card{},
				Abilities: tokens("p1"),
			},
			{UID: "p2", Hand: []state.Card{}, Abilities: tokens("p2")},
		},
		PlantMarket: state.Market[state.Card]{
			Deck:  []state.Card{mk("pl-3", state.CardPlant, "reed")},
			Table: []state.Card{mk("pl-1", state.CardPlant, "eelgrass"), mk("pl-2", state.CardPlant, "wrack")},
		},
		AnimalMarket:   state.Market[state.Card]{Deck: []state.Card{mk("an-1", state.CardAnimal, "cod")}},
		ElementMarket:  state.Market[state.Card]{Deck: []state.Card{mk("sun-9", state.CardElement, "sun")}},
		DisasterMarket: state.Market[state.Card]{Deck: []state.Card{}},
		PolicyMarket: state.PolicyMarket{
			Deck: []state.Card{
				{UID: "pol-1", Type: state.CardPolicy, Name: "green_energy", Policy: &state.PolicyAttrs{Effect: state.PolicyPositive, Usage: state.UsageSingle}},
			},
		},
		Rules:      state.Rules{HandSize: 4, MarketTable: 2},
		Config:     state.GameConfig{Seed: "ability", PlayersCount: 2, UseSpecialCards: true},
		Statistics: counters.New(),
	}
}

func start(t *testing.T, s state.GameState, token string) (state.GameState, Run) {
	t.Helper()
	run, ok := ForToken(s, token)
	require.True(t, ok)
	return Enter(s, run)
}

func tokenUsed(s state.GameState, uid string) bool {
	token, _ := s.ActivePlayer().Ability(uid)
	return token.IsUsed
}

func TestPlusDrawsAndCompletes(t *testing.T) {
	s, run := start(t, newState(), "p1-plus")
	assert.True(t, run.IsDone())
	assert.False(t, run.Cancelled)
	assert.Len(t, s.ActivePlayer().Hand, 4)
	assert.True(t, tokenUsed(s, "p1-plus"))
	assert.Equal(t, 1, s.Statistics.Get(counters.CounterAbilitiesUsed))
	assert.Nil(t, s.CommandBar)
}

func TestUsedTokenCannotStart(t *testing.T) {
	s, _ := start(t, newState(), "p1-plus")
	_, ok := ForToken(s, "p1-plus")
	assert.False(t, ok)
}

func TestAbilityBlockerStopsTokens(t *testing.T) {
	s := newState()
	s.Blockers.Ability = s.Blockers.Ability.With("noise")
	_, ok := ForToken(s, "p1-move")
	assert.False(t, ok)
	_, ok = ForCard(s, "seal-1")
	assert.False(t, ok)
}

func TestRefreshRecyclesPickedMarket(t *testing.T) {
	s, run := start(t, newState(), "p1-refresh")
	require.Equal(t, StepPickMarket, run.Step)
	require.NotNil(t, s.CommandBar)

	_, _, accepted := Step(s, run, rules.ClickMarketDeck(rules.FamilyElement, ""))
	assert.False(t, accepted)

	s, run, accepted = Step(s, run, rules.ClickMarketDeck(rules.FamilyPlant, ""))
	require.True(t, accepted)
	assert.True(t, run.IsDone())
	assert.Equal(t, []string{"pl-3", "pl-1"}, state.UIDs(s.PlantMarket.Table))
	assert.Equal(t, []string{"pl-2"}, state.UIDs(s.PlantMarket.Deck))
	assert.True(t, tokenUsed(s, "p1-refresh"))
}

func TestMoveToAnotherPlayer(t *testing.T) {
	s, run := start(t, newState(), "p1-move")
	require.Equal(t, StepPickSource, run.Step)

	s, run, accepted := Step(s, run, rules.ClickHandCard("sun-1"))
	require.True(t, accepted)
	require.Equal(t, StepPickDestination, run.Step)

	_, _, accepted = Step(s, run, rules.ClickPlayerHand("p1"))
	assert.False(t, accepted, "own hand")

	s, run, accepted = Step(s, run, rules.ClickPlayerHand("p2"))
	require.True(t, accepted)
	assert.True(t, run.IsDone())

	p2, _ := s.Player("p2")
	assert.Equal(t, []string{"sun-1"}, state.UIDs(p2.Hand))
	_, inHand := s.HandCard("sun-1")
	assert.False(t, inHand)
	assert.True(t, tokenUsed(s, "p1-move"))
}

func TestMoveToMarketDeck(t *testing.T) {
	s := newState()
	s.Turn = s.Turn.Play("sun-1")
	s, run := start(t, s, "p1-move")
	s, run, _ = Step(s, run, rules.ClickHandCard("sun-1"))

	_, _, accepted := Step(s, run, rules.ClickMarketDeck(rules.FamilyPlant, ""))
	assert.False(t, accepted, "wrong family")

	s, _, accepted = Step(s, run, rules.ClickMarketDeck(rules.FamilyElement, ""))
	require.True(t, accepted)
	assert.Equal(t, []string{"sun-9", "sun-1"}, state.UIDs(s.ElementMarket.Deck))
	assert.False(t, s.Turn.IsPlayed("sun-1"))
}

func TestDisasterStaysOutOfOtherHands(t *testing.T) {
	s, run := start(t, newState(), "p1-move")
	s, run, accepted := Step(s, run, rules.ClickHandCard("storm-1"))
	require.True(t, accepted)

	_, _, accepted = Step(s, run, rules.ClickPlayerHand("p2"))
	assert.False(t, accepted)

	s, _, accepted = Step(s, run, rules.ClickMarketDeck(rules.FamilyDisaster, ""))
	require.True(t, accepted)
	assert.Equal(t, []string{"storm-1"}, state.UIDs(s.DisasterMarket.Deck))
}

func TestMoveCannotPickThePiece(t *testing.T) {
	s := newState()
	run, ok := ForCard(s, "seal-1")
	require.True(t, ok)
	assert.Equal(t, state.AbilitySpecial, run.Name)

	s.Turn = s.Turn.UseAbility("seal-1", state.AbilitySpecial)
	run, ok = ForCard(s, "seal-1")
	require.True(t, ok)
	require.Equal(t, state.AbilityMove, run.Name)

	s, run = Enter(s, run)
	_, _, accepted := Step(s, run, rules.ClickHandCard("seal-1"))
	assert.False(t, accepted)
}

func TestCancelLeavesTokenUnused(t *testing.T) {
	base := newState()
	for _, ev := range []rules.Event{rules.CancelAbility(), rules.ClickToken("p1-move")} {
		s, run := start(t, base, "p1-move")
		s, run, accepted := Step(s, run, ev)
		require.True(t, accepted)
		assert.True(t, run.IsDone())
		assert.True(t, run.Cancelled)
		assert.False(t, tokenUsed(s, "p1-move"))
		assert.Nil(t, s.CommandBar)
		assert.Equal(t, base.ActivePlayer().Hand, s.ActivePlayer().Hand)
	}
}

func TestClickingAnotherTokenSwitches(t *testing.T) {
	s, run := start(t, newState(), "p1-move")
	s, run, _ = Step(s, run, rules.ClickHandCard("sun-1"))

	s, run, accepted := Step(s, run, rules.ClickToken("p1-refresh"))
	require.True(t, accepted)
	assert.Equal(t, state.AbilityRefresh, run.Name)
	assert.Equal(t, StepPickMarket, run.Step)
	assert.False(t, tokenUsed(s, "p1-move"))
	_, inHand := s.HandCard("sun-1")
	assert.True(t, inHand)
}

func TestSpecialDrawsAndRoutesPolicy(t *testing.T) {
	s := newState()
	run, ok := ForCard(s, "seal-1")
	require.True(t, ok)

	s, run = Enter(s, run)
	require.Equal(t, StepConfirm, run.Step)
	require.NotNil(t, s.Stage)
	assert.Equal(t, string(rules.StagePolicyDrawn), s.Stage.EventType)
	assert.Equal(t, []string{"pol-1"}, state.UIDs(s.PolicyMarket.Table))

	_, _, accepted := Step(s, run, rules.CancelAbility())
	assert.False(t, accepted, "the card is already drawn")

	s, run, accepted = Step(s, run, rules.Confirm())
	require.True(t, accepted)
	assert.True(t, run.IsDone())
	assert.Nil(t, s.Stage)
	assert.Equal(t, []string{"pol-1"}, state.UIDs(s.PolicyMarket.Acquired))
	assert.True(t, s.Turn.HasUsedAbility("seal-1", state.AbilitySpecial))
}

func TestDestinations(t *testing.T) {
	s := newState()
	sun, _ := s.HandCard("sun-1")
	assert.Equal(t, []Destination{
		{Kind: DestinationPlayer, Player: "p2"},
		{Kind: DestinationMarket, Family: rules.FamilyElement},
	}, Destinations(s, sun))

	solo := newState()
	solo.Players = solo.Players[:1]
	storm, _ := solo.HandCard("storm-1")
	assert.Equal(t, []Destination{{Kind: DestinationMarket, Family: rules.FamilyDisaster}}, Destinations(solo, storm))

	err := ValidateDestination(s, sun, Destination{Kind: DestinationMarket, Family: rules.FamilyAnimal})
	assert.Error(t, err)
}

func TestRunEncodesItsPosition(t *testing.T) {
	_, run := start(t, newState(), "p1-refresh")
	data, err := json.Marshal(run)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"step":"pickMarket"`)

	var decoded Run
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, StepPickMarket, decoded.Step)
}
