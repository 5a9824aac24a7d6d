package effects

import (
	"github.com/helcomsecretariat/ecosfera-baltica-digital-sub000/internal/game/counters"
	"github.com/helcomsecretariat/ecosfera-baltica-digital-sub000/internal/game/state"
)

// Names of the policy cards with special roles.
const (
	ProtectionName = "strict_protection"
	FundingName    = "funding"
)

// Exhaust moves a policy card from wherever it is to the exhausted zone.
func Exhaust(s state.GameState, uid string) state.GameState {
	zone, _, ok := s.PolicyMarket.Locate(uid)
	if !ok || zone == state.ZonePolicyExhausted {
		return s
	}
	s.PolicyMarket, _ = s.PolicyMarket.Move(uid, zone, state.ZonePolicyExhausted)
	return s
}

// ProtectionCard returns an acquired protection card that has not been used.
func ProtectionCard(s state.GameState) (state.Card, bool) {
	for _, c := range s.PolicyMarket.Acquired {
		if c.Name == ProtectionName {
			return c, true
		}
	}
	return state.Card{}, false
}

// Route moves a freshly drawn policy card from the table to the zone its effect
// kind sends it to: positive to acquired, negative and dual to active,
// implementation to funding.
func Route(s state.GameState, uid string) (state.GameState, bool) {
	card, i := state.Find(s.PolicyMarket.Table, uid)
	if i < 0 || card.Policy == nil {
		return s, false
	}
	to := state.ZonePolicyActive
	switch card.Policy.Effect {
	case state.PolicyPositive:
		to = state.ZonePolicyAcquired
	case state.PolicyImplementation:
		to = state.ZonePolicyFunding
	}
	pm, ok := s.PolicyMarket.Move(uid, state.ZonePolicyTable, to)
	if !ok {
		return s, false
	}
	s.PolicyMarket = pm
	return s, true
}

// CanActivate reports whether the acquired card uid can be switched on by
// spending a funding card.
func CanActivate(s state.GameState, uid string) bool {
	card, i := state.Find(s.PolicyMarket.Acquired, uid)
	if i < 0 || card.Name == ProtectionName {
		return false
	}
	return len(s.PolicyMarket.Funding) > 0
}

// ActivateAcquired spends the oldest funding card and moves uid to active,
// where the registry will pick it up.
func ActivateAcquired(s state.GameState, uid string) (state.GameState, bool) {
	if !CanActivate(s, uid) {
		return s, false
	}
	pm, _ := s.PolicyMarket.Move(s.PolicyMarket.Funding[0].UID, state.ZonePolicyFunding, state.ZonePolicyExhausted)
	pm, _ = pm.Move(uid, state.ZonePolicyAcquired, state.ZonePolicyActive)
	s.PolicyMarket = pm
	return s, true
}

// finish exhausts the run's card and records how it ended.
func finish(s state.GameState, run Run) (state.GameState, Run) {
	s.Stage = nil
	s.CommandBar = nil
	s = Exhaust(s, run.Card.UID)
	if run.Cancelled {
		s = s.Inc(counters.CounterPoliciesCancelled)
	} else {
		s = s.Inc(counters.CounterPoliciesResolved)
	}
	run.Step = StepDone
	return s, run
}
