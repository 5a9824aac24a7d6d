package effects

import (
	"github.com/helcomsecretariat/ecosfera-baltica-digital-sub000/internal/game/counters"
	"github.com/helcomsecretariat/ecosfera-baltica-digital-sub000/internal/game/rules"
	"github.com/helcomsecretariat/ecosfera-baltica-digital-sub000/internal/game/state"
)

// BlockerKind selects which gate a lasting effect closes.
type BlockerKind string

const (
	BlockTurn    BlockerKind = "turn"
	BlockAbility BlockerKind = "ability"
)

// Lasting is implemented by effects that stay active for several turns.
type Lasting interface {
	Effect
	Blocks() BlockerKind
}

// lasting keeps its card in the active zone and gates play through a blocker
// while its counters run.
type lasting struct {
	name     string
	blocker  BlockerKind
	fallback state.Duration
}

// NewLasting builds a multi-turn blocker effect. fallback applies to cards
// dealt without a duration.
func NewLasting(name string, blocker BlockerKind, fallback state.Duration) Effect {
	return &lasting{name: name, blocker: blocker, fallback: fallback}
}

func (e *lasting) Name() string { return e.name }
func (e *lasting) Blocks() BlockerKind { return e.blocker }
func (e *lasting) IsDone(run Run) bool { return run.Step == StepDone }

func (e *lasting) Check(s state.GameState) (state.Card, bool) {
	return activeCard(s, e.name)
}

func (e *lasting) Activate(s state.GameState, card state.Card) (state.GameState, Run) {
	d := e.fallback
	if card.Policy != nil && card.Policy.Duration != nil {
		d = *card.Policy.Duration
	}
	d.Started = true
	card = card.WithDuration(d)
	s.PolicyMarket = s.PolicyMarket.Update(card)
	if d.DelayTurns == 0 {
		s = block(s, e.blocker, card.UID)
	}
	s.Stage = &state.Stage{
		EventType: string(rules.StagePolicyEffect),
		Cause:     []string{card.UID},
		Outcome:   e.name,
	}
	return s, Run{Card: card, Effect: e.name, Step: StepConfirm}
}

func (e *lasting) Step(s state.GameState, run Run, ev rules.Event) (state.GameState, Run, bool) {
	if run.Step != StepConfirm || ev.Type != rules.EventConfirmStage {
		return s, run, false
	}
	s.Stage = nil
	run.Step = StepDone
	return s, run, true
}

func block(s state.GameState, kind BlockerKind, reason string) state.GameState {
	switch kind {
	case BlockTurn:
		s.Blockers.Turn = s.Blockers.Turn.With(reason)
	case BlockAbility:
		s.Blockers.Ability = s.Blockers.Ability.With(reason)
	}
	return s
}

func unblock(s state.GameState, kind BlockerKind, reason string) state.GameState {
	switch kind {
	case BlockTurn:
		s.Blockers.Turn = s.Blockers.Turn.Without(reason)
	case BlockAbility:
		s.Blockers.Ability = s.Blockers.Ability.Without(reason)
	}
	return s
}

// EndOfTurn advances the counters of every started lasting card. A card first
// burns its delay, closing its blocker when the delay reaches zero, then its
// active turns; at zero it lifts the blocker and is exhausted.
func EndOfTurn(s state.GameState, r *Registry) state.GameState {
	for _, card := range s.PolicyMarket.Active {
		if card.Policy == nil || card.Policy.Duration == nil || !card.Policy.Duration.Started {
			continue
		}
		kind := BlockerKind("")
		if e, ok := r.Get(card.Name); ok {
			if l, ok := e.(Lasting); ok {
				kind = l.Blocks()
			}
		}

		d := *card.Policy.Duration
		if d.DelayTurns > 0 {
			d.DelayTurns--
			if d.DelayTurns == 0 {
				s = block(s, kind, card.UID)
			}
			s.PolicyMarket = s.PolicyMarket.Update(card.WithDuration(d))
			continue
		}

		d.ActiveTurns--
		s.PolicyMarket = s.PolicyMarket.Update(card.WithDuration(d))
		if d.ActiveTurns <= 0 {
			s = unblock(s, kind, card.UID)
			s = Exhaust(s, card.UID)
			s = s.Inc(counters.CounterPoliciesResolved)
		}
	}
	return s
}
