package effects

import (
	"slices"

	"github.com/helcomsecretariat/ecosfera-baltica-digital-sub000/internal/game/rules"
	"github.com/helcomsecretariat/ecosfera-baltica-digital-sub000/internal/game/state"
)

// ApplyFunc performs an effect's mutation and returns the affected uids.
// picked is empty when the effect picks nothing or had no candidates.
type ApplyFunc func(s state.GameState, card state.Card, picked string) (state.GameState, []string)

// Picker describes a target the player chooses before the effect applies.
type Picker struct {
	Hint  string
	Event rules.EventType
	// Key extracts the picked value from the input event.
	Key func(ev rules.Event) string
	// Candidates lists the values that may be picked now.
	Candidates func(s state.GameState) []string
}

// EffectBuilder provides a fluent API for single-use effects.
type EffectBuilder struct {
	name        string
	destructive bool
	picker      *Picker
	apply       ApplyFunc
}

// NewEffectBuilder starts an effect called name.
func NewEffectBuilder(name string) *EffectBuilder {
	return &EffectBuilder{name: name}
}

// Destructive marks an effect that removes cards; it offers the protection interrupt first.
func (b *EffectBuilder) Destructive() *EffectBuilder {
	b.destructive = true
	return b
}

// Picking makes the player choose a target first.
func (b *EffectBuilder) Picking(p Picker) *EffectBuilder {
	b.picker = &p
	return b
}

// Applying sets the mutation.
func (b *EffectBuilder) Applying(fn ApplyFunc) *EffectBuilder {
	b.apply = fn
	return b
}

// Build returns the finished effect.
func (b *EffectBuilder) Build() Effect {
	apply := b.apply
	if apply == nil {
		apply = func(s state.GameState, _ state.Card, _ string) (state.GameState, []string) { return s, nil }
	}
	return &instant{name: b.name, destructive: b.destructive, picker: b.picker, apply: apply}
}

// instant resolves once and is exhausted on confirmation.
type instant struct {
	name        string
	destructive bool
	picker      *Picker
	apply       ApplyFunc
}

func (e *instant) Name() string { return e.name }

func (e *instant) Check(s state.GameState) (state.Card, bool) {
	return activeCard(s, e.name)
}

func (e *instant) IsDone(run Run) bool { return run.Step == StepDone }

func (e *instant) Activate(s state.GameState, card state.Card) (state.GameState, Run) {
	run := Run{Card: card, Effect: e.name}
	if e.destructive {
		if prot, ok := ProtectionCard(s); ok {
			run.Step = StepProtection
			run.Protection = prot.UID
			s.Stage = &state.Stage{
				EventType: string(rules.StageProtectionActivation),
				Cause:     []string{card.UID},
				Effect:    []string{prot.UID},
				Outcome:   e.name,
			}
			return s, run
		}
	}
	return e.proceed(s, run)
}

func (e *instant) proceed(s state.GameState, run Run) (state.GameState, Run) {
	if e.picker != nil && len(e.picker.Candidates(s)) > 0 {
		run.Step = StepPicking
		s.CommandBar = &state.CommandBar{Command: e.name, Hint: e.picker.Hint}
		return s, run
	}
	return e.resolve(s, run, "")
}

func (e *instant) resolve(s state.GameState, run Run, picked string) (state.GameState, Run) {
	s, affected := e.apply(s, run.Card, picked)
	run.Picked = picked
	run.Step = StepConfirm
	s.CommandBar = nil
	s.Stage = &state.Stage{
		EventType: string(rules.StagePolicyEffect),
		Cause:     []string{run.Card.UID},
		Effect:    affected,
		Outcome:   e.name,
	}
	return s, run
}

func (e *instant) Step(s state.GameState, run Run, ev rules.Event) (state.GameState, Run, bool) {
	switch run.Step {
	case StepProtection:
		switch {
		case ev.Type == rules.EventClickAcquiredPolicy && ev.UID == run.Protection:
			s = Exhaust(s, run.Protection)
			run.Cancelled = true
			s, run = finish(s, run)
			return s, run, true
		case ev.Type == rules.EventCancelPolicy, ev.Type == rules.EventConfirmStage:
			s.Stage = nil
			s, run = e.proceed(s, run)
			return s, run, true
		}
	case StepPicking:
		if ev.Type != e.picker.Event {
			break
		}
		key := e.picker.Key(ev)
		if slices.Contains(e.picker.Candidates(s), key) {
			s, run = e.resolve(s, run, key)
			return s, run, true
		}
	case StepConfirm:
		if ev.Type == rules.EventConfirmStage {
			s, run = finish(s, run)
			return s, run, true
		}
	}
	return s, run, false
}

// passive cards never enter the machine on their own; they are spent by other rules.
type passive struct {
	name string
}

func (e passive) Name() string { return e.name }
func (e passive) Check(state.GameState) (state.Card, bool) { return state.Card{}, false }
func (e passive) IsDone(Run) bool { return true }
func (e passive) Activate(s state.GameState, c state.Card) (state.GameState, Run) {
	return s, Run{Card: c, Effect: e.name, Step: StepDone}
}
func (e passive) Step(s state.GameState, run Run, _ rules.Event) (state.GameState, Run, bool) {
	return s, run, false
}
