// Package effects implements policy cards: a registry of small effect machines
// consulted by the turn machine, plus the shared exhaust, duration and
// protection rules every effect follows.
package effects

import (
	"github.com/helcomsecretariat/ecosfera-baltica-digital-sub000/internal/game/rules"
	"github.com/helcomsecretariat/ecosfera-baltica-digital-sub000/internal/game/state"
)

// Step is the position of a Run inside its effect machine.
type Step string

const (
	StepProtection Step = "protection"
	StepPicking    Step = "picking"
	StepConfirm    Step = "confirm"
	StepDone       Step = "done"
)

// Run is the state of one effect resolution. Picked targets live here rather
// than in the effect itself.
type Run struct {
	Card       state.Card `json:"card"`
	Effect     string     `json:"effect"`
	Step       Step       `json:"step"`
	Picked     string     `json:"picked,omitempty"`
	Protection string     `json:"protection,omitempty"`
	Cancelled  bool       `json:"cancelled,omitempty"`
}

// Effect is one policy card's behaviour.
type Effect interface {
	Name() string
	// Check returns the card that should enter this effect now.
	Check(s state.GameState) (state.Card, bool)
	// Activate enters the effect for card.
	Activate(s state.GameState, card state.Card) (state.GameState, Run)
	// Step feeds a player input to the run. accepted is false when the input
	// does not apply in the current step.
	Step(s state.GameState, run Run, ev rules.Event) (next state.GameState, out Run, accepted bool)
	IsDone(run Run) bool
}

// Registry is the ordered list of effects built at startup.
type Registry struct {
	effects []Effect
	byName  map[string]Effect
}

// NewRegistry builds a registry that checks effects in the given order.
// Later duplicates are ignored.
func NewRegistry(effects ...Effect) *Registry {
	r := &Registry{byName: make(map[string]Effect, len(effects))}
	for _, e := range effects {
		if _, dup := r.byName[e.Name()]; dup {
			continue
		}
		r.effects = append(r.effects, e)
		r.byName[e.Name()] = e
	}
	return r
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.byName[name]
	return ok
}

// Get returns the effect called name.
func (r *Registry) Get(name string) (Effect, bool) {
	e, ok := r.byName[name]
	return e, ok
}

// Names lists registered effects in check order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.effects))
	for i, e := range r.effects {
		names[i] = e.Name()
	}
	return names
}

// Check returns the first effect, in registry order, whose condition holds.
func (r *Registry) Check(s state.GameState) (Effect, state.Card, bool) {
	for _, e := range r.effects {
		if card, ok := e.Check(s); ok {
			return e, card, true
		}
	}
	return nil, state.Card{}, false
}

// activeCard is the default condition: an unstarted card named name in the active zone.
func activeCard(s state.GameState, name string) (state.Card, bool) {
	for _, c := range s.PolicyMarket.Active {
		if c.Name != name {
			continue
		}
		if c.Policy != nil && c.Policy.Duration != nil && c.Policy.Duration.Started {
			continue
		}
		return c, true
	}
	return state.Card{}, false
}
