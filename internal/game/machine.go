// Package game hosts the turn machine that drives a match from one immutable
// snapshot to the next, and the session engine that keeps matches alive
// behind the transport.
package game

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/helcomsecretariat/ecosfera-baltica-digital-sub000/internal/game/ability"
	"github.com/helcomsecretariat/ecosfera-baltica-digital-sub000/internal/game/effects"
	"github.com/helcomsecretariat/ecosfera-baltica-digital-sub000/internal/game/rules"
	"github.com/helcomsecretariat/ecosfera-baltica-digital-sub000/internal/game/spawn"
	"github.com/helcomsecretariat/ecosfera-baltica-digital-sub000/internal/game/state"
)

// settleLimit bounds the automatic transitions taken after one input.
const settleLimit = 256

// Snapshot is the full machine state: the node, the game context and the
// state of a nested ability or policy run.
type Snapshot struct {
	Value   rules.StateValue `json:"value"`
	Context state.GameState  `json:"context"`
	Ability *ability.Run     `json:"ability,omitempty"`
	Policy  *effects.Run     `json:"policy,omitempty"`
}

// Frame is one snapshot of a transition with the logical delay the renderer
// should wait before showing it.
type Frame struct {
	Snapshot Snapshot      `json:"snapshot"`
	Delay    time.Duration `json:"delay"`
}

// InvariantError reports an engine bug. It is raised with panic and recovered
// by the Engine.
type InvariantError struct {
	State  rules.StateValue
	Reason string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("invariant violated in %s: %s", e.State, e.Reason)
}

// Machine is the pure turn machine. It holds no game state.
type Machine struct {
	spawner  *spawn.Spawner
	registry *effects.Registry
	logger   *zap.Logger
	delay    time.Duration
}

// Option configures a Machine.
type Option func(*Machine)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(m *Machine) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithAnimationDelay sets the delay attached to automatic frames.
func WithAnimationDelay(d time.Duration) Option {
	return func(m *Machine) { m.delay = d }
}

// WithRegistry replaces the policy effect registry. The spawner's deck must
// have been validated against the same registry.
func WithRegistry(r *effects.Registry) Option {
	return func(m *Machine) { m.registry = r }
}

// NewMachine builds a machine dealing games with spawner.
func NewMachine(spawner *spawn.Spawner, opts ...Option) *Machine {
	m := &Machine{
		spawner:  spawner,
		registry: effects.Default(),
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Registry returns the policy effects the machine checks.
func (m *Machine) Registry() *effects.Registry { return m.registry }

// Start spawns a game and settles it at the first input point.
func (m *Machine) Start(gc state.GameConfig) (Snapshot, error) {
	s, err := m.spawner.Spawn(gc)
	if err != nil {
		return Snapshot{}, err
	}
	frames := m.settle(Snapshot{Value: rules.StatePreDraw, Context: s}, nil)
	return frames[len(frames)-1].Snapshot, nil
}

// Send applies ev and every automatic transition after it. A rejected input
// returns snap unchanged.
func (m *Machine) Send(snap Snapshot, ev rules.Event) Snapshot {
	frames := m.Trace(snap, ev)
	if len(frames) == 0 {
		return snap
	}
	return frames[len(frames)-1].Snapshot
}

// Trace is Send returning every intermediate snapshot. It returns nil when
// the input is rejected.
func (m *Machine) Trace(snap Snapshot, ev rules.Event) []Frame {
	if ev.Type.IsPrivileged() {
		next, ok := m.force(snap, ev)
		if !ok {
			return nil
		}
		// a merge edits the running game; a replace may load another one
		if ev.Merge {
			m.checkConservation(snap, next)
		}
		return []Frame{{Snapshot: next}}
	}
	if snap.Value.IsFinal() {
		return nil
	}

	var next Snapshot
	var ok bool
	switch snap.Value {
	case rules.StateBuying:
		next, ok = m.buying(snap, ev)
	case rules.StateUsingAbility:
		next, ok = m.usingAbility(snap, ev)
	case rules.StatePolicyEffect:
		next, ok = m.policyEffect(snap, ev)
	case rules.StateStagingEvent:
		next, ok = m.stagingEvent(snap, ev)
	}
	if !ok {
		m.logger.Debug("input rejected",
			zap.Stringer("state", snap.Value),
			zap.String("event", string(ev.Type)),
			zap.String("uid", ev.UID),
		)
		return nil
	}

	frames := m.settle(next, nil)
	m.checkConservation(snap, frames[len(frames)-1].Snapshot)
	return frames
}

// settle takes automatic transitions until the machine waits for input.
func (m *Machine) settle(snap Snapshot, frames []Frame) []Frame {
	frames = append(frames, Frame{Snapshot: snap})
	for i := 0; !snap.Value.AcceptsInput() && !snap.Value.IsFinal(); i++ {
		if i == settleLimit {
			m.fail(snap, "automatic transitions did not settle")
		}
		snap = m.step(snap)
		frames = append(frames, Frame{Snapshot: snap, Delay: m.delay})
	}
	return frames
}

func (m *Machine) step(snap Snapshot) Snapshot {
	switch snap.Value {
	case rules.StatePreDraw:
		return m.preDraw(snap)
	case rules.StateMain:
		return m.main(snap)
	case rules.StateCardAbility:
		return m.enterAbility(snap)
	case rules.StateCheckingEndHand:
		return m.checkingEndHand(snap)
	case rules.StateDiscardingRow:
		return m.discardingRow(snap)
	case rules.StateDrawingRow:
		return m.drawingRow(snap)
	case rules.StateClearingTurnState:
		return m.clearingTurnState(snap)
	}
	m.fail(snap, "no automatic transition")
	return snap
}

func (m *Machine) fail(snap Snapshot, reason string) {
	err := &InvariantError{State: snap.Value, Reason: reason}
	m.logger.Error("engine invariant violated",
		zap.Stringer("state", snap.Value),
		zap.Int("turn", snap.Context.Turn.Number),
		zap.Error(err),
	)
	panic(err)
}

// checkConservation verifies that a transition neither lost nor duplicated a
// card, tile or token.
func (m *Machine) checkConservation(before, after Snapshot) {
	prev := before.Context.AllUIDs()
	next := after.Context.AllUIDs()
	if len(prev) != len(next) {
		m.fail(after, fmt.Sprintf("%d ids before, %d after", len(prev), len(next)))
	}
	for i := 1; i < len(next); i++ {
		if next[i] == next[i-1] {
			m.fail(after, "duplicate id "+next[i])
		}
	}
}

func (m *Machine) usingAbility(snap Snapshot, ev rules.Event) (Snapshot, bool) {
	if snap.Ability == nil {
		m.fail(snap, "no ability run")
	}
	s, run, ok := ability.Step(snap.Context, *snap.Ability, ev)
	if !ok {
		return snap, false
	}
	snap.Context = s
	return m.afterAbility(snap, run), true
}

// enterAbility starts the run prepared by a hand-card ability click.
func (m *Machine) enterAbility(snap Snapshot) Snapshot {
	if snap.Ability == nil {
		m.fail(snap, "no ability run")
	}
	s, run := ability.Enter(snap.Context, *snap.Ability)
	snap.Context = s
	return m.afterAbility(snap, run)
}

func (m *Machine) afterAbility(snap Snapshot, run ability.Run) Snapshot {
	if run.IsDone() {
		snap.Ability = nil
		snap.Value = rules.StateMain
		return snap
	}
	snap.Ability = &run
	snap.Value = rules.StateUsingAbility
	return snap
}

func (m *Machine) policyEffect(snap Snapshot, ev rules.Event) (Snapshot, bool) {
	if snap.Policy == nil {
		m.fail(snap, "no policy run")
	}
	e, ok := m.registry.Get(snap.Policy.Effect)
	if !ok {
		m.fail(snap, "unknown policy effect "+snap.Policy.Effect)
	}
	s, run, ok := e.Step(snap.Context, *snap.Policy, ev)
	if !ok {
		return snap, false
	}
	snap.Context = s
	return m.afterPolicy(snap, e, run), true
}

func (m *Machine) afterPolicy(snap Snapshot, e effects.Effect, run effects.Run) Snapshot {
	if e.IsDone(run) {
		m.logger.Debug("policy effect finished",
			zap.String("effect", run.Effect),
			zap.Bool("cancelled", run.Cancelled),
		)
		snap.Policy = nil
		snap.Value = rules.StateMain
		return snap
	}
	snap.Policy = &run
	snap.Value = rules.StatePolicyEffect
	return snap
}

func (m *Machine) stagingEvent(snap Snapshot, ev rules.Event) (Snapshot, bool) {
	if ev.Type != rules.EventConfirmStage || snap.Context.Stage == nil {
		return snap, false
	}
	staged := rules.StageType(snap.Context.Stage.EventType)
	snap.Context.Stage = nil
	switch staged {
	case rules.StageGameWin:
		snap.Value = rules.StateGameWon
	case rules.StageGameLoss:
		snap.Value = rules.StateGameLost
	default:
		snap.Value = rules.StateMain
	}
	return snap, true
}

// stage sets a pending event and moves to stagingEvent.
func stage(snap Snapshot, t rules.StageType, cause, effect []string) Snapshot {
	snap.Context.Stage = &state.Stage{EventType: string(t), Cause: cause, Effect: effect}
	snap.Value = rules.StateStagingEvent
	return snap
}
