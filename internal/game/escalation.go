package game

import (
	"go.uber.org/zap"

	"github.com/helcomsecretariat/ecosfera-baltica-digital-sub000/internal/game/counters"
	"github.com/helcomsecretariat/ecosfera-baltica-digital-sub000/internal/game/rules"
	"github.com/helcomsecretariat/ecosfera-baltica-digital-sub000/internal/game/state"
)

// preDraw opens a turn. A turn blocker skips it entirely.
func (m *Machine) preDraw(snap Snapshot) Snapshot {
	s := snap.Context
	if s.Blockers.Turn.IsBlocked() {
		s.Turn.Phase = state.PhaseEnd
		s.Turn = s.Turn.Check(rules.CheckNoBuyDisaster)
		s = s.Inc(counters.CounterSkippedTurns)
		snap.Context = s
		return stage(snap, rules.StageSkipTurn, s.Blockers.Turn.Reasons, nil)
	}
	s.Turn.Phase = state.PhaseAction
	snap.Context = s
	snap.Value = rules.StateMain
	return snap
}

// escalation is one rung of the ladder evaluated by main. It returns the next
// snapshot and whether it fired.
type escalation func(m *Machine, snap Snapshot) (Snapshot, bool)

// ladder is checked top to bottom; the first rung that fires wins.
var ladder = []escalation{
	gameWin,
	gameLoss,
	policyCheck,
	massExtinction,
	extinction,
	elementalDisaster,
	abilityRefresh,
	habitatUnlock,
}

// main is the decision point every input returns to.
func (m *Machine) main(snap Snapshot) Snapshot {
	for _, rung := range ladder {
		next, ok := rung(m, snap)
		if ok {
			return next
		}
		// a rung that found nothing to move still consumes its flag
		snap = next
	}
	if snap.Context.Turn.Phase == state.PhaseEnd {
		snap.Value = rules.StateDiscardingRow
		return snap
	}
	snap.Value = rules.StateBuying
	return snap
}

func gameWin(_ *Machine, snap Snapshot) (Snapshot, bool) {
	if !rules.GameWon(snap.Context) {
		return snap, false
	}
	return stage(snap, rules.StageGameWin, nil, state.UIDs(snap.Context.HabitatMarket.Table)), true
}

func gameLoss(_ *Machine, snap Snapshot) (Snapshot, bool) {
	if !rules.GameLost(snap.Context) {
		return snap, false
	}
	return stage(snap, rules.StageGameLoss, nil, state.UIDs(snap.Context.ExtinctMarket.Table)), true
}

func policyCheck(m *Machine, snap Snapshot) (Snapshot, bool) {
	e, card, ok := m.registry.Check(snap.Context)
	if !ok {
		return snap, false
	}
	m.logger.Debug("policy effect triggered",
		zap.String("effect", e.Name()),
		zap.String("card", card.UID),
	)
	s, run := e.Activate(snap.Context, card)
	snap.Context = s
	return m.afterPolicy(snap, e, run), true
}

// placeExtinctions moves up to n extinction tiles to the table.
func placeExtinctions(s state.GameState, n int) (state.GameState, []string) {
	m, tiles := s.ExtinctMarket.TakeFromDeckN(n)
	if len(tiles) == 0 {
		return s, nil
	}
	s.ExtinctMarket = m.AddToTable(tiles...)
	for range tiles {
		s = s.Inc(counters.CounterExtinctions)
	}
	return s, state.UIDs(tiles)
}

func handDisasters(s state.GameState) []string {
	return state.UIDs(state.CardsOfType(s.ActivePlayer().Hand, state.CardDisaster))
}

// skipped logs an escalation whose flag was consumed but had nothing to move.
func (m *Machine) skipped(snap Snapshot, check string) {
	m.logger.Debug("escalation skipped on empty deck",
		zap.String("check", check),
		zap.Int("turn", snap.Context.Turn.Number),
	)
}

func massExtinction(m *Machine, snap Snapshot) (Snapshot, bool) {
	s := snap.Context
	if s.Turn.HasChecked(rules.CheckMassExtinction) ||
		rules.DisasterCount(s.ActivePlayer().Hand) <= rules.MassExtinctionThreshold {
		return snap, false
	}
	s.Turn = s.Turn.Check(rules.CheckMassExtinction).Check(rules.CheckExtinction)
	s, tiles := placeExtinctions(s, rules.MassExtinctionTiles)
	snap.Context = s
	if len(tiles) == 0 {
		m.skipped(snap, rules.CheckMassExtinction)
		return snap, false
	}
	return stage(snap, rules.StageMassExtinction, handDisasters(s), tiles), true
}

func extinction(m *Machine, snap Snapshot) (Snapshot, bool) {
	s := snap.Context
	if s.Turn.HasChecked(rules.CheckExtinction) ||
		rules.DisasterCount(s.ActivePlayer().Hand) <= rules.ExtinctionThreshold {
		return snap, false
	}
	s.Turn = s.Turn.Check(rules.CheckExtinction)
	s, tiles := placeExtinctions(s, 1)
	snap.Context = s
	if len(tiles) == 0 {
		m.skipped(snap, rules.CheckExtinction)
		return snap, false
	}
	return stage(snap, rules.StageExtinction, handDisasters(s), tiles), true
}

// drawDisaster puts the top disaster card into the active hand.
func drawDisaster(s state.GameState) (state.GameState, string, bool) {
	m, card, ok := s.DisasterMarket.TakeFromDeck()
	if !ok {
		return s, "", false
	}
	s.DisasterMarket = m
	s = s.WithActivePlayer(func(p state.PlayerState) state.PlayerState { return p.AddToHand(card) })
	s = s.Inc(counters.CounterDisastersDrawn)
	return s, card.UID, true
}

func elementalDisaster(m *Machine, snap Snapshot) (Snapshot, bool) {
	s := snap.Context
	hand := s.ActivePlayer().Hand
	if s.Turn.HasChecked(rules.CheckElementalDisaster) || !rules.ElementalDisaster(hand) {
		return snap, false
	}
	cause := state.UIDs(state.CardsOfType(hand, state.CardElement))
	s.Turn = s.Turn.Check(rules.CheckElementalDisaster)
	s, drawn, ok := drawDisaster(s)
	snap.Context = s
	if !ok {
		m.skipped(snap, rules.CheckElementalDisaster)
		return snap, false
	}
	return stage(snap, rules.StageElementalDisaster, cause, []string{drawn}), true
}

func abilityRefresh(_ *Machine, snap Snapshot) (Snapshot, bool) {
	s := snap.Context
	key, ok := rules.RefreshablePair(s)
	if !ok {
		return snap, false
	}
	s = s.WithActivePlayer(func(p state.PlayerState) state.PlayerState {
		p.RefreshedPairs = state.AddUID(p.RefreshedPairs, key)
		return p.RefreshAbilities()
	})
	s = s.Inc(counters.CounterAbilitiesRefreshed)
	snap.Context = s
	return stage(snap, rules.StageAbilityRefresh, rules.PairMembers(key), state.UIDs(s.ActivePlayer().Abilities)), true
}

func habitatUnlock(_ *Machine, snap Snapshot) (Snapshot, bool) {
	s := snap.Context
	unlock, ok := rules.HabitatUnlock(s)
	if !ok {
		return snap, false
	}
	s.Turn = s.Turn.Exhaust(unlock.Animals...)
	var tiles []string
	for _, tile := range unlock.Tiles {
		m, taken, found := s.HabitatMarket.TakeFromDeckFunc(func(t state.HabitatTile) bool { return t.UID == tile.UID })
		if !found {
			continue
		}
		taken.IsAcquired = true
		s.HabitatMarket = m.AddToTable(taken)
		s = s.Inc(counters.CounterHabitatsUnlocked)
		tiles = append(tiles, taken.UID)
	}
	s.Turn.BoughtOrUnlocked = true
	snap.Context = s
	return stage(snap, rules.StageHabitatUnlock, unlock.Animals, tiles), true
}
