package game

import (
	"slices"

	"go.uber.org/zap"

	"github.com/helcomsecretariat/ecosfera-baltica-digital-sub000/internal/game/counters"
	"github.com/helcomsecretariat/ecosfera-baltica-digital-sub000/internal/game/effects"
	"github.com/helcomsecretariat/ecosfera-baltica-digital-sub000/internal/game/rules"
	"github.com/helcomsecretariat/ecosfera-baltica-digital-sub000/internal/game/state"
)

// checkingEndHand closes the action phase. A player who bought and unlocked
// nothing draws a disaster, then main runs the ladder once more.
func (m *Machine) checkingEndHand(snap Snapshot) Snapshot {
	s := snap.Context
	s.Turn.Phase = state.PhaseEnd
	snap.Value = rules.StateMain

	if s.Turn.BoughtOrUnlocked || s.Turn.HasChecked(rules.CheckNoBuyDisaster) ||
		rules.DisasterCount(s.ActivePlayer().Hand) >= rules.DisasterCap {
		snap.Context = s
		return snap
	}
	s.Turn = s.Turn.Check(rules.CheckNoBuyDisaster)
	s, drawn, ok := drawDisaster(s)
	snap.Context = s
	if !ok {
		m.skipped(snap, rules.CheckNoBuyDisaster)
		return snap
	}
	return stage(snap, rules.StageNoBuyDisaster, nil, []string{drawn})
}

// discardingRow empties the hand. Borrowed elements go back to the element
// market instead of the discard pile.
func (m *Machine) discardingRow(snap Snapshot) Snapshot {
	s := snap.Context
	borrowed := s.Turn.BorrowedCards
	p, returned := s.ActivePlayer().DiscardHand(func(c state.Card) bool {
		return slices.Contains(borrowed, c.UID)
	})
	s = s.WithPlayer(p)
	if b := s.Turn.BorrowedElement; b != nil {
		returned = append(returned, *b)
		s.Turn.BorrowedElement = nil
	}
	s.ElementMarket = s.ElementMarket.ReturnToDeck(returned...)
	s.Turn.BorrowedCards = []string{}
	snap.Context = s
	snap.Value = rules.NextEndingStep(rules.StateDiscardingRow)
	return snap
}

func (m *Machine) drawingRow(snap Snapshot) Snapshot {
	s := snap.Context
	snap.Context = s.Draw(s.Turn.Player, s.Rules.HandSize)
	snap.Value = rules.NextEndingStep(rules.StateDrawingRow)
	return snap
}

// clearingTurnState advances lasting policies and hands the turn over.
func (m *Machine) clearingTurnState(snap Snapshot) Snapshot {
	s := effects.EndOfTurn(snap.Context, m.registry)
	next := s.NextPlayer()
	s.Turn = state.NewTurn(s.Turn.Number+1, next)
	s.CommandBar = nil
	s = s.Inc(counters.CounterTurns)
	m.logger.Debug("turn passed",
		zap.Int("turn", s.Turn.Number),
		zap.String("player", next),
	)
	snap.Context = s
	snap.Value = rules.NextEndingStep(rules.StateClearingTurnState)
	return snap
}
