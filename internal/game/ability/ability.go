// Package ability resolves move, refresh, plus and special abilities as a
// nested machine. The turn machine holds a Run while the player picks targets
// and regains control when the Run reports done.
package ability

import (
	"github.com/helcomsecretariat/ecosfera-baltica-digital-sub000/internal/game/counters"
	"github.com/helcomsecretariat/ecosfera-baltica-digital-sub000/internal/game/effects"
	"github.com/helcomsecretariat/ecosfera-baltica-digital-sub000/internal/game/rules"
	"github.com/helcomsecretariat/ecosfera-baltica-digital-sub000/internal/game/state"
)

// PieceKind tells whether an ability comes from a token or from a card.
type PieceKind string

const (
	PieceToken PieceKind = "token"
	PieceCard  PieceKind = "card"
)

// Piece is the token or hand card that carries the ability being used.
type Piece struct {
	Kind PieceKind `json:"kind"`
	UID  string    `json:"uid"`
}

// Position is where a Run stands inside the ability machine.
type Position string

const (
	StepPickSource      Position = "pickSource"
	StepPickDestination Position = "pickDestination"
	StepPickMarket      Position = "pickMarket"
	StepConfirm         Position = "confirm"
	StepDone            Position = "done"
)

// Run is one ability resolution.
type Run struct {
	Piece Piece             `json:"piece"`
	Name  state.AbilityName `json:"name"`
	Step  Position          `json:"step"`
	// Source is the hand card picked by a move, or the policy card drawn by special.
	Source    string `json:"source,omitempty"`
	Cancelled bool   `json:"cancelled,omitempty"`
}

// IsDone reports whether control returns to the turn machine.
func (r Run) IsDone() bool { return r.Step == StepDone }

// ForToken prepares a run for the active player's token uid.
func ForToken(s state.GameState, uid string) (Run, bool) {
	if !rules.CanUseToken(s, uid) {
		return Run{}, false
	}
	token, _ := s.ActivePlayer().Ability(uid)
	return Run{Piece: Piece{Kind: PieceToken, UID: uid}, Name: token.Name}, true
}

// ForCard prepares a run for the first usable ability of hand card uid.
func ForCard(s state.GameState, uid string) (Run, bool) {
	name, ok := rules.CardAbility(s, uid)
	if !ok {
		return Run{}, false
	}
	return Run{Piece: Piece{Kind: PieceCard, UID: uid}, Name: name}, true
}

// Enter starts run. Plus resolves at once; the others wait for a pick.
func Enter(s state.GameState, run Run) (state.GameState, Run) {
	switch run.Name {
	case state.AbilityPlus:
		s = s.Draw(s.Turn.Player, 1)
		return complete(s, run)
	case state.AbilityRefresh:
		run.Step = StepPickMarket
		s.CommandBar = &state.CommandBar{Command: string(run.Name), Hint: "pick the animal or plant market"}
	case state.AbilityMove:
		run.Step = StepPickSource
		s.CommandBar = &state.CommandBar{Command: string(run.Name), Hint: "pick a card to move"}
	case state.AbilitySpecial:
		pm, card, ok := s.PolicyMarket.DrawToTable()
		if !ok {
			return complete(s, run)
		}
		s.PolicyMarket = pm
		run.Source = card.UID
		run.Step = StepConfirm
		s.Stage = &state.Stage{
			EventType: string(rules.StagePolicyDrawn),
			Cause:     []string{run.Piece.UID},
			Effect:    []string{card.UID},
			Outcome:   card.Name,
		}
	default:
		run.Step = StepDone
		run.Cancelled = true
	}
	return s, run
}

// Step feeds a player input to run. Inputs that do not apply are rejected and
// leave everything unchanged.
func Step(s state.GameState, run Run, ev rules.Event) (state.GameState, Run, bool) {
	if run.Step == StepConfirm {
		if ev.Type != rules.EventConfirmStage {
			return s, run, false
		}
		s.Stage = nil
		s, _ = effects.Route(s, run.Source)
		s, run = complete(s, run)
		return s, run, true
	}

	switch {
	case ev.Type == rules.EventCancelAbility:
		s, run = Cancel(s, run)
		return s, run, true
	case ev.Type == rules.EventClickAbilityToken && ev.UID == run.Piece.UID:
		s, run = Cancel(s, run)
		return s, run, true
	case ev.Type == rules.EventClickAbilityToken:
		next, ok := ForToken(s, ev.UID)
		if !ok {
			return s, run, false
		}
		s, _ = Cancel(s, run)
		s, next = Enter(s, next)
		return s, next, true
	}

	switch run.Step {
	case StepPickMarket:
		return refresh(s, run, ev)
	case StepPickSource:
		return pickSource(s, run, ev)
	case StepPickDestination:
		return move(s, run, ev)
	}
	return s, run, false
}

// Cancel abandons run without using the piece.
func Cancel(s state.GameState, run Run) (state.GameState, Run) {
	s.CommandBar = nil
	run.Step = StepDone
	run.Cancelled = true
	return s, run
}

func complete(s state.GameState, run Run) (state.GameState, Run) {
	s.CommandBar = nil
	switch run.Piece.Kind {
	case PieceToken:
		s = s.WithActivePlayer(func(p state.PlayerState) state.PlayerState {
			token, ok := p.Ability(run.Piece.UID)
			if !ok {
				return p
			}
			token.IsUsed = true
			return p.WithAbility(token)
		})
	case PieceCard:
		s.Turn = s.Turn.UseAbility(run.Piece.UID, run.Name)
	}
	s = s.Inc(counters.CounterAbilitiesUsed)
	run.Step = StepDone
	return s, run
}

func refresh(s state.GameState, run Run, ev rules.Event) (state.GameState, Run, bool) {
	if ev.Type != rules.EventClickMarketDeck && ev.Type != rules.EventClickMarketTable {
		return s, run, false
	}
	if ev.Family != rules.FamilyAnimal && ev.Family != rules.FamilyPlant {
		return s, run, false
	}
	t, _ := cardType(ev.Family)
	m, _ := s.Market(t)
	if m.Size() == 0 {
		return s, run, false
	}
	s = s.WithMarket(t, m.Recycle(s.Rules.MarketTable))
	s, run = complete(s, run)
	return s, run, true
}

func pickSource(s state.GameState, run Run, ev rules.Event) (state.GameState, Run, bool) {
	if ev.Type != rules.EventClickHandCard {
		return s, run, false
	}
	for _, c := range rules.MovableCards(s, run.Piece.UID) {
		if c.UID == ev.UID && len(Destinations(s, c)) > 0 {
			run.Source = c.UID
			run.Step = StepPickDestination
			s.CommandBar = &state.CommandBar{Command: string(run.Name), Hint: "pick where to move " + c.Name}
			return s, run, true
		}
	}
	return s, run, false
}

func move(s state.GameState, run Run, ev rules.Event) (state.GameState, Run, bool) {
	// Picking another hand card changes the source.
	if ev.Type == rules.EventClickHandCard {
		return pickSource(s, run, ev)
	}
	card, ok := s.HandCard(run.Source)
	if !ok {
		return s, run, false
	}
	d, ok := destinationOf(ev)
	if !ok || ValidateDestination(s, card, d) != nil {
		return s, run, false
	}

	p, card, _ := s.ActivePlayer().RemoveFromHand(run.Source)
	s = s.WithPlayer(p)
	s.Turn = s.Turn.Forget(card.UID)
	switch d.Kind {
	case DestinationPlayer:
		to, _ := s.Player(d.Player)
		s = s.WithPlayer(to.AddToHand(card))
	case DestinationMarket:
		t, _ := cardType(d.Family)
		m, _ := s.Market(t)
		s = s.WithMarket(t, m.ReturnToDeck(card))
	}
	s, run = complete(s, run)
	return s, run, true
}
