package rules

import (
	"fmt"
	"strings"
)

// StateValue is a node of the turn machine.
type StateValue int

const (
	StatePreDraw StateValue = iota
	StateMain
	StateBuying
	StateCardAbility
	StateUsingAbility
	StatePolicyEffect
	StateStagingEvent
	StateCheckingEndHand
	StateDiscardingRow
	StateDrawingRow
	StateClearingTurnState
	StateGameWon
	StateGameLost
)

var stateNames = map[StateValue]string{
	StatePreDraw:           "checkingEventConditions.preDraw",
	StateMain:              "checkingEventConditions.main",
	StateBuying:            "buying",
	StateCardAbility:       "cardAbility",
	StateUsingAbility:      "usingAbility",
	StatePolicyEffect:      "policyEffect",
	StateStagingEvent:      "stagingEvent",
	StateCheckingEndHand:   "endingTurn.checkingEndHand",
	StateDiscardingRow:     "endingTurn.discardingRow",
	StateDrawingRow:        "endingTurn.drawingRow",
	StateClearingTurnState: "endingTurn.clearingTurnState",
	StateGameWon:           "gameWon",
	StateGameLost:          "gameLost",
}

func (s StateValue) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("STATE_%d", int(s))
}

// MarshalText encodes the state by name.
func (s StateValue) MarshalText() ([]byte, error) {
	if _, ok := stateNames[s]; !ok {
		return nil, fmt.Errorf("unknown state %d", int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText decodes a state name.
func (s *StateValue) UnmarshalText(text []byte) error {
	for v, name := range stateNames {
		if name == string(text) {
			*s = v
			return nil
		}
	}
	return fmt.Errorf("unknown state %q", string(text))
}

// Matches reports whether s lies under the dotted prefix, so
// StateDrawingRow matches "endingTurn".
func (s StateValue) Matches(prefix string) bool {
	name := s.String()
	return name == prefix || strings.HasPrefix(name, prefix+".")
}

// IsFinal reports whether the game is over.
func (s StateValue) IsFinal() bool {
	return s == StateGameWon || s == StateGameLost
}

// AcceptsInput reports whether the machine waits for player input in s.
// Every other state is left by an automatic transition.
func (s StateValue) AcceptsInput() bool {
	switch s {
	case StateBuying, StateUsingAbility, StatePolicyEffect, StateStagingEvent:
		return true
	}
	return false
}

// endingSequence is the fixed order of end-of-turn steps.
var endingSequence = []StateValue{
	StateCheckingEndHand,
	StateDiscardingRow,
	StateDrawingRow,
	StateClearingTurnState,
}

// NextEndingStep returns the step after s in the end-of-turn sequence. After the
// last step the turn starts over at preDraw.
func NextEndingStep(s StateValue) StateValue {
	for i, step := range endingSequence {
		if step == s && i+1 < len(endingSequence) {
			return endingSequence[i+1]
		}
	}
	return StatePreDraw
}

// StageType names a staged event.
type StageType string

const (
	StageSkipTurn             StageType = "skipTurn"
	StageNoBuyDisaster        StageType = "disaster"
	StageElementalDisaster    StageType = "elementalDisaster"
	StageExtinction           StageType = "extinction"
	StageMassExtinction       StageType = "massExtinction"
	StageAbilityRefresh       StageType = "abilityRefresh"
	StageHabitatUnlock        StageType = "habitatUnlock"
	StageGameWin              StageType = "gameWin"
	StageGameLoss             StageType = "gameLoss"
	StagePolicyDrawn          StageType = "policyDrawn"
	StageProtectionActivation StageType = "protectionActivation"
	StagePolicyEffect         StageType = "policyEffect"
)

// One-shot escalation flags kept in Turn.AutomaticEventChecks.
const (
	CheckNoBuyDisaster     = "noBuyDisaster"
	CheckElementalDisaster = "elementalDisaster"
	CheckExtinction        = "extinction"
	CheckMassExtinction    = "massExtinction"
)
