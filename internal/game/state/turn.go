package state

import "slices"

// Phase is the active player's turn phase.
type Phase string

const (
	PhaseDraw   Phase = "draw"
	PhaseAction Phase = "action"
	PhaseEnd    Phase = "end"
)

// UsedAbility records a card ability spent this turn.
type UsedAbility struct {
	Source string      `json:"source"`
	Name   AbilityName `json:"name"`
}

// Turn is the per-turn bookkeeping of the active player.
type Turn struct {
	Number          int      `json:"number"`
	Player          string   `json:"player"`
	PlayedCards     []string `json:"playedCards"`
	ExhaustedCards  []string `json:"exhaustedCards"`
	BorrowedElement *Card    `json:"borrowedElement,omitempty"`
	// BorrowedCards are borrowed elements that went into the hand and return to
	// the element market at the end of the turn.
	BorrowedCards        []string      `json:"borrowedCards"`
	UsedAbilities        []UsedAbility `json:"usedAbilities"`
	Phase                Phase         `json:"phase"`
	AutomaticEventChecks []string      `json:"automaticEventChecks"`
	BoughtOrUnlocked     bool          `json:"boughtOrUnlocked"`
}

// NewTurn starts a fresh turn for player.
func NewTurn(number int, player string) Turn {
	return Turn{
		Number:               number,
		Player:               player,
		PlayedCards:          []string{},
		ExhaustedCards:       []string{},
		BorrowedCards:        []string{},
		UsedAbilities:        []UsedAbility{},
		Phase:                PhaseDraw,
		AutomaticEventChecks: []string{},
	}
}

// IsPlayed reports whether uid is committed this turn.
func (t Turn) IsPlayed(uid string) bool { return slices.Contains(t.PlayedCards, uid) }

// IsExhausted reports whether uid has been spent this turn.
func (t Turn) IsExhausted(uid string) bool { return slices.Contains(t.ExhaustedCards, uid) }

// HasChecked reports whether the one-shot escalation check was consumed.
func (t Turn) HasChecked(check string) bool { return slices.Contains(t.AutomaticEventChecks, check) }

// Play commits uid.
func (t Turn) Play(uid string) Turn {
	t.PlayedCards = AddUID(t.PlayedCards, uid)
	return t
}

// Unplay releases uid.
func (t Turn) Unplay(uid string) Turn {
	t.PlayedCards = RemoveUID(t.PlayedCards, uid)
	return t
}

// Exhaust moves uids from played to exhausted.
func (t Turn) Exhaust(uids ...string) Turn {
	for _, uid := range uids {
		t.PlayedCards = RemoveUID(t.PlayedCards, uid)
		t.ExhaustedCards = AddUID(t.ExhaustedCards, uid)
	}
	return t
}

// Check consumes a one-shot escalation flag.
func (t Turn) Check(check string) Turn {
	t.AutomaticEventChecks = AddUID(t.AutomaticEventChecks, check)
	return t
}

// UseAbility records a card ability.
func (t Turn) UseAbility(source string, name AbilityName) Turn {
	t.UsedAbilities = slices.Concat(t.UsedAbilities, []UsedAbility{{Source: source, Name: name}})
	return t
}

// HasUsedAbility reports whether the card ability was used this turn.
func (t Turn) HasUsedAbility(source string, name AbilityName) bool {
	return slices.Contains(t.UsedAbilities, UsedAbility{Source: source, Name: name})
}

// Forget drops uids from every per-turn list, for cards that left the hand.
func (t Turn) Forget(uids ...string) Turn {
	for _, uid := range uids {
		t.PlayedCards = RemoveUID(t.PlayedCards, uid)
		t.ExhaustedCards = RemoveUID(t.ExhaustedCards, uid)
		t.BorrowedCards = RemoveUID(t.BorrowedCards, uid)
	}
	return t
}
