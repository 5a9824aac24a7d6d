// Package state holds the immutable game model and the zone-transfer primitives
// every other package uses to derive a new GameState from an old one.
package state

import "slices"

// CardType tags the Card union.
type CardType string

const (
	CardAnimal   CardType = "animal"
	CardPlant    CardType = "plant"
	CardElement  CardType = "element"
	CardDisaster CardType = "disaster"
	CardPolicy   CardType = "policy"
)

// AbilityName names the four ability kinds.
type AbilityName string

const (
	AbilityMove    AbilityName = "move"
	AbilityRefresh AbilityName = "refresh"
	AbilityPlus    AbilityName = "plus"
	AbilitySpecial AbilityName = "special"
)

// TokenAbilities are the abilities every player holds as tokens.
var TokenAbilities = []AbilityName{AbilityMove, AbilityRefresh, AbilityPlus}

// PolicyEffect classifies how a drawn policy card is routed.
type PolicyEffect string

const (
	PolicyPositive       PolicyEffect = "positive"
	PolicyNegative       PolicyEffect = "negative"
	PolicyDual           PolicyEffect = "dual"
	PolicyImplementation PolicyEffect = "implementation"
)

// PolicyUsage tells whether a policy card is spent once or stays in play.
type PolicyUsage string

const (
	UsageSingle    PolicyUsage = "single"
	UsagePermanent PolicyUsage = "permanent"
)

// Duration is the turn counter carried by multi-turn policy cards.
type Duration struct {
	DelayTurns  int  `json:"delayTurns"`
	ActiveTurns int  `json:"activeTurns"`
	Started     bool `json:"started"`
}

// PolicyAttrs are the policy-specific attributes of a Card.
type PolicyAttrs struct {
	Effect   PolicyEffect `json:"effect"`
	Theme    string       `json:"theme,omitempty"`
	Usage    PolicyUsage  `json:"usage"`
	Duration *Duration    `json:"duration,omitempty"`
}

// Card is any animal, plant, element, disaster or policy card.
type Card struct {
	UID       string        `json:"uid"`
	Type      CardType      `json:"type"`
	Name      string        `json:"name"`
	Habitats  []string      `json:"habitats,omitempty"`
	Abilities []AbilityName `json:"abilities,omitempty"`
	Elements  []string      `json:"elements,omitempty"`
	Subtype   string        `json:"subtype,omitempty"`
	Policy    *PolicyAttrs  `json:"policy,omitempty"`
}

// ID implements Identified.
func (c Card) ID() string { return c.UID }

// HasAbility reports whether the card carries ability name.
func (c Card) HasAbility(name AbilityName) bool {
	return slices.Contains(c.Abilities, name)
}

// HasHabitat reports whether the card lives in habitat name.
func (c Card) HasHabitat(name string) bool {
	return slices.Contains(c.Habitats, name)
}

// WithDuration returns a copy of a policy card carrying d.
func (c Card) WithDuration(d Duration) Card {
	if c.Policy == nil {
		return c
	}
	attrs := *c.Policy
	attrs.Duration = &d
	c.Policy = &attrs
	return c
}

// HabitatTile is a shared habitat that players unlock together.
type HabitatTile struct {
	UID        string `json:"uid"`
	Name       string `json:"name"`
	IsAcquired bool   `json:"isAcquired"`
}

// ID implements Identified.
func (h HabitatTile) ID() string { return h.UID }

// ExtinctionTile carries no state; its zone is the state.
type ExtinctionTile struct {
	UID string `json:"uid"`
}

// ID implements Identified.
func (e ExtinctionTile) ID() string { return e.UID }

// AbilityTile is a per-player ability token.
type AbilityTile struct {
	UID    string      `json:"uid"`
	Name   AbilityName `json:"name"`
	IsUsed bool        `json:"isUsed"`
}

// ID implements Identified.
func (a AbilityTile) ID() string { return a.UID }

// Identified is anything that lives in a zone.
type Identified interface {
	ID() string
}

// CardsOfType filters cards by type.
func CardsOfType(cards []Card, t CardType) []Card {
	var out []Card
	for _, c := range cards {
		if c.Type == t {
			out = append(out, c)
		}
	}
	return out
}
