package state

import "slices"

// PolicyZone names a PolicyMarket zone.
type PolicyZone string

const (
	ZonePolicyDeck      PolicyZone = "deck"
	ZonePolicyTable     PolicyZone = "table"
	ZonePolicyAcquired  PolicyZone = "acquired"
	ZonePolicyActive    PolicyZone = "active"
	ZonePolicyFunding   PolicyZone = "funding"
	ZonePolicyExhausted PolicyZone = "exhausted"
)

// PolicyMarket is the policy card market with its extra zones.
type PolicyMarket struct {
	Deck      []Card `json:"deck"`
	Table     []Card `json:"table"`
	Acquired  []Card `json:"acquired"`
	Active    []Card `json:"active"`
	Funding   []Card `json:"funding"`
	Exhausted []Card `json:"exhausted"`
}

// Zone returns the cards of zone z.
func (p PolicyMarket) Zone(z PolicyZone) []Card {
	switch z {
	case ZonePolicyDeck:
		return p.Deck
	case ZonePolicyTable:
		return p.Table
	case ZonePolicyAcquired:
		return p.Acquired
	case ZonePolicyActive:
		return p.Active
	case ZonePolicyFunding:
		return p.Funding
	case ZonePolicyExhausted:
		return p.Exhausted
	}
	return nil
}

// WithZone returns a copy of p with zone z set to cards.
func (p PolicyMarket) WithZone(z PolicyZone, cards []Card) PolicyMarket {
	switch z {
	case ZonePolicyDeck:
		p.Deck = cards
	case ZonePolicyTable:
		p.Table = cards
	case ZonePolicyAcquired:
		p.Acquired = cards
	case ZonePolicyActive:
		p.Active = cards
	case ZonePolicyFunding:
		p.Funding = cards
	case ZonePolicyExhausted:
		p.Exhausted = cards
	}
	return p
}

// Locate returns the zone holding uid.
func (p PolicyMarket) Locate(uid string) (PolicyZone, Card, bool) {
	for _, z := range []PolicyZone{ZonePolicyDeck, ZonePolicyTable, ZonePolicyAcquired, ZonePolicyActive, ZonePolicyFunding, ZonePolicyExhausted} {
		if c, i := Find(p.Zone(z), uid); i >= 0 {
			return z, c, true
		}
	}
	return "", Card{}, false
}

// Move transfers uid from zone from to the end of zone to.
func (p PolicyMarket) Move(uid string, from, to PolicyZone) (PolicyMarket, bool) {
	rest, card, ok := Without(p.Zone(from), uid)
	if !ok {
		return p, false
	}
	p = p.WithZone(from, rest)
	return p.WithZone(to, slices.Concat(p.Zone(to), []Card{card})), true
}

// DrawToTable moves the top deck card to the table.
func (p PolicyMarket) DrawToTable() (PolicyMarket, Card, bool) {
	if len(p.Deck) == 0 {
		return p, Card{}, false
	}
	card := p.Deck[0]
	p.Deck = slices.Clone(p.Deck[1:])
	p.Table = slices.Concat(p.Table, []Card{card})
	return p, card, true
}

// Update swaps the card sharing c's uid wherever it lives.
func (p PolicyMarket) Update(c Card) PolicyMarket {
	z, _, ok := p.Locate(c.UID)
	if !ok {
		return p
	}
	return p.WithZone(z, Replace(p.Zone(z), c))
}

// All lists every policy card across all zones.
func (p PolicyMarket) All() []Card {
	return slices.Concat(p.Deck, p.Table, p.Acquired, p.Active, p.Funding, p.Exhausted)
}
