package state

import "slices"

// Market is a face-down deck drawn from the front and a face-up table.
// All methods return a new Market and never touch the receiver's slices.
type Market[T Identified] struct {
	Deck  []T `json:"deck"`
	Table []T `json:"table"`
}

// NewMarket returns a market with everything in the deck.
func NewMarket[T Identified](deck []T) Market[T] {
	return Market[T]{Deck: slices.Clone(deck), Table: []T{}}
}

// Size counts every item in the market.
func (m Market[T]) Size() int {
	return len(m.Deck) + len(m.Table)
}

// DrawToTable moves up to n items from the top of the deck to the end of the table.
func (m Market[T]) DrawToTable(n int) Market[T] {
	n = min(n, len(m.Deck))
	if n <= 0 {
		return m
	}
	return Market[T]{
		Deck:  slices.Clone(m.Deck[n:]),
		Table: slices.Concat(m.Table, m.Deck[:n]),
	}
}

// TakeFromTable removes uid from the table without refilling the slot.
func (m Market[T]) TakeFromTable(uid string) (Market[T], T, bool) {
	table, item, ok := Without(m.Table, uid)
	if !ok {
		return m, item, false
	}
	return Market[T]{Deck: m.Deck, Table: table}, item, true
}

// ReplaceFromTable removes uid from the table and puts the top deck card in its slot.
// With an empty deck the slot simply closes.
func (m Market[T]) ReplaceFromTable(uid string) (Market[T], T, bool) {
	item, i := Find(m.Table, uid)
	if i < 0 {
		return m, item, false
	}
	if len(m.Deck) == 0 {
		return Market[T]{Deck: m.Deck, Table: slices.Concat(m.Table[:i], m.Table[i+1:])}, item, true
	}
	table := slices.Clone(m.Table)
	table[i] = m.Deck[0]
	return Market[T]{Deck: slices.Clone(m.Deck[1:]), Table: table}, item, true
}

// TakeFromDeck removes the top deck item.
func (m Market[T]) TakeFromDeck() (Market[T], T, bool) {
	var zero T
	if len(m.Deck) == 0 {
		return m, zero, false
	}
	return Market[T]{Deck: slices.Clone(m.Deck[1:]), Table: m.Table}, m.Deck[0], true
}

// TakeFromDeckFunc removes the first deck item matching pred.
func (m Market[T]) TakeFromDeckFunc(pred func(T) bool) (Market[T], T, bool) {
	i := slices.IndexFunc(m.Deck, pred)
	if i < 0 {
		var zero T
		return m, zero, false
	}
	return Market[T]{Deck: slices.Concat(m.Deck[:i], m.Deck[i+1:]), Table: m.Table}, m.Deck[i], true
}

// TakeFromDeckN removes up to n items from the top of the deck.
func (m Market[T]) TakeFromDeckN(n int) (Market[T], []T) {
	n = min(n, len(m.Deck))
	if n <= 0 {
		return m, nil
	}
	return Market[T]{Deck: slices.Clone(m.Deck[n:]), Table: m.Table}, slices.Clone(m.Deck[:n])
}

// ReturnToDeck puts items at the bottom of the deck.
func (m Market[T]) ReturnToDeck(items ...T) Market[T] {
	if len(items) == 0 {
		return m
	}
	return Market[T]{Deck: slices.Concat(m.Deck, items), Table: m.Table}
}

// AddToTable puts items at the end of the table.
func (m Market[T]) AddToTable(items ...T) Market[T] {
	if len(items) == 0 {
		return m
	}
	return Market[T]{Deck: m.Deck, Table: slices.Concat(m.Table, items)}
}

// RemoveFromTableFunc removes every table item matching pred.
func (m Market[T]) RemoveFromTableFunc(pred func(T) bool) (Market[T], []T) {
	removed, kept := Partition(m.Table, pred)
	if len(removed) == 0 {
		return m, nil
	}
	if kept == nil {
		kept = []T{}
	}
	return Market[T]{Deck: m.Deck, Table: kept}, removed
}

// Recycle sends the whole table to the bottom of the deck and deals n fresh items.
func (m Market[T]) Recycle(n int) Market[T] {
	return Market[T]{Deck: slices.Concat(m.Deck, m.Table), Table: []T{}}.DrawToTable(n)
}

// UpdateTable swaps the table item sharing item's uid.
func (m Market[T]) UpdateTable(item T) Market[T] {
	return Market[T]{Deck: m.Deck, Table: Replace(m.Table, item)}
}

// UpdateDeck swaps the deck item sharing item's uid.
func (m Market[T]) UpdateDeck(item T) Market[T] {
	return Market[T]{Deck: Replace(m.Deck, item), Table: m.Table}
}
