// Package counters keeps named game statistics as immutable values.
package counters

import "sort"

// Counter is a single named count.
type Counter struct {
	Name  CounterType `json:"name"`
	Count int         `json:"count"`
}

// Counters maps statistic names to counts. Values are never mutated after
// construction; Add returns a new map.
type Counters map[CounterType]int

// New returns an empty collection.
func New() Counters {
	return Counters{}
}

// Add returns a copy of cs with amount added to name. Counts never drop below 0
// and zero counts are removed.
func (cs Counters) Add(name CounterType, amount int) Counters {
	out := make(Counters, len(cs)+1)
	for k, v := range cs {
		out[k] = v
	}
	next := out[name] + amount
	if next <= 0 {
		delete(out, name)
	} else {
		out[name] = next
	}
	return out
}

// Inc is Add(name, 1).
func (cs Counters) Inc(name CounterType) Counters {
	return cs.Add(name, 1)
}

// Get returns the count for name.
func (cs Counters) Get(name CounterType) int {
	return cs[name]
}

// Total returns the sum of all counts.
func (cs Counters) Total() int {
	total := 0
	for _, v := range cs {
		total += v
	}
	return total
}

// List returns the counters sorted by name.
func (cs Counters) List() []Counter {
	out := make([]Counter, 0, len(cs))
	for name, count := range cs {
		out = append(out, Counter{Name: name, Count: count})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
