// Package cost parses plant resource costs and selects the resource cards that pay them.
package cost

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

var symbolPattern = regexp.MustCompile(`\{([^}]*)\}`)

// Cost is a multiset of resource names.
type Cost map[string]int

// ParseCost parses a cost string such as "{sun}{nutrients}{nutrients}".
// Whitespace between symbols is ignored; anything else outside braces is an error.
func ParseCost(costStr string) (Cost, error) {
	cost := Cost{}
	if strings.TrimSpace(costStr) == "" {
		return cost, nil
	}

	rest := symbolPattern.ReplaceAllString(costStr, "")
	if strings.TrimSpace(rest) != "" {
		return nil, fmt.Errorf("malformed cost %q: unexpected %q", costStr, strings.TrimSpace(rest))
	}

	for _, match := range symbolPattern.FindAllStringSubmatch(costStr, -1) {
		symbol := strings.ToLower(strings.TrimSpace(match[1]))
		if symbol == "" {
			return nil, fmt.Errorf("malformed cost %q: empty symbol", costStr)
		}
		cost[symbol]++
	}
	return cost, nil
}

// FromNames builds a cost from a list of resource names.
func FromNames(names []string) Cost {
	cost := make(Cost, len(names))
	for _, name := range names {
		cost[name]++
	}
	return cost
}

// Names expands the cost back into a sorted list of resource names.
func (c Cost) Names() []string {
	names := make([]string, 0, c.Total())
	for _, name := range c.keys() {
		for i := 0; i < c[name]; i++ {
			names = append(names, name)
		}
	}
	return names
}

// Total returns the number of resource cards required.
func (c Cost) Total() int {
	total := 0
	for _, n := range c {
		total += n
	}
	return total
}

// String renders the cost in the same form ParseCost accepts, sorted by name.
func (c Cost) String() string {
	var b strings.Builder
	for _, name := range c.Names() {
		b.WriteString("{")
		b.WriteString(name)
		b.WriteString("}")
	}
	return b.String()
}

func (c Cost) keys() []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
