package deck

import (
	"errors"
	"fmt"
	"slices"

	"github.com/helcomsecretariat/ecosfera-baltica-digital-sub000/internal/game/cost"
	"github.com/helcomsecretariat/ecosfera-baltica-digital-sub000/internal/game/state"
)

var (
	// ErrUnknownName marks a reference to a name missing from the catalog.
	ErrUnknownName = errors.New("unknown name")
	// ErrMalformed marks an entry that cannot be interpreted.
	ErrMalformed = errors.New("malformed entry")
)

// ConfigError is one problem found in a deck specification.
type ConfigError struct {
	Section string
	Name    string
	Err     error
}

func (e *ConfigError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("deck %s: %v", e.Section, e.Err)
	}
	return fmt.Sprintf("deck %s %q: %v", e.Section, e.Name, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

type validator struct {
	errs []error
}

func (v *validator) add(section, name string, sentinel error, format string, args ...any) {
	v.errs = append(v.errs, &ConfigError{
		Section: section,
		Name:    name,
		Err:     fmt.Errorf("%w: %s", sentinel, fmt.Sprintf(format, args...)),
	})
}

func (v *validator) known(section, name, kind string, catalog, refs []string) {
	for _, ref := range refs {
		if !slices.Contains(catalog, ref) {
			v.add(section, name, ErrUnknownName, "%s %q", kind, ref)
		}
	}
}

func (v *validator) unique(section string, names []string) {
	seen := map[string]bool{}
	for _, n := range names {
		if n == "" {
			v.add(section, n, ErrMalformed, "missing name")
			continue
		}
		if seen[n] {
			v.add(section, n, ErrMalformed, "duplicate name")
		}
		seen[n] = true
	}
}

func (v *validator) count(section, name string, n int) {
	if n < 0 {
		v.add(section, name, ErrMalformed, "negative count %d", n)
	}
}

// Validate checks every catalog reference and count. isPolicy reports whether a
// policy name has an effect implementation; nil skips that check. All problems
// are returned together.
func (c *Config) Validate(isPolicy func(string) bool) error {
	v := &validator{}
	cat := c.Catalog

	for _, a := range cat.Abilities {
		if !slices.Contains([]string{"move", "refresh", "plus", "special"}, a) {
			v.add("catalog", a, ErrUnknownName, "ability %q", a)
		}
	}
	v.unique("catalog.habitats", cat.Habitats)
	v.unique("catalog.elements", cat.Elements)

	if c.PerPlayer.HandSize <= 0 {
		v.add("per_player", "", ErrMalformed, "hand_size must be positive")
	}
	for _, name := range sortedKeys(c.PerPlayer.Elements) {
		v.known("per_player", name, "element", cat.Elements, []string{name})
		v.count("per_player", name, c.PerPlayer.Elements[name])
	}
	v.known("per_player", "", "ability", cat.Abilities, c.PerPlayer.Abilities)
	for _, a := range c.PerPlayer.Abilities {
		if a == string(state.AbilitySpecial) {
			v.add("per_player", a, ErrMalformed, "special is a card ability, not a token")
		}
	}
	if c.MarketTable <= 0 {
		v.add("market_table", "", ErrMalformed, "must be positive")
	}
	if c.MaxPlayers <= 0 {
		v.add("max_players", "", ErrMalformed, "must be positive")
	}

	plantNames := make([]string, 0, len(c.Plants))
	for _, p := range c.Plants {
		plantNames = append(plantNames, p.Name)
		v.known("plants", p.Name, "habitat", cat.Habitats, p.Habitats)
		v.known("plants", p.Name, "ability", cat.Abilities, p.Abilities)
		v.known("plants", p.Name, "flora", cat.Flora, []string{p.Subtype})
		v.count("plants", p.Name, p.Count)
		parsed, err := cost.ParseCost(p.Cost)
		if err != nil {
			v.add("plants", p.Name, ErrMalformed, "%v", err)
			continue
		}
		if parsed.Total() == 0 {
			v.add("plants", p.Name, ErrMalformed, "empty cost")
		}
		v.known("plants", p.Name, "element", cat.Elements, parsed.Names())
	}
	v.unique("plants", plantNames)

	animalNames := make([]string, 0, len(c.Animals))
	for _, a := range c.Animals {
		animalNames = append(animalNames, a.Name)
		if len(a.Habitats) == 0 {
			v.add("animals", a.Name, ErrMalformed, "no habitats")
		}
		v.known("animals", a.Name, "habitat", cat.Habitats, a.Habitats)
		v.known("animals", a.Name, "ability", cat.Abilities, a.Abilities)
		v.known("animals", a.Name, "fauna", cat.Fauna, []string{a.Subtype})
		v.count("animals", a.Name, a.Count)
	}
	v.unique("animals", animalNames)

	for _, e := range c.Elements {
		v.known("elements", e.Name, "element", cat.Elements, []string{e.Name})
		v.count("elements", e.Name, e.Count)
	}
	for _, d := range c.Disasters {
		v.count("disasters", d.Name, d.Count)
		v.count("disasters", d.Name, d.PerPlayer)
	}
	v.count("extinctions", "", c.Extinctions.Count)

	policyNames := make([]string, 0, len(c.Policies))
	for _, p := range c.Policies {
		policyNames = append(policyNames, p.Name)
		v.count("policies", p.Name, p.Count)
		switch state.PolicyEffect(p.Effect) {
		case state.PolicyPositive, state.PolicyNegative, state.PolicyDual, state.PolicyImplementation:
		default:
			v.add("policies", p.Name, ErrMalformed, "effect %q", p.Effect)
		}
		switch state.PolicyUsage(p.Usage) {
		case state.UsageSingle, state.UsagePermanent:
		default:
			v.add("policies", p.Name, ErrMalformed, "usage %q", p.Usage)
		}
		if p.Duration != nil && (p.Duration.DelayTurns < 0 || p.Duration.ActiveTurns <= 0) {
			v.add("policies", p.Name, ErrMalformed, "duration %d/%d", p.Duration.DelayTurns, p.Duration.ActiveTurns)
		}
		if isPolicy != nil && !isPolicy(p.Name) {
			v.add("policies", p.Name, ErrUnknownName, "no effect named %q", p.Name)
		}
	}
	v.unique("policies", policyNames)

	d := c.Difficulty
	if d.Min <= 0 || d.Max < d.Min || d.ElementPenalty < 0 {
		v.add("difficulty", "", ErrMalformed, "min %d max %d penalty %d", d.Min, d.Max, d.ElementPenalty)
	}

	return errors.Join(v.errs...)
}
