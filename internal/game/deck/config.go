// Package deck loads the declarative deck specification and expands it into
// concrete card and tile instances.
package deck

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultDeck []byte

// Catalog lists every name cards may reference.
type Catalog struct {
	Habitats  []string `yaml:"habitats"`
	Abilities []string `yaml:"abilities"`
	Elements  []string `yaml:"elements"`
	Fauna     []string `yaml:"fauna"`
	Flora     []string `yaml:"flora"`
}

// PerPlayer is each player's starting allotment.
type PerPlayer struct {
	Elements  map[string]int `yaml:"elements"`
	Abilities []string       `yaml:"abilities"`
	HandSize  int            `yaml:"hand_size"`
}

// PlantSpec describes a plant card.
type PlantSpec struct {
	Name      string   `yaml:"name"`
	Habitats  []string `yaml:"habitats"`
	Abilities []string `yaml:"abilities"`
	Cost      string   `yaml:"cost"`
	Subtype   string   `yaml:"subtype"`
	Count     int      `yaml:"count"`
}

// AnimalSpec describes an animal card.
type AnimalSpec struct {
	Name      string   `yaml:"name"`
	Habitats  []string `yaml:"habitats"`
	Abilities []string `yaml:"abilities"`
	Subtype   string   `yaml:"subtype"`
	Count     int      `yaml:"count"`
}

// ElementSpec describes the element market.
type ElementSpec struct {
	Name  string `yaml:"name"`
	Count int    `yaml:"count"`
}

// DisasterSpec describes a disaster card. PerPlayer cards are added per player.
type DisasterSpec struct {
	Name      string `yaml:"name"`
	Count     int    `yaml:"count"`
	PerPlayer int    `yaml:"per_player"`
}

// ExtinctionSpec sizes the extinction tile pile.
type ExtinctionSpec struct {
	Count int `yaml:"count"`
}

// DurationSpec is a multi-turn policy counter.
type DurationSpec struct {
	DelayTurns  int `yaml:"delay_turns"`
	ActiveTurns int `yaml:"active_turns"`
}

// PolicySpec describes a policy card.
type PolicySpec struct {
	Name     string        `yaml:"name"`
	Effect   string        `yaml:"effect"`
	Theme    string        `yaml:"theme"`
	Usage    string        `yaml:"usage"`
	Count    int           `yaml:"count"`
	Duration *DurationSpec `yaml:"duration"`
}

// DifficultySpec bounds difficulty and sets how many element cards each level removes.
type DifficultySpec struct {
	Min            int `yaml:"min"`
	Max            int `yaml:"max"`
	ElementPenalty int `yaml:"element_penalty"`
}

// Config is the whole deck specification.
type Config struct {
	Catalog     Catalog        `yaml:"catalog"`
	PerPlayer   PerPlayer      `yaml:"per_player"`
	MarketTable int            `yaml:"market_table"`
	MaxPlayers  int            `yaml:"max_players"`
	Plants      []PlantSpec    `yaml:"plants"`
	Animals     []AnimalSpec   `yaml:"animals"`
	Elements    []ElementSpec  `yaml:"elements"`
	Disasters   []DisasterSpec `yaml:"disasters"`
	Extinctions ExtinctionSpec `yaml:"extinctions"`
	Policies    []PolicySpec   `yaml:"policies"`
	Difficulty  DifficultySpec `yaml:"difficulty"`
}

// Parse decodes a deck specification. Unknown fields are rejected.
func Parse(r io.Reader) (*Config, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var cfg Config
	if err := dec.Decode(&cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &ConfigError{Section: "deck", Err: fmt.Errorf("%w: empty document", ErrMalformed)}
		}
		return nil, &ConfigError{Section: "deck", Err: fmt.Errorf("%w: %v", ErrMalformed, err)}
	}
	return &cfg, nil
}

// Load reads the deck specification at path, or the built-in deck when path is empty.
func Load(path string) (*Config, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read deck %s: %w", path, err)
	}
	return Parse(bytes.NewReader(data))
}

// Default returns the built-in deck.
func Default() (*Config, error) {
	return Parse(bytes.NewReader(defaultDeck))
}
