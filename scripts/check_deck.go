package main

import (
	"fmt"
	"log"
	"os"

	"github.com/helcomsecretariat/ecosfera-baltica-digital-sub000/internal/game/deck"
	"github.com/helcomsecretariat/ecosfera-baltica-digital-sub000/internal/game/effects"
	"github.com/helcomsecretariat/ecosfera-baltica-digital-sub000/internal/game/spawn"
	"github.com/helcomsecretariat/ecosfera-baltica-digital-sub000/internal/game/state"
)

// check_deck validates a deck specification and spawns a trial game for
// every player count and difficulty it allows.
//
//	go run ./scripts/check_deck.go [deck.yaml]
func main() {
	path := ""
	if len(os.Args) > 1 {
		path = os.Args[1]
	}

	fmt.Println("=== Ecosfera Deck Check ===")
	if path == "" {
		fmt.Println("Deck: built-in")
	} else {
		fmt.Printf("Deck: %s\n", path)
	}

	cfg, err := deck.Load(path)
	if err != nil {
		log.Fatalf("Failed to load deck: %v", err)
	}

	registry := effects.Default()
	spawner, err := spawn.New(cfg, registry.Has)
	if err != nil {
		log.Fatalf("Deck is invalid:\n%v", err)
	}
	fmt.Println("✓ Deck specification is valid")
	fmt.Printf("  %d plants, %d animals, %d elements, %d disasters, %d policies, %d habitats\n",
		len(cfg.Plants), len(cfg.Animals), len(cfg.Elements), len(cfg.Disasters),
		len(cfg.Policies), len(cfg.Catalog.Habitats))

	failed := 0
	for players := 1; players <= cfg.MaxPlayers; players++ {
		for difficulty := cfg.Difficulty.Min; difficulty <= cfg.Difficulty.Max; difficulty++ {
			gc := state.GameConfig{
				Seed:            fmt.Sprintf("check-%d-%d", players, difficulty),
				PlayersCount:    players,
				Difficulty:      difficulty,
				UseSpecialCards: true,
			}
			s, err := spawner.Spawn(gc)
			if err != nil {
				fmt.Printf("✗ %d players, difficulty %d: %v\n", players, difficulty, err)
				failed++
				continue
			}
			fmt.Printf("✓ %d players, difficulty %d: %d pieces, %d elements in market\n",
				players, difficulty, len(s.AllUIDs()),
				len(s.ElementMarket.Deck)+len(s.ElementMarket.Table))
		}
	}

	if failed > 0 {
		log.Fatalf("%d trial games failed to spawn", failed)
	}
	fmt.Println("=== Deck check complete ===")
}
