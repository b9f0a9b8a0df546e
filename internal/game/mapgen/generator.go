package mapgen

import (
	"golang.org/x/exp/rand"

	"github.com/mitchelldurbincs/santorini/internal/game/core"
)

// PlacementConfig holds configuration for choosing starting lands
type PlacementConfig struct {
	// MinWorkerSpacing is the smallest Chebyshev distance kept between a new
	// worker and every worker already chosen or on the island.
	MinWorkerSpacing int
}

// DefaultPlacementConfig returns a sensible default configuration
func DefaultPlacementConfig() PlacementConfig {
	return PlacementConfig{MinWorkerSpacing: 2}
}

// Generator picks worker placements with a deterministic RNG
type Generator struct {
	config PlacementConfig
	rng    *rand.Rand
}

// NewGenerator creates a new placement generator
func NewGenerator(config PlacementConfig, rng *rand.Rand) *Generator {
	return &Generator{
		config: config,
		rng:    rng,
	}
}

// PlaceWorkers chooses two distinct free lands, avoiding the lands of
// workers already on the island and complete towers. The second return is
// false when fewer than two lands are free.
func (g *Generator) PlaceWorkers(workers, domes []core.Coordinate) (core.PlaceWorkersCommand, bool) {
	blocked := make(map[core.Coordinate]bool, len(workers)+len(domes)+core.WorkersPerPlayer)
	for _, c := range workers {
		blocked[c] = true
	}
	for _, c := range domes {
		blocked[c] = true
	}

	chosen := make([]core.Coordinate, 0, core.WorkersPerPlayer)
	for len(chosen) < core.WorkersPerPlayer {
		c, ok := g.findLand(blocked, workers, chosen)
		if !ok {
			return core.PlaceWorkersCommand{}, false
		}
		blocked[c] = true
		chosen = append(chosen, c)
	}
	return core.PlaceWorkersCommand{WorkerOne: chosen[0], WorkerTwo: chosen[1]}, true
}

func (g *Generator) findLand(blocked map[core.Coordinate]bool, workers, chosen []core.Coordinate) (core.Coordinate, bool) {
	maxAttempts := core.CellCount * 2

	for attempts := 0; attempts < maxAttempts; attempts++ {
		c := core.NewCoordinate(g.rng.Intn(core.BoardSize), g.rng.Intn(core.BoardSize))
		if blocked[c] {
			continue
		}
		if g.spacedFrom(c, workers) && g.spacedFrom(c, chosen) {
			return c, true
		}
	}

	// Fallback: first free land in row-major order, ignoring spacing
	for i := 0; i < core.CellCount; i++ {
		c := core.CoordinateFromIndex(i)
		if !blocked[c] {
			return c, true
		}
	}
	return core.Coordinate{}, false
}

func (g *Generator) spacedFrom(c core.Coordinate, others []core.Coordinate) bool {
	for _, other := range others {
		if c.ChebyshevDistance(other) < g.config.MinWorkerSpacing {
			return false
		}
	}
	return true
}
