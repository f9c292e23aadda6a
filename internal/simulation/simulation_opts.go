package simulation

import (
	"math/rand/v2"
	"time"
)

type SimulationOpt func(*Simulation)

func WithTickInterval(d time.Duration) SimulationOpt {
	return func(s *Simulation) {
		s.tickInterval = d
	}
}

// WithZones names the zones created at startup.
func WithZones(zones []string) SimulationOpt {
	return func(s *Simulation) {
		s.zones = zones
	}
}

func WithRand(rng *rand.Rand) SimulationOpt {
	return func(s *Simulation) {
		s.rng = rng
	}
}
