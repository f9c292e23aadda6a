package world

import (
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
)

type WorldOpt func(*World)

func WithClock(now func() time.Time) WorldOpt {
	return func(w *World) {
		w.now = now
	}
}

func WithRand(rng *rand.Rand) WorldOpt {
	return func(w *World) {
		w.rng = rng
	}
}

func WithTuning(t Tuning) WorldOpt {
	return func(w *World) {
		w.tuning = t
	}
}

// WithIdGenerator replaces the uuid generator used for enemies and items.
func WithIdGenerator(f func() string) WorldOpt {
	return func(w *World) {
		w.newId = f
	}
}

func defaultId() string {
	return uuid.NewString()
}
