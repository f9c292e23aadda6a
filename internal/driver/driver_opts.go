package driver

import "time"

type RealmDriverOpt func(*RealmDriver)

func WithTickLength(tickLength time.Duration) RealmDriverOpt {
	return func(d *RealmDriver) {
		d.tickLength = tickLength
	}
}

// WithReady delays the first tick until ready is closed.
func WithReady(ready <-chan struct{}) RealmDriverOpt {
	return func(d *RealmDriver) {
		d.ready = ready
	}
}
