package driver

import (
	"context"
	"log/slog"
	"time"
)

const (
	DefaultTickLength = 100 * time.Millisecond
)

// Ticker is advanced once per tick.
type Ticker interface {
	Tick(context.Context) error
}

// Initializer is implemented by tickers that need setup before the first
// tick.
type Initializer interface {
	Init(context.Context) error
}

// RealmDriver runs a Ticker on a fixed cadence. The next tick is scheduled
// only after the previous one returns, so ticks never overlap.
type RealmDriver struct {
	tickLength time.Duration
	ticker     Ticker
	ready      <-chan struct{}
}

func NewRealmDriver(t Ticker, opts ...RealmDriverOpt) *RealmDriver {
	d := &RealmDriver{
		tickLength: DefaultTickLength,
		ticker:     t,
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

func (d *RealmDriver) Start(ctx context.Context) error {
	if d.ready != nil {
		select {
		case <-ctx.Done():
			return nil
		case <-d.ready:
		}
	}

	if i, ok := d.ticker.(Initializer); ok {
		if err := i.Init(ctx); err != nil {
			return err
		}
	}

	slog.InfoContext(ctx, "driver started", "tick", d.tickLength)

	timer := time.NewTimer(d.tickLength)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-timer.C:
			if ctx.Err() != nil {
				return nil
			}
			if err := d.ticker.Tick(ctx); err != nil {
				return err
			}
			timer.Reset(d.tickLength)
		}
	}
}
