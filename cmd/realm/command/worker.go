package command

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/pixil98/go-realm/internal/commands"
	"github.com/pixil98/go-realm/internal/driver"
	"github.com/pixil98/go-realm/internal/events"
	"github.com/pixil98/go-realm/internal/messaging"
	"github.com/pixil98/go-realm/internal/simulation"
	"github.com/pixil98/go-realm/internal/world"
	"github.com/pixil98/go-service"
)

func BuildWorkers(config interface{}) (service.WorkerList, error) {
	cfg, ok := config.(*Config)
	if !ok {
		return nil, fmt.Errorf("unable to cast config")
	}

	repo, err := cfg.Storage.BuildRepository(context.Background())
	if err != nil {
		return nil, fmt.Errorf("creating repository: %w", err)
	}

	bus, err := cfg.Nats.BuildNatsServer()
	if err != nil {
		return nil, fmt.Errorf("creating nats server: %w", err)
	}

	tick := cfg.tickInterval()
	batcher := events.NewBatcher(messaging.NewNatsPublisher(bus))
	queue := commands.NewQueue(commands.DefaultQueueLimit)
	w := world.New(batcher, repo, world.WithTuning(cfg.Simulation.BuildTuning()))
	sim := simulation.New(w, batcher, queue, repo,
		simulation.WithTickInterval(tick),
		simulation.WithZones(cfg.Zones),
	)

	workers := service.WorkerList{
		"nats":     bus,
		"driver":   driver.NewRealmDriver(sim, driver.WithTickLength(tick), driver.WithReady(bus.Ready())),
		"listener": cfg.Listener.BuildListener(bus, queue),
	}
	if c, ok := repo.(contextCloser); ok {
		workers["storage"] = &closer{name: "storage", c: c}
	}

	return workers, nil
}

type contextCloser interface {
	Close(context.Context) error
}

// closer releases a resource when the application shuts down.
type closer struct {
	name string
	c    contextCloser
}

func (c *closer) Start(ctx context.Context) error {
	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := c.c.Close(shutdownCtx); err != nil {
		slog.ErrorContext(ctx, "closing", "resource", c.name, "error", err)
		return err
	}
	return nil
}
