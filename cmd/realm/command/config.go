package command

import (
	"fmt"
	"time"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-realm/internal/world"
)

const minTickInterval = 10 * time.Millisecond

type Config struct {
	TickInterval string           `json:"tick_interval"`
	Zones        []string         `json:"zones"`
	Simulation   SimulationConfig `json:"simulation"`
	Storage      StorageConfig    `json:"storage"`
	Nats         NatsConfig       `json:"nats"`
	Listener     ListenerConfig   `json:"listener"`
}

func (c *Config) Validate() error {
	el := errors.NewErrorList()

	if c.TickInterval != "" {
		d, err := time.ParseDuration(c.TickInterval)
		if err != nil {
			el.Add(fmt.Errorf("parsing tick_interval: %w", err))
		} else if d < minTickInterval {
			el.Add(fmt.Errorf("tick_interval must be at least %s", minTickInterval))
		}
	}

	for i, z := range c.Zones {
		if z == "" {
			el.Add(fmt.Errorf("zone %d: id must not be empty", i))
		}
	}

	el.Add(c.Simulation.validate())
	el.Add(c.Storage.validate())
	el.Add(c.Nats.validate())
	el.Add(c.Listener.validate())

	return el.Err()
}

func (c *Config) tickInterval() time.Duration {
	d, err := time.ParseDuration(c.TickInterval)
	if err != nil || c.TickInterval == "" {
		return world.DefaultTickInterval
	}
	return d
}
