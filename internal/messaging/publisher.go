package messaging

// ZoneSubject is the subject zone batches are published on.
func ZoneSubject(zoneId string) string {
	return "zone-" + zoneId
}

// PlayerSubject is the subject messages for a single user are published on.
func PlayerSubject(userId string) string {
	return "player-" + userId
}

// Bus is the subset of NatsServer the publisher needs.
type Bus interface {
	Publish(subject string, data []byte) error
}

// NatsPublisher delivers zone batches and private messages over NATS.
type NatsPublisher struct {
	bus Bus
}

// NewNatsPublisher wraps a bus for zone and player delivery.
func NewNatsPublisher(bus Bus) *NatsPublisher {
	return &NatsPublisher{bus: bus}
}

func (p *NatsPublisher) PublishToZone(zoneId string, data []byte) error {
	return p.bus.Publish(ZoneSubject(zoneId), data)
}

func (p *NatsPublisher) PublishToPlayer(userId string, data []byte) error {
	return p.bus.Publish(PlayerSubject(userId), data)
}
