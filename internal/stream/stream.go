// Package stream implements the push side of the subscription protocol:
// subscriber descriptors, transport sinks and the per-event scoping rules.
package stream

import (
	"time"

	"github.com/example/ride-dispatch/internal/observability"
)

// Event names pushed to subscribers.
const (
	EventSnapshot      = "snapshot"
	EventDriverUpdate  = "driver:update"
	EventDriverRemove  = "driver:remove"
	EventRequestNew    = "request:new"
	EventRequestUpdate = "request:update"
	EventRequestRemove = "request:remove"
	EventPing          = "ping"
)

// Role is a subscriber's side of the marketplace.
type Role string

const (
	RoleDriver Role = "driver"
	RoleRider  Role = "rider"
)

// ParseRole maps a client-supplied role string to a Role, defaulting to rider.
func ParseRole(s string) Role {
	if s == string(RoleDriver) {
		return RoleDriver
	}
	return RoleRider
}

// Sink is a transport capable of delivering named events to one client.
type Sink interface {
	Send(event string, payload any) error
	Close() error
}

// Subscriber is the immutable descriptor of one open push channel.
type Subscriber struct {
	ID        string
	Room      string
	Role      Role
	DeviceID  string
	CreatedAt time.Time

	sink Sink
}

// NewSubscriber binds a descriptor to its transport sink.
func NewSubscriber(id, room string, role Role, deviceID string, sink Sink) *Subscriber {
	return &Subscriber{
		ID:        id,
		Room:      room,
		Role:      role,
		DeviceID:  deviceID,
		CreatedAt: time.Now(),
		sink:      sink,
	}
}

// Send delivers one event over the subscriber's sink. Delivery errors are
// returned but not fatal to the caller; a dead connection is reaped when its
// handler observes the close.
func (s *Subscriber) Send(event string, payload any) error {
	err := s.sink.Send(event, payload)
	if err == nil {
		observability.EventsPushed.WithLabelValues(event).Inc()
	}
	return err
}
