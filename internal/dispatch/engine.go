// Package dispatch is the room-scoped engine: driver presence, the matching
// algorithm, the ride-request lifecycle and the fan-out triggered by each
// transition. Every operation locks exactly one room, so invariants hold
// under a single writer per room while independent rooms run in parallel.
package dispatch

import (
	"log/slog"
	"time"

	"github.com/example/ride-dispatch/internal/apierr"
	"github.com/example/ride-dispatch/internal/config"
	"github.com/example/ride-dispatch/internal/geo"
	"github.com/example/ride-dispatch/internal/models"
	"github.com/example/ride-dispatch/internal/observability"
	"github.com/example/ride-dispatch/internal/room"
	"github.com/example/ride-dispatch/internal/storage"
	"github.com/example/ride-dispatch/internal/stream"
)

// Persistence is the slice of the embedded store the engine writes through.
// Writes are best-effort: the in-memory transition never rolls back on a
// store failure.
type Persistence interface {
	SaveDriver(room string, d *models.Driver) error
	DeleteDriver(room, driverID string) error
	SaveRequest(room string, r *models.RideRequest) error
	DeleteRequest(id string) error
	LoadDrivers() ([]storage.OnlineDriver, error)
	LoadRequests() ([]storage.RideRequestRow, error)
}

// Journal is an optional best-effort mirror of room events.
type Journal interface {
	Publish(room, event string, payload any) error
}

// Engine applies all mutating operations to room state.
type Engine struct {
	cfg     config.Dispatch
	rooms   *room.Registry
	store   Persistence
	journal Journal
	log     *slog.Logger

	now func() time.Time
}

// NewEngine builds the engine. journal may be nil.
func NewEngine(cfg config.Dispatch, rooms *room.Registry, store Persistence, journal Journal, log *slog.Logger) *Engine {
	return &Engine{
		cfg:     cfg,
		rooms:   rooms,
		store:   store,
		journal: journal,
		log:     log,
		now:     time.Now,
	}
}

// Config returns the dispatch tunables in force.
func (e *Engine) Config() config.Dispatch { return e.cfg }

// Rooms returns the room registry.
func (e *Engine) Rooms() *room.Registry { return e.rooms }

// --- driver presence -----------------------------------------------------

// StartDriver marks a driver present and available in a room. Called on an
// explicit "go online"; the driver may not have a GPS fix yet.
func (e *Engine) StartDriver(roomName, driverID, name, phone string) (*models.Driver, error) {
	driverID = models.SanitizeID(driverID)
	if driverID == "" {
		return nil, apierr.ErrMissingDriverID
	}

	rm := e.rooms.Get(roomName)
	rm.Lock()
	defer rm.Unlock()

	d := rm.Driver(driverID)
	if d == nil {
		d = &models.Driver{ID: driverID}
	}
	d.Name = models.SanitizeName(name)
	d.Phone = models.SanitizePhone(phone)
	d.Available = true
	d.UpdatedAt = e.now()
	rm.SetDriver(d)

	e.persistDriver(rm.ID, d)
	e.broadcastDriverUpdate(rm, d, true)
	return d, nil
}

// UpdateDriver records a driver's position heartbeat. The room-wide
// driver:update broadcast is throttled by time and movement; the rider
// assigned to this driver always receives the update.
func (e *Engine) UpdateDriver(roomName, driverID, name, phone string, pos models.Position) (*models.Driver, error) {
	driverID = models.SanitizeID(driverID)
	if driverID == "" {
		return nil, apierr.ErrMissingDriverID
	}
	if !models.ValidLatLng(pos.Lat, pos.Lng) {
		return nil, apierr.ErrInvalidLatLng
	}

	rm := e.rooms.Get(roomName)
	rm.Lock()
	defer rm.Unlock()

	now := e.now()
	d := rm.Driver(driverID)
	if d == nil {
		d = &models.Driver{ID: driverID}
	}
	if name != "" {
		d.Name = models.SanitizeName(name)
	} else if d.Name == "" {
		d.Name = models.DefaultName
	}
	if phone != "" {
		d.Phone = models.SanitizePhone(phone)
	}
	d.Available = true
	pos.UpdatedAt = now
	d.Last = &pos
	d.UpdatedAt = now
	rm.SetDriver(d)

	e.persistDriver(rm.ID, d)
	e.broadcastDriverUpdate(rm, d, false)
	return d, nil
}

// StopDriver removes a driver's presence from a room.
func (e *Engine) StopDriver(roomName, driverID string) error {
	driverID = models.SanitizeID(driverID)
	if driverID == "" {
		return apierr.ErrMissingDriverID
	}

	rm := e.rooms.Get(roomName)
	rm.Lock()
	defer rm.Unlock()

	e.removeDriver(rm, driverID)
	return nil
}

// removeDriver drops presence, mirrors the delete and fans out the removal.
// Caller holds the room lock.
func (e *Engine) removeDriver(rm *room.Room, driverID string) {
	if !rm.RemoveDriver(driverID) {
		return
	}
	if err := e.store.DeleteDriver(rm.ID, driverID); err != nil {
		observability.StoreErrors.Inc()
		e.log.Warn("driver delete failed", "room", rm.ID, "driver", driverID, "error", err)
	}
	payload := map[string]string{"id": driverID}
	rm.Broadcast(stream.EventDriverRemove, payload, stream.SeesDriverPresence)
	e.publish(rm.ID, stream.EventDriverRemove, payload)
}

// broadcastDriverUpdate fans out a driver's public state. When force is
// false the room-wide emission is suppressed unless the configured time gap
// elapsed or the driver moved far enough since the last broadcast; the
// assigned rider is exempt from the throttle. Caller holds the room lock.
func (e *Engine) broadcastDriverUpdate(rm *room.Room, d *models.Driver, force bool) {
	view := d.View()
	roomWide := force || e.shouldBroadcast(d)
	if roomWide {
		now := e.now()
		d.LastBroadcastAt = now
		if d.Last != nil {
			d.LastBroadcastLat = d.Last.Lat
			d.LastBroadcastLng = d.Last.Lng
		}
		rm.Broadcast(stream.EventDriverUpdate, view, stream.SeesDriverPresence)
		e.publish(rm.ID, stream.EventDriverUpdate, view)
		return
	}
	rm.Broadcast(stream.EventDriverUpdate, view, func(sub *stream.Subscriber) bool {
		return stream.IsAssignedRider(sub, d.ID, rm.AssignedDriverOf)
	})
}

// shouldBroadcast applies the position-broadcast throttle.
func (e *Engine) shouldBroadcast(d *models.Driver) bool {
	if d.LastBroadcastAt.IsZero() {
		return true
	}
	if e.now().Sub(d.LastBroadcastAt) >= e.cfg.BroadcastMinGap {
		return true
	}
	if d.Last == nil {
		return false
	}
	movedKm := geo.DistanceKm(d.LastBroadcastLat, d.LastBroadcastLng, d.Last.Lat, d.Last.Lng)
	return movedKm*1000 >= e.cfg.BroadcastMinMoveM
}

// --- shared helpers ------------------------------------------------------

func (e *Engine) persistDriver(roomID string, d *models.Driver) {
	if err := e.store.SaveDriver(roomID, d); err != nil {
		observability.StoreErrors.Inc()
		e.log.Warn("driver save failed", "room", roomID, "driver", d.ID, "error", err)
	}
}

func (e *Engine) persistRequest(roomID string, r *models.RideRequest) {
	if err := e.store.SaveRequest(roomID, r); err != nil {
		observability.StoreErrors.Inc()
		e.log.Warn("request save failed", "room", roomID, "request", r.ID, "error", err)
	}
}

func (e *Engine) publish(roomID, event string, payload any) {
	if e.journal == nil {
		return
	}
	if err := e.journal.Publish(roomID, event, payload); err != nil {
		e.log.Warn("journal publish failed", "room", roomID, "event", event, "error", err)
	}
}
