// Package room holds the per-room mutable state: driver presence, live ride
// requests, open subscriptions and the derived indexes over them. A room is
// an isolation unit; all mutation goes through the dispatch engine or the
// sweeper while holding the room's lock, so invariants are enforced under a
// single writer per room and independent rooms never contend.
package room

import (
	"sort"
	"sync"
	"time"

	"github.com/example/ride-dispatch/internal/models"
	"github.com/example/ride-dispatch/internal/observability"
	"github.com/example/ride-dispatch/internal/stream"
)

// Room is one tenant's live state. Methods below must be called with the
// room lock held unless noted otherwise.
type Room struct {
	sync.Mutex

	ID string

	drivers  map[string]*models.Driver
	requests map[string]*models.RideRequest
	subs     map[string]*stream.Subscriber

	// assignedDriver maps riderID -> driverID for assigned requests, used to
	// push a driver's position to their rider past the broadcast throttle.
	assignedDriver map[string]string

	// driverCache is the memoized public list of available located drivers,
	// rebuilt lazily after any driver mutation.
	driverCache      []models.DriverView
	driverCacheValid bool
}

func newRoom(id string) *Room {
	return &Room{
		ID:             id,
		drivers:        make(map[string]*models.Driver),
		requests:       make(map[string]*models.RideRequest),
		subs:           make(map[string]*stream.Subscriber),
		assignedDriver: make(map[string]string),
	}
}

// Driver returns the presence entry for id, or nil.
func (r *Room) Driver(id string) *models.Driver { return r.drivers[id] }

// SetDriver inserts or replaces a presence entry.
func (r *Room) SetDriver(d *models.Driver) {
	if _, ok := r.drivers[d.ID]; !ok {
		observability.DriversOnline.Inc()
	}
	r.drivers[d.ID] = d
	r.driverCacheValid = false
}

// RemoveDriver drops a presence entry. Returns true if it existed.
func (r *Room) RemoveDriver(id string) bool {
	if _, ok := r.drivers[id]; !ok {
		return false
	}
	delete(r.drivers, id)
	r.driverCacheValid = false
	observability.DriversOnline.Dec()
	return true
}

// EachDriver visits every presence entry.
func (r *Room) EachDriver(fn func(*models.Driver)) {
	for _, d := range r.drivers {
		fn(d)
	}
}

// DriverViews returns the cached public projection of available drivers with
// a known position, the list sent in snapshots.
func (r *Room) DriverViews() []models.DriverView {
	if !r.driverCacheValid {
		views := make([]models.DriverView, 0, len(r.drivers))
		for _, d := range r.drivers {
			if !d.Available || d.Last == nil {
				continue
			}
			views = append(views, d.View())
		}
		r.driverCache = views
		r.driverCacheValid = true
	}
	return r.driverCache
}

// Request returns the live request with that id, or nil.
func (r *Room) Request(id string) *models.RideRequest { return r.requests[id] }

// SetRequest inserts or replaces a live request.
func (r *Room) SetRequest(req *models.RideRequest) { r.requests[req.ID] = req }

// RemoveRequest drops a request from live state and clears its assignment
// index entry if present.
func (r *Room) RemoveRequest(id string) {
	req, ok := r.requests[id]
	if !ok {
		return
	}
	if req.Status == models.StatusAssigned || r.assignedDriver[req.RiderID] != "" {
		delete(r.assignedDriver, req.RiderID)
	}
	delete(r.requests, id)
}

// EachRequest visits every live request.
func (r *Room) EachRequest(fn func(*models.RideRequest)) {
	for _, req := range r.requests {
		fn(req)
	}
}

// PendingForRider returns the rider's pending request, if any. At most one
// exists by construction.
func (r *Room) PendingForRider(riderID string) *models.RideRequest {
	for _, req := range r.requests {
		if req.RiderID == riderID && req.Status == models.StatusPending {
			return req
		}
	}
	return nil
}

// ActiveForRider returns the rider's pending or assigned request, if any.
func (r *Room) ActiveForRider(riderID string) *models.RideRequest {
	for _, req := range r.requests {
		if req.RiderID == riderID && req.Status.Active() {
			return req
		}
	}
	return nil
}

// CountActiveForDriver counts pending and assigned requests targeting a
// driver, the quantity bounded by the per-driver capacity.
func (r *Room) CountActiveForDriver(driverID string) int {
	n := 0
	for _, req := range r.requests {
		if req.TargetDriverID == driverID && req.Status.Active() {
			n++
		}
	}
	return n
}

// PhoneBacksOtherRequest reports whether phone already backs an active
// request owned by a different rider.
func (r *Room) PhoneBacksOtherRequest(phone, riderID string) bool {
	for _, req := range r.requests {
		if req.RiderPhone == phone && req.RiderID != riderID && req.Status.Active() {
			return true
		}
	}
	return false
}

// DriverWithPhone returns an available driver whose contact phone matches
// and whose heartbeat is at or after cutoff, or nil. Used to block rider use
// of an active driver's number.
func (r *Room) DriverWithPhone(phone string, cutoff time.Time) *models.Driver {
	if phone == "" {
		return nil
	}
	for _, d := range r.drivers {
		if d.Available && d.Phone == phone && !d.UpdatedAt.Before(cutoff) {
			return d
		}
	}
	return nil
}

// VisibleRequestsForDriver returns the active requests targeting a driver,
// oldest first, as sent in a driver's snapshot.
func (r *Room) VisibleRequestsForDriver(driverID string) []models.RequestView {
	var out []models.RequestView
	for _, req := range r.requests {
		if req.TargetDriverID == driverID && req.Status.Active() {
			out = append(out, req.View())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt < out[j].CreatedAt })
	return out
}

// Assign records riderID as assigned to driverID.
func (r *Room) Assign(riderID, driverID string) { r.assignedDriver[riderID] = driverID }

// Unassign clears a rider's assignment entry.
func (r *Room) Unassign(riderID string) { delete(r.assignedDriver, riderID) }

// AssignedDriverOf returns the driver a rider is assigned to, or "".
func (r *Room) AssignedDriverOf(riderID string) string { return r.assignedDriver[riderID] }

// AddSubscriber registers an open push channel.
func (r *Room) AddSubscriber(sub *stream.Subscriber) {
	r.subs[sub.ID] = sub
	observability.Subscribers.Inc()
}

// RemoveSubscriber drops a push channel after its connection closed.
func (r *Room) RemoveSubscriber(id string) {
	if _, ok := r.subs[id]; !ok {
		return
	}
	delete(r.subs, id)
	observability.Subscribers.Dec()
}

// Broadcast delivers event to every subscriber matching pred. Send errors
// are ignored; dead connections are reaped by their own handlers.
func (r *Room) Broadcast(event string, payload any, pred func(*stream.Subscriber) bool) {
	for _, sub := range r.subs {
		if pred(sub) {
			_ = sub.Send(event, payload)
		}
	}
}
