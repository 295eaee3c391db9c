package dispatch

import (
	"math"

	"github.com/google/uuid"

	"github.com/example/ride-dispatch/internal/apierr"
	"github.com/example/ride-dispatch/internal/geo"
	"github.com/example/ride-dispatch/internal/models"
	"github.com/example/ride-dispatch/internal/observability"
	"github.com/example/ride-dispatch/internal/room"
	"github.com/example/ride-dispatch/internal/stream"
)

// CreateRequestParams carries a rider's pickup request.
type CreateRequestParams struct {
	RiderID        string
	Name           string
	Phone          string
	Lat, Lng       float64
	TargetDriverID string
	Note           string
}

// CreateRequest validates and creates a pending ride request, routed either
// at an explicit target driver or at the nearest match. The checks run in a
// fixed order and the first failure wins. Resubmission by a rider with a
// pending request returns that request unchanged.
func (e *Engine) CreateRequest(roomName string, p CreateRequestParams) (*models.RideRequest, error) {
	riderID := models.SanitizeID(p.RiderID)
	if riderID == "" {
		return nil, apierr.ErrMissingRiderID
	}
	phone := models.SanitizePhone(p.Phone)
	if !models.ValidPhone(phone) {
		return nil, apierr.ErrInvalidRiderPhone
	}
	if !models.ValidLatLng(p.Lat, p.Lng) {
		return nil, apierr.ErrInvalidLatLng
	}

	rm := e.rooms.Get(roomName)
	rm.Lock()
	defer rm.Unlock()

	now := e.now()

	// Identity collision rules: a phone fronting an active driver is
	// categorically blocked for riders, and a phone may back at most one
	// active request, its own rider excepted.
	if rm.DriverWithPhone(phone, now.Add(-e.cfg.DriverStale)) != nil {
		return nil, apierr.ErrRiderPhoneReserved
	}
	if rm.PhoneBacksOtherRequest(phone, riderID) {
		return nil, apierr.ErrRiderPhoneInUse
	}

	targetID := models.SanitizeID(p.TargetDriverID)
	if targetID == "" {
		m := e.matchNearestLocked(rm, p.Lat, p.Lng)
		if m == nil {
			return nil, apierr.ErrNoDrivers
		}
		observability.MatchesTotal.Inc()
		targetID = m.Driver.ID
	}

	target := rm.Driver(targetID)
	if target == nil || !target.Available {
		return nil, apierr.ErrDriverNotFound
	}
	if target.Last == nil {
		return nil, apierr.ErrDriverNoLocation
	}
	if rm.CountActiveForDriver(targetID) >= e.cfg.MaxActivePerDriver {
		return nil, apierr.ErrDriverAtCapacity.With("capacity", e.cfg.MaxActivePerDriver)
	}
	distKm := geo.DistanceKm(target.Last.Lat, target.Last.Lng, p.Lat, p.Lng)
	if distKm > e.cfg.MaxPickupDistanceKm {
		return nil, apierr.ErrTooFar.
			With("maxDistanceKm", e.cfg.MaxPickupDistanceKm).
			With("distanceKm", math.Round(distKm*100)/100)
	}

	// Idempotency: one pending request per rider.
	if existing := rm.PendingForRider(riderID); existing != nil {
		return existing, nil
	}

	req := &models.RideRequest{
		ID:               uuid.NewString(),
		RiderID:          riderID,
		Name:             models.SanitizeName(p.Name),
		RiderPhone:       phone,
		Note:             models.SanitizeNote(p.Note),
		Lat:              p.Lat,
		Lng:              p.Lng,
		Status:           models.StatusPending,
		CreatedAt:        now,
		TargetDriverID:   targetID,
		TargetDriverName: target.Name,
	}
	rm.SetRequest(req)

	e.persistRequest(rm.ID, req)
	observability.RequestsCreated.Inc()
	e.broadcastRequest(rm, req, stream.EventRequestNew)
	return req, nil
}

// broadcastRequest pushes a request projection to its rider and its target
// driver. Caller holds the room lock.
func (e *Engine) broadcastRequest(rm *room.Room, req *models.RideRequest, event string) {
	view := req.View()
	rm.Broadcast(event, view, func(sub *stream.Subscriber) bool {
		return stream.SeesRequest(sub, req.RiderID, req.TargetDriverID)
	})
	e.publish(rm.ID, event, view)
}

// removeRequest drops a request from live state with a terminal reason,
// mirrors the delete and fans out the removal. Caller holds the room lock.
func (e *Engine) removeRequest(rm *room.Room, req *models.RideRequest, reason models.RequestStatus) {
	req.Status = reason
	rm.RemoveRequest(req.ID)
	if err := e.store.DeleteRequest(req.ID); err != nil {
		observability.StoreErrors.Inc()
		e.log.Warn("request delete failed", "room", rm.ID, "request", req.ID, "error", err)
	}
	observability.RequestsRemoved.WithLabelValues(string(reason)).Inc()

	payload := map[string]any{"id": req.ID, "reason": string(reason)}
	rm.Broadcast(stream.EventRequestRemove, payload, func(sub *stream.Subscriber) bool {
		return stream.SeesRequestRemove(sub, req.RiderID, req.TargetDriverID)
	})
	e.publish(rm.ID, stream.EventRequestRemove, payload)
}
