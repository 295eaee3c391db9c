package dispatch

import (
	"github.com/example/ride-dispatch/internal/apierr"
	"github.com/example/ride-dispatch/internal/models"
	"github.com/example/ride-dispatch/internal/stream"
)

// CancelRequest removes a rider's own pending request. When requestID is
// empty the rider's current pending request is resolved instead.
func (e *Engine) CancelRequest(roomName, riderID, requestID string) error {
	riderID = models.SanitizeID(riderID)
	if riderID == "" {
		return apierr.ErrMissingRiderID
	}

	rm := e.rooms.Get(roomName)
	rm.Lock()
	defer rm.Unlock()

	var req *models.RideRequest
	if requestID != "" {
		req = rm.Request(requestID)
	} else {
		req = rm.PendingForRider(riderID)
	}
	if req == nil || req.RiderID != riderID {
		return apierr.ErrRequestNotFound
	}
	reason, ok := nextStatus(req.Status, ActionCancel)
	if !ok {
		return apierr.ErrRequestNotPending
	}

	e.removeRequest(rm, req, reason)
	return nil
}

// AcceptRequest assigns a pending request to its target driver. The driver's
// session name and phone are recorded on the request so the rider can call.
func (e *Engine) AcceptRequest(roomName, driverID, requestID, driverName, driverPhone string) (*models.RideRequest, error) {
	driverID = models.SanitizeID(driverID)
	if driverID == "" {
		return nil, apierr.ErrMissingDriverID
	}
	if requestID == "" {
		return nil, apierr.ErrMissingRequestID
	}
	phone := models.SanitizePhone(driverPhone)
	if !models.ValidPhone(phone) {
		return nil, apierr.ErrInvalidDriverPhone
	}

	rm := e.rooms.Get(roomName)
	rm.Lock()
	defer rm.Unlock()

	d := rm.Driver(driverID)
	if d == nil {
		return nil, apierr.ErrDriverNotFound
	}
	req := rm.Request(requestID)
	if req == nil {
		return nil, apierr.ErrRequestNotFound
	}
	next, ok := nextStatus(req.Status, ActionAccept)
	if !ok {
		return nil, apierr.ErrRequestNotPending
	}
	if req.TargetDriverID != driverID {
		return nil, apierr.ErrNotTargetDriver
	}
	if d.Last == nil {
		return nil, apierr.ErrDriverNoLocation
	}

	req.Status = next
	req.AssignedDriverID = driverID
	req.AssignedDriverName = models.SanitizeName(driverName)
	req.AssignedDriverPhone = phone
	rm.Assign(req.RiderID, driverID)

	e.persistRequest(rm.ID, req)
	e.broadcastRequest(rm, req, stream.EventRequestUpdate)
	// Re-push the driver so the rider's view has a fresh position to pin.
	e.broadcastDriverUpdate(rm, d, true)
	return req, nil
}

// DeclineRequest removes a pending request, by its target driver only.
func (e *Engine) DeclineRequest(roomName, driverID, requestID string) error {
	driverID = models.SanitizeID(driverID)
	if driverID == "" {
		return apierr.ErrMissingDriverID
	}
	if requestID == "" {
		return apierr.ErrMissingRequestID
	}

	rm := e.rooms.Get(roomName)
	rm.Lock()
	defer rm.Unlock()

	req := rm.Request(requestID)
	if req == nil {
		return apierr.ErrRequestNotFound
	}
	reason, ok := nextStatus(req.Status, ActionDecline)
	if !ok {
		return apierr.ErrRequestNotPending
	}
	if req.TargetDriverID != driverID {
		return apierr.ErrNotTargetDriver
	}

	e.removeRequest(rm, req, reason)
	return nil
}

// CompleteRequest removes an assigned request, by its assigned driver only.
func (e *Engine) CompleteRequest(roomName, driverID, requestID string) error {
	driverID = models.SanitizeID(driverID)
	if driverID == "" {
		return apierr.ErrMissingDriverID
	}
	if requestID == "" {
		return apierr.ErrMissingRequestID
	}

	rm := e.rooms.Get(roomName)
	rm.Lock()
	defer rm.Unlock()

	req := rm.Request(requestID)
	if req == nil {
		return apierr.ErrRequestNotFound
	}
	if req.AssignedDriverID != driverID {
		return apierr.ErrNotAssignedDriver
	}
	reason, ok := nextStatus(req.Status, ActionComplete)
	if !ok {
		return apierr.ErrRequestNotPending
	}

	e.removeRequest(rm, req, reason)
	return nil
}
