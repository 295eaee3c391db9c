package dispatch

import (
	"fmt"
	"time"

	"github.com/example/ride-dispatch/internal/models"
)

// Hydrate rebuilds room state from the embedded store after a restart. Rows
// already past their timeout are deleted instead of loaded, so a long outage
// does not resurrect a room full of ghosts.
func (e *Engine) Hydrate() error {
	now := e.now()

	rows, err := e.store.LoadDrivers()
	if err != nil {
		return fmt.Errorf("load drivers: %w", err)
	}
	var drivers, droppedDrivers int
	for _, row := range rows {
		d := row.Driver()
		if now.Sub(d.UpdatedAt) > e.cfg.DriverStale {
			if err := e.store.DeleteDriver(row.Room, row.DriverID); err != nil {
				e.log.Warn("stale driver delete failed", "room", row.Room, "driver", row.DriverID, "error", err)
			}
			droppedDrivers++
			continue
		}
		rm := e.rooms.Get(row.Room)
		rm.Lock()
		rm.SetDriver(d)
		rm.Unlock()
		drivers++
	}

	reqRows, err := e.store.LoadRequests()
	if err != nil {
		return fmt.Errorf("load requests: %w", err)
	}
	var requests, droppedRequests int
	for _, row := range reqRows {
		req := row.Request()
		if !e.loadable(req, now) {
			if err := e.store.DeleteRequest(row.ID); err != nil {
				e.log.Warn("stale request delete failed", "request", row.ID, "error", err)
			}
			droppedRequests++
			continue
		}
		rm := e.rooms.Get(row.Room)
		rm.Lock()
		rm.SetRequest(req)
		if req.Status == models.StatusAssigned && req.AssignedDriverID != "" {
			rm.Assign(req.RiderID, req.AssignedDriverID)
		}
		rm.Unlock()
		requests++
	}

	e.log.Info("hydrated",
		"drivers", drivers, "drivers_dropped", droppedDrivers,
		"requests", requests, "requests_dropped", droppedRequests)
	return nil
}

// loadable reports whether a stored request is still live. Terminal or
// unrecognized statuses and rows past their timeout are not.
func (e *Engine) loadable(req *models.RideRequest, now time.Time) bool {
	switch req.Status {
	case models.StatusPending:
		return now.Sub(req.CreatedAt) <= e.cfg.RequestTTL
	case models.StatusAssigned:
		return now.Sub(req.CreatedAt) <= e.cfg.AssignedTTL
	default:
		return false
	}
}
