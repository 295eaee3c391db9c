package dispatch

import (
	"context"
	"log/slog"
	"time"

	"github.com/example/ride-dispatch/internal/models"
	"github.com/example/ride-dispatch/internal/room"
)

// Sweeper periodically evicts stale drivers and timed-out requests.
type Sweeper struct {
	engine   *Engine
	interval time.Duration
	log      *slog.Logger
}

// NewSweeper builds a sweeper over the engine's rooms.
func NewSweeper(engine *Engine, interval time.Duration, log *slog.Logger) *Sweeper {
	return &Sweeper{engine: engine, interval: interval, log: log}
}

// Run sweeps on every tick until the context is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			drivers, requests := s.engine.SweepOnce()
			if drivers > 0 || requests > 0 {
				s.log.Info("sweep", "drivers_removed", drivers, "requests_removed", requests)
			}
		}
	}
}

// SweepOnce evicts every driver whose last heartbeat is older than the stale
// window, expires pending requests past the pending TTL and drops assigned
// requests past the assigned TTL. It reports how many drivers and requests
// were removed.
func (e *Engine) SweepOnce() (drivers, requests int) {
	now := e.now()
	for _, rm := range e.rooms.All() {
		d, r := e.sweepRoom(rm, now)
		drivers += d
		requests += r
	}
	return drivers, requests
}

func (e *Engine) sweepRoom(rm *room.Room, now time.Time) (drivers, requests int) {
	rm.Lock()
	defer rm.Unlock()

	var staleDrivers []string
	rm.EachDriver(func(d *models.Driver) {
		if now.Sub(d.UpdatedAt) > e.cfg.DriverStale {
			staleDrivers = append(staleDrivers, d.ID)
		}
	})
	for _, id := range staleDrivers {
		e.removeDriver(rm, id)
	}

	var timedOut []*models.RideRequest
	rm.EachRequest(func(req *models.RideRequest) {
		switch req.Status {
		case models.StatusPending:
			if now.Sub(req.CreatedAt) > e.cfg.RequestTTL {
				timedOut = append(timedOut, req)
			}
		case models.StatusAssigned:
			if now.Sub(req.CreatedAt) > e.cfg.AssignedTTL {
				timedOut = append(timedOut, req)
			}
		}
	})
	for _, req := range timedOut {
		action := ActionExpire
		if req.Status == models.StatusAssigned {
			action = ActionGoStale
		}
		if reason, ok := nextStatus(req.Status, action); ok {
			e.removeRequest(rm, req, reason)
		}
	}
	return len(staleDrivers), len(timedOut)
}
