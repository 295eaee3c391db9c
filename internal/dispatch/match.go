package dispatch

import (
	"math"

	"github.com/example/ride-dispatch/internal/apierr"
	"github.com/example/ride-dispatch/internal/geo"
	"github.com/example/ride-dispatch/internal/models"
	"github.com/example/ride-dispatch/internal/observability"
	"github.com/example/ride-dispatch/internal/room"
)

// Match is the outcome of a nearest-driver search.
type Match struct {
	Driver     models.DriverView `json:"driver"`
	DistanceKm float64           `json:"distanceKm"`
	EtaMinutes float64           `json:"etaMinutes"`
}

// MatchNearest finds the closest available driver to a pickup point.
func (e *Engine) MatchNearest(roomName string, lat, lng float64) (*Match, error) {
	if !models.ValidLatLng(lat, lng) {
		return nil, apierr.ErrInvalidLatLng
	}

	rm := e.rooms.Get(roomName)
	rm.Lock()
	defer rm.Unlock()

	best := e.matchNearestLocked(rm, lat, lng)
	if best == nil {
		return nil, apierr.ErrNoDrivers
	}
	observability.MatchesTotal.Inc()
	return best, nil
}

// matchNearestLocked scans available drivers with a known position, skips
// any at capacity or beyond the pickup range, and returns the minimum-ETA
// candidate. Exact ties resolve by map iteration order, which is
// non-deterministic; candidates at identical distances are interchangeable.
// Caller holds the room lock.
func (e *Engine) matchNearestLocked(rm *room.Room, lat, lng float64) *Match {
	var best *Match
	bestEta := math.Inf(1)
	rm.EachDriver(func(d *models.Driver) {
		if !d.Available || d.Last == nil {
			return
		}
		if rm.CountActiveForDriver(d.ID) >= e.cfg.MaxActivePerDriver {
			return
		}
		dist := geo.DistanceKm(d.Last.Lat, d.Last.Lng, lat, lng)
		if dist > e.cfg.MaxPickupDistanceKm {
			return
		}
		eta := geo.ETAMinutes(dist, e.cfg.AssumedSpeedKmh)
		if eta < bestEta {
			bestEta = eta
			best = &Match{Driver: d.View(), DistanceKm: dist, EtaMinutes: eta}
		}
	})
	return best
}
