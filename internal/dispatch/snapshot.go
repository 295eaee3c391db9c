package dispatch

import (
	"github.com/example/ride-dispatch/internal/models"
	"github.com/example/ride-dispatch/internal/room"
	"github.com/example/ride-dispatch/internal/stream"
)

// ConfigView is the client-facing slice of the dispatch tunables, sent in
// every snapshot and from the config endpoint.
type ConfigView struct {
	MaxPickupDistanceKm        float64  `json:"maxPickupDistanceKm"`
	MaxPickupMinutes           float64  `json:"maxPickupMinutes"`
	AssumedSpeedKmh            float64  `json:"assumedSpeedKmh"`
	MaxActiveRequestsPerDriver int      `json:"maxActiveRequestsPerDriver"`
	RequestTTLMinutes          float64  `json:"requestTtlMinutes"`
	DriverStaleSeconds         float64  `json:"driverStaleSeconds"`
	RoomCodeRequired           bool     `json:"roomCodeRequired"`
	DaysOpen                   []string `json:"daysOpen"`
}

// Snapshot is the full scoped room state pushed when a subscription opens.
type Snapshot struct {
	Room     string               `json:"room"`
	Now      int64                `json:"now"`
	Config   ConfigView           `json:"config"`
	Drivers  []models.DriverView  `json:"drivers"`
	Requests []models.RequestView `json:"requests"`
}

// ConfigView builds the client-facing view of the tunables in force.
func (e *Engine) ConfigView() ConfigView {
	return ConfigView{
		MaxPickupDistanceKm:        e.cfg.MaxPickupDistanceKm,
		MaxPickupMinutes:           e.cfg.MaxPickupMinutes,
		AssumedSpeedKmh:            e.cfg.AssumedSpeedKmh,
		MaxActiveRequestsPerDriver: e.cfg.MaxActivePerDriver,
		RequestTTLMinutes:          e.cfg.RequestTTL.Minutes(),
		DriverStaleSeconds:         e.cfg.DriverStale.Seconds(),
		RoomCodeRequired:           e.cfg.RoomCodeRequired(),
		DaysOpen:                   e.cfg.DaysOpen,
	}
}

// Subscribe registers the subscriber on its room and sends the initial
// snapshot over the same lock, so no delta can slip in between the two.
func (e *Engine) Subscribe(sub *stream.Subscriber) {
	rm := e.rooms.Get(sub.Room)
	rm.Lock()
	defer rm.Unlock()

	rm.AddSubscriber(sub)
	_ = sub.Send(stream.EventSnapshot, e.snapshotLocked(rm, sub))
}

// Unsubscribe drops the subscriber from its room.
func (e *Engine) Unsubscribe(sub *stream.Subscriber) {
	rm := e.rooms.Get(sub.Room)
	rm.Lock()
	defer rm.Unlock()
	rm.RemoveSubscriber(sub.ID)
}

// Snapshot builds the scoped room state for one subscriber.
func (e *Engine) Snapshot(sub *stream.Subscriber) Snapshot {
	rm := e.rooms.Get(sub.Room)
	rm.Lock()
	defer rm.Unlock()
	return e.snapshotLocked(rm, sub)
}

// snapshotLocked builds the snapshot payload. Drivers are the same for every
// role; requests are scoped, drivers see their own queue and riders see only
// their own active request. Caller holds the room lock.
func (e *Engine) snapshotLocked(rm *room.Room, sub *stream.Subscriber) Snapshot {
	snap := Snapshot{
		Room:     rm.ID,
		Now:      e.now().UnixMilli(),
		Config:   e.ConfigView(),
		Drivers:  rm.DriverViews(),
		Requests: []models.RequestView{},
	}
	switch sub.Role {
	case stream.RoleDriver:
		snap.Requests = rm.VisibleRequestsForDriver(sub.DeviceID)
	case stream.RoleRider:
		if req := rm.ActiveForRider(sub.DeviceID); req != nil {
			snap.Requests = append(snap.Requests, req.View())
		}
	}
	return snap
}
