// Package models holds the in-memory domain types for rooms, driver presence
// and ride requests, plus the public JSON projections pushed to subscribers.
package models

import "time"

// Position is a driver's last known GPS fix. Accuracy, heading and speed are
// optional extras reported by the device.
type Position struct {
	Lat       float64
	Lng       float64
	AccuracyM *float64
	Heading   *float64
	SpeedMps  *float64
	UpdatedAt time.Time
}

// Driver is a room's live presence entry for one driver device.
type Driver struct {
	ID        string
	Name      string
	Phone     string
	Available bool
	Last      *Position
	UpdatedAt time.Time

	// Broadcast throttling state: when and from where the last room-wide
	// driver:update was emitted for this driver.
	LastBroadcastAt  time.Time
	LastBroadcastLat float64
	LastBroadcastLng float64
}

// RequestStatus is the closed set of ride-request states.
type RequestStatus string

const (
	StatusPending   RequestStatus = "pending"
	StatusAssigned  RequestStatus = "assigned"
	StatusCancelled RequestStatus = "cancelled"
	StatusDeclined  RequestStatus = "declined"
	StatusCompleted RequestStatus = "completed"
	StatusExpired   RequestStatus = "expired"
	StatusStale     RequestStatus = "stale"
)

// Active reports whether a status still occupies rider/driver capacity.
func (s RequestStatus) Active() bool {
	return s == StatusPending || s == StatusAssigned
}

// Terminal reports whether a status ends the request's life. Terminal
// requests are removed from live state rather than retained as history.
func (s RequestStatus) Terminal() bool {
	switch s {
	case StatusCancelled, StatusDeclined, StatusCompleted, StatusExpired, StatusStale:
		return true
	}
	return false
}

// RideRequest is one rider's pickup request routed at a target driver.
type RideRequest struct {
	ID         string
	RiderID    string
	Name       string
	RiderPhone string
	Note       string
	Lat        float64
	Lng        float64
	Status     RequestStatus
	CreatedAt  time.Time

	TargetDriverID   string
	TargetDriverName string

	AssignedDriverID    string
	AssignedDriverName  string
	AssignedDriverPhone string
}

// PositionView is the wire shape for a position; timestamps are epoch ms.
type PositionView struct {
	Lat       float64  `json:"lat"`
	Lng       float64  `json:"lng"`
	AccuracyM *float64 `json:"accuracyM"`
	Heading   *float64 `json:"heading"`
	SpeedMps  *float64 `json:"speedMps"`
	UpdatedAt int64    `json:"updatedAt"`
}

// DriverView is the public projection of a driver. The contact phone is
// deliberately omitted; it is only revealed through an accepted request.
type DriverView struct {
	ID   string        `json:"id"`
	Name string        `json:"name"`
	Last *PositionView `json:"last"`
}

// RequestView is the public projection of a ride request.
type RequestView struct {
	ID                  string  `json:"id"`
	RiderID             string  `json:"riderId"`
	Name                string  `json:"name"`
	RiderPhone          string  `json:"riderPhone"`
	Note                string  `json:"note"`
	Status              string  `json:"status"`
	Lat                 float64 `json:"lat"`
	Lng                 float64 `json:"lng"`
	CreatedAt           int64   `json:"createdAt"`
	TargetDriverID      *string `json:"targetDriverId"`
	TargetDriverName    *string `json:"targetDriverName"`
	AssignedDriverID    *string `json:"assignedDriverId"`
	AssignedDriverName  *string `json:"assignedDriverName"`
	AssignedDriverPhone string  `json:"assignedDriverPhone"`
}

// View builds the public projection of a driver.
func (d *Driver) View() DriverView {
	v := DriverView{ID: d.ID, Name: d.Name}
	if d.Last != nil {
		v.Last = &PositionView{
			Lat:       d.Last.Lat,
			Lng:       d.Last.Lng,
			AccuracyM: d.Last.AccuracyM,
			Heading:   d.Last.Heading,
			SpeedMps:  d.Last.SpeedMps,
			UpdatedAt: d.Last.UpdatedAt.UnixMilli(),
		}
	}
	return v
}

// View builds the public projection of a ride request.
func (r *RideRequest) View() RequestView {
	return RequestView{
		ID:                  r.ID,
		RiderID:             r.RiderID,
		Name:                r.Name,
		RiderPhone:          r.RiderPhone,
		Note:                r.Note,
		Status:              string(r.Status),
		Lat:                 r.Lat,
		Lng:                 r.Lng,
		CreatedAt:           r.CreatedAt.UnixMilli(),
		TargetDriverID:      nullable(r.TargetDriverID),
		TargetDriverName:    nullable(r.TargetDriverName),
		AssignedDriverID:    nullable(r.AssignedDriverID),
		AssignedDriverName:  nullable(r.AssignedDriverName),
		AssignedDriverPhone: r.AssignedDriverPhone,
	}
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
