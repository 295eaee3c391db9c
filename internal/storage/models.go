package storage

import (
	"time"

	"github.com/example/ride-dispatch/internal/models"
)

// DriverCredential is a durable driver identity, keyed by phone. The login
// code is the phone's last four digits and is unique across the table.
type DriverCredential struct {
	Phone     string `gorm:"primaryKey;size:15"`
	Code      string `gorm:"uniqueIndex;size:4"`
	Name      string `gorm:"size:32"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// OnlineDriver mirrors a room's live driver presence for crash recovery.
// Timestamps are epoch milliseconds, matching the wire protocol.
type OnlineDriver struct {
	Room     string `gorm:"primaryKey;size:40"`
	DriverID string `gorm:"primaryKey;size:80"`
	Name     string `gorm:"size:32"`
	Phone    string `gorm:"size:15"`

	HasFix    bool
	Lat       float64
	Lng       float64
	AccuracyM *float64
	Heading   *float64
	SpeedMps  *float64

	PositionAt  int64
	UpdatedAt   int64
	BroadcastAt int64
}

// RideRequestRow mirrors a live ride request.
type RideRequestRow struct {
	ID         string `gorm:"primaryKey;size:64"`
	Room       string `gorm:"index;size:40"`
	RiderID    string `gorm:"size:80"`
	Name       string `gorm:"size:32"`
	RiderPhone string `gorm:"size:15"`
	Note       string `gorm:"size:120"`
	Status     string `gorm:"size:16"`
	Lat        float64
	Lng        float64
	CreatedAt  int64

	TargetDriverID   string `gorm:"size:80"`
	TargetDriverName string `gorm:"size:32"`

	AssignedDriverID    string `gorm:"size:80"`
	AssignedDriverName  string `gorm:"size:32"`
	AssignedDriverPhone string `gorm:"size:15"`
}

func driverRow(room string, d *models.Driver) OnlineDriver {
	row := OnlineDriver{
		Room:        room,
		DriverID:    d.ID,
		Name:        d.Name,
		Phone:       d.Phone,
		UpdatedAt:   d.UpdatedAt.UnixMilli(),
		BroadcastAt: d.LastBroadcastAt.UnixMilli(),
	}
	if d.Last != nil {
		row.HasFix = true
		row.Lat = d.Last.Lat
		row.Lng = d.Last.Lng
		row.AccuracyM = d.Last.AccuracyM
		row.Heading = d.Last.Heading
		row.SpeedMps = d.Last.SpeedMps
		row.PositionAt = d.Last.UpdatedAt.UnixMilli()
	}
	return row
}

// Driver rebuilds the in-memory presence entry from a stored row.
func (row OnlineDriver) Driver() *models.Driver {
	d := &models.Driver{
		ID:        row.DriverID,
		Name:      row.Name,
		Phone:     row.Phone,
		Available: true,
		UpdatedAt: time.UnixMilli(row.UpdatedAt),
	}
	if row.BroadcastAt > 0 {
		d.LastBroadcastAt = time.UnixMilli(row.BroadcastAt)
		d.LastBroadcastLat = row.Lat
		d.LastBroadcastLng = row.Lng
	}
	if row.HasFix {
		d.Last = &models.Position{
			Lat:       row.Lat,
			Lng:       row.Lng,
			AccuracyM: row.AccuracyM,
			Heading:   row.Heading,
			SpeedMps:  row.SpeedMps,
			UpdatedAt: time.UnixMilli(row.PositionAt),
		}
	}
	return d
}

func requestRow(room string, r *models.RideRequest) RideRequestRow {
	return RideRequestRow{
		ID:                  r.ID,
		Room:                room,
		RiderID:             r.RiderID,
		Name:                r.Name,
		RiderPhone:          r.RiderPhone,
		Note:                r.Note,
		Status:              string(r.Status),
		Lat:                 r.Lat,
		Lng:                 r.Lng,
		CreatedAt:           r.CreatedAt.UnixMilli(),
		TargetDriverID:      r.TargetDriverID,
		TargetDriverName:    r.TargetDriverName,
		AssignedDriverID:    r.AssignedDriverID,
		AssignedDriverName:  r.AssignedDriverName,
		AssignedDriverPhone: r.AssignedDriverPhone,
	}
}

// Request rebuilds the in-memory ride request from a stored row.
func (row RideRequestRow) Request() *models.RideRequest {
	return &models.RideRequest{
		ID:                  row.ID,
		RiderID:             row.RiderID,
		Name:                row.Name,
		RiderPhone:          row.RiderPhone,
		Note:                row.Note,
		Status:              models.RequestStatus(row.Status),
		Lat:                 row.Lat,
		Lng:                 row.Lng,
		CreatedAt:           time.UnixMilli(row.CreatedAt),
		TargetDriverID:      row.TargetDriverID,
		TargetDriverName:    row.TargetDriverName,
		AssignedDriverID:    row.AssignedDriverID,
		AssignedDriverName:  row.AssignedDriverName,
		AssignedDriverPhone: row.AssignedDriverPhone,
	}
}
