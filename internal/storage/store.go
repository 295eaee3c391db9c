// Package storage is the embedded relational store backing crash recovery.
// The in-memory room state stays the source of truth for live sessions; this
// store is written through best-effort and read back only during hydration.
package storage

import (
	"errors"
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/example/ride-dispatch/internal/models"
)

// Store wraps the sqlite database.
type Store struct {
	db *gorm.DB
}

// Open opens (or creates) the sqlite file and migrates the schema.
func Open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite %q: %w", path, err)
	}
	if err := db.AutoMigrate(&DriverCredential{}, &OnlineDriver{}, &RideRequestRow{}); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// SaveDriver upserts a room's driver presence row.
func (s *Store) SaveDriver(room string, d *models.Driver) error {
	row := driverRow(room, d)
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "room"}, {Name: "driver_id"}},
		UpdateAll: true,
	}).Create(&row).Error
}

// DeleteDriver removes a driver presence row.
func (s *Store) DeleteDriver(room, driverID string) error {
	return s.db.Delete(&OnlineDriver{}, "room = ? AND driver_id = ?", room, driverID).Error
}

// LoadDrivers returns every stored presence row, for hydration.
func (s *Store) LoadDrivers() ([]OnlineDriver, error) {
	var rows []OnlineDriver
	if err := s.db.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// SaveRequest upserts a ride request row.
func (s *Store) SaveRequest(room string, r *models.RideRequest) error {
	row := requestRow(room, r)
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(&row).Error
}

// DeleteRequest removes a ride request row.
func (s *Store) DeleteRequest(id string) error {
	return s.db.Delete(&RideRequestRow{}, "id = ?", id).Error
}

// LoadRequests returns every stored ride request row, for hydration.
func (s *Store) LoadRequests() ([]RideRequestRow, error) {
	var rows []RideRequestRow
	if err := s.db.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// CredentialByPhone returns the credential registered for a phone, or nil.
func (s *Store) CredentialByPhone(phone string) (*DriverCredential, error) {
	var cred DriverCredential
	err := s.db.First(&cred, "phone = ?", phone).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cred, nil
}

// CredentialByCode returns the credential holding a login code, or nil.
// The unique index on code guarantees at most one.
func (s *Store) CredentialByCode(code string) (*DriverCredential, error) {
	var cred DriverCredential
	err := s.db.First(&cred, "code = ?", code).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cred, nil
}

// CreateCredential inserts a new credential row.
func (s *Store) CreateCredential(cred *DriverCredential) error {
	return s.db.Create(cred).Error
}
