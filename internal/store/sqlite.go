package store

import (
	"context"
	"errors"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"attendance-api/internal/models"
)

// SQLiteStore persists attendance records in a local SQLite file via GORM.
// This is the default backend so the service runs without any external
// dependencies.
type SQLiteStore struct {
	db *gorm.DB
}

// NewSQLiteStore opens (or creates) the database file and auto-migrates the
// record table.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(&models.AttendanceRecord{}); err != nil {
		return nil, err
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *SQLiteStore) Close() {
	if sqlDB, err := s.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

// InsertRecord appends one event with the server receipt time.
func (s *SQLiteStore) InsertRecord(ctx context.Context, deviceID, eventType string, location *string) (models.AttendanceRecord, error) {
	rec := models.AttendanceRecord{
		DeviceID:  deviceID,
		EventType: eventType,
		Timestamp: time.Now().UTC(),
		Location:  location,
	}

	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return models.AttendanceRecord{}, err
	}

	return rec, nil
}

// RecentRecords returns up to limit records for the device, newest first.
func (s *SQLiteStore) RecentRecords(ctx context.Context, deviceID string, limit int) ([]models.AttendanceRecord, error) {
	var records []models.AttendanceRecord
	err := s.db.WithContext(ctx).
		Where("device_id = ?", deviceID).
		Order("timestamp DESC, id DESC").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

// LastRecord returns the most recent record for the device, or nil when the
// device has no records.
func (s *SQLiteStore) LastRecord(ctx context.Context, deviceID string) (*models.AttendanceRecord, error) {
	var rec models.AttendanceRecord
	err := s.db.WithContext(ctx).
		Where("device_id = ?", deviceID).
		Order("timestamp DESC, id DESC").
		First(&rec).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &rec, nil
}
