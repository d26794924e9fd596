package store

import (
	"context"
	"strings"

	"attendance-api/internal/models"
)

// AttendanceStore is the persistence contract for attendance events.
// Inserts assign the record ID and the server-receipt timestamp; queries
// order by timestamp descending with ID descending as the tie-breaker, so
// "most recent" is stable for same-timestamp rows.
type AttendanceStore interface {
	InsertRecord(ctx context.Context, deviceID, eventType string, location *string) (models.AttendanceRecord, error)
	RecentRecords(ctx context.Context, deviceID string, limit int) ([]models.AttendanceRecord, error)
	LastRecord(ctx context.Context, deviceID string) (*models.AttendanceRecord, error)
	Ping(ctx context.Context) error
	Close()
}

// Open selects a backend from the DATABASE_URL: postgres:// URLs get the
// pgx pool, anything else is treated as a SQLite file path. Both backends
// bootstrap their schema so a fresh database needs no manual migration.
func Open(databaseURL string) (AttendanceStore, error) {
	if strings.HasPrefix(databaseURL, "postgres://") || strings.HasPrefix(databaseURL, "postgresql://") {
		return NewPostgresStore(databaseURL)
	}
	return NewSQLiteStore(strings.TrimPrefix(databaseURL, "sqlite://"))
}
