package store

import (
	"context"
	_ "embed"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"attendance-api/internal/models"
)

// schemaSQL is embedded so the service can self-bootstrap its database schema.
//
//go:embed schema.sql
var schemaSQL string

// PostgresStore persists attendance records in PostgreSQL via a pgx pool.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a connection pool, fails fast if the database is
// unreachable, and applies the schema. Safe to run against an existing
// database.
func NewPostgresStore(dbURL string) (*PostgresStore, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	if _, err := pool.Exec(ctx, schemaSQL); err != nil {
		pool.Close()
		return nil, err
	}

	return &PostgresStore{pool: pool}, nil
}

// Ping is used by the readiness endpoint to validate DB connectivity.
func (p *PostgresStore) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

// Close shuts down the connection pool.
func (p *PostgresStore) Close() {
	p.pool.Close()
}

// InsertRecord appends one event. The timestamp is the server receipt time,
// not device-supplied, and the ID comes back from the sequence.
func (p *PostgresStore) InsertRecord(ctx context.Context, deviceID, eventType string, location *string) (models.AttendanceRecord, error) {
	rec := models.AttendanceRecord{
		DeviceID:  deviceID,
		EventType: eventType,
		Timestamp: time.Now().UTC(),
		Location:  location,
	}

	err := p.pool.QueryRow(ctx, `
		INSERT INTO attendance_records(device_id, event_type, timestamp, location)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, rec.DeviceID, rec.EventType, rec.Timestamp, rec.Location).Scan(&rec.ID)
	if err != nil {
		return models.AttendanceRecord{}, err
	}

	return rec, nil
}

// RecentRecords returns up to limit records for the device, newest first.
func (p *PostgresStore) RecentRecords(ctx context.Context, deviceID string, limit int) ([]models.AttendanceRecord, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT id, device_id, event_type, timestamp, location
		FROM attendance_records
		WHERE device_id = $1
		ORDER BY timestamp DESC, id DESC
		LIMIT $2
	`, deviceID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []models.AttendanceRecord
	for rows.Next() {
		var rec models.AttendanceRecord
		if err := rows.Scan(&rec.ID, &rec.DeviceID, &rec.EventType, &rec.Timestamp, &rec.Location); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

// LastRecord returns the most recent record for the device, or nil when the
// device has no records. Absence is not an error.
func (p *PostgresStore) LastRecord(ctx context.Context, deviceID string) (*models.AttendanceRecord, error) {
	var rec models.AttendanceRecord
	err := p.pool.QueryRow(ctx, `
		SELECT id, device_id, event_type, timestamp, location
		FROM attendance_records
		WHERE device_id = $1
		ORDER BY timestamp DESC, id DESC
		LIMIT 1
	`, deviceID).Scan(&rec.ID, &rec.DeviceID, &rec.EventType, &rec.Timestamp, &rec.Location)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &rec, nil
}
