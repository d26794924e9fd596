package models

import "time"

// AttendanceRecord is one check-in/check-out event. Rows are append-only:
// created by the register endpoint (or the MQTT bridge), never updated or
// deleted by this service.
type AttendanceRecord struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	DeviceID  string    `gorm:"size:50;not null;index" json:"device_id"`
	EventType string    `gorm:"size:10;not null" json:"event_type"`
	Timestamp time.Time `gorm:"not null" json:"timestamp"`
	Location  *string   `gorm:"size:100" json:"location"`
}

// TableName keeps the table name stable across backends.
func (AttendanceRecord) TableName() string { return "attendance_records" }

// Event types accepted by the register endpoint.
const (
	EventIn  = "in"
	EventOut = "out"
)

// ValidEventType reports whether t is one of the accepted event types.
// Alternation (in/out/in/...) is deliberately not enforced.
func ValidEventType(t string) bool {
	return t == EventIn || t == EventOut
}

// RegisterRequest is the POST /api/attendance payload.
// location is optional; absent stays null, never empty string.
type RegisterRequest struct {
	DeviceID  string  `json:"device_id"`
	EventType string  `json:"event_type"`
	Location  *string `json:"location,omitempty"`
}

// RegisterResponse is returned by POST /api/attendance on success.
type RegisterResponse struct {
	Status    string `json:"status"`
	RecordID  int64  `json:"record_id"`
	Timestamp string `json:"timestamp"`
}

// RecordView is one history entry in GET /api/attendance/{device_id}.
type RecordView struct {
	ID        int64   `json:"id"`
	EventType string  `json:"event_type"`
	Timestamp string  `json:"timestamp"`
	Location  *string `json:"location"`
}
