package httpserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"attendance-api/internal/config"
	"attendance-api/internal/store"
)

// setupServer assembles the full router the way main does: real SQLite
// store, fixture device keys, /api prefix, auth guard in place.
func setupServer(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	st, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(st.Close)

	cfg := config.Config{
		DeviceKeys: map[string]string{
			"ESP8266_01": "secret-key-123",
			"ESP8266_02": "secret-key-456",
		},
	}
	return NewRouter(cfg, st)
}

func TestHealthNeedsNoKey(t *testing.T) {
	r := setupServer(t)

	req, _ := http.NewRequest("GET", "/api/health", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Status    string `json:"status"`
		Timestamp string `json:"timestamp"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp.Status)
	_, err := time.Parse(time.RFC3339, resp.Timestamp)
	assert.NoError(t, err)
}

func TestReadyProbesStore(t *testing.T) {
	r := setupServer(t)

	req, _ := http.NewRequest("GET", "/api/ready", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status": "ready"}`, w.Body.String())
}

func TestRequestIDHeaderIsSet(t *testing.T) {
	r := setupServer(t)

	req, _ := http.NewRequest("GET", "/api/health", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	// Caller-supplied IDs are echoed back unchanged.
	req, _ = http.NewRequest("GET", "/api/health", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get("X-Request-ID"))
}

// TestDeviceCheckInRoundTrip walks the primary device flow: record a
// check-in with a valid key, then read it back as the last event.
func TestDeviceCheckInRoundTrip(t *testing.T) {
	r := setupServer(t)

	body, _ := json.Marshal(map[string]any{
		"device_id":  "ESP8266_01",
		"event_type": "in",
	})
	req, _ := http.NewRequest("POST", "/api/attendance", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-KEY", "secret-key-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)

	var created struct {
		Status    string `json:"status"`
		RecordID  int64  `json:"record_id"`
		Timestamp string `json:"timestamp"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "success", created.Status)
	assert.Positive(t, created.RecordID)
	_, err := time.Parse(time.RFC3339, created.Timestamp)
	require.NoError(t, err)

	req, _ = http.NewRequest("GET", "/api/last_event/ESP8266_01", nil)
	req.Header.Set("X-API-KEY", "secret-key-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var last struct {
		DeviceID  string `json:"device_id"`
		LastEvent string `json:"last_event"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &last))
	assert.Equal(t, "ESP8266_01", last.DeviceID)
	assert.Equal(t, "in", last.LastEvent)
}

func TestAttendanceWithoutKeyIs401(t *testing.T) {
	r := setupServer(t)

	body := bytes.NewBufferString(`{"device_id": "ESP8266_01", "event_type": "in"}`)
	req, _ := http.NewRequest("POST", "/api/attendance", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error": "API key is missing"}`, w.Body.String())
}

func TestHistoryWithWrongKeyIs403(t *testing.T) {
	r := setupServer(t)

	req, _ := http.NewRequest("GET", "/api/attendance/ESP8266_01", nil)
	req.Header.Set("X-API-KEY", "secret-key-456")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.JSONEq(t, `{"error": "Invalid API key"}`, w.Body.String())
}
