package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"attendance-api/internal/models"
	"attendance-api/internal/store"
)

// historyLimit caps GET /attendance/{device_id} at the 10 most recent rows.
const historyLimit = 10

// RegisterAttendanceRoutes registers the device-scoped endpoints. All three
// sit behind the device key middleware, which resolves and validates the
// device before these handlers run.
//
//	POST /attendance              record an event
//	GET  /attendance/:device_id   up to 10 most recent events, newest first
//	GET  /last_event/:device_id   most recent event, or null when none
func RegisterAttendanceRoutes(r gin.IRoutes, st store.AttendanceStore) {
	r.POST("/attendance", func(c *gin.Context) {
		var req models.RegisterRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.DeviceID == "" || req.EventType == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields"})
			return
		}

		if !models.ValidEventType(req.EventType) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid event_type"})
			return
		}

		rec, err := st.InsertRecord(c.Request.Context(), req.DeviceID, req.EventType, req.Location)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db insert failed"})
			return
		}

		c.JSON(http.StatusCreated, models.RegisterResponse{
			Status:    "success",
			RecordID:  rec.ID,
			Timestamp: rec.Timestamp.UTC().Format(time.RFC3339),
		})
	})

	r.GET("/attendance/:device_id", func(c *gin.Context) {
		deviceID := c.Param("device_id")

		records, err := st.RecentRecords(c.Request.Context(), deviceID, historyLimit)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db query failed"})
			return
		}

		// Empty history serializes as [], not null.
		views := make([]models.RecordView, 0, len(records))
		for _, rec := range records {
			views = append(views, models.RecordView{
				ID:        rec.ID,
				EventType: rec.EventType,
				Timestamp: rec.Timestamp.UTC().Format(time.RFC3339),
				Location:  rec.Location,
			})
		}

		c.JSON(http.StatusOK, gin.H{
			"device_id": deviceID,
			"records":   views,
		})
	})

	r.GET("/last_event/:device_id", func(c *gin.Context) {
		deviceID := c.Param("device_id")

		rec, err := st.LastRecord(c.Request.Context(), deviceID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db query failed"})
			return
		}

		// No records is a success, not an error.
		if rec == nil {
			c.JSON(http.StatusOK, gin.H{
				"device_id":  deviceID,
				"last_event": nil,
				"message":    "No records found",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"device_id":  deviceID,
			"last_event": rec.EventType,
			"timestamp":  rec.Timestamp.UTC().Format(time.RFC3339),
		})
	})
}
