package auth

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// deviceCtxKey is the Gin context key holding the authenticated device ID.
const deviceCtxKey = "device_id"

// DeviceKeyMiddleware gates device-scoped endpoints on the static
// device → API key mapping loaded at startup.
//
// The device making the request is identified by the "device_id" URL
// parameter when the route has one (GET routes), and by the "device_id"
// field of the JSON body otherwise (POST). The presented X-API-KEY header
// must equal the key on file for that device.
//
// Failure modes, matching the device firmware's expectations:
//   - header missing           -> 401 {"error": "API key is missing"}
//   - device unresolvable,
//     unknown, or key mismatch -> 403 {"error": "Invalid API key"}
//
// The comparison is plain string equality; these keys gate sensor
// check-ins, not anything security-sensitive.
func DeviceKeyMiddleware(keys map[string]string) gin.HandlerFunc {
	return func(c *gin.Context) {
		apiKey := strings.TrimSpace(c.GetHeader("X-API-KEY"))
		if apiKey == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "API key is missing"})
			return
		}

		deviceID := c.Param("device_id")
		if deviceID == "" {
			deviceID = deviceIDFromBody(c)
		}

		if deviceID == "" || keys[deviceID] != apiKey {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Invalid API key"})
			return
		}

		c.Set(deviceCtxKey, deviceID)
		c.Next()
	}
}

// DeviceID returns the authenticated device ID from the request context.
func DeviceID(c *gin.Context) string {
	v, _ := c.Get(deviceCtxKey)
	s, _ := v.(string)
	return s
}

// deviceIDFromBody peeks at the JSON body for a "device_id" field and
// restores the body so the handler can still bind it.
func deviceIDFromBody(c *gin.Context) string {
	if c.Request.Body == nil {
		return ""
	}

	raw, err := io.ReadAll(c.Request.Body)
	c.Request.Body = io.NopCloser(bytes.NewReader(raw))
	if err != nil {
		return ""
	}

	var body struct {
		DeviceID string `json:"device_id"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return ""
	}
	return body.DeviceID
}
