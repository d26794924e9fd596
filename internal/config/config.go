package config

import (
	"errors"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config contains runtime configuration required by the service.
type Config struct {
	DatabaseURL string
	SecretKey   string
	Port        string
	DeviceKeys  map[string]string // deviceID -> API key
	MQTTBroker  string            // empty disables the MQTT bridge
	MQTTTopic   string
}

// Load reads configuration from a .env file (if present) and the
// environment, falling back to local-dev defaults so the service runs
// out-of-the-box against a SQLite file.
//
// DEVICE_KEYS format: "device1:key1,device2:key2"
func Load() (Config, error) {
	// Optional; environment variables win over .env entries.
	_ = godotenv.Load()

	deviceKeys, err := ParseDeviceKeys(os.Getenv("DEVICE_KEYS"))
	if err != nil {
		return Config{}, err
	}

	// Default fixtures match the devices shipped with the firmware images.
	if len(deviceKeys) == 0 {
		deviceKeys = map[string]string{
			"ESP8266_01": "secret-key-123",
			"ESP8266_02": "secret-key-456",
		}
	}

	return Config{
		DatabaseURL: getEnv("DATABASE_URL", "attendance.db"),
		SecretKey:   getEnv("SECRET_KEY", "your-secret-key-here"),
		Port:        getEnv("PORT", "8080"),
		DeviceKeys:  deviceKeys,
		MQTTBroker:  os.Getenv("MQTT_BROKER"),
		MQTTTopic:   getEnv("MQTT_TOPIC", "attendance/events"),
	}, nil
}

// ParseDeviceKeys parses the "device:key,device:key" credential mapping.
// An empty input yields an empty map; malformed pairs are an error.
func ParseDeviceKeys(raw string) (map[string]string, error) {
	keys := map[string]string{}

	raw = strings.TrimSpace(raw)
	if raw == "" {
		return keys, nil
	}

	for _, p := range strings.Split(raw, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		parts := strings.SplitN(p, ":", 2)
		if len(parts) != 2 {
			return nil, errors.New(`DEVICE_KEYS must be "device:key,device:key"`)
		}
		device := strings.TrimSpace(parts[0])
		key := strings.TrimSpace(parts[1])
		if device == "" || key == "" {
			return nil, errors.New(`DEVICE_KEYS must be "device:key,device:key"`)
		}
		keys[device] = key
	}

	return keys, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
