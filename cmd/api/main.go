package main

import (
	"log/slog"
	"os"

	"attendance-api/internal/config"
	"attendance-api/internal/httpserver"
	"attendance-api/internal/mqtt"
	"attendance-api/internal/store"
)

// main boots the service: config → store → schema → optional MQTT bridge →
// HTTP server.
func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil)).With(
		slog.String("app", "attendance-api"),
	)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("config error", "error", err.Error())
		os.Exit(1)
	}

	// SQLite file by default; a postgres:// DATABASE_URL selects the pool.
	// Either way the schema is applied before serving.
	st, err := store.Open(cfg.DatabaseURL)
	if err != nil {
		logger.Error("store error", "error", err.Error())
		os.Exit(1)
	}
	defer st.Close()

	// The broker path is opt-in; most deployments are HTTP-only.
	if cfg.MQTTBroker != "" {
		bridge, err := mqtt.Connect(cfg.MQTTBroker, cfg.MQTTTopic, st, cfg.DeviceKeys, logger)
		if err != nil {
			logger.Error("mqtt connect error", "broker", cfg.MQTTBroker, "error", err.Error())
			os.Exit(1)
		}
		defer bridge.Close()
		logger.Info("mqtt bridge subscribed", "broker", cfg.MQTTBroker, "topic", cfg.MQTTTopic)
	}

	router := httpserver.NewRouter(cfg, st)

	logger.Info("server started", "port", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		logger.Error("server error", "error", err.Error())
		os.Exit(1)
	}
}
