package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"attendance-api/internal/models"
	"attendance-api/internal/store"
)

// EventMessage is the JSON payload devices publish on the attendance topic.
// It carries the device's API key inline since MQTT has no request headers.
type EventMessage struct {
	DeviceID  string  `json:"device_id"`
	EventType string  `json:"event_type"`
	APIKey    string  `json:"api_key"`
	Location  *string `json:"location,omitempty"`
}

// Bridge ingests attendance events published over MQTT into the same store
// as the HTTP endpoint. Sensors on flaky links often prefer the broker path
// over holding an HTTP connection open.
type Bridge struct {
	client pahomqtt.Client
	store  store.AttendanceStore
	keys   map[string]string
	logger *slog.Logger
}

// Connect dials the broker and subscribes to the attendance topic.
func Connect(broker, topic string, st store.AttendanceStore, keys map[string]string, logger *slog.Logger) (*Bridge, error) {
	b := &Bridge{store: st, keys: keys, logger: logger}

	opts := pahomqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID("attendance-api").
		SetAutoReconnect(true).
		SetConnectTimeout(10 * time.Second)

	b.client = pahomqtt.NewClient(opts)
	if token := b.client.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}

	if token := b.client.Subscribe(topic, 1, b.handleMessage); token.Wait() && token.Error() != nil {
		b.client.Disconnect(250)
		return nil, token.Error()
	}

	return b, nil
}

// Close unsubscribes by disconnecting the client.
func (b *Bridge) Close() {
	b.client.Disconnect(250)
}

func (b *Bridge) handleMessage(_ pahomqtt.Client, msg pahomqtt.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := b.Ingest(ctx, msg.Payload()); err != nil {
		// MQTT has no reply channel here; invalid messages are dropped.
		b.logger.Warn("dropped mqtt event", "topic", msg.Topic(), "error", err.Error())
	}
}

// Ingest validates one published payload and appends the record. The checks
// mirror the HTTP path: credentials first, then field validation.
func (b *Bridge) Ingest(ctx context.Context, payload []byte) error {
	var ev EventMessage
	if err := json.Unmarshal(payload, &ev); err != nil {
		return fmt.Errorf("invalid payload: %w", err)
	}

	if ev.APIKey == "" {
		return errors.New("api key is missing")
	}
	if ev.DeviceID == "" || b.keys[ev.DeviceID] != ev.APIKey {
		return errors.New("invalid api key")
	}

	if ev.EventType == "" {
		return errors.New("missing required fields")
	}
	if !models.ValidEventType(ev.EventType) {
		return errors.New("invalid event_type")
	}

	rec, err := b.store.InsertRecord(ctx, ev.DeviceID, ev.EventType, ev.Location)
	if err != nil {
		return err
	}

	b.logger.Info("recorded mqtt event",
		"device_id", ev.DeviceID,
		"event_type", ev.EventType,
		"record_id", rec.ID,
	)
	return nil
}
