package notify

import (
	"encoding/json"
	"time"

	"github.com/hothouse-systems/hothouse-core/internal/infrastructure/config"
	"github.com/hothouse-systems/hothouse-core/internal/infrastructure/mqtt"
)

// Logger defines the interface for notification logging.
type Logger interface {
	Warn(msg string, keysAndValues ...interface{})
}

type noopLogger struct{}

func (noopLogger) Warn(msg string, keysAndValues ...interface{}) {}

// Event is one operator-facing notification.
type Event struct {
	Component string    `json:"component"`
	Kind      string    `json:"kind"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// Notifier publishes operator notifications. All implementations are
// best-effort: delivery failure must never fail the run that raised
// the event.
type Notifier interface {
	// Notify publishes a routine event on the component's event topic.
	Notify(component, kind, message string)

	// Emergency publishes a retained emergency event so late
	// subscribers still see the active condition.
	Emergency(component, message string)

	// Close releases the underlying transport.
	Close() error
}

// New returns an MQTT-backed notifier, or a no-op one when
// notifications are disabled or the broker is unreachable. A broker
// outage degrades to silence rather than blocking control runs.
func New(cfg config.NotifyConfig, logger Logger) Notifier {
	if logger == nil {
		logger = noopLogger{}
	}
	if !cfg.Enabled {
		return NoopNotifier{}
	}

	client, err := mqtt.Connect(cfg.MQTT)
	if err != nil {
		logger.Warn("notifier disabled, broker unreachable", "error", err)
		return NoopNotifier{}
	}

	return &MQTTNotifier{client: client, logger: logger}
}

// MQTTNotifier publishes events to the broker's hothouse topic tree.
type MQTTNotifier struct {
	client *mqtt.Client
	logger Logger
}

func (n *MQTTNotifier) Notify(component, kind, message string) {
	payload := n.encode(component, kind, message)
	if err := n.client.PublishEvent(mqtt.Topics{}.Event(component), payload); err != nil {
		n.logger.Warn("notification publish failed", "component", component, "error", err)
	}
}

func (n *MQTTNotifier) Emergency(component, message string) {
	payload := n.encode(component, "emergency", message)
	if err := n.client.PublishRetained(mqtt.Topics{}.Emergency(), payload); err != nil {
		n.logger.Warn("emergency publish failed", "component", component, "error", err)
	}
}

func (n *MQTTNotifier) Close() error {
	return n.client.Close()
}

func (n *MQTTNotifier) encode(component, kind, message string) []byte {
	payload, err := json.Marshal(Event{
		Component: component,
		Kind:      kind,
		Message:   message,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		return []byte(message)
	}
	return payload
}

// NoopNotifier drops all events.
type NoopNotifier struct{}

func (NoopNotifier) Notify(component, kind, message string) {}
func (NoopNotifier) Emergency(component, message string)    {}
func (NoopNotifier) Close() error                           { return nil }
