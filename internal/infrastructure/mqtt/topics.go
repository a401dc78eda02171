package mqtt

import "fmt"

// Topic prefixes for hothouse notification topics.
//
// All topics use the flat scheme: hothouse/{category}/{component}
const (
	// TopicPrefix is the base for all hothouse topics.
	TopicPrefix = "hothouse"

	// TopicPrefixEvents is the base for per-component event topics.
	TopicPrefixEvents = "hothouse/events"
)

// Topics provides builders for hothouse MQTT topics.
// Using these helpers ensures consistent topic naming across the codebase.
//
//	topics := mqtt.Topics{}
//	eventTopic := topics.Event("interlock")
//	// Returns: "hothouse/events/interlock"
type Topics struct{}

// Event returns the event topic for a control component.
//
// Example: hothouse/events/interlock
func (Topics) Event(component string) string {
	return fmt.Sprintf("%s/%s", TopicPrefixEvents, component)
}

// Emergency returns the topic for emergency state announcements.
//
// Messages on this topic are published retained so that a subscriber
// joining after a lockout still sees the current emergency state.
func (Topics) Emergency() string {
	return TopicPrefix + "/emergency"
}

// Status returns the topic for process run status messages.
func (Topics) Status() string {
	return TopicPrefix + "/status"
}
