// Package notify delivers operator notifications over MQTT.
//
// Notifications are strictly best-effort. Control decisions never wait
// on the broker and never fail because a publish failed; when the
// broker is unreachable or notifications are disabled, callers get a
// silent no-op notifier instead of an error.
package notify
