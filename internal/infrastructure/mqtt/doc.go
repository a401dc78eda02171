// Package mqtt provides MQTT publishing for hothouse control events.
//
// This package manages:
//   - Connection to the site broker (Mosquitto)
//   - Event publishing with QoS guarantees
//   - Retained emergency state announcements
//
// # Architecture
//
// Control processes are invoked by cron, run once, and exit. MQTT is
// strictly an outbound notification channel: dashboards and alerting
// subscribe to hothouse/# but nothing in the control path waits on a
// broker. A failed publish is logged and dropped.
//
//	Control process → MQTT Broker → Dashboards / Alerting
//
// # Security Considerations
//
//   - TLS is required for production deployments (cfg.Broker.TLS=true)
//   - Credentials are validated against broker ACL
//   - Anonymous access is only for local development
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.Notify.MQTT)
//	if err != nil {
//	    log.Warn("notifications unavailable", "error", err)
//	    return
//	}
//	defer client.Close()
//
//	topic := mqtt.Topics{}.Event("interlock")
//	client.PublishEvent(topic, payload)
package mqtt
