// Package bus mirrors the controller onto MQTT.
//
// Mirror is a controller Observer and a notify.Dispatcher. It publishes:
//   - the retained snapshot of every device a command touched
//   - every device event, grouped by kind
//   - user notifications and emergencies
//
// and executes command tokens published to homeguardian/command/<id> as
// SYSTEM. Outbound messages are queued and published from one goroutine so
// the controller never waits on the broker.
package bus
