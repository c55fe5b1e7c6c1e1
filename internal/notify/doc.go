// Package notify defines notifications: an intent to alert a user, or to
// broadcast an emergency, kept separate from actual delivery.
//
// The controller decides that a notification is raised and to whom. Two
// collaborators then take over:
//   - a Dispatcher delivers it (MQTT in production), only when enabled
//     or when it is an emergency
//   - a Sink keeps it durably (SQLite in production)
package notify
