package notify

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// EmergencyPrefix is prepended to every emergency notification message.
const EmergencyPrefix = "[EMERGENCY] "

// Notification is an intent to alert. Only ContactAddress may change after
// creation, and only through the owner of the notification list.
type Notification struct {
	ID             string    `json:"id"`
	Recipient      string    `json:"recipient,omitempty"` // empty means system/broadcast
	Message        string    `json:"message"`
	Enabled        bool      `json:"enabled"`
	Emergency      bool      `json:"emergency"`
	ContactAddress string    `json:"contact_address,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
}

// New creates a user notification.
func New(recipient, message, contactAddress string, enabled bool, now time.Time) Notification {
	return Notification{
		ID:             newID(),
		Recipient:      recipient,
		Message:        message,
		Enabled:        enabled,
		ContactAddress: contactAddress,
		Timestamp:      now,
	}
}

// NewEmergency creates a recipient-less emergency notification. Emergencies
// are always enabled.
func NewEmergency(message, contactAddress string, now time.Time) Notification {
	return Notification{
		ID:             newID(),
		Message:        EmergencyPrefix + message,
		Enabled:        true,
		Emergency:      true,
		ContactAddress: contactAddress,
		Timestamp:      now,
	}
}

// Deliverable reports whether the notification should be handed to a
// Dispatcher. Emergencies are never suppressed.
func (n Notification) Deliverable() bool {
	return n.Emergency || n.Enabled
}

// IsBlank reports whether a message carries no text.
func IsBlank(message string) bool {
	return strings.TrimSpace(message) == ""
}

func newID() string {
	return "ntf-" + uuid.NewString()
}
