package controller

import (
	"github.com/nerrad567/homeguardian-core/internal/activity"
	"github.com/nerrad567/homeguardian-core/internal/auth"
	"github.com/nerrad567/homeguardian-core/internal/notify"
)

// Notify raises a notification for a registered user. Empty recipients,
// blank messages and unknown users are ignored with false. The notification
// is kept either way once created, but only dispatched when the user has
// notifications enabled.
func (c *Controller) Notify(recipient, message string) bool {
	if recipient == "" || notify.IsBlank(message) {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	u, ok := c.users[recipient]
	if !ok {
		return false
	}
	c.notifyLocked(u, message)
	return true
}

// notifyLocked creates and routes a user notification. Callers hold c.mu.
func (c *Controller) notifyLocked(u *auth.User, message string) {
	n := notify.New(u.Username, message, u.Email, u.NotificationsEnabled, c.now())
	c.keep(n)
}

// NotifyEmergency raises an emergency notification to the configured
// emergency contact. Emergencies are always dispatched.
func (c *Controller) NotifyEmergency(message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notifyEmergency(message)
}

// notifyEmergency is NotifyEmergency for callers holding c.mu.
func (c *Controller) notifyEmergency(message string) {
	n := notify.NewEmergency(message, c.emergencyContact, c.now())
	c.appendRecord(activity.ActorSystem, ActionEmergency, "", "",
		"Emergency services notified: "+message)
	c.keep(n)
	c.logger.Warn("emergency raised", "message", message, "contact", c.emergencyContact)
}

// keep stores a notification and dispatches it if deliverable. Callers hold c.mu.
func (c *Controller) keep(n notify.Notification) {
	c.notifications = append(c.notifications, n)
	c.notifySink.Store(n)
	if n.Deliverable() {
		c.dispatcher.Dispatch(n)
	}
}

// UpdateNotificationContact changes the contact address of a notification.
func (c *Controller) UpdateNotificationContact(id, address string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.notifications {
		if c.notifications[i].ID == id {
			c.notifications[i].ContactAddress = address
			c.notifySink.ContactChanged(id, address)
			return true
		}
	}
	return false
}

// Notifications returns a copy of every notification in creation order.
func (c *Controller) Notifications() []notify.Notification {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]notify.Notification, len(c.notifications))
	copy(out, c.notifications)
	return out
}

// NotificationsFor returns the notifications addressed to recipient.
// Admins also see emergency notifications.
func (c *Controller) NotificationsFor(recipient string) []notify.Notification {
	c.mu.RLock()
	defer c.mu.RUnlock()

	u, known := c.users[recipient]
	out := []notify.Notification{}
	for _, n := range c.notifications {
		if n.Recipient == recipient || (n.Emergency && known && u.IsAdmin()) {
			out = append(out, n)
		}
	}
	return out
}

// Notification returns one notification by ID.
func (c *Controller) Notification(id string) (notify.Notification, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, n := range c.notifications {
		if n.ID == id {
			return n, true
		}
	}
	return notify.Notification{}, false
}
