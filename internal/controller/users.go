package controller

import (
	"fmt"

	"github.com/nerrad567/homeguardian-core/internal/activity"
	"github.com/nerrad567/homeguardian-core/internal/auth"
)

// RegisterUser adds a user. Nil, invalid and already-present usernames are
// rejected with false. The controller keeps its own copy.
func (c *Controller) RegisterUser(u *auth.User) bool {
	if u == nil || u.Validate() != nil {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.users[u.Username]; exists {
		return false
	}
	c.users[u.Username] = u.Clone()
	c.userOrder = append(c.userOrder, u.Username)
	c.appendRecord(activity.ActorSystem, ActionUserAdded, "", "",
		fmt.Sprintf("New user added: %s (%s)", u.Name, u.Username))
	return true
}

// UnregisterUser removes a user and reports whether it was present.
func (c *Controller) UnregisterUser(username string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	u, exists := c.users[username]
	if !exists {
		return false
	}
	delete(c.users, username)
	for i, name := range c.userOrder {
		if name == username {
			c.userOrder = append(c.userOrder[:i], c.userOrder[i+1:]...)
			break
		}
	}
	c.appendRecord(activity.ActorSystem, ActionUserRemoved, "", "",
		fmt.Sprintf("User removed: %s (%s)", u.Name, u.Username))
	return true
}

// GrantAccess lets an admin give a guest access to a device.
func (c *Controller) GrantAccess(adminUsername, guestUsername, deviceID string) bool {
	return c.changeAccess(adminUsername, guestUsername, deviceID, true)
}

// RevokeAccess lets an admin take a device away from a guest.
func (c *Controller) RevokeAccess(adminUsername, guestUsername, deviceID string) bool {
	return c.changeAccess(adminUsername, guestUsername, deviceID, false)
}

func (c *Controller) changeAccess(adminUsername, guestUsername, deviceID string, grant bool) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	action, verb := ActionGrantAccess, "grant"
	if !grant {
		action, verb = ActionRevokeAccess, "revoke"
	}
	deviceName := ""
	if d, ok := c.devices[deviceID]; ok {
		deviceName = d.Name()
	}
	fail := func(reason string) bool {
		c.appendRecord(adminUsername, action, deviceName, deviceID,
			fmt.Sprintf("Cannot %s access to device %s for %s: %s", verb, deviceID, guestUsername, reason))
		return false
	}

	admin, ok := c.users[adminUsername]
	if !ok || !auth.HasPermission(admin.Role, auth.PermAccessManage) {
		return fail(fmt.Sprintf("%s is not an admin", adminUsername))
	}
	guest, ok := c.users[guestUsername]
	if !ok || guest.Role != auth.RoleGuest {
		return fail(fmt.Sprintf("%s is not a guest", guestUsername))
	}
	if deviceName == "" {
		return fail("device not found")
	}

	if grant {
		if !guest.Grant(deviceID) {
			return fail("already granted")
		}
		c.appendRecord(adminUsername, action, deviceName, deviceID,
			fmt.Sprintf("Access to device %s granted to %s", deviceID, guestUsername))
		return true
	}
	if !guest.Revoke(deviceID) {
		return fail("not granted")
	}
	c.appendRecord(adminUsername, action, deviceName, deviceID,
		fmt.Sprintf("Access to device %s revoked from %s", deviceID, guestUsername))
	return true
}

// Users returns copies of every user in registration order.
func (c *Controller) Users() []*auth.User {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]*auth.User, 0, len(c.userOrder))
	for _, name := range c.userOrder {
		out = append(out, c.users[name].Clone())
	}
	return out
}

// User returns a copy of one user.
func (c *Controller) User(username string) (*auth.User, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	u, ok := c.users[username]
	if !ok {
		return nil, false
	}
	return u.Clone(), true
}
