package auth

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
)

// usernamePattern defines the valid format for usernames:
// alphanumeric, dots, hyphens, underscores, 1-64 characters.
var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9._-]{1,64}$`)

// maxUsernameLength is the maximum allowed username length.
const maxUsernameLength = 64

// IsValidUsername checks if a username meets format requirements.
// Usernames must be 1-64 characters, alphanumeric with dots, hyphens, underscores.
func IsValidUsername(username string) bool {
	return len(username) <= maxUsernameLength && usernamePattern.MatchString(username)
}

// Role represents an authorisation tier in the system.
type Role string

const (
	// RoleGuest may only see and control devices an admin granted.
	// Zero accessible devices = no access.
	RoleGuest Role = "guest"

	// RoleAdmin has full control of every device and manages guest access.
	RoleAdmin Role = "admin"
)

// ValidRoles is the set of valid user roles.
var ValidRoles = []Role{RoleGuest, RoleAdmin}

// IsValidUserRole returns true if the role is a valid role for a user account.
func IsValidUserRole(r Role) bool {
	return slices.Contains(ValidRoles, r)
}

// ParseRole converts a config value such as "Admin" to a Role.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !IsValidUserRole(r) {
		return "", fmt.Errorf("%w: %q", ErrInvalidRole, s)
	}
	return r, nil
}

// User is a household member known to the controller.
type User struct {
	Username             string   `json:"username"`
	Name                 string   `json:"name"`
	Email                string   `json:"email,omitempty"`
	Role                 Role     `json:"role"`
	AccessibleDevices    []string `json:"accessible_devices,omitempty"` // guest only
	NotificationsEnabled bool     `json:"notifications_enabled"`
	PasswordHash         string   `json:"-"` // never serialised
}

// Validate checks the identity fields of a user.
func (u *User) Validate() error {
	if !IsValidUsername(u.Username) {
		return fmt.Errorf("%w: %q", ErrInvalidUsername, u.Username)
	}
	if !IsValidUserRole(u.Role) {
		return fmt.Errorf("%w: %q", ErrInvalidRole, u.Role)
	}
	return nil
}

// IsAdmin reports whether the user has the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// PermitsDevice reports whether the user may see and control a device.
// Admins are unrestricted; guests only reach their accessible devices.
func (u *User) PermitsDevice(deviceID string) bool {
	if u.Role == RoleAdmin {
		return true
	}
	return slices.Contains(u.AccessibleDevices, deviceID)
}

// Grant adds a device to a guest's accessible set. It reports false if the
// device was already accessible.
func (u *User) Grant(deviceID string) bool {
	if slices.Contains(u.AccessibleDevices, deviceID) {
		return false
	}
	u.AccessibleDevices = append(u.AccessibleDevices, deviceID)
	return true
}

// Revoke removes a device from a guest's accessible set. It reports false
// if the device was not accessible.
func (u *User) Revoke(deviceID string) bool {
	i := slices.Index(u.AccessibleDevices, deviceID)
	if i < 0 {
		return false
	}
	u.AccessibleDevices = slices.Delete(u.AccessibleDevices, i, i+1)
	return true
}

// Clone returns a deep copy of the user.
func (u *User) Clone() *User {
	c := *u
	c.AccessibleDevices = slices.Clone(u.AccessibleDevices)
	return &c
}
