package mqtt

import (
	"fmt"
	"strings"
)

// Topic prefixes for the HomeGuardian MQTT hierarchy.
//
//	homeguardian/core/device/{id}/state   retained device snapshot
//	homeguardian/core/event/{kind}        device events
//	homeguardian/core/alert               emergencies
//	homeguardian/ui/{username}/notification
//	homeguardian/command/{id}             inbound command tokens
//	homeguardian/system/status            online/offline (LWT)
const (
	// TopicPrefix is the root of every HomeGuardian topic.
	TopicPrefix = "homeguardian"

	// TopicPrefixCore is the base for all core topics.
	TopicPrefixCore = TopicPrefix + "/core"

	// TopicPrefixSystem is the base for system topics.
	TopicPrefixSystem = TopicPrefix + "/system"

	// TopicPrefixUI is the base for UI-specific topics.
	TopicPrefixUI = TopicPrefix + "/ui"

	// TopicPrefixCommand is the base for inbound device commands.
	TopicPrefixCommand = TopicPrefix + "/command"
)

// Topics provides builders for HomeGuardian MQTT topics.
// Using these helpers ensures consistent topic naming across the codebase.
//
//	topics := mqtt.Topics{}
//	stateTopic := topics.CoreDeviceState("D001")
//	// Returns: "homeguardian/core/device/D001/state"
type Topics struct{}

// =============================================================================
// Core Topics
// =============================================================================

// CoreDeviceState returns the topic for a device's retained snapshot.
//
// Example: homeguardian/core/device/D001/state
func (Topics) CoreDeviceState(deviceID string) string {
	return fmt.Sprintf("%s/device/%s/state", TopicPrefixCore, deviceID)
}

// CoreEvent returns the topic for device events of one kind.
//
// Example: homeguardian/core/event/alert
func (Topics) CoreEvent(kind string) string {
	return fmt.Sprintf("%s/event/%s", TopicPrefixCore, kind)
}

// CoreAlert returns the topic for emergency notifications.
//
// Example: homeguardian/core/alert
func (Topics) CoreAlert() string {
	return TopicPrefixCore + "/alert"
}

// =============================================================================
// System Topics
// =============================================================================

// SystemStatus returns the topic for Core's online/offline status.
//
// Example: homeguardian/system/status
func (Topics) SystemStatus() string {
	return TopicPrefixSystem + "/status"
}

// =============================================================================
// UI Topics
// =============================================================================

// UINotification returns the topic for one user's notifications.
//
// Example: homeguardian/ui/guest1/notification
func (Topics) UINotification(username string) string {
	return fmt.Sprintf("%s/%s/notification", TopicPrefixUI, username)
}

// =============================================================================
// Command Topics
// =============================================================================

// Command returns the topic other systems publish command tokens to.
//
// Example: homeguardian/command/D001
func (Topics) Command(deviceID string) string {
	return fmt.Sprintf("%s/%s", TopicPrefixCommand, deviceID)
}

// CommandDeviceID extracts the device ID from a command topic.
func (Topics) CommandDeviceID(topic string) (string, bool) {
	id, ok := strings.CutPrefix(topic, TopicPrefixCommand+"/")
	if !ok || id == "" || strings.Contains(id, "/") {
		return "", false
	}
	return id, true
}

// =============================================================================
// Wildcard Subscriptions
// =============================================================================

// AllCommands returns a wildcard for every device command topic.
//
// Example: homeguardian/command/+
func (Topics) AllCommands() string {
	return TopicPrefixCommand + "/+"
}

// AllCoreDeviceStates returns a wildcard for every device state topic.
//
// Example: homeguardian/core/device/+/state
func (Topics) AllCoreDeviceStates() string {
	return TopicPrefixCore + "/device/+/state"
}

// AllCoreEvents returns a wildcard for every event topic.
//
// Example: homeguardian/core/event/+
func (Topics) AllCoreEvents() string {
	return TopicPrefixCore + "/event/+"
}

// AllTopics returns a wildcard matching every HomeGuardian topic.
//
// Example: homeguardian/#
func (Topics) AllTopics() string {
	return TopicPrefix + "/#"
}
