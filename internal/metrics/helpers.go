package metrics

import "github.com/nerrad567/homeguardian-core/internal/device"

// commandName reduces a command token to its name so arguments such as
// passcodes never become label values.
func commandName(token string) string {
	name := device.ParseCommand(token).Name
	if name == "" {
		return "EMPTY"
	}
	return name
}
