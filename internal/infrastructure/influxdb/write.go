package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/nerrad567/homeguardian-core/internal/controller"
	"github.com/nerrad567/homeguardian-core/internal/device"
)

// Measurement names.
const (
	// MeasurementCommand holds one point per handled command.
	MeasurementCommand = "device_command"

	// MeasurementState holds the numeric and boolean state of a device after
	// a command.
	MeasurementState = "device_state"
)

// CommandHandled implements controller.Observer. It writes the command
// outcome and, for resolved commands, the device state that followed.
// Writes are non-blocking and batched.
func (c *Client) CommandHandled(r controller.CommandResult) {
	if !c.IsConnected() {
		return
	}

	ts := r.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	c.WritePointWithTime(MeasurementCommand,
		map[string]string{
			"device_id": r.DeviceID,
			"command":   device.ParseCommand(r.Command).Name,
			"actor":     r.Actor,
		},
		map[string]interface{}{
			"ok":       r.OK,
			"resolved": r.Resolved,
			"depth":    r.Depth,
		},
		ts,
	)

	if !r.Resolved {
		return
	}
	fields := StateFields(r.Snapshot)
	if len(fields) == 0 {
		return
	}
	c.WritePointWithTime(MeasurementState,
		map[string]string{
			"device_id": r.DeviceID,
			"type":      string(r.Snapshot.Kind),
		},
		fields,
		ts,
	)
}

// StateFields extracts the fields of a snapshot that InfluxDB can store as
// numbers or booleans. Strings and lists are left out; "connected" is
// always present.
func StateFields(s device.Snapshot) map[string]interface{} {
	fields := map[string]interface{}{
		"connected": s.Connected,
	}
	for k, v := range s.State {
		switch val := v.(type) {
		case bool, int, int64, float64:
			fields[k] = val
		}
	}
	return fields
}

// WritePointWithTime writes a custom point with a specific timestamp.
//
// Parameters:
//   - measurement: The measurement name
//   - tags: Key-value pairs for indexing (low cardinality)
//   - fields: Key-value pairs for the data
//   - timestamp: The exact time for this data point
func (c *Client) WritePointWithTime(measurement string, tags map[string]string, fields map[string]interface{}, timestamp time.Time) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, timestamp)
	c.writeAPI.WritePoint(point)
}
