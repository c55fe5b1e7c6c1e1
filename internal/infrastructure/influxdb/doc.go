// Package influxdb provides InfluxDB connectivity for HomeGuardian Core.
//
// It wraps the official influxdb-client-go v2 library for connection
// management, batched point writes and health monitoring.
//
// # Purpose
//
// The client is a controller observer. Every handled command becomes a
// device_command point, and the numeric and boolean state of the device
// afterwards becomes a device_state point, so brightness, zoom level or
// lock state can be charted over time.
//
// # Usage
//
//	client, err := influxdb.Connect(ctx, cfg.InfluxDB)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	ctrl.AddObserver(client)
//
// # Thread Safety
//
// All methods are safe for concurrent use from multiple goroutines.
// The underlying write API uses non-blocking batched writes.
//
// # Error Handling
//
// Write operations are non-blocking and batch errors are reported via the
// SetOnError callback. Connection and health check errors are returned
// directly.
package influxdb
