// Package mqtt provides MQTT client connectivity for HomeGuardian Core.
//
// This package wraps paho.mqtt.golang to provide:
//   - Connection management with auto-reconnect
//   - Message publishing with QoS support
//   - Topic subscription with handler callbacks
//   - Last Will and Testament (LWT) for offline detection
//   - Subscription restoration after reconnect
//
// # Architecture
//
// The hub mirrors device state, events and notifications onto a local
// broker so dashboards and other systems can follow the home, and accepts
// command tokens from the same broker:
//
//	HomeGuardian Core ↔ MQTT Broker ↔ Dashboards / integrations
//
// # Topic Structure
//
// See topics.go. Every topic lives under "homeguardian/".
//
// # Usage
//
//	client, err := mqtt.Connect(ctx, cfg.MQTT)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	// Accept device commands
//	err = client.Subscribe(mqtt.Topics{}.AllCommands(), 1,
//	    func(topic string, payload []byte) error {
//	        id, _ := mqtt.Topics{}.CommandDeviceID(topic)
//	        ctl.ControlDevice(id, string(payload))
//	        return nil
//	    })
//
//	// Publish retained state
//	err = client.Publish(mqtt.Topics{}.CoreDeviceState("D001"), snapshotJSON, 1, true)
//
// # Thread Safety
//
// All Client methods are safe for concurrent use. Handlers run in paho's
// goroutines and are wrapped with panic recovery.
package mqtt
