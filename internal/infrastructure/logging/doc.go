// Package logging wraps log/slog for HomeGuardian Core.
//
// Every entry carries service=homeguardian and the build version. Packages
// derive component loggers with With:
//
//	log := logging.New(cfg.Logging, version)
//	chLog := log.With("component", "channel")
//	chLog.Info("command channel listening", "address", addr)
//
// Configuration (config.yaml):
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json, text
//	  output: "stdout"   # stdout, stderr, discard
//
// Tests use Discard. Never log tokens or password hashes; the one
// exception is the seeded admin password, logged once at first boot.
package logging
