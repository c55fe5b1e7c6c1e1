// Package config loads HomeGuardian Core configuration from YAML, applies
// HOMEGUARDIAN_* environment overrides and validates the result.
//
// Secrets (the JWT secret, MQTT password, InfluxDB token) should come from
// the environment. Admin password hashes belong in users[].password_hash,
// never in plaintext; admins without one get a generated password at
// startup.
//
//	cfg, err := config.Load(config.Path()) // HOMEGUARDIAN_CONFIG or configs/config.yaml
//	if err != nil {
//	    return fmt.Errorf("loading config: %w", err)
//	}
//
// Validate reports every problem at once rather than the first. Devices and
// users declared in the file are registered with the controller at startup;
// configs/config.yaml describes a demo home.
package config
