// Package config loads and validates the Savant relay configuration.
//
// Configuration comes from a single YAML file, with hardcoded defaults
// matching a stock RacePointMedia installation and a small set of
// environment variable overrides for paths and credentials.
//
// # Loading order
//
//  1. Defaults (see Default)
//  2. YAML file values
//  3. SAVANT_RELAY_* environment variables
//
// # Usage
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    return err
//	}
//	fmt.Println(cfg.API.Port)
//
// Validation rejects configurations the relay cannot start with (missing
// paths, port clashes, enabled features without their required settings).
package config
