// Package config handles loading and validating command bridge configuration.
//
// This package manages:
//   - Loading configuration from YAML files
//   - Overriding with environment variables
//   - Validation of required fields
//   - Default value handling
//
// Security Considerations:
//   - IoTDA access keys must be supplied via CMDBRIDGE_IOTDA_AK / CMDBRIDGE_IOTDA_SK
//     rather than written into the config file
//   - The config file should have restricted permissions (0600)
//
// Configuration is loaded once at startup and passed by reference to the
// components that need it; nothing reads it after construction.
//
// Usage:
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.API.Port)
package config
