// Package config provides configuration loading and validation for cloudcity.
//
// The package handles YAML configuration files, environment variables, and CLI flags
// with automatic merging and validation using go-playground/validator.
//
// # Configuration Precedence
//
// Values are loaded in this order (later sources override earlier ones):
//
//  1. Default values
//  2. Configuration file(s) - multiple files merged left-to-right
//  3. Environment variables (CLOUDCITY_ prefix)
//  4. CLI flags that were explicitly set
//
// # Usage
//
//	cfg, err := config.Load([]string{"config.yaml"}, cmd.Flags())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Store in context for subcommands
//	ctx = config.WithContext(ctx, cfg)
//
//	// Retrieve later
//	cfg, err = config.FromContext(ctx)
//
// # Environment Variables
//
// All config keys map to environment variables with CLOUDCITY_ prefix:
//   - server.port → CLOUDCITY_SERVER_PORT
//   - server.mode → CLOUDCITY_SERVER_MODE
//   - storage.root → CLOUDCITY_STORAGE_ROOT
//
// # Configuration Structure
//
// The Config struct contains:
//   - Env: dev (colored logs) or prod (JSON logs)
//   - Server: host, port, mode (browse/device), max_upload_size, timeouts and qr
//   - Storage: served root directory and the files directory inside it
//   - Metrics: Prometheus exposition on /metrics
//   - CORS: cross-origin resource sharing settings
//   - Log: logging level
//
// A port of 0 selects the mode default: 8088 for browse, 80 for device.
package config
