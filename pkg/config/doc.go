// Package config provides configuration management for passvault.
//
// This package handles loading and validating server configuration from a
// YAML file and environment variables, tracking the source of each attribute.
//
// # Configuration Sources
//
// Configuration is loaded from, in increasing precedence:
//
//   - Built-in defaults
//   - Configuration file (/etc/passvault/config/passvault.yml or PASSVAULT_CONFIG_PATH)
//   - PASSVAULT_* environment variables
//
// # Key Configuration Options
//
//   - trusted_proxies: CIDRs allowed to set forwarded-for headers
//   - session_token_ttl_minutes: session lifetime
//   - access_window_ttl_seconds: lifetime of a granted restricted-access window
//   - audit_persist_enabled: write audit events to the database
package config
