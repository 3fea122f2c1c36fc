// Package passvault provides a Go implementation of a shared credential vault.
//
// Passvault stores passwords encrypted under per-item key pairs and resolves
// access through group membership: each group owns a key pair whose private
// half is wrapped per member, and each item grant wraps the item keys under
// the group's public key. The server never stores a plaintext key.
//
// # Architecture
//
// The server is organized into several packages:
//
//   - pkg/server: HTTP server and routing
//   - pkg/server/endpoints: REST API endpoint handlers
//   - pkg/vault/access: group-based access resolution and key recovery
//   - pkg/vault/approval: restricted-access request workflow
//   - pkg/vault/store: storage interfaces and the gorm implementation
//   - pkg/keycrypt: envelope encryption primitives
//   - pkg/model: database models
//   - pkg/db: database connection utilities
//   - pkg/audit: audit logging
//   - pkg/config: configuration management
//
// # Quick Start
//
// The server is run via the passvaultctl CLI:
//
//	# Generate the grant token signing key
//	passvaultctl signing-key generate > signing_key
//	export PASSVAULT_SIGNING_KEY=$(cat signing_key)
//
//	# Run database migrations
//	passvaultctl db migrate
//
//	# Create the administrative group and the first admin user
//	passvaultctl bootstrap admin
//
//	# Start the server
//	passvaultctl server
//
// # Environment Variables
//
//   - DATABASE_URL: PostgreSQL connection string
//   - PASSVAULT_SIGNING_KEY: Base64-encoded RSA key for grant token signing
//   - PASSVAULT_ADMIN_KEY: Base64-encoded admin group key (enables break-glass decryption)
//   - PASSVAULT_LOG_LEVEL: Log level (debug, info, warn, error)
//   - PORT: Server port (default: 8000)
package main
