// Package server provides the HTTP surface of the vault: a thin JSON API
// over the resolution and approval engines.
package server
