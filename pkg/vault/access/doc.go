// Package access implements the access resolution engine.
//
// Given a user and an item, the resolver walks the user's memberships to
// find an authorizing group, preferring a full (read+modify) grant over a
// read-only one, unwraps the key envelopes in memory and hands back usable
// key material, or denies.
//
// Unwrapped group keys are cached on a Keyring that lives exactly as long as
// the request or session that owns it. Keyrings must never be shared across
// requests for different users.
//
// Resolution failures (missing rows, envelopes that will not open) collapse
// to ErrNoAccess so call sites have one failure shape to handle and callers
// cannot probe which stage failed.
package access
