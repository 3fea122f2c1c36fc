// Package identity carries the authenticated caller through request
// contexts.
//
// Transport authentication happens upstream; the handlers here consume an
// already-identified user. An Identity pairs the user id with the private
// key material the caller presented, plus a request-scoped keyring for group
// keys unwrapped along the way.
package identity
