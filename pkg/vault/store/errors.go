package store

import "errors"

var (
	// ErrNotFound indicates the requested row does not exist. Resolution
	// callers treat this as "no access" rather than a hard failure.
	ErrNotFound = errors.New("record not found")

	// ErrConflict indicates an insert collided with an existing row for the
	// same key. Callers decide whether to treat it as already-granted.
	ErrConflict = errors.New("access control already exists")

	// ErrNotEligible indicates a vote from a user who has no seat on the
	// request.
	ErrNotEligible = errors.New("voter is not eligible for this request")

	// ErrRequestConsumed indicates a granted access window that was already
	// redeemed.
	ErrRequestConsumed = errors.New("request already consumed")

	// ErrRequestExpired indicates a granted access window whose expiry has
	// passed.
	ErrRequestExpired = errors.New("request expired")
)
