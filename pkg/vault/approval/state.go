package approval

import (
	"time"

	"github.com/kestrelsec/passvault/pkg/model"
)

//go:generate go run github.com/dmarkham/enumer -type RequestState -trimprefix State -transform lower -output state.gen.go

// RequestState is the lifecycle state of a restricted-access request.
// Pending is the only non-terminal state.
type RequestState int

const (
	StatePending RequestState = iota
	StateGranted
	StateDenied
)

// Flag returns the single-character storage form of the state.
func (s RequestState) Flag() string {
	switch s {
	case StateGranted:
		return model.RequestGranted
	case StateDenied:
		return model.RequestDenied
	default:
		return model.RequestPending
	}
}

// StateFromFlag parses a storage flag.
func StateFromFlag(flag string) (RequestState, error) {
	switch flag {
	case model.RequestPending:
		return StatePending, nil
	case model.RequestGranted:
		return StateGranted, nil
	case model.RequestDenied:
		return StateDenied, nil
	}
	return StatePending, ErrBadState
}

// IsTerminal reports whether the state can never change again.
func (s RequestState) IsTerminal() bool {
	return s != StatePending
}

// EffectiveState reports the state a caller should act on: a granted request
// whose window has expired, or which was already consumed, behaves as
// denied and requires a fresh request.
func EffectiveState(req *model.RARequest, now time.Time) (RequestState, error) {
	state, err := StateFromFlag(req.State)
	if err != nil {
		return StatePending, err
	}

	if state == StateGranted {
		if req.ConsumedAt != nil {
			return StateDenied, nil
		}
		if req.ExpiresAt != nil && now.After(*req.ExpiresAt) {
			return StateDenied, nil
		}
	}
	return state, nil
}
