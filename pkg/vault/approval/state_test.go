package approval

import (
	"errors"
	"testing"
	"time"

	"github.com/kestrelsec/passvault/pkg/model"
)

func TestDecisionFlagRoundTrip(t *testing.T) {
	for _, d := range DecisionValues() {
		parsed, err := DecisionFromFlag(d.Flag())
		if err != nil {
			t.Errorf("DecisionFromFlag(%q) error = %v", d.Flag(), err)
		}
		if parsed != d {
			t.Errorf("round trip %v -> %q -> %v", d, d.Flag(), parsed)
		}
	}

	if _, err := DecisionFromFlag("X"); !errors.Is(err, ErrBadDecision) {
		t.Errorf("DecisionFromFlag(X) error = %v, want ErrBadDecision", err)
	}
}

func TestStateFlagRoundTrip(t *testing.T) {
	for _, s := range RequestStateValues() {
		parsed, err := StateFromFlag(s.Flag())
		if err != nil {
			t.Errorf("StateFromFlag(%q) error = %v", s.Flag(), err)
		}
		if parsed != s {
			t.Errorf("round trip %v -> %q -> %v", s, s.Flag(), parsed)
		}
	}

	if _, err := StateFromFlag("Z"); !errors.Is(err, ErrBadState) {
		t.Errorf("StateFromFlag(Z) error = %v, want ErrBadState", err)
	}
}

func TestIsTerminal(t *testing.T) {
	if StatePending.IsTerminal() {
		t.Error("pending must not be terminal")
	}
	if !StateGranted.IsTerminal() || !StateDenied.IsTerminal() {
		t.Error("granted and denied are terminal")
	}
}

func TestEffectiveState(t *testing.T) {
	now := time.Now()
	future := now.Add(time.Hour)
	past := now.Add(-time.Hour)

	tests := []struct {
		name string
		req  model.RARequest
		want RequestState
	}{
		{"pending", model.RARequest{State: model.RequestPending}, StatePending},
		{"denied", model.RARequest{State: model.RequestDenied}, StateDenied},
		{"granted live", model.RARequest{State: model.RequestGranted, ExpiresAt: &future}, StateGranted},
		{"granted expired", model.RARequest{State: model.RequestGranted, ExpiresAt: &past}, StateDenied},
		{"granted consumed", model.RARequest{State: model.RequestGranted, ExpiresAt: &future, ConsumedAt: &now}, StateDenied},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EffectiveState(&tt.req, now)
			if err != nil {
				t.Fatalf("EffectiveState() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("EffectiveState() = %v, want %v", got, tt.want)
			}
		})
	}

	if _, err := EffectiveState(&model.RARequest{State: "?"}, now); !errors.Is(err, ErrBadState) {
		t.Errorf("EffectiveState(bad flag) error = %v, want ErrBadState", err)
	}
}

func TestGrantTokenRoundTrip(t *testing.T) {
	key := signingKey(t)
	expiresAt := time.Now().Add(time.Hour)

	token, err := signGrant(key, "req1", "u-alice", "p1", expiresAt)
	if err != nil {
		t.Fatalf("signGrant() error = %v", err)
	}

	grant, err := VerifyGrant(key, token)
	if err != nil {
		t.Fatalf("VerifyGrant() error = %v", err)
	}
	if grant.RequestID != "req1" || grant.UserID != "u-alice" || grant.ItemID != "p1" {
		t.Errorf("unexpected grant: %+v", grant)
	}
}

func TestVerifyGrantRejectsExpiredToken(t *testing.T) {
	key := signingKey(t)

	token, err := signGrant(key, "req1", "u-alice", "p1", time.Now().Add(-time.Minute))
	if err != nil {
		t.Fatalf("signGrant() error = %v", err)
	}

	if _, err := VerifyGrant(key, token); !errors.Is(err, ErrBadGrant) {
		t.Errorf("VerifyGrant() error = %v, want ErrBadGrant", err)
	}
}

func TestVerifyGrantRejectsForeignKey(t *testing.T) {
	token, err := signGrant(signingKey(t), "req1", "u-alice", "p1", time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("signGrant() error = %v", err)
	}

	other := mustFreshKey(t)
	if _, err := VerifyGrant(other, token); !errors.Is(err, ErrBadGrant) {
		t.Errorf("VerifyGrant() error = %v, want ErrBadGrant", err)
	}
}
