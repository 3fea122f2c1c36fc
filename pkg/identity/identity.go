package identity

import (
	"context"
	"net"

	"github.com/kestrelsec/passvault/pkg/keycrypt"
	"github.com/kestrelsec/passvault/pkg/vault/access"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

const (
	// Key is the context key for Identity.
	Key ContextKey = "identity"
)

// Identity is the authenticated caller of a request: who they are and the
// private key they presented. The keyring caches group keys unwrapped while
// serving this one request and is discarded with it.
type Identity struct {
	UserID   string
	UserKey  *keycrypt.Key
	RemoteIP net.IP

	Ring *access.Keyring
}

// New creates an Identity with a fresh request-scoped keyring.
func New(userID string, userKey *keycrypt.Key) *Identity {
	return &Identity{
		UserID:  userID,
		UserKey: userKey,
		Ring:    access.NewKeyring(),
	}
}

// WithRemoteIP sets the remote IP address.
func (i *Identity) WithRemoteIP(ip net.IP) *Identity {
	i.RemoteIP = ip
	return i
}

// Set stores the identity in the context.
func Set(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, Key, id)
}

// Get retrieves the identity from the context.
func Get(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(Key).(*Identity)
	return id, ok
}
