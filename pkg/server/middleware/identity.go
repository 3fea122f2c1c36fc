package middleware

import (
	"bytes"
	"encoding/base64"
	"net"
	"net/http"

	"go.uber.org/zap"

	"github.com/kestrelsec/passvault/pkg/identity"
	"github.com/kestrelsec/passvault/pkg/keycrypt"
	"github.com/kestrelsec/passvault/pkg/model"
	"github.com/kestrelsec/passvault/pkg/vault/store"
)

// Header names of the authenticated-user contract. The transport in front of
// the vault authenticates the caller and forwards their id along with the
// private key material they unlocked.
const (
	UserHeader = "X-Vault-User"
	KeyHeader  = "X-Vault-Key"
)

// Identifier resolves request headers into an Identity. The presented key
// must match the public key on record for the user; anything else is a 401
// with no further detail.
type Identifier struct {
	Passwords store.PasswordsStore
	Log       *zap.SugaredLogger
}

// NewIdentifier creates an Identifier over the users store.
func NewIdentifier(passwords store.PasswordsStore, log *zap.SugaredLogger) *Identifier {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Identifier{Passwords: passwords, Log: log}
}

// Middleware returns an HTTP middleware that authenticates the caller.
func (i *Identifier) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := r.Header.Get(UserHeader)
		keyB64 := r.Header.Get(KeyHeader)
		if userID == "" || keyB64 == "" {
			http.Error(w, "Authorization missing", http.StatusUnauthorized)
			return
		}

		keyDER, err := base64.StdEncoding.DecodeString(keyB64)
		if err != nil {
			http.Error(w, "Malformed key material", http.StatusUnauthorized)
			return
		}

		userKey, err := keycrypt.NewKey(keyDER)
		if err != nil {
			http.Error(w, "Malformed key material", http.StatusUnauthorized)
			return
		}

		user, err := i.Passwords.FetchUser(userID)
		if err != nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		if user.Enabled != model.FlagTrue {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		if !bytes.Equal(userKey.Public().Serialize(), user.PublicKey) {
			i.Log.Warnw("presented key does not match user record", "user_id", userID)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		id := identity.New(userID, userKey)
		if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
			id.WithRemoteIP(net.ParseIP(host))
		}

		next.ServeHTTP(w, r.WithContext(identity.Set(r.Context(), id)))
	})
}
