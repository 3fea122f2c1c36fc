package access

import "github.com/kestrelsec/passvault/pkg/keycrypt"

// Keyring caches unwrapped group keys for the lifetime of one request or
// session, avoiding repeated asymmetric decrypts within one resolution
// chain. It belongs to a single user's request; it is not safe for
// concurrent use and must never outlive the request that created it.
type Keyring struct {
	groupKeys map[string]*keycrypt.Key
}

// NewKeyring creates an empty keyring.
func NewKeyring() *Keyring {
	return &Keyring{groupKeys: map[string]*keycrypt.Key{}}
}

// Group returns the cached unwrapped key for a group, if present.
func (k *Keyring) Group(groupID string) (*keycrypt.Key, bool) {
	key, ok := k.groupKeys[groupID]
	return key, ok
}

// PutGroup caches an unwrapped group key.
func (k *Keyring) PutGroup(groupID string, key *keycrypt.Key) {
	k.groupKeys[groupID] = key
}
