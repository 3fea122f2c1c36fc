package access

import (
	"errors"

	"go.uber.org/zap"

	"github.com/kestrelsec/passvault/pkg/keycrypt"
	"github.com/kestrelsec/passvault/pkg/model"
	"github.com/kestrelsec/passvault/pkg/vault/store"
)

var (
	// ErrNoAccess is the single failure shape for denied resolutions. It
	// covers missing rows and envelopes that will not open alike.
	ErrNoAccess = errors.New("access denied")

	// ErrNoModify is returned when a read-only access is used for a modify
	// operation.
	ErrNoModify = errors.New("modify capability not granted")

	// ErrPrecondition is a programmer error: a group-scoped query was made
	// without the group's key material on the keyring.
	ErrPrecondition = errors.New("group key material not unwrapped")
)

// Access is a successful resolution: unwrapped item key material plus the
// group it came through. It exists only in memory.
type Access struct {
	GroupID   string
	ReadKey   *keycrypt.Key
	ModifyKey *keycrypt.Key
}

// CanModify reports whether the access carries the item's modify key.
func (a *Access) CanModify() bool {
	return a.ModifyKey != nil
}

// Resolver walks memberships and GAC rows to answer access questions.
type Resolver struct {
	access      store.AccessStore
	groups      store.GroupsStore
	memberships store.MembershipsStore
	log         *zap.SugaredLogger
}

// NewResolver creates a Resolver over the given stores.
func NewResolver(access store.AccessStore, groups store.GroupsStore, memberships store.MembershipsStore, log *zap.SugaredLogger) *Resolver {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Resolver{
		access:      access,
		groups:      groups,
		memberships: memberships,
		log:         log,
	}
}

// GroupKey recovers a group's private key for a user through their
// membership row, caching the result on the keyring. The unwrap uses the
// user's own key; a user without a membership row gets ErrNoAccess.
func (r *Resolver) GroupKey(ring *Keyring, userID string, userKey *keycrypt.Key, groupID string) (*keycrypt.Key, error) {
	if key, ok := ring.Group(groupID); ok {
		return key, nil
	}

	m, err := r.memberships.GetMembership(userID, groupID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNoAccess
		}
		return nil, err
	}

	key, err := keycrypt.UnwrapKey(m.AKey, userKey)
	if err != nil {
		r.log.Warnw("membership envelope rejected", "user_id", userID, "group_id", groupID)
		return nil, ErrNoAccess
	}

	ring.PutGroup(groupID, key)
	return key, nil
}

// Resolve finds the best available access for (user, item): a full grant if
// any membership provides one, otherwise read-only, otherwise ErrNoAccess.
//
// includeDisabled widens the search to disabled groups for administrative
// inspection. Callers must not authorize decrypt operations with it.
func (r *Resolver) Resolve(ring *Keyring, userID string, userKey *keycrypt.Key, itemID string, includeDisabled bool) (*Access, error) {
	// Two deterministic queries instead of one NULL-sensitive ordering: the
	// stronger grant is preferred at the application level.
	gac, err := r.access.FindForUser(userID, itemID, store.ResolveOptions{
		RequireModify:   true,
		IncludeDisabled: includeDisabled,
	})
	if errors.Is(err, store.ErrNotFound) {
		gac, err = r.access.FindForUser(userID, itemID, store.ResolveOptions{
			IncludeDisabled: includeDisabled,
		})
	}
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNoAccess
		}
		return nil, err
	}

	groupKey, err := r.GroupKey(ring, userID, userKey, gac.GroupID)
	if err != nil {
		return nil, err
	}

	return r.open(gac, groupKey)
}

// GroupAccess answers whether one specific group has access to an item. The
// group's key must already be on the keyring; calling without it is a
// programmer error, not a denial.
func (r *Resolver) GroupAccess(ring *Keyring, groupID, itemID string) (*Access, error) {
	groupKey, ok := ring.Group(groupID)
	if !ok {
		return nil, ErrPrecondition
	}

	gac, err := r.access.GetGroupAccess(groupID, itemID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNoAccess
		}
		return nil, err
	}

	return r.open(gac, groupKey)
}

// open unwraps the envelopes of a GAC row with the group key.
func (r *Resolver) open(gac *store.GAC, groupKey *keycrypt.Key) (*Access, error) {
	readKey, err := keycrypt.UnwrapKey(gac.RKey, groupKey)
	if err != nil {
		r.log.Warnw("access envelope rejected", "group_id", gac.GroupID, "item_id", gac.ItemID)
		return nil, ErrNoAccess
	}

	acc := &Access{GroupID: gac.GroupID, ReadKey: readKey}

	if gac.HasModify() {
		modifyKey, err := keycrypt.UnwrapKey(gac.MKey, groupKey)
		if err != nil {
			r.log.Warnw("access envelope rejected", "group_id", gac.GroupID, "item_id", gac.ItemID)
			return nil, ErrNoAccess
		}
		acc.ModifyKey = modifyKey
	}

	return acc, nil
}

// DecryptPayload opens an item's encrypted payload with resolved access.
func (r *Resolver) DecryptPayload(acc *Access, item *model.Password) ([]byte, error) {
	plaintext, err := keycrypt.Unwrap(item.Data, acc.ReadKey)
	if err != nil {
		r.log.Warnw("payload envelope rejected", "item_id", item.PasswordID)
		return nil, ErrNoAccess
	}
	return plaintext, nil
}

// EncryptPayload seals a new payload under the item's read key and returns
// the bytes to store. The caller must hold modify access.
func (r *Resolver) EncryptPayload(acc *Access, item *model.Password, plaintext []byte) ([]byte, error) {
	if !acc.CanModify() {
		return nil, ErrNoModify
	}

	readPub, err := keycrypt.NewPublicKey(item.ReadKey)
	if err != nil {
		return nil, err
	}
	return keycrypt.Wrap(plaintext, readPub)
}

// Grant builds a GAC row giving a group access to an item, wrapping the
// item keys held by the granter's access under the group's public key.
// Granting modify requires the granter to hold modify access themselves.
func (r *Resolver) Grant(acc *Access, group *model.Group, itemID string, allowRead, allowModify, persist bool) (*store.GAC, error) {
	if !allowRead {
		// A row without a read envelope would read as "no access".
		return nil, errors.New("a grant always carries read access")
	}
	if allowModify && !acc.CanModify() {
		return nil, ErrNoModify
	}

	groupPub, err := keycrypt.NewPublicKey(group.PublicKey)
	if err != nil {
		return nil, err
	}

	rkey, err := keycrypt.WrapKey(acc.ReadKey, groupPub)
	if err != nil {
		return nil, err
	}

	gac := &store.GAC{GroupID: group.GroupID, ItemID: itemID, RKey: rkey}
	if allowModify {
		gac.MKey, err = keycrypt.WrapKey(acc.ModifyKey, groupPub)
		if err != nil {
			return nil, err
		}
	}

	if persist {
		if err := r.access.Write(gac); err != nil {
			return nil, err
		}
	}
	return gac, nil
}

// AddMember enrolls a user into a group. The sponsor must already be a
// member: the group key is recovered through their membership and re-wrapped
// under the new member's public key.
func (r *Resolver) AddMember(ring *Keyring, sponsorID string, sponsorKey *keycrypt.Key, group *model.Group, newUser *model.User) error {
	groupKey, err := r.GroupKey(ring, sponsorID, sponsorKey, group.GroupID)
	if err != nil {
		return err
	}

	userPub, err := keycrypt.NewPublicKey(newUser.PublicKey)
	if err != nil {
		return err
	}

	akey, err := keycrypt.WrapKey(groupKey, userPub)
	if err != nil {
		return err
	}

	return r.memberships.AddMembership(&model.Membership{
		UserID:  newUser.UserID,
		GroupID: group.GroupID,
		AKey:    akey,
	})
}
