package store

// GAC is a group access control row as seen by the engines: key material is
// still wrapped. A row grants at least read access; a modify envelope is
// present only for full grants.
type GAC struct {
	GroupID string
	ItemID  string
	RKey    []byte
	MKey    []byte
}

// HasModify reports whether the row carries a modify key envelope.
func (g *GAC) HasModify() bool {
	return len(g.MKey) > 0
}

// ResolveOptions parameterizes the resolution query. The zero value asks for
// the broadest grant among enabled groups.
type ResolveOptions struct {
	// RequireModify restricts the query to rows with both envelopes present.
	RequireModify bool

	// IncludeDisabled drops the group enabled filter. Administrative
	// inspection only; never valid for authorizing a decrypt.
	IncludeDisabled bool
}

// AccessStore abstracts group access control storage.
type AccessStore interface {
	// Write inserts a GAC row. A duplicate (group, item) insert returns
	// ErrConflict.
	Write(gac *GAC) error

	// Delete removes the row for (group_id, item_id).
	Delete(gac *GAC) error

	// DeleteAllForItem removes every GAC row for the item except the
	// administrative group's.
	DeleteAllForItem(itemID string) error

	// Update replaces the row for (group_id, item_id) in a single
	// transaction, so no concurrent reader observes the grant missing.
	Update(gac *GAC) error

	// FindForUser resolves the best GAC row reachable through the user's
	// memberships, per opts. Rows are matched in group id order so ties
	// break deterministically. Returns ErrNotFound when no row matches.
	FindForUser(userID, itemID string, opts ResolveOptions) (*GAC, error)

	// GetGroupAccess answers whether one specific group has access.
	// Returns ErrNotFound when it does not.
	GetGroupAccess(groupID, itemID string) (*GAC, error)

	// GetAccessFlags reports read/modify envelope presence for a
	// (item, group) pair without fetching the envelopes.
	GetAccessFlags(itemID, groupID string) (canRead, canModify bool, err error)

	// GetRoles returns the access roles held by an actor on an item.
	GetRoles(itemID, actorID string) ([]string, error)

	// AddRole grants an access role to an actor on an item.
	AddRole(itemID, actorID, role string) error
}
