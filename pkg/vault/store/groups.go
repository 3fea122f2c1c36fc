package store

import "github.com/kestrelsec/passvault/pkg/model"

// GroupsStore abstracts group storage operations.
type GroupsStore interface {
	// FetchGroup retrieves a group by id. Returns ErrNotFound if absent.
	FetchGroup(groupID string) (*model.Group, error)

	// ListGroups returns every group, ordered by name then id.
	ListGroups() ([]model.Group, error)

	// CreateGroup inserts a group row.
	CreateGroup(group *model.Group) error

	// GroupExists checks if a group exists.
	GroupExists(groupID string) bool
}

// MembershipsStore abstracts the user-to-group membership relation.
type MembershipsStore interface {
	// GetMembership retrieves the membership row for (user, group).
	// Returns ErrNotFound if the user is not a member.
	GetMembership(userID, groupID string) (*model.Membership, error)

	// AddMembership inserts a membership row carrying the wrapped group key.
	AddMembership(m *model.Membership) error

	// DeleteMembership removes a user from a group. Future resolutions
	// through this group fail; keys already unwrapped are unaffected.
	DeleteMembership(userID, groupID string) error

	// MembershipExists checks if a membership exists.
	MembershipExists(userID, groupID string) bool
}
