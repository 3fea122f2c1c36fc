package access

import (
	"sort"

	"github.com/kestrelsec/passvault/pkg/model"
	"github.com/kestrelsec/passvault/pkg/vault/store"
)

// fakeStore is an in-memory store backing the resolver tests. It implements
// the access, groups and memberships interfaces with the same semantics the
// SQL stores promise, including the deterministic group id tie-break.
type fakeStore struct {
	gacs        map[string]*store.GAC        // groupID|itemID
	groups      map[string]*model.Group      // groupID
	memberships map[string]*model.Membership // userID|groupID
	roles       map[string][]string          // itemID|actorID

	membershipReads int
}

var _ store.AccessStore = (*fakeStore)(nil)
var _ store.GroupsStore = (*fakeStore)(nil)
var _ store.MembershipsStore = (*fakeStore)(nil)

func newFakeStore() *fakeStore {
	return &fakeStore{
		gacs:        map[string]*store.GAC{},
		groups:      map[string]*model.Group{},
		memberships: map[string]*model.Membership{},
		roles:       map[string][]string{},
	}
}

func (f *fakeStore) Write(gac *store.GAC) error {
	key := gac.GroupID + "|" + gac.ItemID
	if _, ok := f.gacs[key]; ok {
		return store.ErrConflict
	}
	f.gacs[key] = gac
	return nil
}

func (f *fakeStore) Delete(gac *store.GAC) error {
	delete(f.gacs, gac.GroupID+"|"+gac.ItemID)
	return nil
}

func (f *fakeStore) DeleteAllForItem(itemID string) error {
	for key, gac := range f.gacs {
		if gac.ItemID == itemID && gac.GroupID != model.AdminGroupID {
			delete(f.gacs, key)
		}
	}
	return nil
}

func (f *fakeStore) Update(gac *store.GAC) error {
	f.gacs[gac.GroupID+"|"+gac.ItemID] = gac
	return nil
}

func (f *fakeStore) FindForUser(userID, itemID string, opts store.ResolveOptions) (*store.GAC, error) {
	var groupIDs []string
	for _, m := range f.memberships {
		if m.UserID == userID {
			groupIDs = append(groupIDs, m.GroupID)
		}
	}
	sort.Strings(groupIDs)

	for _, groupID := range groupIDs {
		gac, ok := f.gacs[groupID+"|"+itemID]
		if !ok || len(gac.RKey) == 0 {
			continue
		}
		if opts.RequireModify && !gac.HasModify() {
			continue
		}
		if !opts.IncludeDisabled {
			group, ok := f.groups[groupID]
			if !ok || !group.IsEnabled() {
				continue
			}
		}
		return gac, nil
	}
	return nil, store.ErrNotFound
}

func (f *fakeStore) GetGroupAccess(groupID, itemID string) (*store.GAC, error) {
	gac, ok := f.gacs[groupID+"|"+itemID]
	if !ok || len(gac.RKey) == 0 {
		return nil, store.ErrNotFound
	}
	return gac, nil
}

func (f *fakeStore) GetAccessFlags(itemID, groupID string) (bool, bool, error) {
	gac, ok := f.gacs[groupID+"|"+itemID]
	if !ok || len(gac.RKey) == 0 {
		return false, false, nil
	}
	return true, gac.HasModify(), nil
}

func (f *fakeStore) GetRoles(itemID, actorID string) ([]string, error) {
	return f.roles[itemID+"|"+actorID], nil
}

func (f *fakeStore) AddRole(itemID, actorID, role string) error {
	key := itemID + "|" + actorID
	f.roles[key] = append(f.roles[key], role)
	return nil
}

func (f *fakeStore) FetchGroup(groupID string) (*model.Group, error) {
	group, ok := f.groups[groupID]
	if !ok {
		return nil, store.ErrNotFound
	}
	return group, nil
}

func (f *fakeStore) ListGroups() ([]model.Group, error) {
	var groups []model.Group
	for _, g := range f.groups {
		groups = append(groups, *g)
	}
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].GroupName != groups[j].GroupName {
			return groups[i].GroupName < groups[j].GroupName
		}
		return groups[i].GroupID < groups[j].GroupID
	})
	return groups, nil
}

func (f *fakeStore) CreateGroup(group *model.Group) error {
	f.groups[group.GroupID] = group
	return nil
}

func (f *fakeStore) GroupExists(groupID string) bool {
	_, ok := f.groups[groupID]
	return ok
}

func (f *fakeStore) GetMembership(userID, groupID string) (*model.Membership, error) {
	f.membershipReads++
	m, ok := f.memberships[userID+"|"+groupID]
	if !ok {
		return nil, store.ErrNotFound
	}
	return m, nil
}

func (f *fakeStore) AddMembership(m *model.Membership) error {
	f.memberships[m.UserID+"|"+m.GroupID] = m
	return nil
}

func (f *fakeStore) DeleteMembership(userID, groupID string) error {
	delete(f.memberships, userID+"|"+groupID)
	return nil
}

func (f *fakeStore) MembershipExists(userID, groupID string) bool {
	_, ok := f.memberships[userID+"|"+groupID]
	return ok
}
