package gorm

import (
	"errors"

	"gorm.io/gorm"

	"github.com/kestrelsec/passvault/pkg/model"
	"github.com/kestrelsec/passvault/pkg/vault/store"
)

// Ensure GroupsStore implements store.GroupsStore
var _ store.GroupsStore = (*GroupsStore)(nil)

// GroupsStore implements store.GroupsStore using GORM
type GroupsStore struct {
	db *gorm.DB
}

// NewGroupsStore creates a new GroupsStore
func NewGroupsStore(db *gorm.DB) *GroupsStore {
	return &GroupsStore{db: db}
}

// FetchGroup retrieves a group by id
func (s *GroupsStore) FetchGroup(groupID string) (*model.Group, error) {
	var group model.Group
	tx := s.db.Where("group_id = ?", groupID).First(&group)
	if tx.Error != nil {
		if errors.Is(tx.Error, gorm.ErrRecordNotFound) {
			return nil, store.ErrNotFound
		}
		return nil, tx.Error
	}
	return &group, nil
}

// ListGroups returns every group ordered by name then id
func (s *GroupsStore) ListGroups() ([]model.Group, error) {
	var groups []model.Group
	tx := s.db.Order("group_name, group_id").Find(&groups)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return groups, nil
}

// CreateGroup inserts a group row
func (s *GroupsStore) CreateGroup(group *model.Group) error {
	return s.db.Create(group).Error
}

// GroupExists checks if a group exists
func (s *GroupsStore) GroupExists(groupID string) bool {
	var exists bool
	s.db.Raw(`SELECT EXISTS(SELECT 1 FROM groups WHERE group_id = ?)`, groupID).Scan(&exists)
	return exists
}

// Ensure MembershipsStore implements store.MembershipsStore
var _ store.MembershipsStore = (*MembershipsStore)(nil)

// MembershipsStore implements store.MembershipsStore using GORM
type MembershipsStore struct {
	db *gorm.DB
}

// NewMembershipsStore creates a new MembershipsStore
func NewMembershipsStore(db *gorm.DB) *MembershipsStore {
	return &MembershipsStore{db: db}
}

// GetMembership retrieves the membership row for (user, group)
func (s *MembershipsStore) GetMembership(userID, groupID string) (*model.Membership, error) {
	var m model.Membership
	tx := s.db.Where("user_id = ? AND group_id = ?", userID, groupID).First(&m)
	if tx.Error != nil {
		if errors.Is(tx.Error, gorm.ErrRecordNotFound) {
			return nil, store.ErrNotFound
		}
		return nil, tx.Error
	}
	return &m, nil
}

// AddMembership inserts a membership row
func (s *MembershipsStore) AddMembership(m *model.Membership) error {
	return s.db.Exec(`
		INSERT INTO membership (user_id, group_id, akey)
		VALUES (?, ?, ?)
		ON CONFLICT DO NOTHING
	`, m.UserID, m.GroupID, m.AKey).Error
}

// DeleteMembership removes a user from a group
func (s *MembershipsStore) DeleteMembership(userID, groupID string) error {
	return s.db.Exec(`DELETE FROM membership WHERE user_id = ? AND group_id = ?`, userID, groupID).Error
}

// MembershipExists checks if a membership exists
func (s *MembershipsStore) MembershipExists(userID, groupID string) bool {
	var exists bool
	s.db.Raw(`SELECT EXISTS(SELECT 1 FROM membership WHERE user_id = ? AND group_id = ?)`,
		userID, groupID).Scan(&exists)
	return exists
}
