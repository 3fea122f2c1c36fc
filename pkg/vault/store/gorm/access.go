package gorm

import (
	"gorm.io/gorm"

	"github.com/kestrelsec/passvault/pkg/model"
	"github.com/kestrelsec/passvault/pkg/vault/store"
)

// Ensure AccessStore implements store.AccessStore
var _ store.AccessStore = (*AccessStore)(nil)

// AccessStore implements store.AccessStore using GORM
type AccessStore struct {
	db *gorm.DB
}

// NewAccessStore creates a new AccessStore
func NewAccessStore(db *gorm.DB) *AccessStore {
	return &AccessStore{db: db}
}

// gacRow mirrors the selected columns of a resolution query.
type gacRow struct {
	GroupID string `gorm:"column:group_id"`
	ItemID  string `gorm:"column:item_id"`
	RKey    []byte `gorm:"column:rkey"`
	MKey    []byte `gorm:"column:mkey"`
}

func (r gacRow) toGAC() *store.GAC {
	return &store.GAC{
		GroupID: r.GroupID,
		ItemID:  r.ItemID,
		RKey:    r.RKey,
		MKey:    r.MKey,
	}
}

// Write inserts a GAC row. A duplicate insert for the pair surfaces as
// ErrConflict rather than a driver error.
func (s *AccessStore) Write(gac *store.GAC) error {
	result := s.db.Exec(`
		INSERT INTO group_access_control (group_id, item_id, rkey, mkey)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (group_id, item_id) DO NOTHING
	`, gac.GroupID, gac.ItemID, gac.RKey, gac.MKey)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return store.ErrConflict
	}
	return nil
}

// Delete removes the row for (group_id, item_id).
func (s *AccessStore) Delete(gac *store.GAC) error {
	return s.db.Exec(`
		DELETE FROM group_access_control WHERE group_id = ? AND item_id = ?
	`, gac.GroupID, gac.ItemID).Error
}

// DeleteAllForItem removes every GAC row for the item except the
// administrative group's, which must survive any bulk revocation.
func (s *AccessStore) DeleteAllForItem(itemID string) error {
	return s.db.Exec(`
		DELETE FROM group_access_control
		WHERE item_id = ? AND group_id <> '`+model.AdminGroupID+`'
	`, itemID).Error
}

// Update replaces the row for the pair. Delete and re-insert run in one
// transaction so no concurrent reader observes the grant missing.
func (s *AccessStore) Update(gac *store.GAC) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(`
			DELETE FROM group_access_control WHERE group_id = ? AND item_id = ?
		`, gac.GroupID, gac.ItemID).Error; err != nil {
			return err
		}
		return tx.Exec(`
			INSERT INTO group_access_control (group_id, item_id, rkey, mkey)
			VALUES (?, ?, ?, ?)
		`, gac.GroupID, gac.ItemID, gac.RKey, gac.MKey).Error
	})
}

// FindForUser resolves a GAC row reachable through the user's memberships.
//
// One query shape serves all four legacy variants (full/read-only crossed
// with enabled/disabled-inclusive) by composing predicates. ORDER BY
// gac.group_id keeps the tie-break deterministic when several groups grant
// the same level.
func (s *AccessStore) FindForUser(userID, itemID string, opts store.ResolveOptions) (*store.GAC, error) {
	query := `
		SELECT gac.group_id, gac.item_id, gac.rkey, gac.mkey
		FROM group_access_control gac
		JOIN membership mem ON mem.group_id = gac.group_id
	`
	if !opts.IncludeDisabled {
		query += ` JOIN groups grp ON grp.group_id = gac.group_id`
	}

	query += `
		WHERE mem.user_id = ? AND gac.item_id = ? AND gac.rkey IS NOT NULL
	`
	args := []interface{}{userID, itemID}

	if opts.RequireModify {
		query += ` AND gac.mkey IS NOT NULL`
	}
	if !opts.IncludeDisabled {
		query += ` AND grp.enabled = ?`
		args = append(args, model.FlagTrue)
	}

	query += ` ORDER BY gac.group_id LIMIT 1`

	var row gacRow
	result := s.db.Raw(query, args...).Scan(&row)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, store.ErrNotFound
	}
	return row.toGAC(), nil
}

// GetGroupAccess answers whether one specific group has access to the item.
func (s *AccessStore) GetGroupAccess(groupID, itemID string) (*store.GAC, error) {
	var row gacRow
	result := s.db.Raw(`
		SELECT gac.group_id, gac.item_id, gac.rkey, gac.mkey
		FROM group_access_control gac
		WHERE gac.group_id = ? AND gac.item_id = ? AND gac.rkey IS NOT NULL
	`, groupID, itemID).Scan(&row)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, store.ErrNotFound
	}
	return row.toGAC(), nil
}

// GetAccessFlags reports envelope presence without fetching the envelopes.
func (s *AccessStore) GetAccessFlags(itemID, groupID string) (canRead, canModify bool, err error) {
	var row struct {
		HasRKey bool `gorm:"column:has_rkey"`
		HasMKey bool `gorm:"column:has_mkey"`
	}
	result := s.db.Raw(`
		SELECT gac.rkey IS NOT NULL AS has_rkey, gac.mkey IS NOT NULL AS has_mkey
		FROM group_access_control gac
		WHERE gac.item_id = ? AND gac.group_id = ? AND gac.rkey IS NOT NULL
	`, itemID, groupID).Scan(&row)
	if result.Error != nil {
		return false, false, result.Error
	}
	if result.RowsAffected == 0 {
		return false, false, nil
	}
	return row.HasRKey, row.HasMKey, nil
}

// GetRoles returns the access roles held by an actor on an item.
func (s *AccessStore) GetRoles(itemID, actorID string) ([]string, error) {
	type roleRow struct {
		Role string `gorm:"column:role"`
	}
	var rows []roleRow
	result := s.db.Raw(`
		SELECT gar.role FROM group_access_roles gar
		WHERE gar.item_id = ? AND gar.actor_id = ?
	`, itemID, actorID).Scan(&rows)
	if result.Error != nil {
		return nil, result.Error
	}

	roles := make([]string, 0, len(rows))
	for _, row := range rows {
		roles = append(roles, row.Role)
	}
	return roles, nil
}

// AddRole grants an access role to an actor on an item.
func (s *AccessStore) AddRole(itemID, actorID, role string) error {
	return s.db.Exec(`
		INSERT INTO group_access_roles (item_id, actor_id, role)
		VALUES (?, ?, ?)
		ON CONFLICT DO NOTHING
	`, itemID, actorID, role).Error
}
