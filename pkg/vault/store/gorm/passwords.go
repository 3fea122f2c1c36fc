package gorm

import (
	"errors"

	"gorm.io/gorm"

	"github.com/kestrelsec/passvault/pkg/model"
	"github.com/kestrelsec/passvault/pkg/vault/store"
)

// Ensure PasswordsStore implements store.PasswordsStore
var _ store.PasswordsStore = (*PasswordsStore)(nil)

// PasswordsStore implements store.PasswordsStore using GORM
type PasswordsStore struct {
	db *gorm.DB
}

// NewPasswordsStore creates a new PasswordsStore
func NewPasswordsStore(db *gorm.DB) *PasswordsStore {
	return &PasswordsStore{db: db}
}

// FetchPassword retrieves an item by id
func (s *PasswordsStore) FetchPassword(itemID string) (*model.Password, error) {
	var p model.Password
	tx := s.db.Where("password_id = ?", itemID).First(&p)
	if tx.Error != nil {
		if errors.Is(tx.Error, gorm.ErrRecordNotFound) {
			return nil, store.ErrNotFound
		}
		return nil, tx.Error
	}
	return &p, nil
}

// CreatePassword inserts an item row
func (s *PasswordsStore) CreatePassword(p *model.Password) error {
	return s.db.Create(p).Error
}

// UpdatePayload replaces the encrypted payload and stamps last_changed_l
func (s *PasswordsStore) UpdatePayload(itemID string, data []byte, lastChanged int64) error {
	return s.db.Exec(`
		UPDATE passwords SET password_data = ?, last_changed_l = ? WHERE password_id = ?
	`, data, lastChanged, itemID).Error
}

// DeletePassword removes the item row
func (s *PasswordsStore) DeletePassword(itemID string) error {
	return s.db.Exec(`DELETE FROM passwords WHERE password_id = ?`, itemID).Error
}

// FetchUser retrieves a user by id
func (s *PasswordsStore) FetchUser(userID string) (*model.User, error) {
	var u model.User
	tx := s.db.Where("user_id = ?", userID).First(&u)
	if tx.Error != nil {
		if errors.Is(tx.Error, gorm.ErrRecordNotFound) {
			return nil, store.ErrNotFound
		}
		return nil, tx.Error
	}
	return &u, nil
}

// CreateUser inserts a user row
func (s *PasswordsStore) CreateUser(u *model.User) error {
	return s.db.Create(u).Error
}
