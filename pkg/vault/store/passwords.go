package store

import "github.com/kestrelsec/passvault/pkg/model"

// PasswordsStore abstracts item storage operations.
type PasswordsStore interface {
	// FetchPassword retrieves an item by id. Returns ErrNotFound if absent.
	FetchPassword(itemID string) (*model.Password, error)

	// CreatePassword inserts an item row.
	CreatePassword(p *model.Password) error

	// UpdatePayload replaces the encrypted payload and stamps last_changed_l.
	UpdatePayload(itemID string, data []byte, lastChanged int64) error

	// DeletePassword removes the item row.
	DeletePassword(itemID string) error

	// FetchUser retrieves a user by id. Returns ErrNotFound if absent.
	FetchUser(userID string) (*model.User, error)

	// CreateUser inserts a user row.
	CreateUser(u *model.User) error
}
