// Package model defines the database models for the vault.
//
// This package contains GORM models that map to the vault schema. Column
// names and flag conventions follow the legacy schema so existing databases
// can be carried forward.
//
// # Core Models
//
//   - Password: access-controlled items with encrypted payloads
//   - Group: principals that hold access; every group owns a key pair
//   - User: end users; each user owns a key pair
//   - Membership: user-to-group relation carrying the wrapped group key
//   - GroupAccessControl: per (group, item) key envelopes
//   - AccessRole: per (item, actor) roles such as approver
//   - RARequest / RAApproval: restricted-access request workflow state
//
// # Flag Columns
//
// Boolean columns are stored as CHAR 'Y'/'N' (FlagTrue/FlagFalse), matching
// the legacy layout.
package model
