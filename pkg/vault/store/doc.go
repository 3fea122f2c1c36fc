// Package store provides storage abstractions for the vault core.
//
// This package defines interfaces for database operations, allowing the
// access-resolution and approval engines to be decoupled from the specific
// database implementation. This enables easier testing with mocks and
// potential support for different storage backends.
//
// # Available Stores
//
//   - AccessStore: group access control rows and resolution queries
//   - GroupsStore: group lookup and listing
//   - MembershipsStore: user-to-group membership rows
//   - PasswordsStore: item metadata and encrypted payloads
//   - ApprovalsStore: restricted-access requests and votes
//
// # Usage
//
//	accessStore := gorm.NewAccessStore(db)
//	gac, err := accessStore.FindForUser("u1", "p1", store.ResolveOptions{})
//	if err != nil {
//	    if errors.Is(err, store.ErrNotFound) {
//	        // Handle no access
//	    }
//	}
package store
