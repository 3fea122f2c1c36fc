package gorm

import (
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/kestrelsec/passvault/pkg/vault/store"
)

func TestAccessStoreWrite(t *testing.T) {
	db, mock, err := newMockDB()
	if err != nil {
		t.Fatalf("failed to create mock db: %v", err)
	}

	s := NewAccessStore(db)

	mock.ExpectExec(`INSERT INTO group_access_control`).
		WithArgs("g1", "p1", []byte("rkey"), []byte("mkey")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = s.Write(&store.GAC{GroupID: "g1", ItemID: "p1", RKey: []byte("rkey"), MKey: []byte("mkey")})
	if err != nil {
		t.Errorf("Write() error = %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestAccessStoreWriteConflict(t *testing.T) {
	db, mock, err := newMockDB()
	if err != nil {
		t.Fatalf("failed to create mock db: %v", err)
	}

	s := NewAccessStore(db)

	// ON CONFLICT DO NOTHING swallows the duplicate, so zero rows affected
	// is the only signal.
	mock.ExpectExec(`INSERT INTO group_access_control`).
		WithArgs("g1", "p1", []byte("rkey"), []byte(nil)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = s.Write(&store.GAC{GroupID: "g1", ItemID: "p1", RKey: []byte("rkey")})
	if !errors.Is(err, store.ErrConflict) {
		t.Errorf("Write() error = %v, want ErrConflict", err)
	}
}

func TestAccessStoreDeleteAllForItemSparesAdminGroup(t *testing.T) {
	db, mock, err := newMockDB()
	if err != nil {
		t.Fatalf("failed to create mock db: %v", err)
	}

	s := NewAccessStore(db)

	mock.ExpectExec(`DELETE FROM group_access_control\s+WHERE item_id = \$1 AND group_id <> '0'`).
		WithArgs("p1").
		WillReturnResult(sqlmock.NewResult(0, 3))

	if err := s.DeleteAllForItem("p1"); err != nil {
		t.Errorf("DeleteAllForItem() error = %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestAccessStoreUpdateIsTransactional(t *testing.T) {
	db, mock, err := newMockDB()
	if err != nil {
		t.Fatalf("failed to create mock db: %v", err)
	}

	s := NewAccessStore(db)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM group_access_control`).
		WithArgs("g1", "p1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO group_access_control`).
		WithArgs("g1", "p1", []byte("r2"), []byte("m2")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err = s.Update(&store.GAC{GroupID: "g1", ItemID: "p1", RKey: []byte("r2"), MKey: []byte("m2")})
	if err != nil {
		t.Errorf("Update() error = %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestAccessStoreFindForUser(t *testing.T) {
	db, mock, err := newMockDB()
	if err != nil {
		t.Fatalf("failed to create mock db: %v", err)
	}

	s := NewAccessStore(db)

	rows := sqlmock.NewRows([]string{"group_id", "item_id", "rkey", "mkey"}).
		AddRow("g1", "p1", []byte("rkey"), []byte("mkey"))

	// Full access excludes disabled groups, so the enabled flag rides along
	// as a bind argument.
	mock.ExpectQuery(`SELECT gac.group_id, gac.item_id, gac.rkey, gac.mkey`).
		WithArgs("u1", "p1", "Y").
		WillReturnRows(rows)

	gac, err := s.FindForUser("u1", "p1", store.ResolveOptions{RequireModify: true})
	if err != nil {
		t.Fatalf("FindForUser() error = %v", err)
	}
	if gac.GroupID != "g1" || !gac.HasModify() {
		t.Errorf("unexpected resolution: %+v", gac)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestAccessStoreFindForUserIncludeDisabled(t *testing.T) {
	db, mock, err := newMockDB()
	if err != nil {
		t.Fatalf("failed to create mock db: %v", err)
	}

	s := NewAccessStore(db)

	rows := sqlmock.NewRows([]string{"group_id", "item_id", "rkey", "mkey"}).
		AddRow("g2", "p1", []byte("rkey"), nil)

	// No enabled predicate: only the user and item bind.
	mock.ExpectQuery(`SELECT gac.group_id, gac.item_id, gac.rkey, gac.mkey`).
		WithArgs("u1", "p1").
		WillReturnRows(rows)

	gac, err := s.FindForUser("u1", "p1", store.ResolveOptions{IncludeDisabled: true})
	if err != nil {
		t.Fatalf("FindForUser() error = %v", err)
	}
	if gac.HasModify() {
		t.Error("expected read-only resolution")
	}
}

func TestAccessStoreFindForUserNotFound(t *testing.T) {
	db, mock, err := newMockDB()
	if err != nil {
		t.Fatalf("failed to create mock db: %v", err)
	}

	s := NewAccessStore(db)

	mock.ExpectQuery(`SELECT gac.group_id, gac.item_id, gac.rkey, gac.mkey`).
		WithArgs("u1", "p1", "Y").
		WillReturnRows(sqlmock.NewRows([]string{"group_id", "item_id", "rkey", "mkey"}))

	_, err = s.FindForUser("u1", "p1", store.ResolveOptions{})
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("FindForUser() error = %v, want ErrNotFound", err)
	}
}

func TestAccessStoreGetAccessFlagsAbsentRow(t *testing.T) {
	db, mock, err := newMockDB()
	if err != nil {
		t.Fatalf("failed to create mock db: %v", err)
	}

	s := NewAccessStore(db)

	mock.ExpectQuery(`SELECT gac.rkey IS NOT NULL AS has_rkey`).
		WithArgs("p1", "g1").
		WillReturnRows(sqlmock.NewRows([]string{"has_rkey", "has_mkey"}))

	canRead, canModify, err := s.GetAccessFlags("p1", "g1")
	if err != nil {
		t.Fatalf("GetAccessFlags() error = %v", err)
	}
	if canRead || canModify {
		t.Error("absent row should report no access at all")
	}
}
