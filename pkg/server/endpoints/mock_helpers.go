package endpoints

import (
	"database/sql"

	"github.com/DATA-DOG/go-sqlmock"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/kestrelsec/passvault/pkg/audit"
	"github.com/kestrelsec/passvault/pkg/keycrypt"
	"github.com/kestrelsec/passvault/pkg/model"
	"github.com/kestrelsec/passvault/pkg/server"
)

// NewMockTestServer creates a server instance with a mocked database for unit
// testing. Returns the server, the mock handle, and any error.
func NewMockTestServer(signingKey, adminKey *keycrypt.Key) (*server.Server, *MockDB, error) {
	mockDB, err := NewMockDB()
	if err != nil {
		return nil, nil, err
	}

	sink := audit.NewSink(nil, nil)
	s := server.NewServer(mockDB.GormDB, signingKey, adminKey, sink, nil, nil, "127.0.0.1", "0")

	return s, mockDB, nil
}

// MockDB wraps sqlmock for easier test setup
type MockDB struct {
	DB     *sql.DB
	Mock   sqlmock.Sqlmock
	GormDB *gorm.DB
}

// NewMockDB creates a new mock database connection
func NewMockDB() (*MockDB, error) {
	db, mock, err := sqlmock.New()
	if err != nil {
		return nil, err
	}

	gormDB, err := gorm.Open(
		postgres.New(postgres.Config{
			Conn:                 db,
			PreferSimpleProtocol: true,
		}),
		&gorm.Config{
			Logger:                 logger.Default.LogMode(logger.Silent),
			SkipDefaultTransaction: true,
		},
	)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &MockDB{
		DB:     db,
		Mock:   mock,
		GormDB: gormDB,
	}, nil
}

// Close closes the mock database
func (m *MockDB) Close() error {
	return m.DB.Close()
}

func userRows(u *model.User) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"user_id", "user_name", "enabled", "public_key"}).
		AddRow(u.UserID, u.UserName, u.Enabled, u.PublicKey)
}

// ExpectUserQuery sets up expectation for a user lookup
func (m *MockDB) ExpectUserQuery(u *model.User) {
	m.Mock.ExpectQuery(`SELECT \* FROM "users"`).
		WithArgs(u.UserID).
		WillReturnRows(userRows(u))
}

// ExpectUserNotFound sets up expectation for a missing user
func (m *MockDB) ExpectUserNotFound(userID string) {
	m.Mock.ExpectQuery(`SELECT \* FROM "users"`).
		WithArgs(userID).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "user_name", "enabled", "public_key"}))
}

// ExpectPasswordQuery sets up expectation for an item lookup
func (m *MockDB) ExpectPasswordQuery(p *model.Password) {
	rows := sqlmock.NewRows([]string{
		"password_id", "location", "expiry", "enabled", "ptype", "audited",
		"history_stored", "restriction_id", "ra_enabled", "ra_approvers",
		"ra_blockers", "last_changed_l", "location_id", "password_data",
		"read_key", "modify_key",
	}).AddRow(
		p.PasswordID, p.Location, p.Expiry, p.Enabled, p.PType, p.Audited,
		p.HistoryStored, p.RestrictionID, p.RAEnabled, p.RAApprovers,
		p.RABlockers, p.LastChanged, p.LocationID, p.Data,
		p.ReadKey, p.ModifyKey,
	)
	m.Mock.ExpectQuery(`SELECT \* FROM "passwords"`).
		WithArgs(p.PasswordID).
		WillReturnRows(rows)
}

// ExpectPasswordNotFound sets up expectation for a missing item
func (m *MockDB) ExpectPasswordNotFound(itemID string) {
	m.Mock.ExpectQuery(`SELECT \* FROM "passwords"`).
		WithArgs(itemID).
		WillReturnRows(sqlmock.NewRows([]string{"password_id"}))
}

// ExpectAccessQuery sets up expectation for a GAC resolution hit
func (m *MockDB) ExpectAccessQuery(groupID, itemID string, rkey, mkey []byte) {
	rows := sqlmock.NewRows([]string{"group_id", "item_id", "rkey", "mkey"}).
		AddRow(groupID, itemID, rkey, mkey)
	m.Mock.ExpectQuery(`SELECT gac.group_id, gac.item_id, gac.rkey, gac.mkey`).
		WillReturnRows(rows)
}

// ExpectAccessNotFound sets up expectation for a GAC resolution miss
func (m *MockDB) ExpectAccessNotFound() {
	m.Mock.ExpectQuery(`SELECT gac.group_id, gac.item_id, gac.rkey, gac.mkey`).
		WillReturnRows(sqlmock.NewRows([]string{"group_id", "item_id", "rkey", "mkey"}))
}

// ExpectMembershipQuery sets up expectation for a membership lookup
func (m *MockDB) ExpectMembershipQuery(mem *model.Membership) {
	rows := sqlmock.NewRows([]string{"user_id", "group_id", "akey"}).
		AddRow(mem.UserID, mem.GroupID, mem.AKey)
	m.Mock.ExpectQuery(`SELECT \* FROM "membership"`).
		WithArgs(mem.UserID, mem.GroupID).
		WillReturnRows(rows)
}

// VerifyExpectations checks that all expectations were met
func (m *MockDB) VerifyExpectations() error {
	return m.Mock.ExpectationsWereMet()
}
