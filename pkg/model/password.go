package model

// CHAR flag values used across the legacy schema.
const (
	FlagTrue  = "Y"
	FlagFalse = "N"
)

// Password types stored in the ptype column.
const (
	TypeSystem   = 0
	TypePersonal = 1
)

// Audit levels stored in the audited column.
const (
	AuditedNone      = "N"
	AuditedFull      = "Y"
	AuditedEmailOnly = "E"
)

// Password is an access-controlled item. The payload is encrypted under the
// item's read key; only the public halves of the item key pairs are stored.
type Password struct {
	PasswordID    string `gorm:"column:password_id;primaryKey"`
	Location      string `gorm:"column:location"`
	Expiry        string `gorm:"column:expiry"`
	Enabled       string `gorm:"column:enabled;type:char(1)"`
	PType         int    `gorm:"column:ptype"`
	Audited       string `gorm:"column:audited;type:char(1)"`
	HistoryStored string `gorm:"column:history_stored;type:char(1)"`
	RestrictionID string `gorm:"column:restriction_id"`
	RAEnabled     string `gorm:"column:ra_enabled;type:char(1)"`
	RAApprovers   int    `gorm:"column:ra_approvers"`
	RABlockers    int    `gorm:"column:ra_blockers"`
	LastChanged   int64  `gorm:"column:last_changed_l"`
	LocationID    string `gorm:"column:location_id"`
	Data          []byte `gorm:"column:password_data;type:bytea"`
	ReadKey       []byte `gorm:"column:read_key;type:bytea"`
	ModifyKey     []byte `gorm:"column:modify_key;type:bytea"`
}

func (Password) TableName() string {
	return "passwords"
}

// IsEnabled reports whether the item is enabled.
func (p *Password) IsEnabled() bool {
	return p.Enabled == FlagTrue
}

// IsRestricted reports whether access requires the approval workflow.
func (p *Password) IsRestricted() bool {
	return p.RAEnabled == FlagTrue
}

// IsPersonal reports whether the item is a personal password. Personal
// passwords are not audited on view.
func (p *Password) IsPersonal() bool {
	return p.PType == TypePersonal
}

// AuditEmailOnly reports whether audit events for this item are email-only.
func (p *Password) AuditEmailOnly() bool {
	return p.Audited == AuditedEmailOnly
}
