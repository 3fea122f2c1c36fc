package model

// AdminGroupID is the fixed id of the administrative group. The admin group
// is guaranteed access to every item and is exempt from bulk revocation.
const AdminGroupID = "0"

// Group is a principal that can be granted access to items. Each group owns
// a key pair; the private half is never stored on the group row, only wrapped
// per member inside Membership.
type Group struct {
	GroupID   string `gorm:"column:group_id;primaryKey"`
	GroupName string `gorm:"column:group_name;not null"`
	Enabled   string `gorm:"column:enabled;type:char(1)"`
	PublicKey []byte `gorm:"column:public_key;type:bytea"`
}

func (Group) TableName() string {
	return "groups"
}

// IsEnabled reports whether the group is enabled.
func (g *Group) IsEnabled() bool {
	return g.Enabled == FlagTrue
}
