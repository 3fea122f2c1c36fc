package model

// Role values stored in group_access_roles.
const (
	ApproverRole      = "RA"
	HistoryViewerRole = "H"
)

// AccessRole scopes a role to an (item, actor) pair. The actor can be a user
// or a group.
type AccessRole struct {
	ItemID  string `gorm:"column:item_id;primaryKey"`
	ActorID string `gorm:"column:actor_id;primaryKey"`
	Role    string `gorm:"column:role;primaryKey"`
}

func (AccessRole) TableName() string {
	return "group_access_roles"
}
