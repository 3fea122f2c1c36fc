package model

// GroupAccessControl grants a group access to an item. A row exists iff the
// group has at least read access. RKey holds the item's read key wrapped
// under the group key; MKey holds the modify key and is null for read-only
// grants.
type GroupAccessControl struct {
	GroupID string `gorm:"column:group_id;primaryKey"`
	ItemID  string `gorm:"column:item_id;primaryKey"`
	RKey    []byte `gorm:"column:rkey;type:bytea"`
	MKey    []byte `gorm:"column:mkey;type:bytea"`
}

func (GroupAccessControl) TableName() string {
	return "group_access_control"
}
