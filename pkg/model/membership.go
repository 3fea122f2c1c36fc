package model

// Membership relates a user to a group. AKey holds the group's private key
// wrapped under the member's public key, so only current members can recover
// it. Removing the row revokes future resolutions only; plaintext keys
// already unwrapped in memory are unaffected.
type Membership struct {
	UserID  string `gorm:"column:user_id;primaryKey"`
	GroupID string `gorm:"column:group_id;primaryKey"`
	AKey    []byte `gorm:"column:akey;type:bytea;not null"`
}

func (Membership) TableName() string {
	return "membership"
}
