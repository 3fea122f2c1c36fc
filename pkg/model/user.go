package model

// User is an end user of the vault. The private half of the user's key pair
// is held encrypted under material derived from their credentials; that
// derivation happens in the authentication layer, outside this core.
type User struct {
	UserID    string `gorm:"column:user_id;primaryKey"`
	UserName  string `gorm:"column:user_name;not null"`
	Enabled   string `gorm:"column:enabled;type:char(1)"`
	PublicKey []byte `gorm:"column:public_key;type:bytea"`
}

func (User) TableName() string {
	return "users"
}
