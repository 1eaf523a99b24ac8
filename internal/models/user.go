package models

import (
	"time"
)

// User is an identity issued by the external provider. The identifier is
// immutable; profile fields are refreshed on every successful
// authentication.
type User struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(255)"`
	Email     string    `json:"email" gorm:"type:varchar(255);index"`
	Name      string    `json:"name" gorm:"type:varchar(255)"`
	Picture   string    `json:"picture" gorm:"type:text"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for the User model
func (User) TableName() string {
	return "users"
}
