package models

import (
	"time"

	"gorm.io/gorm"
)

// User mirrors the identity document merged on every successful sign-in.
// Identity itself is owned by the federated provider; this record only
// denormalises display data and the reminder count.
type User struct {
	ID          string `gorm:"primaryKey;type:uuid" json:"uid"`
	DisplayName string `gorm:"type:varchar(255)" json:"displayName"`
	Email       string `gorm:"type:varchar(255);index" json:"email"`
	PhotoURL    string `gorm:"type:text" json:"photoUrl"`

	NumberOfReminders int `gorm:"default:0" json:"numberOfReminders"`

	CreatedAt time.Time `json:"createdAt"`
	LastLogin time.Time `json:"lastLogin"`
	UpdatedAt time.Time `json:"-"`
}

// BeforeCreate stamps the initial login time when the document is first merged.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.LastLogin.IsZero() {
		u.LastLogin = time.Now()
	}
	return nil
}
