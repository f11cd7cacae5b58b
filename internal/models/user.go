package models

import (
	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	Username     string           `gorm:"uniqueIndex;not null" json:"username"`
	Email        string           `gorm:"" json:"email,omitempty"`
	PasswordHash string           `gorm:"not null" json:"-"`
	Memberships  []FarmMembership `gorm:"foreignKey:UserID" json:"-"`
	APITokens    []APIToken       `gorm:"foreignKey:UserID" json:"-"`
}
