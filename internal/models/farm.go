package models

import "gorm.io/gorm"

const (
	RoleOwner      = "owner"
	RoleManager    = "manager"
	RoleSupervisor = "supervisor"
)

// Farm is the tenant boundary. Every other farm-owned row carries FarmID.
type Farm struct {
	gorm.Model
	Name     string `gorm:"not null" json:"name"`
	Location string `json:"location"`
}

type FarmMembership struct {
	gorm.Model
	FarmID   uint   `gorm:"not null;uniqueIndex:idx_farm_user" json:"farm_id"`
	Farm     Farm   `gorm:"foreignKey:FarmID" json:"-"`
	UserID   uint   `gorm:"not null;uniqueIndex:idx_farm_user;index" json:"user_id"`
	User     User   `gorm:"foreignKey:UserID" json:"-"`
	Role     string `gorm:"not null;size:20" json:"role"`
	IsActive bool   `gorm:"not null;default:true" json:"is_active"`
}
