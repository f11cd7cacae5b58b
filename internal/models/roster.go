package models

import (
	"time"

	"gorm.io/gorm"
)

type Plot struct {
	gorm.Model
	FarmID    uint    `gorm:"not null;index" json:"farm_id"`
	Name      string  `gorm:"not null" json:"name"`
	Code      string  `json:"code,omitempty"`
	SizeAcres float64 `gorm:"not null" json:"size_acres"`
}

// Worker rows are never hard-deleted once referenced by a log or payroll line.
type Worker struct {
	gorm.Model
	FarmID   uint   `gorm:"not null;index" json:"farm_id"`
	FullName string `gorm:"not null" json:"full_name"`
	Phone    string `json:"phone,omitempty"`
	Role     string `json:"role,omitempty"`
	Active   bool   `gorm:"not null;default:true;index" json:"active"`
	PhotoKey string `json:"-"`
}

type Team struct {
	gorm.Model
	FarmID         uint    `gorm:"not null;index" json:"farm_id"`
	Name           string  `gorm:"not null" json:"name"`
	LeaderWorkerID *uint   `gorm:"index" json:"leader_worker_id,omitempty"`
	Leader         *Worker `gorm:"foreignKey:LeaderWorkerID" json:"leader,omitempty"`
}

// TeamMembership with a nil EndDate is the worker's current membership.
type TeamMembership struct {
	gorm.Model
	FarmID    uint       `gorm:"not null;index" json:"farm_id"`
	TeamID    uint       `gorm:"not null;index" json:"team_id"`
	WorkerID  uint       `gorm:"not null;index" json:"worker_id"`
	Worker    Worker     `gorm:"foreignKey:WorkerID" json:"worker"`
	StartDate time.Time  `gorm:"type:date;not null" json:"start_date"`
	EndDate   *time.Time `gorm:"type:date" json:"end_date,omitempty"`
}
