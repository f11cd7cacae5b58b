package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	FrequencyDaily    = "daily"
	FrequencyWeekly   = "weekly"
	FrequencyBiweekly = "biweekly"
	FrequencyMonthly  = "monthly"
)

const (
	JobStatusNotStarted = "not_started"
	JobStatusInProgress = "in_progress"
	JobStatusDone       = "done"
	JobStatusBlocked    = "blocked"
)

type Plan struct {
	gorm.Model
	FarmID    uint      `gorm:"not null;index" json:"farm_id"`
	Title     string    `gorm:"not null" json:"title"`
	Frequency string    `gorm:"not null;size:20" json:"frequency"`
	DateStart time.Time `gorm:"type:date;not null" json:"date_start"`
	DateEnd   time.Time `gorm:"type:date;not null" json:"date_end"`
	Jobs      []Job     `gorm:"foreignKey:PlanID" json:"-"`
}

type Job struct {
	gorm.Model
	FarmID          uint      `gorm:"not null;index" json:"farm_id"`
	PlanID          uint      `gorm:"not null;index" json:"plan_id"`
	TeamID          uint      `gorm:"not null;index" json:"team_id"`
	Team            *Team     `gorm:"foreignKey:TeamID" json:"team,omitempty"`
	PlotID          uint      `gorm:"not null;index" json:"plot_id"`
	Plot            *Plot     `gorm:"foreignKey:PlotID" json:"plot,omitempty"`
	JobType         string    `gorm:"not null" json:"job_type"`
	Crop            string    `json:"crop,omitempty"`
	Activity        string    `json:"activity,omitempty"`
	AllottedAcres   float64   `gorm:"not null" json:"allotted_acres"`
	StartDate       time.Time `gorm:"type:date;not null" json:"start_date"`
	DueDate         time.Time `gorm:"type:date;not null;index" json:"due_date"`
	Status          string    `gorm:"not null;size:20;default:not_started;index" json:"status"`
	PercentComplete float64   `gorm:"not null;default:0" json:"percent_complete"`
}
