package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	LogStatusDraft     = "draft"
	LogStatusSubmitted = "submitted"
	LogStatusApproved  = "approved"
	LogStatusRejected  = "rejected"
)

type JobLog struct {
	gorm.Model
	FarmID              uint       `gorm:"not null;index" json:"farm_id"`
	JobID               uint       `gorm:"not null;index" json:"job_id"`
	Job                 *Job       `gorm:"foreignKey:JobID" json:"job,omitempty"`
	LogDate             time.Time  `gorm:"type:date;not null;index" json:"log_date"`
	AcresDone           float64    `gorm:"not null" json:"acres_done"`
	Notes               string     `gorm:"type:text" json:"notes,omitempty"`
	PerformedByWorkerID uint       `gorm:"not null;index" json:"performed_by_worker_id"`
	PerformedBy         *Worker    `gorm:"foreignKey:PerformedByWorkerID" json:"performed_by,omitempty"`
	Status              string     `gorm:"not null;size:20;index" json:"status"`
	RejectionReason     string     `gorm:"type:text" json:"rejection_reason,omitempty"`
	ApprovedAt          *time.Time `json:"approved_at,omitempty"`
	ReviewedBy          string     `json:"reviewed_by,omitempty"`
}

// JobLogTransition is an append-only record of a status change.
type JobLogTransition struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	FarmID     uint      `gorm:"not null;index" json:"farm_id"`
	JobLogID   uint      `gorm:"not null;index" json:"job_log_id"`
	FromStatus string    `gorm:"not null;size:20" json:"from_status"`
	ToStatus   string    `gorm:"not null;size:20" json:"to_status"`
	Reason     string    `gorm:"type:text" json:"reason,omitempty"`
	Actor      string    `gorm:"not null" json:"actor"`
}
