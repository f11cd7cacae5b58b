package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	PeriodStatusOpen   = "open"
	PeriodStatusClosed = "closed"
)

const (
	AdjustmentDeduction = "deduction"
	AdjustmentBonus     = "bonus"
	AdjustmentAdvance   = "advance"
)

type PayPeriod struct {
	gorm.Model
	FarmID     uint      `gorm:"not null;index" json:"farm_id"`
	PeriodType string    `gorm:"not null;size:20" json:"period_type"`
	StartDate  time.Time `gorm:"type:date;not null" json:"start_date"`
	EndDate    time.Time `gorm:"type:date;not null" json:"end_date"`
	Status     string    `gorm:"not null;size:20;default:open" json:"status"`
}

// Adjustment with a nil PayPeriodID is floating and not applied by any run.
type Adjustment struct {
	gorm.Model
	FarmID      uint            `gorm:"not null;index" json:"farm_id"`
	WorkerID    uint            `gorm:"not null;index" json:"worker_id"`
	Worker      *Worker         `gorm:"foreignKey:WorkerID" json:"worker,omitempty"`
	PayPeriodID *uint           `gorm:"index" json:"pay_period_id"`
	AdjType     string          `gorm:"not null;size:20" json:"adj_type"`
	Amount      decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"amount"`
	Reason      string          `json:"reason,omitempty"`
}

type PieceItem struct {
	JobLogID  uint            `json:"job_log_id"`
	LogDate   string          `json:"log_date"`
	JobType   string          `json:"job_type"`
	Crop      *string         `json:"crop"`
	AcresDone float64         `json:"acres_done"`
	Rate      decimal.Decimal `json:"rate"`
	Amount    decimal.Decimal `json:"amount"`
}

type AdjustmentItem struct {
	AdjustmentID uint            `json:"adjustment_id"`
	AdjType      string          `json:"adj_type"`
	Amount       decimal.Decimal `json:"amount"`
	Reason       string          `json:"reason,omitempty"`
}

type PayrollBreakdown struct {
	PieceItems  []PieceItem      `json:"piece_items"`
	Adjustments []AdjustmentItem `json:"adjustments"`
}

// PayrollLine is derived data; a payroll run replaces every line of its period.
type PayrollLine struct {
	ID          uint                                 `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time                            `json:"created_at"`
	UpdatedAt   time.Time                            `json:"updated_at"`
	FarmID      uint                                 `gorm:"not null;index" json:"farm_id"`
	PayPeriodID uint                                 `gorm:"not null;uniqueIndex:idx_period_worker" json:"pay_period_id"`
	WorkerID    uint                                 `gorm:"not null;uniqueIndex:idx_period_worker;index" json:"worker_id"`
	Worker      *Worker                              `gorm:"foreignKey:WorkerID" json:"worker,omitempty"`
	RateCardID  uint                                 `gorm:"not null" json:"rate_card_id"`
	GrossPay    decimal.Decimal                      `gorm:"type:decimal(14,2);not null" json:"gross_pay"`
	Bonuses     decimal.Decimal                      `gorm:"type:decimal(14,2);not null" json:"bonuses"`
	Deductions  decimal.Decimal                      `gorm:"type:decimal(14,2);not null" json:"deductions"`
	NetPay      decimal.Decimal                      `gorm:"type:decimal(14,2);not null" json:"net_pay"`
	Breakdown   datatypes.JSONType[PayrollBreakdown] `json:"breakdown"`
}
