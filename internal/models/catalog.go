package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const PayTypePerAcre = "per_acre"

var (
	MinRateAmount = decimal.NewFromInt(10000)
	MaxRateAmount = decimal.NewFromInt(50000)
)

type JobType struct {
	gorm.Model
	FarmID   uint   `gorm:"not null;uniqueIndex:idx_farm_job_type" json:"farm_id"`
	Name     string `gorm:"not null;uniqueIndex:idx_farm_job_type" json:"name"`
	IsActive bool   `gorm:"not null;default:true" json:"is_active"`
}

type RateCard struct {
	gorm.Model
	FarmID        uint      `gorm:"not null;index" json:"farm_id"`
	Name          string    `gorm:"not null" json:"name"`
	Currency      string    `gorm:"not null;size:3;default:NGN" json:"currency"`
	EffectiveFrom time.Time `gorm:"type:date" json:"effective_from"`
	IsActive      bool      `gorm:"not null;default:false;index" json:"is_active"`
	Rates         []Rate    `gorm:"foreignKey:RateCardID" json:"rates,omitempty"`
}

// Rate is a crop-agnostic per-acre rate when Crop is nil.
type Rate struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
	RateCardID uint            `gorm:"not null;uniqueIndex:idx_rate_card_job_crop" json:"rate_card_id"`
	JobType    string          `gorm:"not null;uniqueIndex:idx_rate_card_job_crop" json:"job_type"`
	Crop       *string         `gorm:"uniqueIndex:idx_rate_card_job_crop" json:"crop"`
	PayType    string          `gorm:"not null;default:per_acre" json:"pay_type"`
	RateAmount decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"rate_amount"`
}
