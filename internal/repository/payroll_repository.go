package repository

import (
	"errors"

	"github.com/h4ks-com/farmhand/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PayrollRepository struct {
	db *gorm.DB
}

func NewPayrollRepository(db *gorm.DB) *PayrollRepository {
	return &PayrollRepository{db: db}
}

func (r *PayrollRepository) CreatePeriod(period *models.PayPeriod) error {
	return r.db.Create(period).Error
}

func (r *PayrollRepository) FindPeriod(farmID, id uint) (*models.PayPeriod, error) {
	var period models.PayPeriod
	err := r.db.Where("farm_id = ?", farmID).First(&period, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &period, nil
}

func (r *PayrollRepository) FindPeriodForUpdate(tx *gorm.DB, farmID, id uint) (*models.PayPeriod, error) {
	var period models.PayPeriod
	err := tx.Clauses(lockForUpdate()).Where("farm_id = ?", farmID).First(&period, id).Error
	if err != nil {
		return nil, err
	}
	return &period, nil
}

func (r *PayrollRepository) ListPeriods(farmID uint) ([]models.PayPeriod, error) {
	var periods []models.PayPeriod
	err := r.db.Where("farm_id = ?", farmID).Order("created_at DESC, id DESC").Find(&periods).Error
	return periods, err
}

func (r *PayrollRepository) UpdatePeriodInTx(tx *gorm.DB, period *models.PayPeriod) error {
	return tx.Save(period).Error
}

func (r *PayrollRepository) CreateAdjustment(adjustment *models.Adjustment) error {
	return r.db.Omit("Worker").Create(adjustment).Error
}

func (r *PayrollRepository) FindAdjustment(farmID, id uint) (*models.Adjustment, error) {
	var adjustment models.Adjustment
	err := r.db.Preload("Worker").Where("farm_id = ?", farmID).First(&adjustment, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &adjustment, nil
}

// ListAdjustments returns every adjustment of the farm when periodID is nil.
func (r *PayrollRepository) ListAdjustments(farmID uint, periodID *uint) ([]models.Adjustment, error) {
	var adjustments []models.Adjustment
	db := r.db.Preload("Worker").Where("farm_id = ?", farmID)
	if periodID != nil {
		db = db.Where("pay_period_id = ?", *periodID)
	}
	err := db.Order("created_at DESC, id DESC").Find(&adjustments).Error
	return adjustments, err
}

func (r *PayrollRepository) AdjustmentsForPeriodInTx(tx *gorm.DB, farmID, periodID uint) ([]models.Adjustment, error) {
	var adjustments []models.Adjustment
	err := tx.Where("farm_id = ? AND pay_period_id = ?", farmID, periodID).
		Order("worker_id ASC, id ASC").
		Find(&adjustments).Error
	return adjustments, err
}

func (r *PayrollRepository) UpdateAdjustment(adjustment *models.Adjustment) error {
	return r.db.Omit("Worker").Save(adjustment).Error
}

func (r *PayrollRepository) DeleteAdjustment(farmID, id uint) error {
	return r.db.Where("farm_id = ?", farmID).Delete(&models.Adjustment{}, id).Error
}

func (r *PayrollRepository) UpsertLineInTx(tx *gorm.DB, line *models.PayrollLine) error {
	return tx.Omit("Worker").Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "pay_period_id"}, {Name: "worker_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"farm_id", "rate_card_id", "gross_pay", "bonuses", "deductions", "net_pay", "breakdown", "updated_at",
		}),
	}).Create(line).Error
}

// DeleteStaleLinesInTx removes lines of the period whose worker is not in keep.
func (r *PayrollRepository) DeleteStaleLinesInTx(tx *gorm.DB, farmID, periodID uint, keep []uint) (int64, error) {
	db := tx.Where("farm_id = ? AND pay_period_id = ?", farmID, periodID)
	if len(keep) > 0 {
		db = db.Where("worker_id NOT IN ?", keep)
	}
	result := db.Delete(&models.PayrollLine{})
	return result.RowsAffected, result.Error
}

func (r *PayrollRepository) Lines(farmID, periodID uint) ([]models.PayrollLine, error) {
	var lines []models.PayrollLine
	err := r.db.Preload("Worker", func(db *gorm.DB) *gorm.DB { return db.Unscoped() }).
		Where("farm_id = ? AND pay_period_id = ?", farmID, periodID).
		Order("net_pay DESC, worker_id ASC").
		Find(&lines).Error
	return lines, err
}
