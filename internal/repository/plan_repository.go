package repository

import (
	"errors"

	"github.com/h4ks-com/farmhand/internal/models"
	"gorm.io/gorm"
)

type PlanRepository struct {
	db *gorm.DB
}

func NewPlanRepository(db *gorm.DB) *PlanRepository {
	return &PlanRepository{db: db}
}

func (r *PlanRepository) Create(plan *models.Plan) error {
	return r.db.Create(plan).Error
}

func (r *PlanRepository) FindByID(farmID, id uint) (*models.Plan, error) {
	var plan models.Plan
	err := r.db.Where("farm_id = ?", farmID).First(&plan, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &plan, nil
}

func (r *PlanRepository) FindByIDForUpdate(tx *gorm.DB, farmID, id uint) (*models.Plan, error) {
	var plan models.Plan
	err := tx.Clauses(lockForUpdate()).Where("farm_id = ?", farmID).First(&plan, id).Error
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

func (r *PlanRepository) List(farmID uint) ([]models.Plan, error) {
	var plans []models.Plan
	err := r.db.Where("farm_id = ?", farmID).Order("date_start DESC, created_at DESC").Find(&plans).Error
	return plans, err
}

func (r *PlanRepository) Update(plan *models.Plan) error {
	return r.db.Save(plan).Error
}

func (r *PlanRepository) HardDeleteInTx(tx *gorm.DB, farmID, id uint) error {
	return tx.Unscoped().Where("farm_id = ?", farmID).Delete(&models.Plan{}, id).Error
}
