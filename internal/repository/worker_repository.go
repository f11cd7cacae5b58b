package repository

import (
	"errors"

	"github.com/h4ks-com/farmhand/internal/models"
	"gorm.io/gorm"
)

type WorkerRepository struct {
	db *gorm.DB
}

func NewWorkerRepository(db *gorm.DB) *WorkerRepository {
	return &WorkerRepository{db: db}
}

func (r *WorkerRepository) Create(worker *models.Worker) error {
	return r.db.Create(worker).Error
}

func (r *WorkerRepository) FindByID(farmID, id uint) (*models.Worker, error) {
	var worker models.Worker
	err := r.db.Where("farm_id = ?", farmID).First(&worker, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &worker, nil
}

func (r *WorkerRepository) FindByIDInTx(tx *gorm.DB, farmID, id uint) (*models.Worker, error) {
	var worker models.Worker
	err := tx.Where("farm_id = ?", farmID).First(&worker, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &worker, nil
}

func (r *WorkerRepository) FindByName(farmID uint, fullName string) (*models.Worker, error) {
	var worker models.Worker
	err := r.db.Where("farm_id = ? AND full_name = ?", farmID, fullName).First(&worker).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &worker, nil
}

// List returns every worker when active is nil.
func (r *WorkerRepository) List(farmID uint, active *bool) ([]models.Worker, error) {
	var workers []models.Worker
	db := r.db.Where("farm_id = ?", farmID)
	if active != nil {
		db = db.Where("active = ?", *active)
	}
	err := db.Order("created_at DESC").Find(&workers).Error
	return workers, err
}

func (r *WorkerRepository) Update(worker *models.Worker) error {
	return r.db.Save(worker).Error
}

// HasHistory reports whether anything still points at the worker: job logs, payroll
// lines, adjustments, team memberships (ended ones included) or team leadership.
func (r *WorkerRepository) HasHistory(farmID, id uint) (bool, error) {
	refs := []struct {
		model any
		where string
	}{
		{&models.JobLog{}, "farm_id = ? AND performed_by_worker_id = ?"},
		{&models.PayrollLine{}, "farm_id = ? AND worker_id = ?"},
		{&models.Adjustment{}, "farm_id = ? AND worker_id = ?"},
		{&models.TeamMembership{}, "farm_id = ? AND worker_id = ?"},
		{&models.Team{}, "farm_id = ? AND leader_worker_id = ?"},
	}
	for _, ref := range refs {
		var count int64
		if err := r.db.Model(ref.model).Where(ref.where, farmID, id).Count(&count).Error; err != nil {
			return false, err
		}
		if count > 0 {
			return true, nil
		}
	}
	return false, nil
}

func (r *WorkerRepository) Delete(farmID, id uint) error {
	return r.db.Where("farm_id = ?", farmID).Delete(&models.Worker{}, id).Error
}
