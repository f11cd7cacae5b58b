package repository

import (
	"errors"

	"github.com/h4ks-com/farmhand/internal/models"
	"gorm.io/gorm"
)

type JobFilter struct {
	Status string
	TeamID uint
	PlanID uint
	Page   int
	Limit  int
}

type JobRepository struct {
	db *gorm.DB
}

func NewJobRepository(db *gorm.DB) *JobRepository {
	return &JobRepository{db: db}
}

func (r *JobRepository) Create(job *models.Job) error {
	return r.db.Create(job).Error
}

func (r *JobRepository) FindByID(farmID, id uint) (*models.Job, error) {
	var job models.Job
	err := r.db.Preload("Team").Preload("Plot").
		Where("farm_id = ?", farmID).
		First(&job, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &job, nil
}

func (r *JobRepository) FindByIDForUpdate(tx *gorm.DB, farmID, id uint) (*models.Job, error) {
	var job models.Job
	err := tx.Clauses(lockForUpdate()).Where("farm_id = ?", farmID).First(&job, id).Error
	if err != nil {
		return nil, err
	}
	return &job, nil
}

func (r *JobRepository) UpdateInTx(tx *gorm.DB, job *models.Job) error {
	return tx.Omit("Team", "Plot").Save(job).Error
}

func (r *JobRepository) filtered(farmID uint, filter JobFilter) *gorm.DB {
	db := r.db.Model(&models.Job{}).Where("farm_id = ?", farmID)
	if filter.Status != "" {
		db = db.Where("status = ?", filter.Status)
	}
	if filter.TeamID != 0 {
		db = db.Where("team_id = ?", filter.TeamID)
	}
	if filter.PlanID != 0 {
		db = db.Where("plan_id = ?", filter.PlanID)
	}
	return db
}

func (r *JobRepository) Search(farmID uint, filter JobFilter) ([]models.Job, error) {
	var jobs []models.Job
	offset := (filter.Page - 1) * filter.Limit

	err := r.filtered(farmID, filter).
		Preload("Team").
		Preload("Plot").
		Order("due_date ASC, id ASC").
		Offset(offset).
		Limit(filter.Limit).
		Find(&jobs).Error

	return jobs, err
}

func (r *JobRepository) CountSearch(farmID uint, filter JobFilter) (int64, error) {
	var count int64
	err := r.filtered(farmID, filter).Count(&count).Error
	return count, err
}

func (r *JobRepository) IDsForPlanInTx(tx *gorm.DB, farmID, planID uint) ([]uint, error) {
	var ids []uint
	err := tx.Model(&models.Job{}).Where("farm_id = ? AND plan_id = ?", farmID, planID).Pluck("id", &ids).Error
	return ids, err
}

func (r *JobRepository) CountReferencing(farmID uint, column string, id uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Job{}).Where("farm_id = ? AND "+column+" = ?", farmID, id).Count(&count).Error
	return count, err
}

// HardDeleteInTx removes jobs together with their logs and log transitions.
func (r *JobRepository) HardDeleteInTx(tx *gorm.DB, farmID uint, jobIDs []uint) error {
	if len(jobIDs) == 0 {
		return nil
	}
	var logIDs []uint
	if err := tx.Model(&models.JobLog{}).Unscoped().Where("farm_id = ? AND job_id IN ?", farmID, jobIDs).Pluck("id", &logIDs).Error; err != nil {
		return err
	}
	if len(logIDs) > 0 {
		if err := tx.Where("farm_id = ? AND job_log_id IN ?", farmID, logIDs).Delete(&models.JobLogTransition{}).Error; err != nil {
			return err
		}
	}
	if err := tx.Unscoped().Where("farm_id = ? AND job_id IN ?", farmID, jobIDs).Delete(&models.JobLog{}).Error; err != nil {
		return err
	}
	return tx.Unscoped().Where("farm_id = ? AND id IN ?", farmID, jobIDs).Delete(&models.Job{}).Error
}
