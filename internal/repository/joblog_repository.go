package repository

import (
	"errors"

	"github.com/h4ks-com/farmhand/internal/models"
	"gorm.io/gorm"
)

type JobLogRepository struct {
	db *gorm.DB
}

func NewJobLogRepository(db *gorm.DB) *JobLogRepository {
	return &JobLogRepository{db: db}
}

func (r *JobLogRepository) CreateInTx(tx *gorm.DB, log *models.JobLog) error {
	return tx.Omit("Job", "PerformedBy").Create(log).Error
}

func (r *JobLogRepository) FindByID(farmID, id uint) (*models.JobLog, error) {
	var log models.JobLog
	err := r.db.Preload("PerformedBy").Where("farm_id = ?", farmID).First(&log, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &log, nil
}

func (r *JobLogRepository) FindByIDForUpdate(tx *gorm.DB, farmID, id uint) (*models.JobLog, error) {
	var log models.JobLog
	err := tx.Clauses(lockForUpdate()).Where("farm_id = ?", farmID).First(&log, id).Error
	if err != nil {
		return nil, err
	}
	return &log, nil
}

func (r *JobLogRepository) UpdateInTx(tx *gorm.DB, log *models.JobLog) error {
	return tx.Omit("Job", "PerformedBy").Save(log).Error
}

func (r *JobLogRepository) HardDeleteInTx(tx *gorm.DB, farmID, id uint) error {
	if err := tx.Where("farm_id = ? AND job_log_id = ?", farmID, id).Delete(&models.JobLogTransition{}).Error; err != nil {
		return err
	}
	return tx.Unscoped().Where("farm_id = ?", farmID).Delete(&models.JobLog{}, id).Error
}

func (r *JobLogRepository) ListForJob(farmID, jobID uint) ([]models.JobLog, error) {
	var logs []models.JobLog
	err := r.db.Preload("PerformedBy").
		Where("farm_id = ? AND job_id = ?", farmID, jobID).
		Order("log_date DESC, created_at DESC").
		Find(&logs).Error
	return logs, err
}

func (r *JobLogRepository) Submitted(farmID uint) ([]models.JobLog, error) {
	var logs []models.JobLog
	err := r.db.Preload("Job.Team").Preload("Job.Plot").Preload("PerformedBy").
		Where("farm_id = ? AND status = ?", farmID, models.LogStatusSubmitted).
		Order("log_date DESC, created_at DESC").
		Find(&logs).Error
	return logs, err
}

func (r *JobLogRepository) ApprovedAcresInTx(tx *gorm.DB, farmID, jobID uint) (float64, error) {
	var total float64
	err := tx.Model(&models.JobLog{}).
		Select("COALESCE(SUM(acres_done), 0)").
		Where("farm_id = ? AND job_id = ? AND status = ?", farmID, jobID, models.LogStatusApproved).
		Scan(&total).Error
	return total, err
}

func (r *JobLogRepository) CountApprovedForJobsInTx(tx *gorm.DB, farmID uint, jobIDs []uint) (int64, error) {
	if len(jobIDs) == 0 {
		return 0, nil
	}
	var count int64
	err := tx.Model(&models.JobLog{}).
		Where("farm_id = ? AND job_id IN ? AND status = ?", farmID, jobIDs, models.LogStatusApproved).
		Count(&count).Error
	return count, err
}

// ApprovedInRangeInTx loads approved logs with their job, ordered for payroll.
func (r *JobLogRepository) ApprovedInRangeInTx(tx *gorm.DB, farmID uint, period *models.PayPeriod) ([]models.JobLog, error) {
	var logs []models.JobLog
	err := tx.Preload("Job").
		Where("farm_id = ? AND status = ? AND log_date >= ? AND log_date <= ?",
			farmID, models.LogStatusApproved, period.StartDate, period.EndDate).
		Order("performed_by_worker_id ASC, log_date ASC, id ASC").
		Find(&logs).Error
	return logs, err
}

func (r *JobLogRepository) AddTransitionInTx(tx *gorm.DB, transition *models.JobLogTransition) error {
	return tx.Create(transition).Error
}

func (r *JobLogRepository) Transitions(farmID, logID uint) ([]models.JobLogTransition, error) {
	var transitions []models.JobLogTransition
	err := r.db.Where("farm_id = ? AND job_log_id = ?", farmID, logID).
		Order("created_at ASC, id ASC").
		Find(&transitions).Error
	return transitions, err
}
