package repository

import (
	"context"
	"time"

	"github.com/h4ks-com/farmhand/internal/models"
	"gorm.io/gorm"
)

type ReportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

func (r *ReportRepository) CountSubmittedLogs(ctx context.Context, farmID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.JobLog{}).
		Where("farm_id = ? AND status = ?", farmID, models.LogStatusSubmitted).
		Count(&count).Error
	return count, err
}

func (r *ReportRepository) ApprovedAcresBetween(ctx context.Context, farmID uint, from, to time.Time) (float64, error) {
	var total float64
	err := r.db.WithContext(ctx).Model(&models.JobLog{}).
		Select("COALESCE(SUM(acres_done), 0)").
		Where("farm_id = ? AND status = ? AND log_date >= ? AND log_date <= ?",
			farmID, models.LogStatusApproved, from, to).
		Scan(&total).Error
	return total, err
}

func (r *ReportRepository) OpenJobsDueBefore(ctx context.Context, farmID uint, before time.Time, limit int) ([]models.Job, error) {
	var jobs []models.Job
	err := r.db.WithContext(ctx).Preload("Team").Preload("Plot").
		Where("farm_id = ? AND status <> ? AND due_date < ?", farmID, models.JobStatusDone, before).
		Order("due_date ASC, id ASC").
		Limit(limit).
		Find(&jobs).Error
	return jobs, err
}

func (r *ReportRepository) OpenJobsDueBetween(ctx context.Context, farmID uint, from, to time.Time, limit int) ([]models.Job, error) {
	var jobs []models.Job
	err := r.db.WithContext(ctx).Preload("Team").Preload("Plot").
		Where("farm_id = ? AND status <> ? AND due_date >= ? AND due_date <= ?", farmID, models.JobStatusDone, from, to).
		Order("due_date ASC, id ASC").
		Limit(limit).
		Find(&jobs).Error
	return jobs, err
}
