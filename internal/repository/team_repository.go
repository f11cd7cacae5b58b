package repository

import (
	"errors"
	"time"

	"github.com/h4ks-com/farmhand/internal/models"
	"gorm.io/gorm"
)

type TeamRepository struct {
	db *gorm.DB
}

func NewTeamRepository(db *gorm.DB) *TeamRepository {
	return &TeamRepository{db: db}
}

func (r *TeamRepository) Create(team *models.Team) error {
	return r.db.Create(team).Error
}

func (r *TeamRepository) FindByID(farmID, id uint) (*models.Team, error) {
	var team models.Team
	err := r.db.Preload("Leader").Where("farm_id = ?", farmID).First(&team, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &team, nil
}

func (r *TeamRepository) List(farmID uint) ([]models.Team, error) {
	var teams []models.Team
	err := r.db.Preload("Leader").Where("farm_id = ?", farmID).Order("created_at DESC").Find(&teams).Error
	return teams, err
}

func (r *TeamRepository) DeleteInTx(tx *gorm.DB, farmID, id uint) error {
	if err := tx.Where("farm_id = ? AND team_id = ?", farmID, id).Delete(&models.TeamMembership{}).Error; err != nil {
		return err
	}
	return tx.Where("farm_id = ?", farmID).Delete(&models.Team{}, id).Error
}

func (r *TeamRepository) AddMember(membership *models.TeamMembership) error {
	return r.db.Create(membership).Error
}

func (r *TeamRepository) FindMembership(farmID, id uint) (*models.TeamMembership, error) {
	var membership models.TeamMembership
	err := r.db.Preload("Worker").Where("farm_id = ?", farmID).First(&membership, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &membership, nil
}

func (r *TeamRepository) HasActiveMembership(farmID, teamID, workerID uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.TeamMembership{}).
		Where("farm_id = ? AND team_id = ? AND worker_id = ? AND end_date IS NULL", farmID, teamID, workerID).
		Count(&count).Error
	return count > 0, err
}

func (r *TeamRepository) EndMembership(membership *models.TeamMembership, endDate time.Time) error {
	return r.db.Model(membership).Update("end_date", endDate).Error
}

func (r *TeamRepository) ListMembers(farmID, teamID uint) ([]models.TeamMembership, error) {
	var memberships []models.TeamMembership
	err := r.db.Preload("Worker").
		Where("farm_id = ? AND team_id = ?", farmID, teamID).
		Order("start_date DESC").
		Find(&memberships).Error
	return memberships, err
}

func (r *TeamRepository) ActiveMembers(farmID, teamID uint) ([]models.Worker, error) {
	var workers []models.Worker
	err := r.db.
		Joins("JOIN team_memberships tm ON tm.worker_id = workers.id AND tm.deleted_at IS NULL").
		Where("tm.farm_id = ? AND tm.team_id = ? AND tm.end_date IS NULL AND workers.active = ?", farmID, teamID, true).
		Order("workers.full_name ASC").
		Find(&workers).Error
	return workers, err
}
