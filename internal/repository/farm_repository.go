package repository

import (
	"errors"

	"github.com/h4ks-com/farmhand/internal/models"
	"gorm.io/gorm"
)

type FarmRepository struct {
	db *gorm.DB
}

func NewFarmRepository(db *gorm.DB) *FarmRepository {
	return &FarmRepository{db: db}
}

func (r *FarmRepository) CreateInTx(tx *gorm.DB, farm *models.Farm) error {
	return tx.Create(farm).Error
}

func (r *FarmRepository) FindByID(id uint) (*models.Farm, error) {
	var farm models.Farm
	err := r.db.First(&farm, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &farm, nil
}

func (r *FarmRepository) AddMemberInTx(tx *gorm.DB, membership *models.FarmMembership) error {
	return tx.Create(membership).Error
}

func (r *FarmRepository) FindMembership(farmID, userID uint) (*models.FarmMembership, error) {
	var membership models.FarmMembership
	err := r.db.Where("farm_id = ? AND user_id = ?", farmID, userID).First(&membership).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &membership, nil
}

func (r *FarmRepository) SaveMembership(membership *models.FarmMembership) error {
	return r.db.Save(membership).Error
}

func (r *FarmRepository) ListActiveMemberships(userID uint) ([]models.FarmMembership, error) {
	var memberships []models.FarmMembership
	err := r.db.Preload("Farm").
		Where("user_id = ? AND is_active = ?", userID, true).
		Order("created_at ASC").
		Find(&memberships).Error
	return memberships, err
}
