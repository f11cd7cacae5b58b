package repository

import (
	"errors"

	"github.com/h4ks-com/farmhand/internal/models"
	"gorm.io/gorm"
)

type PlotRepository struct {
	db *gorm.DB
}

func NewPlotRepository(db *gorm.DB) *PlotRepository {
	return &PlotRepository{db: db}
}

func (r *PlotRepository) Create(plot *models.Plot) error {
	return r.db.Create(plot).Error
}

func (r *PlotRepository) FindByID(farmID, id uint) (*models.Plot, error) {
	var plot models.Plot
	err := r.db.Where("farm_id = ?", farmID).First(&plot, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &plot, nil
}

func (r *PlotRepository) List(farmID uint) ([]models.Plot, error) {
	var plots []models.Plot
	err := r.db.Where("farm_id = ?", farmID).Order("created_at DESC").Find(&plots).Error
	return plots, err
}

func (r *PlotRepository) Update(plot *models.Plot) error {
	return r.db.Save(plot).Error
}

func (r *PlotRepository) Delete(farmID, id uint) error {
	return r.db.Where("farm_id = ?", farmID).Delete(&models.Plot{}, id).Error
}
