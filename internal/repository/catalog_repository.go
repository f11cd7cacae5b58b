package repository

import (
	"errors"

	"github.com/h4ks-com/farmhand/internal/models"
	"gorm.io/gorm"
)

type CatalogRepository struct {
	db *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

func (r *CatalogRepository) CreateJobType(jobType *models.JobType) error {
	return r.db.Create(jobType).Error
}

func (r *CatalogRepository) FindJobType(farmID, id uint) (*models.JobType, error) {
	var jobType models.JobType
	err := r.db.Where("farm_id = ?", farmID).First(&jobType, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &jobType, nil
}

func (r *CatalogRepository) FindJobTypeByName(farmID uint, name string) (*models.JobType, error) {
	var jobType models.JobType
	err := r.db.Where("farm_id = ? AND name = ?", farmID, name).First(&jobType).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &jobType, nil
}

func (r *CatalogRepository) ListJobTypes(farmID uint, activeOnly bool) ([]models.JobType, error) {
	var jobTypes []models.JobType
	db := r.db.Where("farm_id = ?", farmID)
	if activeOnly {
		db = db.Where("is_active = ?", true)
	}
	err := db.Order("name ASC").Find(&jobTypes).Error
	return jobTypes, err
}

func (r *CatalogRepository) UpdateJobType(jobType *models.JobType) error {
	return r.db.Save(jobType).Error
}

func (r *CatalogRepository) CreateRateCardInTx(tx *gorm.DB, card *models.RateCard) error {
	return tx.Create(card).Error
}

func (r *CatalogRepository) FindRateCard(farmID, id uint) (*models.RateCard, error) {
	var card models.RateCard
	err := r.db.Where("farm_id = ?", farmID).First(&card, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &card, nil
}

func (r *CatalogRepository) FindRateCardInTx(tx *gorm.DB, farmID, id uint) (*models.RateCard, error) {
	var card models.RateCard
	err := tx.Where("farm_id = ?", farmID).First(&card, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &card, nil
}

func (r *CatalogRepository) FindActiveRateCard(farmID uint) (*models.RateCard, error) {
	var card models.RateCard
	err := r.db.Where("farm_id = ? AND is_active = ?", farmID, true).First(&card).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &card, nil
}

func (r *CatalogRepository) ListRateCards(farmID uint) ([]models.RateCard, error) {
	var cards []models.RateCard
	err := r.db.Where("farm_id = ?", farmID).Order("created_at DESC").Find(&cards).Error
	return cards, err
}

// ActivateRateCardInTx flips is_active for every card of the farm in one statement.
func (r *CatalogRepository) ActivateRateCardInTx(tx *gorm.DB, farmID, id uint) error {
	return tx.Model(&models.RateCard{}).
		Where("farm_id = ?", farmID).
		Update("is_active", gorm.Expr("id = ?", id)).Error
}

func (r *CatalogRepository) ListRates(cardID uint) ([]models.Rate, error) {
	var rates []models.Rate
	err := r.db.Where("rate_card_id = ?", cardID).Order("job_type ASC").Find(&rates).Error
	return rates, err
}

// CropAgnosticRatesInTx maps job type to the per-acre rate with no crop.
func (r *CatalogRepository) CropAgnosticRatesInTx(tx *gorm.DB, cardID uint) (map[string]models.Rate, error) {
	var rates []models.Rate
	err := tx.Where("rate_card_id = ? AND crop IS NULL AND pay_type = ?", cardID, models.PayTypePerAcre).
		Find(&rates).Error
	if err != nil {
		return nil, err
	}
	byJobType := make(map[string]models.Rate, len(rates))
	for _, rate := range rates {
		byJobType[rate.JobType] = rate
	}
	return byJobType, nil
}

func (r *CatalogRepository) SaveRateInTx(tx *gorm.DB, rate *models.Rate) error {
	var existing models.Rate
	err := tx.Where("rate_card_id = ? AND job_type = ? AND crop IS NULL", rate.RateCardID, rate.JobType).
		First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return tx.Create(rate).Error
	}
	if err != nil {
		return err
	}
	existing.RateAmount = rate.RateAmount
	existing.PayType = rate.PayType
	if err := tx.Save(&existing).Error; err != nil {
		return err
	}
	*rate = existing
	return nil
}
