package services

import (
	"sort"
	"strings"
	"time"

	"github.com/h4ks-com/farmhand/internal/models"
	"github.com/h4ks-com/farmhand/internal/repository"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrJobTypeNotFound  = notFound("job type")
	ErrRateCardNotFound = notFound("rate card")

	// DefaultRateAmount is shown for job types the card has no rate for.
	DefaultRateAmount = decimal.NewFromInt(30000)
)

type CatalogService struct {
	catalogRepo *repository.CatalogRepository
	db          *gorm.DB
	log         *zap.Logger
	now         func() time.Time
}

func NewCatalogService(catalogRepo *repository.CatalogRepository, db *gorm.DB, log *zap.Logger) *CatalogService {
	return &CatalogService{
		catalogRepo: catalogRepo,
		db:          db,
		log:         log,
		now:         time.Now,
	}
}

func (s *CatalogService) CreateJobType(farmID uint, name string) (*models.JobType, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, validationf("job type name is required")
	}
	existing, err := s.catalogRepo.FindJobTypeByName(farmID, name)
	if err != nil {
		return nil, remote("find job type", err)
	}
	if existing != nil {
		return nil, validationf("job type %q already exists", name)
	}
	jobType := &models.JobType{FarmID: farmID, Name: name, IsActive: true}
	if err := s.catalogRepo.CreateJobType(jobType); err != nil {
		return nil, remote("create job type", err)
	}
	return jobType, nil
}

func (s *CatalogService) ListJobTypes(farmID uint, activeOnly bool) ([]models.JobType, error) {
	return s.catalogRepo.ListJobTypes(farmID, activeOnly)
}

func (s *CatalogService) SetJobTypeActive(farmID, id uint, active bool) (*models.JobType, error) {
	jobType, err := s.catalogRepo.FindJobType(farmID, id)
	if err != nil {
		return nil, remote("find job type", err)
	}
	if jobType == nil {
		return nil, ErrJobTypeNotFound
	}
	jobType.IsActive = active
	if err := s.catalogRepo.UpdateJobType(jobType); err != nil {
		return nil, remote("update job type", err)
	}
	return jobType, nil
}

type RateCardInput struct {
	Name          string
	Currency      string
	EffectiveFrom *time.Time
	Activate      bool
}

func (s *CatalogService) CreateRateCard(farmID uint, in RateCardInput) (*models.RateCard, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, validationf("rate card name is required")
	}
	currency := strings.ToUpper(strings.TrimSpace(in.Currency))
	if currency == "" {
		currency = "NGN"
	}
	if len(currency) != 3 {
		return nil, validationf("currency must be a 3-letter code")
	}
	effective := Day(s.now())
	if in.EffectiveFrom != nil {
		effective = Day(*in.EffectiveFrom)
	}

	card := &models.RateCard{
		FarmID:        farmID,
		Name:          name,
		Currency:      currency,
		EffectiveFrom: effective,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.catalogRepo.CreateRateCardInTx(tx, card); err != nil {
			return remote("create rate card", err)
		}
		if in.Activate {
			if err := s.catalogRepo.ActivateRateCardInTx(tx, farmID, card.ID); err != nil {
				return remote("activate rate card", err)
			}
			card.IsActive = true
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return card, nil
}

func (s *CatalogService) GetRateCard(farmID, id uint) (*models.RateCard, error) {
	card, err := s.catalogRepo.FindRateCard(farmID, id)
	if err != nil {
		return nil, remote("find rate card", err)
	}
	if card == nil {
		return nil, ErrRateCardNotFound
	}
	return card, nil
}

func (s *CatalogService) ListRateCards(farmID uint) ([]models.RateCard, error) {
	return s.catalogRepo.ListRateCards(farmID)
}

func (s *CatalogService) ActiveRateCard(farmID uint) (*models.RateCard, error) {
	card, err := s.catalogRepo.FindActiveRateCard(farmID)
	if err != nil {
		return nil, remote("find active rate card", err)
	}
	if card == nil {
		return nil, ErrRateCardNotFound
	}
	return card, nil
}

// ActivateRateCard makes id the farm's only active card.
func (s *CatalogService) ActivateRateCard(farmID, id uint) (*models.RateCard, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		card, err := s.catalogRepo.FindRateCardInTx(tx, farmID, id)
		if err != nil {
			return remote("find rate card", err)
		}
		if card == nil {
			return ErrRateCardNotFound
		}
		if err := s.catalogRepo.ActivateRateCardInTx(tx, farmID, id); err != nil {
			return remote("activate rate card", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("rate card activated", zap.Uint("farm_id", farmID), zap.Uint("rate_card_id", id))
	return s.GetRateCard(farmID, id)
}

type RateView struct {
	JobType    string          `json:"job_type"`
	RateAmount decimal.Decimal `json:"rate_amount"`
	Defaulted  bool            `json:"defaulted"`
}

// Rates lists one rate per active job type, defaulting missing ones, plus any stored rate
// for job types no longer in the catalog.
func (s *CatalogService) Rates(farmID, cardID uint) ([]RateView, error) {
	if _, err := s.GetRateCard(farmID, cardID); err != nil {
		return nil, err
	}
	rates, err := s.catalogRepo.ListRates(cardID)
	if err != nil {
		return nil, remote("list rates", err)
	}
	jobTypes, err := s.catalogRepo.ListJobTypes(farmID, true)
	if err != nil {
		return nil, remote("list job types", err)
	}

	stored := make(map[string]decimal.Decimal, len(rates))
	for _, rate := range rates {
		if rate.Crop == nil {
			stored[rate.JobType] = rate.RateAmount
		}
	}

	views := make([]RateView, 0, len(jobTypes)+len(stored))
	seen := make(map[string]bool, len(jobTypes))
	for _, jobType := range jobTypes {
		seen[jobType.Name] = true
		amount, ok := stored[jobType.Name]
		if !ok {
			views = append(views, RateView{JobType: jobType.Name, RateAmount: DefaultRateAmount, Defaulted: true})
			continue
		}
		views = append(views, RateView{JobType: jobType.Name, RateAmount: amount})
	}
	for jobType, amount := range stored {
		if !seen[jobType] {
			views = append(views, RateView{JobType: jobType, RateAmount: amount})
		}
	}
	sort.Slice(views, func(i, j int) bool { return views[i].JobType < views[j].JobType })
	return views, nil
}

// SaveRates upserts the crop-agnostic per-acre rate for each job type.
func (s *CatalogService) SaveRates(farmID, cardID uint, amounts map[string]decimal.Decimal) ([]models.Rate, error) {
	if _, err := s.GetRateCard(farmID, cardID); err != nil {
		return nil, err
	}
	if len(amounts) == 0 {
		return nil, validationf("no rates given")
	}

	jobTypes := make([]string, 0, len(amounts))
	for jobType, amount := range amounts {
		if strings.TrimSpace(jobType) == "" {
			return nil, validationf("job type is required")
		}
		if amount.LessThan(models.MinRateAmount) || amount.GreaterThan(models.MaxRateAmount) {
			return nil, validationf("rate for %q must be between %s and %s", jobType, models.MinRateAmount, models.MaxRateAmount)
		}
		jobTypes = append(jobTypes, jobType)
	}
	sort.Strings(jobTypes)

	saved := make([]models.Rate, 0, len(jobTypes))
	err := s.db.Transaction(func(tx *gorm.DB) error {
		for _, jobType := range jobTypes {
			rate := models.Rate{
				RateCardID: cardID,
				JobType:    strings.TrimSpace(jobType),
				PayType:    models.PayTypePerAcre,
				RateAmount: amounts[jobType].Round(2),
			}
			if err := s.catalogRepo.SaveRateInTx(tx, &rate); err != nil {
				return remote("save rate", err)
			}
			saved = append(saved, rate)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}
