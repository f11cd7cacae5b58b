package services

import (
	"errors"
	"strings"
	"time"

	"github.com/h4ks-com/farmhand/internal/models"
	"github.com/h4ks-com/farmhand/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var ErrPlanNotFound = notFound("plan")

type PlanService struct {
	planRepo *repository.PlanRepository
	jobRepo  *repository.JobRepository
	logRepo  *repository.JobLogRepository
	db       *gorm.DB
	log      *zap.Logger
}

func NewPlanService(
	planRepo *repository.PlanRepository,
	jobRepo *repository.JobRepository,
	logRepo *repository.JobLogRepository,
	db *gorm.DB,
	log *zap.Logger,
) *PlanService {
	return &PlanService{
		planRepo: planRepo,
		jobRepo:  jobRepo,
		logRepo:  logRepo,
		db:       db,
		log:      log,
	}
}

type PlanInput struct {
	Title     string
	Frequency string
	DateStart time.Time
	DateEnd   time.Time
}

func validFrequency(frequency string) bool {
	switch frequency {
	case models.FrequencyDaily, models.FrequencyWeekly, models.FrequencyBiweekly, models.FrequencyMonthly:
		return true
	}
	return false
}

func (in PlanInput) validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return validationf("plan title is required")
	}
	if !validFrequency(in.Frequency) {
		return validationf("frequency must be one of daily, weekly, biweekly, monthly")
	}
	if Day(in.DateEnd).Before(Day(in.DateStart)) {
		return validationf("date_end must not be before date_start")
	}
	return nil
}

func (s *PlanService) CreatePlan(farmID uint, in PlanInput) (*models.Plan, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	plan := &models.Plan{
		FarmID:    farmID,
		Title:     strings.TrimSpace(in.Title),
		Frequency: in.Frequency,
		DateStart: Day(in.DateStart),
		DateEnd:   Day(in.DateEnd),
	}
	if err := s.planRepo.Create(plan); err != nil {
		return nil, remote("create plan", err)
	}
	return plan, nil
}

func (s *PlanService) GetPlan(farmID, id uint) (*models.Plan, error) {
	plan, err := s.planRepo.FindByID(farmID, id)
	if err != nil {
		return nil, remote("find plan", err)
	}
	if plan == nil {
		return nil, ErrPlanNotFound
	}
	return plan, nil
}

func (s *PlanService) ListPlans(farmID uint) ([]models.Plan, error) {
	return s.planRepo.List(farmID)
}

func (s *PlanService) UpdatePlan(farmID, id uint, in PlanInput) (*models.Plan, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	plan, err := s.GetPlan(farmID, id)
	if err != nil {
		return nil, err
	}
	plan.Title = strings.TrimSpace(in.Title)
	plan.Frequency = in.Frequency
	plan.DateStart = Day(in.DateStart)
	plan.DateEnd = Day(in.DateEnd)
	if err := s.planRepo.Update(plan); err != nil {
		return nil, remote("update plan", err)
	}
	return plan, nil
}

// DeletePlan removes the plan with its jobs and logs, unless any log is approved.
func (s *PlanService) DeletePlan(farmID, id uint) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if _, err := s.planRepo.FindByIDForUpdate(tx, farmID, id); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPlanNotFound
			}
			return remote("find plan", err)
		}

		jobIDs, err := s.jobRepo.IDsForPlanInTx(tx, farmID, id)
		if err != nil {
			return remote("list plan jobs", err)
		}

		approved, err := s.logRepo.CountApprovedForJobsInTx(tx, farmID, jobIDs)
		if err != nil {
			return remote("count approved logs", err)
		}
		if approved > 0 {
			return immutablef("plan has %d approved job log(s) and cannot be deleted", approved)
		}

		if err := s.jobRepo.HardDeleteInTx(tx, farmID, jobIDs); err != nil {
			return remote("delete plan jobs", err)
		}
		if err := s.planRepo.HardDeleteInTx(tx, farmID, id); err != nil {
			return remote("delete plan", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.log.Info("plan deleted", zap.Uint("farm_id", farmID), zap.Uint("plan_id", id))
	return nil
}
