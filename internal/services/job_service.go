package services

import (
	"errors"
	"math"
	"strings"
	"time"

	"github.com/h4ks-com/farmhand/internal/models"
	"github.com/h4ks-com/farmhand/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var ErrJobNotFound = notFound("job")

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type JobService struct {
	jobRepo  *repository.JobRepository
	logRepo  *repository.JobLogRepository
	planRepo *repository.PlanRepository
	teamRepo *repository.TeamRepository
	plotRepo *repository.PlotRepository
	db       *gorm.DB
	log      *zap.Logger
}

func NewJobService(
	jobRepo *repository.JobRepository,
	logRepo *repository.JobLogRepository,
	planRepo *repository.PlanRepository,
	teamRepo *repository.TeamRepository,
	plotRepo *repository.PlotRepository,
	db *gorm.DB,
	log *zap.Logger,
) *JobService {
	return &JobService{
		jobRepo:  jobRepo,
		logRepo:  logRepo,
		planRepo: planRepo,
		teamRepo: teamRepo,
		plotRepo: plotRepo,
		db:       db,
		log:      log,
	}
}

type JobInput struct {
	PlanID        uint
	TeamID        uint
	PlotID        uint
	JobType       string
	Crop          string
	Activity      string
	AllottedAcres float64
	StartDate     time.Time
	DueDate       time.Time
}

func ValidJobStatus(status string) bool {
	switch status {
	case models.JobStatusNotStarted, models.JobStatusInProgress, models.JobStatusDone, models.JobStatusBlocked:
		return true
	}
	return false
}

// PercentComplete caps approved progress at 100.
func PercentComplete(approvedAcres, allottedAcres float64) float64 {
	if allottedAcres <= 0 {
		return 0
	}
	pct := 100 * approvedAcres / allottedAcres
	return math.Round(math.Min(100, pct)*100) / 100
}

func (s *JobService) checkRefs(farmID uint, in JobInput) error {
	plan, err := s.planRepo.FindByID(farmID, in.PlanID)
	if err != nil {
		return remote("find plan", err)
	}
	if plan == nil {
		return validationf("plan is not part of this farm")
	}
	team, err := s.teamRepo.FindByID(farmID, in.TeamID)
	if err != nil {
		return remote("find team", err)
	}
	if team == nil {
		return validationf("team is not part of this farm")
	}
	plot, err := s.plotRepo.FindByID(farmID, in.PlotID)
	if err != nil {
		return remote("find plot", err)
	}
	if plot == nil {
		return validationf("plot is not part of this farm")
	}
	return nil
}

func (in JobInput) validate() error {
	if strings.TrimSpace(in.JobType) == "" {
		return validationf("job_type is required")
	}
	if in.AllottedAcres <= 0 {
		return validationf("allotted_acres must be greater than 0")
	}
	if Day(in.DueDate).Before(Day(in.StartDate)) {
		return validationf("start_date must not be after due_date")
	}
	return nil
}

func (s *JobService) CreateJob(farmID uint, in JobInput) (*models.Job, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	if err := s.checkRefs(farmID, in); err != nil {
		return nil, err
	}

	job := &models.Job{
		FarmID:        farmID,
		PlanID:        in.PlanID,
		TeamID:        in.TeamID,
		PlotID:        in.PlotID,
		JobType:       strings.TrimSpace(in.JobType),
		Crop:          strings.TrimSpace(in.Crop),
		Activity:      strings.TrimSpace(in.Activity),
		AllottedAcres: in.AllottedAcres,
		StartDate:     Day(in.StartDate),
		DueDate:       Day(in.DueDate),
		Status:        models.JobStatusNotStarted,
	}
	if err := s.jobRepo.Create(job); err != nil {
		return nil, remote("create job", err)
	}
	return s.GetJob(farmID, job.ID)
}

func (s *JobService) GetJob(farmID, id uint) (*models.Job, error) {
	job, err := s.jobRepo.FindByID(farmID, id)
	if err != nil {
		return nil, remote("find job", err)
	}
	if job == nil {
		return nil, ErrJobNotFound
	}
	return job, nil
}

// NormalizePage applies the default page and the page size bounds.
func NormalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return page, limit
}

func (s *JobService) ListJobs(farmID uint, filter repository.JobFilter) ([]models.Job, int64, error) {
	if filter.Status != "" && !ValidJobStatus(filter.Status) {
		return nil, 0, validationf("unknown job status %q", filter.Status)
	}
	filter.Page, filter.Limit = NormalizePage(filter.Page, filter.Limit)

	jobs, err := s.jobRepo.Search(farmID, filter)
	if err != nil {
		return nil, 0, remote("search jobs", err)
	}

	count, err := s.jobRepo.CountSearch(farmID, filter)
	if err != nil {
		return nil, 0, remote("count jobs", err)
	}

	return jobs, count, nil
}

// UpdateJob edits a job; a changed allotment recomputes progress. The fields payroll
// prices by are frozen once any log is approved.
func (s *JobService) UpdateJob(farmID, id uint, in JobInput) (*models.Job, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	if err := s.checkRefs(farmID, in); err != nil {
		return nil, err
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		job, err := s.jobRepo.FindByIDForUpdate(tx, farmID, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrJobNotFound
			}
			return remote("find job", err)
		}

		jobType := strings.TrimSpace(in.JobType)
		crop := strings.TrimSpace(in.Crop)
		if job.JobType != jobType || job.Crop != crop || job.PlanID != in.PlanID {
			approved, err := s.logRepo.CountApprovedForJobsInTx(tx, farmID, []uint{id})
			if err != nil {
				return remote("count approved logs", err)
			}
			if approved > 0 {
				return immutablef("job has %d approved log(s); job_type, crop and plan_id cannot change", approved)
			}
		}

		job.PlanID = in.PlanID
		job.TeamID = in.TeamID
		job.PlotID = in.PlotID
		job.JobType = jobType
		job.Crop = crop
		job.Activity = strings.TrimSpace(in.Activity)
		job.StartDate = Day(in.StartDate)
		job.DueDate = Day(in.DueDate)
		if job.AllottedAcres != in.AllottedAcres {
			job.AllottedAcres = in.AllottedAcres
			if err := s.recompute(tx, job); err != nil {
				return err
			}
		}
		if err := s.jobRepo.UpdateInTx(tx, job); err != nil {
			return remote("update job", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetJob(farmID, id)
}

func (s *JobService) SetStatus(farmID, id uint, status string) (*models.Job, error) {
	if !ValidJobStatus(status) {
		return nil, validationf("status must be one of not_started, in_progress, done, blocked")
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		job, err := s.jobRepo.FindByIDForUpdate(tx, farmID, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrJobNotFound
			}
			return remote("find job", err)
		}
		job.Status = status
		if err := s.jobRepo.UpdateInTx(tx, job); err != nil {
			return remote("update job", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("job status changed", zap.Uint("farm_id", farmID), zap.Uint("job_id", id), zap.String("status", status))
	return s.GetJob(farmID, id)
}

func (s *JobService) RecomputeProgress(farmID, id uint) (*models.Job, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		job, err := s.jobRepo.FindByIDForUpdate(tx, farmID, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrJobNotFound
			}
			return remote("find job", err)
		}
		if err := s.recompute(tx, job); err != nil {
			return err
		}
		if err := s.jobRepo.UpdateInTx(tx, job); err != nil {
			return remote("update job", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetJob(farmID, id)
}

func (s *JobService) recompute(tx *gorm.DB, job *models.Job) error {
	acres, err := s.logRepo.ApprovedAcresInTx(tx, job.FarmID, job.ID)
	if err != nil {
		return remote("sum approved acres", err)
	}
	job.PercentComplete = PercentComplete(acres, job.AllottedAcres)
	return nil
}

// DeleteJob removes the job and its logs unless any log is approved.
func (s *JobService) DeleteJob(farmID, id uint) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if _, err := s.jobRepo.FindByIDForUpdate(tx, farmID, id); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrJobNotFound
			}
			return remote("find job", err)
		}
		approved, err := s.logRepo.CountApprovedForJobsInTx(tx, farmID, []uint{id})
		if err != nil {
			return remote("count approved logs", err)
		}
		if approved > 0 {
			return immutablef("job has %d approved log(s) and cannot be deleted", approved)
		}
		if err := s.jobRepo.HardDeleteInTx(tx, farmID, []uint{id}); err != nil {
			return remote("delete job", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.log.Info("job deleted", zap.Uint("farm_id", farmID), zap.Uint("job_id", id))
	return nil
}
