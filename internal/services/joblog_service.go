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

var ErrJobLogNotFound = notFound("job log")

type JobLogService struct {
	logRepo    *repository.JobLogRepository
	jobRepo    *repository.JobRepository
	workerRepo *repository.WorkerRepository
	db         *gorm.DB
	log        *zap.Logger
	now        func() time.Time
}

func NewJobLogService(
	logRepo *repository.JobLogRepository,
	jobRepo *repository.JobRepository,
	workerRepo *repository.WorkerRepository,
	db *gorm.DB,
	log *zap.Logger,
) *JobLogService {
	return &JobLogService{
		logRepo:    logRepo,
		jobRepo:    jobRepo,
		workerRepo: workerRepo,
		db:         db,
		log:        log,
		now:        time.Now,
	}
}

type JobLogInput struct {
	LogDate   time.Time
	AcresDone float64
	WorkerID  uint
	Notes     string
	Mode      string
}

func (in JobLogInput) validate() error {
	if in.AcresDone <= 0 {
		return validationf("acres_done must be greater than 0")
	}
	if in.WorkerID == 0 {
		return validationf("performed_by_worker_id is required")
	}
	if in.LogDate.IsZero() {
		return validationf("log_date is required")
	}
	return nil
}

func (s *JobLogService) checkWorker(tx *gorm.DB, farmID, workerID uint) error {
	worker, err := s.workerRepo.FindByIDInTx(tx, farmID, workerID)
	if err != nil {
		return remote("find worker", err)
	}
	if worker == nil {
		return validationf("worker is not part of this farm")
	}
	if !worker.Active {
		return validationf("worker %q is inactive", worker.FullName)
	}
	return nil
}

func (s *JobLogService) transition(tx *gorm.DB, log *models.JobLog, from, reason, actor string) error {
	err := s.logRepo.AddTransitionInTx(tx, &models.JobLogTransition{
		FarmID:     log.FarmID,
		JobLogID:   log.ID,
		FromStatus: from,
		ToStatus:   log.Status,
		Reason:     reason,
		Actor:      actor,
	})
	if err != nil {
		return remote("record job log transition", err)
	}
	return nil
}

// Create records work on a job as a draft or directly as submitted.
func (s *JobLogService) Create(farmID, jobID uint, in JobLogInput, actor string) (*models.JobLog, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	mode := in.Mode
	if mode == "" {
		mode = models.LogStatusSubmitted
	}
	if mode != models.LogStatusDraft && mode != models.LogStatusSubmitted {
		return nil, validationf("mode must be draft or submitted")
	}

	log := &models.JobLog{
		FarmID:              farmID,
		JobID:               jobID,
		LogDate:             Day(in.LogDate),
		AcresDone:           in.AcresDone,
		Notes:               strings.TrimSpace(in.Notes),
		PerformedByWorkerID: in.WorkerID,
		Status:              mode,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if _, err := s.jobRepo.FindByIDForUpdate(tx, farmID, jobID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return validationf("job is not part of this farm")
			}
			return remote("find job", err)
		}
		if err := s.checkWorker(tx, farmID, in.WorkerID); err != nil {
			return err
		}
		if err := s.logRepo.CreateInTx(tx, log); err != nil {
			return remote("create job log", err)
		}
		return s.transition(tx, log, "", "", actor)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(farmID, log.ID)
}

func (s *JobLogService) Get(farmID, id uint) (*models.JobLog, error) {
	log, err := s.logRepo.FindByID(farmID, id)
	if err != nil {
		return nil, remote("find job log", err)
	}
	if log == nil {
		return nil, ErrJobLogNotFound
	}
	return log, nil
}

// decide re-reads the log under a row lock and applies change only if it is in the from state.
func (s *JobLogService) decide(farmID, id uint, from string, change func(tx *gorm.DB, log *models.JobLog) error) (*models.JobLog, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		log, err := s.logRepo.FindByIDForUpdate(tx, farmID, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrJobLogNotFound
			}
			return remote("find job log", err)
		}
		if log.Status != from {
			return invalidStatef("job log is %s, expected %s", log.Status, from)
		}
		return change(tx, log)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(farmID, id)
}

func (s *JobLogService) Submit(farmID, id uint, actor string) (*models.JobLog, error) {
	log, err := s.decide(farmID, id, models.LogStatusDraft, func(tx *gorm.DB, log *models.JobLog) error {
		log.Status = models.LogStatusSubmitted
		if err := s.logRepo.UpdateInTx(tx, log); err != nil {
			return remote("update job log", err)
		}
		return s.transition(tx, log, models.LogStatusDraft, "", actor)
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("job log submitted", zap.Uint("farm_id", farmID), zap.Uint("job_log_id", id), zap.String("actor", actor))
	return log, nil
}

// Approve finalises a submitted log and refreshes the parent job's progress.
func (s *JobLogService) Approve(farmID, id uint, actor string) (*models.JobLog, error) {
	log, err := s.decide(farmID, id, models.LogStatusSubmitted, func(tx *gorm.DB, log *models.JobLog) error {
		approvedAt := s.now().UTC()
		log.Status = models.LogStatusApproved
		log.ApprovedAt = &approvedAt
		log.ReviewedBy = actor
		log.RejectionReason = ""
		if err := s.logRepo.UpdateInTx(tx, log); err != nil {
			return remote("update job log", err)
		}
		if err := s.transition(tx, log, models.LogStatusSubmitted, "", actor); err != nil {
			return err
		}
		return s.refreshProgress(tx, farmID, log.JobID)
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("job log approved", zap.Uint("farm_id", farmID), zap.Uint("job_log_id", id), zap.String("actor", actor))
	return log, nil
}

func (s *JobLogService) Reject(farmID, id uint, reason, actor string) (*models.JobLog, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, validationf("rejection reason is required")
	}
	log, err := s.decide(farmID, id, models.LogStatusSubmitted, func(tx *gorm.DB, log *models.JobLog) error {
		log.Status = models.LogStatusRejected
		log.RejectionReason = reason
		log.ReviewedBy = actor
		if err := s.logRepo.UpdateInTx(tx, log); err != nil {
			return remote("update job log", err)
		}
		return s.transition(tx, log, models.LogStatusSubmitted, reason, actor)
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("job log rejected", zap.Uint("farm_id", farmID), zap.Uint("job_log_id", id), zap.String("actor", actor))
	return log, nil
}

func (s *JobLogService) refreshProgress(tx *gorm.DB, farmID, jobID uint) error {
	job, err := s.jobRepo.FindByIDForUpdate(tx, farmID, jobID)
	if err != nil {
		return remote("find job", err)
	}
	acres, err := s.logRepo.ApprovedAcresInTx(tx, farmID, jobID)
	if err != nil {
		return remote("sum approved acres", err)
	}
	job.PercentComplete = PercentComplete(acres, job.AllottedAcres)
	if err := s.jobRepo.UpdateInTx(tx, job); err != nil {
		return remote("update job", err)
	}
	return nil
}

// Update edits a draft log.
func (s *JobLogService) Update(farmID, id uint, in JobLogInput) (*models.JobLog, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		log, err := s.logRepo.FindByIDForUpdate(tx, farmID, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrJobLogNotFound
			}
			return remote("find job log", err)
		}
		if log.Status == models.LogStatusApproved {
			return immutablef("approved job logs cannot be edited")
		}
		if log.Status != models.LogStatusDraft {
			return invalidStatef("only draft job logs can be edited, log is %s", log.Status)
		}
		if err := s.checkWorker(tx, farmID, in.WorkerID); err != nil {
			return err
		}
		log.LogDate = Day(in.LogDate)
		log.AcresDone = in.AcresDone
		log.PerformedByWorkerID = in.WorkerID
		log.Notes = strings.TrimSpace(in.Notes)
		if err := s.logRepo.UpdateInTx(tx, log); err != nil {
			return remote("update job log", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(farmID, id)
}

func (s *JobLogService) Delete(farmID, id uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		log, err := s.logRepo.FindByIDForUpdate(tx, farmID, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrJobLogNotFound
			}
			return remote("find job log", err)
		}
		if log.Status == models.LogStatusApproved {
			return immutablef("approved job logs cannot be deleted")
		}
		if err := s.logRepo.HardDeleteInTx(tx, farmID, id); err != nil {
			return remote("delete job log", err)
		}
		return nil
	})
}

func (s *JobLogService) ListForJob(farmID, jobID uint) ([]models.JobLog, error) {
	job, err := s.jobRepo.FindByID(farmID, jobID)
	if err != nil {
		return nil, remote("find job", err)
	}
	if job == nil {
		return nil, ErrJobNotFound
	}
	return s.logRepo.ListForJob(farmID, jobID)
}

func (s *JobLogService) ApprovalQueue(farmID uint) ([]models.JobLog, error) {
	return s.logRepo.Submitted(farmID)
}

func (s *JobLogService) History(farmID, id uint) ([]models.JobLogTransition, error) {
	if _, err := s.Get(farmID, id); err != nil {
		return nil, err
	}
	return s.logRepo.Transitions(farmID, id)
}
