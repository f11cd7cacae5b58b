package services

import (
	"context"
	"strings"
	"time"

	"github.com/h4ks-com/farmhand/internal/models"
	"github.com/h4ks-com/farmhand/internal/repository"
	"github.com/h4ks-com/farmhand/internal/roster"
	"github.com/h4ks-com/farmhand/internal/storage"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrPlotNotFound       = notFound("plot")
	ErrWorkerNotFound     = notFound("worker")
	ErrTeamNotFound       = notFound("team")
	ErrMembershipNotFound = notFound("team membership")
)

type RosterService struct {
	plotRepo   *repository.PlotRepository
	workerRepo *repository.WorkerRepository
	teamRepo   *repository.TeamRepository
	jobRepo    *repository.JobRepository
	store      storage.ObjectStore
	db         *gorm.DB
	log        *zap.Logger
	now        func() time.Time
}

func NewRosterService(
	plotRepo *repository.PlotRepository,
	workerRepo *repository.WorkerRepository,
	teamRepo *repository.TeamRepository,
	jobRepo *repository.JobRepository,
	store storage.ObjectStore,
	db *gorm.DB,
	log *zap.Logger,
) *RosterService {
	return &RosterService{
		plotRepo:   plotRepo,
		workerRepo: workerRepo,
		teamRepo:   teamRepo,
		jobRepo:    jobRepo,
		store:      store,
		db:         db,
		log:        log,
		now:        time.Now,
	}
}

type PlotInput struct {
	Name      string
	Code      string
	SizeAcres float64
}

func (in PlotInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return validationf("plot name is required")
	}
	if in.SizeAcres <= 0 {
		return validationf("size_acres must be greater than 0")
	}
	return nil
}

func (s *RosterService) CreatePlot(farmID uint, in PlotInput) (*models.Plot, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	plot := &models.Plot{
		FarmID:    farmID,
		Name:      strings.TrimSpace(in.Name),
		Code:      strings.TrimSpace(in.Code),
		SizeAcres: in.SizeAcres,
	}
	if err := s.plotRepo.Create(plot); err != nil {
		return nil, remote("create plot", err)
	}
	return plot, nil
}

func (s *RosterService) GetPlot(farmID, id uint) (*models.Plot, error) {
	plot, err := s.plotRepo.FindByID(farmID, id)
	if err != nil {
		return nil, remote("find plot", err)
	}
	if plot == nil {
		return nil, ErrPlotNotFound
	}
	return plot, nil
}

func (s *RosterService) ListPlots(farmID uint) ([]models.Plot, error) {
	return s.plotRepo.List(farmID)
}

func (s *RosterService) UpdatePlot(farmID, id uint, in PlotInput) (*models.Plot, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	plot, err := s.GetPlot(farmID, id)
	if err != nil {
		return nil, err
	}
	plot.Name = strings.TrimSpace(in.Name)
	plot.Code = strings.TrimSpace(in.Code)
	plot.SizeAcres = in.SizeAcres
	if err := s.plotRepo.Update(plot); err != nil {
		return nil, remote("update plot", err)
	}
	return plot, nil
}

func (s *RosterService) DeletePlot(farmID, id uint) error {
	if _, err := s.GetPlot(farmID, id); err != nil {
		return err
	}
	refs, err := s.jobRepo.CountReferencing(farmID, "plot_id", id)
	if err != nil {
		return remote("count jobs", err)
	}
	if refs > 0 {
		return invalidStatef("plot is used by %d job(s)", refs)
	}
	if err := s.plotRepo.Delete(farmID, id); err != nil {
		return remote("delete plot", err)
	}
	return nil
}

type WorkerInput struct {
	FullName string
	Phone    string
	Role     string
}

func (s *RosterService) CreateWorker(farmID uint, in WorkerInput) (*models.Worker, error) {
	name := strings.TrimSpace(in.FullName)
	if name == "" {
		return nil, validationf("full_name is required")
	}
	worker := &models.Worker{
		FarmID:   farmID,
		FullName: name,
		Phone:    strings.TrimSpace(in.Phone),
		Role:     strings.TrimSpace(in.Role),
		Active:   true,
	}
	if err := s.workerRepo.Create(worker); err != nil {
		return nil, remote("create worker", err)
	}
	return worker, nil
}

func (s *RosterService) GetWorker(farmID, id uint) (*models.Worker, error) {
	worker, err := s.workerRepo.FindByID(farmID, id)
	if err != nil {
		return nil, remote("find worker", err)
	}
	if worker == nil {
		return nil, ErrWorkerNotFound
	}
	return worker, nil
}

func (s *RosterService) ListWorkers(farmID uint, active *bool) ([]models.Worker, error) {
	return s.workerRepo.List(farmID, active)
}

func (s *RosterService) UpdateWorker(farmID, id uint, in WorkerInput) (*models.Worker, error) {
	name := strings.TrimSpace(in.FullName)
	if name == "" {
		return nil, validationf("full_name is required")
	}
	worker, err := s.GetWorker(farmID, id)
	if err != nil {
		return nil, err
	}
	worker.FullName = name
	worker.Phone = strings.TrimSpace(in.Phone)
	worker.Role = strings.TrimSpace(in.Role)
	if err := s.workerRepo.Update(worker); err != nil {
		return nil, remote("update worker", err)
	}
	return worker, nil
}

func (s *RosterService) SetWorkerActive(farmID, id uint, active bool) (*models.Worker, error) {
	worker, err := s.GetWorker(farmID, id)
	if err != nil {
		return nil, err
	}
	worker.Active = active
	if err := s.workerRepo.Update(worker); err != nil {
		return nil, remote("update worker", err)
	}
	s.log.Info("worker active changed", zap.Uint("farm_id", farmID), zap.Uint("worker_id", id), zap.Bool("active", active))
	return worker, nil
}

// DeleteWorker soft-deletes a worker that has never logged work or been paid.
func (s *RosterService) DeleteWorker(farmID, id uint) error {
	if _, err := s.GetWorker(farmID, id); err != nil {
		return err
	}
	history, err := s.workerRepo.HasHistory(farmID, id)
	if err != nil {
		return remote("check worker history", err)
	}
	if history {
		return invalidStatef("worker has logs, pay records or team history; deactivate instead")
	}
	if err := s.workerRepo.Delete(farmID, id); err != nil {
		return remote("delete worker", err)
	}
	return nil
}

func (s *RosterService) UploadPhoto(ctx context.Context, farmID, workerID uint, raw []byte) (*models.Worker, error) {
	worker, err := s.GetWorker(farmID, workerID)
	if err != nil {
		return nil, err
	}

	processed, err := storage.ProcessPhoto(raw)
	if err != nil {
		return nil, validationf("%v", err)
	}

	key := storage.PhotoKey(farmID, workerID)
	if err := s.store.Put(ctx, key, processed); err != nil {
		return nil, remote("store photo", err)
	}

	previous := worker.PhotoKey
	worker.PhotoKey = key
	if err := s.workerRepo.Update(worker); err != nil {
		return nil, remote("update worker", err)
	}

	if previous != "" {
		if err := s.store.Delete(ctx, previous); err != nil {
			s.log.Warn("failed to remove old photo", zap.String("key", previous), zap.Error(err))
		}
	}
	return worker, nil
}

// PhotoURL degrades to "" when the stored object is gone.
func (s *RosterService) PhotoURL(ctx context.Context, worker *models.Worker) string {
	if worker.PhotoKey == "" {
		return ""
	}
	if _, err := s.store.Get(ctx, worker.PhotoKey); err != nil {
		s.log.Warn("worker photo unavailable", zap.Uint("worker_id", worker.ID), zap.Error(err))
		return ""
	}
	return s.store.URL(worker.PhotoKey)
}

type ImportResult struct {
	Imported int
	Skipped  int
}

// ImportWorkers creates a worker per roster entry, skipping names already on the farm.
func (s *RosterService) ImportWorkers(farmID uint, entries []roster.Entry) (ImportResult, error) {
	var result ImportResult
	for _, entry := range entries {
		name := strings.TrimSpace(entry.FullName)
		if name == "" {
			result.Skipped++
			continue
		}
		existing, err := s.workerRepo.FindByName(farmID, name)
		if err != nil {
			return result, remote("find worker", err)
		}
		if existing != nil {
			s.log.Debug("worker already on roster", zap.String("full_name", name))
			result.Skipped++
			continue
		}
		if _, err := s.CreateWorker(farmID, WorkerInput{FullName: name, Phone: entry.Phone, Role: entry.Role}); err != nil {
			return result, err
		}
		result.Imported++
	}
	s.log.Info("roster imported", zap.Uint("farm_id", farmID), zap.Int("imported", result.Imported), zap.Int("skipped", result.Skipped))
	return result, nil
}

func (s *RosterService) CreateTeam(farmID uint, name string, leaderWorkerID *uint) (*models.Team, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, validationf("team name is required")
	}
	if leaderWorkerID != nil {
		leader, err := s.workerRepo.FindByID(farmID, *leaderWorkerID)
		if err != nil {
			return nil, remote("find worker", err)
		}
		if leader == nil {
			return nil, validationf("team leader must be a worker of this farm")
		}
	}
	team := &models.Team{FarmID: farmID, Name: name, LeaderWorkerID: leaderWorkerID}
	if err := s.teamRepo.Create(team); err != nil {
		return nil, remote("create team", err)
	}
	return s.GetTeam(farmID, team.ID)
}

func (s *RosterService) GetTeam(farmID, id uint) (*models.Team, error) {
	team, err := s.teamRepo.FindByID(farmID, id)
	if err != nil {
		return nil, remote("find team", err)
	}
	if team == nil {
		return nil, ErrTeamNotFound
	}
	return team, nil
}

func (s *RosterService) ListTeams(farmID uint) ([]models.Team, error) {
	return s.teamRepo.List(farmID)
}

func (s *RosterService) DeleteTeam(farmID, id uint) error {
	if _, err := s.GetTeam(farmID, id); err != nil {
		return err
	}
	refs, err := s.jobRepo.CountReferencing(farmID, "team_id", id)
	if err != nil {
		return remote("count jobs", err)
	}
	if refs > 0 {
		return invalidStatef("team is assigned to %d job(s)", refs)
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.teamRepo.DeleteInTx(tx, farmID, id); err != nil {
			return remote("delete team", err)
		}
		return nil
	})
}

// AddMember starts a membership; startDate defaults to today.
func (s *RosterService) AddMember(farmID, teamID, workerID uint, startDate *time.Time) (*models.TeamMembership, error) {
	if _, err := s.GetTeam(farmID, teamID); err != nil {
		return nil, err
	}
	worker, err := s.workerRepo.FindByID(farmID, workerID)
	if err != nil {
		return nil, remote("find worker", err)
	}
	if worker == nil {
		return nil, validationf("worker is not part of this farm")
	}

	active, err := s.teamRepo.HasActiveMembership(farmID, teamID, workerID)
	if err != nil {
		return nil, remote("check membership", err)
	}
	if active {
		return nil, validationf("worker already has an active membership in this team")
	}

	start := Day(s.now())
	if startDate != nil {
		start = Day(*startDate)
	}

	membership := &models.TeamMembership{
		FarmID:    farmID,
		TeamID:    teamID,
		WorkerID:  workerID,
		StartDate: start,
	}
	if err := s.teamRepo.AddMember(membership); err != nil {
		return nil, remote("add member", err)
	}
	membership.Worker = *worker
	return membership, nil
}

func (s *RosterService) EndMembership(farmID, membershipID uint, endDate time.Time) (*models.TeamMembership, error) {
	membership, err := s.teamRepo.FindMembership(farmID, membershipID)
	if err != nil {
		return nil, remote("find membership", err)
	}
	if membership == nil {
		return nil, ErrMembershipNotFound
	}
	if membership.EndDate != nil {
		return nil, invalidStatef("membership already ended")
	}
	end := Day(endDate)
	if end.Before(Day(membership.StartDate)) {
		return nil, validationf("end_date must not be before start_date")
	}
	if err := s.teamRepo.EndMembership(membership, end); err != nil {
		return nil, remote("end membership", err)
	}
	membership.EndDate = &end
	return membership, nil
}

func (s *RosterService) ListMembers(farmID, teamID uint) ([]models.TeamMembership, error) {
	if _, err := s.GetTeam(farmID, teamID); err != nil {
		return nil, err
	}
	return s.teamRepo.ListMembers(farmID, teamID)
}

func (s *RosterService) ActiveMembers(farmID, teamID uint) ([]models.Worker, error) {
	if _, err := s.GetTeam(farmID, teamID); err != nil {
		return nil, err
	}
	return s.teamRepo.ActiveMembers(farmID, teamID)
}
