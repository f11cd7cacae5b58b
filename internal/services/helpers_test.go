package services

import (
	"testing"
	"time"

	"github.com/h4ks-com/farmhand/internal/database"
	"github.com/h4ks-com/farmhand/internal/models"
	"github.com/h4ks-com/farmhand/internal/repository"
	"github.com/h4ks-com/farmhand/internal/storage"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

type testEnv struct {
	db       *gorm.DB
	log      *zap.Logger
	farmID   uint
	users    *UserService
	tokens   *TokenService
	farms    *FarmService
	roster   *RosterService
	catalog  *CatalogService
	plans    *PlanService
	jobs     *JobService
	logs     *JobLogService
	payroll  *PayrollService
	exports  *ExportService
	reports  *ReportService
	store    *storage.LocalStore
	userRepo *repository.UserRepository
}

func day(s string) time.Time {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := database.Connect(":memory:")
	require.NoError(t, err)

	log := zaptest.NewLogger(t)
	require.NoError(t, database.Migrate(db, log))

	userRepo := repository.NewUserRepository(db)
	tokenRepo := repository.NewTokenRepository(db)
	farmRepo := repository.NewFarmRepository(db)
	plotRepo := repository.NewPlotRepository(db)
	workerRepo := repository.NewWorkerRepository(db)
	teamRepo := repository.NewTeamRepository(db)
	catalogRepo := repository.NewCatalogRepository(db)
	planRepo := repository.NewPlanRepository(db)
	jobRepo := repository.NewJobRepository(db)
	logRepo := repository.NewJobLogRepository(db)
	payrollRepo := repository.NewPayrollRepository(db)
	reportRepo := repository.NewReportRepository(db)

	store, err := storage.NewLocalStore(t.TempDir(), "http://farm.test")
	require.NoError(t, err)

	env := &testEnv{db: db, log: log, store: store, userRepo: userRepo}
	env.tokens = NewTokenService(tokenRepo, userRepo, "test-jwt-secret")
	env.users = NewUserService(userRepo, env.tokens, time.Hour, log)
	env.farms = NewFarmService(farmRepo, userRepo, db, log)
	env.roster = NewRosterService(plotRepo, workerRepo, teamRepo, jobRepo, store, db, log)
	env.catalog = NewCatalogService(catalogRepo, db, log)
	env.plans = NewPlanService(planRepo, jobRepo, logRepo, db, log)
	env.jobs = NewJobService(jobRepo, logRepo, planRepo, teamRepo, plotRepo, db, log)
	env.logs = NewJobLogService(logRepo, jobRepo, workerRepo, db, log)
	env.payroll = NewPayrollService(payrollRepo, logRepo, catalogRepo, workerRepo, db, log)
	env.exports = NewExportService(env.payroll, farmRepo, "test-signing-key-32-characters!!")
	env.reports = NewReportService(reportRepo, log, func() time.Time { return day("2024-03-10") })

	_, err = env.users.CreateUser("owner", "owner@example.com", "correct-horse")
	require.NoError(t, err)
	farm, err := env.farms.CreateFarm("Green Acres", "Oyo", "owner")
	require.NoError(t, err)
	env.farmID = farm.ID

	return env
}

type jobFixture struct {
	worker *models.Worker
	team   *models.Team
	plot   *models.Plot
	plan   *models.Plan
	job    *models.Job
}

func (e *testEnv) newJob(t *testing.T, jobType string, allotted float64) jobFixture {
	t.Helper()

	worker, err := e.roster.CreateWorker(e.farmID, WorkerInput{FullName: "Ada Obi"})
	require.NoError(t, err)
	team, err := e.roster.CreateTeam(e.farmID, "North crew", nil)
	require.NoError(t, err)
	plot, err := e.roster.CreatePlot(e.farmID, PlotInput{Name: "Plot A", SizeAcres: 12})
	require.NoError(t, err)
	plan, err := e.plans.CreatePlan(e.farmID, PlanInput{
		Title:     "March planting",
		Frequency: models.FrequencyWeekly,
		DateStart: day("2024-03-01"),
		DateEnd:   day("2024-03-31"),
	})
	require.NoError(t, err)
	job, err := e.jobs.CreateJob(e.farmID, JobInput{
		PlanID:        plan.ID,
		TeamID:        team.ID,
		PlotID:        plot.ID,
		JobType:       jobType,
		AllottedAcres: allotted,
		StartDate:     day("2024-03-01"),
		DueDate:       day("2024-03-15"),
	})
	require.NoError(t, err)

	return jobFixture{worker: worker, team: team, plot: plot, plan: plan, job: job}
}

func (e *testEnv) approvedLog(t *testing.T, jobID, workerID uint, date string, acres float64) *models.JobLog {
	t.Helper()

	log, err := e.logs.Create(e.farmID, jobID, JobLogInput{LogDate: day(date), AcresDone: acres, WorkerID: workerID}, "supervisor")
	require.NoError(t, err)
	log, err = e.logs.Approve(e.farmID, log.ID, "owner")
	require.NoError(t, err)
	return log
}

func (e *testEnv) rateCard(t *testing.T, rates map[string]int64) *models.RateCard {
	t.Helper()

	card, err := e.catalog.CreateRateCard(e.farmID, RateCardInput{Name: "2024 rates", Activate: true})
	require.NoError(t, err)

	amounts := make(map[string]decimal.Decimal, len(rates))
	for jobType, amount := range rates {
		amounts[jobType] = decimal.NewFromInt(amount)
	}
	_, err = e.catalog.SaveRates(e.farmID, card.ID, amounts)
	require.NoError(t, err)
	return card
}

func (e *testEnv) period(t *testing.T, start, end string) *models.PayPeriod {
	t.Helper()

	period, err := e.payroll.CreatePeriod(e.farmID, PeriodInput{
		PeriodType: models.FrequencyWeekly,
		StartDate:  day(start),
		EndDate:    day(end),
	})
	require.NoError(t, err)
	return period
}
