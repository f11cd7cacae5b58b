package services

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/h4ks-com/farmhand/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

type stubQueries struct {
	failCount bool
	failDue   bool
	before    time.Time
	from, to  time.Time
}

func (s *stubQueries) CountSubmittedLogs(ctx context.Context, farmID uint) (int64, error) {
	if s.failCount {
		return 0, errors.New("count unavailable")
	}
	return 3, nil
}

func (s *stubQueries) ApprovedAcresBetween(ctx context.Context, farmID uint, from, to time.Time) (float64, error) {
	s.from, s.to = from, to
	return 12.5, nil
}

func (s *stubQueries) OpenJobsDueBefore(ctx context.Context, farmID uint, before time.Time, limit int) ([]models.Job, error) {
	s.before = before
	return []models.Job{{JobType: "weeding"}}, nil
}

func (s *stubQueries) OpenJobsDueBetween(ctx context.Context, farmID uint, from, to time.Time, limit int) ([]models.Job, error) {
	if s.failDue {
		return nil, errors.New("due soon unavailable")
	}
	return []models.Job{{JobType: "planting"}, {JobType: "harvest"}}, nil
}

func TestReportService_BranchFailureIsIsolated(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	clock := func() time.Time { return time.Date(2024, 3, 10, 15, 30, 0, 0, time.UTC) }
	queries := &stubQueries{failCount: true, failDue: true}
	svc := NewReportService(queries, zap.NewNop(), clock)

	dash, err := svc.Dashboard(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, int64(0), dash.PendingApprovals)
	assert.Equal(t, 12.5, dash.AcresLast7Days)
	assert.Len(t, dash.Overdue, 1)
	assert.Empty(t, dash.DueSoon)
	assert.Equal(t, "count unavailable", dash.Errors[BranchPendingApprovals])
	assert.Equal(t, "due soon unavailable", dash.Errors[BranchDueSoon])
	assert.NotContains(t, dash.Errors, BranchOverdue)

	assert.Equal(t, "2024-03-03", queries.from.Format(DateLayout))
	assert.Equal(t, "2024-03-10", queries.to.Format(DateLayout))
	assert.Equal(t, "2024-03-10", queries.before.Format(DateLayout))
}

func TestReportService_AllBranchesSucceed(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	svc := NewReportService(&stubQueries{}, zap.NewNop(), nil)
	dash, err := svc.Dashboard(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(3), dash.PendingApprovals)
	assert.Len(t, dash.DueSoon, 2)
	assert.Nil(t, dash.Errors)
}

func TestReportService_CancelledContext(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	svc := NewReportService(&stubQueries{}, zap.NewNop(), nil)
	_, err := svc.Dashboard(ctx, 1)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestReportService_DashboardQueries(t *testing.T) {
	env := setupTestEnv(t)
	fx := env.newJob(t, "planting", 10)

	env.approvedLog(t, fx.job.ID, fx.worker.ID, "2024-03-04", 2)
	env.approvedLog(t, fx.job.ID, fx.worker.ID, "2024-03-01", 4)
	_, err := env.logs.Create(env.farmID, fx.job.ID, JobLogInput{LogDate: day("2024-03-09"), AcresDone: 1, WorkerID: fx.worker.ID}, "sup")
	require.NoError(t, err)

	late, err := env.jobs.CreateJob(env.farmID, JobInput{
		PlanID: fx.plan.ID, TeamID: fx.team.ID, PlotID: fx.plot.ID,
		JobType: "weeding", AllottedAcres: 2,
		StartDate: day("2024-03-01"), DueDate: day("2024-03-09"),
	})
	require.NoError(t, err)
	done, err := env.jobs.CreateJob(env.farmID, JobInput{
		PlanID: fx.plan.ID, TeamID: fx.team.ID, PlotID: fx.plot.ID,
		JobType: "weeding", AllottedAcres: 2,
		StartDate: day("2024-03-01"), DueDate: day("2024-03-08"),
	})
	require.NoError(t, err)
	_, err = env.jobs.SetStatus(env.farmID, done.ID, models.JobStatusDone)
	require.NoError(t, err)

	dash, err := env.reports.Dashboard(context.Background(), env.farmID)
	require.NoError(t, err)
	assert.Nil(t, dash.Errors)
	assert.Equal(t, int64(1), dash.PendingApprovals)
	assert.Equal(t, 2.0, dash.AcresLast7Days)
	require.Len(t, dash.Overdue, 1)
	assert.Equal(t, late.ID, dash.Overdue[0].ID)
	require.Len(t, dash.DueSoon, 1)
	assert.Equal(t, fx.job.ID, dash.DueSoon[0].ID)
}

func TestReportService_DashboardListsCappedAndOrdered(t *testing.T) {
	env := setupTestEnv(t)
	fx := env.newJob(t, "planting", 10)

	create := func(due time.Time) {
		t.Helper()
		_, err := env.jobs.CreateJob(env.farmID, JobInput{
			PlanID: fx.plan.ID, TeamID: fx.team.ID, PlotID: fx.plot.ID,
			JobType: "weeding", AllottedAcres: 1,
			StartDate: day("2024-02-01"), DueDate: due,
		})
		require.NoError(t, err)
	}

	// shuffled so insertion order never matches due_date order
	var wantOverdue []string
	for _, offset := range []int{5, 0, 9, 3, 7, 1, 8, 2, 6, 4} {
		due := day("2024-02-19").AddDate(0, 0, offset)
		create(due)
		wantOverdue = append(wantOverdue, due.Format(DateLayout))
	}

	wantDueSoon := []string{fx.job.DueDate.Format(DateLayout)}
	for _, offset := range []int{7, 2, 0, 6, 3, 1, 4, 7, 2} {
		due := day("2024-03-10").AddDate(0, 0, offset)
		create(due)
		wantDueSoon = append(wantDueSoon, due.Format(DateLayout))
	}
	create(day("2024-03-18"))

	slices.Sort(wantOverdue)
	slices.Sort(wantDueSoon)

	dash, err := env.reports.Dashboard(context.Background(), env.farmID)
	require.NoError(t, err)
	assert.Nil(t, dash.Errors)

	dueDates := func(jobs []models.Job) []string {
		out := make([]string, len(jobs))
		for i, job := range jobs {
			out[i] = job.DueDate.Format(DateLayout)
		}
		return out
	}

	assert.Equal(t, wantOverdue[:8], dueDates(dash.Overdue))
	assert.Equal(t, wantDueSoon[:8], dueDates(dash.DueSoon))
}
