package services

import (
	"context"
	"sync"
	"time"

	"github.com/h4ks-com/farmhand/internal/models"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	dashboardListLimit = 8
	dueSoonDays        = 7
	recentAcresDays    = 7
)

const (
	BranchPendingApprovals = "pending_approvals"
	BranchAcresLast7Days   = "acres_last_7_days"
	BranchOverdue          = "overdue"
	BranchDueSoon          = "due_soon"
)

type DashboardQueries interface {
	CountSubmittedLogs(ctx context.Context, farmID uint) (int64, error)
	ApprovedAcresBetween(ctx context.Context, farmID uint, from, to time.Time) (float64, error)
	OpenJobsDueBefore(ctx context.Context, farmID uint, before time.Time, limit int) ([]models.Job, error)
	OpenJobsDueBetween(ctx context.Context, farmID uint, from, to time.Time, limit int) ([]models.Job, error)
}

type Dashboard struct {
	PendingApprovals int64             `json:"pending_approvals"`
	AcresLast7Days   float64           `json:"acres_last_7_days"`
	Overdue          []models.Job      `json:"overdue"`
	DueSoon          []models.Job      `json:"due_soon"`
	Errors           map[string]string `json:"errors,omitempty"`
}

type ReportService struct {
	queries DashboardQueries
	log     *zap.Logger
	now     func() time.Time
}

func NewReportService(queries DashboardQueries, log *zap.Logger, now func() time.Time) *ReportService {
	if now == nil {
		now = time.Now
	}
	return &ReportService{queries: queries, log: log, now: now}
}

// Dashboard runs the four KPI queries concurrently. A failing query leaves its field
// empty and is reported in Errors; the others still complete.
func (s *ReportService) Dashboard(ctx context.Context, farmID uint) (*Dashboard, error) {
	today := Day(s.now())
	dash := &Dashboard{
		Overdue: []models.Job{},
		DueSoon: []models.Job{},
		Errors:  map[string]string{},
	}

	var mu sync.Mutex
	fail := func(branch string, err error) {
		s.log.Warn("dashboard query failed", zap.String("branch", branch), zap.Uint("farm_id", farmID), zap.Error(err))
		mu.Lock()
		dash.Errors[branch] = err.Error()
		mu.Unlock()
	}

	eg, egCtx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		count, err := s.queries.CountSubmittedLogs(egCtx, farmID)
		if err != nil {
			fail(BranchPendingApprovals, err)
			return nil
		}
		mu.Lock()
		dash.PendingApprovals = count
		mu.Unlock()
		return nil
	})

	eg.Go(func() error {
		acres, err := s.queries.ApprovedAcresBetween(egCtx, farmID, today.AddDate(0, 0, -recentAcresDays), today)
		if err != nil {
			fail(BranchAcresLast7Days, err)
			return nil
		}
		mu.Lock()
		dash.AcresLast7Days = acres
		mu.Unlock()
		return nil
	})

	eg.Go(func() error {
		jobs, err := s.queries.OpenJobsDueBefore(egCtx, farmID, today, dashboardListLimit)
		if err != nil {
			fail(BranchOverdue, err)
			return nil
		}
		mu.Lock()
		dash.Overdue = jobs
		mu.Unlock()
		return nil
	})

	eg.Go(func() error {
		jobs, err := s.queries.OpenJobsDueBetween(egCtx, farmID, today, today.AddDate(0, 0, dueSoonDays), dashboardListLimit)
		if err != nil {
			fail(BranchDueSoon, err)
			return nil
		}
		mu.Lock()
		dash.DueSoon = jobs
		mu.Unlock()
		return nil
	})

	_ = eg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(dash.Errors) == 0 {
		dash.Errors = nil
	}
	return dash, nil
}
