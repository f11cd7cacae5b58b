package services

import (
	"context"
	"errors"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/h4ks-com/farmhand/internal/models"
	"github.com/h4ks-com/farmhand/internal/repository"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrPayPeriodNotFound  = notFound("pay period")
	ErrAdjustmentNotFound = notFound("adjustment")
)

type PayrollService struct {
	payrollRepo *repository.PayrollRepository
	logRepo     *repository.JobLogRepository
	catalogRepo *repository.CatalogRepository
	workerRepo  *repository.WorkerRepository
	db          *gorm.DB
	log         *zap.Logger
}

func NewPayrollService(
	payrollRepo *repository.PayrollRepository,
	logRepo *repository.JobLogRepository,
	catalogRepo *repository.CatalogRepository,
	workerRepo *repository.WorkerRepository,
	db *gorm.DB,
	log *zap.Logger,
) *PayrollService {
	return &PayrollService{
		payrollRepo: payrollRepo,
		logRepo:     logRepo,
		catalogRepo: catalogRepo,
		workerRepo:  workerRepo,
		db:          db,
		log:         log,
	}
}

type RunResult struct {
	Period   models.PayPeriod
	RateCard models.RateCard
	Lines    []models.PayrollLine
	Removed  int64
}

type PayrollTotals struct {
	Workers    int             `json:"workers"`
	Gross      decimal.Decimal `json:"gross"`
	Bonuses    decimal.Decimal `json:"bonuses"`
	Deductions decimal.Decimal `json:"deductions"`
	Net        decimal.Decimal `json:"net"`
}

// Run recomputes every payroll line of the period from approved logs, the rate card and
// the period's adjustments. Reruns with unchanged inputs produce identical lines.
func (s *PayrollService) Run(ctx context.Context, farmID, periodID, rateCardID uint) (*RunResult, error) {
	if periodID == 0 {
		return nil, preconditionf("select a pay period")
	}
	if rateCardID == 0 {
		return nil, preconditionf("select a rate card")
	}

	started := time.Now()
	result := &RunResult{}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		period, err := s.payrollRepo.FindPeriodForUpdate(tx, farmID, periodID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPayPeriodNotFound
			}
			return remote("lock pay period", err)
		}
		if period.Status == models.PeriodStatusClosed {
			return invalidStatef("pay period is closed")
		}

		card, err := s.catalogRepo.FindRateCardInTx(tx, farmID, rateCardID)
		if err != nil {
			return remote("find rate card", err)
		}
		if card == nil {
			return ErrRateCardNotFound
		}

		logs, err := s.logRepo.ApprovedInRangeInTx(tx, farmID, period)
		if err != nil {
			return remote("load approved logs", err)
		}

		rates, err := s.catalogRepo.CropAgnosticRatesInTx(tx, card.ID)
		if err != nil {
			return remote("load rates", err)
		}
		if missing := missingRates(logs, rates); len(missing) > 0 {
			return preconditionf("rate card %q has no per-acre rate for: %s", card.Name, strings.Join(missing, ", "))
		}

		adjustments, err := s.payrollRepo.AdjustmentsForPeriodInTx(tx, farmID, period.ID)
		if err != nil {
			return remote("load adjustments", err)
		}

		lines := buildLines(farmID, period.ID, card.ID, logs, rates, adjustments)
		workerIDs := make([]uint, 0, len(lines))
		for i := range lines {
			if err := s.payrollRepo.UpsertLineInTx(tx, &lines[i]); err != nil {
				return remote("save payroll line", err)
			}
			workerIDs = append(workerIDs, lines[i].WorkerID)
		}

		removed, err := s.payrollRepo.DeleteStaleLinesInTx(tx, farmID, period.ID, workerIDs)
		if err != nil {
			return remote("remove stale payroll lines", err)
		}

		result.Period = *period
		result.RateCard = *card
		result.Removed = removed
		return nil
	})
	if err != nil {
		s.log.Warn("payroll run failed", zap.Uint("farm_id", farmID), zap.Uint("pay_period_id", periodID), zap.Error(err))
		return nil, err
	}

	lines, err := s.payrollRepo.Lines(farmID, periodID)
	if err != nil {
		return nil, remote("load payroll lines", err)
	}
	result.Lines = lines

	s.log.Info("payroll run completed",
		zap.Uint("farm_id", farmID),
		zap.Uint("pay_period_id", periodID),
		zap.Uint("rate_card_id", rateCardID),
		zap.Int("lines", len(lines)),
		zap.Int64("removed", result.Removed),
		zap.Duration("took", time.Since(started)),
	)
	return result, nil
}

func missingRates(logs []models.JobLog, rates map[string]models.Rate) []string {
	seen := make(map[string]bool)
	var missing []string
	for _, log := range logs {
		jobType := log.Job.JobType
		if _, ok := rates[jobType]; ok || seen[jobType] {
			continue
		}
		seen[jobType] = true
		missing = append(missing, jobType)
	}
	sort.Strings(missing)
	return missing
}

// buildLines expects logs ordered by worker, log date and id. Workers with adjustments
// but no approved logs get a zero-gross line so the adjustment is still carried.
func buildLines(farmID, periodID, cardID uint, logs []models.JobLog, rates map[string]models.Rate, adjustments []models.Adjustment) []models.PayrollLine {
	logsByWorker := make(map[uint][]models.JobLog)
	adjByWorker := make(map[uint][]models.Adjustment)
	var workerIDs []uint
	for _, log := range logs {
		if _, ok := logsByWorker[log.PerformedByWorkerID]; !ok {
			workerIDs = append(workerIDs, log.PerformedByWorkerID)
		}
		logsByWorker[log.PerformedByWorkerID] = append(logsByWorker[log.PerformedByWorkerID], log)
	}
	for _, adj := range adjustments {
		if _, ok := logsByWorker[adj.WorkerID]; !ok {
			if _, seen := adjByWorker[adj.WorkerID]; !seen {
				workerIDs = append(workerIDs, adj.WorkerID)
			}
		}
		adjByWorker[adj.WorkerID] = append(adjByWorker[adj.WorkerID], adj)
	}
	slices.Sort(workerIDs)

	lines := make([]models.PayrollLine, 0, len(workerIDs))
	for _, workerID := range workerIDs {
		line := models.PayrollLine{
			FarmID:      farmID,
			PayPeriodID: periodID,
			WorkerID:    workerID,
			RateCardID:  cardID,
			GrossPay:    decimal.Zero,
			Bonuses:     decimal.Zero,
			Deductions:  decimal.Zero,
		}
		breakdown := models.PayrollBreakdown{
			PieceItems:  []models.PieceItem{},
			Adjustments: []models.AdjustmentItem{},
		}

		for _, log := range logsByWorker[workerID] {
			rate := rates[log.Job.JobType].RateAmount
			amount := decimal.NewFromFloat(log.AcresDone).Mul(rate).Round(2)
			line.GrossPay = line.GrossPay.Add(amount)

			var crop *string
			if log.Job.Crop != "" {
				c := log.Job.Crop
				crop = &c
			}
			breakdown.PieceItems = append(breakdown.PieceItems, models.PieceItem{
				JobLogID:  log.ID,
				LogDate:   log.LogDate.Format(DateLayout),
				JobType:   log.Job.JobType,
				Crop:      crop,
				AcresDone: log.AcresDone,
				Rate:      rate,
				Amount:    amount,
			})
		}

		for _, adj := range adjByWorker[workerID] {
			amount := adj.Amount.Round(2)
			switch adj.AdjType {
			case models.AdjustmentBonus:
				line.Bonuses = line.Bonuses.Add(amount)
			case models.AdjustmentDeduction, models.AdjustmentAdvance:
				line.Deductions = line.Deductions.Add(amount)
			}
			breakdown.Adjustments = append(breakdown.Adjustments, models.AdjustmentItem{
				AdjustmentID: adj.ID,
				AdjType:      adj.AdjType,
				Amount:       amount,
				Reason:       adj.Reason,
			})
		}

		line.NetPay = line.GrossPay.Add(line.Bonuses).Sub(line.Deductions)
		line.Breakdown = datatypes.NewJSONType(breakdown)
		lines = append(lines, line)
	}

	return lines
}

func (s *PayrollService) Lines(farmID, periodID uint) ([]models.PayrollLine, error) {
	if _, err := s.GetPeriod(farmID, periodID); err != nil {
		return nil, err
	}
	lines, err := s.payrollRepo.Lines(farmID, periodID)
	if err != nil {
		return nil, remote("load payroll lines", err)
	}
	return lines, nil
}

func Totals(lines []models.PayrollLine) PayrollTotals {
	totals := PayrollTotals{
		Workers:    len(lines),
		Gross:      decimal.Zero,
		Bonuses:    decimal.Zero,
		Deductions: decimal.Zero,
		Net:        decimal.Zero,
	}
	for _, line := range lines {
		totals.Gross = totals.Gross.Add(line.GrossPay)
		totals.Bonuses = totals.Bonuses.Add(line.Bonuses)
		totals.Deductions = totals.Deductions.Add(line.Deductions)
		totals.Net = totals.Net.Add(line.NetPay)
	}
	return totals
}

type PeriodInput struct {
	PeriodType string
	StartDate  time.Time
	EndDate    time.Time
}

func (s *PayrollService) CreatePeriod(farmID uint, in PeriodInput) (*models.PayPeriod, error) {
	switch in.PeriodType {
	case models.FrequencyWeekly, models.FrequencyBiweekly, models.FrequencyMonthly:
	default:
		return nil, validationf("period_type must be one of weekly, biweekly, monthly")
	}
	if in.StartDate.IsZero() || in.EndDate.IsZero() {
		return nil, validationf("start_date and end_date are required")
	}
	if Day(in.EndDate).Before(Day(in.StartDate)) {
		return nil, validationf("end_date must not be before start_date")
	}

	period := &models.PayPeriod{
		FarmID:     farmID,
		PeriodType: in.PeriodType,
		StartDate:  Day(in.StartDate),
		EndDate:    Day(in.EndDate),
		Status:     models.PeriodStatusOpen,
	}
	if err := s.payrollRepo.CreatePeriod(period); err != nil {
		return nil, remote("create pay period", err)
	}
	return period, nil
}

func (s *PayrollService) GetPeriod(farmID, id uint) (*models.PayPeriod, error) {
	period, err := s.payrollRepo.FindPeriod(farmID, id)
	if err != nil {
		return nil, remote("find pay period", err)
	}
	if period == nil {
		return nil, ErrPayPeriodNotFound
	}
	return period, nil
}

func (s *PayrollService) ListPeriods(farmID uint) ([]models.PayPeriod, error) {
	return s.payrollRepo.ListPeriods(farmID)
}

// ClosePeriod freezes the period's lines and adjustments.
func (s *PayrollService) ClosePeriod(farmID, id uint) (*models.PayPeriod, error) {
	var closed *models.PayPeriod
	err := s.db.Transaction(func(tx *gorm.DB) error {
		period, err := s.payrollRepo.FindPeriodForUpdate(tx, farmID, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPayPeriodNotFound
			}
			return remote("lock pay period", err)
		}
		if period.Status == models.PeriodStatusClosed {
			return invalidStatef("pay period is already closed")
		}
		period.Status = models.PeriodStatusClosed
		closed = period
		if err := s.payrollRepo.UpdatePeriodInTx(tx, period); err != nil {
			return remote("close pay period", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("pay period closed", zap.Uint("farm_id", farmID), zap.Uint("pay_period_id", id))
	return closed, nil
}

type AdjustmentInput struct {
	WorkerID    uint
	PayPeriodID *uint
	AdjType     string
	Amount      decimal.Decimal
	Reason      string
}

func validAdjustmentType(adjType string) bool {
	switch adjType {
	case models.AdjustmentDeduction, models.AdjustmentBonus, models.AdjustmentAdvance:
		return true
	}
	return false
}

func (s *PayrollService) openPeriod(farmID, id uint) error {
	period, err := s.GetPeriod(farmID, id)
	if err != nil {
		return err
	}
	if period.Status != models.PeriodStatusOpen {
		return invalidStatef("pay period is closed")
	}
	return nil
}

func (s *PayrollService) AddAdjustment(farmID uint, in AdjustmentInput) (*models.Adjustment, error) {
	if !validAdjustmentType(in.AdjType) {
		return nil, validationf("adj_type must be one of deduction, bonus, advance")
	}
	if !in.Amount.IsPositive() {
		return nil, validationf("amount must be greater than 0")
	}

	worker, err := s.workerRepo.FindByID(farmID, in.WorkerID)
	if err != nil {
		return nil, remote("find worker", err)
	}
	if worker == nil {
		return nil, validationf("worker is not part of this farm")
	}
	if !worker.Active {
		return nil, validationf("worker %q is inactive", worker.FullName)
	}

	if in.PayPeriodID != nil {
		if err := s.openPeriod(farmID, *in.PayPeriodID); err != nil {
			return nil, err
		}
	}

	adjustment := &models.Adjustment{
		FarmID:      farmID,
		WorkerID:    in.WorkerID,
		PayPeriodID: in.PayPeriodID,
		AdjType:     in.AdjType,
		Amount:      in.Amount.Round(2),
		Reason:      strings.TrimSpace(in.Reason),
	}
	if err := s.payrollRepo.CreateAdjustment(adjustment); err != nil {
		return nil, remote("create adjustment", err)
	}
	return s.getAdjustment(farmID, adjustment.ID)
}

func (s *PayrollService) getAdjustment(farmID, id uint) (*models.Adjustment, error) {
	adjustment, err := s.payrollRepo.FindAdjustment(farmID, id)
	if err != nil {
		return nil, remote("find adjustment", err)
	}
	if adjustment == nil {
		return nil, ErrAdjustmentNotFound
	}
	return adjustment, nil
}

func (s *PayrollService) ListAdjustments(farmID uint, periodID *uint) ([]models.Adjustment, error) {
	return s.payrollRepo.ListAdjustments(farmID, periodID)
}

// AssignAdjustment attaches a floating adjustment to an open period.
func (s *PayrollService) AssignAdjustment(farmID, id, periodID uint) (*models.Adjustment, error) {
	adjustment, err := s.getAdjustment(farmID, id)
	if err != nil {
		return nil, err
	}
	if adjustment.PayPeriodID != nil {
		return nil, invalidStatef("adjustment already belongs to pay period %d", *adjustment.PayPeriodID)
	}
	if err := s.openPeriod(farmID, periodID); err != nil {
		return nil, err
	}
	adjustment.PayPeriodID = &periodID
	if err := s.payrollRepo.UpdateAdjustment(adjustment); err != nil {
		return nil, remote("update adjustment", err)
	}
	return adjustment, nil
}

func (s *PayrollService) DeleteAdjustment(farmID, id uint) error {
	adjustment, err := s.getAdjustment(farmID, id)
	if err != nil {
		return err
	}
	if adjustment.PayPeriodID != nil {
		if err := s.openPeriod(farmID, *adjustment.PayPeriodID); err != nil {
			return err
		}
	}
	if err := s.payrollRepo.DeleteAdjustment(farmID, id); err != nil {
		return remote("delete adjustment", err)
	}
	return nil
}
