package services

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/h4ks-com/farmhand/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

type linePayload struct {
	WorkerID   uint
	Gross      string
	Bonuses    string
	Deductions string
	Net        string
	Breakdown  string
}

func payloads(t *testing.T, lines []models.PayrollLine) []linePayload {
	t.Helper()
	out := make([]linePayload, len(lines))
	for i, line := range lines {
		breakdown, err := json.Marshal(line.Breakdown.Data())
		require.NoError(t, err)
		out[i] = linePayload{
			WorkerID:   line.WorkerID,
			Gross:      line.GrossPay.String(),
			Bonuses:    line.Bonuses.String(),
			Deductions: line.Deductions.String(),
			Net:        line.NetPay.String(),
			Breakdown:  string(breakdown),
		}
	}
	return out
}

func TestPayrollService_SingleApprovedLog(t *testing.T) {
	env := setupTestEnv(t)
	fx := env.newJob(t, "planting", 10)
	log := env.approvedLog(t, fx.job.ID, fx.worker.ID, "2024-03-04", 2.0)
	card := env.rateCard(t, map[string]int64{"planting": 30000})
	period := env.period(t, "2024-03-01", "2024-03-07")

	result, err := env.payroll.Run(context.Background(), env.farmID, period.ID, card.ID)
	require.NoError(t, err)
	require.Len(t, result.Lines, 1)

	line := result.Lines[0]
	assert.Equal(t, fx.worker.ID, line.WorkerID)
	assert.Equal(t, "60000.00", line.GrossPay.StringFixed(2))
	assert.Equal(t, "0.00", line.Deductions.StringFixed(2))
	assert.Equal(t, "60000.00", line.NetPay.StringFixed(2))
	assert.Equal(t, card.ID, line.RateCardID)

	breakdown := line.Breakdown.Data()
	require.Len(t, breakdown.PieceItems, 1)
	item := breakdown.PieceItems[0]
	assert.Equal(t, log.ID, item.JobLogID)
	assert.Equal(t, "2024-03-04", item.LogDate)
	assert.Equal(t, "planting", item.JobType)
	assert.Nil(t, item.Crop)
	assert.Equal(t, 2.0, item.AcresDone)
	assert.True(t, item.Rate.Equal(decimal.NewFromInt(30000)))
	assert.True(t, item.Amount.Equal(decimal.NewFromInt(60000)))
	assert.Empty(t, breakdown.Adjustments)
}

func TestPayrollService_DeductionReducesNet(t *testing.T) {
	env := setupTestEnv(t)
	fx := env.newJob(t, "planting", 10)
	env.approvedLog(t, fx.job.ID, fx.worker.ID, "2024-03-04", 2.0)
	card := env.rateCard(t, map[string]int64{"planting": 30000})
	period := env.period(t, "2024-03-01", "2024-03-07")

	adj, err := env.payroll.AddAdjustment(env.farmID, AdjustmentInput{
		WorkerID:    fx.worker.ID,
		PayPeriodID: &period.ID,
		AdjType:     models.AdjustmentDeduction,
		Amount:      decimal.NewFromInt(5000),
		Reason:      "tool loss",
	})
	require.NoError(t, err)

	result, err := env.payroll.Run(context.Background(), env.farmID, period.ID, card.ID)
	require.NoError(t, err)
	require.Len(t, result.Lines, 1)

	line := result.Lines[0]
	assert.Equal(t, "60000.00", line.GrossPay.StringFixed(2))
	assert.Equal(t, "5000.00", line.Deductions.StringFixed(2))
	assert.Equal(t, "55000.00", line.NetPay.StringFixed(2))

	adjustments := line.Breakdown.Data().Adjustments
	require.Len(t, adjustments, 1)
	assert.Equal(t, adj.ID, adjustments[0].AdjustmentID)
	assert.Equal(t, "tool loss", adjustments[0].Reason)
}

func TestPayrollService_BonusesAdvancesAndFloating(t *testing.T) {
	env := setupTestEnv(t)
	fx := env.newJob(t, "weeding", 10)
	env.approvedLog(t, fx.job.ID, fx.worker.ID, "2024-03-04", 1.5)
	card := env.rateCard(t, map[string]int64{"weeding": 20000})
	period := env.period(t, "2024-03-01", "2024-03-07")

	add := func(adjType string, amount int64, periodID *uint) *models.Adjustment {
		adj, err := env.payroll.AddAdjustment(env.farmID, AdjustmentInput{WorkerID: fx.worker.ID, PayPeriodID: periodID, AdjType: adjType, Amount: decimal.NewFromInt(amount)})
		require.NoError(t, err)
		return adj
	}
	add(models.AdjustmentBonus, 2000, &period.ID)
	add(models.AdjustmentAdvance, 1000, &period.ID)
	floating := add(models.AdjustmentDeduction, 700, nil)

	result, err := env.payroll.Run(context.Background(), env.farmID, period.ID, card.ID)
	require.NoError(t, err)
	line := result.Lines[0]
	assert.Equal(t, "30000.00", line.GrossPay.StringFixed(2))
	assert.Equal(t, "2000.00", line.Bonuses.StringFixed(2))
	assert.Equal(t, "1000.00", line.Deductions.StringFixed(2))
	assert.Equal(t, "31000.00", line.NetPay.StringFixed(2))

	_, err = env.payroll.AssignAdjustment(env.farmID, floating.ID, period.ID)
	require.NoError(t, err)
	_, err = env.payroll.AssignAdjustment(env.farmID, floating.ID, period.ID)
	assert.ErrorIs(t, err, ErrInvalidState)

	result, err = env.payroll.Run(context.Background(), env.farmID, period.ID, card.ID)
	require.NoError(t, err)
	assert.Equal(t, "1700.00", result.Lines[0].Deductions.StringFixed(2))
	assert.Equal(t, "30300.00", result.Lines[0].NetPay.StringFixed(2))
}

func TestPayrollService_RerunIsIdempotent(t *testing.T) {
	env := setupTestEnv(t)
	fx := env.newJob(t, "planting", 10)
	second, err := env.roster.CreateWorker(env.farmID, WorkerInput{FullName: "Musa Bello"})
	require.NoError(t, err)
	env.approvedLog(t, fx.job.ID, fx.worker.ID, "2024-03-04", 2.0)
	env.approvedLog(t, fx.job.ID, fx.worker.ID, "2024-03-05", 0.75)
	env.approvedLog(t, fx.job.ID, second.ID, "2024-03-05", 1.25)
	card := env.rateCard(t, map[string]int64{"planting": 30000})
	period := env.period(t, "2024-03-01", "2024-03-07")
	_, err = env.payroll.AddAdjustment(env.farmID, AdjustmentInput{WorkerID: second.ID, PayPeriodID: &period.ID, AdjType: models.AdjustmentBonus, Amount: decimal.NewFromInt(1500)})
	require.NoError(t, err)

	first, err := env.payroll.Run(context.Background(), env.farmID, period.ID, card.ID)
	require.NoError(t, err)
	again, err := env.payroll.Run(context.Background(), env.farmID, period.ID, card.ID)
	require.NoError(t, err)

	if diff := cmp.Diff(payloads(t, first.Lines), payloads(t, again.Lines)); diff != "" {
		t.Errorf("rerun changed payroll lines (-first +again):\n%s", diff)
	}

	lines, err := env.payroll.Lines(env.farmID, period.ID)
	require.NoError(t, err)
	assert.Len(t, lines, 2)
}

func TestPayrollService_PieceItemsSumToGross(t *testing.T) {
	env := setupTestEnv(t)
	fx := env.newJob(t, "planting", 20)
	for _, acres := range []float64{0.33, 1.1, 2.05, 0.5} {
		env.approvedLog(t, fx.job.ID, fx.worker.ID, "2024-03-04", acres)
	}
	card := env.rateCard(t, map[string]int64{"planting": 27500})
	period := env.period(t, "2024-03-01", "2024-03-07")

	result, err := env.payroll.Run(context.Background(), env.farmID, period.ID, card.ID)
	require.NoError(t, err)

	for _, line := range result.Lines {
		sum := decimal.Zero
		for _, item := range line.Breakdown.Data().PieceItems {
			sum = sum.Add(item.Amount)
		}
		assert.True(t, sum.Equal(line.GrossPay), "sum %s != gross %s", sum, line.GrossPay)
		assert.True(t, line.NetPay.Equal(line.GrossPay.Add(line.Bonuses).Sub(line.Deductions)))
	}
}

func TestPayrollService_MissingRateFailsRun(t *testing.T) {
	env := setupTestEnv(t)
	fx := env.newJob(t, "harvesting", 10)
	env.approvedLog(t, fx.job.ID, fx.worker.ID, "2024-03-04", 1)
	card := env.rateCard(t, map[string]int64{"planting": 30000})
	period := env.period(t, "2024-03-01", "2024-03-07")

	_, err := env.payroll.Run(context.Background(), env.farmID, period.ID, card.ID)
	assert.ErrorIs(t, err, ErrPrecondition)
	assert.Contains(t, err.Error(), "harvesting")

	lines, err := env.payroll.Lines(env.farmID, period.ID)
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestPayrollService_Preconditions(t *testing.T) {
	env := setupTestEnv(t)
	card := env.rateCard(t, map[string]int64{"planting": 30000})
	period := env.period(t, "2024-03-01", "2024-03-07")
	ctx := context.Background()

	_, err := env.payroll.Run(ctx, env.farmID, 0, card.ID)
	assert.ErrorIs(t, err, ErrPrecondition)
	_, err = env.payroll.Run(ctx, env.farmID, period.ID, 0)
	assert.ErrorIs(t, err, ErrPrecondition)
	_, err = env.payroll.Run(ctx, env.farmID, 999, card.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = env.payroll.Run(ctx, env.farmID, period.ID, 999)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = env.payroll.ClosePeriod(env.farmID, period.ID)
	require.NoError(t, err)
	_, err = env.payroll.Run(ctx, env.farmID, period.ID, card.ID)
	assert.ErrorIs(t, err, ErrInvalidState)
	_, err = env.payroll.ClosePeriod(env.farmID, period.ID)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestPayrollService_NoLogsRemovesStaleLines(t *testing.T) {
	env := setupTestEnv(t)
	worker, err := env.roster.CreateWorker(env.farmID, WorkerInput{FullName: "Former"})
	require.NoError(t, err)
	card := env.rateCard(t, map[string]int64{"planting": 30000})
	period := env.period(t, "2024-04-01", "2024-04-07")

	stale := models.PayrollLine{
		FarmID:      env.farmID,
		PayPeriodID: period.ID,
		WorkerID:    worker.ID,
		RateCardID:  card.ID,
		GrossPay:    decimal.NewFromInt(100),
		Bonuses:     decimal.Zero,
		Deductions:  decimal.Zero,
		NetPay:      decimal.NewFromInt(100),
		Breakdown:   datatypes.NewJSONType(models.PayrollBreakdown{}),
	}
	require.NoError(t, env.db.Create(&stale).Error)

	result, err := env.payroll.Run(context.Background(), env.farmID, period.ID, card.ID)
	require.NoError(t, err)
	assert.Empty(t, result.Lines)
	assert.Equal(t, int64(1), result.Removed)
}

func TestPayrollService_AdjustmentWithoutLogsGetsZeroGrossLine(t *testing.T) {
	env := setupTestEnv(t)
	fx := env.newJob(t, "planting", 10)
	env.approvedLog(t, fx.job.ID, fx.worker.ID, "2024-03-04", 2.0)
	bola, err := env.roster.CreateWorker(env.farmID, WorkerInput{FullName: "Bola Ade"})
	require.NoError(t, err)
	card := env.rateCard(t, map[string]int64{"planting": 30000})
	period := env.period(t, "2024-03-01", "2024-03-07")

	advance, err := env.payroll.AddAdjustment(env.farmID, AdjustmentInput{
		WorkerID:    bola.ID,
		PayPeriodID: &period.ID,
		AdjType:     models.AdjustmentAdvance,
		Amount:      decimal.NewFromInt(7000),
		Reason:      "school fees",
	})
	require.NoError(t, err)

	result, err := env.payroll.Run(context.Background(), env.farmID, period.ID, card.ID)
	require.NoError(t, err)
	require.Len(t, result.Lines, 2)

	byWorker := make(map[uint]models.PayrollLine)
	for _, line := range result.Lines {
		byWorker[line.WorkerID] = line
	}

	line, ok := byWorker[bola.ID]
	require.True(t, ok, "worker with only an advance must get a payroll line")
	assert.Equal(t, "0.00", line.GrossPay.StringFixed(2))
	assert.Equal(t, "7000.00", line.Deductions.StringFixed(2))
	assert.Equal(t, "-7000.00", line.NetPay.StringFixed(2))
	breakdown := line.Breakdown.Data()
	assert.Empty(t, breakdown.PieceItems)
	require.Len(t, breakdown.Adjustments, 1)
	assert.Equal(t, advance.ID, breakdown.Adjustments[0].AdjustmentID)

	assert.Equal(t, "60000.00", byWorker[fx.worker.ID].NetPay.StringFixed(2))

	totals := Totals(result.Lines)
	assert.Equal(t, "7000.00", totals.Deductions.StringFixed(2))
	assert.Equal(t, "53000.00", totals.Net.StringFixed(2))

	again, err := env.payroll.Run(context.Background(), env.farmID, period.ID, card.ID)
	require.NoError(t, err)
	assert.Len(t, again.Lines, 2)
	assert.Equal(t, int64(0), again.Removed)
}

func TestPayrollService_LogsOutsidePeriodIgnored(t *testing.T) {
	env := setupTestEnv(t)
	fx := env.newJob(t, "planting", 10)
	env.approvedLog(t, fx.job.ID, fx.worker.ID, "2024-03-07", 1)
	env.approvedLog(t, fx.job.ID, fx.worker.ID, "2024-03-08", 1)
	card := env.rateCard(t, map[string]int64{"planting": 30000})
	period := env.period(t, "2024-03-01", "2024-03-07")

	result, err := env.payroll.Run(context.Background(), env.farmID, period.ID, card.ID)
	require.NoError(t, err)
	require.Len(t, result.Lines, 1)
	assert.Len(t, result.Lines[0].Breakdown.Data().PieceItems, 1)
	assert.Equal(t, "30000.00", result.Lines[0].GrossPay.StringFixed(2))
}

func TestPayrollService_AdjustmentValidation(t *testing.T) {
	env := setupTestEnv(t)
	worker, err := env.roster.CreateWorker(env.farmID, WorkerInput{FullName: "Ada"})
	require.NoError(t, err)
	period := env.period(t, "2024-03-01", "2024-03-07")

	_, err = env.payroll.AddAdjustment(env.farmID, AdjustmentInput{WorkerID: worker.ID, AdjType: "fine", Amount: decimal.NewFromInt(5)})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = env.payroll.AddAdjustment(env.farmID, AdjustmentInput{WorkerID: worker.ID, AdjType: models.AdjustmentBonus, Amount: decimal.Zero})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = env.roster.SetWorkerActive(env.farmID, worker.ID, false)
	require.NoError(t, err)
	_, err = env.payroll.AddAdjustment(env.farmID, AdjustmentInput{WorkerID: worker.ID, AdjType: models.AdjustmentBonus, Amount: decimal.NewFromInt(5)})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = env.roster.SetWorkerActive(env.farmID, worker.ID, true)
	require.NoError(t, err)

	adj, err := env.payroll.AddAdjustment(env.farmID, AdjustmentInput{WorkerID: worker.ID, PayPeriodID: &period.ID, AdjType: models.AdjustmentBonus, Amount: decimal.NewFromInt(5)})
	require.NoError(t, err)

	_, err = env.payroll.ClosePeriod(env.farmID, period.ID)
	require.NoError(t, err)
	assert.ErrorIs(t, env.payroll.DeleteAdjustment(env.farmID, adj.ID), ErrInvalidState)

	_, err = env.payroll.AddAdjustment(env.farmID, AdjustmentInput{WorkerID: worker.ID, PayPeriodID: &period.ID, AdjType: models.AdjustmentBonus, Amount: decimal.NewFromInt(5)})
	assert.ErrorIs(t, err, ErrInvalidState)

	listed, err := env.payroll.ListAdjustments(env.farmID, &period.ID)
	require.NoError(t, err)
	assert.Len(t, listed, 1)
}

func TestPayrollTotals(t *testing.T) {
	lines := []models.PayrollLine{
		{GrossPay: decimal.NewFromInt(60000), Bonuses: decimal.Zero, Deductions: decimal.NewFromInt(5000), NetPay: decimal.NewFromInt(55000)},
		{GrossPay: decimal.RequireFromString("12500.50"), Bonuses: decimal.NewFromInt(100), Deductions: decimal.Zero, NetPay: decimal.RequireFromString("12600.50")},
	}
	totals := Totals(lines)
	assert.Equal(t, 2, totals.Workers)
	assert.Equal(t, "72500.50", totals.Gross.StringFixed(2))
	assert.Equal(t, "5000.00", totals.Deductions.StringFixed(2))
	assert.Equal(t, "67600.50", totals.Net.StringFixed(2))
}
