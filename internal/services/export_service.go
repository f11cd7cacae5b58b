package services

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/h4ks-com/farmhand/internal/models"
	"github.com/h4ks-com/farmhand/internal/repository"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

var ErrInvalidExport = fmt.Errorf("%w: invalid statement data", ErrValidation)

var (
	SummaryHeader   = []string{"Worker", "Gross", "Deductions", "Net"}
	BreakdownHeader = []string{"Worker", "Job Type", "Crop", "Acres", "Rate", "Amount"}
)

const (
	summarySheet   = "Summary"
	breakdownSheet = "Breakdown"
)

type PayrollStatement struct {
	FarmID      uint            `json:"farm_id"`
	FarmName    string          `json:"farm_name"`
	PayPeriodID uint            `json:"pay_period_id"`
	PeriodStart string          `json:"period_start"`
	PeriodEnd   string          `json:"period_end"`
	Lines       []StatementLine `json:"lines"`
	Totals      PayrollTotals   `json:"totals"`
	ExportedAt  time.Time       `json:"exported_at"`
	Signature   string          `json:"signature"`
}

type StatementLine struct {
	WorkerID   uint                    `json:"worker_id"`
	Worker     string                  `json:"worker"`
	GrossPay   decimal.Decimal         `json:"gross_pay"`
	Bonuses    decimal.Decimal         `json:"bonuses"`
	Deductions decimal.Decimal         `json:"deductions"`
	NetPay     decimal.Decimal         `json:"net_pay"`
	Breakdown  models.PayrollBreakdown `json:"breakdown"`
}

type ExportService struct {
	payroll    *PayrollService
	farmRepo   *repository.FarmRepository
	signingKey string
	now        func() time.Time
}

func NewExportService(payroll *PayrollService, farmRepo *repository.FarmRepository, signingKey string) *ExportService {
	return &ExportService{
		payroll:    payroll,
		farmRepo:   farmRepo,
		signingKey: signingKey,
		now:        time.Now,
	}
}

func workerName(line models.PayrollLine) string {
	if line.Worker != nil {
		return line.Worker.FullName
	}
	return fmt.Sprintf("worker #%d", line.WorkerID)
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func acres(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func summaryRows(lines []models.PayrollLine) [][]string {
	rows := make([][]string, 0, len(lines))
	for _, line := range lines {
		rows = append(rows, []string{workerName(line), money(line.GrossPay), money(line.Deductions), money(line.NetPay)})
	}
	return rows
}

func breakdownRows(lines []models.PayrollLine) [][]string {
	var rows [][]string
	for _, line := range lines {
		for _, item := range line.Breakdown.Data().PieceItems {
			crop := ""
			if item.Crop != nil {
				crop = *item.Crop
			}
			rows = append(rows, []string{workerName(line), item.JobType, crop, acres(item.AcresDone), money(item.Rate), money(item.Amount)})
		}
	}
	return rows
}

func writeCSV(w io.Writer, header []string, rows [][]string) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(header); err != nil {
		return err
	}
	if err := writer.WriteAll(rows); err != nil {
		return err
	}
	return writer.Error()
}

func WriteSummaryCSV(w io.Writer, lines []models.PayrollLine) error {
	return writeCSV(w, SummaryHeader, summaryRows(lines))
}

func WriteBreakdownCSV(w io.Writer, lines []models.PayrollLine) error {
	return writeCSV(w, BreakdownHeader, breakdownRows(lines))
}

// WriteXLSX writes a workbook with a Summary and a Breakdown sheet.
func WriteXLSX(w io.Writer, lines []models.PayrollLine) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), summarySheet); err != nil {
		return err
	}
	if _, err := f.NewSheet(breakdownSheet); err != nil {
		return err
	}

	sheets := []struct {
		name   string
		header []string
		rows   [][]string
	}{
		{summarySheet, SummaryHeader, summaryRows(lines)},
		{breakdownSheet, BreakdownHeader, breakdownRows(lines)},
	}
	for _, sheet := range sheets {
		if err := f.SetSheetRow(sheet.name, "A1", &sheet.header); err != nil {
			return err
		}
		for i, row := range sheet.rows {
			cell, err := excelize.CoordinatesToCellName(1, i+2)
			if err != nil {
				return err
			}
			if err := f.SetSheetRow(sheet.name, cell, &row); err != nil {
				return err
			}
		}
		if err := f.SetColWidth(sheet.name, "A", "A", 24); err != nil {
			return err
		}
	}
	f.SetActiveSheet(0)

	return f.Write(w)
}

// Statement builds an HMAC-signed statement of the period's payroll lines.
func (s *ExportService) Statement(farmID, periodID uint) (*PayrollStatement, error) {
	farm, err := s.farmRepo.FindByID(farmID)
	if err != nil {
		return nil, remote("find farm", err)
	}
	if farm == nil {
		return nil, ErrFarmNotFound
	}
	period, err := s.payroll.GetPeriod(farmID, periodID)
	if err != nil {
		return nil, err
	}
	lines, err := s.payroll.Lines(farmID, periodID)
	if err != nil {
		return nil, err
	}

	items := make([]StatementLine, len(lines))
	for i, line := range lines {
		items[i] = StatementLine{
			WorkerID:   line.WorkerID,
			Worker:     workerName(line),
			GrossPay:   line.GrossPay,
			Bonuses:    line.Bonuses,
			Deductions: line.Deductions,
			NetPay:     line.NetPay,
			Breakdown:  line.Breakdown.Data(),
		}
	}

	statement := &PayrollStatement{
		FarmID:      farm.ID,
		FarmName:    farm.Name,
		PayPeriodID: period.ID,
		PeriodStart: period.StartDate.Format(DateLayout),
		PeriodEnd:   period.EndDate.Format(DateLayout),
		Lines:       items,
		Totals:      Totals(lines),
		ExportedAt:  s.now().UTC().Truncate(time.Second),
	}

	signature, err := s.sign(statement)
	if err != nil {
		return nil, err
	}
	statement.Signature = signature

	return statement, nil
}

func (s *ExportService) VerifyStatement(data []byte) (bool, error) {
	var statement PayrollStatement
	if err := json.Unmarshal(data, &statement); err != nil {
		return false, ErrInvalidExport
	}
	return s.VerifyStatementData(&statement)
}

func (s *ExportService) VerifyStatementData(statement *PayrollStatement) (bool, error) {
	if statement.Signature == "" {
		return false, ErrInvalidExport
	}

	computed, err := s.sign(statement)
	if err != nil {
		return false, err
	}

	return hmac.Equal([]byte(computed), []byte(statement.Signature)), nil
}

func (s *ExportService) sign(statement *PayrollStatement) (string, error) {
	unsigned := *statement
	unsigned.Signature = ""

	data, err := json.Marshal(unsigned)
	if err != nil {
		return "", err
	}

	h := hmac.New(sha256.New, []byte(s.signingKey))
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil)), nil
}
