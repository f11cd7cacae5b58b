package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/h4ks-com/farmhand/internal/middleware"
	"github.com/h4ks-com/farmhand/internal/services"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ExportHandler struct {
	exportService  *services.ExportService
	payrollService *services.PayrollService
}

func NewExportHandler(exportService *services.ExportService, payrollService *services.PayrollService) *ExportHandler {
	return &ExportHandler{
		exportService:  exportService,
		payrollService: payrollService,
	}
}

type VerifyStatementResponse struct {
	Valid bool `json:"valid"`
}

// ExportPayroll godoc
// @Summary Export payroll
// @Description Summary or breakdown CSV, an XLSX workbook, or a signed JSON statement
// @Tags payroll
// @Produce text/csv
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Produce json
// @Security BearerAuth
// @Param farmID path int true "Farm ID"
// @Param id path int true "Pay period ID"
// @Param format query string false "summary (default), breakdown, xlsx or statement"
// @Success 200 {object} services.PayrollStatement
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /farms/{farmID}/pay-periods/{id}/export [get]
func (h *ExportHandler) ExportPayroll(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	farmID := middleware.GetFarmID(c)
	format := c.DefaultQuery("format", "summary")

	if format == "statement" {
		statement, err := h.exportService.Statement(farmID, id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, statement)
		return
	}

	period, err := h.payrollService.GetPeriod(farmID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	lines, err := h.payrollService.Lines(farmID, id)
	if err != nil {
		respondError(c, err)
		return
	}

	base := fmt.Sprintf("payroll_%s_%s", period.StartDate.Format(services.DateLayout), period.EndDate.Format(services.DateLayout))

	var buf bytes.Buffer
	var contentType, filename string
	switch format {
	case "summary":
		err = services.WriteSummaryCSV(&buf, lines)
		contentType, filename = "text/csv; charset=utf-8", base+"_summary.csv"
	case "breakdown":
		err = services.WriteBreakdownCSV(&buf, lines)
		contentType, filename = "text/csv; charset=utf-8", base+"_breakdown.csv"
	case "xlsx":
		err = services.WriteXLSX(&buf, lines)
		contentType, filename = xlsxContentType, base+".xlsx"
	default:
		badRequest(c, "format must be one of summary, breakdown, xlsx, statement")
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, contentType, buf.Bytes())
}

// VerifyStatement godoc
// @Summary Verify payroll statement
// @Description Checks the HMAC signature of an exported payroll statement
// @Tags payroll
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body services.PayrollStatement true "Statement with signature"
// @Success 200 {object} VerifyStatementResponse
// @Failure 400 {object} ErrorResponse
// @Router /statements/verify [post]
func (h *ExportHandler) VerifyStatement(c *gin.Context) {
	var statement services.PayrollStatement
	if err := c.ShouldBindJSON(&statement); err != nil {
		badRequest(c, "invalid request: "+err.Error())
		return
	}

	valid, err := h.exportService.VerifyStatementData(&statement)
	if err != nil {
		if errors.Is(err, services.ErrInvalidExport) {
			badRequest(c, "invalid statement data")
			return
		}
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, VerifyStatementResponse{Valid: valid})
}
