package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/h4ks-com/farmhand/internal/middleware"
	"github.com/h4ks-com/farmhand/internal/models"
	"github.com/h4ks-com/farmhand/internal/services"
	"github.com/shopspring/decimal"
)

type PayrollHandler struct {
	payrollService *services.PayrollService
	catalogService *services.CatalogService
}

func NewPayrollHandler(payrollService *services.PayrollService, catalogService *services.CatalogService) *PayrollHandler {
	return &PayrollHandler{
		payrollService: payrollService,
		catalogService: catalogService,
	}
}

type PeriodRequest struct {
	PeriodType string `json:"period_type" binding:"required,oneof=weekly biweekly monthly"`
	StartDate  string `json:"start_date" binding:"required"`
	EndDate    string `json:"end_date" binding:"required"`
}

type RunPayrollRequest struct {
	RateCardID uint `json:"rate_card_id"`
}

type RunPayrollResponse struct {
	Period   models.PayPeriod       `json:"period"`
	RateCard models.RateCard        `json:"rate_card"`
	Lines    []models.PayrollLine   `json:"lines"`
	Totals   services.PayrollTotals `json:"totals"`
	Removed  int64                  `json:"removed"`
}

type PayrollLinesResponse struct {
	Lines  []models.PayrollLine   `json:"lines"`
	Totals services.PayrollTotals `json:"totals"`
}

type AdjustmentRequest struct {
	WorkerID    uint            `json:"worker_id" binding:"required"`
	PayPeriodID *uint           `json:"pay_period_id"`
	AdjType     string          `json:"adj_type" binding:"required,oneof=deduction bonus advance"`
	Amount      decimal.Decimal `json:"amount" swaggertype:"string"`
	Reason      string          `json:"reason"`
}

type AssignAdjustmentRequest struct {
	PayPeriodID uint `json:"pay_period_id" binding:"required"`
}

// ListPeriods godoc
// @Summary List pay periods
// @Tags payroll
// @Produce json
// @Security BearerAuth
// @Param farmID path int true "Farm ID"
// @Success 200 {array} models.PayPeriod
// @Router /farms/{farmID}/pay-periods [get]
func (h *PayrollHandler) ListPeriods(c *gin.Context) {
	periods, err := h.payrollService.ListPeriods(middleware.GetFarmID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, periods)
}

// CreatePeriod godoc
// @Summary Create pay period
// @Tags payroll
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param farmID path int true "Farm ID"
// @Param request body PeriodRequest true "Pay period"
// @Success 201 {object} models.PayPeriod
// @Failure 400 {object} ErrorResponse
// @Router /farms/{farmID}/pay-periods [post]
func (h *PayrollHandler) CreatePeriod(c *gin.Context) {
	var req PeriodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request: "+err.Error())
		return
	}
	start, err := parseDay(req.StartDate)
	if err != nil {
		respondError(c, err)
		return
	}
	end, err := parseDay(req.EndDate)
	if err != nil {
		respondError(c, err)
		return
	}

	period, err := h.payrollService.CreatePeriod(middleware.GetFarmID(c), services.PeriodInput{
		PeriodType: req.PeriodType,
		StartDate:  start,
		EndDate:    end,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, period)
}

// GetPeriod godoc
// @Summary Get pay period
// @Tags payroll
// @Produce json
// @Security BearerAuth
// @Param farmID path int true "Farm ID"
// @Param id path int true "Pay period ID"
// @Success 200 {object} models.PayPeriod
// @Failure 404 {object} ErrorResponse
// @Router /farms/{farmID}/pay-periods/{id} [get]
func (h *PayrollHandler) GetPeriod(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	period, err := h.payrollService.GetPeriod(middleware.GetFarmID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, period)
}

// ClosePeriod godoc
// @Summary Close pay period
// @Description A closed period can no longer be run or receive adjustments
// @Tags payroll
// @Produce json
// @Security BearerAuth
// @Param farmID path int true "Farm ID"
// @Param id path int true "Pay period ID"
// @Success 200 {object} models.PayPeriod
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /farms/{farmID}/pay-periods/{id}/close [post]
func (h *PayrollHandler) ClosePeriod(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	period, err := h.payrollService.ClosePeriod(middleware.GetFarmID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, period)
}

// RunPayroll godoc
// @Summary Run payroll
// @Description Recomputes the period's payroll lines. Without rate_card_id the farm's active card is used.
// @Tags payroll
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param farmID path int true "Farm ID"
// @Param id path int true "Pay period ID"
// @Param request body RunPayrollRequest false "Rate card"
// @Success 200 {object} RunPayrollResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 412 {object} ErrorResponse
// @Router /farms/{farmID}/pay-periods/{id}/run [post]
func (h *PayrollHandler) RunPayroll(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	farmID := middleware.GetFarmID(c)

	var req RunPayrollRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid request: "+err.Error())
			return
		}
	}

	if req.RateCardID == 0 {
		card, err := h.catalogService.ActiveRateCard(farmID)
		if err != nil && !errors.Is(err, services.ErrRateCardNotFound) {
			respondError(c, err)
			return
		}
		if card != nil {
			req.RateCardID = card.ID
		}
	}

	result, err := h.payrollService.Run(c.Request.Context(), farmID, id, req.RateCardID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, RunPayrollResponse{
		Period:   result.Period,
		RateCard: result.RateCard,
		Lines:    result.Lines,
		Totals:   services.Totals(result.Lines),
		Removed:  result.Removed,
	})
}

// ListLines godoc
// @Summary Payroll lines
// @Description Lines of the period, highest net pay first, with totals
// @Tags payroll
// @Produce json
// @Security BearerAuth
// @Param farmID path int true "Farm ID"
// @Param id path int true "Pay period ID"
// @Success 200 {object} PayrollLinesResponse
// @Failure 404 {object} ErrorResponse
// @Router /farms/{farmID}/pay-periods/{id}/lines [get]
func (h *PayrollHandler) ListLines(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	lines, err := h.payrollService.Lines(middleware.GetFarmID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, PayrollLinesResponse{Lines: lines, Totals: services.Totals(lines)})
}

// ListAdjustments godoc
// @Summary List adjustments
// @Tags payroll
// @Produce json
// @Security BearerAuth
// @Param farmID path int true "Farm ID"
// @Param pay_period_id query int false "Only adjustments of this period"
// @Success 200 {array} models.Adjustment
// @Failure 400 {object} ErrorResponse
// @Router /farms/{farmID}/adjustments [get]
func (h *PayrollHandler) ListAdjustments(c *gin.Context) {
	var periodID *uint
	if raw := c.Query("pay_period_id"); raw != "" {
		v, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			badRequest(c, "invalid pay_period_id")
			return
		}
		id := uint(v)
		periodID = &id
	}

	adjustments, err := h.payrollService.ListAdjustments(middleware.GetFarmID(c), periodID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, adjustments)
}

// AddAdjustment godoc
// @Summary Add adjustment
// @Description Deduction, bonus or advance for a worker, optionally tied to an open period
// @Tags payroll
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param farmID path int true "Farm ID"
// @Param request body AdjustmentRequest true "Adjustment"
// @Success 201 {object} models.Adjustment
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /farms/{farmID}/adjustments [post]
func (h *PayrollHandler) AddAdjustment(c *gin.Context) {
	var req AdjustmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request: "+err.Error())
		return
	}

	adjustment, err := h.payrollService.AddAdjustment(middleware.GetFarmID(c), services.AdjustmentInput(req))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, adjustment)
}

// AssignAdjustment godoc
// @Summary Assign adjustment to period
// @Tags payroll
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param farmID path int true "Farm ID"
// @Param id path int true "Adjustment ID"
// @Param request body AssignAdjustmentRequest true "Pay period"
// @Success 200 {object} models.Adjustment
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /farms/{farmID}/adjustments/{id}/assign [post]
func (h *PayrollHandler) AssignAdjustment(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req AssignAdjustmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request: "+err.Error())
		return
	}

	adjustment, err := h.payrollService.AssignAdjustment(middleware.GetFarmID(c), id, req.PayPeriodID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, adjustment)
}

// DeleteAdjustment godoc
// @Summary Delete adjustment
// @Tags payroll
// @Security BearerAuth
// @Param farmID path int true "Farm ID"
// @Param id path int true "Adjustment ID"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /farms/{farmID}/adjustments/{id} [delete]
func (h *PayrollHandler) DeleteAdjustment(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.payrollService.DeleteAdjustment(middleware.GetFarmID(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
