package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/h4ks-com/farmhand/internal/middleware"
	"github.com/h4ks-com/farmhand/internal/services"
)

type PlanHandler struct {
	planService *services.PlanService
}

func NewPlanHandler(planService *services.PlanService) *PlanHandler {
	return &PlanHandler{planService: planService}
}

type PlanRequest struct {
	Title     string `json:"title" binding:"required"`
	Frequency string `json:"frequency" binding:"required,oneof=daily weekly biweekly monthly"`
	DateStart string `json:"date_start" binding:"required"`
	DateEnd   string `json:"date_end" binding:"required"`
}

func (r PlanRequest) input() (services.PlanInput, error) {
	start, err := parseDay(r.DateStart)
	if err != nil {
		return services.PlanInput{}, err
	}
	end, err := parseDay(r.DateEnd)
	if err != nil {
		return services.PlanInput{}, err
	}
	return services.PlanInput{Title: r.Title, Frequency: r.Frequency, DateStart: start, DateEnd: end}, nil
}

// ListPlans godoc
// @Summary List plans
// @Tags plans
// @Produce json
// @Security BearerAuth
// @Param farmID path int true "Farm ID"
// @Success 200 {array} models.Plan
// @Router /farms/{farmID}/plans [get]
func (h *PlanHandler) ListPlans(c *gin.Context) {
	plans, err := h.planService.ListPlans(middleware.GetFarmID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, plans)
}

// CreatePlan godoc
// @Summary Create plan
// @Tags plans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param farmID path int true "Farm ID"
// @Param request body PlanRequest true "Plan"
// @Success 201 {object} models.Plan
// @Failure 400 {object} ErrorResponse
// @Router /farms/{farmID}/plans [post]
func (h *PlanHandler) CreatePlan(c *gin.Context) {
	var req PlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request: "+err.Error())
		return
	}
	in, err := req.input()
	if err != nil {
		respondError(c, err)
		return
	}

	plan, err := h.planService.CreatePlan(middleware.GetFarmID(c), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, plan)
}

// GetPlan godoc
// @Summary Get plan
// @Tags plans
// @Produce json
// @Security BearerAuth
// @Param farmID path int true "Farm ID"
// @Param id path int true "Plan ID"
// @Success 200 {object} models.Plan
// @Failure 404 {object} ErrorResponse
// @Router /farms/{farmID}/plans/{id} [get]
func (h *PlanHandler) GetPlan(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	plan, err := h.planService.GetPlan(middleware.GetFarmID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, plan)
}

// UpdatePlan godoc
// @Summary Update plan
// @Tags plans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param farmID path int true "Farm ID"
// @Param id path int true "Plan ID"
// @Param request body PlanRequest true "Plan"
// @Success 200 {object} models.Plan
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /farms/{farmID}/plans/{id} [put]
func (h *PlanHandler) UpdatePlan(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req PlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request: "+err.Error())
		return
	}
	in, err := req.input()
	if err != nil {
		respondError(c, err)
		return
	}

	plan, err := h.planService.UpdatePlan(middleware.GetFarmID(c), id, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, plan)
}

// DeletePlan godoc
// @Summary Delete plan
// @Description Cascades to the plan's jobs and logs; blocked when any log is approved
// @Tags plans
// @Security BearerAuth
// @Param farmID path int true "Farm ID"
// @Param id path int true "Plan ID"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /farms/{farmID}/plans/{id} [delete]
func (h *PlanHandler) DeletePlan(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.planService.DeletePlan(middleware.GetFarmID(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
