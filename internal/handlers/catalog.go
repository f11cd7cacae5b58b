package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/h4ks-com/farmhand/internal/middleware"
	"github.com/h4ks-com/farmhand/internal/services"
	"github.com/shopspring/decimal"
)

type CatalogHandler struct {
	catalogService *services.CatalogService
}

func NewCatalogHandler(catalogService *services.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

type JobTypeRequest struct {
	Name string `json:"name" binding:"required"`
}

type RateCardRequest struct {
	Name          string `json:"name" binding:"required"`
	Currency      string `json:"currency"`
	EffectiveFrom string `json:"effective_from"`
	Activate      bool   `json:"activate"`
}

type RateEntry struct {
	JobType    string          `json:"job_type" binding:"required"`
	RateAmount decimal.Decimal `json:"rate_amount" swaggertype:"string"`
}

type SaveRatesRequest struct {
	Rates []RateEntry `json:"rates" binding:"required,min=1,dive"`
}

// ListJobTypes godoc
// @Summary List job types
// @Tags catalog
// @Produce json
// @Security BearerAuth
// @Param farmID path int true "Farm ID"
// @Param all query bool false "Include inactive job types"
// @Success 200 {array} models.JobType
// @Router /farms/{farmID}/job-types [get]
func (h *CatalogHandler) ListJobTypes(c *gin.Context) {
	jobTypes, err := h.catalogService.ListJobTypes(middleware.GetFarmID(c), c.Query("all") != "true")
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, jobTypes)
}

// CreateJobType godoc
// @Summary Create job type
// @Tags catalog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param farmID path int true "Farm ID"
// @Param request body JobTypeRequest true "Job type"
// @Success 201 {object} models.JobType
// @Failure 400 {object} ErrorResponse
// @Router /farms/{farmID}/job-types [post]
func (h *CatalogHandler) CreateJobType(c *gin.Context) {
	var req JobTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request: "+err.Error())
		return
	}

	jobType, err := h.catalogService.CreateJobType(middleware.GetFarmID(c), req.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, jobType)
}

// SetJobTypeActive godoc
// @Summary Activate or retire job type
// @Tags catalog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param farmID path int true "Farm ID"
// @Param id path int true "Job type ID"
// @Param request body SetActiveRequest true "Active flag"
// @Success 200 {object} models.JobType
// @Failure 404 {object} ErrorResponse
// @Router /farms/{farmID}/job-types/{id}/active [put]
func (h *CatalogHandler) SetJobTypeActive(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req SetActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request: "+err.Error())
		return
	}

	jobType, err := h.catalogService.SetJobTypeActive(middleware.GetFarmID(c), id, *req.Active)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, jobType)
}

// ListRateCards godoc
// @Summary List rate cards
// @Tags catalog
// @Produce json
// @Security BearerAuth
// @Param farmID path int true "Farm ID"
// @Success 200 {array} models.RateCard
// @Router /farms/{farmID}/rate-cards [get]
func (h *CatalogHandler) ListRateCards(c *gin.Context) {
	cards, err := h.catalogService.ListRateCards(middleware.GetFarmID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cards)
}

// CreateRateCard godoc
// @Summary Create rate card
// @Tags catalog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param farmID path int true "Farm ID"
// @Param request body RateCardRequest true "Rate card"
// @Success 201 {object} models.RateCard
// @Failure 400 {object} ErrorResponse
// @Router /farms/{farmID}/rate-cards [post]
func (h *CatalogHandler) CreateRateCard(c *gin.Context) {
	var req RateCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request: "+err.Error())
		return
	}
	effective, err := parseOptionalDay(req.EffectiveFrom)
	if err != nil {
		respondError(c, err)
		return
	}

	card, err := h.catalogService.CreateRateCard(middleware.GetFarmID(c), services.RateCardInput{
		Name:          req.Name,
		Currency:      req.Currency,
		EffectiveFrom: effective,
		Activate:      req.Activate,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, card)
}

// ActivateRateCard godoc
// @Summary Activate rate card
// @Description Makes this card the farm's only active card
// @Tags catalog
// @Produce json
// @Security BearerAuth
// @Param farmID path int true "Farm ID"
// @Param id path int true "Rate card ID"
// @Success 200 {object} models.RateCard
// @Failure 404 {object} ErrorResponse
// @Router /farms/{farmID}/rate-cards/{id}/activate [post]
func (h *CatalogHandler) ActivateRateCard(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	card, err := h.catalogService.ActivateRateCard(middleware.GetFarmID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, card)
}

// GetRates godoc
// @Summary Rates on a card
// @Description One per-acre rate per active job type; missing rates show the default
// @Tags catalog
// @Produce json
// @Security BearerAuth
// @Param farmID path int true "Farm ID"
// @Param id path int true "Rate card ID"
// @Success 200 {array} services.RateView
// @Failure 404 {object} ErrorResponse
// @Router /farms/{farmID}/rate-cards/{id}/rates [get]
func (h *CatalogHandler) GetRates(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	rates, err := h.catalogService.Rates(middleware.GetFarmID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rates)
}

// SaveRates godoc
// @Summary Save rates
// @Description Upserts per-acre rates; each must lie within 10000-50000
// @Tags catalog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param farmID path int true "Farm ID"
// @Param id path int true "Rate card ID"
// @Param request body SaveRatesRequest true "Rates"
// @Success 200 {array} models.Rate
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /farms/{farmID}/rate-cards/{id}/rates [put]
func (h *CatalogHandler) SaveRates(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req SaveRatesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request: "+err.Error())
		return
	}

	amounts := make(map[string]decimal.Decimal, len(req.Rates))
	for _, entry := range req.Rates {
		if _, dup := amounts[entry.JobType]; dup {
			badRequest(c, "duplicate rate for job type "+entry.JobType)
			return
		}
		amounts[entry.JobType] = entry.RateAmount
	}

	rates, err := h.catalogService.SaveRates(middleware.GetFarmID(c), id, amounts)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rates)
}
