package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/h4ks-com/farmhand/internal/middleware"
	"github.com/h4ks-com/farmhand/internal/services"
)

type FarmHandler struct {
	farmService *services.FarmService
}

func NewFarmHandler(farmService *services.FarmService) *FarmHandler {
	return &FarmHandler{farmService: farmService}
}

type CreateFarmRequest struct {
	Name     string `json:"name" binding:"required"`
	Location string `json:"location"`
}

type SetMemberRequest struct {
	Username string `json:"username" binding:"required"`
	Role     string `json:"role" binding:"required,oneof=owner manager supervisor"`
}

type FarmResponse struct {
	ID       uint   `json:"id"`
	Name     string `json:"name"`
	Location string `json:"location,omitempty"`
	Role     string `json:"role"`
}

// ListFarms godoc
// @Summary List my farms
// @Description Farms the caller holds an active membership on
// @Tags farms
// @Produce json
// @Security BearerAuth
// @Success 200 {array} FarmResponse
// @Failure 401 {object} ErrorResponse
// @Router /farms [get]
func (h *FarmHandler) ListFarms(c *gin.Context) {
	memberships, err := h.farmService.ListForUser(middleware.GetUsername(c))
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]FarmResponse, len(memberships))
	for i, m := range memberships {
		response[i] = FarmResponse{ID: m.Farm.ID, Name: m.Farm.Name, Location: m.Farm.Location, Role: m.Role}
	}
	c.JSON(http.StatusOK, response)
}

// CreateFarm godoc
// @Summary Create farm
// @Description Create a farm; the caller becomes its owner
// @Tags farms
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateFarmRequest true "Farm"
// @Success 201 {object} FarmResponse
// @Failure 400 {object} ErrorResponse
// @Router /farms [post]
func (h *FarmHandler) CreateFarm(c *gin.Context) {
	var req CreateFarmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request: "+err.Error())
		return
	}

	farm, err := h.farmService.CreateFarm(req.Name, req.Location, middleware.GetUsername(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, FarmResponse{ID: farm.ID, Name: farm.Name, Location: farm.Location, Role: "owner"})
}

// GetFarm godoc
// @Summary Get farm
// @Tags farms
// @Produce json
// @Security BearerAuth
// @Param farmID path int true "Farm ID"
// @Success 200 {object} FarmResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /farms/{farmID} [get]
func (h *FarmHandler) GetFarm(c *gin.Context) {
	farm, err := h.farmService.GetFarm(middleware.GetFarmID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, FarmResponse{ID: farm.ID, Name: farm.Name, Location: farm.Location, Role: middleware.GetFarmRole(c)})
}

// SetMember godoc
// @Summary Grant farm role
// @Description Grant or change a user's role on the farm (owner only)
// @Tags farms
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param farmID path int true "Farm ID"
// @Param request body SetMemberRequest true "Membership"
// @Success 200 {object} models.FarmMembership
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /farms/{farmID}/members [put]
func (h *FarmHandler) SetMember(c *gin.Context) {
	var req SetMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request: "+err.Error())
		return
	}

	membership, err := h.farmService.SetMember(middleware.GetFarmID(c), req.Username, req.Role)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, membership)
}
