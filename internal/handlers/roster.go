package handlers

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/h4ks-com/farmhand/internal/middleware"
	"github.com/h4ks-com/farmhand/internal/models"
	"github.com/h4ks-com/farmhand/internal/roster"
	"github.com/h4ks-com/farmhand/internal/services"
)

const (
	maxPhotoBytes  = 10 << 20
	maxRosterBytes = 20 << 20
)

type RosterHandler struct {
	rosterService *services.RosterService
}

func NewRosterHandler(rosterService *services.RosterService) *RosterHandler {
	return &RosterHandler{rosterService: rosterService}
}

type PlotRequest struct {
	Name      string  `json:"name" binding:"required"`
	Code      string  `json:"code"`
	SizeAcres float64 `json:"size_acres" binding:"required,gt=0"`
}

type WorkerRequest struct {
	FullName string `json:"full_name" binding:"required"`
	Phone    string `json:"phone"`
	Role     string `json:"role"`
}

type SetActiveRequest struct {
	Active *bool `json:"active" binding:"required"`
}

type WorkerResponse struct {
	ID        uint   `json:"id"`
	FullName  string `json:"full_name"`
	Phone     string `json:"phone,omitempty"`
	Role      string `json:"role,omitempty"`
	Active    bool   `json:"active"`
	PhotoURL  string `json:"photo_url,omitempty"`
	CreatedAt string `json:"created_at"`
}

type ImportResponse struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

type TeamRequest struct {
	Name           string `json:"name" binding:"required"`
	LeaderWorkerID *uint  `json:"leader_worker_id"`
}

type AddMemberRequest struct {
	WorkerID  uint   `json:"worker_id" binding:"required"`
	StartDate string `json:"start_date"`
}

type EndMembershipRequest struct {
	EndDate string `json:"end_date" binding:"required"`
}

func (h *RosterHandler) toWorkerResponse(c *gin.Context, w *models.Worker) WorkerResponse {
	return WorkerResponse{
		ID:        w.ID,
		FullName:  w.FullName,
		Phone:     w.Phone,
		Role:      w.Role,
		Active:    w.Active,
		PhotoURL:  h.rosterService.PhotoURL(c.Request.Context(), w),
		CreatedAt: w.CreatedAt.UTC().Format(dateTimeLayout),
	}
}

// ListPlots godoc
// @Summary List plots
// @Tags plots
// @Produce json
// @Security BearerAuth
// @Param farmID path int true "Farm ID"
// @Success 200 {array} models.Plot
// @Router /farms/{farmID}/plots [get]
func (h *RosterHandler) ListPlots(c *gin.Context) {
	plots, err := h.rosterService.ListPlots(middleware.GetFarmID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, plots)
}

// CreatePlot godoc
// @Summary Create plot
// @Tags plots
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param farmID path int true "Farm ID"
// @Param request body PlotRequest true "Plot"
// @Success 201 {object} models.Plot
// @Failure 400 {object} ErrorResponse
// @Router /farms/{farmID}/plots [post]
func (h *RosterHandler) CreatePlot(c *gin.Context) {
	var req PlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request: "+err.Error())
		return
	}

	plot, err := h.rosterService.CreatePlot(middleware.GetFarmID(c), services.PlotInput(req))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, plot)
}

// UpdatePlot godoc
// @Summary Update plot
// @Tags plots
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param farmID path int true "Farm ID"
// @Param id path int true "Plot ID"
// @Param request body PlotRequest true "Plot"
// @Success 200 {object} models.Plot
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /farms/{farmID}/plots/{id} [put]
func (h *RosterHandler) UpdatePlot(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req PlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request: "+err.Error())
		return
	}

	plot, err := h.rosterService.UpdatePlot(middleware.GetFarmID(c), id, services.PlotInput(req))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, plot)
}

// DeletePlot godoc
// @Summary Delete plot
// @Description Fails while any job references the plot
// @Tags plots
// @Security BearerAuth
// @Param farmID path int true "Farm ID"
// @Param id path int true "Plot ID"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /farms/{farmID}/plots/{id} [delete]
func (h *RosterHandler) DeletePlot(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.rosterService.DeletePlot(middleware.GetFarmID(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListWorkers godoc
// @Summary List workers
// @Tags workers
// @Produce json
// @Security BearerAuth
// @Param farmID path int true "Farm ID"
// @Param active query bool false "Filter by active flag"
// @Success 200 {array} WorkerResponse
// @Router /farms/{farmID}/workers [get]
func (h *RosterHandler) ListWorkers(c *gin.Context) {
	var active *bool
	if raw := c.Query("active"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			badRequest(c, "active must be true or false")
			return
		}
		active = &v
	}

	workers, err := h.rosterService.ListWorkers(middleware.GetFarmID(c), active)
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]WorkerResponse, len(workers))
	for i := range workers {
		response[i] = h.toWorkerResponse(c, &workers[i])
	}
	c.JSON(http.StatusOK, response)
}

// CreateWorker godoc
// @Summary Create worker
// @Tags workers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param farmID path int true "Farm ID"
// @Param request body WorkerRequest true "Worker"
// @Success 201 {object} WorkerResponse
// @Failure 400 {object} ErrorResponse
// @Router /farms/{farmID}/workers [post]
func (h *RosterHandler) CreateWorker(c *gin.Context) {
	var req WorkerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request: "+err.Error())
		return
	}

	worker, err := h.rosterService.CreateWorker(middleware.GetFarmID(c), services.WorkerInput(req))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, h.toWorkerResponse(c, worker))
}

// GetWorker godoc
// @Summary Get worker
// @Tags workers
// @Produce json
// @Security BearerAuth
// @Param farmID path int true "Farm ID"
// @Param id path int true "Worker ID"
// @Success 200 {object} WorkerResponse
// @Failure 404 {object} ErrorResponse
// @Router /farms/{farmID}/workers/{id} [get]
func (h *RosterHandler) GetWorker(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	worker, err := h.rosterService.GetWorker(middleware.GetFarmID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.toWorkerResponse(c, worker))
}

// UpdateWorker godoc
// @Summary Update worker
// @Tags workers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param farmID path int true "Farm ID"
// @Param id path int true "Worker ID"
// @Param request body WorkerRequest true "Worker"
// @Success 200 {object} WorkerResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /farms/{farmID}/workers/{id} [put]
func (h *RosterHandler) UpdateWorker(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req WorkerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request: "+err.Error())
		return
	}

	worker, err := h.rosterService.UpdateWorker(middleware.GetFarmID(c), id, services.WorkerInput(req))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.toWorkerResponse(c, worker))
}

// SetWorkerActive godoc
// @Summary Activate or deactivate worker
// @Tags workers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param farmID path int true "Farm ID"
// @Param id path int true "Worker ID"
// @Param request body SetActiveRequest true "Active flag"
// @Success 200 {object} WorkerResponse
// @Failure 404 {object} ErrorResponse
// @Router /farms/{farmID}/workers/{id}/active [put]
func (h *RosterHandler) SetWorkerActive(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req SetActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request: "+err.Error())
		return
	}

	worker, err := h.rosterService.SetWorkerActive(middleware.GetFarmID(c), id, *req.Active)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.toWorkerResponse(c, worker))
}

// DeleteWorker godoc
// @Summary Delete worker
// @Description Fails once the worker has logs or payroll lines; deactivate instead
// @Tags workers
// @Security BearerAuth
// @Param farmID path int true "Farm ID"
// @Param id path int true "Worker ID"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /farms/{farmID}/workers/{id} [delete]
func (h *RosterHandler) DeleteWorker(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.rosterService.DeleteWorker(middleware.GetFarmID(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// UploadPhoto godoc
// @Summary Upload worker photo
// @Description PNG, JPEG or WebP; stored as a 512x512 PNG
// @Tags workers
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param farmID path int true "Farm ID"
// @Param id path int true "Worker ID"
// @Param photo formData file true "Photo"
// @Success 200 {object} WorkerResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /farms/{farmID}/workers/{id}/photo [post]
func (h *RosterHandler) UploadPhoto(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	file, err := c.FormFile("photo")
	if err != nil {
		badRequest(c, "photo file is required")
		return
	}
	if file.Size > maxPhotoBytes {
		badRequest(c, "photo is larger than 10 MiB")
		return
	}

	f, err := file.Open()
	if err != nil {
		badRequest(c, "failed to read upload")
		return
	}
	defer f.Close()

	raw, err := io.ReadAll(io.LimitReader(f, maxPhotoBytes))
	if err != nil {
		badRequest(c, "failed to read upload")
		return
	}

	worker, err := h.rosterService.UploadPhoto(c.Request.Context(), middleware.GetFarmID(c), id, raw)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.toWorkerResponse(c, worker))
}

// ImportWorkers godoc
// @Summary Import worker roster
// @Description Bulk-create workers from a .json, .xlsx or .xls roster; names already on the farm are skipped
// @Tags workers
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param farmID path int true "Farm ID"
// @Param file formData file true "Roster"
// @Success 200 {object} ImportResponse
// @Failure 400 {object} ErrorResponse
// @Router /farms/{farmID}/workers/import [post]
func (h *RosterHandler) ImportWorkers(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		badRequest(c, "roster file is required")
		return
	}

	f, err := file.Open()
	if err != nil {
		badRequest(c, "failed to read upload")
		return
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxRosterBytes))
	if err != nil {
		badRequest(c, "failed to read upload")
		return
	}

	entries, err := roster.Parse(file.Filename, data)
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	result, err := h.rosterService.ImportWorkers(middleware.GetFarmID(c), entries)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ImportResponse{Imported: result.Imported, Skipped: result.Skipped})
}

// ListTeams godoc
// @Summary List teams
// @Tags teams
// @Produce json
// @Security BearerAuth
// @Param farmID path int true "Farm ID"
// @Success 200 {array} models.Team
// @Router /farms/{farmID}/teams [get]
func (h *RosterHandler) ListTeams(c *gin.Context) {
	teams, err := h.rosterService.ListTeams(middleware.GetFarmID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, teams)
}

// CreateTeam godoc
// @Summary Create team
// @Tags teams
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param farmID path int true "Farm ID"
// @Param request body TeamRequest true "Team"
// @Success 201 {object} models.Team
// @Failure 400 {object} ErrorResponse
// @Router /farms/{farmID}/teams [post]
func (h *RosterHandler) CreateTeam(c *gin.Context) {
	var req TeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request: "+err.Error())
		return
	}

	team, err := h.rosterService.CreateTeam(middleware.GetFarmID(c), req.Name, req.LeaderWorkerID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, team)
}

// DeleteTeam godoc
// @Summary Delete team
// @Tags teams
// @Security BearerAuth
// @Param farmID path int true "Farm ID"
// @Param id path int true "Team ID"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /farms/{farmID}/teams/{id} [delete]
func (h *RosterHandler) DeleteTeam(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.rosterService.DeleteTeam(middleware.GetFarmID(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListMembers godoc
// @Summary List team memberships
// @Description Current and past memberships, newest start date first. active=true lists current workers only.
// @Tags teams
// @Produce json
// @Security BearerAuth
// @Param farmID path int true "Farm ID"
// @Param id path int true "Team ID"
// @Param active query bool false "Only current members"
// @Success 200 {array} models.TeamMembership
// @Router /farms/{farmID}/teams/{id}/members [get]
func (h *RosterHandler) ListMembers(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	farmID := middleware.GetFarmID(c)

	if c.Query("active") == "true" {
		workers, err := h.rosterService.ActiveMembers(farmID, id)
		if err != nil {
			respondError(c, err)
			return
		}
		response := make([]WorkerResponse, len(workers))
		for i := range workers {
			response[i] = h.toWorkerResponse(c, &workers[i])
		}
		c.JSON(http.StatusOK, response)
		return
	}

	members, err := h.rosterService.ListMembers(farmID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, members)
}

// AddMember godoc
// @Summary Add worker to team
// @Tags teams
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param farmID path int true "Farm ID"
// @Param id path int true "Team ID"
// @Param request body AddMemberRequest true "Membership; start_date defaults to today"
// @Success 201 {object} models.TeamMembership
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /farms/{farmID}/teams/{id}/members [post]
func (h *RosterHandler) AddMember(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request: "+err.Error())
		return
	}
	start, err := parseOptionalDay(req.StartDate)
	if err != nil {
		respondError(c, err)
		return
	}

	membership, err := h.rosterService.AddMember(middleware.GetFarmID(c), id, req.WorkerID, start)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, membership)
}

// EndMembership godoc
// @Summary End team membership
// @Tags teams
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param farmID path int true "Farm ID"
// @Param id path int true "Team ID"
// @Param memberID path int true "Membership ID"
// @Param request body EndMembershipRequest true "End date"
// @Success 200 {object} models.TeamMembership
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /farms/{farmID}/teams/{id}/members/{memberID}/end [post]
func (h *RosterHandler) EndMembership(c *gin.Context) {
	memberID, ok := pathID(c, "memberID")
	if !ok {
		return
	}

	var req EndMembershipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request: "+err.Error())
		return
	}
	end, err := parseDay(req.EndDate)
	if err != nil {
		respondError(c, err)
		return
	}

	membership, err := h.rosterService.EndMembership(middleware.GetFarmID(c), memberID, end)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, membership)
}
