package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/h4ks-com/farmhand/internal/middleware"
	"github.com/h4ks-com/farmhand/internal/models"
	"github.com/h4ks-com/farmhand/internal/repository"
	"github.com/h4ks-com/farmhand/internal/services"
)

type JobHandler struct {
	jobService *services.JobService
}

func NewJobHandler(jobService *services.JobService) *JobHandler {
	return &JobHandler{jobService: jobService}
}

type JobRequest struct {
	PlanID        uint    `json:"plan_id" binding:"required"`
	TeamID        uint    `json:"team_id" binding:"required"`
	PlotID        uint    `json:"plot_id" binding:"required"`
	JobType       string  `json:"job_type" binding:"required"`
	Crop          string  `json:"crop"`
	Activity      string  `json:"activity"`
	AllottedAcres float64 `json:"allotted_acres" binding:"required,gt=0"`
	StartDate     string  `json:"start_date" binding:"required"`
	DueDate       string  `json:"due_date" binding:"required"`
}

func (r JobRequest) input() (services.JobInput, error) {
	start, err := parseDay(r.StartDate)
	if err != nil {
		return services.JobInput{}, err
	}
	due, err := parseDay(r.DueDate)
	if err != nil {
		return services.JobInput{}, err
	}
	return services.JobInput{
		PlanID:        r.PlanID,
		TeamID:        r.TeamID,
		PlotID:        r.PlotID,
		JobType:       r.JobType,
		Crop:          r.Crop,
		Activity:      r.Activity,
		AllottedAcres: r.AllottedAcres,
		StartDate:     start,
		DueDate:       due,
	}, nil
}

type JobStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type JobListResponse struct {
	Jobs  []models.Job `json:"jobs"`
	Total int64        `json:"total"`
	Page  int          `json:"page"`
	Limit int          `json:"limit"`
}

// ListJobs godoc
// @Summary List jobs
// @Tags jobs
// @Produce json
// @Security BearerAuth
// @Param farmID path int true "Farm ID"
// @Param status query string false "not_started, in_progress, done or blocked"
// @Param team_id query int false "Team ID"
// @Param plan_id query int false "Plan ID"
// @Param page query int false "Page (default 1)"
// @Param limit query int false "Page size (default 20, max 100)"
// @Success 200 {object} JobListResponse
// @Failure 400 {object} ErrorResponse
// @Router /farms/{farmID}/jobs [get]
func (h *JobHandler) ListJobs(c *gin.Context) {
	filter := repository.JobFilter{Status: c.Query("status")}

	for name, dst := range map[string]*uint{"team_id": &filter.TeamID, "plan_id": &filter.PlanID} {
		if raw := c.Query(name); raw != "" {
			v, err := strconv.ParseUint(raw, 10, 32)
			if err != nil {
				badRequest(c, "invalid "+name)
				return
			}
			*dst = uint(v)
		}
	}
	filter.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filter.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))

	jobs, total, err := h.jobService.ListJobs(middleware.GetFarmID(c), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	page, limit := services.NormalizePage(filter.Page, filter.Limit)
	c.JSON(http.StatusOK, JobListResponse{Jobs: jobs, Total: total, Page: page, Limit: limit})
}

// CreateJob godoc
// @Summary Create job
// @Tags jobs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param farmID path int true "Farm ID"
// @Param request body JobRequest true "Job"
// @Success 201 {object} models.Job
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /farms/{farmID}/jobs [post]
func (h *JobHandler) CreateJob(c *gin.Context) {
	var req JobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request: "+err.Error())
		return
	}
	in, err := req.input()
	if err != nil {
		respondError(c, err)
		return
	}

	job, err := h.jobService.CreateJob(middleware.GetFarmID(c), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, job)
}

// GetJob godoc
// @Summary Get job
// @Tags jobs
// @Produce json
// @Security BearerAuth
// @Param farmID path int true "Farm ID"
// @Param id path int true "Job ID"
// @Success 200 {object} models.Job
// @Failure 404 {object} ErrorResponse
// @Router /farms/{farmID}/jobs/{id} [get]
func (h *JobHandler) GetJob(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	job, err := h.jobService.GetJob(middleware.GetFarmID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

// UpdateJob godoc
// @Summary Update job
// @Tags jobs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param farmID path int true "Farm ID"
// @Param id path int true "Job ID"
// @Param request body JobRequest true "Job"
// @Success 200 {object} models.Job
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /farms/{farmID}/jobs/{id} [put]
func (h *JobHandler) UpdateJob(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req JobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request: "+err.Error())
		return
	}
	in, err := req.input()
	if err != nil {
		respondError(c, err)
		return
	}

	job, err := h.jobService.UpdateJob(middleware.GetFarmID(c), id, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

// SetStatus godoc
// @Summary Set job status
// @Tags jobs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param farmID path int true "Farm ID"
// @Param id path int true "Job ID"
// @Param request body JobStatusRequest true "Status"
// @Success 200 {object} models.Job
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /farms/{farmID}/jobs/{id}/status [put]
func (h *JobHandler) SetStatus(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req JobStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request: "+err.Error())
		return
	}

	job, err := h.jobService.SetStatus(middleware.GetFarmID(c), id, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

// DeleteJob godoc
// @Summary Delete job
// @Description Removes the job and its logs; blocked when any log is approved
// @Tags jobs
// @Security BearerAuth
// @Param farmID path int true "Farm ID"
// @Param id path int true "Job ID"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /farms/{farmID}/jobs/{id} [delete]
func (h *JobHandler) DeleteJob(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.jobService.DeleteJob(middleware.GetFarmID(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
