package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/h4ks-com/farmhand/internal/middleware"
	"github.com/h4ks-com/farmhand/internal/services"
)

type JobLogHandler struct {
	logService *services.JobLogService
}

func NewJobLogHandler(logService *services.JobLogService) *JobLogHandler {
	return &JobLogHandler{logService: logService}
}

type JobLogRequest struct {
	LogDate   string  `json:"log_date" binding:"required"`
	AcresDone float64 `json:"acres_done" binding:"required,gt=0"`
	WorkerID  uint    `json:"worker_id" binding:"required"`
	Notes     string  `json:"notes"`
	Mode      string  `json:"mode" binding:"omitempty,oneof=draft submitted"`
}

func (r JobLogRequest) input() (services.JobLogInput, error) {
	date, err := parseDay(r.LogDate)
	if err != nil {
		return services.JobLogInput{}, err
	}
	return services.JobLogInput{
		LogDate:   date,
		AcresDone: r.AcresDone,
		WorkerID:  r.WorkerID,
		Notes:     r.Notes,
		Mode:      r.Mode,
	}, nil
}

type RejectRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// ListForJob godoc
// @Summary List a job's logs
// @Tags logs
// @Produce json
// @Security BearerAuth
// @Param farmID path int true "Farm ID"
// @Param id path int true "Job ID"
// @Success 200 {array} models.JobLog
// @Failure 404 {object} ErrorResponse
// @Router /farms/{farmID}/jobs/{id}/logs [get]
func (h *JobLogHandler) ListForJob(c *gin.Context) {
	jobID, ok := pathID(c, "id")
	if !ok {
		return
	}

	logs, err := h.logService.ListForJob(middleware.GetFarmID(c), jobID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, logs)
}

// CreateLog godoc
// @Summary Record work
// @Description Creates a job log as a draft or, by default, submitted for approval
// @Tags logs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param farmID path int true "Farm ID"
// @Param id path int true "Job ID"
// @Param request body JobLogRequest true "Log"
// @Success 201 {object} models.JobLog
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /farms/{farmID}/jobs/{id}/logs [post]
func (h *JobLogHandler) CreateLog(c *gin.Context) {
	jobID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req JobLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request: "+err.Error())
		return
	}
	in, err := req.input()
	if err != nil {
		respondError(c, err)
		return
	}

	log, err := h.logService.Create(middleware.GetFarmID(c), jobID, in, middleware.GetUsername(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, log)
}

// GetLog godoc
// @Summary Get job log
// @Tags logs
// @Produce json
// @Security BearerAuth
// @Param farmID path int true "Farm ID"
// @Param id path int true "Log ID"
// @Success 200 {object} models.JobLog
// @Failure 404 {object} ErrorResponse
// @Router /farms/{farmID}/logs/{id} [get]
func (h *JobLogHandler) GetLog(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	log, err := h.logService.Get(middleware.GetFarmID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, log)
}

// UpdateLog godoc
// @Summary Edit draft log
// @Description Only drafts can be edited; approved logs are immutable
// @Tags logs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param farmID path int true "Farm ID"
// @Param id path int true "Log ID"
// @Param request body JobLogRequest true "Log"
// @Success 200 {object} models.JobLog
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /farms/{farmID}/logs/{id} [put]
func (h *JobLogHandler) UpdateLog(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req JobLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request: "+err.Error())
		return
	}
	in, err := req.input()
	if err != nil {
		respondError(c, err)
		return
	}

	log, err := h.logService.Update(middleware.GetFarmID(c), id, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, log)
}

// DeleteLog godoc
// @Summary Delete job log
// @Description Approved logs cannot be deleted
// @Tags logs
// @Security BearerAuth
// @Param farmID path int true "Farm ID"
// @Param id path int true "Log ID"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /farms/{farmID}/logs/{id} [delete]
func (h *JobLogHandler) DeleteLog(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.logService.Delete(middleware.GetFarmID(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Submit godoc
// @Summary Submit draft log
// @Tags logs
// @Produce json
// @Security BearerAuth
// @Param farmID path int true "Farm ID"
// @Param id path int true "Log ID"
// @Success 200 {object} models.JobLog
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /farms/{farmID}/logs/{id}/submit [post]
func (h *JobLogHandler) Submit(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	log, err := h.logService.Submit(middleware.GetFarmID(c), id, middleware.GetUsername(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, log)
}

// Approve godoc
// @Summary Approve submitted log
// @Tags logs
// @Produce json
// @Security BearerAuth
// @Param farmID path int true "Farm ID"
// @Param id path int true "Log ID"
// @Success 200 {object} models.JobLog
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /farms/{farmID}/logs/{id}/approve [post]
func (h *JobLogHandler) Approve(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	log, err := h.logService.Approve(middleware.GetFarmID(c), id, middleware.GetUsername(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, log)
}

// Reject godoc
// @Summary Reject submitted log
// @Tags logs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param farmID path int true "Farm ID"
// @Param id path int true "Log ID"
// @Param request body RejectRequest true "Reason"
// @Success 200 {object} models.JobLog
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /farms/{farmID}/logs/{id}/reject [post]
func (h *JobLogHandler) Reject(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req RejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request: "+err.Error())
		return
	}

	log, err := h.logService.Reject(middleware.GetFarmID(c), id, req.Reason, middleware.GetUsername(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, log)
}

// History godoc
// @Summary Log status history
// @Tags logs
// @Produce json
// @Security BearerAuth
// @Param farmID path int true "Farm ID"
// @Param id path int true "Log ID"
// @Success 200 {array} models.JobLogTransition
// @Failure 404 {object} ErrorResponse
// @Router /farms/{farmID}/logs/{id}/history [get]
func (h *JobLogHandler) History(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	transitions, err := h.logService.History(middleware.GetFarmID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, transitions)
}

// ApprovalQueue godoc
// @Summary Approval queue
// @Description Submitted logs awaiting review
// @Tags logs
// @Produce json
// @Security BearerAuth
// @Param farmID path int true "Farm ID"
// @Success 200 {array} models.JobLog
// @Router /farms/{farmID}/approvals [get]
func (h *JobLogHandler) ApprovalQueue(c *gin.Context) {
	logs, err := h.logService.ApprovalQueue(middleware.GetFarmID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, logs)
}
