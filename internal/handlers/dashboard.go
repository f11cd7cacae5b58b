package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/h4ks-com/farmhand/internal/middleware"
	"github.com/h4ks-com/farmhand/internal/services"
)

type DashboardHandler struct {
	reportService *services.ReportService
}

func NewDashboardHandler(reportService *services.ReportService) *DashboardHandler {
	return &DashboardHandler{reportService: reportService}
}

// GetDashboard godoc
// @Summary Farm dashboard
// @Description Pending approvals, approved acres over the last 7 days, overdue and due-soon jobs.
// @Description A failed figure is left empty and named in errors.
// @Tags dashboard
// @Produce json
// @Security BearerAuth
// @Param farmID path int true "Farm ID"
// @Success 200 {object} services.Dashboard
// @Router /farms/{farmID}/dashboard [get]
func (h *DashboardHandler) GetDashboard(c *gin.Context) {
	dashboard, err := h.reportService.Dashboard(c.Request.Context(), middleware.GetFarmID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dashboard)
}
