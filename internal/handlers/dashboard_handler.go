package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/campuslink/campus-service/internal/services"
	"github.com/campuslink/campus-service/internal/utils"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type DashboardHandler struct {
	BaseHandler
	dashboardService services.DashboardService
	exportService    services.ExportService
}

func NewDashboardHandler(dashboardService services.DashboardService, exportService services.ExportService, logger utils.Logger) *DashboardHandler {
	return &DashboardHandler{
		BaseHandler:      NewBaseHandler(logger),
		dashboardService: dashboardService,
		exportService:    exportService,
	}
}

// GetStats returns the governance dashboard counters; overseers only
// @Summary Dashboard statistics
// @Tags dashboard
// @Produce json
// @Success 200 {object} repositories.DashboardStats
// @Failure 403 {object} ErrorResponse
// @Router /dashboard/stats [get]
func (h *DashboardHandler) GetStats(c *gin.Context) {
	h.LogRequest(c, "Getting dashboard stats")

	userID := h.requireUserID(c)
	if userID == "" {
		return
	}

	stats, err := h.dashboardService.GetStats(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// ExportGrievances streams the grievance report as an xlsx download;
// overseers only. Accepts the same filters as the grievance list.
// @Summary Export grievance report
// @Tags dashboard
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param status query string false "Filter by status"
// @Param category query string false "Filter by category"
// @Success 200 {file} binary
// @Failure 403 {object} ErrorResponse
// @Router /dashboard/export/grievances [get]
func (h *DashboardHandler) ExportGrievances(c *gin.Context) {
	h.LogRequest(c, "Exporting grievance report")

	userID := h.requireUserID(c)
	if userID == "" {
		return
	}

	grievanceHandler := GrievanceHandler{BaseHandler: h.BaseHandler}
	filters := grievanceHandler.parseGrievanceFilters(c)

	report, err := h.exportService.ExportGrievanceReport(c.Request.Context(), filters, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	filename := fmt.Sprintf("grievance-report-%s.xlsx", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, xlsxContentType, report)
}
