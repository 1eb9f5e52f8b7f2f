package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campuslink/campus-service/internal/models"
	"github.com/campuslink/campus-service/internal/repositories"
	"github.com/campuslink/campus-service/internal/services"
	"github.com/campuslink/campus-service/internal/utils"
)

type GrievanceHandler struct {
	BaseHandler
	service services.GrievanceService
}

func NewGrievanceHandler(service services.GrievanceService, logger utils.Logger) *GrievanceHandler {
	return &GrievanceHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// CreateGrievance submits a new grievance
// @Summary Submit grievance
// @Tags grievances
// @Accept json
// @Produce json
// @Param grievance body services.CreateGrievanceRequest true "Grievance data"
// @Success 201 {object} services.GrievanceResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /grievances [post]
func (h *GrievanceHandler) CreateGrievance(c *gin.Context) {
	var req services.CreateGrievanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	userID := h.requireUserID(c)
	if userID == "" {
		return
	}

	grievance, err := h.service.Create(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, grievance)
}

// GetGrievance retrieves a grievance by ID
// @Summary Get grievance
// @Tags grievances
// @Produce json
// @Param id path uint true "Grievance ID"
// @Success 200 {object} services.GrievanceResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /grievances/{id} [get]
func (h *GrievanceHandler) GetGrievance(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	userID := h.requireUserID(c)
	if userID == "" {
		return
	}

	grievance, err := h.service.GetByID(c.Request.Context(), id, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, grievance)
}

// UpdateGrievance applies owner edits to content fields
// @Summary Update grievance
// @Tags grievances
// @Accept json
// @Produce json
// @Param id path uint true "Grievance ID"
// @Param grievance body services.UpdateGrievanceRequest true "Fields to update"
// @Success 200 {object} services.GrievanceResponse
// @Failure 403 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /grievances/{id} [put]
func (h *GrievanceHandler) UpdateGrievance(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.UpdateGrievanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	userID := h.requireUserID(c)
	if userID == "" {
		return
	}

	grievance, err := h.service.Update(c.Request.Context(), id, &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, grievance)
}

// UpdateGrievanceStatus performs an overseer status transition
// @Summary Update grievance status
// @Tags grievances
// @Accept json
// @Produce json
// @Param id path uint true "Grievance ID"
// @Param status body services.GrievanceStatusRequest true "Target status"
// @Success 200 {object} services.GrievanceResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /grievances/{id}/status [put]
func (h *GrievanceHandler) UpdateGrievanceStatus(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.GrievanceStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	userID := h.requireUserID(c)
	if userID == "" {
		return
	}

	grievance, err := h.service.UpdateStatus(c.Request.Context(), id, &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, grievance)
}

// DeleteGrievance removes a grievance
// @Summary Delete grievance
// @Tags grievances
// @Param id path uint true "Grievance ID"
// @Success 204
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /grievances/{id} [delete]
func (h *GrievanceHandler) DeleteGrievance(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	userID := h.requireUserID(c)
	if userID == "" {
		return
	}

	if err := h.service.Delete(c.Request.Context(), id, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListGrievances lists all grievances with filtering; overseers only
// @Summary List grievances
// @Tags grievances
// @Produce json
// @Param status query string false "Filter by status"
// @Param category query string false "Filter by category"
// @Param priority query string false "Filter by priority"
// @Param page query int false "Page number"
// @Param size query int false "Page size"
// @Success 200 {object} services.GrievanceListResponse
// @Failure 403 {object} ErrorResponse
// @Router /grievances [get]
func (h *GrievanceHandler) ListGrievances(c *gin.Context) {
	userID := h.requireUserID(c)
	if userID == "" {
		return
	}

	grievances, err := h.service.List(c.Request.Context(), h.parseGrievanceFilters(c), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, grievances)
}

// GetMyGrievances lists the caller's own grievances
// @Summary List own grievances
// @Tags grievances
// @Produce json
// @Success 200 {object} services.GrievanceListResponse
// @Router /grievances/me [get]
func (h *GrievanceHandler) GetMyGrievances(c *gin.Context) {
	userID := h.requireUserID(c)
	if userID == "" {
		return
	}

	grievances, err := h.service.GetMine(c.Request.Context(), userID, h.parseGrievanceFilters(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, grievances)
}

// GetGrievanceStats returns aggregate statistics; overseers only
// @Summary Grievance statistics
// @Tags grievances
// @Produce json
// @Success 200 {object} repositories.GrievanceStats
// @Failure 403 {object} ErrorResponse
// @Router /grievances/stats [get]
func (h *GrievanceHandler) GetGrievanceStats(c *gin.Context) {
	h.LogRequest(c, "Getting grievance stats")

	userID := h.requireUserID(c)
	if userID == "" {
		return
	}

	stats, err := h.service.GetStats(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

func (h *GrievanceHandler) parseGrievanceFilters(c *gin.Context) repositories.GrievanceFilters {
	filters := repositories.GrievanceFilters{}
	filters.Limit, filters.Offset = h.parsePagination(c)
	filters.SortBy, filters.SortOrder = h.parseSort(c)

	if status := c.Query("status"); status != "" {
		s := models.GrievanceStatus(status)
		filters.Status = &s
	}
	if category := c.Query("category"); category != "" {
		cat := models.GrievanceCategory(category)
		filters.Category = &cat
	}
	if priority := c.Query("priority"); priority != "" {
		p := models.GrievancePriority(priority)
		filters.Priority = &p
	}
	if assignee := c.Query("assignee_id"); assignee != "" {
		filters.AssigneeID = &assignee
	}
	filters.DateFrom = h.parseDateQuery(c, "date_from")
	filters.DateTo = h.parseDateQuery(c, "date_to")

	return filters
}
