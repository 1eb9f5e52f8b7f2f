package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campuslink/campus-service/internal/models"
	"github.com/campuslink/campus-service/internal/repositories"
	"github.com/campuslink/campus-service/internal/services"
	"github.com/campuslink/campus-service/internal/utils"
)

type ApplicationHandler struct {
	BaseHandler
	service services.ApplicationService
}

func NewApplicationHandler(service services.ApplicationService, logger utils.Logger) *ApplicationHandler {
	return &ApplicationHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// CreateApplication submits an application to a posting
// @Summary Apply to posting
// @Tags applications
// @Accept json
// @Produce json
// @Param application body services.CreateApplicationRequest true "Application data"
// @Success 201 {object} services.ApplicationResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Duplicate application or closed posting"
// @Router /applications [post]
func (h *ApplicationHandler) CreateApplication(c *gin.Context) {
	var req services.CreateApplicationRequest
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

	application, err := h.service.Apply(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, application)
}

// GetApplication retrieves an application by ID
// @Summary Get application
// @Tags applications
// @Produce json
// @Param id path uint true "Application ID"
// @Success 200 {object} services.ApplicationResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /applications/{id} [get]
func (h *ApplicationHandler) GetApplication(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	userID := h.requireUserID(c)
	if userID == "" {
		return
	}

	application, err := h.service.GetByID(c.Request.Context(), id, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, application)
}

// UpdateApplicationStatus moves an application through its review
// lifecycle; posting owner or admin
// @Summary Update application status
// @Tags applications
// @Accept json
// @Produce json
// @Param id path uint true "Application ID"
// @Param status body services.ApplicationStatusRequest true "Target status"
// @Success 200 {object} services.ApplicationResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Orphaned application"
// @Router /applications/{id}/status [put]
func (h *ApplicationHandler) UpdateApplicationStatus(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.ApplicationStatusRequest
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

	application, err := h.service.UpdateStatus(c.Request.Context(), id, &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, application)
}

// GetMyApplications lists the caller's own applications
// @Summary List own applications
// @Tags applications
// @Produce json
// @Param status query string false "Filter by status"
// @Success 200 {object} services.ApplicationListResponse
// @Router /applications/me [get]
func (h *ApplicationHandler) GetMyApplications(c *gin.Context) {
	userID := h.requireUserID(c)
	if userID == "" {
		return
	}

	applications, err := h.service.GetMine(c.Request.Context(), userID, h.parseApplicationFilters(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, applications)
}

// ListOpportunityApplications lists applications for one opportunity;
// posting owner or admin
// @Summary List applications for an opportunity
// @Tags applications
// @Produce json
// @Param id path uint true "Opportunity ID"
// @Success 200 {object} services.ApplicationListResponse
// @Failure 403 {object} ErrorResponse
// @Router /opportunities/{id}/applications [get]
func (h *ApplicationHandler) ListOpportunityApplications(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	userID := h.requireUserID(c)
	if userID == "" {
		return
	}

	applications, err := h.service.ListByPosting(c.Request.Context(), &id, nil, h.parseApplicationFilters(c), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, applications)
}

// ListInternshipApplications lists applications for one internship;
// posting owner or admin
// @Summary List applications for an internship
// @Tags applications
// @Produce json
// @Param id path uint true "Internship ID"
// @Success 200 {object} services.ApplicationListResponse
// @Failure 403 {object} ErrorResponse
// @Router /internships/{id}/applications [get]
func (h *ApplicationHandler) ListInternshipApplications(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	userID := h.requireUserID(c)
	if userID == "" {
		return
	}

	applications, err := h.service.ListByPosting(c.Request.Context(), nil, &id, h.parseApplicationFilters(c), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, applications)
}

// GetApplicationStats returns aggregate application statistics
// @Summary Application statistics
// @Tags applications
// @Produce json
// @Success 200 {object} repositories.ApplicationStats
// @Failure 403 {object} ErrorResponse
// @Router /applications/stats [get]
func (h *ApplicationHandler) GetApplicationStats(c *gin.Context) {
	h.LogRequest(c, "Getting application stats")

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

func (h *ApplicationHandler) parseApplicationFilters(c *gin.Context) repositories.ApplicationFilters {
	filters := repositories.ApplicationFilters{}
	filters.Limit, filters.Offset = h.parsePagination(c)
	filters.SortBy, filters.SortOrder = h.parseSort(c)

	if status := c.Query("status"); status != "" {
		s := models.ApplicationStatus(status)
		filters.Status = &s
	}

	return filters
}
