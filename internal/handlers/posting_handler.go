package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campuslink/campus-service/internal/repositories"
	"github.com/campuslink/campus-service/internal/services"
	"github.com/campuslink/campus-service/internal/utils"
)

// PostingHandler serves both opportunity and internship endpoints.
type PostingHandler struct {
	BaseHandler
	service services.PostingService
}

func NewPostingHandler(service services.PostingService, logger utils.Logger) *PostingHandler {
	return &PostingHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// ===== OPPORTUNITIES =====

// CreateOpportunity creates a job posting
// @Summary Create opportunity
// @Tags postings
// @Accept json
// @Produce json
// @Param posting body services.CreatePostingRequest true "Posting data"
// @Success 201 {object} services.OpportunityResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /opportunities [post]
func (h *PostingHandler) CreateOpportunity(c *gin.Context) {
	var req services.CreatePostingRequest
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

	opportunity, err := h.service.CreateOpportunity(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, opportunity)
}

// GetOpportunity retrieves an opportunity by ID
// @Summary Get opportunity
// @Tags postings
// @Produce json
// @Param id path uint true "Opportunity ID"
// @Success 200 {object} services.OpportunityResponse
// @Failure 404 {object} ErrorResponse
// @Router /opportunities/{id} [get]
func (h *PostingHandler) GetOpportunity(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	userID := h.requireUserID(c)
	if userID == "" {
		return
	}

	opportunity, err := h.service.GetOpportunity(c.Request.Context(), id, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, opportunity)
}

// UpdateOpportunity updates an opportunity; owner or admin
// @Summary Update opportunity
// @Tags postings
// @Accept json
// @Produce json
// @Param id path uint true "Opportunity ID"
// @Param posting body services.UpdatePostingRequest true "Fields to update"
// @Success 200 {object} services.OpportunityResponse
// @Failure 403 {object} ErrorResponse
// @Router /opportunities/{id} [put]
func (h *PostingHandler) UpdateOpportunity(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.UpdatePostingRequest
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

	opportunity, err := h.service.UpdateOpportunity(c.Request.Context(), id, &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, opportunity)
}

// DeleteOpportunity removes an opportunity; applications survive as
// orphaned records
// @Summary Delete opportunity
// @Tags postings
// @Param id path uint true "Opportunity ID"
// @Success 204
// @Failure 403 {object} ErrorResponse
// @Router /opportunities/{id} [delete]
func (h *PostingHandler) DeleteOpportunity(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	userID := h.requireUserID(c)
	if userID == "" {
		return
	}

	if err := h.service.DeleteOpportunity(c.Request.Context(), id, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListOpportunities lists opportunities with filtering
// @Summary List opportunities
// @Tags postings
// @Produce json
// @Param q query string false "Search in title and description"
// @Param open query bool false "Only postings still accepting applications"
// @Success 200 {object} services.OpportunityListResponse
// @Router /opportunities [get]
func (h *PostingHandler) ListOpportunities(c *gin.Context) {
	userID := h.requireUserID(c)
	if userID == "" {
		return
	}

	opportunities, err := h.service.ListOpportunities(c.Request.Context(), h.parsePostingFilters(c), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, opportunities)
}

// ===== INTERNSHIPS =====

// CreateInternship creates an internship posting
// @Summary Create internship
// @Tags postings
// @Accept json
// @Produce json
// @Param posting body services.CreatePostingRequest true "Posting data"
// @Success 201 {object} services.InternshipResponse
// @Failure 403 {object} ErrorResponse
// @Router /internships [post]
func (h *PostingHandler) CreateInternship(c *gin.Context) {
	var req services.CreatePostingRequest
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

	internship, err := h.service.CreateInternship(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, internship)
}

// GetInternship retrieves an internship by ID
// @Summary Get internship
// @Tags postings
// @Produce json
// @Param id path uint true "Internship ID"
// @Success 200 {object} services.InternshipResponse
// @Failure 404 {object} ErrorResponse
// @Router /internships/{id} [get]
func (h *PostingHandler) GetInternship(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	userID := h.requireUserID(c)
	if userID == "" {
		return
	}

	internship, err := h.service.GetInternship(c.Request.Context(), id, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, internship)
}

// UpdateInternship updates an internship; owner or admin
// @Summary Update internship
// @Tags postings
// @Accept json
// @Produce json
// @Param id path uint true "Internship ID"
// @Param posting body services.UpdatePostingRequest true "Fields to update"
// @Success 200 {object} services.InternshipResponse
// @Failure 403 {object} ErrorResponse
// @Router /internships/{id} [put]
func (h *PostingHandler) UpdateInternship(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.UpdatePostingRequest
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

	internship, err := h.service.UpdateInternship(c.Request.Context(), id, &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, internship)
}

// DeleteInternship removes an internship
// @Summary Delete internship
// @Tags postings
// @Param id path uint true "Internship ID"
// @Success 204
// @Failure 403 {object} ErrorResponse
// @Router /internships/{id} [delete]
func (h *PostingHandler) DeleteInternship(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	userID := h.requireUserID(c)
	if userID == "" {
		return
	}

	if err := h.service.DeleteInternship(c.Request.Context(), id, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListInternships lists internships with filtering
// @Summary List internships
// @Tags postings
// @Produce json
// @Param q query string false "Search in title and description"
// @Param open query bool false "Only postings still accepting applications"
// @Success 200 {object} services.InternshipListResponse
// @Router /internships [get]
func (h *PostingHandler) ListInternships(c *gin.Context) {
	userID := h.requireUserID(c)
	if userID == "" {
		return
	}

	internships, err := h.service.ListInternships(c.Request.Context(), h.parsePostingFilters(c), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, internships)
}

func (h *PostingHandler) parsePostingFilters(c *gin.Context) repositories.PostingFilters {
	filters := repositories.PostingFilters{}
	filters.Limit, filters.Offset = h.parsePagination(c)
	filters.SortBy, filters.SortOrder = h.parseSort(c)

	if query := c.Query("q"); query != "" {
		filters.Query = &query
	}
	if postedBy := c.Query("posted_by"); postedBy != "" {
		filters.PostedBy = &postedBy
	}
	filters.OpenOnly = c.Query("open") == "true"
	filters.DeadlineFrom = h.parseDateQuery(c, "deadline_from")

	return filters
}
