package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campuslink/campus-service/internal/models"
	"github.com/campuslink/campus-service/internal/repositories"
	"github.com/campuslink/campus-service/internal/services"
	"github.com/campuslink/campus-service/internal/utils"
)

type LostFoundHandler struct {
	BaseHandler
	service services.LostFoundService
}

func NewLostFoundHandler(service services.LostFoundService, logger utils.Logger) *LostFoundHandler {
	return &LostFoundHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// CreateItem posts a lost or found item
// @Summary Post lost/found item
// @Tags lostfound
// @Accept json
// @Produce json
// @Param item body services.CreateLostFoundRequest true "Item data"
// @Success 201 {object} services.LostFoundResponse
// @Failure 400 {object} ErrorResponse
// @Router /lostfound [post]
func (h *LostFoundHandler) CreateItem(c *gin.Context) {
	var req services.CreateLostFoundRequest
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

	item, err := h.service.Create(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, item)
}

// GetItem retrieves a lost/found item by ID
// @Summary Get lost/found item
// @Tags lostfound
// @Produce json
// @Param id path uint true "Item ID"
// @Success 200 {object} services.LostFoundResponse
// @Failure 404 {object} ErrorResponse
// @Router /lostfound/{id} [get]
func (h *LostFoundHandler) GetItem(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	userID := h.requireUserID(c)
	if userID == "" {
		return
	}

	item, err := h.service.GetByID(c.Request.Context(), id, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, item)
}

// UpdateItem edits an item; owner or admin. Claiming goes through the
// claim endpoint, not here.
// @Summary Update lost/found item
// @Tags lostfound
// @Accept json
// @Produce json
// @Param id path uint true "Item ID"
// @Param item body services.UpdateLostFoundRequest true "Fields to update"
// @Success 200 {object} services.LostFoundResponse
// @Failure 403 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /lostfound/{id} [put]
func (h *LostFoundHandler) UpdateItem(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.UpdateLostFoundRequest
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

	item, err := h.service.Update(c.Request.Context(), id, &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, item)
}

// DeleteItem removes a lost/found item
// @Summary Delete lost/found item
// @Tags lostfound
// @Param id path uint true "Item ID"
// @Success 204
// @Failure 403 {object} ErrorResponse
// @Router /lostfound/{id} [delete]
func (h *LostFoundHandler) DeleteItem(c *gin.Context) {
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

// ListItems lists lost/found items with filtering
// @Summary List lost/found items
// @Tags lostfound
// @Produce json
// @Param status query string false "Filter by status"
// @Param q query string false "Search in title and description"
// @Success 200 {object} services.LostFoundListResponse
// @Router /lostfound [get]
func (h *LostFoundHandler) ListItems(c *gin.Context) {
	userID := h.requireUserID(c)
	if userID == "" {
		return
	}

	filters := repositories.LostFoundFilters{}
	filters.Limit, filters.Offset = h.parsePagination(c)
	filters.SortBy, filters.SortOrder = h.parseSort(c)
	if status := c.Query("status"); status != "" {
		s := models.LostFoundStatus(status)
		filters.Status = &s
	}
	if postedBy := c.Query("posted_by"); postedBy != "" {
		filters.PostedBy = &postedBy
	}
	if query := c.Query("q"); query != "" {
		filters.Query = &query
	}

	items, err := h.service.List(c.Request.Context(), filters, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, items)
}

// ClaimItem marks an item claimed by the caller
// @Summary Claim lost/found item
// @Tags lostfound
// @Produce json
// @Param id path uint true "Item ID"
// @Success 200 {object} services.LostFoundResponse
// @Failure 403 {object} ErrorResponse "Own item"
// @Failure 409 {object} ErrorResponse "Already claimed"
// @Router /lostfound/{id}/claim [post]
func (h *LostFoundHandler) ClaimItem(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	userID := h.requireUserID(c)
	if userID == "" {
		return
	}

	item, err := h.service.Claim(c.Request.Context(), id, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, item)
}
