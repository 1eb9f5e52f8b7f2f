package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campuslink/campus-service/internal/models"
	"github.com/campuslink/campus-service/internal/repositories"
	"github.com/campuslink/campus-service/internal/services"
	"github.com/campuslink/campus-service/internal/utils"
)

type UserHandler struct {
	BaseHandler
	service services.UserService
}

func NewUserHandler(service services.UserService, logger utils.Logger) *UserHandler {
	return &UserHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// GetMyProfile returns the caller's own profile
// @Summary Get own profile
// @Tags users
// @Produce json
// @Success 200 {object} models.User
// @Router /users/me [get]
func (h *UserHandler) GetMyProfile(c *gin.Context) {
	userID := h.requireUserID(c)
	if userID == "" {
		return
	}

	user, err := h.service.GetProfile(c.Request.Context(), userID, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// UpdateMyProfile edits the caller's own profile fields
// @Summary Update own profile
// @Tags users
// @Accept json
// @Produce json
// @Param profile body services.UpdateProfileRequest true "Profile fields"
// @Success 200 {object} models.User
// @Failure 400 {object} ErrorResponse
// @Router /users/me [put]
func (h *UserHandler) UpdateMyProfile(c *gin.Context) {
	var req services.UpdateProfileRequest
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

	user, err := h.service.UpdateProfile(c.Request.Context(), userID, &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// GetUser retrieves a user's profile; self or overseer
// @Summary Get user
// @Tags users
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} models.User
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /users/{id} [get]
func (h *UserHandler) GetUser(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Missing user id"})
		return
	}

	userID := h.requireUserID(c)
	if userID == "" {
		return
	}

	user, err := h.service.GetProfile(c.Request.Context(), id, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// ListUsers lists user accounts; admin only
// @Summary List users
// @Tags users
// @Produce json
// @Param role query string false "Filter by role"
// @Param status query string false "Filter by account status"
// @Param q query string false "Search in name and email"
// @Success 200 {object} services.UserListResponse
// @Failure 403 {object} ErrorResponse
// @Router /users [get]
func (h *UserHandler) ListUsers(c *gin.Context) {
	userID := h.requireUserID(c)
	if userID == "" {
		return
	}

	filters := repositories.UserFilters{}
	filters.Limit, filters.Offset = h.parsePagination(c)
	if role := c.Query("role"); role != "" {
		r := models.UserRole(role)
		filters.Role = &r
	}
	if status := c.Query("status"); status != "" {
		s := models.AccountStatus(status)
		filters.Status = &s
	}
	filters.Query = c.Query("q")

	users, err := h.service.List(c.Request.Context(), filters, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, users)
}

// UpdateUserGovernance changes a user's role or account status; admin
// only, never on the caller's own account
// @Summary Update user role/status
// @Tags users
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param governance body services.UserGovernanceRequest true "Role and status changes"
// @Success 200 {object} models.User
// @Failure 403 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Self-change"
// @Router /users/{id}/governance [put]
func (h *UserHandler) UpdateUserGovernance(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Missing user id"})
		return
	}

	var req services.UserGovernanceRequest
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

	user, err := h.service.UpdateGovernance(c.Request.Context(), id, &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// DeleteUser removes a user account; admin only
// @Summary Delete user
// @Tags users
// @Param id path string true "User ID"
// @Success 204
// @Failure 403 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Self-delete"
// @Router /users/{id} [delete]
func (h *UserHandler) DeleteUser(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Missing user id"})
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

// ===== DOMAIN ALLOW-LIST =====

// AddDomain registers an email domain for self-registration
// @Summary Add allowed domain
// @Tags domains
// @Accept json
// @Produce json
// @Param domain body services.CreateDomainRequest true "Domain data"
// @Success 201 {object} models.AllowedDomain
// @Failure 403 {object} ErrorResponse
// @Router /domains [post]
func (h *UserHandler) AddDomain(c *gin.Context) {
	var req services.CreateDomainRequest
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

	domain, err := h.service.AddDomain(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, domain)
}

// ListDomains lists the domain allow-list
// @Summary List allowed domains
// @Tags domains
// @Produce json
// @Success 200 {array} models.AllowedDomain
// @Failure 403 {object} ErrorResponse
// @Router /domains [get]
func (h *UserHandler) ListDomains(c *gin.Context) {
	userID := h.requireUserID(c)
	if userID == "" {
		return
	}

	domains, err := h.service.ListDomains(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, domains)
}

// UpdateDomain toggles a domain's privileged flag
// @Summary Update allowed domain
// @Tags domains
// @Accept json
// @Produce json
// @Param id path uint true "Domain ID"
// @Param domain body services.UpdateDomainRequest true "Fields to update"
// @Success 200 {object} models.AllowedDomain
// @Failure 403 {object} ErrorResponse
// @Router /domains/{id} [put]
func (h *UserHandler) UpdateDomain(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.UpdateDomainRequest
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

	domain, err := h.service.UpdateDomain(c.Request.Context(), id, &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, domain)
}

// RemoveDomain deletes a domain from the allow-list
// @Summary Remove allowed domain
// @Tags domains
// @Param id path uint true "Domain ID"
// @Success 204
// @Failure 403 {object} ErrorResponse
// @Router /domains/{id} [delete]
func (h *UserHandler) RemoveDomain(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	userID := h.requireUserID(c)
	if userID == "" {
		return
	}

	if err := h.service.RemoveDomain(c.Request.Context(), id, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
