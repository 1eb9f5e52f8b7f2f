package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/campuslink/campus-service/internal/repositories"
	"github.com/campuslink/campus-service/internal/services"
	"github.com/campuslink/campus-service/internal/utils"
)

type AcademicHandler struct {
	BaseHandler
	service services.AcademicService
}

func NewAcademicHandler(service services.AcademicService, logger utils.Logger) *AcademicHandler {
	return &AcademicHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// ===== COURSES =====

// CreateCourse creates a course
// @Summary Create course
// @Tags academics
// @Accept json
// @Produce json
// @Param course body services.CreateCourseRequest true "Course data"
// @Success 201 {object} services.CourseResponse
// @Failure 403 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Duplicate course code"
// @Router /courses [post]
func (h *AcademicHandler) CreateCourse(c *gin.Context) {
	var req services.CreateCourseRequest
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

	course, err := h.service.CreateCourse(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, course)
}

// GetCourse retrieves a course by ID
// @Summary Get course
// @Tags academics
// @Produce json
// @Param id path uint true "Course ID"
// @Success 200 {object} services.CourseResponse
// @Failure 404 {object} ErrorResponse
// @Router /courses/{id} [get]
func (h *AcademicHandler) GetCourse(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	userID := h.requireUserID(c)
	if userID == "" {
		return
	}

	course, err := h.service.GetCourse(c.Request.Context(), id, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, course)
}

// UpdateCourse updates a course; owning faculty or overseer
// @Summary Update course
// @Tags academics
// @Accept json
// @Produce json
// @Param id path uint true "Course ID"
// @Param course body services.UpdateCourseRequest true "Fields to update"
// @Success 200 {object} services.CourseResponse
// @Failure 403 {object} ErrorResponse
// @Router /courses/{id} [put]
func (h *AcademicHandler) UpdateCourse(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.UpdateCourseRequest
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

	course, err := h.service.UpdateCourse(c.Request.Context(), id, &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, course)
}

// DeleteCourse removes a course
// @Summary Delete course
// @Tags academics
// @Param id path uint true "Course ID"
// @Success 204
// @Failure 403 {object} ErrorResponse
// @Router /courses/{id} [delete]
func (h *AcademicHandler) DeleteCourse(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	userID := h.requireUserID(c)
	if userID == "" {
		return
	}

	if err := h.service.DeleteCourse(c.Request.Context(), id, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListCourses lists courses with filtering
// @Summary List courses
// @Tags academics
// @Produce json
// @Param q query string false "Search in title and code"
// @Param department query string false "Filter by department"
// @Success 200 {object} services.CourseListResponse
// @Router /courses [get]
func (h *AcademicHandler) ListCourses(c *gin.Context) {
	userID := h.requireUserID(c)
	if userID == "" {
		return
	}

	filters := repositories.CourseFilters{}
	filters.Limit, filters.Offset = h.parsePagination(c)
	filters.SortBy, filters.SortOrder = h.parseSort(c)
	if query := c.Query("q"); query != "" {
		filters.Query = &query
	}
	if department := c.Query("department"); department != "" {
		filters.Department = &department
	}
	if facultyID := c.Query("faculty_id"); facultyID != "" {
		filters.FacultyID = &facultyID
	}

	courses, err := h.service.ListCourses(c.Request.Context(), filters, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, courses)
}

// ===== RESOURCES =====

// AddResource attaches a material reference to a course
// @Summary Add course resource
// @Tags academics
// @Accept json
// @Produce json
// @Param id path uint true "Course ID"
// @Param resource body services.CreateResourceRequest true "Resource data"
// @Success 201 {object} models.Resource
// @Failure 403 {object} ErrorResponse
// @Router /courses/{id}/resources [post]
func (h *AcademicHandler) AddResource(c *gin.Context) {
	courseID := h.parseIDParam(c, "id")
	if courseID == 0 {
		return
	}

	var req services.CreateResourceRequest
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

	resource, err := h.service.AddResource(c.Request.Context(), courseID, &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resource)
}

// GetResources lists a course's resources
// @Summary List course resources
// @Tags academics
// @Produce json
// @Param id path uint true "Course ID"
// @Success 200 {array} models.Resource
// @Failure 404 {object} ErrorResponse
// @Router /courses/{id}/resources [get]
func (h *AcademicHandler) GetResources(c *gin.Context) {
	courseID := h.parseIDParam(c, "id")
	if courseID == 0 {
		return
	}

	userID := h.requireUserID(c)
	if userID == "" {
		return
	}

	resources, err := h.service.GetResources(c.Request.Context(), courseID, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resources)
}

// DeleteResource removes a course resource
// @Summary Delete course resource
// @Tags academics
// @Param id path uint true "Resource ID"
// @Success 204
// @Failure 403 {object} ErrorResponse
// @Router /resources/{id} [delete]
func (h *AcademicHandler) DeleteResource(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	userID := h.requireUserID(c)
	if userID == "" {
		return
	}

	if err := h.service.DeleteResource(c.Request.Context(), id, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ===== ENROLLMENT =====

// Enroll adds the caller to a course; students only
// @Summary Enroll in course
// @Tags academics
// @Param id path uint true "Course ID"
// @Success 204
// @Failure 403 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Already enrolled"
// @Router /courses/{id}/enroll [post]
func (h *AcademicHandler) Enroll(c *gin.Context) {
	courseID := h.parseIDParam(c, "id")
	if courseID == 0 {
		return
	}

	userID := h.requireUserID(c)
	if userID == "" {
		return
	}

	if err := h.service.Enroll(c.Request.Context(), courseID, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Unenroll removes the caller from a course
// @Summary Unenroll from course
// @Tags academics
// @Param id path uint true "Course ID"
// @Success 204
// @Failure 409 {object} ErrorResponse "Not enrolled"
// @Router /courses/{id}/enroll [delete]
func (h *AcademicHandler) Unenroll(c *gin.Context) {
	courseID := h.parseIDParam(c, "id")
	if courseID == 0 {
		return
	}

	userID := h.requireUserID(c)
	if userID == "" {
		return
	}

	if err := h.service.Unenroll(c.Request.Context(), courseID, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// GetMyEnrollments lists the caller's enrollments
// @Summary List own enrollments
// @Tags academics
// @Produce json
// @Success 200 {array} models.Enrollment
// @Router /enrollments/me [get]
func (h *AcademicHandler) GetMyEnrollments(c *gin.Context) {
	userID := h.requireUserID(c)
	if userID == "" {
		return
	}

	enrollments, err := h.service.GetEnrollments(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, enrollments)
}

// ===== CALENDAR =====

// CreateEvent creates a calendar event; global when no course is given
// @Summary Create academic event
// @Tags academics
// @Accept json
// @Produce json
// @Param event body services.CreateEventRequest true "Event data"
// @Success 201 {object} models.AcademicEvent
// @Failure 403 {object} ErrorResponse
// @Router /calendar/events [post]
func (h *AcademicHandler) CreateEvent(c *gin.Context) {
	var req services.CreateEventRequest
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

	event, err := h.service.CreateEvent(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, event)
}

// UpdateEvent updates a calendar event; creator or overseer
// @Summary Update academic event
// @Tags academics
// @Accept json
// @Produce json
// @Param id path uint true "Event ID"
// @Param event body services.UpdateEventRequest true "Fields to update"
// @Success 200 {object} models.AcademicEvent
// @Failure 403 {object} ErrorResponse
// @Router /calendar/events/{id} [put]
func (h *AcademicHandler) UpdateEvent(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.UpdateEventRequest
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

	event, err := h.service.UpdateEvent(c.Request.Context(), id, &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, event)
}

// DeleteEvent removes a calendar event
// @Summary Delete academic event
// @Tags academics
// @Param id path uint true "Event ID"
// @Success 204
// @Failure 403 {object} ErrorResponse
// @Router /calendar/events/{id} [delete]
func (h *AcademicHandler) DeleteEvent(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	userID := h.requireUserID(c)
	if userID == "" {
		return
	}

	if err := h.service.DeleteEvent(c.Request.Context(), id, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// GetCalendar returns the events visible to the caller
// @Summary Get calendar
// @Tags academics
// @Produce json
// @Param course_id query uint false "Filter by course"
// @Param date_from query string false "RFC3339 lower bound on start time"
// @Param date_to query string false "RFC3339 upper bound on start time"
// @Success 200 {array} models.AcademicEvent
// @Router /calendar [get]
func (h *AcademicHandler) GetCalendar(c *gin.Context) {
	userID := h.requireUserID(c)
	if userID == "" {
		return
	}

	filters := repositories.EventFilters{}
	filters.Limit, filters.Offset = h.parsePagination(c)
	if raw := c.Query("course_id"); raw != "" {
		if id, err := strconv.ParseUint(raw, 10, 32); err == nil {
			courseID := uint(id)
			filters.CourseID = &courseID
		}
	}
	filters.DateFrom = h.parseDateQuery(c, "date_from")
	filters.DateTo = h.parseDateQuery(c, "date_to")

	events, err := h.service.GetCalendar(c.Request.Context(), userID, filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, events)
}
