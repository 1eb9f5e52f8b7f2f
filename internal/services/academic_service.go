package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/campuslink/campus-service/internal/authz"
	"github.com/campuslink/campus-service/internal/models"
	"github.com/campuslink/campus-service/internal/repositories"
	"github.com/campuslink/campus-service/internal/utils"
	"github.com/campuslink/campus-service/internal/validator"
)

// academicService implements the AcademicService interface: courses,
// course resources, enrollment and the academic calendar.
type academicService struct {
	repo      repositories.Repository
	logger    utils.Logger
	validator *validator.Validator
}

// NewAcademicService creates the academic service
func NewAcademicService(repo repositories.Repository, logger utils.Logger, v *validator.Validator) AcademicService {
	return &academicService{
		repo:      repo,
		logger:    logger,
		validator: v,
	}
}

// ===== COURSES =====

func (s *academicService) CreateCourse(ctx context.Context, req *CreateCourseRequest, userID string) (*CourseResponse, error) {
	s.logger.Info("creating course", "user_id", userID, "code", req.Code)

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	caller, err := resolveCaller(ctx, s.repo, userID)
	if err != nil {
		return nil, err
	}
	if err := authorize(caller, false, authz.ResourceCourse, authz.ActionCreate, 0); err != nil {
		return nil, err
	}

	course := &models.Course{
		Code:        req.Code,
		Title:       req.Title,
		Description: req.Description,
		Department:  req.Department,
		FacultyID:   caller.ID,
	}

	if err := s.repo.Course().Create(ctx, nil, course); err != nil {
		if repositories.IsDuplicateError(err) {
			return nil, NewConflictError("course", "course code already exists")
		}
		return nil, fmt.Errorf("failed to create course: %w", err)
	}

	s.logger.Info("course created", "course_id", course.ID, "code", course.Code)
	return s.getCourseResponse(ctx, course.ID, caller)
}

func (s *academicService) GetCourse(ctx context.Context, id uint, userID string) (*CourseResponse, error) {
	caller, err := resolveCaller(ctx, s.repo, userID)
	if err != nil {
		return nil, err
	}
	if err := authorize(caller, false, authz.ResourceCourse, authz.ActionRead, id); err != nil {
		return nil, err
	}

	return s.getCourseResponse(ctx, id, caller)
}

func (s *academicService) UpdateCourse(ctx context.Context, id uint, req *UpdateCourseRequest, userID string) (*CourseResponse, error) {
	s.logger.Info("updating course", "course_id", id, "user_id", userID)

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	caller, err := resolveCaller(ctx, s.repo, userID)
	if err != nil {
		return nil, err
	}

	course, err := s.getCourse(ctx, id)
	if err != nil {
		return nil, err
	}

	isOwner := course.FacultyID == caller.ID
	if err := authorize(caller, isOwner, authz.ResourceCourse, authz.ActionUpdate, id); err != nil {
		return nil, err
	}

	if req.Title != nil {
		course.Title = *req.Title
	}
	if req.Description != nil {
		course.Description = req.Description
	}
	if req.Department != nil {
		course.Department = req.Department
	}

	if err := s.repo.Course().Update(ctx, nil, course); err != nil {
		return nil, fmt.Errorf("failed to update course: %w", err)
	}

	s.logger.Info("course updated", "course_id", id)
	return s.getCourseResponse(ctx, id, caller)
}

func (s *academicService) DeleteCourse(ctx context.Context, id uint, userID string) error {
	s.logger.Info("deleting course", "course_id", id, "user_id", userID)

	caller, err := resolveCaller(ctx, s.repo, userID)
	if err != nil {
		return err
	}

	course, err := s.getCourse(ctx, id)
	if err != nil {
		return err
	}

	isOwner := course.FacultyID == caller.ID
	if err := authorize(caller, isOwner, authz.ResourceCourse, authz.ActionDelete, id); err != nil {
		return err
	}

	if err := s.repo.Course().Delete(ctx, nil, id); err != nil {
		return fmt.Errorf("failed to delete course: %w", err)
	}

	s.logger.Info("course deleted", "course_id", id)
	return nil
}

func (s *academicService) ListCourses(ctx context.Context, filters repositories.CourseFilters, userID string) (*CourseListResponse, error) {
	caller, err := resolveCaller(ctx, s.repo, userID)
	if err != nil {
		return nil, err
	}
	if err := authorize(caller, false, authz.ResourceCourse, authz.ActionRead, 0); err != nil {
		return nil, err
	}

	courses, total, err := s.repo.Course().List(ctx, nil, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}

	courseIDs, err := s.repo.Enrollment().GetCourseIDs(ctx, nil, caller.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get enrollments: %w", err)
	}
	enrolled := make(map[uint]bool, len(courseIDs))
	for _, cid := range courseIDs {
		enrolled[cid] = true
	}

	items := make([]*CourseResponse, 0, len(courses))
	for _, c := range courses {
		items = append(items, s.toCourseResponse(c, caller, enrolled[c.ID]))
	}

	return &CourseListResponse{
		Courses: items,
		Total:   total,
		Page:    pageOf(filters.Limit, filters.Offset),
		Size:    len(items),
	}, nil
}

// ===== RESOURCES =====

// AddResource attaches a material reference to a course. Gated on the
// parent course's ownership for faculty callers.
func (s *academicService) AddResource(ctx context.Context, courseID uint, req *CreateResourceRequest, userID string) (*models.Resource, error) {
	s.logger.Info("adding course resource", "course_id", courseID, "user_id", userID)

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	caller, err := resolveCaller(ctx, s.repo, userID)
	if err != nil {
		return nil, err
	}

	course, err := s.getCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}

	isCourseOwner := course.FacultyID == caller.ID
	if err := authorize(caller, isCourseOwner, authz.ResourceCourseItem, authz.ActionCreate, courseID); err != nil {
		return nil, err
	}

	resource := &models.Resource{
		CourseID:   courseID,
		Title:      req.Title,
		Kind:       req.Kind,
		FileURL:    req.FileURL,
		UploadedBy: caller.ID,
	}

	if err := s.repo.Resource().Create(ctx, nil, resource); err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	s.logger.Info("resource added", "resource_id", resource.ID, "course_id", courseID)
	return resource, nil
}

func (s *academicService) GetResources(ctx context.Context, courseID uint, userID string) ([]*models.Resource, error) {
	caller, err := resolveCaller(ctx, s.repo, userID)
	if err != nil {
		return nil, err
	}
	if err := authorize(caller, false, authz.ResourceCourseItem, authz.ActionRead, courseID); err != nil {
		return nil, err
	}

	if _, err := s.getCourse(ctx, courseID); err != nil {
		return nil, err
	}

	resources, err := s.repo.Resource().GetByCourse(ctx, nil, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to get resources: %w", err)
	}
	return resources, nil
}

func (s *academicService) DeleteResource(ctx context.Context, id uint, userID string) error {
	s.logger.Info("deleting resource", "resource_id", id, "user_id", userID)

	caller, err := resolveCaller(ctx, s.repo, userID)
	if err != nil {
		return err
	}

	resource, err := s.repo.Resource().GetByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrResourceNotFound
		}
		return fmt.Errorf("failed to get resource: %w", err)
	}

	course, err := s.getCourse(ctx, resource.CourseID)
	if err != nil {
		return err
	}

	isOwner := resource.UploadedBy == caller.ID || course.FacultyID == caller.ID
	if err := authorize(caller, isOwner, authz.ResourceCourseItem, authz.ActionDelete, id); err != nil {
		return err
	}

	if err := s.repo.Resource().Delete(ctx, nil, id); err != nil {
		return fmt.Errorf("failed to delete resource: %w", err)
	}

	s.logger.Info("resource deleted", "resource_id", id)
	return nil
}

// ===== ENROLLMENT =====

// Enroll adds the caller to a course; students only. Enrolling twice
// in the same course is a conflict.
func (s *academicService) Enroll(ctx context.Context, courseID uint, studentID string) error {
	s.logger.Info("enrolling in course", "course_id", courseID, "student_id", studentID)

	caller, err := resolveCaller(ctx, s.repo, studentID)
	if err != nil {
		return err
	}
	if caller.IsBlocked() {
		return ErrAccountBlocked
	}
	if caller.Role != models.RoleStudent {
		return NewPermissionError(caller.ID, courseID, "enrollment", "create", "only students may enroll")
	}

	if _, err := s.getCourse(ctx, courseID); err != nil {
		return err
	}

	enrollment := &models.Enrollment{
		CourseID:  courseID,
		StudentID: caller.ID,
	}
	if err := s.repo.Enrollment().Create(ctx, nil, enrollment); err != nil {
		if repositories.IsDuplicateError(err) {
			return NewConflictError("enrollment", "already enrolled in this course")
		}
		return fmt.Errorf("failed to enroll: %w", err)
	}

	s.logger.Info("enrolled in course", "course_id", courseID, "student_id", studentID)
	return nil
}

func (s *academicService) Unenroll(ctx context.Context, courseID uint, studentID string) error {
	s.logger.Info("unenrolling from course", "course_id", courseID, "student_id", studentID)

	caller, err := resolveCaller(ctx, s.repo, studentID)
	if err != nil {
		return err
	}
	if caller.IsBlocked() {
		return ErrAccountBlocked
	}

	if err := s.repo.Enrollment().Delete(ctx, nil, courseID, caller.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NewConflictError("enrollment", "not enrolled in this course")
		}
		return fmt.Errorf("failed to unenroll: %w", err)
	}

	s.logger.Info("unenrolled from course", "course_id", courseID, "student_id", studentID)
	return nil
}

func (s *academicService) GetEnrollments(ctx context.Context, studentID string) ([]*models.Enrollment, error) {
	caller, err := resolveCaller(ctx, s.repo, studentID)
	if err != nil {
		return nil, err
	}
	if caller.IsBlocked() {
		return nil, ErrAccountBlocked
	}

	enrollments, err := s.repo.Enrollment().GetByStudent(ctx, nil, caller.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get enrollments: %w", err)
	}
	return enrollments, nil
}

// ===== CALENDAR =====

func (s *academicService) CreateEvent(ctx context.Context, req *CreateEventRequest, userID string) (*models.AcademicEvent, error) {
	s.logger.Info("creating academic event", "user_id", userID, "title", req.Title)

	if errs := s.validator.GetBusinessValidator().ValidateEventCreate(req); len(errs) > 0 {
		return nil, errs
	}

	caller, err := resolveCaller(ctx, s.repo, userID)
	if err != nil {
		return nil, err
	}
	if err := authorize(caller, false, authz.ResourceAcademicEvent, authz.ActionCreate, 0); err != nil {
		return nil, err
	}

	// A course-bound event requires control over that course.
	if req.CourseID != nil {
		course, err := s.getCourse(ctx, *req.CourseID)
		if err != nil {
			return nil, err
		}
		isCourseOwner := course.FacultyID == caller.ID
		if !isCourseOwner && !caller.Role.IsOverseer() {
			return nil, NewPermissionError(caller.ID, *req.CourseID, string(authz.ResourceAcademicEvent), string(authz.ActionCreate), "not the course owner")
		}
	}

	event := &models.AcademicEvent{
		Title:       req.Title,
		Description: req.Description,
		CourseID:    req.CourseID,
		StartsAt:    req.StartsAt,
		EndsAt:      req.EndsAt,
		CreatedBy:   caller.ID,
	}

	if err := s.repo.AcademicEvent().Create(ctx, nil, event); err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	s.logger.Info("academic event created", "event_id", event.ID)
	return event, nil
}

func (s *academicService) UpdateEvent(ctx context.Context, id uint, req *UpdateEventRequest, userID string) (*models.AcademicEvent, error) {
	s.logger.Info("updating academic event", "event_id", id, "user_id", userID)

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	caller, err := resolveCaller(ctx, s.repo, userID)
	if err != nil {
		return nil, err
	}

	event, err := s.getEvent(ctx, id)
	if err != nil {
		return nil, err
	}

	isOwner := event.CreatedBy == caller.ID
	if err := authorize(caller, isOwner, authz.ResourceAcademicEvent, authz.ActionUpdate, id); err != nil {
		return nil, err
	}

	if req.Title != nil {
		event.Title = *req.Title
	}
	if req.Description != nil {
		event.Description = req.Description
	}
	if req.StartsAt != nil {
		event.StartsAt = *req.StartsAt
	}
	if req.EndsAt != nil {
		event.EndsAt = req.EndsAt
	}
	if event.EndsAt != nil && event.EndsAt.Before(event.StartsAt) {
		return nil, NewConflictError("academic_event", "end time cannot be before start time")
	}

	if err := s.repo.AcademicEvent().Update(ctx, nil, event); err != nil {
		return nil, fmt.Errorf("failed to update event: %w", err)
	}

	s.logger.Info("academic event updated", "event_id", id)
	return event, nil
}

func (s *academicService) DeleteEvent(ctx context.Context, id uint, userID string) error {
	s.logger.Info("deleting academic event", "event_id", id, "user_id", userID)

	caller, err := resolveCaller(ctx, s.repo, userID)
	if err != nil {
		return err
	}

	event, err := s.getEvent(ctx, id)
	if err != nil {
		return err
	}

	isOwner := event.CreatedBy == caller.ID
	if err := authorize(caller, isOwner, authz.ResourceAcademicEvent, authz.ActionDelete, id); err != nil {
		return err
	}

	if err := s.repo.AcademicEvent().Delete(ctx, nil, id); err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}

	s.logger.Info("academic event deleted", "event_id", id)
	return nil
}

// GetCalendar returns the events visible to the caller: global events
// plus course events for the student's current enrollments, re-read on
// every call. Non-student roles see the full calendar.
func (s *academicService) GetCalendar(ctx context.Context, userID string, filters repositories.EventFilters) ([]*models.AcademicEvent, error) {
	caller, err := resolveCaller(ctx, s.repo, userID)
	if err != nil {
		return nil, err
	}
	if err := authorize(caller, false, authz.ResourceAcademicEvent, authz.ActionRead, 0); err != nil {
		return nil, err
	}

	if caller.Role != models.RoleStudent {
		events, _, err := s.repo.AcademicEvent().List(ctx, nil, filters)
		if err != nil {
			return nil, fmt.Errorf("failed to list events: %w", err)
		}
		return events, nil
	}

	courseIDs, err := s.repo.Enrollment().GetCourseIDs(ctx, nil, caller.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get enrollments: %w", err)
	}

	events, err := s.repo.AcademicEvent().GetVisible(ctx, nil, courseIDs, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to get calendar: %w", err)
	}
	return events, nil
}

// ===== HELPERS =====

func (s *academicService) getCourse(ctx context.Context, id uint) (*models.Course, error) {
	course, err := s.repo.Course().GetByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to get course: %w", err)
	}
	return course, nil
}

func (s *academicService) getEvent(ctx context.Context, id uint) (*models.AcademicEvent, error) {
	event, err := s.repo.AcademicEvent().GetByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	return event, nil
}

func (s *academicService) getCourseResponse(ctx context.Context, id uint, caller *models.User) (*CourseResponse, error) {
	course, err := s.repo.Course().GetByIDWithRefs(ctx, nil, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to get course: %w", err)
	}

	enrolled, err := s.repo.Enrollment().Exists(ctx, nil, id, caller.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check enrollment: %w", err)
	}

	return s.toCourseResponse(course, caller, enrolled), nil
}

func (s *academicService) toCourseResponse(course *models.Course, caller *models.User, enrolled bool) *CourseResponse {
	isOwner := course.FacultyID == caller.ID
	return &CourseResponse{
		Course:   course,
		CanEdit:  authz.Can(caller, isOwner, authz.ResourceCourse, authz.ActionUpdate),
		Enrolled: enrolled,
	}
}
