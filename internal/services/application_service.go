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

// applicationService implements the ApplicationService interface
type applicationService struct {
	repo      repositories.Repository
	logger    utils.Logger
	validator *validator.Validator
	notifier  NotificationService
}

// NewApplicationService creates the application service
func NewApplicationService(repo repositories.Repository, logger utils.Logger, v *validator.Validator, notifier NotificationService) ApplicationService {
	return &applicationService{
		repo:      repo,
		logger:    logger,
		validator: v,
		notifier:  notifier,
	}
}

// Apply submits a student application to exactly one posting. A second
// application to the same posting is rejected with a conflict; the
// composite unique index closes the race the pre-check leaves open.
func (s *applicationService) Apply(ctx context.Context, req *CreateApplicationRequest, studentID string) (*ApplicationResponse, error) {
	s.logger.Info("creating application", "student_id", studentID,
		"opportunity_id", req.OpportunityID, "internship_id", req.InternshipID)

	if errs := s.validator.GetBusinessValidator().ValidateApplicationCreate(req); len(errs) > 0 {
		return nil, errs
	}

	caller, err := resolveCaller(ctx, s.repo, studentID)
	if err != nil {
		return nil, err
	}
	if err := authorize(caller, false, authz.ResourceApplication, authz.ActionCreate, 0); err != nil {
		return nil, err
	}

	posterID, err := s.checkParentOpen(ctx, req.OpportunityID, req.InternshipID)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.Application().GetByParentAndStudent(ctx, nil, req.OpportunityID, req.InternshipID, caller.ID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check for existing application: %w", err)
	}
	if existing != nil {
		return nil, NewConflictError("application", "already applied to this posting")
	}

	application := &models.Application{
		OpportunityID: req.OpportunityID,
		InternshipID:  req.InternshipID,
		StudentID:     caller.ID,
		ResumeURL:     req.ResumeURL,
		Status:        models.ApplicationApplied,
	}
	if len(req.Answers) > 0 {
		application.Answers = toJSON(req.Answers)
	}

	if err := s.repo.Application().Create(ctx, nil, application); err != nil {
		if repositories.IsDuplicateError(err) {
			return nil, NewConflictError("application", "already applied to this posting")
		}
		return nil, fmt.Errorf("failed to create application: %w", err)
	}

	created, err := s.getApplication(ctx, application.ID)
	if err != nil {
		return nil, err
	}

	if err := s.notifier.NotifyApplicationReceived(ctx, created, posterID); err != nil {
		s.logger.Warn("application created but notification failed", "application_id", created.ID, "error", err)
	}

	s.logger.Info("application created", "application_id", created.ID, "student_id", studentID)
	return s.toResponse(created), nil
}

// GetByID returns one application. The student who applied, the parent
// posting's owner, and admins may read it.
func (s *applicationService) GetByID(ctx context.Context, id uint, userID string) (*ApplicationResponse, error) {
	caller, err := resolveCaller(ctx, s.repo, userID)
	if err != nil {
		return nil, err
	}

	application, err := s.getApplication(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.authorizeReview(caller, application, authz.ActionRead, id); err != nil {
		return nil, err
	}

	return s.toResponse(application), nil
}

// UpdateStatus moves an application through its review lifecycle. Only
// the parent posting's owner or an admin may review.
func (s *applicationService) UpdateStatus(ctx context.Context, id uint, req *ApplicationStatusRequest, userID string) (*ApplicationResponse, error) {
	s.logger.Info("updating application status", "application_id", id, "user_id", userID, "target_status", req.Status)

	caller, err := resolveCaller(ctx, s.repo, userID)
	if err != nil {
		return nil, err
	}

	application, err := s.getApplication(ctx, id)
	if err != nil {
		return nil, err
	}

	if application.IsOrphaned() {
		return nil, NewConflictError("application", "posting no longer exists")
	}

	if err := s.authorizeReview(caller, application, authz.ActionUpdateStatus, id); err != nil {
		return nil, err
	}

	if errs := s.validator.GetBusinessValidator().ValidateApplicationStatus(req, application); len(errs) > 0 {
		return nil, errs
	}

	application.Status = req.Status
	if err := s.repo.Application().Update(ctx, nil, application); err != nil {
		return nil, fmt.Errorf("failed to update application status: %w", err)
	}

	if err := s.notifier.NotifyApplicationStatusChanged(ctx, application); err != nil {
		s.logger.Warn("status changed but notification failed", "application_id", id, "error", err)
	}

	s.logger.Info("application status updated", "application_id", id, "status", application.Status)
	return s.toResponse(application), nil
}

// GetMine returns the caller's own applications, including orphaned
// ones whose parent posting was deleted.
func (s *applicationService) GetMine(ctx context.Context, studentID string, filters repositories.ApplicationFilters) (*ApplicationListResponse, error) {
	caller, err := resolveCaller(ctx, s.repo, studentID)
	if err != nil {
		return nil, err
	}
	if caller.IsBlocked() {
		return nil, ErrAccountBlocked
	}

	applications, total, err := s.repo.Application().GetByStudent(ctx, nil, caller.ID, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list own applications: %w", err)
	}

	return s.toListResponse(applications, total, filters), nil
}

// ListByPosting returns the applications for one posting; the posting
// owner or an admin only.
func (s *applicationService) ListByPosting(ctx context.Context, opportunityID, internshipID *uint, filters repositories.ApplicationFilters, userID string) (*ApplicationListResponse, error) {
	caller, err := resolveCaller(ctx, s.repo, userID)
	if err != nil {
		return nil, err
	}

	posterID, err := s.getParentPoster(ctx, opportunityID, internshipID)
	if err != nil {
		return nil, err
	}

	isPosterOwner := posterID == caller.ID
	if err := authorize(caller, isPosterOwner, authz.ResourceApplication, authz.ActionReadAll, 0); err != nil {
		return nil, err
	}

	filters.OpportunityID = opportunityID
	filters.InternshipID = internshipID

	applications, total, err := s.repo.Application().List(ctx, nil, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}

	return s.toListResponse(applications, total, filters), nil
}

// GetStats returns aggregate application statistics; admins only.
func (s *applicationService) GetStats(ctx context.Context, userID string) (*repositories.ApplicationStats, error) {
	caller, err := resolveCaller(ctx, s.repo, userID)
	if err != nil {
		return nil, err
	}
	if err := authorize(caller, false, authz.ResourceApplication, authz.ActionReadAll, 0); err != nil {
		return nil, err
	}

	stats, err := s.repo.Application().GetStats(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get application stats: %w", err)
	}
	return stats, nil
}

// checkParentOpen verifies the target posting exists and its deadline
// has not passed, returning the poster id for notification routing.
func (s *applicationService) checkParentOpen(ctx context.Context, opportunityID, internshipID *uint) (string, error) {
	switch {
	case opportunityID != nil:
		opportunity, err := s.repo.Opportunity().GetByID(ctx, nil, *opportunityID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return "", ErrOpportunityNotFound
			}
			return "", fmt.Errorf("failed to get opportunity: %w", err)
		}
		if !postingOpen(opportunity.Deadline) {
			return "", NewConflictError("application", "posting deadline has passed")
		}
		return opportunity.PostedBy, nil

	case internshipID != nil:
		internship, err := s.repo.Internship().GetByID(ctx, nil, *internshipID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return "", ErrInternshipNotFound
			}
			return "", fmt.Errorf("failed to get internship: %w", err)
		}
		if !postingOpen(internship.Deadline) {
			return "", NewConflictError("application", "posting deadline has passed")
		}
		return internship.PostedBy, nil
	}

	return "", ErrOpportunityNotFound
}

func (s *applicationService) getParentPoster(ctx context.Context, opportunityID, internshipID *uint) (string, error) {
	switch {
	case opportunityID != nil:
		opportunity, err := s.repo.Opportunity().GetByID(ctx, nil, *opportunityID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return "", ErrOpportunityNotFound
			}
			return "", fmt.Errorf("failed to get opportunity: %w", err)
		}
		return opportunity.PostedBy, nil

	case internshipID != nil:
		internship, err := s.repo.Internship().GetByID(ctx, nil, *internshipID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return "", ErrInternshipNotFound
			}
			return "", fmt.Errorf("failed to get internship: %w", err)
		}
		return internship.PostedBy, nil
	}

	return "", ErrOpportunityNotFound
}

// authorizeReview grants access to the applying student (read only),
// the parent posting's owner, or an admin.
func (s *applicationService) authorizeReview(caller *models.User, application *models.Application, action authz.Action, id uint) error {
	if caller.IsBlocked() {
		return ErrAccountBlocked
	}

	isStudentOwner := application.StudentID == caller.ID
	isPosterOwner := false
	if application.Opportunity != nil {
		isPosterOwner = application.Opportunity.PostedBy == caller.ID
	} else if application.Internship != nil {
		isPosterOwner = application.Internship.PostedBy == caller.ID
	}

	if action == authz.ActionRead && authz.Can(caller, isStudentOwner, authz.ResourceApplication, authz.ActionRead) {
		return nil
	}
	if authz.Can(caller, isPosterOwner, authz.ResourceApplication, authz.ActionReadAll) && action == authz.ActionRead {
		return nil
	}
	if action == authz.ActionUpdateStatus && authz.Can(caller, isPosterOwner, authz.ResourceApplication, authz.ActionUpdateStatus) {
		return nil
	}

	return NewPermissionError(caller.ID, id, string(authz.ResourceApplication), string(action), "not the applicant, posting owner or admin")
}

func (s *applicationService) getApplication(ctx context.Context, id uint) (*models.Application, error) {
	application, err := s.repo.Application().GetByIDWithRefs(ctx, nil, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrApplicationNotFound
		}
		return nil, fmt.Errorf("failed to get application: %w", err)
	}
	return application, nil
}

func (s *applicationService) toResponse(application *models.Application) *ApplicationResponse {
	return &ApplicationResponse{
		Application: application,
		Orphaned:    application.IsOrphaned(),
	}
}

func (s *applicationService) toListResponse(applications []*models.Application, total int64, filters repositories.ApplicationFilters) *ApplicationListResponse {
	items := make([]*ApplicationResponse, 0, len(applications))
	for _, a := range applications {
		items = append(items, s.toResponse(a))
	}

	return &ApplicationListResponse{
		Applications: items,
		Total:        total,
		Page:         pageOf(filters.Limit, filters.Offset),
		Size:         len(items),
	}
}
