package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/campuslink/campus-service/internal/authz"
	"github.com/campuslink/campus-service/internal/events"
	"github.com/campuslink/campus-service/internal/models"
	"github.com/campuslink/campus-service/internal/repositories"
	"github.com/campuslink/campus-service/internal/utils"
	"github.com/campuslink/campus-service/internal/validator"
)

// postingService implements the PostingService interface for both
// opportunities and internships. The two share creation rules and
// differ only in the duration field and the parent type used by
// applications.
type postingService struct {
	repo      repositories.Repository
	logger    utils.Logger
	validator *validator.Validator
	notifier  NotificationService
}

// NewPostingService creates the posting service
func NewPostingService(repo repositories.Repository, logger utils.Logger, v *validator.Validator, notifier NotificationService) PostingService {
	return &postingService{
		repo:      repo,
		logger:    logger,
		validator: v,
		notifier:  notifier,
	}
}

// ===== OPPORTUNITIES =====

func (s *postingService) CreateOpportunity(ctx context.Context, req *CreatePostingRequest, userID string) (*OpportunityResponse, error) {
	s.logger.Info("creating opportunity", "user_id", userID, "title", req.Title)

	caller, err := s.authorizePostingCreate(ctx, req, userID, authz.ResourceOpportunity)
	if err != nil {
		return nil, err
	}

	opportunity := &models.Opportunity{
		Title:       req.Title,
		Description: req.Description,
		Company:     req.Company,
		Stipend:     req.Stipend,
		Location:    req.Location,
		Deadline:    req.Deadline,
		PostedBy:    caller.ID,
	}
	if len(req.Skills) > 0 {
		opportunity.Skills = toJSON(req.Skills)
	}

	if err := s.repo.Opportunity().Create(ctx, nil, opportunity); err != nil {
		return nil, fmt.Errorf("failed to create opportunity: %w", err)
	}

	if err := s.notifier.NotifyPostingCreated(ctx, events.OpportunityPosted, opportunity.Title, opportunity.ID); err != nil {
		s.logger.Warn("opportunity created but notification failed", "opportunity_id", opportunity.ID, "error", err)
	}

	s.logger.Info("opportunity created", "opportunity_id", opportunity.ID, "user_id", userID)
	return s.toOpportunityResponse(opportunity, caller), nil
}

func (s *postingService) GetOpportunity(ctx context.Context, id uint, userID string) (*OpportunityResponse, error) {
	caller, err := resolveCaller(ctx, s.repo, userID)
	if err != nil {
		return nil, err
	}
	if err := authorize(caller, false, authz.ResourceOpportunity, authz.ActionRead, id); err != nil {
		return nil, err
	}

	opportunity, err := s.getOpportunity(ctx, id)
	if err != nil {
		return nil, err
	}

	return s.toOpportunityResponse(opportunity, caller), nil
}

func (s *postingService) UpdateOpportunity(ctx context.Context, id uint, req *UpdatePostingRequest, userID string) (*OpportunityResponse, error) {
	s.logger.Info("updating opportunity", "opportunity_id", id, "user_id", userID)

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	caller, err := resolveCaller(ctx, s.repo, userID)
	if err != nil {
		return nil, err
	}

	opportunity, err := s.getOpportunity(ctx, id)
	if err != nil {
		return nil, err
	}

	isOwner := opportunity.PostedBy == caller.ID
	if err := authorize(caller, isOwner, authz.ResourceOpportunity, authz.ActionUpdate, id); err != nil {
		return nil, err
	}

	if req.Title != nil {
		opportunity.Title = *req.Title
	}
	if req.Description != nil {
		opportunity.Description = *req.Description
	}
	if req.Company != nil {
		opportunity.Company = req.Company
	}
	if req.Skills != nil {
		opportunity.Skills = toJSON(req.Skills)
	}
	if req.Stipend != nil {
		opportunity.Stipend = req.Stipend
	}
	if req.Location != nil {
		opportunity.Location = req.Location
	}
	if req.Deadline != nil {
		opportunity.Deadline = req.Deadline
	}

	if err := s.repo.Opportunity().Update(ctx, nil, opportunity); err != nil {
		return nil, fmt.Errorf("failed to update opportunity: %w", err)
	}

	s.logger.Info("opportunity updated", "opportunity_id", id)
	return s.toOpportunityResponse(opportunity, caller), nil
}

// DeleteOpportunity removes a posting. Existing applications are kept
// and become orphaned rather than being cascaded away.
func (s *postingService) DeleteOpportunity(ctx context.Context, id uint, userID string) error {
	s.logger.Info("deleting opportunity", "opportunity_id", id, "user_id", userID)

	caller, err := resolveCaller(ctx, s.repo, userID)
	if err != nil {
		return err
	}

	opportunity, err := s.getOpportunity(ctx, id)
	if err != nil {
		return err
	}

	isOwner := opportunity.PostedBy == caller.ID
	if err := authorize(caller, isOwner, authz.ResourceOpportunity, authz.ActionDelete, id); err != nil {
		return err
	}

	if err := s.repo.Opportunity().Delete(ctx, nil, id); err != nil {
		return fmt.Errorf("failed to delete opportunity: %w", err)
	}

	s.logger.Info("opportunity deleted", "opportunity_id", id)
	return nil
}

func (s *postingService) ListOpportunities(ctx context.Context, filters repositories.PostingFilters, userID string) (*OpportunityListResponse, error) {
	caller, err := resolveCaller(ctx, s.repo, userID)
	if err != nil {
		return nil, err
	}
	if err := authorize(caller, false, authz.ResourceOpportunity, authz.ActionRead, 0); err != nil {
		return nil, err
	}

	opportunities, total, err := s.repo.Opportunity().List(ctx, nil, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list opportunities: %w", err)
	}

	items := make([]*OpportunityResponse, 0, len(opportunities))
	for _, o := range opportunities {
		items = append(items, s.toOpportunityResponse(o, caller))
	}

	return &OpportunityListResponse{
		Opportunities: items,
		Total:         total,
		Page:          pageOf(filters.Limit, filters.Offset),
		Size:          len(items),
	}, nil
}

// ===== INTERNSHIPS =====

func (s *postingService) CreateInternship(ctx context.Context, req *CreatePostingRequest, userID string) (*InternshipResponse, error) {
	s.logger.Info("creating internship", "user_id", userID, "title", req.Title)

	caller, err := s.authorizePostingCreate(ctx, req, userID, authz.ResourceInternship)
	if err != nil {
		return nil, err
	}

	internship := &models.Internship{
		Title:       req.Title,
		Description: req.Description,
		Company:     req.Company,
		Stipend:     req.Stipend,
		Duration:    req.Duration,
		Location:    req.Location,
		Deadline:    req.Deadline,
		PostedBy:    caller.ID,
	}
	if len(req.Skills) > 0 {
		internship.Skills = toJSON(req.Skills)
	}

	if err := s.repo.Internship().Create(ctx, nil, internship); err != nil {
		return nil, fmt.Errorf("failed to create internship: %w", err)
	}

	if err := s.notifier.NotifyPostingCreated(ctx, events.InternshipPosted, internship.Title, internship.ID); err != nil {
		s.logger.Warn("internship created but notification failed", "internship_id", internship.ID, "error", err)
	}

	s.logger.Info("internship created", "internship_id", internship.ID, "user_id", userID)
	return s.toInternshipResponse(internship, caller), nil
}

func (s *postingService) GetInternship(ctx context.Context, id uint, userID string) (*InternshipResponse, error) {
	caller, err := resolveCaller(ctx, s.repo, userID)
	if err != nil {
		return nil, err
	}
	if err := authorize(caller, false, authz.ResourceInternship, authz.ActionRead, id); err != nil {
		return nil, err
	}

	internship, err := s.getInternship(ctx, id)
	if err != nil {
		return nil, err
	}

	return s.toInternshipResponse(internship, caller), nil
}

func (s *postingService) UpdateInternship(ctx context.Context, id uint, req *UpdatePostingRequest, userID string) (*InternshipResponse, error) {
	s.logger.Info("updating internship", "internship_id", id, "user_id", userID)

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	caller, err := resolveCaller(ctx, s.repo, userID)
	if err != nil {
		return nil, err
	}

	internship, err := s.getInternship(ctx, id)
	if err != nil {
		return nil, err
	}

	isOwner := internship.PostedBy == caller.ID
	if err := authorize(caller, isOwner, authz.ResourceInternship, authz.ActionUpdate, id); err != nil {
		return nil, err
	}

	if req.Title != nil {
		internship.Title = *req.Title
	}
	if req.Description != nil {
		internship.Description = *req.Description
	}
	if req.Company != nil {
		internship.Company = req.Company
	}
	if req.Skills != nil {
		internship.Skills = toJSON(req.Skills)
	}
	if req.Stipend != nil {
		internship.Stipend = req.Stipend
	}
	if req.Duration != nil {
		internship.Duration = req.Duration
	}
	if req.Location != nil {
		internship.Location = req.Location
	}
	if req.Deadline != nil {
		internship.Deadline = req.Deadline
	}

	if err := s.repo.Internship().Update(ctx, nil, internship); err != nil {
		return nil, fmt.Errorf("failed to update internship: %w", err)
	}

	s.logger.Info("internship updated", "internship_id", id)
	return s.toInternshipResponse(internship, caller), nil
}

func (s *postingService) DeleteInternship(ctx context.Context, id uint, userID string) error {
	s.logger.Info("deleting internship", "internship_id", id, "user_id", userID)

	caller, err := resolveCaller(ctx, s.repo, userID)
	if err != nil {
		return err
	}

	internship, err := s.getInternship(ctx, id)
	if err != nil {
		return err
	}

	isOwner := internship.PostedBy == caller.ID
	if err := authorize(caller, isOwner, authz.ResourceInternship, authz.ActionDelete, id); err != nil {
		return err
	}

	if err := s.repo.Internship().Delete(ctx, nil, id); err != nil {
		return fmt.Errorf("failed to delete internship: %w", err)
	}

	s.logger.Info("internship deleted", "internship_id", id)
	return nil
}

func (s *postingService) ListInternships(ctx context.Context, filters repositories.PostingFilters, userID string) (*InternshipListResponse, error) {
	caller, err := resolveCaller(ctx, s.repo, userID)
	if err != nil {
		return nil, err
	}
	if err := authorize(caller, false, authz.ResourceInternship, authz.ActionRead, 0); err != nil {
		return nil, err
	}

	internships, total, err := s.repo.Internship().List(ctx, nil, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list internships: %w", err)
	}

	items := make([]*InternshipResponse, 0, len(internships))
	for _, i := range internships {
		items = append(items, s.toInternshipResponse(i, caller))
	}

	return &InternshipListResponse{
		Internships: items,
		Total:       total,
		Page:        pageOf(filters.Limit, filters.Offset),
		Size:        len(items),
	}, nil
}

// ===== SHARED HELPERS =====

func (s *postingService) authorizePostingCreate(ctx context.Context, req *CreatePostingRequest, userID string, resource authz.Resource) (*models.User, error) {
	if errs := s.validator.GetBusinessValidator().ValidatePostingCreate(req); len(errs) > 0 {
		return nil, errs
	}

	caller, err := resolveCaller(ctx, s.repo, userID)
	if err != nil {
		return nil, err
	}
	if err := authorize(caller, false, resource, authz.ActionCreate, 0); err != nil {
		return nil, err
	}

	return caller, nil
}

func (s *postingService) getOpportunity(ctx context.Context, id uint) (*models.Opportunity, error) {
	opportunity, err := s.repo.Opportunity().GetByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOpportunityNotFound
		}
		return nil, fmt.Errorf("failed to get opportunity: %w", err)
	}
	return opportunity, nil
}

func (s *postingService) getInternship(ctx context.Context, id uint) (*models.Internship, error) {
	internship, err := s.repo.Internship().GetByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInternshipNotFound
		}
		return nil, fmt.Errorf("failed to get internship: %w", err)
	}
	return internship, nil
}

func (s *postingService) toOpportunityResponse(opportunity *models.Opportunity, caller *models.User) *OpportunityResponse {
	isOwner := opportunity.PostedBy == caller.ID
	return &OpportunityResponse{
		Opportunity: opportunity,
		CanEdit:     authz.Can(caller, isOwner, authz.ResourceOpportunity, authz.ActionUpdate),
		CanApply:    caller.Role == models.RoleStudent && postingOpen(opportunity.Deadline),
	}
}

func (s *postingService) toInternshipResponse(internship *models.Internship, caller *models.User) *InternshipResponse {
	isOwner := internship.PostedBy == caller.ID
	return &InternshipResponse{
		Internship: internship,
		CanEdit:    authz.Can(caller, isOwner, authz.ResourceInternship, authz.ActionUpdate),
		CanApply:   caller.Role == models.RoleStudent && postingOpen(internship.Deadline),
	}
}

// postingOpen reports whether a posting still accepts applications. A
// missing deadline means the posting never closes.
func postingOpen(deadline *time.Time) bool {
	return deadline == nil || deadline.After(time.Now())
}
