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

// grievanceService implements the GrievanceService interface
type grievanceService struct {
	repo      repositories.Repository
	logger    utils.Logger
	validator *validator.Validator
	notifier  NotificationService
}

// NewGrievanceService creates the grievance service
func NewGrievanceService(repo repositories.Repository, logger utils.Logger, v *validator.Validator, notifier NotificationService) GrievanceService {
	return &grievanceService{
		repo:      repo,
		logger:    logger,
		validator: v,
		notifier:  notifier,
	}
}

// Create submits a new grievance. The status is always pending on
// creation regardless of what the client sends.
func (s *grievanceService) Create(ctx context.Context, req *CreateGrievanceRequest, userID string) (*GrievanceResponse, error) {
	s.logger.Info("creating grievance", "user_id", userID, "category", req.Category)

	if errs := s.validator.GetBusinessValidator().ValidateGrievanceCreate(req); len(errs) > 0 {
		return nil, errs
	}

	caller, err := resolveCaller(ctx, s.repo, userID)
	if err != nil {
		return nil, err
	}
	if err := authorize(caller, false, authz.ResourceGrievance, authz.ActionCreate, 0); err != nil {
		return nil, err
	}

	priority := req.Priority
	if priority == "" {
		priority = models.PriorityNormal
	}

	grievance := &models.Grievance{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Priority:    priority,
		Status:      models.GrievancePending,
		SubmittedBy: caller.ID,
	}
	if len(req.Attachments) > 0 {
		grievance.Attachments = toJSON(req.Attachments)
	}

	if err := s.repo.Grievance().Create(ctx, nil, grievance); err != nil {
		return nil, fmt.Errorf("failed to create grievance: %w", err)
	}

	if err := s.notifier.NotifyGrievanceCreated(ctx, grievance); err != nil {
		s.logger.Warn("grievance created but notification failed", "grievance_id", grievance.ID, "error", err)
	}

	s.logger.Info("grievance created", "grievance_id", grievance.ID, "user_id", userID)
	return s.getResponse(ctx, grievance.ID, caller)
}

// GetByID returns a single grievance; owners see their own, overseers
// see any.
func (s *grievanceService) GetByID(ctx context.Context, id uint, userID string) (*GrievanceResponse, error) {
	caller, err := resolveCaller(ctx, s.repo, userID)
	if err != nil {
		return nil, err
	}

	grievance, err := s.getGrievance(ctx, id)
	if err != nil {
		return nil, err
	}

	isOwner := grievance.SubmittedBy == caller.ID
	if err := authorize(caller, isOwner, authz.ResourceGrievance, authz.ActionRead, id); err != nil {
		return nil, err
	}

	return s.toResponse(grievance, caller), nil
}

// Update applies owner edits to content fields. Status never changes
// here; transitions go through UpdateStatus.
func (s *grievanceService) Update(ctx context.Context, id uint, req *UpdateGrievanceRequest, userID string) (*GrievanceResponse, error) {
	s.logger.Info("updating grievance", "grievance_id", id, "user_id", userID)

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	caller, err := resolveCaller(ctx, s.repo, userID)
	if err != nil {
		return nil, err
	}

	grievance, err := s.getGrievance(ctx, id)
	if err != nil {
		return nil, err
	}

	isOwner := grievance.SubmittedBy == caller.ID
	if err := authorize(caller, isOwner, authz.ResourceGrievance, authz.ActionUpdate, id); err != nil {
		return nil, err
	}

	if grievance.Status.IsTerminal() {
		return nil, NewConflictError("grievance", fmt.Sprintf("cannot edit a grievance that is %s", grievance.Status))
	}

	if req.Title != nil {
		grievance.Title = *req.Title
	}
	if req.Description != nil {
		grievance.Description = *req.Description
	}
	if req.Category != nil {
		grievance.Category = *req.Category
	}
	if req.Priority != nil {
		grievance.Priority = *req.Priority
	}
	if req.Attachments != nil {
		grievance.Attachments = toJSON(req.Attachments)
	}

	if err := s.repo.Grievance().Update(ctx, nil, grievance); err != nil {
		return nil, fmt.Errorf("failed to update grievance: %w", err)
	}

	s.logger.Info("grievance updated", "grievance_id", id)
	return s.getResponse(ctx, id, caller)
}

// UpdateStatus performs an overseer status transition. A remark is
// required when moving into a terminal state.
func (s *grievanceService) UpdateStatus(ctx context.Context, id uint, req *GrievanceStatusRequest, userID string) (*GrievanceResponse, error) {
	s.logger.Info("updating grievance status", "grievance_id", id, "user_id", userID, "target_status", req.Status)

	caller, err := resolveCaller(ctx, s.repo, userID)
	if err != nil {
		return nil, err
	}
	if err := authorize(caller, false, authz.ResourceGrievance, authz.ActionUpdateStatus, id); err != nil {
		return nil, err
	}

	grievance, err := s.getGrievance(ctx, id)
	if err != nil {
		return nil, err
	}

	if errs := s.validator.GetBusinessValidator().ValidateGrievanceStatus(req, grievance); len(errs) > 0 {
		return nil, errs
	}

	previous := grievance.Status
	grievance.Status = req.Status
	if req.Remark != nil {
		grievance.Remark = req.Remark
	}
	if req.AssigneeID != nil {
		grievance.AssigneeID = req.AssigneeID
	}

	if err := s.repo.Grievance().Update(ctx, nil, grievance); err != nil {
		return nil, fmt.Errorf("failed to update grievance status: %w", err)
	}

	if err := s.notifier.NotifyGrievanceStatusChanged(ctx, grievance, previous); err != nil {
		s.logger.Warn("status changed but notification failed", "grievance_id", id, "error", err)
	}

	s.logger.Info("grievance status updated", "grievance_id", id, "from", previous, "to", grievance.Status)
	return s.getResponse(ctx, id, caller)
}

// Delete removes a grievance; overseers only.
func (s *grievanceService) Delete(ctx context.Context, id uint, userID string) error {
	s.logger.Info("deleting grievance", "grievance_id", id, "user_id", userID)

	caller, err := resolveCaller(ctx, s.repo, userID)
	if err != nil {
		return err
	}
	if err := authorize(caller, false, authz.ResourceGrievance, authz.ActionDelete, id); err != nil {
		return err
	}

	if _, err := s.getGrievance(ctx, id); err != nil {
		return err
	}

	if err := s.repo.Grievance().Delete(ctx, nil, id); err != nil {
		return fmt.Errorf("failed to delete grievance: %w", err)
	}

	s.logger.Info("grievance deleted", "grievance_id", id)
	return nil
}

// List returns all grievances matching the filters; overseers only.
func (s *grievanceService) List(ctx context.Context, filters repositories.GrievanceFilters, userID string) (*GrievanceListResponse, error) {
	caller, err := resolveCaller(ctx, s.repo, userID)
	if err != nil {
		return nil, err
	}
	if err := authorize(caller, false, authz.ResourceGrievance, authz.ActionReadAll, 0); err != nil {
		return nil, err
	}

	grievances, total, err := s.repo.Grievance().List(ctx, nil, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list grievances: %w", err)
	}

	return s.toListResponse(grievances, total, filters, caller), nil
}

// GetMine returns the caller's own grievances.
func (s *grievanceService) GetMine(ctx context.Context, userID string, filters repositories.GrievanceFilters) (*GrievanceListResponse, error) {
	caller, err := resolveCaller(ctx, s.repo, userID)
	if err != nil {
		return nil, err
	}
	if caller.IsBlocked() {
		return nil, ErrAccountBlocked
	}

	grievances, total, err := s.repo.Grievance().GetByOwner(ctx, nil, caller.ID, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list own grievances: %w", err)
	}

	return s.toListResponse(grievances, total, filters, caller), nil
}

// GetStats returns aggregate grievance statistics; overseers only.
func (s *grievanceService) GetStats(ctx context.Context, userID string) (*repositories.GrievanceStats, error) {
	caller, err := resolveCaller(ctx, s.repo, userID)
	if err != nil {
		return nil, err
	}
	if err := authorize(caller, false, authz.ResourceGrievance, authz.ActionReadAll, 0); err != nil {
		return nil, err
	}

	stats, err := s.repo.Grievance().GetStats(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get grievance stats: %w", err)
	}
	return stats, nil
}

func (s *grievanceService) getGrievance(ctx context.Context, id uint) (*models.Grievance, error) {
	grievance, err := s.repo.Grievance().GetByIDWithRefs(ctx, nil, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGrievanceNotFound
		}
		return nil, fmt.Errorf("failed to get grievance: %w", err)
	}
	return grievance, nil
}

func (s *grievanceService) getResponse(ctx context.Context, id uint, caller *models.User) (*GrievanceResponse, error) {
	grievance, err := s.getGrievance(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.toResponse(grievance, caller), nil
}

func (s *grievanceService) toResponse(grievance *models.Grievance, caller *models.User) *GrievanceResponse {
	isOwner := grievance.SubmittedBy == caller.ID
	return &GrievanceResponse{
		Grievance:       grievance,
		CanEdit:         isOwner && !grievance.Status.IsTerminal(),
		CanUpdateStatus: !grievance.Status.IsTerminal() && authz.Can(caller, false, authz.ResourceGrievance, authz.ActionUpdateStatus),
	}
}

func (s *grievanceService) toListResponse(grievances []*models.Grievance, total int64, filters repositories.GrievanceFilters, caller *models.User) *GrievanceListResponse {
	items := make([]*GrievanceResponse, 0, len(grievances))
	for _, g := range grievances {
		items = append(items, s.toResponse(g, caller))
	}

	return &GrievanceListResponse{
		Grievances: items,
		Total:      total,
		Page:       pageOf(filters.Limit, filters.Offset),
		Size:       len(items),
	}
}
