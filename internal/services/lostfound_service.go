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

// lostFoundService implements the LostFoundService interface
type lostFoundService struct {
	repo      repositories.Repository
	logger    utils.Logger
	validator *validator.Validator
	notifier  NotificationService
}

// NewLostFoundService creates the lost and found service
func NewLostFoundService(repo repositories.Repository, logger utils.Logger, v *validator.Validator, notifier NotificationService) LostFoundService {
	return &lostFoundService{
		repo:      repo,
		logger:    logger,
		validator: v,
		notifier:  notifier,
	}
}

func (s *lostFoundService) Create(ctx context.Context, req *CreateLostFoundRequest, userID string) (*LostFoundResponse, error) {
	s.logger.Info("creating lost and found item", "user_id", userID, "title", req.Title)

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	caller, err := resolveCaller(ctx, s.repo, userID)
	if err != nil {
		return nil, err
	}
	if err := authorize(caller, false, authz.ResourceLostFound, authz.ActionCreate, 0); err != nil {
		return nil, err
	}

	status := req.Status
	if status == "" {
		status = models.ItemLost
	}
	if status == models.ItemClaimed {
		return nil, NewConflictError("lostfound", "items cannot be created as claimed")
	}

	item := &models.LostFoundItem{
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		ImageURL:    req.ImageURL,
		Status:      status,
		PostedBy:    caller.ID,
	}

	if err := s.repo.LostFound().Create(ctx, nil, item); err != nil {
		return nil, fmt.Errorf("failed to create item: %w", err)
	}

	s.logger.Info("lost and found item created", "item_id", item.ID, "user_id", userID)
	return s.toResponse(item, caller), nil
}

func (s *lostFoundService) GetByID(ctx context.Context, id uint, userID string) (*LostFoundResponse, error) {
	caller, err := resolveCaller(ctx, s.repo, userID)
	if err != nil {
		return nil, err
	}
	if err := authorize(caller, false, authz.ResourceLostFound, authz.ActionRead, id); err != nil {
		return nil, err
	}

	item, err := s.getItem(ctx, id)
	if err != nil {
		return nil, err
	}

	return s.toResponse(item, caller), nil
}

func (s *lostFoundService) Update(ctx context.Context, id uint, req *UpdateLostFoundRequest, userID string) (*LostFoundResponse, error) {
	s.logger.Info("updating lost and found item", "item_id", id, "user_id", userID)

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	caller, err := resolveCaller(ctx, s.repo, userID)
	if err != nil {
		return nil, err
	}

	item, err := s.getItem(ctx, id)
	if err != nil {
		return nil, err
	}

	isOwner := item.PostedBy == caller.ID
	if err := authorize(caller, isOwner, authz.ResourceLostFound, authz.ActionUpdate, id); err != nil {
		return nil, err
	}

	if req.Title != nil {
		item.Title = *req.Title
	}
	if req.Description != nil {
		item.Description = *req.Description
	}
	if req.Location != nil {
		item.Location = req.Location
	}
	if req.ImageURL != nil {
		item.ImageURL = req.ImageURL
	}
	if req.Status != nil {
		// Claiming goes through Claim so the claimer is recorded.
		if *req.Status == models.ItemClaimed {
			return nil, NewConflictError("lostfound", "use the claim operation to mark an item claimed")
		}
		item.Status = *req.Status
	}

	if err := s.repo.LostFound().Update(ctx, nil, item); err != nil {
		return nil, fmt.Errorf("failed to update item: %w", err)
	}

	s.logger.Info("lost and found item updated", "item_id", id)
	return s.toResponse(item, caller), nil
}

func (s *lostFoundService) Delete(ctx context.Context, id uint, userID string) error {
	s.logger.Info("deleting lost and found item", "item_id", id, "user_id", userID)

	caller, err := resolveCaller(ctx, s.repo, userID)
	if err != nil {
		return err
	}

	item, err := s.getItem(ctx, id)
	if err != nil {
		return err
	}

	isOwner := item.PostedBy == caller.ID
	if err := authorize(caller, isOwner, authz.ResourceLostFound, authz.ActionDelete, id); err != nil {
		return err
	}

	if err := s.repo.LostFound().Delete(ctx, nil, id); err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}

	s.logger.Info("lost and found item deleted", "item_id", id)
	return nil
}

func (s *lostFoundService) List(ctx context.Context, filters repositories.LostFoundFilters, userID string) (*LostFoundListResponse, error) {
	caller, err := resolveCaller(ctx, s.repo, userID)
	if err != nil {
		return nil, err
	}
	if err := authorize(caller, false, authz.ResourceLostFound, authz.ActionRead, 0); err != nil {
		return nil, err
	}

	items, total, err := s.repo.LostFound().List(ctx, nil, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}

	responses := make([]*LostFoundResponse, 0, len(items))
	for _, item := range items {
		responses = append(responses, s.toResponse(item, caller))
	}

	return &LostFoundListResponse{
		Items: responses,
		Total: total,
		Page:  pageOf(filters.Limit, filters.Offset),
		Size:  len(responses),
	}, nil
}

// Claim marks an item claimed by the caller. The poster cannot claim
// their own item and an item can only be claimed once.
func (s *lostFoundService) Claim(ctx context.Context, id uint, userID string) (*LostFoundResponse, error) {
	s.logger.Info("claiming lost and found item", "item_id", id, "user_id", userID)

	caller, err := resolveCaller(ctx, s.repo, userID)
	if err != nil {
		return nil, err
	}
	if err := authorize(caller, false, authz.ResourceLostFound, authz.ActionClaim, id); err != nil {
		return nil, err
	}

	item, err := s.getItem(ctx, id)
	if err != nil {
		return nil, err
	}

	if item.PostedBy == caller.ID {
		return nil, NewPermissionError(caller.ID, id, string(authz.ResourceLostFound), string(authz.ActionClaim), "cannot claim your own item")
	}
	if item.Status == models.ItemClaimed {
		return nil, NewConflictError("lostfound", "item is already claimed")
	}

	item.Status = models.ItemClaimed
	item.ClaimedBy = &caller.ID

	if err := s.repo.LostFound().Update(ctx, nil, item); err != nil {
		return nil, fmt.Errorf("failed to claim item: %w", err)
	}

	if err := s.notifier.NotifyItemClaimed(ctx, item); err != nil {
		s.logger.Warn("item claimed but notification failed", "item_id", id, "error", err)
	}

	s.logger.Info("lost and found item claimed", "item_id", id, "claimed_by", caller.ID)
	return s.toResponse(item, caller), nil
}

func (s *lostFoundService) getItem(ctx context.Context, id uint) (*models.LostFoundItem, error) {
	item, err := s.repo.LostFound().GetByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	return item, nil
}

func (s *lostFoundService) toResponse(item *models.LostFoundItem, caller *models.User) *LostFoundResponse {
	isOwner := item.PostedBy == caller.ID
	return &LostFoundResponse{
		LostFoundItem: item,
		CanEdit:       authz.Can(caller, isOwner, authz.ResourceLostFound, authz.ActionUpdate),
		CanClaim:      !isOwner && item.Status != models.ItemClaimed,
	}
}
