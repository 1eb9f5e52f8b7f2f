package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/campuslink/campus-service/internal/authz"
	"github.com/campuslink/campus-service/internal/models"
	"github.com/campuslink/campus-service/internal/repositories"
	"github.com/campuslink/campus-service/internal/utils"
	"github.com/campuslink/campus-service/internal/validator"
)

// userService implements the UserService interface. It owns the
// governance records (role, status) and the email-domain allow-list;
// credentials live in the external identity provider.
type userService struct {
	repo      repositories.Repository
	logger    utils.Logger
	validator *validator.Validator
}

// NewUserService creates the user service
func NewUserService(repo repositories.Repository, logger utils.Logger, v *validator.Validator) UserService {
	return &userService{
		repo:      repo,
		logger:    logger,
		validator: v,
	}
}

// EnsureUser resolves the governance record for an authenticated
// identity, creating it on first login. The email domain must be on
// the allow-list; a privileged domain yields the admin role.
func (s *userService) EnsureUser(ctx context.Context, id, email, fullName string) (*models.User, error) {
	user, err := s.repo.User().GetByID(ctx, nil, id)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	email = strings.ToLower(strings.TrimSpace(email))
	at := strings.LastIndex(email, "@")
	if at < 0 || at == len(email)-1 {
		return nil, NewPermissionError(id, 0, string(authz.ResourceUser), string(authz.ActionCreate), "invalid email address")
	}
	domainName := email[at+1:]

	domain, err := s.repo.Domain().GetByName(ctx, nil, domainName)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Warn("registration rejected, domain not allowed", "user_id", id, "domain", domainName)
			return nil, NewPermissionError(id, 0, string(authz.ResourceUser), string(authz.ActionCreate), "email domain is not allowed")
		}
		return nil, fmt.Errorf("failed to check domain: %w", err)
	}

	role := models.RoleStudent
	if domain.Privileged {
		role = models.RoleAdmin
	}

	user = &models.User{
		ID:       id,
		FullName: fullName,
		Email:    email,
		Role:     role,
		Status:   models.AccountActive,
	}

	if err := s.repo.User().Create(ctx, nil, user); err != nil {
		if repositories.IsDuplicateError(err) {
			return nil, NewConflictError("user", "email already registered")
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("user registered", "user_id", id, "role", role, "domain", domainName)
	return user, nil
}

// GetProfile returns a user record; own profile or overseer.
func (s *userService) GetProfile(ctx context.Context, id string, callerID string) (*models.User, error) {
	caller, err := resolveCaller(ctx, s.repo, callerID)
	if err != nil {
		return nil, err
	}

	isOwner := id == caller.ID
	if err := authorize(caller, isOwner, authz.ResourceUser, authz.ActionRead, 0); err != nil {
		return nil, err
	}

	return s.getUser(ctx, id)
}

// UpdateProfile applies self-service edits. Role and status never
// change here; those are governance fields.
func (s *userService) UpdateProfile(ctx context.Context, id string, req *UpdateProfileRequest, callerID string) (*models.User, error) {
	s.logger.Info("updating profile", "user_id", id, "caller_id", callerID)

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	caller, err := resolveCaller(ctx, s.repo, callerID)
	if err != nil {
		return nil, err
	}

	isOwner := id == caller.ID
	if err := authorize(caller, isOwner, authz.ResourceUser, authz.ActionUpdate, 0); err != nil {
		return nil, err
	}

	user, err := s.getUser(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.FullName != nil {
		user.FullName = *req.FullName
	}
	if req.Department != nil {
		user.Department = req.Department
	}
	if req.AvatarURL != nil {
		user.AvatarURL = req.AvatarURL
	}

	if err := s.repo.User().Update(ctx, nil, user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	s.logger.Info("profile updated", "user_id", id)
	return user, nil
}

// List returns user governance records; admins only.
func (s *userService) List(ctx context.Context, filters repositories.UserFilters, callerID string) (*UserListResponse, error) {
	caller, err := resolveCaller(ctx, s.repo, callerID)
	if err != nil {
		return nil, err
	}
	if err := authorize(caller, false, authz.ResourceUser, authz.ActionReadAll, 0); err != nil {
		return nil, err
	}

	users, total, err := s.repo.User().List(ctx, nil, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	return &UserListResponse{
		Users: users,
		Total: total,
		Page:  pageOf(filters.Limit, filters.Offset),
		Size:  len(users),
	}, nil
}

// UpdateGovernance changes a user's role or account status; admins
// only, never on the admin's own record.
func (s *userService) UpdateGovernance(ctx context.Context, id string, req *UserGovernanceRequest, callerID string) (*models.User, error) {
	s.logger.Info("updating user governance", "user_id", id, "caller_id", callerID)

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	caller, err := resolveCaller(ctx, s.repo, callerID)
	if err != nil {
		return nil, err
	}
	if err := authorize(caller, false, authz.ResourceUser, authz.ActionUpdateStatus, 0); err != nil {
		return nil, err
	}

	if id == caller.ID {
		return nil, NewConflictError("user", "cannot change your own role or status")
	}

	user, err := s.getUser(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Role != nil {
		user.Role = *req.Role
	}
	if req.Status != nil {
		user.Status = *req.Status
	}

	if err := s.repo.User().Update(ctx, nil, user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	s.logger.Info("user governance updated", "user_id", id, "role", user.Role, "status", user.Status)
	return user, nil
}

// Delete removes a governance record; admins only, never their own.
func (s *userService) Delete(ctx context.Context, id string, callerID string) error {
	s.logger.Info("deleting user", "user_id", id, "caller_id", callerID)

	caller, err := resolveCaller(ctx, s.repo, callerID)
	if err != nil {
		return err
	}
	if err := authorize(caller, false, authz.ResourceUser, authz.ActionDelete, 0); err != nil {
		return err
	}

	if id == caller.ID {
		return NewConflictError("user", "cannot delete your own account")
	}

	if _, err := s.getUser(ctx, id); err != nil {
		return err
	}

	if err := s.repo.User().Delete(ctx, nil, id); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	s.logger.Info("user deleted", "user_id", id)
	return nil
}

// ===== DOMAIN ALLOW-LIST =====

func (s *userService) AddDomain(ctx context.Context, req *CreateDomainRequest, callerID string) (*models.AllowedDomain, error) {
	s.logger.Info("adding allowed domain", "domain", req.Domain, "caller_id", callerID)

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	caller, err := resolveCaller(ctx, s.repo, callerID)
	if err != nil {
		return nil, err
	}
	if err := authorize(caller, false, authz.ResourceDomain, authz.ActionCreate, 0); err != nil {
		return nil, err
	}

	domain := &models.AllowedDomain{
		Domain:     strings.ToLower(req.Domain),
		Privileged: req.Privileged,
		CreatedBy:  caller.ID,
	}

	if err := s.repo.Domain().Create(ctx, nil, domain); err != nil {
		if repositories.IsDuplicateError(err) {
			return nil, NewConflictError("domain", "domain already allowed")
		}
		return nil, fmt.Errorf("failed to create domain: %w", err)
	}

	s.logger.Info("allowed domain added", "domain_id", domain.ID, "domain", domain.Domain)
	return domain, nil
}

func (s *userService) ListDomains(ctx context.Context, callerID string) ([]*models.AllowedDomain, error) {
	caller, err := resolveCaller(ctx, s.repo, callerID)
	if err != nil {
		return nil, err
	}
	if err := authorize(caller, false, authz.ResourceDomain, authz.ActionReadAll, 0); err != nil {
		return nil, err
	}

	domains, err := s.repo.Domain().List(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list domains: %w", err)
	}
	return domains, nil
}

func (s *userService) UpdateDomain(ctx context.Context, id uint, req *UpdateDomainRequest, callerID string) (*models.AllowedDomain, error) {
	s.logger.Info("updating allowed domain", "domain_id", id, "caller_id", callerID)

	caller, err := resolveCaller(ctx, s.repo, callerID)
	if err != nil {
		return nil, err
	}
	if err := authorize(caller, false, authz.ResourceDomain, authz.ActionUpdate, id); err != nil {
		return nil, err
	}

	domain, err := s.getDomain(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Privileged != nil {
		domain.Privileged = *req.Privileged
	}

	if err := s.repo.Domain().Update(ctx, nil, domain); err != nil {
		return nil, fmt.Errorf("failed to update domain: %w", err)
	}

	s.logger.Info("allowed domain updated", "domain_id", id, "privileged", domain.Privileged)
	return domain, nil
}

func (s *userService) RemoveDomain(ctx context.Context, id uint, callerID string) error {
	s.logger.Info("removing allowed domain", "domain_id", id, "caller_id", callerID)

	caller, err := resolveCaller(ctx, s.repo, callerID)
	if err != nil {
		return err
	}
	if err := authorize(caller, false, authz.ResourceDomain, authz.ActionDelete, id); err != nil {
		return err
	}

	if _, err := s.getDomain(ctx, id); err != nil {
		return err
	}

	if err := s.repo.Domain().Delete(ctx, nil, id); err != nil {
		return fmt.Errorf("failed to delete domain: %w", err)
	}

	s.logger.Info("allowed domain removed", "domain_id", id)
	return nil
}

// ===== HELPERS =====

func (s *userService) getUser(ctx context.Context, id string) (*models.User, error) {
	user, err := s.repo.User().GetByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (s *userService) getDomain(ctx context.Context, id uint) (*models.AllowedDomain, error) {
	domain, err := s.repo.Domain().GetByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDomainNotFound
		}
		return nil, fmt.Errorf("failed to get domain: %w", err)
	}
	return domain, nil
}
