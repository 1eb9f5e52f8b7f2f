package services

import (
	"context"
	"fmt"

	"github.com/campuslink/campus-service/internal/authz"
	"github.com/campuslink/campus-service/internal/repositories"
	"github.com/campuslink/campus-service/internal/utils"
)

// dashboardService implements the DashboardService interface
type dashboardService struct {
	repo   repositories.Repository
	logger utils.Logger
}

// NewDashboardService creates the dashboard service
func NewDashboardService(repo repositories.Repository, logger utils.Logger) DashboardService {
	return &dashboardService{
		repo:   repo,
		logger: logger,
	}
}

// GetStats returns the admin dashboard counters; overseers only.
func (s *dashboardService) GetStats(ctx context.Context, userID string) (*repositories.DashboardStats, error) {
	caller, err := resolveCaller(ctx, s.repo, userID)
	if err != nil {
		return nil, err
	}
	if err := authorize(caller, false, authz.ResourceGrievance, authz.ActionReadAll, 0); err != nil {
		return nil, err
	}

	stats, err := s.repo.Dashboard().GetStats(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get dashboard stats: %w", err)
	}
	return stats, nil
}
