package postgres

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/campuslink/campus-service/internal/models"
	"github.com/campuslink/campus-service/internal/repositories"
)

// DashboardPostgreSQL implements the DashboardRepository interface
type DashboardPostgreSQL struct {
	db      *gorm.DB
	helpers *SharedHelpers
}

func NewDashboardPostgreSQL(db *gorm.DB) repositories.DashboardRepository {
	return &DashboardPostgreSQL{
		db:      db,
		helpers: NewSharedHelpers(db),
	}
}

// GetStats aggregates the admin dashboard counters in one pass
func (d *DashboardPostgreSQL) GetStats(ctx context.Context, tx *gorm.DB) (*repositories.DashboardStats, error) {
	db := d.getDB(tx)
	stats := &repositories.DashboardStats{}

	var open int64
	if err := db.WithContext(ctx).Model(&models.Grievance{}).
		Where("status IN ?", []models.GrievanceStatus{models.GrievancePending, models.GrievanceInProgress}).
		Count(&open).Error; err != nil {
		return nil, fmt.Errorf("failed to count open grievances: %w", err)
	}
	stats.OpenGrievances = int(open)

	var resolved int64
	if err := db.WithContext(ctx).Model(&models.Grievance{}).
		Where("status = ?", models.GrievanceResolved).
		Count(&resolved).Error; err != nil {
		return nil, fmt.Errorf("failed to count resolved grievances: %w", err)
	}
	stats.ResolvedGrievances = int(resolved)

	now := time.Now()
	var activeOpportunities, activeInternships int64
	if err := db.WithContext(ctx).Model(&models.Opportunity{}).
		Where("deadline IS NULL OR deadline > ?", now).
		Count(&activeOpportunities).Error; err != nil {
		return nil, fmt.Errorf("failed to count opportunities: %w", err)
	}
	if err := db.WithContext(ctx).Model(&models.Internship{}).
		Where("deadline IS NULL OR deadline > ?", now).
		Count(&activeInternships).Error; err != nil {
		return nil, fmt.Errorf("failed to count internships: %w", err)
	}
	stats.ActivePostings = int(activeOpportunities + activeInternships)

	var pendingApplications int64
	if err := db.WithContext(ctx).Model(&models.Application{}).
		Where("status IN ?", []models.ApplicationStatus{models.ApplicationApplied, models.ApplicationShortlisted}).
		Count(&pendingApplications).Error; err != nil {
		return nil, fmt.Errorf("failed to count pending applications: %w", err)
	}
	stats.PendingApplications = int(pendingApplications)

	var students int64
	if err := db.WithContext(ctx).Model(&models.User{}).
		Where("role = ?", models.RoleStudent).
		Count(&students).Error; err != nil {
		return nil, fmt.Errorf("failed to count students: %w", err)
	}
	stats.RegisteredStudents = int(students)

	blocked, err := d.helpers.CountUsersByStatus(ctx, models.AccountBlocked)
	if err != nil {
		return nil, fmt.Errorf("failed to count blocked accounts: %w", err)
	}
	stats.BlockedAccounts = int(blocked)

	return stats, nil
}

// getDB returns the transaction DB if provided, otherwise returns the default DB
func (d *DashboardPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return d.db
}
