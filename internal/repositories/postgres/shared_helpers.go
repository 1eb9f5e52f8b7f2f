package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/campuslink/campus-service/internal/models"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// SharedHelpers contains common database operations
type SharedHelpers struct {
	db *gorm.DB
}

func NewSharedHelpers(db *gorm.DB) *SharedHelpers {
	return &SharedHelpers{db: db}
}

// ApplyPaginationAndSort applies pagination and sorting with SQL injection protection
func (h *SharedHelpers) ApplyPaginationAndSort(query *gorm.DB, sortBy, sortOrder string, limit, offset int) *gorm.DB {
	// Whitelist allowed sort columns
	allowedSortColumns := map[string]bool{
		"created_at": true,
		"updated_at": true,
		"id":         true,
		"title":      true,
		"status":     true,
		"priority":   true,
		"deadline":   true,
		"starts_at":  true,
		"code":       true,
	}

	if sortBy == "" || !allowedSortColumns[sortBy] {
		sortBy = "created_at"
	}

	if sortOrder != "asc" && sortOrder != "ASC" {
		sortOrder = "DESC"
	} else {
		sortOrder = "ASC"
	}

	query = query.Order(sortBy + " " + sortOrder)

	// Cap page size; a missing limit falls back to the default page.
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	query = query.Limit(limit)
	if offset > 0 {
		query = query.Offset(offset)
	}

	return query
}

// CountGrievancesByStatus counts grievances in a given status
func (h *SharedHelpers) CountGrievancesByStatus(ctx context.Context, status models.GrievanceStatus) (int64, error) {
	var count int64
	err := h.db.WithContext(ctx).
		Model(&models.Grievance{}).
		Where("status = ?", status).
		Count(&count).Error
	return count, err
}

// CountApplicationsByStatus counts applications in a given status
func (h *SharedHelpers) CountApplicationsByStatus(ctx context.Context, status models.ApplicationStatus) (int64, error) {
	var count int64
	err := h.db.WithContext(ctx).
		Model(&models.Application{}).
		Where("status = ?", status).
		Count(&count).Error
	return count, err
}

// CountUsersByStatus counts governance records in a given account status
func (h *SharedHelpers) CountUsersByStatus(ctx context.Context, status models.AccountStatus) (int64, error) {
	var count int64
	err := h.db.WithContext(ctx).
		Model(&models.User{}).
		Where("status = ?", status).
		Count(&count).Error
	return count, err
}
