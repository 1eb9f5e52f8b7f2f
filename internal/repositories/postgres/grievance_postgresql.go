package postgres

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/campuslink/campus-service/internal/cache"
	"github.com/campuslink/campus-service/internal/models"
	"github.com/campuslink/campus-service/internal/repositories"
)

// GrievancePostgreSQL implements the GrievanceRepository interface
type GrievancePostgreSQL struct {
	db           *gorm.DB
	helpers      *SharedHelpers
	cacheManager *cache.CacheManager
}

func NewGrievancePostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.GrievanceRepository {
	return &GrievancePostgreSQL{
		db:           db,
		helpers:      NewSharedHelpers(db),
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

func (g *GrievancePostgreSQL) Create(ctx context.Context, tx *gorm.DB, grievance *models.Grievance) error {
	db := g.getDB(tx)
	if err := db.WithContext(ctx).Create(grievance).Error; err != nil {
		return fmt.Errorf("failed to create grievance: %w", err)
	}

	cache.InvalidateGrievanceCache(ctx, g.cacheManager, grievance.ID, grievance.SubmittedBy)
	return nil
}

func (g *GrievancePostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Grievance, error) {
	db := g.getDB(tx)
	cacheKey := fmt.Sprintf("id:%d", id)
	var grievance models.Grievance

	err := g.cacheManager.Grievance.CacheOrExecute(ctx, cacheKey, &grievance, cache.GrievanceCacheConfig.TTL, func() (interface{}, error) {
		var dbGrievance models.Grievance
		if err := db.WithContext(ctx).First(&dbGrievance, id).Error; err != nil {
			return nil, err
		}
		return &dbGrievance, nil
	})

	if err != nil {
		return nil, err
	}
	return &grievance, nil
}

func (g *GrievancePostgreSQL) GetByIDWithRefs(ctx context.Context, tx *gorm.DB, id uint) (*models.Grievance, error) {
	db := g.getDB(tx)
	var grievance models.Grievance
	if err := db.WithContext(ctx).
		Preload("Submitter").
		Preload("Assignee").
		First(&grievance, id).Error; err != nil {
		return nil, err
	}
	return &grievance, nil
}

func (g *GrievancePostgreSQL) Update(ctx context.Context, tx *gorm.DB, grievance *models.Grievance) error {
	db := g.getDB(tx)
	if err := db.WithContext(ctx).Save(grievance).Error; err != nil {
		return fmt.Errorf("failed to update grievance: %w", err)
	}

	cache.InvalidateGrievanceCache(ctx, g.cacheManager, grievance.ID, grievance.SubmittedBy)
	return nil
}

func (g *GrievancePostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	db := g.getDB(tx)
	if err := db.WithContext(ctx).Delete(&models.Grievance{}, id).Error; err != nil {
		return fmt.Errorf("failed to delete grievance: %w", err)
	}

	cache.SafeDelete(ctx, g.cacheManager.Grievance, fmt.Sprintf("id:%d", id), fmt.Sprintf("details:%d", id))
	cache.SafeInvalidatePattern(ctx, g.cacheManager.Grievance, "list:*")
	cache.SafeInvalidatePattern(ctx, g.cacheManager.Stats, "grievance:*")
	return nil
}

func (g *GrievancePostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.GrievanceFilters) ([]*models.Grievance, int64, error) {
	db := g.getDB(tx)
	var grievances []*models.Grievance
	var total int64

	// apply filters first
	query := db.WithContext(ctx).Model(&models.Grievance{})
	query = g.applyFilters(query, filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// then apply pagination and sorting
	query = g.helpers.ApplyPaginationAndSort(query, filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset)

	if err := query.Preload("Submitter").Preload("Assignee").Find(&grievances).Error; err != nil {
		return nil, 0, err
	}

	return grievances, total, nil
}

func (g *GrievancePostgreSQL) GetByOwner(ctx context.Context, tx *gorm.DB, ownerID string, filters repositories.GrievanceFilters) ([]*models.Grievance, int64, error) {
	filters.SubmittedBy = &ownerID
	return g.List(ctx, tx, filters)
}

func (g *GrievancePostgreSQL) GetStats(ctx context.Context, tx *gorm.DB) (*repositories.GrievanceStats, error) {
	db := g.getDB(tx)
	cacheKey := "grievance:summary"
	var stats repositories.GrievanceStats

	err := g.cacheManager.Stats.CacheOrExecute(ctx, cacheKey, &stats, cache.StatsCacheConfig.TTL, func() (interface{}, error) {
		return g.computeStats(ctx, db)
	})

	if err != nil {
		return nil, err
	}
	return &stats, nil
}

func (g *GrievancePostgreSQL) computeStats(ctx context.Context, db *gorm.DB) (*repositories.GrievanceStats, error) {
	stats := &repositories.GrievanceStats{
		ByStatus:   make(map[models.GrievanceStatus]int),
		ByCategory: make(map[models.GrievanceCategory]int),
	}

	var total int64
	if err := db.WithContext(ctx).Model(&models.Grievance{}).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count grievances: %w", err)
	}
	stats.Total = int(total)

	var statusRows []struct {
		Status models.GrievanceStatus
		Count  int
	}
	if err := db.WithContext(ctx).Model(&models.Grievance{}).
		Select("status, count(*) as count").
		Group("status").
		Scan(&statusRows).Error; err != nil {
		return nil, fmt.Errorf("failed to count grievances by status: %w", err)
	}
	for _, row := range statusRows {
		stats.ByStatus[row.Status] = row.Count
	}

	var categoryRows []struct {
		Category models.GrievanceCategory
		Count    int
	}
	if err := db.WithContext(ctx).Model(&models.Grievance{}).
		Select("category, count(*) as count").
		Group("category").
		Scan(&categoryRows).Error; err != nil {
		return nil, fmt.Errorf("failed to count grievances by category: %w", err)
	}
	for _, row := range categoryRows {
		stats.ByCategory[row.Category] = row.Count
	}

	// Average resolution time over resolved grievances
	var avgHours *float64
	if err := db.WithContext(ctx).Model(&models.Grievance{}).
		Select("avg(extract(epoch from updated_at - created_at) / 3600)").
		Where("status = ?", models.GrievanceResolved).
		Scan(&avgHours).Error; err != nil {
		return nil, fmt.Errorf("failed to compute resolution time: %w", err)
	}
	if avgHours != nil {
		stats.AvgResolutionHours = *avgHours
	}

	return stats, nil
}

// applyFilters applies common filters to a query
func (g *GrievancePostgreSQL) applyFilters(query *gorm.DB, filters repositories.GrievanceFilters) *gorm.DB {
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.Category != nil {
		query = query.Where("category = ?", *filters.Category)
	}
	if filters.Priority != nil {
		query = query.Where("priority = ?", *filters.Priority)
	}
	if filters.SubmittedBy != nil {
		query = query.Where("submitted_by = ?", *filters.SubmittedBy)
	}
	if filters.AssigneeID != nil {
		query = query.Where("assignee_id = ?", *filters.AssigneeID)
	}
	if filters.DateFrom != nil {
		query = query.Where("created_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("created_at <= ?", *filters.DateTo)
	}
	return query
}

// getDB returns the transaction DB if provided, otherwise returns the default DB
func (g *GrievancePostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return g.db
}
