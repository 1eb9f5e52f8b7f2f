package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/campuslink/campus-service/internal/cache"
	"github.com/campuslink/campus-service/internal/models"
	"github.com/campuslink/campus-service/internal/repositories"
)

// ===== OPPORTUNITY REPOSITORY IMPLEMENTATION =====

// OpportunityPostgreSQL implements the OpportunityRepository interface
type OpportunityPostgreSQL struct {
	db           *gorm.DB
	helpers      *SharedHelpers
	cacheManager *cache.CacheManager
}

func NewOpportunityPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.OpportunityRepository {
	return &OpportunityPostgreSQL{
		db:           db,
		helpers:      NewSharedHelpers(db),
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

func (o *OpportunityPostgreSQL) Create(ctx context.Context, tx *gorm.DB, opportunity *models.Opportunity) error {
	db := o.getDB(tx)
	if err := db.WithContext(ctx).Create(opportunity).Error; err != nil {
		return fmt.Errorf("failed to create opportunity: %w", err)
	}

	cache.InvalidatePostingCache(ctx, o.cacheManager, "opportunity", opportunity.ID, opportunity.PostedBy)
	return nil
}

func (o *OpportunityPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Opportunity, error) {
	db := o.getDB(tx)
	cacheKey := fmt.Sprintf("opportunity:id:%d", id)
	var opportunity models.Opportunity

	err := o.cacheManager.Posting.CacheOrExecute(ctx, cacheKey, &opportunity, cache.PostingCacheConfig.TTL, func() (interface{}, error) {
		var dbOpportunity models.Opportunity
		if err := db.WithContext(ctx).Preload("Poster").First(&dbOpportunity, id).Error; err != nil {
			return nil, err
		}
		return &dbOpportunity, nil
	})

	if err != nil {
		return nil, err
	}
	return &opportunity, nil
}

func (o *OpportunityPostgreSQL) Update(ctx context.Context, tx *gorm.DB, opportunity *models.Opportunity) error {
	db := o.getDB(tx)
	if err := db.WithContext(ctx).Save(opportunity).Error; err != nil {
		return fmt.Errorf("failed to update opportunity: %w", err)
	}

	cache.InvalidatePostingCache(ctx, o.cacheManager, "opportunity", opportunity.ID, opportunity.PostedBy)
	return nil
}

func (o *OpportunityPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	db := o.getDB(tx)
	if err := db.WithContext(ctx).Delete(&models.Opportunity{}, id).Error; err != nil {
		return fmt.Errorf("failed to delete opportunity: %w", err)
	}

	cache.SafeDelete(ctx, o.cacheManager.Posting, fmt.Sprintf("opportunity:id:%d", id))
	cache.SafeInvalidatePattern(ctx, o.cacheManager.Posting, "opportunity:list:*")
	return nil
}

func (o *OpportunityPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.PostingFilters) ([]*models.Opportunity, int64, error) {
	db := o.getDB(tx)
	var opportunities []*models.Opportunity
	var total int64

	query := db.WithContext(ctx).Model(&models.Opportunity{})
	query = applyPostingFilters(query, filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = o.helpers.ApplyPaginationAndSort(query, filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset)

	if err := query.Preload("Poster").Find(&opportunities).Error; err != nil {
		return nil, 0, err
	}

	return opportunities, total, nil
}

// getDB returns the transaction DB if provided, otherwise returns the default DB
func (o *OpportunityPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return o.db
}

// ===== INTERNSHIP REPOSITORY IMPLEMENTATION =====

// InternshipPostgreSQL implements the InternshipRepository interface
type InternshipPostgreSQL struct {
	db           *gorm.DB
	helpers      *SharedHelpers
	cacheManager *cache.CacheManager
}

func NewInternshipPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.InternshipRepository {
	return &InternshipPostgreSQL{
		db:           db,
		helpers:      NewSharedHelpers(db),
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

func (i *InternshipPostgreSQL) Create(ctx context.Context, tx *gorm.DB, internship *models.Internship) error {
	db := i.getDB(tx)
	if err := db.WithContext(ctx).Create(internship).Error; err != nil {
		return fmt.Errorf("failed to create internship: %w", err)
	}

	cache.InvalidatePostingCache(ctx, i.cacheManager, "internship", internship.ID, internship.PostedBy)
	return nil
}

func (i *InternshipPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Internship, error) {
	db := i.getDB(tx)
	cacheKey := fmt.Sprintf("internship:id:%d", id)
	var internship models.Internship

	err := i.cacheManager.Posting.CacheOrExecute(ctx, cacheKey, &internship, cache.PostingCacheConfig.TTL, func() (interface{}, error) {
		var dbInternship models.Internship
		if err := db.WithContext(ctx).Preload("Poster").First(&dbInternship, id).Error; err != nil {
			return nil, err
		}
		return &dbInternship, nil
	})

	if err != nil {
		return nil, err
	}
	return &internship, nil
}

func (i *InternshipPostgreSQL) Update(ctx context.Context, tx *gorm.DB, internship *models.Internship) error {
	db := i.getDB(tx)
	if err := db.WithContext(ctx).Save(internship).Error; err != nil {
		return fmt.Errorf("failed to update internship: %w", err)
	}

	cache.InvalidatePostingCache(ctx, i.cacheManager, "internship", internship.ID, internship.PostedBy)
	return nil
}

func (i *InternshipPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	db := i.getDB(tx)
	if err := db.WithContext(ctx).Delete(&models.Internship{}, id).Error; err != nil {
		return fmt.Errorf("failed to delete internship: %w", err)
	}

	cache.SafeDelete(ctx, i.cacheManager.Posting, fmt.Sprintf("internship:id:%d", id))
	cache.SafeInvalidatePattern(ctx, i.cacheManager.Posting, "internship:list:*")
	return nil
}

func (i *InternshipPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.PostingFilters) ([]*models.Internship, int64, error) {
	db := i.getDB(tx)
	var internships []*models.Internship
	var total int64

	query := db.WithContext(ctx).Model(&models.Internship{})
	query = applyPostingFilters(query, filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = i.helpers.ApplyPaginationAndSort(query, filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset)

	if err := query.Preload("Poster").Find(&internships).Error; err != nil {
		return nil, 0, err
	}

	return internships, total, nil
}

// getDB returns the transaction DB if provided, otherwise returns the default DB
func (i *InternshipPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return i.db
}

// applyPostingFilters applies filters shared by both posting types
func applyPostingFilters(query *gorm.DB, filters repositories.PostingFilters) *gorm.DB {
	if filters.PostedBy != nil {
		query = query.Where("posted_by = ?", *filters.PostedBy)
	}
	if filters.Query != nil && *filters.Query != "" {
		like := "%" + *filters.Query + "%"
		query = query.Where("title ILIKE ? OR description ILIKE ?", like, like)
	}
	if filters.DeadlineFrom != nil {
		query = query.Where("deadline >= ?", *filters.DeadlineFrom)
	}
	if filters.OpenOnly {
		query = query.Where("deadline IS NULL OR deadline > ?", time.Now())
	}
	return query
}
