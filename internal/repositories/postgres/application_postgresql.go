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

// ApplicationPostgreSQL implements the ApplicationRepository interface
type ApplicationPostgreSQL struct {
	db           *gorm.DB
	helpers      *SharedHelpers
	cacheManager *cache.CacheManager
}

func NewApplicationPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.ApplicationRepository {
	return &ApplicationPostgreSQL{
		db:           db,
		helpers:      NewSharedHelpers(db),
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

// Create inserts the application. A unique-index violation on the
// (parent, student) pair is mapped to ErrDuplicate so the service can
// answer with a conflict instead of a server error.
func (a *ApplicationPostgreSQL) Create(ctx context.Context, tx *gorm.DB, application *models.Application) error {
	db := a.getDB(tx)
	if err := db.WithContext(ctx).Create(application).Error; err != nil {
		if repositories.IsDuplicateError(err) {
			return fmt.Errorf("%w: application already exists", repositories.ErrDuplicate)
		}
		return fmt.Errorf("failed to create application: %w", err)
	}

	cache.SafeInvalidatePattern(ctx, a.cacheManager.Stats, "application:*")
	return nil
}

func (a *ApplicationPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Application, error) {
	db := a.getDB(tx)
	var application models.Application
	if err := db.WithContext(ctx).First(&application, id).Error; err != nil {
		return nil, err
	}
	return &application, nil
}

func (a *ApplicationPostgreSQL) GetByIDWithRefs(ctx context.Context, tx *gorm.DB, id uint) (*models.Application, error) {
	db := a.getDB(tx)
	var application models.Application
	if err := db.WithContext(ctx).
		Preload("Student").
		Preload("Opportunity").
		Preload("Internship").
		First(&application, id).Error; err != nil {
		return nil, err
	}
	return &application, nil
}

func (a *ApplicationPostgreSQL) Update(ctx context.Context, tx *gorm.DB, application *models.Application) error {
	db := a.getDB(tx)
	if err := db.WithContext(ctx).Save(application).Error; err != nil {
		return fmt.Errorf("failed to update application: %w", err)
	}

	cache.SafeInvalidatePattern(ctx, a.cacheManager.Stats, "application:*")
	return nil
}

// GetByParentAndStudent retrieves an existing application for the same
// posting and student, backing the duplicate guard.
func (a *ApplicationPostgreSQL) GetByParentAndStudent(ctx context.Context, tx *gorm.DB, opportunityID, internshipID *uint, studentID string) (*models.Application, error) {
	db := a.getDB(tx)
	query := db.WithContext(ctx).Where("student_id = ?", studentID)

	switch {
	case opportunityID != nil:
		query = query.Where("opportunity_id = ?", *opportunityID)
	case internshipID != nil:
		query = query.Where("internship_id = ?", *internshipID)
	default:
		return nil, gorm.ErrRecordNotFound
	}

	var application models.Application
	if err := query.First(&application).Error; err != nil {
		return nil, err
	}
	return &application, nil
}

func (a *ApplicationPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.ApplicationFilters) ([]*models.Application, int64, error) {
	db := a.getDB(tx)
	var applications []*models.Application
	var total int64

	query := db.WithContext(ctx).Model(&models.Application{})
	query = a.applyFilters(query, filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = a.helpers.ApplyPaginationAndSort(query, filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset)

	if err := query.
		Preload("Student").
		Preload("Opportunity").
		Preload("Internship").
		Find(&applications).Error; err != nil {
		return nil, 0, err
	}

	return applications, total, nil
}

func (a *ApplicationPostgreSQL) GetByStudent(ctx context.Context, tx *gorm.DB, studentID string, filters repositories.ApplicationFilters) ([]*models.Application, int64, error) {
	filters.StudentID = &studentID
	return a.List(ctx, tx, filters)
}

func (a *ApplicationPostgreSQL) GetStats(ctx context.Context, tx *gorm.DB) (*repositories.ApplicationStats, error) {
	db := a.getDB(tx)
	cacheKey := "application:summary"
	var stats repositories.ApplicationStats

	err := a.cacheManager.Stats.CacheOrExecute(ctx, cacheKey, &stats, cache.StatsCacheConfig.TTL, func() (interface{}, error) {
		result := &repositories.ApplicationStats{
			ByStatus: make(map[models.ApplicationStatus]int),
		}

		var total int64
		if err := db.WithContext(ctx).Model(&models.Application{}).Count(&total).Error; err != nil {
			return nil, fmt.Errorf("failed to count applications: %w", err)
		}
		result.Total = int(total)

		var rows []struct {
			Status models.ApplicationStatus
			Count  int
		}
		if err := db.WithContext(ctx).Model(&models.Application{}).
			Select("status, count(*) as count").
			Group("status").
			Scan(&rows).Error; err != nil {
			return nil, fmt.Errorf("failed to count applications by status: %w", err)
		}
		for _, row := range rows {
			result.ByStatus[row.Status] = row.Count
		}

		return result, nil
	})

	if err != nil {
		return nil, err
	}
	return &stats, nil
}

// applyFilters applies common filters to a query
func (a *ApplicationPostgreSQL) applyFilters(query *gorm.DB, filters repositories.ApplicationFilters) *gorm.DB {
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.StudentID != nil {
		query = query.Where("student_id = ?", *filters.StudentID)
	}
	if filters.OpportunityID != nil {
		query = query.Where("opportunity_id = ?", *filters.OpportunityID)
	}
	if filters.InternshipID != nil {
		query = query.Where("internship_id = ?", *filters.InternshipID)
	}
	return query
}

// getDB returns the transaction DB if provided, otherwise returns the default DB
func (a *ApplicationPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return a.db
}
