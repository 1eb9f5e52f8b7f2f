package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/campuslink/campus-service/internal/models"
	"github.com/campuslink/campus-service/internal/repositories"
)

// LostFoundPostgreSQL implements the LostFoundRepository interface
type LostFoundPostgreSQL struct {
	db      *gorm.DB
	helpers *SharedHelpers
}

func NewLostFoundPostgreSQL(db *gorm.DB) repositories.LostFoundRepository {
	return &LostFoundPostgreSQL{
		db:      db,
		helpers: NewSharedHelpers(db),
	}
}

func (l *LostFoundPostgreSQL) Create(ctx context.Context, tx *gorm.DB, item *models.LostFoundItem) error {
	db := l.getDB(tx)
	if err := db.WithContext(ctx).Create(item).Error; err != nil {
		return fmt.Errorf("failed to create lost and found item: %w", err)
	}
	return nil
}

func (l *LostFoundPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.LostFoundItem, error) {
	db := l.getDB(tx)
	var item models.LostFoundItem
	if err := db.WithContext(ctx).
		Preload("Poster").
		Preload("Claimer").
		First(&item, id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (l *LostFoundPostgreSQL) Update(ctx context.Context, tx *gorm.DB, item *models.LostFoundItem) error {
	db := l.getDB(tx)
	if err := db.WithContext(ctx).Save(item).Error; err != nil {
		return fmt.Errorf("failed to update lost and found item: %w", err)
	}
	return nil
}

func (l *LostFoundPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	db := l.getDB(tx)
	return db.WithContext(ctx).Delete(&models.LostFoundItem{}, id).Error
}

func (l *LostFoundPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.LostFoundFilters) ([]*models.LostFoundItem, int64, error) {
	db := l.getDB(tx)
	var items []*models.LostFoundItem
	var total int64

	query := db.WithContext(ctx).Model(&models.LostFoundItem{})
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.PostedBy != nil {
		query = query.Where("posted_by = ?", *filters.PostedBy)
	}
	if filters.Query != nil && *filters.Query != "" {
		like := "%" + *filters.Query + "%"
		query = query.Where("title ILIKE ? OR description ILIKE ? OR location ILIKE ?", like, like, like)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = l.helpers.ApplyPaginationAndSort(query, filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset)

	if err := query.Preload("Poster").Preload("Claimer").Find(&items).Error; err != nil {
		return nil, 0, err
	}

	return items, total, nil
}

// getDB returns the transaction DB if provided, otherwise returns the default DB
func (l *LostFoundPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return l.db
}
