package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/campuslink/campus-service/internal/cache"
	"github.com/campuslink/campus-service/internal/models"
	"github.com/campuslink/campus-service/internal/repositories"
)

// ===== USER REPOSITORY IMPLEMENTATION =====

// UserPostgreSQL implements the UserRepository interface. Identity and
// credentials live in Casdoor; this table carries the governance state
// (role, status, department) resolved on every request.
type UserPostgreSQL struct {
	db           *gorm.DB
	helpers      *SharedHelpers
	cacheManager *cache.CacheManager
}

func NewUserPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.UserRepository {
	return &UserPostgreSQL{
		db:           db,
		helpers:      NewSharedHelpers(db),
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

func (u *UserPostgreSQL) Create(ctx context.Context, tx *gorm.DB, user *models.User) error {
	db := u.getDB(tx)
	if err := db.WithContext(ctx).Create(user).Error; err != nil {
		if repositories.IsDuplicateError(err) {
			return fmt.Errorf("%w: email already registered", repositories.ErrDuplicate)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	cache.InvalidateUserCache(ctx, u.cacheManager, user.ID)
	return nil
}

func (u *UserPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.User, error) {
	db := u.getDB(tx)
	cacheKey := fmt.Sprintf("id:%s", id)
	var user models.User

	err := u.cacheManager.User.CacheOrExecute(ctx, cacheKey, &user, cache.UserCacheConfig.TTL, func() (interface{}, error) {
		var dbUser models.User
		if err := db.WithContext(ctx).Where("id = ?", id).First(&dbUser).Error; err != nil {
			return nil, err
		}
		return &dbUser, nil
	})

	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (u *UserPostgreSQL) GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*models.User, error) {
	db := u.getDB(tx)
	var user models.User
	if err := db.WithContext(ctx).
		Where("email = ?", strings.ToLower(email)).
		First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (u *UserPostgreSQL) Update(ctx context.Context, tx *gorm.DB, user *models.User) error {
	db := u.getDB(tx)
	if err := db.WithContext(ctx).Save(user).Error; err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}

	cache.InvalidateUserCache(ctx, u.cacheManager, user.ID)
	return nil
}

func (u *UserPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id string) error {
	db := u.getDB(tx)
	if err := db.WithContext(ctx).Where("id = ?", id).Delete(&models.User{}).Error; err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	cache.InvalidateUserCache(ctx, u.cacheManager, id)
	return nil
}

func (u *UserPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.UserFilters) ([]*models.User, int64, error) {
	db := u.getDB(tx)
	var users []*models.User
	var total int64

	query := db.WithContext(ctx).Model(&models.User{})
	if filters.Role != nil {
		query = query.Where("role = ?", *filters.Role)
	}
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.Query != "" {
		like := "%" + filters.Query + "%"
		query = query.Where("full_name ILIKE ? OR email ILIKE ?", like, like)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = u.helpers.ApplyPaginationAndSort(query, "created_at", "desc", filters.Limit, filters.Offset)

	if err := query.Find(&users).Error; err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

func (u *UserPostgreSQL) ExistsByEmail(ctx context.Context, tx *gorm.DB, email string) (bool, error) {
	db := u.getDB(tx)
	var count int64
	if err := db.WithContext(ctx).
		Model(&models.User{}).
		Where("email = ?", strings.ToLower(email)).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// getDB returns the transaction DB if provided, otherwise returns the default DB
func (u *UserPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return u.db
}

// ===== DOMAIN REPOSITORY IMPLEMENTATION =====

// DomainPostgreSQL implements the DomainRepository interface
type DomainPostgreSQL struct {
	db *gorm.DB
}

func NewDomainPostgreSQL(db *gorm.DB) repositories.DomainRepository {
	return &DomainPostgreSQL{db: db}
}

func (d *DomainPostgreSQL) Create(ctx context.Context, tx *gorm.DB, domain *models.AllowedDomain) error {
	db := d.getDB(tx)
	domain.Domain = strings.ToLower(domain.Domain)
	if err := db.WithContext(ctx).Create(domain).Error; err != nil {
		if repositories.IsDuplicateError(err) {
			return fmt.Errorf("%w: domain already allowed", repositories.ErrDuplicate)
		}
		return fmt.Errorf("failed to create domain: %w", err)
	}
	return nil
}

func (d *DomainPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.AllowedDomain, error) {
	db := d.getDB(tx)
	var domain models.AllowedDomain
	if err := db.WithContext(ctx).First(&domain, id).Error; err != nil {
		return nil, err
	}
	return &domain, nil
}

func (d *DomainPostgreSQL) GetByName(ctx context.Context, tx *gorm.DB, name string) (*models.AllowedDomain, error) {
	db := d.getDB(tx)
	var domain models.AllowedDomain
	if err := db.WithContext(ctx).
		Where("domain = ?", strings.ToLower(name)).
		First(&domain).Error; err != nil {
		return nil, err
	}
	return &domain, nil
}

func (d *DomainPostgreSQL) Update(ctx context.Context, tx *gorm.DB, domain *models.AllowedDomain) error {
	db := d.getDB(tx)
	return db.WithContext(ctx).Save(domain).Error
}

func (d *DomainPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	db := d.getDB(tx)
	return db.WithContext(ctx).Delete(&models.AllowedDomain{}, id).Error
}

func (d *DomainPostgreSQL) List(ctx context.Context, tx *gorm.DB) ([]*models.AllowedDomain, error) {
	db := d.getDB(tx)
	var domains []*models.AllowedDomain
	if err := db.WithContext(ctx).Order("domain ASC").Find(&domains).Error; err != nil {
		return nil, err
	}
	return domains, nil
}

func (d *DomainPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return d.db
}
