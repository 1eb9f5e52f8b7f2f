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

// ===== COURSE REPOSITORY IMPLEMENTATION =====

// CoursePostgreSQL implements the CourseRepository interface
type CoursePostgreSQL struct {
	db           *gorm.DB
	helpers      *SharedHelpers
	cacheManager *cache.CacheManager
}

func NewCoursePostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.CourseRepository {
	return &CoursePostgreSQL{
		db:           db,
		helpers:      NewSharedHelpers(db),
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

func (c *CoursePostgreSQL) Create(ctx context.Context, tx *gorm.DB, course *models.Course) error {
	db := c.getDB(tx)
	if err := db.WithContext(ctx).Create(course).Error; err != nil {
		if repositories.IsDuplicateError(err) {
			return fmt.Errorf("%w: course code already exists", repositories.ErrDuplicate)
		}
		return fmt.Errorf("failed to create course: %w", err)
	}
	return nil
}

func (c *CoursePostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Course, error) {
	db := c.getDB(tx)
	cacheKey := fmt.Sprintf("course:%d", id)
	var course models.Course

	err := c.cacheManager.Fast.CacheOrExecute(ctx, cacheKey, &course, cache.FastCacheConfig.TTL, func() (interface{}, error) {
		var dbCourse models.Course
		if err := db.WithContext(ctx).First(&dbCourse, id).Error; err != nil {
			return nil, err
		}
		return &dbCourse, nil
	})

	if err != nil {
		return nil, err
	}
	return &course, nil
}

func (c *CoursePostgreSQL) GetByIDWithRefs(ctx context.Context, tx *gorm.DB, id uint) (*models.Course, error) {
	db := c.getDB(tx)
	var course models.Course
	if err := db.WithContext(ctx).
		Preload("Faculty").
		Preload("Resources").
		First(&course, id).Error; err != nil {
		return nil, err
	}
	return &course, nil
}

func (c *CoursePostgreSQL) Update(ctx context.Context, tx *gorm.DB, course *models.Course) error {
	db := c.getDB(tx)
	if err := db.WithContext(ctx).Save(course).Error; err != nil {
		return fmt.Errorf("failed to update course: %w", err)
	}

	cache.SafeDelete(ctx, c.cacheManager.Fast, fmt.Sprintf("course:%d", course.ID))
	return nil
}

func (c *CoursePostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	db := c.getDB(tx)
	if err := db.WithContext(ctx).Delete(&models.Course{}, id).Error; err != nil {
		return fmt.Errorf("failed to delete course: %w", err)
	}

	cache.SafeDelete(ctx, c.cacheManager.Fast, fmt.Sprintf("course:%d", id))
	return nil
}

func (c *CoursePostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.CourseFilters) ([]*models.Course, int64, error) {
	db := c.getDB(tx)
	var courses []*models.Course
	var total int64

	query := db.WithContext(ctx).Model(&models.Course{})
	if filters.FacultyID != nil {
		query = query.Where("faculty_id = ?", *filters.FacultyID)
	}
	if filters.Department != nil {
		query = query.Where("department = ?", *filters.Department)
	}
	if filters.Query != nil && *filters.Query != "" {
		like := "%" + *filters.Query + "%"
		query = query.Where("title ILIKE ? OR code ILIKE ?", like, like)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = c.helpers.ApplyPaginationAndSort(query, filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset)

	if err := query.Preload("Faculty").Find(&courses).Error; err != nil {
		return nil, 0, err
	}

	return courses, total, nil
}

// getDB returns the transaction DB if provided, otherwise returns the default DB
func (c *CoursePostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return c.db
}

// ===== RESOURCE REPOSITORY IMPLEMENTATION =====

// ResourcePostgreSQL implements the ResourceRepository interface
type ResourcePostgreSQL struct {
	db *gorm.DB
}

func NewResourcePostgreSQL(db *gorm.DB) repositories.ResourceRepository {
	return &ResourcePostgreSQL{db: db}
}

func (r *ResourcePostgreSQL) Create(ctx context.Context, tx *gorm.DB, resource *models.Resource) error {
	db := r.getDB(tx)
	if err := db.WithContext(ctx).Create(resource).Error; err != nil {
		return fmt.Errorf("failed to create resource: %w", err)
	}
	return nil
}

func (r *ResourcePostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Resource, error) {
	db := r.getDB(tx)
	var resource models.Resource
	if err := db.WithContext(ctx).Preload("Course").First(&resource, id).Error; err != nil {
		return nil, err
	}
	return &resource, nil
}

func (r *ResourcePostgreSQL) Update(ctx context.Context, tx *gorm.DB, resource *models.Resource) error {
	db := r.getDB(tx)
	return db.WithContext(ctx).Save(resource).Error
}

func (r *ResourcePostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	db := r.getDB(tx)
	return db.WithContext(ctx).Delete(&models.Resource{}, id).Error
}

func (r *ResourcePostgreSQL) GetByCourse(ctx context.Context, tx *gorm.DB, courseID uint) ([]*models.Resource, error) {
	db := r.getDB(tx)
	var resources []*models.Resource
	if err := db.WithContext(ctx).
		Where("course_id = ?", courseID).
		Order("created_at DESC").
		Find(&resources).Error; err != nil {
		return nil, err
	}
	return resources, nil
}

func (r *ResourcePostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

// ===== ENROLLMENT REPOSITORY IMPLEMENTATION =====

// EnrollmentPostgreSQL implements the EnrollmentRepository interface
type EnrollmentPostgreSQL struct {
	db *gorm.DB
}

func NewEnrollmentPostgreSQL(db *gorm.DB) repositories.EnrollmentRepository {
	return &EnrollmentPostgreSQL{db: db}
}

func (e *EnrollmentPostgreSQL) Create(ctx context.Context, tx *gorm.DB, enrollment *models.Enrollment) error {
	db := e.getDB(tx)
	if err := db.WithContext(ctx).Create(enrollment).Error; err != nil {
		if repositories.IsDuplicateError(err) {
			return fmt.Errorf("%w: already enrolled", repositories.ErrDuplicate)
		}
		return fmt.Errorf("failed to create enrollment: %w", err)
	}
	return nil
}

func (e *EnrollmentPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, courseID uint, studentID string) error {
	db := e.getDB(tx)
	result := db.WithContext(ctx).
		Where("course_id = ? AND student_id = ?", courseID, studentID).
		Delete(&models.Enrollment{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete enrollment: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (e *EnrollmentPostgreSQL) GetCourseIDs(ctx context.Context, tx *gorm.DB, studentID string) ([]uint, error) {
	db := e.getDB(tx)
	var ids []uint
	if err := db.WithContext(ctx).
		Model(&models.Enrollment{}).
		Where("student_id = ?", studentID).
		Pluck("course_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (e *EnrollmentPostgreSQL) GetByStudent(ctx context.Context, tx *gorm.DB, studentID string) ([]*models.Enrollment, error) {
	db := e.getDB(tx)
	var enrollments []*models.Enrollment
	if err := db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Preload("Course").
		Find(&enrollments).Error; err != nil {
		return nil, err
	}
	return enrollments, nil
}

func (e *EnrollmentPostgreSQL) Exists(ctx context.Context, tx *gorm.DB, courseID uint, studentID string) (bool, error) {
	db := e.getDB(tx)
	var count int64
	if err := db.WithContext(ctx).
		Model(&models.Enrollment{}).
		Where("course_id = ? AND student_id = ?", courseID, studentID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (e *EnrollmentPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return e.db
}

// ===== ACADEMIC EVENT REPOSITORY IMPLEMENTATION =====

// AcademicEventPostgreSQL implements the AcademicEventRepository interface
type AcademicEventPostgreSQL struct {
	db      *gorm.DB
	helpers *SharedHelpers
}

func NewAcademicEventPostgreSQL(db *gorm.DB) repositories.AcademicEventRepository {
	return &AcademicEventPostgreSQL{
		db:      db,
		helpers: NewSharedHelpers(db),
	}
}

func (a *AcademicEventPostgreSQL) Create(ctx context.Context, tx *gorm.DB, event *models.AcademicEvent) error {
	db := a.getDB(tx)
	if err := db.WithContext(ctx).Create(event).Error; err != nil {
		return fmt.Errorf("failed to create event: %w", err)
	}
	return nil
}

func (a *AcademicEventPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.AcademicEvent, error) {
	db := a.getDB(tx)
	var event models.AcademicEvent
	if err := db.WithContext(ctx).Preload("Course").First(&event, id).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

func (a *AcademicEventPostgreSQL) Update(ctx context.Context, tx *gorm.DB, event *models.AcademicEvent) error {
	db := a.getDB(tx)
	return db.WithContext(ctx).Save(event).Error
}

func (a *AcademicEventPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	db := a.getDB(tx)
	return db.WithContext(ctx).Delete(&models.AcademicEvent{}, id).Error
}

func (a *AcademicEventPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.EventFilters) ([]*models.AcademicEvent, int64, error) {
	db := a.getDB(tx)
	var events []*models.AcademicEvent
	var total int64

	query := db.WithContext(ctx).Model(&models.AcademicEvent{})
	query = applyEventFilters(query, filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = a.helpers.ApplyPaginationAndSort(query, "starts_at", "asc", filters.Limit, filters.Offset)

	if err := query.Preload("Course").Find(&events).Error; err != nil {
		return nil, 0, err
	}

	return events, total, nil
}

// GetVisible returns global events plus events bound to any of the
// given courses. The enrollment set is resolved by the caller on every
// request so revoked enrollments disappear immediately.
func (a *AcademicEventPostgreSQL) GetVisible(ctx context.Context, tx *gorm.DB, courseIDs []uint, filters repositories.EventFilters) ([]*models.AcademicEvent, error) {
	db := a.getDB(tx)
	var events []*models.AcademicEvent

	query := db.WithContext(ctx).Model(&models.AcademicEvent{})
	if len(courseIDs) > 0 {
		query = query.Where("course_id IS NULL OR course_id IN ?", courseIDs)
	} else {
		query = query.Where("course_id IS NULL")
	}
	query = applyEventFilters(query, filters)

	query = a.helpers.ApplyPaginationAndSort(query, "starts_at", "asc", filters.Limit, filters.Offset)

	if err := query.Preload("Course").Find(&events).Error; err != nil {
		return nil, err
	}

	return events, nil
}

func applyEventFilters(query *gorm.DB, filters repositories.EventFilters) *gorm.DB {
	if filters.CourseID != nil {
		query = query.Where("course_id = ?", *filters.CourseID)
	}
	if filters.DateFrom != nil {
		query = query.Where("starts_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("starts_at <= ?", *filters.DateTo)
	}
	return query
}

func (a *AcademicEventPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return a.db
}
