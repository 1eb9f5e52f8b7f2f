package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/campuslink/campus-service/internal/models"
)

// ===== SHARED FILTER STRUCTS =====

type GrievanceFilters struct {
	Status      *models.GrievanceStatus   `json:"status"`
	Category    *models.GrievanceCategory `json:"category"`
	Priority    *models.GrievancePriority `json:"priority"`
	SubmittedBy *string                   `json:"submitted_by"`
	AssigneeID  *string                   `json:"assignee_id"`
	DateFrom    *time.Time                `json:"date_from"`
	DateTo      *time.Time                `json:"date_to"`
	Limit       int                       `json:"limit"`
	Offset      int                       `json:"offset"`
	SortBy      string                    `json:"sort_by"`    // "created_at", "priority", "status"
	SortOrder   string                    `json:"sort_order"` // "asc", "desc"
}

type PostingFilters struct {
	PostedBy     *string    `json:"posted_by"`
	Query        *string    `json:"query"`
	DeadlineFrom *time.Time `json:"deadline_from"`
	OpenOnly     bool       `json:"open_only"` // deadline in the future or absent
	Limit        int        `json:"limit"`
	Offset       int        `json:"offset"`
	SortBy       string     `json:"sort_by"`
	SortOrder    string     `json:"sort_order"`
}

type ApplicationFilters struct {
	Status        *models.ApplicationStatus `json:"status"`
	StudentID     *string                   `json:"student_id"`
	OpportunityID *uint                     `json:"opportunity_id"`
	InternshipID  *uint                     `json:"internship_id"`
	Limit         int                       `json:"limit"`
	Offset        int                       `json:"offset"`
	SortBy        string                    `json:"sort_by"`
	SortOrder     string                    `json:"sort_order"`
}

type CourseFilters struct {
	FacultyID  *string `json:"faculty_id"`
	Department *string `json:"department"`
	Query      *string `json:"query"`
	Limit      int     `json:"limit"`
	Offset     int     `json:"offset"`
	SortBy     string  `json:"sort_by"`
	SortOrder  string  `json:"sort_order"`
}

type EventFilters struct {
	CourseID *uint      `json:"course_id"`
	DateFrom *time.Time `json:"date_from"`
	DateTo   *time.Time `json:"date_to"`
	Limit    int        `json:"limit"`
	Offset   int        `json:"offset"`
}

type LostFoundFilters struct {
	Status    *models.LostFoundStatus `json:"status"`
	PostedBy  *string                 `json:"posted_by"`
	Query     *string                 `json:"query"`
	Limit     int                     `json:"limit"`
	Offset    int                     `json:"offset"`
	SortBy    string                  `json:"sort_by"`
	SortOrder string                  `json:"sort_order"`
}

// UserFilters defines filters for user queries
type UserFilters struct {
	Role   *models.UserRole      `json:"role"`
	Status *models.AccountStatus `json:"status"`
	Query  string                `json:"query"` // name or email
	Limit  int                   `json:"limit"`
	Offset int                   `json:"offset"`
}

// ===== SHARED STATISTICS STRUCTS =====

type GrievanceStats struct {
	Total      int                              `json:"total"`
	ByStatus   map[models.GrievanceStatus]int   `json:"by_status"`
	ByCategory map[models.GrievanceCategory]int `json:"by_category"`
	AvgResolutionHours float64                  `json:"avg_resolution_hours"`
}

type ApplicationStats struct {
	Total    int                              `json:"total"`
	ByStatus map[models.ApplicationStatus]int `json:"by_status"`
}

type DashboardStats struct {
	OpenGrievances      int `json:"open_grievances"`
	ResolvedGrievances  int `json:"resolved_grievances"`
	ActivePostings      int `json:"active_postings"`
	PendingApplications int `json:"pending_applications"`
	RegisteredStudents  int `json:"registered_students"`
	BlockedAccounts     int `json:"blocked_accounts"`
}

// ===== ENTITY REPOSITORIES =====

type GrievanceRepository interface {
	Create(ctx context.Context, tx *gorm.DB, grievance *models.Grievance) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Grievance, error)
	GetByIDWithRefs(ctx context.Context, tx *gorm.DB, id uint) (*models.Grievance, error)
	Update(ctx context.Context, tx *gorm.DB, grievance *models.Grievance) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error

	List(ctx context.Context, tx *gorm.DB, filters GrievanceFilters) ([]*models.Grievance, int64, error)
	GetByOwner(ctx context.Context, tx *gorm.DB, ownerID string, filters GrievanceFilters) ([]*models.Grievance, int64, error)

	GetStats(ctx context.Context, tx *gorm.DB) (*GrievanceStats, error)
}

type OpportunityRepository interface {
	Create(ctx context.Context, tx *gorm.DB, opportunity *models.Opportunity) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Opportunity, error)
	Update(ctx context.Context, tx *gorm.DB, opportunity *models.Opportunity) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error

	List(ctx context.Context, tx *gorm.DB, filters PostingFilters) ([]*models.Opportunity, int64, error)
}

type InternshipRepository interface {
	Create(ctx context.Context, tx *gorm.DB, internship *models.Internship) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Internship, error)
	Update(ctx context.Context, tx *gorm.DB, internship *models.Internship) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error

	List(ctx context.Context, tx *gorm.DB, filters PostingFilters) ([]*models.Internship, int64, error)
}

type ApplicationRepository interface {
	Create(ctx context.Context, tx *gorm.DB, application *models.Application) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Application, error)
	GetByIDWithRefs(ctx context.Context, tx *gorm.DB, id uint) (*models.Application, error)
	Update(ctx context.Context, tx *gorm.DB, application *models.Application) error

	// GetByParentAndStudent backs the duplicate-application guard.
	GetByParentAndStudent(ctx context.Context, tx *gorm.DB, opportunityID, internshipID *uint, studentID string) (*models.Application, error)

	List(ctx context.Context, tx *gorm.DB, filters ApplicationFilters) ([]*models.Application, int64, error)
	GetByStudent(ctx context.Context, tx *gorm.DB, studentID string, filters ApplicationFilters) ([]*models.Application, int64, error)

	GetStats(ctx context.Context, tx *gorm.DB) (*ApplicationStats, error)
}

type CourseRepository interface {
	Create(ctx context.Context, tx *gorm.DB, course *models.Course) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Course, error)
	GetByIDWithRefs(ctx context.Context, tx *gorm.DB, id uint) (*models.Course, error)
	Update(ctx context.Context, tx *gorm.DB, course *models.Course) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error

	List(ctx context.Context, tx *gorm.DB, filters CourseFilters) ([]*models.Course, int64, error)
}

type ResourceRepository interface {
	Create(ctx context.Context, tx *gorm.DB, resource *models.Resource) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Resource, error)
	Update(ctx context.Context, tx *gorm.DB, resource *models.Resource) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error

	GetByCourse(ctx context.Context, tx *gorm.DB, courseID uint) ([]*models.Resource, error)
}

type EnrollmentRepository interface {
	Create(ctx context.Context, tx *gorm.DB, enrollment *models.Enrollment) error
	Delete(ctx context.Context, tx *gorm.DB, courseID uint, studentID string) error

	// GetCourseIDs returns the caller's current enrollment set. It is
	// re-read on every calendar fetch; enrollment changes between
	// requests must be reflected immediately.
	GetCourseIDs(ctx context.Context, tx *gorm.DB, studentID string) ([]uint, error)
	GetByStudent(ctx context.Context, tx *gorm.DB, studentID string) ([]*models.Enrollment, error)
	Exists(ctx context.Context, tx *gorm.DB, courseID uint, studentID string) (bool, error)
}

type AcademicEventRepository interface {
	Create(ctx context.Context, tx *gorm.DB, event *models.AcademicEvent) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.AcademicEvent, error)
	Update(ctx context.Context, tx *gorm.DB, event *models.AcademicEvent) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error

	List(ctx context.Context, tx *gorm.DB, filters EventFilters) ([]*models.AcademicEvent, int64, error)

	// GetVisible computes the union of global events and events whose
	// course id is in courseIDs.
	GetVisible(ctx context.Context, tx *gorm.DB, courseIDs []uint, filters EventFilters) ([]*models.AcademicEvent, error)
}

type LostFoundRepository interface {
	Create(ctx context.Context, tx *gorm.DB, item *models.LostFoundItem) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.LostFoundItem, error)
	Update(ctx context.Context, tx *gorm.DB, item *models.LostFoundItem) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error

	List(ctx context.Context, tx *gorm.DB, filters LostFoundFilters) ([]*models.LostFoundItem, int64, error)
}

// UserRepository owns user governance records (role, status,
// department); credentials stay in the external identity provider.
type UserRepository interface {
	Create(ctx context.Context, tx *gorm.DB, user *models.User) error
	GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.User, error)
	GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*models.User, error)
	Update(ctx context.Context, tx *gorm.DB, user *models.User) error
	Delete(ctx context.Context, tx *gorm.DB, id string) error

	List(ctx context.Context, tx *gorm.DB, filters UserFilters) ([]*models.User, int64, error)

	ExistsByEmail(ctx context.Context, tx *gorm.DB, email string) (bool, error)
}

type DomainRepository interface {
	Create(ctx context.Context, tx *gorm.DB, domain *models.AllowedDomain) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.AllowedDomain, error)
	GetByName(ctx context.Context, tx *gorm.DB, name string) (*models.AllowedDomain, error)
	Update(ctx context.Context, tx *gorm.DB, domain *models.AllowedDomain) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error

	List(ctx context.Context, tx *gorm.DB) ([]*models.AllowedDomain, error)
}

type DashboardRepository interface {
	GetStats(ctx context.Context, tx *gorm.DB) (*DashboardStats, error)
}
