package services

import (
	"context"

	"github.com/campuslink/campus-service/internal/models"
	"github.com/campuslink/campus-service/internal/repositories"
	"github.com/campuslink/campus-service/internal/validator"
)

// ===== REQUEST/RESPONSE DTOs =====

// Use business validator types
type CreateGrievanceRequest = validator.GrievanceCreateRequest
type UpdateGrievanceRequest = validator.GrievanceUpdateRequest
type GrievanceStatusRequest = validator.GrievanceStatusRequest

type CreatePostingRequest = validator.PostingCreateRequest
type UpdatePostingRequest = validator.PostingUpdateRequest

type CreateApplicationRequest = validator.ApplicationCreateRequest
type ApplicationStatusRequest = validator.ApplicationStatusRequest

type CreateCourseRequest = validator.CourseCreateRequest
type UpdateCourseRequest = validator.CourseUpdateRequest
type CreateResourceRequest = validator.ResourceCreateRequest
type CreateEventRequest = validator.EventCreateRequest
type UpdateEventRequest = validator.EventUpdateRequest

type CreateLostFoundRequest = validator.LostFoundCreateRequest
type UpdateLostFoundRequest = validator.LostFoundUpdateRequest

type UpdateProfileRequest = validator.ProfileUpdateRequest
type UserGovernanceRequest = validator.UserGovernanceRequest
type CreateDomainRequest = validator.DomainCreateRequest
type UpdateDomainRequest = validator.DomainUpdateRequest

type BulkNotificationRequest = validator.BulkNotificationRequest

type GrievanceResponse struct {
	*models.Grievance
	CanEdit         bool `json:"can_edit"`
	CanUpdateStatus bool `json:"can_update_status"`
}

type GrievanceListResponse struct {
	Grievances []*GrievanceResponse `json:"grievances"`
	Total      int64                `json:"total"`
	Page       int                  `json:"page"`
	Size       int                  `json:"size"`
}

type OpportunityResponse struct {
	*models.Opportunity
	CanEdit  bool `json:"can_edit"`
	CanApply bool `json:"can_apply"`
}

type OpportunityListResponse struct {
	Opportunities []*OpportunityResponse `json:"opportunities"`
	Total         int64                  `json:"total"`
	Page          int                    `json:"page"`
	Size          int                    `json:"size"`
}

type InternshipResponse struct {
	*models.Internship
	CanEdit  bool `json:"can_edit"`
	CanApply bool `json:"can_apply"`
}

type InternshipListResponse struct {
	Internships []*InternshipResponse `json:"internships"`
	Total       int64                 `json:"total"`
	Page        int                   `json:"page"`
	Size        int                   `json:"size"`
}

type ApplicationResponse struct {
	*models.Application
	Orphaned bool `json:"orphaned"`
}

type ApplicationListResponse struct {
	Applications []*ApplicationResponse `json:"applications"`
	Total        int64                  `json:"total"`
	Page         int                    `json:"page"`
	Size         int                    `json:"size"`
}

type CourseResponse struct {
	*models.Course
	CanEdit  bool `json:"can_edit"`
	Enrolled bool `json:"enrolled"`
}

type CourseListResponse struct {
	Courses []*CourseResponse `json:"courses"`
	Total   int64             `json:"total"`
	Page    int               `json:"page"`
	Size    int               `json:"size"`
}

type LostFoundResponse struct {
	*models.LostFoundItem
	CanEdit  bool `json:"can_edit"`
	CanClaim bool `json:"can_claim"`
}

type LostFoundListResponse struct {
	Items []*LostFoundResponse `json:"items"`
	Total int64                `json:"total"`
	Page  int                  `json:"page"`
	Size  int                  `json:"size"`
}

type UserListResponse struct {
	Users []*models.User `json:"users"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Size  int            `json:"size"`
}

// NotificationRequest is an internal envelope used by domain services
// when asking the notification service to fan an event out.
type NotificationRequest struct {
	Type    string                 `json:"type" validate:"required"`
	Title   string                 `json:"title" validate:"required,max=200"`
	Message string                 `json:"message" validate:"required,max=2000"`
	Data    map[string]interface{} `json:"data,omitempty"`
}

// ===== SERVICE INTERFACES =====

type GrievanceService interface {
	Create(ctx context.Context, req *CreateGrievanceRequest, userID string) (*GrievanceResponse, error)
	GetByID(ctx context.Context, id uint, userID string) (*GrievanceResponse, error)
	Update(ctx context.Context, id uint, req *UpdateGrievanceRequest, userID string) (*GrievanceResponse, error)
	UpdateStatus(ctx context.Context, id uint, req *GrievanceStatusRequest, userID string) (*GrievanceResponse, error)
	Delete(ctx context.Context, id uint, userID string) error

	List(ctx context.Context, filters repositories.GrievanceFilters, userID string) (*GrievanceListResponse, error)
	GetMine(ctx context.Context, userID string, filters repositories.GrievanceFilters) (*GrievanceListResponse, error)

	GetStats(ctx context.Context, userID string) (*repositories.GrievanceStats, error)
}

type PostingService interface {
	// Opportunities
	CreateOpportunity(ctx context.Context, req *CreatePostingRequest, userID string) (*OpportunityResponse, error)
	GetOpportunity(ctx context.Context, id uint, userID string) (*OpportunityResponse, error)
	UpdateOpportunity(ctx context.Context, id uint, req *UpdatePostingRequest, userID string) (*OpportunityResponse, error)
	DeleteOpportunity(ctx context.Context, id uint, userID string) error
	ListOpportunities(ctx context.Context, filters repositories.PostingFilters, userID string) (*OpportunityListResponse, error)

	// Internships
	CreateInternship(ctx context.Context, req *CreatePostingRequest, userID string) (*InternshipResponse, error)
	GetInternship(ctx context.Context, id uint, userID string) (*InternshipResponse, error)
	UpdateInternship(ctx context.Context, id uint, req *UpdatePostingRequest, userID string) (*InternshipResponse, error)
	DeleteInternship(ctx context.Context, id uint, userID string) error
	ListInternships(ctx context.Context, filters repositories.PostingFilters, userID string) (*InternshipListResponse, error)
}

type ApplicationService interface {
	Apply(ctx context.Context, req *CreateApplicationRequest, studentID string) (*ApplicationResponse, error)
	GetByID(ctx context.Context, id uint, userID string) (*ApplicationResponse, error)
	UpdateStatus(ctx context.Context, id uint, req *ApplicationStatusRequest, userID string) (*ApplicationResponse, error)

	GetMine(ctx context.Context, studentID string, filters repositories.ApplicationFilters) (*ApplicationListResponse, error)
	ListByPosting(ctx context.Context, opportunityID, internshipID *uint, filters repositories.ApplicationFilters, userID string) (*ApplicationListResponse, error)

	GetStats(ctx context.Context, userID string) (*repositories.ApplicationStats, error)
}

type AcademicService interface {
	// Courses
	CreateCourse(ctx context.Context, req *CreateCourseRequest, userID string) (*CourseResponse, error)
	GetCourse(ctx context.Context, id uint, userID string) (*CourseResponse, error)
	UpdateCourse(ctx context.Context, id uint, req *UpdateCourseRequest, userID string) (*CourseResponse, error)
	DeleteCourse(ctx context.Context, id uint, userID string) error
	ListCourses(ctx context.Context, filters repositories.CourseFilters, userID string) (*CourseListResponse, error)

	// Resources
	AddResource(ctx context.Context, courseID uint, req *CreateResourceRequest, userID string) (*models.Resource, error)
	GetResources(ctx context.Context, courseID uint, userID string) ([]*models.Resource, error)
	DeleteResource(ctx context.Context, id uint, userID string) error

	// Enrollment
	Enroll(ctx context.Context, courseID uint, studentID string) error
	Unenroll(ctx context.Context, courseID uint, studentID string) error
	GetEnrollments(ctx context.Context, studentID string) ([]*models.Enrollment, error)

	// Calendar
	CreateEvent(ctx context.Context, req *CreateEventRequest, userID string) (*models.AcademicEvent, error)
	UpdateEvent(ctx context.Context, id uint, req *UpdateEventRequest, userID string) (*models.AcademicEvent, error)
	DeleteEvent(ctx context.Context, id uint, userID string) error
	GetCalendar(ctx context.Context, userID string, filters repositories.EventFilters) ([]*models.AcademicEvent, error)
}

type LostFoundService interface {
	Create(ctx context.Context, req *CreateLostFoundRequest, userID string) (*LostFoundResponse, error)
	GetByID(ctx context.Context, id uint, userID string) (*LostFoundResponse, error)
	Update(ctx context.Context, id uint, req *UpdateLostFoundRequest, userID string) (*LostFoundResponse, error)
	Delete(ctx context.Context, id uint, userID string) error
	List(ctx context.Context, filters repositories.LostFoundFilters, userID string) (*LostFoundListResponse, error)

	// Claim marks an item claimed by a non-owner caller.
	Claim(ctx context.Context, id uint, userID string) (*LostFoundResponse, error)
}

type UserService interface {
	// EnsureUser resolves or creates the governance record on first
	// login; the role is derived from the email domain.
	EnsureUser(ctx context.Context, id, email, fullName string) (*models.User, error)

	GetProfile(ctx context.Context, id string, callerID string) (*models.User, error)
	UpdateProfile(ctx context.Context, id string, req *UpdateProfileRequest, callerID string) (*models.User, error)

	// Governance (admin only)
	List(ctx context.Context, filters repositories.UserFilters, callerID string) (*UserListResponse, error)
	UpdateGovernance(ctx context.Context, id string, req *UserGovernanceRequest, callerID string) (*models.User, error)
	Delete(ctx context.Context, id string, callerID string) error

	// Domain allow-list (admin only)
	AddDomain(ctx context.Context, req *CreateDomainRequest, callerID string) (*models.AllowedDomain, error)
	ListDomains(ctx context.Context, callerID string) ([]*models.AllowedDomain, error)
	UpdateDomain(ctx context.Context, id uint, req *UpdateDomainRequest, callerID string) (*models.AllowedDomain, error)
	RemoveDomain(ctx context.Context, id uint, callerID string) error
}

type NotificationService interface {
	NotifyGrievanceCreated(ctx context.Context, grievance *models.Grievance) error
	NotifyGrievanceStatusChanged(ctx context.Context, grievance *models.Grievance, previous models.GrievanceStatus) error
	NotifyApplicationReceived(ctx context.Context, application *models.Application, posterID string) error
	NotifyApplicationStatusChanged(ctx context.Context, application *models.Application) error
	NotifyPostingCreated(ctx context.Context, eventType, title string, postingID uint) error
	NotifyItemClaimed(ctx context.Context, item *models.LostFoundItem) error

	// SendBulkNotification broadcasts to role rooms; admin only.
	SendBulkNotification(ctx context.Context, req *BulkNotificationRequest, senderID string) error
}

type DashboardService interface {
	GetStats(ctx context.Context, userID string) (*repositories.DashboardStats, error)
}

type ExportService interface {
	// ExportGrievanceReport renders the grievance list as an xlsx
	// workbook for overseers.
	ExportGrievanceReport(ctx context.Context, filters repositories.GrievanceFilters, userID string) ([]byte, error)
}

// ===== SERVICE MANAGER =====

type ServiceManager interface {
	// Core service getters
	Grievance() GrievanceService
	Posting() PostingService
	Application() ApplicationService
	Academic() AcademicService
	LostFound() LostFoundService
	User() UserService
	Notification() NotificationService
	Dashboard() DashboardService
	Export() ExportService

	// Health and lifecycle
	Initialize(ctx context.Context) error
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
