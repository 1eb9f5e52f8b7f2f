package repositories

import "context"

// Repository aggregates all entity repositories.
type Repository interface {
	// Grievance domain
	Grievance() GrievanceRepository

	// Opportunity domain
	Opportunity() OpportunityRepository
	Internship() InternshipRepository
	Application() ApplicationRepository

	// Academic domain
	Course() CourseRepository
	Resource() ResourceRepository
	Enrollment() EnrollmentRepository
	AcademicEvent() AcademicEventRepository

	// Lost & found domain
	LostFound() LostFoundRepository

	// User governance domain
	User() UserRepository
	Domain() DomainRepository

	// Dashboard domain
	Dashboard() DashboardRepository

	// Transaction support
	WithTransaction(ctx context.Context, fn func(Repository) error) error

	// Health check
	Ping(ctx context.Context) error

	// Close connections
	Close() error
}

// RepositoryManager interface for managing repository lifecycle
type RepositoryManager interface {
	// Initialize repositories with database connections
	Initialize() error

	// Get repository instance
	GetRepository() Repository

	// Health check for all repositories
	HealthCheck(ctx context.Context) error

	// Graceful shutdown
	Shutdown(ctx context.Context) error
}
