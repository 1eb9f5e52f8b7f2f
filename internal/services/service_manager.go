package services

import (
	"context"
	"fmt"

	"github.com/campuslink/campus-service/internal/events"
	"github.com/campuslink/campus-service/internal/repositories"
	"github.com/campuslink/campus-service/internal/utils"
	"github.com/campuslink/campus-service/internal/validator"
)

// DefaultServiceManager wires all services over one repository, one
// validator and one event publisher. Getters panic before Initialize;
// wiring bugs should fail at startup, not at request time.
type DefaultServiceManager struct {
	repo           repositories.Repository
	logger         utils.Logger
	validator      *validator.Validator
	eventPublisher events.EventPublisher

	grievance    GrievanceService
	posting      PostingService
	application  ApplicationService
	academic     AcademicService
	lostFound    LostFoundService
	user         UserService
	notification NotificationService
	dashboard    DashboardService
	export       ExportService

	initialized bool
}

// NewDefaultServiceManager creates the service manager
func NewDefaultServiceManager(repo repositories.Repository, eventPublisher events.EventPublisher, logger utils.Logger, v *validator.Validator) *DefaultServiceManager {
	return &DefaultServiceManager{
		repo:           repo,
		logger:         logger,
		validator:      v,
		eventPublisher: eventPublisher,
	}
}

// Initialize constructs all services. Order matters only for the
// notification service, which the lifecycle services depend on.
func (sm *DefaultServiceManager) Initialize(ctx context.Context) error {
	if sm.repo == nil {
		return fmt.Errorf("repository is required")
	}
	if sm.validator == nil {
		return fmt.Errorf("validator is required")
	}
	if sm.eventPublisher == nil {
		return fmt.Errorf("event publisher is required")
	}

	if err := sm.repo.Ping(ctx); err != nil {
		return fmt.Errorf("repository health check failed: %w", err)
	}

	sm.notification = NewNotificationService(sm.repo, sm.eventPublisher, sm.logger, sm.validator)
	sm.grievance = NewGrievanceService(sm.repo, sm.logger, sm.validator, sm.notification)
	sm.posting = NewPostingService(sm.repo, sm.logger, sm.validator, sm.notification)
	sm.application = NewApplicationService(sm.repo, sm.logger, sm.validator, sm.notification)
	sm.academic = NewAcademicService(sm.repo, sm.logger, sm.validator)
	sm.lostFound = NewLostFoundService(sm.repo, sm.logger, sm.validator, sm.notification)
	sm.user = NewUserService(sm.repo, sm.logger, sm.validator)
	sm.dashboard = NewDashboardService(sm.repo, sm.logger)
	sm.export = NewExportService(sm.repo, sm.logger)

	sm.initialized = true
	sm.logger.Info("service manager initialized")
	return nil
}

func (sm *DefaultServiceManager) mustBeInitialized() {
	if !sm.initialized {
		panic("service manager not initialized, call Initialize first")
	}
}

// Grievance returns the grievance service
func (sm *DefaultServiceManager) Grievance() GrievanceService {
	sm.mustBeInitialized()
	return sm.grievance
}

// Posting returns the posting service
func (sm *DefaultServiceManager) Posting() PostingService {
	sm.mustBeInitialized()
	return sm.posting
}

// Application returns the application service
func (sm *DefaultServiceManager) Application() ApplicationService {
	sm.mustBeInitialized()
	return sm.application
}

// Academic returns the academic service
func (sm *DefaultServiceManager) Academic() AcademicService {
	sm.mustBeInitialized()
	return sm.academic
}

// LostFound returns the lost and found service
func (sm *DefaultServiceManager) LostFound() LostFoundService {
	sm.mustBeInitialized()
	return sm.lostFound
}

// User returns the user service
func (sm *DefaultServiceManager) User() UserService {
	sm.mustBeInitialized()
	return sm.user
}

// Notification returns the notification service
func (sm *DefaultServiceManager) Notification() NotificationService {
	sm.mustBeInitialized()
	return sm.notification
}

// Dashboard returns the dashboard service
func (sm *DefaultServiceManager) Dashboard() DashboardService {
	sm.mustBeInitialized()
	return sm.dashboard
}

// Export returns the export service
func (sm *DefaultServiceManager) Export() ExportService {
	sm.mustBeInitialized()
	return sm.export
}

// HealthCheck verifies the backing store and cache are reachable
func (sm *DefaultServiceManager) HealthCheck(ctx context.Context) error {
	if !sm.initialized {
		return fmt.Errorf("service manager not initialized")
	}
	return sm.repo.Ping(ctx)
}

// Shutdown closes the event publisher; repository connections are
// owned and closed by the repository manager.
func (sm *DefaultServiceManager) Shutdown(ctx context.Context) error {
	if sm.eventPublisher != nil {
		if err := sm.eventPublisher.Close(); err != nil {
			return fmt.Errorf("failed to close event publisher: %w", err)
		}
	}

	sm.logger.Info("service manager shut down")
	return nil
}
