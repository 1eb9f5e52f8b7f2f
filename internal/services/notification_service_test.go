package services

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"gorm.io/gorm"

	"github.com/campuslink/campus-service/internal/events"
	"github.com/campuslink/campus-service/internal/models"
	"github.com/campuslink/campus-service/internal/repositories"
	"github.com/campuslink/campus-service/internal/utils"
	"github.com/campuslink/campus-service/internal/validator"
)

// mockUserRepository serves caller lookups from a fixed user map.
type mockUserRepository struct {
	repositories.UserRepository
	users map[string]*models.User
}

func (m *mockUserRepository) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.User, error) {
	user, ok := m.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

// mockRepository is a minimal aggregate for services that only resolve
// the caller.
type mockRepository struct {
	users *mockUserRepository
}

func (m *mockRepository) Grievance() repositories.GrievanceRepository         { return nil }
func (m *mockRepository) Opportunity() repositories.OpportunityRepository     { return nil }
func (m *mockRepository) Internship() repositories.InternshipRepository       { return nil }
func (m *mockRepository) Application() repositories.ApplicationRepository     { return nil }
func (m *mockRepository) Course() repositories.CourseRepository               { return nil }
func (m *mockRepository) Resource() repositories.ResourceRepository           { return nil }
func (m *mockRepository) Enrollment() repositories.EnrollmentRepository       { return nil }
func (m *mockRepository) AcademicEvent() repositories.AcademicEventRepository { return nil }
func (m *mockRepository) LostFound() repositories.LostFoundRepository         { return nil }
func (m *mockRepository) User() repositories.UserRepository                   { return m.users }
func (m *mockRepository) Domain() repositories.DomainRepository               { return nil }
func (m *mockRepository) Dashboard() repositories.DashboardRepository         { return nil }
func (m *mockRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return fn(m)
}
func (m *mockRepository) Ping(ctx context.Context) error { return nil }
func (m *mockRepository) Close() error                   { return nil }

func newTestNotificationService(users map[string]*models.User) (*notificationEventService, *events.MockEventPublisher) {
	slogLogger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	publisher := events.NewMockEventPublisher(slogLogger)

	service := &notificationEventService{
		repo:           &mockRepository{users: &mockUserRepository{users: users}},
		eventPublisher: publisher,
		logger:         utils.NewSlogLogger(slogLogger),
		validator:      validator.New(),
	}
	return service, publisher
}

func TestNotificationEventService_GrievanceEvents(t *testing.T) {
	service, publisher := newTestNotificationService(nil)
	ctx := context.Background()

	t.Run("GrievanceCreated_TargetsOverseerRooms", func(t *testing.T) {
		publisher.ClearEvents()

		grievance := &models.Grievance{
			ID:          42,
			Title:       "Broken projector in LH-3",
			Category:    models.CategoryInfrastructure,
			Priority:    models.PriorityHigh,
			SubmittedBy: "student-1",
		}

		if err := service.NotifyGrievanceCreated(ctx, grievance); err != nil {
			t.Fatalf("NotifyGrievanceCreated failed: %v", err)
		}

		published := publisher.GetPublishedEvents()
		if len(published) != 1 {
			t.Fatalf("Expected 1 event, got %d", len(published))
		}

		event := published[0]
		if event.Type != events.GrievanceCreated {
			t.Errorf("Expected type %s, got %s", events.GrievanceCreated, event.Type)
		}
		wantRooms := []string{"role:authority", "role:admin"}
		if len(event.Rooms) != len(wantRooms) {
			t.Fatalf("Expected rooms %v, got %v", wantRooms, event.Rooms)
		}
		for i, room := range wantRooms {
			if event.Rooms[i] != room {
				t.Errorf("Expected room %s at %d, got %s", room, i, event.Rooms[i])
			}
		}
		if event.Data["grievance_id"] != uint(42) {
			t.Errorf("Expected grievance_id 42, got %v", event.Data["grievance_id"])
		}
	})

	t.Run("StatusChanged_TargetsSubmitterRoom", func(t *testing.T) {
		publisher.ClearEvents()

		remark := "facilities team dispatched"
		grievance := &models.Grievance{
			ID:          42,
			Title:       "Broken projector in LH-3",
			Status:      models.GrievanceInProgress,
			Remark:      &remark,
			SubmittedBy: "student-1",
		}

		if err := service.NotifyGrievanceStatusChanged(ctx, grievance, models.GrievancePending); err != nil {
			t.Fatalf("NotifyGrievanceStatusChanged failed: %v", err)
		}

		published := publisher.GetPublishedEvents()
		if len(published) != 1 {
			t.Fatalf("Expected 1 event, got %d", len(published))
		}

		event := published[0]
		if len(event.Rooms) != 1 || event.Rooms[0] != "user:student-1" {
			t.Errorf("Expected room user:student-1, got %v", event.Rooms)
		}
		if event.Data["previous_status"] != models.GrievancePending {
			t.Errorf("Expected previous_status pending, got %v", event.Data["previous_status"])
		}
	})
}

func TestNotificationEventService_EventStructure(t *testing.T) {
	service, publisher := newTestNotificationService(nil)
	ctx := context.Background()

	item := &models.LostFoundItem{
		ID:       7,
		Title:    "Blue water bottle",
		PostedBy: "student-2",
	}

	if err := service.NotifyItemClaimed(ctx, item); err != nil {
		t.Fatalf("NotifyItemClaimed failed: %v", err)
	}

	published := publisher.GetPublishedEvents()
	if len(published) != 1 {
		t.Fatalf("Expected 1 event, got %d", len(published))
	}

	event := published[0]
	if event.ID == "" {
		t.Error("Event ID should not be empty")
	}
	if event.Source != "campus-service" {
		t.Errorf("Expected source 'campus-service', got '%s'", event.Source)
	}
	if event.Version != "1.0" {
		t.Errorf("Expected version '1.0', got '%s'", event.Version)
	}
	if event.Timestamp.IsZero() {
		t.Error("Event timestamp should be set")
	}
}

func TestNotificationEventService_SendBulkNotification(t *testing.T) {
	users := map[string]*models.User{
		"admin-1":   {ID: "admin-1", Role: models.RoleAdmin, Status: models.AccountActive},
		"student-1": {ID: "student-1", Role: models.RoleStudent, Status: models.AccountActive},
	}
	service, publisher := newTestNotificationService(users)
	ctx := context.Background()

	t.Run("AdminBroadcast", func(t *testing.T) {
		publisher.ClearEvents()

		req := &BulkNotificationRequest{
			Roles:   []models.UserRole{models.RoleStudent, models.RoleFaculty},
			Message: "Campus closed tomorrow for maintenance",
		}

		if err := service.SendBulkNotification(ctx, req, "admin-1"); err != nil {
			t.Fatalf("SendBulkNotification failed: %v", err)
		}

		published := publisher.GetPublishedEvents()
		if len(published) != 1 {
			t.Fatalf("Expected 1 event, got %d", len(published))
		}

		event := published[0]
		if event.Type != events.SystemBulkNotification {
			t.Errorf("Expected type %s, got %s", events.SystemBulkNotification, event.Type)
		}
		if len(event.Rooms) != 2 || event.Rooms[0] != "role:student" || event.Rooms[1] != "role:faculty" {
			t.Errorf("Unexpected rooms %v", event.Rooms)
		}
		if event.Data["sender_id"] != "admin-1" {
			t.Errorf("Expected sender_id admin-1, got %v", event.Data["sender_id"])
		}
	})

	t.Run("NonAdminRejected", func(t *testing.T) {
		publisher.ClearEvents()

		req := &BulkNotificationRequest{
			Roles:   []models.UserRole{models.RoleStudent},
			Message: "unauthorized broadcast",
		}

		err := service.SendBulkNotification(ctx, req, "student-1")
		if err == nil {
			t.Fatal("Expected permission error for non-admin sender")
		}
		if !IsPermissionError(err) {
			t.Errorf("Expected permission error, got %v", err)
		}
		if len(publisher.GetPublishedEvents()) != 0 {
			t.Error("No event should be published on authorization failure")
		}
	})

	t.Run("UnknownSenderUnauthenticated", func(t *testing.T) {
		req := &BulkNotificationRequest{
			Roles:   []models.UserRole{models.RoleStudent},
			Message: "ghost broadcast",
		}

		err := service.SendBulkNotification(ctx, req, "nobody")
		if err != ErrUnauthenticated {
			t.Errorf("Expected ErrUnauthenticated, got %v", err)
		}
	})
}
