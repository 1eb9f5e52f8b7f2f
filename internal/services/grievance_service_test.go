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

// mockGrievanceRepository is an in-memory grievance store.
type mockGrievanceRepository struct {
	repositories.GrievanceRepository
	byID   map[uint]*models.Grievance
	nextID uint
}

func newMockGrievanceRepository() *mockGrievanceRepository {
	return &mockGrievanceRepository{byID: make(map[uint]*models.Grievance)}
}

func (m *mockGrievanceRepository) Create(ctx context.Context, tx *gorm.DB, grievance *models.Grievance) error {
	m.nextID++
	grievance.ID = m.nextID
	stored := *grievance
	m.byID[grievance.ID] = &stored
	return nil
}

func (m *mockGrievanceRepository) GetByIDWithRefs(ctx context.Context, tx *gorm.DB, id uint) (*models.Grievance, error) {
	grievance, ok := m.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *grievance
	return &clone, nil
}

func (m *mockGrievanceRepository) Update(ctx context.Context, tx *gorm.DB, grievance *models.Grievance) error {
	stored := *grievance
	m.byID[grievance.ID] = &stored
	return nil
}

func (m *mockGrievanceRepository) GetByOwner(ctx context.Context, tx *gorm.DB, ownerID string, filters repositories.GrievanceFilters) ([]*models.Grievance, int64, error) {
	var out []*models.Grievance
	for _, g := range m.byID {
		if g.SubmittedBy == ownerID {
			clone := *g
			out = append(out, &clone)
		}
	}
	return out, int64(len(out)), nil
}

// grievanceTestRepo overlays a working grievance store onto the nil
// aggregate.
type grievanceTestRepo struct {
	mockRepository
	grievances *mockGrievanceRepository
}

func (m *grievanceTestRepo) Grievance() repositories.GrievanceRepository { return m.grievances }

func newTestGrievanceService() (GrievanceService, *grievanceTestRepo, *events.MockEventPublisher) {
	slogLogger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	logger := utils.NewSlogLogger(slogLogger)
	publisher := events.NewMockEventPublisher(slogLogger)
	v := validator.New()

	repo := &grievanceTestRepo{
		mockRepository: mockRepository{users: &mockUserRepository{users: map[string]*models.User{
			"student-1":   {ID: "student-1", Role: models.RoleStudent, Status: models.AccountActive},
			"student-2":   {ID: "student-2", Role: models.RoleStudent, Status: models.AccountActive},
			"faculty-1":   {ID: "faculty-1", Role: models.RoleFaculty, Status: models.AccountActive},
			"authority-1": {ID: "authority-1", Role: models.RoleAuthority, Status: models.AccountActive},
		}}},
		grievances: newMockGrievanceRepository(),
	}

	notifier := NewNotificationService(repo, publisher, logger, v)
	return NewGrievanceService(repo, logger, v, notifier), repo, publisher
}

func submitGrievance(t *testing.T, service GrievanceService) *GrievanceResponse {
	t.Helper()

	created, err := service.Create(context.Background(), &CreateGrievanceRequest{
		Title:       "Wifi outage in library",
		Description: "No connectivity on floors 2 and 3 since Monday.",
		Category:    models.CategoryInfrastructure,
	}, "student-1")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	return created
}

func TestGrievanceService_Create(t *testing.T) {
	service, _, publisher := newTestGrievanceService()

	created := submitGrievance(t, service)

	if created.Status != models.GrievancePending {
		t.Errorf("Expected pending status, got %s", created.Status)
	}
	if created.Priority != models.PriorityNormal {
		t.Errorf("Expected default normal priority, got %s", created.Priority)
	}
	if !created.CanEdit {
		t.Error("Owner should be able to edit a pending grievance")
	}
	if created.CanUpdateStatus {
		t.Error("Student owner must not see the status-transition capability")
	}

	published := publisher.GetPublishedEvents()
	if len(published) != 1 || published[0].Type != events.GrievanceCreated {
		t.Errorf("Expected one grievance.created event, got %v", published)
	}
}

func TestGrievanceService_CreateDeniedForFaculty(t *testing.T) {
	service, _, _ := newTestGrievanceService()

	_, err := service.Create(context.Background(), &CreateGrievanceRequest{
		Title:       "Test",
		Description: "Test",
		Category:    models.CategoryOther,
	}, "faculty-1")
	if !IsPermissionError(err) {
		t.Errorf("Expected permission error, got %v", err)
	}
}

func TestGrievanceService_StatusLifecycle(t *testing.T) {
	service, _, publisher := newTestGrievanceService()
	ctx := context.Background()

	created := submitGrievance(t, service)
	publisher.ClearEvents()

	t.Run("OwnerCannotTransition", func(t *testing.T) {
		_, err := service.UpdateStatus(ctx, created.ID, &GrievanceStatusRequest{
			Status: models.GrievanceInProgress,
		}, "student-1")
		if !IsPermissionError(err) {
			t.Errorf("Expected permission error, got %v", err)
		}
	})

	t.Run("AuthorityMovesToInProgress", func(t *testing.T) {
		updated, err := service.UpdateStatus(ctx, created.ID, &GrievanceStatusRequest{
			Status: models.GrievanceInProgress,
		}, "authority-1")
		if err != nil {
			t.Fatalf("UpdateStatus failed: %v", err)
		}
		if updated.Status != models.GrievanceInProgress {
			t.Errorf("Expected in-progress, got %s", updated.Status)
		}

		published := publisher.GetPublishedEvents()
		if len(published) != 1 || published[0].Type != events.GrievanceStatusChanged {
			t.Fatalf("Expected one status change event, got %v", published)
		}
		if published[0].Rooms[0] != "user:student-1" {
			t.Errorf("Status event should target the submitter, got %v", published[0].Rooms)
		}
	})

	t.Run("ResolveWithoutRemarkRejected", func(t *testing.T) {
		_, err := service.UpdateStatus(ctx, created.ID, &GrievanceStatusRequest{
			Status: models.GrievanceResolved,
		}, "authority-1")
		if _, ok := err.(validator.ValidationErrors); !ok {
			t.Errorf("Expected validation errors, got %v", err)
		}
	})

	t.Run("ResolveWithRemark", func(t *testing.T) {
		remark := "access points replaced"
		updated, err := service.UpdateStatus(ctx, created.ID, &GrievanceStatusRequest{
			Status: models.GrievanceResolved,
			Remark: &remark,
		}, "authority-1")
		if err != nil {
			t.Fatalf("UpdateStatus failed: %v", err)
		}
		if updated.Status != models.GrievanceResolved {
			t.Errorf("Expected resolved, got %s", updated.Status)
		}
		if updated.CanEdit || updated.CanUpdateStatus {
			t.Error("Terminal grievance must expose no edit capabilities")
		}
	})

	t.Run("TerminalIsLocked", func(t *testing.T) {
		_, err := service.UpdateStatus(ctx, created.ID, &GrievanceStatusRequest{
			Status: models.GrievancePending,
		}, "authority-1")
		if _, ok := err.(validator.ValidationErrors); !ok {
			t.Errorf("Expected validation errors on terminal record, got %v", err)
		}
	})

	t.Run("OwnerEditAfterResolveConflicts", func(t *testing.T) {
		title := "edited title"
		_, err := service.Update(ctx, created.ID, &UpdateGrievanceRequest{Title: &title}, "student-1")
		if !IsConflictError(err) {
			t.Errorf("Expected conflict error, got %v", err)
		}
	})
}

func TestGrievanceService_ReadVisibility(t *testing.T) {
	service, _, _ := newTestGrievanceService()
	ctx := context.Background()

	created := submitGrievance(t, service)

	if _, err := service.GetByID(ctx, created.ID, "student-1"); err != nil {
		t.Errorf("Owner read failed: %v", err)
	}
	if _, err := service.GetByID(ctx, created.ID, "authority-1"); err != nil {
		t.Errorf("Overseer read failed: %v", err)
	}
	if _, err := service.GetByID(ctx, created.ID, "student-2"); !IsPermissionError(err) {
		t.Errorf("Expected permission error for unrelated student, got %v", err)
	}
	if _, err := service.GetByID(ctx, 999, "authority-1"); !IsNotFoundError(err) {
		t.Errorf("Expected not found, got %v", err)
	}

	mine, err := service.GetMine(ctx, "student-1", repositories.GrievanceFilters{})
	if err != nil {
		t.Fatalf("GetMine failed: %v", err)
	}
	if mine.Total != 1 {
		t.Errorf("Expected 1 own grievance, got %d", mine.Total)
	}
}
