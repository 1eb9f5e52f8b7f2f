package services

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/campuslink/campus-service/internal/events"
	"github.com/campuslink/campus-service/internal/models"
	"github.com/campuslink/campus-service/internal/repositories"
	"github.com/campuslink/campus-service/internal/utils"
	"github.com/campuslink/campus-service/internal/validator"
)

// mockApplicationRepository is an in-memory application store that
// enforces the one-application-per-posting uniqueness the composite
// index provides in Postgres.
type mockApplicationRepository struct {
	repositories.ApplicationRepository
	byID          map[uint]*models.Application
	opportunities map[uint]*models.Opportunity
	nextID        uint
}

func (m *mockApplicationRepository) Create(ctx context.Context, tx *gorm.DB, application *models.Application) error {
	for _, existing := range m.byID {
		if existing.StudentID != application.StudentID {
			continue
		}
		if application.OpportunityID != nil && existing.OpportunityID != nil && *existing.OpportunityID == *application.OpportunityID {
			return repositories.ErrDuplicate
		}
		if application.InternshipID != nil && existing.InternshipID != nil && *existing.InternshipID == *application.InternshipID {
			return repositories.ErrDuplicate
		}
	}

	m.nextID++
	application.ID = m.nextID
	stored := *application
	m.byID[application.ID] = &stored
	return nil
}

func (m *mockApplicationRepository) GetByIDWithRefs(ctx context.Context, tx *gorm.DB, id uint) (*models.Application, error) {
	application, ok := m.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}

	clone := *application
	if clone.OpportunityID != nil {
		clone.Opportunity = m.opportunities[*clone.OpportunityID]
	}
	return &clone, nil
}

func (m *mockApplicationRepository) Update(ctx context.Context, tx *gorm.DB, application *models.Application) error {
	stored := *application
	m.byID[application.ID] = &stored
	return nil
}

func (m *mockApplicationRepository) GetByParentAndStudent(ctx context.Context, tx *gorm.DB, opportunityID, internshipID *uint, studentID string) (*models.Application, error) {
	for _, application := range m.byID {
		if application.StudentID != studentID {
			continue
		}
		if opportunityID != nil && application.OpportunityID != nil && *application.OpportunityID == *opportunityID {
			clone := *application
			return &clone, nil
		}
		if internshipID != nil && application.InternshipID != nil && *application.InternshipID == *internshipID {
			clone := *application
			return &clone, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

// mockOpportunityRepository serves posting lookups from a fixed map.
type mockOpportunityRepository struct {
	repositories.OpportunityRepository
	byID map[uint]*models.Opportunity
}

func (m *mockOpportunityRepository) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Opportunity, error) {
	opportunity, ok := m.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return opportunity, nil
}

type applicationTestRepo struct {
	mockRepository
	applications  *mockApplicationRepository
	opportunities *mockOpportunityRepository
}

func (m *applicationTestRepo) Application() repositories.ApplicationRepository { return m.applications }
func (m *applicationTestRepo) Opportunity() repositories.OpportunityRepository {
	return m.opportunities
}

func newTestApplicationService() (ApplicationService, *applicationTestRepo, *events.MockEventPublisher) {
	slogLogger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	logger := utils.NewSlogLogger(slogLogger)
	publisher := events.NewMockEventPublisher(slogLogger)
	v := validator.New()

	future := time.Now().Add(7 * 24 * time.Hour)
	past := time.Now().Add(-time.Hour)
	opportunities := map[uint]*models.Opportunity{
		1: {ID: 1, Title: "Backend engineer", PostedBy: "faculty-1", Deadline: &future},
		2: {ID: 2, Title: "Expired role", PostedBy: "faculty-1", Deadline: &past},
	}

	repo := &applicationTestRepo{
		mockRepository: mockRepository{users: &mockUserRepository{users: map[string]*models.User{
			"student-1": {ID: "student-1", Role: models.RoleStudent, Status: models.AccountActive},
			"student-2": {ID: "student-2", Role: models.RoleStudent, Status: models.AccountActive},
			"faculty-1": {ID: "faculty-1", Role: models.RoleFaculty, Status: models.AccountActive},
			"faculty-2": {ID: "faculty-2", Role: models.RoleFaculty, Status: models.AccountActive},
		}}},
		applications:  &mockApplicationRepository{byID: make(map[uint]*models.Application), opportunities: opportunities},
		opportunities: &mockOpportunityRepository{byID: opportunities},
	}

	notifier := NewNotificationService(repo, publisher, logger, v)
	return NewApplicationService(repo, logger, v, notifier), repo, publisher
}

func TestApplicationService_Apply(t *testing.T) {
	service, _, publisher := newTestApplicationService()
	ctx := context.Background()
	oppID := uint(1)

	t.Run("StudentApplies", func(t *testing.T) {
		created, err := service.Apply(ctx, &CreateApplicationRequest{
			OpportunityID: &oppID,
			ResumeURL:     "https://cdn.example.com/resume.pdf",
		}, "student-1")
		if err != nil {
			t.Fatalf("Apply failed: %v", err)
		}
		if created.Status != models.ApplicationApplied {
			t.Errorf("Expected Applied status, got %s", created.Status)
		}
		if created.Orphaned {
			t.Error("Fresh application must not be orphaned")
		}

		published := publisher.GetPublishedEvents()
		if len(published) != 1 || published[0].Type != events.ApplicationCreated {
			t.Fatalf("Expected one application.created event, got %v", published)
		}
		if published[0].Rooms[0] != "user:faculty-1" {
			t.Errorf("Event should target the poster, got %v", published[0].Rooms)
		}
	})

	t.Run("DuplicateApplicationConflicts", func(t *testing.T) {
		_, err := service.Apply(ctx, &CreateApplicationRequest{
			OpportunityID: &oppID,
			ResumeURL:     "https://cdn.example.com/resume.pdf",
		}, "student-1")
		if !IsConflictError(err) {
			t.Errorf("Expected conflict error, got %v", err)
		}
	})

	t.Run("OtherStudentStillApplies", func(t *testing.T) {
		if _, err := service.Apply(ctx, &CreateApplicationRequest{
			OpportunityID: &oppID,
			ResumeURL:     "https://cdn.example.com/resume2.pdf",
		}, "student-2"); err != nil {
			t.Errorf("Second student should apply cleanly: %v", err)
		}
	})

	t.Run("PastDeadlineConflicts", func(t *testing.T) {
		expiredID := uint(2)
		_, err := service.Apply(ctx, &CreateApplicationRequest{
			OpportunityID: &expiredID,
			ResumeURL:     "https://cdn.example.com/resume.pdf",
		}, "student-2")
		if !IsConflictError(err) {
			t.Errorf("Expected conflict on expired posting, got %v", err)
		}
	})

	t.Run("MissingPostingNotFound", func(t *testing.T) {
		missing := uint(99)
		_, err := service.Apply(ctx, &CreateApplicationRequest{
			OpportunityID: &missing,
			ResumeURL:     "https://cdn.example.com/resume.pdf",
		}, "student-2")
		if !IsNotFoundError(err) {
			t.Errorf("Expected not found, got %v", err)
		}
	})

	t.Run("FacultyCannotApply", func(t *testing.T) {
		_, err := service.Apply(ctx, &CreateApplicationRequest{
			OpportunityID: &oppID,
			ResumeURL:     "https://cdn.example.com/resume.pdf",
		}, "faculty-2")
		if !IsPermissionError(err) {
			t.Errorf("Expected permission error, got %v", err)
		}
	})
}

func TestApplicationService_ReviewLifecycle(t *testing.T) {
	service, repo, publisher := newTestApplicationService()
	ctx := context.Background()
	oppID := uint(1)

	created, err := service.Apply(ctx, &CreateApplicationRequest{
		OpportunityID: &oppID,
		ResumeURL:     "https://cdn.example.com/resume.pdf",
	}, "student-1")
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	publisher.ClearEvents()

	t.Run("ApplicantReadsOwn", func(t *testing.T) {
		if _, err := service.GetByID(ctx, created.ID, "student-1"); err != nil {
			t.Errorf("Applicant read failed: %v", err)
		}
	})

	t.Run("UnrelatedStudentDenied", func(t *testing.T) {
		if _, err := service.GetByID(ctx, created.ID, "student-2"); !IsPermissionError(err) {
			t.Errorf("Expected permission error, got %v", err)
		}
	})

	t.Run("ApplicantCannotReview", func(t *testing.T) {
		_, err := service.UpdateStatus(ctx, created.ID, &ApplicationStatusRequest{
			Status: models.ApplicationShortlisted,
		}, "student-1")
		if !IsPermissionError(err) {
			t.Errorf("Expected permission error, got %v", err)
		}
	})

	t.Run("UnrelatedPosterCannotReview", func(t *testing.T) {
		_, err := service.UpdateStatus(ctx, created.ID, &ApplicationStatusRequest{
			Status: models.ApplicationShortlisted,
		}, "faculty-2")
		if !IsPermissionError(err) {
			t.Errorf("Expected permission error, got %v", err)
		}
	})

	t.Run("PosterShortlists", func(t *testing.T) {
		updated, err := service.UpdateStatus(ctx, created.ID, &ApplicationStatusRequest{
			Status: models.ApplicationShortlisted,
		}, "faculty-1")
		if err != nil {
			t.Fatalf("UpdateStatus failed: %v", err)
		}
		if updated.Status != models.ApplicationShortlisted {
			t.Errorf("Expected Shortlisted, got %s", updated.Status)
		}

		published := publisher.GetPublishedEvents()
		if len(published) != 1 || published[0].Rooms[0] != "user:student-1" {
			t.Errorf("Status event should target the student, got %v", published)
		}
	})

	t.Run("SkippingShortlistRejected", func(t *testing.T) {
		fresh, err := service.Apply(ctx, &CreateApplicationRequest{
			OpportunityID: &oppID,
			ResumeURL:     "https://cdn.example.com/resume2.pdf",
		}, "student-2")
		if err != nil {
			t.Fatalf("Apply failed: %v", err)
		}

		_, err = service.UpdateStatus(ctx, fresh.ID, &ApplicationStatusRequest{
			Status: models.ApplicationAccepted,
		}, "faculty-1")
		if _, ok := err.(validator.ValidationErrors); !ok {
			t.Errorf("Expected validation errors, got %v", err)
		}
	})

	t.Run("OrphanedApplicationIsStatusLocked", func(t *testing.T) {
		// Delete the parent posting out from under the application.
		delete(repo.opportunities.byID, oppID)
		delete(repo.applications.opportunities, oppID)

		got, err := service.GetByID(ctx, created.ID, "student-1")
		if err != nil {
			t.Fatalf("Orphaned application should stay readable: %v", err)
		}
		if !got.Orphaned {
			t.Error("Expected orphaned flag after parent deletion")
		}

		_, err = service.UpdateStatus(ctx, created.ID, &ApplicationStatusRequest{
			Status: models.ApplicationAccepted,
		}, "faculty-1")
		if !IsConflictError(err) {
			t.Errorf("Expected conflict on orphaned application, got %v", err)
		}
	})
}
