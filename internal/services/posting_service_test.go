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

// mockInternshipRepository is an in-memory internship store.
type mockInternshipRepository struct {
	repositories.InternshipRepository
	byID   map[uint]*models.Internship
	nextID uint
}

func (m *mockInternshipRepository) Create(ctx context.Context, tx *gorm.DB, internship *models.Internship) error {
	m.nextID++
	internship.ID = m.nextID
	stored := *internship
	m.byID[internship.ID] = &stored
	return nil
}

func (m *mockInternshipRepository) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Internship, error) {
	internship, ok := m.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *internship
	return &clone, nil
}

func (m *mockInternshipRepository) Update(ctx context.Context, tx *gorm.DB, internship *models.Internship) error {
	stored := *internship
	m.byID[internship.ID] = &stored
	return nil
}

type postingTestRepo struct {
	mockRepository
	internships *mockInternshipRepository
}

func (m *postingTestRepo) Internship() repositories.InternshipRepository { return m.internships }

func newTestPostingService() (PostingService, *events.MockEventPublisher) {
	slogLogger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	logger := utils.NewSlogLogger(slogLogger)
	publisher := events.NewMockEventPublisher(slogLogger)
	v := validator.New()

	repo := &postingTestRepo{
		mockRepository: mockRepository{users: &mockUserRepository{users: map[string]*models.User{
			"student-1": {ID: "student-1", Role: models.RoleStudent, Status: models.AccountActive},
			"faculty-1": {ID: "faculty-1", Role: models.RoleFaculty, Status: models.AccountActive},
		}}},
		internships: &mockInternshipRepository{byID: make(map[uint]*models.Internship)},
	}

	notifier := NewNotificationService(repo, publisher, logger, v)
	return NewPostingService(repo, logger, v, notifier), publisher
}

func TestPostingService_InternshipLifecycle(t *testing.T) {
	service, publisher := newTestPostingService()
	ctx := context.Background()

	duration := "3 months"
	location := "Bangalore"

	t.Run("FacultyCreates", func(t *testing.T) {
		created, err := service.CreateInternship(ctx, &CreatePostingRequest{
			Title:       "Summer research internship",
			Description: "Distributed systems lab, full time on campus.",
			Skills:      []string{"go", "kafka"},
			Duration:    &duration,
			Location:    &location,
		}, "faculty-1")
		if err != nil {
			t.Fatalf("CreateInternship failed: %v", err)
		}
		if created.Duration == nil || *created.Duration != duration {
			t.Errorf("Expected duration %q, got %v", duration, created.Duration)
		}
		if created.Location == nil || *created.Location != location {
			t.Errorf("Expected location %q, got %v", location, created.Location)
		}
		if !created.CanEdit {
			t.Error("Poster should be able to edit their internship")
		}

		published := publisher.GetPublishedEvents()
		if len(published) != 1 || published[0].Type != events.InternshipPosted {
			t.Fatalf("Expected one internship.posted event, got %v", published)
		}
	})

	t.Run("StudentCannotCreate", func(t *testing.T) {
		_, err := service.CreateInternship(ctx, &CreatePostingRequest{
			Title:       "Test",
			Description: "Test",
		}, "student-1")
		if !IsPermissionError(err) {
			t.Errorf("Expected permission error, got %v", err)
		}
	})

	t.Run("PosterUpdatesLocation", func(t *testing.T) {
		moved := "Remote"
		updated, err := service.UpdateInternship(ctx, 1, &UpdatePostingRequest{
			Location: &moved,
		}, "faculty-1")
		if err != nil {
			t.Fatalf("UpdateInternship failed: %v", err)
		}
		if updated.Location == nil || *updated.Location != moved {
			t.Errorf("Expected location %q, got %v", moved, updated.Location)
		}
		if updated.Duration == nil || *updated.Duration != duration {
			t.Errorf("Partial update should leave duration %q, got %v", duration, updated.Duration)
		}
	})

	t.Run("StudentSeesApplyCapability", func(t *testing.T) {
		got, err := service.GetInternship(ctx, 1, "student-1")
		if err != nil {
			t.Fatalf("GetInternship failed: %v", err)
		}
		if !got.CanApply {
			t.Error("Student should see the apply capability on an open internship")
		}
		if got.CanEdit {
			t.Error("Student must not see the edit capability")
		}
	})

	t.Run("MissingInternshipNotFound", func(t *testing.T) {
		if _, err := service.GetInternship(ctx, 99, "student-1"); !IsNotFoundError(err) {
			t.Errorf("Expected not found, got %v", err)
		}
	})
}
