package validator

import (
	"testing"
	"time"

	"github.com/campuslink/campus-service/internal/models"
)

func hasFieldError(errors ValidationErrors, field string) bool {
	for _, e := range errors {
		if e.Field == field {
			return true
		}
	}
	return false
}

func TestValidateGrievanceCreate(t *testing.T) {
	bv := NewBusinessValidator()

	t.Run("Valid", func(t *testing.T) {
		req := &GrievanceCreateRequest{
			Title:       "Water leakage in hostel block B",
			Description: "The ceiling of room 214 has been leaking for a week.",
			Category:    models.CategoryInfrastructure,
			Priority:    models.PriorityHigh,
		}
		if errors := bv.ValidateGrievanceCreate(req); len(errors) != 0 {
			t.Errorf("Expected no errors, got %v", errors)
		}
	})

	t.Run("UnknownCategory", func(t *testing.T) {
		req := &GrievanceCreateRequest{
			Title:       "Something",
			Description: "Details",
			Category:    models.GrievanceCategory("gossip"),
		}
		errors := bv.ValidateGrievanceCreate(req)
		if !hasFieldError(errors, "category") {
			t.Errorf("Expected category error, got %v", errors)
		}
	})

	t.Run("MissingTitle", func(t *testing.T) {
		req := &GrievanceCreateRequest{
			Description: "Details",
			Category:    models.CategoryAcademic,
		}
		errors := bv.ValidateGrievanceCreate(req)
		if !hasFieldError(errors, "title") {
			t.Errorf("Expected title error, got %v", errors)
		}
	})
}

func TestValidateGrievanceStatus(t *testing.T) {
	bv := NewBusinessValidator()
	remark := "verified and fixed"

	tests := []struct {
		name      string
		from      models.GrievanceStatus
		to        models.GrievanceStatus
		remark    *string
		wantField string // empty means valid
	}{
		{"PendingToInProgress", models.GrievancePending, models.GrievanceInProgress, nil, ""},
		{"PendingToRejectedWithRemark", models.GrievancePending, models.GrievanceRejected, &remark, ""},
		{"InProgressToResolvedWithRemark", models.GrievanceInProgress, models.GrievanceResolved, &remark, ""},
		{"PendingToResolvedSkipsReview", models.GrievancePending, models.GrievanceResolved, &remark, "status"},
		{"TerminalRemarkRequired", models.GrievanceInProgress, models.GrievanceResolved, nil, "remark"},
		{"ResolvedIsLocked", models.GrievanceResolved, models.GrievanceInProgress, nil, "status"},
		{"RejectedIsLocked", models.GrievanceRejected, models.GrievancePending, nil, "status"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := &GrievanceStatusRequest{Status: tt.to, Remark: tt.remark}
			existing := &models.Grievance{Status: tt.from}

			errors := bv.ValidateGrievanceStatus(req, existing)
			if tt.wantField == "" {
				if len(errors) != 0 {
					t.Errorf("Expected valid transition, got %v", errors)
				}
				return
			}
			if !hasFieldError(errors, tt.wantField) {
				t.Errorf("Expected error on %s, got %v", tt.wantField, errors)
			}
		})
	}
}

func TestValidatePostingCreate(t *testing.T) {
	bv := NewBusinessValidator()

	t.Run("PastDeadlineRejected", func(t *testing.T) {
		past := time.Now().Add(-24 * time.Hour)
		req := &PostingCreateRequest{
			Title:       "Backend intern",
			Description: "Six month internship",
			Deadline:    &past,
		}
		errors := bv.ValidatePostingCreate(req)
		if !hasFieldError(errors, "deadline") {
			t.Errorf("Expected deadline error, got %v", errors)
		}
	})

	t.Run("BlankSkillRejected", func(t *testing.T) {
		req := &PostingCreateRequest{
			Title:       "Backend intern",
			Description: "Six month internship",
			Skills:      []string{"go", "  "},
		}
		errors := bv.ValidatePostingCreate(req)
		if !hasFieldError(errors, "skills[1]") {
			t.Errorf("Expected blank skill error, got %v", errors)
		}
	})
}

func TestValidateApplicationCreate(t *testing.T) {
	bv := NewBusinessValidator()
	oppID := uint(1)
	intID := uint(2)

	t.Run("NoParentReference", func(t *testing.T) {
		req := &ApplicationCreateRequest{ResumeURL: "https://cdn.example.com/resume.pdf"}
		errors := bv.ValidateApplicationCreate(req)
		if !hasFieldError(errors, "opportunity_id") {
			t.Errorf("Expected parent reference error, got %v", errors)
		}
	})

	t.Run("BothParentReferences", func(t *testing.T) {
		req := &ApplicationCreateRequest{
			OpportunityID: &oppID,
			InternshipID:  &intID,
			ResumeURL:     "https://cdn.example.com/resume.pdf",
		}
		errors := bv.ValidateApplicationCreate(req)
		if !hasFieldError(errors, "opportunity_id") {
			t.Errorf("Expected exclusivity error, got %v", errors)
		}
	})

	t.Run("Valid", func(t *testing.T) {
		req := &ApplicationCreateRequest{
			OpportunityID: &oppID,
			ResumeURL:     "https://cdn.example.com/resume.pdf",
		}
		if errors := bv.ValidateApplicationCreate(req); len(errors) != 0 {
			t.Errorf("Expected no errors, got %v", errors)
		}
	})
}

func TestValidateApplicationStatus(t *testing.T) {
	bv := NewBusinessValidator()

	tests := []struct {
		name  string
		from  models.ApplicationStatus
		to    models.ApplicationStatus
		valid bool
	}{
		{"AppliedToShortlisted", models.ApplicationApplied, models.ApplicationShortlisted, true},
		{"AppliedToRejected", models.ApplicationApplied, models.ApplicationRejected, true},
		{"AppliedToAcceptedSkipsShortlist", models.ApplicationApplied, models.ApplicationAccepted, false},
		{"ShortlistedToAccepted", models.ApplicationShortlisted, models.ApplicationAccepted, true},
		{"AcceptedIsTerminal", models.ApplicationAccepted, models.ApplicationRejected, false},
		{"RejectedIsTerminal", models.ApplicationRejected, models.ApplicationShortlisted, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := &ApplicationStatusRequest{Status: tt.to}
			existing := &models.Application{Status: tt.from}

			errors := bv.ValidateApplicationStatus(req, existing)
			if tt.valid && len(errors) != 0 {
				t.Errorf("Expected valid transition, got %v", errors)
			}
			if !tt.valid && !hasFieldError(errors, "status") {
				t.Errorf("Expected status error, got %v", errors)
			}
		})
	}
}

func TestValidateEventCreate(t *testing.T) {
	bv := NewBusinessValidator()

	starts := time.Date(2026, 9, 10, 9, 0, 0, 0, time.UTC)
	endsBefore := starts.Add(-time.Hour)
	endsAfter := starts.Add(2 * time.Hour)

	t.Run("EndBeforeStart", func(t *testing.T) {
		req := &EventCreateRequest{
			Title:    "Midterm exam",
			StartsAt: starts,
			EndsAt:   &endsBefore,
		}
		errors := bv.ValidateEventCreate(req)
		if !hasFieldError(errors, "ends_at") {
			t.Errorf("Expected ends_at error, got %v", errors)
		}
	})

	t.Run("Valid", func(t *testing.T) {
		req := &EventCreateRequest{
			Title:    "Midterm exam",
			StartsAt: starts,
			EndsAt:   &endsAfter,
		}
		if errors := bv.ValidateEventCreate(req); len(errors) != 0 {
			t.Errorf("Expected no errors, got %v", errors)
		}
	})
}
