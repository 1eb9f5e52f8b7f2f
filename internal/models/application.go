package models

import (
	"time"

	"gorm.io/datatypes"
)

type ApplicationStatus string

const (
	ApplicationApplied     ApplicationStatus = "Applied"
	ApplicationShortlisted ApplicationStatus = "Shortlisted"
	ApplicationAccepted    ApplicationStatus = "Accepted"
	ApplicationRejected    ApplicationStatus = "Rejected"
)

func (s ApplicationStatus) IsTerminal() bool {
	return s == ApplicationAccepted || s == ApplicationRejected
}

// CanTransition validates an application status move:
// Applied -> Shortlisted -> Accepted | Rejected. Rejection is allowed
// straight from Applied.
func (s ApplicationStatus) CanTransition(to ApplicationStatus) bool {
	if s.IsTerminal() {
		return false
	}
	switch s {
	case ApplicationApplied:
		return to == ApplicationShortlisted || to == ApplicationRejected
	case ApplicationShortlisted:
		return to == ApplicationAccepted || to == ApplicationRejected
	}
	return false
}

// Application references exactly one of Opportunity or Internship.
// The composite unique indexes enforce at most one application per
// (parent, student) pair; NULL parent columns never collide, so the
// two indexes are independent. No soft delete here: a resurrected row
// must not shadow the uniqueness guarantee.
type Application struct {
	ID uint `json:"id" gorm:"primaryKey"`

	OpportunityID *uint `json:"opportunity_id" gorm:"uniqueIndex:idx_applications_opportunity_student,priority:1"`
	InternshipID  *uint `json:"internship_id" gorm:"uniqueIndex:idx_applications_internship_student,priority:1"`

	StudentID string `json:"student_id" gorm:"not null;index;size:255;uniqueIndex:idx_applications_opportunity_student,priority:2;uniqueIndex:idx_applications_internship_student,priority:2"`

	ResumeURL string            `json:"resume_url" gorm:"not null;size:500" validate:"required,url"`
	Answers   datatypes.JSON    `json:"answers"`
	Status    ApplicationStatus `json:"status" gorm:"default:Applied;size:20;index" validate:"omitempty,oneof=Applied Shortlisted Accepted Rejected"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations; a nil parent after parent deletion marks the
	// application as orphaned, not an error.
	Opportunity *Opportunity `json:"opportunity,omitempty" gorm:"foreignKey:OpportunityID"`
	Internship  *Internship  `json:"internship,omitempty" gorm:"foreignKey:InternshipID"`
	Student     User         `json:"student" gorm:"foreignKey:StudentID"`
}

func (Application) TableName() string {
	return "applications"
}

// IsOrphaned reports whether the parent posting no longer exists.
// Orphaned applications stay queryable and are treated as archived.
func (a *Application) IsOrphaned() bool {
	if a.OpportunityID != nil {
		return a.Opportunity == nil
	}
	if a.InternshipID != nil {
		return a.Internship == nil
	}
	return true
}

// ParentTitle returns the posting title for notification messages, or
// empty when orphaned.
func (a *Application) ParentTitle() string {
	if a.Opportunity != nil {
		return a.Opportunity.Title
	}
	if a.Internship != nil {
		return a.Internship.Title
	}
	return ""
}
