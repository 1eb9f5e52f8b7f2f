package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type GrievanceStatus string

const (
	GrievancePending    GrievanceStatus = "pending"
	GrievanceInProgress GrievanceStatus = "in-progress"
	GrievanceResolved   GrievanceStatus = "resolved"
	GrievanceRejected   GrievanceStatus = "rejected"
)

// IsTerminal reports whether the status has no outgoing transitions.
// Resolved is a ratchet: once set it is never reversible.
func (s GrievanceStatus) IsTerminal() bool {
	return s == GrievanceResolved || s == GrievanceRejected
}

type GrievanceCategory string

const (
	CategoryAcademic       GrievanceCategory = "academic"
	CategoryFinancial      GrievanceCategory = "financial"
	CategoryHarassment     GrievanceCategory = "harassment"
	CategoryInfrastructure GrievanceCategory = "infrastructure"
	CategoryOther          GrievanceCategory = "other"
)

type GrievancePriority string

const (
	PriorityLow    GrievancePriority = "low"
	PriorityNormal GrievancePriority = "normal"
	PriorityHigh   GrievancePriority = "high"
	PriorityUrgent GrievancePriority = "urgent"
)

type Grievance struct {
	ID          uint              `json:"id" gorm:"primaryKey"`
	Title       string            `json:"title" gorm:"not null;size:200;index" validate:"required,min=1,max=200"`
	Description string            `json:"description" gorm:"type:text;not null" validate:"required,max=5000"`
	Category    GrievanceCategory `json:"category" gorm:"not null;size:30;index" validate:"required,oneof=academic financial harassment infrastructure other"`
	Status      GrievanceStatus   `json:"status" gorm:"default:pending;size:20;index" validate:"omitempty,oneof=pending in-progress resolved rejected"`
	Priority    GrievancePriority `json:"priority" gorm:"default:normal;size:10" validate:"omitempty,oneof=low normal high urgent"`

	// Attachments holds opaque uploaded-file references; storage itself
	// is external.
	Attachments datatypes.JSON `json:"attachments"`

	// Remark recorded by the overseer on the last status transition.
	// Required when moving into a terminal state.
	Remark *string `json:"remark" gorm:"type:text"`

	// Ownership
	SubmittedBy string  `json:"submitted_by" gorm:"not null;index;size:255"`
	AssigneeID  *string `json:"assignee_id" gorm:"index;size:255"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Submitter User  `json:"submitter" gorm:"foreignKey:SubmittedBy"`
	Assignee  *User `json:"assignee,omitempty" gorm:"foreignKey:AssigneeID"`
}

func (Grievance) TableName() string {
	return "grievances"
}

// CanTransition validates a grievance status move. Terminal states are
// locked; in-progress can only be reached from pending.
func (s GrievanceStatus) CanTransition(to GrievanceStatus) bool {
	if s.IsTerminal() {
		return false
	}
	switch s {
	case GrievancePending:
		return to == GrievanceInProgress || to == GrievanceRejected
	case GrievanceInProgress:
		return to == GrievanceResolved || to == GrievanceRejected
	}
	return false
}
