package validator

import (
	"time"

	"github.com/campuslink/campus-service/internal/models"
)

// GrievanceCreateRequest represents the request structure for submitting grievances
type GrievanceCreateRequest struct {
	Title       string                   `json:"title" validate:"required,item_title"`
	Description string                   `json:"description" validate:"required,item_description"`
	Category    models.GrievanceCategory `json:"category" validate:"required,grievance_category"`
	Priority    models.GrievancePriority `json:"priority" validate:"omitempty,grievance_priority"`
	Attachments []string                 `json:"attachments" validate:"omitempty,max=10,dive,max=500"`
}

// GrievanceUpdateRequest covers owner edits to content fields. Status
// is deliberately absent; transitions go through GrievanceStatusRequest.
type GrievanceUpdateRequest struct {
	Title       *string                   `json:"title" validate:"omitempty,item_title"`
	Description *string                   `json:"description" validate:"omitempty,item_description"`
	Category    *models.GrievanceCategory `json:"category" validate:"omitempty,grievance_category"`
	Priority    *models.GrievancePriority `json:"priority" validate:"omitempty,grievance_priority"`
	Attachments []string                  `json:"attachments" validate:"omitempty,max=10,dive,max=500"`
}

// GrievanceStatusRequest represents an overseer status transition
type GrievanceStatusRequest struct {
	Status     models.GrievanceStatus `json:"status" validate:"required,grievance_status"`
	Remark     *string                `json:"remark" validate:"omitempty,max=2000"`
	AssigneeID *string                `json:"assignee_id" validate:"omitempty,max=255"`
}

// PostingCreateRequest is shared by opportunity and internship creation;
// Duration only applies to internships and is ignored otherwise.
type PostingCreateRequest struct {
	Title       string     `json:"title" validate:"required,item_title"`
	Description string     `json:"description" validate:"required,item_description"`
	Company     *string    `json:"company" validate:"omitempty,max=200"`
	Skills      []string   `json:"skills" validate:"omitempty,max=20,dive,max=50"`
	Stipend     *string    `json:"stipend" validate:"omitempty,max=100"`
	Location    *string    `json:"location" validate:"omitempty,max=200"`
	Duration    *string    `json:"duration" validate:"omitempty,max=100"`
	Deadline    *time.Time `json:"deadline" validate:"omitempty,future_date"`
}

// PostingUpdateRequest represents partial updates to a posting
type PostingUpdateRequest struct {
	Title       *string    `json:"title" validate:"omitempty,item_title"`
	Description *string    `json:"description" validate:"omitempty,item_description"`
	Company     *string    `json:"company" validate:"omitempty,max=200"`
	Skills      []string   `json:"skills" validate:"omitempty,max=20,dive,max=50"`
	Stipend     *string    `json:"stipend" validate:"omitempty,max=100"`
	Location    *string    `json:"location" validate:"omitempty,max=200"`
	Duration    *string    `json:"duration" validate:"omitempty,max=100"`
	Deadline    *time.Time `json:"deadline" validate:"omitempty,future_date"`
}

// ApplicationCreateRequest represents a student applying to a posting.
// Exactly one of OpportunityID and InternshipID must be set; the
// business validator enforces the exclusivity.
type ApplicationCreateRequest struct {
	OpportunityID *uint                  `json:"opportunity_id"`
	InternshipID  *uint                  `json:"internship_id"`
	ResumeURL     string                 `json:"resume_url" validate:"required,url,max=500"`
	Answers       map[string]interface{} `json:"answers"`
}

// ApplicationStatusRequest represents a reviewer status transition
type ApplicationStatusRequest struct {
	Status models.ApplicationStatus `json:"status" validate:"required,application_status"`
}

// CourseCreateRequest represents the request structure for creating courses
type CourseCreateRequest struct {
	Code        string  `json:"code" validate:"required,max=20"`
	Title       string  `json:"title" validate:"required,item_title"`
	Description *string `json:"description" validate:"omitempty,item_description"`
	Department  *string `json:"department" validate:"omitempty,max=100"`
}

// CourseUpdateRequest represents partial updates to a course
type CourseUpdateRequest struct {
	Title       *string `json:"title" validate:"omitempty,item_title"`
	Description *string `json:"description" validate:"omitempty,item_description"`
	Department  *string `json:"department" validate:"omitempty,max=100"`
}

// ResourceCreateRequest represents uploading a course resource reference
type ResourceCreateRequest struct {
	Title   string  `json:"title" validate:"required,item_title"`
	Kind    *string `json:"kind" validate:"omitempty,max=30"`
	FileURL string  `json:"file_url" validate:"required,url,max=500"`
}

// EventCreateRequest represents a calendar event; CourseID nil means a
// campus-wide event.
type EventCreateRequest struct {
	Title       string     `json:"title" validate:"required,item_title"`
	Description *string    `json:"description" validate:"omitempty,item_description"`
	CourseID    *uint      `json:"course_id"`
	StartsAt    time.Time  `json:"starts_at" validate:"required"`
	EndsAt      *time.Time `json:"ends_at"`
}

// EventUpdateRequest represents partial updates to a calendar event
type EventUpdateRequest struct {
	Title       *string    `json:"title" validate:"omitempty,item_title"`
	Description *string    `json:"description" validate:"omitempty,item_description"`
	StartsAt    *time.Time `json:"starts_at"`
	EndsAt      *time.Time `json:"ends_at"`
}

// LostFoundCreateRequest represents posting a lost or found item
type LostFoundCreateRequest struct {
	Title       string                 `json:"title" validate:"required,item_title"`
	Description string                 `json:"description" validate:"required,item_description"`
	Location    *string                `json:"location" validate:"omitempty,max=200"`
	ImageURL    *string                `json:"image_url" validate:"omitempty,url,max=500"`
	Status      models.LostFoundStatus `json:"status" validate:"omitempty,lostfound_status"`
}

// LostFoundUpdateRequest represents owner or admin edits to an item
type LostFoundUpdateRequest struct {
	Title       *string                 `json:"title" validate:"omitempty,item_title"`
	Description *string                 `json:"description" validate:"omitempty,item_description"`
	Location    *string                 `json:"location" validate:"omitempty,max=200"`
	ImageURL    *string                 `json:"image_url" validate:"omitempty,url,max=500"`
	Status      *models.LostFoundStatus `json:"status" validate:"omitempty,lostfound_status"`
}

// ProfileUpdateRequest covers self-service profile edits; role and
// status are governance fields and never pass through here.
type ProfileUpdateRequest struct {
	FullName   *string `json:"full_name" validate:"omitempty,min=1,max=100"`
	Department *string `json:"department" validate:"omitempty,max=100"`
	AvatarURL  *string `json:"avatar_url" validate:"omitempty,url,max=500"`
}

// UserGovernanceRequest represents admin role or status changes
type UserGovernanceRequest struct {
	Role   *models.UserRole      `json:"role" validate:"omitempty,user_role"`
	Status *models.AccountStatus `json:"status" validate:"omitempty,account_status"`
}

// DomainCreateRequest represents adding an allowed email domain
type DomainCreateRequest struct {
	Domain     string `json:"domain" validate:"required,fqdn,max=255"`
	Privileged bool   `json:"privileged"`
}

// DomainUpdateRequest toggles the privileged flag on a domain
type DomainUpdateRequest struct {
	Privileged *bool `json:"privileged"`
}

// BulkNotificationRequest represents an admin broadcast to role rooms
type BulkNotificationRequest struct {
	Roles   []models.UserRole      `json:"roles" validate:"required,min=1,dive,user_role"`
	Message string                 `json:"message" validate:"required,min=1,max=2000"`
	Data    map[string]interface{} `json:"data"`
}
