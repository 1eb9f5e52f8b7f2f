package events

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/campuslink/campus-service/internal/models"
)

const (
	EventSource  = "campus-service"
	EventVersion = "1.0"
)

// Event types carried on the notification topic.
const (
	GrievanceCreated         = "grievance.created"
	GrievanceStatusChanged   = "grievance.status_changed"
	ApplicationCreated       = "application.created"
	ApplicationStatusChanged = "application.status_changed"
	OpportunityPosted        = "opportunity.posted"
	InternshipPosted         = "internship.posted"
	LostFoundClaimed         = "lostfound.claimed"
	SystemBulkNotification   = "system.bulk_notification"
)

// Event is the ephemeral notification envelope. It is never persisted:
// delivery is best effort and an event with no connected subscriber is
// simply lost.
type Event struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Source    string    `json:"source"`
	Version   string    `json:"version"`
	Timestamp time.Time `json:"timestamp"`

	// Rooms are the target pub/sub rooms, keyed by user id or role
	// name (see UserRoom / RoleRoom).
	Rooms []string `json:"rooms"`

	Message string         `json:"message"`
	Data    map[string]any `json:"data,omitempty"`
}

// NewEvent builds an envelope with server-generated id and timestamp.
func NewEvent(eventType, message string, rooms []string, data map[string]any) *Event {
	return &Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		Source:    EventSource,
		Version:   EventVersion,
		Timestamp: time.Now().UTC(),
		Rooms:     rooms,
		Message:   message,
		Data:      data,
	}
}

// UserRoom names the per-user room.
func UserRoom(userID string) string {
	return fmt.Sprintf("user:%s", userID)
}

// RoleRoom names the shared room for a role group.
func RoleRoom(role models.UserRole) string {
	return fmt.Sprintf("role:%s", role)
}
