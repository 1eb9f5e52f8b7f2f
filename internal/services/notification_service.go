package services

import (
	"context"
	"fmt"

	"github.com/campuslink/campus-service/internal/authz"
	"github.com/campuslink/campus-service/internal/events"
	"github.com/campuslink/campus-service/internal/models"
	"github.com/campuslink/campus-service/internal/repositories"
	"github.com/campuslink/campus-service/internal/utils"
	"github.com/campuslink/campus-service/internal/validator"
)

// notificationEventService turns lifecycle changes into room-targeted
// events on the notification bus. Delivery is best effort: a publish
// failure is surfaced to the caller but callers log and continue, the
// triggering mutation is never rolled back.
type notificationEventService struct {
	repo           repositories.Repository
	eventPublisher events.EventPublisher
	logger         utils.Logger
	validator      *validator.Validator
}

// NewNotificationService creates the notification service
func NewNotificationService(repo repositories.Repository, eventPublisher events.EventPublisher, logger utils.Logger, v *validator.Validator) NotificationService {
	return &notificationEventService{
		repo:           repo,
		eventPublisher: eventPublisher,
		logger:         logger,
		validator:      v,
	}
}

// NotifyGrievanceCreated alerts the overseer role rooms about a new
// grievance.
func (s *notificationEventService) NotifyGrievanceCreated(ctx context.Context, grievance *models.Grievance) error {
	rooms := []string{
		events.RoleRoom(models.RoleAuthority),
		events.RoleRoom(models.RoleAdmin),
	}

	event := events.NewEvent(
		events.GrievanceCreated,
		fmt.Sprintf("New grievance submitted: %s", grievance.Title),
		rooms,
		map[string]any{
			"grievance_id": grievance.ID,
			"category":     grievance.Category,
			"priority":     grievance.Priority,
		},
	)

	return s.publish(ctx, event)
}

// NotifyGrievanceStatusChanged alerts the submitter's personal room.
func (s *notificationEventService) NotifyGrievanceStatusChanged(ctx context.Context, grievance *models.Grievance, previous models.GrievanceStatus) error {
	event := events.NewEvent(
		events.GrievanceStatusChanged,
		fmt.Sprintf("Your grievance %q is now %s", grievance.Title, grievance.Status),
		[]string{events.UserRoom(grievance.SubmittedBy)},
		map[string]any{
			"grievance_id":    grievance.ID,
			"previous_status": previous,
			"status":          grievance.Status,
			"remark":          grievance.Remark,
		},
	)

	return s.publish(ctx, event)
}

// NotifyApplicationReceived alerts the posting owner's personal room.
func (s *notificationEventService) NotifyApplicationReceived(ctx context.Context, application *models.Application, posterID string) error {
	event := events.NewEvent(
		events.ApplicationCreated,
		fmt.Sprintf("New application received for %q", application.ParentTitle()),
		[]string{events.UserRoom(posterID)},
		map[string]any{
			"application_id": application.ID,
			"student_id":     application.StudentID,
		},
	)

	return s.publish(ctx, event)
}

// NotifyApplicationStatusChanged alerts the applying student.
func (s *notificationEventService) NotifyApplicationStatusChanged(ctx context.Context, application *models.Application) error {
	event := events.NewEvent(
		events.ApplicationStatusChanged,
		fmt.Sprintf("Your application for %q is now %s", application.ParentTitle(), application.Status),
		[]string{events.UserRoom(application.StudentID)},
		map[string]any{
			"application_id": application.ID,
			"status":         application.Status,
		},
	)

	return s.publish(ctx, event)
}

// NotifyPostingCreated broadcasts a new posting to the student role
// room. eventType selects between opportunity and internship.
func (s *notificationEventService) NotifyPostingCreated(ctx context.Context, eventType, title string, postingID uint) error {
	event := events.NewEvent(
		eventType,
		fmt.Sprintf("New posting: %s", title),
		[]string{events.RoleRoom(models.RoleStudent)},
		map[string]any{
			"posting_id": postingID,
		},
	)

	return s.publish(ctx, event)
}

// NotifyItemClaimed alerts the item's poster.
func (s *notificationEventService) NotifyItemClaimed(ctx context.Context, item *models.LostFoundItem) error {
	event := events.NewEvent(
		events.LostFoundClaimed,
		fmt.Sprintf("Your item %q has been claimed", item.Title),
		[]string{events.UserRoom(item.PostedBy)},
		map[string]any{
			"item_id":    item.ID,
			"claimed_by": item.ClaimedBy,
		},
	)

	return s.publish(ctx, event)
}

// SendBulkNotification broadcasts an admin message to role rooms.
func (s *notificationEventService) SendBulkNotification(ctx context.Context, req *BulkNotificationRequest, senderID string) error {
	s.logger.Info("sending bulk notification", "sender_id", senderID, "roles", req.Roles)

	if err := s.validator.Validate(req); err != nil {
		return err
	}

	caller, err := resolveCaller(ctx, s.repo, senderID)
	if err != nil {
		return err
	}
	if err := authorize(caller, false, authz.ResourceUser, authz.ActionReadAll, 0); err != nil {
		return err
	}

	rooms := make([]string, 0, len(req.Roles))
	for _, role := range req.Roles {
		rooms = append(rooms, events.RoleRoom(role))
	}

	event := events.NewEvent(events.SystemBulkNotification, req.Message, rooms, req.Data)
	event.Data = mergeData(event.Data, map[string]any{"sender_id": senderID})

	if err := s.publish(ctx, event); err != nil {
		return err
	}

	s.logger.Info("bulk notification sent", "event_id", event.ID, "rooms", rooms)
	return nil
}

func (s *notificationEventService) publish(ctx context.Context, event *events.Event) error {
	if err := s.eventPublisher.Publish(ctx, event); err != nil {
		s.logger.Error("failed to publish event",
			"event_type", event.Type,
			"event_id", event.ID,
			"error", err)
		return fmt.Errorf("failed to publish %s event: %w", event.Type, err)
	}

	s.logger.Debug("event published", "event_type", event.Type, "event_id", event.ID, "rooms", event.Rooms)
	return nil
}

func mergeData(base, extra map[string]any) map[string]any {
	if base == nil {
		base = make(map[string]any, len(extra))
	}
	for k, v := range extra {
		base[k] = v
	}
	return base
}
