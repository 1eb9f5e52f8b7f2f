package handlers

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/campuslink/campus-service/internal/events"
	"github.com/campuslink/campus-service/internal/models"
	"github.com/campuslink/campus-service/internal/realtime"
	"github.com/campuslink/campus-service/internal/services"
	"github.com/campuslink/campus-service/internal/utils"
)

// heartbeatInterval keeps idle SSE connections alive through proxies.
const heartbeatInterval = 30 * time.Second

// RealtimeHandler serves the notification stream and the admin
// broadcast endpoint.
type RealtimeHandler struct {
	BaseHandler
	hub                 *realtime.Hub
	notificationService services.NotificationService
}

func NewRealtimeHandler(hub *realtime.Hub, notificationService services.NotificationService, logger utils.Logger) *RealtimeHandler {
	return &RealtimeHandler{
		BaseHandler:         NewBaseHandler(logger),
		hub:                 hub,
		notificationService: notificationService,
	}
}

// StreamNotifications opens a server-sent event stream. The session is
// joined to the caller's user room and role room, so it receives both
// direct and role-targeted events.
// @Summary Notification stream
// @Tags notifications
// @Produce text/event-stream
// @Success 200
// @Router /notifications/stream [get]
func (h *RealtimeHandler) StreamNotifications(c *gin.Context) {
	userID := h.requireUserID(c)
	if userID == "" {
		return
	}

	session := h.hub.Connect()
	defer h.hub.Disconnect(session)

	h.hub.Join(session, events.UserRoom(userID))
	if role, exists := c.Get("user_role"); exists {
		if userRole, ok := role.(models.UserRole); ok {
			h.hub.Join(session, events.RoleRoom(userRole))
		}
	}

	h.LogRequest(c, "Notification stream opened", "session_id", session.ID)

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	c.Stream(func(w io.Writer) bool {
		select {
		case event, ok := <-session.Events():
			if !ok {
				return false
			}
			c.SSEvent(event.Type, event)
			return true
		case <-heartbeat.C:
			c.SSEvent("heartbeat", time.Now().UTC().Format(time.RFC3339))
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}

// BroadcastNotification sends an announcement to role rooms; admin only
// @Summary Broadcast notification
// @Tags notifications
// @Accept json
// @Produce json
// @Param notification body services.BulkNotificationRequest true "Message and target roles"
// @Success 202 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /notifications/broadcast [post]
func (h *RealtimeHandler) BroadcastNotification(c *gin.Context) {
	var req services.BulkNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	userID := h.requireUserID(c)
	if userID == "" {
		return
	}

	if err := h.notificationService.SendBulkNotification(c.Request.Context(), &req, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, SuccessResponse{Message: "notification dispatched"})
}
