package realtime

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"

	"github.com/campuslink/campus-service/internal/events"
)

// sessionBuffer bounds per-session queues; a slow consumer drops
// events rather than blocking a publish.
const sessionBuffer = 16

// Session is one connected client's delivery channel. A session joins
// rooms keyed by user id or role name and receives every event
// published to any of them, at most once per event.
type Session struct {
	ID string

	ch        chan *events.Event
	closeOnce sync.Once
}

func newSession() *Session {
	return &Session{
		ID: uuid.New().String(),
		ch: make(chan *events.Event, sessionBuffer),
	}
}

// Events is the receive side consumed by the transport (SSE stream).
// It is closed on disconnect.
func (s *Session) Events() <-chan *events.Event {
	return s.ch
}

func (s *Session) close() {
	s.closeOnce.Do(func() {
		close(s.ch)
	})
}

// Hub is the room-membership table: a lock-guarded multimap from room
// id to live sessions. Mutation goes only through Connect, Join and
// Disconnect; Publish fans out under the read lock with non-blocking
// sends. Delivery is fire-and-forget: no ack, no queue, no replay.
type Hub struct {
	mu sync.RWMutex

	rooms    map[string]map[*Session]struct{}
	sessions map[*Session]map[string]struct{}

	logger *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		rooms:    make(map[string]map[*Session]struct{}),
		sessions: make(map[*Session]map[string]struct{}),
		logger:   logger,
	}
}

// Connect registers a new session with no memberships yet.
func (h *Hub) Connect() *Session {
	session := newSession()

	h.mu.Lock()
	h.sessions[session] = make(map[string]struct{})
	h.mu.Unlock()

	return session
}

// Join subscribes the session to a room. Idempotent: joining the same
// room twice is a no-op, and a session typically joins both its user
// room and its role room.
func (h *Hub) Join(session *Session, roomID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	memberships, ok := h.sessions[session]
	if !ok {
		// Already disconnected.
		return
	}
	memberships[roomID] = struct{}{}

	room, ok := h.rooms[roomID]
	if !ok {
		room = make(map[*Session]struct{})
		h.rooms[roomID] = room
	}
	room[session] = struct{}{}
}

// Disconnect removes the session from every room and closes its
// channel. There is no narrower leave operation.
func (h *Hub) Disconnect(session *Session) {
	h.mu.Lock()
	memberships, ok := h.sessions[session]
	if ok {
		for roomID := range memberships {
			if room, exists := h.rooms[roomID]; exists {
				delete(room, session)
				if len(room) == 0 {
					delete(h.rooms, roomID)
				}
			}
		}
		delete(h.sessions, session)
	}
	h.mu.Unlock()

	if ok {
		session.close()
	}
}

// Publish delivers the event to every session subscribed to any of the
// target rooms, at most once per session. The read lock is held across
// the fan-out: Disconnect needs the write lock before it may close a
// session channel, so no send can race a close. Sends never block (a
// full session buffer drops the event for that session), which keeps
// the lock hold time bounded.
func (h *Hub) Publish(rooms []string, event *events.Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	targets := make(map[*Session]struct{})
	for _, roomID := range rooms {
		for session := range h.rooms[roomID] {
			targets[session] = struct{}{}
		}
	}

	for session := range targets {
		select {
		case session.ch <- event:
		default:
			h.logger.Warn("dropping event for slow session",
				"session_id", session.ID,
				"event_type", event.Type)
		}
	}
}

// RoomSize reports current membership of a room.
func (h *Hub) RoomSize(roomID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.rooms[roomID])
}

// SessionCount reports the number of connected sessions.
func (h *Hub) SessionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.sessions)
}

// Run consumes the notification topic and routes each event to its
// target rooms until the subscription closes. Malformed payloads are
// acked and dropped; the bus is not a durable queue and redelivery
// would not help.
func (h *Hub) Run(ctx context.Context, messages <-chan *message.Message) {
	for msg := range messages {
		var event events.Event
		if err := json.Unmarshal(msg.Payload, &event); err != nil {
			h.logger.Error("failed to decode notification event",
				"message_id", msg.UUID,
				"error", err)
			msg.Ack()
			continue
		}

		h.Publish(event.Rooms, &event)
		msg.Ack()
	}

	h.logger.Info("realtime hub subscription closed")
}
