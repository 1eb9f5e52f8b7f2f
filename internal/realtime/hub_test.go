package realtime

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/campuslink/campus-service/internal/events"
)

func testHub() *Hub {
	return NewHub(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func receiveEvent(t *testing.T, session *Session) *events.Event {
	t.Helper()
	select {
	case event, ok := <-session.Events():
		if !ok {
			t.Fatal("session channel closed unexpectedly")
		}
		return event
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return nil
	}
}

func TestHub_PublishToRoom(t *testing.T) {
	hub := testHub()

	session := hub.Connect()
	defer hub.Disconnect(session)
	hub.Join(session, "user:student-1")

	other := hub.Connect()
	defer hub.Disconnect(other)
	hub.Join(other, "user:student-2")

	event := events.NewEvent("grievance.status_changed", "update", []string{"user:student-1"}, nil)
	hub.Publish(event.Rooms, event)

	got := receiveEvent(t, session)
	if got.Type != "grievance.status_changed" {
		t.Errorf("Expected grievance.status_changed, got %s", got.Type)
	}

	select {
	case unexpected := <-other.Events():
		t.Errorf("session in another room received %v", unexpected.Type)
	default:
	}
}

func TestHub_MultiRoomDeliversOnce(t *testing.T) {
	hub := testHub()

	// A session typically sits in both its user room and its role room.
	session := hub.Connect()
	defer hub.Disconnect(session)
	hub.Join(session, "user:authority-1")
	hub.Join(session, "role:authority")

	event := events.NewEvent("grievance.created", "new grievance", []string{"role:authority", "role:admin", "user:authority-1"}, nil)
	hub.Publish(event.Rooms, event)

	receiveEvent(t, session)

	select {
	case duplicate := <-session.Events():
		t.Errorf("event delivered twice: %v", duplicate.Type)
	default:
	}
}

func TestHub_JoinIsIdempotent(t *testing.T) {
	hub := testHub()

	session := hub.Connect()
	defer hub.Disconnect(session)
	hub.Join(session, "role:student")
	hub.Join(session, "role:student")

	if size := hub.RoomSize("role:student"); size != 1 {
		t.Errorf("Expected room size 1, got %d", size)
	}
}

func TestHub_DisconnectClosesSession(t *testing.T) {
	hub := testHub()

	session := hub.Connect()
	hub.Join(session, "role:student")

	hub.Disconnect(session)

	if _, ok := <-session.Events(); ok {
		t.Error("channel should be closed after disconnect")
	}
	if size := hub.RoomSize("role:student"); size != 0 {
		t.Errorf("Expected empty room, got %d", size)
	}
	if count := hub.SessionCount(); count != 0 {
		t.Errorf("Expected 0 sessions, got %d", count)
	}

	// Double disconnect must not panic
	hub.Disconnect(session)
}

func TestHub_SlowSessionDropsInsteadOfBlocking(t *testing.T) {
	hub := testHub()

	session := hub.Connect()
	defer hub.Disconnect(session)
	hub.Join(session, "role:student")

	// Overfill the per-session buffer; Publish must return without
	// blocking.
	event := events.NewEvent("opportunity.posted", "spam", []string{"role:student"}, nil)
	for i := 0; i < sessionBuffer*2; i++ {
		hub.Publish(event.Rooms, event)
	}

	delivered := 0
	for {
		select {
		case <-session.Events():
			delivered++
			continue
		default:
		}
		break
	}
	if delivered != sessionBuffer {
		t.Errorf("Expected %d buffered events, got %d", sessionBuffer, delivered)
	}
}

func TestHub_PublishDuringDisconnectDoesNotPanic(t *testing.T) {
	hub := testHub()

	// Hammer a shared room with publishers while sessions churn through
	// connect/join/disconnect. A send on a closed session channel would
	// panic and fail the run.
	event := events.NewEvent("system.bulk_notification", "stress", []string{"role:student"}, nil)

	stop := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
					hub.Publish(event.Rooms, event)
				}
			}
		}()
	}

	for i := 0; i < 200; i++ {
		session := hub.Connect()
		hub.Join(session, "role:student")
		go func() {
			for range session.Events() {
			}
		}()
		hub.Disconnect(session)
	}

	close(stop)
	wg.Wait()

	if count := hub.SessionCount(); count != 0 {
		t.Errorf("Expected 0 sessions after churn, got %d", count)
	}
}

func TestHub_RunRoutesBusMessages(t *testing.T) {
	hub := testHub()

	session := hub.Connect()
	defer hub.Disconnect(session)
	hub.Join(session, "user:student-1")

	messages := make(chan *message.Message, 2)

	event := events.NewEvent("application.status_changed", "shortlisted", []string{"user:student-1"}, nil)
	payload, err := json.Marshal(event)
	if err != nil {
		t.Fatalf("marshal event: %v", err)
	}

	// A malformed payload is dropped; the valid one still arrives.
	messages <- message.NewMessage("bad", []byte("{not json"))
	messages <- message.NewMessage(event.ID, payload)
	close(messages)

	done := make(chan struct{})
	go func() {
		hub.Run(context.Background(), messages)
		close(done)
	}()

	got := receiveEvent(t, session)
	if got.Type != "application.status_changed" {
		t.Errorf("Expected application.status_changed, got %s", got.Type)
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("hub.Run did not return after channel close")
	}
}
