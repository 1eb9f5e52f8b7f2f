package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-kafka/v2/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// NotificationTopic is the single topic all lifecycle events flow on;
// routing happens by room, not by topic.
const NotificationTopic = "campus.notifications"

// EventPublisher hands lifecycle events to the notification fan-out.
// Publishing must never block or fail the triggering request on
// missing subscribers.
type EventPublisher interface {
	Publish(ctx context.Context, event *Event) error
	Close() error
}

// ===== IN-PROCESS GOCHANNEL PUBLISHER =====

// GoChannelPublisher is the in-process event bus between the lifecycle
// services and the realtime hub. The hub consumes its Subscribe side.
type GoChannelPublisher struct {
	bus    *gochannel.GoChannel
	logger *slog.Logger
}

func NewGoChannelPublisher(logger *slog.Logger) *GoChannelPublisher {
	bus := gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: 64,
	}, watermill.NewSlogLogger(logger))

	return &GoChannelPublisher{
		bus:    bus,
		logger: logger,
	}
}

func (p *GoChannelPublisher) Publish(ctx context.Context, event *Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := message.NewMessage(event.ID, payload)
	msg.SetContext(ctx)

	if err := p.bus.Publish(NotificationTopic, msg); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	return nil
}

// Subscribe exposes the consumer side of the bus for the realtime hub.
func (p *GoChannelPublisher) Subscribe(ctx context.Context) (<-chan *message.Message, error) {
	return p.bus.Subscribe(ctx, NotificationTopic)
}

func (p *GoChannelPublisher) Close() error {
	return p.bus.Close()
}

// ===== KAFKA PUBLISHER =====

// KafkaEventPublisher mirrors every event onto an external Kafka topic
// for downstream consumers (mobile push, audit pipelines). Optional;
// enabled only when brokers are configured.
type KafkaEventPublisher struct {
	publisher *kafka.Publisher
	topic     string
	logger    *slog.Logger
}

func NewKafkaEventPublisher(brokers []string, topic string, logger *slog.Logger) (*KafkaEventPublisher, error) {
	publisher, err := kafka.NewPublisher(kafka.PublisherConfig{
		Brokers:   brokers,
		Marshaler: kafka.DefaultMarshaler{},
	}, watermill.NewSlogLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka publisher: %w", err)
	}

	return &KafkaEventPublisher{
		publisher: publisher,
		topic:     topic,
		logger:    logger,
	}, nil
}

func (p *KafkaEventPublisher) Publish(ctx context.Context, event *Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := message.NewMessage(event.ID, payload)
	msg.SetContext(ctx)

	if err := p.publisher.Publish(p.topic, msg); err != nil {
		return fmt.Errorf("failed to publish event to kafka: %w", err)
	}

	return nil
}

func (p *KafkaEventPublisher) Close() error {
	return p.publisher.Close()
}

// ===== FANOUT PUBLISHER =====

// FanoutPublisher publishes to several sinks; a sink failure is logged
// and does not fail the others (delivery is best effort).
type FanoutPublisher struct {
	sinks  []EventPublisher
	logger *slog.Logger
}

func NewFanoutPublisher(logger *slog.Logger, sinks ...EventPublisher) *FanoutPublisher {
	return &FanoutPublisher{sinks: sinks, logger: logger}
}

func (p *FanoutPublisher) Publish(ctx context.Context, event *Event) error {
	for _, sink := range p.sinks {
		if err := sink.Publish(ctx, event); err != nil {
			p.logger.Error("event sink publish failed",
				"event_id", event.ID,
				"event_type", event.Type,
				"error", err)
		}
	}
	return nil
}

func (p *FanoutPublisher) Close() error {
	var firstErr error
	for _, sink := range p.sinks {
		if err := sink.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// ===== MOCK PUBLISHER =====

// MockEventPublisher records published events for tests.
type MockEventPublisher struct {
	mu     sync.Mutex
	events []*Event
	logger *slog.Logger
}

func NewMockEventPublisher(logger *slog.Logger) *MockEventPublisher {
	return &MockEventPublisher{logger: logger}
}

func (m *MockEventPublisher) Publish(ctx context.Context, event *Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.events = append(m.events, event)
	return nil
}

func (m *MockEventPublisher) GetPublishedEvents() []*Event {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*Event, len(m.events))
	copy(out, m.events)
	return out
}

func (m *MockEventPublisher) ClearEvents() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.events = nil
}

func (m *MockEventPublisher) Close() error {
	return nil
}
