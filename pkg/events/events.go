package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mentorhood/mentorhood/pkg/logger"
	"github.com/nats-io/nats.go"
)

type Publisher interface {
	Publish(ctx context.Context, subject string, data interface{}) error
	Close() error
}

type Subscriber interface {
	Subscribe(subject string, handler func(msg *Message)) error
	QueueSubscribe(subject, queue string, handler func(msg *Message)) error
	Close() error
}

type EventBus interface {
	Publisher
	Subscriber
}

type Message struct {
	Subject   string
	Data      []byte
	Timestamp time.Time
	ID        string
}

// Decode unmarshals the message payload into v.
func (m *Message) Decode(v interface{}) error {
	if err := json.Unmarshal(m.Data, v); err != nil {
		return fmt.Errorf("decode %s event: %w", m.Subject, err)
	}
	return nil
}

type NATSEventBus struct {
	conn *nats.Conn
}

func NewNATSEventBus(url, name string) (*NATSEventBus, error) {
	conn, err := nats.Connect(url,
		nats.Name(name),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return &NATSEventBus{conn: conn}, nil
}

func (n *NATSEventBus) Publish(ctx context.Context, subject string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal event data: %w", err)
	}

	logger.DebugContext(ctx, "Publishing event", "subject", subject, "bytes", len(payload))

	return n.conn.Publish(subject, payload)
}

func (n *NATSEventBus) Subscribe(subject string, handler func(msg *Message)) error {
	_, err := n.conn.Subscribe(subject, func(msg *nats.Msg) {
		handler(wrap(msg))
	})
	return err
}

func (n *NATSEventBus) QueueSubscribe(subject, queue string, handler func(msg *Message)) error {
	_, err := n.conn.QueueSubscribe(subject, queue, func(msg *nats.Msg) {
		handler(wrap(msg))
	})
	return err
}

func (n *NATSEventBus) Close() error {
	return n.conn.Drain()
}

func wrap(msg *nats.Msg) *Message {
	now := time.Now()
	return &Message{
		Subject:   msg.Subject,
		Data:      msg.Data,
		Timestamp: now,
		ID:        fmt.Sprintf("%d", now.UnixNano()),
	}
}

// Discard is a Publisher that drops every event. Used when no broker is
// configured and in tests.
type Discard struct{}

func (Discard) Publish(context.Context, string, interface{}) error { return nil }
func (Discard) Close() error                                       { return nil }

const (
	BookingCreated = "booking.created"

	SessionCreated = "session.created"
	SessionUpdated = "session.updated"
	SessionDeleted = "session.deleted"

	TokensCredited = "tokens.credited"
	TokensDebited  = "tokens.debited"

	RegistrationCreated = "registration.created"
)

type MentorSnapshot struct {
	Name    string `json:"name"`
	Role    string `json:"role"`
	Company string `json:"company"`
	Image   string `json:"image"`
}

type BookingCreatedEvent struct {
	BookingID    string         `json:"booking_id"`
	SessionID    string         `json:"session_id"`
	Email        string         `json:"email"`
	Date         string         `json:"date"`
	Time         string         `json:"time"`
	Timezone     string         `json:"timezone"`
	MeetingLink  string         `json:"meeting_link"`
	SessionTitle string         `json:"session_title"`
	Description  string         `json:"description"`
	Duration     string         `json:"duration"`
	Tag          string         `json:"tag"`
	Mentor       MentorSnapshot `json:"mentor"`
	CreatedAt    time.Time      `json:"created_at"`
}

type RegistrationCreatedEvent struct {
	RegistrationID string         `json:"registration_id"`
	SessionID      string         `json:"session_id"`
	Email          string         `json:"email"`
	Name           string         `json:"name,omitempty"`
	Title          string         `json:"title"`
	Date           string         `json:"date"`
	Time           string         `json:"time"`
	Duration       string         `json:"duration"`
	MeetingLink    string         `json:"meeting_link"`
	Mentor         MentorSnapshot `json:"mentor"`
	CreatedAt      time.Time      `json:"created_at"`
}

type SessionChangedEvent struct {
	SessionID string    `json:"session_id"`
	MentorID  string    `json:"mentor_id"`
	At        time.Time `json:"at"`
}

type TokensChangedEvent struct {
	UserID    string    `json:"user_id"`
	Amount    int       `json:"amount"`
	Balance   int       `json:"balance"`
	UsageType string    `json:"usage_type"`
	PlanID    string    `json:"plan_id,omitempty"`
	At        time.Time `json:"at"`
}
