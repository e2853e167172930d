package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

// Ledger event types.
const (
	EventSubmissionCreated  = "submission.created"
	EventSubmissionReplaced = "submission.replaced"
	EventSubmissionGraded   = "submission.graded"
)

// LedgerEvent is broadcast after a successful ledger write.
type LedgerEvent struct {
	ID           string    `json:"id"`
	Type         string    `json:"type"`
	Source       string    `json:"source"`
	AssignmentID uint      `json:"assignment_id"`
	SubmissionID uint      `json:"submission_id"`
	StudentID    string    `json:"student_id"`
	ActorID      string    `json:"actor_id"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// EventPublisher delivers ledger events to subscribers.
type EventPublisher interface {
	Publish(ctx context.Context, event LedgerEvent) error
}

type natsPublisher struct {
	conn    *nats.Conn
	subject string
	nodeID  string
}

// NewEventPublisher publishes to subject.<type> on NATS. A nil connection yields a publisher that
// only logs at debug level.
func NewEventPublisher(conn *nats.Conn, subject string, logger zerolog.Logger) EventPublisher {
	if conn == nil || subject == "" {
		return &logPublisher{logger: logger.With().Str("component", "ledger_events").Logger()}
	}
	return &natsPublisher{conn: conn, subject: subject, nodeID: uuid.NewString()}
}

func (p *natsPublisher) Publish(_ context.Context, event LedgerEvent) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	event.Source = p.nodeID

	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return p.conn.Publish(p.subject+"."+event.Type, payload)
}

type logPublisher struct {
	logger zerolog.Logger
}

func (p *logPublisher) Publish(_ context.Context, event LedgerEvent) error {
	p.logger.Debug().
		Str("type", event.Type).
		Uint("assignment_id", event.AssignmentID).
		Str("student_id", event.StudentID).
		Msg("ledger event")
	return nil
}
