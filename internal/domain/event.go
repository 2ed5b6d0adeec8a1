package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// EventType discriminates session event payloads
type EventType string

const (
	EventCodeChange     EventType = "CODE_CHANGE"
	EventCommentAdd     EventType = "COMMENT_ADD"
	EventCommentResolve EventType = "COMMENT_RESOLVE"
	EventCommentReopen  EventType = "COMMENT_REOPEN"
	EventCommentDelete  EventType = "COMMENT_DELETE"
)

// EventPayload is the tagged union over event kinds. The concrete type is
// determined by the event's Type field.
type EventPayload interface {
	isEventPayload()
}

// CodeChangePayload carries the full buffer content of an edit.
// It intentionally carries no user attribution.
type CodeChangePayload struct {
	Code string `json:"code" bson:"code"`
}

// ThreadPayload carries the full thread state for comment events
type ThreadPayload struct {
	Thread CommentThread `json:"thread" bson:"thread"`
}

// ThreadDeletedPayload references a deleted thread
type ThreadDeletedPayload struct {
	ThreadID string `json:"threadId" bson:"threadId"`
}

func (CodeChangePayload) isEventPayload()    {}
func (ThreadPayload) isEventPayload()        {}
func (ThreadDeletedPayload) isEventPayload() {}

// SessionEvent is a single entry in a session's append-only event log
type SessionEvent struct {
	ID        string       `json:"id,omitempty"`
	SessionID uuid.UUID    `json:"sessionId"`
	Type      EventType    `json:"type"`
	Payload   EventPayload `json:"payload"`
	Timestamp time.Time    `json:"timestamp"`
}

// NewCodeChangeEvent builds a CODE_CHANGE log entry
func NewCodeChangeEvent(sessionID uuid.UUID, code string, ts time.Time) *SessionEvent {
	return &SessionEvent{
		SessionID: sessionID,
		Type:      EventCodeChange,
		Payload:   CodeChangePayload{Code: code},
		Timestamp: ts,
	}
}

// NewThreadEvent builds a comment log entry carrying the full thread
func NewThreadEvent(t EventType, sessionID uuid.UUID, thread CommentThread, ts time.Time) *SessionEvent {
	return &SessionEvent{
		SessionID: sessionID,
		Type:      t,
		Payload:   ThreadPayload{Thread: thread},
		Timestamp: ts,
	}
}

// ReplayEvent is a logged event annotated with its offset from session start
type ReplayEvent struct {
	SessionEvent
	RelativeTime int64 `json:"relativeTime"` // milliseconds
}

// BuildReplay annotates events with relative timestamps. Events are assumed
// to be in ascending timestamp order, so relative times are non-decreasing.
func BuildReplay(events []SessionEvent, startedAt time.Time) []ReplayEvent {
	replay := make([]ReplayEvent, len(events))
	for i, e := range events {
		replay[i] = ReplayEvent{
			SessionEvent: e,
			RelativeTime: e.Timestamp.Sub(startedAt).Milliseconds(),
		}
	}
	return replay
}

// EventRepository defines the interface for the append-only event log
type EventRepository interface {
	Append(ctx context.Context, event *SessionEvent) error
	ListBySession(ctx context.Context, sessionID uuid.UUID) ([]SessionEvent, error)
	DeleteBySession(ctx context.Context, sessionID uuid.UUID) error
}
