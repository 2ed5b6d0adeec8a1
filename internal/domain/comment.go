package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ThreadStatus represents the lifecycle state of a comment thread.
// OPEN and RESOLVED are both non-terminal; deletion is a separate
// destructive operation available from either state.
type ThreadStatus string

const (
	ThreadOpen     ThreadStatus = "OPEN"
	ThreadResolved ThreadStatus = "RESOLVED"
)

// Comment is a single entry in a thread's ordered comment list.
// Author identifiers are stored as strings, matching the document store.
type Comment struct {
	ID         string    `json:"commentId" bson:"commentId"`
	Text       string    `json:"text" bson:"text"`
	AuthorID   string    `json:"authorId" bson:"authorId"`
	AuthorName string    `json:"authorName" bson:"authorName"`
	CreatedAt  time.Time `json:"createdAt" bson:"createdAt"`
}

// ThreadCreator identifies the user who opened a thread
type ThreadCreator struct {
	UserID string `json:"userId" bson:"userId"`
	Name   string `json:"name" bson:"name"`
}

// CommentThread is a threaded discussion anchored to a line range of a
// session's code. A thread always carries at least the opening comment.
type CommentThread struct {
	ID        string        `json:"id" bson:"id,omitempty"`
	SessionID string        `json:"sessionId" bson:"sessionId"`
	StartLine int           `json:"startLine" bson:"startLine"`
	EndLine   int           `json:"endLine" bson:"endLine"`
	CreatedBy ThreadCreator `json:"createdBy" bson:"createdBy"`
	Comments  []Comment     `json:"comments" bson:"comments"`
	Status    ThreadStatus  `json:"status" bson:"status"`
	CreatedAt time.Time     `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt" bson:"updatedAt"`
}

// ThreadCreate represents comment thread creation data
type ThreadCreate struct {
	StartLine int    `json:"startLine" validate:"required,min=1"`
	EndLine   int    `json:"endLine" validate:"omitempty,min=1"`
	Text      string `json:"text" validate:"required"`
}

// ReplyCreate represents a reply to an existing thread
type ReplyCreate struct {
	Text string `json:"text" validate:"required"`
}

// ThreadRepository defines the interface for comment thread storage
type ThreadRepository interface {
	Create(ctx context.Context, thread *CommentThread) error
	Get(ctx context.Context, id string) (*CommentThread, error)
	AddReply(ctx context.Context, id string, comment Comment) (*CommentThread, error)
	SetStatus(ctx context.Context, id string, status ThreadStatus) (*CommentThread, error)
	Delete(ctx context.Context, id string) error
	ListBySession(ctx context.Context, sessionID uuid.UUID) ([]CommentThread, error)
	DeleteBySession(ctx context.Context, sessionID uuid.UUID) error
}
