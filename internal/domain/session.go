package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// SessionStatus represents the lifecycle state of a collaboration session.
// The ACTIVE -> ENDED transition is one-way.
type SessionStatus string

const (
	SessionActive SessionStatus = "ACTIVE"
	SessionEnded  SessionStatus = "ENDED"
)

// Session represents a collaborative coding session scoped to a workspace
type Session struct {
	ID          uuid.UUID     `json:"id"`
	WorkspaceID uuid.UUID     `json:"workspace_id"`
	Title       string        `json:"title"`
	Language    string        `json:"language"`
	Filename    string        `json:"filename"`
	Status      SessionStatus `json:"status"`
	CreatedBy   uuid.UUID     `json:"created_by"`
	CreatorName string        `json:"creator_name,omitempty"`
	StartedAt   time.Time     `json:"started_at"`
	EndedAt     *time.Time    `json:"ended_at,omitempty"`

	// Code is hydrated from the snapshot store on reads; never persisted here.
	Code string `json:"code,omitempty"`
}

// SessionCreate represents session creation data
type SessionCreate struct {
	Title    string `json:"title" validate:"required,max=255"`
	Language string `json:"language" validate:"required,max=64"`
	Filename string `json:"filename" validate:"max=255"`
}

// SessionRepository defines the interface for session metadata storage.
// This is the authoritative directory consulted for room admission.
type SessionRepository interface {
	Create(ctx context.Context, session *Session) error
	Get(ctx context.Context, id uuid.UUID) (*Session, error)
	ListByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]Session, error)
	End(ctx context.Context, id uuid.UUID, endedAt time.Time) error
	Delete(ctx context.Context, id uuid.UUID) error
}
