package domain

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// CodeSnapshot is the last-known-good code content of a session.
// One snapshot per session; history lives only in the event log.
type CodeSnapshot struct {
	SessionID uuid.UUID `json:"sessionId" bson:"sessionId"`
	Code      string    `json:"code" bson:"code"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

// PlaceholderCode returns the starter buffer shown before any save
func PlaceholderCode(language string) string {
	return fmt.Sprintf("// Start coding in %s\n\n", language)
}

// SnapshotRepository defines the interface for snapshot storage.
// Upsert is last-write-wins with no concurrency check.
type SnapshotRepository interface {
	Get(ctx context.Context, sessionID uuid.UUID) (*CodeSnapshot, error)
	Upsert(ctx context.Context, sessionID uuid.UUID, code string) error
	DeleteBySession(ctx context.Context, sessionID uuid.UUID) error
}
