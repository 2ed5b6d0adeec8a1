package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Karthik-sherigar/CodeCollab-Live/internal/domain"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// SnapshotRepository implements domain.SnapshotRepository on MongoDB.
// One document per session; writes are last-write-wins.
type SnapshotRepository struct {
	coll *mongo.Collection
}

// NewSnapshotRepository creates a new snapshot repository
func NewSnapshotRepository(client *Client) *SnapshotRepository {
	return &SnapshotRepository{coll: client.db.Collection(snapshotsCollection)}
}

type snapshotDoc struct {
	SessionID string    `bson:"sessionId"`
	Code      string    `bson:"code"`
	UpdatedAt time.Time `bson:"updatedAt"`
	CreatedAt time.Time `bson:"createdAt"`
}

// Get returns the session's snapshot, or nil if none has been saved yet
func (r *SnapshotRepository) Get(ctx context.Context, sessionID uuid.UUID) (*domain.CodeSnapshot, error) {
	var doc snapshotDoc
	err := r.coll.FindOne(ctx, bson.M{"sessionId": sessionID.String()}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get snapshot: %w", err)
	}

	return &domain.CodeSnapshot{
		SessionID: sessionID,
		Code:      doc.Code,
		UpdatedAt: doc.UpdatedAt,
	}, nil
}

// Upsert overwrites-or-creates the session's snapshot
func (r *SnapshotRepository) Upsert(ctx context.Context, sessionID uuid.UUID, code string) error {
	now := time.Now()
	update := bson.M{
		"$set":         bson.M{"code": code, "updatedAt": now},
		"$setOnInsert": bson.M{"createdAt": now},
	}
	opts := options.Update().SetUpsert(true)

	_, err := r.coll.UpdateOne(ctx, bson.M{"sessionId": sessionID.String()}, update, opts)
	if err != nil {
		return fmt.Errorf("failed to upsert snapshot: %w", err)
	}
	return nil
}

// DeleteBySession removes the session's snapshot
func (r *SnapshotRepository) DeleteBySession(ctx context.Context, sessionID uuid.UUID) error {
	_, err := r.coll.DeleteOne(ctx, bson.M{"sessionId": sessionID.String()})
	if err != nil {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}
	return nil
}
