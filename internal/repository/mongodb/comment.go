package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Karthik-sherigar/CodeCollab-Live/internal/domain"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ThreadRepository implements domain.ThreadRepository on MongoDB
type ThreadRepository struct {
	coll *mongo.Collection
}

// NewThreadRepository creates a new comment thread repository
func NewThreadRepository(client *Client) *ThreadRepository {
	return &ThreadRepository{coll: client.db.Collection(threadsCollection)}
}

type threadDoc struct {
	ID        primitive.ObjectID   `bson:"_id,omitempty"`
	SessionID string               `bson:"sessionId"`
	StartLine int                  `bson:"startLine"`
	EndLine   int                  `bson:"endLine"`
	CreatedBy domain.ThreadCreator `bson:"createdBy"`
	Comments  []domain.Comment     `bson:"comments"`
	Status    domain.ThreadStatus  `bson:"status"`
	CreatedAt time.Time            `bson:"createdAt"`
	UpdatedAt time.Time            `bson:"updatedAt"`
}

func (d *threadDoc) toDomain() *domain.CommentThread {
	return &domain.CommentThread{
		ID:        d.ID.Hex(),
		SessionID: d.SessionID,
		StartLine: d.StartLine,
		EndLine:   d.EndLine,
		CreatedBy: d.CreatedBy,
		Comments:  d.Comments,
		Status:    d.Status,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

// Create inserts a new thread and assigns its ID
func (r *ThreadRepository) Create(ctx context.Context, thread *domain.CommentThread) error {
	doc := threadDoc{
		SessionID: thread.SessionID,
		StartLine: thread.StartLine,
		EndLine:   thread.EndLine,
		CreatedBy: thread.CreatedBy,
		Comments:  thread.Comments,
		Status:    thread.Status,
		CreatedAt: thread.CreatedAt,
		UpdatedAt: thread.UpdatedAt,
	}

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		return fmt.Errorf("failed to create thread: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		thread.ID = oid.Hex()
	}
	return nil
}

// Get retrieves a thread by ID
func (r *ThreadRepository) Get(ctx context.Context, id string) (*domain.CommentThread, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid thread ID %q: %w", id, domain.ErrNotFound)
	}

	var doc threadDoc
	err = r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get thread: %w", err)
	}

	return doc.toDomain(), nil
}

// AddReply appends a comment to the thread's ordered list and returns
// the updated thread
func (r *ThreadRepository) AddReply(ctx context.Context, id string, comment domain.Comment) (*domain.CommentThread, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid thread ID %q: %w", id, domain.ErrNotFound)
	}

	update := bson.M{
		"$push": bson.M{"comments": comment},
		"$set":  bson.M{"updatedAt": time.Now()},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc threadDoc
	err = r.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to add reply: %w", err)
	}

	return doc.toDomain(), nil
}

// SetStatus sets the thread status. Setting the current status again is
// a no-op observable as the same state.
func (r *ThreadRepository) SetStatus(ctx context.Context, id string, status domain.ThreadStatus) (*domain.CommentThread, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid thread ID %q: %w", id, domain.ErrNotFound)
	}

	update := bson.M{
		"$set": bson.M{"status": status, "updatedAt": time.Now()},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc threadDoc
	err = r.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to set thread status: %w", err)
	}

	return doc.toDomain(), nil
}

// Delete removes a thread
func (r *ThreadRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid thread ID %q: %w", id, domain.ErrNotFound)
	}

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("failed to delete thread: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListBySession returns all threads for a session, any status
func (r *ThreadRepository) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]domain.CommentThread, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	cursor, err := r.coll.Find(ctx, bson.M{"sessionId": sessionID.String()}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list threads: %w", err)
	}
	defer cursor.Close(ctx)

	var threads []domain.CommentThread
	for cursor.Next(ctx) {
		var doc threadDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode thread: %w", err)
		}
		threads = append(threads, *doc.toDomain())
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}

	return threads, nil
}

// DeleteBySession purges all threads for a session
func (r *ThreadRepository) DeleteBySession(ctx context.Context, sessionID uuid.UUID) error {
	_, err := r.coll.DeleteMany(ctx, bson.M{"sessionId": sessionID.String()})
	if err != nil {
		return fmt.Errorf("failed to delete threads: %w", err)
	}
	return nil
}
