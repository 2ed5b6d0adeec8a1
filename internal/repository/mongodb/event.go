package mongodb

import (
	"context"
	"fmt"
	"time"

	"github.com/Karthik-sherigar/CodeCollab-Live/internal/domain"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EventRepository implements domain.EventRepository on MongoDB
type EventRepository struct {
	coll *mongo.Collection
}

// NewEventRepository creates a new event repository
func NewEventRepository(client *Client) *EventRepository {
	return &EventRepository{coll: client.db.Collection(eventsCollection)}
}

// eventDoc is the stored shape. Payload is kept as raw bson and decoded
// into the typed payload matching the event's Type on read.
type eventDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	SessionID string             `bson:"sessionId"`
	Type      domain.EventType   `bson:"type"`
	Payload   bson.Raw           `bson:"payload"`
	Timestamp time.Time          `bson:"timestamp"`
}

// Append inserts a new event into the log
func (r *EventRepository) Append(ctx context.Context, event *domain.SessionEvent) error {
	payload, err := bson.Marshal(event.Payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	doc := eventDoc{
		SessionID: event.SessionID.String(),
		Type:      event.Type,
		Payload:   payload,
		Timestamp: event.Timestamp,
	}

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		return fmt.Errorf("failed to append event: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		event.ID = oid.Hex()
	}
	return nil
}

// ListBySession returns all events for a session in ascending timestamp order
func (r *EventRepository) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]domain.SessionEvent, error) {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}})
	cursor, err := r.coll.Find(ctx, bson.M{"sessionId": sessionID.String()}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer cursor.Close(ctx)

	var events []domain.SessionEvent
	for cursor.Next(ctx) {
		var doc eventDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode event: %w", err)
		}

		event, err := doc.toDomain()
		if err != nil {
			return nil, err
		}
		events = append(events, *event)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}

	return events, nil
}

// DeleteBySession purges all events for a session
func (r *EventRepository) DeleteBySession(ctx context.Context, sessionID uuid.UUID) error {
	_, err := r.coll.DeleteMany(ctx, bson.M{"sessionId": sessionID.String()})
	if err != nil {
		return fmt.Errorf("failed to delete events: %w", err)
	}
	return nil
}

func (d *eventDoc) toDomain() (*domain.SessionEvent, error) {
	sessionID, err := uuid.Parse(d.SessionID)
	if err != nil {
		return nil, fmt.Errorf("invalid session ID in event %s: %w", d.ID.Hex(), err)
	}

	var payload domain.EventPayload
	switch d.Type {
	case domain.EventCodeChange:
		var p domain.CodeChangePayload
		if err := bson.Unmarshal(d.Payload, &p); err != nil {
			return nil, fmt.Errorf("failed to decode code change payload: %w", err)
		}
		payload = p
	case domain.EventCommentAdd, domain.EventCommentResolve, domain.EventCommentReopen:
		var p domain.ThreadPayload
		if err := bson.Unmarshal(d.Payload, &p); err != nil {
			return nil, fmt.Errorf("failed to decode thread payload: %w", err)
		}
		payload = p
	case domain.EventCommentDelete:
		var p domain.ThreadDeletedPayload
		if err := bson.Unmarshal(d.Payload, &p); err != nil {
			return nil, fmt.Errorf("failed to decode thread deletion payload: %w", err)
		}
		payload = p
	default:
		return nil, fmt.Errorf("unknown event type %q in event %s", d.Type, d.ID.Hex())
	}

	return &domain.SessionEvent{
		ID:        d.ID.Hex(),
		SessionID: sessionID,
		Type:      d.Type,
		Payload:   payload,
		Timestamp: d.Timestamp,
	}, nil
}
