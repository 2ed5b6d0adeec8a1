package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func testSession(started, ended time.Time) *Session {
	return &Session{
		ID:        uuid.New(),
		Title:     "Pairing on parser",
		StartedAt: started,
		EndedAt:   &ended,
		Status:    SessionEnded,
	}
}

func commentEvent(userID, name string, ts time.Time) SessionEvent {
	return SessionEvent{
		Type: EventCommentAdd,
		Payload: ThreadPayload{Thread: CommentThread{
			CreatedBy: ThreadCreator{UserID: userID, Name: name},
		}},
		Timestamp: ts,
	}
}

func TestComputeAnalytics(t *testing.T) {
	started := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	ended := started.Add(45 * time.Minute)
	session := testSession(started, ended)

	alice := uuid.New().String()
	bob := uuid.New().String()

	events := []SessionEvent{
		{Type: EventCodeChange, Payload: CodeChangePayload{Code: "a"}, Timestamp: started},
		{Type: EventCodeChange, Payload: CodeChangePayload{Code: "ab"}, Timestamp: started.Add(time.Minute)},
		{Type: EventCodeChange, Payload: CodeChangePayload{Code: "abc"}, Timestamp: started.Add(2 * time.Minute)},
		commentEvent(alice, "Alice", started.Add(3*time.Minute)),
		commentEvent(alice, "Alice", started.Add(4*time.Minute)),
		commentEvent(bob, "Bob", started.Add(5*time.Minute)),
	}

	analytics := ComputeAnalytics(session, events)

	assert.Equal(t, session.ID, analytics.SessionID)
	assert.Equal(t, "Pairing on parser", analytics.SessionTitle)
	assert.Equal(t, 45, analytics.DurationMinutes)
	assert.Equal(t, "45m", analytics.SessionDuration)
	assert.Equal(t, 3, analytics.TotalEdits)
	assert.Equal(t, 3, analytics.TotalComments)
	assert.Equal(t, 6, analytics.TotalEvents)
	assert.Equal(t, 2, analytics.ActiveCollaborators)

	assert.Len(t, analytics.Contributors, 2)
	assert.Equal(t, "Alice", analytics.Contributors[0].Name)
	assert.Equal(t, 2, analytics.Contributors[0].ActivityScore)
	assert.Equal(t, 100, analytics.Contributors[0].ActivityPercentage)
	assert.Equal(t, "Bob", analytics.Contributors[1].Name)
	assert.Equal(t, 1, analytics.Contributors[1].ActivityScore)
	assert.Equal(t, 50, analytics.Contributors[1].ActivityPercentage)
}

func TestComputeAnalyticsCodeChangesAreUnattributed(t *testing.T) {
	started := time.Now().Add(-10 * time.Minute)
	ended := time.Now()
	session := testSession(started, ended)

	events := []SessionEvent{
		{Type: EventCodeChange, Payload: CodeChangePayload{Code: "x"}, Timestamp: started},
		{Type: EventCodeChange, Payload: CodeChangePayload{Code: "xy"}, Timestamp: started},
	}

	analytics := ComputeAnalytics(session, events)

	assert.Equal(t, 2, analytics.TotalEdits)
	assert.Zero(t, analytics.ActiveCollaborators)
	assert.Empty(t, analytics.Contributors)
}

func TestComputeAnalyticsEmptyLog(t *testing.T) {
	started := time.Now().Add(-time.Minute)
	ended := time.Now()
	analytics := ComputeAnalytics(testSession(started, ended), nil)

	assert.Zero(t, analytics.TotalEvents)
	assert.Empty(t, analytics.Contributors)
	// No division by zero with an empty log
	assert.Zero(t, analytics.TotalEdits)
}

func statusEvent(eventType EventType, userID, name string, ts time.Time) SessionEvent {
	return SessionEvent{
		Type: eventType,
		Payload: ThreadPayload{Thread: CommentThread{
			CreatedBy: ThreadCreator{UserID: userID, Name: name},
		}},
		Timestamp: ts,
	}
}

func TestComputeAnalyticsResolveOnlyUserCounts(t *testing.T) {
	started := time.Now().Add(-20 * time.Minute)
	ended := time.Now()
	session := testSession(started, ended)

	// Carol only resolves and reopens; she never adds a comment.
	events := []SessionEvent{
		commentEvent("u1", "Alice", started),
		statusEvent(EventCommentResolve, "u2", "Carol", started.Add(time.Minute)),
		statusEvent(EventCommentReopen, "u2", "Carol", started.Add(2*time.Minute)),
	}

	analytics := ComputeAnalytics(session, events)

	assert.Equal(t, 1, analytics.TotalComments)
	assert.Equal(t, 2, analytics.ActiveCollaborators)

	assert.Len(t, analytics.Contributors, 2)
	assert.Equal(t, "Alice", analytics.Contributors[0].Name)
	assert.Equal(t, 1, analytics.Contributors[0].ActivityScore)
	assert.Equal(t, "Carol", analytics.Contributors[1].Name)
	assert.Zero(t, analytics.Contributors[1].ActivityScore)
	assert.Zero(t, analytics.Contributors[1].ActivityPercentage)
}

func TestComputeAnalyticsTieBrokenByName(t *testing.T) {
	started := time.Now().Add(-time.Hour)
	ended := time.Now()
	session := testSession(started, ended)

	events := []SessionEvent{
		commentEvent("u2", "Zoe", started),
		commentEvent("u1", "Amy", started),
	}

	analytics := ComputeAnalytics(session, events)

	assert.Equal(t, "Amy", analytics.Contributors[0].Name)
	assert.Equal(t, "Zoe", analytics.Contributors[1].Name)
	assert.Equal(t, 100, analytics.Contributors[0].ActivityPercentage)
	assert.Equal(t, 100, analytics.Contributors[1].ActivityPercentage)
}
