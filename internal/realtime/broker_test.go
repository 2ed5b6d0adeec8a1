package realtime

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/Karthik-sherigar/CodeCollab-Live/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockDirectory mocks the Directory interface
type MockDirectory struct {
	mock.Mock
}

func (m *MockDirectory) GetSession(ctx context.Context, sessionID uuid.UUID) (*domain.Session, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Session), args.Error(1)
}

func (m *MockDirectory) IsWorkspaceMember(ctx context.Context, workspaceID, userID uuid.UUID) (bool, error) {
	args := m.Called(ctx, workspaceID, userID)
	return args.Bool(0), args.Error(1)
}

// MockEventRepository mocks the EventRepository interface
type MockEventRepository struct {
	mock.Mock
}

func (m *MockEventRepository) Append(ctx context.Context, event *domain.SessionEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockEventRepository) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]domain.SessionEvent, error) {
	args := m.Called(ctx, sessionID)
	return args.Get(0).([]domain.SessionEvent), args.Error(1)
}

func (m *MockEventRepository) DeleteBySession(ctx context.Context, sessionID uuid.UUID) error {
	args := m.Called(ctx, sessionID)
	return args.Error(0)
}

func envelope(t *testing.T, event string, data any) Envelope {
	t.Helper()
	raw, err := json.Marshal(data)
	assert.NoError(t, err)
	return Envelope{Event: event, Data: raw}
}

func activeSession(workspaceID uuid.UUID) *domain.Session {
	return &domain.Session{
		ID:          uuid.New(),
		WorkspaceID: workspaceID,
		Status:      domain.SessionActive,
		StartedAt:   time.Now(),
	}
}

func TestJoinAdmitsWorkspaceMember(t *testing.T) {
	directory := new(MockDirectory)
	events := new(MockEventRepository)
	broker := NewBroker(NewHub(), NewPresence(), directory, events)

	workspaceID := uuid.New()
	session := activeSession(workspaceID)
	joiner := newTestClient()
	other := newTestClient()
	broker.hub.Join(session.ID.String(), other)

	directory.On("GetSession", mock.Anything, session.ID).Return(session, nil)
	directory.On("IsWorkspaceMember", mock.Anything, workspaceID, joiner.UserID).Return(true, nil)

	broker.dispatch(joiner, envelope(t, MsgJoinSession, JoinSessionRequest{SessionID: session.ID.String()}))

	assert.True(t, broker.hub.Contains(session.ID.String(), joiner))
	assert.Len(t, broker.presence.List(session.ID.String()), 1)

	// The new member is announced to the rest of the room, not echoed back
	env := recvFrame(t, other)
	assert.Equal(t, MsgUserJoined, env.Event)
	assertNoFrame(t, joiner)

	directory.AssertExpectations(t)
}

func TestJoinRejectsNonMember(t *testing.T) {
	directory := new(MockDirectory)
	broker := NewBroker(NewHub(), NewPresence(), directory, new(MockEventRepository))

	workspaceID := uuid.New()
	session := activeSession(workspaceID)
	joiner := newTestClient()

	directory.On("GetSession", mock.Anything, session.ID).Return(session, nil)
	directory.On("IsWorkspaceMember", mock.Anything, workspaceID, joiner.UserID).Return(false, nil)

	broker.dispatch(joiner, envelope(t, MsgJoinSession, JoinSessionRequest{SessionID: session.ID.String()}))

	assert.False(t, broker.hub.Contains(session.ID.String(), joiner))
	env := recvFrame(t, joiner)
	assert.Equal(t, MsgError, env.Event)
}

func TestJoinUnknownSession(t *testing.T) {
	directory := new(MockDirectory)
	broker := NewBroker(NewHub(), NewPresence(), directory, new(MockEventRepository))

	sessionID := uuid.New()
	joiner := newTestClient()

	directory.On("GetSession", mock.Anything, sessionID).Return(nil, domain.ErrNotFound)

	broker.dispatch(joiner, envelope(t, MsgJoinSession, JoinSessionRequest{SessionID: sessionID.String()}))

	env := recvFrame(t, joiner)
	assert.Equal(t, MsgError, env.Event)
	assert.False(t, broker.hub.Contains(sessionID.String(), joiner))
}

func TestCodeChangeLogsAndExcludesSender(t *testing.T) {
	directory := new(MockDirectory)
	events := new(MockEventRepository)
	broker := NewBroker(NewHub(), NewPresence(), directory, events)

	session := activeSession(uuid.New())
	sender := newTestClient()
	other := newTestClient()
	broker.hub.Join(session.ID.String(), sender)
	broker.hub.Join(session.ID.String(), other)

	directory.On("GetSession", mock.Anything, session.ID).Return(session, nil)
	events.On("Append", mock.Anything, mock.MatchedBy(func(e *domain.SessionEvent) bool {
		payload, ok := e.Payload.(domain.CodeChangePayload)
		return e.Type == domain.EventCodeChange && e.SessionID == session.ID && ok && payload.Code == "package main"
	})).Return(nil)

	broker.dispatch(sender, envelope(t, MsgCodeChange, CodeChangeRequest{
		SessionID: session.ID.String(),
		Code:      "package main",
	}))

	env := recvFrame(t, other)
	assert.Equal(t, MsgCodeUpdate, env.Event)
	var code string
	assert.NoError(t, json.Unmarshal(env.Data, &code))
	assert.Equal(t, "package main", code)

	assertNoFrame(t, sender)
	events.AssertExpectations(t)
}

func TestCodeChangeRejectedForEndedSession(t *testing.T) {
	directory := new(MockDirectory)
	events := new(MockEventRepository)
	broker := NewBroker(NewHub(), NewPresence(), directory, events)

	session := activeSession(uuid.New())
	session.Status = domain.SessionEnded
	sender := newTestClient()
	other := newTestClient()
	broker.hub.Join(session.ID.String(), sender)
	broker.hub.Join(session.ID.String(), other)

	directory.On("GetSession", mock.Anything, session.ID).Return(session, nil)

	broker.dispatch(sender, envelope(t, MsgCodeChange, CodeChangeRequest{
		SessionID: session.ID.String(),
		Code:      "too late",
	}))

	env := recvFrame(t, sender)
	assert.Equal(t, MsgError, env.Event)
	assertNoFrame(t, other)
	events.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
}

func TestCodeChangeBroadcastSurvivesLogFailure(t *testing.T) {
	directory := new(MockDirectory)
	events := new(MockEventRepository)
	broker := NewBroker(NewHub(), NewPresence(), directory, events)

	session := activeSession(uuid.New())
	sender := newTestClient()
	other := newTestClient()
	broker.hub.Join(session.ID.String(), sender)
	broker.hub.Join(session.ID.String(), other)

	directory.On("GetSession", mock.Anything, session.ID).Return(session, nil)
	events.On("Append", mock.Anything, mock.Anything).Return(assert.AnError)

	broker.dispatch(sender, envelope(t, MsgCodeChange, CodeChangeRequest{
		SessionID: session.ID.String(),
		Code:      "still delivered",
	}))

	env := recvFrame(t, other)
	assert.Equal(t, MsgCodeUpdate, env.Event)
}

func TestCursorMoveEphemeral(t *testing.T) {
	directory := new(MockDirectory)
	events := new(MockEventRepository)
	broker := NewBroker(NewHub(), NewPresence(), directory, events)

	sessionID := uuid.New().String()
	sender := newTestClient()
	other := newTestClient()
	broker.hub.Join(sessionID, sender)
	broker.hub.Join(sessionID, other)
	broker.presence.Add(sessionID, &Participant{UserID: sender.UserID.String(), Name: sender.Name})

	broker.dispatch(sender, envelope(t, MsgCursorMove, CursorMoveRequest{
		SessionID: sessionID,
		Position:  CursorPosition{LineNumber: 12, Column: 4},
	}))

	env := recvFrame(t, other)
	assert.Equal(t, MsgCursorUpdate, env.Event)
	var notice CursorUpdateNotice
	assert.NoError(t, json.Unmarshal(env.Data, &notice))
	assert.Equal(t, sender.UserID.String(), notice.UserID)
	assert.Equal(t, 12, notice.Position.LineNumber)

	assertNoFrame(t, sender)
	// Nothing reaches the event log
	events.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)

	participants := broker.presence.List(sessionID)
	assert.Len(t, participants, 1)
	assert.Equal(t, 12, participants[0].Cursor.LineNumber)
}

func TestCommentAddLogsAndIncludesSender(t *testing.T) {
	directory := new(MockDirectory)
	events := new(MockEventRepository)
	broker := NewBroker(NewHub(), NewPresence(), directory, events)

	sessionID := uuid.New()
	sender := newTestClient()
	other := newTestClient()
	broker.hub.Join(sessionID.String(), sender)
	broker.hub.Join(sessionID.String(), other)

	thread := domain.CommentThread{
		ID:        "thread-1",
		SessionID: sessionID.String(),
		StartLine: 4,
		EndLine:   4,
		Status:    domain.ThreadOpen,
	}

	events.On("Append", mock.Anything, mock.MatchedBy(func(e *domain.SessionEvent) bool {
		return e.Type == domain.EventCommentAdd && e.SessionID == sessionID
	})).Return(nil)

	broker.dispatch(sender, envelope(t, MsgAddComment, thread))

	// Comment events go to the whole room, the sender included
	assert.Equal(t, MsgCommentAdded, recvFrame(t, sender).Event)
	assert.Equal(t, MsgCommentAdded, recvFrame(t, other).Event)
	events.AssertExpectations(t)
}

func TestResolveAndReopenLogged(t *testing.T) {
	directory := new(MockDirectory)
	events := new(MockEventRepository)
	broker := NewBroker(NewHub(), NewPresence(), directory, events)

	sessionID := uuid.New()
	sender := newTestClient()
	broker.hub.Join(sessionID.String(), sender)

	thread := domain.CommentThread{ID: "t1", SessionID: sessionID.String()}

	events.On("Append", mock.Anything, mock.MatchedBy(func(e *domain.SessionEvent) bool {
		return e.Type == domain.EventCommentResolve
	})).Return(nil).Once()
	events.On("Append", mock.Anything, mock.MatchedBy(func(e *domain.SessionEvent) bool {
		return e.Type == domain.EventCommentReopen
	})).Return(nil).Once()

	broker.dispatch(sender, envelope(t, MsgResolveComment, thread))
	assert.Equal(t, MsgCommentResolved, recvFrame(t, sender).Event)

	broker.dispatch(sender, envelope(t, MsgReopenComment, thread))
	assert.Equal(t, MsgCommentReopened, recvFrame(t, sender).Event)

	events.AssertExpectations(t)
}

func TestReplyBroadcastOnly(t *testing.T) {
	directory := new(MockDirectory)
	events := new(MockEventRepository)
	broker := NewBroker(NewHub(), NewPresence(), directory, events)

	sessionID := uuid.New().String()
	sender := newTestClient()
	other := newTestClient()
	broker.hub.Join(sessionID, sender)
	broker.hub.Join(sessionID, other)

	thread := domain.CommentThread{ID: "t1", SessionID: sessionID}

	broker.dispatch(sender, envelope(t, MsgAddReply, thread))

	assert.Equal(t, MsgReplyAdded, recvFrame(t, sender).Event)
	assert.Equal(t, MsgReplyAdded, recvFrame(t, other).Event)
	events.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
}

func TestDeleteCommentBroadcastOnly(t *testing.T) {
	directory := new(MockDirectory)
	events := new(MockEventRepository)
	broker := NewBroker(NewHub(), NewPresence(), directory, events)

	sessionID := uuid.New().String()
	sender := newTestClient()
	other := newTestClient()
	broker.hub.Join(sessionID, sender)
	broker.hub.Join(sessionID, other)

	broker.dispatch(sender, envelope(t, MsgDeleteComment, ThreadRefRequest{
		SessionID: sessionID,
		ThreadID:  "t1",
	}))

	env := recvFrame(t, other)
	assert.Equal(t, MsgCommentDeleted, env.Event)
	var payload map[string]string
	assert.NoError(t, json.Unmarshal(env.Data, &payload))
	assert.Equal(t, "t1", payload["threadId"])

	assert.Equal(t, MsgCommentDeleted, recvFrame(t, sender).Event)
	events.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
}

func TestDisconnectNotifiesRooms(t *testing.T) {
	directory := new(MockDirectory)
	broker := NewBroker(NewHub(), NewPresence(), directory, new(MockEventRepository))

	sessionID := uuid.New().String()
	leaver := newTestClient()
	other := newTestClient()
	broker.hub.Join(sessionID, leaver)
	broker.hub.Join(sessionID, other)
	broker.presence.Add(sessionID, &Participant{UserID: leaver.UserID.String()})

	broker.disconnect(leaver)

	assert.False(t, broker.hub.Contains(sessionID, leaver))
	assert.Empty(t, broker.presence.List(sessionID))

	env := recvFrame(t, other)
	assert.Equal(t, MsgUserLeft, env.Event)
	var notice UserLeftNotice
	assert.NoError(t, json.Unmarshal(env.Data, &notice))
	assert.Equal(t, leaver.UserID.String(), notice.UserID)
}

func TestNotifySessionEnded(t *testing.T) {
	directory := new(MockDirectory)
	broker := NewBroker(NewHub(), NewPresence(), directory, new(MockEventRepository))

	sessionID := uuid.New()
	member := newTestClient()
	broker.hub.Join(sessionID.String(), member)

	broker.NotifySessionEnded(sessionID)

	assert.Equal(t, MsgSessionEnded, recvFrame(t, member).Event)
}

func TestUnknownEventRejected(t *testing.T) {
	broker := NewBroker(NewHub(), NewPresence(), new(MockDirectory), new(MockEventRepository))
	c := newTestClient()

	broker.dispatch(c, Envelope{Event: "bogus", Data: json.RawMessage(`{}`)})

	env := recvFrame(t, c)
	assert.Equal(t, MsgError, env.Event)
}
