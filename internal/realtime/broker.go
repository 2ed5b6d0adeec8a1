package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/Karthik-sherigar/CodeCollab-Live/internal/domain"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Directory is the session directory consulted for room admission and
// session status. Backed by the relational store.
type Directory interface {
	GetSession(ctx context.Context, sessionID uuid.UUID) (*domain.Session, error)
	IsWorkspaceMember(ctx context.Context, workspaceID, userID uuid.UUID) (bool, error)
}

// Time budget for directory lookups and log appends inside a handler
const handlerTimeout = 5 * time.Second

// Broker is the realtime hub: it admits authenticated connections into
// session rooms, fans out event messages, and records replayable events.
type Broker struct {
	hub       *Hub
	presence  *Presence
	directory Directory
	events    domain.EventRepository
}

// NewBroker wires the broker to its collaborators
func NewBroker(hub *Hub, presence *Presence, directory Directory, events domain.EventRepository) *Broker {
	return &Broker{
		hub:       hub,
		presence:  presence,
		directory: directory,
		events:    events,
	}
}

// Hub exposes the room registry, mainly for tests and introspection
func (b *Broker) Hub() *Hub {
	return b.hub
}

// Presence exposes the presence registry
func (b *Broker) Presence() *Presence {
	return b.presence
}

// dispatch routes one inbound frame. Invoked from the client's read
// pump, so frames from a single connection are handled in order.
func (b *Broker) dispatch(c *Client, env Envelope) {
	switch env.Event {
	case MsgJoinSession:
		b.handleJoin(c, env.Data)
	case MsgCodeChange:
		b.handleCodeChange(c, env.Data)
	case MsgCursorMove:
		b.handleCursorMove(c, env.Data)
	case MsgAddComment:
		b.handleThreadEvent(c, env.Data, domain.EventCommentAdd, MsgCommentAdded)
	case MsgResolveComment:
		b.handleThreadEvent(c, env.Data, domain.EventCommentResolve, MsgCommentResolved)
	case MsgReopenComment:
		b.handleThreadEvent(c, env.Data, domain.EventCommentReopen, MsgCommentReopened)
	case MsgAddReply:
		b.handleReply(c, env.Data)
	case MsgDeleteComment:
		b.handleDeleteComment(c, env.Data)
	default:
		c.sendError("unknown event: " + env.Event)
	}
}

// handleJoin admits a connection into a session room after verifying the
// session exists and the user belongs to its workspace. Failures are
// scoped errors; the connection is never admitted on failure.
func (b *Broker) handleJoin(c *Client, data json.RawMessage) {
	var req JoinSessionRequest
	if err := json.Unmarshal(data, &req); err != nil {
		c.sendError("invalid join-session payload")
		return
	}

	sessionID, err := uuid.Parse(req.SessionID)
	if err != nil {
		c.sendError("invalid session ID")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()

	session, err := b.directory.GetSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			c.sendError("Session not found")
			return
		}
		log.Error().Err(err).Str("session_id", req.SessionID).Msg("Session lookup failed")
		c.sendError("Failed to join session")
		return
	}

	isMember, err := b.directory.IsWorkspaceMember(ctx, session.WorkspaceID, c.UserID)
	if err != nil {
		log.Error().Err(err).Str("session_id", req.SessionID).Msg("Membership check failed")
		c.sendError("Failed to join session")
		return
	}
	if !isMember {
		c.sendError("Access denied: you are not a member of this workspace")
		return
	}

	b.hub.Join(req.SessionID, c)
	b.presence.Add(req.SessionID, &Participant{
		UserID: c.UserID.String(),
		Name:   c.Name,
		Color:  c.Color,
	})

	log.Info().
		Str("session_id", req.SessionID).
		Str("user_id", c.UserID.String()).
		Msg("User joined session room")

	b.broadcast(req.SessionID, MsgUserJoined, UserJoinedNotice{
		UserID:   c.UserID.String(),
		UserName: c.Name,
	}, c)
}

// handleCodeChange records a CODE_CHANGE event and fans the new buffer
// out to every other room member. The append is best-effort: a logging
// failure never blocks the live broadcast.
func (b *Broker) handleCodeChange(c *Client, data json.RawMessage) {
	var req CodeChangeRequest
	if err := json.Unmarshal(data, &req); err != nil {
		c.sendError("invalid code-change payload")
		return
	}

	sessionID, err := uuid.Parse(req.SessionID)
	if err != nil {
		c.sendError("invalid session ID")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()

	session, err := b.directory.GetSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			c.sendError("Session not found")
			return
		}
		log.Error().Err(err).Str("session_id", req.SessionID).Msg("Session lookup failed")
		c.sendError("Failed to apply code change")
		return
	}
	if session.Status == domain.SessionEnded {
		c.sendError("Cannot edit an ended session")
		return
	}

	event := domain.NewCodeChangeEvent(sessionID, req.Code, time.Now())
	if err := b.events.Append(ctx, event); err != nil {
		log.Error().Err(err).Str("session_id", req.SessionID).Msg("Failed to record code change")
	}

	b.broadcast(req.SessionID, MsgCodeUpdate, req.Code, c)
}

// handleCursorMove fans a cursor position out to the rest of the room.
// Purely ephemeral presence: not persisted, not logged.
func (b *Broker) handleCursorMove(c *Client, data json.RawMessage) {
	var req CursorMoveRequest
	if err := json.Unmarshal(data, &req); err != nil {
		c.sendError("invalid cursor-move payload")
		return
	}

	b.presence.UpdateCursor(req.SessionID, c.UserID.String(), req.Position)

	b.broadcast(req.SessionID, MsgCursorUpdate, CursorUpdateNotice{
		UserID:    c.UserID.String(),
		UserName:  c.Name,
		UserColor: c.Color,
		Position:  req.Position,
	}, c)
}

// handleThreadEvent records a comment lifecycle event and broadcasts the
// full thread to the entire room, sender included, so the sender's
// optimistic UI reconciles against the server-accepted state.
func (b *Broker) handleThreadEvent(c *Client, data json.RawMessage, eventType domain.EventType, outbound string) {
	var thread domain.CommentThread
	if err := json.Unmarshal(data, &thread); err != nil {
		c.sendError("invalid comment payload")
		return
	}

	sessionID, err := uuid.Parse(thread.SessionID)
	if err != nil {
		c.sendError("invalid session ID")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()

	event := domain.NewThreadEvent(eventType, sessionID, thread, time.Now())
	if err := b.events.Append(ctx, event); err != nil {
		log.Error().Err(err).
			Str("session_id", thread.SessionID).
			Str("type", string(eventType)).
			Msg("Failed to record comment event")
	}

	b.broadcast(thread.SessionID, outbound, thread, nil)
}

// handleReply broadcasts a reply to the entire room. Replies are not
// recorded as replay-visible events; reply content is only reachable
// through the comment thread store.
func (b *Broker) handleReply(c *Client, data json.RawMessage) {
	var thread domain.CommentThread
	if err := json.Unmarshal(data, &thread); err != nil {
		c.sendError("invalid reply payload")
		return
	}
	if thread.SessionID == "" {
		c.sendError("missing session ID")
		return
	}

	b.broadcast(thread.SessionID, MsgReplyAdded, thread, nil)
}

// handleDeleteComment broadcasts a thread deletion to the entire room.
// Like replies, deletions are not recorded in the replay log.
func (b *Broker) handleDeleteComment(c *Client, data json.RawMessage) {
	var req ThreadRefRequest
	if err := json.Unmarshal(data, &req); err != nil {
		c.sendError("invalid delete-comment payload")
		return
	}
	if req.SessionID == "" {
		c.sendError("missing session ID")
		return
	}

	b.broadcast(req.SessionID, MsgCommentDeleted, map[string]string{"threadId": req.ThreadID}, nil)
}

// NotifySessionEnded announces a session end to the room. The state
// transition itself happens over the HTTP surface before this is called.
func (b *Broker) NotifySessionEnded(sessionID uuid.UUID) {
	b.broadcast(sessionID.String(), MsgSessionEnded, struct{}{}, nil)
}

// disconnect removes a client from every room it joined and notifies
// the remaining members.
func (b *Broker) disconnect(c *Client) {
	sessions := b.hub.LeaveAll(c)
	for _, sessionID := range sessions {
		b.presence.Remove(sessionID, c.UserID.String())
		b.broadcast(sessionID, MsgUserLeft, UserLeftNotice{UserID: c.UserID.String()}, nil)
	}

	if len(sessions) > 0 {
		log.Info().
			Str("user_id", c.UserID.String()).
			Int("rooms", len(sessions)).
			Msg("User disconnected")
	}
}

func (b *Broker) broadcast(sessionID, event string, data any, exclude *Client) {
	frame, err := Encode(event, data)
	if err != nil {
		log.Error().Err(err).Str("event", event).Msg("Failed to encode broadcast")
		return
	}
	b.hub.Broadcast(sessionID, frame, exclude)
}
