package realtime

import (
	"encoding/json"
	"fmt"
)

// Client-to-server message names
const (
	MsgJoinSession    = "join-session"
	MsgCodeChange     = "code-change"
	MsgCursorMove     = "cursor-move"
	MsgAddComment     = "add-comment"
	MsgAddReply       = "add-reply"
	MsgResolveComment = "resolve-comment"
	MsgReopenComment  = "reopen-comment"
	MsgDeleteComment  = "delete-comment"
)

// Server-to-client message names
const (
	MsgUserJoined      = "user-joined"
	MsgUserLeft        = "user-left"
	MsgCodeUpdate      = "code-update"
	MsgCursorUpdate    = "cursor-update"
	MsgCommentAdded    = "comment-added"
	MsgReplyAdded      = "reply-added"
	MsgCommentResolved = "comment-resolved"
	MsgCommentReopened = "comment-reopened"
	MsgCommentDeleted  = "comment-deleted"
	MsgSessionEnded    = "session-ended"
	MsgError           = "error"
)

// Envelope is the wire frame for every realtime message
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Encode builds a wire frame from an event name and payload
func Encode(event string, data any) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s payload: %w", event, err)
	}
	return json.Marshal(Envelope{Event: event, Data: raw})
}

// CursorPosition is a client cursor location in the shared buffer
type CursorPosition struct {
	LineNumber int `json:"lineNumber"`
	Column     int `json:"column"`
}

// JoinSessionRequest asks for admission into a session room
type JoinSessionRequest struct {
	SessionID string `json:"sessionId"`
}

// CodeChangeRequest carries the sender's full buffer content
type CodeChangeRequest struct {
	SessionID string `json:"sessionId"`
	Code      string `json:"code"`
}

// CursorMoveRequest carries an ephemeral cursor update
type CursorMoveRequest struct {
	SessionID string         `json:"sessionId"`
	UserID    string         `json:"userId"`
	UserName  string         `json:"userName"`
	UserColor string         `json:"userColor"`
	Position  CursorPosition `json:"position"`
}

// ThreadRefRequest references a thread within a session (delete-comment)
type ThreadRefRequest struct {
	SessionID string `json:"sessionId"`
	ThreadID  string `json:"threadId"`
}

// UserJoinedNotice announces a new room member to the rest of the room
type UserJoinedNotice struct {
	UserID   string `json:"userId"`
	UserName string `json:"userName"`
}

// UserLeftNotice announces a departed room member
type UserLeftNotice struct {
	UserID string `json:"userId"`
}

// CursorUpdateNotice fans a cursor move out to other room members
type CursorUpdateNotice struct {
	UserID    string         `json:"userId"`
	UserName  string         `json:"userName"`
	UserColor string         `json:"userColor"`
	Position  CursorPosition `json:"position"`
}

// ErrorNotice is scoped to the offending connection only
type ErrorNotice struct {
	Message string `json:"message"`
}
