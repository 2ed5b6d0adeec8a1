package handler

import (
	"encoding/json"
	"net/http"

	"github.com/Karthik-sherigar/CodeCollab-Live/internal/api/middleware"
	"github.com/Karthik-sherigar/CodeCollab-Live/internal/api/response"
	"github.com/Karthik-sherigar/CodeCollab-Live/internal/domain"
	"github.com/Karthik-sherigar/CodeCollab-Live/internal/realtime"
	"github.com/Karthik-sherigar/CodeCollab-Live/internal/service"
	"github.com/google/uuid"
)

// SessionHandler handles collaboration session endpoints
type SessionHandler struct {
	sessionService *service.SessionService
	broker         *realtime.Broker
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(sessionService *service.SessionService, broker *realtime.Broker) *SessionHandler {
	return &SessionHandler{
		sessionService: sessionService,
		broker:         broker,
	}
}

// Create handles session creation within a workspace
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, workspaceID, ok := workspaceScope(w, r)
	if !ok {
		return
	}

	var input domain.SessionCreate
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if err := validate.Struct(input); err != nil {
		response.BadRequest(w, validationMessages(err))
		return
	}

	session, err := h.sessionService.Create(r.Context(), userID, workspaceID, input)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Created(w, session)
}

// List handles listing sessions in a workspace
func (h *SessionHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, workspaceID, ok := workspaceScope(w, r)
	if !ok {
		return
	}

	sessions, err := h.sessionService.ListByWorkspace(r.Context(), userID, workspaceID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.OK(w, sessions)
}

// Get handles getting a session with its current code buffer
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, sessionID, ok := sessionScope(w, r)
	if !ok {
		return
	}

	session, err := h.sessionService.Get(r.Context(), userID, sessionID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.OK(w, session)
}

// SaveCode handles explicit code snapshot saves
func (h *SessionHandler) SaveCode(w http.ResponseWriter, r *http.Request) {
	userID, sessionID, ok := sessionScope(w, r)
	if !ok {
		return
	}

	var input struct {
		Code string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if err := h.sessionService.SaveCode(r.Context(), userID, sessionID, input.Code); err != nil {
		response.FromError(w, err)
		return
	}

	response.OK(w, map[string]string{"message": "code saved"})
}

// End handles the ACTIVE -> ENDED transition and notifies the live room
func (h *SessionHandler) End(w http.ResponseWriter, r *http.Request) {
	userID, sessionID, ok := sessionScope(w, r)
	if !ok {
		return
	}

	session, err := h.sessionService.End(r.Context(), userID, sessionID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	h.broker.NotifySessionEnded(sessionID)

	response.OK(w, session)
}

// Delete handles session deletion with a full purge of attached records
func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, sessionID, ok := sessionScope(w, r)
	if !ok {
		return
	}

	if err := h.sessionService.Delete(r.Context(), userID, sessionID); err != nil {
		response.FromError(w, err)
		return
	}

	response.NoContent(w)
}

// Replay returns the session's event log as replay frames
func (h *SessionHandler) Replay(w http.ResponseWriter, r *http.Request) {
	userID, sessionID, ok := sessionScope(w, r)
	if !ok {
		return
	}

	events, err := h.sessionService.Replay(r.Context(), userID, sessionID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.OK(w, events)
}

// Analytics returns per-contributor activity for an ended session
func (h *SessionHandler) Analytics(w http.ResponseWriter, r *http.Request) {
	userID, sessionID, ok := sessionScope(w, r)
	if !ok {
		return
	}

	analytics, err := h.sessionService.Analytics(r.Context(), userID, sessionID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.OK(w, analytics)
}

// Participants returns the live presence list for a session
func (h *SessionHandler) Participants(w http.ResponseWriter, r *http.Request) {
	userID, sessionID, ok := sessionScope(w, r)
	if !ok {
		return
	}

	// Access check goes through the same path as session reads
	if _, err := h.sessionService.Get(r.Context(), userID, sessionID); err != nil {
		response.FromError(w, err)
		return
	}

	response.OK(w, h.broker.Presence().List(sessionID.String()))
}

// sessionScope pulls the authenticated user and session IDs from context
func sessionScope(w http.ResponseWriter, r *http.Request) (userID, sessionID uuid.UUID, ok bool) {
	userID, found := middleware.GetUserID(r.Context())
	if !found {
		response.Unauthorized(w, "unauthorized")
		return uuid.Nil, uuid.Nil, false
	}

	sessionID, found = middleware.GetSessionID(r.Context())
	if !found {
		response.BadRequest(w, "missing session ID")
		return uuid.Nil, uuid.Nil, false
	}

	return userID, sessionID, true
}
