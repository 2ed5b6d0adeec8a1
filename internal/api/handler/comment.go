package handler

import (
	"encoding/json"
	"net/http"

	"github.com/Karthik-sherigar/CodeCollab-Live/internal/api/middleware"
	"github.com/Karthik-sherigar/CodeCollab-Live/internal/api/response"
	"github.com/Karthik-sherigar/CodeCollab-Live/internal/domain"
	"github.com/Karthik-sherigar/CodeCollab-Live/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// CommentHandler handles comment thread endpoints
type CommentHandler struct {
	commentService *service.CommentService
}

// NewCommentHandler creates a new comment handler
func NewCommentHandler(commentService *service.CommentService) *CommentHandler {
	return &CommentHandler{commentService: commentService}
}

// List handles listing all comment threads on a session
func (h *CommentHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, sessionID, ok := sessionScope(w, r)
	if !ok {
		return
	}

	threads, err := h.commentService.ListBySession(r.Context(), userID, sessionID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.OK(w, threads)
}

// Create handles opening a new comment thread on a line range
func (h *CommentHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, sessionID, ok := sessionScope(w, r)
	if !ok {
		return
	}

	var input domain.ThreadCreate
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if err := validate.Struct(input); err != nil {
		response.BadRequest(w, validationMessages(err))
		return
	}

	thread, err := h.commentService.Create(r.Context(), userID, sessionID, input)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Created(w, thread)
}

// Reply handles appending a comment to an existing thread
func (h *CommentHandler) Reply(w http.ResponseWriter, r *http.Request) {
	userID, threadID, ok := threadScope(w, r)
	if !ok {
		return
	}

	var input domain.ReplyCreate
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if err := validate.Struct(input); err != nil {
		response.BadRequest(w, validationMessages(err))
		return
	}

	thread, err := h.commentService.Reply(r.Context(), userID, threadID, input)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.OK(w, thread)
}

// Resolve handles marking a thread resolved
func (h *CommentHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	userID, threadID, ok := threadScope(w, r)
	if !ok {
		return
	}

	thread, err := h.commentService.Resolve(r.Context(), userID, threadID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.OK(w, thread)
}

// Reopen handles reopening a resolved thread
func (h *CommentHandler) Reopen(w http.ResponseWriter, r *http.Request) {
	userID, threadID, ok := threadScope(w, r)
	if !ok {
		return
	}

	thread, err := h.commentService.Reopen(r.Context(), userID, threadID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.OK(w, thread)
}

// Delete handles deleting a thread
func (h *CommentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, threadID, ok := threadScope(w, r)
	if !ok {
		return
	}

	if err := h.commentService.Delete(r.Context(), userID, threadID); err != nil {
		response.FromError(w, err)
		return
	}

	response.NoContent(w)
}

// threadScope pulls the authenticated user and thread ID from the request
func threadScope(w http.ResponseWriter, r *http.Request) (userID uuid.UUID, threadID string, ok bool) {
	userID, found := middleware.GetUserID(r.Context())
	if !found {
		response.Unauthorized(w, "unauthorized")
		return uuid.Nil, "", false
	}

	threadID = chi.URLParam(r, "threadID")
	if threadID == "" {
		response.BadRequest(w, "missing thread ID")
		return uuid.Nil, "", false
	}

	return userID, threadID, true
}
