package handler

import (
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/Karthik-sherigar/CodeCollab-Live/internal/api/middleware"
	"github.com/Karthik-sherigar/CodeCollab-Live/internal/api/response"
	"github.com/Karthik-sherigar/CodeCollab-Live/internal/service"
	"github.com/rs/zerolog/log"
)

// GitHubHandler handles GitHub account linking and repository sync
type GitHubHandler struct {
	githubService *service.GitHubService
	frontendURL   string
}

// NewGitHubHandler creates a new GitHub handler
func NewGitHubHandler(githubService *service.GitHubService, frontendURL string) *GitHubHandler {
	return &GitHubHandler{
		githubService: githubService,
		frontendURL:   frontendURL,
	}
}

// ImportRequest identifies a file to fetch from a repository
type ImportRequest struct {
	Owner    string `json:"owner" validate:"required"`
	Repo     string `json:"repo" validate:"required"`
	Branch   string `json:"branch" validate:"required"`
	FilePath string `json:"filePath" validate:"required"`
}

// ExportRequest identifies a file to commit to a repository
type ExportRequest struct {
	Owner    string `json:"owner" validate:"required"`
	Repo     string `json:"repo" validate:"required"`
	Branch   string `json:"branch" validate:"required"`
	FilePath string `json:"filePath" validate:"required"`
	Content  string `json:"content" validate:"required"`
	Message  string `json:"message" validate:"required"`
}

// Auth redirects the user to GitHub's authorization page
func (h *GitHubHandler) Auth(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "authentication required")
		return
	}

	http.Redirect(w, r, h.githubService.AuthURL(userID), http.StatusFound)
}

// Callback completes the OAuth flow. GitHub calls this endpoint, so
// failures redirect back to the frontend instead of returning JSON.
func (h *GitHubHandler) Callback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	state := r.URL.Query().Get("state")

	if code == "" || state == "" {
		h.redirectWithError(w, r, "missing_code")
		return
	}

	if err := h.githubService.Connect(r.Context(), code, state); err != nil {
		log.Error().Err(err).Msg("GitHub OAuth callback failed")
		h.redirectWithError(w, r, "auth_failed")
		return
	}

	http.Redirect(w, r, h.frontendURL+"/dashboard?github_connected=true", http.StatusFound)
}

// Status reports whether the user has connected a GitHub account
func (h *GitHubHandler) Status(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "authentication required")
		return
	}

	conn, err := h.githubService.Status(r.Context(), userID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	if conn == nil {
		response.OK(w, map[string]any{"connected": false})
		return
	}

	response.OK(w, map[string]any{
		"connected":   true,
		"username":    conn.Username,
		"connectedAt": conn.ConnectedAt,
	})
}

// Repos lists repositories visible to the connected account
func (h *GitHubHandler) Repos(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "authentication required")
		return
	}

	repos, err := h.githubService.Repos(r.Context(), userID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.OK(w, repos)
}

// Import fetches a file from a repository branch
func (h *GitHubHandler) Import(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "authentication required")
		return
	}

	var input ImportRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if err := validate.Struct(input); err != nil {
		response.BadRequest(w, validationMessages(err))
		return
	}

	file, err := h.githubService.ImportFile(r.Context(), userID, input.Owner, input.Repo, input.Branch, input.FilePath)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.OK(w, file)
}

// Export commits a file to a repository branch
func (h *GitHubHandler) Export(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "authentication required")
		return
	}

	var input ExportRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if err := validate.Struct(input); err != nil {
		response.BadRequest(w, validationMessages(err))
		return
	}

	commit, err := h.githubService.ExportFile(
		r.Context(), userID,
		input.Owner, input.Repo, input.Branch, input.FilePath, input.Message, input.Content,
	)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.OK(w, commit)
}

func (h *GitHubHandler) redirectWithError(w http.ResponseWriter, r *http.Request, reason string) {
	http.Redirect(w, r, h.frontendURL+"/dashboard?github_error="+url.QueryEscape(reason), http.StatusFound)
}
