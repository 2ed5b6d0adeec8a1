package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// GitHubConnection links a platform user to a GitHub account. The access
// token is stored encrypted and only decrypted at the point of use.
type GitHubConnection struct {
	UserID         uuid.UUID `json:"user_id"`
	GitHubID       string    `json:"github_id"`
	Username       string    `json:"username"`
	EncryptedToken string    `json:"-"`
	ConnectedAt    time.Time `json:"connected_at"`
}

// GitHubRepo is a repository visible to the connected account
type GitHubRepo struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	FullName      string `json:"fullName"`
	Owner         string `json:"owner"`
	Private       bool   `json:"private"`
	DefaultBranch string `json:"defaultBranch"`
}

// GitHubFile is a file fetched from a repository
type GitHubFile struct {
	Content string `json:"content"`
	SHA     string `json:"sha"`
}

// GitHubCommit identifies a commit created by an export
type GitHubCommit struct {
	SHA string `json:"commitSha"`
	URL string `json:"commitUrl"`
}

// GitHubRepository defines the interface for GitHub connection storage
type GitHubRepository interface {
	SaveConnection(ctx context.Context, conn *GitHubConnection) error
	// GetConnection returns nil when the user has not connected GitHub
	GetConnection(ctx context.Context, userID uuid.UUID) (*GitHubConnection, error)
}
