package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/Karthik-sherigar/CodeCollab-Live/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// GitHubRepository handles GitHub connection data access. Connections
// live on the users table; a NULL github_username means not connected.
type GitHubRepository struct {
	db *DB
}

// NewGitHubRepository creates a new GitHub connection repository
func NewGitHubRepository(db *DB) *GitHubRepository {
	return &GitHubRepository{db: db}
}

// SaveConnection stores or replaces the user's GitHub connection
func (r *GitHubRepository) SaveConnection(ctx context.Context, conn *domain.GitHubConnection) error {
	query := `
		UPDATE users
		SET github_id = $2, github_username = $3, github_token = $4, github_connected_at = $5
		WHERE id = $1
	`

	tag, err := r.db.Pool.Exec(ctx, query,
		conn.UserID,
		conn.GitHubID,
		conn.Username,
		conn.EncryptedToken,
		conn.ConnectedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save GitHub connection: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("failed to save GitHub connection: %w", domain.ErrNotFound)
	}

	return nil
}

// GetConnection retrieves the user's GitHub connection, or nil if the
// account has not been connected
func (r *GitHubRepository) GetConnection(ctx context.Context, userID uuid.UUID) (*domain.GitHubConnection, error) {
	query := `
		SELECT id, github_id, github_username, github_token, github_connected_at
		FROM users
		WHERE id = $1 AND github_username IS NOT NULL
	`

	var conn domain.GitHubConnection
	err := r.db.Pool.QueryRow(ctx, query, userID).Scan(
		&conn.UserID,
		&conn.GitHubID,
		&conn.Username,
		&conn.EncryptedToken,
		&conn.ConnectedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get GitHub connection: %w", err)
	}

	return &conn, nil
}
