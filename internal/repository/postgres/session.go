package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Karthik-sherigar/CodeCollab-Live/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// SessionRepository implements domain.SessionRepository
type SessionRepository struct {
	db *DB
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(db *DB) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) Create(ctx context.Context, session *domain.Session) error {
	query := `
		INSERT INTO sessions (id, workspace_id, title, language, filename, status, created_by, started_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.Pool.Exec(ctx, query,
		session.ID,
		session.WorkspaceID,
		session.Title,
		session.Language,
		session.Filename,
		session.Status,
		session.CreatedBy,
		session.StartedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

func (r *SessionRepository) Get(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	query := `
		SELECT s.id, s.workspace_id, s.title, s.language, s.filename, s.status,
		       s.created_by, u.name, s.started_at, s.ended_at
		FROM sessions s
		INNER JOIN users u ON s.created_by = u.id
		WHERE s.id = $1
	`
	var s domain.Session
	err := r.db.Pool.QueryRow(ctx, query, id).Scan(
		&s.ID,
		&s.WorkspaceID,
		&s.Title,
		&s.Language,
		&s.Filename,
		&s.Status,
		&s.CreatedBy,
		&s.CreatorName,
		&s.StartedAt,
		&s.EndedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return &s, nil
}

func (r *SessionRepository) ListByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]domain.Session, error) {
	query := `
		SELECT s.id, s.workspace_id, s.title, s.language, s.filename, s.status,
		       s.created_by, u.name, s.started_at, s.ended_at
		FROM sessions s
		INNER JOIN users u ON s.created_by = u.id
		WHERE s.workspace_id = $1
		ORDER BY s.started_at DESC
	`
	rows, err := r.db.Pool.Query(ctx, query, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []domain.Session
	for rows.Next() {
		var s domain.Session
		if err := rows.Scan(
			&s.ID,
			&s.WorkspaceID,
			&s.Title,
			&s.Language,
			&s.Filename,
			&s.Status,
			&s.CreatedBy,
			&s.CreatorName,
			&s.StartedAt,
			&s.EndedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, s)
	}
	return sessions, nil
}

// End marks a session ENDED. The transition is one-way.
func (r *SessionRepository) End(ctx context.Context, id uuid.UUID, endedAt time.Time) error {
	query := `
		UPDATE sessions
		SET status = $2, ended_at = $3
		WHERE id = $1 AND status = $4
	`
	_, err := r.db.Pool.Exec(ctx, query, id, domain.SessionEnded, endedAt, domain.SessionActive)
	if err != nil {
		return fmt.Errorf("failed to end session: %w", err)
	}
	return nil
}

func (r *SessionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM sessions WHERE id = $1`
	_, err := r.db.Pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
