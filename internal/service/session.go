package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Karthik-sherigar/CodeCollab-Live/internal/domain"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// AnalyticsCache caches computed analytics for ended sessions.
// Satisfied by the redis-backed cache.
type AnalyticsCache interface {
	Get(ctx context.Context, sessionID uuid.UUID) (*domain.SessionAnalytics, error)
	Set(ctx context.Context, sessionID uuid.UUID, analytics *domain.SessionAnalytics) error
	Invalidate(ctx context.Context, sessionID uuid.UUID) error
}

// SessionService handles collaboration session lifecycle, code snapshots,
// event replay, and post-session analytics. It also serves as the session
// directory for the realtime broker.
type SessionService struct {
	sessionRepo    domain.SessionRepository
	workspaceRepo  domain.WorkspaceRepository
	eventRepo      domain.EventRepository
	threadRepo     domain.ThreadRepository
	snapshotRepo   domain.SnapshotRepository
	analyticsCache AnalyticsCache
}

// NewSessionService creates a new session service
func NewSessionService(
	sessionRepo domain.SessionRepository,
	workspaceRepo domain.WorkspaceRepository,
	eventRepo domain.EventRepository,
	threadRepo domain.ThreadRepository,
	snapshotRepo domain.SnapshotRepository,
	analyticsCache AnalyticsCache,
) *SessionService {
	return &SessionService{
		sessionRepo:    sessionRepo,
		workspaceRepo:  workspaceRepo,
		eventRepo:      eventRepo,
		threadRepo:     threadRepo,
		snapshotRepo:   snapshotRepo,
		analyticsCache: analyticsCache,
	}
}

// Create starts a new ACTIVE session in a workspace. The code buffer is
// seeded with a language placeholder.
func (s *SessionService) Create(ctx context.Context, userID, workspaceID uuid.UUID, input domain.SessionCreate) (*domain.Session, error) {
	isMember, err := s.workspaceRepo.IsMember(ctx, workspaceID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to check membership: %w", err)
	}
	if !isMember {
		return nil, domain.ErrAccessDenied
	}

	session := &domain.Session{
		ID:          uuid.New(),
		WorkspaceID: workspaceID,
		Title:       input.Title,
		Language:    input.Language,
		Filename:    input.Filename,
		Status:      domain.SessionActive,
		CreatedBy:   userID,
		StartedAt:   time.Now(),
	}

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	session.Code = domain.PlaceholderCode(input.Language)
	if err := s.snapshotRepo.Upsert(ctx, session.ID, session.Code); err != nil {
		// The snapshot is recreated on the first save; the session itself is fine
		log.Error().Err(err).Str("session_id", session.ID.String()).Msg("Failed to seed code snapshot")
	}

	return session, nil
}

// Get retrieves a session with its code buffer hydrated from the snapshot
// store. Falls back to the language placeholder when no snapshot exists.
func (s *SessionService) Get(ctx context.Context, userID, sessionID uuid.UUID) (*domain.Session, error) {
	session, err := s.authorize(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}

	snapshot, err := s.snapshotRepo.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshot: %w", err)
	}
	if snapshot != nil {
		session.Code = snapshot.Code
	} else {
		session.Code = domain.PlaceholderCode(session.Language)
	}

	return session, nil
}

// ListByWorkspace lists every session in a workspace, newest first
func (s *SessionService) ListByWorkspace(ctx context.Context, userID, workspaceID uuid.UUID) ([]domain.Session, error) {
	isMember, err := s.workspaceRepo.IsMember(ctx, workspaceID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to check membership: %w", err)
	}
	if !isMember {
		return nil, domain.ErrAccessDenied
	}

	sessions, err := s.sessionRepo.ListByWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	return sessions, nil
}

// SaveCode persists the current code buffer for an ACTIVE session
func (s *SessionService) SaveCode(ctx context.Context, userID, sessionID uuid.UUID, code string) error {
	session, err := s.authorize(ctx, userID, sessionID)
	if err != nil {
		return err
	}
	if session.Status == domain.SessionEnded {
		return domain.ErrSessionEnded
	}

	if err := s.snapshotRepo.Upsert(ctx, sessionID, code); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

// End transitions a session from ACTIVE to ENDED. Only the session
// creator may end it; the transition is one-way.
func (s *SessionService) End(ctx context.Context, userID, sessionID uuid.UUID) (*domain.Session, error) {
	session, err := s.authorize(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	if session.CreatedBy != userID {
		return nil, fmt.Errorf("%w: only the session creator can end it", domain.ErrPermissionDenied)
	}
	if session.Status == domain.SessionEnded {
		return nil, domain.ErrSessionEnded
	}

	endedAt := time.Now()
	if err := s.sessionRepo.End(ctx, sessionID, endedAt); err != nil {
		return nil, fmt.Errorf("failed to end session: %w", err)
	}

	session.Status = domain.SessionEnded
	session.EndedAt = &endedAt
	return session, nil
}

// Delete removes a session and purges every record attached to it:
// events, comment threads, the code snapshot, and cached analytics.
// Only the session creator may delete it.
func (s *SessionService) Delete(ctx context.Context, userID, sessionID uuid.UUID) error {
	session, err := s.authorize(ctx, userID, sessionID)
	if err != nil {
		return err
	}
	if session.CreatedBy != userID {
		return fmt.Errorf("%w: only the session creator can delete it", domain.ErrPermissionDenied)
	}

	if err := s.eventRepo.DeleteBySession(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to purge events: %w", err)
	}
	if err := s.threadRepo.DeleteBySession(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to purge comment threads: %w", err)
	}
	if err := s.snapshotRepo.DeleteBySession(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to purge snapshot: %w", err)
	}
	if err := s.analyticsCache.Invalidate(ctx, sessionID); err != nil {
		log.Warn().Err(err).Str("session_id", sessionID.String()).Msg("Failed to invalidate analytics cache")
	}

	if err := s.sessionRepo.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// Replay returns the session's event log as replay frames with timestamps
// relative to the session start.
func (s *SessionService) Replay(ctx context.Context, userID, sessionID uuid.UUID) ([]domain.ReplayEvent, error) {
	session, err := s.authorize(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}

	events, err := s.eventRepo.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	return domain.BuildReplay(events, session.StartedAt), nil
}

// Analytics computes per-contributor activity for an ENDED session.
// Results are cached since an ended session's event log is immutable.
func (s *SessionService) Analytics(ctx context.Context, userID, sessionID uuid.UUID) (*domain.SessionAnalytics, error) {
	session, err := s.authorize(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status != domain.SessionEnded {
		return nil, domain.ErrSessionActive
	}

	if cached, err := s.analyticsCache.Get(ctx, sessionID); err == nil && cached != nil {
		return cached, nil
	}

	events, err := s.eventRepo.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	analytics := domain.ComputeAnalytics(session, events)

	if err := s.analyticsCache.Set(ctx, sessionID, analytics); err != nil {
		log.Warn().Err(err).Str("session_id", sessionID.String()).Msg("Failed to cache analytics")
	}

	return analytics, nil
}

// GetSession looks up a session by ID for the realtime broker
func (s *SessionService) GetSession(ctx context.Context, sessionID uuid.UUID) (*domain.Session, error) {
	session, err := s.sessionRepo.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if session == nil {
		return nil, domain.ErrNotFound
	}
	return session, nil
}

// IsWorkspaceMember reports workspace membership for the realtime broker
func (s *SessionService) IsWorkspaceMember(ctx context.Context, workspaceID, userID uuid.UUID) (bool, error) {
	return s.workspaceRepo.IsMember(ctx, workspaceID, userID)
}

// authorize loads a session and verifies the user belongs to its workspace
func (s *SessionService) authorize(ctx context.Context, userID, sessionID uuid.UUID) (*domain.Session, error) {
	session, err := s.sessionRepo.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if session == nil {
		return nil, fmt.Errorf("session: %w", domain.ErrNotFound)
	}

	isMember, err := s.workspaceRepo.IsMember(ctx, session.WorkspaceID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to check membership: %w", err)
	}
	if !isMember {
		return nil, domain.ErrAccessDenied
	}

	return session, nil
}
