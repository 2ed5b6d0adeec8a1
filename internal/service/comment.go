package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Karthik-sherigar/CodeCollab-Live/internal/domain"
	"github.com/google/uuid"
)

// CommentService handles comment threads anchored to session code
type CommentService struct {
	threadRepo    domain.ThreadRepository
	sessionRepo   domain.SessionRepository
	workspaceRepo domain.WorkspaceRepository
	userRepo      domain.UserRepository
}

// NewCommentService creates a new comment service
func NewCommentService(
	threadRepo domain.ThreadRepository,
	sessionRepo domain.SessionRepository,
	workspaceRepo domain.WorkspaceRepository,
	userRepo domain.UserRepository,
) *CommentService {
	return &CommentService{
		threadRepo:    threadRepo,
		sessionRepo:   sessionRepo,
		workspaceRepo: workspaceRepo,
		userRepo:      userRepo,
	}
}

// ListBySession lists every comment thread on a session
func (s *CommentService) ListBySession(ctx context.Context, userID, sessionID uuid.UUID) ([]domain.CommentThread, error) {
	if _, err := s.authorize(ctx, userID, sessionID); err != nil {
		return nil, err
	}

	threads, err := s.threadRepo.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list threads: %w", err)
	}
	return threads, nil
}

// Create opens a new thread on a line range with its first comment
func (s *CommentService) Create(ctx context.Context, userID, sessionID uuid.UUID, input domain.ThreadCreate) (*domain.CommentThread, error) {
	if _, err := s.authorize(ctx, userID, sessionID); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("user: %w", domain.ErrNotFound)
	}

	endLine := input.EndLine
	if endLine < input.StartLine {
		endLine = input.StartLine
	}

	now := time.Now()
	thread := &domain.CommentThread{
		SessionID: sessionID.String(),
		StartLine: input.StartLine,
		EndLine:   endLine,
		CreatedBy: domain.ThreadCreator{
			UserID: userID.String(),
			Name:   user.Name,
		},
		Comments: []domain.Comment{
			{
				ID:         uuid.New().String(),
				Text:       input.Text,
				AuthorID:   userID.String(),
				AuthorName: user.Name,
				CreatedAt:  now,
			},
		},
		Status:    domain.ThreadOpen,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.threadRepo.Create(ctx, thread); err != nil {
		return nil, fmt.Errorf("failed to create thread: %w", err)
	}
	return thread, nil
}

// Reply appends a comment to an existing thread
func (s *CommentService) Reply(ctx context.Context, userID uuid.UUID, threadID string, input domain.ReplyCreate) (*domain.CommentThread, error) {
	thread, err := s.loadThread(ctx, userID, threadID)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("user: %w", domain.ErrNotFound)
	}

	comment := domain.Comment{
		ID:         uuid.New().String(),
		Text:       input.Text,
		AuthorID:   userID.String(),
		AuthorName: user.Name,
		CreatedAt:  time.Now(),
	}

	updated, err := s.threadRepo.AddReply(ctx, thread.ID, comment)
	if err != nil {
		return nil, fmt.Errorf("failed to add reply: %w", err)
	}
	return updated, nil
}

// Resolve marks a thread RESOLVED. Resolving an already-resolved thread
// is a no-op that returns the current state.
func (s *CommentService) Resolve(ctx context.Context, userID uuid.UUID, threadID string) (*domain.CommentThread, error) {
	return s.setStatus(ctx, userID, threadID, domain.ThreadResolved)
}

// Reopen marks a RESOLVED thread OPEN again
func (s *CommentService) Reopen(ctx context.Context, userID uuid.UUID, threadID string) (*domain.CommentThread, error) {
	return s.setStatus(ctx, userID, threadID, domain.ThreadOpen)
}

// Delete removes a thread. Only the thread creator or the session
// creator may delete it.
func (s *CommentService) Delete(ctx context.Context, userID uuid.UUID, threadID string) error {
	thread, err := s.loadThread(ctx, userID, threadID)
	if err != nil {
		return err
	}

	sessionID, err := uuid.Parse(thread.SessionID)
	if err != nil {
		return fmt.Errorf("invalid session ID on thread %s: %w", thread.ID, err)
	}
	session, err := s.sessionRepo.Get(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("failed to get session: %w", err)
	}

	isCreator := thread.CreatedBy.UserID == userID.String()
	isSessionOwner := session != nil && session.CreatedBy == userID
	if !isCreator && !isSessionOwner {
		return fmt.Errorf("%w: only the thread creator or session creator can delete it", domain.ErrPermissionDenied)
	}

	return s.threadRepo.Delete(ctx, thread.ID)
}

func (s *CommentService) setStatus(ctx context.Context, userID uuid.UUID, threadID string, status domain.ThreadStatus) (*domain.CommentThread, error) {
	thread, err := s.loadThread(ctx, userID, threadID)
	if err != nil {
		return nil, err
	}
	if thread.Status == status {
		return thread, nil
	}

	updated, err := s.threadRepo.SetStatus(ctx, thread.ID, status)
	if err != nil {
		return nil, fmt.Errorf("failed to set thread status: %w", err)
	}
	return updated, nil
}

// loadThread fetches a thread and verifies the user can access its session
func (s *CommentService) loadThread(ctx context.Context, userID uuid.UUID, threadID string) (*domain.CommentThread, error) {
	thread, err := s.threadRepo.Get(ctx, threadID)
	if err != nil {
		return nil, fmt.Errorf("failed to get thread: %w", err)
	}
	if thread == nil {
		return nil, fmt.Errorf("thread: %w", domain.ErrNotFound)
	}

	sessionID, err := uuid.Parse(thread.SessionID)
	if err != nil {
		return nil, fmt.Errorf("invalid session ID on thread %s: %w", thread.ID, err)
	}
	if _, err := s.authorize(ctx, userID, sessionID); err != nil {
		return nil, err
	}

	return thread, nil
}

func (s *CommentService) authorize(ctx context.Context, userID, sessionID uuid.UUID) (*domain.Session, error) {
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
