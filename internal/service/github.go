package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Karthik-sherigar/CodeCollab-Live/internal/domain"
	"github.com/Karthik-sherigar/CodeCollab-Live/internal/github"
	"github.com/Karthik-sherigar/CodeCollab-Live/internal/security"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

// GitHubService connects user accounts to GitHub and moves session code
// in and out of repositories. Access tokens are stored encrypted; a
// fresh API client is built per call with the decrypted token.
type GitHubService struct {
	githubRepo domain.GitHubRepository
	encryptor  *security.Encryptor
	oauth      *oauth2.Config
	newClient  github.Factory
	exchange   func(ctx context.Context, code string) (string, error)
}

// NewGitHubService creates a new GitHub integration service
func NewGitHubService(githubRepo domain.GitHubRepository, encryptor *security.Encryptor, oauthConfig *oauth2.Config) *GitHubService {
	return &GitHubService{
		githubRepo: githubRepo,
		encryptor:  encryptor,
		oauth:      oauthConfig,
		newClient:  github.NewClient,
		exchange: func(ctx context.Context, code string) (string, error) {
			token, err := oauthConfig.Exchange(ctx, code)
			if err != nil {
				return "", fmt.Errorf("failed to exchange authorization code: %w", err)
			}
			return token.AccessToken, nil
		},
	}
}

// AuthURL builds the GitHub authorization URL. The user ID rides along
// as the OAuth state so the callback can attribute the connection.
func (s *GitHubService) AuthURL(userID uuid.UUID) string {
	return s.oauth.AuthCodeURL(userID.String())
}

// Connect exchanges the OAuth callback code for a token and stores the
// connection for the user carried in state
func (s *GitHubService) Connect(ctx context.Context, code, state string) error {
	userID, err := uuid.Parse(state)
	if err != nil {
		return fmt.Errorf("%w: invalid state", domain.ErrValidation)
	}

	accessToken, err := s.exchange(ctx, code)
	if err != nil {
		return err
	}

	account, err := s.newClient(accessToken).AuthenticatedUser(ctx)
	if err != nil {
		return err
	}

	encryptedToken, err := s.encryptor.EncryptString(accessToken)
	if err != nil {
		return fmt.Errorf("failed to encrypt access token: %w", err)
	}

	conn := &domain.GitHubConnection{
		UserID:         userID,
		GitHubID:       account.ID,
		Username:       account.Login,
		EncryptedToken: encryptedToken,
		ConnectedAt:    time.Now(),
	}
	if err := s.githubRepo.SaveConnection(ctx, conn); err != nil {
		return err
	}

	log.Info().
		Str("user_id", userID.String()).
		Str("github_username", account.Login).
		Msg("GitHub account connected")

	return nil
}

// Status returns the user's connection, or nil when GitHub is not connected
func (s *GitHubService) Status(ctx context.Context, userID uuid.UUID) (*domain.GitHubConnection, error) {
	return s.githubRepo.GetConnection(ctx, userID)
}

// Repos lists repositories visible to the user's connected account
func (s *GitHubService) Repos(ctx context.Context, userID uuid.UUID) ([]domain.GitHubRepo, error) {
	client, err := s.clientFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	return client.ListRepos(ctx)
}

// ImportFile fetches a single file from a repository branch
func (s *GitHubService) ImportFile(ctx context.Context, userID uuid.UUID, owner, repo, branch, path string) (*domain.GitHubFile, error) {
	client, err := s.clientFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	return client.GetFile(ctx, owner, repo, branch, path)
}

// ExportFile commits content to a repository branch, updating the file
// in place when it already exists
func (s *GitHubService) ExportFile(ctx context.Context, userID uuid.UUID, owner, repo, branch, path, message, content string) (*domain.GitHubCommit, error) {
	client, err := s.clientFor(ctx, userID)
	if err != nil {
		return nil, err
	}

	// Updating an existing file requires its blob SHA; a missing file
	// just means this export creates it.
	sha := ""
	if existing, err := client.GetFile(ctx, owner, repo, branch, path); err == nil && existing != nil {
		sha = existing.SHA
	}

	return client.PutFile(ctx, owner, repo, branch, path, message, content, sha)
}

func (s *GitHubService) clientFor(ctx context.Context, userID uuid.UUID) (github.Client, error) {
	conn, err := s.githubRepo.GetConnection(ctx, userID)
	if err != nil {
		return nil, err
	}
	if conn == nil {
		return nil, domain.ErrNotConnected
	}

	accessToken, err := s.encryptor.DecryptString(conn.EncryptedToken)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt access token: %w", err)
	}

	return s.newClient(accessToken), nil
}
