package github

import (
	"context"
	"fmt"
	"strconv"

	"github.com/Karthik-sherigar/CodeCollab-Live/internal/domain"
	gogithub "github.com/google/go-github/v63/github"
)

// Account identifies the GitHub account behind a token
type Account struct {
	ID    string
	Login string
}

// Client is the subset of the GitHub API the platform uses. One client
// is created per request with the caller's decrypted token.
type Client interface {
	AuthenticatedUser(ctx context.Context) (*Account, error)
	ListRepos(ctx context.Context) ([]domain.GitHubRepo, error)
	GetFile(ctx context.Context, owner, repo, branch, path string) (*domain.GitHubFile, error)
	PutFile(ctx context.Context, owner, repo, branch, path, message, content, sha string) (*domain.GitHubCommit, error)
}

// Factory builds a Client for an access token
type Factory func(token string) Client

type restClient struct {
	gh *gogithub.Client
}

// NewClient creates a REST client authenticated with the given token
func NewClient(token string) Client {
	return &restClient{gh: gogithub.NewClient(nil).WithAuthToken(token)}
}

func (c *restClient) AuthenticatedUser(ctx context.Context) (*Account, error) {
	user, _, err := c.gh.Users.Get(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("failed to get authenticated user: %w", err)
	}

	return &Account{
		ID:    strconv.FormatInt(user.GetID(), 10),
		Login: user.GetLogin(),
	}, nil
}

func (c *restClient) ListRepos(ctx context.Context) ([]domain.GitHubRepo, error) {
	opts := &gogithub.RepositoryListByAuthenticatedUserOptions{
		Sort:        "updated",
		ListOptions: gogithub.ListOptions{PerPage: 100},
	}

	repos, _, err := c.gh.Repositories.ListByAuthenticatedUser(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list repositories: %w", err)
	}

	out := make([]domain.GitHubRepo, 0, len(repos))
	for _, repo := range repos {
		out = append(out, domain.GitHubRepo{
			ID:            repo.GetID(),
			Name:          repo.GetName(),
			FullName:      repo.GetFullName(),
			Owner:         repo.GetOwner().GetLogin(),
			Private:       repo.GetPrivate(),
			DefaultBranch: repo.GetDefaultBranch(),
		})
	}

	return out, nil
}

func (c *restClient) GetFile(ctx context.Context, owner, repo, branch, path string) (*domain.GitHubFile, error) {
	opts := &gogithub.RepositoryContentGetOptions{Ref: branch}

	file, _, _, err := c.gh.Repositories.GetContents(ctx, owner, repo, path, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", path, err)
	}
	if file == nil {
		return nil, fmt.Errorf("%w: path is not a file", domain.ErrValidation)
	}

	content, err := file.GetContent()
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}

	return &domain.GitHubFile{Content: content, SHA: file.GetSHA()}, nil
}

func (c *restClient) PutFile(ctx context.Context, owner, repo, branch, path, message, content, sha string) (*domain.GitHubCommit, error) {
	opts := &gogithub.RepositoryContentFileOptions{
		Message: gogithub.String(message),
		Content: []byte(content),
		Branch:  gogithub.String(branch),
	}
	if sha != "" {
		opts.SHA = gogithub.String(sha)
	}

	var (
		resp *gogithub.RepositoryContentResponse
		err  error
	)
	if sha != "" {
		resp, _, err = c.gh.Repositories.UpdateFile(ctx, owner, repo, path, opts)
	} else {
		resp, _, err = c.gh.Repositories.CreateFile(ctx, owner, repo, path, opts)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", path, err)
	}

	return &domain.GitHubCommit{
		SHA: resp.Commit.GetSHA(),
		URL: resp.Commit.GetHTMLURL(),
	}, nil
}
