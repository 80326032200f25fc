package githost

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/google/go-github/v57/github"
	"golang.org/x/oauth2"

	"github.com/codesmith-ai/codesmith/pkg/utils"
)

// FileChange is one file to commit. Operation is "create" or "update".
type FileChange struct {
	Path      string
	Content   string
	Operation string
}

// Committer is the version-control hosting capability consumed by the
// orchestration loop. The GitHub client implements it; tests use stubs.
type Committer interface {
	CommitFiles(ctx context.Context, owner, repo string, changes []FileChange, message string) error
	GetFileContent(ctx context.Context, owner, repo, path string) (string, error)
	EnablePages(ctx context.Context, owner, repo string) (string, error)
}

// Client wraps the GitHub REST API for commits, content reads, and Pages
// deployment.
type Client struct {
	gh     *github.Client
	logger *utils.Logger

	identityOnce sync.Once
	identity     string
	identityErr  error
}

// NewClient builds an authenticated client from a personal access token.
func NewClient(ctx context.Context, token string, logger *utils.Logger) (*Client, error) {
	if token == "" {
		return nil, fmt.Errorf("github token is required")
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	tc := oauth2.NewClient(ctx, ts)
	return &Client{gh: github.NewClient(tc), logger: logger}, nil
}

// AuthenticatedUser returns the login of the token's owner. The lookup runs
// once and the result is reused for the life of the client; a stale cache is
// accepted since tokens are not rotated mid-process.
func (c *Client) AuthenticatedUser(ctx context.Context) (string, error) {
	c.identityOnce.Do(func() {
		user, _, err := c.gh.Users.Get(ctx, "")
		if err != nil {
			c.identityErr = fmt.Errorf("failed to resolve authenticated user: %w", err)
			return
		}
		c.identity = user.GetLogin()
	})
	return c.identity, c.identityErr
}

// EnsureRepository creates the repository when it does not exist yet.
func (c *Client) EnsureRepository(ctx context.Context, owner, repo, description string) error {
	_, resp, err := c.gh.Repositories.Get(ctx, owner, repo)
	if err == nil {
		return nil
	}
	if resp == nil || resp.StatusCode != http.StatusNotFound {
		return fmt.Errorf("failed to check repository %s/%s: %w", owner, repo, err)
	}

	c.logger.LogProcessStep(fmt.Sprintf("Creating repository %s/%s", owner, repo))
	_, _, err = c.gh.Repositories.Create(ctx, "", &github.Repository{
		Name:        github.String(repo),
		Description: github.String(description),
		AutoInit:    github.Bool(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create repository %s/%s: %w", owner, repo, err)
	}
	return nil
}

// CommitFiles commits each change as a single-file commit carrying the given
// message. An "update" without a known blob SHA falls back to a lookup; a
// "create" that collides with an existing file is turned into an update so
// replanned attempts can overwrite earlier ones.
func (c *Client) CommitFiles(ctx context.Context, owner, repo string, changes []FileChange, message string) error {
	for _, change := range changes {
		opts := &github.RepositoryContentFileOptions{
			Message: github.String(message),
			Content: []byte(change.Content),
		}

		sha := c.contentSHA(ctx, owner, repo, change.Path)
		if change.Operation == "update" || sha != "" {
			if sha == "" {
				// Update requested for a file that does not exist remotely.
				if _, _, err := c.gh.Repositories.CreateFile(ctx, owner, repo, change.Path, opts); err != nil {
					return fmt.Errorf("failed to create %s in %s/%s: %w", change.Path, owner, repo, err)
				}
				continue
			}
			opts.SHA = github.String(sha)
			if _, _, err := c.gh.Repositories.UpdateFile(ctx, owner, repo, change.Path, opts); err != nil {
				return fmt.Errorf("failed to update %s in %s/%s: %w", change.Path, owner, repo, err)
			}
			continue
		}

		if _, _, err := c.gh.Repositories.CreateFile(ctx, owner, repo, change.Path, opts); err != nil {
			return fmt.Errorf("failed to create %s in %s/%s: %w", change.Path, owner, repo, err)
		}
	}
	return nil
}

func (c *Client) contentSHA(ctx context.Context, owner, repo, path string) string {
	fileContent, _, _, err := c.gh.Repositories.GetContents(ctx, owner, repo, path, &github.RepositoryContentGetOptions{})
	if err != nil || fileContent == nil {
		return ""
	}
	return fileContent.GetSHA()
}

// GetFileContent fetches the canonical committed content of a file.
func (c *Client) GetFileContent(ctx context.Context, owner, repo, path string) (string, error) {
	fileContent, _, _, err := c.gh.Repositories.GetContents(ctx, owner, repo, path, &github.RepositoryContentGetOptions{})
	if err != nil {
		return "", fmt.Errorf("failed to fetch %s from %s/%s: %w", path, owner, repo, err)
	}
	if fileContent == nil {
		return "", fmt.Errorf("%s in %s/%s is not a file", path, owner, repo)
	}
	content, err := fileContent.GetContent()
	if err != nil {
		return "", fmt.Errorf("failed to decode %s from %s/%s: %w", path, owner, repo, err)
	}
	return content, nil
}

// EnablePages turns on GitHub Pages for the repository's default branch and
// returns the public site URL. Enabling an already-enabled site is not an
// error.
func (c *Client) EnablePages(ctx context.Context, owner, repo string) (string, error) {
	_, resp, err := c.gh.Repositories.EnablePages(ctx, owner, repo, &github.Pages{
		Source: &github.PagesSource{
			Branch: github.String("main"),
			Path:   github.String("/"),
		},
	})
	if err != nil && (resp == nil || resp.StatusCode != http.StatusConflict) {
		return "", fmt.Errorf("failed to enable pages for %s/%s: %w", owner, repo, err)
	}

	pages, _, err := c.gh.Repositories.GetPagesInfo(ctx, owner, repo)
	if err == nil && pages.GetHTMLURL() != "" {
		return pages.GetHTMLURL(), nil
	}
	return fmt.Sprintf("https://%s.github.io/%s/", owner, repo), nil
}
