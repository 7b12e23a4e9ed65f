// Package githubapi talks to the GitHub REST API on behalf of the review service.
package githubapi

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/go-github/v71/github"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"

	"github.com/paveldruzyak/commodus/internal/domain/approval"
	"github.com/paveldruzyak/commodus/internal/domain/scm"
)

// Options configures the client.
type Options struct {
	Token   string
	BaseURL string
	Timeout time.Duration
}

// Client implements scm.PullRequestReader and scm.StatusReporter.
type Client struct {
	gh     *github.Client
	logger zerolog.Logger
}

var (
	_ scm.PullRequestReader = (*Client)(nil)
	_ scm.StatusReporter    = (*Client)(nil)
)

// NewClient builds a GitHub client authenticated with a static token.
func NewClient(opts Options, logger zerolog.Logger) (*Client, error) {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	base := &http.Client{Timeout: timeout}
	httpClient := base
	if opts.Token != "" {
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, base)
		httpClient = oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: opts.Token}))
	}

	gh := github.NewClient(httpClient)
	if opts.BaseURL != "" {
		var err error
		gh, err = gh.WithEnterpriseURLs(opts.BaseURL, opts.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("github base url: %w", err)
		}
	}
	return &Client{
		gh:     gh,
		logger: logger.With().Str("component", "github").Logger(),
	}, nil
}

// GetPullRequest fetches the pull request to learn its current head commit.
func (c *Client) GetPullRequest(ctx context.Context, repo string, number int) (*scm.PullRequest, error) {
	owner, name, err := splitRepo(repo)
	if err != nil {
		return nil, err
	}
	pr, _, err := c.gh.PullRequests.Get(ctx, owner, name, number)
	if err != nil {
		return nil, fmt.Errorf("%w: get pull request %s#%d: %v", scm.ErrPlatformAPI, repo, number, err)
	}
	return &scm.PullRequest{
		Repo:    repo,
		Number:  pr.GetNumber(),
		HeadSHA: pr.GetHead().GetSHA(),
		Creator: pr.GetUser().GetLogin(),
		State:   pr.GetState(),
	}, nil
}

// SetStatus posts a commit status.
func (c *Client) SetStatus(ctx context.Context, repo, sha string, state approval.Status, description, statusContext string) error {
	owner, name, err := splitRepo(repo)
	if err != nil {
		return err
	}
	status := &github.RepoStatus{
		State:       github.Ptr(string(state)),
		Description: github.Ptr(description),
		Context:     github.Ptr(statusContext),
	}
	if _, _, err := c.gh.Repositories.CreateStatus(ctx, owner, name, sha, status); err != nil {
		return fmt.Errorf("%w: set status on %s@%s: %v", scm.ErrPlatformAPI, repo, sha, err)
	}
	c.logger.Debug().
		Str("repo", repo).
		Str("commit", sha).
		Str("state", string(state)).
		Str("description", description).
		Msg("status reported")
	return nil
}

func splitRepo(repo string) (string, string, error) {
	parts := strings.Split(repo, "/")
	if len(parts) != 2 || strings.TrimSpace(parts[0]) == "" || strings.TrimSpace(parts[1]) == "" {
		return "", "", fmt.Errorf("%w: invalid repository slug %q, expected owner/repo", scm.ErrPlatformAPI, repo)
	}
	return parts[0], parts[1], nil
}
