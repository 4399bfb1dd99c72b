package github

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	gh "github.com/google/go-github/v80/github"
	"golang.org/x/oauth2"
)

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 30 * time.Second

// Client wraps the go-github client with rate limiting and error mapping.
type Client struct {
	gh          *gh.Client
	rateLimiter *RateLimiter
}

// ClientOption configures a Client.
type ClientOption func(*Client) error

// WithBaseURL points the client at a GitHub Enterprise or test server.
func WithBaseURL(base string) ClientOption {
	return func(c *Client) error {
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		u, err := url.Parse(base)
		if err != nil {
			return fmt.Errorf("github: invalid base URL: %w", err)
		}
		c.gh.BaseURL = u
		return nil
	}
}

// WithRateLimiter replaces the default proactive rate limiter.
func WithRateLimiter(r *RateLimiter) ClientOption {
	return func(c *Client) error {
		c.rateLimiter = r
		return nil
	}
}

// NewClientWithToken creates a GitHub client with a static access token.
// Works for both PAT and OAuth access tokens. An empty token sends
// unauthenticated requests.
func NewClientWithToken(ctx context.Context, token string, opts ...ClientOption) (*Client, error) {
	var c *Client
	if token == "" {
		c = &Client{gh: gh.NewClient(nil)}
	} else {
		ts := oauth2.StaticTokenSource(
			&oauth2.Token{AccessToken: token},
		)
		tc := oauth2.NewClient(ctx, ts)
		tc.Timeout = DefaultTimeout
		c = &Client{gh: gh.NewClient(tc)}
	}
	c.rateLimiter = NewRateLimiter()

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// DefaultBranch returns the default branch of a repository.
func (c *Client) DefaultBranch(ctx context.Context, owner, repo string) (string, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait: %w", err)
	}

	repository, resp, err := c.gh.Repositories.Get(ctx, owner, repo)
	c.rateLimiter.Observe(resp)
	if err != nil {
		if IsNotFound(c.wrapError(err, "get repo")) {
			return "", fmt.Errorf("%w: %s/%s", ErrRepoNotFound, owner, repo)
		}
		return "", c.wrapError(err, "get repo")
	}
	return repository.GetDefaultBranch(), nil
}

// GetTree fetches the entire tree for a branch or commit recursively.
// This is efficient for getting all file paths in one API call.
func (c *Client) GetTree(ctx context.Context, owner, repo, sha string) (*gh.Tree, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	tree, resp, err := c.gh.Git.GetTree(ctx, owner, repo, sha, true) // recursive=true
	c.rateLimiter.Observe(resp)
	if err != nil {
		return nil, c.wrapError(err, "get tree")
	}
	return tree, nil
}

// GetBlobRaw fetches the raw bytes of a blob by its SHA.
func (c *Client) GetBlobRaw(ctx context.Context, owner, repo, sha string) ([]byte, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	data, resp, err := c.gh.Git.GetBlobRaw(ctx, owner, repo, sha)
	c.rateLimiter.Observe(resp)
	if err != nil {
		return nil, c.wrapError(err, "get blob")
	}
	return data, nil
}

// RateLimiter returns the rate limiter for external access.
func (c *Client) RateLimiter() *RateLimiter {
	return c.rateLimiter
}

// wrapError converts go-github errors to our error types.
func (c *Client) wrapError(err error, operation string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var rateLimitErr *gh.RateLimitError
	var abuseErr *gh.AbuseRateLimitError
	if errors.As(err, &rateLimitErr) || errors.As(err, &abuseErr) {
		q := c.rateLimiter.Quota()
		return &RateLimitError{ResetAt: q.Reset.Time, Remaining: q.Remaining, Limit: q.Limit}
	}

	var ghErr *gh.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil {
		apiErr := &APIError{StatusCode: ghErr.Response.StatusCode, Message: ghErr.Message}
		if ghErr.Response.Request != nil {
			apiErr.URL = ghErr.Response.Request.URL.String()
		}
		if apiErr.StatusCode == 429 {
			q := c.rateLimiter.Quota()
			return &RateLimitError{ResetAt: q.Reset.Time, Limit: q.Limit}
		}
		return apiErr
	}

	return fmt.Errorf("github: %s: %w", operation, err)
}
