package github

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	gh "github.com/google/go-github/v80/github"
	"golang.org/x/oauth2"

	"github.com/custodia-labs/rulehub/internal/core/domain"
)

// DefaultTimeout is the HTTP request timeout.
const DefaultTimeout = 30 * time.Second

// Client wraps the go-github client with rate limiting and maps API
// errors onto domain errors.
type Client struct {
	gh      *gh.Client
	limiter *RateLimiter
}

// NewClient creates a client for the GitHub API. An empty token makes
// unauthenticated requests. A non-empty baseURL targets GitHub Enterprise.
func NewClient(token, baseURL string, limiter *RateLimiter) (*Client, error) {
	httpClient := &http.Client{Timeout: DefaultTimeout}
	if token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		httpClient = oauth2.NewClient(context.Background(), ts)
		httpClient.Timeout = DefaultTimeout
	}

	client := gh.NewClient(httpClient)
	if baseURL != "" {
		var err error
		if client, err = client.WithEnterpriseURLs(baseURL, baseURL); err != nil {
			return nil, fmt.Errorf("%w: base_url: %w", domain.ErrInvalidSettings, err)
		}
	}

	if limiter == nil {
		limiter = NewRateLimiter(ProactiveRate)
	}
	return &Client{gh: client, limiter: limiter}, nil
}

// ListDir returns the entries directly under dir at ref.
func (c *Client) ListDir(ctx context.Context, repo Repo, dir, ref string) ([]*gh.RepositoryContent, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	file, entries, resp, err := c.gh.Repositories.GetContents(ctx, repo.Owner, repo.Name, dir,
		&gh.RepositoryContentGetOptions{Ref: ref})
	c.limiter.Update(resp)
	if err != nil {
		return nil, wrapError(err, "list "+displayPath(dir))
	}
	if file != nil {
		return nil, fmt.Errorf("%w: %s is not a directory", domain.ErrSourceUnavailable, displayPath(dir))
	}
	return entries, nil
}

// GetFile returns the decoded content of the file at path.
func (c *Client) GetFile(ctx context.Context, repo Repo, path, ref string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	opts := &gh.RepositoryContentGetOptions{Ref: ref}
	file, _, resp, err := c.gh.Repositories.GetContents(ctx, repo.Owner, repo.Name, path, opts)
	c.limiter.Update(resp)
	if err != nil {
		return nil, wrapError(err, "get "+path)
	}
	if file == nil {
		return nil, fmt.Errorf("%w: %s is a directory", domain.ErrNotFound, path)
	}

	// Files over 1MB come back without inline content.
	if file.GetEncoding() == "none" {
		return c.download(ctx, repo, path, opts)
	}

	text, err := file.GetContent()
	if err != nil {
		return nil, fmt.Errorf("%w: decode %s: %w", domain.ErrMalformedDocument, path, err)
	}
	return []byte(text), nil
}

func (c *Client) download(ctx context.Context, repo Repo, path string, opts *gh.RepositoryContentGetOptions) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	rc, resp, err := c.gh.Repositories.DownloadContents(ctx, repo.Owner, repo.Name, path, opts)
	c.limiter.Update(resp)
	if err != nil {
		return nil, wrapError(err, "download "+path)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", path, err)
	}
	return data, nil
}

// wrapError maps go-github errors onto domain errors.
func wrapError(err error, op string) error {
	var rateErr *gh.RateLimitError
	if errors.As(err, &rateErr) {
		return fmt.Errorf("%w: %s: rate limited until %s",
			domain.ErrSourceUnavailable, op, rateErr.Rate.Reset.Format(time.RFC3339))
	}

	var respErr *gh.ErrorResponse
	if errors.As(err, &respErr) && respErr.Response != nil && respErr.Response.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s", domain.ErrNotFound, op)
	}

	return fmt.Errorf("%s: %w", op, err)
}

func displayPath(dir string) string {
	if dir == "" {
		return "/"
	}
	return dir
}
