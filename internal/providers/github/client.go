package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-github/v73/github"
	"github.com/sandevgo/hubgram/internal/core"
	"github.com/sandevgo/hubgram/pkg/log"
	"github.com/sandevgo/hubgram/pkg/retry"
)

const defaultTimeout = 15 * time.Second

// Client talks to the GitHub REST API. It renders issue Markdown and
// resolves repositories for subscriptions.
type Client struct {
	api     *github.Client
	retrier *retry.Retrier
}

func NewClient(baseURL, token string, retryCfg *retry.Config) (*Client, error) {
	if retryCfg == nil {
		retryCfg = retry.NewDefaultConfig()
	}

	api := github.NewClient(&http.Client{Timeout: defaultTimeout})
	api.UserAgent = core.UserAgent
	if token != "" {
		api = api.WithAuthToken(token)
	}

	if baseURL != "" {
		u, err := url.Parse(baseURL)
		if err != nil {
			return nil, fmt.Errorf("invalid github api url: %w", err)
		}
		if !strings.HasSuffix(u.Path, "/") {
			u.Path += "/"
		}
		api.BaseURL = u
	}

	return &Client{
		api:     api,
		retrier: retry.NewRetrier(retryCfg),
	}, nil
}

// Render implements core.MarkdownRenderer using the GFM mode of the
// markdown API, so issue references and mentions resolve against the
// repository.
func (c *Client) Render(ctx context.Context, markdown, repoFullName string) (string, error) {
	var out string
	err := c.retrier.Do(ctx, func() error {
		html, resp, err := c.api.Markdown.Render(ctx, markdown, &github.MarkdownOptions{
			Mode:    "gfm",
			Context: repoFullName,
		})
		if err != nil {
			if isPermanent(resp) {
				return retry.Permanent(err)
			}
			return err
		}
		out = html
		return nil
	})
	if err != nil {
		return "", errors.Join(core.ErrRender, err)
	}

	log.FromCtx(ctx).Debug().Str("repo", repoFullName).Int("len", len(out)).Msg("rendered markdown")
	return out, nil
}

// Repository implements core.RepoResolver with the user's own token, so
// private repositories the user can see are resolvable.
func (c *Client) Repository(ctx context.Context, token, fullName string) (core.Repository, error) {
	owner, name, ok := strings.Cut(fullName, "/")
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return core.Repository{}, fmt.Errorf("%w: %q is not owner/name", core.ErrRepoNotFound, fullName)
	}

	api := c.api
	if token != "" {
		api = api.WithAuthToken(token)
	}

	repo, resp, err := api.Repositories.Get(ctx, owner, name)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return core.Repository{}, fmt.Errorf("%w: %s", core.ErrRepoNotFound, fullName)
		}
		return core.Repository{}, fmt.Errorf("failed to get repository %s: %w", fullName, err)
	}

	return core.Repository{ID: repo.GetID(), FullName: repo.GetFullName()}, nil
}

// Client errors other than rate limiting will not succeed on retry.
func isPermanent(resp *github.Response) bool {
	if resp == nil {
		return false
	}
	code := resp.StatusCode
	return code >= 400 && code < 500 && code != http.StatusTooManyRequests && code != http.StatusForbidden
}
