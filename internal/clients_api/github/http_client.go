package github

// Client for the GitHub REST API releases endpoint, built on go-github.
// Every request goes through transport: a rate limiter, a circuit breaker and
// the shared retry module, with each attempt written to the file log.

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/haya14busa/github-release-stats/internal/infra/retry"
	"github.com/haya14busa/github-release-stats/internal/stats"

	gh "github.com/google/go-github/v66/github"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL = "https://api.github.com"
	userAgent      = "github-release-stats"
)

type Options struct {
	BaseURL         string
	Token           string
	Timeout         time.Duration
	MaxRetries      int
	RetryBaseDelay  time.Duration
	PerPage         int
	MaxResponseSize int64
}

type Client struct {
	api     *gh.Client
	perPage int
}

func NewClient(opts Options) (*Client, error) {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.PerPage <= 0 {
		opts.PerPage = 100
	}
	if opts.MaxResponseSize <= 0 {
		opts.MaxResponseSize = 10 * 1024 * 1024
	}
	if opts.RetryBaseDelay <= 0 {
		opts.RetryBaseDelay = 300 * time.Millisecond
	}

	baseURL, err := url.Parse(strings.TrimSuffix(opts.BaseURL, "/") + "/")
	if err != nil {
		return nil, fmt.Errorf("invalid GitHub base URL %q: %w", opts.BaseURL, err)
	}

	httpClient := &http.Client{
		Timeout: opts.Timeout,
		Transport: &transport{
			base: http.DefaultTransport,
			// 10 requests per second, burst up to 5; GitHub's secondary limits
			// punish bursts harder than steady traffic
			rateLimiter: rate.NewLimiter(rate.Limit(10), 5),
			circuitBreaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
				Name:        "GitHubAPI",
				MaxRequests: 1,
				Interval:    60 * time.Second,
				Timeout:     30 * time.Second,
				ReadyToTrip: func(counts gobreaker.Counts) bool {
					return counts.ConsecutiveFailures > 5
				},
			}),
			retry: retry.Options{
				MaxRetries: opts.MaxRetries,
				BaseDelay:  opts.RetryBaseDelay,
				MaxDelay:   10 * time.Second,
			},
			maxResponseSize: opts.MaxResponseSize,
		},
	}

	api := gh.NewClient(httpClient)
	if opts.Token != "" {
		api = api.WithAuthToken(opts.Token)
	}
	api.BaseURL = baseURL
	api.UserAgent = userAgent

	return &Client{api: api, perPage: opts.PerPage}, nil
}

// ListAllReleases follows the pagination of /repos/{owner}/{repo}/releases.
func (c *Client) ListAllReleases(ctx context.Context, owner, repo string) ([]stats.ReleaseInfo, error) {
	var all []stats.ReleaseInfo
	opts := &gh.ListOptions{PerPage: c.perPage, Page: 1}
	for {
		releases, resp, err := c.api.Repositories.ListReleases(ctx, owner, repo, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to get releases of %s/%s (page %d): %w", owner, repo, opts.Page, err)
		}
		for _, r := range releases {
			all = append(all, releaseInfo(r))
		}
		if resp.NextPage == 0 {
			return all, nil
		}
		opts.Page = resp.NextPage
	}
}

func releaseInfo(r *gh.RepositoryRelease) stats.ReleaseInfo {
	info := stats.ReleaseInfo{ID: r.GetID(), TagName: r.GetTagName()}
	for _, a := range r.Assets {
		info.Assets = append(info.Assets, stats.AssetInfo{
			ID:            a.GetID(),
			Name:          a.GetName(),
			DownloadCount: int64(a.GetDownloadCount()),
		})
	}
	return info
}
