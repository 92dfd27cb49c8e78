package github

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/haya14busa/github-release-stats/internal/stats"

	gh "github.com/google/go-github/v66/github"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, url string) *Client {
	t.Helper()
	c, err := NewClient(Options{
		BaseURL:        url,
		Token:          "test-token",
		MaxRetries:     2,
		RetryBaseDelay: time.Millisecond,
		PerPage:        2,
	})
	require.NoError(t, err)
	return c
}

func TestListAllReleasesFollowsPagination(t *testing.T) {
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/octo/tool/releases", r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("per_page"))
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		assert.Equal(t, userAgent, r.Header.Get("User-Agent"))

		switch r.URL.Query().Get("page") {
		case "1":
			w.Header().Set("Link", fmt.Sprintf(`<%s/repos/octo/tool/releases?per_page=2&page=2>; rel="next", <%s/repos/octo/tool/releases?per_page=2&page=2>; rel="last"`, srv.URL, srv.URL))
			fmt.Fprint(w, `[{"id":1,"tag_name":"v1.0.0","assets":[{"id":10,"name":"a.zip","download_count":5}]},{"id":2,"tag_name":"v1.1.0","assets":[]}]`)
		case "2":
			w.Header().Set("Link", fmt.Sprintf(`<%s/repos/octo/tool/releases?per_page=2&page=1>; rel="prev"`, srv.URL))
			fmt.Fprint(w, `[{"id":3,"tag_name":"v2.0.0","assets":[{"id":30,"name":"b.zip","download_count":7},{"id":31,"name":"c.zip","download_count":1}]}]`)
		default:
			t.Errorf("unexpected page %q", r.URL.Query().Get("page"))
		}
	}))
	defer srv.Close()

	releases, err := newTestClient(t, srv.URL).ListAllReleases(context.Background(), "octo", "tool")
	require.NoError(t, err)
	assert.Equal(t, []stats.ReleaseInfo{
		{ID: 1, TagName: "v1.0.0", Assets: []stats.AssetInfo{{ID: 10, Name: "a.zip", DownloadCount: 5}}},
		{ID: 2, TagName: "v1.1.0"},
		{ID: 3, TagName: "v2.0.0", Assets: []stats.AssetInfo{{ID: 30, Name: "b.zip", DownloadCount: 7}, {ID: 31, Name: "c.zip", DownloadCount: 1}}},
	}, releases)
}

func TestListAllReleasesRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, `[]`)
	}))
	defer srv.Close()

	releases, err := newTestClient(t, srv.URL).ListAllReleases(context.Background(), "octo", "tool")
	require.NoError(t, err)
	assert.Empty(t, releases)
	assert.Equal(t, int32(2), calls.Load())
}

func TestListAllReleasesNotFound(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"message":"Not Found"}`)
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv.URL).ListAllReleases(context.Background(), "octo", "missing")
	var ghErr *gh.ErrorResponse
	require.ErrorAs(t, err, &ghErr)
	assert.Equal(t, http.StatusNotFound, ghErr.Response.StatusCode)
	assert.Equal(t, "Not Found", ghErr.Message)
	assert.Contains(t, err.Error(), "octo/missing")
	assert.Equal(t, int32(1), calls.Load())
}

func TestListAllReleasesRateLimitResetTooFar(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("X-RateLimit-Limit", "60")
		w.Header().Set("X-RateLimit-Remaining", "0")
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(time.Hour).Unix(), 10))
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"message":"API rate limit exceeded"}`)
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv.URL).ListAllReleases(context.Background(), "octo", "tool")
	var rateErr *gh.RateLimitError
	require.ErrorAs(t, err, &rateErr)
	assert.Equal(t, int32(1), calls.Load())
}

func TestListAllReleasesWaitsOutSecondaryLimit(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusForbidden)
			fmt.Fprint(w, `{"message":"You have exceeded a secondary rate limit"}`)
			return
		}
		fmt.Fprint(w, `[{"id":1,"tag_name":"v1.0.0"}]`)
	}))
	defer srv.Close()

	releases, err := newTestClient(t, srv.URL).ListAllReleases(context.Background(), "octo", "tool")
	require.NoError(t, err)
	assert.Equal(t, []stats.ReleaseInfo{{ID: 1, TagName: "v1.0.0"}}, releases)
	assert.Equal(t, int32(2), calls.Load())
}

func TestListAllReleasesBadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"not":"a list"}`)
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv.URL).ListAllReleases(context.Background(), "octo", "tool")
	assert.ErrorContains(t, err, "cannot unmarshal")
}

func TestListAllReleasesCapsResponseSize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"id":1,"tag_name":"v1.0.0","assets":[]}]`)
	}))
	defer srv.Close()

	c, err := NewClient(Options{BaseURL: srv.URL, MaxResponseSize: 10})
	require.NoError(t, err)
	_, err = c.ListAllReleases(context.Background(), "octo", "tool")
	assert.Error(t, err)
}

func TestListAllReleasesCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[]`)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newTestClient(t, srv.URL).ListAllReleases(ctx, "octo", "tool")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewClientBaseURL(t *testing.T) {
	c, err := NewClient(Options{BaseURL: "https://ghe.example.com/api/v3"})
	require.NoError(t, err)
	assert.Equal(t, "https://ghe.example.com/api/v3/", c.api.BaseURL.String())

	c, err = NewClient(Options{})
	require.NoError(t, err)
	assert.Equal(t, DefaultBaseURL+"/", c.api.BaseURL.String())

	_, err = NewClient(Options{BaseURL: "://bad"})
	assert.Error(t, err)
}
