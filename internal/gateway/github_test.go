package gateway

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/google/go-github/v62/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/naka-gawa/pr-snapshot/internal/domain"
)

// setupTestGateway creates a GitHubGateway that communicates with a mock HTTP server.
func setupTestGateway(t *testing.T, handler http.Handler) (*GitHubGateway, *httptest.Server) {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := github.NewClient(server.Client())
	baseURL, err := url.Parse(server.URL + "/")
	require.NoError(t, err)
	client.BaseURL = baseURL

	gateway := &GitHubGateway{
		client:   client,
		pageSize: 100,
		logger:   log.New(io.Discard, "", 0),
	}
	return gateway, server
}

func TestGitHubGateway_ListRepositories(t *testing.T) {
	t.Run("happy path - follows pagination until the last page", func(t *testing.T) {
		handler := func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/user/repos", r.URL.Path)
			if r.URL.Query().Get("page") == "2" {
				fmt.Fprint(w, `[{"name":"repo-b","owner":{"login":"org"}}]`)
				return
			}
			w.Header().Set("Link", fmt.Sprintf(`<%s/user/repos?page=2>; rel="next"`, "http://"+r.Host))
			fmt.Fprint(w, `[{"name":"repo-a","owner":{"login":"org"}}]`)
		}
		gateway, _ := setupTestGateway(t, http.HandlerFunc(handler))

		repos, err := gateway.ListRepositories(context.Background())
		require.NoError(t, err)
		assert.Equal(t, []domain.Repository{
			{Owner: "org", Name: "repo-a"},
			{Owner: "org", Name: "repo-b"},
		}, repos)
	})

	t.Run("error case - API failure is surfaced", func(t *testing.T) {
		handler := func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			fmt.Fprint(w, `{"message": "Internal Server Error"}`)
		}
		gateway, _ := setupTestGateway(t, http.HandlerFunc(handler))

		_, err := gateway.ListRepositories(context.Background())
		assert.ErrorContains(t, err, "failed to list repositories")
	})
}

func TestGitHubGateway_ListPullRequests(t *testing.T) {
	repo := domain.Repository{Owner: "org", Name: "repo-a"}

	t.Run("happy path - maps fields and timestamps", func(t *testing.T) {
		handler := func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/repos/org/repo-a/pulls", r.URL.Path)
			assert.Equal(t, "closed", r.URL.Query().Get("state"))
			fmt.Fprint(w, `[{
				"number": 7,
				"state": "closed",
				"user": {"login": "alice"},
				"created_at": "2024-01-10T09:00:00Z",
				"merged_at": "2024-01-10T11:30:00Z",
				"labels": [{"name": "hotfix"}, {"name": "backend"}]
			}]`)
		}
		gateway, _ := setupTestGateway(t, http.HandlerFunc(handler))

		prs, err := gateway.ListPullRequests(context.Background(), repo, domain.StateClosed)
		require.NoError(t, err)
		require.Len(t, prs, 1)

		pr := prs[0]
		assert.Equal(t, 7, pr.Number)
		assert.Equal(t, "alice", pr.Author)
		assert.Equal(t, domain.StateClosed, pr.State)
		assert.Equal(t, time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC), pr.CreatedAt)
		require.NotNil(t, pr.MergedAt)
		assert.Equal(t, time.Date(2024, 1, 10, 11, 30, 0, 0, time.UTC), *pr.MergedAt)
		assert.Equal(t, []string{"hotfix", "backend"}, pr.Labels)
		assert.True(t, pr.HasLabel("HOTFIX"))
	})

	t.Run("open PR has no merge timestamp", func(t *testing.T) {
		handler := func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `[{
				"number": 8,
				"state": "open",
				"user": {"login": "bob"},
				"created_at": "2024-01-09T09:00:00Z"
			}]`)
		}
		gateway, _ := setupTestGateway(t, http.HandlerFunc(handler))

		prs, err := gateway.ListPullRequests(context.Background(), repo, domain.StateOpen)
		require.NoError(t, err)
		require.Len(t, prs, 1)
		assert.Nil(t, prs[0].MergedAt)
	})

	t.Run("not found - archived or inaccessible repo yields empty, not error", func(t *testing.T) {
		handler := func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"message": "Not Found"}`)
		}
		gateway, _ := setupTestGateway(t, http.HandlerFunc(handler))

		prs, err := gateway.ListPullRequests(context.Background(), repo, domain.StateOpen)
		assert.NoError(t, err)
		assert.Empty(t, prs)
	})

	t.Run("transient error is surfaced for the caller to skip the repo", func(t *testing.T) {
		handler := func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			fmt.Fprint(w, `{"message": "Bad Gateway"}`)
		}
		gateway, _ := setupTestGateway(t, http.HandlerFunc(handler))

		_, err := gateway.ListPullRequests(context.Background(), repo, domain.StateOpen)
		assert.ErrorContains(t, err, "failed to list open pull requests for org/repo-a")
	})
}

func TestGitHubGateway_ListReviews(t *testing.T) {
	repo := domain.Repository{Owner: "org", Name: "repo-a"}

	t.Run("happy path - review states are normalized to lower case", func(t *testing.T) {
		handler := func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/repos/org/repo-a/pulls/7/reviews", r.URL.Path)
			fmt.Fprint(w, `[
				{"user": {"login": "bob"}, "state": "CHANGES_REQUESTED", "submitted_at": "2024-01-10T10:00:00Z"},
				{"user": {"login": "bob"}, "state": "APPROVED", "submitted_at": "2024-01-10T11:00:00Z"}
			]`)
		}
		gateway, _ := setupTestGateway(t, http.HandlerFunc(handler))

		reviews, err := gateway.ListReviews(context.Background(), repo, 7)
		require.NoError(t, err)
		assert.Equal(t, []domain.Review{
			{Reviewer: "bob", State: domain.ReviewChangesRequested, SubmittedAt: time.Date(2024, 1, 10, 10, 0, 0, 0, time.UTC)},
			{Reviewer: "bob", State: domain.ReviewApproved, SubmittedAt: time.Date(2024, 1, 10, 11, 0, 0, 0, time.UTC)},
		}, reviews)
	})

	t.Run("not found - missing PR yields empty, not error", func(t *testing.T) {
		handler := func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"message": "Not Found"}`)
		}
		gateway, _ := setupTestGateway(t, http.HandlerFunc(handler))

		reviews, err := gateway.ListReviews(context.Background(), repo, 404)
		assert.NoError(t, err)
		assert.Empty(t, reviews)
	})
}
