// Package gateway provides read access to the GitHub API for one snapshot
// run: repositories, pull requests by state, and reviews by pull request.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/go-github/v62/github"
	"golang.org/x/oauth2"

	"github.com/gofri/go-github-ratelimit/github_ratelimit"

	"github.com/naka-gawa/pr-snapshot/internal/domain"
)

// Fetcher defines the behavior of a gateway for fetching snapshot inputs.
// All calls may fail transiently; callers treat failure at the repository
// level as "skip this repository".
type Fetcher interface {
	ListRepositories(ctx context.Context) ([]domain.Repository, error)
	ListPullRequests(ctx context.Context, repo domain.Repository, state string) ([]domain.PullRequest, error)
	// ListReviews returns an empty slice, not an error, when the target
	// pull request or repository does not exist or is inaccessible.
	ListReviews(ctx context.Context, repo domain.Repository, number int) ([]domain.Review, error)
}

// GitHubGateway is the concrete implementation of the Fetcher interface.
type GitHubGateway struct {
	client   *github.Client
	pageSize int
	logger   *log.Logger
}

// NewGitHubGateway is a constructor that creates a new instance of GitHubGateway.
// The underlying transport waits out secondary rate limits instead of failing.
func NewGitHubGateway(token string, pageSize int, logger *log.Logger) (*GitHubGateway, error) {
	rateLimitWaiter, err := github_ratelimit.NewRateLimitWaiter(nil, github_ratelimit.WithSingleSleepLimit(1*time.Hour, nil))
	if err != nil {
		return nil, fmt.Errorf("failed to create rate limit waiter: %w", err)
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	httpClient := &http.Client{
		Transport: &oauth2.Transport{
			Base:   rateLimitWaiter,
			Source: ts,
		},
	}
	return &GitHubGateway{
		client:   github.NewClient(httpClient),
		pageSize: pageSize,
		logger:   logger,
	}, nil
}

// ListRepositories fetches every repository visible to the authenticated user.
func (g *GitHubGateway) ListRepositories(ctx context.Context) ([]domain.Repository, error) {
	g.logger.Println("Fetching repositories for authenticated user...")
	opts := &github.RepositoryListByAuthenticatedUserOptions{
		ListOptions: github.ListOptions{PerPage: g.pageSize},
	}
	var repos []domain.Repository
	for {
		page, resp, err := g.client.Repositories.ListByAuthenticatedUser(ctx, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list repositories: %w", err)
		}
		for _, repo := range page {
			repos = append(repos, domain.Repository{
				Owner: repo.GetOwner().GetLogin(),
				Name:  repo.GetName(),
			})
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
		g.logger.Println("  Fetching next page of repositories...")
	}
	g.logger.Printf("Completed fetching repositories: %d found.\n", len(repos))
	return repos, nil
}

// ListPullRequests fetches all pull requests of the repository in the given
// state. An inaccessible repository yields an empty result, not an error.
func (g *GitHubGateway) ListPullRequests(ctx context.Context, repo domain.Repository, state string) ([]domain.PullRequest, error) {
	opts := &github.PullRequestListOptions{
		State:       state,
		ListOptions: github.ListOptions{PerPage: g.pageSize},
	}
	var prs []domain.PullRequest
	for {
		page, resp, err := g.client.PullRequests.List(ctx, repo.Owner, repo.Name, opts)
		if err != nil {
			if isNotFound(err) {
				return nil, nil
			}
			return nil, fmt.Errorf("failed to list %s pull requests for %s: %w", state, repo.FullName(), err)
		}
		for _, pr := range page {
			prs = append(prs, toPullRequest(repo, pr))
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return prs, nil
}

// ListReviews fetches all reviews of one pull request in submission order.
func (g *GitHubGateway) ListReviews(ctx context.Context, repo domain.Repository, number int) ([]domain.Review, error) {
	opts := &github.ListOptions{PerPage: g.pageSize}
	var reviews []domain.Review
	for {
		page, resp, err := g.client.PullRequests.ListReviews(ctx, repo.Owner, repo.Name, number, opts)
		if err != nil {
			if isNotFound(err) {
				return nil, nil
			}
			return nil, fmt.Errorf("failed to list reviews for %s#%d: %w", repo.FullName(), number, err)
		}
		for _, review := range page {
			reviews = append(reviews, domain.Review{
				Reviewer:    review.GetUser().GetLogin(),
				State:       strings.ToLower(review.GetState()),
				SubmittedAt: review.GetSubmittedAt().Time,
			})
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return reviews, nil
}

func toPullRequest(repo domain.Repository, pr *github.PullRequest) domain.PullRequest {
	labels := make([]string, 0, len(pr.Labels))
	for _, label := range pr.Labels {
		labels = append(labels, label.GetName())
	}
	var mergedAt *time.Time
	if pr.MergedAt != nil {
		t := pr.MergedAt.Time
		mergedAt = &t
	}
	return domain.PullRequest{
		Repo:      repo,
		Number:    pr.GetNumber(),
		Author:    pr.GetUser().GetLogin(),
		State:     pr.GetState(),
		CreatedAt: pr.GetCreatedAt().Time,
		MergedAt:  mergedAt,
		Labels:    labels,
	}
}

// isNotFound reports whether err is a GitHub 404. Archived or invisible
// repositories surface this way and are treated as having no data.
func isNotFound(err error) bool {
	var errResp *github.ErrorResponse
	return errors.As(err, &errResp) && errResp.Response != nil && errResp.Response.StatusCode == http.StatusNotFound
}
