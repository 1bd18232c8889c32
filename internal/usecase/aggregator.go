// Package usecase contains the business logic of the application.
package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/naka-gawa/pr-snapshot/internal/domain"
	"github.com/naka-gawa/pr-snapshot/internal/gateway"
)

// ErrNoRepositories is returned when the gateway reports an empty scope.
// The run must not silently produce an all-zero snapshot in that case.
var ErrNoRepositories = errors.New("no repositories found for authenticated user")

// Aggregator is the use case for producing one daily snapshot. It fans out
// over repositories with a bounded worker pool, aggregates each repository
// independently, and merges the results with a pure reduction.
type Aggregator struct {
	fetcher       gateway.Fetcher
	logger        *log.Logger
	repoWorkers   int
	reviewWorkers int
}

// NewAggregator creates a new Aggregator instance. Worker counts below one
// fall back to sequential processing.
func NewAggregator(fetcher gateway.Fetcher, logger *log.Logger, repoWorkers, reviewWorkers int) *Aggregator {
	if repoWorkers < 1 {
		repoWorkers = 1
	}
	if reviewWorkers < 1 {
		reviewWorkers = 1
	}
	return &Aggregator{
		fetcher:       fetcher,
		logger:        logger,
		repoWorkers:   repoWorkers,
		reviewWorkers: reviewWorkers,
	}
}

// Run produces the snapshot for the UTC calendar day containing now.
//
// now is captured once by the caller and threaded through every window and
// classification decision, so the day boundary cannot shift mid-run. A
// repository whose retrieval fails is skipped and contributes zero to every
// total; the run fails only when the repository listing itself fails or
// comes back empty.
func (a *Aggregator) Run(ctx context.Context, now time.Time) (domain.Snapshot, error) {
	a.logger.Println("Usecase: Starting snapshot aggregation...")

	repos, err := a.fetcher.ListRepositories(ctx)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("failed to list repositories: %w", err)
	}
	if len(repos) == 0 {
		return domain.Snapshot{}, ErrNoRepositories
	}

	window := domain.NewDayWindow(now)

	aggregates := make([]domain.Aggregate, len(repos))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(a.repoWorkers)
	for i, repo := range repos {
		i, repo := i, repo
		eg.Go(func() error {
			agg, err := a.aggregateRepo(egCtx, repo, window, now)
			if err != nil {
				// A cancelled run abandons in-flight work instead of
				// recording half-processed repositories as skipped.
				if egCtx.Err() != nil {
					return egCtx.Err()
				}
				a.logger.Printf("Skipping repository %s: %v\n", repo.FullName(), err)
				aggregates[i] = domain.SkippedAggregate(repo)
				return nil
			}
			aggregates[i] = agg
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return domain.Snapshot{}, err
	}

	total := domain.Reduce(aggregates)
	a.logger.Printf("Usecase: Aggregation complete (%d repositories, %d skipped).\n",
		len(repos), len(total.SkippedRepos))
	return domain.BuildSnapshot(total, now), nil
}

// aggregateRepo computes the aggregate for a single repository. Any
// retrieval error, including a failed review fetch, fails the whole
// repository so that it contributes exactly zero rather than a partial count.
func (a *Aggregator) aggregateRepo(ctx context.Context, repo domain.Repository, window domain.Window, now time.Time) (domain.Aggregate, error) {
	open, err := a.fetcher.ListPullRequests(ctx, repo, domain.StateOpen)
	if err != nil {
		return domain.Aggregate{}, err
	}
	closed, err := a.fetcher.ListPullRequests(ctx, repo, domain.StateClosed)
	if err != nil {
		return domain.Aggregate{}, err
	}

	// Raised-today spans open and closed PRs: a PR can be created and
	// closed on the same day. Merged-today only exists among closed PRs.
	var raisedToday, mergedToday []domain.PullRequest
	for _, pr := range open {
		if window.RaisedIn(pr) {
			raisedToday = append(raisedToday, pr)
		}
	}
	for _, pr := range closed {
		if window.RaisedIn(pr) {
			raisedToday = append(raisedToday, pr)
		}
		if window.MergedIn(pr) {
			mergedToday = append(mergedToday, pr)
		}
	}

	reviewsByPR, err := a.fetchReviews(ctx, repo, reviewTargets(open, raisedToday, mergedToday))
	if err != nil {
		return domain.Aggregate{}, err
	}

	var agg domain.Aggregate
	members := newMemberTable(repo.Name)

	for _, pr := range open {
		facts := domain.Classify(pr, reviewsByPR[pr.Number], now)
		if facts.ChangesRequested {
			agg.ChangesRequested++
			members.row(pr.Author).ChangesRequested++
		}
		if facts.NotApproved {
			agg.NotApproved++
			members.row(pr.Author).NotApproved++
		}
		if facts.Hotfix {
			agg.Hotfix++
			agg.HotfixOwners = append(agg.HotfixOwners, pr.Author)
		}
		if facts.PendingReview24h {
			agg.PendingReview24h++
		}
		if facts.Stuck {
			agg.Stuck++
		}
		if facts.Stale {
			agg.Stale++
			agg.StaleOwners = append(agg.StaleOwners, pr.Author)
		}
		if facts.PendingRelease {
			agg.PendingRelease++
		}
		if agg.OldestOpen == nil || pr.CreatedAt.Before(*agg.OldestOpen) {
			created := pr.CreatedAt
			agg.OldestOpen = &created
		}
	}

	for _, pr := range raisedToday {
		agg.Raised++
		members.row(pr.Author).Raised++
	}
	for _, pr := range mergedToday {
		agg.Merged++
		members.row(pr.Author).Merged++
		agg.CycleTimes = append(agg.CycleTimes, pr.MergedAt.Sub(pr.CreatedAt))
	}

	// Review credit is scoped to today's raised-or-merged PRs. A PR both
	// raised and merged today is visited once.
	for _, number := range reviewTargets(raisedToday, mergedToday) {
		for _, review := range reviewsByPR[number] {
			members.row(review.Reviewer).ReviewsDone++
		}
	}

	agg.Members = members.rows
	return agg, nil
}

// fetchReviews retrieves reviews for the given PR numbers through a bounded
// worker pool. Each worker writes to its own slot, so no locking is needed.
func (a *Aggregator) fetchReviews(ctx context.Context, repo domain.Repository, numbers []int) (map[int][]domain.Review, error) {
	results := make([][]domain.Review, len(numbers))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(a.reviewWorkers)
	for i, number := range numbers {
		i, number := i, number
		eg.Go(func() error {
			reviews, err := a.fetcher.ListReviews(egCtx, repo, number)
			if err != nil {
				return err
			}
			results[i] = reviews
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	byNumber := make(map[int][]domain.Review, len(numbers))
	for i, number := range numbers {
		byNumber[number] = results[i]
	}
	return byNumber, nil
}

// reviewTargets collects the distinct PR numbers across the given groups.
func reviewTargets(groups ...[]domain.PullRequest) []int {
	seen := make(map[int]struct{})
	var numbers []int
	for _, group := range groups {
		for _, pr := range group {
			if _, ok := seen[pr.Number]; ok {
				continue
			}
			seen[pr.Number] = struct{}{}
			numbers = append(numbers, pr.Number)
		}
	}
	return numbers
}

// memberTable accumulates per-member counters in first-encounter order, so
// tie-breaking over the resulting rows is deterministic.
type memberTable struct {
	repo  string
	index map[string]int
	rows  []domain.MemberStat
}

func newMemberTable(repo string) *memberTable {
	return &memberTable{repo: repo, index: make(map[string]int)}
}

func (t *memberTable) row(login string) *domain.MemberStat {
	if i, ok := t.index[login]; ok {
		return &t.rows[i]
	}
	t.rows = append(t.rows, domain.MemberStat{Repo: t.repo, Login: login})
	t.index[login] = len(t.rows) - 1
	return &t.rows[len(t.rows)-1]
}
