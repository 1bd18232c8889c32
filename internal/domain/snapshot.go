package domain

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/montanaflynn/stats"
)

// NoneSentinel is rendered in place of insight fields that have no data.
const NoneSentinel = "-"

// Snapshot is the aggregate root for one run: fixed as-of instant, global
// totals, per-member rows, and the derived insight fields. It is fully
// computed before rendering; the renderer never recomputes anything.
type Snapshot struct {
	AsOf time.Time

	TotalRaised           int
	TotalMerged           int
	TotalChangesRequested int
	TotalNotApproved      int
	TotalHotfix           int
	TotalPendingReview24h int
	TotalStuck            int
	TotalPendingRelease   int

	Members []MemberStat

	OldestOpenDays      int
	AvgReviewCycleHours float64

	MostActive    string
	ReviewHeavy   string
	StaleOwners   string
	BlockerOwners string

	SkippedRepos []string
}

// BuildSnapshot derives the final snapshot from a fully reduced aggregate.
// asOf is the single instant captured at run start.
func BuildSnapshot(total Aggregate, asOf time.Time) Snapshot {
	return Snapshot{
		AsOf:                  asOf,
		TotalRaised:           total.Raised,
		TotalMerged:           total.Merged,
		TotalChangesRequested: total.ChangesRequested,
		TotalNotApproved:      total.NotApproved,
		TotalHotfix:           total.Hotfix,
		TotalPendingReview24h: total.PendingReview24h,
		TotalStuck:            total.Stuck,
		TotalPendingRelease:   total.PendingRelease,
		Members:               total.Members,
		OldestOpenDays:        oldestOpenDays(total.OldestOpen, asOf),
		AvgReviewCycleHours:   avgCycleHours(total.CycleTimes),
		MostActive:            topMember(total.Members, func(m MemberStat) int { return m.Raised }),
		ReviewHeavy:           topMember(total.Members, func(m MemberStat) int { return m.ReviewsDone }),
		StaleOwners:           joinOwners(total.StaleOwners),
		BlockerOwners:         joinOwners(total.HotfixOwners),
		SkippedRepos:          total.SkippedRepos,
	}
}

// avgCycleHours returns the mean pooled review-cycle time in hours, rounded
// to two decimals. Zero merged PRs is not an error; the average is just 0.
func avgCycleHours(cycles []time.Duration) float64 {
	if len(cycles) == 0 {
		return 0
	}
	hours := make([]float64, len(cycles))
	for i, d := range cycles {
		hours[i] = d.Hours()
	}
	mean, err := stats.Mean(hours)
	if err != nil {
		return 0
	}
	return math.Round(mean*100) / 100
}

func oldestOpenDays(oldest *time.Time, asOf time.Time) int {
	if oldest == nil {
		return 0
	}
	return int(asOf.Sub(*oldest).Hours() / 24)
}

// topMember returns the login maximizing the given counter. Ties are broken
// by the first-encountered row in traversal order.
func topMember(members []MemberStat, counter func(MemberStat) int) string {
	top := NoneSentinel
	best := -1
	for _, m := range members {
		if v := counter(m); v > best {
			best = v
			top = m.Login
		}
	}
	return top
}

// joinOwners de-duplicates and sorts owner logins into a single string.
func joinOwners(owners []string) string {
	if len(owners) == 0 {
		return NoneSentinel
	}
	seen := make(map[string]struct{}, len(owners))
	unique := make([]string, 0, len(owners))
	for _, owner := range owners {
		if _, ok := seen[owner]; ok {
			continue
		}
		seen[owner] = struct{}{}
		unique = append(unique, owner)
	}
	sort.Strings(unique)
	return strings.Join(unique, ", ")
}
