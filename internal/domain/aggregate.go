package domain

import "time"

// MemberStat holds per-contributor counters scoped to a single repository.
// A member active in two repositories appears as two rows, one per repository.
// Counters are only ever incremented within a run.
type MemberStat struct {
	Repo             string
	Login            string
	Raised           int
	Merged           int
	ChangesRequested int
	NotApproved      int
	ReviewsDone      int
}

// Aggregate is the additive result of processing zero or more repositories.
// The zero value is the identity element, and Merge is associative and
// commutative over totals, so aggregates can be combined in any order,
// including from parallel workers.
type Aggregate struct {
	Raised           int
	Merged           int
	ChangesRequested int
	NotApproved      int
	Hotfix           int
	PendingReview24h int
	Stuck            int
	Stale            int
	PendingRelease   int

	// Members keeps one row per (repository, login), in encounter order.
	Members []MemberStat

	// OldestOpen is the earliest creation instant among open PRs, nil when
	// no open PRs were seen.
	OldestOpen *time.Time

	// CycleTimes pools created-to-merged durations of PRs merged in-window,
	// averaged only after the cross-repository reduction.
	CycleTimes []time.Duration

	// StaleOwners and HotfixOwners collect author logins of stale and
	// hotfix-labelled PRs; duplicates are resolved at snapshot time.
	StaleOwners  []string
	HotfixOwners []string

	// SkippedRepos names repositories whose retrieval failed. They
	// contribute nothing to any other field.
	SkippedRepos []string
}

// SkippedAggregate returns the aggregate for a repository that failed
// retrieval: the identity element plus a skip marker.
func SkippedAggregate(repo Repository) Aggregate {
	return Aggregate{SkippedRepos: []string{repo.FullName()}}
}

// Merge combines two aggregates into one. Totals are summed, member rows are
// concatenated (never merged across repositories), the oldest-open candidate
// is the minimum, and pooled slices are appended.
func (a Aggregate) Merge(b Aggregate) Aggregate {
	merged := Aggregate{
		Raised:           a.Raised + b.Raised,
		Merged:           a.Merged + b.Merged,
		ChangesRequested: a.ChangesRequested + b.ChangesRequested,
		NotApproved:      a.NotApproved + b.NotApproved,
		Hotfix:           a.Hotfix + b.Hotfix,
		PendingReview24h: a.PendingReview24h + b.PendingReview24h,
		Stuck:            a.Stuck + b.Stuck,
		Stale:            a.Stale + b.Stale,
		PendingRelease:   a.PendingRelease + b.PendingRelease,
		Members:          concat(a.Members, b.Members),
		CycleTimes:       concat(a.CycleTimes, b.CycleTimes),
		StaleOwners:      concat(a.StaleOwners, b.StaleOwners),
		HotfixOwners:     concat(a.HotfixOwners, b.HotfixOwners),
		SkippedRepos:     concat(a.SkippedRepos, b.SkippedRepos),
	}
	merged.OldestOpen = minTime(a.OldestOpen, b.OldestOpen)
	return merged
}

// Reduce folds a sequence of per-repository aggregates into one.
func Reduce(aggregates []Aggregate) Aggregate {
	var total Aggregate
	for _, agg := range aggregates {
		total = total.Merge(agg)
	}
	return total
}

// concat appends without aliasing either input's backing array.
func concat[T any](a, b []T) []T {
	if len(a) == 0 && len(b) == 0 {
		return nil
	}
	out := make([]T, 0, len(a)+len(b))
	out = append(out, a...)
	return append(out, b...)
}

func minTime(a, b *time.Time) *time.Time {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	case b.Before(*a):
		return b
	default:
		return a
	}
}
