package domain

import "time"

// Age thresholds for the review-health classifications.
const (
	pendingReviewAfter = 24 * time.Hour
	stuckAfter         = 48 * time.Hour
	staleAfter         = 7 * 24 * time.Hour
)

// Facts is the fixed set of classification outcomes for one pull request.
// The categories are independent: a PR can be both ChangesRequested and
// NotApproved at the same time.
type Facts struct {
	ChangesRequested bool
	NotApproved      bool
	Hotfix           bool
	PendingReview24h bool
	Stuck            bool
	Stale            bool
	PendingRelease   bool
}

// Classify computes the classification facts for one pull request from its
// reviews. It is a pure function of its inputs.
//
// Review state reflects each reviewer's current position: only the latest
// review per reviewer is considered, so an early "changes requested" cannot
// outvote the same reviewer's later approval.
func Classify(pr PullRequest, reviews []Review, now time.Time) Facts {
	latest := latestByReviewer(reviews)

	var changesRequested bool
	var approved bool
	for _, review := range latest {
		switch review.State {
		case ReviewChangesRequested:
			changesRequested = true
		case ReviewApproved:
			approved = true
		}
	}

	open := pr.State == StateOpen
	age := now.Sub(pr.CreatedAt)

	return Facts{
		ChangesRequested: changesRequested,
		NotApproved:      !approved,
		Hotfix:           pr.HasLabel("hotfix", "critical"),
		PendingReview24h: open && len(reviews) == 0 && age > pendingReviewAfter,
		Stuck:            open && age > stuckAfter,
		Stale:            open && age > staleAfter,
		PendingRelease:   pr.HasLabel("pending-release"),
	}
}

// latestByReviewer reduces a submission-ordered review list to each
// reviewer's last verdict.
func latestByReviewer(reviews []Review) map[string]Review {
	latest := make(map[string]Review, len(reviews))
	for _, review := range reviews {
		latest[review.Reviewer] = review
	}
	return latest
}
