// Package domain contains the core data structures and domain logic for the application.
package domain

import (
	"strings"
	"time"
)

// Pull request states as used by the gateway and the aggregation logic.
const (
	StateOpen   = "open"
	StateClosed = "closed"
)

// Review states, normalized to lower case by the gateway.
const (
	ReviewApproved         = "approved"
	ReviewChangesRequested = "changes_requested"
	ReviewCommented        = "commented"
)

// Repository identifies a single repository within the run's scope.
type Repository struct {
	Owner string
	Name  string
}

// FullName returns the repository in "owner/name" form.
func (r Repository) FullName() string {
	return r.Owner + "/" + r.Name
}

// PullRequest is an immutable view of one pull request as fetched for a run.
type PullRequest struct {
	Repo      Repository
	Number    int
	Author    string
	State     string
	CreatedAt time.Time
	MergedAt  *time.Time
	Labels    []string
}

// HasLabel reports whether the pull request carries any of the given
// label names, compared case-insensitively.
func (pr PullRequest) HasLabel(names ...string) bool {
	for _, label := range pr.Labels {
		for _, name := range names {
			if strings.EqualFold(label, name) {
				return true
			}
		}
	}
	return false
}

// Review is one reviewer's verdict on a pull request at a point in time.
// Reviews are ordered by submission, as returned by the source.
type Review struct {
	Reviewer    string
	State       string
	SubmittedAt time.Time
}
