package domain

import "time"

// Window is a half-open reporting window: everything from Start (inclusive)
// up to "now" counts. Boundaries are anchored to the UTC calendar day at the
// instant the run starts and stay fixed for the whole run.
type Window struct {
	Start time.Time
}

// NewDayWindow returns the window covering the UTC calendar day containing now.
func NewDayWindow(now time.Time) Window {
	utc := now.UTC()
	return Window{Start: time.Date(utc.Year(), utc.Month(), utc.Day(), 0, 0, 0, 0, time.UTC)}
}

// Contains reports whether t falls inside the window. The lower bound is
// inclusive: a timestamp exactly at Start counts.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start)
}

// RaisedIn reports whether the pull request was created inside the window.
func (w Window) RaisedIn(pr PullRequest) bool {
	return w.Contains(pr.CreatedAt)
}

// MergedIn reports whether the pull request was merged inside the window.
// Unmerged pull requests never match.
func (w Window) MergedIn(pr PullRequest) bool {
	return pr.MergedAt != nil && w.Contains(*pr.MergedAt)
}
