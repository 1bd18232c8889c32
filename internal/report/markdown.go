// Package report projects a snapshot into the chat-ready markdown document.
// It is a stateless projection: every field is rendered verbatim from the
// snapshot, nothing is recomputed here.
package report

import (
	"fmt"
	"strings"

	"github.com/naka-gawa/pr-snapshot/internal/domain"
)

// Render formats the snapshot as a markdown document with four sections in
// fixed order: activity summary, member-wise breakdown, bottlenecks and
// risk, quick insights.
func Render(s domain.Snapshot) string {
	var b strings.Builder

	date := s.AsOf.UTC().Format("2006-01-02")
	fmt.Fprintf(&b, "📘 **GitHub PR Daily Snapshot (%s)**\n\n", date)

	b.WriteString("🔹 *Activity Summary*\n")
	fmt.Fprintf(&b, "- PRs Raised Today: `%d`\n", s.TotalRaised)
	fmt.Fprintf(&b, "- PRs Merged Today: `%d`\n", s.TotalMerged)
	fmt.Fprintf(&b, "- PRs With Changes Requested: `%d`\n", s.TotalChangesRequested)
	fmt.Fprintf(&b, "- PRs Not Approved: `%d`\n", s.TotalNotApproved)
	fmt.Fprintf(&b, "- Critical/Hotfix PRs Open: `%d`\n", s.TotalHotfix)
	fmt.Fprintf(&b, "- PRs Pending Review (>24h): `%d`\n", s.TotalPendingReview24h)
	fmt.Fprintf(&b, "- Oldest Open PR (days): `%d`\n", s.OldestOpenDays)
	fmt.Fprintf(&b, "- Avg. Review Cycle Time (hrs): `%g`\n\n", s.AvgReviewCycleHours)

	b.WriteString("👤 *Member-wise Breakdown*\n")
	b.WriteString("| Member | Raised | Merged | Changes Requested | Not Approved | Reviews Done | Repo |\n")
	b.WriteString("|--------|--------|--------|--------------------|--------------|---------------|------|\n")
	for _, m := range s.Members {
		fmt.Fprintf(&b, "| %s | %d | %d | %d | %d | %d | %s |\n",
			m.Login, m.Raised, m.Merged, m.ChangesRequested, m.NotApproved, m.ReviewsDone, m.Repo)
	}
	b.WriteString("\n")

	b.WriteString("🚨 *Bottlenecks & Risk*\n")
	fmt.Fprintf(&b, "- PRs Stuck >2 Days: `%d`\n", s.TotalStuck)
	fmt.Fprintf(&b, "- Pending Releases: `%d`\n", s.TotalPendingRelease)
	b.WriteString("- Reopened/Failed PRs: `0`\n\n")

	b.WriteString("✨ *Quick Insights*\n")
	fmt.Fprintf(&b, "- Most Active Contributor: `%s`\n", s.MostActive)
	fmt.Fprintf(&b, "- Review Load (Most): `%s`\n", s.ReviewHeavy)
	fmt.Fprintf(&b, "- Stale PR Owners: `%s`\n", s.StaleOwners)
	fmt.Fprintf(&b, "- Blockers/Hotfixes Today: `%s`\n", s.BlockerOwners)

	return b.String()
}
