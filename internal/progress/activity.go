package progress

import (
	"sort"
	"strings"
	"time"

	"github.com/rivo/uniseg"
)

const (
	// DefaultFeedLimit is how many activities a performance view shows.
	DefaultFeedLimit = 15
	// DescriptionLimit is the display budget for free-text descriptions.
	DescriptionLimit = 50
)

// ActivityKind identifies the source of an activity entry.
type ActivityKind string

const (
	ActivityChecklist ActivityKind = "checklist"
	ActivityMilestone ActivityKind = "milestone"
	ActivityMentoring ActivityKind = "mentoring"
	ActivityComment   ActivityKind = "comment"
)

// Activity is one entry of a member's recent-activity feed.
type Activity struct {
	Kind         ActivityKind `json:"type"`
	Description  string       `json:"description"`
	At           time.Time    `json:"date"`
	ProjectTitle string       `json:"project_title,omitempty"`
}

// ActivityFeed merges the sources, orders them newest first and keeps at most
// limit entries. A non-positive limit keeps everything. Entries with equal
// timestamps keep their source order.
func ActivityFeed(limit int, sources ...[]Activity) []Activity {
	var feed []Activity
	for _, src := range sources {
		feed = append(feed, src...)
	}
	sort.SliceStable(feed, func(i, j int) bool {
		return feed[i].At.After(feed[j].At)
	})
	if limit > 0 && len(feed) > limit {
		feed = feed[:limit]
	}
	return feed
}

// Truncate shortens s to n user-perceived characters and appends "...".
// Strings within budget are returned unchanged.
func Truncate(s string, n int) string {
	if uniseg.GraphemeClusterCount(s) <= n {
		return s
	}
	var b strings.Builder
	g := uniseg.NewGraphemes(s)
	for i := 0; i < n && g.Next(); i++ {
		b.WriteString(g.Str())
	}
	b.WriteString("...")
	return b.String()
}
