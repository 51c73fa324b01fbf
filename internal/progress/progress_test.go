package progress

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func datep(s string) *time.Time {
	t := date(s)
	return &t
}

func items(done, total int) []ChecklistItem {
	out := make([]ChecklistItem, total)
	for i := 0; i < done; i++ {
		out[i].Completed = true
	}
	return out
}

func TestMilestoneProgress_Empty(t *testing.T) {
	assert.Equal(t, 0, MilestoneProgress(nil))
	assert.Equal(t, 0, MilestoneProgress([]ChecklistItem{}))
}

func TestMilestoneProgress_Ratio(t *testing.T) {
	for n := 1; n <= 20; n++ {
		for k := 0; k <= n; k++ {
			want := int(math.Round(100 * float64(k) / float64(n)))
			assert.Equal(t, want, MilestoneProgress(items(k, n)), "k=%d n=%d", k, n)
		}
	}
}

func TestMilestoneProgress_HalfRoundsUp(t *testing.T) {
	// 1/8 = 12.5%
	assert.Equal(t, 13, MilestoneProgress(items(1, 8)))
}

func TestMilestoneProgress_OrderInvariant(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	list := items(5, 12)
	want := MilestoneProgress(list)
	for i := 0; i < 20; i++ {
		r.Shuffle(len(list), func(a, b int) { list[a], list[b] = list[b], list[a] })
		assert.Equal(t, want, MilestoneProgress(list))
	}
}

func TestMilestoneProgress_ToleratesMissingTimestamp(t *testing.T) {
	list := []ChecklistItem{{Completed: true}, {Completed: false}}
	assert.Equal(t, 50, MilestoneProgress(list))
}

func TestClassify(t *testing.T) {
	today := date("2024-03-10")

	tests := []struct {
		name string
		all  []Milestone
		id   string
		want Status
	}{
		{
			name: "complete overrides past end date",
			all: []Milestone{
				{ID: "a", OrderIndex: 1, EndDate: datep("2024-01-01"), Items: items(4, 4)},
			},
			id:   "a",
			want: StatusCompleted,
		},
		{
			name: "past due first incomplete is delayed not current",
			all: []Milestone{
				{ID: "a", OrderIndex: 1, EndDate: datep("2024-03-09"), Items: items(1, 4)},
				{ID: "b", OrderIndex: 2, Items: items(0, 4)},
			},
			id:   "a",
			want: StatusDelayed,
		},
		{
			name: "due today is not delayed",
			all: []Milestone{
				{ID: "a", OrderIndex: 1, EndDate: datep("2024-03-10"), Items: items(1, 4)},
			},
			id:   "a",
			want: StatusCurrent,
		},
		{
			name: "no end date never delayed",
			all: []Milestone{
				{ID: "a", OrderIndex: 1, Items: items(4, 4)},
				{ID: "b", OrderIndex: 2, Items: items(0, 4)},
			},
			id:   "b",
			want: StatusCurrent,
		},
		{
			name: "later incomplete is pending",
			all: []Milestone{
				{ID: "a", OrderIndex: 1, Items: items(2, 4)},
				{ID: "b", OrderIndex: 2, Items: items(0, 4)},
			},
			id:   "b",
			want: StatusPending,
		},
		{
			name: "order index decides current, not slice position",
			all: []Milestone{
				{ID: "late", OrderIndex: 5, Items: items(0, 4)},
				{ID: "early", OrderIndex: 2, Items: items(1, 4)},
			},
			id:   "early",
			want: StatusCurrent,
		},
		{
			name: "empty checklist is incomplete",
			all: []Milestone{
				{ID: "a", OrderIndex: 1},
			},
			id:   "a",
			want: StatusCurrent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var m Milestone
			for _, c := range tt.all {
				if c.ID == tt.id {
					m = c
				}
			}
			assert.Equal(t, tt.want, Classify(m, tt.all, today))
		})
	}
}

func TestClassifyAll_SingleCurrent(t *testing.T) {
	all := []Milestone{
		{ID: "a", OrderIndex: 1, Items: items(4, 4)},
		{ID: "b", OrderIndex: 2, Items: items(1, 4)},
		{ID: "c", OrderIndex: 2, Items: items(0, 4)},
		{ID: "d", OrderIndex: 3, Items: items(0, 4)},
	}

	got := ClassifyAll(all, date("2024-01-01"))
	require.Len(t, got, 4)
	assert.Equal(t, []Status{StatusCompleted, StatusCurrent, StatusPending, StatusPending}, got)
}

func TestClassify_WithoutIDsSingleCurrent(t *testing.T) {
	all := []Milestone{
		{OrderIndex: 1, Items: items(0, 2)},
		{OrderIndex: 2, Items: items(0, 2)},
		{OrderIndex: 3, Items: items(0, 2)},
	}
	today := date("2024-01-01")

	got := make([]Status, len(all))
	for i, m := range all {
		got[i] = Classify(m, all, today)
	}
	want := []Status{StatusCurrent, StatusPending, StatusPending}
	assert.Equal(t, want, got)
	assert.Equal(t, want, ClassifyAll(all, today))
}

func TestClassifyAll_AllComplete(t *testing.T) {
	all := []Milestone{
		{ID: "a", OrderIndex: 1, Items: items(2, 2)},
		{ID: "b", OrderIndex: 2, Items: items(3, 3)},
	}
	assert.Equal(t, []Status{StatusCompleted, StatusCompleted}, ClassifyAll(all, date("2030-01-01")))
}

func TestCompletionOffset(t *testing.T) {
	tests := []struct {
		name   string
		m      Milestone
		want   Offset
		wantOK bool
		text   string
	}{
		{
			name:   "early",
			m:      Milestone{Items: items(1, 1), EndDate: datep("2024-01-10"), CompletedAt: datep("2024-01-05")},
			want:   Offset{Days: 5},
			wantOK: true,
			text:   "early by 5 days",
		},
		{
			name:   "same day counts as early",
			m:      Milestone{Items: items(1, 1), EndDate: datep("2024-01-10"), CompletedAt: timep(date("2024-01-10").Add(23 * time.Hour))},
			want:   Offset{Days: 0},
			wantOK: true,
			text:   "early by 0 days",
		},
		{
			name:   "late",
			m:      Milestone{Items: items(1, 1), EndDate: datep("2024-01-10"), CompletedAt: datep("2024-01-13")},
			want:   Offset{Days: 3, Late: true},
			wantOK: true,
			text:   "late by 3 days",
		},
		{
			name: "incomplete",
			m:    Milestone{Items: items(0, 1), EndDate: datep("2024-01-10"), CompletedAt: datep("2024-01-13")},
		},
		{
			name: "missing end date",
			m:    Milestone{Items: items(1, 1), CompletedAt: datep("2024-01-13")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := CompletionOffset(tt.m)
			require.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
			if ok {
				assert.Equal(t, tt.text, got.String())
			}
		})
	}
}

func timep(t time.Time) *time.Time { return &t }

func TestTimelineStatus(t *testing.T) {
	today := date("2024-05-01")
	assert.Equal(t, TimelineCompleted, TimelineStatus(Milestone{Items: items(2, 2)}, today))
	assert.Equal(t, TimelineDelayed, TimelineStatus(Milestone{
		Items: items(1, 2), StartDate: datep("2024-04-01"), EndDate: datep("2024-04-30"),
	}, today))
	// Without a start date the timeline never flags delay.
	assert.Equal(t, TimelineInProgress, TimelineStatus(Milestone{
		Items: items(1, 2), EndDate: datep("2024-04-30"),
	}, today))
	assert.Equal(t, TimelineNotStarted, TimelineStatus(Milestone{Items: items(0, 2)}, today))
}

func TestOverallProgress(t *testing.T) {
	assert.Equal(t, 0.0, OverallProgress(nil))
	assert.Equal(t, 100.0, OverallProgress([]Weighted{{Progress: 100, Weight: 100}}))
	assert.Equal(t, 33.3, OverallProgress([]Weighted{{Progress: 33, Weight: 100}, {Progress: 100, Weight: 0.3}}))
}

func TestOverallProgress_NotNormalized(t *testing.T) {
	got := OverallProgress([]Weighted{{Progress: 100, Weight: 60}, {Progress: 100, Weight: 60}})
	assert.Equal(t, 120.0, got)
}

func TestProjectProgress_DefaultLifecycle(t *testing.T) {
	weights := []float64{15, 15, 15, 25, 20, 10}
	done := []int{4, 4, 4, 2, 0, 0}

	ms := make([]Milestone, len(weights))
	for i := range weights {
		ms[i] = Milestone{ID: string(rune('a' + i)), OrderIndex: i + 1, Weight: weights[i], Items: items(done[i], 4)}
	}

	assert.Equal(t, 57.5, ProjectProgress(ms))
}

func TestAverageProgress(t *testing.T) {
	assert.Equal(t, 0, AverageProgress(nil))
	assert.Equal(t, 50, AverageProgress([]float64{40, 60}))
	assert.Equal(t, 34, AverageProgress([]float64{33.3, 33.3, 35.9}))
}

func TestMergeByID(t *testing.T) {
	type project struct {
		ID    string
		Title string
	}
	id := func(p project) string { return p.ID }

	roles := []project{{ID: "p1", Title: "from roles"}, {ID: "p2", Title: "two"}}
	authors := []project{{ID: "p3", Title: "three"}, {ID: "p1", Title: "from authors"}}

	merged := MergeByID(id, roles, authors)
	require.Len(t, merged, 3)
	assert.Equal(t, project{ID: "p1", Title: "from roles"}, merged[0])
	assert.Equal(t, "p2", merged[1].ID)
	assert.Equal(t, "p3", merged[2].ID)

	assert.Empty(t, MergeByID(id))
}

func TestScheduleAdherence(t *testing.T) {
	tests := []struct {
		name    string
		entries []ScheduleEntry
		want    ScheduleStats
	}{
		{
			name: "empty",
			want: ScheduleStats{Rate: 100},
		},
		{
			name:    "on time",
			entries: []ScheduleEntry{{EndDate: datep("2024-01-10"), CompletedAt: datep("2024-01-05"), Progress: 100}},
			want:    ScheduleStats{Rate: 100, OnTime: 1, Total: 1},
		},
		{
			name:    "late",
			entries: []ScheduleEntry{{EndDate: datep("2024-01-10"), CompletedAt: datep("2024-01-15"), Progress: 100}},
			want:    ScheduleStats{Rate: 0, Delayed: 1, Total: 1},
		},
		{
			name: "missing dates count as on time",
			entries: []ScheduleEntry{
				{CompletedAt: datep("2024-01-15"), Progress: 100},
				{EndDate: datep("2024-01-10"), Progress: 100},
			},
			want: ScheduleStats{Rate: 100, OnTime: 2, Total: 2},
		},
		{
			name: "incomplete ignored",
			entries: []ScheduleEntry{
				{EndDate: datep("2024-01-10"), CompletedAt: datep("2024-01-15"), Progress: 75},
			},
			want: ScheduleStats{Rate: 100},
		},
		{
			name: "rate rounds",
			entries: []ScheduleEntry{
				{EndDate: datep("2024-01-10"), CompletedAt: datep("2024-01-01"), Progress: 100},
				{EndDate: datep("2024-01-10"), CompletedAt: datep("2024-01-02"), Progress: 100},
				{EndDate: datep("2024-01-10"), CompletedAt: datep("2024-01-20"), Progress: 100},
			},
			want: ScheduleStats{Rate: 67, OnTime: 2, Delayed: 1, Total: 3},
		},
		{
			name: "completed late in the day of the deadline is on time",
			entries: []ScheduleEntry{
				{EndDate: datep("2024-01-10"), CompletedAt: timep(date("2024-01-10").Add(20 * time.Hour)), Progress: 100},
			},
			want: ScheduleStats{Rate: 100, OnTime: 1, Total: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ScheduleAdherence(tt.entries))
		})
	}
}

func TestScheduleEntries(t *testing.T) {
	ms := []Milestone{{EndDate: datep("2024-01-10"), Items: items(2, 2)}}
	got := ScheduleEntries(ms)
	require.Len(t, got, 1)
	assert.Equal(t, 100, got[0].Progress)
	assert.Equal(t, ms[0].EndDate, got[0].EndDate)
}
