package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"labboard/internal/model"
	"labboard/internal/progress"
)

// mentoringFeedLimit bounds each mentoring source before the feed merge.
const mentoringFeedLimit = 10

type ProjectSummary struct {
	ID              uuid.UUID          `json:"id"`
	Title           string             `json:"title"`
	Role            string             `json:"role"`
	OverallProgress float64            `json:"overall_progress"`
	Health          progress.Health    `json:"health"`
	DDay            *progress.DDayInfo `json:"d_day,omitempty"`
}

type FeedEntry struct {
	progress.Activity
	Relative string `json:"relative"`
}

type PerformanceReport struct {
	Member              *model.Member          `json:"member"`
	Projects            []ProjectSummary       `json:"projects"`
	TotalProjects       int                    `json:"total_projects"`
	AverageProgress     int                    `json:"average_progress"`
	CompletedMilestones int                    `json:"completed_milestones"`
	TotalMilestones     int                    `json:"total_milestones"`
	Schedule            progress.ScheduleStats `json:"schedule"`
	RecentActivities    []FeedEntry            `json:"recent_activities"`
}

type PerformanceService struct {
	members    MemberStore
	projects   ProjectStore
	milestones MilestoneStore
	mentoring  MentoringStore
	logger     *zap.Logger
}

func NewPerformanceService(members MemberStore, projects ProjectStore, milestones MilestoneStore, mentoring MentoringStore, logger *zap.Logger) *PerformanceService {
	return &PerformanceService{
		members:    members,
		projects:   projects,
		milestones: milestones,
		mentoring:  mentoring,
		logger:     logger,
	}
}

// Report builds a member's performance summary as of now.
func (s *PerformanceService) Report(ctx context.Context, memberID uuid.UUID, now time.Time) (*PerformanceReport, error) {
	member, err := s.members.FindByID(ctx, memberID)
	if err != nil {
		return nil, err
	}

	memberships, err := s.memberships(ctx, member)
	if err != nil {
		return nil, err
	}

	report := &PerformanceReport{
		Member:        member,
		Projects:      make([]ProjectSummary, 0, len(memberships)),
		TotalProjects: len(memberships),
	}

	overall := make([]float64, 0, len(memberships))
	var all []progress.Milestone
	var checklistFeed, milestoneFeed []progress.Activity

	for _, ms := range memberships {
		p := ms.Project
		overall = append(overall, p.OverallProgress)

		report.Projects = append(report.Projects, summarize(ms, now))

		for _, m := range ms.Milestones {
			core := m.Core()
			all = append(all, core)
			if core.Progress() == 100 {
				report.CompletedMilestones++
			}
			if m.CompletedAt != nil {
				milestoneFeed = append(milestoneFeed, progress.Activity{
					Kind:         progress.ActivityMilestone,
					Description:  fmt.Sprintf("%q stage completed", progress.StageLabel(m.Stage)),
					At:           *m.CompletedAt,
					ProjectTitle: p.Title,
				})
			}
			for _, it := range m.Items {
				if !it.Completed || it.CompletedAt == nil {
					continue
				}
				checklistFeed = append(checklistFeed, progress.Activity{
					Kind:         progress.ActivityChecklist,
					Description:  progress.Truncate(it.Content, progress.DescriptionLimit),
					At:           *it.CompletedAt,
					ProjectTitle: p.Title,
				})
			}
		}
	}

	report.TotalMilestones = len(all)
	report.AverageProgress = progress.AverageProgress(overall)
	report.Schedule = progress.ScheduleAdherence(progress.ScheduleEntries(all))

	mentoringFeed, err := s.mentoringFeed(ctx, memberID)
	if err != nil {
		return nil, err
	}

	feed := progress.ActivityFeed(progress.DefaultFeedLimit, checklistFeed, milestoneFeed, mentoringFeed)
	report.RecentActivities = make([]FeedEntry, len(feed))
	for i, a := range feed {
		report.RecentActivities[i] = FeedEntry{Activity: a, Relative: progress.RelativeTime(a.At, now)}
	}

	s.logger.Debug("Performance report built",
		zap.String("member_id", memberID.String()),
		zap.Int("projects", report.TotalProjects),
		zap.Int("milestones", report.TotalMilestones),
	)
	return report, nil
}

// Projects lists the member's project set as cards, with the same merge
// rules as Report.
func (s *PerformanceService) Projects(ctx context.Context, memberID uuid.UUID, now time.Time) ([]ProjectSummary, error) {
	member, err := s.members.FindByID(ctx, memberID)
	if err != nil {
		return nil, err
	}
	merged, err := s.merged(ctx, member)
	if err != nil {
		return nil, err
	}

	out := make([]ProjectSummary, len(merged))
	for i, ms := range merged {
		out[i] = summarize(ms, now)
	}
	return out, nil
}

func summarize(ms model.Membership, now time.Time) ProjectSummary {
	p := ms.Project
	summary := ProjectSummary{
		ID:              p.ID,
		Title:           p.Title,
		Role:            ms.Role,
		OverallProgress: p.OverallProgress,
		Health:          progress.ProjectHealth(p.OverallProgress, p.Deadline, now),
	}
	if p.Deadline != nil {
		dd := progress.DDay(*p.Deadline, now)
		summary.DDay = &dd
	}
	return summary
}

// merged combines the role table and the author list, role table first.
func (s *PerformanceService) merged(ctx context.Context, member *model.Member) ([]model.Membership, error) {
	byRole, err := s.projects.ListByMember(ctx, member.ID)
	if err != nil {
		return nil, err
	}
	byAuthor, err := s.projects.ListByAuthorName(ctx, member.Name)
	if err != nil {
		return nil, err
	}
	return progress.MergeByID(model.MembershipID, byRole, byAuthor), nil
}

// memberships is merged with milestones loaded for every project.
func (s *PerformanceService) memberships(ctx context.Context, member *model.Member) ([]model.Membership, error) {
	merged, err := s.merged(ctx, member)
	if err != nil || len(merged) == 0 {
		return merged, err
	}

	ids := make([]uuid.UUID, len(merged))
	for i, m := range merged {
		ids[i] = m.Project.ID
	}
	byProject, err := s.milestones.ListByProjects(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range merged {
		merged[i].Milestones = byProject[merged[i].Project.ID]
	}
	return merged, nil
}

func (s *PerformanceService) mentoringFeed(ctx context.Context, memberID uuid.UUID) ([]progress.Activity, error) {
	posts, err := s.mentoring.ListRecentPosts(ctx, memberID, mentoringFeedLimit)
	if err != nil {
		return nil, err
	}
	comments, err := s.mentoring.ListRecentComments(ctx, memberID, mentoringFeedLimit)
	if err != nil {
		return nil, err
	}

	out := make([]progress.Activity, 0, len(posts)+len(comments))
	for _, p := range posts {
		out = append(out, progress.Activity{
			Kind:        progress.ActivityMentoring,
			Description: progress.Truncate(p.Content, progress.DescriptionLimit),
			At:          p.CreatedAt,
		})
	}
	for _, c := range comments {
		out = append(out, progress.Activity{
			Kind:        progress.ActivityComment,
			Description: progress.Truncate(c.Content, progress.DescriptionLimit),
			At:          c.CreatedAt,
		})
	}
	return out, nil
}
