package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	mqcontracts "labboard/contracts/mq"
	"labboard/internal/model"
	"labboard/internal/progress"
	"labboard/pkg/mq"
	"labboard/pkg/outbox"
	"labboard/pkg/trace"
)

const aggregateProject = "project"

type CreateProjectInput struct {
	Title       string  `json:"title" validate:"required,max=200"`
	Description *string `json:"description"`
	Category    string  `json:"category" validate:"omitempty,oneof=thesis submission revision publication other"`
	Deadline    string  `json:"deadline" validate:"omitempty,datetime=2006-01-02"`
}

// AuthorInput adds a name to a project's author list. Names need not belong
// to a registered member.
type AuthorInput struct {
	Name string `json:"name" validate:"required,max=100"`
	Role string `json:"role" validate:"required,oneof=first_author corresponding co_author"`
}

type MemberRoleInput struct {
	MemberID uuid.UUID `json:"member_id" validate:"required"`
	Role     string    `json:"role" validate:"required,oneof=first_author corresponding co_author"`
}

// MilestoneView is a milestone annotated for display.
type MilestoneView struct {
	model.Milestone
	Label      string                 `json:"label"`
	Progress   int                    `json:"progress"`
	Status     progress.Status        `json:"status"`
	Offset     *progress.Offset       `json:"completion_offset,omitempty"`
	OffsetText string                 `json:"completion_offset_text,omitempty"`
	Timeline   progress.TimelineState `json:"timeline_status"`
}

type ProjectDetail struct {
	Project         *model.Project        `json:"project"`
	Authors         []model.ProjectAuthor `json:"authors"`
	Milestones      []MilestoneView       `json:"milestones"`
	OverallProgress float64               `json:"overall_progress"`
	DDay            *progress.DDayInfo    `json:"d_day,omitempty"`
	Health          progress.Health       `json:"health"`
}

type ProjectService struct {
	db         TxBeginner
	projects   ProjectStore
	milestones MilestoneStore
	outbox     outbox.Writer
	validate   *validator.Validate
	logger     *zap.Logger
	now        func() time.Time
}

func NewProjectService(db TxBeginner, projects ProjectStore, milestones MilestoneStore, ob outbox.Writer, logger *zap.Logger) *ProjectService {
	return &ProjectService{
		db:         db,
		projects:   projects,
		milestones: milestones,
		outbox:     ob,
		validate:   validator.New(),
		logger:     logger,
		now:        time.Now,
	}
}

// Create inserts the project, makes the creator its first author and queues
// project.created, all in one transaction.
func (s *ProjectService) Create(ctx context.Context, creatorID uuid.UUID, in CreateProjectInput) (*model.Project, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	p := &model.Project{
		ID:          uuid.New(),
		Title:       in.Title,
		Description: in.Description,
		Category:    in.Category,
		Status:      "preparing",
		CreatedBy:   creatorID,
	}
	if p.Category == "" {
		p.Category = "thesis"
	}
	if in.Deadline != "" {
		d, _ := time.Parse(time.DateOnly, in.Deadline) // format checked by validator
		p.Deadline = &d
	}

	eventID := uuid.New()
	payload := mqcontracts.ProjectCreatedPayload{
		EventID:    eventID.String(),
		ProjectID:  p.ID.String(),
		CreatedBy:  creatorID.String(),
		Title:      p.Title,
		TraceID:    trace.FromContext(ctx),
		OccurredAt: s.now().UTC(),
	}

	err := inTx(ctx, s.db, func(tx pgx.Tx) error {
		if err := s.projects.InsertTx(ctx, tx, p); err != nil {
			return err
		}
		if err := s.projects.AddMemberTx(ctx, tx, p.ID, creatorID, model.RoleFirstAuthor); err != nil {
			return err
		}
		return outbox.InsertEventInTx(ctx, tx, s.outbox, eventID, aggregateProject, p.ID, mq.RoutingProjectCreated, payload)
	})
	if err != nil {
		s.logger.Error("Failed to create project",
			zap.String("creator_id", creatorID.String()),
			zap.Error(err),
		)
		return nil, err
	}

	s.logger.Info("Project created",
		zap.String("project_id", p.ID.String()),
		zap.String("event_id", eventID.String()),
	)
	return p, nil
}

// SeedMilestones creates the default stage template for a project. It is a
// no-op when the project already has milestones and returns how many were
// created.
func (s *ProjectService) SeedMilestones(ctx context.Context, projectID uuid.UUID) (int, error) {
	n, err := s.milestones.CountByProject(ctx, projectID)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.logger.Info("Milestones already seeded, skipping",
			zap.String("project_id", projectID.String()),
			zap.Int("existing", n),
		)
		return 0, nil
	}

	stages := progress.DefaultStages
	if err := progress.ValidateTemplate(stages); err != nil {
		return 0, err
	}
	err = inTx(ctx, s.db, func(tx pgx.Tx) error {
		for i, st := range stages {
			m := &model.Milestone{
				ProjectID: projectID,
				Stage:     st.Key,
				Weight:    st.Weight,
				SortOrder: i + 1,
				Items:     make([]model.ChecklistItem, len(st.Checklist)),
			}
			for j, content := range st.Checklist {
				m.Items[j] = model.ChecklistItem{Content: content, SortOrder: j + 1}
			}
			if err := s.milestones.InsertWithChecklistTx(ctx, tx, m); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.logger.Info("Milestones seeded",
		zap.String("project_id", projectID.String()),
		zap.Int("count", len(stages)),
	)
	return len(stages), nil
}

// Detail loads a project with its milestones evaluated against today.
func (s *ProjectService) Detail(ctx context.Context, projectID uuid.UUID, today time.Time) (*ProjectDetail, error) {
	p, err := s.projects.FindByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	ms, err := s.milestones.ListByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	authors, err := s.projects.ListAuthors(ctx, projectID)
	if err != nil {
		return nil, err
	}

	core := model.CoreMilestones(ms)
	statuses := progress.ClassifyAll(core, today)

	views := make([]MilestoneView, len(ms))
	for i, m := range ms {
		v := MilestoneView{
			Milestone: m,
			Label:     progress.StageLabel(m.Stage),
			Progress:  core[i].Progress(),
			Status:    statuses[i],
			Timeline:  progress.TimelineStatus(core[i], today),
		}
		if off, ok := progress.CompletionOffset(core[i]); ok {
			v.Offset = &off
			v.OffsetText = off.String()
		}
		views[i] = v
	}

	overall := progress.ProjectProgress(core)
	d := &ProjectDetail{
		Project:         p,
		Authors:         authors,
		Milestones:      views,
		OverallProgress: overall,
		Health:          progress.ProjectHealth(overall, p.Deadline, today),
	}
	if p.Deadline != nil {
		dd := progress.DDay(*p.Deadline, today)
		d.DDay = &dd
	}
	return d, nil
}

// UpdateMilestoneDates replaces a milestone's planned range and returns the
// owning project id.
func (s *ProjectService) UpdateMilestoneDates(ctx context.Context, milestoneID uuid.UUID, start, end *time.Time) (uuid.UUID, error) {
	if start != nil && end != nil && progress.CivilDate(*end).Before(progress.CivilDate(*start)) {
		return uuid.Nil, fmt.Errorf("%w: end_date before start_date", ErrInvalidInput)
	}
	return s.milestones.UpdateDates(ctx, milestoneID, start, end)
}

// AddAuthor appends a name to the project's author list. Members whose name
// matches pick the project up in their project set.
func (s *ProjectService) AddAuthor(ctx context.Context, projectID uuid.UUID, in AuthorInput) (*model.ProjectAuthor, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := s.validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	a := &model.ProjectAuthor{ProjectID: projectID, Name: in.Name, Role: in.Role}
	if err := s.projects.AddAuthor(ctx, a); err != nil {
		return nil, err
	}

	s.logger.Info("Project author added",
		zap.String("project_id", projectID.String()),
		zap.String("name", a.Name),
		zap.String("role", a.Role),
	)
	return a, nil
}

// AddMember grants a registered member a role on the project, replacing any
// role they already hold.
func (s *ProjectService) AddMember(ctx context.Context, projectID uuid.UUID, in MemberRoleInput) error {
	if err := s.validate.Struct(in); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	err := inTx(ctx, s.db, func(tx pgx.Tx) error {
		return s.projects.AddMemberTx(ctx, tx, projectID, in.MemberID, in.Role)
	})
	if err != nil {
		return err
	}

	s.logger.Info("Project member added",
		zap.String("project_id", projectID.String()),
		zap.String("member_id", in.MemberID.String()),
		zap.String("role", in.Role),
	)
	return nil
}
