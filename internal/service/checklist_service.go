package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	mqcontracts "labboard/contracts/mq"
	"labboard/internal/model"
	"labboard/internal/progress"
	"labboard/pkg/metrics"
	"labboard/pkg/mq"
	"labboard/pkg/outbox"
	"labboard/pkg/trace"
)

const aggregateChecklistItem = "checklist_item"

type ToggleResult struct {
	ItemID             uuid.UUID `json:"item_id"`
	MilestoneID        uuid.UUID `json:"milestone_id"`
	ProjectID          uuid.UUID `json:"project_id"`
	Completed          bool      `json:"is_completed"`
	MilestoneProgress  int       `json:"milestone_progress"`
	MilestoneCompleted bool      `json:"milestone_completed"`
}

type ChecklistService struct {
	db         TxBeginner
	checklists ChecklistStore
	milestones MilestoneStore
	outbox     outbox.Writer
	logger     *zap.Logger
	now        func() time.Time
}

func NewChecklistService(db TxBeginner, checklists ChecklistStore, milestones MilestoneStore, ob outbox.Writer, logger *zap.Logger) *ChecklistService {
	return &ChecklistService{
		db:         db,
		checklists: checklists,
		milestones: milestones,
		outbox:     ob,
		logger:     logger,
		now:        time.Now,
	}
}

// Toggle sets an item's completion. The milestone's completed_at follows its
// checklist: stamped when every item is done, cleared otherwise. Project
// progress is recalculated asynchronously from checklist.toggled.
func (s *ChecklistService) Toggle(ctx context.Context, itemID, actorID uuid.UUID, completed bool) (*ToggleResult, error) {
	now := s.now().UTC()
	res := &ToggleResult{ItemID: itemID, Completed: completed}

	err := inTx(ctx, s.db, func(tx pgx.Tx) error {
		owner, err := s.checklists.LockOwnerTx(ctx, tx, itemID)
		if err != nil {
			return err
		}
		if err := s.checklists.SetCompletedTx(ctx, tx, itemID, completed, now); err != nil {
			return err
		}
		res.MilestoneID = owner.MilestoneID
		res.ProjectID = owner.ProjectID

		items, err := s.checklists.ListByMilestone(ctx, tx, owner.MilestoneID)
		if err != nil {
			return err
		}
		res.MilestoneProgress = progress.MilestoneProgress(coreItems(items))
		res.MilestoneCompleted = res.MilestoneProgress == 100

		var stamp *time.Time
		if res.MilestoneCompleted {
			stamp = &now
		}
		if err := s.milestones.SetCompletedAtTx(ctx, tx, owner.MilestoneID, stamp); err != nil {
			return err
		}

		eventID := uuid.New()
		payload := mqcontracts.ChecklistToggledPayload{
			EventID:     eventID.String(),
			ItemID:      itemID.String(),
			MilestoneID: owner.MilestoneID.String(),
			ProjectID:   owner.ProjectID.String(),
			Completed:   completed,
			ToggledBy:   actorID.String(),
			TraceID:     trace.FromContext(ctx),
			OccurredAt:  now,
		}
		return outbox.InsertEventInTx(ctx, tx, s.outbox, eventID, aggregateChecklistItem, itemID, mq.RoutingChecklistToggled, payload)
	})
	if err != nil {
		s.logger.Error("Failed to toggle checklist item",
			zap.String("item_id", itemID.String()),
			zap.Bool("completed", completed),
			zap.Error(err),
		)
		return nil, err
	}

	metrics.IncrementChecklistToggle(completed)
	s.logger.Info("Checklist item toggled",
		zap.String("item_id", itemID.String()),
		zap.String("milestone_id", res.MilestoneID.String()),
		zap.Bool("completed", completed),
		zap.Int("milestone_progress", res.MilestoneProgress),
	)
	return res, nil
}

func coreItems(items []model.ChecklistItem) []progress.ChecklistItem {
	out := make([]progress.ChecklistItem, len(items))
	for i, it := range items {
		out[i] = progress.ChecklistItem{Completed: it.Completed, CompletedAt: it.CompletedAt}
	}
	return out
}
