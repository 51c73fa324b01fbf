package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"labboard/internal/model"
)

type ChecklistRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewChecklistRepository(db *pgxpool.Pool, logger *zap.Logger) *ChecklistRepository {
	return &ChecklistRepository{db: db, logger: logger}
}

// ItemOwner identifies the milestone and project a checklist item belongs to.
type ItemOwner struct {
	MilestoneID uuid.UUID
	ProjectID   uuid.UUID
}

// LockOwnerTx resolves the item's milestone and project and row-locks the
// milestone. Toggles on the same milestone serialize on this lock, so it must
// be taken before any checklist row is written.
func (r *ChecklistRepository) LockOwnerTx(ctx context.Context, tx pgx.Tx, itemID uuid.UUID) (ItemOwner, error) {
	var owner ItemOwner
	err := tx.QueryRow(ctx, `
		SELECT m.id, m.project_id
		FROM milestones m
		WHERE m.id = (SELECT milestone_id FROM checklist_items WHERE id = $1)
		FOR UPDATE
	`, itemID).Scan(&owner.MilestoneID, &owner.ProjectID)
	if err != nil {
		return ItemOwner{}, notFound(err, "checklist item")
	}
	return owner, nil
}

// SetCompletedTx sets the item's completion flag. completed_at is stamped
// with at when completing (an existing stamp is kept) and cleared otherwise.
func (r *ChecklistRepository) SetCompletedTx(ctx context.Context, tx pgx.Tx, itemID uuid.UUID, completed bool, at time.Time) error {
	tag, err := tx.Exec(ctx, `
		UPDATE checklist_items
		SET is_completed = $2,
		    completed_at = CASE WHEN $2 THEN COALESCE(completed_at, $3::timestamptz) ELSE NULL END,
		    updated_at = NOW()
		WHERE id = $1
	`, itemID, completed, at)
	if err != nil {
		return fmt.Errorf("update checklist item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("checklist item %w", ErrNotFound)
	}

	r.logger.Debug("Checklist item updated",
		zap.String("item_id", itemID.String()),
		zap.Bool("completed", completed),
	)
	return nil
}

// ListByMilestone reads the checklist inside tx so it sees the toggle just
// written. Callers hold the milestone lock from LockOwnerTx.
func (r *ChecklistRepository) ListByMilestone(ctx context.Context, tx pgx.Tx, milestoneID uuid.UUID) ([]model.ChecklistItem, error) {
	rows, err := tx.Query(ctx, `
		SELECT id, milestone_id, content, is_completed, completed_at, sort_order
		FROM checklist_items
		WHERE milestone_id = $1
		ORDER BY sort_order ASC
	`, milestoneID)
	if err != nil {
		return nil, fmt.Errorf("list checklist: %w", err)
	}
	defer rows.Close()

	var items []model.ChecklistItem
	for rows.Next() {
		var it model.ChecklistItem
		if err := rows.Scan(&it.ID, &it.MilestoneID, &it.Content, &it.Completed, &it.CompletedAt, &it.SortOrder); err != nil {
			return nil, fmt.Errorf("scan checklist item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}
