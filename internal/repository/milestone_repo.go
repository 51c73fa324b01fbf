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
	"labboard/pkg/otel"
)

type MilestoneRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewMilestoneRepository(db *pgxpool.Pool, logger *zap.Logger) *MilestoneRepository {
	return &MilestoneRepository{db: db, logger: logger}
}

// InsertWithChecklistTx writes a milestone and its checklist in one batch.
// IDs are assigned here when unset.
func (r *MilestoneRepository) InsertWithChecklistTx(ctx context.Context, tx pgx.Tx, m *model.Milestone) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}

	batch := &pgx.Batch{}
	batch.Queue(`
		INSERT INTO milestones (id, project_id, stage, weight, sort_order, start_date, end_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, m.ID, m.ProjectID, m.Stage, m.Weight, m.SortOrder, m.StartDate, m.EndDate)

	for i := range m.Items {
		it := &m.Items[i]
		if it.ID == uuid.Nil {
			it.ID = uuid.New()
		}
		it.MilestoneID = m.ID
		batch.Queue(`
			INSERT INTO checklist_items (id, milestone_id, content, sort_order)
			VALUES ($1, $2, $3, $4)
		`, it.ID, m.ID, it.Content, it.SortOrder)
	}

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		r.logger.Error("Failed to insert milestone",
			zap.String("project_id", m.ProjectID.String()),
			zap.String("stage", m.Stage),
			zap.Error(err),
		)
		return fmt.Errorf("insert milestone %s: %w", m.Stage, err)
	}

	r.logger.Debug("Milestone inserted",
		zap.String("milestone_id", m.ID.String()),
		zap.String("stage", m.Stage),
		zap.Int("items", len(m.Items)),
	)
	return nil
}

func (r *MilestoneRepository) CountByProject(ctx context.Context, projectID uuid.UUID) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM milestones WHERE project_id = $1`, projectID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count milestones: %w", err)
	}
	return n, nil
}

func (r *MilestoneRepository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]model.Milestone, error) {
	byProject, err := r.ListByProjects(ctx, []uuid.UUID{projectID})
	if err != nil {
		return nil, err
	}
	return byProject[projectID], nil
}

// ListByProjects loads milestones and checklists for many projects in two
// queries. Milestones are ordered by sort_order, items likewise.
func (r *MilestoneRepository) ListByProjects(ctx context.Context, projectIDs []uuid.UUID) (map[uuid.UUID][]model.Milestone, error) {
	result := make(map[uuid.UUID][]model.Milestone, len(projectIDs))
	if len(projectIDs) == 0 {
		return result, nil
	}

	var milestones []model.Milestone
	err := otel.WithDBSpan(ctx, "select", "milestones", func(ctx context.Context) error {
		rows, err := r.db.Query(ctx, `
			SELECT id, project_id, stage, weight::float8, sort_order, start_date, end_date, completed_at
			FROM milestones
			WHERE project_id = ANY($1)
			ORDER BY project_id, sort_order ASC
		`, projectIDs)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var m model.Milestone
			if err := rows.Scan(&m.ID, &m.ProjectID, &m.Stage, &m.Weight, &m.SortOrder,
				&m.StartDate, &m.EndDate, &m.CompletedAt); err != nil {
				return err
			}
			milestones = append(milestones, m)
		}
		return rows.Err()
	})
	if err != nil {
		r.logger.Error("Failed to list milestones", zap.Int("projects", len(projectIDs)), zap.Error(err))
		return nil, fmt.Errorf("list milestones: %w", err)
	}

	ids := make([]uuid.UUID, len(milestones))
	for i, m := range milestones {
		ids[i] = m.ID
	}
	items, err := r.itemsByMilestone(ctx, ids)
	if err != nil {
		return nil, err
	}

	for _, m := range milestones {
		m.Items = items[m.ID]
		result[m.ProjectID] = append(result[m.ProjectID], m)
	}
	return result, nil
}

func (r *MilestoneRepository) itemsByMilestone(ctx context.Context, milestoneIDs []uuid.UUID) (map[uuid.UUID][]model.ChecklistItem, error) {
	out := make(map[uuid.UUID][]model.ChecklistItem, len(milestoneIDs))
	if len(milestoneIDs) == 0 {
		return out, nil
	}

	rows, err := r.db.Query(ctx, `
		SELECT id, milestone_id, content, is_completed, completed_at, sort_order
		FROM checklist_items
		WHERE milestone_id = ANY($1)
		ORDER BY milestone_id, sort_order ASC
	`, milestoneIDs)
	if err != nil {
		return nil, fmt.Errorf("list checklist items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var it model.ChecklistItem
		if err := rows.Scan(&it.ID, &it.MilestoneID, &it.Content, &it.Completed, &it.CompletedAt, &it.SortOrder); err != nil {
			return nil, fmt.Errorf("scan checklist item: %w", err)
		}
		out[it.MilestoneID] = append(out[it.MilestoneID], it)
	}
	return out, rows.Err()
}

// UpdateDates sets the planned range and returns the owning project id.
func (r *MilestoneRepository) UpdateDates(ctx context.Context, id uuid.UUID, start, end *time.Time) (uuid.UUID, error) {
	var projectID uuid.UUID
	err := r.db.QueryRow(ctx, `
		UPDATE milestones SET start_date = $2, end_date = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING project_id
	`, id, start, end).Scan(&projectID)
	if err != nil {
		return uuid.Nil, notFound(err, "milestone")
	}

	r.logger.Info("Milestone dates updated",
		zap.String("milestone_id", id.String()),
		zap.Timep("start_date", start),
		zap.Timep("end_date", end),
	)
	return projectID, nil
}

// SetCompletedAtTx stamps or clears the actual completion instant. A nil at
// clears it; otherwise an existing stamp wins.
func (r *MilestoneRepository) SetCompletedAtTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, at *time.Time) error {
	_, err := tx.Exec(ctx, `
		UPDATE milestones
		SET completed_at = CASE WHEN $2::timestamptz IS NULL THEN NULL ELSE COALESCE(completed_at, $2) END,
		    updated_at = NOW()
		WHERE id = $1
	`, id, at)
	if err != nil {
		return fmt.Errorf("set milestone completed_at: %w", err)
	}
	return nil
}
