package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"labboard/internal/model"
	"labboard/pkg/otel"
)

type ProjectRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewProjectRepository(db *pgxpool.Pool, logger *zap.Logger) *ProjectRepository {
	return &ProjectRepository{db: db, logger: logger}
}

const projectColumns = `p.id, p.title, p.description, p.category, p.status, p.overall_progress::float8,
	p.deadline, p.created_by, p.created_at, p.updated_at`

func scanProject(row pgx.Row, extra ...any) (*model.Project, error) {
	var p model.Project
	dest := []any{
		&p.ID, &p.Title, &p.Description, &p.Category, &p.Status, &p.OverallProgress,
		&p.Deadline, &p.CreatedBy, &p.CreatedAt, &p.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	return &p, nil
}

// InsertTx writes p inside tx. p.ID must already be set.
func (r *ProjectRepository) InsertTx(ctx context.Context, tx pgx.Tx, p *model.Project) error {
	r.logger.Debug("Inserting project",
		zap.String("project_id", p.ID.String()),
		zap.String("title", p.Title),
	)

	query := `
		INSERT INTO research_projects (id, title, description, category, status, overall_progress, deadline, created_by)
		VALUES ($1, $2, $3, $4, $5, 0, $6, $7)
		RETURNING created_at, updated_at
	`
	err := tx.QueryRow(ctx, query,
		p.ID, p.Title, p.Description, p.Category, p.Status, p.Deadline, p.CreatedBy,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		r.logger.Error("Failed to insert project", zap.Error(err))
		return fmt.Errorf("insert project: %w", err)
	}
	return nil
}

func (r *ProjectRepository) AddMemberTx(ctx context.Context, tx pgx.Tx, projectID, memberID uuid.UUID, role string) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO project_members (project_id, member_id, role)
		VALUES ($1, $2, $3)
		ON CONFLICT (project_id, member_id) DO UPDATE SET role = EXCLUDED.role
	`, projectID, memberID, role)
	if err != nil {
		r.logger.Error("Failed to add project member",
			zap.String("project_id", projectID.String()),
			zap.String("member_id", memberID.String()),
			zap.Error(err),
		)
		return constraintError(fmt.Errorf("add project member: %w", err), "project or member", "project member")
	}
	return nil
}

// AddAuthor appends a to the project's author list. SortOrder is assigned
// after the current last author.
func (r *ProjectRepository) AddAuthor(ctx context.Context, a *model.ProjectAuthor) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO project_authors (project_id, name, role, sort_order)
		SELECT $1, $2, $3, COALESCE(MAX(sort_order), 0) + 1
		FROM project_authors
		WHERE project_id = $1
		RETURNING id, sort_order
	`, a.ProjectID, a.Name, a.Role).Scan(&a.ID, &a.SortOrder)
	if err != nil {
		r.logger.Error("Failed to add project author",
			zap.String("project_id", a.ProjectID.String()),
			zap.String("name", a.Name),
			zap.Error(err),
		)
		return constraintError(fmt.Errorf("add project author: %w", err), "project", "project author")
	}
	return nil
}

func (r *ProjectRepository) ListAuthors(ctx context.Context, projectID uuid.UUID) ([]model.ProjectAuthor, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, project_id, name, role, sort_order
		FROM project_authors
		WHERE project_id = $1
		ORDER BY sort_order ASC
	`, projectID)
	if err != nil {
		return nil, fmt.Errorf("list project authors: %w", err)
	}
	authors, err := pgx.CollectRows(rows, pgx.RowToStructByPos[model.ProjectAuthor])
	if err != nil {
		return nil, fmt.Errorf("scan project authors: %w", err)
	}
	return authors, nil
}

func (r *ProjectRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Project, error) {
	var p *model.Project
	err := otel.WithDBSpan(ctx, "select", "research_projects", func(ctx context.Context) error {
		var err error
		p, err = scanProject(r.db.QueryRow(ctx, `SELECT `+projectColumns+` FROM research_projects p WHERE p.id = $1`, id))
		return err
	})
	if err != nil {
		return nil, notFound(err, "project")
	}
	return p, nil
}

// UpdateOverallProgress stores the recomputed weighted progress.
func (r *ProjectRepository) UpdateOverallProgress(ctx context.Context, id uuid.UUID, overall float64) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE research_projects SET overall_progress = $2, updated_at = NOW() WHERE id = $1
	`, id, overall)
	if err != nil {
		r.logger.Error("Failed to update overall progress",
			zap.String("project_id", id.String()),
			zap.Error(err),
		)
		return fmt.Errorf("update overall progress: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("project %w", ErrNotFound)
	}
	return nil
}

func (r *ProjectRepository) listMemberships(ctx context.Context, query string, arg any) ([]model.Membership, error) {
	rows, err := r.db.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Membership
	for rows.Next() {
		var role string
		p, err := scanProject(rows, &role)
		if err != nil {
			return nil, fmt.Errorf("scan membership: %w", err)
		}
		out = append(out, model.Membership{Project: *p, Role: role})
	}
	return out, rows.Err()
}

// ListByMember returns the projects a member holds an explicit role on.
func (r *ProjectRepository) ListByMember(ctx context.Context, memberID uuid.UUID) ([]model.Membership, error) {
	out, err := r.listMemberships(ctx, `
		SELECT `+projectColumns+`, pm.role
		FROM project_members pm
		JOIN research_projects p ON p.id = pm.project_id
		WHERE pm.member_id = $1
		ORDER BY p.created_at DESC
	`, memberID)
	if err != nil {
		r.logger.Error("Failed to list projects by member",
			zap.String("member_id", memberID.String()),
			zap.Error(err),
		)
		return nil, err
	}
	return out, nil
}

// ListByAuthorName returns the projects whose author list carries name.
func (r *ProjectRepository) ListByAuthorName(ctx context.Context, name string) ([]model.Membership, error) {
	out, err := r.listMemberships(ctx, `
		SELECT `+projectColumns+`, pa.role
		FROM project_authors pa
		JOIN research_projects p ON p.id = pa.project_id
		WHERE pa.name = $1
		ORDER BY p.created_at DESC
	`, name)
	if err != nil {
		r.logger.Error("Failed to list projects by author name",
			zap.String("name", name),
			zap.Error(err),
		)
		return nil, err
	}
	return out, nil
}
