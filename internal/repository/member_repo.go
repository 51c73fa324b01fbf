package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"labboard/internal/model"
)

type MemberRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewMemberRepository(db *pgxpool.Pool, logger *zap.Logger) *MemberRepository {
	return &MemberRepository{db: db, logger: logger}
}

const memberColumns = `id, email, name, position, status, admission_date, graduation_date, created_at, updated_at`

func scanMember(row pgx.Row) (*model.Member, error) {
	var m model.Member
	err := row.Scan(&m.ID, &m.Email, &m.Name, &m.Position, &m.Status,
		&m.AdmissionDate, &m.GraduationDate, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// ListByStatus returns members with the given status in name order. Roster
// ordering is applied by the caller.
func (r *MemberRepository) ListByStatus(ctx context.Context, status string) ([]model.Member, error) {
	rows, err := r.db.Query(ctx, `SELECT `+memberColumns+` FROM members WHERE status = $1 ORDER BY name`, status)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	defer rows.Close()

	var out []model.Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		out = append(out, *m)
	}
	return out, rows.Err()
}

func (r *MemberRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Member, error) {
	m, err := scanMember(r.db.QueryRow(ctx, `SELECT `+memberColumns+` FROM members WHERE id = $1`, id))
	if err != nil {
		return nil, notFound(err, "member")
	}
	return m, nil
}
