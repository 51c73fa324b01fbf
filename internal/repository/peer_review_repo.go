package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"labboard/internal/model"
)

type PeerReviewRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewPeerReviewRepository(db *pgxpool.Pool, logger *zap.Logger) *PeerReviewRepository {
	return &PeerReviewRepository{db: db, logger: logger}
}

// Insert writes a review request in processing state.
func (r *PeerReviewRepository) Insert(ctx context.Context, pr *model.PeerReview) error {
	if pr.ID == uuid.Nil {
		pr.ID = uuid.New()
	}
	pr.Status = model.ReviewProcessing
	err := r.db.QueryRow(ctx, `
		INSERT INTO peer_reviews (id, member_id, project_id, title, content, review_status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`, pr.ID, pr.MemberID, pr.ProjectID, pr.Title, pr.Content, pr.Status).Scan(&pr.CreatedAt, &pr.UpdatedAt)
	if err != nil {
		r.logger.Error("Failed to insert peer review", zap.Error(err))
		return fmt.Errorf("insert peer review: %w", err)
	}
	return nil
}

func (r *PeerReviewRepository) setResult(ctx context.Context, id uuid.UUID, status string, result *string) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE peer_reviews SET review_status = $2, review_result = $3, updated_at = NOW()
		WHERE id = $1
	`, id, status, result)
	if err != nil {
		return fmt.Errorf("update peer review: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("peer review %w", ErrNotFound)
	}
	return nil
}

func (r *PeerReviewRepository) Complete(ctx context.Context, id uuid.UUID, result string) error {
	return r.setResult(ctx, id, model.ReviewCompleted, &result)
}

func (r *PeerReviewRepository) Fail(ctx context.Context, id uuid.UUID) error {
	return r.setResult(ctx, id, model.ReviewError, nil)
}

// DeleteBefore removes a member's reviews created before cutoff.
func (r *PeerReviewRepository) DeleteBefore(ctx context.Context, memberID uuid.UUID, cutoff time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `
		DELETE FROM peer_reviews WHERE member_id = $1 AND created_at < $2
	`, memberID, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete old peer reviews: %w", err)
	}
	return tag.RowsAffected(), nil
}

// ListBetween returns reviews with from <= created_at < to, newest first.
func (r *PeerReviewRepository) ListBetween(ctx context.Context, memberID uuid.UUID, from, to time.Time) ([]model.PeerReview, error) {
	rows, err := r.db.Query(ctx, `
		SELECT pr.id, pr.member_id, pr.project_id, p.title, pr.title, pr.content,
		       pr.review_result, pr.review_status, pr.created_at, pr.updated_at
		FROM peer_reviews pr
		LEFT JOIN research_projects p ON p.id = pr.project_id
		WHERE pr.member_id = $1 AND pr.created_at >= $2 AND pr.created_at < $3
		ORDER BY pr.created_at DESC
	`, memberID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list peer reviews: %w", err)
	}
	defer rows.Close()

	var out []model.PeerReview
	for rows.Next() {
		var pr model.PeerReview
		if err := rows.Scan(&pr.ID, &pr.MemberID, &pr.ProjectID, &pr.ProjectTitle, &pr.Title, &pr.Content,
			&pr.Result, &pr.Status, &pr.CreatedAt, &pr.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan peer review: %w", err)
		}
		out = append(out, pr)
	}
	return out, rows.Err()
}
