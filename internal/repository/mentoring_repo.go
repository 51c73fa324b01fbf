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

type MentoringRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewMentoringRepository(db *pgxpool.Pool, logger *zap.Logger) *MentoringRepository {
	return &MentoringRepository{db: db, logger: logger}
}

const postColumns = `id, author_id, target_member_id, meeting_date, content, next_steps, created_at`

// CreatePost inserts p and fills its ID and CreatedAt.
func (r *MentoringRepository) CreatePost(ctx context.Context, p *model.MentoringPost) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO mentoring_posts (author_id, target_member_id, meeting_date, content, next_steps)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`, p.AuthorID, p.TargetMemberID, p.MeetingDate, p.Content, p.NextSteps).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		r.logger.Error("Failed to insert mentoring post",
			zap.String("author_id", p.AuthorID.String()),
			zap.Error(err),
		)
		return constraintError(fmt.Errorf("insert mentoring post: %w", err), "member", "mentoring post")
	}
	return nil
}

// CreateComment inserts c under its post. A missing post or author surfaces
// as ErrNotFound.
func (r *MentoringRepository) CreateComment(ctx context.Context, c *model.MentoringComment) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO mentoring_comments (post_id, author_id, content)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, c.PostID, c.AuthorID, c.Content).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		r.logger.Error("Failed to insert mentoring comment",
			zap.String("post_id", c.PostID.String()),
			zap.Error(err),
		)
		return constraintError(fmt.Errorf("insert mentoring comment: %w", err), "mentoring post", "mentoring comment")
	}
	return nil
}

func (r *MentoringRepository) FindPost(ctx context.Context, id uuid.UUID) (*model.MentoringPost, error) {
	rows, err := r.db.Query(ctx, `SELECT `+postColumns+` FROM mentoring_posts WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("find mentoring post: %w", err)
	}
	p, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByPos[model.MentoringPost])
	if err != nil {
		return nil, notFound(err, "mentoring post")
	}
	return &p, nil
}

// ListPosts returns the newest posts across the lab.
func (r *MentoringRepository) ListPosts(ctx context.Context, limit int) ([]model.MentoringPost, error) {
	var posts []model.MentoringPost
	err := otel.WithDBSpan(ctx, "select", "mentoring_posts", func(ctx context.Context) error {
		rows, err := r.db.Query(ctx, `
			SELECT `+postColumns+`
			FROM mentoring_posts
			ORDER BY meeting_date DESC, created_at DESC
			LIMIT $1
		`, limit)
		if err != nil {
			return err
		}
		posts, err = pgx.CollectRows(rows, pgx.RowToStructByPos[model.MentoringPost])
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list mentoring posts: %w", err)
	}
	return posts, nil
}

// ListComments returns a post's comments, oldest first.
func (r *MentoringRepository) ListComments(ctx context.Context, postID uuid.UUID) ([]model.MentoringComment, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, post_id, author_id, content, created_at
		FROM mentoring_comments
		WHERE post_id = $1
		ORDER BY created_at ASC
	`, postID)
	if err != nil {
		return nil, fmt.Errorf("list mentoring comments: %w", err)
	}
	comments, err := pgx.CollectRows(rows, pgx.RowToStructByPos[model.MentoringComment])
	if err != nil {
		return nil, fmt.Errorf("scan mentoring comments: %w", err)
	}
	return comments, nil
}

// ListRecentPosts returns posts the member wrote or was the subject of,
// newest first.
func (r *MentoringRepository) ListRecentPosts(ctx context.Context, memberID uuid.UUID, limit int) ([]model.MentoringPost, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+postColumns+`
		FROM mentoring_posts
		WHERE author_id = $1 OR target_member_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, memberID, limit)
	if err != nil {
		return nil, fmt.Errorf("list mentoring posts: %w", err)
	}
	posts, err := pgx.CollectRows(rows, pgx.RowToStructByPos[model.MentoringPost])
	if err != nil {
		return nil, fmt.Errorf("scan mentoring posts: %w", err)
	}
	return posts, nil
}

func (r *MentoringRepository) ListRecentComments(ctx context.Context, memberID uuid.UUID, limit int) ([]model.MentoringComment, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, post_id, author_id, content, created_at
		FROM mentoring_comments
		WHERE author_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, memberID, limit)
	if err != nil {
		return nil, fmt.Errorf("list mentoring comments: %w", err)
	}
	comments, err := pgx.CollectRows(rows, pgx.RowToStructByPos[model.MentoringComment])
	if err != nil {
		return nil, fmt.Errorf("scan mentoring comments: %w", err)
	}
	return comments, nil
}
