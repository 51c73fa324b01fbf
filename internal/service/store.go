package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"labboard/internal/model"
	"labboard/internal/repository"
)

// ErrInvalidInput wraps request validation failures.
var ErrInvalidInput = errors.New("invalid input")

// TxBeginner starts a transaction. *pgxpool.Pool satisfies it.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

type ProjectStore interface {
	InsertTx(ctx context.Context, tx pgx.Tx, p *model.Project) error
	AddMemberTx(ctx context.Context, tx pgx.Tx, projectID, memberID uuid.UUID, role string) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Project, error)
	UpdateOverallProgress(ctx context.Context, id uuid.UUID, overall float64) error
	ListByMember(ctx context.Context, memberID uuid.UUID) ([]model.Membership, error)
	ListByAuthorName(ctx context.Context, name string) ([]model.Membership, error)
	AddAuthor(ctx context.Context, a *model.ProjectAuthor) error
	ListAuthors(ctx context.Context, projectID uuid.UUID) ([]model.ProjectAuthor, error)
}

type MilestoneStore interface {
	InsertWithChecklistTx(ctx context.Context, tx pgx.Tx, m *model.Milestone) error
	CountByProject(ctx context.Context, projectID uuid.UUID) (int, error)
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]model.Milestone, error)
	ListByProjects(ctx context.Context, projectIDs []uuid.UUID) (map[uuid.UUID][]model.Milestone, error)
	UpdateDates(ctx context.Context, id uuid.UUID, start, end *time.Time) (uuid.UUID, error)
	SetCompletedAtTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, at *time.Time) error
}

type ChecklistStore interface {
	LockOwnerTx(ctx context.Context, tx pgx.Tx, itemID uuid.UUID) (repository.ItemOwner, error)
	SetCompletedTx(ctx context.Context, tx pgx.Tx, itemID uuid.UUID, completed bool, at time.Time) error
	ListByMilestone(ctx context.Context, tx pgx.Tx, milestoneID uuid.UUID) ([]model.ChecklistItem, error)
}

type MemberStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Member, error)
	ListByStatus(ctx context.Context, status string) ([]model.Member, error)
}

type MentoringStore interface {
	CreatePost(ctx context.Context, p *model.MentoringPost) error
	CreateComment(ctx context.Context, c *model.MentoringComment) error
	FindPost(ctx context.Context, id uuid.UUID) (*model.MentoringPost, error)
	ListPosts(ctx context.Context, limit int) ([]model.MentoringPost, error)
	ListComments(ctx context.Context, postID uuid.UUID) ([]model.MentoringComment, error)
	ListRecentPosts(ctx context.Context, memberID uuid.UUID, limit int) ([]model.MentoringPost, error)
	ListRecentComments(ctx context.Context, memberID uuid.UUID, limit int) ([]model.MentoringComment, error)
}

type PeerReviewStore interface {
	Insert(ctx context.Context, pr *model.PeerReview) error
	Complete(ctx context.Context, id uuid.UUID, result string) error
	Fail(ctx context.Context, id uuid.UUID) error
	DeleteBefore(ctx context.Context, memberID uuid.UUID, cutoff time.Time) (int64, error)
	ListBetween(ctx context.Context, memberID uuid.UUID, from, to time.Time) ([]model.PeerReview, error)
}

// inTx runs fn in a transaction, committing on success.
func inTx(ctx context.Context, db TxBeginner, fn func(tx pgx.Tx) error) error {
	tx, err := db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
