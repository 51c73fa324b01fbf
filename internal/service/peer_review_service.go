package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"labboard/internal/model"
)

// Reviewer produces review text for a draft.
type Reviewer interface {
	Review(ctx context.Context, title, content string) (string, error)
}

type SubmitReviewInput struct {
	Title     string     `json:"title" validate:"required,max=200"`
	Content   string     `json:"content" validate:"required"`
	ProjectID *uuid.UUID `json:"project_id"`
}

type PeerReviewService struct {
	reviews  PeerReviewStore
	agent    Reviewer
	validate *validator.Validate
	logger   *zap.Logger
}

func NewPeerReviewService(reviews PeerReviewStore, agent Reviewer, logger *zap.Logger) *PeerReviewService {
	return &PeerReviewService{
		reviews:  reviews,
		agent:    agent,
		validate: validator.New(),
		logger:   logger,
	}
}

// Submit records the request, asks the agent and stores the outcome. An
// agent failure is not an error for the caller; the review comes back with
// status "error".
func (s *PeerReviewService) Submit(ctx context.Context, memberID uuid.UUID, in SubmitReviewInput) (*model.PeerReview, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	pr := &model.PeerReview{
		MemberID:  memberID,
		ProjectID: in.ProjectID,
		Title:     in.Title,
		Content:   in.Content,
	}
	if err := s.reviews.Insert(ctx, pr); err != nil {
		return nil, err
	}

	result, err := s.agent.Review(ctx, in.Title, in.Content)
	if err != nil {
		s.logger.Warn("Peer review agent call failed",
			zap.String("review_id", pr.ID.String()),
			zap.Error(err),
		)
		if ferr := s.reviews.Fail(ctx, pr.ID); ferr != nil {
			return nil, ferr
		}
		pr.Status = model.ReviewError
		return pr, nil
	}

	if err := s.reviews.Complete(ctx, pr.ID, result); err != nil {
		return nil, err
	}
	pr.Status = model.ReviewCompleted
	pr.Result = &result

	s.logger.Info("Peer review completed",
		zap.String("review_id", pr.ID.String()),
		zap.String("member_id", memberID.String()),
	)
	return pr, nil
}

// ListCurrentMonth drops the member's reviews from earlier months and
// returns this month's, newest first. Months are UTC calendar months.
func (s *PeerReviewService) ListCurrentMonth(ctx context.Context, memberID uuid.UUID, now time.Time) ([]model.PeerReview, error) {
	now = now.UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	deleted, err := s.reviews.DeleteBefore(ctx, memberID, monthStart)
	if err != nil {
		return nil, err
	}
	if deleted > 0 {
		s.logger.Info("Expired peer reviews removed",
			zap.String("member_id", memberID.String()),
			zap.Int64("deleted", deleted),
		)
	}

	return s.reviews.ListBetween(ctx, memberID, monthStart, monthStart.AddDate(0, 1, 0))
}
