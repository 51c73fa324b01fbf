package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"labboard/internal/model"
)

const (
	defaultPostLimit = 20
	maxPostLimit     = 100
)

type CreatePostInput struct {
	MeetingDate    string     `json:"meeting_date" validate:"required,datetime=2006-01-02"`
	Content        string     `json:"content" validate:"required,max=20000"`
	NextSteps      string     `json:"next_steps"` // one step per line
	TargetMemberID *uuid.UUID `json:"target_member_id"`
}

type CommentInput struct {
	Content string `json:"content" validate:"required,max=2000"`
}

// PostThread is a post with its comments, oldest first.
type PostThread struct {
	Post     *model.MentoringPost     `json:"post"`
	Comments []model.MentoringComment `json:"comments"`
}

type MentoringService struct {
	mentoring MentoringStore
	validate  *validator.Validate
	logger    *zap.Logger
}

func NewMentoringService(mentoring MentoringStore, logger *zap.Logger) *MentoringService {
	return &MentoringService{mentoring: mentoring, validate: validator.New(), logger: logger}
}

// splitSteps keeps the non-blank lines of s, trimmed.
func splitSteps(s string) []string {
	var steps []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			steps = append(steps, line)
		}
	}
	return steps
}

func (s *MentoringService) CreatePost(ctx context.Context, authorID uuid.UUID, in CreatePostInput) (*model.MentoringPost, error) {
	in.Content = strings.TrimSpace(in.Content)
	if err := s.validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	meeting, _ := time.Parse(time.DateOnly, in.MeetingDate) // format checked by validator

	p := &model.MentoringPost{
		AuthorID:       authorID,
		TargetMemberID: in.TargetMemberID,
		MeetingDate:    meeting,
		Content:        in.Content,
		NextSteps:      splitSteps(in.NextSteps),
	}
	if err := s.mentoring.CreatePost(ctx, p); err != nil {
		return nil, err
	}

	s.logger.Info("Mentoring post created",
		zap.String("post_id", p.ID.String()),
		zap.String("author_id", authorID.String()),
		zap.Int("next_steps", len(p.NextSteps)),
	)
	return p, nil
}

func (s *MentoringService) AddComment(ctx context.Context, postID, authorID uuid.UUID, in CommentInput) (*model.MentoringComment, error) {
	in.Content = strings.TrimSpace(in.Content)
	if err := s.validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	c := &model.MentoringComment{PostID: postID, AuthorID: authorID, Content: in.Content}
	if err := s.mentoring.CreateComment(ctx, c); err != nil {
		return nil, err
	}

	s.logger.Info("Mentoring comment added",
		zap.String("post_id", postID.String()),
		zap.String("comment_id", c.ID.String()),
	)
	return c, nil
}

// ListPosts returns the newest posts. limit falls back to 20 when not
// positive and is capped at 100.
func (s *MentoringService) ListPosts(ctx context.Context, limit int) ([]model.MentoringPost, error) {
	switch {
	case limit <= 0:
		limit = defaultPostLimit
	case limit > maxPostLimit:
		limit = maxPostLimit
	}
	return s.mentoring.ListPosts(ctx, limit)
}

func (s *MentoringService) Thread(ctx context.Context, postID uuid.UUID) (*PostThread, error) {
	p, err := s.mentoring.FindPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	comments, err := s.mentoring.ListComments(ctx, postID)
	if err != nil {
		return nil, err
	}
	return &PostThread{Post: p, Comments: comments}, nil
}
