package service

import (
	"context"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"labboard/internal/model"
	"labboard/internal/progress"
	"labboard/pkg/metrics"
	"labboard/pkg/otel"
)

type ProgressService struct {
	projects   ProjectStore
	milestones MilestoneStore
	logger     *zap.Logger
}

func NewProgressService(projects ProjectStore, milestones MilestoneStore, logger *zap.Logger) *ProgressService {
	return &ProgressService{projects: projects, milestones: milestones, logger: logger}
}

// Recalculate recomputes a project's weighted progress and stores it.
// trigger labels the caller in metrics ("event" or "cli").
func (s *ProgressService) Recalculate(ctx context.Context, projectID uuid.UUID, trigger string) (float64, error) {
	ctx, span := otel.StartSpan(ctx, "progress.recalculate")
	defer span.End()
	span.SetAttributes(
		attribute.String("project.id", projectID.String()),
		attribute.String("trigger", trigger),
	)

	ms, err := s.milestones.ListByProject(ctx, projectID)
	if err != nil {
		span.RecordError(err)
		metrics.IncrementRecalculation(trigger, "error")
		return 0, err
	}

	overall := progress.ProjectProgress(model.CoreMilestones(ms))
	if err := s.projects.UpdateOverallProgress(ctx, projectID, overall); err != nil {
		span.RecordError(err)
		metrics.IncrementRecalculation(trigger, "error")
		return 0, err
	}

	metrics.IncrementRecalculation(trigger, "success")
	s.logger.Info("Project progress recalculated",
		zap.String("project_id", projectID.String()),
		zap.String("trigger", trigger),
		zap.Float64("overall_progress", overall),
		zap.Int("milestones", len(ms)),
	)
	return overall, nil
}
