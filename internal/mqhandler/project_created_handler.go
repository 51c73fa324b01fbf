package mqhandler

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"go.uber.org/zap"

	mqcontracts "labboard/contracts/mq"
	"labboard/pkg/logger"
	"labboard/pkg/mq"
	"labboard/pkg/trace"
)

const seedHandlerName = "seed_milestones"

type MilestoneSeeder interface {
	SeedMilestones(ctx context.Context, projectID uuid.UUID) (int, error)
}

// ProjectCreatedHandler seeds the stage template for a new project.
type ProjectCreatedHandler struct {
	seeder  MilestoneSeeder
	deduper Deduper
	policy  failurePolicy
	logger  *zap.Logger
}

func NewProjectCreatedHandler(seeder MilestoneSeeder, deduper Deduper, retries RetryCounter, dlq DLQPublisher, logger *zap.Logger) *ProjectCreatedHandler {
	return &ProjectCreatedHandler{
		seeder:  seeder,
		deduper: deduper,
		policy: failurePolicy{
			handler:    seedHandlerName,
			routingKey: mq.RoutingProjectCreated,
			retries:    retries,
			dlq:        dlq,
			maxRetries: DefaultMaxRetries,
			logger:     logger,
		},
		logger: logger,
	}
}

func (h *ProjectCreatedHandler) Handle(ctx context.Context, raw json.RawMessage) error {
	var p mqcontracts.ProjectCreatedPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		h.logger.Error("Failed to unmarshal ProjectCreatedPayload", zap.Error(err))
		h.policy.deadLetter(ctx, raw, "json_decode_error")
		return nil
	}
	if p.TraceID != "" {
		ctx = trace.WithContext(ctx, p.TraceID)
	}
	log := logger.WithTrace(ctx, h.logger)

	projectID, err := uuid.Parse(p.ProjectID)
	if err != nil {
		log.Error("Invalid project_id in project.created event", zap.String("project_id", p.ProjectID))
		h.policy.deadLetter(ctx, raw, "invalid_project_id")
		return nil
	}

	if !h.deduper.AcquireOnce(ctx, seedHandlerName, p.ProjectID) {
		return nil
	}

	log.Info("Handling project.created event",
		zap.String("project_id", p.ProjectID),
		zap.String("event_id", p.EventID),
		zap.String("title", p.Title),
	)

	n, err := h.seeder.SeedMilestones(ctx, projectID)
	if err != nil {
		h.deduper.Release(ctx, seedHandlerName, p.ProjectID)
		return h.policy.onFailure(ctx, p.ProjectID, raw, err)
	}

	h.policy.onSuccess(ctx, p.ProjectID)
	log.Info("Project milestones ready",
		zap.String("project_id", p.ProjectID),
		zap.Int("seeded", n),
	)
	return nil
}
