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

const recalcHandlerName = "recalculate_progress"

type ProgressRecalculator interface {
	Recalculate(ctx context.Context, projectID uuid.UUID, trigger string) (float64, error)
}

// ChecklistToggledHandler refreshes a project's stored overall progress
// after one of its checklist items changed.
type ChecklistToggledHandler struct {
	recalc  ProgressRecalculator
	deduper Deduper
	policy  failurePolicy
	logger  *zap.Logger
}

func NewChecklistToggledHandler(recalc ProgressRecalculator, deduper Deduper, retries RetryCounter, dlq DLQPublisher, logger *zap.Logger) *ChecklistToggledHandler {
	return &ChecklistToggledHandler{
		recalc:  recalc,
		deduper: deduper,
		policy: failurePolicy{
			handler:    recalcHandlerName,
			routingKey: mq.RoutingChecklistToggled,
			retries:    retries,
			dlq:        dlq,
			maxRetries: DefaultMaxRetries,
			logger:     logger,
		},
		logger: logger,
	}
}

func (h *ChecklistToggledHandler) Handle(ctx context.Context, raw json.RawMessage) error {
	var p mqcontracts.ChecklistToggledPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		h.logger.Error("Failed to unmarshal ChecklistToggledPayload", zap.Error(err))
		h.policy.deadLetter(ctx, raw, "json_decode_error")
		return nil
	}
	if p.TraceID != "" {
		ctx = trace.WithContext(ctx, p.TraceID)
	}
	log := logger.WithTrace(ctx, h.logger)

	projectID, err := uuid.Parse(p.ProjectID)
	if err != nil {
		log.Error("Invalid project_id in checklist.toggled event", zap.String("project_id", p.ProjectID))
		h.policy.deadLetter(ctx, raw, "invalid_project_id")
		return nil
	}

	id := p.EventID
	if id == "" {
		id = p.ItemID + ":" + p.OccurredAt.String()
	}
	if !h.deduper.AcquireOnce(ctx, recalcHandlerName, id) {
		return nil
	}

	overall, err := h.recalc.Recalculate(ctx, projectID, "event")
	if err != nil {
		h.deduper.Release(ctx, recalcHandlerName, id)
		return h.policy.onFailure(ctx, id, raw, err)
	}

	h.policy.onSuccess(ctx, id)
	log.Info("Overall progress updated from checklist toggle",
		zap.String("project_id", p.ProjectID),
		zap.String("item_id", p.ItemID),
		zap.Bool("completed", p.Completed),
		zap.Float64("overall_progress", overall),
	)
	return nil
}
