package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"labboard/pkg/logger"
)

const defaultReplayLimit = 100

type OutboxReplayer interface {
	ReplayEvent(ctx context.Context, eventID uuid.UUID) error
	ReplayFailedEvents(ctx context.Context, limit int) (int, error)
}

type OutboxHandler struct {
	replayer OutboxReplayer
	logger   *zap.Logger
}

func NewOutboxHandler(replayer OutboxReplayer, logger *zap.Logger) *OutboxHandler {
	return &OutboxHandler{replayer: replayer, logger: logger}
}

func (h *OutboxHandler) ReplayEvent(c *gin.Context) {
	log := logger.WithTrace(c.Request.Context(), h.logger)
	id, ok := parseID(c, log, "ReplayEvent")
	if !ok {
		return
	}

	if err := h.replayer.ReplayEvent(c.Request.Context(), id); err != nil {
		respondError(c, log, "ReplayEvent", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "replayed", "event_id": id})
}

func (h *OutboxHandler) ReplayFailed(c *gin.Context) {
	log := logger.WithTrace(c.Request.Context(), h.logger)

	limit := defaultReplayLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = n
	}

	n, err := h.replayer.ReplayFailedEvents(c.Request.Context(), limit)
	if err != nil {
		respondError(c, log, "ReplayFailed", err)
		return
	}
	log.Info("ReplayFailed: success", zap.Int("replayed", n))
	c.JSON(http.StatusOK, gin.H{"replayed": n})
}
