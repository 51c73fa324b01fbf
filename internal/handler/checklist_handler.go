package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"labboard/internal/service"
	"labboard/pkg/logger"
)

type ChecklistService interface {
	Toggle(ctx context.Context, itemID, actorID uuid.UUID, completed bool) (*service.ToggleResult, error)
}

type ChecklistHandler struct {
	svc    ChecklistService
	logger *zap.Logger
}

func NewChecklistHandler(svc ChecklistService, logger *zap.Logger) *ChecklistHandler {
	return &ChecklistHandler{svc: svc, logger: logger}
}

type toggleRequest struct {
	Completed *bool `json:"is_completed" binding:"required"`
}

func (h *ChecklistHandler) Toggle(c *gin.Context) {
	log := logger.WithTrace(c.Request.Context(), h.logger)
	id, ok := parseID(c, log, "ToggleChecklist")
	if !ok {
		return
	}

	var req toggleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "is_completed required"})
		return
	}

	res, err := h.svc.Toggle(c.Request.Context(), id, callerID(c), *req.Completed)
	if err != nil {
		respondError(c, log, "ToggleChecklist", err)
		return
	}
	c.JSON(http.StatusOK, res)
}
