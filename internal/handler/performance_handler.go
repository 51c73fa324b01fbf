package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"labboard/internal/service"
	"labboard/pkg/logger"
	"labboard/pkg/rbac"
)

type PerformanceService interface {
	Report(ctx context.Context, memberID uuid.UUID, now time.Time) (*service.PerformanceReport, error)
	Projects(ctx context.Context, memberID uuid.UUID, now time.Time) ([]service.ProjectSummary, error)
}

type PerformanceHandler struct {
	svc    PerformanceService
	logger *zap.Logger
	now    func() time.Time
}

func NewPerformanceHandler(svc PerformanceService, logger *zap.Logger) *PerformanceHandler {
	return &PerformanceHandler{svc: svc, logger: logger, now: time.Now}
}

// GetPerformance serves a member's own report; other members' reports need
// performance:read_any.
func (h *PerformanceHandler) GetPerformance(c *gin.Context) {
	log := logger.WithTrace(c.Request.Context(), h.logger)
	id, ok := parseID(c, log, "GetPerformance")
	if !ok {
		return
	}

	if id != callerID(c) {
		if err := rbac.CheckPermission(callerRole(c), rbac.PermissionReadAnyMember); err != nil {
			log.Warn("GetPerformance: forbidden",
				zap.String("target_member_id", id.String()),
				zap.Error(err),
			)
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
			return
		}
	}

	report, err := h.svc.Report(c.Request.Context(), id, h.now())
	if err != nil {
		respondError(c, log, "GetPerformance", err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// ListProjects serves the caller's own project cards.
func (h *PerformanceHandler) ListProjects(c *gin.Context) {
	log := logger.WithTrace(c.Request.Context(), h.logger)

	projects, err := h.svc.Projects(c.Request.Context(), callerID(c), h.now())
	if err != nil {
		respondError(c, log, "ListProjects", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"projects": projects, "total": len(projects)})
}
