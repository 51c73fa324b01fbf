package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"labboard/internal/model"
	"labboard/pkg/logger"
)

type MemberService interface {
	Roster(ctx context.Context) ([]model.Member, error)
}

type MemberHandler struct {
	svc    MemberService
	logger *zap.Logger
}

func NewMemberHandler(svc MemberService, logger *zap.Logger) *MemberHandler {
	return &MemberHandler{svc: svc, logger: logger}
}

func (h *MemberHandler) List(c *gin.Context) {
	log := logger.WithTrace(c.Request.Context(), h.logger)

	members, err := h.svc.Roster(c.Request.Context())
	if err != nil {
		respondError(c, log, "ListMembers", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"members": members, "total": len(members)})
}
