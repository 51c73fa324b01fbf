package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"labboard/internal/model"
	"labboard/internal/service"
	"labboard/pkg/logger"
)

type PeerReviewService interface {
	Submit(ctx context.Context, memberID uuid.UUID, in service.SubmitReviewInput) (*model.PeerReview, error)
	ListCurrentMonth(ctx context.Context, memberID uuid.UUID, now time.Time) ([]model.PeerReview, error)
}

type PeerReviewHandler struct {
	svc    PeerReviewService
	logger *zap.Logger
	now    func() time.Time
}

func NewPeerReviewHandler(svc PeerReviewService, logger *zap.Logger) *PeerReviewHandler {
	return &PeerReviewHandler{svc: svc, logger: logger, now: time.Now}
}

func (h *PeerReviewHandler) Submit(c *gin.Context) {
	log := logger.WithTrace(c.Request.Context(), h.logger)

	var in service.SubmitReviewInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	pr, err := h.svc.Submit(c.Request.Context(), callerID(c), in)
	if err != nil {
		respondError(c, log, "SubmitPeerReview", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"review": pr})
}

func (h *PeerReviewHandler) List(c *gin.Context) {
	log := logger.WithTrace(c.Request.Context(), h.logger)

	reviews, err := h.svc.ListCurrentMonth(c.Request.Context(), callerID(c), h.now())
	if err != nil {
		respondError(c, log, "ListPeerReviews", err)
		return
	}
	if reviews == nil {
		reviews = []model.PeerReview{}
	}
	c.JSON(http.StatusOK, gin.H{"reviews": reviews})
}
