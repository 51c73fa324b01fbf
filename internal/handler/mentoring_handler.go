package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"labboard/internal/model"
	"labboard/internal/service"
	"labboard/pkg/logger"
)

type MentoringService interface {
	CreatePost(ctx context.Context, authorID uuid.UUID, in service.CreatePostInput) (*model.MentoringPost, error)
	AddComment(ctx context.Context, postID, authorID uuid.UUID, in service.CommentInput) (*model.MentoringComment, error)
	ListPosts(ctx context.Context, limit int) ([]model.MentoringPost, error)
	Thread(ctx context.Context, postID uuid.UUID) (*service.PostThread, error)
}

type MentoringHandler struct {
	svc    MentoringService
	logger *zap.Logger
}

func NewMentoringHandler(svc MentoringService, logger *zap.Logger) *MentoringHandler {
	return &MentoringHandler{svc: svc, logger: logger}
}

func (h *MentoringHandler) CreatePost(c *gin.Context) {
	log := logger.WithTrace(c.Request.Context(), h.logger)

	var in service.CreatePostInput
	if err := c.ShouldBindJSON(&in); err != nil {
		log.Warn("CreatePost: invalid body", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	p, err := h.svc.CreatePost(c.Request.Context(), callerID(c), in)
	if err != nil {
		respondError(c, log, "CreatePost", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"post": p})
}

func (h *MentoringHandler) ListPosts(c *gin.Context) {
	log := logger.WithTrace(c.Request.Context(), h.logger)

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = n
	}

	posts, err := h.svc.ListPosts(c.Request.Context(), limit)
	if err != nil {
		respondError(c, log, "ListPosts", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"posts": posts})
}

func (h *MentoringHandler) GetPost(c *gin.Context) {
	log := logger.WithTrace(c.Request.Context(), h.logger)
	id, ok := parseID(c, log, "GetPost")
	if !ok {
		return
	}

	thread, err := h.svc.Thread(c.Request.Context(), id)
	if err != nil {
		respondError(c, log, "GetPost", err)
		return
	}
	c.JSON(http.StatusOK, thread)
}

func (h *MentoringHandler) AddComment(c *gin.Context) {
	log := logger.WithTrace(c.Request.Context(), h.logger)
	id, ok := parseID(c, log, "AddComment")
	if !ok {
		return
	}

	var in service.CommentInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	comment, err := h.svc.AddComment(c.Request.Context(), id, callerID(c), in)
	if err != nil {
		respondError(c, log, "AddComment", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"comment": comment})
}
