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

type ProjectService interface {
	Create(ctx context.Context, creatorID uuid.UUID, in service.CreateProjectInput) (*model.Project, error)
	Detail(ctx context.Context, projectID uuid.UUID, today time.Time) (*service.ProjectDetail, error)
	UpdateMilestoneDates(ctx context.Context, milestoneID uuid.UUID, start, end *time.Time) (uuid.UUID, error)
	AddAuthor(ctx context.Context, projectID uuid.UUID, in service.AuthorInput) (*model.ProjectAuthor, error)
	AddMember(ctx context.Context, projectID uuid.UUID, in service.MemberRoleInput) error
}

type ProjectHandler struct {
	svc    ProjectService
	logger *zap.Logger
	now    func() time.Time
}

func NewProjectHandler(svc ProjectService, logger *zap.Logger) *ProjectHandler {
	return &ProjectHandler{svc: svc, logger: logger, now: time.Now}
}

func (h *ProjectHandler) CreateProject(c *gin.Context) {
	log := logger.WithTrace(c.Request.Context(), h.logger)

	var in service.CreateProjectInput
	if err := c.ShouldBindJSON(&in); err != nil {
		log.Warn("CreateProject: invalid body", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	p, err := h.svc.Create(c.Request.Context(), callerID(c), in)
	if err != nil {
		respondError(c, log, "CreateProject", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"project": p})
}

func (h *ProjectHandler) GetProject(c *gin.Context) {
	log := logger.WithTrace(c.Request.Context(), h.logger)
	id, ok := parseID(c, log, "GetProject")
	if !ok {
		return
	}

	d, err := h.svc.Detail(c.Request.Context(), id, h.now())
	if err != nil {
		respondError(c, log, "GetProject", err)
		return
	}
	c.JSON(http.StatusOK, d)
}

type updateDatesRequest struct {
	StartDate *string `json:"start_date"`
	EndDate   *string `json:"end_date"`
}

func parseDate(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.DateOnly, *s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (h *ProjectHandler) UpdateMilestoneDates(c *gin.Context) {
	log := logger.WithTrace(c.Request.Context(), h.logger)
	id, ok := parseID(c, log, "UpdateMilestoneDates")
	if !ok {
		return
	}

	var req updateDatesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	start, err := parseDate(req.StartDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start_date must be YYYY-MM-DD"})
		return
	}
	end, err := parseDate(req.EndDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "end_date must be YYYY-MM-DD"})
		return
	}

	projectID, err := h.svc.UpdateMilestoneDates(c.Request.Context(), id, start, end)
	if err != nil {
		respondError(c, log, "UpdateMilestoneDates", err)
		return
	}

	log.Info("UpdateMilestoneDates: success",
		zap.String("milestone_id", id.String()),
		zap.String("project_id", projectID.String()),
	)
	c.JSON(http.StatusOK, gin.H{"status": "ok", "project_id": projectID})
}

func (h *ProjectHandler) AddAuthor(c *gin.Context) {
	log := logger.WithTrace(c.Request.Context(), h.logger)
	id, ok := parseID(c, log, "AddAuthor")
	if !ok {
		return
	}

	var in service.AuthorInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	a, err := h.svc.AddAuthor(c.Request.Context(), id, in)
	if err != nil {
		respondError(c, log, "AddAuthor", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"author": a})
}

func (h *ProjectHandler) AddMember(c *gin.Context) {
	log := logger.WithTrace(c.Request.Context(), h.logger)
	id, ok := parseID(c, log, "AddMember")
	if !ok {
		return
	}

	var in service.MemberRoleInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.svc.AddMember(c.Request.Context(), id, in); err != nil {
		respondError(c, log, "AddMember", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
