package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"labboard/internal/handler"
	"labboard/pkg/otel"
	"labboard/pkg/rbac"
)

// Pinger reports database readiness. *pgxpool.Pool satisfies it.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handlers struct {
	Projects    *handler.ProjectHandler
	Checklists  *handler.ChecklistHandler
	Performance *handler.PerformanceHandler
	PeerReviews *handler.PeerReviewHandler
	Members     *handler.MemberHandler
	Mentoring   *handler.MentoringHandler
	Outbox      *handler.OutboxHandler
}

type Router struct {
	Engine *gin.Engine
}

func NewRouter(h Handlers, jwtSecret string, db Pinger, logger *zap.Logger) *Router {
	r := gin.New()
	r.Use(gin.Recovery(), TraceMiddleware(), otel.GinMiddleware(), RequestLogger(logger))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.HEAD("/healthz", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	r.GET("/readyz", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 1*time.Second)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "db_not_ready", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	auth := r.Group("/")
	auth.Use(AuthMiddleware(jwtSecret))
	{
		auth.GET("/projects", RequirePermission(rbac.PermissionReadProject), h.Performance.ListProjects)
		auth.POST("/projects", RequirePermission(rbac.PermissionCreateProject), h.Projects.CreateProject)
		auth.GET("/projects/:id", RequirePermission(rbac.PermissionReadProject), h.Projects.GetProject)
		auth.POST("/projects/:id/authors", RequirePermission(rbac.PermissionUpdateProject), h.Projects.AddAuthor)
		auth.POST("/projects/:id/members", RequirePermission(rbac.PermissionUpdateProject), h.Projects.AddMember)
		auth.PATCH("/milestones/:id/dates", RequirePermission(rbac.PermissionUpdateMilestone), h.Projects.UpdateMilestoneDates)
		auth.POST("/checklist-items/:id/toggle", RequirePermission(rbac.PermissionToggleChecklist), h.Checklists.Toggle)

		auth.GET("/members", RequirePermission(rbac.PermissionReadMembers), h.Members.List)
		auth.GET("/members/:id/performance", RequirePermission(rbac.PermissionReadPerformance), h.Performance.GetPerformance)

		mentoring := auth.Group("/mentoring/posts")
		mentoring.GET("", RequirePermission(rbac.PermissionReadMentoring), h.Mentoring.ListPosts)
		mentoring.POST("", RequirePermission(rbac.PermissionWriteMentoring), h.Mentoring.CreatePost)
		mentoring.GET("/:id", RequirePermission(rbac.PermissionReadMentoring), h.Mentoring.GetPost)
		mentoring.POST("/:id/comments", RequirePermission(rbac.PermissionWriteMentoring), h.Mentoring.AddComment)

		auth.POST("/peer-reviews", RequirePermission(rbac.PermissionRequestReview), h.PeerReviews.Submit)
		auth.GET("/peer-reviews", RequirePermission(rbac.PermissionRequestReview), h.PeerReviews.List)

		admin := auth.Group("/admin/outbox", RequirePermission(rbac.PermissionReplayOutbox))
		admin.POST("/:id/replay", h.Outbox.ReplayEvent)
		admin.POST("/replay-failed", h.Outbox.ReplayFailed)
	}

	return &Router{Engine: r}
}

func (r *Router) Handler() http.Handler {
	return r.Engine
}
