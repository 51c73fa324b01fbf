package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"labboard/internal/model"
	"labboard/internal/repository"
	"labboard/internal/service"
	"labboard/pkg/rbac"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeProjectService struct {
	created  service.CreateProjectInput
	detail   *service.ProjectDetail
	err      error
	gotStart *time.Time
	gotEnd   *time.Time
	member   service.MemberRoleInput
}

func (f *fakeProjectService) Create(_ context.Context, creatorID uuid.UUID, in service.CreateProjectInput) (*model.Project, error) {
	f.created = in
	if f.err != nil {
		return nil, f.err
	}
	return &model.Project{ID: uuid.New(), Title: in.Title, CreatedBy: creatorID}, nil
}

func (f *fakeProjectService) Detail(context.Context, uuid.UUID, time.Time) (*service.ProjectDetail, error) {
	return f.detail, f.err
}

func (f *fakeProjectService) UpdateMilestoneDates(_ context.Context, _ uuid.UUID, start, end *time.Time) (uuid.UUID, error) {
	f.gotStart, f.gotEnd = start, end
	return uuid.New(), f.err
}

func (f *fakeProjectService) AddAuthor(_ context.Context, projectID uuid.UUID, in service.AuthorInput) (*model.ProjectAuthor, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &model.ProjectAuthor{ID: uuid.New(), ProjectID: projectID, Name: in.Name, Role: in.Role, SortOrder: 1}, nil
}

func (f *fakeProjectService) AddMember(_ context.Context, _ uuid.UUID, in service.MemberRoleInput) error {
	f.member = in
	return f.err
}

type fakeChecklistService struct {
	completed bool
}

func (f *fakeChecklistService) Toggle(_ context.Context, itemID, _ uuid.UUID, completed bool) (*service.ToggleResult, error) {
	f.completed = completed
	return &service.ToggleResult{ItemID: itemID, Completed: completed, MilestoneProgress: 50}, nil
}

type fakePerformanceService struct {
	called bool
	listed uuid.UUID
}

func (f *fakePerformanceService) Report(_ context.Context, id uuid.UUID, _ time.Time) (*service.PerformanceReport, error) {
	f.called = true
	return &service.PerformanceReport{Member: &model.Member{ID: id}}, nil
}

func (f *fakePerformanceService) Projects(_ context.Context, memberID uuid.UUID, _ time.Time) ([]service.ProjectSummary, error) {
	f.listed = memberID
	return []service.ProjectSummary{{ID: uuid.New(), Title: "Alpha", Role: model.RoleFirstAuthor}}, nil
}

type fakeReplayer struct {
	limit int
	err   error
}

func (f *fakeReplayer) ReplayEvent(context.Context, uuid.UUID) error { return f.err }

func (f *fakeReplayer) ReplayFailedEvents(_ context.Context, limit int) (int, error) {
	f.limit = limit
	return 3, f.err
}

// newTestEngine installs caller identity the way the auth middleware does.
func newTestEngine(caller uuid.UUID, role string) *gin.Engine {
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(CtxMemberID, caller)
		c.Set(CtxRole, role)
		c.Next()
	})
	return r
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestProjectHandler_Create(t *testing.T) {
	svc := &fakeProjectService{}
	r := newTestEngine(uuid.New(), rbac.RoleMember)
	r.POST("/projects", NewProjectHandler(svc, zap.NewNop()).CreateProject)

	w := do(r, http.MethodPost, "/projects", `{"title":"Graph pruning","deadline":"2025-06-30"}`)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "2025-06-30", svc.created.Deadline)

	svc.err = fmt.Errorf("%w: title required", service.ErrInvalidInput)
	w = do(r, http.MethodPost, "/projects", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodPost, "/projects", `not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProjectHandler_Get(t *testing.T) {
	svc := &fakeProjectService{detail: &service.ProjectDetail{OverallProgress: 57.5}}
	r := newTestEngine(uuid.New(), rbac.RoleMember)
	r.GET("/projects/:id", NewProjectHandler(svc, zap.NewNop()).GetProject)

	w := do(r, http.MethodGet, "/projects/"+uuid.NewString(), "")
	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 57.5, body["overall_progress"])

	w = do(r, http.MethodGet, "/projects/not-a-uuid", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	svc.err = fmt.Errorf("project %w", repository.ErrNotFound)
	w = do(r, http.MethodGet, "/projects/"+uuid.NewString(), "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestProjectHandler_UpdateMilestoneDates(t *testing.T) {
	svc := &fakeProjectService{}
	r := newTestEngine(uuid.New(), rbac.RoleMember)
	r.PATCH("/milestones/:id/dates", NewProjectHandler(svc, zap.NewNop()).UpdateMilestoneDates)

	w := do(r, http.MethodPatch, "/milestones/"+uuid.NewString()+"/dates", `{"start_date":"2025-03-01","end_date":null}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, svc.gotStart)
	assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), *svc.gotStart)
	assert.Nil(t, svc.gotEnd)

	w = do(r, http.MethodPatch, "/milestones/"+uuid.NewString()+"/dates", `{"end_date":"03/01/2025"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestChecklistHandler_Toggle(t *testing.T) {
	svc := &fakeChecklistService{}
	r := newTestEngine(uuid.New(), rbac.RoleMember)
	r.POST("/checklist-items/:id/toggle", NewChecklistHandler(svc, zap.NewNop()).Toggle)

	w := do(r, http.MethodPost, "/checklist-items/"+uuid.NewString()+"/toggle", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodPost, "/checklist-items/"+uuid.NewString()+"/toggle", `{"is_completed":false}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, svc.completed)
	assert.Contains(t, w.Body.String(), `"milestone_progress":50`)
}

func TestPerformanceHandler_Access(t *testing.T) {
	self := uuid.New()
	other := uuid.New()

	tests := []struct {
		name   string
		role   string
		target uuid.UUID
		want   int
	}{
		{"own report", rbac.RoleMember, self, http.StatusOK},
		{"member reading other", rbac.RoleMember, other, http.StatusForbidden},
		{"professor reading other", rbac.RoleProfessor, other, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakePerformanceService{}
			r := newTestEngine(self, tt.role)
			r.GET("/members/:id/performance", NewPerformanceHandler(svc, zap.NewNop()).GetPerformance)

			w := do(r, http.MethodGet, "/members/"+tt.target.String()+"/performance", "")
			assert.Equal(t, tt.want, w.Code)
			assert.Equal(t, tt.want == http.StatusOK, svc.called)
		})
	}
}

func TestOutboxHandler_ReplayFailed(t *testing.T) {
	rep := &fakeReplayer{}
	r := newTestEngine(uuid.New(), rbac.RoleProfessor)
	h := NewOutboxHandler(rep, zap.NewNop())
	r.POST("/admin/outbox/replay-failed", h.ReplayFailed)

	w := do(r, http.MethodPost, "/admin/outbox/replay-failed", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, defaultReplayLimit, rep.limit)
	assert.JSONEq(t, `{"replayed":3}`, w.Body.String())

	w = do(r, http.MethodPost, "/admin/outbox/replay-failed?limit=5", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 5, rep.limit)

	w = do(r, http.MethodPost, "/admin/outbox/replay-failed?limit=-1", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProjectHandler_AddAuthor(t *testing.T) {
	svc := &fakeProjectService{}
	r := newTestEngine(uuid.New(), rbac.RoleMember)
	r.POST("/projects/:id/authors", NewProjectHandler(svc, zap.NewNop()).AddAuthor)
	path := "/projects/" + uuid.NewString() + "/authors"

	w := do(r, http.MethodPost, path, `{"name":"Dana Kim","role":"co_author"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"name":"Dana Kim"`)

	svc.err = fmt.Errorf("project author %w", repository.ErrConflict)
	w = do(r, http.MethodPost, path, `{"name":"Dana Kim","role":"co_author"}`)
	assert.Equal(t, http.StatusConflict, w.Code)

	svc.err = fmt.Errorf("project %w", repository.ErrNotFound)
	w = do(r, http.MethodPost, path, `{"name":"Dana Kim","role":"co_author"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestProjectHandler_AddMember(t *testing.T) {
	svc := &fakeProjectService{}
	r := newTestEngine(uuid.New(), rbac.RoleMember)
	r.POST("/projects/:id/members", NewProjectHandler(svc, zap.NewNop()).AddMember)
	member := uuid.New()

	w := do(r, http.MethodPost, "/projects/"+uuid.NewString()+"/members",
		`{"member_id":"`+member.String()+`","role":"corresponding"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, member, svc.member.MemberID)
	assert.Equal(t, model.RoleCorresponding, svc.member.Role)

	w = do(r, http.MethodPost, "/projects/"+uuid.NewString()+"/members", `{"member_id":"nope"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPerformanceHandler_ListProjectsUsesCaller(t *testing.T) {
	caller := uuid.New()
	svc := &fakePerformanceService{}
	r := newTestEngine(caller, rbac.RoleMember)
	r.GET("/projects", NewPerformanceHandler(svc, zap.NewNop()).ListProjects)

	w := do(r, http.MethodGet, "/projects", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, caller, svc.listed)
	assert.Contains(t, w.Body.String(), `"total":1`)
}

type fakeMemberService struct{}

func (fakeMemberService) Roster(context.Context) ([]model.Member, error) {
	return []model.Member{{Name: "Hana", Position: "professor"}, {Name: "Jun", Position: "ms"}}, nil
}

func TestMemberHandler_List(t *testing.T) {
	r := newTestEngine(uuid.New(), rbac.RoleMember)
	r.GET("/members", NewMemberHandler(fakeMemberService{}, zap.NewNop()).List)

	w := do(r, http.MethodGet, "/members", "")
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Members []model.Member `json:"members"`
		Total   int            `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 2, body.Total)
	assert.Equal(t, "Hana", body.Members[0].Name)
}

type fakeMentoringService struct {
	author  uuid.UUID
	post    service.CreatePostInput
	limit   int
	thread  *service.PostThread
	err     error
	comment service.CommentInput
}

func (f *fakeMentoringService) CreatePost(_ context.Context, authorID uuid.UUID, in service.CreatePostInput) (*model.MentoringPost, error) {
	f.author, f.post = authorID, in
	if f.err != nil {
		return nil, f.err
	}
	return &model.MentoringPost{ID: uuid.New(), AuthorID: authorID, Content: in.Content}, nil
}

func (f *fakeMentoringService) AddComment(_ context.Context, postID, authorID uuid.UUID, in service.CommentInput) (*model.MentoringComment, error) {
	f.author, f.comment = authorID, in
	if f.err != nil {
		return nil, f.err
	}
	return &model.MentoringComment{ID: uuid.New(), PostID: postID, AuthorID: authorID, Content: in.Content}, nil
}

func (f *fakeMentoringService) ListPosts(_ context.Context, limit int) ([]model.MentoringPost, error) {
	f.limit = limit
	return nil, f.err
}

func (f *fakeMentoringService) Thread(context.Context, uuid.UUID) (*service.PostThread, error) {
	return f.thread, f.err
}

func TestMentoringHandler(t *testing.T) {
	caller := uuid.New()
	svc := &fakeMentoringService{}
	h := NewMentoringHandler(svc, zap.NewNop())
	r := newTestEngine(caller, rbac.RoleMember)
	r.POST("/mentoring/posts", h.CreatePost)
	r.GET("/mentoring/posts", h.ListPosts)
	r.GET("/mentoring/posts/:id", h.GetPost)
	r.POST("/mentoring/posts/:id/comments", h.AddComment)

	w := do(r, http.MethodPost, "/mentoring/posts", `{"meeting_date":"2025-03-04","content":"Sync","next_steps":"a\nb"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, caller, svc.author)
	assert.Equal(t, "a\nb", svc.post.NextSteps)

	w = do(r, http.MethodGet, "/mentoring/posts?limit=5", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 5, svc.limit)
	w = do(r, http.MethodGet, "/mentoring/posts?limit=zero", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodPost, "/mentoring/posts/"+uuid.NewString()+"/comments", `{"content":"Nice"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "Nice", svc.comment.Content)

	svc.thread = &service.PostThread{Post: &model.MentoringPost{Content: "Sync"}}
	w = do(r, http.MethodGet, "/mentoring/posts/"+uuid.NewString(), "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"content":"Sync"`)

	svc.err = fmt.Errorf("mentoring post %w", repository.ErrNotFound)
	w = do(r, http.MethodPost, "/mentoring/posts/"+uuid.NewString()+"/comments", `{"content":"Nice"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
