package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"labboard/internal/model"
	"labboard/internal/repository"
	"labboard/pkg/outbox"
)

var nopLogger = zap.NewNop()

type fakeTx struct {
	pgx.Tx
	committed  bool
	rolledBack bool
}

func (t *fakeTx) Commit(context.Context) error {
	t.committed = true
	return nil
}

func (t *fakeTx) Rollback(context.Context) error {
	if !t.committed {
		t.rolledBack = true
	}
	return nil
}

type fakeDB struct {
	txs []*fakeTx
}

func (d *fakeDB) Begin(context.Context) (pgx.Tx, error) {
	tx := &fakeTx{}
	d.txs = append(d.txs, tx)
	return tx, nil
}

func (d *fakeDB) last() *fakeTx { return d.txs[len(d.txs)-1] }

type fakeOutbox struct {
	events []*outbox.Event
	err    error
}

func (o *fakeOutbox) InsertEvent(_ context.Context, _ pgx.Tx, e *outbox.Event) error {
	if o.err != nil {
		return o.err
	}
	o.events = append(o.events, e)
	return nil
}

type memberRole struct {
	project uuid.UUID
	member  uuid.UUID
	role    string
}

type fakeProjects struct {
	byID     map[uuid.UUID]*model.Project
	roles    []memberRole
	byMember []model.Membership
	byAuthor map[string][]model.Membership
	authors  map[uuid.UUID][]model.ProjectAuthor
}

func newFakeProjects() *fakeProjects {
	return &fakeProjects{
		byID:     map[uuid.UUID]*model.Project{},
		byAuthor: map[string][]model.Membership{},
		authors:  map[uuid.UUID][]model.ProjectAuthor{},
	}
}

func (f *fakeProjects) InsertTx(_ context.Context, _ pgx.Tx, p *model.Project) error {
	cp := *p
	f.byID[p.ID] = &cp
	return nil
}

func (f *fakeProjects) AddMemberTx(_ context.Context, _ pgx.Tx, projectID, memberID uuid.UUID, role string) error {
	if _, ok := f.byID[projectID]; !ok {
		return repository.ErrNotFound
	}
	f.roles = append(f.roles, memberRole{projectID, memberID, role})
	return nil
}

func (f *fakeProjects) FindByID(_ context.Context, id uuid.UUID) (*model.Project, error) {
	p, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return p, nil
}

func (f *fakeProjects) UpdateOverallProgress(_ context.Context, id uuid.UUID, overall float64) error {
	p, ok := f.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	p.OverallProgress = overall
	return nil
}

func (f *fakeProjects) ListByMember(context.Context, uuid.UUID) ([]model.Membership, error) {
	return f.byMember, nil
}

func (f *fakeProjects) ListByAuthorName(_ context.Context, name string) ([]model.Membership, error) {
	return f.byAuthor[name], nil
}

func (f *fakeProjects) AddAuthor(_ context.Context, a *model.ProjectAuthor) error {
	p, ok := f.byID[a.ProjectID]
	if !ok {
		return repository.ErrNotFound
	}
	for _, existing := range f.authors[a.ProjectID] {
		if existing.Name == a.Name {
			return repository.ErrConflict
		}
	}
	a.ID = uuid.New()
	a.SortOrder = len(f.authors[a.ProjectID]) + 1
	f.authors[a.ProjectID] = append(f.authors[a.ProjectID], *a)
	f.byAuthor[a.Name] = append(f.byAuthor[a.Name], model.Membership{Project: *p, Role: a.Role})
	return nil
}

func (f *fakeProjects) ListAuthors(_ context.Context, projectID uuid.UUID) ([]model.ProjectAuthor, error) {
	return f.authors[projectID], nil
}

type fakeMilestones struct {
	byProject map[uuid.UUID][]model.Milestone
	completed map[uuid.UUID]*time.Time
	inserted  int
	dates     map[uuid.UUID][2]*time.Time
}

func newFakeMilestones() *fakeMilestones {
	return &fakeMilestones{
		byProject: map[uuid.UUID][]model.Milestone{},
		completed: map[uuid.UUID]*time.Time{},
		dates:     map[uuid.UUID][2]*time.Time{},
	}
}

func (f *fakeMilestones) InsertWithChecklistTx(_ context.Context, _ pgx.Tx, m *model.Milestone) error {
	m.ID = uuid.New()
	f.byProject[m.ProjectID] = append(f.byProject[m.ProjectID], *m)
	f.inserted++
	return nil
}

func (f *fakeMilestones) CountByProject(_ context.Context, projectID uuid.UUID) (int, error) {
	return len(f.byProject[projectID]), nil
}

func (f *fakeMilestones) ListByProject(_ context.Context, projectID uuid.UUID) ([]model.Milestone, error) {
	return f.byProject[projectID], nil
}

func (f *fakeMilestones) ListByProjects(_ context.Context, ids []uuid.UUID) (map[uuid.UUID][]model.Milestone, error) {
	out := map[uuid.UUID][]model.Milestone{}
	for _, id := range ids {
		out[id] = f.byProject[id]
	}
	return out, nil
}

func (f *fakeMilestones) UpdateDates(_ context.Context, id uuid.UUID, start, end *time.Time) (uuid.UUID, error) {
	for pid, ms := range f.byProject {
		for _, m := range ms {
			if m.ID == id {
				f.dates[id] = [2]*time.Time{start, end}
				return pid, nil
			}
		}
	}
	return uuid.Nil, repository.ErrNotFound
}

func (f *fakeMilestones) SetCompletedAtTx(_ context.Context, _ pgx.Tx, id uuid.UUID, at *time.Time) error {
	f.completed[id] = at
	return nil
}

type fakeChecklists struct {
	owner repository.ItemOwner
	items []model.ChecklistItem
	err   error
	calls []string
}

func (f *fakeChecklists) LockOwnerTx(context.Context, pgx.Tx, uuid.UUID) (repository.ItemOwner, error) {
	f.calls = append(f.calls, "lock")
	if f.err != nil {
		return repository.ItemOwner{}, f.err
	}
	return f.owner, nil
}

func (f *fakeChecklists) SetCompletedTx(_ context.Context, _ pgx.Tx, itemID uuid.UUID, completed bool, at time.Time) error {
	f.calls = append(f.calls, "set")
	for i := range f.items {
		if f.items[i].ID == itemID {
			f.items[i].Completed = completed
			if completed {
				f.items[i].CompletedAt = &at
			} else {
				f.items[i].CompletedAt = nil
			}
		}
	}
	return nil
}

func (f *fakeChecklists) ListByMilestone(context.Context, pgx.Tx, uuid.UUID) ([]model.ChecklistItem, error) {
	f.calls = append(f.calls, "list")
	return f.items, nil
}

type fakeMembers map[uuid.UUID]*model.Member

func (f fakeMembers) FindByID(_ context.Context, id uuid.UUID) (*model.Member, error) {
	m, ok := f[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return m, nil
}

func (f fakeMembers) ListByStatus(_ context.Context, status string) ([]model.Member, error) {
	var out []model.Member
	for _, m := range f {
		if m.Status == status {
			out = append(out, *m)
		}
	}
	return out, nil
}

type fakeMentoring struct {
	posts    []model.MentoringPost
	comments []model.MentoringComment
	limit    int
}

func (f *fakeMentoring) CreatePost(_ context.Context, p *model.MentoringPost) error {
	p.ID = uuid.New()
	p.CreatedAt = time.Now()
	f.posts = append(f.posts, *p)
	return nil
}

func (f *fakeMentoring) CreateComment(_ context.Context, c *model.MentoringComment) error {
	if _, err := f.FindPost(context.Background(), c.PostID); err != nil {
		return err
	}
	c.ID = uuid.New()
	c.CreatedAt = time.Now()
	f.comments = append(f.comments, *c)
	return nil
}

func (f *fakeMentoring) FindPost(_ context.Context, id uuid.UUID) (*model.MentoringPost, error) {
	for i := range f.posts {
		if f.posts[i].ID == id {
			return &f.posts[i], nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeMentoring) ListPosts(_ context.Context, limit int) ([]model.MentoringPost, error) {
	f.limit = limit
	return f.posts, nil
}

func (f *fakeMentoring) ListComments(_ context.Context, postID uuid.UUID) ([]model.MentoringComment, error) {
	var out []model.MentoringComment
	for _, c := range f.comments {
		if c.PostID == postID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeMentoring) ListRecentPosts(context.Context, uuid.UUID, int) ([]model.MentoringPost, error) {
	return f.posts, nil
}

func (f *fakeMentoring) ListRecentComments(context.Context, uuid.UUID, int) ([]model.MentoringComment, error) {
	return f.comments, nil
}

type fakeReviews struct {
	rows         map[uuid.UUID]*model.PeerReview
	deleteCutoff time.Time
	listFrom     time.Time
	listTo       time.Time
}

func newFakeReviews() *fakeReviews {
	return &fakeReviews{rows: map[uuid.UUID]*model.PeerReview{}}
}

func (f *fakeReviews) Insert(_ context.Context, pr *model.PeerReview) error {
	pr.ID = uuid.New()
	pr.Status = model.ReviewProcessing
	cp := *pr
	f.rows[pr.ID] = &cp
	return nil
}

func (f *fakeReviews) Complete(_ context.Context, id uuid.UUID, result string) error {
	f.rows[id].Status = model.ReviewCompleted
	f.rows[id].Result = &result
	return nil
}

func (f *fakeReviews) Fail(_ context.Context, id uuid.UUID) error {
	f.rows[id].Status = model.ReviewError
	return nil
}

func (f *fakeReviews) DeleteBefore(_ context.Context, _ uuid.UUID, cutoff time.Time) (int64, error) {
	f.deleteCutoff = cutoff
	return 2, nil
}

func (f *fakeReviews) ListBetween(_ context.Context, _ uuid.UUID, from, to time.Time) ([]model.PeerReview, error) {
	f.listFrom, f.listTo = from, to
	return nil, nil
}

type fakeReviewer struct {
	text string
	err  error
}

func (f fakeReviewer) Review(context.Context, string, string) (string, error) {
	return f.text, f.err
}

var errBoom = errors.New("boom")

func fixedNow(t time.Time) func() time.Time { return func() time.Time { return t } }
