package store

import (
	"context"
	"testing"
	"time"

	"github.com/arturoeanton/codehub/internal/domain"
	"github.com/arturoeanton/codehub/internal/port"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestStore(t *testing.T) *PostgresStore {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// every new connection to :memory: is a fresh database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	s := New(db)
	require.NoError(t, s.Migrate())
	return s
}

func seedRepo(t *testing.T, s *PostgresStore, owner, name string) *domain.Repository {
	t.Helper()
	repo := &domain.Repository{Owner: owner, Name: name, Description: "test repo"}
	require.NoError(t, s.CreateRepository(context.Background(), repo))
	return repo
}

func size(n int64) *int64 { return &n }

func TestFindRepository(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	created := seedRepo(t, s, "alice", "notes")

	t.Run("found", func(t *testing.T) {
		repo, err := s.FindRepository(ctx, "alice", "notes")
		require.NoError(t, err)
		assert.Equal(t, created.ID, repo.ID)
		assert.Equal(t, domain.DefaultBranch, repo.DefaultBranch)
	})

	t.Run("missing", func(t *testing.T) {
		_, err := s.FindRepository(ctx, "alice", "nope")
		assert.ErrorIs(t, err, port.ErrRepoNotFound)
		assert.ErrorIs(t, err, port.ErrNotFound)
	})
}

func TestCreateRepository_Duplicate(t *testing.T) {
	s := newTestStore(t)
	seedRepo(t, s, "alice", "notes")

	err := s.CreateRepository(context.Background(), &domain.Repository{Owner: "alice", Name: "notes"})
	assert.ErrorIs(t, err, port.ErrConflict)

	// same name under another owner is fine
	require.NoError(t, s.CreateRepository(context.Background(), &domain.Repository{Owner: "bob", Name: "notes"}))
}

func TestStars(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	repo := seedRepo(t, s, "alice", "notes")

	n, err := s.CountStars(ctx, repo.ID)
	require.NoError(t, err)
	assert.Zero(t, n)

	require.NoError(t, s.AddStar(ctx, repo.ID, "u1"))
	require.NoError(t, s.AddStar(ctx, repo.ID, "u2"))
	require.NoError(t, s.AddStar(ctx, repo.ID, "u2"))

	n, err = s.CountStars(ctx, repo.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	require.NoError(t, s.RemoveStar(ctx, repo.ID, "u1"))
	require.NoError(t, s.RemoveStar(ctx, repo.ID, "u1"))

	n, err = s.CountStars(ctx, repo.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestTopicsAndContributors(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	repo := seedRepo(t, s, "alice", "notes")

	repo.Topics = []domain.Topic{{Name: "go"}, {Name: "api"}}
	repo.Contributors = []domain.User{{Username: "zed"}, {Username: "amy", Name: "Amy"}}
	require.NoError(t, s.db.Save(repo).Error)
	other := seedRepo(t, s, "bob", "other")
	other.Topics = []domain.Topic{{Name: "rust"}}
	require.NoError(t, s.db.Save(other).Error)

	topics, err := s.ListTopics(ctx, repo.ID)
	require.NoError(t, err)
	require.Len(t, topics, 2)
	assert.Equal(t, "api", topics[0].Name)
	assert.Equal(t, "go", topics[1].Name)

	users, err := s.ListContributors(ctx, repo.ID)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "amy", users[0].Username)
	assert.Equal(t, "zed", users[1].Username)

	empty, err := s.ListTopics(ctx, "missing")
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestListEntries(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	repo := seedRepo(t, s, "alice", "notes")

	entries := []domain.FileEntry{
		{RepositoryID: repo.ID, Branch: "main", Name: "docs", Path: "docs", ParentPath: "", Type: domain.EntryTypeDir},
		{RepositoryID: repo.ID, Branch: "main", Name: "README.md", Path: "README.md", ParentPath: "", Type: domain.EntryTypeFile, Size: size(5), Content: []byte("hello")},
		{RepositoryID: repo.ID, Branch: "main", Name: "guide.md", Path: "docs/guide.md", ParentPath: "docs", Type: domain.EntryTypeFile, Size: size(1)},
		{RepositoryID: repo.ID, Branch: "dev", Name: "dev.txt", Path: "dev.txt", ParentPath: "", Type: domain.EntryTypeFile, Size: size(1)},
	}
	require.NoError(t, s.db.Create(&entries).Error)

	root, err := s.ListEntries(ctx, repo.ID, "main", "")
	require.NoError(t, err)
	assert.Len(t, root, 2)
	for _, e := range root {
		assert.Nil(t, e.Content, "listing must not load content")
	}

	docs, err := s.ListEntries(ctx, repo.ID, "main", "docs")
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "docs/guide.md", docs[0].Path)

	none, err := s.ListEntries(ctx, repo.ID, "main", "docs/empty")
	require.NoError(t, err)
	assert.Empty(t, none)

	readme, err := s.FindEntry(ctx, repo.ID, "main", "README.md")
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), readme.Content)

	_, err = s.FindEntry(ctx, repo.ID, "dev", "README.md")
	assert.ErrorIs(t, err, port.ErrFileNotFound)
}

func TestBranches(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	repo := seedRepo(t, s, "alice", "notes")

	require.NoError(t, s.db.Create(&[]domain.Branch{
		{RepositoryID: repo.ID, Name: "main", HeadCommit: "abc"},
		{RepositoryID: repo.ID, Name: "dev"},
	}).Error)

	b, err := s.FindBranch(ctx, repo.ID, "main")
	require.NoError(t, err)
	assert.Equal(t, "abc", b.HeadCommit)

	_, err = s.FindBranch(ctx, repo.ID, "gone")
	assert.ErrorIs(t, err, port.ErrBranchNotFound)

	all, err := s.ListBranches(ctx, repo.ID)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "dev", all[0].Name)
}

func TestListIssues(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	repo := seedRepo(t, s, "alice", "notes")
	now := time.Now()

	require.NoError(t, s.db.Create(&[]domain.Issue{
		{RepositoryID: repo.ID, Number: 1, Title: "old", State: domain.IssueStateClosed, CreatedAt: now.Add(-2 * time.Hour)},
		{RepositoryID: repo.ID, Number: 2, Title: "new", State: domain.IssueStateOpen, CreatedAt: now},
	}).Error)

	open, err := s.ListIssues(ctx, repo.ID, domain.IssueStateOpen)
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, "new", open[0].Title)

	all, err := s.ListIssues(ctx, repo.ID, domain.IssueStateAll)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, 2, all[0].Number)
}

func TestDeleteRepository(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	repo := seedRepo(t, s, "alice", "notes")
	require.NoError(t, s.AddStar(ctx, repo.ID, "u1"))

	require.NoError(t, s.DeleteRepository(ctx, repo.ID))

	_, err := s.FindRepository(ctx, "alice", "notes")
	assert.ErrorIs(t, err, port.ErrRepoNotFound)
	n, err := s.CountStars(ctx, repo.ID)
	require.NoError(t, err)
	assert.Zero(t, n)

	assert.ErrorIs(t, s.DeleteRepository(ctx, repo.ID), port.ErrRepoNotFound)
}

func TestListRepositoriesForUser(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	user := &domain.User{Username: "alice"}
	require.NoError(t, s.db.Create(user).Error)

	seedRepo(t, s, "alice", "own")
	contributed := seedRepo(t, s, "bob", "shared")
	contributed.Contributors = []domain.User{*user}
	require.NoError(t, s.db.Save(contributed).Error)
	seedRepo(t, s, "bob", "private")

	repos, err := s.ListRepositoriesForUser(ctx, user.ID, "alice")
	require.NoError(t, err)
	names := []string{}
	for _, r := range repos {
		names = append(names, r.FullName())
	}
	assert.ElementsMatch(t, []string{"alice/own", "bob/shared"}, names)
}

func TestTopProjects(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now()

	group := &domain.Group{Name: "Compilers 2026", Slug: "compilers"}
	require.NoError(t, s.db.Create(group).Error)

	projects := []domain.Project{
		{Name: "oldest", GroupID: &group.ID, CreatedAt: now.Add(-3 * time.Hour)},
		{Name: "newest", GroupID: &group.ID, CreatedAt: now},
		{Name: "middle", GroupID: &group.ID, CreatedAt: now.Add(-time.Hour)},
		{Name: "archived", GroupID: &group.ID, Archived: true, CreatedAt: now.Add(time.Hour)},
		{Name: "private", GroupID: &group.ID, Private: true, CreatedAt: now.Add(time.Hour)},
	}
	require.NoError(t, s.db.Create(&projects).Error)

	top, err := s.TopProjects(ctx, 2)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "newest", top[0].Name)
	assert.Equal(t, "middle", top[1].Name)
	require.NotNil(t, top[0].Group)
	assert.Equal(t, "Compilers 2026", top[0].Group.Name)

	g, err := s.FindGroup(ctx, "compilers")
	require.NoError(t, err)
	assert.Len(t, g.Projects, 4)

	_, err = s.FindGroup(ctx, "missing")
	assert.ErrorIs(t, err, port.ErrGroupNotFound)
}

func TestTasksAndFeedback(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	project := &domain.Project{Name: "p"}
	require.NoError(t, s.db.Create(project).Error)
	archived := &domain.Project{Name: "old", Archived: true}
	require.NoError(t, s.db.Create(archived).Error)

	due := time.Now().Add(24 * time.Hour)
	task := &domain.Task{ProjectID: project.ID, Title: "lab 1", DueAt: &due}
	require.NoError(t, s.db.Create(task).Error)
	require.NoError(t, s.db.Create(&domain.Task{ProjectID: project.ID, Title: "open ended"}).Error)
	require.NoError(t, s.db.Create(&domain.Task{ProjectID: archived.ID, Title: "hidden"}).Error)

	tasks, err := s.ListTasks(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "lab 1", tasks[0].Title)
	require.NotNil(t, tasks[0].Project)

	grade := 17.5
	require.NoError(t, s.db.Create(&domain.Feedback{TaskID: task.ID, UserID: "u1", Grade: &grade, Comment: "good"}).Error)
	require.NoError(t, s.db.Create(&domain.Feedback{TaskID: task.ID, UserID: "u2", Comment: "other student"}).Error)

	fb, err := s.ListFeedback(ctx, task.ID, "u1")
	require.NoError(t, err)
	require.Len(t, fb, 1)
	assert.Equal(t, 17.5, *fb[0].Grade)

	_, err = s.FindTask(ctx, "missing")
	assert.ErrorIs(t, err, port.ErrTaskNotFound)
}

func TestUpsertUser(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first, err := s.UpsertUser(ctx, &domain.User{Username: "alice", Name: "Alice", Provider: "github", ProviderID: "1"})
	require.NoError(t, err)
	require.NotEmpty(t, first.ID)

	second, err := s.UpsertUser(ctx, &domain.User{Username: "alice", Name: "Alice B.", Provider: "github", ProviderID: "1"})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "Alice B.", second.Name)

	got, err := s.GetUserByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)

	_, err = s.GetUserByID(ctx, "missing")
	assert.ErrorIs(t, err, port.ErrUserNotFound)
}
