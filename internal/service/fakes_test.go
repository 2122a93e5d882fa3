package service

import (
	"context"
	"strings"

	"github.com/arturoeanton/codehub/internal/domain"
	"github.com/arturoeanton/codehub/internal/port"
)

// fakeRepoStore is an in-memory port.RepositoryStore.
type fakeRepoStore struct {
	repos        []*domain.Repository
	topics       map[string][]domain.Topic
	contributors map[string][]domain.User
	stars        map[string]map[string]bool
	entries      []domain.FileEntry
	branches     []domain.Branch
	issues       map[string][]domain.Issue
	err          error
}

func newFakeRepoStore(repos ...*domain.Repository) *fakeRepoStore {
	return &fakeRepoStore{
		repos:        repos,
		topics:       map[string][]domain.Topic{},
		contributors: map[string][]domain.User{},
		stars:        map[string]map[string]bool{},
		issues:       map[string][]domain.Issue{},
	}
}

var _ port.RepositoryStore = (*fakeRepoStore)(nil)

func (f *fakeRepoStore) FindRepository(_ context.Context, owner, name string) (*domain.Repository, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, r := range f.repos {
		if r.Owner == owner && r.Name == name {
			return r, nil
		}
	}
	return nil, port.ErrRepoNotFound
}

func (f *fakeRepoStore) ListRepositoriesForUser(_ context.Context, userID, username string) ([]domain.Repository, error) {
	var out []domain.Repository
	for _, r := range f.repos {
		if r.Owner == username {
			out = append(out, *r)
			continue
		}
		for _, u := range f.contributors[r.ID] {
			if u.ID == userID {
				out = append(out, *r)
				break
			}
		}
	}
	return out, nil
}

func (f *fakeRepoStore) CreateRepository(_ context.Context, repo *domain.Repository) error {
	for _, r := range f.repos {
		if r.Owner == repo.Owner && r.Name == repo.Name {
			return port.ErrConflict
		}
	}
	repo.ID = "repo-" + repo.Name
	if repo.DefaultBranch == "" {
		repo.DefaultBranch = domain.DefaultBranch
	}
	f.repos = append(f.repos, repo)
	return nil
}

func (f *fakeRepoStore) DeleteRepository(_ context.Context, id string) error {
	for i, r := range f.repos {
		if r.ID == id {
			f.repos = append(f.repos[:i], f.repos[i+1:]...)
			return nil
		}
	}
	return port.ErrRepoNotFound
}

func (f *fakeRepoStore) ListTopics(_ context.Context, repoID string) ([]domain.Topic, error) {
	return f.topics[repoID], nil
}

func (f *fakeRepoStore) ListContributors(_ context.Context, repoID string) ([]domain.User, error) {
	return f.contributors[repoID], nil
}

func (f *fakeRepoStore) CountStars(_ context.Context, repoID string) (int64, error) {
	return int64(len(f.stars[repoID])), nil
}

func (f *fakeRepoStore) AddStar(_ context.Context, repoID, userID string) error {
	if f.stars[repoID] == nil {
		f.stars[repoID] = map[string]bool{}
	}
	f.stars[repoID][userID] = true
	return nil
}

func (f *fakeRepoStore) RemoveStar(_ context.Context, repoID, userID string) error {
	delete(f.stars[repoID], userID)
	return nil
}

func (f *fakeRepoStore) ListEntries(_ context.Context, repoID, branch, parentPath string) ([]domain.FileEntry, error) {
	var out []domain.FileEntry
	for _, e := range f.entries {
		if e.RepositoryID == repoID && e.Branch == branch && e.ParentPath == parentPath {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeRepoStore) FindEntry(_ context.Context, repoID, branch, path string) (*domain.FileEntry, error) {
	for i := range f.entries {
		e := &f.entries[i]
		if e.RepositoryID == repoID && e.Branch == branch && e.Path == path {
			return e, nil
		}
	}
	return nil, port.ErrFileNotFound
}

func (f *fakeRepoStore) FindBranch(_ context.Context, repoID, name string) (*domain.Branch, error) {
	for i := range f.branches {
		if f.branches[i].RepositoryID == repoID && f.branches[i].Name == name {
			return &f.branches[i], nil
		}
	}
	return nil, port.ErrBranchNotFound
}

func (f *fakeRepoStore) ListBranches(_ context.Context, repoID string) ([]domain.Branch, error) {
	var out []domain.Branch
	for _, b := range f.branches {
		if b.RepositoryID == repoID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeRepoStore) ListIssues(_ context.Context, repoID, state string) ([]domain.Issue, error) {
	var out []domain.Issue
	for _, is := range f.issues[repoID] {
		if state == domain.IssueStateAll || is.State == state {
			out = append(out, is)
		}
	}
	return out, nil
}

// addFile records a file entry and every missing parent directory.
func (f *fakeRepoStore) addFile(repoID, branch, path, content string) {
	parts := strings.Split(path, "/")
	for i := 1; i < len(parts); i++ {
		dir := strings.Join(parts[:i], "/")
		if _, err := f.FindEntry(context.Background(), repoID, branch, dir); err == nil {
			continue
		}
		f.entries = append(f.entries, domain.FileEntry{
			RepositoryID: repoID, Branch: branch, Name: parts[i-1], Path: dir,
			ParentPath: strings.Join(parts[:i-1], "/"), Type: domain.EntryTypeDir,
		})
	}
	size := int64(len(content))
	f.entries = append(f.entries, domain.FileEntry{
		RepositoryID: repoID, Branch: branch, Name: parts[len(parts)-1], Path: path,
		ParentPath: strings.Join(parts[:len(parts)-1], "/"), Type: domain.EntryTypeFile,
		Size: &size, Content: []byte(content),
	})
}

type fakeWalker struct {
	got  *port.TreeWalkRequest
	tree *domain.CommitTree
}

func (w *fakeWalker) WalkTree(_ context.Context, req port.TreeWalkRequest) (*domain.CommitTree, error) {
	w.got = &req
	if w.tree != nil {
		return w.tree, nil
	}
	return &domain.CommitTree{Tree: []domain.TreeNode{}}, nil
}

type fakeProjectStore struct {
	projects []domain.Project
	groups   []domain.Group
	tasks    []domain.Task
	feedback []domain.Feedback
	gotLimit int
}

func (f *fakeProjectStore) TopProjects(_ context.Context, limit int) ([]domain.Project, error) {
	f.gotLimit = limit
	if limit < len(f.projects) {
		return f.projects[:limit], nil
	}
	return f.projects, nil
}

func (f *fakeProjectStore) FindGroup(_ context.Context, slug string) (*domain.Group, error) {
	for i := range f.groups {
		if f.groups[i].Slug == slug {
			return &f.groups[i], nil
		}
	}
	return nil, port.ErrGroupNotFound
}

func (f *fakeProjectStore) ListTasks(context.Context) ([]domain.Task, error) {
	return f.tasks, nil
}

func (f *fakeProjectStore) FindTask(_ context.Context, id string) (*domain.Task, error) {
	for i := range f.tasks {
		if f.tasks[i].ID == id {
			return &f.tasks[i], nil
		}
	}
	return nil, port.ErrTaskNotFound
}

func (f *fakeProjectStore) ListFeedback(_ context.Context, taskID, userID string) ([]domain.Feedback, error) {
	var out []domain.Feedback
	for _, fb := range f.feedback {
		if fb.TaskID == taskID && fb.UserID == userID {
			out = append(out, fb)
		}
	}
	return out, nil
}

type fakeUserStore struct {
	users map[string]*domain.User
}

func (f *fakeUserStore) UpsertUser(_ context.Context, u *domain.User) (*domain.User, error) {
	if f.users == nil {
		f.users = map[string]*domain.User{}
	}
	if existing, ok := f.users[u.Username]; ok {
		u.ID = existing.ID
	} else {
		u.ID = "user-" + u.Username
	}
	f.users[u.Username] = u
	return u, nil
}

func (f *fakeUserStore) GetUserByID(_ context.Context, id string) (*domain.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, port.ErrUserNotFound
}
