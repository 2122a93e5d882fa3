package port

import (
	"context"

	"github.com/arturoeanton/codehub/internal/domain"
)

// RepositoryStore is the persistence port for repositories and everything
// hanging off them (branches, files, topics, contributors, stars, issues).
type RepositoryStore interface {
	// FindRepository returns the repository for (owner, name) or ErrRepoNotFound.
	FindRepository(ctx context.Context, owner, name string) (*domain.Repository, error)

	// ListRepositoriesForUser returns repositories the user owns or contributes to.
	ListRepositoriesForUser(ctx context.Context, userID, username string) ([]domain.Repository, error)

	CreateRepository(ctx context.Context, repo *domain.Repository) error
	DeleteRepository(ctx context.Context, id string) error

	ListTopics(ctx context.Context, repoID string) ([]domain.Topic, error)
	ListContributors(ctx context.Context, repoID string) ([]domain.User, error)

	// CountStars counts star rows; there is no stored counter.
	CountStars(ctx context.Context, repoID string) (int64, error)
	AddStar(ctx context.Context, repoID, userID string) error
	RemoveStar(ctx context.Context, repoID, userID string) error

	// ListEntries returns the direct children of parentPath, unordered.
	ListEntries(ctx context.Context, repoID, branch, parentPath string) ([]domain.FileEntry, error)
	// FindEntry returns the entry at path or ErrFileNotFound.
	FindEntry(ctx context.Context, repoID, branch, path string) (*domain.FileEntry, error)

	FindBranch(ctx context.Context, repoID, name string) (*domain.Branch, error)
	ListBranches(ctx context.Context, repoID string) ([]domain.Branch, error)

	ListIssues(ctx context.Context, repoID, state string) ([]domain.Issue, error)
}

// ProjectStore is the persistence port for groups, projects and tasks.
type ProjectStore interface {
	// TopProjects returns public, non-archived projects, newest first.
	TopProjects(ctx context.Context, limit int) ([]domain.Project, error)
	FindGroup(ctx context.Context, slug string) (*domain.Group, error)

	ListTasks(ctx context.Context) ([]domain.Task, error)
	FindTask(ctx context.Context, id string) (*domain.Task, error)
	ListFeedback(ctx context.Context, taskID, userID string) ([]domain.Feedback, error)
}

// UserStore is the persistence port for users.
type UserStore interface {
	// UpsertUser inserts or updates a user keyed by username.
	UpsertUser(ctx context.Context, u *domain.User) (*domain.User, error)
	GetUserByID(ctx context.Context, id string) (*domain.User, error)
}
