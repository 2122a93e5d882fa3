package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/arturoeanton/codehub/internal/domain"
	"github.com/arturoeanton/codehub/internal/port"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// --- Repositories ---

// FindRepository returns a repository by owner and name.
func (s *PostgresStore) FindRepository(ctx context.Context, owner, name string) (*domain.Repository, error) {
	var repo domain.Repository
	err := s.db.WithContext(ctx).
		Where("owner = ? AND name = ?", owner, name).
		First(&repo).Error
	if err != nil {
		return nil, fmt.Errorf("find repository %s/%s: %w", owner, name, notFound(err, port.ErrRepoNotFound))
	}
	return &repo, nil
}

// ListRepositoriesForUser returns repos owned by username or contributed to by userID, newest first.
func (s *PostgresStore) ListRepositoriesForUser(ctx context.Context, userID, username string) ([]domain.Repository, error) {
	contributed := s.db.Table("repository_contributors").Select("repository_id").Where("user_id = ?", userID)

	var repos []domain.Repository
	err := s.db.WithContext(ctx).
		Where("owner = ?", username).
		Or("id IN (?)", contributed).
		Order("created_at DESC").
		Find(&repos).Error
	if err != nil {
		return nil, fmt.Errorf("list repositories: %w", err)
	}
	return repos, nil
}

// CreateRepository inserts a repository, failing with ErrConflict on a duplicate (owner, name).
func (s *PostgresStore) CreateRepository(ctx context.Context, repo *domain.Repository) error {
	_, err := s.FindRepository(ctx, repo.Owner, repo.Name)
	switch {
	case err == nil:
		return fmt.Errorf("create repository %s: %w", repo.FullName(), port.ErrConflict)
	case !errors.Is(err, port.ErrRepoNotFound):
		return err
	}

	if err := s.db.WithContext(ctx).Create(repo).Error; err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return fmt.Errorf("create repository %s: %w", repo.FullName(), port.ErrConflict)
		}
		return fmt.Errorf("create repository: %w", err)
	}
	return nil
}

// DeleteRepository removes a repository and every row that belongs to it.
func (s *PostgresStore) DeleteRepository(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := &domain.Repository{ID: id}
		if err := tx.Model(repo).Association("Topics").Clear(); err != nil {
			return fmt.Errorf("clear topics: %w", err)
		}
		if err := tx.Model(repo).Association("Contributors").Clear(); err != nil {
			return fmt.Errorf("clear contributors: %w", err)
		}
		for _, model := range []any{&domain.Star{}, &domain.Branch{}, &domain.FileEntry{}, &domain.Issue{}} {
			if err := tx.Where("repository_id = ?", id).Delete(model).Error; err != nil {
				return fmt.Errorf("delete %T: %w", model, err)
			}
		}
		res := tx.Delete(repo)
		if res.Error != nil {
			return fmt.Errorf("delete repository: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return port.ErrRepoNotFound
		}
		return nil
	})
}

// --- Overview associations ---

// ListTopics returns the repository's topics ordered by name.
func (s *PostgresStore) ListTopics(ctx context.Context, repoID string) ([]domain.Topic, error) {
	topics := []domain.Topic{}
	err := s.db.WithContext(ctx).
		Joins("JOIN repository_topics rt ON rt.topic_id = topics.id").
		Where("rt.repository_id = ?", repoID).
		Order("topics.name").
		Find(&topics).Error
	if err != nil {
		return nil, fmt.Errorf("list topics: %w", err)
	}
	return topics, nil
}

// ListContributors returns the repository's contributors ordered by username.
func (s *PostgresStore) ListContributors(ctx context.Context, repoID string) ([]domain.User, error) {
	users := []domain.User{}
	err := s.db.WithContext(ctx).
		Joins("JOIN repository_contributors rc ON rc.user_id = users.id").
		Where("rc.repository_id = ?", repoID).
		Order("users.username").
		Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("list contributors: %w", err)
	}
	return users, nil
}

// --- Stars ---

// CountStars counts star rows for a repository.
func (s *PostgresStore) CountStars(ctx context.Context, repoID string) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&domain.Star{}).Where("repository_id = ?", repoID).Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("count stars: %w", err)
	}
	return n, nil
}

// AddStar stars a repository for a user. Starring twice is a no-op.
func (s *PostgresStore) AddStar(ctx context.Context, repoID, userID string) error {
	var star domain.Star
	err := s.db.WithContext(ctx).
		Where(domain.Star{RepositoryID: repoID, UserID: userID}).
		FirstOrCreate(&star).Error
	if err != nil {
		return fmt.Errorf("add star: %w", err)
	}
	return nil
}

// RemoveStar unstars a repository for a user. Removing a missing star is a no-op.
func (s *PostgresStore) RemoveStar(ctx context.Context, repoID, userID string) error {
	err := s.db.WithContext(ctx).
		Where("repository_id = ? AND user_id = ?", repoID, userID).
		Delete(&domain.Star{}).Error
	if err != nil {
		return fmt.Errorf("remove star: %w", err)
	}
	return nil
}

// --- Files ---

// ListEntries returns the direct children of parentPath on a branch.
func (s *PostgresStore) ListEntries(ctx context.Context, repoID, branch, parentPath string) ([]domain.FileEntry, error) {
	entries := []domain.FileEntry{}
	err := s.db.WithContext(ctx).
		Omit("content").
		Where("repository_id = ? AND branch = ? AND parent_path = ?", repoID, branch, parentPath).
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	return entries, nil
}

// FindEntry returns a single file or directory including its content.
func (s *PostgresStore) FindEntry(ctx context.Context, repoID, branch, path string) (*domain.FileEntry, error) {
	var entry domain.FileEntry
	err := s.db.WithContext(ctx).
		Where("repository_id = ? AND branch = ? AND path = ?", repoID, branch, path).
		First(&entry).Error
	if err != nil {
		return nil, fmt.Errorf("find entry %s: %w", path, notFound(err, port.ErrFileNotFound))
	}
	return &entry, nil
}

// --- Branches ---

// FindBranch returns a branch by name.
func (s *PostgresStore) FindBranch(ctx context.Context, repoID, name string) (*domain.Branch, error) {
	var b domain.Branch
	err := s.db.WithContext(ctx).
		Where("repository_id = ? AND name = ?", repoID, name).
		First(&b).Error
	if err != nil {
		return nil, fmt.Errorf("find branch %s: %w", name, notFound(err, port.ErrBranchNotFound))
	}
	return &b, nil
}

// ListBranches returns all branches of a repository ordered by name.
func (s *PostgresStore) ListBranches(ctx context.Context, repoID string) ([]domain.Branch, error) {
	branches := []domain.Branch{}
	err := s.db.WithContext(ctx).Where("repository_id = ?", repoID).Order("name").Find(&branches).Error
	if err != nil {
		return nil, fmt.Errorf("list branches: %w", err)
	}
	return branches, nil
}

// --- Issues ---

// ListIssues returns issues newest first, filtered by state unless state is "all" or empty.
func (s *PostgresStore) ListIssues(ctx context.Context, repoID, state string) ([]domain.Issue, error) {
	q := s.db.WithContext(ctx).Preload("Author").Where("repository_id = ?", repoID)
	if state != "" && state != domain.IssueStateAll {
		q = q.Where("state = ?", state)
	}

	issues := []domain.Issue{}
	if err := q.Order("created_at DESC").Order("number DESC").Find(&issues).Error; err != nil {
		return nil, fmt.Errorf("list issues: %w", err)
	}
	return issues, nil
}
