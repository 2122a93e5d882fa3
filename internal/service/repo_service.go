package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/arturoeanton/codehub/internal/domain"
	"github.com/arturoeanton/codehub/internal/markdown"
	"github.com/arturoeanton/codehub/internal/port"
)

// RepoService serves read paths over repositories plus the few mutations
// (create, delete, star) that the API exposes.
type RepoService struct {
	store      port.RepositoryStore
	walker     port.TreeWalker
	maxEntries int
}

// NewRepoService creates a new repository service.
func NewRepoService(s port.RepositoryStore, walker port.TreeWalker, maxTreeEntries int) *RepoService {
	return &RepoService{store: s, walker: walker, maxEntries: maxTreeEntries}
}

// Lookup returns the repository for (owner, name).
func (s *RepoService) Lookup(ctx context.Context, owner, name string) (*domain.Repository, error) {
	return s.store.FindRepository(ctx, owner, name)
}

// TopicView is a topic as shown in an overview.
type TopicView struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// ContributorView is a contributor as shown in an overview.
type ContributorView struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatarUrl"`
}

// Overview is a repository with its topics, contributors and star count.
type Overview struct {
	ID            string            `json:"id"`
	Owner         string            `json:"owner"`
	Name          string            `json:"name"`
	Description   string            `json:"description"`
	DefaultBranch string            `json:"defaultBranch"`
	IsPrivate     bool              `json:"isPrivate"`
	IsArchived    bool              `json:"isArchived"`
	CreatedAt     time.Time         `json:"createdAt"`
	Topics        []TopicView       `json:"topics"`
	Contributors  []ContributorView `json:"contributors"`
	StarCount     int64             `json:"starCount"`
}

// Overview gathers repository metadata, topics, contributors and stars.
func (s *RepoService) Overview(ctx context.Context, owner, name string) (*Overview, error) {
	repo, err := s.store.FindRepository(ctx, owner, name)
	if err != nil {
		return nil, err
	}

	topics, err := s.store.ListTopics(ctx, repo.ID)
	if err != nil {
		return nil, err
	}
	users, err := s.store.ListContributors(ctx, repo.ID)
	if err != nil {
		return nil, err
	}
	stars, err := s.store.CountStars(ctx, repo.ID)
	if err != nil {
		return nil, err
	}

	ov := &Overview{
		ID:            repo.ID,
		Owner:         repo.Owner,
		Name:          repo.Name,
		Description:   repo.Description,
		DefaultBranch: repo.DefaultBranch,
		IsPrivate:     repo.Private,
		IsArchived:    repo.Archived,
		CreatedAt:     repo.CreatedAt,
		Topics:        make([]TopicView, 0, len(topics)),
		Contributors:  make([]ContributorView, 0, len(users)),
		StarCount:     stars,
	}
	for _, t := range topics {
		ov.Topics = append(ov.Topics, TopicView{ID: t.ID, Name: t.Name})
	}
	for i := range users {
		u := &users[i]
		ov.Contributors = append(ov.Contributors, ContributorView{ID: u.ID, Name: u.DisplayName(), AvatarURL: u.Avatar()})
	}
	return ov, nil
}

// ListTree returns the direct children of parentPath, directories first and
// then by name. An empty directory yields an empty, non-nil slice.
func (s *RepoService) ListTree(ctx context.Context, owner, name, parentPath, branch string) ([]domain.FileEntry, error) {
	repo, err := s.store.FindRepository(ctx, owner, name)
	if err != nil {
		return nil, err
	}
	if branch == "" {
		branch = domain.DefaultBranch
	}

	entries, err := s.store.ListEntries(ctx, repo.ID, branch, cleanPath(parentPath))
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []domain.FileEntry{}
	}
	SortEntries(entries)
	return entries, nil
}

// SortEntries orders directories before files, then by name (byte order).
func SortEntries(entries []domain.FileEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if di, dj := entries[i].IsDir(), entries[j].IsDir(); di != dj {
			return di
		}
		return entries[i].Name < entries[j].Name
	})
}

// Raw returns a stored file with its content.
func (s *RepoService) Raw(ctx context.Context, owner, name, branch, filePath string) (*domain.FileEntry, error) {
	filePath = cleanPath(filePath)
	if filePath == "" {
		return nil, fmt.Errorf("raw: path is required: %w", port.ErrBadRequest)
	}

	repo, err := s.store.FindRepository(ctx, owner, name)
	if err != nil {
		return nil, err
	}
	if branch == "" {
		branch = repo.DefaultBranch
	}

	entry, err := s.store.FindEntry(ctx, repo.ID, branch, filePath)
	if err != nil {
		return nil, err
	}
	if entry.IsDir() {
		return nil, fmt.Errorf("raw: %s is a directory: %w", filePath, port.ErrBadRequest)
	}
	return entry, nil
}

// Readme is a rendered README document.
type Readme struct {
	Path string `json:"path"`
	HTML string `json:"html"`
}

var readmeNames = []string{"readme.md", "readme.markdown", "readme"}

// Readme finds the README at the repository root and renders it.
func (s *RepoService) Readme(ctx context.Context, owner, name, branch string) (*Readme, error) {
	repo, err := s.store.FindRepository(ctx, owner, name)
	if err != nil {
		return nil, err
	}
	if branch == "" {
		branch = repo.DefaultBranch
	}

	entries, err := s.store.ListEntries(ctx, repo.ID, branch, "")
	if err != nil {
		return nil, err
	}

	var found string
	for _, want := range readmeNames {
		for _, e := range entries {
			if !e.IsDir() && strings.EqualFold(e.Name, want) {
				found = e.Path
				break
			}
		}
		if found != "" {
			break
		}
	}
	if found == "" {
		return nil, fmt.Errorf("readme: %w", port.ErrFileNotFound)
	}

	return s.RenderDocument(ctx, repo, branch, found)
}

// RenderDocument loads a Markdown file and renders it with image URLs
// rewritten relative to the file's directory.
func (s *RepoService) RenderDocument(ctx context.Context, repo *domain.Repository, branch, filePath string) (*Readme, error) {
	entry, err := s.store.FindEntry(ctx, repo.ID, branch, filePath)
	if err != nil {
		return nil, err
	}

	dir := path.Dir(entry.Path)
	if dir == "." {
		dir = ""
	}
	html, err := markdown.Render(entry.Content, markdown.Context{
		Owner:  repo.Owner,
		Repo:   repo.Name,
		Branch: branch,
		Dir:    dir,
	})
	if err != nil {
		return nil, err
	}
	return &Readme{Path: entry.Path, HTML: html}, nil
}

// BranchView is a branch as listed by the API.
type BranchView struct {
	Name       string `json:"name"`
	HeadCommit string `json:"headCommit"`
	Default    bool   `json:"default"`
}

// Branches lists a repository's branches, marking the default one.
func (s *RepoService) Branches(ctx context.Context, owner, name string) ([]BranchView, error) {
	repo, err := s.store.FindRepository(ctx, owner, name)
	if err != nil {
		return nil, err
	}

	branches, err := s.store.ListBranches(ctx, repo.ID)
	if err != nil {
		return nil, err
	}

	out := make([]BranchView, 0, len(branches))
	for _, b := range branches {
		out = append(out, BranchView{Name: b.Name, HeadCommit: b.HeadCommit, Default: b.Name == repo.DefaultBranch})
	}
	return out, nil
}

// Issues lists issues in the given state ("open" when empty).
func (s *RepoService) Issues(ctx context.Context, owner, name, state string) ([]domain.Issue, error) {
	switch state {
	case "":
		state = domain.IssueStateOpen
	case domain.IssueStateOpen, domain.IssueStateClosed, domain.IssueStateAll:
	default:
		return nil, fmt.Errorf("issues: unknown state %q: %w", state, port.ErrBadRequest)
	}

	repo, err := s.store.FindRepository(ctx, owner, name)
	if err != nil {
		return nil, err
	}
	issues, err := s.store.ListIssues(ctx, repo.ID, state)
	if err != nil {
		return nil, err
	}
	if issues == nil {
		issues = []domain.Issue{}
	}
	return issues, nil
}

// CreateRepoInput is the body accepted when creating a repository.
type CreateRepoInput struct {
	Name          string `json:"name"`
	Description   string `json:"description"`
	DefaultBranch string `json:"defaultBranch"`
	Private       bool   `json:"isPrivate"`
}

// Create registers a new repository owned by the signed-in user.
func (s *RepoService) Create(ctx context.Context, uc *domain.UserContext, in CreateRepoInput) (*domain.Repository, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" || strings.ContainsAny(in.Name, "/\\ ") {
		return nil, fmt.Errorf("create repository: invalid name %q: %w", in.Name, port.ErrBadRequest)
	}

	repo := &domain.Repository{
		Owner:         uc.Username,
		Name:          in.Name,
		Description:   in.Description,
		DefaultBranch: in.DefaultBranch,
		Private:       in.Private,
	}
	if err := s.store.CreateRepository(ctx, repo); err != nil {
		return nil, err
	}

	slog.Info("repository created", "repo_id", repo.ID, "repo", repo.FullName(), "user_id", uc.UserID)
	return repo, nil
}

// Delete removes a repository. Only its owner may do so.
func (s *RepoService) Delete(ctx context.Context, uc *domain.UserContext, owner, name string) error {
	repo, err := s.store.FindRepository(ctx, owner, name)
	if err != nil {
		return err
	}
	if repo.Owner != uc.Username {
		return fmt.Errorf("delete repository %s: %w", repo.FullName(), port.ErrForbidden)
	}
	if err := s.store.DeleteRepository(ctx, repo.ID); err != nil {
		return err
	}

	slog.Info("repository deleted", "repo_id", repo.ID, "repo", repo.FullName(), "user_id", uc.UserID)
	return nil
}

// Star stars or unstars a repository and returns the new star count.
func (s *RepoService) Star(ctx context.Context, uc *domain.UserContext, owner, name string, starred bool) (int64, error) {
	repo, err := s.store.FindRepository(ctx, owner, name)
	if err != nil {
		return 0, err
	}

	if starred {
		err = s.store.AddStar(ctx, repo.ID, uc.UserID)
	} else {
		err = s.store.RemoveStar(ctx, repo.ID, uc.UserID)
	}
	if err != nil {
		return 0, err
	}
	return s.store.CountStars(ctx, repo.ID)
}

// ListForUser returns repositories the user owns or contributes to.
func (s *RepoService) ListForUser(ctx context.Context, uc *domain.UserContext) ([]domain.Repository, error) {
	return s.store.ListRepositoriesForUser(ctx, uc.UserID, uc.Username)
}

// CommitTree walks the head commit of a branch. A missing repository or
// branch record is not an error: the result is an empty, untruncated tree.
func (s *RepoService) CommitTree(ctx context.Context, owner, name, branch string, recursive bool) (*domain.CommitTree, error) {
	if branch == "" {
		return nil, fmt.Errorf("commit tree: branch is required: %w", port.ErrBadRequest)
	}

	empty := &domain.CommitTree{Tree: []domain.TreeNode{}}

	repo, err := s.store.FindRepository(ctx, owner, name)
	if errors.Is(err, port.ErrNotFound) {
		return empty, nil
	}
	if err != nil {
		return nil, err
	}

	b, err := s.store.FindBranch(ctx, repo.ID, branch)
	if errors.Is(err, port.ErrNotFound) {
		return empty, nil
	}
	if err != nil {
		return nil, err
	}

	return s.walker.WalkTree(ctx, port.TreeWalkRequest{
		StoragePath: repo.StoragePath,
		Branch:      b.Name,
		Commit:      b.HeadCommit,
		Recursive:   recursive,
		MaxEntries:  s.maxEntries,
	})
}

// cleanPath normalises a repository path: no leading/trailing slashes, "" for root.
func cleanPath(p string) string {
	p = strings.Trim(p, "/")
	if p == "" {
		return ""
	}
	p = path.Clean(p)
	if p == "." {
		return ""
	}
	return p
}
