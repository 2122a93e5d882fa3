package vcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/arturoeanton/codehub/internal/domain"
	"github.com/arturoeanton/codehub/internal/port"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/filemode"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// DefaultMaxEntries bounds a walk when the caller passes no limit.
const DefaultMaxEntries = 10000

// GitProvider implements port.TreeWalker on top of go-git object stores.
type GitProvider struct {
	open func(path string) (*git.Repository, error)
}

// NewGitProvider creates a provider that opens repositories from disk.
func NewGitProvider() *GitProvider {
	return &GitProvider{open: git.PlainOpen}
}

var _ port.TreeWalker = (*GitProvider)(nil)

// WalkTree lists the tree of the requested commit. A missing object store,
// ref, commit or root tree yields an empty tree rather than an error.
func (g *GitProvider) WalkTree(ctx context.Context, req port.TreeWalkRequest) (*domain.CommitTree, error) {
	empty := &domain.CommitTree{Tree: []domain.TreeNode{}}
	if req.StoragePath == "" {
		return empty, nil
	}

	repo, err := g.open(req.StoragePath)
	if err != nil {
		slog.Warn("open object store", "path", req.StoragePath, "error", err)
		return empty, nil
	}

	commit, err := resolveCommit(repo, req.Branch, req.Commit)
	if err != nil {
		slog.Warn("resolve commit", "path", req.StoragePath, "branch", req.Branch, "error", err)
		return empty, nil
	}

	tree, err := commit.Tree()
	if err != nil {
		slog.Warn("read tree", "path", req.StoragePath, "tree", commit.TreeHash.String(), "error", err)
		return empty, nil
	}

	limit := req.MaxEntries
	if limit <= 0 {
		limit = DefaultMaxEntries
	}

	if !req.Recursive {
		return listTopLevel(tree, limit), nil
	}
	return walkRecursive(ctx, tree, limit)
}

func resolveCommit(repo *git.Repository, branch, head string) (*object.Commit, error) {
	if head != "" {
		return repo.CommitObject(plumbing.NewHash(head))
	}
	if branch == "" {
		return nil, errors.New("no commit or branch to resolve")
	}
	ref, err := repo.Reference(plumbing.NewBranchReferenceName(branch), true)
	if err != nil {
		return nil, fmt.Errorf("ref %s: %w", branch, err)
	}
	return repo.CommitObject(ref.Hash())
}

func listTopLevel(tree *object.Tree, limit int) *domain.CommitTree {
	out := &domain.CommitTree{Tree: make([]domain.TreeNode, 0, min(len(tree.Entries), limit))}
	for _, e := range tree.Entries {
		if len(out.Tree) == limit {
			out.Truncated = true
			break
		}
		out.Tree = append(out.Tree, node(e.Name, e))
	}
	return out
}

// walkRecursive emits entries depth-first, each directory before its children.
func walkRecursive(ctx context.Context, tree *object.Tree, limit int) (*domain.CommitTree, error) {
	walker := object.NewTreeWalker(tree, true, nil)
	defer walker.Close()

	out := &domain.CommitTree{Tree: []domain.TreeNode{}}
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		name, entry, err := walker.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("walk tree: %w", err)
		}

		if len(out.Tree) == limit {
			out.Truncated = true
			break
		}
		out.Tree = append(out.Tree, node(name, entry))
	}
	return out, nil
}

func node(path string, e object.TreeEntry) domain.TreeNode {
	kind := domain.TreeNodeBlob
	switch e.Mode {
	case filemode.Dir:
		kind = domain.TreeNodeTree
	case filemode.Submodule:
		kind = domain.TreeNodeCommit
	}
	return domain.TreeNode{Path: path, Type: kind, SHA: e.Hash.String()}
}
