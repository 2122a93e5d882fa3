package port

import (
	"context"

	"github.com/arturoeanton/codehub/internal/domain"
)

// TreeWalkRequest describes one walk over a commit tree.
type TreeWalkRequest struct {
	StoragePath string // location of the git object store
	Branch      string // used to resolve refs/heads/<branch> when Commit is empty
	Commit      string // head commit id, may be empty
	Recursive   bool
	MaxEntries  int
}

// TreeWalker abstracts reading commit trees from a version-control object store.
type TreeWalker interface {
	// WalkTree lists the entries of the commit's tree. Walks that hit
	// MaxEntries stop early and report truncated=true.
	WalkTree(ctx context.Context, req TreeWalkRequest) (*domain.CommitTree, error)
}
