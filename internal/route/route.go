// Package route turns page URLs into repository lookup keys.
package route

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/arturoeanton/codehub/internal/port"
)

// Views a page path can resolve to.
const (
	ViewOverview = "overview"
	ViewTree     = "tree"
	ViewBlob     = "blob"
)

// Key identifies what a page shows.
type Key struct {
	Owner  string `json:"owner"`
	Repo   string `json:"repo"`
	View   string `json:"view"`
	Branch string `json:"branch,omitempty"`
	Path   string `json:"path"`
}

// Resolve parses /{owner}/{repo}[/tree|blob/{branch}[/{path...}]].
// Empty segments are ignored, so "//a/b/" resolves like "/a/b".
func Resolve(rawPath string) (Key, error) {
	p := rawPath
	if unescaped, err := url.PathUnescape(rawPath); err == nil {
		p = unescaped
	}

	var segs []string
	for _, s := range strings.Split(p, "/") {
		if s != "" {
			segs = append(segs, s)
		}
	}

	if len(segs) < 2 {
		return Key{}, fmt.Errorf("resolve %q: missing owner or repository: %w", rawPath, port.ErrBadRequest)
	}

	key := Key{Owner: segs[0], Repo: segs[1], View: ViewOverview}
	if len(segs) == 2 {
		return key, nil
	}

	switch segs[2] {
	case ViewTree, ViewBlob:
		key.View = segs[2]
	default:
		return Key{}, fmt.Errorf("resolve %q: unknown view %q: %w", rawPath, segs[2], port.ErrBadRequest)
	}

	if len(segs) > 3 {
		key.Branch = segs[3]
	}
	if len(segs) > 4 {
		key.Path = strings.Join(segs[4:], "/")
	}

	if key.View == ViewBlob && (key.Branch == "" || key.Path == "") {
		return Key{}, fmt.Errorf("resolve %q: blob needs a branch and a path: %w", rawPath, port.ErrBadRequest)
	}
	return key, nil
}

// String renders the key back into its canonical page path.
func (k Key) String() string {
	var b strings.Builder
	b.WriteString("/" + k.Owner + "/" + k.Repo)
	if k.View == ViewOverview {
		return b.String()
	}
	b.WriteString("/" + k.View)
	if k.Branch != "" {
		b.WriteString("/" + k.Branch)
	}
	if k.Path != "" {
		b.WriteString("/" + k.Path)
	}
	return b.String()
}
