package handler

import (
	"errors"
	"path"
	"strings"

	"github.com/arturoeanton/codehub/internal/domain"
	"github.com/arturoeanton/codehub/internal/middleware"
	"github.com/arturoeanton/codehub/internal/port"
	"github.com/arturoeanton/codehub/internal/route"
	"github.com/arturoeanton/codehub/internal/service"
	"github.com/gofiber/fiber/v3"
)

// reservedOwners are first path segments that never name a repository owner.
var reservedOwners = map[string]bool{"api": true, "auth": true, "metrics": true}

// PageHandler serves the view models behind browser pages.
type PageHandler struct {
	repos    *service.RepoService
	projects *service.ProjectService
}

// NewPageHandler creates a new page handler.
func NewPageHandler(repos *service.RepoService, projects *service.ProjectService) *PageHandler {
	return &PageHandler{repos: repos, projects: projects}
}

// Register sets up page routes. The repository catch-all must come after
// every other route.
func (h *PageHandler) Register(app fiber.Router) {
	app.Get("/dashboard", h.Dashboard)
	app.Get("/group/:slug", h.Group)
	app.Get("/tasks", h.Tasks)
	app.Get("/tasks/:id", h.Task)
	app.Get("/:owner/:repo", h.Repo)
	app.Get("/:owner/:repo/*", h.Repo)
}

// RepoPage is the overview page of a repository.
type RepoPage struct {
	Route      route.Key         `json:"route"`
	Repository *service.Overview `json:"repository"`
	Readme     *service.Readme   `json:"readme"`
}

// TreePage is a directory listing page.
type TreePage struct {
	Route   route.Key          `json:"route"`
	Entries []domain.FileEntry `json:"entries"`
}

// BlobPage is a single file page. HTML is set for Markdown files.
type BlobPage struct {
	Route route.Key         `json:"route"`
	File  *domain.FileEntry `json:"file"`
	HTML  string            `json:"html,omitempty"`
}

// Repo resolves /{owner}/{repo}[/tree|blob/...] and returns its view model.
func (h *PageHandler) Repo(c fiber.Ctx) error {
	if reservedOwners[c.Params("owner")] {
		return c.Next()
	}

	key, err := route.Resolve(c.Path())
	if err != nil {
		return respondError(c, err)
	}
	ctx := c.Context()

	switch key.View {
	case route.ViewTree:
		entries, err := h.repos.ListTree(ctx, key.Owner, key.Repo, key.Path, key.Branch)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(TreePage{Route: key, Entries: entries})

	case route.ViewBlob:
		file, err := h.repos.Raw(ctx, key.Owner, key.Repo, key.Branch, key.Path)
		if err != nil {
			return respondError(c, err)
		}
		page := BlobPage{Route: key, File: file}
		if isMarkdown(file.Name) {
			repo, err := h.repos.Lookup(ctx, key.Owner, key.Repo)
			if err != nil {
				return respondError(c, err)
			}
			doc, err := h.repos.RenderDocument(ctx, repo, key.Branch, file.Path)
			if err != nil {
				return respondError(c, err)
			}
			page.HTML = doc.HTML
		}
		return c.JSON(page)
	}

	ov, err := h.repos.Overview(ctx, key.Owner, key.Repo)
	if err != nil {
		return respondError(c, err)
	}
	readme, err := h.repos.Readme(ctx, key.Owner, key.Repo, ov.DefaultBranch)
	if err != nil && !errors.Is(err, port.ErrNotFound) {
		return respondError(c, err)
	}
	return c.JSON(RepoPage{Route: key, Repository: ov, Readme: readme})
}

func isMarkdown(name string) bool {
	switch strings.ToLower(path.Ext(name)) {
	case ".md", ".markdown":
		return true
	}
	return false
}

// Dashboard lists the caller's repositories next to the top projects.
func (h *PageHandler) Dashboard(c fiber.Ctx) error {
	uc := middleware.GetUserContext(c)
	if uc == nil {
		return respondError(c, port.ErrUnauthorized)
	}

	repos, err := h.repos.ListForUser(c.Context(), uc)
	if err != nil {
		return respondError(c, err)
	}
	if repos == nil {
		repos = []domain.Repository{}
	}
	top, err := h.projects.Top(c.Context(), 0)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"user":         uc,
		"repositories": repos,
		"topProjects":  top,
	})
}

// Group shows a group and its projects.
func (h *PageHandler) Group(c fiber.Ctx) error {
	if middleware.GetUserContext(c) == nil {
		return respondError(c, port.ErrUnauthorized)
	}

	g, err := h.projects.Group(c.Context(), c.Params("slug"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(g)
}

// Tasks lists open tasks.
func (h *PageHandler) Tasks(c fiber.Ctx) error {
	if middleware.GetUserContext(c) == nil {
		return respondError(c, port.ErrUnauthorized)
	}

	tasks, err := h.projects.Tasks(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(tasks)
}

// Task shows one task with the caller's feedback.
func (h *PageHandler) Task(c fiber.Ctx) error {
	uc := middleware.GetUserContext(c)
	if uc == nil {
		return respondError(c, port.ErrUnauthorized)
	}

	detail, err := h.projects.Task(c.Context(), uc, c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(detail)
}
