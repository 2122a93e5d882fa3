package handler

import (
	"path"
	"strings"

	"github.com/arturoeanton/codehub/internal/middleware"
	"github.com/arturoeanton/codehub/internal/service"
	"github.com/gofiber/fiber/v3"
)

// RepoHandler serves the repository JSON API.
type RepoHandler struct {
	repos *service.RepoService
}

// NewRepoHandler creates a new repo handler.
func NewRepoHandler(repos *service.RepoService) *RepoHandler {
	return &RepoHandler{repos: repos}
}

// Register sets up repository routes. Writes go through requireSession.
func (h *RepoHandler) Register(app fiber.Router, requireSession fiber.Handler) {
	repos := app.Group("/api/repositories")
	repos.Post("/", requireSession, h.Create)
	repos.Get("/:owner/:repo/overview", h.Overview)
	repos.Get("/:owner/:repo/tree", h.Tree)
	repos.Get("/:owner/:repo/raw", h.Raw)
	repos.Get("/:owner/:repo/readme", h.Readme)
	repos.Get("/:owner/:repo/branches", h.Branches)
	repos.Get("/:owner/:repo/issues", h.Issues)
	repos.Delete("/:owner/:repo", requireSession, h.Delete)
	repos.Put("/:owner/:repo/star", requireSession, h.Star)
	repos.Delete("/:owner/:repo/star", requireSession, h.Unstar)
}

// Overview returns repository metadata with topics, contributors and stars.
func (h *RepoHandler) Overview(c fiber.Ctx) error {
	ov, err := h.repos.Overview(c.Context(), c.Params("owner"), c.Params("repo"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(ov)
}

// Tree lists one directory level, directories first.
func (h *RepoHandler) Tree(c fiber.Ctx) error {
	entries, err := h.repos.ListTree(c.Context(), c.Params("owner"), c.Params("repo"), c.Query("path"), c.Query("branch"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(entries)
}

// activeContent lists extensions a browser would execute or render as a
// document when served inline.
var activeContent = map[string]bool{
	"html": true, "htm": true, "xhtml": true, "xht": true,
	"svg": true, "svgz": true, "xml": true, "xsl": true, "xslt": true,
	"js": true, "mjs": true,
}

// Raw streams a stored file. Active content is served as an attachment
// in text/plain.
func (h *RepoHandler) Raw(c fiber.Ctx) error {
	filePath := c.Query("path")
	if filePath == "" {
		return respondError(c, errBadRequest("path is required"))
	}

	entry, err := h.repos.Raw(c.Context(), c.Params("owner"), c.Params("repo"), c.Query("branch"), filePath)
	if err != nil {
		return respondError(c, err)
	}

	ext := strings.ToLower(strings.TrimPrefix(path.Ext(entry.Name), "."))
	switch {
	case activeContent[ext]:
		c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
		c.Set(fiber.HeaderContentDisposition, "attachment")
	case ext != "":
		c.Type(ext)
	default:
		c.Set(fiber.HeaderContentType, fiber.MIMEOctetStream)
	}
	c.Set(fiber.HeaderXContentTypeOptions, "nosniff")
	return c.Send(entry.Content)
}

// Readme renders the root README.
func (h *RepoHandler) Readme(c fiber.Ctx) error {
	readme, err := h.repos.Readme(c.Context(), c.Params("owner"), c.Params("repo"), c.Query("branch"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(readme)
}

// Branches lists the repository's branches.
func (h *RepoHandler) Branches(c fiber.Ctx) error {
	branches, err := h.repos.Branches(c.Context(), c.Params("owner"), c.Params("repo"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(branches)
}

// Issues lists issues filtered by ?state=.
func (h *RepoHandler) Issues(c fiber.Ctx) error {
	issues, err := h.repos.Issues(c.Context(), c.Params("owner"), c.Params("repo"), c.Query("state"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(issues)
}

// Create registers a repository owned by the caller.
func (h *RepoHandler) Create(c fiber.Ctx) error {
	var in service.CreateRepoInput
	if err := c.Bind().JSON(&in); err != nil {
		return respondError(c, errBadRequest("invalid request body"))
	}

	repo, err := h.repos.Create(c.Context(), middleware.GetUserContext(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(repo)
}

// Delete removes a repository owned by the caller.
func (h *RepoHandler) Delete(c fiber.Ctx) error {
	if err := h.repos.Delete(c.Context(), middleware.GetUserContext(c), c.Params("owner"), c.Params("repo")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Star stars the repository for the caller.
func (h *RepoHandler) Star(c fiber.Ctx) error {
	return h.setStar(c, true)
}

// Unstar removes the caller's star.
func (h *RepoHandler) Unstar(c fiber.Ctx) error {
	return h.setStar(c, false)
}

func (h *RepoHandler) setStar(c fiber.Ctx, starred bool) error {
	n, err := h.repos.Star(c.Context(), middleware.GetUserContext(c), c.Params("owner"), c.Params("repo"), starred)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"starCount": n})
}
