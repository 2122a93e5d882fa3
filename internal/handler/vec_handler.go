package handler

import (
	"strconv"

	"github.com/arturoeanton/codehub/internal/service"
	"github.com/gofiber/fiber/v3"
)

// VecHandler serves the commit tree endpoint.
type VecHandler struct {
	repos *service.RepoService
}

// NewVecHandler creates a new commit tree handler.
func NewVecHandler(repos *service.RepoService) *VecHandler {
	return &VecHandler{repos: repos}
}

// Register sets up the commit tree route.
func (h *VecHandler) Register(app fiber.Router) {
	app.Get("/api/vec/repos/:owner/:repo/tree", h.Tree)
}

// Tree walks the head commit of ?branch=, optionally recursively.
func (h *VecHandler) Tree(c fiber.Ctx) error {
	branch := c.Query("branch")
	if branch == "" {
		return respondError(c, errBadRequest("branch is required"))
	}
	recursive, _ := strconv.ParseBool(c.Query("recursive"))

	tree, err := h.repos.CommitTree(c.Context(), c.Params("owner"), c.Params("repo"), branch, recursive)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(tree)
}
