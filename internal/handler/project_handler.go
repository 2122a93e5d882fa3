package handler

import (
	"strconv"

	"github.com/arturoeanton/codehub/internal/service"
	"github.com/gofiber/fiber/v3"
)

// ProjectHandler serves project listings.
type ProjectHandler struct {
	projects *service.ProjectService
}

// NewProjectHandler creates a new project handler.
func NewProjectHandler(projects *service.ProjectService) *ProjectHandler {
	return &ProjectHandler{projects: projects}
}

// Register sets up project routes.
func (h *ProjectHandler) Register(app fiber.Router) {
	app.Get("/api/projects/top", h.Top)
}

// Top returns the newest public projects. ?limit= that is not a positive
// number falls back to the default.
func (h *ProjectHandler) Top(c fiber.Ctx) error {
	limit, err := strconv.Atoi(c.Query("limit"))
	if err != nil {
		limit = 0
	}

	projects, err := h.projects.Top(c.Context(), limit)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(projects)
}
