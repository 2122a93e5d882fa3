package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/arturoeanton/codehub/internal/domain"
	"github.com/arturoeanton/codehub/internal/port"
)

const (
	// DefaultTopProjects is used when Top is called with a limit <= 0.
	DefaultTopProjects = 5
	// MaxTopProjects caps the limit accepted by Top.
	MaxTopProjects = 50
)

// ProjectService serves project, group and task listings.
type ProjectService struct {
	store port.ProjectStore
}

// NewProjectService creates a new project service.
func NewProjectService(s port.ProjectStore) *ProjectService {
	return &ProjectService{store: s}
}

// ProjectView is a project with its group name flattened in.
type ProjectView struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	GroupName   string    `json:"groupName"`
	GroupSlug   string    `json:"groupSlug,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

func projectView(p *domain.Project) ProjectView {
	v := ProjectView{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		CreatedAt:   p.CreatedAt,
	}
	if p.Group != nil {
		v.GroupName = p.Group.Name
		v.GroupSlug = p.Group.Slug
	}
	return v
}

// Top returns public, non-archived projects, newest first. A limit <= 0
// means the default; larger limits are capped.
func (s *ProjectService) Top(ctx context.Context, limit int) ([]ProjectView, error) {
	if limit <= 0 {
		limit = DefaultTopProjects
	}
	if limit > MaxTopProjects {
		limit = MaxTopProjects
	}

	projects, err := s.store.TopProjects(ctx, limit)
	if err != nil {
		return nil, err
	}

	out := make([]ProjectView, 0, len(projects))
	for i := range projects {
		out = append(out, projectView(&projects[i]))
	}
	return out, nil
}

// GroupView is a group and its active projects.
type GroupView struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	Slug     string        `json:"slug"`
	Projects []ProjectView `json:"projects"`
}

// Group returns the group with the given slug.
func (s *ProjectService) Group(ctx context.Context, slug string) (*GroupView, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, fmt.Errorf("group: slug is required: %w", port.ErrBadRequest)
	}

	g, err := s.store.FindGroup(ctx, slug)
	if err != nil {
		return nil, err
	}

	v := &GroupView{ID: g.ID, Name: g.Name, Slug: g.Slug, Projects: make([]ProjectView, 0, len(g.Projects))}
	for i := range g.Projects {
		p := g.Projects[i]
		p.Group = g
		v.Projects = append(v.Projects, projectView(&p))
	}
	return v, nil
}

// Tasks lists tasks of active projects, soonest due first.
func (s *ProjectService) Tasks(ctx context.Context) ([]domain.Task, error) {
	tasks, err := s.store.ListTasks(ctx)
	if err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = []domain.Task{}
	}
	return tasks, nil
}

// TaskDetail is a task with the caller's feedback.
type TaskDetail struct {
	Task     *domain.Task      `json:"task"`
	Feedback []domain.Feedback `json:"feedback"`
}

// Task returns a task and the feedback the given user received on it.
func (s *ProjectService) Task(ctx context.Context, uc *domain.UserContext, id string) (*TaskDetail, error) {
	task, err := s.store.FindTask(ctx, id)
	if err != nil {
		return nil, err
	}

	feedback, err := s.store.ListFeedback(ctx, task.ID, uc.UserID)
	if err != nil {
		return nil, err
	}
	if feedback == nil {
		feedback = []domain.Feedback{}
	}
	return &TaskDetail{Task: task, Feedback: feedback}, nil
}
