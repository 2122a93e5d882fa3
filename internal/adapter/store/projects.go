package store

import (
	"context"
	"fmt"

	"github.com/arturoeanton/codehub/internal/domain"
	"github.com/arturoeanton/codehub/internal/port"
	"gorm.io/gorm"
)

// --- Projects ---

// TopProjects returns public, non-archived projects with their group, newest first.
func (s *PostgresStore) TopProjects(ctx context.Context, limit int) ([]domain.Project, error) {
	projects := []domain.Project{}
	err := s.db.WithContext(ctx).
		Preload("Group").
		Where("archived = ? AND private = ?", false, false).
		Order("created_at DESC").
		Limit(limit).
		Find(&projects).Error
	if err != nil {
		return nil, fmt.Errorf("top projects: %w", err)
	}
	return projects, nil
}

// FindGroup returns a group by slug with its non-archived projects.
func (s *PostgresStore) FindGroup(ctx context.Context, slug string) (*domain.Group, error) {
	var g domain.Group
	err := s.db.WithContext(ctx).
		Preload("Projects", func(db *gorm.DB) *gorm.DB {
			return db.Where("archived = ?", false).Order("created_at DESC")
		}).
		Where("slug = ?", slug).
		First(&g).Error
	if err != nil {
		return nil, fmt.Errorf("find group %s: %w", slug, notFound(err, port.ErrGroupNotFound))
	}
	return &g, nil
}

// --- Tasks ---

// ListTasks returns tasks of non-archived projects, soonest due first.
func (s *PostgresStore) ListTasks(ctx context.Context) ([]domain.Task, error) {
	tasks := []domain.Task{}
	err := s.db.WithContext(ctx).
		Preload("Project").
		Joins("JOIN projects p ON p.id = tasks.project_id").
		Where("p.archived = ?", false).
		Order("tasks.due_at IS NULL").
		Order("tasks.due_at").
		Order("tasks.created_at DESC").
		Find(&tasks).Error
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

// FindTask returns a task with its project.
func (s *PostgresStore) FindTask(ctx context.Context, id string) (*domain.Task, error) {
	var t domain.Task
	err := s.db.WithContext(ctx).Preload("Project").Where("id = ?", id).First(&t).Error
	if err != nil {
		return nil, fmt.Errorf("find task %s: %w", id, notFound(err, port.ErrTaskNotFound))
	}
	return &t, nil
}

// ListFeedback returns the feedback a user received on a task, newest first.
func (s *PostgresStore) ListFeedback(ctx context.Context, taskID, userID string) ([]domain.Feedback, error) {
	feedback := []domain.Feedback{}
	err := s.db.WithContext(ctx).
		Preload("Grader").
		Where("task_id = ? AND user_id = ?", taskID, userID).
		Order("created_at DESC").
		Find(&feedback).Error
	if err != nil {
		return nil, fmt.Errorf("list feedback: %w", err)
	}
	return feedback, nil
}
