package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Group is a namespace (course, team) that owns projects.
type Group struct {
	ID        string    `json:"id"   gorm:"type:varchar(36);primaryKey"`
	Name      string    `json:"name" gorm:"not null"`
	Slug      string    `json:"slug" gorm:"size:100;not null;uniqueIndex"`
	CreatedAt time.Time `json:"-"`

	Projects []Project `json:"projects,omitempty"`
}

// BeforeCreate assigns a UUID when missing.
func (g *Group) BeforeCreate(*gorm.DB) error {
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	return nil
}

// Project belongs to a group and is listed independently of repositories.
type Project struct {
	ID          string    `json:"id"          gorm:"type:varchar(36);primaryKey"`
	Name        string    `json:"name"        gorm:"not null"`
	Description string    `json:"description"`
	Private     bool      `json:"isPrivate"   gorm:"default:false;index"`
	Archived    bool      `json:"isArchived"  gorm:"default:false;index"`
	GroupID     *string   `json:"-"           gorm:"type:varchar(36);index"`
	Group       *Group    `json:"group,omitempty"`
	CreatedAt   time.Time `json:"createdAt"   gorm:"index"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// BeforeCreate assigns a UUID when missing.
func (p *Project) BeforeCreate(*gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// Task is an assignment inside a project that students receive feedback on.
type Task struct {
	ID          string     `json:"id"          gorm:"type:varchar(36);primaryKey"`
	ProjectID   string     `json:"-"           gorm:"type:varchar(36);not null;index"`
	Project     *Project   `json:"project,omitempty"`
	Title       string     `json:"title"       gorm:"not null"`
	Description string     `json:"description"`
	DueAt       *time.Time `json:"dueAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// BeforeCreate assigns a UUID when missing.
func (t *Task) BeforeCreate(*gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

// Feedback is a grader's comment and optional grade for one user on one task.
type Feedback struct {
	ID        uint      `json:"id"              gorm:"primaryKey"`
	TaskID    string    `json:"-"               gorm:"type:varchar(36);not null;index"`
	UserID    string    `json:"-"               gorm:"type:varchar(36);not null;index"`
	GraderID  *string   `json:"-"               gorm:"type:varchar(36)"`
	Grader    *User     `json:"grader,omitempty"`
	Grade     *float64  `json:"grade,omitempty"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"createdAt"`
}
