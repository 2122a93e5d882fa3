package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DefaultBranch is used when neither the caller nor the repository names one.
const DefaultBranch = "main"

// Repository is a hosted code repository, unique by (owner, name).
type Repository struct {
	ID            string    `json:"id"            gorm:"type:varchar(36);primaryKey"`
	Owner         string    `json:"owner"         gorm:"size:100;not null;uniqueIndex:idx_repositories_owner_name"`
	Name          string    `json:"name"          gorm:"size:100;not null;uniqueIndex:idx_repositories_owner_name"`
	Description   string    `json:"description"`
	DefaultBranch string    `json:"defaultBranch" gorm:"size:255;default:'main'"`
	Private       bool      `json:"isPrivate"     gorm:"default:false"`
	Archived      bool      `json:"isArchived"    gorm:"default:false"`
	StoragePath   string    `json:"-"` // git object store on disk
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`

	Topics       []Topic  `json:"-" gorm:"many2many:repository_topics"`
	Contributors []User   `json:"-" gorm:"many2many:repository_contributors"`
	Stars        []Star   `json:"-"`
	Branches     []Branch `json:"-"`
}

// BeforeCreate assigns a UUID and the default branch when missing.
func (r *Repository) BeforeCreate(*gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.DefaultBranch == "" {
		r.DefaultBranch = DefaultBranch
	}
	return nil
}

// FullName returns "owner/name".
func (r *Repository) FullName() string {
	return r.Owner + "/" + r.Name
}

// Branch is a named line of development inside a repository.
type Branch struct {
	ID           uint      `json:"-"          gorm:"primaryKey"`
	RepositoryID string    `json:"-"          gorm:"type:varchar(36);not null;uniqueIndex:idx_branches_repo_name"`
	Name         string    `json:"name"       gorm:"size:255;not null;uniqueIndex:idx_branches_repo_name"`
	HeadCommit   string    `json:"headCommit" gorm:"size:64"`
	CreatedAt    time.Time `json:"-"`
	UpdatedAt    time.Time `json:"-"`
}

// Topic is a free-form label attached to repositories.
type Topic struct {
	ID   uint   `json:"id"   gorm:"primaryKey"`
	Name string `json:"name" gorm:"size:100;not null;uniqueIndex"`
}

// Star records that a user starred a repository.
type Star struct {
	ID           uint      `json:"-" gorm:"primaryKey"`
	RepositoryID string    `json:"-" gorm:"type:varchar(36);not null;uniqueIndex:idx_stars_repo_user"`
	UserID       string    `json:"-" gorm:"type:varchar(36);not null;uniqueIndex:idx_stars_repo_user"`
	CreatedAt    time.Time `json:"-"`
}

// Issue is a tracked problem or request filed against a repository.
type Issue struct {
	ID           uint       `json:"id"       gorm:"primaryKey"`
	RepositoryID string     `json:"-"        gorm:"type:varchar(36);not null;uniqueIndex:idx_issues_repo_number"`
	Number       int        `json:"number"   gorm:"not null;uniqueIndex:idx_issues_repo_number"`
	Title        string     `json:"title"    gorm:"not null"`
	Body         string     `json:"body"`
	State        string     `json:"state"    gorm:"size:20;default:'open';index"`
	AuthorID     *string    `json:"-"        gorm:"type:varchar(36)"`
	Author       *User      `json:"author,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	ClosedAt     *time.Time `json:"closedAt,omitempty"`
}

// Issue states.
const (
	IssueStateOpen   = "open"
	IssueStateClosed = "closed"
	IssueStateAll    = "all"
)
