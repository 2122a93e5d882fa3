package domain

import "time"

// Entry types stored in the file table.
const (
	EntryTypeFile = "file"
	EntryTypeDir  = "dir"
)

// FileEntry is a file or directory of a repository on one branch.
// Names are unique within (repository, branch, parent path).
type FileEntry struct {
	ID           uint      `json:"-"              gorm:"primaryKey"`
	RepositoryID string    `json:"-"              gorm:"type:varchar(36);not null;uniqueIndex:idx_files_repo_branch_path;index:idx_files_parent"`
	Branch       string    `json:"-"              gorm:"size:255;not null;uniqueIndex:idx_files_repo_branch_path;index:idx_files_parent"`
	Name         string    `json:"name"           gorm:"not null"`
	Path         string    `json:"path"           gorm:"not null;uniqueIndex:idx_files_repo_branch_path"`
	ParentPath   string    `json:"-"              gorm:"not null;default:'';index:idx_files_parent"`
	Type         string    `json:"type"           gorm:"size:10;not null"`
	Size         *int64    `json:"size,omitempty"`
	Content      []byte    `json:"-"`
	CreatedAt    time.Time `json:"-"`
	UpdatedAt    time.Time `json:"-"`
}

// IsDir reports whether the entry is a directory.
func (e *FileEntry) IsDir() bool {
	return e.Type == EntryTypeDir
}

// Commit tree entry kinds, following git object types.
const (
	TreeNodeBlob   = "blob"
	TreeNodeTree   = "tree"
	TreeNodeCommit = "commit"
)

// TreeNode is one entry of a commit tree walk.
type TreeNode struct {
	Path string `json:"path"`
	Type string `json:"type"`
	SHA  string `json:"sha"`
}

// CommitTree is the result of walking a branch head's tree.
type CommitTree struct {
	Tree      []TreeNode `json:"tree"`
	Truncated bool       `json:"truncated"`
}
