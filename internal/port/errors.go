package port

import (
	"errors"
	"fmt"
)

// Sentinel errors used across ports.
var (
	ErrNotFound     = errors.New("not found")
	ErrBadRequest   = errors.New("bad request")
	ErrConflict     = errors.New("already exists")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("token invalid")

	// Not-found variants; all match ErrNotFound with errors.Is.
	ErrRepoNotFound   = fmt.Errorf("repository %w", ErrNotFound)
	ErrBranchNotFound = fmt.Errorf("branch %w", ErrNotFound)
	ErrFileNotFound   = fmt.Errorf("file %w", ErrNotFound)
	ErrUserNotFound   = fmt.Errorf("user %w", ErrNotFound)
	ErrGroupNotFound  = fmt.Errorf("group %w", ErrNotFound)
	ErrTaskNotFound   = fmt.Errorf("task %w", ErrNotFound)
)
