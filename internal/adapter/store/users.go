package store

import (
	"context"
	"fmt"

	"github.com/arturoeanton/codehub/internal/domain"
	"github.com/arturoeanton/codehub/internal/port"
	"gorm.io/gorm/clause"
)

// --- Users ---

// UpsertUser inserts or updates a user by username, refreshing profile fields.
func (s *PostgresStore) UpsertUser(ctx context.Context, u *domain.User) (*domain.User, error) {
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "username"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "email", "avatar_url", "provider", "provider_id", "access_token", "updated_at"}),
	}).Create(u).Error
	if err != nil {
		return nil, fmt.Errorf("upsert user: %w", err)
	}

	// The conflict path keeps the stored id, not the one generated for u.
	var user domain.User
	if err := s.db.WithContext(ctx).Where("username = ?", u.Username).First(&user).Error; err != nil {
		return nil, fmt.Errorf("reload user: %w", err)
	}
	return &user, nil
}

// GetUserByID retrieves a user by ID.
func (s *PostgresStore) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	var user domain.User
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, fmt.Errorf("get user: %w", notFound(err, port.ErrUserNotFound))
	}
	return &user, nil
}
