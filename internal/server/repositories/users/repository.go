// Package users persists internal dashboard users.
package users

import (
	"context"
	"time"

	"github.com/calebglawson/cecil/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, user *models.InternalUser) (*models.InternalUser, error)
	GetByUsername(ctx context.Context, username string) (*models.InternalUser, error)
	GetByID(ctx context.Context, id int64) (*models.InternalUser, error)
	List(ctx context.Context) ([]models.InternalUser, error)
	Count(ctx context.Context) (int64, error)
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	UpdateRole(ctx context.Context, id int64, role models.Role) error
	TouchLastLogin(ctx context.Context, id int64, at time.Time) error
}
