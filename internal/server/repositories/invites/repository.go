// Package invites persists hashed registration invite codes.
package invites

import (
	"context"

	"github.com/calebglawson/cecil/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, invite *models.InviteCode) (*models.InviteCode, error)
	List(ctx context.Context) ([]models.InviteCode, error)
	Delete(ctx context.Context, id int64) error
}
