// Package roles reads the fixed role table seeded by the first migration.
package roles

import (
	"context"

	"github.com/calebglawson/cecil/internal/server/models"
)

type Repository interface {
	List(ctx context.Context) (map[models.Role]string, error)
}
