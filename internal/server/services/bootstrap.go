package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/calebglawson/cecil/internal/dbx"
	"github.com/calebglawson/cecil/internal/logging"
	"github.com/calebglawson/cecil/internal/server/models"
	"github.com/calebglawson/cecil/internal/server/repositories/repomanager"
)

const (
	DefaultAdminUsername = "admin"
	DefaultAdminPassword = "password"
)

// Bootstrap prepares a freshly migrated store: it checks the seeded roles
// and, when there are no users at all, creates the default admin account.
// It reports whether the admin was created.
func Bootstrap(ctx context.Context, db *sql.DB, m repomanager.RepositoryManager, hasher PasswordHasher, logger logging.Logger) (bool, error) {
	seeded, err := m.Roles(db).List(ctx)
	if err != nil {
		return false, err
	}
	for _, r := range []models.Role{models.RoleDeactivated, models.RoleAdmin, models.RoleNonPrivileged} {
		if _, ok := seeded[r]; !ok {
			return false, fmt.Errorf("role %s (%d) missing from store", r, int(r))
		}
	}

	hash, err := hasher.Hash(DefaultAdminPassword)
	if err != nil {
		return false, err
	}

	created, err := dbx.WithTxResult(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) (bool, error) {
		repo := m.Users(tx)

		n, err := repo.Count(ctx)
		if err != nil {
			return false, err
		}
		if n > 0 {
			return false, nil
		}

		_, err = repo.Create(ctx, &models.InternalUser{
			Username:     DefaultAdminUsername,
			PasswordHash: hash,
			Role:         models.RoleAdmin,
			CreatedAt:    utcNow(),
		})
		return err == nil, err
	})
	if err != nil {
		return false, err
	}

	if created {
		logger.Warn(ctx, "created default admin account; change its password with `cecilctl passwd`",
			"username", DefaultAdminUsername)
	}
	return created, nil
}
