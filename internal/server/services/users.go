package services

import (
	"context"
	"database/sql"

	"github.com/calebglawson/cecil/internal/logging"
	"github.com/calebglawson/cecil/internal/server/models"
	"github.com/calebglawson/cecil/internal/server/repositories/repomanager"
)

// UserAdminService lists and deactivates internal users.
type UserAdminService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
}

func NewUserAdminService(db *sql.DB, m repomanager.RepositoryManager, logger logging.Logger) *UserAdminService {
	return &UserAdminService{db: db, repomanager: m, logger: logger}
}

func (s *UserAdminService) List(ctx context.Context) ([]models.InternalUser, error) {
	all, err := s.repomanager.Users(s.db).List(ctx)
	if err != nil {
		return nil, sanitize(ctx, s.logger, "list users", err)
	}
	for i := range all {
		all[i] = all[i].Public()
	}
	return all, nil
}

// Deactivate revokes all access of user id. Deactivating twice succeeds;
// an unknown id is common.ErrorNotFound.
func (s *UserAdminService) Deactivate(ctx context.Context, id int64) error {
	if err := s.repomanager.Users(s.db).UpdateRole(ctx, id, models.RoleDeactivated); err != nil {
		return sanitize(ctx, s.logger, "deactivate user", err)
	}
	s.logger.Info(ctx, "user deactivated", "user_id", id)
	return nil
}
