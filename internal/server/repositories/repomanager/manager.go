package repomanager

import (
	"context"
	"database/sql"

	"github.com/calebglawson/cecil/internal/dbx"
	"github.com/calebglawson/cecil/internal/server/repositories/invites"
	"github.com/calebglawson/cecil/internal/server/repositories/roles"
	"github.com/calebglawson/cecil/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Invites(db dbx.DBTX) invites.Repository
	Roles(db dbx.DBTX) roles.Repository
}
