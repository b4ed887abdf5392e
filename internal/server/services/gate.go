package services

import (
	"context"
	"database/sql"
	"errors"

	"github.com/calebglawson/cecil/internal/common"
	"github.com/calebglawson/cecil/internal/logging"
	"github.com/calebglawson/cecil/internal/server/models"
	"github.com/calebglawson/cecil/internal/server/repositories/repomanager"
)

// AccessLevel is what an operation demands of its caller.
type AccessLevel int

const (
	// AccessPublic operations skip the gate (login, registration).
	AccessPublic AccessLevel = iota
	// AccessActive needs any non-deactivated user.
	AccessActive
	// AccessAdmin needs an active admin.
	AccessAdmin
)

func (l AccessLevel) String() string {
	switch l {
	case AccessPublic:
		return "public"
	case AccessActive:
		return "active"
	case AccessAdmin:
		return "admin"
	default:
		return "unknown"
	}
}

// Gate resolves a bearer token to an authorized identity.
type Gate struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	verifier    TokenVerifier
	logger      logging.Logger
}

func NewGate(db *sql.DB, m repomanager.RepositoryManager, verifier TokenVerifier, logger logging.Logger) *Gate {
	return &Gate{db: db, repomanager: m, verifier: verifier, logger: logger}
}

// Authorize verifies token, loads its user and checks it against level. The
// returned user carries no password hash.
//
//	bad or missing token, unknown user   common.ErrUnauthenticated
//	deactivated user                     common.ErrInactiveUser
//	admin level, non-admin user          common.ErrInsufficientPrivilege
func (g *Gate) Authorize(ctx context.Context, token string, level AccessLevel) (*models.InternalUser, error) {
	if token == "" {
		return nil, common.ErrUnauthenticated
	}

	username, err := g.verifier.Verify(token)
	if err != nil {
		return nil, common.ErrUnauthenticated
	}

	user, err := g.repomanager.Users(g.db).GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrUnauthenticated
		}
		return nil, sanitize(ctx, g.logger, "authorize", err)
	}

	if user.Role == models.RoleDeactivated {
		return nil, common.ErrInactiveUser
	}
	if level == AccessAdmin && user.Role != models.RoleAdmin {
		return nil, common.ErrInsufficientPrivilege
	}

	pub := user.Public()
	return &pub, nil
}
