package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/calebglawson/cecil/internal/common"
	"github.com/calebglawson/cecil/internal/logging"
	"github.com/calebglawson/cecil/internal/server/models"
	"github.com/calebglawson/cecil/internal/server/repositories/repomanager"
)

// AuthService handles login, password rotation and the caller's own record.
type AuthService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	hasher      PasswordHasher
	issuer      TokenIssuer
	tokenTTL    time.Duration
	logger      logging.Logger
	now         func() time.Time

	// dummyHash is verified against when the username is unknown, so both
	// failure paths cost one bcrypt comparison.
	dummyHash string
}

func NewAuthService(db *sql.DB, m repomanager.RepositoryManager, hasher PasswordHasher, issuer TokenIssuer, tokenTTL time.Duration, logger logging.Logger) *AuthService {
	dummy, _ := hasher.Hash("cecil-dummy-password")
	return &AuthService{
		db:          db,
		repomanager: m,
		hasher:      hasher,
		issuer:      issuer,
		tokenTTL:    tokenTTL,
		logger:      logger,
		now:         utcNow,
		dummyHash:   dummy,
	}
}

// Login checks the credentials and returns a bearer token. Unknown users,
// deactivated users and wrong passwords are indistinguishable.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, error) {
	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.hasher.Verify(password, s.dummyHash)
			return "", common.ErrInvalidCredentials
		}
		return "", sanitize(ctx, s.logger, "login", err)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return "", common.ErrInvalidCredentials
	}
	if user.Role == models.RoleDeactivated {
		return "", common.ErrInvalidCredentials
	}

	if err := repo.TouchLastLogin(ctx, user.ID, s.now()); err != nil {
		return "", sanitize(ctx, s.logger, "login", err)
	}

	token, err := s.issuer.Issue(user.Username, s.tokenTTL)
	if err != nil {
		return "", sanitize(ctx, s.logger, "login", err)
	}

	s.logger.Info(ctx, "user logged in", "user_id", user.ID)
	return token, nil
}

// ChangePassword replaces the caller's password after checking the old one.
// A confirmation that differs from newPassword fails before anything else.
func (s *AuthService) ChangePassword(ctx context.Context, identity models.InternalUser, oldPassword, newPassword, confirm string) error {
	if newPassword != confirm {
		return common.ErrMismatch
	}

	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByID(ctx, identity.ID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrUnauthenticated
		}
		return sanitize(ctx, s.logger, "change password", err)
	}

	if !s.hasher.Verify(oldPassword, user.PasswordHash) {
		return common.ErrInvalidCredentials
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return sanitize(ctx, s.logger, "change password", err)
	}

	if err := repo.UpdatePassword(ctx, user.ID, hash); err != nil {
		return sanitize(ctx, s.logger, "change password", err)
	}

	s.logger.Info(ctx, "password changed", "user_id", user.ID)
	return nil
}

// Me returns the caller's current record without the password hash.
func (s *AuthService) Me(ctx context.Context, identity models.InternalUser) (*models.InternalUser, error) {
	user, err := s.repomanager.Users(s.db).GetByID(ctx, identity.ID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrUnauthenticated
		}
		return nil, sanitize(ctx, s.logger, "me", err)
	}
	pub := user.Public()
	return &pub, nil
}
