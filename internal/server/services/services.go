// Package services contains server-side business logic: authentication,
// invite-based registration, the access control gate, user administration
// and the watchlist analytics facade.
package services

import (
	"context"
	"errors"
	"time"

	"github.com/calebglawson/cecil/internal/common"
	"github.com/calebglawson/cecil/internal/logging"
)

// PasswordHasher hashes and checks secrets. auth.PasswordHasher implements it.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hash string) bool
}

// TokenIssuer mints bearer tokens. auth.TokenCodec implements it.
type TokenIssuer interface {
	Issue(subject string, ttl time.Duration) (string, error)
}

// TokenVerifier checks bearer tokens. auth.TokenCodec implements it.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// publicErrors are the sentinels that may cross the service boundary as is.
var publicErrors = []error{
	common.ErrorNotFound,
	common.ErrorAlreadyExists,
	common.ErrVersionConflict,
	common.ErrInvalidID,
	common.ErrInvalidInput,
	common.ErrUnauthenticated,
	common.ErrInactiveUser,
	common.ErrInsufficientPrivilege,
	common.ErrInvalidCredentials,
	common.ErrInvalidInviteCode,
	common.ErrMismatch,
}

// sanitize returns known sentinels unchanged. Anything else is logged with
// op and replaced by common.ErrorInternal.
func sanitize(ctx context.Context, logger logging.Logger, op string, err error) error {
	if err == nil {
		return nil
	}
	for _, known := range publicErrors {
		if errors.Is(err, known) {
			return known
		}
	}
	logger.Error(ctx, "service error", "op", op, "error", err)
	return common.ErrorInternal
}

func utcNow() time.Time {
	return time.Now().UTC()
}
