package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/calebglawson/cecil/internal/common"
	"github.com/calebglawson/cecil/internal/dbx"
	"github.com/calebglawson/cecil/internal/logging"
	"github.com/calebglawson/cecil/internal/server/models"
	"github.com/calebglawson/cecil/internal/server/repositories/repomanager"
)

// inviteCodeBytes is the entropy of generated invite codes.
const inviteCodeBytes = 16

// CreatedInvite is returned once, at creation. Code is the plaintext the
// invitee registers with; only its hash is stored.
type CreatedInvite struct {
	Invite models.InviteCode
	Code   string
}

// InviteService manages single-use invite codes and the registration that
// consumes them.
type InviteService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	hasher      PasswordHasher
	inviteTTL   time.Duration
	logger      logging.Logger
	now         func() time.Time
}

func NewInviteService(db *sql.DB, m repomanager.RepositoryManager, hasher PasswordHasher, inviteTTL time.Duration, logger logging.Logger) *InviteService {
	return &InviteService{
		db:          db,
		repomanager: m,
		hasher:      hasher,
		inviteTTL:   inviteTTL,
		logger:      logger,
		now:         utcNow,
	}
}

// Create stores a new invite made by admin. An empty rawCode gets a random
// one; a zero ttl uses the configured invite lifetime.
func (s *InviteService) Create(ctx context.Context, admin models.InternalUser, rawCode string, ttl time.Duration) (*CreatedInvite, error) {
	if admin.Role != models.RoleAdmin {
		return nil, common.ErrInsufficientPrivilege
	}

	if rawCode == "" {
		code, err := common.MakeRandHexString(inviteCodeBytes)
		if err != nil {
			return nil, sanitize(ctx, s.logger, "create invite", err)
		}
		rawCode = code
	}
	if ttl <= 0 {
		ttl = s.inviteTTL
	}

	hash, err := s.hasher.Hash(rawCode)
	if err != nil {
		return nil, sanitize(ctx, s.logger, "create invite", err)
	}

	now := s.now()
	invite, err := s.repomanager.Invites(s.db).Create(ctx, &models.InviteCode{
		HashedCode: hash,
		CreatedBy:  admin.ID,
		CreatedAt:  now,
		ExpiresAt:  now.Add(ttl),
	})
	if err != nil {
		return nil, sanitize(ctx, s.logger, "create invite", err)
	}

	s.logger.Info(ctx, "invite created", "invite_id", invite.ID, "created_by", admin.ID, "expires_at", invite.ExpiresAt)

	out := *invite
	out.HashedCode = ""
	return &CreatedInvite{Invite: out, Code: rawCode}, nil
}

// Register creates a NonPrivileged user by consuming the outstanding,
// unexpired invite matching rawCode. The invite deletion and the user insert
// commit together; of two registrations racing for one code exactly one
// succeeds and the other gets common.ErrInvalidInviteCode.
func (s *InviteService) Register(ctx context.Context, username, password, rawCode string) (*models.InternalUser, error) {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, sanitize(ctx, s.logger, "register", err)
	}

	user, err := dbx.WithTxResult(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) (*models.InternalUser, error) {
		invitesRepo := s.repomanager.Invites(tx)
		usersRepo := s.repomanager.Users(tx)

		outstanding, err := invitesRepo.List(ctx)
		if err != nil {
			return nil, err
		}

		now := s.now()
		var match *models.InviteCode
		for i := range outstanding {
			if outstanding[i].Expired(now) {
				continue
			}
			if s.hasher.Verify(rawCode, outstanding[i].HashedCode) {
				match = &outstanding[i]
				break
			}
		}
		if match == nil {
			return nil, common.ErrInvalidInviteCode
		}

		if _, err := usersRepo.GetByUsername(ctx, username); err == nil {
			return nil, common.ErrorAlreadyExists
		} else if !errors.Is(err, common.ErrorNotFound) {
			return nil, err
		}

		if err := invitesRepo.Delete(ctx, match.ID); err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return nil, common.ErrInvalidInviteCode
			}
			return nil, err
		}

		invitedBy := match.CreatedBy
		return usersRepo.Create(ctx, &models.InternalUser{
			Username:     username,
			PasswordHash: hash,
			Role:         models.RoleNonPrivileged,
			InvitedBy:    &invitedBy,
			CreatedAt:    now,
		})
	})
	if err != nil {
		return nil, sanitize(ctx, s.logger, "register", err)
	}

	s.logger.Info(ctx, "user registered", "user_id", user.ID, "invited_by", *user.InvitedBy)
	pub := user.Public()
	return &pub, nil
}

// List returns every stored invite without hashes.
func (s *InviteService) List(ctx context.Context) ([]models.InviteCode, error) {
	all, err := s.repomanager.Invites(s.db).List(ctx)
	if err != nil {
		return nil, sanitize(ctx, s.logger, "list invites", err)
	}
	for i := range all {
		all[i].HashedCode = ""
	}
	return all, nil
}

// Delete removes an invite; an unknown id is common.ErrorNotFound.
func (s *InviteService) Delete(ctx context.Context, id int64) error {
	if err := s.repomanager.Invites(s.db).Delete(ctx, id); err != nil {
		return sanitize(ctx, s.logger, "delete invite", err)
	}
	s.logger.Info(ctx, "invite deleted", "invite_id", id)
	return nil
}

// PurgeExpired deletes every invite whose expiry is not after now and
// returns how many went.
func (s *InviteService) PurgeExpired(ctx context.Context) (int, error) {
	purged, err := dbx.WithTxResult(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) (int, error) {
		repo := s.repomanager.Invites(tx)

		all, err := repo.List(ctx)
		if err != nil {
			return 0, err
		}

		now := s.now()
		n := 0
		for _, inv := range all {
			if !inv.Expired(now) {
				continue
			}
			if err := repo.Delete(ctx, inv.ID); err != nil {
				if errors.Is(err, common.ErrorNotFound) {
					continue
				}
				return 0, err
			}
			n++
		}
		return n, nil
	})
	if err != nil {
		return 0, sanitize(ctx, s.logger, "purge invites", err)
	}

	if purged > 0 {
		s.logger.Info(ctx, "expired invites purged", "count", purged)
	}
	return purged, nil
}
