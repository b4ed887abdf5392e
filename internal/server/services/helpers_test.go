package services

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/calebglawson/cecil/internal/dbx"
	"github.com/calebglawson/cecil/internal/server/auth"
	"github.com/calebglawson/cecil/internal/server/models"
	invitesrepo "github.com/calebglawson/cecil/internal/server/repositories/invites"
	"github.com/calebglawson/cecil/internal/server/repositories/repomanager"
	rolesrepo "github.com/calebglawson/cecil/internal/server/repositories/roles"
	usersrepo "github.com/calebglawson/cecil/internal/server/repositories/users"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// --- real store helpers ---

func newStore(t *testing.T) (*sql.DB, *repomanager.SQLRepositoryManager) {
	t.Helper()
	ctx := context.Background()

	db, m, err := repomanager.Open(ctx, "file:"+filepath.Join(t.TempDir(), "cecil.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, m.RunMigrations(ctx, db))
	return db, m
}

func newHasher() *auth.PasswordHasher {
	return auth.NewPasswordHasher(bcrypt.MinCost)
}

func newCodec(t *testing.T) *auth.TokenCodec {
	t.Helper()
	c, err := auth.NewTokenCodec([]byte("test-secret"), "HS256")
	require.NoError(t, err)
	return c
}

func seedUser(t *testing.T, db *sql.DB, m repomanager.RepositoryManager, username, password string, role models.Role) models.InternalUser {
	t.Helper()
	hash, err := newHasher().Hash(password)
	require.NoError(t, err)

	u, err := m.Users(db).Create(context.Background(), &models.InternalUser{
		Username:     username,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    time.Now().UTC(),
	})
	require.NoError(t, err)
	return u.Public()
}

func loadUser(t *testing.T, db *sql.DB, m repomanager.RepositoryManager, username string) *models.InternalUser {
	t.Helper()
	u, err := m.Users(db).GetByUsername(context.Background(), username)
	require.NoError(t, err)
	return u
}

// --- fakes for failure paths ---

var errBoom = errors.New("boom")

type fakeUsersRepo struct {
	usersrepo.Repository

	getErr    error
	getOut    *models.InternalUser
	listErr   error
	updateErr error
}

func (f *fakeUsersRepo) GetByUsername(context.Context, string) (*models.InternalUser, error) {
	return f.getOut, f.getErr
}

func (f *fakeUsersRepo) GetByID(context.Context, int64) (*models.InternalUser, error) {
	return f.getOut, f.getErr
}

func (f *fakeUsersRepo) List(context.Context) ([]models.InternalUser, error) {
	return nil, f.listErr
}

func (f *fakeUsersRepo) UpdateRole(context.Context, int64, models.Role) error {
	return f.updateErr
}

func (f *fakeUsersRepo) UpdatePassword(context.Context, int64, string) error {
	return f.updateErr
}

func (f *fakeUsersRepo) TouchLastLogin(context.Context, int64, time.Time) error {
	return f.updateErr
}

type fakeInvitesRepo struct {
	invitesrepo.Repository

	listOut   []models.InviteCode
	listErr   error
	deleteErr error
	createErr error
}

func (f *fakeInvitesRepo) List(context.Context) ([]models.InviteCode, error) {
	return f.listOut, f.listErr
}

func (f *fakeInvitesRepo) Delete(context.Context, int64) error {
	return f.deleteErr
}

func (f *fakeInvitesRepo) Create(_ context.Context, i *models.InviteCode) (*models.InviteCode, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	return i, nil
}

type fakeRepoManager struct {
	u *fakeUsersRepo
	i *fakeInvitesRepo
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(dbx.DBTX) usersrepo.Repository         { return m.u }
func (m *fakeRepoManager) Invites(dbx.DBTX) invitesrepo.Repository     { return m.i }
func (m *fakeRepoManager) Roles(dbx.DBTX) rolesrepo.Repository         { return nil }
