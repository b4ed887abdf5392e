package services

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/calebglawson/cecil/internal/common"
	"github.com/calebglawson/cecil/internal/logging"
	"github.com/calebglawson/cecil/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogin_Success(t *testing.T) {
	db, m := newStore(t)
	seedUser(t, db, m, "alice", "pw", models.RoleNonPrivileged)

	codec := newCodec(t)
	s := NewAuthService(db, m, newHasher(), codec, time.Hour, logging.Nop{})

	before := time.Now().UTC().Add(-time.Second)
	token, err := s.Login(context.Background(), "alice", "pw")
	require.NoError(t, err)

	sub, err := codec.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", sub)

	u := loadUser(t, db, m, "alice")
	require.NotNil(t, u.LastLogin)
	assert.True(t, u.LastLogin.After(before))
}

func TestLogin_Failures(t *testing.T) {
	db, m := newStore(t)
	seedUser(t, db, m, "alice", "pw", models.RoleNonPrivileged)
	seedUser(t, db, m, "gone", "pw", models.RoleDeactivated)

	s := NewAuthService(db, m, newHasher(), newCodec(t), time.Hour, logging.Nop{})

	tests := []struct {
		name     string
		username string
		password string
	}{
		{"unknown user", "nobody", "pw"},
		{"wrong password", "alice", "nope"},
		{"deactivated", "gone", "pw"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := s.Login(context.Background(), tt.username, tt.password)
			assert.ErrorIs(t, err, common.ErrInvalidCredentials)
			assert.Empty(t, token)
		})
	}

	assert.Nil(t, loadUser(t, db, m, "gone").LastLogin, "failed login does not touch last_login")
}

func TestLogin_StoreErrorIsInternal(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rm := &fakeRepoManager{u: &fakeUsersRepo{getErr: errBoom}}
	s := NewAuthService(db, rm, newHasher(), newCodec(t), time.Hour, logging.Nop{})

	_, err = s.Login(context.Background(), "alice", "pw")
	assert.ErrorIs(t, err, common.ErrorInternal)
	assert.NotErrorIs(t, err, errBoom)
}

func TestChangePassword(t *testing.T) {
	db, m := newStore(t)
	alice := seedUser(t, db, m, "alice", "old", models.RoleNonPrivileged)
	s := NewAuthService(db, m, newHasher(), newCodec(t), time.Hour, logging.Nop{})
	ctx := context.Background()

	t.Run("mismatch writes nothing", func(t *testing.T) {
		before := loadUser(t, db, m, "alice").PasswordHash

		err := s.ChangePassword(ctx, alice, "old", "new1", "new2")
		assert.ErrorIs(t, err, common.ErrMismatch)
		assert.Equal(t, before, loadUser(t, db, m, "alice").PasswordHash)
	})

	t.Run("mismatch is reported before a wrong old password", func(t *testing.T) {
		err := s.ChangePassword(ctx, alice, "wrong", "a", "b")
		assert.ErrorIs(t, err, common.ErrMismatch)
	})

	t.Run("wrong old password", func(t *testing.T) {
		err := s.ChangePassword(ctx, alice, "wrong", "new", "new")
		assert.ErrorIs(t, err, common.ErrInvalidCredentials)
	})

	t.Run("success", func(t *testing.T) {
		require.NoError(t, s.ChangePassword(ctx, alice, "old", "new", "new"))

		_, err := s.Login(ctx, "alice", "old")
		assert.ErrorIs(t, err, common.ErrInvalidCredentials)
		_, err = s.Login(ctx, "alice", "new")
		assert.NoError(t, err)
	})
}

func TestChangePassword_UpdateErrorIsInternal(t *testing.T) {
	hasher := newHasher()
	hash, err := hasher.Hash("old")
	require.NoError(t, err)

	rm := &fakeRepoManager{u: &fakeUsersRepo{
		getOut:    &models.InternalUser{ID: 1, PasswordHash: hash},
		updateErr: errBoom,
	}}
	s := NewAuthService(nil, rm, hasher, newCodec(t), time.Hour, logging.Nop{})

	err = s.ChangePassword(context.Background(), models.InternalUser{ID: 1}, "old", "n", "n")
	assert.ErrorIs(t, err, common.ErrorInternal)
}

func TestMe(t *testing.T) {
	db, m := newStore(t)
	alice := seedUser(t, db, m, "alice", "pw", models.RoleAdmin)
	s := NewAuthService(db, m, newHasher(), newCodec(t), time.Hour, logging.Nop{})

	me, err := s.Me(context.Background(), alice)
	require.NoError(t, err)
	assert.Equal(t, "alice", me.Username)
	assert.Equal(t, models.RoleAdmin, me.Role)
	assert.Empty(t, me.PasswordHash)

	_, err = s.Me(context.Background(), models.InternalUser{ID: 999})
	assert.ErrorIs(t, err, common.ErrUnauthenticated)
}
