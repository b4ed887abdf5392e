package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/calebglawson/cecil/internal/api"
	"github.com/calebglawson/cecil/internal/client/config"
	"github.com/calebglawson/cecil/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type fakeBackend struct {
	token  string
	closed bool

	login       *api.LoginRequest
	changed     *api.ChangePasswordRequest
	invite      *api.CreateInviteRequest
	deleted     int64
	deactivated int64
	registered  *api.RegisterRequest
	relation    *api.RelationRequest
	relationOp  string
	member      *api.MemberRequest
	memberOp    string
	created     string
	note        *api.AnnotationRequest

	err error
}

func (f *fakeBackend) SetToken(t string) { f.token = t }
func (f *fakeBackend) Close() error      { f.closed = true; return nil }

func (f *fakeBackend) Login(_ context.Context, in *api.LoginRequest, _ ...grpc.CallOption) (*api.LoginResponse, error) {
	f.login = in
	if f.err != nil {
		return nil, f.err
	}
	return &api.LoginResponse{AccessToken: "tok-" + in.Username, TokenType: "bearer"}, nil
}

func (f *fakeBackend) Register(_ context.Context, in *api.RegisterRequest, _ ...grpc.CallOption) (*models.InternalUser, error) {
	f.registered = in
	return &models.InternalUser{ID: 5, Username: in.Username}, f.err
}

func (f *fakeBackend) Me(context.Context, ...grpc.CallOption) (*models.InternalUser, error) {
	if f.token == "" {
		return nil, status.Error(codes.Unauthenticated, "not authenticated")
	}
	return &models.InternalUser{ID: 1, Username: "admin", Role: models.RoleAdmin}, nil
}

func (f *fakeBackend) ChangePassword(_ context.Context, in *api.ChangePasswordRequest, _ ...grpc.CallOption) error {
	f.changed = in
	return f.err
}

func (f *fakeBackend) CreateInvite(_ context.Context, in *api.CreateInviteRequest, _ ...grpc.CallOption) (*api.CreateInviteResponse, error) {
	f.invite = in
	if f.err != nil {
		return nil, f.err
	}
	return &api.CreateInviteResponse{
		Invite: models.InviteCode{ID: 3, ExpiresAt: time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)},
		Code:   "deadbeef",
	}, nil
}

func (f *fakeBackend) ListInvites(context.Context, ...grpc.CallOption) (*api.InviteList, error) {
	return &api.InviteList{Invites: []models.InviteCode{{ID: 3, CreatedBy: 1}}}, f.err
}

func (f *fakeBackend) DeleteInvite(_ context.Context, id int64, _ ...grpc.CallOption) error {
	f.deleted = id
	return f.err
}

func (f *fakeBackend) ListAuthUsers(context.Context, ...grpc.CallOption) (*api.AuthUserList, error) {
	return &api.AuthUserList{Users: []models.InternalUser{{ID: 1, Username: "admin", Role: models.RoleAdmin}}}, f.err
}

func (f *fakeBackend) DeactivateUser(_ context.Context, id int64, _ ...grpc.CallOption) error {
	f.deactivated = id
	return f.err
}

func (f *fakeBackend) GetUser(_ context.Context, id string, _ ...grpc.CallOption) (*models.Profile, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.Profile{UserID: id, ScreenName: "gopher", FollowersCount: 12}, nil
}

func (f *fakeBackend) AddUser(_ context.Context, id string, _ ...grpc.CallOption) (*models.Profile, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.Profile{UserID: id}, nil
}

func (f *fakeBackend) WatchlistStats(_ context.Context, in *api.StatsRequest, _ ...grpc.CallOption) (*models.WatchlistOverlap, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.WatchlistOverlap{FollowersPercent: 0.5, RetweetPercent: 1}, nil
}

func (f *fakeBackend) relations(op string, in *api.RelationRequest) (*models.Page[models.HydratedRelation], error) {
	f.relation, f.relationOp = in, op
	if f.err != nil {
		return nil, f.err
	}
	return &models.Page[models.HydratedRelation]{
		Items: []models.HydratedRelation{
			{UserID: "1"},
			{UserID: "2", User: &models.Profile{UserID: "2", ScreenName: "member"}},
		},
		Total: 2,
		Pages: 1,
	}, nil
}

func (f *fakeBackend) Followers(_ context.Context, in *api.RelationRequest, _ ...grpc.CallOption) (*models.Page[models.HydratedRelation], error) {
	return f.relations("followers", in)
}

func (f *fakeBackend) Friends(_ context.Context, in *api.RelationRequest, _ ...grpc.CallOption) (*models.Page[models.HydratedRelation], error) {
	return f.relations("friends", in)
}

func (f *fakeBackend) ListWatchlists(context.Context, ...grpc.CallOption) (*api.StringList, error) {
	return &api.StringList{Items: []string{"alpha", "beta"}}, f.err
}

func (f *fakeBackend) GetWatchlist(_ context.Context, id string, _ ...grpc.CallOption) (*models.WatchlistInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.WatchlistInfo{Name: id, WatchlistCount: 3, WatchwordCount: 1}, nil
}

func (f *fakeBackend) WatchlistMembers(context.Context, string, ...grpc.CallOption) (*api.ProfileList, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &api.ProfileList{Items: []models.Profile{{UserID: "1", ScreenName: "one"}, {UserID: "2"}}}, nil
}

func (f *fakeBackend) CreateWatchlist(_ context.Context, id string, _ ...grpc.CallOption) error {
	f.created = id
	return f.err
}

func (f *fakeBackend) AddMember(_ context.Context, in *api.MemberRequest, _ ...grpc.CallOption) error {
	f.member, f.memberOp = in, "add"
	return f.err
}

func (f *fakeBackend) RemoveMember(_ context.Context, in *api.MemberRequest, _ ...grpc.CallOption) error {
	f.member, f.memberOp = in, "remove"
	return f.err
}

func (f *fakeBackend) Notes(_ context.Context, in *api.AnnotationRequest, _ ...grpc.CallOption) (*models.Page[models.Note], error) {
	f.note = in
	if f.err != nil {
		return nil, f.err
	}
	return &models.Page[models.Note]{Items: []models.Note{{
		NoteID: "n-1", Text: "bot network", CreatedAt: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
	}}}, nil
}

func (f *fakeBackend) AddNote(_ context.Context, in *api.AnnotationRequest, _ ...grpc.CallOption) (*models.Note, error) {
	f.note = in
	if f.err != nil {
		return nil, f.err
	}
	return &models.Note{NoteID: "n-2", Text: in.Text}, nil
}

// stubPasswords makes GetPassword return pws in order.
func stubPasswords(t *testing.T, pws ...string) {
	t.Helper()
	old := readPassword
	t.Cleanup(func() { readPassword = old })
	readPassword = func(int) ([]byte, error) {
		if len(pws) == 0 {
			return nil, errors.New("no more passwords")
		}
		pw := pws[0]
		pws = pws[1:]
		return []byte(pw), nil
	}
}

func newTestApp(t *testing.T, b *fakeBackend, stdin string) (*App, *bytes.Buffer) {
	t.Helper()
	cfg := &config.Config{
		TokenFile: filepath.Join(t.TempDir(), "nested", "token"),
		Timeout:   time.Second,
	}
	var out bytes.Buffer
	return newApp(cfg, b, strings.NewReader(stdin), &out), &out
}

func TestRun_LoginSavesToken(t *testing.T) {
	b := &fakeBackend{}
	app, out := newTestApp(t, b, "admin\n")
	stubPasswords(t, "password")

	require.NoError(t, app.Run(context.Background(), []string{"login"}))
	assert.Equal(t, &api.LoginRequest{Username: "admin", Password: "password"}, b.login)
	assert.Contains(t, out.String(), "Logged in as admin")
	assert.True(t, b.closed)

	data, err := os.ReadFile(app.config.TokenFile)
	require.NoError(t, err)
	assert.Equal(t, "tok-admin\n", string(data))

	info, err := os.Stat(app.config.TokenFile)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestRun_LoginFailureKeepsNoToken(t *testing.T) {
	b := &fakeBackend{err: status.Error(codes.Unauthenticated, "incorrect username or password")}
	app, _ := newTestApp(t, b, "admin\n")
	stubPasswords(t, "nope")

	err := app.Run(context.Background(), []string{"login"})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
	_, statErr := os.Stat(app.config.TokenFile)
	assert.True(t, os.IsNotExist(statErr))
}

func TestRun_UsesSavedToken(t *testing.T) {
	b := &fakeBackend{}
	app, out := newTestApp(t, b, "")
	require.NoError(t, app.tokens.Save("saved"))

	require.NoError(t, app.Run(context.Background(), []string{"whoami"}))
	assert.Equal(t, "saved", b.token)
	assert.Contains(t, out.String(), "admin (id 1, role admin)")
}

func TestRun_Logout(t *testing.T) {
	b := &fakeBackend{}
	app, _ := newTestApp(t, b, "")
	require.NoError(t, app.tokens.Save("saved"))

	require.NoError(t, app.Run(context.Background(), []string{"logout"}))
	tok, err := app.tokens.Load()
	require.NoError(t, err)
	assert.Empty(t, tok)
}

func TestRun_Passwd(t *testing.T) {
	b := &fakeBackend{}
	app, out := newTestApp(t, b, "")
	stubPasswords(t, "old", "new", "new")

	require.NoError(t, app.Run(context.Background(), []string{"passwd"}))
	assert.Equal(t, &api.ChangePasswordRequest{OldPassword: "old", NewPassword: "new", ConfirmPassword: "new"}, b.changed)
	assert.Contains(t, out.String(), "Password changed")
}

func TestRun_Register(t *testing.T) {
	b := &fakeBackend{}
	app, out := newTestApp(t, b, "code-1\nbob\n")
	stubPasswords(t, "pw")

	require.NoError(t, app.Run(context.Background(), []string{"register"}))
	assert.Equal(t, &api.RegisterRequest{Username: "bob", Password: "pw", InviteCode: "code-1"}, b.registered)
	assert.Contains(t, out.String(), "Registered bob")
}

func TestRun_Invite(t *testing.T) {
	t.Run("create", func(t *testing.T) {
		b := &fakeBackend{}
		app, out := newTestApp(t, b, "")

		require.NoError(t, app.Run(context.Background(), []string{"invite", "create", "-ttl", "90"}))
		assert.Equal(t, &api.CreateInviteRequest{TTLMinutes: 90}, b.invite)
		assert.Contains(t, out.String(), "Invite 3: deadbeef")
		assert.Contains(t, out.String(), "2030-01-01T00:00:00Z")
	})

	t.Run("list", func(t *testing.T) {
		app, out := newTestApp(t, &fakeBackend{}, "")
		require.NoError(t, app.Run(context.Background(), []string{"invite", "list"}))
		assert.Contains(t, out.String(), "CREATED BY")
	})

	t.Run("delete", func(t *testing.T) {
		b := &fakeBackend{}
		app, _ := newTestApp(t, b, "")
		require.NoError(t, app.Run(context.Background(), []string{"invite", "delete", "3"}))
		assert.EqualValues(t, 3, b.deleted)
	})
}

func TestRun_Users(t *testing.T) {
	b := &fakeBackend{}
	app, out := newTestApp(t, b, "")
	require.NoError(t, app.Run(context.Background(), []string{"users", "list"}))
	assert.Contains(t, out.String(), "admin")

	app, _ = newTestApp(t, b, "")
	require.NoError(t, app.Run(context.Background(), []string{"users", "deactivate", "7"}))
	assert.EqualValues(t, 7, b.deactivated)
}

func TestRun_Account(t *testing.T) {
	app, out := newTestApp(t, &fakeBackend{}, "")
	require.NoError(t, app.Run(context.Background(), []string{"account", "show", "42"}))
	assert.Contains(t, out.String(), "gopher")
	assert.Contains(t, out.String(), "12")

	app, out = newTestApp(t, &fakeBackend{}, "")
	require.NoError(t, app.Run(context.Background(), []string{"account", "add", "77"}))
	assert.Contains(t, out.String(), "77")
}

func TestRun_Stats(t *testing.T) {
	app, out := newTestApp(t, &fakeBackend{}, "")
	require.NoError(t, app.Run(context.Background(), []string{"stats", "42", "alpha"}))
	assert.Contains(t, out.String(), "followers percent")
	assert.Contains(t, out.String(), "0.5000")
	assert.Contains(t, out.String(), "1.0000")
}

func TestRun_Relations(t *testing.T) {
	tests := []struct {
		args []string
		want *api.RelationRequest
		op   string
	}{
		{args: []string{"followers", "42"}, want: &api.RelationRequest{AccountID: "42", Page: 1}, op: "followers"},
		{
			args: []string{"friends", "42", "-w", "alpha", "-p", "3"},
			want: &api.RelationRequest{AccountID: "42", Page: 3, WatchlistID: "alpha"},
			op:   "friends",
		},
	}

	for _, tt := range tests {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			b := &fakeBackend{}
			app, out := newTestApp(t, b, "")
			require.NoError(t, app.Run(context.Background(), tt.args))
			assert.Equal(t, tt.want, b.relation)
			assert.Equal(t, tt.op, b.relationOp)
			assert.Contains(t, out.String(), "member")
			assert.Contains(t, out.String(), "2 total")
		})
	}
}

func TestRun_Watchlist(t *testing.T) {
	t.Run("list", func(t *testing.T) {
		app, out := newTestApp(t, &fakeBackend{}, "")
		require.NoError(t, app.Run(context.Background(), []string{"watchlist", "list"}))
		assert.Equal(t, "alpha\nbeta\n", out.String())
	})

	t.Run("show", func(t *testing.T) {
		app, out := newTestApp(t, &fakeBackend{}, "")
		require.NoError(t, app.Run(context.Background(), []string{"watchlist", "show", "alpha"}))
		assert.Equal(t, "alpha: 3 members, 1 watchwords\n", out.String())
	})

	t.Run("members", func(t *testing.T) {
		app, out := newTestApp(t, &fakeBackend{}, "")
		require.NoError(t, app.Run(context.Background(), []string{"watchlist", "members", "alpha"}))
		assert.Contains(t, out.String(), "one")
		assert.Contains(t, out.String(), "SCREEN NAME")
	})

	t.Run("create", func(t *testing.T) {
		b := &fakeBackend{}
		app, _ := newTestApp(t, b, "")
		require.NoError(t, app.Run(context.Background(), []string{"watchlist", "create", "gamma"}))
		assert.Equal(t, "gamma", b.created)
	})

	for _, op := range []string{"add", "remove"} {
		t.Run(op, func(t *testing.T) {
			b := &fakeBackend{}
			app, _ := newTestApp(t, b, "")
			require.NoError(t, app.Run(context.Background(), []string{"watchlist", op, "alpha", "42"}))
			assert.Equal(t, &api.MemberRequest{WatchlistID: "alpha", AccountID: "42"}, b.member)
			assert.Equal(t, op, b.memberOp)
		})
	}
}

func TestRun_Notes(t *testing.T) {
	b := &fakeBackend{}
	app, out := newTestApp(t, b, "")
	require.NoError(t, app.Run(context.Background(), []string{"notes", "add", "42", "part", "of", "a", "network"}))
	assert.Equal(t, &api.AnnotationRequest{AccountID: "42", Text: "part of a network"}, b.note)
	assert.Contains(t, out.String(), "Note n-2 added")

	app, out = newTestApp(t, b, "")
	require.NoError(t, app.Run(context.Background(), []string{"notes", "list", "42", "-p", "2"}))
	assert.Equal(t, &api.AnnotationRequest{AccountID: "42", Page: 2}, b.note)
	assert.Contains(t, out.String(), "bot network")
	assert.Contains(t, out.String(), "2024-05-01T00:00:00Z")
}

func TestRun_LibraryErrorsPassThrough(t *testing.T) {
	b := &fakeBackend{err: status.Error(codes.NotFound, "not found")}
	app, _ := newTestApp(t, b, "")
	assert.Equal(t, codes.NotFound, status.Code(app.Run(context.Background(), []string{"stats", "42", "nope"})))
}

func TestRun_UsageErrors(t *testing.T) {
	tests := [][]string{
		nil,
		{"frobnicate"},
		{"invite"},
		{"invite", "explode"},
		{"invite", "delete"},
		{"invite", "delete", "x"},
		{"users", "deactivate", "-1"},
		{"invite", "create", "-ttl", "soon"},
		{"account"},
		{"account", "show"},
		{"account", "drop", "42"},
		{"stats", "42"},
		{"followers"},
		{"friends", "42", "-p", "x"},
		{"watchlist"},
		{"watchlist", "show"},
		{"watchlist", "add", "alpha"},
		{"watchlist", "rename", "alpha"},
		{"notes", "list"},
		{"notes", "add", "42"},
		{"notes", "edit", "42"},
	}
	for _, args := range tests {
		t.Run(strings.Join(args, " "), func(t *testing.T) {
			app, _ := newTestApp(t, &fakeBackend{}, "")
			assert.ErrorIs(t, app.Run(context.Background(), args), ErrUsage)
		})
	}
}

func TestDescribe(t *testing.T) {
	assert.Equal(t, "inactive user (PermissionDenied)", Describe(status.Error(codes.PermissionDenied, "inactive user")))
	assert.Equal(t, "plain", Describe(errors.New("plain")))
}

func TestGetSimpleText(t *testing.T) {
	app, out := newTestApp(t, &fakeBackend{}, "hello world\n")
	got, err := GetSimpleText(app.reader, "Name", out)
	require.NoError(t, err)
	assert.Equal(t, "hello world", got)
	assert.Equal(t, "Name: ", out.String())
}

func TestGetSimpleTextEOF(t *testing.T) {
	app, out := newTestApp(t, &fakeBackend{}, "lastline")
	got, err := GetSimpleText(app.reader, "Name", out)
	require.NoError(t, err)
	assert.Equal(t, "lastline", got)
}

func TestGetPassword_Error(t *testing.T) {
	stubPasswords(t)
	var out bytes.Buffer
	_, err := GetPassword(&out, "Password")
	assert.Error(t, err)
}
