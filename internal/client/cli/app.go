// Package cli implements cecilctl, the operator command line of Cecil.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/calebglawson/cecil/internal/api"
	"github.com/calebglawson/cecil/internal/client/client"
	"github.com/calebglawson/cecil/internal/client/config"
	"github.com/calebglawson/cecil/internal/server/models"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
)

// ErrUsage is returned when the command line does not name a valid command.
var ErrUsage = errors.New("usage")

// Backend is the part of the Cecil service cecilctl talks to.
// client.GRPCClient implements it.
type Backend interface {
	SetToken(token string)
	Close() error

	Login(ctx context.Context, in *api.LoginRequest, opts ...grpc.CallOption) (*api.LoginResponse, error)
	Register(ctx context.Context, in *api.RegisterRequest, opts ...grpc.CallOption) (*models.InternalUser, error)
	Me(ctx context.Context, opts ...grpc.CallOption) (*models.InternalUser, error)
	ChangePassword(ctx context.Context, in *api.ChangePasswordRequest, opts ...grpc.CallOption) error

	CreateInvite(ctx context.Context, in *api.CreateInviteRequest, opts ...grpc.CallOption) (*api.CreateInviteResponse, error)
	ListInvites(ctx context.Context, opts ...grpc.CallOption) (*api.InviteList, error)
	DeleteInvite(ctx context.Context, id int64, opts ...grpc.CallOption) error
	ListAuthUsers(ctx context.Context, opts ...grpc.CallOption) (*api.AuthUserList, error)
	DeactivateUser(ctx context.Context, id int64, opts ...grpc.CallOption) error

	GetUser(ctx context.Context, accountID string, opts ...grpc.CallOption) (*models.Profile, error)
	AddUser(ctx context.Context, accountID string, opts ...grpc.CallOption) (*models.Profile, error)
	WatchlistStats(ctx context.Context, in *api.StatsRequest, opts ...grpc.CallOption) (*models.WatchlistOverlap, error)
	Followers(ctx context.Context, in *api.RelationRequest, opts ...grpc.CallOption) (*models.Page[models.HydratedRelation], error)
	Friends(ctx context.Context, in *api.RelationRequest, opts ...grpc.CallOption) (*models.Page[models.HydratedRelation], error)

	ListWatchlists(ctx context.Context, opts ...grpc.CallOption) (*api.StringList, error)
	GetWatchlist(ctx context.Context, watchlistID string, opts ...grpc.CallOption) (*models.WatchlistInfo, error)
	WatchlistMembers(ctx context.Context, watchlistID string, opts ...grpc.CallOption) (*api.ProfileList, error)
	CreateWatchlist(ctx context.Context, watchlistID string, opts ...grpc.CallOption) error
	AddMember(ctx context.Context, in *api.MemberRequest, opts ...grpc.CallOption) error
	RemoveMember(ctx context.Context, in *api.MemberRequest, opts ...grpc.CallOption) error

	Notes(ctx context.Context, in *api.AnnotationRequest, opts ...grpc.CallOption) (*models.Page[models.Note], error)
	AddNote(ctx context.Context, in *api.AnnotationRequest, opts ...grpc.CallOption) (*models.Note, error)
}

type App struct {
	config  *config.Config
	backend Backend
	tokens  tokenStore
	reader  *bufio.Reader
	out     io.Writer
}

func NewApp(c *config.Config) (*App, error) {
	b, err := client.NewGRPCClient(c.ServerEndpointAddr)
	if err != nil {
		return nil, err
	}
	return newApp(c, b, os.Stdin, os.Stdout), nil
}

func newApp(c *config.Config, b Backend, in io.Reader, out io.Writer) *App {
	return &App{
		config:  c,
		backend: b,
		tokens:  tokenStore{path: c.TokenFile},
		reader:  bufio.NewReader(in),
		out:     out,
	}
}

const usage = `usage: cecilctl [-a addr] [-c config] [-f token-file] [-w seconds] <command>

commands:
  login                          log in and keep the token
  logout                         forget the token
  whoami                         show the logged in user
  passwd                         change your password
  register                       create an account with an invite code
  invite create [-code C] [-ttl MINUTES]
  invite list
  invite delete <id>
  users list
  users deactivate <id>
  account show <account>
  account add <account>
  stats <account> <watchlist>
  followers <account> [-w watchlist] [-p page]
  friends <account> [-w watchlist] [-p page]
  watchlist list
  watchlist show <watchlist>
  watchlist members <watchlist>
  watchlist create <watchlist>
  watchlist add <watchlist> <account>
  watchlist remove <watchlist> <account>
  notes list <account> [-p page]
  notes add <account> <text>...
`

// Run executes one command. The token saved by login is sent with every call.
func (a *App) Run(ctx context.Context, args []string) error {
	defer a.backend.Close()

	if len(args) == 0 {
		fmt.Fprint(a.out, usage)
		return ErrUsage
	}

	token, err := a.tokens.Load()
	if err != nil {
		return fmt.Errorf("read token: %w", err)
	}
	a.backend.SetToken(token)

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "login":
		return a.login(ctx)
	case "logout":
		return a.logout()
	case "whoami":
		return a.whoami(ctx)
	case "passwd":
		return a.passwd(ctx)
	case "register":
		return a.register(ctx)
	case "invite":
		return a.invite(ctx, rest)
	case "users":
		return a.users(ctx, rest)
	case "account":
		return a.account(ctx, rest)
	case "stats":
		return a.stats(ctx, rest)
	case "followers", "friends":
		return a.relations(ctx, cmd, rest)
	case "watchlist":
		return a.watchlist(ctx, rest)
	case "notes":
		return a.notes(ctx, rest)
	case "help", "-h", "--help":
		fmt.Fprint(a.out, usage)
		return nil
	default:
		fmt.Fprint(a.out, usage)
		return fmt.Errorf("%w: unknown command %q", ErrUsage, cmd)
	}
}

func (a *App) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.config.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, a.config.Timeout)
}

// Describe renders err for the operator: the server's message for gRPC
// statuses, the error text otherwise.
func Describe(err error) string {
	if st, ok := status.FromError(err); ok {
		return fmt.Sprintf("%s (%s)", st.Message(), st.Code())
	}
	return err.Error()
}
