package grpc

import (
	"context"
	"time"

	"github.com/calebglawson/cecil/internal/api"
	"github.com/calebglawson/cecil/internal/common"
	"github.com/calebglawson/cecil/internal/server/library"
	"github.com/calebglawson/cecil/internal/server/models"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// maxInviteTTLMinutes caps invite lifetimes at one year.
const maxInviteTTLMinutes = 365 * 24 * 60

func identity(ctx context.Context) (models.InternalUser, error) {
	u, ok := IdentityFromContext(ctx)
	if !ok {
		return models.InternalUser{}, toStatus(common.ErrUnauthenticated)
	}
	return u, nil
}

func (s *GRPCServer) login(ctx context.Context, in *api.LoginRequest) (*api.LoginResponse, error) {
	token, err := s.svc.Auth.Login(ctx, in.Username, in.Password)
	if err != nil {
		return nil, toStatus(err)
	}
	return &api.LoginResponse{AccessToken: token, TokenType: "bearer"}, nil
}

func (s *GRPCServer) register(ctx context.Context, in *api.RegisterRequest) (*models.InternalUser, error) {
	if in.Username == "" || in.Password == "" {
		return nil, status.Error(codes.InvalidArgument, "username and password are required")
	}
	u, err := s.svc.Invites.Register(ctx, in.Username, in.Password, in.InviteCode)
	if err != nil {
		return nil, toStatus(err)
	}
	return u, nil
}

func (s *GRPCServer) me(ctx context.Context, _ *api.Empty) (*models.InternalUser, error) {
	caller, err := identity(ctx)
	if err != nil {
		return nil, err
	}
	u, err := s.svc.Auth.Me(ctx, caller)
	if err != nil {
		return nil, toStatus(err)
	}
	return u, nil
}

func (s *GRPCServer) changePassword(ctx context.Context, in *api.ChangePasswordRequest) (*api.Empty, error) {
	caller, err := identity(ctx)
	if err != nil {
		return nil, err
	}
	if in.NewPassword == "" {
		return nil, status.Error(codes.InvalidArgument, "new password is required")
	}
	if err := s.svc.Auth.ChangePassword(ctx, caller, in.OldPassword, in.NewPassword, in.ConfirmPassword); err != nil {
		return nil, toStatus(err)
	}
	return &api.Empty{}, nil
}

func (s *GRPCServer) createInvite(ctx context.Context, in *api.CreateInviteRequest) (*api.CreateInviteResponse, error) {
	caller, err := identity(ctx)
	if err != nil {
		return nil, err
	}
	if in.TTLMinutes < 0 || in.TTLMinutes > maxInviteTTLMinutes {
		return nil, status.Errorf(codes.InvalidArgument, "ttl_minutes must be between 0 and %d", maxInviteTTLMinutes)
	}
	created, err := s.svc.Invites.Create(ctx, caller, in.Code, time.Duration(in.TTLMinutes)*time.Minute)
	if err != nil {
		return nil, toStatus(err)
	}
	return &api.CreateInviteResponse{Invite: created.Invite, Code: created.Code}, nil
}

func (s *GRPCServer) listInvites(ctx context.Context, _ *api.Empty) (*api.InviteList, error) {
	all, err := s.svc.Invites.List(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	return &api.InviteList{Invites: all}, nil
}

func (s *GRPCServer) deleteInvite(ctx context.Context, in *api.IDRequest) (*api.Empty, error) {
	if err := s.svc.Invites.Delete(ctx, in.ID); err != nil {
		return nil, toStatus(err)
	}
	return &api.Empty{}, nil
}

func (s *GRPCServer) listAuthUsers(ctx context.Context, _ *api.Empty) (*api.AuthUserList, error) {
	all, err := s.svc.Users.List(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	return &api.AuthUserList{Users: all}, nil
}

func (s *GRPCServer) deactivateUser(ctx context.Context, in *api.IDRequest) (*api.Empty, error) {
	if err := s.svc.Users.Deactivate(ctx, in.ID); err != nil {
		return nil, toStatus(err)
	}
	return &api.Empty{}, nil
}

func (s *GRPCServer) getUser(ctx context.Context, in *api.AccountRequest) (*models.Profile, error) {
	p, err := s.svc.Library.GetUser(ctx, in.AccountID)
	if err != nil {
		return nil, toStatus(err)
	}
	return p, nil
}

func (s *GRPCServer) addUser(ctx context.Context, in *api.AccountRequest) (*models.Profile, error) {
	p, err := s.svc.Library.AddUser(ctx, in.AccountID)
	if err != nil {
		return nil, toStatus(err)
	}
	return p, nil
}

func (s *GRPCServer) listUsers(ctx context.Context, in *api.PageRequest) (*models.Page[models.Profile], error) {
	p, err := s.svc.Library.ListUsers(ctx, in.Page, in.PageSize)
	return pageOf(p, err)
}

func (s *GRPCServer) watchlistStats(ctx context.Context, in *api.StatsRequest) (*models.WatchlistOverlap, error) {
	st, err := s.svc.Library.Stats(ctx, in.AccountID, in.WatchlistID)
	if err != nil {
		return nil, toStatus(err)
	}
	return st, nil
}

func (s *GRPCServer) followers(ctx context.Context, in *api.RelationRequest) (*models.Page[models.HydratedRelation], error) {
	p, err := s.svc.Library.Followers(ctx, in.AccountID, in.Page, in.PageSize, in.WatchlistID)
	return pageOf(p, err)
}

func (s *GRPCServer) friends(ctx context.Context, in *api.RelationRequest) (*models.Page[models.HydratedRelation], error) {
	p, err := s.svc.Library.Friends(ctx, in.AccountID, in.Page, in.PageSize, in.WatchlistID)
	return pageOf(p, err)
}

func tweetFilter(in *api.TweetRequest) library.TweetFilter {
	return library.TweetFilter{WatchlistID: in.WatchlistID, WatchwordsID: in.WatchwordsID}
}

func (s *GRPCServer) favorites(ctx context.Context, in *api.TweetRequest) (*models.Page[models.Tweet], error) {
	p, err := s.svc.Library.Favorites(ctx, in.AccountID, in.Page, in.PageSize, tweetFilter(in))
	return pageOf(p, err)
}

func (s *GRPCServer) timeline(ctx context.Context, in *api.TweetRequest) (*models.Page[models.Tweet], error) {
	p, err := s.svc.Library.Timeline(ctx, in.AccountID, in.Page, in.PageSize, tweetFilter(in))
	return pageOf(p, err)
}

func (s *GRPCServer) listWatchlists(ctx context.Context, _ *api.Empty) (*api.StringList, error) {
	ids, err := s.svc.Library.ListWatchlists(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	return &api.StringList{Items: ids}, nil
}

func (s *GRPCServer) getWatchlist(ctx context.Context, in *api.WatchlistRequest) (*models.WatchlistInfo, error) {
	info, err := s.svc.Library.GetWatchlist(ctx, in.WatchlistID)
	if err != nil {
		return nil, toStatus(err)
	}
	return info, nil
}

func (s *GRPCServer) watchlistMembers(ctx context.Context, in *api.WatchlistRequest) (*api.ProfileList, error) {
	members, err := s.svc.Library.WatchlistMembers(ctx, in.WatchlistID)
	if err != nil {
		return nil, toStatus(err)
	}
	return &api.ProfileList{Items: members}, nil
}

func (s *GRPCServer) watchwords(ctx context.Context, in *api.WatchlistRequest) (*api.StringList, error) {
	words, err := s.svc.Library.Watchwords(ctx, in.WatchlistID)
	if err != nil {
		return nil, toStatus(err)
	}
	return &api.StringList{Items: words}, nil
}

func done(err error) (*api.Empty, error) {
	if err != nil {
		return nil, toStatus(err)
	}
	return &api.Empty{}, nil
}

func (s *GRPCServer) createWatchlist(ctx context.Context, in *api.WatchlistRequest) (*api.Empty, error) {
	return done(s.svc.Library.CreateWatchlist(ctx, in.WatchlistID))
}

func (s *GRPCServer) addMember(ctx context.Context, in *api.MemberRequest) (*api.Empty, error) {
	return done(s.svc.Library.AddMember(ctx, in.WatchlistID, in.AccountID))
}

func (s *GRPCServer) removeMember(ctx context.Context, in *api.MemberRequest) (*api.Empty, error) {
	return done(s.svc.Library.RemoveMember(ctx, in.WatchlistID, in.AccountID))
}

func (s *GRPCServer) addWatchword(ctx context.Context, in *api.WatchwordRequest) (*api.Empty, error) {
	return done(s.svc.Library.AddWatchword(ctx, in.WatchlistID, in.Word))
}

func (s *GRPCServer) removeWatchword(ctx context.Context, in *api.WatchwordRequest) (*api.Empty, error) {
	return done(s.svc.Library.RemoveWatchword(ctx, in.WatchlistID, in.Word))
}

// importList only schedules the job; the caller is not told how it ends.
func (s *GRPCServer) importList(ctx context.Context, in *api.ImportListRequest) (*api.Empty, error) {
	if in.WatchlistID == "" || in.ListID == "" {
		return nil, status.Error(codes.InvalidArgument, "watchlist_id and list_id are required")
	}
	s.svc.Library.ImportList(ctx, in.WatchlistID, in.ListID)
	return &api.Empty{}, nil
}
