package grpc

import (
	"context"

	"github.com/calebglawson/cecil/internal/api"
	"github.com/calebglawson/cecil/internal/server/models"
	"github.com/calebglawson/cecil/internal/server/services"
	"google.golang.org/grpc"
)

type method struct {
	level services.AccessLevel
	desc  grpc.MethodDesc
}

// unary adapts a typed handler to a grpc.MethodDesc.
func unary[Req, Resp any](name string, level services.AccessLevel, call func(*GRPCServer, context.Context, *Req) (*Resp, error)) method {
	fullMethod := api.FullMethod(name)

	return method{
		level: level,
		desc: grpc.MethodDesc{
			MethodName: name,
			Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
				in := new(Req)
				if err := dec(in); err != nil {
					return nil, err
				}
				s := srv.(*GRPCServer)
				if interceptor == nil {
					return call(s, ctx, in)
				}
				info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
				return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
					return call(s, ctx, req.(*Req))
				})
			},
		},
	}
}

var methods = []method{
	unary(api.MethodLogin, services.AccessPublic, (*GRPCServer).login),
	unary(api.MethodRegister, services.AccessPublic, (*GRPCServer).register),
	unary(api.MethodMe, services.AccessActive, (*GRPCServer).me),
	unary(api.MethodChangePassword, services.AccessActive, (*GRPCServer).changePassword),

	unary(api.MethodCreateInvite, services.AccessAdmin, (*GRPCServer).createInvite),
	unary(api.MethodListInvites, services.AccessAdmin, (*GRPCServer).listInvites),
	unary(api.MethodDeleteInvite, services.AccessAdmin, (*GRPCServer).deleteInvite),
	unary(api.MethodListAuthUsers, services.AccessAdmin, (*GRPCServer).listAuthUsers),
	unary(api.MethodDeactivateUser, services.AccessAdmin, (*GRPCServer).deactivateUser),

	unary(api.MethodGetUser, services.AccessActive, (*GRPCServer).getUser),
	unary(api.MethodAddUser, services.AccessActive, (*GRPCServer).addUser),
	unary(api.MethodListUsers, services.AccessActive, (*GRPCServer).listUsers),
	unary(api.MethodWatchlistStats, services.AccessActive, (*GRPCServer).watchlistStats),
	unary(api.MethodFollowers, services.AccessActive, (*GRPCServer).followers),
	unary(api.MethodFriends, services.AccessActive, (*GRPCServer).friends),
	unary(api.MethodFavorites, services.AccessActive, (*GRPCServer).favorites),
	unary(api.MethodTimeline, services.AccessActive, (*GRPCServer).timeline),

	unary(api.MethodListWatchlists, services.AccessActive, (*GRPCServer).listWatchlists),
	unary(api.MethodGetWatchlist, services.AccessActive, (*GRPCServer).getWatchlist),
	unary(api.MethodWatchlistMembers, services.AccessActive, (*GRPCServer).watchlistMembers),
	unary(api.MethodWatchwords, services.AccessActive, (*GRPCServer).watchwords),
	unary(api.MethodCreateWatchlist, services.AccessActive, (*GRPCServer).createWatchlist),
	unary(api.MethodAddMember, services.AccessActive, (*GRPCServer).addMember),
	unary(api.MethodRemoveMember, services.AccessActive, (*GRPCServer).removeMember),
	unary(api.MethodAddWatchword, services.AccessActive, (*GRPCServer).addWatchword),
	unary(api.MethodRemoveWatchword, services.AccessActive, (*GRPCServer).removeWatchword),
	unary(api.MethodImportList, services.AccessActive, (*GRPCServer).importList),

	unary(api.MethodNotes, services.AccessActive, (*GRPCServer).notes),
	unary(api.MethodAddNote, services.AccessActive, (*GRPCServer).addNote),
	unary(api.MethodRemoveNote, services.AccessActive, (*GRPCServer).removeNote),
	unary(api.MethodTweetNotes, services.AccessActive, (*GRPCServer).tweetNotes),
	unary(api.MethodAddTweetNote, services.AccessActive, (*GRPCServer).addTweetNote),
	unary(api.MethodRemoveTweetNote, services.AccessActive, (*GRPCServer).removeTweetNote),
	unary(api.MethodTags, services.AccessActive, (*GRPCServer).tags),
	unary(api.MethodTweetTags, services.AccessActive, (*GRPCServer).tweetTags),
	unary(api.MethodAddTweetTag, services.AccessActive, (*GRPCServer).addTweetTag),
	unary(api.MethodRemoveTweetTag, services.AccessActive, (*GRPCServer).removeTweetTag),
	unary(api.MethodTagged, services.AccessActive, (*GRPCServer).tagged),
}

// methodAccess maps full method names to the level the gate enforces.
var methodAccess = func() map[string]services.AccessLevel {
	m := make(map[string]services.AccessLevel, len(methods))
	for _, md := range methods {
		m[api.FullMethod(md.desc.MethodName)] = md.level
	}
	return m
}()

func serviceDesc() *grpc.ServiceDesc {
	descs := make([]grpc.MethodDesc, len(methods))
	for i, md := range methods {
		descs[i] = md.desc
	}
	return &grpc.ServiceDesc{
		ServiceName: api.ServiceName,
		HandlerType: (*any)(nil),
		Methods:     descs,
		Streams:     []grpc.StreamDesc{},
		Metadata:    "cecil/v1",
	}
}

func pageOf[T any](p models.Page[T], err error) (*models.Page[T], error) {
	if err != nil {
		return nil, toStatus(err)
	}
	return &p, nil
}
