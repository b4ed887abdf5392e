package api

import (
	"context"

	"github.com/calebglawson/cecil/internal/server/models"
	"google.golang.org/grpc"
)

// Client is a typed caller of the Cecil service. Every call is sent with
// the JSON codec.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func invoke[Resp any](ctx context.Context, c *Client, method string, req any, opts ...grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := c.cc.Invoke(ctx, FullMethod(method), req, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Login(ctx context.Context, in *LoginRequest, opts ...grpc.CallOption) (*LoginResponse, error) {
	return invoke[LoginResponse](ctx, c, MethodLogin, in, opts...)
}

func (c *Client) Register(ctx context.Context, in *RegisterRequest, opts ...grpc.CallOption) (*models.InternalUser, error) {
	return invoke[models.InternalUser](ctx, c, MethodRegister, in, opts...)
}

func (c *Client) Me(ctx context.Context, opts ...grpc.CallOption) (*models.InternalUser, error) {
	return invoke[models.InternalUser](ctx, c, MethodMe, &Empty{}, opts...)
}

func (c *Client) ChangePassword(ctx context.Context, in *ChangePasswordRequest, opts ...grpc.CallOption) error {
	_, err := invoke[Empty](ctx, c, MethodChangePassword, in, opts...)
	return err
}

func (c *Client) CreateInvite(ctx context.Context, in *CreateInviteRequest, opts ...grpc.CallOption) (*CreateInviteResponse, error) {
	return invoke[CreateInviteResponse](ctx, c, MethodCreateInvite, in, opts...)
}

func (c *Client) ListInvites(ctx context.Context, opts ...grpc.CallOption) (*InviteList, error) {
	return invoke[InviteList](ctx, c, MethodListInvites, &Empty{}, opts...)
}

func (c *Client) DeleteInvite(ctx context.Context, id int64, opts ...grpc.CallOption) error {
	_, err := invoke[Empty](ctx, c, MethodDeleteInvite, &IDRequest{ID: id}, opts...)
	return err
}

func (c *Client) ListAuthUsers(ctx context.Context, opts ...grpc.CallOption) (*AuthUserList, error) {
	return invoke[AuthUserList](ctx, c, MethodListAuthUsers, &Empty{}, opts...)
}

func (c *Client) DeactivateUser(ctx context.Context, id int64, opts ...grpc.CallOption) error {
	_, err := invoke[Empty](ctx, c, MethodDeactivateUser, &IDRequest{ID: id}, opts...)
	return err
}

func (c *Client) GetUser(ctx context.Context, accountID string, opts ...grpc.CallOption) (*models.Profile, error) {
	return invoke[models.Profile](ctx, c, MethodGetUser, &AccountRequest{AccountID: accountID}, opts...)
}

func (c *Client) AddUser(ctx context.Context, accountID string, opts ...grpc.CallOption) (*models.Profile, error) {
	return invoke[models.Profile](ctx, c, MethodAddUser, &AccountRequest{AccountID: accountID}, opts...)
}

func (c *Client) ListUsers(ctx context.Context, in *PageRequest, opts ...grpc.CallOption) (*models.Page[models.Profile], error) {
	return invoke[models.Page[models.Profile]](ctx, c, MethodListUsers, in, opts...)
}

func (c *Client) WatchlistStats(ctx context.Context, in *StatsRequest, opts ...grpc.CallOption) (*models.WatchlistOverlap, error) {
	return invoke[models.WatchlistOverlap](ctx, c, MethodWatchlistStats, in, opts...)
}

func (c *Client) Followers(ctx context.Context, in *RelationRequest, opts ...grpc.CallOption) (*models.Page[models.HydratedRelation], error) {
	return invoke[models.Page[models.HydratedRelation]](ctx, c, MethodFollowers, in, opts...)
}

func (c *Client) Friends(ctx context.Context, in *RelationRequest, opts ...grpc.CallOption) (*models.Page[models.HydratedRelation], error) {
	return invoke[models.Page[models.HydratedRelation]](ctx, c, MethodFriends, in, opts...)
}

func (c *Client) Favorites(ctx context.Context, in *TweetRequest, opts ...grpc.CallOption) (*models.Page[models.Tweet], error) {
	return invoke[models.Page[models.Tweet]](ctx, c, MethodFavorites, in, opts...)
}

func (c *Client) Timeline(ctx context.Context, in *TweetRequest, opts ...grpc.CallOption) (*models.Page[models.Tweet], error) {
	return invoke[models.Page[models.Tweet]](ctx, c, MethodTimeline, in, opts...)
}

func (c *Client) ListWatchlists(ctx context.Context, opts ...grpc.CallOption) (*StringList, error) {
	return invoke[StringList](ctx, c, MethodListWatchlists, &Empty{}, opts...)
}

func (c *Client) GetWatchlist(ctx context.Context, watchlistID string, opts ...grpc.CallOption) (*models.WatchlistInfo, error) {
	return invoke[models.WatchlistInfo](ctx, c, MethodGetWatchlist, &WatchlistRequest{WatchlistID: watchlistID}, opts...)
}

func (c *Client) WatchlistMembers(ctx context.Context, watchlistID string, opts ...grpc.CallOption) (*ProfileList, error) {
	return invoke[ProfileList](ctx, c, MethodWatchlistMembers, &WatchlistRequest{WatchlistID: watchlistID}, opts...)
}

func (c *Client) Watchwords(ctx context.Context, watchlistID string, opts ...grpc.CallOption) (*StringList, error) {
	return invoke[StringList](ctx, c, MethodWatchwords, &WatchlistRequest{WatchlistID: watchlistID}, opts...)
}

func (c *Client) CreateWatchlist(ctx context.Context, watchlistID string, opts ...grpc.CallOption) error {
	_, err := invoke[Empty](ctx, c, MethodCreateWatchlist, &WatchlistRequest{WatchlistID: watchlistID}, opts...)
	return err
}

func (c *Client) AddMember(ctx context.Context, in *MemberRequest, opts ...grpc.CallOption) error {
	_, err := invoke[Empty](ctx, c, MethodAddMember, in, opts...)
	return err
}

func (c *Client) RemoveMember(ctx context.Context, in *MemberRequest, opts ...grpc.CallOption) error {
	_, err := invoke[Empty](ctx, c, MethodRemoveMember, in, opts...)
	return err
}

func (c *Client) AddWatchword(ctx context.Context, in *WatchwordRequest, opts ...grpc.CallOption) error {
	_, err := invoke[Empty](ctx, c, MethodAddWatchword, in, opts...)
	return err
}

func (c *Client) RemoveWatchword(ctx context.Context, in *WatchwordRequest, opts ...grpc.CallOption) error {
	_, err := invoke[Empty](ctx, c, MethodRemoveWatchword, in, opts...)
	return err
}

func (c *Client) ImportList(ctx context.Context, in *ImportListRequest, opts ...grpc.CallOption) error {
	_, err := invoke[Empty](ctx, c, MethodImportList, in, opts...)
	return err
}

func (c *Client) Notes(ctx context.Context, in *AnnotationRequest, opts ...grpc.CallOption) (*models.Page[models.Note], error) {
	return invoke[models.Page[models.Note]](ctx, c, MethodNotes, in, opts...)
}

func (c *Client) AddNote(ctx context.Context, in *AnnotationRequest, opts ...grpc.CallOption) (*models.Note, error) {
	return invoke[models.Note](ctx, c, MethodAddNote, in, opts...)
}

func (c *Client) RemoveNote(ctx context.Context, in *AnnotationRequest, opts ...grpc.CallOption) error {
	_, err := invoke[Empty](ctx, c, MethodRemoveNote, in, opts...)
	return err
}

func (c *Client) TweetNotes(ctx context.Context, in *AnnotationRequest, opts ...grpc.CallOption) (*NoteList, error) {
	return invoke[NoteList](ctx, c, MethodTweetNotes, in, opts...)
}

func (c *Client) AddTweetNote(ctx context.Context, in *AnnotationRequest, opts ...grpc.CallOption) (*models.Note, error) {
	return invoke[models.Note](ctx, c, MethodAddTweetNote, in, opts...)
}

func (c *Client) RemoveTweetNote(ctx context.Context, in *AnnotationRequest, opts ...grpc.CallOption) error {
	_, err := invoke[Empty](ctx, c, MethodRemoveTweetNote, in, opts...)
	return err
}

func (c *Client) Tags(ctx context.Context, in *AnnotationRequest, opts ...grpc.CallOption) (*TagList, error) {
	return invoke[TagList](ctx, c, MethodTags, in, opts...)
}

func (c *Client) TweetTags(ctx context.Context, in *AnnotationRequest, opts ...grpc.CallOption) (*TagList, error) {
	return invoke[TagList](ctx, c, MethodTweetTags, in, opts...)
}

func (c *Client) AddTweetTag(ctx context.Context, in *AnnotationRequest, opts ...grpc.CallOption) (*models.Tag, error) {
	return invoke[models.Tag](ctx, c, MethodAddTweetTag, in, opts...)
}

func (c *Client) RemoveTweetTag(ctx context.Context, in *AnnotationRequest, opts ...grpc.CallOption) error {
	_, err := invoke[Empty](ctx, c, MethodRemoveTweetTag, in, opts...)
	return err
}

func (c *Client) Tagged(ctx context.Context, in *AnnotationRequest, opts ...grpc.CallOption) (*models.Page[models.Tweet], error) {
	return invoke[models.Page[models.Tweet]](ctx, c, MethodTagged, in, opts...)
}
