// Package api is the wire contract of the cecil.v1.Cecil gRPC service: the
// method names, the request and response messages and the JSON codec that
// carries them. Server and operator CLI both build on it.
package api

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "cecil.v1.Cecil"

// Method names, without the service prefix.
const (
	MethodLogin          = "Login"
	MethodRegister       = "Register"
	MethodMe             = "Me"
	MethodChangePassword = "ChangePassword"

	MethodCreateInvite   = "CreateInvite"
	MethodListInvites    = "ListInvites"
	MethodDeleteInvite   = "DeleteInvite"
	MethodListAuthUsers  = "ListAuthUsers"
	MethodDeactivateUser = "DeactivateUser"

	MethodGetUser        = "GetUser"
	MethodAddUser        = "AddUser"
	MethodListUsers      = "ListUsers"
	MethodWatchlistStats = "WatchlistStats"
	MethodFollowers      = "Followers"
	MethodFriends        = "Friends"
	MethodFavorites      = "Favorites"
	MethodTimeline       = "Timeline"

	MethodListWatchlists   = "ListWatchlists"
	MethodGetWatchlist     = "GetWatchlist"
	MethodWatchlistMembers = "WatchlistMembers"
	MethodWatchwords       = "Watchwords"
	MethodCreateWatchlist  = "CreateWatchlist"
	MethodAddMember        = "AddMember"
	MethodRemoveMember     = "RemoveMember"
	MethodAddWatchword     = "AddWatchword"
	MethodRemoveWatchword  = "RemoveWatchword"
	MethodImportList       = "ImportList"

	MethodNotes           = "Notes"
	MethodAddNote         = "AddNote"
	MethodRemoveNote      = "RemoveNote"
	MethodTweetNotes      = "TweetNotes"
	MethodAddTweetNote    = "AddTweetNote"
	MethodRemoveTweetNote = "RemoveTweetNote"
	MethodTags            = "Tags"
	MethodTweetTags       = "TweetTags"
	MethodAddTweetTag     = "AddTweetTag"
	MethodRemoveTweetTag  = "RemoveTweetTag"
	MethodTagged          = "Tagged"
)

// FullMethod returns the "/service/method" path gRPC uses on the wire.
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}
