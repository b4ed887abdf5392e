// Package library reads and edits the watchlist library: monitored external
// accounts with their social graph and tweets, and curated watchlists.
package library

import (
	"context"

	"github.com/calebglawson/cecil/internal/server/models"
)

// TweetFilter narrows favorites and timelines. Both fields name watchlists:
// WatchlistID keeps tweets whose author is a member, WatchwordsID keeps
// tweets mentioning one of that watchlist's watchwords. An empty field means
// no filter. A named watchlist with no members or no watchwords matches no
// tweets.
type TweetFilter struct {
	WatchlistID  string
	WatchwordsID string
}

// Library is the collaborator the server core talks to.
type Library interface {
	GetUser(ctx context.Context, accountID string) (*models.Profile, error)
	ListUsers(ctx context.Context, page, size int) (models.Page[models.Profile], error)
	Profiles(ctx context.Context, accountIDs []string) (map[string]models.Profile, error)

	Followers(ctx context.Context, accountID string, page, size int) (models.Page[string], error)
	Friends(ctx context.Context, accountID string, page, size int) (models.Page[string], error)
	Favorites(ctx context.Context, accountID string, page, size int, f TweetFilter) (models.Page[models.Tweet], error)
	Timeline(ctx context.Context, accountID string, page, size int, f TweetFilter) (models.Page[models.Tweet], error)

	AccountSets(ctx context.Context, accountID string) (*models.AccountSets, error)
	AddUser(ctx context.Context, accountID string) (*models.Profile, error)

	ListWatchlists(ctx context.Context) ([]string, error)
	GetWatchlist(ctx context.Context, watchlistID string) (*models.Watchlist, error)
	WatchlistInfo(ctx context.Context, watchlistID string) (*models.WatchlistInfo, error)
	CreateWatchlist(ctx context.Context, watchlistID string) error
	AddMember(ctx context.Context, watchlistID, accountID string) error
	RemoveMember(ctx context.Context, watchlistID, accountID string) error
	AddWatchword(ctx context.Context, watchlistID, word string) error
	RemoveWatchword(ctx context.Context, watchlistID, word string) error
	ImportList(ctx context.Context, watchlistID, listID string) (int, error)

	Notes(ctx context.Context, accountID string, page, size int) (models.Page[models.Note], error)
	AddNote(ctx context.Context, accountID, text string) (*models.Note, error)
	RemoveNote(ctx context.Context, accountID, noteID string) error
	TweetNotes(ctx context.Context, accountID string, kind models.TweetKind, tweetID string) ([]models.Note, error)
	AddTweetNote(ctx context.Context, accountID string, kind models.TweetKind, tweetID, text string) (*models.Note, error)
	RemoveTweetNote(ctx context.Context, accountID string, kind models.TweetKind, tweetID, noteID string) error

	Tags(ctx context.Context, accountID string, kind models.TweetKind) ([]models.Tag, error)
	TweetTags(ctx context.Context, accountID string, kind models.TweetKind, tweetID string) ([]models.Tag, error)
	AddTweetTag(ctx context.Context, accountID string, kind models.TweetKind, tweetID, text string) (*models.Tag, error)
	RemoveTweetTag(ctx context.Context, accountID string, kind models.TweetKind, tweetID string, tagID int64) error
	Tagged(ctx context.Context, accountID string, kind models.TweetKind, tagID int64, page, size int) (models.Page[models.Tweet], error)
}
