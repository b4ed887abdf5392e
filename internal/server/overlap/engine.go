package overlap

import (
	"context"

	"github.com/calebglawson/cecil/internal/server/models"
	"golang.org/x/sync/errgroup"
)

// Source is the read side of the watchlist library the engine needs.
type Source interface {
	GetWatchlist(ctx context.Context, watchlistID string) (*models.Watchlist, error)
	Profiles(ctx context.Context, accountIDs []string) (map[string]models.Profile, error)

	Followers(ctx context.Context, accountID string, page, size int) (models.Page[string], error)
	Friends(ctx context.Context, accountID string, page, size int) (models.Page[string], error)

	AccountSets(ctx context.Context, accountID string) (*models.AccountSets, error)
}

// Engine computes overlap figures on demand. It holds no state besides its
// source, so one Engine serves concurrent callers.
type Engine struct {
	src Source
}

func NewEngine(src Source) *Engine {
	return &Engine{src: src}
}

// Stats computes the six overlap ratios of accountID against watchlistID.
// Any failed lookup fails the whole call.
func (e *Engine) Stats(ctx context.Context, accountID, watchlistID string) (*models.WatchlistOverlap, error) {
	var watchlist, followers, friends, favAuthors, rtAuthors Set

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		wl, err := e.src.GetWatchlist(ctx, watchlistID)
		if err != nil {
			return err
		}
		watchlist = NewSet(wl.Members)
		return nil
	})
	g.Go(func() error {
		sets, err := e.src.AccountSets(ctx, accountID)
		if err != nil {
			return err
		}
		followers = NewSet(sets.Followers)
		friends = NewSet(sets.Friends)
		favAuthors = NewSet(sets.FavoriteAuthors)
		rtAuthors = NewSet(sets.RetweetAuthors)
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &models.WatchlistOverlap{
		FollowersPercent:    Percent(followers, watchlist),
		FollowersCompletion: Completion(followers, watchlist),
		FriendsPercent:      Percent(friends, watchlist),
		FriendsCompletion:   Completion(friends, watchlist),
		FavoritePercent:     Percent(favAuthors, watchlist),
		RetweetPercent:      Percent(rtAuthors, watchlist),
	}, nil
}

// Followers pages the account's follower ids. With a watchlistID, members of
// that watchlist on the page carry their profile.
func (e *Engine) Followers(ctx context.Context, accountID string, page, size int, watchlistID string) (models.Page[models.HydratedRelation], error) {
	return e.relations(ctx, e.src.Followers, accountID, page, size, watchlistID)
}

// Friends is Followers for the accounts accountID follows.
func (e *Engine) Friends(ctx context.Context, accountID string, page, size int, watchlistID string) (models.Page[models.HydratedRelation], error) {
	return e.relations(ctx, e.src.Friends, accountID, page, size, watchlistID)
}

func (e *Engine) relations(
	ctx context.Context,
	list func(context.Context, string, int, int) (models.Page[string], error),
	accountID string, page, size int, watchlistID string,
) (models.Page[models.HydratedRelation], error) {
	ids, err := list(ctx, accountID, page, size)
	if err != nil {
		return models.Page[models.HydratedRelation]{}, err
	}

	var (
		members  Set
		profiles map[string]models.Profile
	)

	if watchlistID != "" {
		wl, err := e.src.GetWatchlist(ctx, watchlistID)
		if err != nil {
			return models.Page[models.HydratedRelation]{}, err
		}
		members = NewSet(wl.Members)

		onPage := make([]string, 0, len(ids.Items))
		for _, id := range ids.Items {
			if members.Contains(id) {
				onPage = append(onPage, id)
			}
		}

		if len(onPage) > 0 {
			profiles, err = e.src.Profiles(ctx, onPage)
			if err != nil {
				return models.Page[models.HydratedRelation]{}, err
			}
		}
	}

	return models.WithItems(ids, Hydrate(ids.Items, members, profiles)), nil
}
