package services

import (
	"context"
	"sync"

	"github.com/calebglawson/cecil/internal/logging"
	"github.com/calebglawson/cecil/internal/server/library"
	"github.com/calebglawson/cecil/internal/server/models"
	"github.com/calebglawson/cecil/internal/server/overlap"
)

const (
	DefaultPageSize         = 20
	DefaultRelationPageSize = 100
	MaxPageSize             = 1000
)

// LibraryService fronts the watchlist library and the overlap engine for
// the transport layer. Authorization happens before calls reach it.
type LibraryService struct {
	lib    library.Library
	engine *overlap.Engine
	logger logging.Logger

	// imports tracks detached ImportList jobs so shutdown can wait for them.
	imports sync.WaitGroup
}

func NewLibraryService(lib library.Library, logger logging.Logger) *LibraryService {
	return &LibraryService{
		lib:    lib,
		engine: overlap.NewEngine(lib),
		logger: logger,
	}
}

func normalizePage(page, size, def int) (int, int) {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = def
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	return page, size
}

func (s *LibraryService) GetUser(ctx context.Context, accountID string) (*models.Profile, error) {
	p, err := s.lib.GetUser(ctx, accountID)
	if err != nil {
		return nil, sanitize(ctx, s.logger, "get user", err)
	}
	return p, nil
}

// AddUser puts an account into the directory, or returns the stored
// profile when it is already there.
func (s *LibraryService) AddUser(ctx context.Context, accountID string) (*models.Profile, error) {
	p, err := s.lib.AddUser(ctx, accountID)
	if err != nil {
		return nil, sanitize(ctx, s.logger, "add user", err)
	}
	s.logger.Info(ctx, "account added", "account_id", accountID)
	return p, nil
}

func (s *LibraryService) ListUsers(ctx context.Context, page, size int) (models.Page[models.Profile], error) {
	page, size = normalizePage(page, size, DefaultPageSize)
	p, err := s.lib.ListUsers(ctx, page, size)
	if err != nil {
		return p, sanitize(ctx, s.logger, "list users", err)
	}
	return p, nil
}

func (s *LibraryService) Stats(ctx context.Context, accountID, watchlistID string) (*models.WatchlistOverlap, error) {
	st, err := s.engine.Stats(ctx, accountID, watchlistID)
	if err != nil {
		return nil, sanitize(ctx, s.logger, "stats", err)
	}
	return st, nil
}

func (s *LibraryService) Followers(ctx context.Context, accountID string, page, size int, watchlistID string) (models.Page[models.HydratedRelation], error) {
	page, size = normalizePage(page, size, DefaultRelationPageSize)
	p, err := s.engine.Followers(ctx, accountID, page, size, watchlistID)
	if err != nil {
		return p, sanitize(ctx, s.logger, "followers", err)
	}
	return p, nil
}

func (s *LibraryService) Friends(ctx context.Context, accountID string, page, size int, watchlistID string) (models.Page[models.HydratedRelation], error) {
	page, size = normalizePage(page, size, DefaultRelationPageSize)
	p, err := s.engine.Friends(ctx, accountID, page, size, watchlistID)
	if err != nil {
		return p, sanitize(ctx, s.logger, "friends", err)
	}
	return p, nil
}

func (s *LibraryService) Favorites(ctx context.Context, accountID string, page, size int, f library.TweetFilter) (models.Page[models.Tweet], error) {
	page, size = normalizePage(page, size, DefaultPageSize)
	p, err := s.lib.Favorites(ctx, accountID, page, size, f)
	if err != nil {
		return p, sanitize(ctx, s.logger, "favorites", err)
	}
	return p, nil
}

func (s *LibraryService) Timeline(ctx context.Context, accountID string, page, size int, f library.TweetFilter) (models.Page[models.Tweet], error) {
	page, size = normalizePage(page, size, DefaultPageSize)
	p, err := s.lib.Timeline(ctx, accountID, page, size, f)
	if err != nil {
		return p, sanitize(ctx, s.logger, "timeline", err)
	}
	return p, nil
}

func (s *LibraryService) ListWatchlists(ctx context.Context) ([]string, error) {
	ids, err := s.lib.ListWatchlists(ctx)
	if err != nil {
		return nil, sanitize(ctx, s.logger, "list watchlists", err)
	}
	return ids, nil
}

func (s *LibraryService) GetWatchlist(ctx context.Context, watchlistID string) (*models.WatchlistInfo, error) {
	info, err := s.lib.WatchlistInfo(ctx, watchlistID)
	if err != nil {
		return nil, sanitize(ctx, s.logger, "get watchlist", err)
	}
	return info, nil
}

// WatchlistMembers returns the member profiles in watchlist order. Members
// not yet in the account directory carry only their id.
func (s *LibraryService) WatchlistMembers(ctx context.Context, watchlistID string) ([]models.Profile, error) {
	wl, err := s.lib.GetWatchlist(ctx, watchlistID)
	if err != nil {
		return nil, sanitize(ctx, s.logger, "watchlist members", err)
	}

	profiles, err := s.lib.Profiles(ctx, wl.Members)
	if err != nil {
		return nil, sanitize(ctx, s.logger, "watchlist members", err)
	}

	members := make([]models.Profile, 0, len(wl.Members))
	for _, id := range wl.Members {
		p, ok := profiles[id]
		if !ok {
			p = models.Profile{UserID: id}
		}
		members = append(members, p)
	}
	return members, nil
}

func (s *LibraryService) Watchwords(ctx context.Context, watchlistID string) ([]string, error) {
	wl, err := s.lib.GetWatchlist(ctx, watchlistID)
	if err != nil {
		return nil, sanitize(ctx, s.logger, "watchwords", err)
	}
	return wl.Watchwords, nil
}

func (s *LibraryService) CreateWatchlist(ctx context.Context, watchlistID string) error {
	return sanitize(ctx, s.logger, "create watchlist", s.lib.CreateWatchlist(ctx, watchlistID))
}

func (s *LibraryService) AddMember(ctx context.Context, watchlistID, accountID string) error {
	return sanitize(ctx, s.logger, "add member", s.lib.AddMember(ctx, watchlistID, accountID))
}

func (s *LibraryService) RemoveMember(ctx context.Context, watchlistID, accountID string) error {
	return sanitize(ctx, s.logger, "remove member", s.lib.RemoveMember(ctx, watchlistID, accountID))
}

func (s *LibraryService) AddWatchword(ctx context.Context, watchlistID, word string) error {
	return sanitize(ctx, s.logger, "add watchword", s.lib.AddWatchword(ctx, watchlistID, word))
}

func (s *LibraryService) RemoveWatchword(ctx context.Context, watchlistID, word string) error {
	return sanitize(ctx, s.logger, "remove watchword", s.lib.RemoveWatchword(ctx, watchlistID, word))
}

// ImportList starts merging an exported list into a watchlist and returns
// at once. The job outlives the request; its outcome is only logged.
func (s *LibraryService) ImportList(ctx context.Context, watchlistID, listID string) {
	jobCtx := context.WithoutCancel(ctx)

	s.imports.Add(1)
	go func() {
		defer s.imports.Done()

		added, err := s.lib.ImportList(jobCtx, watchlistID, listID)
		if err != nil {
			s.logger.Error(jobCtx, "list import failed", "watchlist_id", watchlistID, "list_id", listID, "error", err)
			return
		}
		s.logger.Info(jobCtx, "list imported", "watchlist_id", watchlistID, "list_id", listID, "added", added)
	}()
}

// WaitImports blocks until every started import has finished or ctx ends.
func (s *LibraryService) WaitImports(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.imports.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
