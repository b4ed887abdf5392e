package services

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/calebglawson/cecil/internal/common"
	"github.com/calebglawson/cecil/internal/logging"
	"github.com/calebglawson/cecil/internal/server/library"
	"github.com/calebglawson/cecil/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLibrary struct {
	library.Library

	mu        sync.Mutex
	gotPage   int
	gotSize   int
	importErr error
	imported  chan struct{}
	release   chan struct{}
	getErr    error

	profilesErr error
}

func (f *fakeLibrary) ListUsers(_ context.Context, page, size int) (models.Page[models.Profile], error) {
	f.mu.Lock()
	f.gotPage, f.gotSize = page, size
	f.mu.Unlock()
	return models.Page[models.Profile]{}, nil
}

func (f *fakeLibrary) Followers(_ context.Context, _ string, page, size int) (models.Page[string], error) {
	f.mu.Lock()
	f.gotPage, f.gotSize = page, size
	f.mu.Unlock()
	return models.Page[string]{}, nil
}

func (f *fakeLibrary) GetUser(context.Context, string) (*models.Profile, error) {
	return nil, f.getErr
}

func (f *fakeLibrary) GetWatchlist(context.Context, string) (*models.Watchlist, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return &models.Watchlist{ID: "wl", Members: []string{"1", "2"}, Watchwords: []string{"go"}}, nil
}

func (f *fakeLibrary) Profiles(_ context.Context, ids []string) (map[string]models.Profile, error) {
	if f.profilesErr != nil {
		return nil, f.profilesErr
	}
	out := map[string]models.Profile{}
	for _, id := range ids {
		if id == "1" {
			out[id] = models.Profile{UserID: "1", ScreenName: "one"}
		}
	}
	return out, nil
}

func (f *fakeLibrary) AddUser(_ context.Context, id string) (*models.Profile, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return &models.Profile{UserID: id}, nil
}

func (f *fakeLibrary) Notes(_ context.Context, _ string, page, size int) (models.Page[models.Note], error) {
	f.mu.Lock()
	f.gotPage, f.gotSize = page, size
	f.mu.Unlock()
	return models.Page[models.Note]{}, f.getErr
}

func (f *fakeLibrary) Tagged(_ context.Context, _ string, _ models.TweetKind, _ int64, page, size int) (models.Page[models.Tweet], error) {
	f.mu.Lock()
	f.gotPage, f.gotSize = page, size
	f.mu.Unlock()
	return models.Page[models.Tweet]{}, f.getErr
}

func (f *fakeLibrary) AddTweetTag(_ context.Context, _ string, _ models.TweetKind, _, text string) (*models.Tag, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return &models.Tag{TagID: 1, Text: text}, nil
}

func (f *fakeLibrary) ImportList(ctx context.Context, _, _ string) (int, error) {
	if f.imported != nil {
		close(f.imported)
	}
	if f.release != nil {
		<-f.release
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return 3, f.importErr
}

func TestNormalizePage(t *testing.T) {
	tests := []struct {
		page, size, def int
		wantPage        int
		wantSize        int
	}{
		{0, 0, DefaultPageSize, 1, DefaultPageSize},
		{-3, 5, DefaultPageSize, 1, 5},
		{2, 0, DefaultRelationPageSize, 2, DefaultRelationPageSize},
		{1, MaxPageSize + 1, DefaultPageSize, 1, MaxPageSize},
	}
	for _, tt := range tests {
		p, s := normalizePage(tt.page, tt.size, tt.def)
		assert.Equal(t, tt.wantPage, p)
		assert.Equal(t, tt.wantSize, s)
	}
}

func TestLibraryService_PageDefaults(t *testing.T) {
	lib := &fakeLibrary{}
	s := NewLibraryService(lib, logging.Nop{})
	ctx := context.Background()

	_, err := s.ListUsers(ctx, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, lib.gotPage)
	assert.Equal(t, DefaultPageSize, lib.gotSize)

	_, err = s.Followers(ctx, "1", 0, 0, "")
	require.NoError(t, err)
	assert.Equal(t, DefaultRelationPageSize, lib.gotSize)
}

func TestLibraryService_Watchlist(t *testing.T) {
	s := NewLibraryService(&fakeLibrary{}, logging.Nop{})

	members, err := s.WatchlistMembers(context.Background(), "wl")
	require.NoError(t, err)
	assert.Equal(t, []models.Profile{{UserID: "1", ScreenName: "one"}, {UserID: "2"}}, members)

	words, err := s.Watchwords(context.Background(), "wl")
	require.NoError(t, err)
	assert.Equal(t, []string{"go"}, words)
}

func TestLibraryService_WatchlistMembersProfileError(t *testing.T) {
	s := NewLibraryService(&fakeLibrary{profilesErr: errors.New("s3 down")}, logging.Nop{})

	_, err := s.WatchlistMembers(context.Background(), "wl")
	assert.ErrorIs(t, err, common.ErrorInternal)
}

func TestLibraryService_AddUser(t *testing.T) {
	var buf bytes.Buffer
	s := NewLibraryService(&fakeLibrary{}, logging.NewJSONLogger(&buf, "info"))

	p, err := s.AddUser(context.Background(), "77")
	require.NoError(t, err)
	assert.Equal(t, "77", p.UserID)
	assert.Contains(t, buf.String(), `"msg":"account added"`)

	s = NewLibraryService(&fakeLibrary{getErr: common.ErrInvalidID}, logging.Nop{})
	_, err = s.AddUser(context.Background(), "a/b")
	assert.ErrorIs(t, err, common.ErrInvalidID)
}

func TestLibraryService_AnnotationPaging(t *testing.T) {
	lib := &fakeLibrary{}
	s := NewLibraryService(lib, logging.Nop{})
	ctx := context.Background()

	_, err := s.Notes(ctx, "1", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, lib.gotPage)
	assert.Equal(t, DefaultPageSize, lib.gotSize)

	_, err = s.Tagged(ctx, "1", models.KindFavorite, 1, 3, MaxPageSize*2)
	require.NoError(t, err)
	assert.Equal(t, 3, lib.gotPage)
	assert.Equal(t, MaxPageSize, lib.gotSize)
}

func TestLibraryService_AnnotationErrors(t *testing.T) {
	tests := []struct {
		name    string
		libErr  error
		wantErr error
	}{
		{name: "invalid input passes through", libErr: common.ErrInvalidInput, wantErr: common.ErrInvalidInput},
		{name: "conflict passes through", libErr: common.ErrVersionConflict, wantErr: common.ErrVersionConflict},
		{name: "backend failure is internal", libErr: errors.New("s3 down"), wantErr: common.ErrorInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewLibraryService(&fakeLibrary{getErr: tt.libErr}, logging.Nop{})
			_, err := s.AddTweetTag(context.Background(), "1", models.KindTimeline, "t1", "spam")
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestLibraryService_Errors(t *testing.T) {
	t.Run("sentinels pass through", func(t *testing.T) {
		s := NewLibraryService(&fakeLibrary{getErr: common.ErrorNotFound}, logging.Nop{})
		_, err := s.GetUser(context.Background(), "1")
		assert.ErrorIs(t, err, common.ErrorNotFound)
	})

	t.Run("anything else is internal", func(t *testing.T) {
		s := NewLibraryService(&fakeLibrary{getErr: errors.New("s3 down")}, logging.Nop{})
		_, err := s.Watchwords(context.Background(), "wl")
		assert.ErrorIs(t, err, common.ErrorInternal)
	})
}

func TestLibraryService_ImportListOutlivesRequest(t *testing.T) {
	var buf bytes.Buffer
	lib := &fakeLibrary{imported: make(chan struct{}), release: make(chan struct{})}
	s := NewLibraryService(lib, logging.NewJSONLogger(&buf, "info"))

	reqCtx, cancel := context.WithCancel(context.Background())
	s.ImportList(reqCtx, "wl", "list-1")
	<-lib.imported
	cancel()

	waitCtx, waitCancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer waitCancel()
	assert.ErrorIs(t, s.WaitImports(waitCtx), context.DeadlineExceeded)

	close(lib.release)
	require.NoError(t, s.WaitImports(context.Background()))
	assert.Contains(t, buf.String(), `"msg":"list imported"`)
	assert.Contains(t, buf.String(), `"added":3`)
}

func TestLibraryService_ImportListFailureIsLogged(t *testing.T) {
	var buf bytes.Buffer
	lib := &fakeLibrary{importErr: common.ErrorNotFound}
	s := NewLibraryService(lib, logging.NewJSONLogger(&buf, "info"))

	s.ImportList(context.Background(), "wl", "missing")
	require.NoError(t, s.WaitImports(context.Background()))
	assert.Contains(t, buf.String(), `"msg":"list import failed"`)
}
