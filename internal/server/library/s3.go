package library

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/calebglawson/cecil/internal/common"
	"github.com/calebglawson/cecil/internal/server/models"
	"golang.org/x/sync/errgroup"
)

const (
	accountsPrefix   = "accounts/"
	watchlistsPrefix = "watchlists/"
	listsPrefix      = "lists/"
	objectSuffix     = ".json"

	profileFetchLimit = 8
)

// S3API is the part of *s3.Client the library uses.
type S3API interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// S3Options configures NewS3Client for MinIO or AWS.
type S3Options struct {
	AccessKey    string
	SecretKey    string
	Region       string
	BaseEndpoint string
}

var loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

// NewS3Client builds a path-style S3 client with static credentials.
func NewS3Client(ctx context.Context, o S3Options) (*s3.Client, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		awsconfig.WithRegion(o.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			o.AccessKey,
			o.SecretKey,
			"",
		)))
	if err != nil {
		return nil, err
	}

	return s3.NewFromConfig(cfg, func(opts *s3.Options) {
		if o.BaseEndpoint != "" {
			opts.BaseEndpoint = aws.String(o.BaseEndpoint)
		}
		opts.UsePathStyle = true
	}), nil
}

// account is the stored shape of accounts/<id>.json.
type account struct {
	Profile   models.Profile `json:"profile"`
	Followers []string       `json:"followers"`
	Friends   []string       `json:"friends"`
	Favorites []models.Tweet `json:"favorites"`
	Timeline  []models.Tweet `json:"timeline"`

	Notes       []models.Note                                     `json:"notes,omitempty"`
	Tags        []models.Tag                                      `json:"tags,omitempty"`
	Annotations map[models.TweetKind]map[string]*tweetAnnotations `json:"annotations,omitempty"`
}

// importedList is the stored shape of lists/<id>.json, an exported account
// list waiting to be merged into a watchlist.
type importedList struct {
	Members []string `json:"members"`
}

// S3Library keeps the library as JSON objects in one bucket:
//
//	accounts/<id>.json    profile, followers, friends, favorites, timeline,
//	                      notes and tags
//	watchlists/<id>.json  members and watchwords
//	lists/<id>.json       member ids available to ImportList
//
// Watchlist and annotation edits are optimistic: each write is conditional
// on the ETag that was read, and a concurrent edit yields
// common.ErrVersionConflict.
type S3Library struct {
	client S3API
	bucket string
	now    func() time.Time
}

func NewS3Library(client S3API, bucket string) *S3Library {
	return &S3Library{
		client: client,
		bucket: bucket,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

var _ Library = (*S3Library)(nil)

func objectKey(prefix, id string) (string, error) {
	if id == "" || strings.ContainsAny(id, "/\\") || id == "." || id == ".." {
		return "", fmt.Errorf("%w: %q", common.ErrInvalidID, id)
	}
	return prefix + id + objectSuffix, nil
}

func isNotFound(err error) bool {
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return true
		}
	}
	return false
}

func isConditionFailed(err error) bool {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "PreconditionFailed", "ConditionalRequestConflict":
			return true
		}
	}
	return false
}

// getJSON decodes the object at key into v and returns its ETag.
func (l *S3Library) getJSON(ctx context.Context, key string, v any) (string, error) {
	out, err := l.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(l.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return "", common.ErrorNotFound
		}
		return "", fmt.Errorf("s3 get %s: %w", key, err)
	}
	defer out.Body.Close()

	if err := json.NewDecoder(out.Body).Decode(v); err != nil {
		return "", fmt.Errorf("s3 decode %s: %w", key, err)
	}
	return aws.ToString(out.ETag), nil
}

type putCondition struct {
	ifMatch     string
	ifNoneMatch string
}

func (l *S3Library) putJSON(ctx context.Context, key string, v any, cond putCondition) error {
	body, err := json.Marshal(v)
	if err != nil {
		return err
	}

	in := &s3.PutObjectInput{
		Bucket:      aws.String(l.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	}
	if cond.ifMatch != "" {
		in.IfMatch = aws.String(cond.ifMatch)
	}
	if cond.ifNoneMatch != "" {
		in.IfNoneMatch = aws.String(cond.ifNoneMatch)
	}

	if _, err := l.client.PutObject(ctx, in); err != nil {
		if isConditionFailed(err) {
			return common.ErrVersionConflict
		}
		return fmt.Errorf("s3 put %s: %w", key, err)
	}
	return nil
}

// listIDs returns the ids stored under prefix, sorted.
func (l *S3Library) listIDs(ctx context.Context, prefix string) ([]string, error) {
	ids := []string{}

	p := s3.NewListObjectsV2Paginator(l.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(l.bucket),
		Prefix: aws.String(prefix),
	})
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("s3 list %s: %w", prefix, err)
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			if !strings.HasSuffix(key, objectSuffix) {
				continue
			}
			id := strings.TrimSuffix(strings.TrimPrefix(key, prefix), objectSuffix)
			if id != "" && !strings.Contains(id, "/") {
				ids = append(ids, id)
			}
		}
	}

	sort.Strings(ids)
	return ids, nil
}

func (l *S3Library) account(ctx context.Context, accountID string) (*account, error) {
	a, _, err := l.loadAccount(ctx, accountID)
	return a, err
}

func (l *S3Library) loadAccount(ctx context.Context, accountID string) (*account, string, error) {
	key, err := objectKey(accountsPrefix, accountID)
	if err != nil {
		return nil, "", err
	}

	a := &account{}
	etag, err := l.getJSON(ctx, key, a)
	if err != nil {
		return nil, "", err
	}
	if a.Profile.UserID == "" {
		a.Profile.UserID = accountID
	}
	return a, etag, nil
}

// updateAccount applies fn to the stored account and writes it back if fn
// reports a change. An error from fn aborts the write.
func (l *S3Library) updateAccount(ctx context.Context, accountID string, fn func(*account) (bool, error)) error {
	a, etag, err := l.loadAccount(ctx, accountID)
	if err != nil {
		return err
	}

	changed, err := fn(a)
	if err != nil || !changed {
		return err
	}

	key, _ := objectKey(accountsPrefix, accountID)
	return l.putJSON(ctx, key, a, putCondition{ifMatch: etag})
}

// AddUser puts accountID into the directory with a bare profile for the
// ingestion side to fill in. An account that is already present is left
// untouched and its stored profile is returned.
func (l *S3Library) AddUser(ctx context.Context, accountID string) (*models.Profile, error) {
	key, err := objectKey(accountsPrefix, accountID)
	if err != nil {
		return nil, err
	}

	a := account{
		Profile:   models.Profile{UserID: accountID},
		Followers: []string{},
		Friends:   []string{},
		Favorites: []models.Tweet{},
		Timeline:  []models.Tweet{},
	}
	err = l.putJSON(ctx, key, a, putCondition{ifNoneMatch: "*"})
	if errors.Is(err, common.ErrVersionConflict) {
		return l.GetUser(ctx, accountID)
	}
	if err != nil {
		return nil, err
	}
	return &a.Profile, nil
}

func (l *S3Library) GetUser(ctx context.Context, accountID string) (*models.Profile, error) {
	a, err := l.account(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return &a.Profile, nil
}

// ListUsers pages through the account directory in id order.
func (l *S3Library) ListUsers(ctx context.Context, page, size int) (models.Page[models.Profile], error) {
	ids, err := l.listIDs(ctx, accountsPrefix)
	if err != nil {
		return models.Page[models.Profile]{}, err
	}

	idPage := models.Paginate(ids, page, size)
	profiles, err := l.Profiles(ctx, idPage.Items)
	if err != nil {
		return models.Page[models.Profile]{}, err
	}

	return models.MapPage(idPage, func(id string) models.Profile {
		if p, ok := profiles[id]; ok {
			return p
		}
		return models.Profile{UserID: id}
	}), nil
}

// Profiles loads the profiles of accountIDs. Accounts that are not in the
// library are left out of the result.
func (l *S3Library) Profiles(ctx context.Context, accountIDs []string) (map[string]models.Profile, error) {
	var mu sync.Mutex
	result := make(map[string]models.Profile, len(accountIDs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(profileFetchLimit)

	for _, id := range accountIDs {
		g.Go(func() error {
			a, err := l.account(ctx, id)
			if err != nil {
				if errors.Is(err, common.ErrorNotFound) || errors.Is(err, common.ErrInvalidID) {
					return nil
				}
				return err
			}
			mu.Lock()
			result[id] = a.Profile
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return result, nil
}

func (l *S3Library) Followers(ctx context.Context, accountID string, page, size int) (models.Page[string], error) {
	a, err := l.account(ctx, accountID)
	if err != nil {
		return models.Page[string]{}, err
	}
	return models.Paginate(a.Followers, page, size), nil
}

func (l *S3Library) Friends(ctx context.Context, accountID string, page, size int) (models.Page[string], error) {
	a, err := l.account(ctx, accountID)
	if err != nil {
		return models.Page[string]{}, err
	}
	return models.Paginate(a.Friends, page, size), nil
}

func (l *S3Library) Favorites(ctx context.Context, accountID string, page, size int, f TweetFilter) (models.Page[models.Tweet], error) {
	a, err := l.account(ctx, accountID)
	if err != nil {
		return models.Page[models.Tweet]{}, err
	}
	tweets, err := l.applyFilter(ctx, a.Favorites, f)
	if err != nil {
		return models.Page[models.Tweet]{}, err
	}
	return models.Paginate(tweets, page, size), nil
}

func (l *S3Library) Timeline(ctx context.Context, accountID string, page, size int, f TweetFilter) (models.Page[models.Tweet], error) {
	a, err := l.account(ctx, accountID)
	if err != nil {
		return models.Page[models.Tweet]{}, err
	}
	tweets, err := l.applyFilter(ctx, a.Timeline, f)
	if err != nil {
		return models.Page[models.Tweet]{}, err
	}
	return models.Paginate(tweets, page, size), nil
}

func (l *S3Library) applyFilter(ctx context.Context, tweets []models.Tweet, f TweetFilter) ([]models.Tweet, error) {
	var (
		members map[string]struct{}
		words   []string
	)

	if f.WatchlistID != "" {
		wl, err := l.GetWatchlist(ctx, f.WatchlistID)
		if err != nil {
			return nil, err
		}
		members = make(map[string]struct{}, len(wl.Members))
		for _, m := range wl.Members {
			members[m] = struct{}{}
		}
	}

	if f.WatchwordsID != "" {
		wl, err := l.GetWatchlist(ctx, f.WatchwordsID)
		if err != nil {
			return nil, err
		}
		words = append([]string{}, wl.Watchwords...)
	}

	return filterTweets(tweets, members, words), nil
}

// AccountSets reads the account once and returns its follower and friend
// ids, the author of every favorite and the original author of every
// retweet on its timeline.
func (l *S3Library) AccountSets(ctx context.Context, accountID string) (*models.AccountSets, error) {
	a, err := l.account(ctx, accountID)
	if err != nil {
		return nil, err
	}

	sets := &models.AccountSets{
		Followers:       a.Followers,
		Friends:         a.Friends,
		FavoriteAuthors: make([]string, 0, len(a.Favorites)),
		RetweetAuthors:  []string{},
	}
	for _, t := range a.Favorites {
		sets.FavoriteAuthors = append(sets.FavoriteAuthors, t.UserID)
	}
	for _, t := range a.Timeline {
		if t.IsRetweet() {
			sets.RetweetAuthors = append(sets.RetweetAuthors, t.RetweetUserID)
		}
	}
	return sets, nil
}

func (l *S3Library) ListWatchlists(ctx context.Context) ([]string, error) {
	return l.listIDs(ctx, watchlistsPrefix)
}

func (l *S3Library) GetWatchlist(ctx context.Context, watchlistID string) (*models.Watchlist, error) {
	wl, _, err := l.watchlist(ctx, watchlistID)
	return wl, err
}

func (l *S3Library) watchlist(ctx context.Context, watchlistID string) (*models.Watchlist, string, error) {
	key, err := objectKey(watchlistsPrefix, watchlistID)
	if err != nil {
		return nil, "", err
	}

	wl := &models.Watchlist{}
	etag, err := l.getJSON(ctx, key, wl)
	if err != nil {
		return nil, "", err
	}
	wl.ID = watchlistID
	if wl.Members == nil {
		wl.Members = []string{}
	}
	if wl.Watchwords == nil {
		wl.Watchwords = []string{}
	}
	return wl, etag, nil
}

func (l *S3Library) WatchlistInfo(ctx context.Context, watchlistID string) (*models.WatchlistInfo, error) {
	wl, err := l.GetWatchlist(ctx, watchlistID)
	if err != nil {
		return nil, err
	}
	return &models.WatchlistInfo{
		Name:           wl.ID,
		WatchlistCount: len(wl.Members),
		WatchwordCount: len(wl.Watchwords),
	}, nil
}

// CreateWatchlist creates an empty watchlist. Creating one that already
// exists leaves it untouched and succeeds.
func (l *S3Library) CreateWatchlist(ctx context.Context, watchlistID string) error {
	key, err := objectKey(watchlistsPrefix, watchlistID)
	if err != nil {
		return err
	}

	wl := models.Watchlist{ID: watchlistID, Members: []string{}, Watchwords: []string{}}
	err = l.putJSON(ctx, key, wl, putCondition{ifNoneMatch: "*"})
	if errors.Is(err, common.ErrVersionConflict) {
		return nil
	}
	return err
}

// updateWatchlist applies fn to the current watchlist and writes it back if
// fn reports a change.
func (l *S3Library) updateWatchlist(ctx context.Context, watchlistID string, fn func(*models.Watchlist) bool) error {
	wl, etag, err := l.watchlist(ctx, watchlistID)
	if err != nil {
		return err
	}

	if !fn(wl) {
		return nil
	}

	key, _ := objectKey(watchlistsPrefix, watchlistID)
	return l.putJSON(ctx, key, wl, putCondition{ifMatch: etag})
}

func (l *S3Library) AddMember(ctx context.Context, watchlistID, accountID string) error {
	if accountID == "" {
		return common.ErrInvalidID
	}
	return l.updateWatchlist(ctx, watchlistID, func(wl *models.Watchlist) bool {
		if slices.Contains(wl.Members, accountID) {
			return false
		}
		wl.Members = append(wl.Members, accountID)
		return true
	})
}

func (l *S3Library) RemoveMember(ctx context.Context, watchlistID, accountID string) error {
	return l.updateWatchlist(ctx, watchlistID, func(wl *models.Watchlist) bool {
		before := len(wl.Members)
		wl.Members = slices.DeleteFunc(wl.Members, func(m string) bool { return m == accountID })
		return len(wl.Members) != before
	})
}

func (l *S3Library) AddWatchword(ctx context.Context, watchlistID, word string) error {
	word = strings.TrimSpace(word)
	if word == "" {
		return common.ErrInvalidID
	}
	return l.updateWatchlist(ctx, watchlistID, func(wl *models.Watchlist) bool {
		if slices.Contains(wl.Watchwords, word) {
			return false
		}
		wl.Watchwords = append(wl.Watchwords, word)
		return true
	})
}

func (l *S3Library) RemoveWatchword(ctx context.Context, watchlistID, word string) error {
	word = strings.TrimSpace(word)
	return l.updateWatchlist(ctx, watchlistID, func(wl *models.Watchlist) bool {
		before := len(wl.Watchwords)
		wl.Watchwords = slices.DeleteFunc(wl.Watchwords, func(w string) bool { return w == word })
		return len(wl.Watchwords) != before
	})
}

// ImportList merges the members of lists/<listID>.json into the watchlist and
// returns how many were new.
func (l *S3Library) ImportList(ctx context.Context, watchlistID, listID string) (int, error) {
	key, err := objectKey(listsPrefix, listID)
	if err != nil {
		return 0, err
	}

	src := &importedList{}
	if _, err := l.getJSON(ctx, key, src); err != nil {
		return 0, err
	}

	added := 0
	err = l.updateWatchlist(ctx, watchlistID, func(wl *models.Watchlist) bool {
		seen := make(map[string]struct{}, len(wl.Members))
		for _, m := range wl.Members {
			seen[m] = struct{}{}
		}
		for _, m := range src.Members {
			if _, ok := seen[m]; ok || m == "" {
				continue
			}
			seen[m] = struct{}{}
			wl.Members = append(wl.Members, m)
			added++
		}
		return added > 0
	})
	if err != nil {
		return 0, err
	}
	return added, nil
}
