package library

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/calebglawson/cecil/internal/common"
	"github.com/calebglawson/cecil/internal/server/models"
	"github.com/google/uuid"
)

// tweetAnnotations are the notes and tag ids attached to one stored tweet.
type tweetAnnotations struct {
	Notes  []models.Note `json:"notes,omitempty"`
	TagIDs []int64       `json:"tag_ids,omitempty"`
}

func (a *account) collection(kind models.TweetKind) ([]models.Tweet, error) {
	switch kind {
	case models.KindFavorite:
		return a.Favorites, nil
	case models.KindTimeline:
		return a.Timeline, nil
	}
	return nil, fmt.Errorf("%w: tweet kind %q", common.ErrInvalidInput, kind)
}

// annotationsOf returns the annotations of a stored tweet. With create set a
// missing entry is added to the account; otherwise an empty value is
// returned. A tweet the collection does not hold yields common.ErrorNotFound.
func (a *account) annotationsOf(kind models.TweetKind, tweetID string, create bool) (*tweetAnnotations, error) {
	tweets, err := a.collection(kind)
	if err != nil {
		return nil, err
	}
	if !slices.ContainsFunc(tweets, func(t models.Tweet) bool { return t.TweetID == tweetID }) {
		return nil, common.ErrorNotFound
	}

	if ann := a.Annotations[kind][tweetID]; ann != nil {
		return ann, nil
	}
	ann := &tweetAnnotations{}
	if create {
		if a.Annotations == nil {
			a.Annotations = map[models.TweetKind]map[string]*tweetAnnotations{}
		}
		if a.Annotations[kind] == nil {
			a.Annotations[kind] = map[string]*tweetAnnotations{}
		}
		a.Annotations[kind][tweetID] = ann
	}
	return ann, nil
}

func (a *account) catalogTag(tagID int64) (models.Tag, bool) {
	i := slices.IndexFunc(a.Tags, func(t models.Tag) bool { return t.TagID == tagID })
	if i < 0 {
		return models.Tag{}, false
	}
	return a.Tags[i], true
}

// catalogTagFor returns the catalog tag whose text matches text ignoring
// case, adding a new one when there is none.
func (a *account) catalogTagFor(text string) models.Tag {
	var next int64 = 1
	for _, t := range a.Tags {
		if strings.EqualFold(t.Text, text) {
			return t
		}
		next = max(next, t.TagID+1)
	}
	tag := models.Tag{TagID: next, Text: text}
	a.Tags = append(a.Tags, tag)
	return tag
}

func (a *account) tagsByID(ids []int64) []models.Tag {
	tags := make([]models.Tag, 0, len(ids))
	for _, id := range ids {
		if t, ok := a.catalogTag(id); ok {
			tags = append(tags, t)
		}
	}
	return tags
}

func cleanText(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("%w: empty text", common.ErrInvalidInput)
	}
	return text, nil
}

func (l *S3Library) newNote(text string) models.Note {
	return models.Note{NoteID: uuid.NewString(), Text: text, CreatedAt: l.now()}
}

func removeNote(notes []models.Note, noteID string) ([]models.Note, bool) {
	before := len(notes)
	notes = slices.DeleteFunc(notes, func(n models.Note) bool { return n.NoteID == noteID })
	return notes, len(notes) != before
}

// Notes pages the notes kept on the account itself, oldest first.
func (l *S3Library) Notes(ctx context.Context, accountID string, page, size int) (models.Page[models.Note], error) {
	a, err := l.account(ctx, accountID)
	if err != nil {
		return models.Page[models.Note]{}, err
	}
	return models.Paginate(a.Notes, page, size), nil
}

func (l *S3Library) AddNote(ctx context.Context, accountID, text string) (*models.Note, error) {
	text, err := cleanText(text)
	if err != nil {
		return nil, err
	}

	note := l.newNote(text)
	err = l.updateAccount(ctx, accountID, func(a *account) (bool, error) {
		a.Notes = append(a.Notes, note)
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return &note, nil
}

func (l *S3Library) RemoveNote(ctx context.Context, accountID, noteID string) error {
	return l.updateAccount(ctx, accountID, func(a *account) (bool, error) {
		var removed bool
		a.Notes, removed = removeNote(a.Notes, noteID)
		if !removed {
			return false, common.ErrorNotFound
		}
		return true, nil
	})
}

func (l *S3Library) TweetNotes(ctx context.Context, accountID string, kind models.TweetKind, tweetID string) ([]models.Note, error) {
	a, err := l.account(ctx, accountID)
	if err != nil {
		return nil, err
	}
	ann, err := a.annotationsOf(kind, tweetID, false)
	if err != nil {
		return nil, err
	}
	return append([]models.Note{}, ann.Notes...), nil
}

func (l *S3Library) AddTweetNote(ctx context.Context, accountID string, kind models.TweetKind, tweetID, text string) (*models.Note, error) {
	text, err := cleanText(text)
	if err != nil {
		return nil, err
	}

	note := l.newNote(text)
	err = l.updateAccount(ctx, accountID, func(a *account) (bool, error) {
		ann, err := a.annotationsOf(kind, tweetID, true)
		if err != nil {
			return false, err
		}
		ann.Notes = append(ann.Notes, note)
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return &note, nil
}

func (l *S3Library) RemoveTweetNote(ctx context.Context, accountID string, kind models.TweetKind, tweetID, noteID string) error {
	return l.updateAccount(ctx, accountID, func(a *account) (bool, error) {
		ann, err := a.annotationsOf(kind, tweetID, false)
		if err != nil {
			return false, err
		}
		var removed bool
		ann.Notes, removed = removeNote(ann.Notes, noteID)
		if !removed {
			return false, common.ErrorNotFound
		}
		return true, nil
	})
}

// Tags lists the catalog tags applied to at least one tweet of kind, in tag
// id order.
func (l *S3Library) Tags(ctx context.Context, accountID string, kind models.TweetKind) ([]models.Tag, error) {
	a, err := l.account(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if _, err := a.collection(kind); err != nil {
		return nil, err
	}

	used := map[int64]struct{}{}
	for _, ann := range a.Annotations[kind] {
		for _, id := range ann.TagIDs {
			used[id] = struct{}{}
		}
	}

	tags := []models.Tag{}
	for _, t := range a.Tags {
		if _, ok := used[t.TagID]; ok {
			tags = append(tags, t)
		}
	}
	slices.SortFunc(tags, func(x, y models.Tag) int { return cmp.Compare(x.TagID, y.TagID) })
	return tags, nil
}

func (l *S3Library) TweetTags(ctx context.Context, accountID string, kind models.TweetKind, tweetID string) ([]models.Tag, error) {
	a, err := l.account(ctx, accountID)
	if err != nil {
		return nil, err
	}
	ann, err := a.annotationsOf(kind, tweetID, false)
	if err != nil {
		return nil, err
	}
	return a.tagsByID(ann.TagIDs), nil
}

// AddTweetTag applies the tag named text to a tweet. A catalog tag with the
// same text is reused; applying a tag twice is a no-op.
func (l *S3Library) AddTweetTag(ctx context.Context, accountID string, kind models.TweetKind, tweetID, text string) (*models.Tag, error) {
	text, err := cleanText(text)
	if err != nil {
		return nil, err
	}

	var tag models.Tag
	err = l.updateAccount(ctx, accountID, func(a *account) (bool, error) {
		ann, err := a.annotationsOf(kind, tweetID, true)
		if err != nil {
			return false, err
		}
		tag = a.catalogTagFor(text)
		if slices.Contains(ann.TagIDs, tag.TagID) {
			return false, nil
		}
		ann.TagIDs = append(ann.TagIDs, tag.TagID)
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return &tag, nil
}

// RemoveTweetTag takes a tag off a tweet. The tag stays in the catalog.
func (l *S3Library) RemoveTweetTag(ctx context.Context, accountID string, kind models.TweetKind, tweetID string, tagID int64) error {
	return l.updateAccount(ctx, accountID, func(a *account) (bool, error) {
		ann, err := a.annotationsOf(kind, tweetID, false)
		if err != nil {
			return false, err
		}
		before := len(ann.TagIDs)
		ann.TagIDs = slices.DeleteFunc(ann.TagIDs, func(id int64) bool { return id == tagID })
		if len(ann.TagIDs) == before {
			return false, common.ErrorNotFound
		}
		return true, nil
	})
}

// Tagged pages the tweets of kind carrying tagID, in collection order.
func (l *S3Library) Tagged(ctx context.Context, accountID string, kind models.TweetKind, tagID int64, page, size int) (models.Page[models.Tweet], error) {
	a, err := l.account(ctx, accountID)
	if err != nil {
		return models.Page[models.Tweet]{}, err
	}
	tweets, err := a.collection(kind)
	if err != nil {
		return models.Page[models.Tweet]{}, err
	}
	if _, ok := a.catalogTag(tagID); !ok {
		return models.Page[models.Tweet]{}, common.ErrorNotFound
	}

	tagged := []models.Tweet{}
	for _, t := range tweets {
		if ann := a.Annotations[kind][t.TweetID]; ann != nil && slices.Contains(ann.TagIDs, tagID) {
			tagged = append(tagged, t)
		}
	}
	return models.Paginate(tagged, page, size), nil
}
