package services

import (
	"context"

	"github.com/calebglawson/cecil/internal/server/models"
)

func (s *LibraryService) Notes(ctx context.Context, accountID string, page, size int) (models.Page[models.Note], error) {
	page, size = normalizePage(page, size, DefaultPageSize)
	p, err := s.lib.Notes(ctx, accountID, page, size)
	if err != nil {
		return p, sanitize(ctx, s.logger, "notes", err)
	}
	return p, nil
}

func (s *LibraryService) AddNote(ctx context.Context, accountID, text string) (*models.Note, error) {
	n, err := s.lib.AddNote(ctx, accountID, text)
	if err != nil {
		return nil, sanitize(ctx, s.logger, "add note", err)
	}
	return n, nil
}

func (s *LibraryService) RemoveNote(ctx context.Context, accountID, noteID string) error {
	return sanitize(ctx, s.logger, "remove note", s.lib.RemoveNote(ctx, accountID, noteID))
}

func (s *LibraryService) TweetNotes(ctx context.Context, accountID string, kind models.TweetKind, tweetID string) ([]models.Note, error) {
	notes, err := s.lib.TweetNotes(ctx, accountID, kind, tweetID)
	if err != nil {
		return nil, sanitize(ctx, s.logger, "tweet notes", err)
	}
	return notes, nil
}

func (s *LibraryService) AddTweetNote(ctx context.Context, accountID string, kind models.TweetKind, tweetID, text string) (*models.Note, error) {
	n, err := s.lib.AddTweetNote(ctx, accountID, kind, tweetID, text)
	if err != nil {
		return nil, sanitize(ctx, s.logger, "add tweet note", err)
	}
	return n, nil
}

func (s *LibraryService) RemoveTweetNote(ctx context.Context, accountID string, kind models.TweetKind, tweetID, noteID string) error {
	return sanitize(ctx, s.logger, "remove tweet note", s.lib.RemoveTweetNote(ctx, accountID, kind, tweetID, noteID))
}

func (s *LibraryService) Tags(ctx context.Context, accountID string, kind models.TweetKind) ([]models.Tag, error) {
	tags, err := s.lib.Tags(ctx, accountID, kind)
	if err != nil {
		return nil, sanitize(ctx, s.logger, "tags", err)
	}
	return tags, nil
}

func (s *LibraryService) TweetTags(ctx context.Context, accountID string, kind models.TweetKind, tweetID string) ([]models.Tag, error) {
	tags, err := s.lib.TweetTags(ctx, accountID, kind, tweetID)
	if err != nil {
		return nil, sanitize(ctx, s.logger, "tweet tags", err)
	}
	return tags, nil
}

func (s *LibraryService) AddTweetTag(ctx context.Context, accountID string, kind models.TweetKind, tweetID, text string) (*models.Tag, error) {
	tag, err := s.lib.AddTweetTag(ctx, accountID, kind, tweetID, text)
	if err != nil {
		return nil, sanitize(ctx, s.logger, "add tweet tag", err)
	}
	return tag, nil
}

func (s *LibraryService) RemoveTweetTag(ctx context.Context, accountID string, kind models.TweetKind, tweetID string, tagID int64) error {
	return sanitize(ctx, s.logger, "remove tweet tag", s.lib.RemoveTweetTag(ctx, accountID, kind, tweetID, tagID))
}

// Tagged pages the tweets of one collection carrying a tag.
func (s *LibraryService) Tagged(ctx context.Context, accountID string, kind models.TweetKind, tagID int64, page, size int) (models.Page[models.Tweet], error) {
	page, size = normalizePage(page, size, DefaultPageSize)
	p, err := s.lib.Tagged(ctx, accountID, kind, tagID, page, size)
	if err != nil {
		return p, sanitize(ctx, s.logger, "tagged", err)
	}
	return p, nil
}
