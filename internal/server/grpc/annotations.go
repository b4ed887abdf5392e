package grpc

import (
	"context"

	"github.com/calebglawson/cecil/internal/api"
	"github.com/calebglawson/cecil/internal/server/models"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// tweetTarget checks the fields that address one stored tweet.
func tweetTarget(in *api.AnnotationRequest) error {
	if !in.Kind.Valid() {
		return status.Errorf(codes.InvalidArgument, "kind must be %q or %q", models.KindFavorite, models.KindTimeline)
	}
	if in.TweetID == "" {
		return status.Error(codes.InvalidArgument, "tweet_id is required")
	}
	return nil
}

func (s *GRPCServer) notes(ctx context.Context, in *api.AnnotationRequest) (*models.Page[models.Note], error) {
	p, err := s.svc.Library.Notes(ctx, in.AccountID, in.Page, in.PageSize)
	return pageOf(p, err)
}

func (s *GRPCServer) addNote(ctx context.Context, in *api.AnnotationRequest) (*models.Note, error) {
	n, err := s.svc.Library.AddNote(ctx, in.AccountID, in.Text)
	if err != nil {
		return nil, toStatus(err)
	}
	return n, nil
}

func (s *GRPCServer) removeNote(ctx context.Context, in *api.AnnotationRequest) (*api.Empty, error) {
	return done(s.svc.Library.RemoveNote(ctx, in.AccountID, in.NoteID))
}

func (s *GRPCServer) tweetNotes(ctx context.Context, in *api.AnnotationRequest) (*api.NoteList, error) {
	if err := tweetTarget(in); err != nil {
		return nil, err
	}
	notes, err := s.svc.Library.TweetNotes(ctx, in.AccountID, in.Kind, in.TweetID)
	if err != nil {
		return nil, toStatus(err)
	}
	return &api.NoteList{Items: notes}, nil
}

func (s *GRPCServer) addTweetNote(ctx context.Context, in *api.AnnotationRequest) (*models.Note, error) {
	if err := tweetTarget(in); err != nil {
		return nil, err
	}
	n, err := s.svc.Library.AddTweetNote(ctx, in.AccountID, in.Kind, in.TweetID, in.Text)
	if err != nil {
		return nil, toStatus(err)
	}
	return n, nil
}

func (s *GRPCServer) removeTweetNote(ctx context.Context, in *api.AnnotationRequest) (*api.Empty, error) {
	if err := tweetTarget(in); err != nil {
		return nil, err
	}
	return done(s.svc.Library.RemoveTweetNote(ctx, in.AccountID, in.Kind, in.TweetID, in.NoteID))
}

func (s *GRPCServer) tags(ctx context.Context, in *api.AnnotationRequest) (*api.TagList, error) {
	tags, err := s.svc.Library.Tags(ctx, in.AccountID, in.Kind)
	if err != nil {
		return nil, toStatus(err)
	}
	return &api.TagList{Items: tags}, nil
}

func (s *GRPCServer) tweetTags(ctx context.Context, in *api.AnnotationRequest) (*api.TagList, error) {
	if err := tweetTarget(in); err != nil {
		return nil, err
	}
	tags, err := s.svc.Library.TweetTags(ctx, in.AccountID, in.Kind, in.TweetID)
	if err != nil {
		return nil, toStatus(err)
	}
	return &api.TagList{Items: tags}, nil
}

func (s *GRPCServer) addTweetTag(ctx context.Context, in *api.AnnotationRequest) (*models.Tag, error) {
	if err := tweetTarget(in); err != nil {
		return nil, err
	}
	tag, err := s.svc.Library.AddTweetTag(ctx, in.AccountID, in.Kind, in.TweetID, in.Text)
	if err != nil {
		return nil, toStatus(err)
	}
	return tag, nil
}

func (s *GRPCServer) removeTweetTag(ctx context.Context, in *api.AnnotationRequest) (*api.Empty, error) {
	if err := tweetTarget(in); err != nil {
		return nil, err
	}
	return done(s.svc.Library.RemoveTweetTag(ctx, in.AccountID, in.Kind, in.TweetID, in.TagID))
}

func (s *GRPCServer) tagged(ctx context.Context, in *api.AnnotationRequest) (*models.Page[models.Tweet], error) {
	p, err := s.svc.Library.Tagged(ctx, in.AccountID, in.Kind, in.TagID, in.Page, in.PageSize)
	return pageOf(p, err)
}
