package models

import "time"

// TweetKind names the collection a tweet was stored in.
type TweetKind string

const (
	KindFavorite TweetKind = "favorite"
	KindTimeline TweetKind = "timeline"
)

func (k TweetKind) Valid() bool {
	return k == KindFavorite || k == KindTimeline
}

// Note is free text an analyst attached to an account or one of its tweets.
type Note struct {
	NoteID    string    `json:"note_id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// Tag is a label from an account's tag catalog. The same tag may be applied
// to favorites and timeline tweets.
type Tag struct {
	TagID int64  `json:"tag_id"`
	Text  string `json:"text"`
}
