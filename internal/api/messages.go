package api

import "github.com/calebglawson/cecil/internal/server/models"

// Empty is the request or response of calls that carry nothing.
type Empty struct{}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type RegisterRequest struct {
	Username   string `json:"username"`
	Password   string `json:"password"`
	InviteCode string `json:"invite_code"`
}

type ChangePasswordRequest struct {
	OldPassword     string `json:"old_password"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

// CreateInviteRequest leaves Code empty to have the server generate one and
// TTLMinutes zero for the configured lifetime.
type CreateInviteRequest struct {
	Code       string `json:"code,omitempty"`
	TTLMinutes int    `json:"ttl_minutes,omitempty"`
}

// CreateInviteResponse is the only place the plaintext code ever appears.
type CreateInviteResponse struct {
	Invite models.InviteCode `json:"invite"`
	Code   string            `json:"code"`
}

type InviteList struct {
	Invites []models.InviteCode `json:"invites"`
}

type IDRequest struct {
	ID int64 `json:"id"`
}

type AuthUserList struct {
	Users []models.InternalUser `json:"users"`
}

type AccountRequest struct {
	AccountID string `json:"account_id"`
}

type PageRequest struct {
	Page     int `json:"page,omitempty"`
	PageSize int `json:"page_size,omitempty"`
}

// RelationRequest pages followers or friends. A WatchlistID hydrates the
// members of that watchlist on the page.
type RelationRequest struct {
	AccountID   string `json:"account_id"`
	Page        int    `json:"page,omitempty"`
	PageSize    int    `json:"page_size,omitempty"`
	WatchlistID string `json:"watchlist_id,omitempty"`
}

// TweetRequest pages favorites or timeline, optionally narrowed to tweets by
// members of WatchlistID and to tweets matching the watchwords of
// WatchwordsID.
type TweetRequest struct {
	AccountID    string `json:"account_id"`
	Page         int    `json:"page,omitempty"`
	PageSize     int    `json:"page_size,omitempty"`
	WatchlistID  string `json:"watchlist_id,omitempty"`
	WatchwordsID string `json:"watchwords_id,omitempty"`
}

type StatsRequest struct {
	AccountID   string `json:"account_id"`
	WatchlistID string `json:"watchlist_id"`
}

type WatchlistRequest struct {
	WatchlistID string `json:"watchlist_id"`
}

type MemberRequest struct {
	WatchlistID string `json:"watchlist_id"`
	AccountID   string `json:"account_id"`
}

type WatchwordRequest struct {
	WatchlistID string `json:"watchlist_id"`
	Word        string `json:"word"`
}

type ImportListRequest struct {
	WatchlistID string `json:"watchlist_id"`
	ListID      string `json:"list_id"`
}

type StringList struct {
	Items []string `json:"items"`
}

type ProfileList struct {
	Items []models.Profile `json:"items"`
}

// AnnotationRequest addresses the notes and tags of an account. Kind and
// TweetID select one favorite or timeline tweet; calls on the account's own
// notes leave them empty. The remaining fields are read by the calls that
// need them.
type AnnotationRequest struct {
	AccountID string           `json:"account_id"`
	Kind      models.TweetKind `json:"kind,omitempty"`
	TweetID   string           `json:"tweet_id,omitempty"`
	NoteID    string           `json:"note_id,omitempty"`
	TagID     int64            `json:"tag_id,omitempty"`
	Text      string           `json:"text,omitempty"`
	Page      int              `json:"page,omitempty"`
	PageSize  int              `json:"page_size,omitempty"`
}

type NoteList struct {
	Items []models.Note `json:"items"`
}

type TagList struct {
	Items []models.Tag `json:"items"`
}
