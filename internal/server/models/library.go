package models

import "time"

// Profile is the top level data of a monitored external account.
type Profile struct {
	UserID           string         `json:"user_id"`
	ScreenName       string         `json:"screen_name,omitempty"`
	Name             string         `json:"name,omitempty"`
	Description      string         `json:"description,omitempty"`
	Location         string         `json:"location,omitempty"`
	URL              string         `json:"url,omitempty"`
	Lang             string         `json:"lang,omitempty"`
	ProfileImageURL  string         `json:"profile_image_url,omitempty"`
	ProfileBannerURL string         `json:"profile_banner_url,omitempty"`
	Entities         map[string]any `json:"entities,omitempty"`
	FollowersCount   int            `json:"followers_count"`
	FriendsCount     int            `json:"friends_count"`
	FavoritesCount   int            `json:"favorites_count"`
	ListedCount      int            `json:"listed_count"`
	StatusesCount    int            `json:"statuses_count"`
	Protected        bool           `json:"protected"`
	Verified         bool           `json:"verified"`
	Suspended        bool           `json:"suspended"`
	DefaultProfile   bool           `json:"default_profile"`
	GeoEnabled       bool           `json:"geo_enabled"`
	CreatedAt        *time.Time     `json:"created_at,omitempty"`
	LastUpdated      *time.Time     `json:"last_updated,omitempty"`
}

// Tweet is a favorited or timeline post. Timeline entries that are retweets
// carry the original author in the Retweet* fields.
type Tweet struct {
	TweetID           string         `json:"tweet_id"`
	UserID            string         `json:"user_id"`
	ScreenName        string         `json:"screen_name"`
	Name              string         `json:"name"`
	Text              string         `json:"text"`
	Lang              string         `json:"lang"`
	Source            string         `json:"source"`
	SourceURL         string         `json:"source_url"`
	Entities          map[string]any `json:"entities,omitempty"`
	FavoriteCount     int            `json:"favorite_count"`
	RetweetCount      int            `json:"retweet_count"`
	IsQuoteStatus     bool           `json:"is_quote_status"`
	PossiblySensitive bool           `json:"possibly_sensitive"`
	CreatedAt         time.Time      `json:"created_at"`
	LastUpdated       time.Time      `json:"last_updated"`

	RetweetUserID     string `json:"retweet_user_id,omitempty"`
	RetweetScreenName string `json:"retweet_screen_name,omitempty"`
	RetweetName       string `json:"retweet_name,omitempty"`
}

// IsRetweet reports whether t reposts someone else's tweet.
func (t Tweet) IsRetweet() bool {
	return t.RetweetUserID != ""
}

// Author is the account a watchlist filter should match: the retweeted
// author for retweets, the poster otherwise.
func (t Tweet) Author() string {
	if t.IsRetweet() {
		return t.RetweetUserID
	}
	return t.UserID
}

// Watchlist is a curated set of account ids plus search terms.
type Watchlist struct {
	ID         string   `json:"id"`
	Members    []string `json:"members"`
	Watchwords []string `json:"watchwords"`
}

// WatchlistInfo is the summary returned for a single watchlist.
type WatchlistInfo struct {
	Name           string `json:"name"`
	WatchlistCount int    `json:"watchlist_count"`
	WatchwordCount int    `json:"watchword_count"`
}

// HydratedRelation is one follower or friend id. User is set only when a
// watchlist filter was requested and the id is a member of it.
type HydratedRelation struct {
	UserID string   `json:"user_id"`
	User   *Profile `json:"user,omitempty"`
}

// WatchlistOverlap holds the six overlap ratios between one account and one
// watchlist. It is computed per request and never stored.
type WatchlistOverlap struct {
	FollowersPercent    float64 `json:"followers_watchlist_percent"`
	FollowersCompletion float64 `json:"followers_watchlist_completion"`
	FriendsPercent      float64 `json:"friends_watchlist_percent"`
	FriendsCompletion   float64 `json:"friends_watchlist_completion"`
	FavoritePercent     float64 `json:"favorite_watchlist_percent"`
	RetweetPercent      float64 `json:"retweet_watchlist_percent"`
}

// AccountSets are the id lists of one account that overlap statistics are
// computed from. Author lists keep duplicates.
type AccountSets struct {
	Followers       []string
	Friends         []string
	FavoriteAuthors []string
	RetweetAuthors  []string
}
