package library

import (
	"strings"

	"github.com/calebglawson/cecil/internal/server/models"
)

// filterTweets keeps tweets by watchlist membership of their author and by
// watchword mention. A nil members set or nil words slice disables that half
// of the filter. Empty but non-nil values match nothing.
func filterTweets(tweets []models.Tweet, members map[string]struct{}, words []string) []models.Tweet {
	if members == nil && words == nil {
		return tweets
	}

	lowered := make([]string, 0, len(words))
	for _, w := range words {
		if w = strings.ToLower(strings.TrimSpace(w)); w != "" {
			lowered = append(lowered, w)
		}
	}

	out := make([]models.Tweet, 0, len(tweets))
	for _, t := range tweets {
		if members != nil {
			if _, ok := members[t.Author()]; !ok {
				continue
			}
		}
		if words != nil && !mentionsAny(t.Text, lowered) {
			continue
		}
		out = append(out, t)
	}
	return out
}

func mentionsAny(text string, lowered []string) bool {
	text = strings.ToLower(text)
	for _, w := range lowered {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}
