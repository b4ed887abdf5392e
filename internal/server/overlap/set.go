// Package overlap measures how an external account's social graph overlaps a
// watchlist, and hydrates relation pages with the profiles of watchlist
// members.
package overlap

import "github.com/calebglawson/cecil/internal/server/models"

// Set is a set of account ids.
type Set map[string]struct{}

// NewSet collects ids into a Set, dropping duplicates.
func NewSet(ids []string) Set {
	s := make(Set, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

func (s Set) Contains(id string) bool {
	_, ok := s[id]
	return ok
}

func intersectionSize(a, b Set) int {
	if len(b) < len(a) {
		a, b = b, a
	}
	n := 0
	for id := range a {
		if b.Contains(id) {
			n++
		}
	}
	return n
}

// Percent is |A ∩ B| / |A|, or 0 when A is empty.
func Percent(a, b Set) float64 {
	if len(a) == 0 {
		return 0
	}
	return float64(intersectionSize(a, b)) / float64(len(a))
}

// Completion is |A ∩ B| / |B|, or 0 when B is empty.
func Completion(a, b Set) float64 {
	if len(b) == 0 {
		return 0
	}
	return float64(intersectionSize(a, b)) / float64(len(b))
}

// Hydrate builds one relation per id, in order. Ids in members get the
// matching entry of profiles attached; a nil members set attaches nothing.
func Hydrate(ids []string, members Set, profiles map[string]models.Profile) []models.HydratedRelation {
	out := make([]models.HydratedRelation, 0, len(ids))
	for _, id := range ids {
		rel := models.HydratedRelation{UserID: id}
		if members.Contains(id) {
			if p, ok := profiles[id]; ok {
				rel.User = &p
			}
		}
		out = append(out, rel)
	}
	return out
}
