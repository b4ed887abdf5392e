package models

import "time"

// InviteCode is a single-use registration token. Only the bcrypt hash of the
// code is stored.
type InviteCode struct {
	ID         int64     `json:"invite_id"`
	HashedCode string    `json:"-"`
	CreatedBy  int64     `json:"created_by"`
	CreatedAt  time.Time `json:"created_at"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// Expired reports whether the code can no longer be redeemed at now. A code
// whose expiry equals now is already expired.
func (i InviteCode) Expired(now time.Time) bool {
	return !now.Before(i.ExpiresAt)
}
