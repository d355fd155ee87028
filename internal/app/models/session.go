package models

import "time"

// Session is an authenticated browser state for one portal. At most one valid
// Session exists per portal at any time; saving a new one invalidates the prior.
// State is an opaque serialized blob produced by the authentication flow and
// consumed by the browser layer; the store never interprets it.
type Session struct {
	Portal    string    `json:"portal"`
	State     []byte    `json:"state"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
	Valid     bool      `json:"valid"`
}

func (s *Session) Expired(now time.Time) bool {
	return !s.Valid || !now.Before(s.ExpiresAt)
}
