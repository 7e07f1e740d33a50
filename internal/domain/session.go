package domain

import (
	"slices"
	"time"
)

// SessionTTL is how long an idle client session is kept.
const SessionTTL = 30 * 24 * time.Hour

// Session is a client identity. It carries no credentials; it exists so the
// service layer can tell repeat upvotes from the same client apart.
type Session struct {
	ID            string    `json:"id"`
	Username      string    `json:"username"`
	LikedProfiles []string  `json:"liked_profiles"`
	CreatedAt     time.Time `json:"created_at"`
	LastSeenAt    time.Time `json:"last_seen_at"`
}

// NewSession creates a session with no likes.
func NewSession(id, username string) *Session {
	now := time.Now()
	return &Session{
		ID:            id,
		Username:      username,
		LikedProfiles: []string{},
		CreatedAt:     now,
		LastSeenAt:    now,
	}
}

// HasLiked reports whether the session already upvoted profileID.
func (s *Session) HasLiked(profileID string) bool {
	return slices.Contains(s.LikedProfiles, profileID)
}

// Like records an upvote. It returns false if profileID was already liked.
func (s *Session) Like(profileID string) bool {
	if s.HasLiked(profileID) {
		return false
	}
	s.LikedProfiles = append(s.LikedProfiles, profileID)
	return true
}

// Unlike removes a recorded upvote. It returns false if none was recorded.
func (s *Session) Unlike(profileID string) bool {
	i := slices.Index(s.LikedProfiles, profileID)
	if i < 0 {
		return false
	}
	s.LikedProfiles = slices.Delete(s.LikedProfiles, i, i+1)
	return true
}

// Touch updates the last-seen timestamp.
func (s *Session) Touch(now time.Time) {
	s.LastSeenAt = now
}

// IsExpired reports whether the session has been idle longer than SessionTTL.
func (s *Session) IsExpired(now time.Time) bool {
	return now.Sub(s.LastSeenAt) > SessionTTL
}
