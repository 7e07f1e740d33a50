package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewSession(t *testing.T) {
	s := NewSession("sess-1", "sniper")

	assert.Equal(t, "sess-1", s.ID)
	assert.Equal(t, "sniper", s.Username)
	assert.NotNil(t, s.LikedProfiles)
	assert.Empty(t, s.LikedProfiles)
	assert.False(t, s.CreatedAt.IsZero())
	assert.Equal(t, s.CreatedAt, s.LastSeenAt)
}

func TestSession_Like(t *testing.T) {
	s := NewSession("sess-1", "sniper")

	assert.False(t, s.HasLiked("sens-a"))
	assert.True(t, s.Like("sens-a"))
	assert.True(t, s.HasLiked("sens-a"))

	// Second like of the same profile is refused.
	assert.False(t, s.Like("sens-a"))
	assert.Equal(t, []string{"sens-a"}, s.LikedProfiles)

	assert.True(t, s.Like("sens-b"))
	assert.Equal(t, []string{"sens-a", "sens-b"}, s.LikedProfiles)
}

func TestSession_Unlike(t *testing.T) {
	s := NewSession("sess-1", "sniper")
	s.Like("sens-a")
	s.Like("sens-b")

	assert.True(t, s.Unlike("sens-a"))
	assert.False(t, s.Unlike("sens-a"))
	assert.Equal(t, []string{"sens-b"}, s.LikedProfiles)
	assert.True(t, s.Like("sens-a"))
}

func TestSession_IsExpired(t *testing.T) {
	now := time.Now()
	s := NewSession("sess-1", "sniper")

	s.Touch(now.Add(-SessionTTL + time.Hour))
	assert.False(t, s.IsExpired(now))

	s.Touch(now.Add(-SessionTTL - time.Hour))
	assert.True(t, s.IsExpired(now))
}
