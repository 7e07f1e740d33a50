package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sensifinder/sensifinder-server/internal/domain"
)

// ErrSessionNotFound is returned for unknown or expired session IDs.
var ErrSessionNotFound = errors.New("session not found")

const keyPrefix = "session:"

// Manager creates and persists client sessions.
type Manager struct {
	storage Storage
	ttl     time.Duration
	logger  *slog.Logger
	now     func() time.Time

	// mu serializes every write of a stored session, so a write never
	// replaces a record with a copy read before another write.
	mu sync.Mutex
}

// NewManager creates a manager over storage. Sessions expire after
// domain.SessionTTL without use.
func NewManager(storage Storage, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		storage: storage,
		ttl:     domain.SessionTTL,
		logger:  logger,
		now:     time.Now,
	}
}

// Create starts a new session for username.
func (m *Manager) Create(ctx context.Context, username string) (*domain.Session, error) {
	s := domain.NewSession(uuid.NewString(), username)
	now := m.now()
	s.CreatedAt = now
	s.LastSeenAt = now

	if err := m.save(ctx, s); err != nil {
		return nil, err
	}
	m.logger.Debug("session created", "session_id", s.ID)
	return s, nil
}

// Load returns the session with id, or ErrSessionNotFound.
func (m *Manager) Load(ctx context.Context, id string) (*domain.Session, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrSessionNotFound
	}

	raw, err := m.storage.Get(ctx, keyPrefix+id)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	var s domain.Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", id, err)
	}
	if s.IsExpired(m.now()) {
		_ = m.storage.Delete(ctx, keyPrefix+id)
		return nil, ErrSessionNotFound
	}
	if s.LikedProfiles == nil {
		s.LikedProfiles = []string{}
	}
	return &s, nil
}

// save persists s and refreshes its expiry. Callers other than Create must
// hold mu and pass a session loaded under it.
func (m *Manager) save(ctx context.Context, s *domain.Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := m.storage.Set(ctx, keyPrefix+s.ID, data, m.ttl); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Delete removes the session.
func (m *Manager) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.storage.Delete(ctx, keyPrefix+id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// Touch reloads session id, marks it as used now and saves it.
// It returns the refreshed session or ErrSessionNotFound.
func (m *Manager) Touch(ctx context.Context, id string) (*domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, err := m.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	s.Touch(m.now())
	if err := m.save(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

// RecordLike atomically records that session id upvoted profileID.
// It returns false without error if the like was already recorded.
func (m *Manager) RecordLike(ctx context.Context, id, profileID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, err := m.Load(ctx, id)
	if err != nil {
		return false, err
	}
	if !s.Like(profileID) {
		return false, nil
	}
	s.Touch(m.now())
	if err := m.save(ctx, s); err != nil {
		return false, err
	}
	return true, nil
}

// ForgetLike undoes RecordLike, used when the upvote itself failed.
func (m *Manager) ForgetLike(ctx context.Context, id, profileID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, err := m.Load(ctx, id)
	if err != nil {
		return err
	}
	if !s.Unlike(profileID) {
		return nil
	}
	return m.save(ctx, s)
}
