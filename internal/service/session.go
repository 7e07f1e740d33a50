package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/sensifinder/sensifinder-server/internal/domain"
	domainerrors "github.com/sensifinder/sensifinder-server/internal/errors"
	"github.com/sensifinder/sensifinder-server/internal/session"
	"github.com/sensifinder/sensifinder-server/internal/store"
	"github.com/sensifinder/sensifinder-server/internal/validation"
)

// CreateSessionRequest starts a client session.
type CreateSessionRequest struct {
	Username string `json:"username" validate:"required,min=2,max=32,printascii"`
}

// SessionService manages anonymous client sessions.
type SessionService struct {
	manager   *session.Manager
	store     store.Store
	validator *validation.Validator
	logger    *slog.Logger
}

// NewSessionService creates a new session service.
func NewSessionService(manager *session.Manager, store store.Store, validator *validation.Validator, logger *slog.Logger) *SessionService {
	return &SessionService{
		manager:   manager,
		store:     store,
		validator: validator,
		logger:    logger,
	}
}

// CreateSession starts a session for the given display name.
func (s *SessionService) CreateSession(ctx context.Context, req CreateSessionRequest) (*domain.Session, error) {
	req.Username = strings.TrimSpace(req.Username)
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	sess, err := s.manager.Create(ctx, req.Username)
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "failed to create session")
	}

	s.logger.Info("session created", "session_id", sess.ID, "username", sess.Username)
	return sess, nil
}

// GetSession returns a live session and refreshes its expiry.
func (s *SessionService) GetSession(ctx context.Context, id string) (*domain.Session, error) {
	sess, err := s.manager.Touch(ctx, id)
	if errors.Is(err, session.ErrSessionNotFound) {
		return nil, domainerrors.NotFound("session not found")
	}
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "failed to refresh session")
	}
	return sess, nil
}

// DeleteSession ends a session. Unknown sessions are not an error.
func (s *SessionService) DeleteSession(ctx context.Context, id string) error {
	if err := s.manager.Delete(ctx, id); err != nil {
		return domainerrors.Wrap(err, domainerrors.CodeInternal, "failed to delete session")
	}
	return nil
}

// LikedProfiles returns the profiles the session has upvoted, most recent
// upvote last.
func (s *SessionService) LikedProfiles(ctx context.Context, id string) ([]domain.SensitivityProfile, error) {
	sess, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	profiles, err := s.store.GetProfilesByIDs(ctx, sess.LikedProfiles)
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "failed to load liked profiles")
	}
	return profiles, nil
}

func (s *SessionService) load(ctx context.Context, id string) (*domain.Session, error) {
	sess, err := s.manager.Load(ctx, id)
	if errors.Is(err, session.ErrSessionNotFound) {
		return nil, domainerrors.NotFound("session not found")
	}
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "failed to load session")
	}
	return sess, nil
}
