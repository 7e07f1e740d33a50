package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/text/cases"

	"github.com/sensifinder/sensifinder-server/internal/cache"
	"github.com/sensifinder/sensifinder-server/internal/domain"
	domainerrors "github.com/sensifinder/sensifinder-server/internal/errors"
	"github.com/sensifinder/sensifinder-server/internal/id"
	"github.com/sensifinder/sensifinder-server/internal/ranking"
	"github.com/sensifinder/sensifinder-server/internal/sensitivity"
	"github.com/sensifinder/sensifinder-server/internal/session"
	"github.com/sensifinder/sensifinder-server/internal/store"
	"github.com/sensifinder/sensifinder-server/internal/validation"
)

// DefaultListLimit caps ranked lists when the caller passes no limit.
const DefaultListLimit = 20

// MaxListLimit is the largest page a caller may request.
const MaxListLimit = 100

// DeviceIndex suggests device names as the user types.
type DeviceIndex interface {
	Add(names ...string) error
	Suggest(ctx context.Context, q string, limit int) ([]string, error)
}

// ScopeInput is a partially filled vector. Missing tiers default to
// sensitivity.DefaultValue.
type ScopeInput struct {
	NoScope *int `json:"no_scope,omitempty" validate:"omitempty,sensitivity"`
	RedDot  *int `json:"red_dot,omitempty" validate:"omitempty,sensitivity"`
	X2      *int `json:"2x,omitempty" validate:"omitempty,sensitivity"`
	X3      *int `json:"3x,omitempty" validate:"omitempty,sensitivity"`
	X4      *int `json:"4x,omitempty" validate:"omitempty,sensitivity"`
	X6      *int `json:"6x,omitempty" validate:"omitempty,sensitivity"`
	X8      *int `json:"8x,omitempty" validate:"omitempty,sensitivity"`
}

// Resolve fills in the defaults.
func (in ScopeInput) Resolve() sensitivity.ScopeSensitivity {
	or := func(v *int) int {
		if v == nil {
			return sensitivity.DefaultValue
		}
		return *v
	}
	return sensitivity.ScopeSensitivity{
		NoScope: or(in.NoScope),
		RedDot:  or(in.RedDot),
		X2:      or(in.X2),
		X3:      or(in.X3),
		X4:      or(in.X4),
		X6:      or(in.X6),
		X8:      or(in.X8),
	}
}

// CreateProfileRequest is an upload from the community form.
type CreateProfileRequest struct {
	Game        string      `json:"game_name" validate:"required,game"`
	DeviceName  string      `json:"device_name" validate:"required,min=2,max=100"`
	ShareCode   string      `json:"share_code,omitempty" validate:"omitempty,max=64,printascii"`
	Camera      ScopeInput  `json:"camera_sensitivity,omitempty"`
	ADS         ScopeInput  `json:"ads_sensitivity,omitempty"`
	Gyro        *ScopeInput `json:"gyro_sensitivity,omitempty"`
	GyroEnabled bool        `json:"is_gyro_enabled,omitempty"`
}

// ListProfilesRequest selects a ranked page of profiles.
type ListProfilesRequest struct {
	Game  string
	Query string
	Limit int
}

// ProfileService manages community sensitivity profiles.
type ProfileService struct {
	store     store.Store
	cache     cache.TrendingCache
	devices   DeviceIndex
	sessions  *session.Manager
	validator *validation.Validator
	logger    *slog.Logger
	now       func() time.Time
}

// NewProfileService creates a new profile service. A nil cache disables
// trending caching; a nil device index falls back to substring matching.
func NewProfileService(
	store store.Store,
	trending cache.TrendingCache,
	devices DeviceIndex,
	sessions *session.Manager,
	validator *validation.Validator,
	logger *slog.Logger,
) *ProfileService {
	if trending == nil {
		trending = cache.NewNoopCache()
	}
	return &ProfileService{
		store:     store,
		cache:     trending,
		devices:   devices,
		sessions:  sessions,
		validator: validator,
		logger:    logger,
		now:       time.Now,
	}
}

// CreateProfile validates and stores an upload.
func (s *ProfileService) CreateProfile(ctx context.Context, req CreateProfileRequest) (*domain.SensitivityProfile, error) {
	req.DeviceName = strings.TrimSpace(req.DeviceName)
	req.ShareCode = strings.TrimSpace(req.ShareCode)

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	profileID, err := id.Generate(id.PrefixProfile)
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "failed to generate profile ID")
	}

	p := &domain.SensitivityProfile{
		ID:          profileID,
		Game:        sensitivity.Game(req.Game),
		DeviceName:  req.DeviceName,
		ShareCode:   req.ShareCode,
		Camera:      req.Camera.Resolve(),
		ADS:         req.ADS.Resolve(),
		GyroEnabled: req.GyroEnabled,
		CreatedAt:   s.now().UTC(),
	}
	// Gyro values are only kept when gyro is on.
	if req.GyroEnabled {
		var gyro sensitivity.ScopeSensitivity
		if req.Gyro != nil {
			gyro = req.Gyro.Resolve()
		} else {
			gyro = sensitivity.Uniform(sensitivity.DefaultValue)
		}
		p.Gyro = &gyro
	}

	if err := s.store.CreateProfile(ctx, p); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, domainerrors.Conflict("profile already exists")
		}
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "failed to save profile")
	}

	if s.devices != nil {
		if err := s.devices.Add(p.DeviceName); err != nil {
			s.logger.Warn("failed to index device name",
				"device", p.DeviceName,
				"error", err,
			)
		}
	}
	s.invalidate(ctx)

	s.logger.Info("profile created",
		"profile_id", p.ID,
		"game", p.Game,
		"device", p.DeviceName,
	)
	return p, nil
}

// GetProfile returns one profile.
func (s *ProfileService) GetProfile(ctx context.Context, profileID string) (*domain.SensitivityProfile, error) {
	p, err := s.store.GetProfile(ctx, profileID)
	if errors.Is(err, store.ErrProfileNotFound) {
		return nil, domainerrors.NotFound("profile not found")
	}
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "failed to load profile")
	}
	return p, nil
}

// ListProfiles returns the ranked profiles for req.
//
// Unfiltered-by-query lists are the trending views; their order is cached
// by game and the records themselves are always read fresh.
func (s *ProfileService) ListProfiles(ctx context.Context, req ListProfilesRequest) ([]domain.SensitivityProfile, error) {
	var game *sensitivity.Game
	if name := strings.TrimSpace(req.Game); name != "" {
		g, err := sensitivity.ParseGame(name)
		if err != nil {
			return nil, domainerrors.ValidationWithDetails("invalid game filter",
				map[string]string{"game": err.Error()})
		}
		game = &g
	}
	limit := clampLimit(req.Limit)
	query := strings.TrimSpace(req.Query)
	trending := query == ""

	// The generation is read before the store so an Upvote landing between
	// the read and the write below retires this key.
	var key string
	if trending {
		gen, err := s.cache.Generation(ctx)
		if err != nil {
			s.logger.Debug("trending cache unavailable", "error", err)
			trending = false
		}
		key = cache.TrendingKey(gen, game)
	}

	if trending {
		if ids, ok := s.cache.Get(ctx, key); ok {
			if len(ids) > limit {
				ids = ids[:limit]
			}
			profiles, err := s.store.GetProfilesByIDs(ctx, ids)
			if err == nil {
				return profiles, nil
			}
			s.logger.Warn("cached trending lookup failed, ranking from store", "error", err)
		}
	}

	all, err := s.store.ListProfiles(ctx, game)
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "failed to list profiles")
	}
	ranked := ranking.Rank(all, ranking.Options{Game: game, Query: query})

	if trending {
		ids := make([]string, len(ranked))
		for i, p := range ranked {
			ids[i] = p.ID
		}
		if err := s.cache.Set(ctx, key, ids); err != nil {
			s.logger.Debug("trending cache write failed", "key", key, "error", err)
		}
	}

	return ranking.Top(ranked, limit), nil
}

// Upvote adds one vote from the session to the profile and returns the new
// total. A session can upvote each profile once.
func (s *ProfileService) Upvote(ctx context.Context, sessionID, profileID string) (int, error) {
	if strings.TrimSpace(sessionID) == "" {
		return 0, domainerrors.SessionRequired("a session is required to upvote")
	}

	// Claim the vote on the session first so concurrent requests from one
	// session cannot both count.
	claimed, err := s.sessions.RecordLike(ctx, sessionID, profileID)
	if errors.Is(err, session.ErrSessionNotFound) {
		return 0, domainerrors.SessionRequired("session not found or expired")
	}
	if err != nil {
		return 0, domainerrors.Wrap(err, domainerrors.CodeInternal, "failed to record upvote")
	}
	if !claimed {
		return 0, domainerrors.Conflict("profile already upvoted in this session")
	}

	upvotes, err := s.store.IncrementUpvotes(ctx, profileID)
	if err != nil {
		if ferr := s.sessions.ForgetLike(ctx, sessionID, profileID); ferr != nil {
			s.logger.Error("failed to roll back session like",
				"session_id", sessionID,
				"profile_id", profileID,
				"error", ferr,
			)
		}
		if errors.Is(err, store.ErrProfileNotFound) {
			return 0, domainerrors.NotFound("profile not found")
		}
		return 0, domainerrors.Wrap(err, domainerrors.CodeInternal, "failed to upvote profile")
	}

	s.invalidate(ctx)
	s.logger.Debug("profile upvoted", "profile_id", profileID, "upvotes", upvotes)
	return upvotes, nil
}

// SuggestDevices completes a partially typed device name. A blank q lists
// every known device.
func (s *ProfileService) SuggestDevices(ctx context.Context, q string, limit int) ([]string, error) {
	q = strings.TrimSpace(q)
	limit = clampLimit(limit)

	if q != "" && s.devices != nil {
		names, err := s.devices.Suggest(ctx, q, limit)
		if err == nil {
			return names, nil
		}
		s.logger.Warn("device index search failed, scanning store", "error", err)
	}

	names, err := s.store.ListDeviceNames(ctx)
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "failed to list devices")
	}

	if q != "" {
		fold := cases.Fold()
		needle := fold.String(q)
		matched := names[:0]
		for _, n := range names {
			if strings.Contains(fold.String(n), needle) {
				matched = append(matched, n)
			}
		}
		names = matched
	}
	if len(names) > limit {
		names = names[:limit]
	}
	return names, nil
}

func (s *ProfileService) invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warn("failed to invalidate trending cache", "error", err)
	}
}

func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultListLimit
	case limit > MaxListLimit:
		return MaxListLimit
	}
	return limit
}
