package service

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sensifinder/sensifinder-server/internal/domain"
	"github.com/sensifinder/sensifinder-server/internal/ratios"
	"github.com/sensifinder/sensifinder-server/internal/search"
	"github.com/sensifinder/sensifinder-server/internal/sensitivity"
	"github.com/sensifinder/sensifinder-server/internal/session"
	"github.com/sensifinder/sensifinder-server/internal/store/sqlstore"
	"github.com/sensifinder/sensifinder-server/internal/validation"
)

// memCache is an in-process TrendingCache that counts its traffic.
type memCache struct {
	mu          sync.Mutex
	gen         uint64
	entries     map[string][]string
	hits        int
	invalidated int
}

func (c *memCache) Generation(context.Context) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen, nil
}

func newMemCache() *memCache {
	return &memCache{entries: map[string][]string{}}
}

func (c *memCache) Get(_ context.Context, key string) ([]string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	ids, ok := c.entries[key]
	if ok {
		c.hits++
	}
	return ids, ok
}

func (c *memCache) Set(_ context.Context, key string, ids []string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = ids
	return nil
}

func (c *memCache) Invalidate(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	clear(c.entries)
	c.invalidated++
	return nil
}

type testEnv struct {
	store     *sqlstore.Store
	cache     *memCache
	devices   *search.DeviceIndex
	sessions  *session.Manager
	source    *ratios.Source
	profiles  *ProfileService
	converter *ConverterService
	session   *SessionService
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	ctx := context.Background()
	dir := t.TempDir()
	logger := slog.New(slog.DiscardHandler)

	st, err := sqlstore.OpenSQLite(ctx, filepath.Join(dir, "test.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	idx, err := search.NewDeviceIndex(search.Options{Path: filepath.Join(dir, "devices.bleve"), Logger: logger})
	require.NoError(t, err)
	t.Cleanup(func() { _ = idx.Close() })

	env := &testEnv{
		store:    st,
		cache:    newMemCache(),
		devices:  idx,
		sessions: session.NewManager(session.NewMemoryStorage(), logger),
		source:   ratios.NewSource(sensitivity.DefaultTable()),
	}
	v := validation.New()
	env.profiles = NewProfileService(st, env.cache, idx, env.sessions, v, logger)
	env.converter = NewConverterService(env.source, st, logger)
	env.session = NewSessionService(env.sessions, st, v, logger)
	return env
}

// seed stores a profile directly, bypassing the service.
func (e *testEnv) seed(t *testing.T, id string, game sensitivity.Game, device string, upvotes int) *domain.SensitivityProfile {
	t.Helper()
	p := &domain.SensitivityProfile{
		ID:         id,
		Game:       game,
		DeviceName: device,
		ShareCode:  "code-" + id,
		Camera:     sensitivity.Uniform(100),
		ADS:        sensitivity.Uniform(100),
		Upvotes:    upvotes,
		CreatedAt:  time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC),
	}
	require.NoError(t, e.store.CreateProfile(context.Background(), p))
	return p
}

func intPtr(v int) *int { return &v }
