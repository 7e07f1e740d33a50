package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"path/filepath"
	"testing"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sensifinder/sensifinder-server/internal/domain"
	"github.com/sensifinder/sensifinder-server/internal/ratelimit"
	"github.com/sensifinder/sensifinder-server/internal/ratios"
	"github.com/sensifinder/sensifinder-server/internal/search"
	"github.com/sensifinder/sensifinder-server/internal/sensitivity"
	"github.com/sensifinder/sensifinder-server/internal/service"
	"github.com/sensifinder/sensifinder-server/internal/session"
	"github.com/sensifinder/sensifinder-server/internal/store/sqlstore"
	"github.com/sensifinder/sensifinder-server/internal/validation"
)

// testEnvelope is the success envelope with typed data.
type testEnvelope[T any] struct {
	Version int    `json:"v"`
	Success bool   `json:"success"`
	Data    T      `json:"data"`
	Error   string `json:"error"`
}

// testErrorEnvelope is the coded error envelope.
type testErrorEnvelope struct {
	Version int    `json:"v"`
	Success bool   `json:"success"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details"`
}

type testServer struct {
	*Server
	api   humatest.TestAPI
	store *sqlstore.Store
}

func setupTestServer(t *testing.T, opts Options) *testServer {
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

	v := validation.New()
	sessions := session.NewManager(session.NewMemoryStorage(), logger)
	services := &Services{
		Converter: service.NewConverterService(ratios.NewSource(sensitivity.DefaultTable()), st, logger),
		Profile:   service.NewProfileService(st, nil, idx, sessions, v, logger),
		Session:   service.NewSessionService(sessions, st, v, logger),
	}
	opts.Devices = idx

	s := NewServer(st, services, opts, logger)
	return &testServer{
		Server: s,
		api:    humatest.Wrap(t, s.API()),
		store:  st,
	}
}

func decode[T any](t *testing.T, body []byte) testEnvelope[T] {
	t.Helper()
	var env testEnvelope[T]
	require.NoError(t, json.Unmarshal(body, &env), string(body))
	assert.Equal(t, EnvelopeVersion, env.Version)
	return env
}

func decodeError(t *testing.T, body []byte) testErrorEnvelope {
	t.Helper()
	var env testErrorEnvelope
	require.NoError(t, json.Unmarshal(body, &env), string(body))
	assert.Equal(t, EnvelopeVersion, env.Version)
	assert.False(t, env.Success)
	return env
}

func (ts *testServer) createSession(t *testing.T, username string) string {
	t.Helper()
	resp := ts.api.Post("/api/v1/sessions", map[string]any{"username": username})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	return decode[domain.Session](t, resp.Body.Bytes()).Data.ID
}

func (ts *testServer) createProfile(t *testing.T, body map[string]any) domain.SensitivityProfile {
	t.Helper()
	resp := ts.api.Post("/api/v1/profiles", body)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	return decode[domain.SensitivityProfile](t, resp.Body.Bytes()).Data
}

func TestHealthCheck(t *testing.T) {
	ts := setupTestServer(t, Options{})

	resp := ts.api.Get("/health")
	require.Equal(t, http.StatusOK, resp.Code)

	env := decode[HealthResponse](t, resp.Body.Bytes())
	assert.True(t, env.Success)
	assert.Equal(t, "healthy", env.Data.Status)
	assert.Equal(t, "healthy", env.Data.Components["database"].Status)
	assert.Equal(t, "cache disabled", env.Data.Components["cache"].Message)
	assert.Equal(t, "0 devices indexed", env.Data.Components["search"].Message)
}

func TestCORSPreflight(t *testing.T) {
	ts := setupTestServer(t, Options{CORSOrigins: []string{"https://sensifinder.app"}})

	rec := ts.api.Do(http.MethodOptions, "/api/v1/profiles",
		"Origin: https://sensifinder.app",
		"Access-Control-Request-Method: POST",
	)
	assert.Equal(t, "https://sensifinder.app", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRateLimitedWrites(t *testing.T) {
	limiter := ratelimit.New(0.001, 1)
	t.Cleanup(limiter.Stop)
	ts := setupTestServer(t, Options{WriteLimiter: limiter})

	ts.createSession(t, "sniper")

	resp := ts.api.Post("/api/v1/sessions", map[string]any{"username": "rusher"})
	require.Equal(t, http.StatusTooManyRequests, resp.Code, resp.Body.String())
	assert.Equal(t, "RATE_LIMITED", decodeError(t, resp.Body.Bytes()).Code)

	// Reads are never limited.
	assert.Equal(t, http.StatusOK, ts.api.Get("/api/v1/games").Code)

	// Another client has its own budget.
	resp = ts.api.Post("/api/v1/sessions", "X-Forwarded-For: 203.0.113.9", map[string]any{"username": "rusher"})
	assert.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
}
