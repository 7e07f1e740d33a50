package providers

import (
	"context"
	"errors"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/sensifinder/sensifinder-server/internal/api"
	"github.com/sensifinder/sensifinder-server/internal/config"
	"github.com/sensifinder/sensifinder-server/internal/logger"
	"github.com/sensifinder/sensifinder-server/internal/ratelimit"
	"github.com/sensifinder/sensifinder-server/internal/service"
)

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
	limiter *ratelimit.KeyedRateLimiter
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := h.Server.Shutdown(ctx)
	if h.limiter != nil {
		h.limiter.Stop()
	}
	return err
}

// ProvideHTTPServer provides the HTTP server.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	cacheHandle := do.MustInvoke[*CacheHandle](i)
	indexHandle := do.MustInvoke[*DeviceIndexHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	services := &api.Services{
		Converter: do.MustInvoke[*service.ConverterService](i),
		Profile:   do.MustInvoke[*service.ProfileService](i),
		Session:   do.MustInvoke[*service.SessionService](i),
	}

	opts := api.Options{
		CORSOrigins: cfg.Server.CORSOrigins,
		Devices:     indexHandle.DeviceIndex,
	}
	// A typed nil would read as a configured cache in the health check.
	if rc := cacheHandle.Redis(); rc != nil {
		opts.Cache = rc
	}

	var limiter *ratelimit.KeyedRateLimiter
	if cfg.RateLimit.Enabled {
		limiter = ratelimit.New(cfg.RateLimit.Rate, cfg.RateLimit.Burst)
		opts.WriteLimiter = limiter
		log.Info("Write rate limiting enabled",
			"rate", cfg.RateLimit.Rate,
			"burst", cfg.RateLimit.Burst,
		)
	}

	handler := api.NewServer(storeHandle.Store, services, opts, log.Logger)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start in background
	go func() {
		log.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server error", "error", err)
		}
	}()

	log.Info("Server running", "addr", srv.Addr)

	return &HTTPServerHandle{Server: srv, limiter: limiter}, nil
}
