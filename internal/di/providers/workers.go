package providers

import (
	"context"
	"time"

	"github.com/samber/do/v2"

	"github.com/sensifinder/sensifinder-server/internal/config"
	"github.com/sensifinder/sensifinder-server/internal/logger"
	"github.com/sensifinder/sensifinder-server/internal/ratios"
	"github.com/sensifinder/sensifinder-server/internal/sensitivity"
	"github.com/sensifinder/sensifinder-server/internal/session"
)

// sessionGCInterval is how often badger reclaims space from expired sessions.
const sessionGCInterval = 15 * time.Minute

// SessionStorageHandle wraps the badger session storage with shutdown capability.
type SessionStorageHandle struct {
	*session.BadgerStorage
}

// Shutdown implements do.Shutdownable.
func (h *SessionStorageHandle) Shutdown() error {
	return h.Close()
}

// ProvideSessionStorage provides the persistent session storage.
func ProvideSessionStorage(i do.Injector) (*SessionStorageHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	storage, err := session.OpenBadger(cfg.SessionsPath(), log.Component("sessions"))
	if err != nil {
		return nil, err
	}

	log.Info("Session storage opened", "path", cfg.SessionsPath())

	return &SessionStorageHandle{BadgerStorage: storage}, nil
}

// ProvideSessionManager provides the session manager.
func ProvideSessionManager(i do.Injector) (*session.Manager, error) {
	storage := do.MustInvoke[*SessionStorageHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return session.NewManager(storage.BadgerStorage, log.Component("sessions")), nil
}

// SessionCleanupJob runs periodic value log GC on the session storage.
type SessionCleanupJob struct {
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (j *SessionCleanupJob) Shutdown() error {
	j.cancel()
	return nil
}

// ProvideSessionCleanupJob provides the periodic session cleanup job.
func ProvideSessionCleanupJob(i do.Injector) (*SessionCleanupJob, error) {
	storage := do.MustInvoke[*SessionStorageHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		ticker := time.NewTicker(sessionGCInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				storage.RunGC()
			case <-ctx.Done():
				return
			}
		}
	}()

	log.Info("Session cleanup job started", "interval", sessionGCInterval)

	return &SessionCleanupJob{cancel: cancel}, nil
}

// ProvideRatioSource provides the live conversion ratio table. Without a
// configured path the built-in table is used.
func ProvideRatioSource(i do.Injector) (*ratios.Source, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if cfg.Ratios.Path == "" {
		table := sensitivity.DefaultTable()
		log.Info("Using built-in ratio table", "pairs", len(table.Pairs()))
		return ratios.NewSource(table), nil
	}

	table, err := ratios.LoadFile(cfg.Ratios.Path)
	if err != nil {
		return nil, err
	}
	log.Info("Loaded ratio table", "path", cfg.Ratios.Path, "pairs", len(table.Pairs()))

	return ratios.NewSource(table), nil
}

// RatioWatcherHandle stops the ratio file watcher on shutdown.
type RatioWatcherHandle struct {
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (h *RatioWatcherHandle) Shutdown() error {
	if h.cancel != nil {
		h.cancel()
	}
	return nil
}

// ProvideRatioWatcher provides the hot reload watcher for the ratio file.
func ProvideRatioWatcher(i do.Injector) (*RatioWatcherHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	source := do.MustInvoke[*ratios.Source](i)

	if cfg.Ratios.Path == "" || !cfg.Ratios.Watch {
		return &RatioWatcherHandle{}, nil
	}

	w, err := ratios.NewWatcher(source, cfg.Ratios.Path, log.Component("ratios"))
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	go w.Run(ctx)

	log.Info("Watching ratio table", "path", cfg.Ratios.Path)

	return &RatioWatcherHandle{cancel: cancel}, nil
}
