// Package di provides dependency injection configuration for the SensiFinder server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/sensifinder/sensifinder-server/internal/config"
	"github.com/sensifinder/sensifinder-server/internal/di/providers"
	"github.com/sensifinder/sensifinder-server/internal/logger"
	"github.com/sensifinder/sensifinder-server/internal/ratios"
	"github.com/sensifinder/sensifinder-server/internal/service"
	"github.com/sensifinder/sensifinder-server/internal/session"
	"github.com/sensifinder/sensifinder-server/internal/validation"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideSlogLogger)
	do.Provide(injector, providers.ProvideValidator)

	// Storage layer
	do.Provide(injector, providers.ProvideStore)
	do.Provide(injector, providers.ProvideTrendingCache)
	do.Provide(injector, providers.ProvideDeviceIndex)
	do.Provide(injector, providers.ProvideSessionStorage)
	do.Provide(injector, providers.ProvideSessionManager)

	// Conversion ratios
	do.Provide(injector, providers.ProvideRatioSource)
	do.Provide(injector, providers.ProvideRatioWatcher)

	// Business services
	do.Provide(injector, providers.ProvideConverterService)
	do.Provide(injector, providers.ProvideProfileService)
	do.Provide(injector, providers.ProvideSessionService)

	// Workers
	do.Provide(injector, providers.ProvideSessionCleanupJob)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and returns handles for lifecycle management.
// This triggers lazy initialization of all core services.
func Bootstrap(injector *do.RootScope) error {
	if _, err := do.Invoke[*config.Config](injector); err != nil {
		return err
	}
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[*validation.Validator](injector)

	// Storage failures are reported instead of panicking so main can exit cleanly.
	if _, err := do.Invoke[*providers.StoreHandle](injector); err != nil {
		return err
	}
	_ = do.MustInvoke[*providers.CacheHandle](injector)
	if _, err := do.Invoke[*providers.DeviceIndexHandle](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.SessionStorageHandle](injector); err != nil {
		return err
	}
	_ = do.MustInvoke[*session.Manager](injector)

	if _, err := do.Invoke[*ratios.Source](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.RatioWatcherHandle](injector); err != nil {
		return err
	}

	// Business services
	_ = do.MustInvoke[*service.ConverterService](injector)
	_ = do.MustInvoke[*service.ProfileService](injector)
	_ = do.MustInvoke[*service.SessionService](injector)

	// Workers
	_ = do.MustInvoke[*providers.SessionCleanupJob](injector)

	// Server
	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)

	providers.TriggerDeviceReindexIfNeeded(injector)

	return nil
}
