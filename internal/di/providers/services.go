package providers

import (
	"github.com/samber/do/v2"

	"github.com/sensifinder/sensifinder-server/internal/logger"
	"github.com/sensifinder/sensifinder-server/internal/ratios"
	"github.com/sensifinder/sensifinder-server/internal/service"
	"github.com/sensifinder/sensifinder-server/internal/session"
	"github.com/sensifinder/sensifinder-server/internal/validation"
)

// ProvideConverterService provides the sensitivity converter.
func ProvideConverterService(i do.Injector) (*service.ConverterService, error) {
	source := do.MustInvoke[*ratios.Source](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewConverterService(source, storeHandle.Store, log.Logger), nil
}

// ProvideProfileService provides the profile service.
func ProvideProfileService(i do.Injector) (*service.ProfileService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	cacheHandle := do.MustInvoke[*CacheHandle](i)
	indexHandle := do.MustInvoke[*DeviceIndexHandle](i)
	sessions := do.MustInvoke[*session.Manager](i)
	validator := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewProfileService(
		storeHandle.Store,
		cacheHandle.TrendingCache,
		indexHandle.DeviceIndex,
		sessions,
		validator,
		log.Logger,
	), nil
}

// ProvideSessionService provides the session service.
func ProvideSessionService(i do.Injector) (*service.SessionService, error) {
	sessions := do.MustInvoke[*session.Manager](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	validator := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewSessionService(sessions, storeHandle.Store, validator, log.Logger), nil
}
