package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/sensifinder/sensifinder-server/internal/config"
	"github.com/sensifinder/sensifinder-server/internal/logger"
	"github.com/sensifinder/sensifinder-server/internal/search"
)

// DeviceIndexHandle wraps the device index with shutdown capability.
type DeviceIndexHandle struct {
	*search.DeviceIndex
}

// Shutdown implements do.Shutdownable.
func (h *DeviceIndexHandle) Shutdown() error {
	return h.Close()
}

// ProvideDeviceIndex provides the Bleve device name index.
func ProvideDeviceIndex(i do.Injector) (*DeviceIndexHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	index, err := search.NewDeviceIndex(search.Options{
		Path:   cfg.SearchIndexPath(),
		Logger: log.Component("search"),
	})
	if err != nil {
		return nil, err
	}

	docCount, _ := index.Count()
	log.Info("Device index initialized", "devices", docCount)

	return &DeviceIndexHandle{DeviceIndex: index}, nil
}

// TriggerDeviceReindexIfNeeded repopulates an empty index from stored profiles.
// Should be called after the store and index are both wired.
func TriggerDeviceReindexIfNeeded(i do.Injector) {
	indexHandle := do.MustInvoke[*DeviceIndexHandle](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	docCount, _ := indexHandle.Count()
	if docCount > 0 {
		return
	}

	names, err := storeHandle.ListDeviceNames(context.Background())
	if err != nil || len(names) == 0 {
		return
	}

	log.Info("Device index is empty but profiles exist, triggering reindex",
		"device_count", len(names),
	)

	go func() {
		if err := indexHandle.Rebuild(names); err != nil {
			log.Error("Device reindex failed", "error", err)
			return
		}
		count, _ := indexHandle.Count()
		log.Info("Device reindex completed", "devices", count)
	}()
}
