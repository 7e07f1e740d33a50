// Package search maintains a Bleve index of device names for autocomplete.
//
// The index only drives suggestions. Profile filtering never goes through it.
package search

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/blevesearch/bleve/v2"
)

// DeviceIndex wraps a Bleve index keyed by device name.
//
// All public methods are safe for concurrent use. The mutex keeps readers
// out while Rebuild swaps the underlying index.
type DeviceIndex struct {
	index  bleve.Index
	path   string
	logger *slog.Logger
	mu     sync.RWMutex
}

// Options configures the device index.
type Options struct {
	Path   string       // Index directory, e.g. {data}/devices.bleve
	Logger *slog.Logger // Defaults to a discard logger
}

// ErrUnavailable is returned after a Rebuild that lost the old index and
// could not open the new one. A later successful Rebuild restores service.
var ErrUnavailable = errors.New("device index unavailable")

// mappingVersion changes whenever buildIndexMapping does, forcing a rebuild.
const mappingVersion = "1"

// NewDeviceIndex opens the index at opts.Path or creates it. An index that
// is unreadable or was built with an older mapping is removed and recreated
// empty; callers repopulate it when Count reports zero.
func NewDeviceIndex(opts Options) (*DeviceIndex, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if opts.Path == "" {
		return nil, fmt.Errorf("device index: empty path")
	}

	versionPath := opts.Path + ".version"

	var index bleve.Index
	needsRebuild := false

	if _, statErr := os.Stat(opts.Path); statErr == nil {
		existing, readErr := os.ReadFile(versionPath)
		switch {
		case readErr != nil:
			logger.Info("device index has no version file, rebuilding", "new_version", mappingVersion)
			needsRebuild = true
		case string(existing) != mappingVersion:
			logger.Info("device index mapping changed, rebuilding",
				"old_version", string(existing),
				"new_version", mappingVersion,
			)
			needsRebuild = true
		default:
			var err error
			if index, err = bleve.Open(opts.Path); err != nil {
				logger.Warn("failed to open device index, recreating", "path", opts.Path, "error", err)
				needsRebuild = true
			}
		}
	}

	if needsRebuild {
		if err := os.RemoveAll(opts.Path); err != nil {
			return nil, fmt.Errorf("remove old index: %w", err)
		}
	}

	if index == nil {
		var err error
		if index, err = newIndex(opts.Path); err != nil {
			return nil, err
		}
		if err := os.WriteFile(versionPath, []byte(mappingVersion), 0o644); err != nil {
			logger.Warn("failed to write device index version file", "error", err)
		}
		logger.Info("created device index", "path", opts.Path, "mapping_version", mappingVersion)
	} else {
		logger.Info("opened device index", "path", opts.Path)
	}

	return &DeviceIndex{index: index, path: opts.Path, logger: logger}, nil
}

// newIndex is swapped in tests to fail index creation.
var newIndex = createIndex

func createIndex(path string) (bleve.Index, error) {
	m, err := buildIndexMapping()
	if err != nil {
		return nil, fmt.Errorf("build mapping: %w", err)
	}
	index, err := bleve.New(path, m)
	if err != nil {
		return nil, fmt.Errorf("create index: %w", err)
	}
	return index, nil
}

// Close closes the index and releases resources.
func (d *DeviceIndex) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.index == nil {
		return nil
	}
	err := d.index.Close()
	d.index = nil
	return err
}

// Add indexes device names. Names already present are overwritten in place.
func (d *DeviceIndex) Add(names ...string) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.index == nil {
		return ErrUnavailable
	}
	return addNames(d.index, names)
}

func addNames(index bleve.Index, names []string) error {
	const batchSize = 500

	for start := 0; start < len(names); start += batchSize {
		end := min(start+batchSize, len(names))

		batch := index.NewBatch()
		for _, name := range names[start:end] {
			if name == "" {
				continue
			}
			if err := batch.Index(name, map[string]any{"name": name}); err != nil {
				return fmt.Errorf("batch index %q: %w", name, err)
			}
		}
		if err := index.Batch(batch); err != nil {
			return fmt.Errorf("commit batch %d-%d: %w", start, end, err)
		}
	}
	return nil
}

// Count returns the number of indexed device names.
func (d *DeviceIndex) Count() (uint64, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.index == nil {
		return 0, ErrUnavailable
	}
	return d.index.DocCount()
}

// Rebuild replaces the index with one holding exactly names.
// It blocks all other operations while running.
//
// The replacement is built beside the live index first, so a failure while
// building leaves the old index open and serving.
func (d *DeviceIndex) Rebuild(names []string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	staged := d.path + ".staging"
	if err := os.RemoveAll(staged); err != nil {
		return fmt.Errorf("remove stale staging index: %w", err)
	}
	next, err := newIndex(staged)
	if err != nil {
		return err
	}
	if err := addNames(next, names); err != nil {
		_ = next.Close()
		_ = os.RemoveAll(staged)
		return err
	}
	if err := next.Close(); err != nil {
		_ = os.RemoveAll(staged)
		return fmt.Errorf("close staged index: %w", err)
	}

	if d.index != nil {
		if err := d.index.Close(); err != nil {
			d.logger.Warn("failed to close old device index", "error", err)
		}
		d.index = nil
	}
	if err := os.RemoveAll(d.path); err != nil {
		return fmt.Errorf("remove index: %w", err)
	}
	if err := os.Rename(staged, d.path); err != nil {
		return fmt.Errorf("move staged index: %w", err)
	}
	index, err := bleve.Open(d.path)
	if err != nil {
		return fmt.Errorf("open rebuilt index: %w", err)
	}
	d.index = index

	d.logger.Info("rebuilt device index", "path", d.path, "devices", len(names))
	return nil
}
