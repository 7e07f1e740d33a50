// Package ratios serves the active conversion ratio table.
//
// The built-in table is sensitivity.DefaultTable. Operators may point the
// server at an override file, which is watched and hot-reloaded; a reload
// that fails validation leaves the previous table in place.
package ratios

import (
	"fmt"
	"os"
	"sync/atomic"

	"github.com/sensifinder/sensifinder-server/internal/sensitivity"
)

// Parse decodes a TOML ratio document in the same format as the built-in
// table.
func Parse(data []byte) (*sensitivity.Table, error) {
	return sensitivity.ParseTable(data)
}

// LoadFile reads and parses a ratio table file.
func LoadFile(path string) (*sensitivity.Table, error) {
	data, err := os.ReadFile(path) //#nosec G304 -- operator supplied path
	if err != nil {
		return nil, fmt.Errorf("read ratio table: %w", err)
	}
	t, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// Source holds the active table. Readers take a snapshot per call, so a
// conversion never mixes ratios from two versions.
type Source struct {
	current atomic.Pointer[sensitivity.Table]
	version atomic.Uint64
}

// NewSource returns a Source serving t.
func NewSource(t *sensitivity.Table) *Source {
	s := &Source{}
	s.Store(t)
	return s
}

// Table returns the active table.
func (s *Source) Table() *sensitivity.Table {
	return s.current.Load()
}

// Store swaps in t. A nil t is ignored.
func (s *Source) Store(t *sensitivity.Table) {
	if t == nil {
		return
	}
	s.current.Store(t)
	s.version.Add(1)
}

// Version counts successful stores, starting at 1.
func (s *Source) Version() uint64 {
	return s.version.Load()
}

// Reload parses path and swaps it in. On error the active table is kept.
func (s *Source) Reload(path string) error {
	t, err := LoadFile(path)
	if err != nil {
		return err
	}
	s.Store(t)
	return nil
}
