// Package cache holds the trending-order cache that sits in front of the ranker.
//
// Only ranked profile IDs are cached. Callers always re-read the records from
// the store, so a hit can at worst serve a stale order, never stale values.
//
// Keys carry a generation that Invalidate advances. A reader takes the
// generation before ranking and writes under it, so a ranking computed from
// data read before an invalidation lands on a key no later reader asks for.
package cache

import (
	"context"
	"strconv"

	"github.com/sensifinder/sensifinder-server/internal/sensitivity"
)

// TrendingCache stores ranked profile ID lists by key.
// Implementations treat backend failures as misses.
type TrendingCache interface {
	// Generation reports the current key generation.
	Generation(ctx context.Context) (uint64, error)
	Get(ctx context.Context, key string) ([]string, bool)
	Set(ctx context.Context, key string, ids []string) error
	// Invalidate advances the generation and drops every cached ranking.
	Invalidate(ctx context.Context) error
}

// KeyPrefix namespaces trending entries.
const KeyPrefix = "trending:"

// GenerationKey holds the counter. It sits outside KeyPrefix so that
// clearing entries never resets it.
const GenerationKey = "trending-generation"

// TrendingKey returns the key for a game filter at gen; nil means all games.
func TrendingKey(gen uint64, game *sensitivity.Game) string {
	name := "all"
	if game != nil {
		name = string(*game)
	}
	return KeyPrefix + strconv.FormatUint(gen, 10) + ":" + name
}

// NoopCache never stores anything.
type NoopCache struct{}

// NewNoopCache returns a cache that always misses.
func NewNoopCache() *NoopCache { return &NoopCache{} }

func (*NoopCache) Generation(context.Context) (uint64, error) { return 0, nil }

func (*NoopCache) Get(context.Context, string) ([]string, bool) { return nil, false }

func (*NoopCache) Set(context.Context, string, []string) error { return nil }

func (*NoopCache) Invalidate(context.Context) error { return nil }
