// Package store defines the persistence contract for sensitivity profiles.
package store

import (
	"context"

	"github.com/sensifinder/sensifinder-server/internal/domain"
	"github.com/sensifinder/sensifinder-server/internal/sensitivity"
)

// Store persists community profiles. Implementations must be safe for
// concurrent use.
type Store interface {
	// CreateProfile inserts p. The caller assigns ID and CreatedAt.
	// Returns ErrAlreadyExists when the ID is taken.
	CreateProfile(ctx context.Context, p *domain.SensitivityProfile) error

	// GetProfile returns ErrProfileNotFound when id is unknown.
	GetProfile(ctx context.Context, id string) (*domain.SensitivityProfile, error)

	// ListProfiles returns every profile, or every profile for game when it
	// is non-nil, in insertion order.
	ListProfiles(ctx context.Context, game *sensitivity.Game) ([]domain.SensitivityProfile, error)

	// GetProfilesByIDs returns the profiles for ids in the given order.
	// Unknown IDs are skipped.
	GetProfilesByIDs(ctx context.Context, ids []string) ([]domain.SensitivityProfile, error)

	// IncrementUpvotes adds one upvote and returns the new count.
	IncrementUpvotes(ctx context.Context, id string) (int, error)

	// ListDeviceNames returns the distinct device names, sorted.
	ListDeviceNames(ctx context.Context) ([]string, error)

	// CountProfiles returns the number of stored profiles.
	CountProfiles(ctx context.Context) (int, error)

	Ping(ctx context.Context) error
	Close() error
}
