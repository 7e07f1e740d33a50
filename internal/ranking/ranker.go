// Package ranking filters and orders community sensitivity profiles.
package ranking

import (
	"cmp"
	"slices"
	"strings"

	"golang.org/x/text/cases"

	"github.com/sensifinder/sensifinder-server/internal/domain"
	"github.com/sensifinder/sensifinder-server/internal/sensitivity"
)

// Options narrows a ranking.
type Options struct {
	// Game keeps only profiles for this game when set.
	Game *sensitivity.Game
	// Query keeps profiles whose device name or share code contains it,
	// ignoring case. Surrounding whitespace is ignored; blank means no filter.
	Query string
}

// Rank returns the profiles matching opts, most upvoted first.
// Profiles with equal upvotes keep their input order. The input slice is
// never modified and the result is never nil.
func Rank(profiles []domain.SensitivityProfile, opts Options) []domain.SensitivityProfile {
	query := strings.TrimSpace(opts.Query)

	// cases.Caser is stateful, one per call.
	fold := cases.Fold()
	if query != "" {
		query = fold.String(query)
	}

	out := make([]domain.SensitivityProfile, 0, len(profiles))
	for _, p := range profiles {
		if opts.Game != nil && p.Game != *opts.Game {
			continue
		}
		if query != "" && !matches(fold, p, query) {
			continue
		}
		out = append(out, p)
	}

	slices.SortStableFunc(out, func(a, b domain.SensitivityProfile) int {
		return cmp.Compare(b.Upvotes, a.Upvotes)
	})
	return out
}

func matches(fold cases.Caser, p domain.SensitivityProfile, query string) bool {
	if strings.Contains(fold.String(p.DeviceName), query) {
		return true
	}
	return strings.Contains(fold.String(p.ShareCode), query)
}

// Top returns at most n leading profiles of ranked. n <= 0 returns all.
func Top(ranked []domain.SensitivityProfile, n int) []domain.SensitivityProfile {
	if n <= 0 || n >= len(ranked) {
		return ranked
	}
	return ranked[:n]
}
