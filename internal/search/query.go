package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
)

// DefaultSuggestLimit caps suggestions when the caller passes no limit.
const DefaultSuggestLimit = 10

// minFuzzyTerm is the shortest term that also gets an edit-distance match.
// Shorter terms would match almost every model number.
const minFuzzyTerm = 3

// Suggest returns device names matching every term of q as a prefix or
// within one edit, best match first. A blank q returns nothing.
func (d *DeviceIndex) Suggest(ctx context.Context, q string, limit int) ([]string, error) {
	bq := buildSuggestQuery(q)
	if bq == nil {
		return []string{}, nil
	}
	if limit <= 0 {
		limit = DefaultSuggestLimit
	}

	req := bleve.NewSearchRequestOptions(bq, limit, 0, false)
	req.SortBy([]string{"-_score", "_id"})

	d.mu.RLock()
	if d.index == nil {
		d.mu.RUnlock()
		return nil, ErrUnavailable
	}
	res, err := d.index.SearchInContext(ctx, req)
	d.mu.RUnlock()
	if err != nil {
		return nil, fmt.Errorf("device search: %w", err)
	}

	names := make([]string, 0, len(res.Hits))
	for _, hit := range res.Hits {
		names = append(names, hit.ID)
	}
	return names, nil
}

func buildSuggestQuery(q string) query.Query {
	terms := strings.Fields(strings.ToLower(q))
	if len(terms) == 0 {
		return nil
	}

	perTerm := make([]query.Query, 0, len(terms))
	for _, term := range terms {
		prefix := bleve.NewPrefixQuery(term)
		prefix.SetField("name")
		prefix.SetBoost(2.0)

		alternatives := []query.Query{prefix}
		if len([]rune(term)) >= minFuzzyTerm {
			fuzzy := bleve.NewFuzzyQuery(term)
			fuzzy.SetField("name")
			fuzzy.SetFuzziness(1)
			alternatives = append(alternatives, fuzzy)
		}
		perTerm = append(perTerm, bleve.NewDisjunctionQuery(alternatives...))
	}

	if len(perTerm) == 1 {
		return perTerm[0]
	}
	return bleve.NewConjunctionQuery(perTerm...)
}
