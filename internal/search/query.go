package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
)

// Search limits.
const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// Hit is a single search match, best first.
type Hit struct {
	ID    string  `json:"id"`
	Score float64 `json:"score"`
}

// Search returns the ids of recipes matching text, ordered by relevance.
// A limit outside (0, MaxLimit] is clamped.
func (s *Index) Search(ctx context.Context, text string, limit int) ([]Hit, error) {
	switch {
	case limit <= 0:
		limit = DefaultLimit
	case limit > MaxLimit:
		limit = MaxLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	req := bleve.NewSearchRequestOptions(buildSearchQuery(text), limit, 0, false)

	res, err := s.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}

	hits := make([]Hit, 0, len(res.Hits))
	for _, h := range res.Hits {
		hits = append(hits, Hit{ID: h.ID, Score: h.Score})
	}
	return hits, nil
}

// buildSearchQuery ORs field matches so a hit in any field counts, with the
// name weighted highest. A fuzzy and a prefix clause on the name tolerate
// typos and partially typed words.
func buildSearchQuery(text string) query.Query {
	folded := Fold(strings.TrimSpace(text))

	nameMatch := bleve.NewMatchQuery(folded)
	nameMatch.SetField("name")
	nameMatch.SetBoost(3.0)

	ingredientsMatch := bleve.NewMatchQuery(folded)
	ingredientsMatch.SetField("ingredients")
	ingredientsMatch.SetBoost(1.5)

	instructionsMatch := bleve.NewMatchQuery(folded)
	instructionsMatch.SetField("instructions")

	fuzzy := bleve.NewFuzzyQuery(folded)
	fuzzy.SetFuzziness(1)
	fuzzy.SetField("name")
	fuzzy.SetBoost(0.8)

	queries := []query.Query{nameMatch, ingredientsMatch, instructionsMatch, fuzzy}

	if len(folded) >= 2 {
		prefix := bleve.NewPrefixQuery(folded)
		prefix.SetField("name")
		prefix.SetBoost(0.5)
		queries = append(queries, prefix)
	}

	return bleve.NewDisjunctionQuery(queries...)
}
