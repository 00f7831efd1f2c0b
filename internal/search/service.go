// Package search serves advanced full-text queries over the proposal index,
// fronted by a Redis response cache. Query semantics (typo tolerance,
// relevance, highlighting, faceting) belong to the engine; this package only
// shapes requests and caches responses.
package search

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/proposalhub/search-sync/internal/engine"
	"github.com/proposalhub/search-sync/pkg/metrics"
)

// Searcher is the slice of the index manager the search service queries.
type Searcher interface {
	Search(ctx context.Context, q engine.Query) (*engine.Result, error)
}

// Params is a normalized advanced-search request. Filters map filterable
// facet names (industry, region, documentType, ...) to exact-match values.
type Params struct {
	Query      string            `json:"query"`
	Limit      int64             `json:"limit"`
	Offset     int64             `json:"offset"`
	Filters    map[string]string `json:"filters,omitempty"`
	Facets     []string          `json:"facets,omitempty"`
	Highlight  []string          `json:"highlight,omitempty"`
	Crop       []string          `json:"crop,omitempty"`
	CropLength int64             `json:"cropLength,omitempty"`
	Sort       []string          `json:"sort,omitempty"`
}

// Response is the engine result plus derived pagination.
type Response struct {
	Hits               []any             `json:"hits"`
	EstimatedTotalHits int64             `json:"estimatedTotalHits"`
	ProcessingTimeMs   int64             `json:"processingTimeMs"`
	FacetDistribution  any               `json:"facetDistribution,omitempty"`
	Query              string            `json:"query"`
	Limit              int64             `json:"limit"`
	Offset             int64             `json:"offset"`
	Page               int64             `json:"page"`
	Cached             bool              `json:"cached"`
	Filters            map[string]string `json:"filters,omitempty"`
}

const (
	defaultLimit = 20
	maxLimit     = 100
)

// Service executes searches through the index manager with response caching.
type Service struct {
	searcher Searcher
	cache    *QueryCache
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

// NewService creates a search Service. cache and m are optional.
func NewService(searcher Searcher, cache *QueryCache, m *metrics.Metrics) *Service {
	return &Service{
		searcher: searcher,
		cache:    cache,
		metrics:  m,
		logger:   slog.Default().With("component", "search-service"),
	}
}

// Search normalizes the params, consults the cache, and falls through to the
// engine on a miss.
func (s *Service) Search(ctx context.Context, p Params) (*Response, error) {
	p = normalize(p)

	if s.cache == nil {
		resp, err := s.execute(ctx, p)
		s.countSearch("uncached", err)
		return resp, err
	}

	resp, hit, err := s.cache.GetOrCompute(ctx, p, func() (*Response, error) {
		return s.execute(ctx, p)
	})
	if err != nil {
		s.countSearch("error", err)
		return nil, err
	}
	if hit {
		s.countCache(true)
		s.countSearch("hit", nil)
		cached := *resp
		cached.Cached = true
		return &cached, nil
	}
	s.countCache(false)
	s.countSearch("miss", nil)
	return resp, nil
}

// execute runs the query against the engine.
func (s *Service) execute(ctx context.Context, p Params) (*Response, error) {
	q := engine.Query{
		Query:                 p.Query,
		Limit:                 p.Limit,
		Offset:                p.Offset,
		Filter:                BuildFilter(p.Filters),
		Sort:                  p.Sort,
		Facets:                p.Facets,
		AttributesToHighlight: p.Highlight,
		AttributesToCrop:      p.Crop,
		CropLength:            p.CropLength,
	}

	result, err := s.searcher.Search(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("executing search %q: %w", p.Query, err)
	}

	return &Response{
		Hits:               result.Hits,
		EstimatedTotalHits: result.EstimatedTotalHits,
		ProcessingTimeMs:   result.ProcessingTimeMs,
		FacetDistribution:  result.FacetDistribution,
		Query:              p.Query,
		Limit:              p.Limit,
		Offset:             p.Offset,
		Page:               p.Offset/p.Limit + 1,
		Filters:            p.Filters,
	}, nil
}

// BuildFilter renders the filter map as engine filter expressions, one
// equality per facet, in deterministic key order. Facet values live under the
// document's nested filters object.
func BuildFilter(filters map[string]string) []string {
	if len(filters) == 0 {
		return nil
	}
	keys := make([]string, 0, len(filters))
	for k := range filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	exprs := make([]string, 0, len(keys))
	for _, k := range keys {
		v := strings.ReplaceAll(filters[k], `"`, `\"`)
		exprs = append(exprs, fmt.Sprintf(`filters.%s = "%s"`, k, v))
	}
	return exprs
}

// normalize clamps pagination and trims the query.
func normalize(p Params) Params {
	p.Query = strings.TrimSpace(p.Query)
	if p.Limit <= 0 {
		p.Limit = defaultLimit
	}
	if p.Limit > maxLimit {
		p.Limit = maxLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

func (s *Service) countSearch(status string, err error) {
	if s.metrics == nil {
		return
	}
	if err != nil {
		status = "error"
	}
	s.metrics.SearchRequestsTotal.WithLabelValues(status).Inc()
}

func (s *Service) countCache(hit bool) {
	if s.metrics == nil {
		return
	}
	if hit {
		s.metrics.CacheHitsTotal.Inc()
	} else {
		s.metrics.CacheMissesTotal.Inc()
	}
}
