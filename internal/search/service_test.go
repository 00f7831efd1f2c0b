package search

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/proposalhub/search-sync/internal/engine"
)

// fakeSearcher records the last query and returns a canned result.
type fakeSearcher struct {
	lastQuery engine.Query
	result    *engine.Result
	err       error
	calls     int
}

func (f *fakeSearcher) Search(ctx context.Context, q engine.Query) (*engine.Result, error) {
	f.calls++
	f.lastQuery = q
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func TestBuildFilter(t *testing.T) {
	tests := []struct {
		name    string
		filters map[string]string
		want    []string
	}{
		{"nil map", nil, nil},
		{"empty map", map[string]string{}, nil},
		{
			"single filter",
			map[string]string{"industry": "Insurance"},
			[]string{`filters.industry = "Insurance"`},
		},
		{
			"deterministic key order",
			map[string]string{"region": "EMEA", "industry": "Insurance", "outcome": "Won"},
			[]string{
				`filters.industry = "Insurance"`,
				`filters.outcome = "Won"`,
				`filters.region = "EMEA"`,
			},
		},
		{
			"quotes escaped",
			map[string]string{"dealSize": `he said "big"`},
			[]string{`filters.dealSize = "he said \"big\""`},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BuildFilter(tt.filters); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("BuildFilter() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSearchPagination(t *testing.T) {
	tests := []struct {
		name          string
		limit, offset int64
		wantLimit     int64
		wantPage      int64
	}{
		{"defaults", 0, 0, 20, 1},
		{"first page", 20, 0, 20, 1},
		{"third page", 20, 40, 20, 3},
		{"limit clamped", 500, 0, 100, 1},
		{"negative offset reset", 10, -5, 10, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			searcher := &fakeSearcher{result: &engine.Result{Hits: []any{}}}
			svc := NewService(searcher, nil, nil)

			resp, err := svc.Search(context.Background(), Params{
				Query:  "cloud",
				Limit:  tt.limit,
				Offset: tt.offset,
			})
			if err != nil {
				t.Fatalf("Search() error: %v", err)
			}
			if resp.Limit != tt.wantLimit {
				t.Errorf("Limit = %d, want %d", resp.Limit, tt.wantLimit)
			}
			if resp.Page != tt.wantPage {
				t.Errorf("Page = %d, want %d", resp.Page, tt.wantPage)
			}
			if searcher.lastQuery.Limit != tt.wantLimit {
				t.Errorf("engine query limit = %d, want %d", searcher.lastQuery.Limit, tt.wantLimit)
			}
		})
	}
}

func TestSearchPassesOptionsThrough(t *testing.T) {
	searcher := &fakeSearcher{result: &engine.Result{
		Hits:               []any{map[string]any{"documentId": "a"}},
		EstimatedTotalHits: 37,
		ProcessingTimeMs:   4,
	}}
	svc := NewService(searcher, nil, nil)

	resp, err := svc.Search(context.Background(), Params{
		Query:     "  migration  ",
		Filters:   map[string]string{"region": "APAC"},
		Facets:    []string{"filters.industry"},
		Highlight: []string{"compositeText"},
		Sort:      []string{"submissionDate:desc"},
	})
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}

	q := searcher.lastQuery
	if q.Query != "migration" {
		t.Errorf("query not trimmed: %q", q.Query)
	}
	if len(q.Filter) != 1 || q.Filter[0] != `filters.region = "APAC"` {
		t.Errorf("filter = %v", q.Filter)
	}
	if len(q.Facets) != 1 || len(q.AttributesToHighlight) != 1 || len(q.Sort) != 1 {
		t.Errorf("options dropped: %+v", q)
	}
	if resp.EstimatedTotalHits != 37 {
		t.Errorf("EstimatedTotalHits = %d", resp.EstimatedTotalHits)
	}
	if resp.Cached {
		t.Error("uncached search marked cached")
	}
}

func TestSearchEngineErrorPropagates(t *testing.T) {
	searcher := &fakeSearcher{err: errors.New("engine down")}
	svc := NewService(searcher, nil, nil)

	if _, err := svc.Search(context.Background(), Params{Query: "x"}); err == nil {
		t.Error("expected error from engine failure")
	}
}
