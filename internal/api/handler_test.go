package api

import (
	"net/http/httptest"
	"reflect"
	"testing"
)

func TestParseSearchParams(t *testing.T) {
	r := httptest.NewRequest("GET",
		"/api/v1/search?q=cloud+migration&limit=50&offset=100"+
			"&filter.industry=Insurance&filter.region=EMEA"+
			"&facets=filters.industry,filters.outcome&highlight=compositeText&sort=submissionDate:desc", nil)

	params, err := parseSearchParams(r)
	if err != nil {
		t.Fatalf("parseSearchParams() error: %v", err)
	}
	if params.Query != "cloud migration" {
		t.Errorf("Query = %q", params.Query)
	}
	if params.Limit != 50 || params.Offset != 100 {
		t.Errorf("pagination = %d/%d", params.Limit, params.Offset)
	}
	wantFilters := map[string]string{"industry": "Insurance", "region": "EMEA"}
	if !reflect.DeepEqual(params.Filters, wantFilters) {
		t.Errorf("Filters = %v, want %v", params.Filters, wantFilters)
	}
	if !reflect.DeepEqual(params.Facets, []string{"filters.industry", "filters.outcome"}) {
		t.Errorf("Facets = %v", params.Facets)
	}
	if !reflect.DeepEqual(params.Sort, []string{"submissionDate:desc"}) {
		t.Errorf("Sort = %v", params.Sort)
	}
}

func TestParseSearchParamsRejectsBadPagination(t *testing.T) {
	for _, query := range []string{"limit=zero", "limit=-1", "offset=x", "cropLength=0"} {
		r := httptest.NewRequest("GET", "/api/v1/search?q=a&"+query, nil)
		if _, err := parseSearchParams(r); err == nil {
			t.Errorf("expected error for %q", query)
		}
	}
}

func TestParseSearchParamsEmptyFilterNameIgnored(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/v1/search?q=a&filter.=x", nil)
	params, err := parseSearchParams(r)
	if err != nil {
		t.Fatal(err)
	}
	if len(params.Filters) != 0 {
		t.Errorf("Filters = %v, want empty", params.Filters)
	}
}
