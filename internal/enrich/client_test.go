package enrich

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/proposalhub/search-sync/pkg/config"
	apperrors "github.com/proposalhub/search-sync/pkg/errors"
)

func newTestClient(baseURL string) *Client {
	return NewClient(config.EnrichmentConfig{
		BaseURL: baseURL,
		Token:   "test-token",
		Timeout: 2 * time.Second,
	})
}

func TestFetchSuccess(t *testing.T) {
	var gotPath, gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true,"data":{"clientName":"Acme","mysteryField":1}}`))
	}))
	defer server.Close()

	payload, err := newTestClient(server.URL).Fetch(context.Background(), "SF-1001")
	if err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}
	if gotPath != "/api/salesforce/document/SF-1001" {
		t.Errorf("request path = %q", gotPath)
	}
	if gotAuth != "Bearer test-token" {
		t.Errorf("authorization header = %q", gotAuth)
	}
	if v, ok := payload.Get("clientName"); !ok || v != "Acme" {
		t.Errorf("clientName = %v (present=%v)", v, ok)
	}
	if _, ok := payload.Extra["mysteryField"]; !ok {
		t.Error("unknown field not kept in Extra")
	}
}

func TestFetchServiceReportedFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":false}`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).Fetch(context.Background(), "SF-1001")
	if !errors.Is(err, apperrors.ErrEnrichmentFailed) {
		t.Errorf("expected ErrEnrichmentFailed, got %v", err)
	}
}

func TestFetchNonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).Fetch(context.Background(), "SF-1001")
	if !errors.Is(err, apperrors.ErrEnrichmentFailed) {
		t.Errorf("expected ErrEnrichmentFailed, got %v", err)
	}
}

func TestFetchMalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{not json`))
	}))
	defer server.Close()

	if _, err := newTestClient(server.URL).Fetch(context.Background(), "SF-1001"); err == nil {
		t.Error("expected decode error")
	}
}

func TestFetchContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if _, err := newTestClient(server.URL).Fetch(ctx, "SF-1001"); err == nil {
		t.Error("expected timeout error")
	}
}

func TestFetchEmptySFNumber(t *testing.T) {
	_, err := newTestClient("http://unused").Fetch(context.Background(), "")
	if !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}
