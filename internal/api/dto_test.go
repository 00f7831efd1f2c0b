package api

import (
	"encoding/json"
	"errors"
	"testing"

	apperrors "github.com/proposalhub/search-sync/pkg/errors"
)

func decodeDraftRequest(t *testing.T, body string) *draftRequest {
	t.Helper()
	var req draftRequest
	if err := json.Unmarshal([]byte(body), &req); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return &req
}

func TestDraftRequestPublishedAtPresence(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantSet bool
		wantNil bool
	}{
		{"absent", `{"name":"x"}`, false, true},
		{"explicit null", `{"name":"x","publishedAt":null}`, true, true},
		{"timestamp", `{"publishedAt":"2024-06-01T12:00:00Z"}`, true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := decodeDraftRequest(t, tt.body)
			draft, err := req.toDraft()
			if err != nil {
				t.Fatalf("toDraft() error: %v", err)
			}
			if draft.SetsPublishedAt() != tt.wantSet {
				t.Errorf("SetsPublishedAt() = %v, want %v", draft.SetsPublishedAt(), tt.wantSet)
			}
			if tt.wantSet && (draft.PublishedAt.Value == nil) != tt.wantNil {
				t.Errorf("PublishedAt.Value nil = %v, want %v", draft.PublishedAt.Value == nil, tt.wantNil)
			}
		})
	}
}

func TestDraftRequestDescriptionShapes(t *testing.T) {
	t.Run("string body wrapped", func(t *testing.T) {
		req := decodeDraftRequest(t, `{"description":"plain words"}`)
		draft, err := req.toDraft()
		if err != nil {
			t.Fatalf("toDraft() error: %v", err)
		}
		if got := draft.Description.PlainText(); got != "plain words" {
			t.Errorf("PlainText() = %q", got)
		}
	})

	t.Run("block array preserved", func(t *testing.T) {
		req := decodeDraftRequest(t, `{"description":[{"type":"paragraph","children":[{"type":"text","text":"rich"}]}]}`)
		draft, err := req.toDraft()
		if err != nil {
			t.Fatalf("toDraft() error: %v", err)
		}
		if got := draft.Description.PlainText(); got != "rich" {
			t.Errorf("PlainText() = %q", got)
		}
	})

	t.Run("null ignored", func(t *testing.T) {
		req := decodeDraftRequest(t, `{"description":null}`)
		draft, err := req.toDraft()
		if err != nil {
			t.Fatalf("toDraft() error: %v", err)
		}
		if !draft.Description.IsEmpty() {
			t.Errorf("null description produced blocks: %+v", draft.Description)
		}
	})

	t.Run("bad block shape rejected", func(t *testing.T) {
		req := decodeDraftRequest(t, `{"description":42}`)
		if _, err := req.toDraft(); !errors.Is(err, apperrors.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})
}

func TestValidateEnums(t *testing.T) {
	t.Run("valid values pass", func(t *testing.T) {
		req := decodeDraftRequest(t, `{"industry":"Insurance","outcome":"Won"}`)
		draft, err := req.toDraft()
		if err != nil {
			t.Fatal(err)
		}
		if err := validateEnums(draft); err != nil {
			t.Errorf("validateEnums() = %v", err)
		}
	})

	t.Run("empty values pass", func(t *testing.T) {
		req := decodeDraftRequest(t, `{"name":"no classification"}`)
		draft, err := req.toDraft()
		if err != nil {
			t.Fatal(err)
		}
		if err := validateEnums(draft); err != nil {
			t.Errorf("validateEnums() = %v", err)
		}
	})

	t.Run("bad value rejected", func(t *testing.T) {
		req := decodeDraftRequest(t, `{"industry":"NotARealIndustry"}`)
		draft, err := req.toDraft()
		if err != nil {
			t.Fatal(err)
		}
		if err := validateEnums(draft); !errors.Is(err, apperrors.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})
}

func TestParsePublishBody(t *testing.T) {
	t.Run("empty body uses now", func(t *testing.T) {
		at, err := parsePublishBody(nil)
		if err != nil {
			t.Fatal(err)
		}
		if at.IsZero() {
			t.Error("expected non-zero timestamp")
		}
	})

	t.Run("explicit timestamp", func(t *testing.T) {
		at, err := parsePublishBody([]byte(`{"publishedAt":"2024-06-01T12:00:00Z"}`))
		if err != nil {
			t.Fatal(err)
		}
		if got := at.Format("2006-01-02"); got != "2024-06-01" {
			t.Errorf("publishedAt = %s", got)
		}
	})

	t.Run("bad body rejected", func(t *testing.T) {
		if _, err := parsePublishBody([]byte(`{`)); !errors.Is(err, apperrors.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})
}
