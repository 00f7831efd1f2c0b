package enrich

import (
	"testing"

	"github.com/proposalhub/search-sync/internal/record"
)

func payloadOf(fields map[string]any) *Payload {
	return NewPayload("SF-1", fields)
}

func TestPopulateNeverOverwrites(t *testing.T) {
	draft := &record.Draft{
		ClientName:  "Existing Client",
		Industry:    "Insurance",
		Author:      "Original Author",
		Description: record.BlocksFromString("original description"),
	}
	Populate(draft, payloadOf(map[string]any{
		"clientName":  "Payload Client",
		"industry":    "Manufacturing",
		"author":      []any{"Someone", "Else"},
		"description": "payload description",
	}))

	if draft.ClientName != "Existing Client" {
		t.Errorf("ClientName overwritten: %q", draft.ClientName)
	}
	if draft.Industry != "Insurance" {
		t.Errorf("Industry overwritten: %q", draft.Industry)
	}
	if draft.Author != "Original Author" {
		t.Errorf("Author overwritten: %q", draft.Author)
	}
	if got := draft.Description.PlainText(); got != "original description" {
		t.Errorf("Description overwritten: %q", got)
	}
}

func TestPopulateFillsEmptyFields(t *testing.T) {
	draft := &record.Draft{}
	Populate(draft, payloadOf(map[string]any{
		"clientName":          "Acme Insurance",
		"uniqueId":            "PROP-7",
		"buyingCenterContact": "Sam Porter",
		"industry":            "Insurance",
		"outcome":             "Won",
	}))

	if draft.ClientName != "Acme Insurance" {
		t.Errorf("ClientName = %q", draft.ClientName)
	}
	if draft.UniqueID != "PROP-7" {
		t.Errorf("UniqueID = %q", draft.UniqueID)
	}
	if draft.BuyingCenterContact != "Sam Porter" {
		t.Errorf("BuyingCenterContact = %q", draft.BuyingCenterContact)
	}
	if draft.Industry != "Insurance" {
		t.Errorf("Industry = %q", draft.Industry)
	}
	if draft.Outcome != "Won" {
		t.Errorf("Outcome = %q", draft.Outcome)
	}
}

func TestPopulateDropsInvalidEnumValues(t *testing.T) {
	draft := &record.Draft{}
	Populate(draft, payloadOf(map[string]any{
		"industry": "NotARealIndustry",
		"outcome":  "Won",
		"region":   "Atlantis",
	}))

	if draft.Industry != "" {
		t.Errorf("invalid industry copied: %q", draft.Industry)
	}
	if draft.Region != "" {
		t.Errorf("invalid region copied: %q", draft.Region)
	}
	if draft.Outcome != "Won" {
		t.Errorf("valid outcome dropped: %q", draft.Outcome)
	}
}

func TestPopulatePeopleLists(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  string
	}{
		{"array joined", []any{"Priya Nair", "Chris Moss"}, "Priya Nair, Chris Moss"},
		{"string kept", "Dana Fox", "Dana Fox"},
		{"string slice joined", []string{"A", "B"}, "A, B"},
		{"empty array ignored", []any{}, ""},
		{"non-string entries skipped", []any{"Kept", 42}, "Kept"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			draft := &record.Draft{}
			Populate(draft, payloadOf(map[string]any{"smes": tt.value}))
			if draft.SMEs != tt.want {
				t.Errorf("SMEs = %q, want %q", draft.SMEs, tt.want)
			}
		})
	}
}

func TestPopulateDescription(t *testing.T) {
	t.Run("string wrapped in paragraph", func(t *testing.T) {
		draft := &record.Draft{}
		Populate(draft, payloadOf(map[string]any{"description": "plain text body"}))
		if len(draft.Description) != 1 || draft.Description[0].Type != "paragraph" {
			t.Fatalf("expected one paragraph block, got %+v", draft.Description)
		}
		if got := draft.Description.PlainText(); got != "plain text body" {
			t.Errorf("PlainText() = %q", got)
		}
	})

	t.Run("structured blocks pass through", func(t *testing.T) {
		draft := &record.Draft{}
		Populate(draft, payloadOf(map[string]any{
			"description": []any{
				map[string]any{
					"type": "paragraph",
					"children": []any{
						map[string]any{"type": "text", "text": "structured"},
					},
				},
			},
		}))
		if got := draft.Description.PlainText(); got != "structured" {
			t.Errorf("PlainText() = %q", got)
		}
	})

	t.Run("malformed blocks dropped", func(t *testing.T) {
		draft := &record.Draft{}
		Populate(draft, payloadOf(map[string]any{
			"description": []any{"not a node"},
		}))
		if !draft.Description.IsEmpty() {
			t.Errorf("malformed description copied: %+v", draft.Description)
		}
	})
}

func TestPopulateSubmissionDate(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  string
	}{
		{"RFC3339", "2024-03-15T10:00:00Z", "2024-03-15"},
		{"date only", "2024-03-15", "2024-03-15"},
		{"US slashes", "03/15/2024", "2024-03-15"},
		{"long form", "March 15, 2024", "2024-03-15"},
		{"unparseable dropped", "not-a-date", ""},
		{"non-string dropped", 20240315, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			draft := &record.Draft{}
			Populate(draft, payloadOf(map[string]any{"submissionDate": tt.value}))
			if draft.SubmissionDate != tt.want {
				t.Errorf("SubmissionDate = %q, want %q", draft.SubmissionDate, tt.want)
			}
		})
	}
}

func TestPopulateNilInputs(t *testing.T) {
	Populate(nil, payloadOf(nil))
	draft := &record.Draft{Name: "unchanged"}
	Populate(draft, nil)
	if draft.Name != "unchanged" {
		t.Errorf("nil payload mutated draft")
	}
}

func TestNewPayloadSplitsUnknownFields(t *testing.T) {
	p := NewPayload("SF-9", map[string]any{
		"clientName":   "Acme",
		"totallyNovel": "value",
		"nilField":     nil,
	})
	if _, ok := p.Fields["clientName"]; !ok {
		t.Error("recognized field missing from Fields")
	}
	if _, ok := p.Extra["totallyNovel"]; !ok {
		t.Error("unknown field missing from Extra")
	}
	if _, ok := p.Get("nilField"); ok {
		t.Error("nil value should not be gettable")
	}
}
