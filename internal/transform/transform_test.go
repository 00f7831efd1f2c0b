package transform

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/proposalhub/search-sync/internal/record"
)

func sampleRecord() *record.SourceRecord {
	published := time.Date(2024, 6, 1, 12, 30, 0, 0, time.UTC)
	return &record.SourceRecord{
		ID:                  42,
		DocumentID:          "abc123def456abc123def456",
		SFNumber:            "SF-1001",
		UniqueID:            "PROP-2024-0042",
		Name:                "Cloud Migration Proposal",
		ClientName:          "Acme Insurance",
		ClientContact:       "Jordan Lee",
		BuyingCenterContact: "Sam Porter",
		Description:         record.BlocksFromString("Hello world"),
		Author:              "Priya Nair",
		SMEs:                "Chris Moss, Dana Fox",
		Competitors:         "Rival Corp",
		SubmissionDate:      "2024-05-15",
		Confidentiality:     "Internal",
		Industry:            "Insurance",
		SubIndustry:         "Property & Casualty",
		Service:             "Consulting",
		ServiceLine:         "Cloud & Infrastructure",
		Region:              "EMEA",
		Market:              "International",
		DocumentType:        "Proposal",
		Outcome:             "Won",
		DealSize:            "$1M - $5M",
		EngagementType:      "Fixed Price",
		DeliveryModel:       "Hybrid",
		Practice:            "Financial Services",
		Sector:              "Commercial",
		Stage:               "Closed",
		Locale:              "en",
		PublishedAt:         &published,
		Attachments: []record.Attachment{
			{Name: "architecture.pdf", AlternativeText: "target architecture", Caption: "Figure 1"},
			{Name: "pricing.xlsx"},
		},
	}
}

func TestTransformKeyAndFields(t *testing.T) {
	r := sampleRecord()
	doc := Transform(r)

	if doc.DocumentID != r.DocumentID {
		t.Errorf("document keyed by %q, want %q", doc.DocumentID, r.DocumentID)
	}
	if doc.DescriptionText != "Hello world" {
		t.Errorf("DescriptionText = %q, want %q", doc.DescriptionText, "Hello world")
	}
	if doc.PublishedAt != "2024-06-01T12:30:00Z" {
		t.Errorf("PublishedAt = %q, want RFC3339 UTC", doc.PublishedAt)
	}
	if doc.AttachmentsText != "architecture.pdf target architecture Figure 1 pricing.xlsx" {
		t.Errorf("AttachmentsText = %q", doc.AttachmentsText)
	}

	wantFilters := record.DocumentFilters{
		Industry:        "Insurance",
		Service:         "Consulting",
		Region:          "EMEA",
		DocumentType:    "Proposal",
		Outcome:         "Won",
		Confidentiality: "Internal",
		DealSize:        "$1M - $5M",
		Practice:        "Financial Services",
		Sector:          "Commercial",
		Stage:           "Closed",
	}
	if doc.Filters != wantFilters {
		t.Errorf("Filters = %+v, want %+v", doc.Filters, wantFilters)
	}
}

func TestTransformCompositeText(t *testing.T) {
	doc := Transform(sampleRecord())

	if doc.CompositeText != strings.ToLower(doc.CompositeText) {
		t.Error("composite text must be lowercase")
	}
	for _, want := range []string{"sf-1001", "hello world", "acme insurance", "rival corp", "architecture.pdf"} {
		if !strings.Contains(doc.CompositeText, want) {
			t.Errorf("composite text missing %q: %q", want, doc.CompositeText)
		}
	}

	// Fixed field order: SF number first, description before competitors.
	sfIdx := strings.Index(doc.CompositeText, "sf-1001")
	descIdx := strings.Index(doc.CompositeText, "hello world")
	compIdx := strings.Index(doc.CompositeText, "rival corp")
	if !(sfIdx < descIdx && descIdx < compIdx) {
		t.Errorf("composite text field order wrong: %q", doc.CompositeText)
	}
}

func TestTransformDeterministic(t *testing.T) {
	r := sampleRecord()
	first := Transform(r)
	second := Transform(r)
	if !reflect.DeepEqual(first, second) {
		t.Error("transforming the same record twice produced different documents")
	}
}

func TestTransformZeroRecord(t *testing.T) {
	doc := Transform(&record.SourceRecord{DocumentID: "empty000000000000000000"})
	if doc.DocumentID != "empty000000000000000000" {
		t.Errorf("DocumentID = %q", doc.DocumentID)
	}
	if doc.PublishedAt != "" {
		t.Errorf("unpublished record must have empty publishedAt, got %q", doc.PublishedAt)
	}
	if doc.CompositeText != "" {
		t.Errorf("empty record must yield empty composite text, got %q", doc.CompositeText)
	}
}

func TestAttachmentsText(t *testing.T) {
	tests := []struct {
		name        string
		attachments []record.Attachment
		want        string
	}{
		{"nil", nil, ""},
		{
			"skips empty parts",
			[]record.Attachment{{Name: "a.pdf", Caption: "cover"}},
			"a.pdf cover",
		},
		{
			"multiple attachments",
			[]record.Attachment{{Name: "a.pdf"}, {Name: "b.docx", AlternativeText: "summary"}},
			"a.pdf b.docx summary",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AttachmentsText(tt.attachments); got != tt.want {
				t.Errorf("AttachmentsText() = %q, want %q", got, tt.want)
			}
		})
	}
}
