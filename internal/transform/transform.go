// Package transform projects a SourceRecord into the exact IndexedDocument
// shape submitted to the search engine. The transformation is pure,
// deterministic, and total: no output field is ever missing.
package transform

import (
	"strings"
	"time"

	"github.com/proposalhub/search-sync/internal/record"
)

// Transform builds the IndexedDocument for a record. The document is keyed by
// the record's DocumentID, not the internal numeric ID, so draft/published
// revisions of one logical document collide to a single index entry.
func Transform(r *record.SourceRecord) record.IndexedDocument {
	descText := r.Description.PlainText()
	attText := AttachmentsText(r.Attachments)

	doc := record.IndexedDocument{
		DocumentID: r.DocumentID,

		SFNumber: r.SFNumber,
		UniqueID: r.UniqueID,

		Name:                r.Name,
		ClientName:          r.ClientName,
		ClientContact:       r.ClientContact,
		BuyingCenterContact: r.BuyingCenterContact,

		DescriptionText: descText,
		AttachmentsText: attText,

		Author:      r.Author,
		SMEs:        r.SMEs,
		Competitors: r.Competitors,

		SubmissionDate: r.SubmissionDate,

		Confidentiality: r.Confidentiality,
		Industry:        r.Industry,
		SubIndustry:     r.SubIndustry,
		Service:         r.Service,
		ServiceLine:     r.ServiceLine,
		Region:          r.Region,
		Market:          r.Market,
		DocumentType:    r.DocumentType,
		Outcome:         r.Outcome,
		DealSize:        r.DealSize,
		EngagementType:  r.EngagementType,
		DeliveryModel:   r.DeliveryModel,
		Practice:        r.Practice,
		Sector:          r.Sector,
		Stage:           r.Stage,

		Locale: r.Locale,

		Filters: record.DocumentFilters{
			Industry:        r.Industry,
			Service:         r.Service,
			Region:          r.Region,
			DocumentType:    r.DocumentType,
			Outcome:         r.Outcome,
			Confidentiality: r.Confidentiality,
			DealSize:        r.DealSize,
			Practice:        r.Practice,
			Sector:          r.Sector,
			Stage:           r.Stage,
		},
	}

	if r.PublishedAt != nil {
		doc.PublishedAt = r.PublishedAt.UTC().Format(time.RFC3339)
	}

	doc.CompositeText = compositeText(&doc)
	return doc
}

// AttachmentsText flattens attachment metadata to plain text: per attachment,
// name, alternative text, and caption (skipping empty ones) joined by spaces,
// then attachments joined by spaces.
func AttachmentsText(attachments []record.Attachment) string {
	var parts []string
	for _, a := range attachments {
		for _, s := range []string{a.Name, a.AlternativeText, a.Caption} {
			if s != "" {
				parts = append(parts, s)
			}
		}
	}
	return strings.Join(parts, " ")
}

// compositeText builds the lowercase full-text field from a fixed ordered
// list of fields, skipping empty values.
func compositeText(doc *record.IndexedDocument) string {
	ordered := []string{
		doc.SFNumber,
		doc.UniqueID,
		doc.ClientName,
		doc.ClientContact,
		doc.BuyingCenterContact,
		doc.DescriptionText,
		doc.Confidentiality,
		doc.Industry,
		doc.Service,
		doc.Author,
		doc.SMEs,
		doc.Competitors,
		doc.AttachmentsText,
	}
	parts := make([]string, 0, len(ordered))
	for _, s := range ordered {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.ToLower(strings.Join(parts, " "))
}
