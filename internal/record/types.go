// Package record defines the domain types of the proposal content store: the
// authoritative SourceRecord, the pending-write Draft, the denormalized
// IndexedDocument projected into the search engine, and the enum allow-lists
// for the classification fields.
package record

import "time"

// SourceRecord is the authoritative proposal record held by the
// source-of-truth store. A record is published iff PublishedAt is non-nil;
// no other signal may be used to decide indexing eligibility.
type SourceRecord struct {
	ID         int64  `json:"id"`
	DocumentID string `json:"documentId"`

	// SFNumber is the external business key used to query the enrichment
	// service.
	SFNumber string `json:"sfNumber"`
	UniqueID string `json:"uniqueId"`

	Name                string `json:"name"`
	ClientName          string `json:"clientName"`
	ClientContact       string `json:"clientContact"`
	BuyingCenterContact string `json:"buyingCenterContact"`

	Description Blocks `json:"description,omitempty"`

	Author      string `json:"author"`
	SMEs        string `json:"smes"`
	Competitors string `json:"competitors"`

	// SubmissionDate is a normalized calendar date (YYYY-MM-DD) or empty.
	SubmissionDate string `json:"submissionDate"`

	// Classification fields, each constrained to a fixed allow-list.
	Confidentiality string `json:"confidentiality"`
	Industry        string `json:"industry"`
	SubIndustry     string `json:"subIndustry"`
	Service         string `json:"service"`
	ServiceLine     string `json:"serviceLine"`
	Region          string `json:"region"`
	Market          string `json:"market"`
	DocumentType    string `json:"documentType"`
	Outcome         string `json:"outcome"`
	DealSize        string `json:"dealSize"`
	EngagementType  string `json:"engagementType"`
	DeliveryModel   string `json:"deliveryModel"`
	Practice        string `json:"practice"`
	Sector          string `json:"sector"`
	Stage           string `json:"stage"`

	// ManualOverride suppresses write-time enrichment for this record.
	ManualOverride bool   `json:"manualOverride"`
	Locale         string `json:"locale"`

	PublishedAt *time.Time `json:"publishedAt"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`

	Attachments []Attachment `json:"attachments,omitempty"`
}

// Published reports whether the record is currently published.
func (r *SourceRecord) Published() bool {
	return r.PublishedAt != nil
}

// Attachment is a file attached to a record. Name, AlternativeText, and
// Caption contribute to the indexed attachment text.
type Attachment struct {
	Name            string `json:"name"`
	AlternativeText string `json:"alternativeText"`
	Caption         string `json:"caption"`
	URL             string `json:"url"`
	Size            int64  `json:"size"`
	MimeType        string `json:"mime"`
}
