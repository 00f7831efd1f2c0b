package record

import "time"

// OptionalTime distinguishes "this write sets the field (possibly to null)"
// from "this write does not touch the field". Publish and unpublish are
// expressed as updates whose PublishedAt is Set.
type OptionalTime struct {
	Set   bool
	Value *time.Time
}

// SetTo returns an OptionalTime that assigns the given value.
func SetTo(t *time.Time) OptionalTime {
	return OptionalTime{Set: true, Value: t}
}

// Draft is a pending create or update of a SourceRecord, mutated by pre-save
// lifecycle hooks before it is persisted. String fields use the empty string
// for "not part of this write"; the publication timestamp carries an explicit
// set flag so a publish-only update is unambiguous.
type Draft struct {
	DocumentID string

	SFNumber string
	UniqueID string

	Name                string
	ClientName          string
	ClientContact       string
	BuyingCenterContact string

	Description Blocks

	Author      string
	SMEs        string
	Competitors string

	SubmissionDate string

	Confidentiality string
	Industry        string
	SubIndustry     string
	Service         string
	ServiceLine     string
	Region          string
	Market          string
	DocumentType    string
	Outcome         string
	DealSize        string
	EngagementType  string
	DeliveryModel   string
	Practice        string
	Sector          string
	Stage           string

	ManualOverride bool
	Locale         string

	PublishedAt OptionalTime

	Attachments []Attachment
}

// SetsPublishedAt reports whether this draft is a publish or unpublish write.
// Such writes must not trigger enrichment.
func (d *Draft) SetsPublishedAt() bool {
	return d.PublishedAt.Set
}
