package api

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/proposalhub/search-sync/internal/record"
	apperrors "github.com/proposalhub/search-sync/pkg/errors"
)

// draftRequest is the JSON body of record create and update calls. It is a
// partial document: absent fields are not part of the write. publishedAt
// needs explicit presence tracking because publish and unpublish are both
// expressed by setting it (to a timestamp or to null).
type draftRequest struct {
	DocumentID string `json:"documentId"`

	SFNumber string `json:"sfNumber"`
	UniqueID string `json:"uniqueId"`

	Name                string `json:"name"`
	ClientName          string `json:"clientName"`
	ClientContact       string `json:"clientContact"`
	BuyingCenterContact string `json:"buyingCenterContact"`

	Description json.RawMessage `json:"description,omitempty"`

	Author      string `json:"author"`
	SMEs        string `json:"smes"`
	Competitors string `json:"competitors"`

	SubmissionDate string `json:"submissionDate"`

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

	ManualOverride bool   `json:"manualOverride"`
	Locale         string `json:"locale"`

	PublishedAt *time.Time `json:"publishedAt"`

	Attachments []record.Attachment `json:"attachments"`

	publishedAtSet bool
}

// UnmarshalJSON decodes the body and records whether the publishedAt key was
// present at all, regardless of its value.
func (r *draftRequest) UnmarshalJSON(data []byte) error {
	type plain draftRequest
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*r = draftRequest(p)

	var keys map[string]json.RawMessage
	if err := json.Unmarshal(data, &keys); err != nil {
		return err
	}
	_, r.publishedAtSet = keys["publishedAt"]
	return nil
}

// toDraft converts the request body into a store draft.
func (r *draftRequest) toDraft() (*record.Draft, error) {
	d := &record.Draft{
		DocumentID:          r.DocumentID,
		SFNumber:            r.SFNumber,
		UniqueID:            r.UniqueID,
		Name:                r.Name,
		ClientName:          r.ClientName,
		ClientContact:       r.ClientContact,
		BuyingCenterContact: r.BuyingCenterContact,
		Author:              r.Author,
		SMEs:                r.SMEs,
		Competitors:         r.Competitors,
		SubmissionDate:      r.SubmissionDate,
		Confidentiality:     r.Confidentiality,
		Industry:            r.Industry,
		SubIndustry:         r.SubIndustry,
		Service:             r.Service,
		ServiceLine:         r.ServiceLine,
		Region:              r.Region,
		Market:              r.Market,
		DocumentType:        r.DocumentType,
		Outcome:             r.Outcome,
		DealSize:            r.DealSize,
		EngagementType:      r.EngagementType,
		DeliveryModel:       r.DeliveryModel,
		Practice:            r.Practice,
		Sector:              r.Sector,
		Stage:               r.Stage,
		ManualOverride:      r.ManualOverride,
		Locale:              r.Locale,
		Attachments:         r.Attachments,
	}
	if r.publishedAtSet {
		d.PublishedAt = record.SetTo(r.PublishedAt)
	}

	blocks, err := decodeDescription(r.Description)
	if err != nil {
		return nil, err
	}
	d.Description = blocks
	return d, nil
}

// decodeDescription accepts either a plain string (wrapped into a single
// paragraph) or a rich-text block array.
func decodeDescription(raw json.RawMessage) (record.Blocks, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, apperrors.Newf(apperrors.ErrInvalidInput, 400, "invalid description: %v", err)
		}
		return record.BlocksFromString(s), nil
	}
	var blocks record.Blocks
	if err := json.Unmarshal(raw, &blocks); err != nil {
		return nil, apperrors.Newf(apperrors.ErrInvalidInput, 400, "invalid description blocks: %v", err)
	}
	return blocks, nil
}

// validateEnums rejects drafts that carry out-of-vocabulary values for
// enum-constrained fields. API writes are strict where enrichment is lenient:
// a caller sending a bad value gets a 400 instead of a silent drop.
func validateEnums(d *record.Draft) error {
	checks := map[string]string{
		"confidentiality": d.Confidentiality,
		"industry":        d.Industry,
		"subIndustry":     d.SubIndustry,
		"service":         d.Service,
		"serviceLine":     d.ServiceLine,
		"region":          d.Region,
		"market":          d.Market,
		"documentType":    d.DocumentType,
		"outcome":         d.Outcome,
		"dealSize":        d.DealSize,
		"engagementType":  d.EngagementType,
		"deliveryModel":   d.DeliveryModel,
		"practice":        d.Practice,
		"sector":          d.Sector,
		"stage":           d.Stage,
	}
	for field, value := range checks {
		if value == "" {
			continue
		}
		if !record.ValidEnumValue(field, value) {
			return apperrors.Newf(apperrors.ErrInvalidInput, 400,
				"invalid value %q for field %s", value, field)
		}
	}
	return nil
}

// publishRequest optionally carries an explicit publication timestamp; absent,
// the server uses the current time.
type publishRequest struct {
	PublishedAt *time.Time `json:"publishedAt"`
}

func parsePublishBody(data []byte) (time.Time, error) {
	if len(data) == 0 {
		return time.Now().UTC(), nil
	}
	var req publishRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid publish body: %v", apperrors.ErrInvalidInput, err)
	}
	if req.PublishedAt == nil {
		return time.Now().UTC(), nil
	}
	return req.PublishedAt.UTC(), nil
}
