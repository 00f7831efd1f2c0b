package enrich

import (
	"strings"
	"time"

	"github.com/proposalhub/search-sync/internal/record"
)

// textFields maps recognized plain-text payload keys to their draft fields.
var textFields = map[string]func(*record.Draft) *string{
	"uniqueId":            func(d *record.Draft) *string { return &d.UniqueID },
	"name":                func(d *record.Draft) *string { return &d.Name },
	"clientName":          func(d *record.Draft) *string { return &d.ClientName },
	"clientContact":       func(d *record.Draft) *string { return &d.ClientContact },
	"buyingCenterContact": func(d *record.Draft) *string { return &d.BuyingCenterContact },
	"competitors":         func(d *record.Draft) *string { return &d.Competitors },
}

// enumFields maps enum-constrained payload keys to their draft fields. Values
// outside the allow-list are dropped, not copied.
var enumFields = map[string]func(*record.Draft) *string{
	"confidentiality": func(d *record.Draft) *string { return &d.Confidentiality },
	"industry":        func(d *record.Draft) *string { return &d.Industry },
	"subIndustry":     func(d *record.Draft) *string { return &d.SubIndustry },
	"service":         func(d *record.Draft) *string { return &d.Service },
	"serviceLine":     func(d *record.Draft) *string { return &d.ServiceLine },
	"region":          func(d *record.Draft) *string { return &d.Region },
	"market":          func(d *record.Draft) *string { return &d.Market },
	"documentType":    func(d *record.Draft) *string { return &d.DocumentType },
	"outcome":         func(d *record.Draft) *string { return &d.Outcome },
	"dealSize":        func(d *record.Draft) *string { return &d.DealSize },
	"engagementType":  func(d *record.Draft) *string { return &d.EngagementType },
	"deliveryModel":   func(d *record.Draft) *string { return &d.DeliveryModel },
	"practice":        func(d *record.Draft) *string { return &d.Practice },
	"sector":          func(d *record.Draft) *string { return &d.Sector },
	"stage":           func(d *record.Draft) *string { return &d.Stage },
}

// peopleFields maps people-list payload keys (array or string valued) to
// their draft fields.
var peopleFields = map[string]func(*record.Draft) *string{
	"author": func(d *record.Draft) *string { return &d.Author },
	"smes":   func(d *record.Draft) *string { return &d.SMEs },
}

// recognizedFields is the full set of payload keys the mapper understands.
var recognizedFields = buildRecognized()

func buildRecognized() map[string]bool {
	m := map[string]bool{
		"description":    true,
		"submissionDate": true,
	}
	for k := range textFields {
		m[k] = true
	}
	for k := range enumFields {
		m[k] = true
	}
	for k := range peopleFields {
		m[k] = true
	}
	return m
}

// dateLayouts are the formats accepted for the free-form submission date.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
	"01/02/2006",
	"January 2, 2006",
}

// Populate merges the enrichment payload into the pending draft. A field is
// copied only when the draft's current value is empty and the payload value
// is present, non-nil, and non-empty. Per-field transformation failures skip
// that field; Populate never fails as a whole.
func Populate(d *record.Draft, p *Payload) {
	if d == nil || p == nil {
		return
	}

	for key, target := range textFields {
		copyString(p, key, target(d), "")
	}
	for key, target := range enumFields {
		copyString(p, key, target(d), key)
	}
	for key, target := range peopleFields {
		copyPeople(p, key, target(d))
	}
	copyDescription(d, p)
	copySubmissionDate(d, p)
}

// copyString assigns a plain string payload value to an empty target. When
// enumField is non-empty the value must pass the allow-list for that field.
func copyString(p *Payload, key string, target *string, enumField string) {
	if *target != "" {
		return
	}
	v, ok := p.Get(key)
	if !ok {
		return
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return
	}
	if enumField != "" && !record.ValidEnumValue(enumField, s) {
		return
	}
	*target = s
}

// copyPeople normalizes a people list: an array value is joined into a
// comma-and-space-separated string; a string stays as-is.
func copyPeople(p *Payload, key string, target *string) {
	if *target != "" {
		return
	}
	v, ok := p.Get(key)
	if !ok {
		return
	}
	switch people := v.(type) {
	case string:
		if people != "" {
			*target = people
		}
	case []any:
		names := make([]string, 0, len(people))
		for _, item := range people {
			if name, ok := item.(string); ok && name != "" {
				names = append(names, name)
			}
		}
		if len(names) > 0 {
			*target = strings.Join(names, ", ")
		}
	case []string:
		if len(people) > 0 {
			*target = strings.Join(people, ", ")
		}
	}
}

// copyDescription wraps a plain-string description into a single-paragraph
// rich-text block; an already-structured value passes through unchanged.
func copyDescription(d *record.Draft, p *Payload) {
	if !d.Description.IsEmpty() {
		return
	}
	v, ok := p.Get("description")
	if !ok {
		return
	}
	switch desc := v.(type) {
	case string:
		if desc != "" {
			d.Description = record.BlocksFromString(desc)
		}
	case record.Blocks:
		if !desc.IsEmpty() {
			d.Description = desc
		}
	case []any:
		if blocks, ok := decodeBlocks(desc); ok && !blocks.IsEmpty() {
			d.Description = blocks
		}
	}
}

// decodeBlocks converts a generic JSON array into rich-text blocks, dropping
// the value when the shape does not match.
func decodeBlocks(raw []any) (record.Blocks, bool) {
	blocks := make(record.Blocks, 0, len(raw))
	for _, item := range raw {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, false
		}
		node, ok := decodeNode(m)
		if !ok {
			return nil, false
		}
		blocks = append(blocks, node)
	}
	return blocks, true
}

func decodeNode(m map[string]any) (record.Node, bool) {
	var node record.Node
	if t, ok := m["type"].(string); ok {
		node.Type = t
	} else {
		return node, false
	}
	if text, ok := m["text"].(string); ok {
		node.Text = text
	}
	if children, ok := m["children"].([]any); ok {
		for _, c := range children {
			cm, ok := c.(map[string]any)
			if !ok {
				return node, false
			}
			child, ok := decodeNode(cm)
			if !ok {
				return node, false
			}
			node.Children = append(node.Children, child)
		}
	}
	return node, true
}

// copySubmissionDate parses the free-form date and normalizes it to a
// YYYY-MM-DD calendar date in UTC. Unparseable values are dropped.
func copySubmissionDate(d *record.Draft, p *Payload) {
	if d.SubmissionDate != "" {
		return
	}
	v, ok := p.Get("submissionDate")
	if !ok {
		return
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			d.SubmissionDate = t.UTC().Format("2006-01-02")
			return
		}
	}
}
