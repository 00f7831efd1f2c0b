// Package enrich calls the external enrichment service for a record's SF
// number and merges the returned payload into the pending record. Enrichment
// is strictly best-effort: a failure is logged by the caller and never blocks
// a record write.
package enrich

// Payload is the loosely-typed enrichment record returned by the external
// service for one SF number. Recognized fields are kept in Fields; anything
// the mapper does not know about lands in Extra so it can be logged or
// inspected without being merged.
type Payload struct {
	SFNumber string
	Fields   map[string]any
	Extra    map[string]any
}

// NewPayload splits a raw enrichment body into recognized and unknown fields.
func NewPayload(sfNumber string, data map[string]any) *Payload {
	p := &Payload{
		SFNumber: sfNumber,
		Fields:   make(map[string]any),
		Extra:    make(map[string]any),
	}
	for key, value := range data {
		if recognizedFields[key] {
			p.Fields[key] = value
		} else {
			p.Extra[key] = value
		}
	}
	return p
}

// Get returns the recognized field value and whether it is present and
// non-nil.
func (p *Payload) Get(field string) (any, bool) {
	v, ok := p.Fields[field]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}
