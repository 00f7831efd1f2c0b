package record

// IndexedDocument is the denormalized projection of a SourceRecord held by
// the search engine, keyed by DocumentID so draft/published revisions of the
// same logical record collide to one index entry. Every field is total: empty
// string stands in for absent values, never null, because the engine's filter
// and sort attributes are typed as strings.
type IndexedDocument struct {
	DocumentID string `json:"documentId"`

	SFNumber string `json:"sfNumber"`
	UniqueID string `json:"uniqueId"`

	Name                string `json:"name"`
	ClientName          string `json:"clientName"`
	ClientContact       string `json:"clientContact"`
	BuyingCenterContact string `json:"buyingCenterContact"`

	// DescriptionText is the plain-text rendering of the rich-text
	// description; AttachmentsText flattens attachment metadata.
	DescriptionText string `json:"descriptionText"`
	AttachmentsText string `json:"attachmentsText"`

	// CompositeText is the lowercase concatenation of the most
	// search-relevant fields, indexed as one full-text field.
	CompositeText string `json:"compositeText"`

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

	Locale      string `json:"locale"`
	PublishedAt string `json:"publishedAt"`

	Filters DocumentFilters `json:"filters"`
}

// DocumentFilters duplicates the subset of fields used for faceted filtering
// as a nested object, each defaulted to the empty string.
type DocumentFilters struct {
	Industry        string `json:"industry"`
	Service         string `json:"service"`
	Region          string `json:"region"`
	DocumentType    string `json:"documentType"`
	Outcome         string `json:"outcome"`
	Confidentiality string `json:"confidentiality"`
	DealSize        string `json:"dealSize"`
	Practice        string `json:"practice"`
	Sector          string `json:"sector"`
	Stage           string `json:"stage"`
}
