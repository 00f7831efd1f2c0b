package record

// Enum allow-lists for the classification fields. A value outside the
// allow-list is treated as absent by the enrichment field mapper, never as an
// error. The lists mirror the content store's schema.
var enumValues = map[string][]string{
	"confidentiality": {
		"Public",
		"Internal",
		"Confidential",
		"Strictly Confidential",
	},
	"industry": {
		"Banking & Capital Markets",
		"Insurance",
		"Energy & Utilities",
		"Healthcare & Life Sciences",
		"Public Sector",
		"Retail & Consumer Goods",
		"Technology, Media & Telecom",
		"Manufacturing",
		"Travel & Transportation",
	},
	"subIndustry": {
		"Retail Banking",
		"Investment Banking",
		"Property & Casualty",
		"Life & Annuities",
		"Oil & Gas",
		"Renewables",
		"Pharmaceuticals",
		"Hospitals & Providers",
		"Federal",
		"State & Local",
		"E-Commerce",
		"Consumer Packaged Goods",
		"Software & Platforms",
		"Telecommunications",
		"Automotive",
		"Aerospace & Defense",
		"Airlines",
		"Logistics",
	},
	"service": {
		"Consulting",
		"Technology",
		"Outsourcing",
		"Managed Services",
		"Audit & Assurance",
	},
	"serviceLine": {
		"Strategy",
		"Cloud & Infrastructure",
		"Data & Analytics",
		"Cybersecurity",
		"Application Services",
		"Business Process Services",
		"Change Management",
	},
	"region": {
		"North America",
		"Latin America",
		"EMEA",
		"APAC",
	},
	"market": {
		"Domestic",
		"International",
		"Global",
	},
	"documentType": {
		"Proposal",
		"RFP Response",
		"RFI Response",
		"Statement of Work",
		"Case Study",
		"Orals Deck",
		"Pricing Sheet",
	},
	"outcome": {
		"Won",
		"Lost",
		"Pending",
		"No Decision",
	},
	"dealSize": {
		"< $250K",
		"$250K - $1M",
		"$1M - $5M",
		"$5M - $25M",
		"> $25M",
	},
	"engagementType": {
		"Fixed Price",
		"Time & Materials",
		"Outcome Based",
		"Retainer",
	},
	"deliveryModel": {
		"Onshore",
		"Offshore",
		"Nearshore",
		"Hybrid",
	},
	"practice": {
		"Financial Services",
		"Products",
		"Health & Public Service",
		"Communications & Media",
		"Resources",
	},
	"sector": {
		"Commercial",
		"Government",
		"Non-Profit",
	},
	"stage": {
		"Qualification",
		"Down-Select",
		"Orals",
		"Best & Final Offer",
		"Closed",
	},
}

// EnumFields returns the names of all enum-constrained classification fields.
func EnumFields() []string {
	fields := make([]string, 0, len(enumValues))
	for name := range enumValues {
		fields = append(fields, name)
	}
	return fields
}

// IsEnumField reports whether the named field is enum-constrained.
func IsEnumField(name string) bool {
	_, ok := enumValues[name]
	return ok
}

// ValidEnumValue reports whether value is in the allow-list for the named
// field. Unknown fields are never valid.
func ValidEnumValue(field, value string) bool {
	for _, v := range enumValues[field] {
		if v == value {
			return true
		}
	}
	return false
}
