package index

import "github.com/proposalhub/search-sync/internal/engine"

// engineSettings returns the canonical engine configuration: searchable
// attribute order, filterable and sortable attribute sets, ranking rules, and
// the fixed domain synonym dictionary. Applying it is idempotent and safe at
// any time.
func engineSettings() engine.Settings {
	return engine.Settings{
		SearchableAttributes: []string{
			"compositeText",
			"name",
			"sfNumber",
			"uniqueId",
			"clientName",
			"clientContact",
			"buyingCenterContact",
			"descriptionText",
			"attachmentsText",
			"author",
			"smes",
			"competitors",
		},
		FilterableAttributes: []string{
			"industry",
			"subIndustry",
			"service",
			"serviceLine",
			"region",
			"market",
			"documentType",
			"outcome",
			"confidentiality",
			"dealSize",
			"engagementType",
			"deliveryModel",
			"practice",
			"sector",
			"stage",
			"locale",
			"filters.industry",
			"filters.service",
			"filters.region",
			"filters.documentType",
			"filters.outcome",
			"filters.confidentiality",
			"filters.dealSize",
			"filters.practice",
			"filters.sector",
			"filters.stage",
		},
		SortableAttributes: []string{
			"name",
			"clientName",
			"submissionDate",
			"publishedAt",
		},
		RankingRules: []string{
			"words",
			"typo",
			"proximity",
			"attribute",
			"sort",
			"exactness",
		},
		Synonyms: map[string][]string{
			"proposal": {"rfp", "bid", "pitch", "tender"},
			"client":   {"customer", "account"},
			"document": {"doc", "file", "deliverable"},
			"sme":      {"expert", "subject matter expert", "specialist"},
			"won":      {"win", "awarded"},
			"lost":     {"loss", "unsuccessful"},
		},
	}
}
