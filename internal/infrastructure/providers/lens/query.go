// Package lens implements the Lens.org patent search connector.  Unlike
// OPS, the Lens query language tolerates large composite boolean
// expressions, so one combined query is built and executed once, with
// retries only on HTTP 429.
package lens

import (
	"time"

	"github.com/turtacn/aether-intel/pkg/types/patent"
)

// responseFields is the projection requested with every query.
var responseFields = []string{
	"lens_id",
	"jurisdiction",
	"doc_number",
	"biblio",
	"abstract",
	"claims",
	"legal_status",
	"date_published",
}

type clause = map[string]interface{}

func matchPhrase(field, term string) clause {
	return clause{"match_phrase": clause{field: term}}
}

// buildQuery assembles one Lens bool query: include terms as should
// phrases over title and abstract (at least one must match), exclude
// terms as must_not phrases, an optional jurisdiction terms filter, and
// an optional publication-date range.
func buildQuery(keywords patent.KeywordSet, jurisdiction string, from, to time.Time, size int) clause {
	var must []clause

	var includeShould []clause
	for _, term := range keywords.Include {
		if term == "" {
			continue
		}
		includeShould = append(includeShould,
			matchPhrase("title", term),
			matchPhrase("abstract", term),
		)
	}
	if len(includeShould) > 0 {
		must = append(must, clause{"bool": clause{"should": includeShould}})
	}

	if jurisdiction != "" {
		must = append(must, clause{"terms": clause{"jurisdiction": []string{jurisdiction}}})
	}

	if !from.IsZero() {
		dateRange := clause{"gte": from.Format("2006-01-02")}
		if !to.IsZero() {
			dateRange["lte"] = to.Format("2006-01-02")
		}
		must = append(must, clause{"range": clause{"date_published": dateRange}})
	}

	var mustNot []clause
	for _, term := range keywords.Exclude {
		if term == "" {
			continue
		}
		mustNot = append(mustNot,
			matchPhrase("title", term),
			matchPhrase("abstract", term),
		)
	}

	boolQuery := clause{"must": must}
	if len(mustNot) > 0 {
		boolQuery["must_not"] = mustNot
	}

	return clause{
		"query":   clause{"bool": boolQuery},
		"size":    size,
		"include": responseFields,
	}
}

// buildIdentifierQuery looks up a single record by its Lens ID.
func buildIdentifierQuery(lensID string) clause {
	return clause{
		"query":   clause{"term": clause{"lens_id": lensID}},
		"size":    1,
		"include": responseFields,
	}
}
