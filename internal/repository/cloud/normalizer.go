package cloud

import (
	"encoding/json"

	"github.com/openfacet/searchfed/internal/domain/filter"
	"github.com/openfacet/searchfed/internal/domain/search"
)

// Normalize maps a Graph-style response into the uniform result model. The
// total item count sums the totals across all hit containers: a response
// legitimately carries several when multiple entity types were requested.
func Normalize(resp *SearchResponse) search.Results {
	var results search.Results

	for _, value := range resp.Value {
		for _, container := range value.HitsContainers {
			results.TotalCount += container.Total

			for _, hit := range container.Hits {
				results.Items = append(results.Items, normalizeHit(hit))
			}

			for _, agg := range container.Aggregations {
				fr := search.FilterResult{FilterName: agg.Field}
				for _, bucket := range agg.Buckets {
					fr.Values = append(fr.Values, filter.Value{
						Name:     bucket.Key,
						Value:    bucket.AggregationFilterToken,
						Operator: filter.Contains,
						Count:    bucket.Count,
					})
				}
				results.Filters = append(results.Filters, fr)
			}
		}

		if value.QueryAlteration != nil && results.QueryAlteration == "" {
			results.QueryAlteration = value.QueryAlteration.AlteredQueryString
		}
	}

	return results
}

// normalizeHit flattens the hit's resource into a single-level field bag.
// Fields nested under a sub-object are lifted to the top level additively:
// the original nested shape stays in place alongside the flattened keys, so
// uniform field references work regardless of source.
func normalizeHit(hit Hit) search.Item {
	fields := map[string]any{
		"hitId":   hit.HitID,
		"rank":    hit.Rank,
		"summary": hit.Summary,
	}

	var resource map[string]any
	if len(hit.Resource) > 0 && json.Unmarshal(hit.Resource, &resource) == nil {
		for k, v := range resource {
			fields[k] = v
			if nested, ok := v.(map[string]any); ok && isFieldBag(k) {
				for nk, nv := range nested {
					if _, exists := fields[nk]; !exists {
						fields[nk] = nv
					}
				}
			}
		}
	}

	return search.Item{Key: hit.HitID, Fields: fields}
}

// isFieldBag reports whether a resource sub-object carries item fields.
func isFieldBag(key string) bool {
	return key == "fields" || key == "properties" || key == "listItem"
}
