package portal

import (
	"github.com/openfacet/searchfed/internal/domain/filter"
	"github.com/openfacet/searchfed/internal/domain/search"
)

// Normalize maps a platform search response into the uniform result model.
// Refiner tokens stay opaque: they are carried on the filter values with
// operator Contains and never reparsed.
func Normalize(resp *Response) search.Results {
	results := search.Results{
		TotalCount:      resp.PrimaryResult.TotalRows,
		QueryAlteration: resp.SpellSuggestion,
	}

	for _, row := range resp.PrimaryResult.Rows {
		fields := make(map[string]any, len(row.Cells))
		var key string
		for _, cell := range row.Cells {
			fields[cell.Key] = cell.Value
			if cell.Key == "DocId" || (key == "" && cell.Key == "Path") {
				key = cell.Value
			}
		}
		results.Items = append(results.Items, search.Item{Key: key, Fields: fields})
	}

	for _, ref := range resp.Refiners {
		fr := search.FilterResult{FilterName: ref.Name}
		for _, entry := range ref.Entries {
			name := entry.Name
			if name == "" {
				name = entry.Value
			}
			fr.Values = append(fr.Values, filter.Value{
				Name:     name,
				Value:    entry.Token,
				Operator: filter.Contains,
				Count:    entry.Count,
			})
		}
		results.Filters = append(results.Filters, fr)
	}

	return results
}
