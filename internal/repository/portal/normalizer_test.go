package portal

import (
	"testing"

	"github.com/openfacet/searchfed/internal/domain/filter"
)

func TestNormalize_Rows(t *testing.T) {
	resp := &Response{
		PrimaryResult: ResultTable{
			TotalRows: 42,
			Rows: []Row{
				{Cells: []Cell{
					{Key: "Title", Value: "Quarterly report"},
					{Key: "DocId", Value: "17"},
					{Key: "Path", Value: "https://example.com/report.docx"},
				}},
				{Cells: []Cell{
					{Key: "Title", Value: "No doc id"},
					{Key: "Path", Value: "https://example.com/other.docx"},
				}},
			},
		},
		SpellSuggestion: "quarterly reports",
	}

	results := Normalize(resp)
	if results.TotalCount != 42 {
		t.Errorf("total: got %d", results.TotalCount)
	}
	if results.QueryAlteration != "quarterly reports" {
		t.Errorf("alteration: got %q", results.QueryAlteration)
	}
	if len(results.Items) != 2 {
		t.Fatalf("items: got %d", len(results.Items))
	}
	if results.Items[0].Key != "17" {
		t.Errorf("doc id must win as key, got %q", results.Items[0].Key)
	}
	if results.Items[1].Key != "https://example.com/other.docx" {
		t.Errorf("path fallback key: got %q", results.Items[1].Key)
	}
	if results.Items[0].Fields["Title"] != "Quarterly report" {
		t.Errorf("fields: %+v", results.Items[0].Fields)
	}
}

func TestNormalize_Refiners(t *testing.T) {
	resp := &Response{
		Refiners: []RefinerResult{{
			Name: "FileType",
			Entries: []RefinerEntry{
				{Name: "docx", Value: "docx", Token: `ǂǂ646f6378`, Count: 12},
				{Value: "pdf", Token: `ǂǂ706466`, Count: 3},
			},
		}},
	}

	results := Normalize(resp)
	if len(results.Filters) != 1 {
		t.Fatalf("filters: got %d", len(results.Filters))
	}
	fr := results.Filters[0]
	if fr.FilterName != "FileType" {
		t.Errorf("filter name: got %q", fr.FilterName)
	}
	if len(fr.Values) != 2 {
		t.Fatalf("values: got %d", len(fr.Values))
	}

	first := fr.Values[0]
	if first.Operator != filter.Contains {
		t.Errorf("bucket operator: got %q, want contains", first.Operator)
	}
	if first.Value != `ǂǂ646f6378` {
		t.Errorf("token must be carried verbatim, got %q", first.Value)
	}
	if first.Count != 12 {
		t.Errorf("count: got %d", first.Count)
	}

	// Entries without a display name fall back to the raw value.
	if fr.Values[1].Name != "pdf" {
		t.Errorf("name fallback: got %q", fr.Values[1].Name)
	}
}
