package search

import (
	"testing"

	"github.com/openfacet/searchfed/internal/domain/filter"
)

func TestNewContext_Defaults(t *testing.T) {
	dc, err := NewContext("", 0, 0, nil, nil, "", nil, nil, nil)
	if err != nil {
		t.Fatalf("new context: %v", err)
	}

	if dc.PageNumber() != 1 {
		t.Errorf("page: got %d, want 1", dc.PageNumber())
	}
	if dc.ItemsPerPage() != DefaultPageSize {
		t.Errorf("page size: got %d, want %d", dc.ItemsPerPage(), DefaultPageSize)
	}
	if dc.FilterOperator() != filter.And {
		t.Errorf("operator: got %q, want and", dc.FilterOperator())
	}
}

func TestNewContext_ClampsPageSize(t *testing.T) {
	dc, err := NewContext("", 1, MaxPageSize+1, nil, nil, "", nil, nil, nil)
	if err != nil {
		t.Fatalf("new context: %v", err)
	}
	if dc.ItemsPerPage() != MaxPageSize {
		t.Errorf("page size: got %d, want %d", dc.ItemsPerPage(), MaxPageSize)
	}
}

func TestNewContext_InvalidOperator(t *testing.T) {
	if _, err := NewContext("", 1, 10, nil, nil, "xor", nil, nil, nil); err == nil {
		t.Fatal("expected error for invalid operator")
	}
}

func TestNewContext_NormalizesConfigurations(t *testing.T) {
	configs := []filter.Configuration{{FilterName: "FileType"}}
	dc, err := NewContext("", 1, 10, nil, configs, "", nil, nil, nil)
	if err != nil {
		t.Fatalf("new context: %v", err)
	}
	if got := dc.Configurations()[0].MaxBuckets; got != filter.DefaultMaxBuckets {
		t.Errorf("max buckets not defaulted: got %d", got)
	}
}

func TestContext_Offset(t *testing.T) {
	tests := []struct {
		page, size, want int
	}{
		{1, 10, 0},
		{3, 10, 20},
		{2, 50, 50},
	}
	for _, tt := range tests {
		dc, err := NewContext("", tt.page, tt.size, nil, nil, "", nil, nil, nil)
		if err != nil {
			t.Fatalf("new context: %v", err)
		}
		if got := dc.Offset(); got != tt.want {
			t.Errorf("page %d size %d: offset %d, want %d", tt.page, tt.size, got, tt.want)
		}
	}
}

func TestContext_QueryText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		vertical *Vertical
		want     string
	}{
		{"plain", "annual report", nil, "annual report"},
		{"empty becomes wildcard", "", nil, WildcardQuery},
		{"whitespace becomes wildcard", "   ", nil, WildcardQuery},
		{
			"vertical template",
			"report",
			&Vertical{Key: "docs", QueryTemplate: "{searchTerms} IsDocument:1"},
			"report IsDocument:1",
		},
		{
			"token is case-insensitive",
			"report",
			&Vertical{Key: "docs", QueryTemplate: "{SearchTerms} IsDocument:1"},
			"report IsDocument:1",
		},
		{
			"wildcard flows into template",
			"",
			&Vertical{Key: "docs", QueryTemplate: "{searchTerms} IsDocument:1"},
			"* IsDocument:1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dc, err := NewContext(tt.input, 1, 10, nil, nil, "", nil, tt.vertical, nil)
			if err != nil {
				t.Fatalf("new context: %v", err)
			}
			if got := dc.QueryText(); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestContext_WithInputQuery(t *testing.T) {
	dc, err := NewContext("original", 2, 25, nil, nil, "", nil, nil, nil)
	if err != nil {
		t.Fatalf("new context: %v", err)
	}

	out := dc.WithInputQuery("expanded")
	if out.InputQuery() != "expanded" {
		t.Errorf("copy query: got %q", out.InputQuery())
	}
	if dc.InputQuery() != "original" {
		t.Errorf("receiver mutated: got %q", dc.InputQuery())
	}
	if out.PageNumber() != 2 || out.ItemsPerPage() != 25 {
		t.Errorf("paging not carried: %d/%d", out.PageNumber(), out.ItemsPerPage())
	}
}

func TestContext_SelectedFilters(t *testing.T) {
	filters := []filter.DataFilter{
		{
			FilterName: "Author",
			Values:     []filter.Value{{Name: "Alice", Value: "alice", Selected: true}},
		},
		{
			FilterName: "FileType",
			Values:     []filter.Value{{Name: "docx", Value: "docx"}},
		},
	}

	dc, err := NewContext("", 1, 10, filters, nil, "", nil, nil, nil)
	if err != nil {
		t.Fatalf("new context: %v", err)
	}

	got := dc.SelectedFilters()
	if len(got) != 1 || got[0].FilterName != "Author" {
		t.Errorf("got %+v", got)
	}
}
