package search

import (
	"context"
	"errors"
	"testing"

	"github.com/openfacet/searchfed/internal/domain"
	"github.com/openfacet/searchfed/internal/domain/filter"
	domsearch "github.com/openfacet/searchfed/internal/domain/search"
	"github.com/openfacet/searchfed/internal/domain/synonym"
)

// --- Mocks ---

type mockBackend struct {
	name     string
	gotQuery string
	results  domsearch.Results
	err      error
}

func (m *mockBackend) Name() string { return m.name }

func (m *mockBackend) Search(_ context.Context, dc *domsearch.Context) (domsearch.Results, error) {
	m.gotQuery = dc.InputQuery()
	return m.results, m.err
}

func (m *mockBackend) ValidateSortField(_ context.Context, field string) error {
	if field == "Summary" {
		return domain.NewFieldValidation(field, "property is not sortable")
	}
	return nil
}

type mockSynonyms struct {
	table []synonym.Entry
	err   error
}

func (m *mockSynonyms) Table(context.Context) ([]synonym.Entry, error) {
	return m.table, m.err
}

type mockTerms struct {
	labels map[string]string
}

func (m *mockTerms) Resolve(_ context.Context, _ string, ids []string) map[string]string {
	out := make(map[string]string)
	for _, id := range ids {
		if label, ok := m.labels[id]; ok {
			out[id] = label
		}
	}
	return out
}

func mustContext(
	t *testing.T,
	query string,
	filters []filter.DataFilter,
	configs []filter.Configuration,
) *domsearch.Context {
	t.Helper()
	dc, err := domsearch.NewContext(query, 1, 10, filters, configs, "", nil, nil, nil)
	if err != nil {
		t.Fatalf("new context: %v", err)
	}
	return &dc
}

// --- Tests ---

func TestSearch_UnknownBackend(t *testing.T) {
	svc := New(&mockBackend{name: "portal"})

	_, _, err := svc.Search(context.Background(), "nope", mustContext(t, "q", nil, nil))
	if !errors.Is(err, domain.ErrUnknownBackend) {
		t.Fatalf("expected ErrUnknownBackend, got %v", err)
	}
}

func TestSearch_BackendError(t *testing.T) {
	backend := &mockBackend{name: "portal", err: domain.ErrBackendUnavailable}
	svc := New(backend)

	_, _, err := svc.Search(context.Background(), "portal", mustContext(t, "q", nil, nil))
	if !errors.Is(err, domain.ErrBackendUnavailable) {
		t.Fatalf("expected wrapped backend error, got %v", err)
	}
}

func TestSearch_SynonymExpansion(t *testing.T) {
	backend := &mockBackend{name: "portal"}
	svc := New(backend).WithSynonyms(&mockSynonyms{
		table: []synonym.Entry{{Synonyms: "hr;human resources", Mutual: true}},
	})

	_, _, err := svc.Search(context.Background(), "portal", mustContext(t, "hr policy", nil, nil))
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	want := `(hr policy) OR (("human resources") policy)`
	if backend.gotQuery != want {
		t.Errorf("query: got %q, want %q", backend.gotQuery, want)
	}
}

func TestSearch_SynonymFailureDegradesToUnexpanded(t *testing.T) {
	backend := &mockBackend{name: "portal"}
	svc := New(backend).WithSynonyms(&mockSynonyms{err: errors.New("list down")})

	_, _, err := svc.Search(context.Background(), "portal", mustContext(t, "hr policy", nil, nil))
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if backend.gotQuery != "hr policy" {
		t.Errorf("query: got %q, want unexpanded", backend.gotQuery)
	}
}

func TestSearch_TaxonomyLabelResolution(t *testing.T) {
	backend := &mockBackend{name: "portal", results: domsearch.Results{
		Filters: []domsearch.FilterResult{
			{FilterName: "Category", Values: []filter.Value{
				{Name: "guid-1", Value: "guid-1", Count: 7},
				{Name: "guid-2", Value: "guid-2", Count: 3},
			}},
			{FilterName: "FileType", Values: []filter.Value{
				{Name: "docx", Value: "docx", Count: 4},
			}},
		},
	}}
	svc := New(backend).WithTermResolver(&mockTerms{
		labels: map[string]string{"guid-1": "Policies"},
	})
	configs := []filter.Configuration{{
		FilterName: "Category",
		Template:   filter.TemplateTaxonomy,
		TermSetID:  "set-1",
	}}

	results, _, err := svc.Search(context.Background(), "portal", mustContext(t, "q", nil, configs))
	if err != nil {
		t.Fatalf("search: %v", err)
	}

	category := results.Filters[0]
	if len(category.Values) != 1 {
		t.Fatalf("unresolved value not dropped: %+v", category.Values)
	}
	if category.Values[0].Name != "Policies" || category.Values[0].Value != "guid-1" {
		t.Errorf("resolved value: %+v", category.Values[0])
	}
	if results.Filters[1].Values[0].Name != "docx" {
		t.Errorf("non-taxonomy facet touched: %+v", results.Filters[1])
	}
}

func TestSearch_MergeSelections(t *testing.T) {
	backend := &mockBackend{name: "portal", results: domsearch.Results{
		Filters: []domsearch.FilterResult{
			{FilterName: "FileType", Values: []filter.Value{
				{Name: "docx", Value: "docx", Count: 4},
				{Name: "pdf", Value: "pdf", Count: 2},
			}},
		},
	}}
	svc := New(backend)
	filters := []filter.DataFilter{
		{FilterName: "FileType", Values: []filter.Value{
			{Name: "docx", Value: "docx", Selected: true},
			{Name: "xlsx", Value: "xlsx", Selected: true, Count: 9},
		}},
		{FilterName: "Author", Values: []filter.Value{
			{Name: "Alice", Value: "Alice", Selected: true},
		}},
	}

	results, _, err := svc.Search(context.Background(), "portal", mustContext(t, "q", filters, nil))
	if err != nil {
		t.Fatalf("search: %v", err)
	}

	fileType := results.Filters[0]
	if !fileType.Values[0].Selected {
		t.Error("matching bucket not marked selected")
	}
	if fileType.Values[1].Selected {
		t.Error("unselected bucket marked selected")
	}
	if len(fileType.Values) != 3 {
		t.Fatalf("carried selection missing: %+v", fileType.Values)
	}
	carried := fileType.Values[2]
	if carried.Value != "xlsx" || !carried.Selected || carried.Count != 0 {
		t.Errorf("carried value: %+v", carried)
	}

	if len(results.Filters) != 2 {
		t.Fatalf("missing facet not created: %+v", results.Filters)
	}
	author := results.Filters[1]
	if author.FilterName != "Author" || len(author.Values) != 1 || !author.Values[0].Selected {
		t.Errorf("created facet: %+v", author)
	}
}

func TestSearch_FilterUpdateEvents(t *testing.T) {
	backend := &mockBackend{name: "portal"}
	svc := New(backend)
	filters := []filter.DataFilter{
		{FilterName: "FileType", Values: []filter.Value{{Value: "docx", Selected: true}}},
		{FilterName: "Author", Values: []filter.Value{{Value: "Alice", Selected: false}}},
	}

	_, events, err := svc.Search(context.Background(), "portal", mustContext(t, "q", filters, nil))
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("events: got %d, want 1", len(events))
	}
	if events[0].FilterName != "FileType" || events[0].InstanceID == "" {
		t.Errorf("event: %+v", events[0])
	}
	if len(events[0].FilterValues) != 1 || events[0].FilterValues[0].Value != "docx" {
		t.Errorf("event values: %+v", events[0].FilterValues)
	}
}

func TestValidateSortField_Delegates(t *testing.T) {
	svc := New(&mockBackend{name: "portal"})

	if err := svc.ValidateSortField(context.Background(), "portal", "LastModifiedTime"); err != nil {
		t.Errorf("sortable field: %v", err)
	}
	if err := svc.ValidateSortField(context.Background(), "portal", "Summary"); !errors.Is(err, domain.ErrFieldValidation) {
		t.Errorf("unsortable field: %v", err)
	}
	if err := svc.ValidateSortField(context.Background(), "nope", "X"); !errors.Is(err, domain.ErrUnknownBackend) {
		t.Errorf("unknown backend: %v", err)
	}
}
