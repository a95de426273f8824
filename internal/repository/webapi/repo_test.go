package webapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"testing"

	"go.uber.org/zap"

	"github.com/openfacet/searchfed/internal/domain"
	"github.com/openfacet/searchfed/internal/domain/filter"
	"github.com/openfacet/searchfed/internal/domain/search"
)

// --- Mocks ---

type mockDoer struct {
	lastReq *http.Request
	resp    *http.Response
	err     error
}

func (m *mockDoer) Do(req *http.Request) (*http.Response, error) {
	m.lastReq = req
	return m.resp, m.err
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewBufferString(body)),
	}
}

func mustContext(t *testing.T, filters []filter.DataFilter, configs []filter.Configuration) *search.Context {
	t.Helper()
	dc, err := search.NewContext("report", 2, 10, filters, configs, "", nil, nil, nil)
	if err != nil {
		t.Fatalf("new context: %v", err)
	}
	return &dc
}

// --- Tests ---

func TestCompile(t *testing.T) {
	configs := []filter.Configuration{{FilterName: "fileType", Template: filter.TemplateCheckbox}}
	filters := []filter.DataFilter{{
		FilterName: "fileType",
		Values:     []filter.Value{{Name: "docx", Value: "docx", Operator: filter.Eq, Selected: true}},
	}}
	dc := mustContext(t, filters, configs)

	req := Compile(dc)
	if req.Query != "report" {
		t.Errorf("query: got %q", req.Query)
	}
	if req.From != 10 || req.Size != 10 {
		t.Errorf("paging: from %d size %d", req.From, req.Size)
	}
	if req.Filter != "fileType:docx" {
		t.Errorf("filter expression: got %q", req.Filter)
	}
	if len(req.Filters) != 1 {
		t.Errorf("structured filters: %v", req.Filters)
	}
}

func TestSearch_DecodesResponse(t *testing.T) {
	doer := &mockDoer{resp: jsonResponse(http.StatusOK, `{
		"items": [{"key": "1", "fields": {"title": "Report"}}],
		"totalCount": 7
	}`)}
	repo := New("https://api.example.com/search", doer, zap.NewNop())

	results, err := repo.Search(context.Background(), mustContext(t, nil, nil))
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if results.TotalCount != 7 || len(results.Items) != 1 {
		t.Errorf("results: %+v", results)
	}

	if doer.lastReq.Method != http.MethodPost {
		t.Errorf("method: got %s", doer.lastReq.Method)
	}
	var sent Request
	if err := json.NewDecoder(doer.lastReq.Body).Decode(&sent); err != nil {
		t.Fatalf("decode sent body: %v", err)
	}
	if sent.Query != "report" {
		t.Errorf("sent query: got %q", sent.Query)
	}
}

func TestSearch_TransportError(t *testing.T) {
	doer := &mockDoer{err: errors.New("connection refused")}
	repo := New("https://api.example.com/search", doer, zap.NewNop())

	_, err := repo.Search(context.Background(), mustContext(t, nil, nil))
	if !errors.Is(err, domain.ErrBackendUnavailable) {
		t.Errorf("expected backend-unavailable, got %v", err)
	}
}

func TestSearch_HTTPError(t *testing.T) {
	doer := &mockDoer{resp: jsonResponse(http.StatusBadGateway, "upstream broken")}
	repo := New("https://api.example.com/search", doer, zap.NewNop())

	_, err := repo.Search(context.Background(), mustContext(t, nil, nil))

	var be *domain.BackendError
	if !errors.As(err, &be) {
		t.Fatalf("expected BackendError, got %v", err)
	}
	if be.Status != http.StatusBadGateway || be.Backend != "webapi" {
		t.Errorf("backend error: %+v", be)
	}
	if !errors.Is(err, domain.ErrBackendUnavailable) {
		t.Error("BackendError must unwrap to backend-unavailable")
	}
}

func TestValidateSortField_AlwaysAccepts(t *testing.T) {
	repo := New("https://api.example.com/search", &mockDoer{}, zap.NewNop())
	if err := repo.ValidateSortField(context.Background(), "anything"); err != nil {
		t.Errorf("got %v", err)
	}
}
