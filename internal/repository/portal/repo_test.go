package portal

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"testing"

	"go.uber.org/zap"

	"github.com/openfacet/searchfed/internal/domain"
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

// --- Tests ---

func TestSearch_PostsToQueryEndpoint(t *testing.T) {
	doer := &mockDoer{resp: jsonResponse(http.StatusOK, `{
		"primaryQueryResult": {"rows": [], "totalRows": 5}
	}`)}
	repo := New("https://portal.example.com/_api/search", Options{}, doer, zap.NewNop())

	dc := mustContext(t, "report", 1, 10, nil, nil, nil)
	results, err := repo.Search(context.Background(), dc)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if results.TotalCount != 5 {
		t.Errorf("total: got %d", results.TotalCount)
	}
	if got := doer.lastReq.URL.String(); got != "https://portal.example.com/_api/search/postquery" {
		t.Errorf("url: got %q", got)
	}
	if doer.lastReq.Method != http.MethodPost {
		t.Errorf("method: got %s", doer.lastReq.Method)
	}
}

func TestSearch_BackendError(t *testing.T) {
	doer := &mockDoer{resp: jsonResponse(http.StatusInternalServerError, "boom")}
	repo := New("https://portal.example.com/_api/search", Options{}, doer, zap.NewNop())

	_, err := repo.Search(context.Background(), mustContext(t, "q", 1, 10, nil, nil, nil))

	var be *domain.BackendError
	if !errors.As(err, &be) {
		t.Fatalf("expected BackendError, got %v", err)
	}
	if be.Status != http.StatusInternalServerError || be.Backend != "portal" {
		t.Errorf("backend error: %+v", be)
	}
}

func TestValidateSortField(t *testing.T) {
	tests := []struct {
		name      string
		resp      *http.Response
		wantField bool
		wantErr   bool
	}{
		{
			"sortable",
			jsonResponse(http.StatusOK, `{"name": "LastModifiedTime", "sortable": true}`),
			false, false,
		},
		{
			"not sortable",
			jsonResponse(http.StatusOK, `{"name": "Summary", "sortable": false}`),
			true, true,
		},
		{
			"unknown property",
			jsonResponse(http.StatusNotFound, ""),
			true, true,
		},
		{
			"backend failure",
			jsonResponse(http.StatusBadGateway, "down"),
			false, true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doer := &mockDoer{resp: tt.resp}
			repo := New("https://portal.example.com/_api/search", Options{}, doer, zap.NewNop())

			err := repo.ValidateSortField(context.Background(), "SomeField")
			if (err != nil) != tt.wantErr {
				t.Fatalf("err: %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantField != errors.Is(err, domain.ErrFieldValidation) {
				t.Errorf("field-validation classification wrong: %v", err)
			}
		})
	}
}

func TestValidateSortField_EscapesName(t *testing.T) {
	doer := &mockDoer{resp: jsonResponse(http.StatusOK, `{"sortable": true}`)}
	repo := New("https://portal.example.com/_api/search", Options{}, doer, zap.NewNop())

	_ = repo.ValidateSortField(context.Background(), "Display Name")
	if got := doer.lastReq.URL.RawQuery; got != "name=Display+Name" {
		t.Errorf("query: got %q", got)
	}
}
