// Package synonyms fetches the synonym table from its backing list and
// caches it in the key-value store with a freshness window.
package synonyms

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/openfacet/searchfed/internal/domain"
	"github.com/openfacet/searchfed/internal/domain/synonym"
)

// httpDoer is the consumer interface for the HTTP transport (ISP).
type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// listItem is one row of the backing list.
type listItem struct {
	Synonyms string `json:"synonyms"`
	Mutual   bool   `json:"mutual"`
}

// Repo fetches the synonym list over HTTP.
type Repo struct {
	siteURL  string
	listName string
	http     httpDoer
}

// New creates a synonym list repository.
func New(siteURL, listName string, client httpDoer) *Repo {
	return &Repo{siteURL: siteURL, listName: listName, http: client}
}

// Table fetches and parses the synonym list. Rows without at least two terms
// are dropped: they can never expand anything.
func (r *Repo) Table(ctx context.Context) ([]synonym.Entry, error) {
	endpoint := fmt.Sprintf("%s/lists/%s/items",
		strings.TrimRight(r.siteURL, "/"), url.PathEscape(r.listName))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build synonym request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")

	resp, err := r.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("fetch synonym list: %w: %w", domain.ErrBackendUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, &domain.BackendError{
			Backend: "synonyms",
			Status:  resp.StatusCode,
			Message: strings.TrimSpace(string(msg)),
		}
	}

	var items []listItem
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return nil, fmt.Errorf("decode synonym list: %w", err)
	}

	var table []synonym.Entry
	for _, item := range items {
		entry := synonym.Entry{Synonyms: item.Synonyms, Mutual: item.Mutual}
		if len(entry.Terms()) < 2 {
			continue
		}
		table = append(table, entry)
	}
	return table, nil
}
