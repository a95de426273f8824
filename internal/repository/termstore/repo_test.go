package termstore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/openfacet/searchfed/internal/db"
)

// --- Mocks ---

// routedDoer serves canned responses by URL path suffix, concurrency-safe.
type routedDoer struct {
	mu     sync.Mutex
	byTerm map[string]string // term id -> label; missing ids get a 404
	calls  int
}

func (d *routedDoer) Do(req *http.Request) (*http.Response, error) {
	d.mu.Lock()
	d.calls++
	d.mu.Unlock()

	parts := strings.Split(req.URL.Path, "/")
	id := parts[len(parts)-1]
	label, ok := d.byTerm[id]
	if !ok {
		return &http.Response{
			StatusCode: http.StatusNotFound,
			Body:       io.NopCloser(bytes.NewBufferString("")),
		}, nil
	}
	body := fmt.Sprintf(`{"id": %q, "defaultLabel": %q}`, id, label)
	return &http.Response{
		StatusCode: http.StatusOK,
		Body:       io.NopCloser(bytes.NewBufferString(body)),
	}, nil
}

type fakeStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newFakeStore() *fakeStore {
	return &fakeStore{data: map[string][]byte{}}
}

func (f *fakeStore) Get(_ context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.data[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return v, nil
}

func (f *fakeStore) SetWithTTL(_ context.Context, key string, value []byte, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[key] = value
	return nil
}

// --- Tests ---

func TestResolve_JoinsByID(t *testing.T) {
	doer := &routedDoer{byTerm: map[string]string{
		"t1": "Finance",
		"t2": "Engineering",
	}}
	r := New("https://host/taxonomy", doer, nil, 0, nil, zap.NewNop())

	labels := r.Resolve(context.Background(), "departments", []string{"t1", "t2"})
	if len(labels) != 2 {
		t.Fatalf("labels: %v", labels)
	}
	if labels["t1"] != "Finance" || labels["t2"] != "Engineering" {
		t.Errorf("labels: %v", labels)
	}
}

func TestResolve_MissingTermsDropped(t *testing.T) {
	doer := &routedDoer{byTerm: map[string]string{"t1": "Finance"}}
	r := New("https://host/taxonomy", doer, nil, 0, nil, zap.NewNop())

	labels := r.Resolve(context.Background(), "departments", []string{"t1", "missing", ""})
	if len(labels) != 1 || labels["t1"] != "Finance" {
		t.Errorf("labels: %v", labels)
	}
	if _, ok := labels["missing"]; ok {
		t.Error("missing term must be absent, not empty")
	}
}

func TestResolve_EmptyInput(t *testing.T) {
	r := New("https://host/taxonomy", &routedDoer{}, nil, 0, nil, zap.NewNop())

	labels := r.Resolve(context.Background(), "departments", nil)
	if len(labels) != 0 {
		t.Errorf("labels: %v", labels)
	}
}

func TestResolve_CachesLabels(t *testing.T) {
	doer := &routedDoer{byTerm: map[string]string{"t1": "Finance"}}
	store := newFakeStore()
	r := New("https://host/taxonomy", doer, store, 60, nil, zap.NewNop())

	first := r.Resolve(context.Background(), "departments", []string{"t1"})
	if first["t1"] != "Finance" {
		t.Fatalf("first resolve: %v", first)
	}
	if doer.calls != 1 {
		t.Fatalf("fetch calls: %d", doer.calls)
	}

	second := r.Resolve(context.Background(), "departments", []string{"t1"})
	if second["t1"] != "Finance" {
		t.Fatalf("second resolve: %v", second)
	}
	if doer.calls != 1 {
		t.Errorf("cached label must not refetch, calls %d", doer.calls)
	}
}

func TestResolve_NilStoreDisablesCaching(t *testing.T) {
	doer := &routedDoer{byTerm: map[string]string{"t1": "Finance"}}
	r := New("https://host/taxonomy", doer, nil, 60, nil, zap.NewNop())

	r.Resolve(context.Background(), "departments", []string{"t1"})
	r.Resolve(context.Background(), "departments", []string{"t1"})
	if doer.calls != 2 {
		t.Errorf("without a store every resolve fetches, calls %d", doer.calls)
	}
}
