package health

import (
	"context"
	"errors"
	"testing"
)

// --- Mocks ---

type mockCachePinger struct {
	err error
}

func (m *mockCachePinger) Ping(_ context.Context) error { return m.err }

type mockBackend struct {
	name string
	err  error
}

func (m *mockBackend) Name() string { return m.name }
func (m *mockBackend) HealthCheck(_ context.Context) error { return m.err }

// --- Tests ---

func TestCheck_AllHealthy(t *testing.T) {
	svc := New(&mockCachePinger{}, &mockBackend{name: "portal"})
	r := svc.Check(context.Background())

	if r.Status != Healthy {
		t.Errorf("expected %q, got %q", Healthy, r.Status)
	}
	if r.Checks["cache"] != CheckOK {
		t.Errorf("expected cache %q, got %q", CheckOK, r.Checks["cache"])
	}
	if r.Checks["portal"] != CheckOK {
		t.Errorf("expected portal %q, got %q", CheckOK, r.Checks["portal"])
	}
}

func TestCheck_CacheError(t *testing.T) {
	svc := New(&mockCachePinger{err: errors.New("conn refused")}, &mockBackend{name: "portal"})
	r := svc.Check(context.Background())

	if r.Status != Degraded {
		t.Errorf("expected %q, got %q", Degraded, r.Status)
	}
	if r.Checks["cache"] != CheckError {
		t.Errorf("expected cache %q, got %q", CheckError, r.Checks["cache"])
	}
	if r.Checks["portal"] != CheckOK {
		t.Errorf("expected portal %q, got %q", CheckOK, r.Checks["portal"])
	}
}

func TestCheck_BackendError(t *testing.T) {
	svc := New(&mockCachePinger{}, &mockBackend{name: "cloud", err: errors.New("timeout")})
	r := svc.Check(context.Background())

	if r.Status != Degraded {
		t.Errorf("expected %q, got %q", Degraded, r.Status)
	}
	if r.Checks["cloud"] != CheckError {
		t.Errorf("expected cloud %q, got %q", CheckError, r.Checks["cloud"])
	}
}

func TestCheck_AllFailing(t *testing.T) {
	svc := New(
		&mockCachePinger{err: errors.New("down")},
		&mockBackend{name: "portal", err: errors.New("down")},
	)
	r := svc.Check(context.Background())

	if r.Status != Unhealthy {
		t.Errorf("expected %q, got %q", Unhealthy, r.Status)
	}
}

func TestCheck_NoCache(t *testing.T) {
	svc := New(nil, &mockBackend{name: "portal"})
	r := svc.Check(context.Background())

	if r.Status != Healthy {
		t.Errorf("expected %q, got %q", Healthy, r.Status)
	}
	if _, ok := r.Checks["cache"]; ok {
		t.Error("expected no cache check when cache is nil")
	}
}
