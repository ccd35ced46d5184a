package health

import (
	"context"
	"errors"
	"testing"
	"time"
)

type mockDBPinger struct {
	err error
}

func (m *mockDBPinger) Ping(_ context.Context) error { return m.err }

type mockIndexChecker struct {
	err    error
	called bool
}

func (m *mockIndexChecker) IndexReady(_ context.Context) error {
	m.called = true
	return m.err
}

func TestCheck_AllHealthy(t *testing.T) {
	svc := New(&mockDBPinger{}, &mockIndexChecker{})
	r := svc.Check(context.Background())

	if r.Status != Healthy {
		t.Errorf("expected %q, got %q", Healthy, r.Status)
	}
	if r.Checks[CheckDatabase] != CheckOK {
		t.Errorf("expected database %q, got %q", CheckOK, r.Checks[CheckDatabase])
	}
	if r.Checks[CheckSearchIndex] != CheckOK {
		t.Errorf("expected search_index %q, got %q", CheckOK, r.Checks[CheckSearchIndex])
	}
}

func TestCheck_DBError(t *testing.T) {
	idx := &mockIndexChecker{}
	svc := New(&mockDBPinger{err: errors.New("conn refused")}, idx)
	r := svc.Check(context.Background())

	if r.Status != Unhealthy {
		t.Errorf("expected %q, got %q", Unhealthy, r.Status)
	}
	if r.Checks[CheckDatabase] != CheckError {
		t.Errorf("expected database %q, got %q", CheckError, r.Checks[CheckDatabase])
	}
	if idx.called {
		t.Error("index check should be skipped when the database is down")
	}
}

func TestCheck_IndexError(t *testing.T) {
	svc := New(&mockDBPinger{}, &mockIndexChecker{err: errors.New("unknown index name")})
	r := svc.Check(context.Background())

	if r.Status != Degraded {
		t.Errorf("expected %q, got %q", Degraded, r.Status)
	}
	if r.Checks[CheckDatabase] != CheckOK {
		t.Errorf("expected database %q, got %q", CheckOK, r.Checks[CheckDatabase])
	}
	if r.Checks[CheckSearchIndex] != CheckError {
		t.Errorf("expected search_index %q, got %q", CheckError, r.Checks[CheckSearchIndex])
	}
}

func TestCheck_NoIndex(t *testing.T) {
	svc := New(&mockDBPinger{}, nil)
	r := svc.Check(context.Background())

	if r.Status != Healthy {
		t.Errorf("expected %q, got %q", Healthy, r.Status)
	}
	if _, ok := r.Checks[CheckSearchIndex]; ok {
		t.Error("search_index check should be absent when index is nil")
	}
}

type slowPinger struct{}

func (slowPinger) Ping(ctx context.Context) error {
	<-ctx.Done()
	return ctx.Err()
}

func TestCheck_ProbeTimeout(t *testing.T) {
	svc := New(slowPinger{}, nil).WithProbeTimeout(10 * time.Millisecond)

	r := svc.Check(context.Background())
	if r.Status != Unhealthy {
		t.Errorf("expected %q, got %q", Unhealthy, r.Status)
	}
	if r.Checks[CheckDatabase] != CheckError {
		t.Errorf("expected database %q, got %q", CheckError, r.Checks[CheckDatabase])
	}
}
