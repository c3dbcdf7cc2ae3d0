package health

import (
	"context"
	"errors"
	"testing"
)

// --- Mocks ---

type mockPinger struct {
	err error
}

func (m *mockPinger) Ping(_ context.Context) error { return m.err }

// --- Tests ---

func TestCheck_AllHealthy(t *testing.T) {
	svc := New(&mockPinger{}, &mockPinger{})
	r := svc.Check(context.Background())

	if r.Status != Healthy {
		t.Errorf("expected %q, got %q", Healthy, r.Status)
	}
	if r.Checks[ComponentGraph] != CheckOK {
		t.Errorf("expected graph %q, got %q", CheckOK, r.Checks[ComponentGraph])
	}
	if r.Checks[ComponentSink] != CheckOK {
		t.Errorf("expected sink %q, got %q", CheckOK, r.Checks[ComponentSink])
	}
	if len(r.Errors) != 0 {
		t.Errorf("unexpected errors: %v", r.Errors)
	}
}

func TestCheck_GraphError(t *testing.T) {
	svc := New(&mockPinger{err: errors.New("conn refused")}, &mockPinger{})
	r := svc.Check(context.Background())

	if r.Status != Unhealthy {
		t.Errorf("expected %q, got %q", Unhealthy, r.Status)
	}
	if r.Checks[ComponentGraph] != CheckError {
		t.Errorf("expected graph %q, got %q", CheckError, r.Checks[ComponentGraph])
	}
	if r.Errors[ComponentGraph] != "conn refused" {
		t.Errorf("unexpected graph error: %q", r.Errors[ComponentGraph])
	}
	if r.Checks[ComponentSink] != CheckOK {
		t.Errorf("expected sink %q, got %q", CheckOK, r.Checks[ComponentSink])
	}
}

func TestCheck_SinkError(t *testing.T) {
	svc := New(&mockPinger{}, &mockPinger{err: errors.New("timeout")})
	r := svc.Check(context.Background())

	if r.Status != Degraded {
		t.Errorf("expected %q, got %q", Degraded, r.Status)
	}
	if r.Checks[ComponentSink] != CheckError {
		t.Errorf("expected sink %q, got %q", CheckError, r.Checks[ComponentSink])
	}
}

func TestCheck_BothFail(t *testing.T) {
	svc := New(
		&mockPinger{err: errors.New("graph down")},
		&mockPinger{err: errors.New("sink down")},
	)
	r := svc.Check(context.Background())

	if r.Status != Unhealthy {
		t.Errorf("expected %q, got %q", Unhealthy, r.Status)
	}
	if r.Checks[ComponentGraph] != CheckError || r.Checks[ComponentSink] != CheckError {
		t.Errorf("expected both checks to fail: %v", r.Checks)
	}
}

func TestCheck_NoSink(t *testing.T) {
	svc := New(&mockPinger{}, nil)
	r := svc.Check(context.Background())

	if r.Status != Healthy {
		t.Errorf("expected %q, got %q", Healthy, r.Status)
	}
	if _, ok := r.Checks[ComponentSink]; ok {
		t.Error("sink check should be absent when sink is nil")
	}
}
