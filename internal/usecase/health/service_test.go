package health

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestCheck_AllHealthy(t *testing.T) {
	svc := New(time.Second).
		Register("database", CheckerFunc(func(_ context.Context) error { return nil })).
		Register("embedding", CheckerFunc(func(_ context.Context) error { return nil }))

	report := svc.Check(context.Background())
	if report.Status != Healthy {
		t.Fatalf("status = %s, want %s", report.Status, Healthy)
	}
	if len(report.Checks) != 2 {
		t.Fatalf("expected 2 checks, got %v", report.Checks)
	}
	for name, result := range report.Checks {
		if result != CheckOK {
			t.Errorf("check %s = %s", name, result)
		}
	}
}

func TestCheck_OneFailingDegrades(t *testing.T) {
	svc := New(time.Second).
		Register("database", CheckerFunc(func(_ context.Context) error { return nil })).
		Register("classifier", CheckerFunc(func(_ context.Context) error { return errors.New("down") }))

	report := svc.Check(context.Background())
	if report.Status != Degraded {
		t.Fatalf("status = %s, want %s", report.Status, Degraded)
	}
	if report.Checks["database"] != CheckOK {
		t.Errorf("database = %s", report.Checks["database"])
	}
	if report.Checks["classifier"] != CheckError {
		t.Errorf("classifier = %s", report.Checks["classifier"])
	}
}

func TestCheck_SlowCheckerBounded(t *testing.T) {
	svc := New(20 * time.Millisecond).
		Register("slow", CheckerFunc(func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		}))

	start := time.Now()
	report := svc.Check(context.Background())
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Fatalf("check took %v, timeout not applied", elapsed)
	}
	if report.Checks["slow"] != CheckError {
		t.Fatalf("slow = %s, want error", report.Checks["slow"])
	}
}

func TestCheck_ChecksRunInParallel(t *testing.T) {
	sleep := func(_ context.Context) error {
		time.Sleep(50 * time.Millisecond)
		return nil
	}
	svc := New(time.Second).
		Register("a", CheckerFunc(sleep)).
		Register("b", CheckerFunc(sleep)).
		Register("c", CheckerFunc(sleep)).
		Register("d", CheckerFunc(sleep))

	start := time.Now()
	svc.Check(context.Background())
	if elapsed := time.Since(start); elapsed > 150*time.Millisecond {
		t.Fatalf("4 checks took %v, expected parallel execution", elapsed)
	}
}

func TestRegister_IgnoresNil(t *testing.T) {
	svc := New(time.Second).Register("nil", nil)
	report := svc.Check(context.Background())
	if len(report.Checks) != 0 {
		t.Fatalf("expected no checks, got %v", report.Checks)
	}
	if report.Status != Healthy {
		t.Fatalf("status = %s", report.Status)
	}
}
