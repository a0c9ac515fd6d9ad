package hooks

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/httpeek/httpeek/pkg/probe"
)

// testOTelOptions returns OTelOptions configured for fast test execution.
func testOTelOptions() OTelOptions {
	return OTelOptions{
		Endpoint:          "localhost:4317",
		Insecure:          true,
		ShutdownTimeout:   100 * time.Millisecond,
		ConnectionTimeout: 100 * time.Millisecond,
	}
}

// skipIfNoOTLPCollector skips the test if no OTLP collector is listening.
// This prevents test failures when running without infrastructure.
func skipIfNoOTLPCollector(t *testing.T) {
	t.Helper()
	conn, err := net.DialTimeout("tcp", "localhost:4317", 100*time.Millisecond)
	if err != nil {
		t.Skipf("Skipping: no OTLP collector at localhost:4317: %v", err)
	}
	conn.Close()
}

func TestOTelHook_NewWithDefaults(t *testing.T) {
	skipIfNoOTLPCollector(t)

	hook, err := NewOTelHook(testOTelOptions())
	if err != nil {
		t.Fatalf("NewOTelHook failed: %v", err)
	}
	defer hook.Close()

	if hook.ServiceName() != "httpeek" {
		t.Errorf("expected default service name 'httpeek', got %q", hook.ServiceName())
	}
	if hook.Endpoint() != "localhost:4317" {
		t.Errorf("expected endpoint 'localhost:4317', got %q", hook.Endpoint())
	}
}

func TestOTelHook_CustomServiceName(t *testing.T) {
	skipIfNoOTLPCollector(t)

	opts := testOTelOptions()
	opts.ServiceName = "custom-prober"
	hook, err := NewOTelHook(opts)
	if err != nil {
		t.Fatalf("NewOTelHook failed: %v", err)
	}
	defer hook.Close()

	if hook.ServiceName() != "custom-prober" {
		t.Errorf("expected service name 'custom-prober', got %q", hook.ServiceName())
	}
}

func TestOTelHook_FullScanLifecycle(t *testing.T) {
	skipIfNoOTLPCollector(t)

	hook, err := NewOTelHook(testOTelOptions())
	if err != nil {
		t.Fatalf("NewOTelHook failed: %v", err)
	}
	defer hook.Close()

	hook.Start(context.Background(), "scan-otel-test", 3)

	if err := hook.WriteResult(makeProbeResult("https://example.com", 200)); err != nil {
		t.Fatalf("WriteResult failed: %v", err)
	}

	down := &probe.Result{
		URL:          "https://down.example",
		Outcome:      probe.OutcomeTransientExhausted,
		AttemptsUsed: 3,
		DurationMS:   1500,
		Err:          "connection refused",
	}
	if err := hook.WriteResult(down); err != nil {
		t.Fatalf("WriteResult failed: %v", err)
	}

	hook.Finish(3, 1, 0, 1, 0, 2*time.Second)

	if err := hook.Flush(); err != nil {
		t.Logf("Flush returned %v (collector may drop batches)", err)
	}
}

func TestOTelHook_WriteResultBeforeStart(t *testing.T) {
	skipIfNoOTLPCollector(t)

	hook, err := NewOTelHook(testOTelOptions())
	if err != nil {
		t.Fatalf("NewOTelHook failed: %v", err)
	}
	defer hook.Close()

	// No root span yet; results must be dropped, not panic.
	if err := hook.WriteResult(makeProbeResult("https://example.com", 200)); err != nil {
		t.Errorf("WriteResult before Start returned error: %v", err)
	}
}

func TestOTelHook_StartIsIdempotent(t *testing.T) {
	skipIfNoOTLPCollector(t)

	hook, err := NewOTelHook(testOTelOptions())
	if err != nil {
		t.Fatalf("NewOTelHook failed: %v", err)
	}
	defer hook.Close()

	ctx := context.Background()
	hook.Start(ctx, "scan-first", 10)
	hook.Start(ctx, "scan-second", 20)

	if hook.scanID != "scan-first" {
		t.Errorf("second Start should not replace the active span, scanID = %q", hook.scanID)
	}
}

func TestOTelHook_CloseIdempotent(t *testing.T) {
	skipIfNoOTLPCollector(t)

	hook, err := NewOTelHook(testOTelOptions())
	if err != nil {
		t.Fatalf("NewOTelHook failed: %v", err)
	}

	if err := hook.Close(); err != nil {
		t.Fatalf("first Close failed: %v", err)
	}
	if err := hook.Close(); err != nil {
		t.Fatalf("second Close failed: %v", err)
	}
}

func TestOTelHook_IgnoresResultsAfterClose(t *testing.T) {
	skipIfNoOTLPCollector(t)

	hook, err := NewOTelHook(testOTelOptions())
	if err != nil {
		t.Fatalf("NewOTelHook failed: %v", err)
	}

	hook.Start(context.Background(), "scan-closed", 1)
	hook.Close()

	if err := hook.WriteResult(makeProbeResult("https://example.com", 200)); err != nil {
		t.Errorf("WriteResult after Close returned error: %v", err)
	}
}
