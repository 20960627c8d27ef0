package engine

import (
	"testing"
	"time"

	"github.com/corrix-dev/corrix/rpc/common"
)

// TestFutureResolve tests that a resolved future yields its value
func TestFutureResolve(t *testing.T) {
	fut := NewFuture()
	if fut.Settled() {
		t.Fatal("new future must not be settled")
	}

	fut.Resolve("ok")

	if !fut.Settled() {
		t.Fatal("future must be settled after Resolve")
	}
	value, err := fut.Result()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if value != "ok" {
		t.Errorf("expected 'ok', got %v", value)
	}
}

// TestFutureReject tests that a rejected future yields its error
func TestFutureReject(t *testing.T) {
	fut := NewFuture()
	fut.Reject(common.NewError(common.CodeRequestTimeout, ""))

	_, err := fut.Result()
	if err == nil {
		t.Fatal("expected error")
	}
	if e := common.AsError(err, common.CodeInternalError); e.Code != common.CodeRequestTimeout {
		t.Errorf("expected code %d, got %d", common.CodeRequestTimeout, e.Code)
	}
}

// TestFutureSettlesOnce tests that only the first settlement wins
func TestFutureSettlesOnce(t *testing.T) {
	fut := NewFuture()
	fut.Resolve("first")
	fut.Resolve("second")
	fut.Reject(common.NewError(common.CodeInternalError, ""))

	value, err := fut.Result()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if value != "first" {
		t.Errorf("expected 'first', got %v", value)
	}
}

// TestFutureDone tests that the done channel closes on settlement
func TestFutureDone(t *testing.T) {
	fut := NewFuture()

	select {
	case <-fut.Done():
		t.Fatal("done channel must not be closed before settlement")
	default:
	}

	go func() {
		time.Sleep(10 * time.Millisecond)
		fut.Resolve(nil)
	}()

	select {
	case <-fut.Done():
	case <-time.After(time.Second):
		t.Fatal("done channel did not close")
	}
}

// TestFutureResultBlocks tests that Result waits for settlement
func TestFutureResultBlocks(t *testing.T) {
	fut := NewFuture()

	go func() {
		time.Sleep(10 * time.Millisecond)
		fut.Resolve(float64(42))
	}()

	value, err := fut.Result()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if value != float64(42) {
		t.Errorf("expected 42, got %v", value)
	}
}
