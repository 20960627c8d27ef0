package pipe

import (
	"bytes"
	"testing"
	"time"

	"github.com/corrix-dev/corrix/rpc/common"
	"github.com/corrix-dev/corrix/rpc/engine"
	"github.com/corrix-dev/corrix/rpc/serializer"
	"github.com/corrix-dev/corrix/rpc/transport"
)

// TestPipeDelivery tests that raw messages cross from one end to the other
func TestPipeDelivery(t *testing.T) {
	a, b := New()
	defer a.Close()

	received := make(chan []byte, 1)
	b.Deliver(func(raw []byte, _ any) {
		received <- raw
	})

	want := []byte("hello")
	if err := a.Send(want, nil); err != nil {
		t.Fatalf("send failed: %v", err)
	}

	select {
	case got := <-received:
		if !bytes.Equal(got, want) {
			t.Errorf("expected %q, got %q", want, got)
		}
	case <-time.After(time.Second):
		t.Fatal("message was not delivered")
	}
}

// TestPipeEngines tests a full request/reply cycle between two engines bound
// to the two ends of a pipe
func TestPipeEngines(t *testing.T) {
	a, b := New()
	defer a.Close()

	client := engine.New(serializer.NewJSONSerializer(), common.EngineConfig{})
	server := engine.New(serializer.NewJSONSerializer(), common.EngineConfig{})
	defer client.Close()
	defer server.Close()

	server.Handle("upper", func(params []any) (any, error) {
		return params[0], nil
	})

	transport.Bind(server, b)
	transport.Bind(client, a)

	result, err := client.Request("upper", "hi").Result()
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if result != "hi" {
		t.Errorf("expected 'hi', got %v", result)
	}
}

// TestPipeClose tests that closing either end closes both
func TestPipeClose(t *testing.T) {
	a, b := New()

	if err := a.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	if err := a.Send([]byte("x"), nil); err == nil {
		t.Error("send on closed pipe must fail")
	}
	if err := b.Send([]byte("x"), nil); err == nil {
		t.Error("send on peer of closed pipe must fail")
	}

	// closing again is a no-op
	if err := b.Close(); err != nil {
		t.Errorf("second close failed: %v", err)
	}
}
