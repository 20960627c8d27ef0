package engine

import (
	"errors"
	"strings"
	"testing"
)

// TestDispatcherRegisterAndLookup tests registration and lookup of handlers
func TestDispatcherRegisterAndLookup(t *testing.T) {
	d := newDispatcher()

	d.register("ping", func(_ []any, _ any) (any, error) { return "pong", nil })

	entry, ok := d.lookup("ping")
	if !ok {
		t.Fatal("expected to find registered handler")
	}
	result, err := entry.fn(nil, nil)
	if err != nil || result != "pong" {
		t.Errorf("unexpected handler result: %v, %v", result, err)
	}

	if _, ok := d.lookup("missing"); ok {
		t.Error("lookup of unregistered method must fail")
	}
}

// TestDispatcherReplacement tests that re-registering a method replaces the
// prior handler and its guards
func TestDispatcherReplacement(t *testing.T) {
	d := newDispatcher()

	d.register("m", func(_ []any, _ any) (any, error) { return "old", nil }).
		GuardParams(func(_ []any) error { return errors.New("always") })

	d.register("m", func(_ []any, _ any) (any, error) { return "new", nil })

	entry, _ := d.lookup("m")
	if err := entry.runGuards(nil, nil); err != nil {
		t.Errorf("replaced handler must not inherit guards: %v", err)
	}
	result, _ := entry.fn(nil, nil)
	if result != "new" {
		t.Errorf("expected 'new', got %v", result)
	}
}

// TestGuardOrder tests that guards run in registration order and the first
// failure short-circuits the rest
func TestGuardOrder(t *testing.T) {
	d := newDispatcher()

	var order []string
	entry := d.register("m", func(_ []any, _ any) (any, error) { return nil, nil })
	entry.GuardParams(func(_ []any) error {
		order = append(order, "first")
		return nil
	}).Guard(func(_ []any, _ any) error {
		order = append(order, "second")
		return errors.New("denied")
	}).GuardParams(func(_ []any) error {
		order = append(order, "third")
		return nil
	})

	err := entry.runGuards(nil, nil)
	if err == nil {
		t.Fatal("expected guard failure")
	}
	if err.Detail != "denied" {
		t.Errorf("expected detail 'denied', got %q", err.Detail)
	}
	if strings.Join(order, ",") != "first,second" {
		t.Errorf("unexpected guard order: %v", order)
	}
}

// TestSessionGuardSkipped tests that session guards only run on deliveries
// that carry a session
func TestSessionGuardSkipped(t *testing.T) {
	d := newDispatcher()

	called := false
	entry := d.register("m", func(_ []any, _ any) (any, error) { return nil, nil })
	entry.GuardSession(func(session any) error {
		called = true
		if session != "user-1" {
			return errors.New("unauthorized")
		}
		return nil
	})

	// no session: the guard must be skipped entirely
	if err := entry.runGuards(nil, nil); err != nil {
		t.Errorf("session guard must be skipped without session: %v", err)
	}
	if called {
		t.Error("session guard must not run without a session")
	}

	// matching session: the guard runs and passes
	if err := entry.runGuards(nil, "user-1"); err != nil {
		t.Errorf("unexpected guard failure: %v", err)
	}
	if !called {
		t.Error("session guard must run with a session")
	}

	// foreign session: the guard rejects
	err := entry.runGuards(nil, "user-2")
	if err == nil {
		t.Fatal("expected guard failure")
	}
	if !strings.Contains(err.Detail, "unauthorized") {
		t.Errorf("expected detail to contain 'unauthorized', got %q", err.Detail)
	}
}

// TestDispatcherClear tests removal of all registrations
func TestDispatcherClear(t *testing.T) {
	d := newDispatcher()
	d.register("a", func(_ []any, _ any) (any, error) { return nil, nil })
	d.register("b", func(_ []any, _ any) (any, error) { return nil, nil })

	d.clear()

	if _, ok := d.lookup("a"); ok {
		t.Error("expected 'a' to be removed")
	}
	if _, ok := d.lookup("b"); ok {
		t.Error("expected 'b' to be removed")
	}
}
