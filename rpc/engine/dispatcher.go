package engine

import (
	"sync"

	"github.com/corrix-dev/corrix/rpc/common"
	"github.com/puzpuzpuz/xsync/v3"
)

// --------------------------------------------------------------------------
// Handler and Guard Types
// --------------------------------------------------------------------------

// HandlerFunc is the session-aware handler signature used internally by the
// dispatcher. Engines without session support wrap their handlers into this
// shape with a nil session. Returning an error produces an
// APPLICATION_ERROR reply for requests; returning a *Future defers the reply
// until the future settles.
type HandlerFunc func(params []any, session any) (any, error)

// guardKind tags the three guard variants.
type guardKind uint8

const (
	guardUnconditional guardKind = iota // receives params and session
	guardParamsOnly                     // receives only params
	guardSessionOnly                    // receives only the session, skipped when none is supplied
)

// guard is one pre-execution check. Exactly one of the three function slots
// is set, selected by kind.
type guard struct {
	kind      guardKind
	full      func(params []any, session any) error
	paramsFn  func(params []any) error
	sessionFn func(session any) error
}

// HandlerEntry is the registration record for one method: the handler plus
// its ordered guard pipeline. The handle returned by Handle is used to attach
// guards; attachment is chainable.
type HandlerEntry struct {
	method string
	fn     HandlerFunc

	mu     sync.Mutex
	guards []guard
}

// Guard attaches an unconditional guard receiving params and session.
func (e *HandlerEntry) Guard(fn func(params []any, session any) error) *HandlerEntry {
	return e.attach(guard{kind: guardUnconditional, full: fn})
}

// GuardParams attaches a guard receiving only the call parameters.
func (e *HandlerEntry) GuardParams(fn func(params []any) error) *HandlerEntry {
	return e.attach(guard{kind: guardParamsOnly, paramsFn: fn})
}

// GuardSession attaches a guard receiving only the session value. It runs
// only on deliveries that actually carry a session.
func (e *HandlerEntry) GuardSession(fn func(session any) error) *HandlerEntry {
	return e.attach(guard{kind: guardSessionOnly, sessionFn: fn})
}

func (e *HandlerEntry) attach(g guard) *HandlerEntry {
	e.mu.Lock()
	e.guards = append(e.guards, g)
	e.mu.Unlock()
	return e
}

// runGuards executes the guard pipeline in registration order. The first
// guard that fails aborts the rest and the handler; its error comes back
// wrapped with CodeGuardError.
func (e *HandlerEntry) runGuards(params []any, session any) *common.Error {
	e.mu.Lock()
	guards := e.guards
	e.mu.Unlock()

	for _, g := range guards {
		var err error
		switch g.kind {
		case guardUnconditional:
			err = g.full(params, session)
		case guardParamsOnly:
			err = g.paramsFn(params)
		case guardSessionOnly:
			if session == nil {
				continue
			}
			err = g.sessionFn(session)
		}
		if err != nil {
			return common.NewErrorDetail(common.CodeGuardError, "", err.Error())
		}
	}
	return nil
}

// --------------------------------------------------------------------------
// Dispatcher
// --------------------------------------------------------------------------

// dispatcher maps inbound method names to their registered entries. Lookup is
// a plain map access, no reflection.
type dispatcher struct {
	entries *xsync.MapOf[string, *HandlerEntry]
}

func newDispatcher() *dispatcher {
	return &dispatcher{entries: xsync.NewMapOf[string, *HandlerEntry]()}
}

// register stores a new entry for the method, replacing any prior entry, and
// returns the handle for attaching guards.
func (d *dispatcher) register(method string, fn HandlerFunc) *HandlerEntry {
	entry := &HandlerEntry{method: method, fn: fn}
	d.entries.Store(method, entry)
	return entry
}

// lookup returns the entry for a method.
func (d *dispatcher) lookup(method string) (*HandlerEntry, bool) {
	return d.entries.Load(method)
}

// clear removes every registration. Used on teardown.
func (d *dispatcher) clear() {
	d.entries.Range(func(method string, _ *HandlerEntry) bool {
		d.entries.Delete(method)
		return true
	})
}
