package engine

import (
	"sync"
	"time"

	"github.com/corrix-dev/corrix/rpc/common"
	"github.com/puzpuzpuz/xsync/v3"
)

// --------------------------------------------------------------------------
// Helper Types
// --------------------------------------------------------------------------

// pendingRequest is one in-flight outgoing request awaiting its reply.
type pendingRequest struct {
	fut     *Future
	created time.Time
}

// pendingTable tracks in-flight outgoing requests keyed by correlation id,
// matches replies to them, and evicts entries whose reply did not arrive
// within the configured timeout.
//
// The sweep runs as a background ticker that stops itself once the table
// drains and is restarted lazily by the next insertion, so an idle engine
// schedules nothing.
type pendingTable struct {
	entries  *xsync.MapOf[int64, pendingRequest]
	timeout  time.Duration
	interval time.Duration

	mu       sync.Mutex // guards sweeping / stopCh
	sweeping bool
	stopCh   chan struct{}
}

func newPendingTable(cfg common.EngineConfig) *pendingTable {
	return &pendingTable{
		entries:  xsync.NewMapOf[int64, pendingRequest](),
		timeout:  cfg.Timeout(),
		interval: cfg.SweepInterval(),
	}
}

// --------------------------------------------------------------------------
// Table Operations
// --------------------------------------------------------------------------

// add registers a new in-flight request and makes sure the sweeper runs.
func (t *pendingTable) add(id int64, fut *Future) {
	t.entries.Store(id, pendingRequest{fut: fut, created: time.Now()})
	t.ensureSweeper()
}

// resolve completes the pending request with a success result. Unmatched ids
// are ignored (the request may already have timed out).
func (t *pendingTable) resolve(id int64, result any) bool {
	entry, ok := t.entries.LoadAndDelete(id)
	if !ok {
		return false
	}
	entry.fut.Resolve(result)
	return true
}

// reject completes the pending request with an error. Unmatched ids are
// ignored.
func (t *pendingTable) reject(id int64, err *common.Error) bool {
	entry, ok := t.entries.LoadAndDelete(id)
	if !ok {
		return false
	}
	entry.fut.Reject(err)
	return true
}

// rejectAll removes every pending request and rejects it with the given
// error. This is the bulk teardown path; it also stops the sweeper.
func (t *pendingTable) rejectAll(err *common.Error) {
	t.entries.Range(func(id int64, _ pendingRequest) bool {
		if entry, ok := t.entries.LoadAndDelete(id); ok {
			entry.fut.Reject(err)
		}
		return true
	})

	t.mu.Lock()
	if t.sweeping {
		close(t.stopCh)
		t.sweeping = false
	}
	t.mu.Unlock()
}

// size returns the number of in-flight requests.
func (t *pendingTable) size() int {
	return t.entries.Size()
}

// --------------------------------------------------------------------------
// Timeout Sweep
// --------------------------------------------------------------------------

// ensureSweeper starts the sweep goroutine if it is not already running.
func (t *pendingTable) ensureSweeper() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.sweeping {
		return
	}
	t.sweeping = true
	t.stopCh = make(chan struct{})
	go t.sweep(t.stopCh)
}

// sweep evicts and rejects timed-out entries on every tick. It exits once the
// table is empty (a later insertion starts a fresh run) or when stop closes.
func (t *pendingTable) sweep(stop <-chan struct{}) {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			now := time.Now()
			t.entries.Range(func(id int64, entry pendingRequest) bool {
				if now.Sub(entry.created) >= t.timeout {
					if expired, ok := t.entries.LoadAndDelete(id); ok {
						metricTimeouts.Inc()
						Logger.Debugf("request %d timed out after %s", id, t.timeout)
						expired.fut.Reject(common.NewError(common.CodeRequestTimeout, ""))
					}
				}
				return true
			})

			// Shut the sweeper down once the table drains. The decision is
			// taken under the same lock as ensureSweeper so a concurrent
			// insertion either sees the running sweeper or starts a new one.
			t.mu.Lock()
			if t.entries.Size() == 0 {
				t.sweeping = false
				t.mu.Unlock()
				return
			}
			t.mu.Unlock()
		}
	}
}
