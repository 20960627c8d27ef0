// Package engine implements the transport-agnostic RPC correlation engine:
// it turns a bidirectional stream of opaque encoded messages into method
// calls with replies, notifications and guarded dispatch.
//
// The package focuses on:
//   - Correlating outgoing requests with their replies via a pending table
//     keyed by a per-engine id counter, with timeout eviction by a lazy
//     background sweep
//   - Dispatching inbound requests and notifications to registered handlers
//     through an ordered guard pipeline
//   - Normalizing synchronous and deferred handler outcomes into reply
//     messages, and every failure into the fixed error catalogue
//
// Key Components:
//
//   - Engine / SessionEngine: The two public variants. Both compose the same
//     core; the SessionEngine additionally threads an opaque session value
//     (never serialized) from the transport boundary through guards and
//     handlers back to the reply path.
//
//   - Future: The settle-exactly-once outcome placeholder used both for
//     outgoing requests and for deferred handler results.
//
//   - pendingTable: The correlation table. Its sweeper stops itself once the
//     table drains and is restarted lazily by the next insertion, so an idle
//     engine schedules nothing.
//
//   - dispatcher / HandlerEntry: The method registry with its guard
//     pipeline. Guards come in three kinds (unconditional, params-only,
//     session-only) and run in strict registration order; the first failure
//     short-circuits the rest and the handler.
//
// Failure policy: failures while processing an inbound message become an
// ErrorResponse when the message was a Request and are dropped when it was a
// Notification. Locally initiated failures (timeout, teardown) only settle
// the caller's future and never touch the wire. Decode failures, whose id is
// unknown, are answered with an ErrorResponse carrying id -1.
//
// Concurrency: an inbound message is processed on the goroutine that calls
// Receive. The only background activity is the timeout sweep and the
// continuations observing deferred handler outcomes. Replies may arrive and
// be processed in any order relative to send order; matching is purely by id.
// Nothing bounds the number of outstanding requests.
package engine
