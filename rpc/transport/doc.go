// Package transport defines the boundary between the correlation engine and
// whatever actually moves bytes. A transport delivers inbound raw messages
// into an engine (Deliver) and writes outbound raw messages to the wire
// (Send); everything in between (correlation, dispatch, guards, replies)
// belongs to the engine.
//
// Implementations:
//
//   - base: shared framed-stream machinery (length-prefixed frames over a
//     net.Conn) with connector injection, used by the tcp and unix packages.
//     Server connections each carry a Session so replies, including late
//     replies from deferred handlers, reach the right connection.
//
//   - tcp, unix: thin connectors plugged into base.
//
//   - pipe: in-process paired transport for tests and same-process wiring.
//
// There is deliberately no HTTP transport: strict request/reply HTTP cannot
// carry server-initiated notifications or replies that settle after the
// exchange ended, both of which this boundary requires.
package transport
