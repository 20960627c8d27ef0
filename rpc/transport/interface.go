package transport

import (
	"github.com/corrix-dev/corrix/rpc/common"
	"github.com/corrix-dev/corrix/rpc/engine"
)

// --------------------------------------------------------------------------
// Transport Interfaces
// --------------------------------------------------------------------------

// ReceiveFunc is the transport's entry point into an engine: it is called
// once per inbound raw message, together with the session value of the
// delivery (nil for client-side transports).
type ReceiveFunc func(raw []byte, session any)

// ITransport moves encoded envelopes between two engines. The transport is
// responsible for delivering each message unmodified; everything else
// (correlation, dispatch, replies) is the engine's business.
type ITransport interface {
	// Deliver registers the callback invoked for every inbound message
	Deliver(recv ReceiveFunc)
	// Send writes one raw message to the wire. For server-side transports
	// the session selects the connection the bytes belong to.
	Send(raw []byte, session any) error
	// Close closes the transport
	Close() error
}

// IClientTransport is the interface for calling-side transports.
type IClientTransport interface {
	ITransport
	// Connect establishes the transport with the given configuration
	Connect(config common.ClientConfig) error
}

// IServerTransport is the interface for serving-side transports.
type IServerTransport interface {
	ITransport
	// Listen starts the transport and blocks accepting connections
	Listen(config common.ServerConfig) error
	// Addr returns the bound listen address once Listen has started, and
	// an empty string before that
	Addr() string
}

// --------------------------------------------------------------------------
// Session
// --------------------------------------------------------------------------

// Session identifies one accepted connection on a serving peer. Server
// transports hand it to the engine on every inbound message; the engine
// threads it through guards and handlers and returns it with each reply so
// the transport can route the bytes back to the right connection. A Session
// is never serialized.
type Session struct {
	remote string
	send   func(raw []byte) error
}

// NewSession creates a session for one connection. The send function must be
// safe for concurrent use (deferred handler replies may race).
func NewSession(remote string, send func(raw []byte) error) *Session {
	return &Session{remote: remote, send: send}
}

// Remote returns the remote address of the connection.
func (s *Session) Remote() string {
	return s.remote
}

// Send writes one raw message to the session's connection.
func (s *Session) Send(raw []byte) error {
	return s.send(raw)
}

// --------------------------------------------------------------------------
// Engine Binding
// --------------------------------------------------------------------------

// Bind wires an Engine to a transport: inbound messages flow into the
// engine, outbound messages into the transport.
func Bind(e *engine.Engine, t ITransport) {
	t.Deliver(func(raw []byte, _ any) { e.Receive(raw) })
	e.OnSend(func(raw []byte) error { return t.Send(raw, nil) })
}

// BindSession wires a SessionEngine to a transport, threading the per-message
// session value in both directions.
func BindSession(e *engine.SessionEngine, t ITransport) {
	t.Deliver(e.Receive)
	e.OnSend(t.Send)
}
