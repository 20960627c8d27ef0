package base

import (
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"sync/atomic"

	"github.com/corrix-dev/corrix/rpc/common"
	"github.com/corrix-dev/corrix/rpc/transport"
)

// -----------------------------------------------------------
// Interface Definitions for dependency injection
// -----------------------------------------------------------

// IServerConnector defines the interface for transport-specific server
// operations.
type IServerConnector interface {
	// Listen creates a listener and returns it
	Listen(config common.ServerConfig) (net.Listener, error)

	// GetName returns the name of the transport type (e.g., "unix", "tcp")
	GetName() string
}

// -----------------------------------------------------------
// Helper Types
// -----------------------------------------------------------

// serverTransport implements the core server transport functionality. Every
// accepted connection gets its own Session; inbound frames are delivered
// together with that session so the engine can route replies back to the
// right connection, including replies that arrive late from deferred
// handlers.
type serverTransport struct {
	connector IServerConnector
	config    common.ServerConfig

	mu       sync.RWMutex
	listener net.Listener
	recv     transport.ReceiveFunc

	closed atomic.Bool
}

// -----------------------------------------------------------
// Transport Factory Method (used for tcp, unix, etc.)
// -----------------------------------------------------------

// NewBaseServerTransport creates a new base server transport with the
// specified connector.
func NewBaseServerTransport(connector IServerConnector) transport.IServerTransport {
	return &serverTransport{connector: connector}
}

// --------------------------------------------------------------------------
// Interface Methods (docu see transport.IServerTransport)
// --------------------------------------------------------------------------

func (t *serverTransport) Deliver(recv transport.ReceiveFunc) {
	t.mu.Lock()
	t.recv = recv
	t.mu.Unlock()
}

func (t *serverTransport) Listen(config common.ServerConfig) error {
	t.config = config

	listener, err := t.connector.Listen(config)
	if err != nil {
		return fmt.Errorf("failed to create listener: %v", err)
	}

	t.mu.Lock()
	t.listener = listener
	t.mu.Unlock()

	Logger.Infof("starting %s server on %s", t.connector.GetName(), listener.Addr())

	for {
		conn, err := listener.Accept()
		if err != nil {
			if t.closed.Load() || errors.Is(err, net.ErrClosed) {
				return nil
			}
			Logger.Errorf("accept error: %v", err)
			continue
		}

		go t.handleConnection(conn)
	}
}

// Send routes a raw message back to the connection identified by the session.
func (t *serverTransport) Send(raw []byte, session any) error {
	sess, ok := session.(*transport.Session)
	if !ok {
		return fmt.Errorf("server transport requires a connection session, got %T", session)
	}
	return sess.Send(raw)
}

func (t *serverTransport) Addr() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.listener == nil {
		return ""
	}
	return t.listener.Addr().String()
}

func (t *serverTransport) Close() error {
	if !t.closed.CompareAndSwap(false, true) {
		return nil
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.listener != nil {
		return t.listener.Close()
	}
	return nil
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// handleConnection reads frames from one connection and delivers them with
// the connection's session until the peer goes away.
func (t *serverTransport) handleConnection(conn net.Conn) {
	defer conn.Close()

	// The session's write lock serializes replies from concurrent deferred
	// handlers on the shared connection.
	var writeMu sync.Mutex
	sess := transport.NewSession(conn.RemoteAddr().String(), func(raw []byte) error {
		writeMu.Lock()
		defer writeMu.Unlock()
		return writeFrame(conn, raw)
	})

	Logger.Debugf("accepted connection from %s", sess.Remote())

	for {
		raw, err := readFrame(conn)
		if err != nil {
			if err == io.EOF {
				Logger.Infof("connection closed by client %s", sess.Remote())
			} else if !t.closed.Load() {
				Logger.Errorf("error reading from %s: %v", sess.Remote(), err)
			}
			return
		}

		t.mu.RLock()
		recv := t.recv
		t.mu.RUnlock()

		if recv == nil {
			Logger.Warningf("dropping inbound message from %s: no receiver registered", sess.Remote())
			continue
		}
		recv(raw, sess)
	}
}
