package base

import (
	"fmt"
	"net"
	"sync"
	"sync/atomic"

	"github.com/corrix-dev/corrix/rpc/common"
	"github.com/corrix-dev/corrix/rpc/transport"
	"github.com/lni/dragonboat/v4/logger"
)

var Logger = logger.GetLogger("transport")

// -----------------------------------------------------------
// Interface Definitions for dependency injection
// -----------------------------------------------------------

// IClientConnector defines the interface for transport-specific connection
// operations.
type IClientConnector interface {
	// Connect establishes a single connection to the endpoint
	Connect(endpoint string) (net.Conn, error)

	// GetName returns the name of the transport type (e.g., "unix", "tcp")
	GetName() string

	// UpgradeConnection applies protocol-specific settings to an established connection
	UpgradeConnection(conn net.Conn, config common.ClientConfig) error
}

// -----------------------------------------------------------
// Helper Types
// -----------------------------------------------------------

// clientTransport implements the core client transport functionality
// independent of the specific transport medium (unix, tcp, etc.). It keeps a
// single framed connection with one read loop delivering inbound messages;
// request/reply pairing happens in the engine, not here.
type clientTransport struct {
	connector IClientConnector
	config    common.ClientConfig

	conn    net.Conn
	writeMu sync.Mutex // serializes frame writes on the shared connection

	recvMu sync.RWMutex
	recv   transport.ReceiveFunc

	closed atomic.Bool
}

// -----------------------------------------------------------
// Transport Factory Method (used for tcp, unix, etc.)
// -----------------------------------------------------------

// NewBaseClientTransport creates a new base client transport with the
// specified connector.
func NewBaseClientTransport(connector IClientConnector) transport.IClientTransport {
	return &clientTransport{connector: connector}
}

// --------------------------------------------------------------------------
// Interface Methods (docu see transport.IClientTransport)
// --------------------------------------------------------------------------

func (t *clientTransport) Connect(config common.ClientConfig) error {
	if config.Endpoint == "" {
		return fmt.Errorf("no endpoint provided")
	}
	t.config = config

	conn, err := t.connector.Connect(config.Endpoint)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %v", config.Endpoint, err)
	}

	if err := t.connector.UpgradeConnection(conn, config); err != nil {
		conn.Close()
		return fmt.Errorf("failed to upgrade connection to %s: %v", config.Endpoint, err)
	}

	t.conn = conn
	Logger.Infof("connected to %s using %s transport", config.Endpoint, t.connector.GetName())

	go t.readLoop()
	return nil
}

func (t *clientTransport) Deliver(recv transport.ReceiveFunc) {
	t.recvMu.Lock()
	t.recv = recv
	t.recvMu.Unlock()
}

func (t *clientTransport) Send(raw []byte, _ any) error {
	if t.closed.Load() {
		return fmt.Errorf("transport is closed")
	}
	if t.conn == nil {
		return fmt.Errorf("transport is not connected")
	}

	t.writeMu.Lock()
	defer t.writeMu.Unlock()
	return writeFrame(t.conn, raw)
}

func (t *clientTransport) Close() error {
	if !t.closed.CompareAndSwap(false, true) {
		return nil
	}
	if t.conn != nil {
		return t.conn.Close()
	}
	return nil
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// readLoop reads frames in a loop and hands them to the registered receiver.
// Reads must stay on a single goroutine to preserve frame boundaries.
func (t *clientTransport) readLoop() {
	for {
		raw, err := readFrame(t.conn)
		if err != nil {
			if !t.closed.Load() {
				Logger.Errorf("connection to %s broken: %v", t.config.Endpoint, err)
			}
			return
		}

		t.recvMu.RLock()
		recv := t.recv
		t.recvMu.RUnlock()

		if recv == nil {
			Logger.Warningf("dropping inbound message: no receiver registered")
			continue
		}
		recv(raw, nil)
	}
}
