package tcp

import (
	"fmt"
	"net"
	"time"

	"github.com/corrix-dev/corrix/rpc/common"
	"github.com/corrix-dev/corrix/rpc/transport"
	"github.com/corrix-dev/corrix/rpc/transport/base"
)

// clientConnector implements the IClientConnector interface for TCP sockets
type clientConnector struct{}

// --------------------------------------------------------------------------
// Interface Methods (docu see base.IClientConnector)
// --------------------------------------------------------------------------

func (c *clientConnector) GetName() string {
	return "tcp"
}

func (c *clientConnector) Connect(endpoint string) (net.Conn, error) {
	return net.Dial("tcp", endpoint)
}

func (c *clientConnector) UpgradeConnection(conn net.Conn, config common.ClientConfig) error {
	tcpConn, ok := conn.(*net.TCPConn)
	if !ok {
		return fmt.Errorf("expected tcp connection, got %T", conn)
	}
	return applyTCPConf(tcpConn, config.Socket, config.TCP)
}

// --------------------------------------------------------------------------
// Client Transport Factory Method
// --------------------------------------------------------------------------

// NewTCPClientTransport creates a new TCP client transport
func NewTCPClientTransport() transport.IClientTransport {
	return base.NewBaseClientTransport(&clientConnector{})
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// applyTCPConf applies socket buffer and TCP tuning to a connection.
func applyTCPConf(conn *net.TCPConn, socket common.SocketConf, tcp common.TCPConf) error {
	if err := conn.SetNoDelay(tcp.TCPNoDelay); err != nil {
		return err
	}
	if tcp.TCPKeepAliveSec > 0 {
		if err := conn.SetKeepAlive(true); err != nil {
			return err
		}
		if err := conn.SetKeepAlivePeriod(time.Duration(tcp.TCPKeepAliveSec) * time.Second); err != nil {
			return err
		}
	}
	if tcp.TCPLingerSec > 0 {
		if err := conn.SetLinger(tcp.TCPLingerSec); err != nil {
			return err
		}
	}
	if socket.WriteBufferSize > 0 {
		if err := conn.SetWriteBuffer(socket.WriteBufferSize); err != nil {
			return err
		}
	}
	if socket.ReadBufferSize > 0 {
		if err := conn.SetReadBuffer(socket.ReadBufferSize); err != nil {
			return err
		}
	}
	return nil
}
