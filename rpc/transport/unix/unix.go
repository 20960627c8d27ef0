// Package unix provides the Unix domain socket transport. It reuses the base
// transport and differs from TCP only in how connections are established.
package unix

import (
	"net"
	"os"

	"github.com/corrix-dev/corrix/rpc/common"
	"github.com/corrix-dev/corrix/rpc/transport"
	"github.com/corrix-dev/corrix/rpc/transport/base"
)

// clientConnector implements the IClientConnector interface for Unix sockets
type clientConnector struct{}

func (c *clientConnector) GetName() string {
	return "unix"
}

func (c *clientConnector) Connect(endpoint string) (net.Conn, error) {
	return net.Dial("unix", endpoint)
}

func (c *clientConnector) UpgradeConnection(conn net.Conn, config common.ClientConfig) error {
	uc, ok := conn.(*net.UnixConn)
	if !ok {
		return nil
	}
	if config.Socket.WriteBufferSize > 0 {
		if err := uc.SetWriteBuffer(config.Socket.WriteBufferSize); err != nil {
			return err
		}
	}
	if config.Socket.ReadBufferSize > 0 {
		if err := uc.SetReadBuffer(config.Socket.ReadBufferSize); err != nil {
			return err
		}
	}
	return nil
}

// serverConnector implements the IServerConnector interface for Unix sockets
type serverConnector struct{}

func (c *serverConnector) GetName() string {
	return "unix"
}

func (c *serverConnector) Listen(config common.ServerConfig) (net.Listener, error) {
	// Remove a stale socket file from a previous run.
	if _, err := os.Stat(config.Endpoint); err == nil {
		if err := os.Remove(config.Endpoint); err != nil {
			return nil, err
		}
	}
	return net.Listen("unix", config.Endpoint)
}

// NewUnixClientTransport creates a new Unix socket client transport
func NewUnixClientTransport() transport.IClientTransport {
	return base.NewBaseClientTransport(&clientConnector{})
}

// NewUnixServerTransport creates a new Unix socket server transport
func NewUnixServerTransport() transport.IServerTransport {
	return base.NewBaseServerTransport(&serverConnector{})
}
