package common

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// --------------------------------------------------------------------------
// Engine configuration struct
// --------------------------------------------------------------------------

// Default timing values in milliseconds.
const (
	DefaultTimeoutMs       = 5000
	DefaultSweepIntervalMs = 100
)

// EngineConfig holds the configuration of one engine instance.
type EngineConfig struct {
	// TimeoutMs is the per-request timeout. A request whose reply has not
	// arrived within this window is rejected with CodeRequestTimeout.
	TimeoutMs int64

	// SweepIntervalMs is the interval of the background sweep that evicts
	// timed-out pending requests.
	SweepIntervalMs int64
}

// DefaultEngineConfig returns the engine defaults (5s timeout, 100ms sweep).
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		TimeoutMs:       DefaultTimeoutMs,
		SweepIntervalMs: DefaultSweepIntervalMs,
	}
}

// Timeout returns the request timeout as a duration, falling back to the
// default for unset or invalid values.
func (c EngineConfig) Timeout() time.Duration {
	if c.TimeoutMs <= 0 {
		return DefaultTimeoutMs * time.Millisecond
	}
	return time.Duration(c.TimeoutMs) * time.Millisecond
}

// SweepInterval returns the sweep interval as a duration, falling back to the
// default for unset or invalid values.
func (c EngineConfig) SweepInterval() time.Duration {
	if c.SweepIntervalMs <= 0 {
		return DefaultSweepIntervalMs * time.Millisecond
	}
	return time.Duration(c.SweepIntervalMs) * time.Millisecond
}

// --------------------------------------------------------------------------
// Transport configuration structs
// --------------------------------------------------------------------------

// SocketConf holds socket buffer tuning shared by the stream transports.
type SocketConf struct {
	WriteBufferSize int
	ReadBufferSize  int
}

// TCPConf holds TCP-specific socket options.
type TCPConf struct {
	TCPNoDelay      bool
	TCPKeepAliveSec int
	TCPLingerSec    int
}

// ServerConfig holds all configuration parameters for a serving peer.
type ServerConfig struct {
	// Endpoint is the address to listen on (host:port or a socket path).
	Endpoint string

	// Engine is the embedded engine configuration.
	Engine EngineConfig

	// Socket tuning
	Socket SocketConf
	TCP    TCPConf

	// MetricsEndpoint is the optional address of the Prometheus metrics
	// listener. Empty disables metrics serving.
	MetricsEndpoint string

	// LogLevel is the level at which logs are output (debug, info, warn, error).
	LogLevel string
}

// String returns a formatted string representation of the configuration.
func (c *ServerConfig) String() string {
	var sb strings.Builder

	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	addSection("RPC Server")
	addField("Endpoint", c.Endpoint)
	addField("Request Timeout", fmt.Sprintf("%d ms", c.Engine.TimeoutMs))
	addField("Sweep Interval", fmt.Sprintf("%d ms", c.Engine.SweepIntervalMs))

	addSection("Logging")
	addField("Log Level", c.LogLevel)

	if c.MetricsEndpoint != "" {
		addSection("Metrics")
		addField("Endpoint", c.MetricsEndpoint)
	}

	return sb.String()
}

// --------------------------------------------------------------------------
// Client configuration struct
// --------------------------------------------------------------------------

// ClientConfig holds all configuration parameters for a calling peer.
type ClientConfig struct {
	// Endpoint is the address of the server (host:port or a socket path).
	Endpoint string

	// Engine is the embedded engine configuration.
	Engine EngineConfig

	// Socket tuning
	Socket SocketConf
	TCP    TCPConf
}

// String returns a formatted string representation of the client configuration.
func (c *ClientConfig) String() string {
	var sb strings.Builder

	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	addSection("Client Configuration")
	addField("Endpoint", c.Endpoint)
	addField("Request Timeout", strconv.FormatInt(c.Engine.TimeoutMs, 10)+" ms")

	return sb.String()
}
