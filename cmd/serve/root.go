package serve

import (
	"fmt"
	"net/http"
	"time"

	"github.com/VictoriaMetrics/metrics"
	cmdUtil "github.com/corrix-dev/corrix/cmd/util"
	"github.com/corrix-dev/corrix/rpc/common"
	"github.com/corrix-dev/corrix/rpc/engine"
	"github.com/corrix-dev/corrix/rpc/transport"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	serveCmdConfig = &common.ServerConfig{}
	ServeCmd       = &cobra.Command{
		Use:     "serve",
		Short:   "Start the corrix diagnostic server",
		Long:    `Start a corrix server exposing a set of diagnostic methods (ping, echo, sum, sleep). The configuration can be set via command line flags or environment variables. The format of the environment variables is CORRIX_<flag> (e.g. CORRIX_TIMEOUT_MS=5000)`,
		PreRunE: processConfig,
		RunE:    run,
	}
)

func init() {
	// add flags
	key := "endpoint"
	ServeCmd.PersistentFlags().String(key, "0.0.0.0:7700", cmdUtil.WrapString("The address on which the server will listen (host:port for tcp, a socket path for unix)"))

	key = "timeout-ms"
	ServeCmd.PersistentFlags().Int64(key, common.DefaultTimeoutMs, cmdUtil.WrapString("Per-request timeout in milliseconds"))

	key = "sweep-interval-ms"
	ServeCmd.PersistentFlags().Int64(key, common.DefaultSweepIntervalMs, cmdUtil.WrapString("Interval of the pending-request timeout sweep in milliseconds"))

	key = "metrics-endpoint"
	ServeCmd.PersistentFlags().String(key, "", cmdUtil.WrapString("If set, an HTTP listener serving prometheus metrics on /metrics is started on this address (e.g. localhost:9100)"))

	key = "log-level"
	ServeCmd.PersistentFlags().String(key, "info", cmdUtil.WrapString("LogLevel is the level at which logs will be output (debug, info, warn, error)"))

	key = "transport-write-buffer"
	ServeCmd.PersistentFlags().Int(key, 0, cmdUtil.WrapString("The size of the socket write buffer (in KB, 0 keeps the OS default)"))

	key = "transport-read-buffer"
	ServeCmd.PersistentFlags().Int(key, 0, cmdUtil.WrapString("The size of the socket read buffer (in KB, 0 keeps the OS default)"))

	key = "transport-tcp-nodelay"
	ServeCmd.PersistentFlags().Bool(key, true, cmdUtil.WrapString("Whether to enable TCP_NODELAY (tcp transport only)"))

	key = "transport-tcp-keepalive"
	ServeCmd.PersistentFlags().Int(key, 0, cmdUtil.WrapString("The keepalive interval in seconds (tcp transport only)"))

	key = "transport-tcp-linger"
	ServeCmd.PersistentFlags().Int(key, 0, cmdUtil.WrapString("The linger time in seconds (tcp transport only)"))
}

// processConfig reads the configuration from the command line flags and environment variables and converts them to the server configuration
func processConfig(cmd *cobra.Command, _ []string) error {
	// bind the flags to viper
	if err := cmdUtil.BindCommandFlags(cmd); err != nil {
		return err
	}

	serveCmdConfig.Endpoint = viper.GetString("endpoint")
	serveCmdConfig.Engine = cmdUtil.GetEngineConfig()
	serveCmdConfig.Socket = common.SocketConf{
		WriteBufferSize: viper.GetInt("transport-write-buffer") * 1024,
		ReadBufferSize:  viper.GetInt("transport-read-buffer") * 1024,
	}
	serveCmdConfig.TCP = common.TCPConf{
		TCPNoDelay:      viper.GetBool("transport-tcp-nodelay"),
		TCPKeepAliveSec: viper.GetInt("transport-tcp-keepalive"),
		TCPLingerSec:    viper.GetInt("transport-tcp-linger"),
	}
	serveCmdConfig.MetricsEndpoint = viper.GetString("metrics-endpoint")
	serveCmdConfig.LogLevel = viper.GetString("log-level")

	return nil
}

// run starts the corrix server
func run(_ *cobra.Command, _ []string) error {
	common.InitLoggers(serveCmdConfig.LogLevel)

	// parse the serializer
	s, err := cmdUtil.GetSerializer()
	if err != nil {
		return err
	}

	// parse the transport
	t, err := cmdUtil.GetServerTransport()
	if err != nil {
		return err
	}

	// create the engine and register the diagnostic methods
	e := engine.NewSessionEngine(s, serveCmdConfig.Engine)
	registerDiagnostics(e)
	transport.BindSession(e, t)

	// optionally expose prometheus metrics
	if serveCmdConfig.MetricsEndpoint != "" {
		go serveMetrics(serveCmdConfig.MetricsEndpoint)
	}

	engine.Logger.Infof("starting server (config: %s)", serveCmdConfig)
	return t.Listen(*serveCmdConfig)
}

// registerDiagnostics adds the built-in methods to the engine
func registerDiagnostics(e *engine.SessionEngine) {
	e.Handle("ping", func(_ []any, _ any) (any, error) {
		return "pong", nil
	})

	e.Handle("echo", func(params []any, _ any) (any, error) {
		return params, nil
	})

	e.Handle("sum", func(params []any, _ any) (any, error) {
		var total float64
		for i, p := range params {
			n, ok := p.(float64)
			if !ok {
				return nil, fmt.Errorf("argument %d is not a number", i)
			}
			total += n
		}
		return total, nil
	})

	// sleep resolves its result from a timer goroutine
	e.Handle("sleep", func(params []any, _ any) (any, error) {
		if len(params) != 1 {
			return nil, fmt.Errorf("sleep expects exactly one argument")
		}
		ms, ok := params[0].(float64)
		if !ok || ms < 0 {
			return nil, fmt.Errorf("sleep expects a non-negative number of milliseconds")
		}
		fut := engine.NewFuture()
		time.AfterFunc(time.Duration(ms)*time.Millisecond, func() {
			fut.Resolve(ms)
		})
		return fut, nil
	})
}

// serveMetrics exposes the engine counters in prometheus format
func serveMetrics(endpoint string) {
	mux := http.NewServeMux()
	mux.HandleFunc("/metrics", func(w http.ResponseWriter, _ *http.Request) {
		metrics.WritePrometheus(w, true)
	})
	engine.Logger.Infof("serving metrics on http://%s/metrics", endpoint)
	if err := http.ListenAndServe(endpoint, mux); err != nil {
		engine.Logger.Errorf("metrics listener failed: %v", err)
	}
}
