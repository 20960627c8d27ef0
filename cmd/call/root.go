package call

import (
	"encoding/json"
	"fmt"

	cmdUtil "github.com/corrix-dev/corrix/cmd/util"
	"github.com/corrix-dev/corrix/rpc/common"
	"github.com/corrix-dev/corrix/rpc/engine"
	"github.com/corrix-dev/corrix/rpc/transport"
	"github.com/spf13/cobra"
)

var (
	CallCmd = &cobra.Command{
		Use:     "call METHOD [ARG...]",
		Short:   "Call a method on a corrix server and print the result",
		Long:    cmdUtil.WrapString("Call a method on a corrix server and print the result as JSON. Each ARG is parsed as JSON; arguments that are not valid JSON are passed as strings."),
		Args:    cobra.MinimumNArgs(1),
		PreRunE: processConfig,
		RunE:    runCall,
	}

	NotifyCmd = &cobra.Command{
		Use:     "notify METHOD [ARG...]",
		Short:   "Send a notification to a corrix server",
		Long:    cmdUtil.WrapString("Send a one-way notification to a corrix server. No reply is expected or awaited. Each ARG is parsed as JSON; arguments that are not valid JSON are passed as strings."),
		Args:    cobra.MinimumNArgs(1),
		PreRunE: processConfig,
		RunE:    runNotify,
	}
)

func init() {
	cmdUtil.SetupClientFlags(CallCmd)
	cmdUtil.SetupClientFlags(NotifyCmd)
}

// processConfig binds the command's flags to viper
func processConfig(cmd *cobra.Command, _ []string) error {
	return cmdUtil.BindCommandFlags(cmd)
}

// connect dials the server and wires the engine to the transport
func connect() (*engine.Engine, transport.IClientTransport, error) {
	s, err := cmdUtil.GetSerializer()
	if err != nil {
		return nil, nil, err
	}

	t, err := cmdUtil.GetClientTransport()
	if err != nil {
		return nil, nil, err
	}

	config := cmdUtil.GetClientConfig()
	e := engine.New(s, config.Engine)
	transport.Bind(e, t)

	if err := t.Connect(config); err != nil {
		return nil, nil, err
	}
	return e, t, nil
}

// parseArgs converts command line arguments to method parameters
func parseArgs(args []string) []any {
	params := make([]any, 0, len(args))
	for _, arg := range args {
		var v any
		if err := json.Unmarshal([]byte(arg), &v); err != nil {
			// not valid JSON, pass as string
			params = append(params, arg)
			continue
		}
		params = append(params, v)
	}
	return params
}

// runCall sends a request and prints the reply
func runCall(_ *cobra.Command, args []string) error {
	e, t, err := connect()
	if err != nil {
		return err
	}
	defer func() { _ = t.Close() }()
	defer e.Close()

	result, err := e.Request(args[0], parseArgs(args[1:])...).Result()
	if err != nil {
		return common.AsError(err, common.CodeInternalError)
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

// runNotify sends a one-way notification
func runNotify(_ *cobra.Command, args []string) error {
	e, t, err := connect()
	if err != nil {
		return err
	}
	defer func() { _ = t.Close() }()
	defer e.Close()

	return e.Notify(args[0], parseArgs(args[1:])...)
}
