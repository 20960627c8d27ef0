package cmd

import (
	"fmt"
	"os"

	"github.com/corrix-dev/corrix/cmd/call"
	"github.com/corrix-dev/corrix/cmd/serve"
	"github.com/corrix-dev/corrix/cmd/util"
	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags
var Version = "dev"

// ----------------------------------------------
// Root Command
// ----------------------------------------------

var rootCmd = &cobra.Command{
	Use:   "corrix",
	Short: "corrix is a transport agnostic rpc engine",
	Long: util.WrapString(
		"corrix correlates rpc requests with their replies over any byte stream. " +
			"It ships a small diagnostic server and a client for calling methods on it.",
	),
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		util.InitConfig()
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version of corrix",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("corrix %s\n", Version)
	},
}

func init() {
	key := "serializer"
	rootCmd.PersistentFlags().String(key, "json", util.WrapString("The wire serializer to use (json or binary)"))

	key = "transport"
	rootCmd.PersistentFlags().String(key, "tcp", util.WrapString("The transport to use (tcp or unix)"))

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serve.ServeCmd)
	rootCmd.AddCommand(call.CallCmd)
	rootCmd.AddCommand(call.NotifyCmd)
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
