// Command beaconscope watches a distance sensor's sample stream: in the
// terminal, as text lines, or over HTTP.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}
	rootCmd := &cobra.Command{
		Use:   "beaconscope",
		Short: "Live viewer for beacon distance samples",
		Long: `beaconscope connects to the Moonraker WebSocket of a printer with a beacon
probe, requests the sample dump and plots distance over time.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return flags.setupLogging()
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return flags.closeLogging()
		},
	}
	flags.register(rootCmd)

	rootCmd.AddCommand(newViewCmd(flags))
	rootCmd.AddCommand(newTailCmd(flags))
	rootCmd.AddCommand(newServeCmd(flags))
	rootCmd.AddCommand(newInitConfigCmd())
	rootCmd.AddCommand(newVersionCmd())
	return rootCmd
}
