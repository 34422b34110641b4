package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/banshee-data/beacon.scope/internal/monitoring"
	"github.com/banshee-data/beacon.scope/internal/tui"
)

func newViewCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "view",
		Short: "Plot samples in the terminal",
		Long: `Open the terminal plot. The wheel pans the time axis, Shift or Ctrl with
the wheel zooms around the sample under the cursor, and Ctrl or Alt with a
left drag zooms to the selection. Press ? for the full list.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			// The terminal belongs to the UI; keep diagnostics out of it.
			if flags.logFile == "" {
				monitoring.SetLogger(nil)
			}
			a, err := flags.newApp()
			if err != nil {
				return err
			}
			defer a.close()

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return tui.Run(ctx, a.session, a.view, tui.RunOptions{
				Options:       tui.Options{URL: a.url, Units: flags.units},
				Clock:         a.clock,
				FrameInterval: a.cfg.GetFrameInterval(),
			})
		},
	}
}
