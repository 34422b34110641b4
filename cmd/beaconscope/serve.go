package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/banshee-data/beacon.scope/internal/web"
)

func newServeCmd(flags *rootFlags) *cobra.Command {
	var listen, assets string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the plot over HTTP",
		Long: `Serve a chart page, a PNG snapshot and a JSON status of the live plot.
Session controls are under /debug/ for local callers.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := flags.newApp()
			if err != nil {
				return err
			}
			defer a.close()

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a.view.Attach(a.session)
			if err := a.connect(ctx); err != nil {
				// The page shows the error; reconnect from /debug/reconnect.
				cmd.PrintErrf("connect: %v\n", err)
			}
			srv := web.NewServer(a.view, a.session, web.Config{Address: listen, AssetsHost: assets})
			return srv.Start(ctx)
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "127.0.0.1:8089", "HTTP listen address")
	cmd.Flags().StringVar(&assets, "assets-host", "", "Where the chart page loads echarts from")
	return cmd
}
