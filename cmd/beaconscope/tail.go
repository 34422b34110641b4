package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/banshee-data/beacon.scope/internal/security"
	"github.com/banshee-data/beacon.scope/internal/stream"
	"github.com/banshee-data/beacon.scope/internal/tui"
)

type tailFlags struct {
	raw    bool
	count  int
	output string
	units  string
}

func newTailCmd(flags *rootFlags) *cobra.Command {
	tf := &tailFlags{}
	cmd := &cobra.Command{
		Use:   "tail",
		Short: "Print decoded samples as text",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := flags.newApp()
			if err != nil {
				return err
			}
			defer a.close()

			out := cmd.OutOrStdout()
			if tf.output != "" {
				if err := security.ValidateExportPath(tf.output); err != nil {
					return err
				}
				f, err := os.OpenFile(tf.output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
				if err != nil {
					return fmt.Errorf("open output: %w", err)
				}
				defer f.Close()
				out = f
			}
			tf.units = flags.units

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runTail(ctx, a, tf, out)
		},
	}
	cmd.Flags().BoolVar(&tf.raw, "raw", false, "Print raw frames instead of decoded samples")
	cmd.Flags().IntVar(&tf.count, "count", 0, "Stop after this many samples (0 = unlimited)")
	cmd.Flags().StringVar(&tf.output, "output", "", "Append to this file instead of stdout")
	return cmd
}

// runTail prints session events until ctx ends, the connection drops or
// count samples have been printed.
func runTail(ctx context.Context, a *app, tf *tailFlags, out io.Writer) error {
	topics := []stream.Topic{stream.TopicState, stream.TopicError, stream.TopicHeader, stream.TopicSamples}
	if tf.raw {
		topics = append(topics, stream.TopicRaw)
	}
	sub := a.session.Subscribe(topics...)
	defer sub.Unsubscribe()

	if err := a.connect(ctx); err != nil {
		return err
	}

	printed := 0
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-sub.C():
			switch ev.Topic {
			case stream.TopicState:
				fmt.Fprintf(out, "# %s\n", ev.State)
				if ev.State == stream.StateDisconnected {
					if ev.Err != nil {
						return ev.Err
					}
					return nil
				}
			case stream.TopicError:
				fmt.Fprintf(out, "# error: %v\n", ev.Err)
			case stream.TopicHeader:
				fmt.Fprintf(out, "# header: %v\n", ev.Header)
			case stream.TopicRaw:
				fmt.Fprintf(out, "%s\n", ev.Raw)
			case stream.TopicSamples:
				if tf.raw {
					continue
				}
				for i := range ev.Samples {
					fmt.Fprintln(out, tui.PlainFields(tui.SampleFields(&ev.Samples[i], tf.units)))
					printed++
					if tf.count > 0 && printed >= tf.count {
						return nil
					}
				}
			}
		}
	}
}
