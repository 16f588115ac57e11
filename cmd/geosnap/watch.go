// ABOUTME: Position watch command
// ABOUTME: Streams position updates until interrupted

package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/harper/geosnap/internal/models"
	"github.com/harper/geosnap/internal/ui"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Stream device position updates",
	Long: `Subscribe to position updates and print them as they arrive.
While a watch is running, captures tag from its most recent fix
instead of requesting a new one. Press Ctrl-C to stop.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		w := snap.Tracker.StartWatch(
			func(pos *models.Position) {
				fmt.Printf("%s  %s\n", pos.ObservedAt.Format("15:04:05"), ui.FormatPosition(pos))
			},
			func(err error) {
				fmt.Fprintf(os.Stderr, "warning: %v\n", err)
			},
		)

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		fmt.Fprintln(os.Stderr, "Watching for position updates (Ctrl-C to stop)...")
		<-sigCh

		snap.Tracker.Stop(w)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
