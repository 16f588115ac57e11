// ABOUTME: Root Cobra command and global flags
// ABOUTME: Sets up CLI structure and assembles the capture pipeline

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harper/geosnap/internal/app"
	"github.com/harper/geosnap/internal/config"
)

var snap *app.App

var rootCmd = &cobra.Command{
	Use:   "geosnap",
	Short: "Capture geotagged photos from the command line",
	Long: `
 ██████╗ ███████╗ ██████╗ ███████╗███╗   ██╗ █████╗ ██████╗
██╔════╝ ██╔════╝██╔═══██╗██╔════╝████╗  ██║██╔══██╗██╔══██╗
██║  ███╗█████╗  ██║   ██║███████╗██╔██╗ ██║███████║██████╔╝
██║   ██║██╔══╝  ██║   ██║╚════██║██║╚██╗██║██╔══██║██╔═══╝
╚██████╔╝███████╗╚██████╔╝███████║██║ ╚████║██║  ██║██║
 ╚═════╝ ╚══════╝ ╚═════╝ ╚══════╝╚═╝  ╚═══╝╚═╝  ╚═╝╚═╝

        Capture photos with position and time attached

Examples:
  geosnap capture
  geosnap import ~/Pictures/beach.jpg
  geosnap list
  geosnap near 41.8781 -87.6298 --radius 5`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		deviceFlag := cmd.Flags().Lookup("device")
		if deviceFlag != nil && deviceFlag.Changed {
			device, _ := cmd.Flags().GetInt("device")
			cfg.CameraDevice = device
		}

		snap, err = app.New(cfg, app.Options{})
		if err != nil {
			return fmt.Errorf("failed to initialize: %w", err)
		}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if snap != nil {
			snap.Close()
		}
		return nil
	},
}
