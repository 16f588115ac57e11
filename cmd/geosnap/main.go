// ABOUTME: CLI entry point
// ABOUTME: Executes the root command and maps failures to exit codes

package main

import "os"

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
