package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "borderops-sim",
	Short: "BorderOps counter-drone simulation backend",
	Long:  "BorderOps-Sim simulates drone detections near a border region and exposes a REST/WebSocket surface for dashboards and countermeasure demos.",
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Local .env values are convenient for demo deployments; absence is fine.
	_ = godotenv.Load()
	rootCmd.AddCommand(serveCmd)
}
