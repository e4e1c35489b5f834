package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"streamgate/internal/config"
)

const version = "0.1.0"

var rootCmd = &cobra.Command{
	Use:   "streamgate",
	Short: "Streamgate turns third-party M3U playlists into an Xtream-compatible catalog",
	Long: `Streamgate ingests M3U playlists, classifies their entries into movies,
series and live channels, and serves them through an Xtream-Codes-compatible
API. Stream URLs are rewritten to gateway resolver endpoints that dispatch
site-specific resolver scripts at play time.`,
	Run: func(cmd *cobra.Command, args []string) {
		runServe(cmd, args)
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the gateway HTTP server",
	Run:   runServe,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of Streamgate",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("Streamgate v" + version)
	},
}

var configFile string

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is ./config.yml)")
	cobra.OnInitialize(initConfig)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

func initConfig() {
	// Skip config loading for version command
	if len(os.Args) > 1 && os.Args[1] == "version" {
		return
	}

	if err := config.Load(); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
