package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	profilePath string
	relayAddr   string
)

var rootCmd = &cobra.Command{
	Use:   "niwl",
	Short: "niwl client - generate profiles and exchange metadata-resistant messages",
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.PersistentFlags().StringVar(&profilePath, "profile", "niwl.profile", "profile file path")
	rootCmd.PersistentFlags().StringVar(&relayAddr, "relay", "http://localhost:8080", "relay server base URL")
}
