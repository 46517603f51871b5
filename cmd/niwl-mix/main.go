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
	Use:   "niwl-mix",
	Short: "niwl-mix - run a random-ejection mix node",
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.PersistentFlags().StringVar(&profilePath, "profile", "niwl-mix.profile", "mix profile file path")
	rootCmd.PersistentFlags().StringVar(&relayAddr, "relay", "http://localhost:8080", "relay server base URL")
}
