package main

import (
	"fmt"

	"github.com/gtank/niwl/fmd"
	"github.com/gtank/niwl/profile"
	"github.com/spf13/cobra"
)

var detectionKeyLength int

var generateCmd = &cobra.Command{
	Use:   "generate <name>",
	Short: "Generate a new niwl profile",
	Args:  cobra.ExactArgs(1),
	RunE:  runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)
	generateCmd.Flags().IntVar(&detectionKeyLength, "detection-key-length", fmd.MaxDetectionKeyLength, "false-positive exponent ℓ for this profile's detection key")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	p, err := profile.New(args[0], detectionKeyLength)
	if err != nil {
		return err
	}
	p.SavePath = profilePath

	if err := p.Save(profilePath); err != nil {
		return err
	}

	ks := p.KeySet()
	encoded, err := ks.Encode()
	if err != nil {
		return err
	}

	fmt.Printf("Profile %q saved to %s\n", p.Name, profilePath)
	fmt.Printf("Share this key set with contacts:\n%s\n", encoded)
	return nil
}
