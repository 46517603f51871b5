package main

import (
	"fmt"

	"github.com/gtank/niwl/fmd"
	"github.com/gtank/niwl/profile"
	"github.com/spf13/cobra"
)

var generateCmd = &cobra.Command{
	Use:   "generate <name>",
	Short: "Generate a new mix profile",
	Args:  cobra.ExactArgs(1),
	RunE:  runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	p, err := profile.New(args[0], fmd.MaxDetectionKeyLength)
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

	fmt.Printf("Mix profile %q saved to %s\n", p.Name, profilePath)
	fmt.Printf("Advertise this key set to mix users:\n%s\n", encoded)
	return nil
}
