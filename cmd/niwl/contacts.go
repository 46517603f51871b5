package main

import (
	"fmt"

	"github.com/gtank/niwl/profile"
	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import-tagging-key <encoded>",
	Short: "Import a contact's KeySet",
	Args:  cobra.ExactArgs(1),
	RunE:  runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	p, err := profile.Load(profilePath)
	if err != nil {
		return err
	}

	if err := p.ImportTaggingKey(args[0]); err != nil {
		return err
	}

	if err := p.Save(profilePath); err != nil {
		return err
	}

	fmt.Println("contact imported")
	return nil
}
