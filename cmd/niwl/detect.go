package main

import (
	"context"
	"fmt"

	"github.com/gtank/niwl/profile"
	"github.com/gtank/niwl/relay"
	"github.com/spf13/cobra"
)

var detectCmd = &cobra.Command{
	Use:   "detect",
	Short: "Poll the relay for newly detected messages",
	Args:  cobra.NoArgs,
	RunE:  runDetect,
}

func init() {
	rootCmd.AddCommand(detectCmd)
}

func runDetect(cmd *cobra.Command, args []string) error {
	p, err := profile.Load(profilePath)
	if err != nil {
		return err
	}
	p.SavePath = profilePath

	client := relay.NewClient(relayAddr)
	resp, err := p.DetectTags(context.Background(), client)
	if err != nil {
		return err
	}

	for _, entry := range resp.DetectedTags {
		plaintext, ok := p.PrivateKey.Open(&entry.Ciphertext)
		if !ok {
			continue
		}
		fmt.Printf("[%s] %s\n", entry.Tag.String(), plaintext)
	}
	return nil
}
