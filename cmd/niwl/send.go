package main

import (
	"context"
	"fmt"

	"github.com/gtank/niwl/profile"
	"github.com/gtank/niwl/relay"
	"github.com/spf13/cobra"
)

var sendCmd = &cobra.Command{
	Use:   "send <contact> <message>",
	Short: "Tag and send a message directly to a contact",
	Args:  cobra.ExactArgs(2),
	RunE:  runSend,
}

var sendViaMixCmd = &cobra.Command{
	Use:   "send-via-mix <mix> <contact> <message>",
	Short: "Tag and send a message to a contact through a mix",
	Args:  cobra.ExactArgs(3),
	RunE:  runSendViaMix,
}

func init() {
	rootCmd.AddCommand(sendCmd)
	rootCmd.AddCommand(sendViaMixCmd)
}

func runSend(cmd *cobra.Command, args []string) error {
	p, err := profile.Load(profilePath)
	if err != nil {
		return err
	}

	client := relay.NewClient(relayAddr)
	resp, err := p.TagAndSend(context.Background(), client, args[0], args[1])
	if err != nil {
		return err
	}

	fmt.Printf("posted tag %s\n", resp.Tag)
	return nil
}

func runSendViaMix(cmd *cobra.Command, args []string) error {
	p, err := profile.Load(profilePath)
	if err != nil {
		return err
	}

	client := relay.NewClient(relayAddr)
	resp, err := p.TagAndMix(context.Background(), client, args[0], args[1], args[2])
	if err != nil {
		return err
	}

	fmt.Printf("posted tag %s via mix %s\n", resp.Tag, args[0])
	return nil
}
