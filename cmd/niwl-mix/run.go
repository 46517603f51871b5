package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/gtank/niwl/mix"
	"github.com/gtank/niwl/profile"
	"github.com/gtank/niwl/relay"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the mix's main loop until interrupted",
	Args:  cobra.NoArgs,
	RunE:  runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	p, err := profile.Load(profilePath)
	if err != nil {
		return err
	}
	p.SavePath = profilePath

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := relay.NewClient(relayAddr)

	fmt.Println("kicking off initial heartbeat...")
	node, err := mix.NewNode(ctx, p, client)
	if err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{
		"function": "runRun",
		"profile":  p.Name,
		"relay":    relayAddr,
	}).Info("mix node running")

	err = node.Run(ctx)
	if err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}
