package main

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/gtank/niwl/relayserver"
	"github.com/gtank/niwl/relaystore"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	addr       string
	dbHost     string
	dbPort     int
	dbUser     string
	dbPassword string
	dbName     string
	dbSSLMode  string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the relay HTTP API against Postgres",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&addr, "addr", ":8080", "address to listen on")
	serveCmd.Flags().StringVar(&dbHost, "db-host", envOr("NIWL_DB_HOST", "localhost"), "database host")
	serveCmd.Flags().IntVar(&dbPort, "db-port", envOrInt("NIWL_DB_PORT", 5432), "database port")
	serveCmd.Flags().StringVar(&dbUser, "db-user", envOr("NIWL_DB_USER", "niwl"), "database user")
	serveCmd.Flags().StringVar(&dbPassword, "db-password", envOr("NIWL_DB_PASSWORD", ""), "database password")
	serveCmd.Flags().StringVar(&dbName, "db-name", envOr("NIWL_DB_NAME", "niwl"), "database name")
	serveCmd.Flags().StringVar(&dbSSLMode, "db-sslmode", envOr("NIWL_DB_SSLMODE", "disable"), "database sslmode")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envOrInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := relaystore.NewStore(ctx, &relaystore.Config{
		Host:     dbHost,
		Port:     dbPort,
		User:     dbUser,
		Password: dbPassword,
		Database: dbName,
		SSLMode:  dbSSLMode,
	})
	if err != nil {
		return err
	}
	defer store.Close()

	srv := &relayserver.Server{Store: store}

	logrus.WithFields(logrus.Fields{
		"function": "runServe",
		"addr":     addr,
		"database": dbName,
	}).Info("starting relay server")

	return srv.ListenAndServe(ctx, addr)
}
