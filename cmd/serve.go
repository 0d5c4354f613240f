package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/optviz/gradlab/internal/server"
	"github.com/optviz/gradlab/internal/store"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server for run management and trace playback",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := store.NewFSStore(dataDir)
		if err != nil {
			return fmt.Errorf("failed to open store: %w", err)
		}

		srv := server.NewServer(serveAddr, st)

		// Shut down cleanly on SIGINT/SIGTERM.
		errCh := make(chan error, 1)
		go func() {
			errCh <- srv.Start()
		}()

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

		select {
		case err := <-errCh:
			return err
		case <-sigCh:
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(ctx)
		}
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "Listen address")
	rootCmd.AddCommand(serveCmd)
}
