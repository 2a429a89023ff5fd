package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/dgallion1/docgrade/internal/api"
	"github.com/dgallion1/docgrade/internal/grader"
	"github.com/dgallion1/docgrade/internal/review"
	"github.com/spf13/cobra"
)

func serveCmd(a *app) *cobra.Command {
	var port string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve extraction and grading over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: parseLevel(a.cfg.LogLevel)}))

			cfg := a.cfg
			if port != "" {
				cfg.Server.Port = port
			}
			if err := cfg.ValidateServer(); err != nil {
				log.Error("invalid configuration", "error", err)
				return err
			}

			ctx := cmd.Context()
			client, err := grader.New(ctx, cfg.LLM, log)
			if err != nil {
				return err
			}
			defer client.Close()

			reviewer := review.New(review.Options{Grader: client, Log: log})
			srv := api.NewServer(reviewer, client, log, cfg.Server)

			httpServer := &http.Server{
				Addr:         ":" + cfg.Server.Port,
				Handler:      srv,
				ReadTimeout:  30 * time.Second,
				WriteTimeout: cfg.LLM.Timeout + 30*time.Second,
				IdleTimeout:  60 * time.Second,
			}

			// Graceful shutdown.
			go func() {
				<-ctx.Done()
				log.Info("shutting down...")
				shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer shutdownCancel()
				httpServer.Shutdown(shutdownCtx)
			}()

			log.Info("starting docgrade", "port", cfg.Server.Port, "provider", client.Provider, "model", client.Model)
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("server error", "error", err)
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&port, "port", "", "listen port (default: $PORT or 8090)")
	return cmd
}
