package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/dgallion1/docgrade/internal/config"
	"github.com/spf13/cobra"
)

// app carries what every subcommand needs once flags are parsed.
type app struct {
	configPath string
	logLevel   string

	cfg config.Config
	log *slog.Logger
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "docgrade",
		Short:         "Extract the heading structure of a thesis and grade it with an LLM",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load(cmd)
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "YAML config file (default: $DOCGRADE_CONFIG)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "debug|info|warn|error (default: $LOG_LEVEL or info)")

	root.AddCommand(
		extractCmd(a),
		reviewDocCmd(a),
		reviewSectionsCmd(a),
		runCmd(a),
		watchCmd(a),
		serveCmd(a),
	)
	return root
}

func (a *app) load(cmd *cobra.Command) error {
	path := a.configPath
	if path == "" {
		path = os.Getenv("DOCGRADE_CONFIG")
	}
	cfg, err := config.LoadFile(path)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}
	a.cfg = cfg
	a.log = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: parseLevel(cfg.LogLevel)}))
	return nil
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
