package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ethpandaops/counterpush/internal/app"
	"github.com/ethpandaops/counterpush/internal/counter"
	"github.com/ethpandaops/counterpush/internal/dispatch"
	"github.com/ethpandaops/counterpush/internal/version"
)

var (
	cfgFile      string
	countersFile string
	logLevel     string
	timestamp    int64
	dryRun       bool
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "counterpush",
		Short: "Push final job counters to Graphite",
		Long: `counterpush reads the final counters of a completed batch job,
names them with an ordered rule set and sends them to a Graphite
collector as one plaintext batch over UDP, TCP or HTTP.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          run,
	}

	cmd.Flags().StringVar(
		&cfgFile, "config", "",
		"path to config file, YAML or .toml (required)",
	)
	cmd.Flags().StringVar(
		&countersFile, "counters", "",
		"path to the job counters file (required)",
	)
	cmd.Flags().Int64Var(
		&timestamp, "timestamp", 0,
		"batch timestamp in epoch seconds (default now)",
	)
	cmd.Flags().StringVar(
		&logLevel, "log-level", "",
		"override log level (debug, info, warn, error)",
	)
	cmd.Flags().BoolVar(
		&dryRun, "dry-run", false,
		"print the payload instead of sending it",
	)

	for _, name := range []string{"config", "counters"} {
		if err := cmd.MarkFlagRequired(name); err != nil {
			fmt.Fprintf(os.Stderr, "error marking flag required: %v\n", err)
			os.Exit(1)
		}
	}

	cmd.AddCommand(versionCmd())

	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(version.FullWithPlatform())
		},
	}
}

func run(cmd *cobra.Command, args []string) error {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	cfg, err := app.LoadConfig(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// CLI flag overrides config file.
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("parsing log level %q: %w", cfg.LogLevel, err)
	}

	log.SetLevel(level)

	counters, err := counter.LoadFile(countersFile)
	if err != nil {
		return fmt.Errorf("loading counters: %w", err)
	}

	if timestamp == 0 {
		timestamp = time.Now().Unix()
	}

	if dryRun {
		payload, err := dispatch.BuildPayload(cfg.Dispatch(timestamp), counters)
		if err != nil {
			return err
		}

		_, err = cmd.OutOrStdout().Write(payload)

		return err
	}

	ctx, cancel := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer cancel()

	log.WithFields(logrus.Fields{
		"version":   version.Full(),
		"counters":  counters.Len(),
		"timestamp": timestamp,
	}).Info("Starting counterpush")

	if err := app.Run(ctx, log, cfg, counters, timestamp); err != nil {
		return fmt.Errorf("dispatching counters: %w", err)
	}

	return nil
}
