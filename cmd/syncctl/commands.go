package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/honeycarbs/talentsync/internal/config"
	"github.com/honeycarbs/talentsync/internal/domain"
	"github.com/honeycarbs/talentsync/internal/mcp"
	"github.com/honeycarbs/talentsync/pkg/logging"
)

const statusScanLimit = 10000

var logLevel string

func buildCLI() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "syncctl",
		Short: "Operate the talentsync record store",
		Long: `syncctl runs maintenance against the configured record store:
schema migration, one-off retry sweeps of unsynced talents and a sync backlog report.
Configuration comes from the same environment as the server.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level")

	rootCmd.AddCommand(buildMigrateCommand())
	rootCmd.AddCommand(buildSweepCommand())
	rootCmd.AddCommand(buildStatusCommand())

	return rootCmd
}

// withResources loads config, lets tweak adjust it and runs fn against freshly wired resources
func withResources(ctx context.Context, tweak func(*config.Config), fn func(*mcp.Resources) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if tweak != nil {
		tweak(&cfg)
	}

	logger := logging.New(logLevel)
	defer func() { _ = logger.Sync() }()

	res, cleanup, err := mcp.InitializeResources(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()
	defer func() { _ = res.Shutdown(context.Background()) }()

	return fn(res)
}

func buildMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the record store schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			// wiring migrates the store
			return withResources(cmd.Context(), nil, func(*mcp.Resources) error {
				fmt.Fprintln(cmd.OutOrStdout(), "schema up to date")
				return nil
			})
		},
	}
}

func buildSweepCommand() *cobra.Command {
	var (
		olderThan time.Duration
		batch     int
	)

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Retry sync for talents stuck in PENDING or ERROR",
		RunE: func(cmd *cobra.Command, args []string) error {
			tweak := func(cfg *config.Config) {
				if cmd.Flags().Changed("older-than") {
					cfg.Sync.RetryAfter = olderThan
				}
				if batch > 0 {
					cfg.Sync.SweepBatch = batch
				}
			}

			return withResources(cmd.Context(), tweak, func(res *mcp.Resources) error {
				report, err := res.Sweeper.Sweep(cmd.Context())
				if err != nil {
					return err
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			})
		},
	}

	cmd.Flags().DurationVar(&olderThan, "older-than", 0, "only retry talents untouched for this long (default SYNC_RETRY_AFTER)")
	cmd.Flags().IntVar(&batch, "batch", 0, "maximum talents per sweep (default SYNC_SWEEP_BATCH)")

	return cmd
}

type backlog struct {
	Pending []string `json:"pending"`
	Error   []string `json:"error"`
}

func buildStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Report talents that are not yet synced",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withResources(cmd.Context(), nil, func(res *mcp.Resources) error {
				ctx := cmd.Context()
				now := time.Now().Add(time.Second)

				var out backlog
				for status, dst := range map[domain.SyncStatus]*[]string{
					domain.SyncPending: &out.Pending,
					domain.SyncError:   &out.Error,
				} {
					talents, err := res.Store.ListTalentsForRetry(ctx, []domain.SyncStatus{status}, now, statusScanLimit)
					if err != nil {
						return err
					}
					*dst = make([]string, 0, len(talents))
					for _, t := range talents {
						*dst = append(*dst, t.Handle)
					}
				}

				fmt.Fprintf(cmd.OutOrStdout(), "pending: %d\nerror: %d\n", len(out.Pending), len(out.Error))
				enc := json.NewEncoder(cmd.OutOrStdout())
				return enc.Encode(out)
			})
		},
	}
}
