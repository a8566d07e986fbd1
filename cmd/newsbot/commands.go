package main

import (
	"fmt"
	"newsbot/internal/app"
	"newsbot/internal/config"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	var configPath string
	root := &cobra.Command{
		Use:   "newsbot",
		Short: "RSS news bot with Telegram notifications",
		Long: `newsbot polls configured RSS feeds, remembers which articles were already seen
and notifies Telegram chats about new ones.

Example usage:
  newsbot serve                 # Poll on a timer and serve the HTTP API
  newsbot poll                  # Run one poll cycle and exit
  newsbot poll --dry-run        # Log new articles without sending or saving them
  newsbot migrate               # Create the seen-articles schema and exit`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "config.json", "path to the JSONC config file")

	root.AddCommand(
		newServeCmd(&configPath),
		newPollCmd(&configPath),
		newMigrateCmd(&configPath),
	)
	return root
}

func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("could not load config: %w", err)
	}
	return cfg, nil
}

func validate(cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func newServeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the polling worker and the HTTP API until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			if err := validate(cfg); err != nil {
				return err
			}
			a, err := app.New(cfg)
			if err != nil {
				return err
			}
			return a.Run()
		},
	}
}

func newPollCmd(configPath *string) *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "poll",
		Short: "Run a single poll cycle, dispatch notifications and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			if dryRun {
				cfg.Database.Driver = config.DriverMemory
				cfg.Telegram.Disabled = true
			}
			if err := validate(cfg); err != nil {
				return err
			}
			a, err := app.New(cfg)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return a.PollOnce(ctx)
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "use an in-memory store and log notifications instead of sending them")
	return cmd
}

func newMigrateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the seen-articles schema in the configured store and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			if err := cfg.Database.Validate(); err != nil {
				return fmt.Errorf("invalid config: %w", err)
			}
			return app.Migrate(cmd.Context(), cfg)
		},
	}
}
