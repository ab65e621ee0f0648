package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/edgard/profilebot/internal/app"
	"github.com/edgard/profilebot/internal/compose"
	"github.com/edgard/profilebot/internal/config"
	"github.com/edgard/profilebot/internal/logger"
)

type options struct {
	configPath string
	envFile    string
	force      bool
}

// execute runs the command line and returns the process exit code.
func execute(ctx context.Context, args []string) int {
	cmd := newRootCmd()
	cmd.SetArgs(args)
	if err := cmd.ExecuteContext(ctx); err != nil {
		slog.Error("profilebot failed", "error", err)
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:           "profilebot",
		Short:         "Keep a Telegram profile's name, bio and photo current",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runService(cmd.Context(), opts)
		},
	}
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to the YAML configuration file (default ./config.yaml)")
	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "path to a .env file with BOT_* variables")

	cmd.AddCommand(newRunCmd(opts), newPreviewCmd(opts), newPhotoCmd(opts))
	return cmd
}

func newRunCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the profile updater until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runService(cmd.Context(), opts)
		},
	}
}

func newPreviewCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "preview",
		Short: "Print the profile fields without applying them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, _, err := setup(opts)
			if err != nil {
				return err
			}
			printFields(cmd.OutOrStdout(), a.Preview(cmd.Context()))
			return nil
		},
	}
}

func newPhotoCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "photo",
		Short: "Apply today's profile photo once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, _, err := setup(opts)
			if err != nil {
				return err
			}
			defer a.Close()

			res, err := a.Photo(cmd.Context(), opts.force)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s (%s)\n", res.Weekday, res.Outcome, res.Path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&opts.force, "force", false, "upload even if today's photo was already applied")
	return cmd
}

func setup(opts *options) (*app.App, *slog.Logger, error) {
	cfg, err := config.Load(opts.configPath, opts.envFile)
	if err != nil {
		return nil, nil, err
	}
	log := logger.NewLogger(cfg.Log.Level, cfg.Log.JSON)
	log.Debug("Logger initialized", "level", cfg.Log.Level, "json", cfg.Log.JSON)
	return app.New(cfg, log), log, nil
}

func runService(ctx context.Context, opts *options) error {
	a, log, err := setup(opts)
	if err != nil {
		return err
	}
	defer a.Close()

	log.Info("Starting profilebot")
	if err := a.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	log.Info("profilebot stopped")
	return nil
}

func printFields(w io.Writer, f compose.Fields) {
	fmt.Fprintf(w, "first_name: %s\n", f.First)
	fmt.Fprintf(w, "last_name:  %s\n", f.Last)
	fmt.Fprintf(w, "bio:\n%s\n", f.Bio)
	if f.Report.Degraded() {
		fmt.Fprintf(w, "fallbacks: next_prayer=%s hijri=%s weather=%s\n",
			f.Report.NextPrayer.Outcome, f.Report.Hijri.Outcome, f.Report.Weather.Outcome)
	}
}
