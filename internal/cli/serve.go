package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kt1928/building-monitor/internal/engine"
	"github.com/kt1928/building-monitor/internal/metrics"
	"github.com/kt1928/building-monitor/internal/schedule"
)

// failurePause is how long the scheduler backs off after a failed run
// before computing the next slot.
const failurePause = 5 * time.Minute

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the scheduler daemon",
		Long: `Run monitoring passes on the configured daily schedule until interrupted.

Each pass checks every configured address and delivers webhook alerts.
A failed pass pauses the scheduler briefly before the next slot is
computed. If metrics_listen is configured, a Prometheus endpoint is
served for the lifetime of the process.

Example:
  bismon serve --config config.yaml`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(rootOpts, cmd)
		},
	}

	return cmd
}

func runServe(opts *RootOptions, cmd *cobra.Command) error {
	env, err := setupMonitor(opts)
	if err != nil {
		return err
	}
	defer env.close()

	// Setup signal handling for graceful shutdown. Use the command's
	// context if available (for testing), otherwise create one.
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case sig := <-sigChan:
			env.logger.Info("received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	if env.cfg.MetricsListen != "" {
		go func() {
			if err := metrics.Serve(env.cfg.MetricsListen, env.logger); err != nil {
				env.logger.Error("metrics server stopped", "error", err)
			}
		}()
	}

	env.logger.Info("scheduler starting",
		"addresses", len(env.cfg.Addresses), "schedule", env.cfg.Schedule)
	fmt.Fprintln(cmd.OutOrStdout(), "Scheduler started. Press Ctrl-C to stop.")

	for {
		next := schedule.NextRun(time.Now(), env.cfg.Schedule)
		env.logger.Info("next run scheduled", "at", next.Format(time.RFC3339))

		if err := sleepUntil(ctx, next); err != nil {
			env.logger.Info("scheduler stopped")
			return nil
		}

		report, err := env.engine.Run(ctx, engine.RunOptions{
			Addresses:     env.cfg.Addresses,
			GlobalWebhook: env.cfg.Webhook,
		})
		if err == nil && !report.HasActivity() {
			env.logger.Info("run clean, nothing to report")
		}
		if err != nil {
			if ctx.Err() != nil {
				env.logger.Info("scheduler stopped")
				return nil
			}
			env.logger.Error("run failed, pausing before next slot",
				"error", err, "pause", failurePause)
			if err := sleepUntil(ctx, time.Now().Add(failurePause)); err != nil {
				env.logger.Info("scheduler stopped")
				return nil
			}
		}
	}
}

// sleepUntil blocks until t or context cancellation.
func sleepUntil(ctx context.Context, t time.Time) error {
	timer := time.NewTimer(time.Until(t))
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
