package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func newStartCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start forwards for every rule that is not already running",
		Long: `Parse the rule file and launch one forwarding process per rule that has
no live registry entry. Failures of individual rules are reported and
skipped; the command only fails when the rule file itself is unreadable.`,
		Args: cobra.NoArgs,
		RunE: runStart,
	}
}

func runStart(cmd *cobra.Command, args []string) error {
	sup, _, cleanup, err := setup(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	// A termination signal mid-sweep must fall through to the stop path,
	// which the supervisor handles on context cancellation.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return sup.Start(ctx)
}

func newStopCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop all supervised forwards",
		Long: `Terminate every forwarding process recorded in the registry, escalating
to SIGKILL after the grace period, and clear the registry entries.
Processes fwdctl did not start are left alone.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sup, _, cleanup, err := setup(cmd)
			if err != nil {
				return err
			}
			defer cleanup()
			return sup.Stop(cmd.Context())
		},
	}
}

func newRestartCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "restart",
		Short: "Stop all forwards, then start them again",
		Args:  cobra.NoArgs,
		RunE:  runRestart,
	}
}

func newReloadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reload",
		Short: "Re-read the rule file and restart all forwards",
		Args:  cobra.NoArgs,
		RunE:  runRestart,
	}
}

func runRestart(cmd *cobra.Command, args []string) error {
	sup, _, cleanup, err := setup(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return sup.Restart(ctx)
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show per-port state of all supervised forwards",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sup, _, cleanup, err := setup(cmd)
			if err != nil {
				return err
			}
			defer cleanup()
			_, err = sup.Status(cmd.Context())
			return err
		},
	}
}
