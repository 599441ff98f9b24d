package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/thepostgresguy/pgtools-sub000/pkg/cron"
)

var cronCmd = &cobra.Command{
	Use:   "cron",
	Short: "Manage the pgtools block in the user's crontab",
	Long: `The cron commands sync a marker-delimited block of crontab lines to the
entries declared under "cron:" in the config file. Apply rewrites the
block to match the declared entries exactly, so it is safe to run
repeatedly; lines outside the block are never touched.`,
}

var cronApplyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Sync the crontab block to the configured entries",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		config, err := cron.ConfigFromViper(nil)
		if err != nil {
			return &exitError{code: exitUsageError, err: err}
		}

		binPath, err := os.Executable()
		if err != nil {
			return fmt.Errorf("resolving binary path: %w", err)
		}

		diff, err := cron.Apply(cron.SystemCrontab{}, config.Entries, binPath, logger)
		if err != nil {
			return err
		}
		printCronDiff(cmd.OutOrStdout(), diff)
		return nil
	},
}

var cronStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the delta between configured entries and the installed block",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		config, err := cron.ConfigFromViper(nil)
		if err != nil {
			return &exitError{code: exitUsageError, err: err}
		}

		binPath, err := os.Executable()
		if err != nil {
			return fmt.Errorf("resolving binary path: %w", err)
		}

		diff, synced, err := cron.Status(cron.SystemCrontab{}, config.Entries, binPath)
		if err != nil {
			return err
		}
		if synced {
			fmt.Fprintln(cmd.OutOrStdout(), "Crontab is in sync.")
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Crontab is out of sync, apply would make these changes:")
		printCronDiff(cmd.OutOrStdout(), diff)
		return nil
	},
}

var cronRemoveCmd = &cobra.Command{
	Use:   "remove",
	Short: "Remove the pgtools block from the crontab",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		removed, err := cron.Remove(cron.SystemCrontab{}, logger)
		if err != nil {
			return err
		}
		if !removed {
			fmt.Fprintln(cmd.OutOrStdout(), "No pgtools block installed.")
		}
		return nil
	},
}

func printCronDiff(w io.Writer, diff cron.Diff) {
	for _, line := range diff.Added {
		fmt.Fprintf(w, "+ %s\n", line)
	}
	for _, line := range diff.Removed {
		fmt.Fprintf(w, "- %s\n", line)
	}
}

func init() {
	cronCmd.AddCommand(cronApplyCmd, cronStatusCmd, cronRemoveCmd)
	rootCmd.AddCommand(cronCmd)
}
