package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/thepostgresguy/pgtools-sub000/pkg/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version and build information",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), version.GetVersion())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
