package main

import (
	"fmt"
	"strings"

	"github.com/nicholasgasior/fileconv"
	"github.com/spf13/cobra"
)

var targetsCmd = &cobra.Command{
	Use:   "targets FORMAT",
	Short: "List the formats FORMAT can be converted to",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		targets := fileconv.ListCompatibleTargets(args[0])
		if len(targets) == 0 {
			return fmt.Errorf("no conversions from %s", strings.ToUpper(args[0]))
		}
		fmt.Fprintln(cmd.OutOrStdout(), strings.Join(targets, " "))
		return nil
	},
}
