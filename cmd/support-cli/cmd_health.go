package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check service readiness",
	RunE:  runHealth,
}

func init() {
	healthCmd.Flags().Duration("wait", 0, "Keep polling until ready or this long has passed")
}

func runHealth(cmd *cobra.Command, args []string) error {
	wait, _ := cmd.Flags().GetDuration("wait")
	c := newClient(cmd)

	var err error
	if wait > 0 {
		err = c.WaitReady(cmd.Context(), wait, time.Second)
	} else {
		err = c.Ready(cmd.Context())
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "ready")
	return nil
}
