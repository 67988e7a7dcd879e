// Copyright (c) 2026 Milize. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/taibuivan/milize/internal/core/lifecycle"
)

func newSweepCommand(ctx *commandContext) *cobra.Command {
	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "Run a lifecycle sweep once",
		Long: "Run a lifecycle sweep once. Reminders and board expiry take the same " +
			"lease as the running server, so a sweep already in progress is not repeated.",
	}

	sweepCmd.AddCommand(newSweepJobCommand(ctx, "reminders", lifecycle.JobReminders, "Nudge collaborators about open assignments"))
	sweepCmd.AddCommand(newSweepJobCommand(ctx, "board", lifecycle.JobBoard, "Retract expired claim-board postings"))
	sweepCmd.AddCommand(newSweepInactivityCommand(ctx))

	return sweepCmd
}

func newSweepJobCommand(ctx *commandContext, use, job, short string) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := ctx.ensureEngine(cmd.Context())
			if err != nil {
				return err
			}
			ran, err := engine.Scheduler.RunOnce(cmd.Context(), job)
			if err != nil {
				return err
			}
			if !ran {
				fmt.Fprintf(cmd.OutOrStdout(), "Sweep %q is already running elsewhere\n", job)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Sweep %q finished\n", job)
			return nil
		},
	}
}

// The inactivity sweep reports its counts, so it calls the sweeper directly.
func newSweepInactivityCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "inactivity",
		Short: "Retire or remove idle collaborators",
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := ctx.ensureEngine(cmd.Context())
			if err != nil {
				return err
			}
			report, err := engine.Sweeper.Inactivity(cmd.Context())
			if err != nil {
				return err
			}

			rows := [][]string{
				{"checked", strconv.Itoa(report.Checked)},
				{"exempt", strconv.Itoa(report.Exempt)},
				{"retired", strconv.Itoa(report.Retired)},
				{"removed", strconv.Itoa(report.Removed)},
				{"retired removed", strconv.Itoa(report.RetiredRemoved)},
				{"failed", strconv.Itoa(report.Failed)},
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Outcome", "Collaborators"}, rows, 1))
			return nil
		},
	}
}
