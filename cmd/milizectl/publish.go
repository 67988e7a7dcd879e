// Copyright (c) 2026 Milize. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/taibuivan/milize/internal/app"
	"github.com/taibuivan/milize/internal/platform/sec"
	"github.com/taibuivan/milize/pkg/pointer"
)

const stampLayout = "2006-01-02 15:04 MST"

func newPublishCommand(ctx *commandContext) *cobra.Command {
	publishCmd := &cobra.Command{
		Use:   "publish",
		Short: "Inspect and drive the publication queue",
	}

	publishCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "Show queued publications",
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := ctx.ensureEngine(cmd.Context())
			if err != nil {
				return err
			}
			queued, err := engine.Publications.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(queued) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Queue is empty")
				return nil
			}

			rows := make([][]string, 0, len(queued))
			for _, publication := range queued {
				rows = append(rows, []string{
					publication.ID,
					publication.SeriesID,
					publication.ChapterNumber,
					strings.Join(publication.GroupIDs, ","),
					publication.DueAt.Local().Format(stampLayout),
					pointer.Val(publication.MirrorKey),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"ID", "Series", "Chapter", "Groups", "Due", "Mirror"}, rows, 2))
			return nil
		},
	})

	publishCmd.AddCommand(&cobra.Command{
		Use:   "tick",
		Short: "Run the earliest due publication now",
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := ctx.ensureEngine(cmd.Context())
			if err != nil {
				return err
			}
			if engine.Dispatcher == nil {
				return fmt.Errorf("publishing is not configured")
			}

			ran, err := engine.Scheduler.RunOnce(cmd.Context(), app.JobPublish)
			if err != nil {
				return err
			}
			if !ran {
				fmt.Fprintln(cmd.OutOrStdout(), "The poller is running elsewhere")
			}
			return nil
		},
	})

	var operator string
	cancel := &cobra.Command{
		Use:   "cancel <publication-id>",
		Short: "Remove a queued publication",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := ctx.ensureEngine(cmd.Context())
			if err != nil {
				return err
			}
			actor := sec.Actor{DiscordID: operator, Authority: sec.AuthorityOwner}
			if err := engine.Publications.Cancel(cmd.Context(), actor, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cancelled %s at %s\n", args[0], time.Now().Format(stampLayout))
			return nil
		},
	}
	cancel.Flags().StringVar(&operator, "as", "operator", "Chat id recorded as the canceller")
	publishCmd.AddCommand(cancel)

	return publishCmd
}
