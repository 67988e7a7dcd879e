// Copyright (c) 2026 Milize. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package lifecycle

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/taibuivan/milize/internal/core/ledger"
	"github.com/taibuivan/milize/internal/core/pipeline"
	"github.com/taibuivan/milize/internal/core/roster"
	"github.com/taibuivan/milize/internal/platform/messaging"
	"github.com/taibuivan/milize/pkg/pointer"
)

// ReminderReport counts what one reminder sweep did.
type ReminderReport struct {
	Members int
	Due     int
	Blocked int
	Sent    int
	Failed  int
}

/*
Reminders nudges collaborators about open assignments.

Description: an assignment is due once its interval elapsed since the last
reminder, or since it was created if none was sent. A due assignment whose
stage is blocked by unfinished prerequisites is skipped without stamping,
so it is reminded as soon as the stage unblocks. reminded_at moves only
after the reminder went out.

Returns:
  - ReminderReport: counters for the sweep
  - error: only when the member list cannot be loaded
*/
func (sweeper *Sweeper) Reminders(ctx context.Context) (ReminderReport, error) {
	var report ReminderReport
	sweeper.logger.Info("reminder_sweep_started")

	members, err := sweeper.deps.Roster.ListWithReminders(ctx)
	if err != nil {
		sweeper.logger.Error("reminder_sweep_failed", slog.Any("error", err))
		return report, err
	}

	progress := map[string]*ledger.Progress{}
	for _, member := range members {
		report.Members++
		sweeper.remindMember(ctx, member, progress, &report)
	}

	sweeper.logger.Info("reminder_sweep_finished",
		slog.Int("members", report.Members),
		slog.Int("due", report.Due),
		slog.Int("blocked", report.Blocked),
		slog.Int("sent", report.Sent),
		slog.Int("failed", report.Failed),
	)
	return report, nil
}

func (sweeper *Sweeper) remindMember(ctx context.Context, member *roster.Member, cache map[string]*ledger.Progress, report *ReminderReport) {
	interval, ok := member.ReminderInterval.Duration()
	if !ok {
		return
	}

	assignments, err := sweeper.deps.Assignments.ListOpenByAssignee(ctx, member.DiscordID)
	if err != nil {
		report.Failed++
		sweeper.logger.Warn("reminder_assignments_failed", slog.String("discord_id", member.DiscordID), slog.Any("error", err))
		return
	}

	now := sweeper.now().UTC()
	for _, assignment := range assignments {
		due := pointer.Later(assignment.RemindedAt, assignment.CreatedAt).Add(interval)
		if now.Before(due) {
			continue
		}
		report.Due++

		progress, ok := cache[assignment.ChapterID]
		if !ok {
			progress, err = sweeper.deps.Progress.Progress(ctx, assignment.ChapterID)
			if err != nil {
				report.Failed++
				sweeper.logger.Warn("reminder_progress_failed", slog.String("chapter_id", assignment.ChapterID), slog.Any("error", err))
				continue
			}
			cache[assignment.ChapterID] = progress
		}

		stage := progress.Stage(assignment.SeriesJobID)
		if stage == nil || !pipeline.Ready(stage.Type, progress.Snapshot) {
			report.Blocked++
			continue
		}

		notice := fmt.Sprintf("%s, you have an unfinished %s task for chapter `%s` in series `%s`.",
			messaging.Mention(member.DiscordID), stage.DisplayName(), progress.Chapter.Name, progress.Series.Name)
		if _, err := sweeper.deps.Messenger.Send(ctx, sweeper.deps.ReminderChannel, notice); err != nil {
			report.Failed++
			sweeper.logger.Warn("reminder_send_failed", slog.String("assignment_id", assignment.ID), slog.Any("error", err))
			continue
		}

		if err := sweeper.deps.Assignments.MarkReminded(ctx, assignment.ID, now); err != nil {
			report.Failed++
			sweeper.logger.Warn("reminder_stamp_failed", slog.String("assignment_id", assignment.ID), slog.Any("error", err))
			continue
		}
		report.Sent++
	}
}
