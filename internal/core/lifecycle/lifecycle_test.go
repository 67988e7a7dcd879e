// Copyright (c) 2026 Milize. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package lifecycle_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/milize/internal/core/ledger"
	"github.com/taibuivan/milize/internal/core/lifecycle"
	"github.com/taibuivan/milize/internal/core/pipeline"
	"github.com/taibuivan/milize/internal/core/roster"
	"github.com/taibuivan/milize/internal/platform/constants"
	"github.com/taibuivan/milize/internal/platform/sec"
	"github.com/taibuivan/milize/internal/testsupport"
)

const day = 24 * time.Hour

var roles = roster.RoleMap{Trial: "r-trial", Probationary: "r-prob", Full: "r-full", Leadership: []string{"r-lead"}}

type stubBoard struct {
	removed int
	err     error
}

func (board *stubBoard) SweepExpired(context.Context) (int, error) {
	return board.removed, board.err
}

func newSweeper(f *testsupport.Fixture, board lifecycle.BoardSweeper) *lifecycle.Sweeper {
	members := roster.NewService(f.Store.Roster(), f.Messenger, roles, testsupport.Discard(), roster.WithClock(f.Clock.Now))
	progress := ledger.NewService(f.Store.Assignments(), f.Store.Chapters(), f.Store.Series(), f.Store.Roster(), testsupport.Discard())

	return lifecycle.NewSweeper(lifecycle.Deps{
		Roster:          members,
		Assignments:     f.Store.Assignments(),
		Progress:        progress,
		Board:           board,
		Messenger:       f.Messenger,
		ReminderChannel: "workflow",
	}, testsupport.Discard(), lifecycle.WithClock(f.Clock.Now))
}

// # Reminders

func TestReminders_FiresOncePerInterval(t *testing.T) {
	f := testsupport.NewFixture(pipeline.Translation)
	member := f.AddMember("tl", sec.AuthorityMember)
	member.ReminderInterval = roster.Remind7Days
	f.Store.PutMember(member)

	f.Store.PutAssignment(&ledger.Assignment{
		ID: "a-1", ChapterID: f.Chapter.ID, SeriesJobID: f.Stages[pipeline.Translation].ID,
		AssignedTo: "tl", Status: ledger.StatusInProgress, CreatedAt: f.Clock.Now().Add(-8 * day),
	})
	sweeper := newSweeper(f, &stubBoard{})

	report, err := sweeper.Reminders(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Sent)

	reminders := f.Messenger.SentTo("workflow")
	require.Len(t, reminders, 1)
	assert.Contains(t, reminders[0].Content, "<@tl>")
	assert.Contains(t, reminders[0].Content, "`Chapter 1`")
	require.NotNil(t, f.Store.Assignment("a-1").RemindedAt)
	assert.Equal(t, f.Clock.Now(), *f.Store.Assignment("a-1").RemindedAt)

	report, err = sweeper.Reminders(context.Background())
	require.NoError(t, err)
	assert.Zero(t, report.Sent)
	assert.Len(t, f.Messenger.SentTo("workflow"), 1)

	f.Clock.Advance(7 * day)
	report, err = sweeper.Reminders(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Sent)
}

func TestReminders_SkipsBlockedStages(t *testing.T) {
	f := testsupport.NewFixture(pipeline.Translation, pipeline.Proofreading)
	member := f.AddMember("pr", sec.AuthorityMember)
	member.ReminderInterval = roster.Remind3Days
	f.Store.PutMember(member)

	created := f.Clock.Now().Add(-4 * day)
	f.Store.PutAssignment(&ledger.Assignment{
		ID: "a-tl", ChapterID: f.Chapter.ID, SeriesJobID: f.Stages[pipeline.Translation].ID,
		AssignedTo: "tl", Status: ledger.StatusInProgress, CreatedAt: created,
	})
	f.Store.PutAssignment(&ledger.Assignment{
		ID: "a-pr", ChapterID: f.Chapter.ID, SeriesJobID: f.Stages[pipeline.Proofreading].ID,
		AssignedTo: "pr", CreatedAt: created,
	})

	report, err := newSweeper(f, &stubBoard{}).Reminders(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Blocked)
	assert.Zero(t, report.Sent)
	assert.Nil(t, f.Store.Assignment("a-pr").RemindedAt)
}

func TestReminders_SendFailureLeavesStampAlone(t *testing.T) {
	f := testsupport.NewFixture(pipeline.Translation)
	member := f.AddMember("tl", sec.AuthorityMember)
	member.ReminderInterval = roster.Remind3Days
	f.Store.PutMember(member)
	f.Store.PutAssignment(&ledger.Assignment{
		ID: "a-1", ChapterID: f.Chapter.ID, SeriesJobID: f.Stages[pipeline.Translation].ID,
		AssignedTo: "tl", CreatedAt: f.Clock.Now().Add(-4 * day),
	})
	f.Messenger.Fail("send", testsupport.ErrInjected)

	report, err := newSweeper(f, &stubBoard{}).Reminders(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Failed)
	assert.Nil(t, f.Store.Assignment("a-1").RemindedAt)
}

// # Inactivity

func idleMember(f *testsupport.Fixture, discordID string, idle time.Duration, memberRoles ...string) {
	member := f.AddMember(discordID, sec.AuthorityMember)
	member.CreatedAt = f.Clock.Now().Add(-idle)
	f.Store.PutMember(member)
	f.Messenger.SetRoles(discordID, memberRoles...)
}

func TestInactivity_RetiresIdleFullMemberOnce(t *testing.T) {
	f := testsupport.NewFixture(pipeline.Translation)
	idleMember(f, "veteran", 91*day, "r-full", "r-lead-not", "cosmetic")
	sweeper := newSweeper(f, &stubBoard{})

	report, err := sweeper.Inactivity(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Retired)

	retired := f.Store.Retired("veteran")
	require.NotNil(t, retired)
	assert.Equal(t, []string{"r-full"}, retired.Roles)
	assert.Equal(t, roster.TierFull, retired.Tier)
	assert.ElementsMatch(t, []string{"r-lead-not", "cosmetic"}, f.Messenger.Roles("veteran"))
	require.Len(t, f.Messenger.DirectMessages(), 1)

	f.Clock.Advance(time.Hour)
	report, err = sweeper.Inactivity(context.Background())
	require.NoError(t, err)
	assert.Zero(t, report.Retired)
	assert.Len(t, f.Messenger.DirectMessages(), 1)

	f.Clock.Advance(30 * day)
	_, err = sweeper.Inactivity(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, f.Store.Retired("veteran"), "full members stay in the holding table")
}

func TestInactivity_Tiers(t *testing.T) {
	f := testsupport.NewFixture(pipeline.Translation)
	idleMember(f, "fresh-full", 89*day, "r-full")
	idleMember(f, "idle-prob", 30*day, "r-prob")
	idleMember(f, "idle-trial", 31*day, "r-trial")
	idleMember(f, "lead", 400*day, "r-full", "r-lead")
	idleMember(f, "busy", 400*day, "r-trial")
	f.Store.PutAssignment(&ledger.Assignment{
		ID: "a-busy", ChapterID: f.Chapter.ID, SeriesJobID: f.Stages[pipeline.Translation].ID,
		AssignedTo: "busy", CreatedAt: f.Clock.Now().Add(-300 * day),
	})
	sweeper := newSweeper(f, &stubBoard{})

	report, err := sweeper.Inactivity(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, report.Checked)
	assert.Equal(t, 2, report.Exempt)
	assert.Equal(t, 1, report.Retired)
	assert.Equal(t, 1, report.Removed)

	assert.NotNil(t, f.Store.Member("fresh-full"))
	assert.NotNil(t, f.Store.Retired("idle-prob"))
	assert.Nil(t, f.Store.Member("idle-trial"))
	assert.Nil(t, f.Store.Retired("idle-trial"))
	assert.Empty(t, f.Messenger.Roles("idle-trial"))

	require.Len(t, f.Messenger.DirectMessages(), 1)
	assert.Contains(t, f.Messenger.DirectMessages()[0].Content, "Restore them within 7 days")

	t.Run("probationary grace runs out", func(t *testing.T) {
		f.Clock.Advance(constants.EscalationCooldown)
		report, err := sweeper.Inactivity(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, report.RetiredRemoved)
		assert.Nil(t, f.Store.Retired("idle-prob"))
	})
}

func TestInactivity_RecentCompletionCounts(t *testing.T) {
	f := testsupport.NewFixture(pipeline.Translation)
	idleMember(f, "veteran", 200*day, "r-full")

	completed := f.Clock.Now().Add(-10 * day)
	f.Store.PutAssignment(&ledger.Assignment{
		ID: "a-done", ChapterID: f.Chapter.ID, SeriesJobID: f.Stages[pipeline.Translation].ID,
		AssignedTo: "veteran", Status: ledger.StatusCompleted, CreatedAt: completed.Add(-day), CompletedAt: &completed,
	})
	_, err := f.Store.Chapters().Archive(context.Background(), f.Chapter.ID)
	require.NoError(t, err)

	report, err := newSweeper(f, &stubBoard{}).Inactivity(context.Background())
	require.NoError(t, err)
	assert.Zero(t, report.Retired, "archived completions still count as activity")
}

func TestInactivity_FailedEscalationRetriesAfterShortCooldown(t *testing.T) {
	f := testsupport.NewFixture(pipeline.Translation)
	idleMember(f, "veteran", 91*day, "r-full")
	sweeper := newSweeper(f, &stubBoard{})
	f.Messenger.Fail("remove_role", testsupport.ErrInjected)

	report, err := sweeper.Inactivity(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Failed)
	require.NotNil(t, f.Store.Member("veteran").RemindedAt)

	f.Messenger.Fail("remove_role", nil)
	f.Clock.Advance(time.Hour)
	report, err = sweeper.Inactivity(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Exempt)

	f.Clock.Advance(constants.EscalationRetryCooldown)
	report, err = sweeper.Inactivity(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Retired)
}

func TestInactivity_RestoredMemberExpiresAgain(t *testing.T) {
	f := testsupport.NewFixture(pipeline.Translation)
	idleMember(f, "veteran", 91*day, "r-full")
	members := roster.NewService(f.Store.Roster(), f.Messenger, roles, testsupport.Discard(), roster.WithClock(f.Clock.Now))
	sweeper := newSweeper(f, &stubBoard{})

	_, err := sweeper.Inactivity(context.Background())
	require.NoError(t, err)

	f.Clock.Advance(day)
	_, err = members.Restore(context.Background(), testsupport.Actor("veteran"), "veteran")
	require.NoError(t, err)

	f.Clock.Advance(constants.EscalationCooldown - time.Hour)
	report, err := sweeper.Inactivity(context.Background())
	require.NoError(t, err)
	assert.Zero(t, report.Retired)

	f.Clock.Advance(2 * time.Hour)
	report, err = sweeper.Inactivity(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Retired)
}

// # Board

func TestBoardExpiry(t *testing.T) {
	f := testsupport.NewFixture(pipeline.Translation)

	removed, err := newSweeper(f, &stubBoard{removed: 3}).BoardExpiry(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, removed)

	_, err = newSweeper(f, &stubBoard{err: errors.New("store down")}).BoardExpiry(context.Background())
	assert.Error(t, err)
}
