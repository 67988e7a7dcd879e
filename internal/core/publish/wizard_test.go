// Copyright (c) 2026 Milize. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package publish_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/milize/internal/core/publish"
	"github.com/taibuivan/milize/internal/platform/apperr"
	"github.com/taibuivan/milize/internal/testsupport"
	"github.com/taibuivan/milize/pkg/pointer"
)

func newWizard(f *testsupport.Fixture) (*publish.Wizard, *testsupport.Drafts) {
	drafts := testsupport.NewDrafts()
	return publish.NewWizard(drafts, newPublishService(f), testsupport.Discard()), drafts
}

func TestWizard_FullSession(t *testing.T) {
	f := testsupport.NewFixture()
	wizard, _ := newWizard(f)
	ctx := context.Background()
	pm := testsupport.Manager("pm")

	draft, err := wizard.Start(ctx, pm)
	require.NoError(t, err)
	assert.Equal(t, publish.DraftSeries, draft.Step)

	draft, err = wizard.Advance(ctx, pm, draft.ID, publish.DraftInput{SeriesID: pointer.To(f.Series.ID)})
	require.NoError(t, err)
	assert.Equal(t, publish.DraftChapter, draft.Step)

	draft, err = wizard.Advance(ctx, pm, draft.ID, publish.DraftInput{ChapterID: pointer.To(f.Chapter.ID), ChapterNumber: pointer.To("12")})
	require.NoError(t, err)
	assert.Equal(t, publish.DraftDetails, draft.Step)

	draft, err = wizard.Advance(ctx, pm, draft.ID, publish.DraftInput{
		GroupIDs:     []string{"group-a"},
		SourcePrefix: pointer.To("ch12"),
		Title:        pointer.To("Low Tide"),
	})
	require.NoError(t, err)
	assert.Equal(t, publish.DraftSchedule, draft.Step)

	_, err = wizard.Confirm(ctx, pm, draft.ID)
	assert.True(t, apperr.HasCode(err, apperr.CodePolicy), "a due time is needed first")

	first := f.Clock.Now().Add(time.Hour)
	_, err = wizard.Advance(ctx, pm, draft.ID, publish.DraftInput{DueAt: &first})
	require.NoError(t, err)

	second := f.Clock.Now().Add(2 * time.Hour)
	draft, err = wizard.Advance(ctx, pm, draft.ID, publish.DraftInput{DueAt: &second, ReportChannelID: pointer.To("reports")})
	require.NoError(t, err)
	assert.Equal(t, publish.DraftSchedule, draft.Step, "the due time can change until confirmed")

	publication, err := wizard.Confirm(ctx, pm, draft.ID)
	require.NoError(t, err)
	assert.Equal(t, second, publication.DueAt)
	assert.Equal(t, "reports", publication.ReportChannelID)
	assert.Equal(t, "Low Tide", *publication.Title)
	require.Len(t, f.Store.Publications(), 1)

	draft, err = wizard.Get(ctx, pm, draft.ID)
	require.NoError(t, err)
	assert.Equal(t, publish.DraftConfirmed, draft.Step)
	assert.Equal(t, publication.ID, draft.PublicationID)

	_, err = wizard.Confirm(ctx, pm, draft.ID)
	assert.True(t, apperr.IsConflict(err))
	_, err = wizard.Advance(ctx, pm, draft.ID, publish.DraftInput{})
	assert.True(t, apperr.IsConflict(err))
}

func TestWizard_StepValidation(t *testing.T) {
	f := testsupport.NewFixture()
	wizard, _ := newWizard(f)
	ctx := context.Background()
	pm := testsupport.Manager("pm")

	draft, err := wizard.Start(ctx, pm)
	require.NoError(t, err)

	_, err = wizard.Advance(ctx, pm, draft.ID, publish.DraftInput{})
	assert.True(t, apperr.HasCode(err, apperr.CodeValidation))

	_, err = wizard.Advance(ctx, pm, draft.ID, publish.DraftInput{SeriesID: pointer.To("missing")})
	assert.True(t, apperr.IsNotFound(err))

	draft, err = wizard.Get(ctx, pm, draft.ID)
	require.NoError(t, err)
	assert.Equal(t, publish.DraftSeries, draft.Step, "a refused answer keeps the step")

	_, err = wizard.Advance(ctx, pm, draft.ID, publish.DraftInput{SeriesID: pointer.To(f.Series.ID)})
	require.NoError(t, err)

	_, err = wizard.Advance(ctx, pm, draft.ID, publish.DraftInput{ChapterNumber: pointer.To("")})
	assert.True(t, apperr.HasCode(err, apperr.CodeValidation))

	_, err = wizard.Advance(ctx, pm, draft.ID, publish.DraftInput{ChapterNumber: pointer.To("3")})
	require.NoError(t, err)

	_, err = wizard.Advance(ctx, pm, draft.ID, publish.DraftInput{SourcePrefix: pointer.To("ch3")})
	assert.True(t, apperr.HasCode(err, apperr.CodeValidation), "groups are required")

	_, err = wizard.Advance(ctx, pm, draft.ID, publish.DraftInput{GroupIDs: []string{"g"}, SourcePrefix: pointer.To("ch3")})
	require.NoError(t, err)

	past := f.Clock.Now().Add(-time.Minute)
	_, err = wizard.Advance(ctx, pm, draft.ID, publish.DraftInput{DueAt: &past})
	assert.True(t, apperr.HasCode(err, apperr.CodeValidation))
}

func TestWizard_Isolation(t *testing.T) {
	f := testsupport.NewFixture()
	wizard, drafts := newWizard(f)
	ctx := context.Background()

	_, err := wizard.Start(ctx, testsupport.Actor("tl"))
	assert.True(t, apperr.HasCode(err, apperr.CodeForbidden))

	mine, err := wizard.Start(ctx, testsupport.Manager("pm"))
	require.NoError(t, err)
	theirs, err := wizard.Start(ctx, testsupport.Manager("pm2"))
	require.NoError(t, err)
	assert.NotEqual(t, mine.ID, theirs.ID)

	_, err = wizard.Get(ctx, testsupport.Manager("pm2"), mine.ID)
	assert.True(t, apperr.IsNotFound(err), "sessions are private to their owner")

	drafts.Forget(mine.ID)
	_, err = wizard.Advance(ctx, testsupport.Manager("pm"), mine.ID, publish.DraftInput{SeriesID: pointer.To(f.Series.ID)})
	assert.True(t, apperr.IsNotFound(err), "expired sessions are gone")
}
