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
	"github.com/taibuivan/milize/internal/core/series"
	"github.com/taibuivan/milize/internal/platform/apperr"
	"github.com/taibuivan/milize/internal/testsupport"
	"github.com/taibuivan/milize/pkg/pointer"
)

func newPublishService(f *testsupport.Fixture) *publish.Service {
	return publish.NewService(f.Store.PublicationQueue(), f.Store.Series(), f.Store.Chapters(), "default-reports",
		testsupport.Discard(), publish.WithClock(f.Clock.Now))
}

func validRequest(f *testsupport.Fixture) publish.Request {
	return publish.Request{
		SeriesID:      f.Series.ID,
		ChapterID:     pointer.To(f.Chapter.ID),
		GroupIDs:      []string{"group-a"},
		ChapterNumber: "12",
		SourcePrefix:  "ch12",
		DueAt:         f.Clock.Now().Add(time.Hour),
	}
}

func TestSchedule(t *testing.T) {
	f := testsupport.NewFixture()
	service := newPublishService(f)
	ctx := context.Background()

	publication, err := service.Schedule(ctx, testsupport.Manager("pm"), validRequest(f))
	require.NoError(t, err)
	assert.Equal(t, "manga-1", publication.MangaID)
	assert.Equal(t, "en", publication.Language)
	assert.Equal(t, "default-reports", publication.ReportChannelID)
	assert.Equal(t, f.Series.MirrorKey, publication.MirrorKey)
	assert.Equal(t, "pm", publication.RequestedBy)

	listed, err := service.List(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 1)

	require.NoError(t, service.Cancel(ctx, testsupport.Manager("pm"), publication.ID))
	assert.True(t, apperr.IsNotFound(service.Cancel(ctx, testsupport.Manager("pm"), publication.ID)))
}

func TestSchedule_Refusals(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*publish.Request, *testsupport.Fixture)
		code   string
	}{
		{"missing groups", func(r *publish.Request, _ *testsupport.Fixture) { r.GroupIDs = nil }, apperr.CodeValidation},
		{"missing source", func(r *publish.Request, _ *testsupport.Fixture) { r.SourcePrefix = "" }, apperr.CodeValidation},
		{"due in the past", func(r *publish.Request, f *testsupport.Fixture) { r.DueAt = f.Clock.Now().Add(-time.Hour) }, apperr.CodeValidation},
		{"unknown series", func(r *publish.Request, _ *testsupport.Fixture) { r.SeriesID = "nope" }, apperr.CodeNotFound},
		{"chapter of another series", func(r *publish.Request, f *testsupport.Fixture) {
			other := *f.Chapter
			other.ID, other.SeriesID = "foreign", "series-2"
			f.Store.PutChapter(&other)
			r.ChapterID = pointer.To("foreign")
		}, apperr.CodeValidation},
		{"archived series", func(_ *publish.Request, f *testsupport.Fixture) {
			require.NoError(t, f.Store.Series().SetArchived(context.Background(), f.Series.ID, true))
		}, apperr.CodeArchived},
		{"blocked target", func(_ *publish.Request, f *testsupport.Fixture) {
			blocked := *f.Series
			blocked.BlockedTargets = []string{series.TargetMangaDex}
			f.Store.PutSeries(&blocked)
		}, apperr.CodePolicy},
		{"no target id", func(_ *publish.Request, f *testsupport.Fixture) {
			bare := *f.Series
			bare.MangaDexID = nil
			f.Store.PutSeries(&bare)
		}, apperr.CodePolicy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := testsupport.NewFixture()
			request := validRequest(f)
			tt.mutate(&request, f)

			_, err := newPublishService(f).Schedule(context.Background(), testsupport.Manager("pm"), request)
			assert.True(t, apperr.HasCode(err, tt.code), "got %v", err)
			assert.Empty(t, f.Store.Publications())
		})
	}

	t.Run("members cannot schedule", func(t *testing.T) {
		f := testsupport.NewFixture()
		_, err := newPublishService(f).Schedule(context.Background(), testsupport.Actor("tl"), validRequest(f))
		assert.True(t, apperr.HasCode(err, apperr.CodeForbidden))
	})
}

func TestSchedule_MirrorBlockedDropsMirrorKey(t *testing.T) {
	f := testsupport.NewFixture()
	blocked := *f.Series
	blocked.BlockedTargets = []string{series.TargetMirror}
	f.Store.PutSeries(&blocked)

	publication, err := newPublishService(f).Schedule(context.Background(), testsupport.Manager("pm"), validRequest(f))
	require.NoError(t, err)
	assert.Nil(t, publication.MirrorKey)
}
