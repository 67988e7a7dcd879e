// Copyright (c) 2026 Milize. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package chapter_test

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/milize/internal/core/chapter"
	"github.com/taibuivan/milize/internal/core/ledger"
	"github.com/taibuivan/milize/internal/core/pipeline"
	"github.com/taibuivan/milize/internal/core/series"
	"github.com/taibuivan/milize/internal/platform/apperr"
	"github.com/taibuivan/milize/internal/platform/constants"
	"github.com/taibuivan/milize/internal/testsupport"
)

type archiveLog struct{ ids []string }

func (log *archiveLog) ChapterArchived(_ context.Context, ch *chapter.Chapter) {
	log.ids = append(log.ids, ch.ID)
}

func TestCreate_Cap(t *testing.T) {
	f := testsupport.NewFixture(pipeline.Translation)
	service := chapter.NewService(f.Store.Chapters(), f.Store.Series(), testsupport.Discard(), chapter.WithClock(f.Clock.Now))
	ctx := context.Background()
	pm := testsupport.Manager("pm")

	// The fixture already holds one live work item.
	for i := 2; i <= constants.MaxLiveChapters; i++ {
		_, err := service.Create(ctx, pm, f.Series.ID, fmt.Sprintf("Chapter %d", i), nil)
		require.NoError(t, err)
	}

	_, err := service.Create(ctx, pm, f.Series.ID, "One too many", nil)
	assert.True(t, apperr.HasCode(err, apperr.CodeCapReached))

	_, err = service.Create(ctx, pm, f.Series.ID, "Chapter 2", nil)
	assert.True(t, apperr.IsConflict(err))

	_, err = service.Create(ctx, testsupport.Actor("tl"), f.Series.ID, "Chapter 99", nil)
	assert.True(t, apperr.HasCode(err, apperr.CodeForbidden))
}

func TestCreate_ConcurrentCreatesHoldCap(t *testing.T) {
	f := testsupport.NewFixture(pipeline.Translation)
	service := chapter.NewService(f.Store.Chapters(), f.Store.Series(), testsupport.Discard())
	pm := testsupport.Manager("pm")

	var (
		wg      sync.WaitGroup
		created atomic.Int32
		capped  atomic.Int32
	)
	for i := range constants.MaxLiveChapters + 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := service.Create(context.Background(), pm, f.Series.ID, fmt.Sprintf("Extra %d", i), nil)
			switch {
			case err == nil:
				created.Add(1)
			case apperr.HasCode(err, apperr.CodeCapReached):
				capped.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(constants.MaxLiveChapters-1), created.Load())
	assert.Equal(t, int32(11), capped.Load())

	live, err := service.ListLive(context.Background(), f.Series.ID)
	require.NoError(t, err)
	assert.Len(t, live, constants.MaxLiveChapters)
}

func TestArchive_RoundTrip(t *testing.T) {
	f := testsupport.NewFixture(pipeline.Translation)
	observer := &archiveLog{}
	service := chapter.NewService(f.Store.Chapters(), f.Store.Series(), testsupport.Discard(), chapter.WithArchiveObserver(observer))
	ctx := context.Background()
	pm := testsupport.Manager("pm")

	assignment := &ledger.Assignment{ID: "a-1", ChapterID: f.Chapter.ID, SeriesJobID: f.Stages[pipeline.Translation].ID, AssignedTo: "tl"}
	f.Store.PutAssignment(assignment)

	require.NoError(t, service.Archive(ctx, pm, f.Chapter.ID))
	assert.Nil(t, f.Store.Assignment("a-1"))
	require.Len(t, f.Store.ArchivedAssignments(), 1)
	assert.Equal(t, []string{f.Chapter.ID}, observer.ids)

	require.NoError(t, service.Archive(ctx, pm, f.Chapter.ID), "archiving twice is a no-op")
	assert.Len(t, observer.ids, 1)

	require.NoError(t, service.Unarchive(ctx, pm, f.Chapter.ID))
	assert.NotNil(t, f.Store.Assignment("a-1"))
	assert.Empty(t, f.Store.ArchivedAssignments())

	live, err := service.ListLive(ctx, f.Series.ID)
	require.NoError(t, err)
	assert.Len(t, live, 1)
}

func TestUnarchive_RespectsCap(t *testing.T) {
	f := testsupport.NewFixture(pipeline.Translation)
	service := chapter.NewService(f.Store.Chapters(), f.Store.Series(), testsupport.Discard())
	ctx := context.Background()
	pm := testsupport.Manager("pm")

	require.NoError(t, service.Archive(ctx, pm, f.Chapter.ID))
	for i := 2; i <= constants.MaxLiveChapters+1; i++ {
		f.AddChapter(fmt.Sprintf("Chapter %d", i))
	}

	err := service.Unarchive(ctx, pm, f.Chapter.ID)
	assert.True(t, apperr.HasCode(err, apperr.CodeCapReached))
}

func TestSeriesArchive_Cascades(t *testing.T) {
	f := testsupport.NewFixture(pipeline.Translation)
	chapters := chapter.NewService(f.Store.Chapters(), f.Store.Series(), testsupport.Discard())
	catalogue := series.NewService(f.Store.Series(), chapters, testsupport.Discard())
	ctx := context.Background()
	pm := testsupport.Manager("pm")
	f.AddChapter("Chapter 2")

	archived, err := catalogue.Archive(ctx, pm, f.Series.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, archived)

	_, err = chapters.Create(ctx, pm, f.Series.ID, "Chapter 3", nil)
	assert.True(t, apperr.HasCode(err, apperr.CodeArchived))

	err = chapters.Unarchive(ctx, pm, f.Chapter.ID)
	assert.True(t, apperr.HasCode(err, apperr.CodeArchived), "work items wait for the series")

	require.NoError(t, catalogue.Unarchive(ctx, pm, f.Series.ID))
	require.NoError(t, chapters.Unarchive(ctx, pm, f.Chapter.ID))

	live, err := chapters.ListLive(ctx, f.Series.ID)
	require.NoError(t, err)
	assert.Len(t, live, 1)
}
