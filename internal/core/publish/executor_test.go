// Copyright (c) 2026 Milize. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package publish_test

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/milize/internal/core/publish"
	"github.com/taibuivan/milize/internal/core/series"
	"github.com/taibuivan/milize/internal/platform/mangadex"
	"github.com/taibuivan/milize/internal/platform/objectstore"
	"github.com/taibuivan/milize/internal/testsupport"
	"github.com/taibuivan/milize/pkg/pointer"
)

// # Doubles

type fakeTarget struct {
	mu sync.Mutex

	staleSession string
	acceptLimit  int
	commitErr    error

	abandoned []string
	batches   [][]string
	contents  map[string]string
	draft     mangadex.ChapterDraft
	pageOrder []string
}

func newTarget() *fakeTarget {
	return &fakeTarget{contents: map[string]string{}}
}

func (target *fakeTarget) OpenSession(context.Context) (string, bool, error) {
	return target.staleSession, target.staleSession != "", nil
}

func (target *fakeTarget) AbandonSession(_ context.Context, sessionID string) error {
	target.abandoned = append(target.abandoned, sessionID)
	return nil
}

func (target *fakeTarget) BeginSession(_ context.Context, mangaID string, groupIDs []string) (string, error) {
	return "session-" + mangaID, nil
}

// UploadBatch accepts files in reverse order so callers must sort by file name.
func (target *fakeTarget) UploadBatch(_ context.Context, _ string, files []mangadex.File) ([]mangadex.UploadedFile, error) {
	target.mu.Lock()
	defer target.mu.Unlock()

	var names []string
	var accepted []mangadex.UploadedFile
	for index, file := range files {
		body, err := io.ReadAll(file.Body)
		if err != nil {
			return nil, err
		}
		names = append(names, file.Name)
		target.contents[file.Name] = string(body)
		if target.acceptLimit > 0 && index >= target.acceptLimit {
			continue
		}
		accepted = append(accepted, mangadex.UploadedFile{ID: "up-" + file.Name, Filename: file.Name})
	}
	target.batches = append(target.batches, names)
	slices.Reverse(accepted)
	return accepted, nil
}

func (target *fakeTarget) Commit(_ context.Context, _ string, draft mangadex.ChapterDraft, pageOrder []string) (string, error) {
	if target.commitErr != nil {
		return "", target.commitErr
	}
	target.draft = draft
	target.pageOrder = pageOrder
	return "remote-chapter", nil
}

type fakeSource map[string]string

func (source fakeSource) List(_ context.Context, prefix string) ([]string, error) {
	var keys []string
	for key := range source {
		if strings.HasPrefix(key, prefix+"/") {
			keys = append(keys, key)
		}
	}
	return keys, nil
}

func (source fakeSource) Open(_ context.Context, key string) (io.ReadCloser, error) {
	body, ok := source[key]
	if !ok {
		return nil, objectstore.ErrNotFound
	}
	return io.NopCloser(strings.NewReader(body)), nil
}

type upsert struct {
	key, title, number string
	chapter            objectstore.MirrorChapter
}

type fakeMirror struct{ upserts []upsert }

func (mirror *fakeMirror) UpsertChapter(_ context.Context, key, title, number string, chapter objectstore.MirrorChapter) error {
	mirror.upserts = append(mirror.upserts, upsert{key, title, number, chapter})
	return nil
}

// # Harness

type executorHarness struct {
	f        *testsupport.Fixture
	target   *fakeTarget
	source   fakeSource
	mirror   *fakeMirror
	executor *publish.Executor
}

func newExecutorHarness(pages int) *executorHarness {
	f := testsupport.NewFixture()
	source := fakeSource{"ch1/notes.txt": "not a page"}
	for i := 1; i <= pages; i++ {
		source[fmt.Sprintf("ch1/%03d.png", i)] = fmt.Sprintf("page %d", i)
	}

	h := &executorHarness{f: f, target: newTarget(), source: source, mirror: &fakeMirror{}}
	h.executor = publish.NewExecutor(h.target, h.source, f.Store.Series(), f.Messenger,
		publish.ExecutorConfig{StepTimeout: time.Second, MirrorGroup: "Milize Scans"},
		testsupport.Discard(),
		publish.WithMirror(h.mirror),
		publish.WithExecutorClock(f.Clock.Now),
	)
	return h
}

func (h *executorHarness) publication() *publish.Publication {
	return &publish.Publication{
		ID:              "pub-1",
		SeriesID:        h.f.Series.ID,
		MangaID:         "manga-1",
		GroupIDs:        []string{"group-a"},
		Volume:          pointer.To("2"),
		ChapterNumber:   "12",
		Title:           pointer.To("Low Tide"),
		Language:        "en",
		SourcePrefix:    "ch1",
		MirrorKey:       h.f.Series.MirrorKey,
		RequestedBy:     "pm",
		ReportChannelID: "reports",
		DueAt:           h.f.Clock.Now(),
	}
}

// # Tests

func TestExecute_PublishesInBatches(t *testing.T) {
	h := newExecutorHarness(12)

	result := h.executor.Execute(context.Background(), h.publication())

	require.True(t, result.Succeeded(), "failed at %s: %v", result.FailedStep, result.Err)
	assert.Equal(t, "remote-chapter", result.ChapterID)
	assert.Equal(t, 12, result.Pages)

	require.Len(t, h.target.batches, 3)
	assert.Len(t, h.target.batches[0], 5)
	assert.Len(t, h.target.batches[2], 2)
	assert.Equal(t, "001.png", h.target.batches[0][0])
	assert.Equal(t, "page 7", h.target.contents["007.png"])
	assert.NotContains(t, h.target.contents, "notes.txt")

	require.Len(t, h.target.pageOrder, 12)
	assert.Equal(t, "up-001.png", h.target.pageOrder[0])
	assert.Equal(t, "up-012.png", h.target.pageOrder[11])
	assert.Equal(t, "12", h.target.draft.Chapter)
	assert.Equal(t, "en", h.target.draft.TranslatedLanguage)

	require.Len(t, h.mirror.upserts, 1)
	entry := h.mirror.upserts[0]
	assert.Equal(t, *h.f.Series.MirrorKey, entry.key)
	assert.Equal(t, "Moonlit Harbor", entry.title)
	assert.Equal(t, "/proxy/api/mangadex/chapter/remote-chapter/", entry.chapter.Groups["Milize Scans"])
	assert.Equal(t, fmt.Sprintf("%d", h.f.Clock.Now().Unix()), entry.chapter.LastUpdated)

	reports := h.f.Messenger.SentTo("reports")
	require.Len(t, reports, 1)
	assert.Contains(t, reports[0].Content, "Published **Moonlit Harbor** chapter 12 (12 pages)")
}

func TestExecute_AbandonsStaleSession(t *testing.T) {
	h := newExecutorHarness(1)
	h.target.staleSession = "left-over"

	result := h.executor.Execute(context.Background(), h.publication())

	require.True(t, result.Succeeded())
	assert.Equal(t, []string{"left-over"}, h.target.abandoned)
}

func TestExecute_Failures(t *testing.T) {
	t.Run("partly accepted batch fails the upload", func(t *testing.T) {
		h := newExecutorHarness(5)
		h.target.acceptLimit = 3

		result := h.executor.Execute(context.Background(), h.publication())

		assert.Equal(t, publish.StepUpload, result.FailedStep)
		assert.ErrorContains(t, result.Err, "accepted 3 of 5")
		assert.Nil(t, h.target.pageOrder, "nothing is committed")
		assert.Empty(t, h.mirror.upserts)

		reports := h.f.Messenger.SentTo("reports")
		require.Len(t, reports, 1)
		assert.Contains(t, reports[0].Content, "<@pm>")
		assert.Contains(t, reports[0].Content, "`upload`")
	})

	t.Run("empty folder", func(t *testing.T) {
		h := newExecutorHarness(0)
		result := h.executor.Execute(context.Background(), h.publication())
		assert.Equal(t, publish.StepUpload, result.FailedStep)
	})

	t.Run("commit failure skips the mirror", func(t *testing.T) {
		h := newExecutorHarness(2)
		h.target.commitErr = fmt.Errorf("rejected")
		result := h.executor.Execute(context.Background(), h.publication())
		assert.Equal(t, publish.StepCommit, result.FailedStep)
		assert.Empty(t, h.mirror.upserts)
	})

	t.Run("target blocked after scheduling", func(t *testing.T) {
		h := newExecutorHarness(2)
		blocked := *h.f.Series
		blocked.BlockedTargets = []string{series.TargetMangaDex}
		h.f.Store.PutSeries(&blocked)

		result := h.executor.Execute(context.Background(), h.publication())
		assert.Equal(t, publish.StepSession, result.FailedStep)
		assert.Empty(t, h.target.batches)
	})

	t.Run("report failure does not change the result", func(t *testing.T) {
		h := newExecutorHarness(1)
		h.f.Messenger.Fail("send", testsupport.ErrInjected)
		result := h.executor.Execute(context.Background(), h.publication())
		assert.True(t, result.Succeeded())
	})
}

func TestExecute_MirrorBlockedSkipsMirror(t *testing.T) {
	h := newExecutorHarness(1)
	blocked := *h.f.Series
	blocked.BlockedTargets = []string{series.TargetMirror}
	h.f.Store.PutSeries(&blocked)

	result := h.executor.Execute(context.Background(), h.publication())

	require.True(t, result.Succeeded())
	assert.Empty(t, h.mirror.upserts)
}
