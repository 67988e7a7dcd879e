// Copyright (c) 2026 Milize. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package board_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/milize/internal/core/board"
	"github.com/taibuivan/milize/internal/core/ledger"
	"github.com/taibuivan/milize/internal/core/pipeline"
	"github.com/taibuivan/milize/internal/core/roster"
	"github.com/taibuivan/milize/internal/platform/apperr"
	"github.com/taibuivan/milize/internal/platform/messaging"
	"github.com/taibuivan/milize/internal/platform/sec"
	"github.com/taibuivan/milize/internal/testsupport"
)

const boardTTL = 72 * time.Hour

var roles = roster.RoleMap{Trial: "r-trial", Probationary: "r-prob", Full: "r-full"}

type harness struct {
	f      *testsupport.Fixture
	ledger *ledger.Service
	board  *board.Service
}

func newHarness() *harness {
	f := testsupport.NewFixture(pipeline.Translation, pipeline.Typesetting)
	return buildHarness(f, f.Messenger)
}

func buildHarness(f *testsupport.Fixture, messenger messaging.Messenger) *harness {
	members := roster.NewService(f.Store.Roster(), f.Messenger, roles, testsupport.Discard(), roster.WithClock(f.Clock.Now))
	claims := ledger.NewService(f.Store.Assignments(), f.Store.Chapters(), f.Store.Series(), f.Store.Roster(),
		testsupport.Discard(), ledger.WithClock(f.Clock.Now))

	service := board.NewService(board.Deps{
		Repo:        f.Store.Board(),
		Claimer:     claims,
		Assignments: f.Store.Assignments(),
		Chapters:    f.Store.Chapters(),
		Series:      f.Store.Series(),
		Roster:      members,
		Messenger:   messenger,
	}, boardTTL, testsupport.Discard(), board.WithClock(f.Clock.Now))
	claims.OnClaim(service)

	return &harness{f: f, ledger: claims, board: service}
}

func (h *harness) post(chapterID string, minTier roster.Tier) (*board.Posting, error) {
	return h.board.Post(context.Background(), testsupport.Manager("pm"), chapterID, h.f.Stages[pipeline.Typesetting].ID, minTier)
}

func TestPost(t *testing.T) {
	h := newHarness()

	posting, err := h.post(h.f.Chapter.ID, roster.TierProbationary)
	require.NoError(t, err)
	assert.Equal(t, "board-typesetting", posting.ChannelID)
	require.Len(t, h.f.Messenger.SentTo("board-typesetting"), 1)

	t.Run("same pair twice", func(t *testing.T) {
		_, err := h.post(h.f.Chapter.ID, roster.TierTrial)
		assert.True(t, apperr.HasCode(err, apperr.CodeAlreadyPosted))
	})

	t.Run("one posting per stage across the series", func(t *testing.T) {
		other := h.f.AddChapter("Chapter 2")
		_, err := h.post(other.ID, roster.TierTrial)
		assert.True(t, apperr.HasCode(err, apperr.CodePolicy))
	})

	t.Run("assigned stage", func(t *testing.T) {
		other := h.f.AddChapter("Chapter 3")
		h.f.AddMember("ts", sec.AuthorityMember)
		_, err := h.ledger.Claim(context.Background(), testsupport.Actor("ts"), other.ID, h.f.Stages[pipeline.Typesetting].ID)
		require.NoError(t, err)

		_, err = h.post(other.ID, roster.TierTrial)
		assert.True(t, apperr.HasCode(err, apperr.CodeAlreadyClaimed))
	})

	t.Run("member cannot post", func(t *testing.T) {
		_, err := h.board.Post(context.Background(), testsupport.Actor("ts"), h.f.Chapter.ID, h.f.Stages[pipeline.Typesetting].ID, roster.TierTrial)
		assert.True(t, apperr.HasCode(err, apperr.CodeForbidden))
	})

	assert.Len(t, h.f.Messenger.SentTo("board-typesetting"), 1, "refusals never reach the chat platform")
}

func TestPost_ConcurrentPostsKeepOneMessage(t *testing.T) {
	h := newHarness()
	chapters := []string{h.f.Chapter.ID}
	for i := range 7 {
		chapters = append(chapters, h.f.AddChapter(fmt.Sprintf("Chapter %d", i+2)).ID)
	}

	var wg sync.WaitGroup
	for _, chapterID := range chapters {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = h.post(chapterID, roster.TierTrial)
		}()
	}
	wg.Wait()

	require.Len(t, h.f.Store.Postings(), 1)
	sent := h.f.Messenger.SentTo("board-typesetting")
	assert.Len(t, sent, 1+len(h.f.Messenger.Deleted()), "every losing message is retracted")
}

// claimOnSend runs a hook after each message it sends.
type claimOnSend struct {
	*testsupport.Messenger
	hook func()
}

func (m *claimOnSend) Send(ctx context.Context, channelID, content string) (string, error) {
	id, err := m.Messenger.Send(ctx, channelID, content)
	if err == nil && m.hook != nil {
		m.hook()
		m.hook = nil
	}
	return id, err
}

func TestPost_ClaimedWhileSending(t *testing.T) {
	f := testsupport.NewFixture(pipeline.Translation, pipeline.Typesetting)
	messenger := &claimOnSend{Messenger: f.Messenger}
	h := buildHarness(f, messenger)
	f.AddMember("ts", sec.AuthorityMember)

	messenger.hook = func() {
		_, err := h.ledger.Claim(context.Background(), testsupport.Actor("ts"), f.Chapter.ID, f.Stages[pipeline.Typesetting].ID)
		require.NoError(t, err)
	}

	_, err := h.post(f.Chapter.ID, roster.TierTrial)
	assert.True(t, apperr.HasCode(err, apperr.CodeAlreadyClaimed), "got %v", err)
	assert.Empty(t, f.Store.Postings(), "no posting outlives the claim")

	sent := f.Messenger.SentTo("board-typesetting")
	require.Len(t, sent, 1)
	assert.Equal(t, []string{sent[0].ID}, f.Messenger.Deleted())
}

func TestPost_AnnouncesToQualifiedRecipients(t *testing.T) {
	h := newHarness()
	stageRole := h.f.Stages[pipeline.Typesetting].RoleID

	qualified := h.f.AddMember("qualified", sec.AuthorityMember)
	qualified.BoardNotifications = true
	h.f.Store.PutMember(qualified)
	h.f.Messenger.SetRoles("qualified", "r-full", stageRole)

	junior := h.f.AddMember("junior", sec.AuthorityMember)
	junior.BoardNotifications = true
	h.f.Store.PutMember(junior)
	h.f.Messenger.SetRoles("junior", "r-trial", stageRole)

	subscriber := h.f.AddMember("subscriber", sec.AuthorityMember)
	_, err := h.f.Store.Roster().Subscribe(context.Background(), subscriber.ID, h.f.Series.ID, h.f.Clock.Now())
	require.NoError(t, err)
	h.f.Messenger.SetRoles("subscriber", "r-prob", stageRole)

	posting, err := h.post(h.f.Chapter.ID, roster.TierProbationary)
	require.NoError(t, err)

	sent := h.f.Messenger.SentTo("board-typesetting")
	require.Len(t, sent, 1)
	assert.Contains(t, sent[0].Content, "<@qualified>")
	assert.Contains(t, sent[0].Content, "<@subscriber>")
	assert.NotContains(t, sent[0].Content, "<@junior>", "below the minimum tier")

	edited, ok := h.f.Messenger.Edited(posting.MessageID)
	require.True(t, ok, "the mentions are stripped once sent")
	assert.NotContains(t, edited, "<@")
	assert.Contains(t, edited, "needs Typesetting")
	assert.Empty(t, h.f.Messenger.DirectMessages())
}

func TestPost_WithoutRecipientsSkipsEdit(t *testing.T) {
	h := newHarness()

	posting, err := h.post(h.f.Chapter.ID, roster.TierTrial)
	require.NoError(t, err)

	_, ok := h.f.Messenger.Edited(posting.MessageID)
	assert.False(t, ok)
}

func TestPost_TitleCasesStageName(t *testing.T) {
	h := newHarness()
	stage := *h.f.Stages[pipeline.Typesetting]
	stage.Name = "typesetting and lettering"
	h.f.Store.PutSeriesJob(&stage)

	_, err := h.post(h.f.Chapter.ID, roster.TierTrial)
	require.NoError(t, err)

	sent := h.f.Messenger.SentTo("board-typesetting")
	require.Len(t, sent, 1)
	assert.Contains(t, sent[0].Content, "needs Typesetting and Lettering")
}

func TestClaimViaBoard(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	stageRole := h.f.Stages[pipeline.Typesetting].RoleID

	posting, err := h.post(h.f.Chapter.ID, roster.TierProbationary)
	require.NoError(t, err)

	h.f.AddMember("trial", sec.AuthorityMember)
	h.f.Messenger.SetRoles("trial", "r-trial", stageRole)
	h.f.AddMember("full", sec.AuthorityMember)
	h.f.Messenger.SetRoles("full", "r-full", stageRole)

	t.Run("tier too low", func(t *testing.T) {
		_, err := h.board.ClaimViaBoard(ctx, testsupport.Actor("trial"), posting.MessageID)
		assert.True(t, apperr.HasCode(err, apperr.CodeTierTooLow))
	})

	t.Run("claim removes the posting", func(t *testing.T) {
		result, err := h.board.ClaimViaBoard(ctx, testsupport.Actor("full"), posting.MessageID)
		require.NoError(t, err)
		require.NotNil(t, result)
		assert.Equal(t, "full", result.Assignment.AssignedTo)
		assert.Empty(t, h.f.Store.Postings())
		assert.Contains(t, h.f.Messenger.Deleted(), posting.MessageID)
	})

	t.Run("stale message is a lost race", func(t *testing.T) {
		result, err := h.board.ClaimViaBoard(ctx, testsupport.Actor("full"), posting.MessageID)
		assert.NoError(t, err)
		assert.Nil(t, result)
	})
}

func TestClaimViaBoard_LostToDirectClaim(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	stage := h.f.Stages[pipeline.Typesetting]

	posting, err := h.post(h.f.Chapter.ID, roster.TierTrial)
	require.NoError(t, err)

	h.f.AddMember("winner", sec.AuthorityMember)
	h.f.AddMember("late", sec.AuthorityMember)
	h.f.Messenger.SetRoles("late", "r-trial", stage.RoleID)

	// A concurrent direct claim already holds the pair.
	h.f.Store.PutAssignment(&ledger.Assignment{
		ID: "a-race", ChapterID: h.f.Chapter.ID, SeriesJobID: stage.ID, AssignedTo: "winner", CreatedAt: h.f.Clock.Now(),
	})

	result, err := h.board.ClaimViaBoard(ctx, testsupport.Actor("late"), posting.MessageID)
	assert.NoError(t, err)
	assert.Nil(t, result)
}

func TestSweepExpired(t *testing.T) {
	h := newHarness()

	_, err := h.post(h.f.Chapter.ID, roster.TierTrial)
	require.NoError(t, err)

	h.f.Clock.Advance(boardTTL - time.Minute)
	expired, err := h.board.SweepExpired(context.Background())
	require.NoError(t, err)
	assert.Zero(t, expired)

	h.f.Messenger.Fail("delete", testsupport.ErrInjected)
	h.f.Clock.Advance(2 * time.Minute)
	expired, err = h.board.SweepExpired(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, expired, "a failed retraction still drops the row")
	assert.Empty(t, h.f.Store.Postings())
}

func TestChapterArchived_DropsPostings(t *testing.T) {
	h := newHarness()
	posting, err := h.post(h.f.Chapter.ID, roster.TierTrial)
	require.NoError(t, err)

	h.board.ChapterArchived(context.Background(), h.f.Chapter)

	assert.Empty(t, h.f.Store.Postings())
	assert.Equal(t, []string{posting.MessageID}, h.f.Messenger.Deleted())
}
