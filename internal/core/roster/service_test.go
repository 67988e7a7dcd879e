// Copyright (c) 2026 Milize. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package roster_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/milize/internal/core/roster"
	"github.com/taibuivan/milize/internal/platform/apperr"
	"github.com/taibuivan/milize/internal/platform/sec"
	"github.com/taibuivan/milize/internal/testsupport"
)

var roles = roster.RoleMap{Trial: "r-trial", Probationary: "r-prob", Full: "r-full", Leadership: []string{"r-lead"}}

func newRoster() (*roster.Service, *testsupport.Store, *testsupport.Messenger, *testsupport.Clock) {
	store := testsupport.NewStore()
	messenger := testsupport.NewMessenger()
	clock := testsupport.NewClock(testsupport.Epoch)
	return roster.NewService(store.Roster(), messenger, roles, testsupport.Discard(), roster.WithClock(clock.Now)), store, messenger, clock
}

func TestRoleMap_TierOf(t *testing.T) {
	assert.Equal(t, roster.TierFull, roles.TierOf([]string{"r-trial", "r-full"}))
	assert.Equal(t, roster.TierProbationary, roles.TierOf([]string{"r-prob"}))
	assert.Equal(t, roster.TierTrial, roles.TierOf([]string{"other", "r-trial"}))
	assert.Equal(t, roster.TierNone, roles.TierOf(nil))
	assert.True(t, roles.IsLeadership([]string{"x", "r-lead"}))
}

func TestReminderInterval_Duration(t *testing.T) {
	week, ok := roster.Remind7Days.Duration()
	assert.True(t, ok)
	assert.Equal(t, 7*24*time.Hour, week)

	_, ok = roster.RemindNever.Duration()
	assert.False(t, ok)
}

func TestAdd(t *testing.T) {
	service, _, _, _ := newRoster()
	ctx := context.Background()
	credit := "moon  reader"

	t.Run("manager adds a member", func(t *testing.T) {
		member, err := service.Add(ctx, testsupport.Manager("1"), "123456789012345678", &credit, sec.AuthorityMember)
		require.NoError(t, err)
		assert.True(t, member.StageNotifications)
		require.NotNil(t, member.CreditName)
	})

	t.Run("duplicate", func(t *testing.T) {
		_, err := service.Add(ctx, testsupport.Manager("1"), "123456789012345678", nil, sec.AuthorityMember)
		assert.True(t, apperr.IsConflict(err))
	})

	t.Run("member cannot add", func(t *testing.T) {
		_, err := service.Add(ctx, testsupport.Actor("1"), "223456789012345678", nil, sec.AuthorityMember)
		assert.True(t, apperr.HasCode(err, apperr.CodeForbidden))
	})

	t.Run("cannot grant above own authority", func(t *testing.T) {
		_, err := service.Add(ctx, testsupport.Manager("1"), "323456789012345678", nil, sec.AuthorityOwner)
		assert.True(t, apperr.HasCode(err, apperr.CodeValidation))
	})
}

func TestRetireAndRestore(t *testing.T) {
	service, store, messenger, clock := newRoster()
	ctx := context.Background()

	member := &roster.Member{ID: "m-1", DiscordID: "42", CreatedAt: testsupport.Epoch}
	store.PutMember(member)
	messenger.SetRoles("42", "r-full", "unrelated")

	require.NoError(t, service.Retire(ctx, member, []string{"r-full"}, roster.TierFull))
	assert.Equal(t, []string{"unrelated"}, messenger.Roles("42"))
	assert.Nil(t, store.Member("42"))

	retired := store.Retired("42")
	require.NotNil(t, retired)
	assert.Equal(t, []string{"r-full"}, retired.Roles)
	assert.Equal(t, roster.TierFull, retired.Tier)

	t.Run("others need authority", func(t *testing.T) {
		_, err := service.Restore(ctx, testsupport.Actor("7"), "42")
		assert.True(t, apperr.HasCode(err, apperr.CodeForbidden))
	})

	clock.Advance(48 * time.Hour)
	restored, err := service.Restore(ctx, testsupport.Actor("42"), "42")
	require.NoError(t, err)
	require.NotNil(t, restored.RemindedAt)
	assert.Equal(t, clock.Now(), *restored.RemindedAt)
	assert.ElementsMatch(t, []string{"unrelated", "r-full"}, messenger.Roles("42"))
	assert.Nil(t, store.Retired("42"))
	assert.NotNil(t, store.Member("42"))
}

// failingRepo lets a store move fail while everything else reaches the fake store.
type failingRepo struct {
	roster.Repository
	retire, restore error
}

func (r *failingRepo) Retire(ctx context.Context, discordID string, roles []string, tier roster.Tier, at time.Time) (bool, error) {
	if r.retire != nil {
		return false, r.retire
	}
	return r.Repository.Retire(ctx, discordID, roles, tier, at)
}

func (r *failingRepo) Restore(ctx context.Context, discordID string, at time.Time) (bool, error) {
	if r.restore != nil {
		return false, r.restore
	}
	return r.Repository.Restore(ctx, discordID, at)
}

func newFailingRoster() (*roster.Service, *failingRepo, *testsupport.Store, *testsupport.Messenger) {
	store := testsupport.NewStore()
	messenger := testsupport.NewMessenger()
	repo := &failingRepo{Repository: store.Roster()}
	return roster.NewService(repo, messenger, roles, testsupport.Discard()), repo, store, messenger
}

func TestRetire_RoleFailureKeepsMemberActive(t *testing.T) {
	service, store, messenger, _ := newRoster()
	member := &roster.Member{ID: "m-1", DiscordID: "42", CreatedAt: testsupport.Epoch}
	store.PutMember(member)
	messenger.SetRoles("42", "r-full")
	messenger.Fail("remove_role", testsupport.ErrInjected)

	err := service.Retire(context.Background(), member, []string{"r-full"}, roster.TierFull)
	assert.True(t, apperr.HasCode(err, apperr.CodeExternal))
	assert.NotNil(t, store.Member("42"))
	assert.Nil(t, store.Retired("42"), "the move is undone")
	assert.Equal(t, []string{"r-full"}, messenger.Roles("42"))
}

func TestRetire_StoreFailureKeepsRoles(t *testing.T) {
	service, repo, store, messenger := newFailingRoster()
	member := &roster.Member{ID: "m-1", DiscordID: "42", CreatedAt: testsupport.Epoch}
	store.PutMember(member)
	messenger.SetRoles("42", "r-full", "unrelated")
	repo.retire = testsupport.ErrInjected

	err := service.Retire(context.Background(), member, []string{"r-full"}, roster.TierFull)
	require.ErrorIs(t, err, testsupport.ErrInjected)
	assert.ElementsMatch(t, []string{"r-full", "unrelated"}, messenger.Roles("42"))
	assert.NotNil(t, store.Member("42"))
	assert.Nil(t, store.Retired("42"))
}

func TestRestore_Failures(t *testing.T) {
	setup := func(t *testing.T) (*roster.Service, *failingRepo, *testsupport.Store, *testsupport.Messenger) {
		service, repo, store, messenger := newFailingRoster()
		member := &roster.Member{ID: "m-1", DiscordID: "42", CreatedAt: testsupport.Epoch}
		store.PutMember(member)
		messenger.SetRoles("42", "r-prob")
		require.NoError(t, service.Retire(context.Background(), member, []string{"r-prob"}, roster.TierProbationary))
		require.Empty(t, messenger.Roles("42"))
		return service, repo, store, messenger
	}

	t.Run("store failure grants nothing", func(t *testing.T) {
		service, repo, store, messenger := setup(t)
		repo.restore = testsupport.ErrInjected

		_, err := service.Restore(context.Background(), testsupport.Actor("42"), "42")
		require.ErrorIs(t, err, testsupport.ErrInjected)
		assert.Empty(t, messenger.Roles("42"))
		assert.NotNil(t, store.Retired("42"))
		assert.Nil(t, store.Member("42"))
	})

	t.Run("role failure keeps the snapshot", func(t *testing.T) {
		service, _, store, messenger := setup(t)
		messenger.Fail("add_role", testsupport.ErrInjected)

		_, err := service.Restore(context.Background(), testsupport.Actor("42"), "42")
		assert.True(t, apperr.HasCode(err, apperr.CodeExternal))
		assert.Nil(t, store.Member("42"))

		retired := store.Retired("42")
		require.NotNil(t, retired)
		assert.Equal(t, []string{"r-prob"}, retired.Roles)
		assert.Equal(t, roster.TierProbationary, retired.Tier)

		messenger.Fail("add_role", nil)
		_, err = service.Restore(context.Background(), testsupport.Actor("42"), "42")
		require.NoError(t, err)
		assert.Equal(t, []string{"r-prob"}, messenger.Roles("42"))
	})
}

func TestSubscriptions(t *testing.T) {
	service, store, _, _ := newRoster()
	ctx := context.Background()
	store.PutMember(&roster.Member{ID: "m-1", DiscordID: "42", CreatedAt: testsupport.Epoch})
	store.PutMember(&roster.Member{ID: "m-2", DiscordID: "43", BoardNotifications: true, CreatedAt: testsupport.Epoch.Add(time.Second)})

	require.NoError(t, service.Subscribe(ctx, testsupport.Actor("42"), "series-1"))

	recipients, err := service.BoardRecipients(ctx, "series-1")
	require.NoError(t, err)
	require.Len(t, recipients, 2)

	recipients, err = service.BoardRecipients(ctx, "series-2")
	require.NoError(t, err)
	require.Len(t, recipients, 1)
	assert.Equal(t, "43", recipients[0].DiscordID)

	require.NoError(t, service.Unsubscribe(ctx, testsupport.Actor("42"), "series-1"))
	assert.True(t, apperr.IsNotFound(service.Unsubscribe(ctx, testsupport.Actor("42"), "series-1")))
}

func TestUpdatePreferences_RejectsUnknownInterval(t *testing.T) {
	service, store, _, _ := newRoster()
	store.PutMember(&roster.Member{ID: "m-1", DiscordID: "42"})

	bad := roster.ReminderInterval(9)
	err := service.UpdatePreferences(context.Background(), testsupport.Actor("42"), roster.Preferences{ReminderInterval: &bad})
	assert.True(t, apperr.HasCode(err, apperr.CodeValidation))

	week := roster.Remind7Days
	require.NoError(t, service.UpdatePreferences(context.Background(), testsupport.Actor("42"), roster.Preferences{ReminderInterval: &week}))
	assert.Equal(t, roster.Remind7Days, store.Member("42").ReminderInterval)
}
