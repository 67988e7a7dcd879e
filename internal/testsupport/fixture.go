// Copyright (c) 2026 Milize. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package testsupport

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/taibuivan/milize/internal/core/chapter"
	"github.com/taibuivan/milize/internal/core/pipeline"
	"github.com/taibuivan/milize/internal/core/roster"
	"github.com/taibuivan/milize/internal/core/series"
	"github.com/taibuivan/milize/internal/platform/sec"
)

// Epoch is the default start of a test [Clock].
var Epoch = time.Date(2026, time.March, 2, 12, 0, 0, 0, time.UTC)

// Discard is a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Fixture is one series with a live work item, seeded into a [Store].
type Fixture struct {
	Store     *Store
	Messenger *Messenger
	Clock     *Clock

	Series  *series.Series
	Chapter *chapter.Chapter

	// Stages holds the series stage of each requested type.
	Stages map[pipeline.StageType]*series.SeriesJob

	chapters int
}

// NewFixture seeds a series whose pipeline holds the given stage types.
func NewFixture(types ...pipeline.StageType) *Fixture {
	f := &Fixture{
		Store:     NewStore(),
		Messenger: NewMessenger(),
		Clock:     NewClock(Epoch),
		Stages:    map[pipeline.StageType]*series.SeriesJob{},
	}

	mangaID := "manga-1"
	mirrorKey := "mirror/series-1.json"
	f.Series = &series.Series{
		ID:             "series-1",
		GroupID:        "group-1",
		Name:           "Moonlit Harbor",
		MangaDexID:     &mangaID,
		MirrorKey:      &mirrorKey,
		BlockedTargets: []string{},
		CreatedAt:      Epoch.Add(-365 * 24 * time.Hour),
	}
	f.Store.PutSeries(f.Series)

	for position, t := range types {
		channel := "board-" + t.String()
		stage := &series.SeriesJob{
			ID:             "sj-" + t.String(),
			SeriesID:       f.Series.ID,
			JobID:          "job-" + t.String(),
			Name:           t.Label(),
			Type:           t,
			RoleID:         "role-" + t.String(),
			BoardChannelID: &channel,
			Position:       position,
		}
		f.Stages[t] = stage
		f.Store.PutSeriesJob(stage)
	}

	f.Chapter = f.AddChapter("Chapter 1")
	return f
}

// AddChapter seeds another live work item of the series.
func (f *Fixture) AddChapter(name string) *chapter.Chapter {
	f.chapters++
	ch := &chapter.Chapter{
		ID:        fmt.Sprintf("chapter-%d", f.chapters),
		SeriesID:  f.Series.ID,
		Name:      name,
		CreatedAt: f.Clock.Now(),
	}
	f.Store.PutChapter(ch)
	return ch
}

// AddMember seeds an active collaborator with stage notices on.
func (f *Fixture) AddMember(discordID string, authority sec.Authority) *roster.Member {
	member := &roster.Member{
		ID:                 "member-" + discordID,
		DiscordID:          discordID,
		Authority:          authority,
		StageNotifications: true,
		CreatedAt:          f.Clock.Now(),
	}
	f.Store.PutMember(member)
	return member
}

// Actor returns a member-level actor.
func Actor(discordID string) sec.Actor {
	return sec.Actor{DiscordID: discordID, Authority: sec.AuthorityMember}
}

// Manager returns a project manager actor.
func Manager(discordID string) sec.Actor {
	return sec.Actor{DiscordID: discordID, Authority: sec.AuthorityProjectManager}
}
