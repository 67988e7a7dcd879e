// Copyright (c) 2026 Milize. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package testsupport provides in-memory doubles for service tests.

[Store] implements every repository of the engine behind one mutex. It
applies the same uniqueness rules as the SQL schema, and the same moves
between live and shadow tables, so races and round trips behave as they
do against PostgreSQL.
*/
package testsupport

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/taibuivan/milize/internal/core/board"
	"github.com/taibuivan/milize/internal/core/chapter"
	"github.com/taibuivan/milize/internal/core/ledger"
	"github.com/taibuivan/milize/internal/core/publish"
	"github.com/taibuivan/milize/internal/core/roster"
	"github.com/taibuivan/milize/internal/core/series"
	"github.com/taibuivan/milize/internal/platform/apperr"
)

// Store is the shared in-memory state.
type Store struct {
	mu sync.Mutex

	series        map[string]*series.Series
	seriesJobs    map[string]*series.SeriesJob
	chapters      map[string]*chapter.Chapter
	assignments   map[string]*ledger.Assignment
	archived      map[string]*ledger.Assignment
	members       map[string]*roster.Member
	retired       map[string]*roster.RetiredMember
	subscriptions map[[2]string]time.Time
	postings      map[string]*board.Posting
	publications  map[string]*publish.Publication
}

// NewStore returns an empty [Store].
func NewStore() *Store {
	return &Store{
		series:        map[string]*series.Series{},
		seriesJobs:    map[string]*series.SeriesJob{},
		chapters:      map[string]*chapter.Chapter{},
		assignments:   map[string]*ledger.Assignment{},
		archived:      map[string]*ledger.Assignment{},
		members:       map[string]*roster.Member{},
		retired:       map[string]*roster.RetiredMember{},
		subscriptions: map[[2]string]time.Time{},
		postings:      map[string]*board.Posting{},
		publications:  map[string]*publish.Publication{},
	}
}

func clone[T any](value *T) *T {
	copied := *value
	return &copied
}

// # Seeding

// PutSeries stores a series as-is.
func (s *Store) PutSeries(value *series.Series) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.series[value.ID] = clone(value)
}

// PutSeriesJob stores a series stage as-is.
func (s *Store) PutSeriesJob(value *series.SeriesJob) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seriesJobs[value.ID] = clone(value)
}

// PutChapter stores a work item as-is, bypassing the cap.
func (s *Store) PutChapter(value *chapter.Chapter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chapters[value.ID] = clone(value)
}

// PutMember stores an active member as-is.
func (s *Store) PutMember(value *roster.Member) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.members[value.DiscordID] = clone(value)
}

// PutAssignment stores a live assignment as-is.
func (s *Store) PutAssignment(value *ledger.Assignment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assignments[value.ID] = clone(value)
}

// # Inspection

// Assignment returns a copy of a live assignment, or nil.
func (s *Store) Assignment(id string) *ledger.Assignment {
	s.mu.Lock()
	defer s.mu.Unlock()
	if value, ok := s.assignments[id]; ok {
		return clone(value)
	}
	return nil
}

// ArchivedAssignments returns copies of the archive table.
func (s *Store) ArchivedAssignments() []*ledger.Assignment {
	s.mu.Lock()
	defer s.mu.Unlock()
	var values []*ledger.Assignment
	for _, value := range s.archived {
		values = append(values, clone(value))
	}
	return values
}

// Member returns a copy of an active member, or nil.
func (s *Store) Member(discordID string) *roster.Member {
	s.mu.Lock()
	defer s.mu.Unlock()
	if value, ok := s.members[discordID]; ok {
		return clone(value)
	}
	return nil
}

// Retired returns a copy of a retired member, or nil.
func (s *Store) Retired(discordID string) *roster.RetiredMember {
	s.mu.Lock()
	defer s.mu.Unlock()
	if value, ok := s.retired[discordID]; ok {
		return clone(value)
	}
	return nil
}

// Postings returns copies of the live postings.
func (s *Store) Postings() []*board.Posting {
	s.mu.Lock()
	defer s.mu.Unlock()
	var values []*board.Posting
	for _, value := range s.postings {
		values = append(values, clone(value))
	}
	return values
}

// Publications returns copies of the queue.
func (s *Store) Publications() []*publish.Publication {
	s.mu.Lock()
	defer s.mu.Unlock()
	var values []*publish.Publication
	for _, value := range s.publications {
		values = append(values, clone(value))
	}
	return values
}

// # Series

// Series returns the series repository view.
func (s *Store) Series() series.Repository { return seriesRepo{s} }

type seriesRepo struct{ s *Store }

func (r seriesRepo) FindByID(_ context.Context, id string) (*series.Series, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	value, ok := r.s.series[id]
	if !ok {
		return nil, apperr.NotFound("Series")
	}
	return clone(value), nil
}

func (r seriesRepo) FindSeriesJob(_ context.Context, id string) (*series.SeriesJob, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	value, ok := r.s.seriesJobs[id]
	if !ok {
		return nil, apperr.NotFound("Series stage")
	}
	return clone(value), nil
}

func (r seriesRepo) ListSeriesJobs(_ context.Context, seriesID string) ([]*series.SeriesJob, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var values []*series.SeriesJob
	for _, value := range r.s.seriesJobs {
		if value.SeriesID == seriesID {
			values = append(values, clone(value))
		}
	}
	sort.Slice(values, func(i, j int) bool {
		if values[i].Position != values[j].Position {
			return values[i].Position < values[j].Position
		}
		return values[i].ID < values[j].ID
	})
	return values, nil
}

func (r seriesRepo) SetArchived(_ context.Context, id string, archived bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	value, ok := r.s.series[id]
	if !ok {
		return apperr.NotFound("Series")
	}
	value.IsArchived = archived
	return nil
}

// # Chapters

// Chapters returns the work item repository view.
func (s *Store) Chapters() chapter.Repository { return chapterRepo{s} }

type chapterRepo struct{ s *Store }

func (r chapterRepo) liveCount(seriesID string) int {
	count := 0
	for _, value := range r.s.chapters {
		if value.SeriesID == seriesID && !value.IsArchived {
			count++
		}
	}
	return count
}

func (r chapterRepo) Create(_ context.Context, ch *chapter.Chapter, limit int) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, value := range r.s.chapters {
		if value.SeriesID == ch.SeriesID && value.Name == ch.Name {
			return false, apperr.Conflict("Chapter already exists")
		}
	}
	if r.liveCount(ch.SeriesID) >= limit {
		return false, nil
	}
	r.s.chapters[ch.ID] = clone(ch)
	return true, nil
}

func (r chapterRepo) FindByID(_ context.Context, id string) (*chapter.Chapter, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	value, ok := r.s.chapters[id]
	if !ok {
		return nil, apperr.NotFound("Chapter")
	}
	return clone(value), nil
}

func (r chapterRepo) ListLive(_ context.Context, seriesID string) ([]*chapter.Chapter, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var values []*chapter.Chapter
	for _, value := range r.s.chapters {
		if value.SeriesID == seriesID && !value.IsArchived {
			values = append(values, clone(value))
		}
	}
	sort.Slice(values, func(i, j int) bool {
		if !values[i].CreatedAt.Equal(values[j].CreatedAt) {
			return values[i].CreatedAt.Before(values[j].CreatedAt)
		}
		return values[i].ID < values[j].ID
	})
	return values, nil
}

// move transfers the assignments of a work item between the live and archive maps.
func (s *Store) move(from, to map[string]*ledger.Assignment, chapterID string) {
	for id, value := range from {
		if value.ChapterID == chapterID {
			to[id] = value
			delete(from, id)
		}
	}
}

func (r chapterRepo) Archive(_ context.Context, id string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	value, ok := r.s.chapters[id]
	if !ok || value.IsArchived {
		return false, nil
	}
	value.IsArchived = true
	r.s.move(r.s.assignments, r.s.archived, id)
	return true, nil
}

func (r chapterRepo) Unarchive(_ context.Context, id string, limit int) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	value, ok := r.s.chapters[id]
	if !ok || !value.IsArchived || r.liveCount(value.SeriesID) >= limit {
		return false, nil
	}
	value.IsArchived = false
	r.s.move(r.s.archived, r.s.assignments, id)
	return true, nil
}

// # Assignments

// Assignments returns the ledger repository view.
func (s *Store) Assignments() ledger.Repository { return ledgerRepo{s} }

type ledgerRepo struct{ s *Store }

func (r ledgerRepo) Insert(_ context.Context, assignment *ledger.Assignment) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, value := range r.s.assignments {
		if value.ChapterID == assignment.ChapterID && value.SeriesJobID == assignment.SeriesJobID {
			return false, nil
		}
	}
	r.s.assignments[assignment.ID] = clone(assignment)
	return true, nil
}

func (r ledgerRepo) Find(_ context.Context, chapterID, seriesJobID string) (*ledger.Assignment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, value := range r.s.assignments {
		if value.ChapterID == chapterID && value.SeriesJobID == seriesJobID {
			return clone(value), nil
		}
	}
	return nil, apperr.NotFound("Assignment")
}

func (r ledgerRepo) list(match func(*ledger.Assignment) bool) []*ledger.Assignment {
	var values []*ledger.Assignment
	for _, value := range r.s.assignments {
		if match(value) {
			values = append(values, clone(value))
		}
	}
	sort.Slice(values, func(i, j int) bool {
		if !values[i].CreatedAt.Equal(values[j].CreatedAt) {
			return values[i].CreatedAt.Before(values[j].CreatedAt)
		}
		return values[i].ID < values[j].ID
	})
	return values
}

func (r ledgerRepo) ListByChapter(_ context.Context, chapterID string) ([]*ledger.Assignment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.list(func(value *ledger.Assignment) bool { return value.ChapterID == chapterID }), nil
}

func (r ledgerRepo) ListOpenByAssignee(_ context.Context, discordID string) ([]*ledger.Assignment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.list(func(value *ledger.Assignment) bool {
		return value.AssignedTo == discordID && value.Status < ledger.StatusCompleted
	}), nil
}

func (r ledgerRepo) HasOpen(ctx context.Context, discordID string) (bool, error) {
	open, err := r.ListOpenByAssignee(ctx, discordID)
	return len(open) > 0, err
}

func (r ledgerRepo) history(discordID string) []*ledger.Assignment {
	var values []*ledger.Assignment
	for _, table := range []map[string]*ledger.Assignment{r.s.assignments, r.s.archived} {
		for _, value := range table {
			if value.AssignedTo == discordID {
				values = append(values, value)
			}
		}
	}
	return values
}

func (r ledgerRepo) CountAll(_ context.Context, discordID string) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return len(r.history(discordID)), nil
}

func (r ledgerRepo) LastCompletedAt(_ context.Context, discordID string) (*time.Time, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var last *time.Time
	for _, value := range r.history(discordID) {
		if value.CompletedAt != nil && (last == nil || value.CompletedAt.After(*last)) {
			at := *value.CompletedAt
			last = &at
		}
	}
	return last, nil
}

func (r ledgerRepo) Delete(_ context.Context, id string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.assignments[id]; !ok {
		return false, nil
	}
	delete(r.s.assignments, id)
	return true, nil
}

func (r ledgerRepo) DeleteOwned(_ context.Context, id, discordID string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	value, ok := r.s.assignments[id]
	if !ok || value.AssignedTo != discordID {
		return false, nil
	}
	delete(r.s.assignments, id)
	return true, nil
}

func (r ledgerRepo) UpdateStatus(_ context.Context, id string, status ledger.Status, completedAt *time.Time, account bool) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	value, ok := r.s.assignments[id]
	if !ok || value.Status >= status {
		return false, nil
	}
	value.Status = status
	value.CompletedAt = completedAt
	value.Account = account
	return true, nil
}

func (r ledgerRepo) UpdateAssignee(_ context.Context, id, discordID string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	value, ok := r.s.assignments[id]
	if !ok {
		return false, nil
	}
	value.AssignedTo = discordID
	return true, nil
}

func (r ledgerRepo) MarkAvailable(_ context.Context, id string, at time.Time) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	value, ok := r.s.assignments[id]
	if !ok || value.AvailableAt != nil || value.Status >= ledger.StatusCompleted {
		return false, nil
	}
	value.AvailableAt = &at
	value.RemindedAt = &at
	return true, nil
}

func (r ledgerRepo) MarkReminded(_ context.Context, id string, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if value, ok := r.s.assignments[id]; ok {
		value.RemindedAt = &at
	}
	return nil
}

// # Roster

// Roster returns the roster repository view.
func (s *Store) Roster() roster.Repository { return rosterRepo{s} }

type rosterRepo struct{ s *Store }

func (r rosterRepo) Add(_ context.Context, member *roster.Member) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.members[member.DiscordID]; ok {
		return false, nil
	}
	r.s.members[member.DiscordID] = clone(member)
	return true, nil
}

func (r rosterRepo) FindByDiscordID(_ context.Context, discordID string) (*roster.Member, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	value, ok := r.s.members[discordID]
	if !ok {
		return nil, apperr.NotFound("Member")
	}
	return clone(value), nil
}

func (r rosterRepo) listMembers(match func(*roster.Member) bool) []*roster.Member {
	var values []*roster.Member
	for _, value := range r.s.members {
		if match(value) {
			values = append(values, clone(value))
		}
	}
	sort.Slice(values, func(i, j int) bool {
		if !values[i].CreatedAt.Equal(values[j].CreatedAt) {
			return values[i].CreatedAt.Before(values[j].CreatedAt)
		}
		return values[i].DiscordID < values[j].DiscordID
	})
	return values
}

func (r rosterRepo) List(_ context.Context) ([]*roster.Member, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.listMembers(func(*roster.Member) bool { return true }), nil
}

func (r rosterRepo) ListWithReminders(_ context.Context) ([]*roster.Member, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.listMembers(func(value *roster.Member) bool { return value.ReminderInterval > roster.RemindNever }), nil
}

func (r rosterRepo) ListBoardRecipients(_ context.Context, seriesID string) ([]*roster.Member, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.listMembers(func(value *roster.Member) bool {
		_, subscribed := r.s.subscriptions[[2]string{value.ID, seriesID}]
		return value.BoardNotifications || subscribed
	}), nil
}

func (r rosterRepo) Delete(_ context.Context, discordID string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.members[discordID]; !ok {
		return false, nil
	}
	delete(r.s.members, discordID)
	return true, nil
}

func (r rosterRepo) SetEscalation(_ context.Context, discordID string, at *time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	value, ok := r.s.members[discordID]
	if !ok {
		return apperr.NotFound("Member")
	}
	if at != nil {
		stamp := *at
		at = &stamp
	}
	value.RemindedAt = at
	return nil
}

func (r rosterRepo) UpdatePreferences(_ context.Context, discordID string, prefs roster.Preferences) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	value, ok := r.s.members[discordID]
	if !ok {
		return apperr.NotFound("Member")
	}
	if prefs.CreditName != nil {
		value.CreditName = prefs.CreditName
	}
	if prefs.ReminderInterval != nil {
		value.ReminderInterval = *prefs.ReminderInterval
	}
	if prefs.BoardNotifications != nil {
		value.BoardNotifications = *prefs.BoardNotifications
	}
	if prefs.StageNotifications != nil {
		value.StageNotifications = *prefs.StageNotifications
	}
	return nil
}

func (r rosterRepo) Retire(_ context.Context, discordID string, roles []string, tier roster.Tier, at time.Time) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	value, ok := r.s.members[discordID]
	if !ok {
		return false, nil
	}
	r.s.retired[discordID] = &roster.RetiredMember{Member: *value, Roles: slices.Clone(roles), Tier: tier, RetiredAt: at}
	delete(r.s.members, discordID)
	return true, nil
}

func (r rosterRepo) FindRetired(_ context.Context, discordID string) (*roster.RetiredMember, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	value, ok := r.s.retired[discordID]
	if !ok {
		return nil, apperr.NotFound("Retired member")
	}
	return clone(value), nil
}

func (r rosterRepo) ListRetired(_ context.Context) ([]*roster.RetiredMember, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var values []*roster.RetiredMember
	for _, value := range r.s.retired {
		values = append(values, clone(value))
	}
	sort.Slice(values, func(i, j int) bool { return values[i].RetiredAt.Before(values[j].RetiredAt) })
	return values, nil
}

func (r rosterRepo) Restore(_ context.Context, discordID string, at time.Time) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	value, ok := r.s.retired[discordID]
	if !ok {
		return false, nil
	}
	member := value.Member
	member.RemindedAt = &at
	r.s.members[discordID] = &member
	delete(r.s.retired, discordID)
	return true, nil
}

func (r rosterRepo) DeleteRetired(_ context.Context, discordID string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.retired[discordID]; !ok {
		return false, nil
	}
	delete(r.s.retired, discordID)
	return true, nil
}

func (r rosterRepo) Subscribe(_ context.Context, memberID, seriesID string, at time.Time) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := [2]string{memberID, seriesID}
	if _, ok := r.s.subscriptions[key]; ok {
		return false, nil
	}
	r.s.subscriptions[key] = at
	return true, nil
}

func (r rosterRepo) Unsubscribe(_ context.Context, memberID, seriesID string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := [2]string{memberID, seriesID}
	if _, ok := r.s.subscriptions[key]; !ok {
		return false, nil
	}
	delete(r.s.subscriptions, key)
	return true, nil
}

// # Claim Board

// Board returns the claim board repository view.
func (s *Store) Board() board.Repository { return boardRepo{s} }

type boardRepo struct{ s *Store }

func (r boardRepo) Insert(_ context.Context, posting *board.Posting) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, value := range r.s.postings {
		if value.MessageID == posting.MessageID ||
			(value.ChapterID == posting.ChapterID && value.SeriesJobID == posting.SeriesJobID) ||
			(value.SeriesID == posting.SeriesID && value.JobID == posting.JobID) {
			return false, nil
		}
	}
	r.s.postings[posting.ID] = clone(posting)
	return true, nil
}

func (r boardRepo) find(resource string, match func(*board.Posting) bool) (*board.Posting, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, value := range r.s.postings {
		if match(value) {
			return clone(value), nil
		}
	}
	return nil, apperr.NotFound(resource)
}

func (r boardRepo) FindByMessageID(_ context.Context, messageID string) (*board.Posting, error) {
	return r.find("Posting", func(value *board.Posting) bool { return value.MessageID == messageID })
}

func (r boardRepo) FindByPair(_ context.Context, chapterID, seriesJobID string) (*board.Posting, error) {
	return r.find("Posting", func(value *board.Posting) bool {
		return value.ChapterID == chapterID && value.SeriesJobID == seriesJobID
	})
}

func (r boardRepo) FindBySeriesJob(_ context.Context, seriesID, jobID string) (*board.Posting, error) {
	return r.find("Posting", func(value *board.Posting) bool {
		return value.SeriesID == seriesID && value.JobID == jobID
	})
}

func (r boardRepo) listPostings(match func(*board.Posting) bool) []*board.Posting {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var values []*board.Posting
	for _, value := range r.s.postings {
		if match(value) {
			values = append(values, clone(value))
		}
	}
	sort.Slice(values, func(i, j int) bool { return values[i].CreatedAt.Before(values[j].CreatedAt) })
	return values
}

func (r boardRepo) ListByChapter(_ context.Context, chapterID string) ([]*board.Posting, error) {
	return r.listPostings(func(value *board.Posting) bool { return value.ChapterID == chapterID }), nil
}

func (r boardRepo) ListCreatedBefore(_ context.Context, cutoff time.Time) ([]*board.Posting, error) {
	return r.listPostings(func(value *board.Posting) bool { return value.CreatedAt.Before(cutoff) }), nil
}

func (r boardRepo) Delete(_ context.Context, id string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.postings[id]; !ok {
		return false, nil
	}
	delete(r.s.postings, id)
	return true, nil
}

// # Publications

// PublicationQueue returns the publication repository view.
func (s *Store) PublicationQueue() publish.Repository { return publishRepo{s} }

type publishRepo struct{ s *Store }

func (r publishRepo) Insert(_ context.Context, publication *publish.Publication) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.publications[publication.ID]; ok {
		return apperr.Conflict("Publication already exists")
	}
	r.s.publications[publication.ID] = clone(publication)
	return nil
}

func (r publishRepo) FindByID(_ context.Context, id string) (*publish.Publication, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	value, ok := r.s.publications[id]
	if !ok {
		return nil, apperr.NotFound("Publication")
	}
	return clone(value), nil
}

func (r publishRepo) ordered() []*publish.Publication {
	var values []*publish.Publication
	for _, value := range r.s.publications {
		values = append(values, value)
	}
	sort.Slice(values, func(i, j int) bool {
		if !values[i].DueAt.Equal(values[j].DueAt) {
			return values[i].DueAt.Before(values[j].DueAt)
		}
		return values[i].ID < values[j].ID
	})
	return values
}

func (r publishRepo) List(_ context.Context) ([]*publish.Publication, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var values []*publish.Publication
	for _, value := range r.ordered() {
		values = append(values, clone(value))
	}
	return values, nil
}

func (r publishRepo) Delete(_ context.Context, id string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.publications[id]; !ok {
		return false, nil
	}
	delete(r.s.publications, id)
	return true, nil
}

func (r publishRepo) DequeueDue(_ context.Context, now time.Time) (*publish.Publication, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, value := range r.ordered() {
		if value.DueAt.After(now) {
			return nil, nil
		}
		delete(r.s.publications, value.ID)
		return value, nil
	}
	return nil, nil
}
