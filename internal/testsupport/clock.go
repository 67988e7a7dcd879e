// Copyright (c) 2026 Milize. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package testsupport

import (
	"context"
	"sync"
	"time"

	"github.com/taibuivan/milize/internal/core/publish"
	"github.com/taibuivan/milize/internal/platform/apperr"
)

// Clock is a settable time source. Pass clock.Now to a WithClock option.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

// NewClock starts a [Clock] at start.
func NewClock(start time.Time) *Clock {
	return &Clock{now: start}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward and returns the new time.
func (c *Clock) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
	return c.now
}

// Set moves the clock to at.
func (c *Clock) Set(at time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = at
}

// # Leases

// Leaser hands out in-process leases. Held names stay taken until released.
type Leaser struct {
	mu   sync.Mutex
	held map[string]bool
}

// NewLeaser returns a [Leaser] with no leases taken.
func NewLeaser() *Leaser {
	return &Leaser{held: map[string]bool{}}
}

func (l *Leaser) Acquire(_ context.Context, name string, _ time.Duration) (func(), bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[name] {
		return func() {}, false, nil
	}
	l.held[name] = true
	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.held, name)
	}, true, nil
}

// Hold takes name as another process would.
func (l *Leaser) Hold(name string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.held[name] = true
}

// # Drafts

// Drafts is an in-memory publish.DraftStore. Expiry is not simulated.
type Drafts struct {
	mu     sync.Mutex
	drafts map[string]publish.Draft
}

// NewDrafts returns an empty [Drafts].
func NewDrafts() *Drafts {
	return &Drafts{drafts: map[string]publish.Draft{}}
}

func (d *Drafts) Save(_ context.Context, draft *publish.Draft, _ time.Duration) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.drafts[draft.ID] = *draft
	return nil
}

func (d *Drafts) Load(_ context.Context, id string) (*publish.Draft, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	draft, ok := d.drafts[id]
	if !ok {
		return nil, apperr.NotFound("Draft")
	}
	return &draft, nil
}

// Forget drops a draft as an expiry would.
func (d *Drafts) Forget(id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.drafts, id)
}
