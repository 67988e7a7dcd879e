// Copyright (c) 2026 Milize. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package testsupport

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
)

// ErrInjected is returned by a [Messenger] call that was told to fail.
var ErrInjected = errors.New("testsupport: injected failure")

// Message is one recorded channel post.
type Message struct {
	ID        string
	ChannelID string
	Content   string
}

// DirectMessage is one recorded private notice.
type DirectMessage struct {
	UserID  string
	Content string
}

// Messenger records every call and keeps role membership in memory.
type Messenger struct {
	mu sync.Mutex

	next     int
	sent     []Message
	edited   map[string]string
	deleted  []string
	direct   []DirectMessage
	roles    map[string][]string
	failures map[string]error
}

// NewMessenger returns an empty [Messenger].
func NewMessenger() *Messenger {
	return &Messenger{
		edited:   map[string]string{},
		roles:    map[string][]string{},
		failures: map[string]error{},
	}
}

// Fail makes every later call of op return err. A nil err restores the call.
// Ops are "send", "edit", "delete", "dm", "roles", "add_role" and "remove_role".
func (m *Messenger) Fail(op string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.failures, op)
		return
	}
	m.failures[op] = err
}

// SetRoles replaces the roles a user holds.
func (m *Messenger) SetRoles(userID string, roles ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.roles[userID] = slices.Clone(roles)
}

// Roles returns the roles a user holds.
func (m *Messenger) Roles(userID string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.roles[userID])
}

// Sent returns the recorded channel posts.
func (m *Messenger) Sent() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.sent)
}

// SentTo returns the posts made to one channel.
func (m *Messenger) SentTo(channelID string) []Message {
	var out []Message
	for _, message := range m.Sent() {
		if message.ChannelID == channelID {
			out = append(out, message)
		}
	}
	return out
}

// Deleted returns the ids of deleted messages.
func (m *Messenger) Deleted() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.deleted)
}

// Edited returns the latest content of an edited message.
func (m *Messenger) Edited(messageID string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	content, ok := m.edited[messageID]
	return content, ok
}

// DirectMessages returns the recorded private notices.
func (m *Messenger) DirectMessages() []DirectMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.direct)
}

func (m *Messenger) Send(_ context.Context, channelID, content string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failures["send"]; err != nil {
		return "", err
	}
	m.next++
	id := fmt.Sprintf("message-%d", m.next)
	m.sent = append(m.sent, Message{ID: id, ChannelID: channelID, Content: content})
	return id, nil
}

func (m *Messenger) Edit(_ context.Context, _, messageID, content string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failures["edit"]; err != nil {
		return err
	}
	m.edited[messageID] = content
	return nil
}

func (m *Messenger) Delete(_ context.Context, _, messageID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failures["delete"]; err != nil {
		return err
	}
	m.deleted = append(m.deleted, messageID)
	return nil
}

func (m *Messenger) DirectMessage(_ context.Context, userID, content string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failures["dm"]; err != nil {
		return err
	}
	m.direct = append(m.direct, DirectMessage{UserID: userID, Content: content})
	return nil
}

func (m *Messenger) MemberRoles(_ context.Context, userID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failures["roles"]; err != nil {
		return nil, err
	}
	return slices.Clone(m.roles[userID]), nil
}

func (m *Messenger) AddRole(_ context.Context, userID, roleID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failures["add_role"]; err != nil {
		return err
	}
	if !slices.Contains(m.roles[userID], roleID) {
		m.roles[userID] = append(m.roles[userID], roleID)
	}
	return nil
}

func (m *Messenger) RemoveRole(_ context.Context, userID, roleID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failures["remove_role"]; err != nil {
		return err
	}
	m.roles[userID] = slices.DeleteFunc(m.roles[userID], func(role string) bool { return role == roleID })
	return nil
}
