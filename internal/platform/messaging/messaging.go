// Copyright (c) 2026 Milize. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package messaging is the engine's view of the chat platform.

Every call is fallible. A target that no longer exists or that the bot may
no longer touch is reported as [ErrGone]; callers that delete or retract
treat it as success through [IgnoreGone].
*/
package messaging

import (
	"context"
	"errors"
	"fmt"
)

// ErrGone marks a message, channel or member that is already gone or out of reach.
var ErrGone = errors.New("messaging: target is gone")

// Messenger sends notices and reads role membership.
type Messenger interface {
	// Send posts content to a channel and returns the new message id.
	Send(ctx context.Context, channelID, content string) (string, error)

	// Edit replaces the content of an existing message.
	Edit(ctx context.Context, channelID, messageID, content string) error

	// Delete removes a message.
	Delete(ctx context.Context, channelID, messageID string) error

	// DirectMessage delivers a private notice to a user.
	DirectMessage(ctx context.Context, userID, content string) error

	// MemberRoles returns the role ids a user currently holds.
	MemberRoles(ctx context.Context, userID string) ([]string, error)

	AddRole(ctx context.Context, userID, roleID string) error
	RemoveRole(ctx context.Context, userID, roleID string) error
}

// IsGone reports whether err means the target no longer exists.
func IsGone(err error) bool {
	return errors.Is(err, ErrGone)
}

// IgnoreGone returns nil for [ErrGone] and err otherwise.
func IgnoreGone(err error) error {
	if IsGone(err) {
		return nil
	}
	return err
}

// Mention renders a user mention.
func Mention(userID string) string {
	return fmt.Sprintf("<@%s>", userID)
}
