// Copyright (c) 2026 Milize. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package messaging

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/bwmarrin/discordgo"
)

// Discord implements [Messenger] over the Discord REST API. It never opens
// a gateway connection; interactions arrive through the command surface.
type Discord struct {
	session *discordgo.Session
	guildID string
}

// NewDiscord creates a REST-only session for a bot token.
func NewDiscord(token, guildID string) (*Discord, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("messaging: create session: %w", err)
	}
	session.ShouldRetryOnRateLimit = true

	return &Discord{session: session, guildID: guildID}, nil
}

func (d *Discord) Send(ctx context.Context, channelID, content string) (string, error) {
	message, err := d.session.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Content: content,
		AllowedMentions: &discordgo.MessageAllowedMentions{
			Parse: []discordgo.AllowedMentionType{discordgo.AllowedMentionTypeUsers},
		},
	}, discordgo.WithContext(ctx))
	if err != nil {
		return "", classify(err)
	}
	return message.ID, nil
}

func (d *Discord) Edit(ctx context.Context, channelID, messageID, content string) error {
	_, err := d.session.ChannelMessageEdit(channelID, messageID, content, discordgo.WithContext(ctx))
	return classify(err)
}

func (d *Discord) Delete(ctx context.Context, channelID, messageID string) error {
	return classify(d.session.ChannelMessageDelete(channelID, messageID, discordgo.WithContext(ctx)))
}

func (d *Discord) DirectMessage(ctx context.Context, userID, content string) error {
	channel, err := d.session.UserChannelCreate(userID, discordgo.WithContext(ctx))
	if err != nil {
		return classify(err)
	}
	_, err = d.session.ChannelMessageSend(channel.ID, content, discordgo.WithContext(ctx))
	return classify(err)
}

func (d *Discord) MemberRoles(ctx context.Context, userID string) ([]string, error) {
	member, err := d.session.GuildMember(d.guildID, userID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, classify(err)
	}
	return member.Roles, nil
}

func (d *Discord) AddRole(ctx context.Context, userID, roleID string) error {
	return classify(d.session.GuildMemberRoleAdd(d.guildID, userID, roleID, discordgo.WithContext(ctx)))
}

func (d *Discord) RemoveRole(ctx context.Context, userID, roleID string) error {
	return classify(d.session.GuildMemberRoleRemove(d.guildID, userID, roleID, discordgo.WithContext(ctx)))
}

// classify wraps 404 and 403 replies with [ErrGone].
func classify(err error) error {
	if err == nil {
		return nil
	}

	var restErr *discordgo.RESTError
	if errors.As(err, &restErr) && restErr.Response != nil {
		switch restErr.Response.StatusCode {
		case http.StatusNotFound, http.StatusForbidden:
			return fmt.Errorf("%w: %v", ErrGone, err)
		}
	}
	return fmt.Errorf("messaging: %w", err)
}
