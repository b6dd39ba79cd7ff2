package core

import (
	"errors"

	"github.com/bwmarrin/discordgo"
)

var (
	// ErrEmptyPayload is returned when a respond call carries nothing to send.
	ErrEmptyPayload = errors.New("respond: empty payload")

	// ErrNoResponseChannel is returned when no response channel could be
	// resolved for the invocation.
	ErrNoResponseChannel = errors.New("respond: no response channel resolved")
)

// payload is the single variant every respond entry point collapses into:
// plain text or one embed.
type payload struct {
	content string
	embed   *discordgo.MessageEmbed
}

func textPayload(content string) (payload, error) {
	if content == "" {
		return payload{}, ErrEmptyPayload
	}
	return payload{content: content}, nil
}

func embedPayload(e *discordgo.MessageEmbed) (payload, error) {
	if e == nil {
		return payload{}, ErrEmptyPayload
	}
	return payload{embed: e}, nil
}

// messageSend builds the wire payload. Plain text keeps user and role
// mentions live but never expands @everyone/@here.
func (p payload) messageSend() *discordgo.MessageSend {
	if p.embed != nil {
		return &discordgo.MessageSend{Embeds: []*discordgo.MessageEmbed{p.embed}}
	}
	return &discordgo.MessageSend{
		Content: p.content,
		AllowedMentions: &discordgo.MessageAllowedMentions{
			Parse: []discordgo.AllowedMentionType{
				discordgo.AllowedMentionTypeUsers,
				discordgo.AllowedMentionTypeRoles,
			},
		},
	}
}
