package core

import (
	"github.com/bwmarrin/discordgo"

	"github.com/devsfromasia/DevcordBot/internal/embed"
	"github.com/devsfromasia/DevcordBot/internal/permissions"
	"github.com/devsfromasia/DevcordBot/internal/storage"
)

// Collaborator contracts the context depends on. Each is implemented by the
// Discord adapters in internal/discord and by plain fakes in tests.

// Transport delivers one outbound message to a channel. Failures come back
// as-is; retry and backoff live behind this interface, never in front of it.
type Transport interface {
	SendToChannel(channelID string, data *discordgo.MessageSend) (*discordgo.Message, error)
}

// Directory resolves membership and channels that are not attached to the
// triggering message.
type Directory interface {
	// ResolveMembership looks the user up in a guild. A lookup miss is an
	// error; callers degrade it to an absent membership.
	ResolveMembership(guildID, userID string) (permissions.Membership, error)

	// DMChannel returns the user's direct message channel, opening it if
	// needed. Deterministic: the same user always maps to the same channel.
	DMChannel(userID string) (*discordgo.Channel, error)
}

// ProfileSource is the read-only view of the profile store.
type ProfileSource interface {
	GetProfile(guildID, userID string) (*storage.Profile, error)
}

// HelpRenderer formats a command descriptor into a help message.
type HelpRenderer interface {
	RenderHelp(cmd *Command) *embed.Message
}
