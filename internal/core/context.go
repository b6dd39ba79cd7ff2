package core

import (
	"fmt"
	"sync"

	"github.com/bwmarrin/discordgo"

	"github.com/devsfromasia/DevcordBot/internal/embed"
	"github.com/devsfromasia/DevcordBot/internal/permissions"
	"github.com/devsfromasia/DevcordBot/internal/storage"
)

// Deps bundles the collaborators a Context is built from. The tracker is
// owned by the surrounding client and shared across all invocations.
type Deps struct {
	Transport   Transport
	Directory   Directory
	Profiles    ProfileSource
	Help        HelpRenderer
	Tracker     *ResponseTracker
	HomeGuildID string
}

// Context carries everything one command execution needs to respond and to
// gate privileged actions. One Context serves exactly one invocation; the
// response channel, the actor's membership and the actor's profile are
// resolved once at construction and cached as plain fields.
type Context struct {
	deps Deps

	Command *Command
	Args    []string
	Message *discordgo.MessageCreate // triggering message

	guildID    string // effective scope; home guild for DMs
	channelID  string // resolved response channel
	channelErr error  // resolution failure, fatal to respond calls only

	membership permissions.Membership
	profile    *storage.Profile

	mu   sync.Mutex
	last *Send // tail of the send chain, keeps per-invocation call order
}

// NewContext resolves scope, response channel, membership and profile for
// one triggering message. Resolution misses are not fatal here: permission
// checks degrade to no privilege, and a channel failure is reported by the
// first respond call instead.
func NewContext(deps Deps, cmd *Command, args []string, m *discordgo.MessageCreate) *Context {
	c := &Context{deps: deps, Command: cmd, Args: args, Message: m}

	c.guildID = m.GuildID
	if c.guildID == "" {
		c.guildID = deps.HomeGuildID
	}

	c.channelID, c.channelErr = c.resolveChannel()
	c.membership = c.resolveMembership()

	if deps.Profiles != nil {
		// A failed profile read only costs the stored grant.
		c.profile, _ = deps.Profiles.GetProfile(c.guildID, m.Author.ID)
	}
	return c
}

// resolveChannel picks the channel responses go to: the triggering channel
// inside a guild, the author's DM channel otherwise.
func (c *Context) resolveChannel() (string, error) {
	if c.Message.GuildID != "" {
		return c.Message.ChannelID, nil
	}
	if c.deps.Directory == nil {
		return "", ErrNoResponseChannel
	}
	ch, err := c.deps.Directory.DMChannel(c.Message.Author.ID)
	if err != nil {
		return "", fmt.Errorf("%w: dm channel for %s: %v", ErrNoResponseChannel, c.Message.Author.ID, err)
	}
	if ch == nil {
		return "", ErrNoResponseChannel
	}
	return ch.ID, nil
}

// resolveMembership looks the author up in the effective guild. For guild
// messages that guild is where the message was sent; for DMs it is the home
// guild. Absent anywhere means lowest tier, never an error.
func (c *Context) resolveMembership() permissions.Membership {
	if c.deps.Directory == nil || c.guildID == "" {
		return permissions.Membership{}
	}
	m, err := c.deps.Directory.ResolveMembership(c.guildID, c.Message.Author.ID)
	if err != nil {
		return permissions.Membership{}
	}
	return m
}

// GuildID returns the effective scope of the invocation.
func (c *Context) GuildID() string { return c.guildID }

// ChannelID returns the resolved response channel, empty when resolution
// failed.
func (c *Context) ChannelID() string { return c.channelID }

// Respond sends plain text. @everyone/@here never expand.
func (c *Context) Respond(content string) *Send {
	p, err := textPayload(content)
	if err != nil {
		return failedSend(err)
	}
	return c.dispatch(p)
}

// RespondEmbed sends a pre-built discordgo embed.
func (c *Context) RespondEmbed(e *discordgo.MessageEmbed) *Send {
	p, err := embedPayload(e)
	if err != nil {
		return failedSend(err)
	}
	return c.dispatch(p)
}

// RespondMessage sends a structured convention message.
func (c *Context) RespondMessage(m *embed.Message) *Send {
	if m == nil {
		return failedSend(ErrEmptyPayload)
	}
	return c.RespondEmbed(m.MessageEmbed())
}

// RespondBuilder finalizes a builder and sends the result.
func (c *Context) RespondBuilder(b *embed.Builder) *Send {
	if b == nil {
		return failedSend(ErrEmptyPayload)
	}
	return c.RespondMessage(b.Build())
}

// SendHelp renders help for the executing command and dispatches it through
// the regular respond path.
func (c *Context) SendHelp() *Send {
	if c.deps.Help == nil || c.Command == nil {
		return failedSend(fmt.Errorf("sendhelp: no renderer configured"))
	}
	return c.RespondMessage(c.deps.Help.RenderHelp(c.Command))
}

// dispatch queues one send behind the previous one so responses of the same
// invocation reach the transport in call order. Registration with the
// tracker happens only after the transport acknowledged the send; a failed
// send registers nothing and surfaces through the handle.
func (c *Context) dispatch(p payload) *Send {
	if c.channelErr != nil {
		return failedSend(c.channelErr)
	}
	if c.deps.Transport == nil {
		return failedSend(fmt.Errorf("respond: no transport configured"))
	}

	s := newSend()
	c.mu.Lock()
	prev := c.last
	c.last = s
	c.mu.Unlock()

	go func() {
		if prev != nil {
			<-prev.Done()
		}
		msg, err := c.deps.Transport.SendToChannel(c.channelID, p.messageSend())
		if err != nil {
			s.finish(nil, fmt.Errorf("send response: %w", err))
			return
		}
		if c.deps.Tracker != nil {
			c.deps.Tracker.Register(c.Message.ID, msg.ChannelID, msg.ID)
		}
		s.finish(msg, nil)
	}()
	return s
}

// HasPermission reports whether the actor satisfies the required tier.
// Never fails; missing membership or profile just means no privilege.
func (c *Context) HasPermission(requirement permissions.Tier) bool {
	return permissions.Evaluate(requirement, c.membership, c.profile) == permissions.Accepted
}

func (c *Context) HasAdmin() bool {
	return c.HasPermission(permissions.TierAdmin)
}

func (c *Context) HasModerator() bool {
	return c.HasPermission(permissions.TierModerator)
}
