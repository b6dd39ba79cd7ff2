package discord

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/devsfromasia/DevcordBot/internal/config"
	"github.com/devsfromasia/DevcordBot/internal/permissions"
	"github.com/devsfromasia/DevcordBot/pkg/retrylimit"
)

const sendTimeout = 30 * time.Second

// sessionTransport implements core.Transport over a discordgo session, with
// an adaptive rate limit and retry in front of the REST call.
type sessionTransport struct {
	dg  *discordgo.Session
	lim *retrylimit.AdaptiveLimiter
}

func newSessionTransport(dg *discordgo.Session) *sessionTransport {
	return &sessionTransport{
		dg:  dg,
		lim: retrylimit.NewAdaptiveLimiter(5, 1, 20, 1, 0.5),
	}
}

func (t *sessionTransport) SendToChannel(channelID string, data *discordgo.MessageSend) (*discordgo.Message, error) {
	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()

	var msg *discordgo.Message
	err := retrylimit.WithRetry(ctx, func() error {
		var err error
		msg, err = t.dg.ChannelMessageSendComplex(channelID, data)
		return err
	}, t.lim)
	if err != nil {
		return nil, fmt.Errorf("failed to send to channel %s: %w", channelID, err)
	}
	return msg, nil
}

// sessionDirectory implements core.Directory over session state, falling
// back to the REST API when state misses.
type sessionDirectory struct {
	dg  *discordgo.Session
	cfg *config.Config
}

func newSessionDirectory(dg *discordgo.Session, cfg *config.Config) *sessionDirectory {
	return &sessionDirectory{dg: dg, cfg: cfg}
}

func (d *sessionDirectory) ResolveMembership(guildID, userID string) (permissions.Membership, error) {
	if guildID == "" || userID == "" {
		return permissions.Membership{}, fmt.Errorf("membership lookup needs guild and user IDs")
	}

	member, err := d.dg.State.Member(guildID, userID)
	if err != nil || member == nil {
		member, err = d.dg.GuildMember(guildID, userID)
		if err != nil || member == nil {
			return permissions.Membership{}, fmt.Errorf("member %s not found in guild %s: %w", userID, guildID, err)
		}
	}

	m := permissions.Membership{Present: true}
	if config.IsDeveloper(d.cfg, userID) {
		m.Developer = true
	}

	guild, err := d.dg.State.Guild(guildID)
	if err != nil || guild == nil {
		guild, _ = d.dg.Guild(guildID)
	}
	if guild != nil && guild.OwnerID == userID {
		m.Owner = true
	}

	for _, roleID := range member.Roles {
		if role, _ := d.dg.State.Role(guildID, roleID); role != nil {
			m.Permissions |= role.Permissions
		}
	}
	return m, nil
}

func (d *sessionDirectory) DMChannel(userID string) (*discordgo.Channel, error) {
	ch, err := d.dg.UserChannelCreate(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to open DM channel for %s: %w", userID, err)
	}
	return ch, nil
}
