package discord

import (
	"log"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/devsfromasia/DevcordBot/internal/storage"
)

// logCommand records a command execution to storage, resolving channel and
// guild names from state with a REST fallback.
func (b *Bot) logCommand(m *discordgo.MessageCreate, commandName string) {
	guildID := m.GuildID
	if guildID == "" {
		guildID = b.cfg.HomeGuildID
	}
	if guildID == "" {
		return
	}

	channelName := ""
	channel, err := b.dg.State.Channel(m.ChannelID)
	if err != nil || channel == nil {
		channel, err = b.dg.Channel(m.ChannelID)
		if err != nil {
			log.Println("[WARN] Failed to fetch channel:", err)
		}
	}
	if channel != nil {
		channelName = channel.Name
	}

	guildName := ""
	guild, err := b.dg.State.Guild(guildID)
	if err != nil || guild == nil {
		guild, err = b.dg.Guild(guildID)
		if err != nil {
			log.Println("[WARN] Failed to fetch guild:", err)
		}
	}
	if guild != nil {
		guildName = guild.Name
	}

	record := storage.CommandHistoryRecord{
		ChannelID:   m.ChannelID,
		ChannelName: channelName,
		GuildName:   guildName,
		UserID:      m.Author.ID,
		Username:    m.Author.Username,
		Command:     commandName,
		Datetime:    time.Now(),
	}
	if err := b.storage.AppendCommandToHistory(guildID, record); err != nil {
		log.Println("[WARN] Failed to log command:", err)
	}
}
