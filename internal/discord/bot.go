package discord

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/devsfromasia/DevcordBot/internal/config"
	"github.com/devsfromasia/DevcordBot/internal/core"
	"github.com/devsfromasia/DevcordBot/internal/embed"
	"github.com/devsfromasia/DevcordBot/internal/help"
	"github.com/devsfromasia/DevcordBot/internal/storage"
)

// Bot is the long-lived command client. It owns the response tracker and
// builds one core.Context per invocation.
type Bot struct {
	dg       *discordgo.Session
	cfg      *config.Config
	storage  *storage.Storage
	tracker  *core.ResponseTracker
	deps     core.Deps
	handlers map[string]handler // keyed by command name and every alias
}

// handler pairs a command descriptor with the function that runs it.
type handler struct {
	cmd *core.Command
	run func(*core.Context) error
}

// StartBot starts the Discord bot and blocks until ctx is cancelled.
func StartBot(ctx context.Context, cfg *config.Config, store *storage.Storage) error {
	b := &Bot{
		cfg:     cfg,
		storage: store,
		tracker: core.NewResponseTracker(),
	}
	if err := b.run(ctx, cfg.DiscordToken); err != nil {
		return fmt.Errorf("bot run error: %w", err)
	}
	return nil
}

func (b *Bot) run(ctx context.Context, token string) error {
	dg, err := discordgo.New("Bot " + token)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	b.dg = dg

	b.configureIntents()
	b.deps = core.Deps{
		Transport:   newSessionTransport(dg),
		Directory:   newSessionDirectory(dg, b.cfg),
		Profiles:    b.storage,
		Help:        help.New(b.cfg.Prefix),
		Tracker:     b.tracker,
		HomeGuildID: b.cfg.HomeGuildID,
	}
	b.handlers = b.builtinHandlers()

	dg.AddHandler(b.onReady)
	dg.AddHandler(b.onMessageCreate)
	dg.AddHandler(b.onMessageDelete)

	if err := dg.Open(); err != nil {
		return fmt.Errorf("failed to open Discord session: %w", err)
	}
	defer dg.Close()

	<-ctx.Done()
	log.Println("[INFO] Shutdown signal received. Cleaning up...")
	return nil
}

func (b *Bot) configureIntents() {
	b.dg.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsDirectMessages |
		discordgo.IntentMessageContent
}

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	log.Printf("[INFO] Bot %v is running with %d commands.", r.User.Username, len(b.handlers))
}

// onMessageCreate matches prefixed messages against the handler table and
// executes the command with a fresh context.
func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.ID == s.State.User.ID || m.Author.Bot {
		return
	}

	name, args, ok := parseInvocation(b.cfg.Prefix, m.Content)
	if !ok {
		return
	}
	h, ok := b.handlers[name]
	if !ok {
		return
	}

	ctx := core.NewContext(b.deps, h.cmd, args, m)
	b.logCommand(m, h.cmd.Name)

	if !ctx.HasPermission(h.cmd.Requirement) {
		ctx.Respond(fmt.Sprintf("You need the `%s` tier to run `%s`.", h.cmd.Requirement, h.cmd.Name))
		return
	}

	if err := h.run(ctx); err != nil {
		log.Printf("[ERR] Command %s failed: %v", h.cmd.Name, err)
		ctx.RespondMessage(&embed.Message{
			Description: fmt.Sprintf("Error running command: %v", err),
		})
	}
}

// onMessageDelete removes the bot's responses when their trigger is deleted.
func (b *Bot) onMessageDelete(s *discordgo.Session, m *discordgo.MessageDelete) {
	records := b.tracker.Records(m.ID)
	if len(records) == 0 {
		return
	}
	for _, r := range records {
		if err := s.ChannelMessageDelete(r.ChannelID, r.MessageID); err != nil {
			log.Printf("[WARN] Failed to delete response %s in %s: %v", r.MessageID, r.ChannelID, err)
		}
	}
	b.tracker.Forget(m.ID)
}

// parseInvocation splits a prefixed message into command name and arguments.
// The prefix must be its own leading token.
func parseInvocation(prefix, content string) (string, []string, bool) {
	fields := strings.Fields(content)
	if len(fields) < 2 || fields[0] != prefix {
		return "", nil, false
	}
	return strings.ToLower(fields[1]), fields[2:], true
}

// index builds the handler table, keying each command by its name and every
// alias.
func index(handlers []handler) map[string]handler {
	out := make(map[string]handler, len(handlers))
	for _, h := range handlers {
		out[h.cmd.Name] = h
		for _, a := range h.cmd.Aliases {
			out[a] = h
		}
	}
	return out
}
