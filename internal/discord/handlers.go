package discord

import (
	"fmt"
	"strings"

	"github.com/devsfromasia/DevcordBot/internal/core"
	"github.com/devsfromasia/DevcordBot/internal/embed"
	"github.com/devsfromasia/DevcordBot/internal/permissions"
)

// builtinHandlers wires the bot's built-in commands. There is no command
// framework here on purpose: a plain table is all the routing this bot does.
func (b *Bot) builtinHandlers() map[string]handler {
	return index([]handler{
		{
			cmd: &core.Command{
				Name:        "ping",
				Description: "Check whether the bot is alive.",
			},
			run: b.handlePing,
		},
		{
			cmd: &core.Command{
				Name:        "help",
				Description: "Show help for a command, or list all commands.",
				Usage:       "help [command]",
				Aliases:     []string{"h"},
			},
			run: b.handleHelp,
		},
		{
			cmd: &core.Command{
				Name:        "rank",
				Description: "Grant or revoke a stored permission rank for a user.",
				Usage:       "rank <@user|userID> <admin|moderator|none>",
				Requirement: permissions.TierAdmin,
			},
			run: b.handleRank,
		},
		{
			cmd: &core.Command{
				Name:        "history",
				Description: "Show recently executed commands for this server.",
				Requirement: permissions.TierModerator,
			},
			run: b.handleHistory,
		},
	})
}

func (b *Bot) handlePing(ctx *core.Context) error {
	ctx.Respond("Pong!")
	return nil
}

func (b *Bot) handleHelp(ctx *core.Context) error {
	if len(ctx.Args) == 0 {
		bld := embed.NewBuilder().
			Title("Commands").
			Description("Run `" + b.cfg.Prefix + " help <command>` for details.")
		seen := map[string]bool{}
		for _, h := range b.handlers {
			if seen[h.cmd.Name] {
				continue
			}
			seen[h.cmd.Name] = true
			bld.Section(h.cmd.Name, h.cmd.Description)
		}
		ctx.RespondBuilder(bld)
		return nil
	}

	h, ok := b.handlers[strings.ToLower(ctx.Args[0])]
	if !ok {
		ctx.Respond(fmt.Sprintf("Unknown command: `%s`", ctx.Args[0]))
		return nil
	}
	ctx.RespondMessage(b.deps.Help.RenderHelp(h.cmd))
	return nil
}

func (b *Bot) handleRank(ctx *core.Context) error {
	if len(ctx.Args) < 2 {
		ctx.SendHelp()
		return nil
	}

	userID := ctx.Args[0]
	if len(ctx.Message.Mentions) > 0 {
		userID = ctx.Message.Mentions[0].ID
	}
	rank := strings.ToLower(ctx.Args[1])

	switch rank {
	case "admin", "moderator":
		if err := b.storage.SetProfileRank(ctx.GuildID(), userID, rank, ctx.Message.Author.ID); err != nil {
			return fmt.Errorf("failed to store rank: %w", err)
		}
		ctx.Respond(fmt.Sprintf("Granted `%s` to <@%s>.", rank, userID))
	case "none":
		if err := b.storage.SetProfileRank(ctx.GuildID(), userID, "", ctx.Message.Author.ID); err != nil {
			return fmt.Errorf("failed to clear rank: %w", err)
		}
		ctx.Respond(fmt.Sprintf("Cleared the stored rank of <@%s>.", userID))
	default:
		ctx.SendHelp()
	}
	return nil
}

func (b *Bot) handleHistory(ctx *core.Context) error {
	records, err := b.storage.FetchCommandHistory(ctx.GuildID())
	if err != nil {
		return fmt.Errorf("failed to fetch history: %w", err)
	}
	if len(records) == 0 {
		ctx.Respond("No commands recorded yet.")
		return nil
	}

	bld := embed.NewBuilder().Title("Recent commands")
	for _, r := range records {
		bld.Section(
			fmt.Sprintf("%s — %s", r.Datetime.Format("2006-01-02 15:04"), r.Command),
			fmt.Sprintf("%s in #%s", r.Username, r.ChannelName),
		)
	}
	ctx.RespondBuilder(bld)
	return nil
}
