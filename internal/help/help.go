// Package help formats command descriptors into help messages.
package help

import (
	"strings"

	"github.com/devsfromasia/DevcordBot/internal/core"
	"github.com/devsfromasia/DevcordBot/internal/embed"
	"github.com/devsfromasia/DevcordBot/internal/permissions"
)

// Renderer implements core.HelpRenderer.
type Renderer struct {
	Prefix string
}

func New(prefix string) *Renderer {
	return &Renderer{Prefix: prefix}
}

func (r *Renderer) RenderHelp(cmd *core.Command) *embed.Message {
	b := embed.NewBuilder().
		Title("Command: " + cmd.Name).
		Description(cmd.Description)

	usage := cmd.Usage
	if usage == "" {
		usage = cmd.Name
	}
	b.Section("Usage", "`"+r.Prefix+" "+usage+"`")

	if len(cmd.Aliases) > 0 {
		b.Section("Aliases", strings.Join(cmd.Aliases, ", "))
	}
	if cmd.Requirement > permissions.TierNone {
		b.Section("Requires", cmd.Requirement.String())
	}
	return b.Build()
}
