package help

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devsfromasia/DevcordBot/internal/core"
	"github.com/devsfromasia/DevcordBot/internal/permissions"
)

func TestRenderHelp(t *testing.T) {
	r := New("xd")
	m := r.RenderHelp(&core.Command{
		Name:        "rank",
		Description: "Grant or revoke a stored rank.",
		Usage:       "rank <@user> <admin|moderator|none>",
		Aliases:     []string{"r"},
		Requirement: permissions.TierAdmin,
	})

	assert.Equal(t, "Command: rank", m.Title)
	assert.Equal(t, "Grant or revoke a stored rank.", m.Description)
	require.Len(t, m.Sections, 3)
	assert.Equal(t, "Usage", m.Sections[0].Title)
	assert.Equal(t, "`xd rank <@user> <admin|moderator|none>`", m.Sections[0].Body)
	assert.Equal(t, "Aliases", m.Sections[1].Title)
	assert.Equal(t, "r", m.Sections[1].Body)
	assert.Equal(t, "Requires", m.Sections[2].Title)
	assert.Equal(t, "admin", m.Sections[2].Body)
}

func TestRenderHelpMinimalCommand(t *testing.T) {
	r := New("xd")
	m := r.RenderHelp(&core.Command{Name: "ping", Description: "Check the bot."})

	require.Len(t, m.Sections, 1, "only the usage section for an open command")
	assert.Equal(t, "`xd ping`", m.Sections[0].Body)
}
