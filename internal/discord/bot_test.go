package discord

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/devsfromasia/DevcordBot/internal/core"
)

func TestParseInvocation(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		wantName string
		wantArgs []string
		wantOK   bool
	}{
		{
			name:     "simple command",
			content:  "xd ping",
			wantName: "ping",
			wantOK:   true,
		},
		{
			name:     "command with args",
			content:  "xd rank @someone admin",
			wantName: "rank",
			wantArgs: []string{"@someone", "admin"},
			wantOK:   true,
		},
		{
			name:     "uppercase command is normalized",
			content:  "xd PING",
			wantName: "ping",
			wantOK:   true,
		},
		{
			name:    "wrong prefix",
			content: "yo ping",
		},
		{
			name:    "prefix glued to command",
			content: "xdping",
		},
		{
			name:    "prefix with nothing after it",
			content: "xd",
		},
		{
			name:    "empty message",
			content: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			name, args, ok := parseInvocation("xd", tt.content)
			assert.Equal(t, tt.wantOK, ok)
			if !tt.wantOK {
				return
			}
			assert.Equal(t, tt.wantName, name)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestIndexIncludesAliases(t *testing.T) {
	handlers := index([]handler{
		{cmd: &core.Command{Name: "help", Aliases: []string{"h"}}},
	})

	assert.Contains(t, handlers, "help")
	assert.Contains(t, handlers, "h")
	assert.Same(t, handlers["help"].cmd, handlers["h"].cmd)
}
