package core

import "github.com/devsfromasia/DevcordBot/internal/permissions"

// Command describes one invokable command: identity, usage text, and the
// tier an actor needs to run it. How commands are matched to messages is the
// owning client's business; the context only needs the descriptor for
// permission gating and help rendering.
type Command struct {
	Name        string
	Description string
	Usage       string
	Aliases     []string
	Requirement permissions.Tier
}
