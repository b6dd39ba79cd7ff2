// Package embed carries the bot's structured message convention: a title, a
// description and styled sections, convertible to a discordgo embed.
package embed

import "github.com/bwmarrin/discordgo"

const DefaultColor = 0x7289da

// Section is one styled block of a structured message.
type Section struct {
	Title  string
	Body   string
	Inline bool
}

// Message is the convention type handlers pass around instead of raw
// discordgo embeds.
type Message struct {
	Title       string
	Description string
	Color       int
	Sections    []Section
}

// MessageEmbed converts the message into the wire embed type.
func (m *Message) MessageEmbed() *discordgo.MessageEmbed {
	color := m.Color
	if color == 0 {
		color = DefaultColor
	}
	e := &discordgo.MessageEmbed{
		Title:       m.Title,
		Description: m.Description,
		Color:       color,
	}
	for _, s := range m.Sections {
		e.Fields = append(e.Fields, &discordgo.MessageEmbedField{
			Name:   s.Title,
			Value:  s.Body,
			Inline: s.Inline,
		})
	}
	return e
}

// Builder assembles a Message through chained calls.
type Builder struct {
	msg Message
}

func NewBuilder() *Builder {
	return &Builder{}
}

func (b *Builder) Title(title string) *Builder {
	b.msg.Title = title
	return b
}

func (b *Builder) Description(description string) *Builder {
	b.msg.Description = description
	return b
}

func (b *Builder) Color(color int) *Builder {
	b.msg.Color = color
	return b
}

func (b *Builder) Section(title, body string) *Builder {
	b.msg.Sections = append(b.msg.Sections, Section{Title: title, Body: body})
	return b
}

func (b *Builder) InlineSection(title, body string) *Builder {
	b.msg.Sections = append(b.msg.Sections, Section{Title: title, Body: body, Inline: true})
	return b
}

// Build returns a copy of the assembled message; the builder stays reusable.
func (b *Builder) Build() *Message {
	m := b.msg
	m.Sections = append([]Section(nil), b.msg.Sections...)
	return &m
}
