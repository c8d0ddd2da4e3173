package tickets

import (
	"github.com/Jacobbrewer1/discordgo"
)

// Platform is the narrow slice of the chat platform consumed by the ticket
// core. Calls may fail transiently (rate limits) or permanently (forbidden,
// not found); callers translate at the operation boundary.
type Platform interface {
	// Channel returns a channel by ID.
	Channel(channelID string) (*discordgo.Channel, error)

	// GuildChannelCreateComplex creates a channel in a guild.
	GuildChannelCreateComplex(guildID string, data discordgo.GuildChannelCreateData) (*discordgo.Channel, error)

	// ChannelDelete deletes a channel.
	ChannelDelete(channelID string) (*discordgo.Channel, error)

	// ChannelMessageSendComplex posts a message to a channel.
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend) (*discordgo.Message, error)

	// ChannelMessageDelete deletes a message from a channel.
	ChannelMessageDelete(channelID, messageID string) error

	// ChannelMessages returns up to limit messages from a channel, newest
	// first, optionally before/after/around a message ID.
	ChannelMessages(channelID string, limit int, beforeID, afterID, aroundID string) ([]*discordgo.Message, error)
}

// SessionPlatform adapts a discord session to the Platform interface.
func SessionPlatform(s *discordgo.Session) Platform {
	return &sessionPlatform{s: s}
}

type sessionPlatform struct {
	s *discordgo.Session
}

func (p *sessionPlatform) Channel(channelID string) (*discordgo.Channel, error) {
	return p.s.Channel(channelID)
}

func (p *sessionPlatform) GuildChannelCreateComplex(guildID string, data discordgo.GuildChannelCreateData) (*discordgo.Channel, error) {
	return p.s.GuildChannelCreateComplex(guildID, data)
}

func (p *sessionPlatform) ChannelDelete(channelID string) (*discordgo.Channel, error) {
	return p.s.ChannelDelete(channelID)
}

func (p *sessionPlatform) ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend) (*discordgo.Message, error) {
	return p.s.ChannelMessageSendComplex(channelID, data)
}

func (p *sessionPlatform) ChannelMessageDelete(channelID, messageID string) error {
	return p.s.ChannelMessageDelete(channelID, messageID)
}

func (p *sessionPlatform) ChannelMessages(channelID string, limit int, beforeID, afterID, aroundID string) ([]*discordgo.Message, error) {
	return p.s.ChannelMessages(channelID, limit, beforeID, afterID, aroundID)
}
