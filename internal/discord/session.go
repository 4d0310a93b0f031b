package discord

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// SessionHandler is the part of a Discord gateway session the league bot uses
type SessionHandler interface {
	// Replies and announcements
	InteractionRespond(i *discordgo.Interaction, r *discordgo.InteractionResponse) error
	ChannelMessageSend(channelID string, content string) (*discordgo.Message, error)

	// Slash command registration
	ApplicationCommandCreate(appID string, guildID string, cmd *discordgo.ApplicationCommand, options ...discordgo.RequestOption) (*discordgo.ApplicationCommand, error)
	ApplicationCommandDelete(appID string, guildID string, cmdID string) error
	ApplicationCommands(appID string, guildID string) ([]*discordgo.ApplicationCommand, error)

	// Connection lifecycle
	Open() error
	Close() error
	AddHandler(handler interface{}) func()
}

// DiscordSession is the live SessionHandler backed by a discordgo gateway connection
type DiscordSession struct {
	dg *discordgo.Session
}

var _ SessionHandler = (*DiscordSession)(nil)

// NewSession prepares a bot session for token. Only guild events are
// requested since the bot reacts to slash commands alone.
func NewSession(token string) (*DiscordSession, error) {
	dg, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("error creating discord session: %w", err)
	}
	dg.Identify.Intents = discordgo.IntentsGuilds
	return &DiscordSession{dg: dg}, nil
}

func (s *DiscordSession) InteractionRespond(i *discordgo.Interaction, r *discordgo.InteractionResponse) error {
	return s.dg.InteractionRespond(i, r)
}

func (s *DiscordSession) ChannelMessageSend(channelID string, content string) (*discordgo.Message, error) {
	return s.dg.ChannelMessageSend(channelID, content)
}

func (s *DiscordSession) ApplicationCommandCreate(appID string, guildID string, cmd *discordgo.ApplicationCommand, options ...discordgo.RequestOption) (*discordgo.ApplicationCommand, error) {
	return s.dg.ApplicationCommandCreate(appID, guildID, cmd, options...)
}

func (s *DiscordSession) ApplicationCommandDelete(appID string, guildID string, cmdID string) error {
	return s.dg.ApplicationCommandDelete(appID, guildID, cmdID)
}

func (s *DiscordSession) ApplicationCommands(appID string, guildID string) ([]*discordgo.ApplicationCommand, error) {
	return s.dg.ApplicationCommands(appID, guildID)
}

func (s *DiscordSession) Open() error {
	return s.dg.Open()
}

func (s *DiscordSession) Close() error {
	return s.dg.Close()
}

// AddHandler registers a discordgo event handler and returns its remover
func (s *DiscordSession) AddHandler(handler interface{}) func() {
	return s.dg.AddHandler(handler)
}
