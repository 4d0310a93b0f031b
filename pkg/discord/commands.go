package discord

import (
	"github.com/bwmarrin/discordgo"
)

// Command names
const (
	CommandStandings = "standings"
	CommandFinalize  = "finalize"
	CommandVPStatus  = "vp-status"
	CommandVPAccept  = "vp-accept"
	CommandVPPass    = "vp-pass"
	CommandWallet    = "wallet"
)

// Option names
const (
	optionSession = "session"
	optionPlayer  = "player"
	optionRank    = "rank"
	optionUser    = "user"
)

var sessionOption = &discordgo.ApplicationCommandOption{
	Type:        discordgo.ApplicationCommandOptionString,
	Name:        optionSession,
	Description: "Session ID, defaults to the active session",
}

var minRank = 1.0

// Commands defines all slash commands for the bot
var Commands = []*discordgo.ApplicationCommand{
	{
		Name:        CommandStandings,
		Description: "Show the session standings",
		Options:     []*discordgo.ApplicationCommandOption{sessionOption},
	},
	{
		Name:        CommandFinalize,
		Description: "Freeze the top six standings of the active session (admins)",
		Options:     []*discordgo.ApplicationCommandOption{sessionOption},
	},
	{
		Name:        CommandVPStatus,
		Description: "Show who is being offered the Victory Point",
		Options:     []*discordgo.ApplicationCommandOption{sessionOption},
	},
	{
		Name:        CommandVPAccept,
		Description: "Record a player accepting the Victory Point offer (admins)",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionUser,
				Name:        optionPlayer,
				Description: "Player accepting",
				Required:    true,
			},
			sessionOption,
		},
	},
	{
		Name:        CommandVPPass,
		Description: "Pass the Victory Point offer to the next ranked player (admins)",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionInteger,
				Name:        optionRank,
				Description: "Rank currently being offered",
				Required:    true,
				MinValue:    &minRank,
			},
			sessionOption,
		},
	},
	{
		Name:        CommandWallet,
		Description: "Show a wallet balance and recent awards",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionUser,
				Name:        optionUser,
				Description: "Whose wallet, defaults to yours",
			},
		},
	},
}

// options indexes an interaction's options by name
func options(i *discordgo.InteractionCreate) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	opts := make(map[string]*discordgo.ApplicationCommandInteractionDataOption)
	for _, opt := range i.ApplicationCommandData().Options {
		opts[opt.Name] = opt
	}
	return opts
}

func stringOption(opts map[string]*discordgo.ApplicationCommandInteractionDataOption, name string) string {
	if opt, ok := opts[name]; ok {
		return opt.StringValue()
	}
	return ""
}

func userOption(opts map[string]*discordgo.ApplicationCommandInteractionDataOption, name string) string {
	if opt, ok := opts[name]; ok {
		return opt.UserValue(nil).ID
	}
	return ""
}
