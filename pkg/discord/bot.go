package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/fadedpez/tucoleague/internal/config"
	idiscord "github.com/fadedpez/tucoleague/internal/discord"
	"github.com/fadedpez/tucoleague/internal/logging"
	"github.com/fadedpez/tucoleague/pkg/entities"
	"github.com/fadedpez/tucoleague/pkg/services/league"
)

// LeagueService is the league engine the bot drives
type LeagueService interface {
	GetStandings(ctx context.Context, sessionID string) (*league.Standings, error)
	FinalizeStandings(ctx context.Context, actor entities.Actor, sessionID string) (*league.FinalizeResult, error)
	GetVictoryPointOfferStatus(ctx context.Context, sessionID string) (*league.OfferStatus, error)
	AcceptVictoryPoint(ctx context.Context, actor entities.Actor, sessionID, playerID string) (*league.AcceptResult, error)
	PassVictoryPoint(ctx context.Context, actor entities.Actor, sessionID string, currentRank int) (*league.PassResult, error)
}

// WalletService is the wallet read side the bot shows
type WalletService interface {
	GetOrCreateWallet(ctx context.Context, userID string) (*entities.Wallet, bool, error)
	GetRecentTransactions(ctx context.Context, userID string, limit int) ([]*entities.Transaction, error)
}

// Bot serves the league slash commands
type Bot struct {
	session idiscord.SessionHandler
	cfg     *config.Config
	league  LeagueService
	wallets WalletService
	logger  *logging.Logger

	removeHandler func()
	registered    []*discordgo.ApplicationCommand
}

// NewBot creates a bot on session. It does not connect until Start.
func NewBot(session idiscord.SessionHandler, cfg *config.Config, leagueService LeagueService, wallets WalletService, logger *logging.Logger) *Bot {
	if logger == nil {
		logger = logging.Default
	}
	return &Bot{
		session: session,
		cfg:     cfg,
		league:  leagueService,
		wallets: wallets,
		logger:  logger,
	}
}

// Start connects to Discord and registers the slash commands in the configured guild
func (b *Bot) Start() error {
	b.removeHandler = b.session.AddHandler(func(_ *discordgo.Session, i *discordgo.InteractionCreate) {
		b.HandleInteraction(context.Background(), i)
	})

	if err := b.session.Open(); err != nil {
		return fmt.Errorf("error opening connection: %w", err)
	}

	for _, cmd := range Commands {
		created, err := b.session.ApplicationCommandCreate(b.cfg.AppID, b.cfg.GuildID, cmd)
		if err != nil {
			return fmt.Errorf("error creating command %s: %w", cmd.Name, err)
		}
		b.registered = append(b.registered, created)
		b.logger.Debug("Registered command: %s", cmd.Name)
	}

	b.logger.Info("League bot started with %d commands", len(b.registered))
	return nil
}

// Stop closes the connection. In development it also removes the registered commands.
func (b *Bot) Stop() error {
	if b.cfg.IsDevelopment() {
		b.cleanupCommands()
	}

	if b.removeHandler != nil {
		b.removeHandler()
	}

	if err := b.session.Close(); err != nil {
		return fmt.Errorf("error closing connection: %w", err)
	}
	return nil
}

// actorFor identifies who triggered an interaction
func (b *Bot) actorFor(i *discordgo.InteractionCreate) entities.Actor {
	var userID string
	switch {
	case i.Member != nil && i.Member.User != nil:
		userID = i.Member.User.ID
	case i.User != nil:
		userID = i.User.ID
	}
	return entities.Actor{ID: userID, Admin: userID != "" && b.cfg.IsAdmin(userID)}
}

func (b *Bot) cleanupCommands() {
	for _, cmd := range b.registered {
		if cmd == nil {
			continue
		}
		if err := b.session.ApplicationCommandDelete(b.cfg.AppID, b.cfg.GuildID, cmd.ID); err != nil {
			b.logger.Warn("Error deleting command %s: %v", cmd.Name, err)
		}
	}
	b.registered = nil
}
