package discord

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	idiscord "github.com/fadedpez/tucoleague/internal/discord"
	"github.com/fadedpez/tucoleague/internal/types"
	"github.com/fadedpez/tucoleague/pkg/entities"
	"github.com/fadedpez/tucoleague/pkg/services/league"
)

const walletHistoryLimit = 5

// HandleInteraction routes a slash command to its handler
func (b *Bot) HandleInteraction(ctx context.Context, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	name := i.ApplicationCommandData().Name
	actor := b.actorFor(i)
	b.logger.Debug("Received command %s from %s", name, actor.ID)

	var (
		resp *idiscord.Response
		err  error
	)
	opts := options(i)
	switch name {
	case CommandStandings:
		resp, err = b.handleStandings(ctx, stringOption(opts, optionSession))
	case CommandFinalize:
		resp, err = b.handleFinalize(ctx, actor, stringOption(opts, optionSession))
	case CommandVPStatus:
		resp, err = b.handleOfferStatus(ctx, stringOption(opts, optionSession))
	case CommandVPAccept:
		resp, err = b.handleAccept(ctx, actor, stringOption(opts, optionSession), userOption(opts, optionPlayer))
	case CommandVPPass:
		var rank int
		if opt, ok := opts[optionRank]; ok {
			rank = int(opt.IntValue())
		}
		resp, err = b.handlePass(ctx, actor, stringOption(opts, optionSession), rank)
	case CommandWallet:
		userID := userOption(opts, optionUser)
		if userID == "" {
			userID = actor.ID
		}
		resp, err = b.handleWallet(ctx, userID)
	default:
		err = types.NewLeagueErrorf(types.ErrValidation, "unknown command %s", name)
	}

	if err != nil {
		b.logger.LogError(err)
		resp = idiscord.NewErrorResponse(err)
	}
	if sendErr := idiscord.SendResponse(b.session, i, resp); sendErr != nil {
		b.logger.Error("Error responding to %s: %v", name, sendErr)
	}
}

func mention(playerID string) string {
	return "<@" + playerID + ">"
}

func (b *Bot) handleStandings(ctx context.Context, sessionID string) (*idiscord.Response, error) {
	standings, err := b.league.GetStandings(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📊 **Session #%d standings**\n", standings.Session.Number))
	sb.WriteString(league.FormatStandings(standings.Players, mention))
	if standings.UnplayedPairings > 0 {
		sb.WriteString(fmt.Sprintf("\n_%d pairing(s) still to play_", standings.UnplayedPairings))
	}
	if standings.Session.IsFinalized() {
		sb.WriteString("\n🏁 Standings are final.")
	}
	return idiscord.NewResponse(sb.String()), nil
}

func (b *Bot) handleFinalize(ctx context.Context, actor entities.Actor, sessionID string) (*idiscord.Response, error) {
	result, err := b.league.FinalizeStandings(ctx, actor, sessionID)
	if err != nil {
		return nil, err
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🏁 **Session #%d standings finalized**\n", result.Session.Number))
	for i, id := range result.Session.PlacementIDs() {
		sb.WriteString(fmt.Sprintf("%s %s\n", league.Ordinal(i+1), mention(id)))
	}
	return idiscord.NewResponse(strings.TrimRight(sb.String(), "\n")), nil
}

func (b *Bot) handleOfferStatus(ctx context.Context, sessionID string) (*idiscord.Response, error) {
	status, err := b.league.GetVictoryPointOfferStatus(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	var sb strings.Builder
	switch {
	case status.State.IsAccepted():
		sb.WriteString(fmt.Sprintf("🏆 Session #%d Victory Point went to %s.", status.SessionNumber, mention(status.State.PlayerID)))
	case status.CanOffer:
		sb.WriteString(fmt.Sprintf("🎖️ Session #%d Victory Point is offered to %s (rank %d of %d).",
			status.SessionNumber, mention(status.CurrentPlayerID), status.State.Rank, len(status.RankedPlayers)))
	default:
		sb.WriteString(fmt.Sprintf("ℹ️ The Victory Point cannot be offered: %s", status.Reason))
	}
	if len(status.RankedPlayers) > 0 {
		sb.WriteString("\n")
		sb.WriteString(league.FormatStandings(status.RankedPlayers, mention))
	}
	return idiscord.NewResponse(sb.String()), nil
}

func (b *Bot) handleAccept(ctx context.Context, actor entities.Actor, sessionID, playerID string) (*idiscord.Response, error) {
	result, err := b.league.AcceptVictoryPoint(ctx, actor, sessionID, playerID)
	if err != nil {
		return nil, err
	}
	return idiscord.NewResponse(formatAccept(result, false)), nil
}

func (b *Bot) handlePass(ctx context.Context, actor entities.Actor, sessionID string, rank int) (*idiscord.Response, error) {
	result, err := b.league.PassVictoryPoint(ctx, actor, sessionID, rank)
	if err != nil {
		return nil, err
	}
	if result.AutoAssigned {
		return idiscord.NewResponse(formatAccept(result.Accept, true)), nil
	}
	return idiscord.NewResponse(fmt.Sprintf("➡️ Rank %d passed. The Victory Point is now offered to %s (rank %d).",
		rank, mention(result.NextPlayerID), result.NextRank)), nil
}

func formatAccept(result *league.AcceptResult, autoAssigned bool) string {
	var sb strings.Builder
	if autoAssigned {
		sb.WriteString(fmt.Sprintf("🏆 Everyone passed, so %s receives the Session #%d Victory Point!",
			mention(result.GrantedTo), result.SessionNumber))
	} else {
		sb.WriteString(fmt.Sprintf("🏆 %s accepted the Session #%d Victory Point!",
			mention(result.GrantedTo), result.SessionNumber))
	}
	if len(result.WalletAwards) > 0 {
		sb.WriteString("\n💰 Wallet awards:")
		for _, award := range result.WalletAwards {
			sb.WriteString(fmt.Sprintf("\n• %s +%d (%s place)", mention(award.PlayerID), award.Amount, league.Ordinal(award.Place)))
		}
	}
	return sb.String()
}

func (b *Bot) handleWallet(ctx context.Context, userID string) (*idiscord.Response, error) {
	wallet, _, err := b.wallets.GetOrCreateWallet(ctx, userID)
	if err != nil {
		return nil, err
	}
	txs, err := b.wallets.GetRecentTransactions(ctx, userID, walletHistoryLimit)
	if err != nil {
		return nil, err
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("💰 %s has **%d** wallet points.", mention(userID), wallet.Balance))
	for _, tx := range txs {
		sb.WriteString(fmt.Sprintf("\n• +%d %s", tx.Amount, tx.Description))
	}
	return idiscord.NewEphemeralResponse(sb.String()), nil
}
