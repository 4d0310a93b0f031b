package notify

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// ChannelSender is the slice of a Discord session the notifier needs
type ChannelSender interface {
	ChannelMessageSend(channelID string, content string) (*discordgo.Message, error)
}

// DiscordNotifier posts announcements to a channel
type DiscordNotifier struct {
	session   ChannelSender
	channelID string
}

// NewDiscordNotifier creates a notifier posting to channelID
func NewDiscordNotifier(session ChannelSender, channelID string) *DiscordNotifier {
	return &DiscordNotifier{session: session, channelID: channelID}
}

// Notify implements Notifier
func (n *DiscordNotifier) Notify(ctx context.Context, event Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := n.session.ChannelMessageSend(n.channelID, FormatEvent(event)); err != nil {
		return fmt.Errorf("error sending %s announcement: %w", event.Type, err)
	}
	return nil
}

// FormatEvent renders an announcement line for event
func FormatEvent(event Event) string {
	session := fmt.Sprintf("Session #%d", event.SessionNumber)
	switch event.Type {
	case EventStandingsFinalized:
		return fmt.Sprintf("🏁 %s standings are final! Use /standings to see the top six.", session)
	case EventLeaderboardUpdated:
		if event.PlayerID != "" {
			return fmt.Sprintf("🏆 <@%s> takes the Victory Point for %s!", event.PlayerID, session)
		}
		return fmt.Sprintf("🏆 The Victory Point leaderboard changed after %s.", session)
	case EventOfferPending:
		return fmt.Sprintf("⏳ <@%s>, the %s Victory Point is still waiting on you. Tell a league admin whether you accept or pass.", event.PlayerID, session)
	case EventWalletsUpdated:
		return fmt.Sprintf("💰 Wallet points for %s have been paid out. Check /wallet.", session)
	}
	return fmt.Sprintf("📣 %s: %s", session, event.Type)
}
