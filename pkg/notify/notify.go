// Package notify dispatches league announcements. Delivery is best effort:
// callers log a failed notification and carry on.
package notify

import (
	"context"
	"errors"
	"time"
)

//go:generate mockgen -source=notify.go -destination=mock/notifier.go -package=mock

// EventType names a league announcement
type EventType string

const (
	EventStandingsFinalized EventType = "standings_finalized"
	EventLeaderboardUpdated EventType = "leaderboard_updated"
	EventWalletsUpdated     EventType = "wallets_updated"
	EventOfferPending       EventType = "offer_pending"
)

// Event is one announcement about a session
type Event struct {
	Type          EventType
	SessionID     string
	SessionNumber int
	PlayerID      string // set when the event is about one player, such as the Victory Point winner
	OccurredAt    time.Time
}

// Notifier delivers league events to an outside system
type Notifier interface {
	Notify(ctx context.Context, event Event) error
}

// Multi fans an event out to every notifier and joins their errors
type Multi []Notifier

// Notify implements Notifier
func (m Multi) Notify(ctx context.Context, event Event) error {
	var errs []error
	for _, n := range m {
		if n == nil {
			continue
		}
		if err := n.Notify(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Nop discards every event
type Nop struct{}

// Notify implements Notifier
func (Nop) Notify(context.Context, Event) error { return nil }
