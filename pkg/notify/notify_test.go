package notify_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/fadedpez/tucoleague/pkg/notify"
	notifymock "github.com/fadedpez/tucoleague/pkg/notify/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type channelSender struct {
	mock.Mock
}

func (c *channelSender) ChannelMessageSend(channelID string, content string) (*discordgo.Message, error) {
	args := c.Called(channelID, content)
	msg, _ := args.Get(0).(*discordgo.Message)
	return msg, args.Error(1)
}

func TestDiscordNotifierPostsToChannel(t *testing.T) {
	sender := &channelSender{}
	sender.On("ChannelMessageSend", "chan-1", mock.MatchedBy(func(content string) bool {
		return strings.Contains(content, "<@p1>") && strings.Contains(content, "Session #4")
	})).Return(&discordgo.Message{ID: "m1"}, nil)

	n := notify.NewDiscordNotifier(sender, "chan-1")
	err := n.Notify(context.Background(), notify.Event{
		Type:          notify.EventLeaderboardUpdated,
		SessionID:     "s4",
		SessionNumber: 4,
		PlayerID:      "p1",
	})

	require.NoError(t, err)
	sender.AssertExpectations(t)
}

func TestDiscordNotifierWrapsSendError(t *testing.T) {
	sender := &channelSender{}
	sender.On("ChannelMessageSend", "chan-1", mock.Anything).Return(nil, errors.New("rate limited"))

	n := notify.NewDiscordNotifier(sender, "chan-1")
	err := n.Notify(context.Background(), notify.Event{Type: notify.EventWalletsUpdated, SessionNumber: 1})

	assert.ErrorContains(t, err, "rate limited")
	assert.ErrorContains(t, err, "wallets_updated")
}

func TestFormatEvent(t *testing.T) {
	assert.Contains(t, notify.FormatEvent(notify.Event{Type: notify.EventStandingsFinalized, SessionNumber: 2}), "Session #2 standings are final")
	assert.Contains(t, notify.FormatEvent(notify.Event{Type: notify.EventWalletsUpdated, SessionNumber: 2}), "Wallet points")
	assert.Contains(t, notify.FormatEvent(notify.Event{Type: "custom", SessionNumber: 2}), "custom")
	assert.Contains(t, notify.FormatEvent(notify.Event{Type: notify.EventOfferPending, SessionNumber: 2, PlayerID: "p3"}), "<@p3>, the Session #2 Victory Point is still waiting")
}

func TestMultiJoinsErrors(t *testing.T) {
	ctrl := gomock.NewController(t)
	first := notifymock.NewMockNotifier(ctrl)
	second := notifymock.NewMockNotifier(ctrl)

	event := notify.Event{Type: notify.EventStandingsFinalized, SessionID: "s1"}
	first.EXPECT().Notify(gomock.Any(), event).Return(errors.New("discord down"))
	second.EXPECT().Notify(gomock.Any(), event).Return(nil)

	err := notify.Multi{first, nil, second}.Notify(context.Background(), event)
	assert.ErrorContains(t, err, "discord down")

	assert.NoError(t, notify.Multi{}.Notify(context.Background(), event))
	assert.NoError(t, notify.Nop{}.Notify(context.Background(), event))
}

// fakeElasticsearch answers the handful of endpoints the notifier uses
type fakeElasticsearch struct {
	mu          sync.Mutex
	indexExists bool
	created     string
	documents   []map[string]interface{}
}

func (f *fakeElasticsearch) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	w.Header().Set("X-Elastic-Product", "Elasticsearch")
	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.Method == http.MethodHead:
		if f.indexExists {
			w.WriteHeader(http.StatusOK)
		} else {
			w.WriteHeader(http.StatusNotFound)
		}
	case r.Method == http.MethodPut && !strings.Contains(r.URL.Path, "/_doc"):
		body, _ := io.ReadAll(r.Body)
		f.created = string(body)
		f.indexExists = true
		w.Write([]byte(`{"acknowledged":true}`))
	case strings.Contains(r.URL.Path, "/_doc"):
		var doc map[string]interface{}
		json.NewDecoder(r.Body).Decode(&doc)
		f.documents = append(f.documents, doc)
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"result":"created"}`))
	default:
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"unexpected request"}`))
	}
}

func TestElasticsearchNotifierCreatesIndexAndIndexesEvents(t *testing.T) {
	fake := &fakeElasticsearch{}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	n, err := notify.NewElasticsearchNotifier(context.Background(), &notify.ElasticsearchConfig{URL: srv.URL, IndexPrefix: "test"})
	require.NoError(t, err)
	assert.Equal(t, "test_league_events", n.Index())
	assert.Contains(t, fake.created, `"session_id"`)

	err = n.Notify(context.Background(), notify.Event{
		Type:          notify.EventLeaderboardUpdated,
		SessionID:     "s1",
		SessionNumber: 1,
		PlayerID:      "p5",
	})
	require.NoError(t, err)

	require.Len(t, fake.documents, 1)
	assert.Equal(t, "leaderboard_updated", fake.documents[0]["event"])
	assert.Equal(t, "p5", fake.documents[0]["player_id"])
	assert.NotEmpty(t, fake.documents[0]["event_id"])
}

func TestElasticsearchNotifierSkipsExistingIndex(t *testing.T) {
	fake := &fakeElasticsearch{indexExists: true}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	_, err := notify.NewElasticsearchNotifier(context.Background(), &notify.ElasticsearchConfig{URL: srv.URL})
	require.NoError(t, err)
	assert.Empty(t, fake.created)
}
