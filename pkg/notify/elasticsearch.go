package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/google/uuid"
)

// ElasticsearchConfig holds connection options for the event index
type ElasticsearchConfig struct {
	URL         string
	Username    string
	Password    string
	IndexPrefix string
}

// DefaultElasticsearchConfig returns a local development configuration
func DefaultElasticsearchConfig() *ElasticsearchConfig {
	return &ElasticsearchConfig{
		URL:         "http://localhost:9200",
		IndexPrefix: "tucoleague",
	}
}

const eventMapping = `{
	"mappings": {
		"properties": {
			"event_id": { "type": "keyword" },
			"event": { "type": "keyword" },
			"session_id": { "type": "keyword" },
			"session_number": { "type": "integer" },
			"player_id": { "type": "keyword" },
			"timestamp": { "type": "date" }
		}
	}
}`

// eventDocument is the indexed form of an Event
type eventDocument struct {
	EventID       string    `json:"event_id"`
	Event         EventType `json:"event"`
	SessionID     string    `json:"session_id"`
	SessionNumber int       `json:"session_number"`
	PlayerID      string    `json:"player_id,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

// ElasticsearchNotifier records every event in an Elasticsearch index for auditing
type ElasticsearchNotifier struct {
	client *elasticsearch.Client
	index  string
}

// NewElasticsearchNotifier connects to Elasticsearch and makes sure the event index exists
func NewElasticsearchNotifier(ctx context.Context, config *ElasticsearchConfig) (*ElasticsearchNotifier, error) {
	cfg := elasticsearch.Config{
		Addresses: []string{config.URL},
	}
	if config.Username != "" && config.Password != "" {
		cfg.Username = config.Username
		cfg.Password = config.Password
	}

	client, err := elasticsearch.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("error creating Elasticsearch client: %w", err)
	}

	prefix := config.IndexPrefix
	if prefix == "" {
		prefix = "tucoleague"
	}

	n := &ElasticsearchNotifier{client: client, index: prefix + "_league_events"}
	if err := n.initIndex(ctx); err != nil {
		return nil, fmt.Errorf("error initializing event index: %w", err)
	}
	return n, nil
}

// Index returns the name of the event index
func (n *ElasticsearchNotifier) Index() string {
	return n.index
}

func (n *ElasticsearchNotifier) initIndex(ctx context.Context) error {
	res, err := n.client.Indices.Exists([]string{n.index}, n.client.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("error checking if event index exists: %w", err)
	}
	res.Body.Close()

	if res.StatusCode != 404 {
		return nil
	}

	req := esapi.IndicesCreateRequest{
		Index: n.index,
		Body:  bytes.NewReader([]byte(eventMapping)),
	}
	res, err = req.Do(ctx, n.client)
	if err != nil {
		return fmt.Errorf("error creating event index: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("error creating event index: %s", res.String())
	}
	return nil
}

// Notify implements Notifier
func (n *ElasticsearchNotifier) Notify(ctx context.Context, event Event) error {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}
	doc := eventDocument{
		EventID:       uuid.New().String(),
		Event:         event.Type,
		SessionID:     event.SessionID,
		SessionNumber: event.SessionNumber,
		PlayerID:      event.PlayerID,
		Timestamp:     event.OccurredAt,
	}

	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("error marshaling event: %w", err)
	}

	res, err := n.client.Index(
		n.index,
		bytes.NewReader(body),
		n.client.Index.WithContext(ctx),
		n.client.Index.WithDocumentID(doc.EventID),
	)
	if err != nil {
		return fmt.Errorf("error indexing event: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("error indexing event: %s", res.String())
	}
	return nil
}
