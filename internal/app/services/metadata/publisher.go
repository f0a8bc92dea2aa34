package metadata

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/filmdao/daoclient/pkg/logger"
)

// IdeaPayload is the document published to the content-addressed store when
// a user submits a new movie idea.
type IdeaPayload struct {
	Title             string `json:"title"`
	Synopsis          string `json:"synopsis"`
	Genre             string `json:"genre"`
	EstimatedBudget   string `json:"estimatedBudget"`
	EstimatedDuration string `json:"estimatedDuration"`
}

// Publisher hands idea payloads to the off-chain pinning endpoint and returns
// the resulting content locator. The endpoint is an external collaborator;
// this is an opaque publish operation.
type Publisher struct {
	client   *http.Client
	endpoint string
	gateway  string
	log      *logger.Logger
}

// NewPublisher constructs a publisher posting to the given pinning endpoint.
func NewPublisher(client *http.Client, endpoint, gateway string, log *logger.Logger) (*Publisher, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return nil, fmt.Errorf("publisher endpoint required")
	}
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	gateway = strings.TrimSpace(gateway)
	if gateway == "" {
		gateway = DefaultContentGateway
	}
	if !strings.HasSuffix(gateway, "/") {
		gateway += "/"
	}
	if log == nil {
		log = logger.NewDefault("metadata-publisher")
	}
	return &Publisher{client: client, endpoint: endpoint, gateway: gateway, log: log}, nil
}

// Publish stores the payload and returns a gateway URL for the new content,
// suitable for use as a proposal reference.
func (p *Publisher) Publish(ctx context.Context, payload IdeaPayload) (string, error) {
	if strings.TrimSpace(payload.Title) == "" {
		return "", fmt.Errorf("idea title required")
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal idea payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build publish request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("publish request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("publish status %d", resp.StatusCode)
	}

	var result struct {
		CID string `json:"cid"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode publish response: %w", err)
	}
	if result.CID == "" {
		return "", fmt.Errorf("publish response missing content id")
	}

	reference := p.gateway + result.CID
	p.log.WithField("reference", reference).Info("idea published")
	return reference, nil
}
