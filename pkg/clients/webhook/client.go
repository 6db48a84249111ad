package webhook

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
)

const requestTimeout = 15 * time.Second

// Notification summarizes one refreshed shopping list for downstream
// consumers.
type Notification struct {
	EventID        string    `json:"event_id"`
	Username       string    `json:"username"`
	TotalItems     int       `json:"total_items"`
	EstimatedTotal float64   `json:"estimated_total"`
	GeneratedAt    time.Time `json:"generated_at"`
}

// Client posts shopping-list notifications to a configured webhook.
type Client interface {
	NotifyListReady(ctx context.Context, notification Notification) error
}

type restyClient struct {
	httpClient *resty.Client
	url        string
}

// NewClient creates a configured webhook client.
func NewClient(url string) Client {
	client := resty.New().
		SetHeader("content-type", "application/json").
		SetTimeout(requestTimeout)

	return &restyClient{httpClient: client, url: url}
}

// NotifyListReady delivers the notification. A missing event ID is filled
// in so receivers can deduplicate retries.
func (c *restyClient) NotifyListReady(ctx context.Context, notification Notification) error {
	if notification.EventID == "" {
		notification.EventID = uuid.NewString()
	}

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetHeader("X-Request-ID", notification.EventID).
		SetBody(notification).
		Post(c.url)

	if err != nil {
		return fmt.Errorf("webhook call: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("webhook returned %d: %s", resp.StatusCode(), resp.String())
	}
	return nil
}
