package bot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

// Sender pushes a text message to one chat-platform user. The reminder
// service depends on this interface so tests can substitute a fake.
type Sender interface {
	Push(ctx context.Context, userID, text string) error
}

// Client talks to the chat platform's push-message API with a channel token
type Client struct {
	httpClient   *http.Client
	pushURL      string
	channelToken string
	enabled      bool
}

// NewClient creates a push client. With no push URL or token configured the
// client is disabled and drops messages with a log line, so the rest of the
// app keeps working in development.
func NewClient(pushURL, channelToken string) *Client {
	if pushURL == "" || channelToken == "" {
		log.Println("Bot push client disabled: BOT_PUSH_URL or BOT_CHANNEL_TOKEN not configured")
		return &Client{enabled: false}
	}
	return &Client{
		httpClient:   &http.Client{Timeout: 10 * time.Second},
		pushURL:      pushURL,
		channelToken: channelToken,
		enabled:      true,
	}
}

// IsEnabled returns whether the client will actually send
func (c *Client) IsEnabled() bool {
	return c.enabled
}

type pushRequest struct {
	To       string        `json:"to"`
	Messages []textMessage `json:"messages"`
}

type textMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Push sends a text message to a single recipient
func (c *Client) Push(ctx context.Context, userID, text string) error {
	if !c.enabled {
		log.Printf("Skipping bot push (client disabled): to=%s", userID)
		return nil
	}

	body, err := json.Marshal(pushRequest{
		To:       userID,
		Messages: []textMessage{{Type: "text", Text: text}},
	})
	if err != nil {
		return fmt.Errorf("failed to encode push message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.pushURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build push request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.channelToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to push message to %s: %w", userID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("push to %s rejected: status %d: %s", userID, resp.StatusCode, payload)
	}
	return nil
}
