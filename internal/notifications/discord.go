package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"
)

// Discord is a simple Discord webhook notifier for the ops channel.
type Discord struct {
	webhookURL string
	logger     *log.Logger
	client     *http.Client
}

// NewDiscord creates a new Discord notifier. If webhookURL is empty,
// notifications are silently skipped.
func NewDiscord(webhookURL string, logger *log.Logger) *Discord {
	return &Discord{
		webhookURL: webhookURL,
		logger:     logger,
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

// Enabled returns true if the webhook is configured.
func (d *Discord) Enabled() bool {
	return d != nil && d.webhookURL != ""
}

// discordMessage is the payload for Discord webhook.
type discordMessage struct {
	Content string         `json:"content,omitempty"`
	Embeds  []discordEmbed `json:"embeds,omitempty"`
}

type discordEmbed struct {
	Title       string       `json:"title,omitempty"`
	Description string       `json:"description,omitempty"`
	Color       int          `json:"color,omitempty"`
	Fields      []embedField `json:"fields,omitempty"`
	Timestamp   string       `json:"timestamp,omitempty"`
}

type embedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

// send posts a message to Discord webhook asynchronously.
// Errors are logged but don't affect caller. Delivery runs on a detached
// context: the caller's request context is usually cancelled before the
// goroutine gets to the wire.
func (d *Discord) send(ctx context.Context, msg discordMessage) {
	if !d.Enabled() {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
		defer cancel()

		body, err := json.Marshal(msg)
		if err != nil {
			d.logger.Printf("discord: failed to marshal message: %v", err)
			return
		}

		req, err := http.NewRequestWithContext(ctx, "POST", d.webhookURL, bytes.NewReader(body))
		if err != nil {
			d.logger.Printf("discord: failed to create request: %v", err)
			return
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := d.client.Do(req)
		if err != nil {
			d.logger.Printf("discord: failed to send webhook: %v", err)
			return
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 400 {
			d.logger.Printf("discord: webhook returned status %d", resp.StatusCode)
		}
	}()
}

// NotifyNewUser sends a notification when a new user enrolls a voice profile
// for the first time.
func (d *Discord) NotifyNewUser(ctx context.Context, phone string) {
	msg := discordMessage{
		Embeds: []discordEmbed{{
			Title:       "New user",
			Description: fmt.Sprintf("A new user enrolled with number `%s`", phone),
			Color:       0x00FF00, // Green
			Timestamp:   time.Now().UTC().Format(time.RFC3339),
		}},
	}
	d.send(ctx, msg)
}

// NotifyRemoteDegraded sends a notification when a cloud speech service keeps
// failing and traffic is riding on the simulated fallbacks.
func (d *Discord) NotifyRemoteDegraded(ctx context.Context, service, detail string) {
	msg := discordMessage{
		Content: "@here",
		Embeds: []discordEmbed{{
			Title:       "Cloud service degraded",
			Description: "Requests are falling back to simulated responses.",
			Color:       0xFF0000, // Red
			Fields: []embedField{
				{Name: "Service", Value: fmt.Sprintf("`%s`", service), Inline: true},
				{Name: "Detail", Value: detail, Inline: true},
			},
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		}},
	}
	d.send(ctx, msg)
}
