// Package services delivers outbound project notifications to chat
// webhooks configured in the project settings.
package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/taskhive-dev/taskhive/internal/models"
)

type DiscordEmbed struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Color       int    `json:"color"`
	Timestamp   string `json:"timestamp"`
}

type DiscordWebhookRequest struct {
	Username string         `json:"username"`
	Embeds   []DiscordEmbed `json:"embeds"`
}

type SlackAttachment struct {
	Color     string `json:"color"`
	Title     string `json:"title"`
	Text      string `json:"text"`
	Footer    string `json:"footer"`
	Timestamp int64  `json:"ts"`
}

type SlackWebhookRequest struct {
	Username    string            `json:"username"`
	IconEmoji   string            `json:"icon_emoji,omitempty"`
	Text        string            `json:"text"`
	Attachments []SlackAttachment `json:"attachments"`
}

const (
	colorBlue = 4886754 // #4A90E2

	username = "TaskHive"
)

// projectWebhooks is the shape of the webhook keys inside
// Project.Settings.
type projectWebhooks struct {
	SlackWebhookURL   string `json:"slack_webhook_url"`
	DiscordWebhookURL string `json:"discord_webhook_url"`
}

// Notifier posts project events to Slack/Discord webhooks. Delivery is
// best-effort: failures are logged and never affect the request that
// produced the event.
type Notifier struct {
	client   *http.Client
	log      *logrus.Logger
	disabled bool
}

func NewNotifier(timeout time.Duration, log *logrus.Logger, disabled bool) *Notifier {
	return &Notifier{
		client:   &http.Client{Timeout: timeout},
		log:      log,
		disabled: disabled,
	}
}

// ProjectEvent fans a notification out to the project's configured
// webhooks, if any. Safe to call from a goroutine after the transaction
// that created the notification commits.
func (n *Notifier) ProjectEvent(project *models.Project, title, content string) {
	if n.disabled || project == nil || len(project.Settings) == 0 {
		return
	}

	var hooks projectWebhooks

	if err := json.Unmarshal(project.Settings, &hooks); err != nil {
		n.log.WithError(err).WithField("project_id", project.ID).Warn("Unreadable project settings")
		return
	}

	if hooks.DiscordWebhookURL != "" {
		if err := n.sendDiscord(hooks.DiscordWebhookURL, title, content); err != nil {
			n.log.WithError(err).WithField("project_id", project.ID).Warn("Discord webhook failed")
		}
	}

	if hooks.SlackWebhookURL != "" {
		if err := n.sendSlack(hooks.SlackWebhookURL, project.Name, title, content); err != nil {
			n.log.WithError(err).WithField("project_id", project.ID).Warn("Slack webhook failed")
		}
	}
}

func (n *Notifier) sendDiscord(webhookURL, title, content string) error {
	payload := DiscordWebhookRequest{
		Username: username,
		Embeds: []DiscordEmbed{
			{
				Title:       title,
				Description: content,
				Color:       colorBlue,
				Timestamp:   time.Now().UTC().Format(time.RFC3339),
			},
		},
	}

	return n.post(webhookURL, payload, "Discord")
}

func (n *Notifier) sendSlack(webhookURL, projectName, title, content string) error {
	payload := SlackWebhookRequest{
		Username:  username,
		IconEmoji: ":bee:",
		Text:      title,
		Attachments: []SlackAttachment{
			{
				Color:     "#4A90E2",
				Title:     title,
				Text:      content,
				Footer:    projectName,
				Timestamp: time.Now().Unix(),
			},
		},
	}

	return n.post(webhookURL, payload, "Slack")
}

func (n *Notifier) post(webhookURL string, payload interface{}, kind string) error {
	body, err := json.Marshal(payload)

	if err != nil {
		return fmt.Errorf("failed to marshal %s payload: %w", kind, err)
	}

	resp, err := n.client.Post(webhookURL, "application/json", bytes.NewBuffer(body))

	if err != nil {
		return fmt.Errorf("failed to send %s webhook: %w", kind, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("%s webhook returned status %d", kind, resp.StatusCode)
	}

	return nil
}
