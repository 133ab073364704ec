package notification

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/surftemp/landsat-importer/internal/properties"
)

type DiscordMessage struct {
	Embeds []DiscordEmbed `json:"embeds"`
}

type DiscordEmbed struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Color       int    `json:"color"`
}

// Discord posts run summaries to webhooks. An empty URL disables that kind of message.
type Discord struct {
	ErrorURL   string
	SuccessURL string
	Client     *http.Client
}

// NewDiscordFromEnv reads the webhook URLs from the environment. It returns
// nil when neither is configured.
func NewDiscordFromEnv() *Discord {
	d := &Discord{
		ErrorURL:   properties.DiscordErrorNotificationUrl(),
		SuccessURL: properties.DiscordSuccessNotificationUrl(),
		Client:     http.DefaultClient,
	}
	if d.ErrorURL == "" && d.SuccessURL == "" {
		return nil
	}
	return d
}

func (d *Discord) SendErrorNotification(errorMessage string) error {
	return d.send(d.ErrorURL, DiscordEmbed{
		Title:       "🚨 Landsat import failed",
		Description: errorMessage,
		Color:       16711680, // Red color
	})
}

func (d *Discord) SendSuccessNotification(successMessage string) error {
	return d.send(d.SuccessURL, DiscordEmbed{
		Title:       "✅ Landsat import complete",
		Description: successMessage,
		Color:       65280, // Green color
	})
}

func (d *Discord) send(url string, embed DiscordEmbed) error {
	if url == "" {
		return nil
	}
	payload, err := json.Marshal(DiscordMessage{Embeds: []DiscordEmbed{embed}})
	if err != nil {
		return err
	}

	client := d.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Post(url, "application/json", bytes.NewBuffer(payload))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to send Discord notification, status code: %d", resp.StatusCode)
	}
	return nil
}
