package discord

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"brawlpit/arena"
)

// Notifier posts arena milestones to a Discord webhook. It implements
// arena.Notifier but only cares about match start and the winner;
// per-player traffic stays on the websocket gateway. Everything here is
// best-effort.
type Notifier struct {
	webhookURL string
}

type webhookEmbed struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Color       int    `json:"color"`
	Timestamp   string `json:"timestamp"`
}

type webhookMessage struct {
	Embeds []webhookEmbed `json:"embeds"`
}

func NewNotifier() *Notifier {
	return &Notifier{
		webhookURL: os.Getenv("DISCORD_WEBHOOK_URL"),
	}
}

func (n *Notifier) post(embed webhookEmbed) {
	if n.webhookURL == "" {
		return
	}

	embed.Timestamp = time.Now().Format(time.RFC3339)
	payload, err := json.Marshal(webhookMessage{Embeds: []webhookEmbed{embed}})
	if err != nil {
		log.Printf("Discord: failed to marshal webhook payload: %v", err)
		return
	}

	resp, err := http.Post(n.webhookURL, "application/json", bytes.NewReader(payload))
	if err != nil {
		log.Printf("Discord: webhook post failed: %v", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		log.Printf("Discord: webhook returned status %d", resp.StatusCode)
	}
}

func (n *Notifier) MatchStarted(participants int) {
	go n.post(webhookEmbed{
		Title:       "⚔️ The Pit is live!",
		Description: fmt.Sprintf("%d fighters have entered the arena. Last one standing takes the gold.", participants),
		Color:       0xE74C3C,
	})
}

func (n *Notifier) Winner(username string, kills int) {
	go n.post(webhookEmbed{
		Title:       "🏆 Arena champion",
		Description: fmt.Sprintf("**%s** is the last one standing with %d kills!", username, kills),
		Color:       0xF1C40F,
	})
}

func (n *Notifier) RegistrationCount(count int) {}

func (n *Notifier) Elimination(eliminated, eliminator string, remaining, placement int) {}

func (n *Notifier) RewardGranted(accountID, placement int, bundle arena.RewardBundle) {}
