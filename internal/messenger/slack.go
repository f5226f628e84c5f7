package messenger

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/PoorRican/BidBeast/internal/model"
)

// Ensure SlackMessenger implements model.Messenger.
var _ model.Messenger = (*SlackMessenger)(nil)

// SlackMessenger delivers messages to a Slack channel via Incoming Webhooks.
type SlackMessenger struct {
	webhookURL string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewSlackMessenger returns a messenger that posts each message to Slack via
// webhook.
func NewSlackMessenger(webhookURL string, httpClient *http.Client, logger *slog.Logger) *SlackMessenger {
	return &SlackMessenger{
		webhookURL: webhookURL,
		httpClient: httpClient,
		logger:     logger,
	}
}

// Send posts the message as plain text. A 429 is retried once after the
// advertised Retry-After delay.
func (s *SlackMessenger) Send(text string) error {
	payload := map[string]string{"text": text}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal slack payload: %w", err)
	}

	resp, err := s.httpClient.Post(s.webhookURL, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("post to slack: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		retryAfter := resp.Header.Get("Retry-After")
		secs, _ := strconv.Atoi(retryAfter)
		if secs <= 0 {
			secs = 1
		}
		s.logger.Warn("slack rate limited, retrying", "retry_after_secs", secs)
		time.Sleep(time.Duration(secs) * time.Second)

		resp2, err := s.httpClient.Post(s.webhookURL, "application/json", bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("post to slack (retry): %w", err)
		}
		defer resp2.Body.Close()

		if resp2.StatusCode != http.StatusOK {
			return fmt.Errorf("slack returned %d on retry", resp2.StatusCode)
		}
		return nil
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("slack returned %d", resp.StatusCode)
	}
	return nil
}

// SendTestMessage sends a dummy posting announcement to verify the
// integration works.
func SendTestMessage(m model.Messenger) error {
	p := model.Posting{
		Title:       "Test Posting — Integration Verified",
		Description: "If you can read this, BidBeast can reach you.",
		Link:        "https://www.upwork.com/nx/search/jobs/",
	}
	return m.Send("Found 1 new postings:\n" + p.Headline())
}
