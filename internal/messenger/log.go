package messenger

import (
	"log/slog"

	"github.com/PoorRican/BidBeast/internal/model"
)

// Ensure LogMessenger implements model.Messenger.
var _ model.Messenger = (*LogMessenger)(nil)

// LogMessenger writes outbound messages to the given logger. Used when no
// chat channel is configured.
type LogMessenger struct {
	logger *slog.Logger
}

// NewLogMessenger returns a messenger that logs each message via slog.
func NewLogMessenger(logger *slog.Logger) *LogMessenger {
	return &LogMessenger{logger: logger}
}

// Send logs the message. Returns nil (stdout logging does not fail).
func (m *LogMessenger) Send(text string) error {
	m.logger.Info("outbound message", "text", text)
	return nil
}
