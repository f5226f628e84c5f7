package messenger

import (
	"fmt"
	"io"
	"sync"

	"github.com/PoorRican/BidBeast/internal/model"
)

// Ensure WriterMessenger implements model.Messenger.
var _ model.Messenger = (*WriterMessenger)(nil)

// WriterMessenger writes each message to an io.Writer followed by a blank
// line. It backs the local console conversation.
type WriterMessenger struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriterMessenger returns a messenger writing to w.
func NewWriterMessenger(w io.Writer) *WriterMessenger {
	return &WriterMessenger{w: w}
}

func (m *WriterMessenger) Send(text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, err := fmt.Fprintln(m.w, text); err != nil {
		return fmt.Errorf("writing message: %w", err)
	}
	return nil
}
