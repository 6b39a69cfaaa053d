package chat

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
)

// ConsoleNotifier writes lines to a writer, one per call. Useful for dry
// runs and for the once mode of the poller
type ConsoleNotifier struct {
	mu sync.Mutex
	w  io.Writer
}

// NewConsole creates a ConsoleNotifier. A nil writer defaults to stdout
func NewConsole(w io.Writer) *ConsoleNotifier {
	if w == nil {
		w = os.Stdout
	}
	return &ConsoleNotifier{w: w}
}

// Notify implements Notifier
func (n *ConsoleNotifier) Notify(_ context.Context, line string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	_, err := fmt.Fprintln(n.w, line)
	return err
}
