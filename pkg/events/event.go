package events

import (
	"context"
	"errors"
	"time"
)

// TemplatesUpdated is published after templates were written.
const TemplatesUpdated = "templates_updated"

// Event is one notification.
type Event struct {
	Topic     string    `json:"topic"`
	Event     string    `json:"event"`
	Source    string    `json:"source"`
	RunID     string    `json:"run_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Publisher delivers events.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// Fanout publishes every event to each of its publishers in order. All
// publishers are tried; their errors are joined.
type Fanout []Publisher

// Publish implements Publisher.
func (f Fanout) Publish(ctx context.Context, event Event) error {
	var errs []error
	for _, p := range f {
		if err := p.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// ErrClosed is returned when publishing on a closed hub.
var ErrClosed = errors.New("event hub closed")
