package telegram

import (
	"context"
	"log"
	"time"
)

// pollRetryDelay spaces out retries after a failed getUpdates call.
const pollRetryDelay = 3 * time.Second

// Handler processes one inbound update.
type Handler interface {
	HandleUpdate(ctx context.Context, update Update)
}

type updateSource interface {
	GetUpdates(ctx context.Context, offset int64, timeout time.Duration) ([]Update, error)
}

// Poller drives the long-poll loop and hands each update to a handler.
type Poller struct {
	source  updateSource
	handler Handler
	timeout time.Duration
}

// NewPoller creates a poller reading from source with the given long-poll
// timeout.
func NewPoller(source updateSource, handler Handler, timeout time.Duration) *Poller {
	if timeout <= 0 {
		timeout = 50 * time.Second
	}
	return &Poller{
		source:  source,
		handler: handler,
		timeout: timeout,
	}
}

// Run polls for updates until ctx is canceled. Failed polls log and retry
// after a fixed delay; updates are acknowledged by advancing the offset past
// the highest update id handed to the handler.
func (p *Poller) Run(ctx context.Context) error {
	var offset int64
	for {
		if ctx.Err() != nil {
			return nil
		}

		updates, err := p.source.GetUpdates(ctx, offset, p.timeout)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			log.Printf("gateway: poll updates: %v", err)
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(pollRetryDelay):
			}
			continue
		}

		for _, update := range updates {
			if update.UpdateID >= offset {
				offset = update.UpdateID + 1
			}
			p.handler.HandleUpdate(ctx, update)
		}
	}
}
