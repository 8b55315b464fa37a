package notifier

import (
	"context"
	"fmt"

	"github.com/gen2brain/beeep"
)

// Beeep sends notifications through gen2brain/beeep. It cannot dismiss or
// report clicks.
type Beeep struct {
	notify func(title, message, icon string) error
}

// NewBeeep creates a beeep backend.
func NewBeeep() *Beeep {
	return &Beeep{
		notify: func(title, message, icon string) error {
			return beeep.Notify(title, message, icon)
		},
	}
}

// Name implements Backend.
func (b *Beeep) Name() string { return "beeep" }

// Send implements Backend.
func (b *Beeep) Send(ctx context.Context, msg Message) (uint32, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if err := b.notify(msg.Title, msg.Body, msg.Icon); err != nil {
		return 0, fmt.Errorf("failed to send notification: %w", err)
	}
	return 0, nil
}

// Dismiss implements Backend.
func (b *Beeep) Dismiss(uint32) error { return nil }

// Close implements Backend.
func (b *Beeep) Close() error { return nil }
