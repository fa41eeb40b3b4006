package notify

import (
	"context"

	"github.com/gen2brain/beeep"
)

// DesktopNotifier delivers alerts as native desktop notifications
type DesktopNotifier struct{}

// NewDesktopNotifier creates a desktop notifier
func NewDesktopNotifier() *DesktopNotifier {
	return &DesktopNotifier{}
}

// RequestAuthorization is a no-op: beeep targets transports that do not
// require an upfront permission grant.
func (n *DesktopNotifier) RequestAuthorization(ctx context.Context) error {
	return nil
}

// Deliver shows a desktop notification
func (n *DesktopNotifier) Deliver(ctx context.Context, key, title, body string) error {
	return beeep.Notify(title, body, "")
}

var _ Notifier = (*DesktopNotifier)(nil)
