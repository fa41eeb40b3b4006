package notify

import (
	"context"
	"log/slog"
)

// Notifier delivers user-facing alerts. Delivery is best-effort: the
// engine ignores delivery errors and the debouncer has already counted the
// attempt by the time Deliver runs.
type Notifier interface {
	// RequestAuthorization asks the underlying transport for permission to
	// notify, where that concept exists. Called once at startup; failure is
	// ignorable.
	RequestAuthorization(ctx context.Context) error

	// Deliver sends one alert. The key is stable per (account, alert kind)
	// and may be used by the transport for replacement/threading.
	Deliver(ctx context.Context, key, title, body string) error
}

// LogNotifier writes alerts to the log. It is the fallback transport for
// headless deployments with no desktop session or Telegram bot configured.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier creates a log-backed notifier
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger}
}

// RequestAuthorization is a no-op for the log transport
func (n *LogNotifier) RequestAuthorization(ctx context.Context) error {
	return nil
}

// Deliver logs the alert
func (n *LogNotifier) Deliver(ctx context.Context, key, title, body string) error {
	n.logger.Info("Alert",
		"component", "notify",
		"key", key,
		"title", title,
		"body", body,
	)
	return nil
}

// Ensure implementations satisfy the interface
var _ Notifier = (*LogNotifier)(nil)
