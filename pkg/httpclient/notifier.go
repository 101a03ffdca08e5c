package httpclient

import (
	"log/slog"
	"time"
)

// Notifier receives user-facing connectivity events from the call wrapper and
// the connectivity watcher. Implementations must be safe for concurrent use.
type Notifier interface {
	// RetryScheduled fires before each retry wait ("Retrying... (n/max)").
	RetryScheduled(target string, attempt, maxAttempts int, wait time.Duration)
	// Unreachable fires when retries are exhausted.
	Unreachable(target string, err error)
	// Online fires once per offline-to-online transition.
	Online(target string)
	// Offline fires once per online-to-offline transition.
	Offline(target string)
}

// NopNotifier discards all events.
type NopNotifier struct{}

func (NopNotifier) RetryScheduled(string, int, int, time.Duration) {}
func (NopNotifier) Unreachable(string, error)                     {}
func (NopNotifier) Online(string)                                 {}
func (NopNotifier) Offline(string)                                {}

// LogNotifier reports connectivity events through the structured logger.
type LogNotifier struct {
	Logger *slog.Logger
}

func (n LogNotifier) RetryScheduled(target string, attempt, maxAttempts int, wait time.Duration) {
	n.Logger.Warn("connection issue, retrying",
		slog.String("target", target),
		slog.Int("attempt", attempt),
		slog.Int("max_attempts", maxAttempts),
		slog.Duration("wait", wait),
	)
}

func (n LogNotifier) Unreachable(target string, err error) {
	n.Logger.Error("cannot reach server",
		slog.String("target", target),
		slog.String("error", err.Error()),
	)
}

func (n LogNotifier) Online(target string) {
	n.Logger.Info("connection restored", slog.String("target", target))
}

func (n LogNotifier) Offline(target string) {
	n.Logger.Warn("connection lost", slog.String("target", target))
}
