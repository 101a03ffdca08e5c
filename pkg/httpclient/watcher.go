package httpclient

import (
	"context"
	"net/http"
	"sync"
	"time"
)

// ConnectivityWatcher probes a target URL on an interval and emits one-shot
// Online/Offline notifications on each transition. It is advisory only: it
// never gates or cancels in-flight calls.
type ConnectivityWatcher struct {
	target   string
	interval time.Duration
	notifier Notifier
	probe    *http.Client

	mu     sync.RWMutex
	online bool
}

// NewConnectivityWatcher creates a watcher for the given target URL.
func NewConnectivityWatcher(target string, interval time.Duration, notifier Notifier) *ConnectivityWatcher {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &ConnectivityWatcher{
		target:   target,
		interval: interval,
		notifier: notifier,
		probe:    &http.Client{Timeout: 5 * time.Second},
		online:   true,
	}
}

// Online reports the last observed connectivity state.
func (w *ConnectivityWatcher) Online() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.online
}

// Run blocks, probing until the context is canceled. Run it in its own
// goroutine.
func (w *ConnectivityWatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.check(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.check(ctx)
		}
	}
}

func (w *ConnectivityWatcher) check(ctx context.Context) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, w.target, http.NoBody)
	if err != nil {
		return
	}

	resp, err := w.probe.Do(req)
	reachable := err == nil
	if resp != nil {
		_ = resp.Body.Close()
	}

	w.mu.Lock()
	changed := reachable != w.online
	w.online = reachable
	w.mu.Unlock()

	if !changed {
		return
	}
	if reachable {
		w.notifier.Online(w.target)
	} else {
		w.notifier.Offline(w.target)
	}
}
