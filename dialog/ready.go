package dialog

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/liuxd6825/iedriver/window"
)

// Default readiness poll bounds.
const (
	DefaultReadyTimeout = time.Second
	DefaultPollInterval = 10 * time.Millisecond
)

var errNoButtons = errors.New("dialog has no buttons yet")

// ReadyOptions bound the readiness poll.
type ReadyOptions struct {
	Timeout      time.Duration
	PollInterval time.Duration
}

// WaitReady polls dlg until it exposes at least one button, the dialog goes
// away, ctx is done or opts.Timeout elapses. It reports whether a button
// was seen.
func WaitReady(ctx context.Context, wm window.Manager, dlg window.HWND, opts ReadyOptions) bool {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultReadyTimeout
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = opts.PollInterval
	b.MaxInterval = opts.Timeout / 4
	b.MaxElapsedTime = opts.Timeout
	b.Reset()

	err := backoff.Retry(func() error {
		buttons, err := window.ChildrenOfClass(wm, dlg, window.ButtonClass)
		if err != nil {
			return backoff.Permanent(err)
		}
		if len(buttons) == 0 {
			return errNoButtons
		}
		return nil
	}, backoff.WithContext(b, ctx))

	return err == nil
}
