package dialog

import (
	"context"
	"testing"
	"time"

	"github.com/liuxd6825/iedriver/window"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWaitReady(t *testing.T) {
	t.Parallel()

	t.Run("already_ready", func(t *testing.T) {
		t.Parallel()

		d, dlg := newDialog(t, control{window.ButtonClass, "OK", window.IDOK})
		assert.True(t, WaitReady(context.Background(), d, dlg, ReadyOptions{}))
	})

	t.Run("button_appears", func(t *testing.T) {
		t.Parallel()

		d, dlg := newDialog(t, control{window.StaticClass, "Loading", window.IDStatic})
		go func() {
			time.Sleep(30 * time.Millisecond)
			_, _ = d.CreateControl(dlg, window.ButtonClass, "OK", window.IDOK)
		}()

		start := time.Now()
		require.True(t, WaitReady(context.Background(), d, dlg, ReadyOptions{Timeout: 5 * time.Second}))
		assert.Less(t, time.Since(start), 3*time.Second)
	})

	t.Run("bounded", func(t *testing.T) {
		t.Parallel()

		d, dlg := newDialog(t)
		start := time.Now()
		assert.False(t, WaitReady(context.Background(), d, dlg, ReadyOptions{Timeout: 100 * time.Millisecond}))
		assert.Less(t, time.Since(start), time.Second)
	})

	t.Run("dialog_gone", func(t *testing.T) {
		t.Parallel()

		d, dlg := newDialog(t)
		d.DestroyWindow(dlg)
		start := time.Now()
		assert.False(t, WaitReady(context.Background(), d, dlg, ReadyOptions{Timeout: 5 * time.Second}))
		assert.Less(t, time.Since(start), time.Second)
	})

	t.Run("context_canceled", func(t *testing.T) {
		t.Parallel()

		d, dlg := newDialog(t)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		assert.False(t, WaitReady(ctx, d, dlg, ReadyOptions{Timeout: 5 * time.Second}))
	})
}
