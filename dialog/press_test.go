package dialog

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/liuxd6825/iedriver/common"
	"github.com/liuxd6825/iedriver/log"
	"github.com/liuxd6825/iedriver/window"
)

func TestPress(t *testing.T) {
	t.Parallel()

	confirm := []control{
		{window.StaticClass, "Proceed?", window.IDStatic},
		{window.ButtonClass, "OK", window.IDOK},
		{window.ButtonClass, "Cancel", window.IDCANCEL},
	}
	testCases := []struct {
		name     string
		controls []control
		role     Role
		posted   uintptr
	}{
		{"accept_confirm", confirm, Accept, window.IDOK},
		{"dismiss_confirm", confirm, Cancel, window.IDCANCEL},
		{"dismiss_alert", confirm[:2], Cancel, 0},
	}
	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			d, dlg := newDialog(t, tc.controls...)
			button, err := NewLocator(d, log.NewNullLogger()).Press(context.Background(), dlg, tc.role,
				ReadyOptions{Timeout: 50 * time.Millisecond})

			msgs := d.Messages()
			if tc.posted == 0 {
				require.ErrorIs(t, err, common.ErrButtonNotFound)
				assert.Contains(t, err.Error(), "could not find Cancel button")
				assert.False(t, button.Exists)
				assert.Empty(t, msgs)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, int(tc.posted), button.ControlID)
			require.Len(t, msgs, 1)
			assert.Equal(t, window.Message{HWND: dlg, Msg: window.WMCommand, WParam: tc.posted}, msgs[0])
		})
	}
}

func TestPressDestroyedDialog(t *testing.T) {
	t.Parallel()

	d, dlg := newDialog(t, control{window.ButtonClass, "OK", window.IDOK})
	d.DestroyWindow(dlg)

	_, err := NewLocator(d, log.NewNullLogger()).Press(context.Background(), dlg, Accept, ReadyOptions{})
	require.ErrorIs(t, err, common.ErrButtonNotFound)
	assert.Empty(t, d.Messages())
}
