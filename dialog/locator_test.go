package dialog

import (
	"testing"

	"github.com/liuxd6825/iedriver/log"
	"github.com/liuxd6825/iedriver/window"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type control struct {
	class, text string
	id          int
}

func newDialog(t *testing.T, controls ...control) (*window.Desktop, window.HWND) {
	t.Helper()

	d := window.NewDesktop()
	dlg := d.CreateWindow(window.DialogClass, "Message from webpage", 0)
	for _, c := range controls {
		_, err := d.CreateControl(dlg, c.class, c.text, c.id)
		require.NoError(t, err)
	}
	return d, dlg
}

func TestLocateButton(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		controls []control
		role     Role
		exists   bool
		id       int
	}{
		{
			name: "ok_by_id",
			controls: []control{
				{window.StaticClass, "Hello", window.IDStatic},
				{window.ButtonClass, "Accept it", window.IDOK},
			},
			role: Accept, exists: true, id: window.IDOK,
		},
		{
			name:     "yes_counts_as_accept",
			controls: []control{{window.ButtonClass, "&Yes", window.IDYES}, {window.ButtonClass, "&No", window.IDNO}},
			role:     Accept, exists: true, id: window.IDYES,
		},
		{
			name:     "no_counts_as_cancel",
			controls: []control{{window.ButtonClass, "&Yes", window.IDYES}, {window.ButtonClass, "&No", window.IDNO}},
			role:     Cancel, exists: true, id: window.IDNO,
		},
		{
			name:     "id_wins_over_caption",
			controls: []control{{window.ButtonClass, "Cancel", 1001}, {window.ButtonClass, "Close", window.IDCANCEL}},
			role:     Cancel, exists: true, id: window.IDCANCEL,
		},
		{
			name:     "caption_fallback",
			controls: []control{{window.ButtonClass, "&OK", 1001}},
			role:     Accept, exists: true, id: 1001,
		},
		{
			name:     "ok_only_has_no_cancel",
			controls: []control{{window.StaticClass, "Hello", window.IDStatic}, {window.ButtonClass, "OK", window.IDOK}},
			role:     Cancel, exists: false,
		},
		{
			name:     "static_with_matching_id_is_ignored",
			controls: []control{{window.StaticClass, "OK", window.IDOK}},
			role:     Accept, exists: false,
		},
		{
			name:   "no_controls",
			role:   Accept,
			exists: false,
		},
	}
	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			d, dlg := newDialog(t, tc.controls...)
			info := NewLocator(d, log.NewNullLogger()).LocateButton(dlg, tc.role)
			assert.Equal(t, tc.exists, info.Exists)
			assert.Equal(t, tc.id, info.ControlID)
			if tc.exists {
				assert.True(t, d.IsWindow(info.HWND))
			}
		})
	}
}

func TestLocateButtonDestroyedDialog(t *testing.T) {
	t.Parallel()

	d, dlg := newDialog(t, control{window.ButtonClass, "OK", window.IDOK})
	d.DestroyWindow(dlg)

	info := NewLocator(d, log.NewNullLogger()).LocateButton(dlg, Accept)
	assert.False(t, info.Exists)
	assert.Empty(t, d.Messages())
}

func TestMessageText(t *testing.T) {
	t.Parallel()

	d, dlg := newDialog(t,
		control{window.StaticClass, "", 0},
		control{window.StaticClass, "Delete this item?", window.IDStatic},
		control{window.ButtonClass, "OK", window.IDOK},
	)
	text, err := MessageText(d, dlg)
	require.NoError(t, err)
	assert.Equal(t, "Delete this item?", text)

	d.DestroyWindow(dlg)
	_, err = MessageText(d, dlg)
	require.ErrorIs(t, err, window.ErrInvalidWindow)
}

func TestNormalizeCaption(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "ok", normalizeCaption(" &OK "))
	assert.Equal(t, "save & exit", normalizeCaption("Save && E&xit"))
	assert.Equal(t, "OK", Accept.String())
	assert.Equal(t, "Cancel", Cancel.String())
}
