package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/liuxd6825/iedriver/errext/exitcodes"
	"github.com/liuxd6825/iedriver/window"
)

func newDialogDesktop(t *testing.T, text string, buttons map[int]string) (*window.Desktop, window.HWND) {
	t.Helper()

	desktop := window.NewDesktop()
	owner := desktop.CreateWindow("IEFrame", "Page - Internet Explorer", 0)
	dlg := desktop.CreateWindow(window.DialogClass, "Message from webpage", owner)
	_, err := desktop.CreateControl(dlg, window.StaticClass, text, window.IDStatic)
	require.NoError(t, err)
	for id, caption := range buttons {
		_, err := desktop.CreateControl(dlg, window.ButtonClass, caption, id)
		require.NoError(t, err)
	}
	return desktop, dlg
}

func TestAlertCommands(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		command  string
		buttons  map[int]string
		exitCode int
		posted   uintptr
	}{
		{"dismiss confirm", "dismiss", map[int]string{window.IDOK: "OK", window.IDCANCEL: "Cancel"}, 0, window.IDCANCEL},
		{"accept confirm", "accept", map[int]string{window.IDOK: "OK", window.IDCANCEL: "Cancel"}, 0, window.IDOK},
		{"accept yes no", "accept", map[int]string{window.IDYES: "&Yes", window.IDNO: "&No"}, 0, window.IDYES},
		{"dismiss alert", "dismiss", map[int]string{window.IDOK: "OK"}, int(exitcodes.ButtonNotFound), 0},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			desktop, _ := newDialogDesktop(t, "Leave this page?", tc.buttons)
			ts := newGlobalTestState(t, tc.command, "--timeout", "50ms")
			ts.windows = func() (window.Manager, error) { return desktop, nil }
			ts.expectedExitCode = tc.exitCode
			newRootCommand(ts.globalState).execute()

			msgs := desktop.Messages()
			if tc.exitCode != 0 {
				assert.Empty(t, msgs)
				return
			}
			require.Len(t, msgs, 1)
			assert.Equal(t, uint32(window.WMCommand), msgs[0].Msg)
			assert.Equal(t, tc.posted, msgs[0].WParam)
			assert.Contains(t, ts.stdOut.String(), `"Leave this page?"`)
		})
	}
}

func TestAlertCommandWithoutDialog(t *testing.T) {
	t.Parallel()

	desktop := window.NewDesktop()
	desktop.CreateWindow("IEFrame", "Page - Internet Explorer", 0)

	ts := newGlobalTestState(t, "accept")
	ts.windows = func() (window.Manager, error) { return desktop, nil }
	ts.expectedExitCode = int(exitcodes.NoAlertOpen)
	newRootCommand(ts.globalState).execute()
	assert.Empty(t, desktop.Messages())

	entry := ts.loggerHook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, "no alert is active", entry.Message)
	assert.Equal(t, int(exitcodes.NoAlertOpen), entry.Data["exit_code"])
	assert.Contains(t, entry.Data["hint"], "no dialog box is open")
}

func TestAlertCommandUnsupported(t *testing.T) {
	t.Parallel()

	ts := newGlobalTestState(t, "dismiss")
	ts.expectedExitCode = int(exitcodes.Unsupported)
	newRootCommand(ts.globalState).execute()

	entry := ts.loggerHook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, "native dialogs can only be handled on Windows", entry.Data["hint"])
}
