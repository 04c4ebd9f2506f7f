package command

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/liuxd6825/iedriver/atoms"
	"github.com/liuxd6825/iedriver/common"
	"github.com/liuxd6825/iedriver/dom"
	"github.com/liuxd6825/iedriver/log"
	"github.com/liuxd6825/iedriver/session"
	"github.com/liuxd6825/iedriver/window"
)

const fixture = `<!DOCTYPE html>
<html><head><title>Checkout</title></head><body>
<form id="login">
  <input id="user" name="user" class="field">
  <input id="pass" name="pass" class="field">
</form>
<ul id="list">
  <li class="item">One</li>
  <li class="item">Two</li>
  <li class="item">Three</li>
</ul>
<a id="home" href="/">Home page</a>
</body></html>`

type hosted struct {
	sess    *session.Session
	browser *dom.Browser
	desktop *window.Desktop
	logger  *log.Logger
}

func newHosted(t *testing.T) *hosted {
	t.Helper()

	return newHostedWithOptions(t, session.Options{})
}

func newHostedWithOptions(t *testing.T, opts session.Options) *hosted {
	t.Helper()

	logger := log.NewNullLogger()
	desktop := window.NewDesktop()
	b, err := dom.NewBrowser(desktop, logger)
	require.NoError(t, err)
	_, err = b.Load(fixture)
	require.NoError(t, err)

	s := session.New(b, common.NewElementFinder(atoms.Default(), logger), opts, logger)
	t.Cleanup(s.Close)
	return &hosted{sess: s, browser: b, desktop: desktop, logger: logger}
}

func (h *hosted) exec(t *testing.T, cmd Command, locator Parameters, params any) *Response {
	t.Helper()

	var body []byte
	if params != nil {
		var err error
		body, err = json.Marshal(params)
		require.NoError(t, err)
	}
	return NewHandler("test", cmd, h.logger).Execute(context.Background(), h.sess, locator, body)
}

func (h *hosted) script(t *testing.T, source string, args ...any) *Response {
	t.Helper()

	if args == nil {
		args = []any{}
	}
	return h.exec(t, NewExecuteScript(h.logger), nil, map[string]any{"script": source, "args": args})
}

func (h *hosted) find(t *testing.T, using, value string) common.ElementReference {
	t.Helper()

	resp := h.exec(t, NewFindElement(), nil, map[string]string{"using": using, "value": value})
	require.Equal(t, common.Success, resp.Status, resp.Message())
	ref, ok := resp.Value.(common.ElementReference)
	require.True(t, ok, "%T", resp.Value)
	return ref
}

// countingManager records every window manager call made through it.
type countingManager struct {
	window.Manager
	mu    sync.Mutex
	calls int
}

func (m *countingManager) count() {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
}

func (m *countingManager) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func (m *countingManager) Children(h window.HWND) ([]window.HWND, error) {
	m.count()
	return m.Manager.Children(h)
}

func (m *countingManager) ClassName(h window.HWND) (string, error) {
	m.count()
	return m.Manager.ClassName(h)
}

func (m *countingManager) PostMessage(h window.HWND, msg uint32, wParam, lParam uintptr) error {
	m.count()
	return m.Manager.PostMessage(h, msg, wParam, lParam)
}

// quietBrowser never has a dialog open.
type quietBrowser struct {
	wm *countingManager
}

func (quietBrowser) GetDocument() (common.Document, error) {
	return nil, common.ErrDocumentGone
}

func (quietBrowser) GetActiveDialogWindowHandle() (window.HWND, bool) {
	return 0, false
}

func (b quietBrowser) WindowManager() window.Manager { return b.wm }
