package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/liuxd6825/iedriver/atoms"
	"github.com/liuxd6825/iedriver/common"
	"github.com/liuxd6825/iedriver/dom"
	"github.com/liuxd6825/iedriver/log"
	"github.com/liuxd6825/iedriver/window"
)

func newHostedSession(t *testing.T) (*Session, *dom.Browser, *window.Desktop) {
	t.Helper()

	logger := log.NewNullLogger()
	desktop := window.NewDesktop()
	b, err := dom.NewBrowser(desktop, logger)
	require.NoError(t, err)
	s := New(b, common.NewElementFinder(atoms.Default(), logger), Options{}, logger)
	return s, b, desktop
}

func TestSessionLifecycle(t *testing.T) {
	t.Parallel()

	s, b, desktop := newHostedSession(t)
	assert.NotEmpty(t, s.ID())
	assert.False(t, s.Created().IsZero())
	assert.Same(t, b, s.Browser())

	err := s.Executor().Run(context.Background(), func() error {
		browser, err := s.GetCurrentBrowser()
		if err != nil {
			return err
		}
		_, err = browser.GetDocument()
		return err
	})
	require.NoError(t, err)

	s.Close()
	s.Close()
	assert.False(t, desktop.IsWindow(b.HWND()))

	_, err = s.GetCurrentBrowser()
	require.ErrorIs(t, err, common.ErrNoSuchWindow)
	require.ErrorIs(t, s.Executor().Run(context.Background(), func() error { return nil }), ErrExecutorClosed)
}

func TestSessionFindsThroughExecutor(t *testing.T) {
	t.Parallel()

	s, b, _ := newHostedSession(t)
	defer s.Close()

	var ref common.ElementReference
	err := s.Executor().Run(context.Background(), func() error {
		if _, err := b.Load(`<p id="greeting">hi</p>`); err != nil {
			return err
		}
		loc, err := common.NewLocator("id", "greeting")
		if err != nil {
			return err
		}
		ref, err = s.Finder().FindElement(context.Background(), s, nil, loc)
		return err
	})
	require.NoError(t, err)

	h, err := s.Elements().Get(ref.ID)
	require.NoError(t, err)
	assert.Equal(t, "p", h.Native.(*dom.Element).TagName())
}

func TestRegistry(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	a, _, _ := newHostedSession(t)
	b, _, _ := newHostedSession(t)
	r.Add(a)
	r.Add(b)

	got, ok := r.Get(a.ID())
	require.True(t, ok)
	assert.Same(t, a, got)
	assert.Len(t, r.IDs(), 2)

	removed, ok := r.Remove(a.ID())
	require.True(t, ok)
	removed.Close()
	_, ok = r.Get(a.ID())
	assert.False(t, ok)
	_, ok = r.Remove(a.ID())
	assert.False(t, ok)

	r.CloseAll()
	assert.Empty(t, r.IDs())
	_, err := b.GetCurrentBrowser()
	require.ErrorIs(t, err, common.ErrNoSuchWindow)
}
