package dom

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/liuxd6825/iedriver/atoms"
	"github.com/liuxd6825/iedriver/common"
	"github.com/liuxd6825/iedriver/log"
	"github.com/liuxd6825/iedriver/window"
)

const fixture = `<!DOCTYPE html>
<html><head><title>Fixture</title></head><body>
<form id="login" name="login-form">
  <input id="user" name="user" class="field text">
  <input id="pass" name="pass" class="field secret">
  <button id="submit" class="btn primary">Sign in</button>
</form>
<ul id="list">
  <li id="one" class="item">One</li>
  <li id="two" class="item">Two</li>
  <li id="three" class="item last">Three</li>
</ul>
<a id="home" href="/">Home page</a>
<a id="help" href="/help"> Get <b>help</b> </a>
</body></html>`

func newTestBrowser(t *testing.T, markup string) (*Browser, *Document, *window.Desktop) {
	t.Helper()

	desktop := window.NewDesktop()
	b, err := NewBrowser(desktop, log.NewNullLogger())
	require.NoError(t, err)
	doc, err := b.Load(markup)
	require.NoError(t, err)
	t.Cleanup(b.Close)
	return b, doc, desktop
}

func run(t *testing.T, doc *Document, body string, args ...any) any {
	t.Helper()

	v, err := doc.Execute(common.WrapFunctionBody(body), args)
	require.NoError(t, err)
	return v
}

func runAtom(t *testing.T, doc *Document, name atoms.Name, args ...any) (any, error) {
	t.Helper()

	body, err := atoms.Default().Get(name)
	require.NoError(t, err)
	return doc.Execute(common.WrapAtom(body), args)
}

func criteria(t *testing.T, doc *Document, key, value string) any {
	t.Helper()

	c, err := runAtom(t, doc, atoms.Criteria, key, value)
	require.NoError(t, err)
	return c
}

// ids returns the id attributes of the elements in a find result.
func ids(t *testing.T, v any) []string {
	t.Helper()

	out := []string{}
	add := func(ne common.NativeElement) {
		e, ok := ne.(*Element)
		require.True(t, ok, "%T is not an element", ne)
		id, _ := e.Attribute("id")
		out = append(out, id)
	}
	switch val := v.(type) {
	case *Collection:
		for i := 0; i < val.Len(); i++ {
			add(val.Item(i))
		}
	case []any:
		for _, item := range val {
			ne, ok := item.(common.NativeElement)
			require.True(t, ok, "%T is not an element", item)
			add(ne)
		}
	case *Element:
		add(val)
	case nil:
	default:
		t.Fatalf("unexpected result %T", v)
	}
	return out
}
