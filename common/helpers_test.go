package common

import (
	"errors"
	"fmt"
	"testing"

	"github.com/liuxd6825/iedriver/atoms"
	"github.com/liuxd6825/iedriver/window"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

type stubElement struct {
	doc  string
	name string
}

func (e *stubElement) DocumentID() string { return e.doc }

type stubCollection []*stubElement

func (c stubCollection) Len() int                 { return len(c) }
func (c stubCollection) Item(i int) NativeElement { return c[i] }

type scriptCall struct {
	source string
	args   []any
}

type stubDocument struct {
	id      string
	execute func(source string, args []any) (any, error)
	calls   []scriptCall
}

func (d *stubDocument) ID() string { return d.id }

func (d *stubDocument) Execute(source string, args []any) (any, error) {
	d.calls = append(d.calls, scriptCall{source: source, args: args})
	return d.execute(source, args)
}

type stubBrowser struct {
	doc    Document
	docErr error
}

func (b *stubBrowser) GetDocument() (Document, error) {
	if b.docErr != nil {
		return nil, b.docErr
	}
	return b.doc, nil
}

func (b *stubBrowser) GetActiveDialogWindowHandle() (window.HWND, bool) { return 0, false }
func (b *stubBrowser) WindowManager() window.Manager                    { return nil }

type stubSession struct {
	browser Browser
	err     error
	table   *ElementTable
}

func (s *stubSession) GetCurrentBrowser() (Browser, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.browser, nil
}

func (s *stubSession) Elements() *ElementTable { return s.table }

const (
	criteriaBody     = "function criteria() {}"
	findElementBody  = "function findElement() {}"
	findElementsBody = "function findElements() {}"
)

// newTestCatalog returns a catalog whose atoms are recognizable by source.
func newTestCatalog(t *testing.T) *atoms.Catalog {
	t.Helper()

	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/atoms", 0o755))
	for file, body := range map[string]string{
		"criteria.js":      criteriaBody,
		"find_element.js":  findElementBody,
		"find_elements.js": findElementsBody,
	} {
		require.NoError(t, afero.WriteFile(fs, "/atoms/"+file, []byte(body), 0o644))
	}
	c, err := atoms.Load(fs, "/atoms")
	require.NoError(t, err)
	return c
}

// atomDocument answers the criteria atom with a criteria map and the find
// atoms with found.
func atomDocument(id string, found any, findErr error) *stubDocument {
	return &stubDocument{
		id: id,
		execute: func(source string, args []any) (any, error) {
			switch source {
			case WrapAtom(criteriaBody):
				key, _ := args[0].(string)
				return map[string]any{key: args[1]}, nil
			case WrapAtom(findElementBody), WrapAtom(findElementsBody):
				return found, findErr
			}
			return nil, fmt.Errorf("unexpected source %q: %w", source, ErrScriptExecution)
		},
	}
}

func newStubSession(doc Document) *stubSession {
	return &stubSession{browser: &stubBrowser{doc: doc}, table: NewElementTable()}
}

var errThrown = errors.New("TypeError: root.querySelector is not a function")
