// Package dom implements a hosted browser: an HTML document tree driven by a
// goja runtime, with native dialogs rendered on a simulated desktop.
package dom

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dop251/goja"
	"github.com/google/uuid"
	"golang.org/x/net/html"

	"github.com/liuxd6825/iedriver/common"
	"github.com/liuxd6825/iedriver/log"
)

// Document is one loaded page. It is not safe for concurrent use; the
// session executor serializes access.
type Document struct {
	id      string
	vm      *goja.Runtime
	root    *html.Node
	browser *Browser
	logger  *log.Logger
	closed  bool

	wrappers map[*html.Node]*goja.Object
	nodes    map[*goja.Object]*html.Node
	elements map[*html.Node]*Element
}

var _ common.Document = &Document{}

func newDocument(b *Browser, markup string) (*Document, error) {
	root, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("parsing document: %w", err)
	}

	d := &Document{
		id:          uuid.NewString(),
		vm:          goja.New(),
		root:        root,
		browser:     b,
		logger:      b.logger,
		wrappers: make(map[*html.Node]*goja.Object),
		nodes:    make(map[*goja.Object]*html.Node),
		elements: make(map[*html.Node]*Element),
	}

	global := d.vm.GlobalObject()
	if err := global.Set("window", global); err != nil {
		return nil, err
	}
	if err := global.Set("document", d.wrap(root)); err != nil {
		return nil, err
	}
	if err := b.installDialogs(d); err != nil {
		return nil, err
	}
	return d, nil
}

// ID implements common.Document.
func (d *Document) ID() string { return d.id }

// Root returns the parsed document node.
func (d *Document) Root() *html.Node { return d.root }

// Title returns the text of the first title element.
func (d *Document) Title() string {
	t := firstDescendant(d.root, func(n *html.Node) bool { return isElement(n, "title") })
	if t == nil {
		return ""
	}
	return strings.TrimSpace(textContent(t))
}

// Execute implements common.Document. The source is evaluated; when it
// yields a function that function is called with args.
func (d *Document) Execute(source string, args []any) (result any, err error) {
	if d.closed {
		return nil, common.ErrDocumentGone
	}
	defer func() {
		if r := recover(); r != nil {
			result, err = nil, fmt.Errorf("%w: %v", common.ErrScriptExecution, r)
		}
	}()

	jsArgs := make([]goja.Value, len(args))
	for i, arg := range args {
		v, err := d.importValue(arg)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i, err)
		}
		jsArgs[i] = v
	}

	v, err := d.vm.RunString(source)
	if err != nil {
		return nil, scriptError(err)
	}
	if fn, ok := goja.AssertFunction(v); ok {
		if v, err = fn(goja.Undefined(), jsArgs...); err != nil {
			return nil, scriptError(err)
		}
	}
	return d.export(v)
}

// runInlineScripts executes the page's script elements in document order.
// Failures are logged the way a browser reports them to its console.
func (d *Document) runInlineScripts() {
	scripts := descendants(d.root, func(n *html.Node) bool {
		if !isElement(n, "script") {
			return false
		}
		typ := attr(n, "type")
		return typ == "" || strings.Contains(typ, "javascript")
	})
	for _, s := range scripts {
		if _, err := d.vm.RunString(textContent(s)); err != nil {
			d.logger.Warnf("Document:runInlineScripts", "doc:%s err:%v", d.id, err)
		}
	}
}

// close makes the document unusable and drops its script objects. Elements
// already handed out keep their node and document id.
func (d *Document) close() {
	d.closed = true
	d.vm = nil
	d.wrappers = nil
	d.nodes = nil
	d.elements = nil
}

// ScriptError is an exception thrown by page script.
type ScriptError struct {
	Message string
	Stack   string
}

func (e *ScriptError) Error() string { return e.Message }

// StackTrace returns the script stack at the throw site.
func (e *ScriptError) StackTrace() string { return e.Stack }

// Is makes ScriptError match common.ErrScriptExecution.
func (e *ScriptError) Is(target error) bool { return target == common.ErrScriptExecution }

func scriptError(err error) error {
	var ex *goja.Exception
	if errors.As(err, &ex) {
		msg := ex.Error()
		if v := ex.Value(); v != nil {
			msg = v.String()
		}
		return &ScriptError{Message: msg, Stack: ex.String()}
	}
	return &ScriptError{Message: err.Error(), Stack: err.Error()}
}

func (d *Document) throw(format string, args ...any) {
	panic(d.vm.NewGoError(fmt.Errorf(format, args...)))
}
