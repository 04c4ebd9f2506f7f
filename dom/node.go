package dom

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/antchfx/htmlquery"
	"github.com/dop251/goja"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Element is an element node of a Document.
type Element struct {
	doc  *Document
	node *html.Node
}

// DocumentID implements common.NativeElement.
func (e *Element) DocumentID() string { return e.doc.id }

// Node returns the underlying tree node.
func (e *Element) Node() *html.Node { return e.node }

// TagName returns the lower-case tag name.
func (e *Element) TagName() string { return e.node.Data }

// Attribute returns the value of the named attribute.
func (e *Element) Attribute(name string) (string, bool) {
	return goquery.NewDocumentFromNode(e.node).Attr(name)
}

// Text returns the collapsed text content of the element.
func (e *Element) Text() string { return innerText(e.node) }

func (d *Document) element(n *html.Node) *Element {
	if d.closed {
		return &Element{doc: d, node: n}
	}
	if e, ok := d.elements[n]; ok {
		return e
	}
	e := &Element{doc: d, node: n}
	d.elements[n] = e
	d.wrap(n)
	return e
}

// wrap returns the script object for n, creating it on first use so every
// node has exactly one identity.
func (d *Document) wrap(n *html.Node) goja.Value {
	if n == nil {
		return goja.Null()
	}
	if o, ok := d.wrappers[n]; ok {
		return o
	}

	o := d.vm.NewObject()
	d.wrappers[n] = o
	d.nodes[o] = n

	d.defineNode(o, n)
	switch n.Type {
	case html.ElementNode:
		d.defineQueries(o, n)
		d.defineElement(o, n)
		d.element(n)
	case html.DocumentNode:
		d.defineQueries(o, n)
		d.defineDocument(o, n)
	}
	return o
}

func (d *Document) unwrap(v goja.Value) (*html.Node, bool) {
	o, ok := v.(*goja.Object)
	if !ok {
		return nil, false
	}
	n, ok := d.nodes[o]
	return n, ok
}

func (d *Document) accessor(o *goja.Object, name string, get func() any, set func(goja.Value)) {
	getter := d.vm.ToValue(func(goja.FunctionCall) goja.Value {
		return d.vm.ToValue(get())
	})
	var setter goja.Value
	if set != nil {
		setter = d.vm.ToValue(func(call goja.FunctionCall) goja.Value {
			set(call.Argument(0))
			return goja.Undefined()
		})
	}
	if err := o.DefineAccessorProperty(name, getter, setter, goja.FLAG_TRUE, goja.FLAG_TRUE); err != nil {
		d.logger.Errorf("Document:accessor", "property:%s err:%v", name, err)
	}
}

func (d *Document) method(o *goja.Object, name string, fn func(call goja.FunctionCall) goja.Value) {
	if err := o.Set(name, fn); err != nil {
		d.logger.Errorf("Document:method", "method:%s err:%v", name, err)
	}
}

func (d *Document) wrapList(nodes []*html.Node) goja.Value {
	items := make([]any, len(nodes))
	for i, n := range nodes {
		items[i] = d.wrap(n)
	}
	return d.vm.NewArray(items...)
}

func (d *Document) defineNode(o *goja.Object, n *html.Node) {
	nodeType, nodeName := nodeTypeName(n)
	d.accessor(o, "nodeType", func() any { return nodeType }, nil)
	d.accessor(o, "nodeName", func() any { return nodeName }, nil)
	d.accessor(o, "parentNode", func() any { return d.wrap(n.Parent) }, nil)
	d.accessor(o, "childNodes", func() any { return d.wrapList(children(n)) }, nil)
	d.accessor(o, "textContent", func() any { return textContent(n) }, func(v goja.Value) {
		replaceChildren(n, &html.Node{Type: html.TextNode, Data: v.String()})
	})

	d.method(o, "appendChild", func(call goja.FunctionCall) goja.Value {
		child, ok := d.unwrap(call.Argument(0))
		if !ok {
			d.throw("appendChild: argument is not a node of this document")
		}
		for p := n; p != nil; p = p.Parent {
			if p == child {
				d.throw("appendChild: the new child contains the parent")
			}
		}
		if child.Parent != nil {
			child.Parent.RemoveChild(child)
		}
		n.AppendChild(child)
		return call.Argument(0)
	})
	d.method(o, "removeChild", func(call goja.FunctionCall) goja.Value {
		child, ok := d.unwrap(call.Argument(0))
		if !ok || child.Parent != n {
			d.throw("removeChild: the node is not a child of this node")
		}
		n.RemoveChild(child)
		return call.Argument(0)
	})
}

func (d *Document) defineQueries(o *goja.Object, n *html.Node) {
	d.method(o, "querySelector", func(call goja.FunctionCall) goja.Value {
		found := d.querySelectorAll(n, call.Argument(0).String())
		if len(found) == 0 {
			return goja.Null()
		}
		return d.wrap(found[0])
	})
	d.method(o, "querySelectorAll", func(call goja.FunctionCall) goja.Value {
		return d.newCollection(d.querySelectorAll(n, call.Argument(0).String()))
	})
	d.method(o, "getElementsByTagName", func(call goja.FunctionCall) goja.Value {
		tag := strings.ToLower(call.Argument(0).String())
		return d.newCollection(descendants(n, func(c *html.Node) bool {
			return c.Type == html.ElementNode && (tag == "*" || c.Data == tag)
		}))
	})
	d.method(o, "getElementsByClassName", func(call goja.FunctionCall) goja.Value {
		want := strings.Fields(call.Argument(0).String())
		return d.newCollection(descendants(n, func(c *html.Node) bool {
			return c.Type == html.ElementNode && len(want) > 0 && hasClasses(c, want)
		}))
	})
	d.method(o, "getElementsByName", func(call goja.FunctionCall) goja.Value {
		name := call.Argument(0).String()
		return d.newCollection(descendants(n, func(c *html.Node) bool {
			return c.Type == html.ElementNode && attr(c, "name") == name
		}))
	})
	d.method(o, "selectNodes", func(call goja.FunctionCall) goja.Value {
		return d.newCollection(d.selectNodes(n, call.Argument(0).String()))
	})
	d.method(o, "selectSingleNode", func(call goja.FunctionCall) goja.Value {
		found := d.selectNodes(n, call.Argument(0).String())
		if len(found) == 0 {
			return goja.Null()
		}
		return d.wrap(found[0])
	})
}

func (d *Document) querySelectorAll(n *html.Node, selector string) []*html.Node {
	if _, err := cascadia.Compile(selector); err != nil {
		d.throw("'%s' is not a valid selector: %v", selector, err)
	}
	return goquery.NewDocumentFromNode(n).Find(selector).Nodes
}

// selectNodes evaluates an XPath expression with n as the context node and
// keeps element results only.
func (d *Document) selectNodes(n *html.Node, expr string) []*html.Node {
	found, err := htmlquery.QueryAll(n, expr)
	if err != nil {
		d.throw("'%s' is not a valid XPath expression: %v", expr, err)
	}
	out := found[:0]
	for _, f := range found {
		if f.Type == html.ElementNode {
			out = append(out, f)
		}
	}
	return out
}

func (d *Document) defineElement(o *goja.Object, n *html.Node) {
	d.accessor(o, "tagName", func() any { return strings.ToUpper(n.Data) }, nil)
	d.accessor(o, "id", func() any { return attr(n, "id") }, func(v goja.Value) {
		setAttr(n, "id", v.String())
	})
	d.accessor(o, "className", func() any { return attr(n, "class") }, func(v goja.Value) {
		setAttr(n, "class", v.String())
	})
	d.accessor(o, "name", func() any { return attr(n, "name") }, func(v goja.Value) {
		setAttr(n, "name", v.String())
	})
	d.accessor(o, "value", func() any {
		if n.Data == "textarea" {
			return textContent(n)
		}
		return attr(n, "value")
	}, func(v goja.Value) {
		if n.Data == "textarea" {
			replaceChildren(n, &html.Node{Type: html.TextNode, Data: v.String()})
			return
		}
		setAttr(n, "value", v.String())
	})
	d.accessor(o, "innerText", func() any { return innerText(n) }, func(v goja.Value) {
		replaceChildren(n, &html.Node{Type: html.TextNode, Data: v.String()})
	})
	d.accessor(o, "innerHTML", func() any {
		s, err := goquery.NewDocumentFromNode(n).Html()
		if err != nil {
			d.throw("innerHTML: %v", err)
		}
		return s
	}, func(v goja.Value) {
		parsed, err := html.ParseFragment(strings.NewReader(v.String()), n)
		if err != nil {
			d.throw("innerHTML: %v", err)
		}
		replaceChildren(n, parsed...)
	})
	d.accessor(o, "outerHTML", func() any {
		s, err := goquery.OuterHtml(goquery.NewDocumentFromNode(n).Selection)
		if err != nil {
			d.throw("outerHTML: %v", err)
		}
		return s
	}, nil)

	d.method(o, "getAttribute", func(call goja.FunctionCall) goja.Value {
		if v, ok := goquery.NewDocumentFromNode(n).Attr(call.Argument(0).String()); ok {
			return d.vm.ToValue(v)
		}
		return goja.Null()
	})
	d.method(o, "setAttribute", func(call goja.FunctionCall) goja.Value {
		setAttr(n, strings.ToLower(call.Argument(0).String()), call.Argument(1).String())
		return goja.Undefined()
	})
	d.method(o, "removeAttribute", func(call goja.FunctionCall) goja.Value {
		goquery.NewDocumentFromNode(n).RemoveAttr(strings.ToLower(call.Argument(0).String()))
		return goja.Undefined()
	})
}

func (d *Document) defineDocument(o *goja.Object, n *html.Node) {
	d.accessor(o, "documentElement", func() any {
		return d.wrap(firstDescendant(n, func(c *html.Node) bool { return c.Type == html.ElementNode }))
	}, nil)
	d.accessor(o, "body", func() any {
		return d.wrap(firstDescendant(n, func(c *html.Node) bool { return isElement(c, "body") }))
	}, nil)
	d.accessor(o, "title", func() any { return d.Title() }, nil)

	d.method(o, "getElementById", func(call goja.FunctionCall) goja.Value {
		id := call.Argument(0).String()
		return d.wrap(firstDescendant(n, func(c *html.Node) bool {
			return c.Type == html.ElementNode && attr(c, "id") == id
		}))
	})
	d.method(o, "createElement", func(call goja.FunctionCall) goja.Value {
		tag := strings.ToLower(call.Argument(0).String())
		return d.wrap(&html.Node{Type: html.ElementNode, Data: tag, DataAtom: atom.Lookup([]byte(tag))})
	})
	d.method(o, "createTextNode", func(call goja.FunctionCall) goja.Value {
		return d.wrap(&html.Node{Type: html.TextNode, Data: call.Argument(0).String()})
	})
}

func nodeTypeName(n *html.Node) (int, string) {
	switch n.Type {
	case html.ElementNode:
		return 1, strings.ToUpper(n.Data)
	case html.TextNode:
		return 3, "#text"
	case html.CommentNode:
		return 8, "#comment"
	case html.DocumentNode:
		return 9, "#document"
	case html.DoctypeNode:
		return 10, n.Data
	default:
		return 0, ""
	}
}
