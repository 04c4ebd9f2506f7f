package dom

import (
	"strconv"

	"github.com/dop251/goja"
	"golang.org/x/net/html"

	"github.com/liuxd6825/iedriver/common"
)

// Collection is an element collection returned by a query. Its contents are
// fixed when the query runs.
type Collection struct {
	doc   *Document
	nodes []*html.Node
}

var _ common.NativeCollection = &Collection{}

// Len implements common.NativeCollection.
func (c *Collection) Len() int { return len(c.nodes) }

// Item implements common.NativeCollection.
func (c *Collection) Item(i int) common.NativeElement { return c.doc.element(c.nodes[i]) }

// collectionObject exposes a Collection to scripts as an indexable object
// with length and item().
type collectionObject struct {
	c    *Collection
	item goja.Value
}

func (d *Document) newCollection(nodes []*html.Node) goja.Value {
	c := &Collection{doc: d, nodes: nodes}
	co := &collectionObject{c: c}
	co.item = d.vm.ToValue(func(call goja.FunctionCall) goja.Value {
		i := call.Argument(0).ToInteger()
		if i < 0 || int(i) >= len(nodes) {
			return goja.Null()
		}
		return d.wrap(nodes[i])
	})
	return d.vm.NewDynamicObject(co)
}

func (co *collectionObject) Get(key string) goja.Value {
	switch key {
	case "length":
		return co.c.doc.vm.ToValue(len(co.c.nodes))
	case "item":
		return co.item
	}
	if i, err := strconv.Atoi(key); err == nil && i >= 0 && i < len(co.c.nodes) {
		return co.c.doc.wrap(co.c.nodes[i])
	}
	return nil
}

func (co *collectionObject) Set(string, goja.Value) bool { return false }

func (co *collectionObject) Has(key string) bool {
	if key == "length" || key == "item" {
		return true
	}
	i, err := strconv.Atoi(key)
	return err == nil && i >= 0 && i < len(co.c.nodes)
}

func (co *collectionObject) Delete(string) bool { return false }

func (co *collectionObject) Keys() []string {
	keys := make([]string, len(co.c.nodes))
	for i := range co.c.nodes {
		keys[i] = strconv.Itoa(i)
	}
	return keys
}
