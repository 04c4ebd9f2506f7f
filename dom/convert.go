package dom

import (
	"fmt"
	"reflect"
	"strconv"

	"github.com/dop251/goja"
	"golang.org/x/net/html"

	"github.com/liuxd6825/iedriver/common"
)

// Limits on the values a script may return. Results are copied into Go
// values in full, so they are bounded before anything is allocated.
const (
	maxExportDepth = 32
	maxExportNodes = 100000
)

var collectionObjectType = reflect.TypeOf(&collectionObject{})

// exporter converts one script result. path holds the objects between the
// root and the value being converted.
type exporter struct {
	doc   *Document
	path  map[*goja.Object]struct{}
	nodes int
}

// export converts a script value into the shapes common.Classify knows.
// Cyclic and oversized results fail with common.ErrScriptExecution.
func (d *Document) export(v goja.Value) (any, error) {
	e := &exporter{doc: d, path: make(map[*goja.Object]struct{})}
	return e.value(v, 0)
}

func (e *exporter) value(v goja.Value, depth int) (any, error) {
	if e.nodes++; e.nodes > maxExportNodes {
		return nil, fmt.Errorf("%w: result has more than %d values", common.ErrScriptExecution, maxExportNodes)
	}
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return nil, nil
	}
	o, ok := v.(*goja.Object)
	if !ok {
		return v.Export(), nil
	}
	if o.ExportType() == collectionObjectType {
		co, _ := o.Export().(*collectionObject)
		return co.c, nil
	}
	if n, ok := e.doc.nodes[o]; ok {
		if el, ok := e.doc.elements[n]; ok {
			return el, nil
		}
		if n.Type == html.TextNode || n.Type == html.CommentNode {
			return n.Data, nil
		}
		return nil, nil
	}
	if _, ok := goja.AssertFunction(o); ok {
		return nil, nil
	}
	if _, ok := e.path[o]; ok {
		return nil, fmt.Errorf("%w: result contains a cyclic reference", common.ErrScriptExecution)
	}
	if depth >= maxExportDepth {
		return nil, fmt.Errorf("%w: result is nested deeper than %d levels", common.ErrScriptExecution, maxExportDepth)
	}
	e.path[o] = struct{}{}
	defer delete(e.path, o)

	if o.ClassName() == "Array" {
		length := o.Get("length").ToInteger()
		if length > int64(maxExportNodes-e.nodes) {
			return nil, fmt.Errorf("%w: result has more than %d values", common.ErrScriptExecution, maxExportNodes)
		}
		out := make([]any, length)
		for i := range out {
			item, err := e.value(o.Get(strconv.Itoa(i)), depth+1)
			if err != nil {
				return nil, err
			}
			out[i] = item
		}
		return out, nil
	}
	keys := o.Keys()
	out := make(map[string]any, len(keys))
	for _, k := range keys {
		item, err := e.value(o.Get(k), depth+1)
		if err != nil {
			return nil, err
		}
		out[k] = item
	}
	return out, nil
}

// importValue converts a Go argument into a script value. Elements and
// collections must belong to this document.
func (d *Document) importValue(v any) (goja.Value, error) {
	switch val := v.(type) {
	case nil:
		return goja.Null(), nil
	case *Element:
		if val.doc != d {
			return nil, fmt.Errorf("element of document %s: %w", val.doc.id, common.ErrWrongDocument)
		}
		return d.wrap(val.node), nil
	case *Collection:
		if val.doc != d {
			return nil, fmt.Errorf("collection of document %s: %w", val.doc.id, common.ErrWrongDocument)
		}
		return d.newCollection(val.nodes), nil
	case []any:
		items := make([]any, len(val))
		for i, item := range val {
			iv, err := d.importValue(item)
			if err != nil {
				return nil, err
			}
			items[i] = iv
		}
		return d.vm.NewArray(items...), nil
	case map[string]any:
		o := d.vm.NewObject()
		for k, item := range val {
			iv, err := d.importValue(item)
			if err != nil {
				return nil, err
			}
			if err := o.Set(k, iv); err != nil {
				return nil, err
			}
		}
		return o, nil
	default:
		return d.vm.ToValue(v), nil
	}
}
