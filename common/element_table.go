package common

import (
	"fmt"

	"github.com/google/uuid"
)

// elementKey is the JSON key of a serialized element reference.
const elementKey = "ELEMENT"

// ElementReference is the wire form of an element handle.
type ElementReference struct {
	ID string `json:"ELEMENT"`
}

// ElementHandle is a registered native element.
type ElementHandle struct {
	ID     string
	Native NativeElement
}

// DocumentID returns the id of the document that owns the element.
func (h *ElementHandle) DocumentID() string {
	return h.Native.DocumentID()
}

// Reference returns the wire form of h.
func (h *ElementHandle) Reference() ElementReference {
	return ElementReference{ID: h.ID}
}

// ElementTable maps generated ids to native elements for one session.
// It is not safe for concurrent use; the session executor owns it.
type ElementTable struct {
	byID     map[string]*ElementHandle
	byNative map[NativeElement]*ElementHandle
}

// NewElementTable returns an empty table.
func NewElementTable() *ElementTable {
	return &ElementTable{
		byID:     make(map[string]*ElementHandle),
		byNative: make(map[NativeElement]*ElementHandle),
	}
}

// Add registers native and returns its handle. Registering the same element
// twice returns the same handle.
func (t *ElementTable) Add(native NativeElement) *ElementHandle {
	if h, ok := t.byNative[native]; ok {
		return h
	}
	h := &ElementHandle{ID: uuid.NewString(), Native: native}
	t.byID[h.ID] = h
	t.byNative[native] = h
	return h
}

// Get looks up a handle by id.
func (t *ElementTable) Get(id string) (*ElementHandle, error) {
	h, ok := t.byID[id]
	if !ok {
		return nil, fmt.Errorf("element %q: %w", id, ErrStaleElement)
	}
	return h, nil
}

// Len returns the number of registered elements.
func (t *ElementTable) Len() int {
	return len(t.byID)
}

// RetainDocument drops every handle that does not belong to document docID
// and returns how many were dropped.
func (t *ElementTable) RetainDocument(docID string) int {
	dropped := 0
	for id, h := range t.byID {
		if h.DocumentID() == docID {
			continue
		}
		delete(t.byID, id)
		delete(t.byNative, h.Native)
		dropped++
	}
	return dropped
}

// ResolveArgument replaces serialized element references inside v with their
// handles. Slices and maps are walked recursively.
func (t *ElementTable) ResolveArgument(v any) (any, error) {
	switch val := v.(type) {
	case map[string]any:
		if id, ok := val[elementKey].(string); ok && len(val) == 1 {
			return t.Get(id)
		}
		out := make(map[string]any, len(val))
		for k, item := range val {
			r, err := t.ResolveArgument(item)
			if err != nil {
				return nil, err
			}
			out[k] = r
		}
		return out, nil
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			r, err := t.ResolveArgument(item)
			if err != nil {
				return nil, err
			}
			out[i] = r
		}
		return out, nil
	default:
		return v, nil
	}
}
