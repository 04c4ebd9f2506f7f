package common

// ResultKind classifies what a script returned.
type ResultKind int

// Result kinds, decided once after execution.
const (
	ResultScalar ResultKind = iota
	ResultArray
	ResultElement
	ResultElementCollection
)

func (k ResultKind) String() string {
	switch k {
	case ResultArray:
		return "array"
	case ResultElement:
		return "element"
	case ResultElementCollection:
		return "element collection"
	default:
		return "scalar"
	}
}

// ExecutionResult is a classified script result.
type ExecutionResult struct {
	Kind  ResultKind
	value any
}

// Classify tags a value exported by a Document.
func Classify(v any) ExecutionResult {
	switch v.(type) {
	case NativeElement:
		return ExecutionResult{Kind: ResultElement, value: v}
	case NativeCollection:
		return ExecutionResult{Kind: ResultElementCollection, value: v}
	case []any:
		return ExecutionResult{Kind: ResultArray, value: v}
	default:
		return ExecutionResult{Kind: ResultScalar, value: v}
	}
}

// Raw returns the unconverted value.
func (r ExecutionResult) Raw() any {
	return r.value
}

// IsElement reports whether the result is a single element.
func (r ExecutionResult) IsElement() bool { return r.Kind == ResultElement }

// IsList reports whether the result is an array or an element collection.
func (r ExecutionResult) IsList() bool {
	return r.Kind == ResultArray || r.Kind == ResultElementCollection
}

// Convert turns the result into a JSON-serializable value. Elements are
// registered in table and replaced with their references; lists keep their
// order.
func (r ExecutionResult) Convert(table *ElementTable) any {
	return convertValue(table, r.value)
}

// ConvertList converts a list result into a non-nil slice.
func (r ExecutionResult) ConvertList(table *ElementTable) ([]any, error) {
	if !r.IsList() {
		return nil, ErrResultShape
	}
	out, _ := convertValue(table, r.value).([]any)
	if out == nil {
		out = []any{}
	}
	return out, nil
}

func convertValue(table *ElementTable, v any) any {
	switch val := v.(type) {
	case NativeElement:
		return table.Add(val).Reference()
	case NativeCollection:
		out := make([]any, 0, val.Len())
		for i := 0; i < val.Len(); i++ {
			out = append(out, table.Add(val.Item(i)).Reference())
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = convertValue(table, item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = convertValue(table, item)
		}
		return out
	default:
		return v
	}
}
