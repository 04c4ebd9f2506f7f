package common

import (
	"context"
	"fmt"

	"github.com/liuxd6825/iedriver/log"
	"github.com/liuxd6825/iedriver/trace"
)

// WrapAtom turns an atom body into a source that evaluates to the atom
// function without polluting the page namespace.
func WrapAtom(atom string) string {
	return "(function() { return (" + atom + ")})();"
}

// WrapFunctionBody turns a function body into a source that evaluates to a
// function running it.
func WrapFunctionBody(body string) string {
	return "(function() { return function(){ " + body + " }; })();"
}

// Script is one execution of a source against a document.
type Script struct {
	name   string
	doc    Document
	source string
	args   []any
	logger *log.Logger
}

// NewScript prepares source for execution in doc.
func NewScript(doc Document, source string, logger *log.Logger) *Script {
	return &Script{name: "script", doc: doc, source: source, logger: logger}
}

// AddArgument appends a positional argument. Element handles are passed as
// their native element.
func (s *Script) AddArgument(arg any) {
	s.args = append(s.args, arg)
}

func (s *Script) marshalArgument(arg any) (any, error) {
	switch val := arg.(type) {
	case *ElementHandle:
		if val.DocumentID() != s.doc.ID() {
			return nil, fmt.Errorf("element %s: %w", val.ID, ErrWrongDocument)
		}
		return val.Native, nil
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			m, err := s.marshalArgument(item)
			if err != nil {
				return nil, err
			}
			out[i] = m
		}
		return out, nil
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			m, err := s.marshalArgument(item)
			if err != nil {
				return nil, err
			}
			out[k] = m
		}
		return out, nil
	default:
		return arg, nil
	}
}

// Execute runs the script once and classifies its result. The run is traced
// as a child of the span in ctx.
func (s *Script) Execute(ctx context.Context) (r ExecutionResult, err error) {
	if s.doc == nil {
		return ExecutionResult{}, ErrDocumentGone
	}
	_, span := trace.StartChild(ctx, s.name, trace.AttrDocumentID.String(s.doc.ID()))
	defer func() { trace.EndWithError(span, err) }()

	args := make([]any, len(s.args))
	for i, arg := range s.args {
		m, err := s.marshalArgument(arg)
		if err != nil {
			return ExecutionResult{}, fmt.Errorf("converting argument %d: %w", i, err)
		}
		args[i] = m
	}

	s.logger.Debugf("Script:Execute", "doc:%s script:%s args:%d", s.doc.ID(), s.name, len(args))

	v, err := s.doc.Execute(s.source, args)
	if err != nil {
		return ExecutionResult{}, fmt.Errorf("executing script in document %s: %w", s.doc.ID(), err)
	}
	r = Classify(v)
	s.logger.Tracef("Script:Execute", "doc:%s result:%s", s.doc.ID(), r.Kind)
	return r, nil
}
