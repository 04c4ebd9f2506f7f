package common

import "github.com/liuxd6825/iedriver/window"

// Document is a page document that can run scripts.
type Document interface {
	// ID is unique per loaded document. A reload yields a new ID.
	ID() string
	// Execute evaluates source, which must produce a function, and calls
	// that function with args. Results are exported as NativeElement,
	// NativeCollection, []any, map[string]any or a scalar.
	Execute(source string, args []any) (any, error)
}

// NativeElement is an element reference owned by a document.
// Implementations must be comparable.
type NativeElement interface {
	DocumentID() string
}

// NativeCollection is a live element collection returned by a document.
type NativeCollection interface {
	Len() int
	Item(i int) NativeElement
}

// Browser is one browser window as seen by command handlers.
type Browser interface {
	GetDocument() (Document, error)
	// GetActiveDialogWindowHandle re-queries the modal dialog owned by the
	// browser window, if any.
	GetActiveDialogWindowHandle() (window.HWND, bool)
	WindowManager() window.Manager
}

// Session is the per-client state the command handlers operate on.
type Session interface {
	GetCurrentBrowser() (Browser, error)
	Elements() *ElementTable
}
