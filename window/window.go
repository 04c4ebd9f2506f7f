// Package window abstracts the native window system the driver talks to when
// it handles modal dialogs. Manager is implemented by User32 on Windows and
// by Desktop, an in-process simulation used by the hosted browser and tests.
package window

import (
	"errors"
	"fmt"
)

// HWND is an opaque native window handle. Zero means no window.
type HWND uintptr

func (h HWND) String() string {
	return fmt.Sprintf("0x%X", uintptr(h))
}

// Window classes used by standard dialog boxes.
const (
	DialogClass = "#32770"
	StaticClass = "Static"
	ButtonClass = "Button"
	EditClass   = "Edit"
)

// WMCommand is the WM_COMMAND message, posted with a control id in wParam.
const WMCommand uint32 = 0x0111

// Standard dialog control identifiers.
const (
	IDOK     = 1
	IDCANCEL = 2
	IDYES    = 6
	IDNO     = 7
	// IDStatic is the id resource compilers give unnamed static controls.
	IDStatic = 0xFFFF
)

var (
	// ErrInvalidWindow is returned for handles that do not name a live window.
	ErrInvalidWindow = errors.New("invalid window handle")
	// ErrUnsupported is returned by Native on platforms without a window system binding.
	ErrUnsupported = errors.New("native windows are not supported on this platform")
)

// Manager enumerates windows and posts messages to them.
type Manager interface {
	// TopLevel lists every top-level window.
	TopLevel() ([]HWND, error)
	// Owned lists the top-level windows owned by owner.
	Owned(owner HWND) ([]HWND, error)
	// Children lists the child windows of parent in z-order.
	Children(parent HWND) ([]HWND, error)
	ClassName(h HWND) (string, error)
	Text(h HWND) (string, error)
	ControlID(h HWND) (int, error)
	IsWindow(h HWND) bool
	// PostMessage queues msg for h without waiting for it to be processed.
	PostMessage(h HWND, msg uint32, wParam, lParam uintptr) error
}
