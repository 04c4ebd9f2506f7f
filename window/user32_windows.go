//go:build windows

package window

import (
	"fmt"
	"sync"
	"unsafe"

	"golang.org/x/sys/windows"
)

const (
	gwOwner       = 4
	maxTextLength = 512
)

var (
	user32 = windows.NewLazySystemDLL("user32.dll")

	procEnumWindows      = user32.NewProc("EnumWindows")
	procEnumChildWindows = user32.NewProc("EnumChildWindows")
	procGetWindow        = user32.NewProc("GetWindow")
	procGetParent        = user32.NewProc("GetParent")
	procGetClassNameW    = user32.NewProc("GetClassNameW")
	procGetWindowTextW   = user32.NewProc("GetWindowTextW")
	procGetDlgCtrlID     = user32.NewProc("GetDlgCtrlID")
	procIsWindow         = user32.NewProc("IsWindow")
	procPostMessageW     = user32.NewProc("PostMessageW")

	// Callbacks are a finite runtime resource, so one is shared by every
	// enumeration and guarded by enumMu.
	enumMu       sync.Mutex
	enumFound    []HWND
	enumCallback = windows.NewCallback(func(h uintptr, _ uintptr) uintptr {
		enumFound = append(enumFound, HWND(h))
		return 1
	})
)

// User32 implements Manager on top of user32.dll.
type User32 struct{}

var _ Manager = User32{}

// Native returns the Manager backed by the operating system.
func Native() (Manager, error) {
	if err := user32.Load(); err != nil {
		return nil, fmt.Errorf("loading user32.dll: %w", err)
	}
	return User32{}, nil
}

func enumerate(proc *windows.LazyProc, args ...uintptr) []HWND {
	enumMu.Lock()
	defer enumMu.Unlock()

	enumFound = nil
	// The return value only reports whether the callback stopped early.
	_, _, _ = proc.Call(append(args, enumCallback, 0)...)
	out := enumFound
	enumFound = nil
	return out
}

// TopLevel implements Manager.
func (User32) TopLevel() ([]HWND, error) {
	return enumerate(procEnumWindows), nil
}

// Owned implements Manager.
func (u User32) Owned(owner HWND) ([]HWND, error) {
	all, _ := u.TopLevel()
	var out []HWND
	for _, h := range all {
		r, _, _ := procGetWindow.Call(uintptr(h), gwOwner)
		if HWND(r) == owner {
			out = append(out, h)
		}
	}
	return out, nil
}

// Children implements Manager. Only direct children are returned.
func (u User32) Children(parent HWND) ([]HWND, error) {
	if !u.IsWindow(parent) {
		return nil, ErrInvalidWindow
	}
	all := enumerate(procEnumChildWindows, uintptr(parent))
	out := all[:0]
	for _, h := range all {
		r, _, _ := procGetParent.Call(uintptr(h))
		if HWND(r) == parent {
			out = append(out, h)
		}
	}
	return out, nil
}

// callText reads a UTF-16 string from proc. Empty window text is legal, so
// only class names treat a zero length as failure.
func callText(proc *windows.LazyProc, h HWND, strict bool) (string, error) {
	buf := make([]uint16, maxTextLength)
	n, _, err := proc.Call(uintptr(h), uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf)))
	if n == 0 && strict {
		return "", fmt.Errorf("%s(%s): %w", proc.Name, h, err)
	}
	return windows.UTF16ToString(buf[:n]), nil
}

// ClassName implements Manager.
func (User32) ClassName(h HWND) (string, error) {
	return callText(procGetClassNameW, h, true)
}

// Text implements Manager.
func (u User32) Text(h HWND) (string, error) {
	if !u.IsWindow(h) {
		return "", ErrInvalidWindow
	}
	return callText(procGetWindowTextW, h, false)
}

// ControlID implements Manager.
func (User32) ControlID(h HWND) (int, error) {
	r, _, err := procGetDlgCtrlID.Call(uintptr(h))
	if r == 0 {
		return 0, fmt.Errorf("GetDlgCtrlID(%s): %w", h, err)
	}
	return int(r), nil
}

// IsWindow implements Manager.
func (User32) IsWindow(h HWND) bool {
	r, _, _ := procIsWindow.Call(uintptr(h))
	return r != 0
}

// PostMessage implements Manager.
func (User32) PostMessage(h HWND, msg uint32, wParam, lParam uintptr) error {
	r, _, err := procPostMessageW.Call(uintptr(h), uintptr(msg), wParam, lParam)
	if r == 0 {
		return fmt.Errorf("PostMessageW(%s, 0x%04X): %w", h, msg, err)
	}
	return nil
}
