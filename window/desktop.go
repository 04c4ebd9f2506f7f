package window

import (
	"fmt"
	"sort"
	"sync"
)

// CommandHandler receives the control id of a WM_COMMAND posted to a window.
type CommandHandler func(controlID int)

// Message is a message posted through Desktop.PostMessage.
type Message struct {
	HWND   HWND
	Msg    uint32
	WParam uintptr
	LParam uintptr
}

type simWindow struct {
	class    string
	text     string
	owner    HWND
	parent   HWND
	id       int
	children []HWND
	handler  CommandHandler
}

// Desktop is an in-process window system. It is safe for concurrent use.
type Desktop struct {
	mu      sync.Mutex
	next    HWND
	windows map[HWND]*simWindow
	posted  []Message
}

var _ Manager = &Desktop{}

// NewDesktop returns an empty desktop.
func NewDesktop() *Desktop {
	return &Desktop{
		next:    0x10000,
		windows: make(map[HWND]*simWindow),
	}
}

func (d *Desktop) alloc(w *simWindow) HWND {
	d.next += 2
	d.windows[d.next] = w
	return d.next
}

// CreateWindow creates a top-level window owned by owner, which may be zero.
func (d *Desktop) CreateWindow(class, text string, owner HWND) HWND {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.alloc(&simWindow{class: class, text: text, owner: owner})
}

// CreateControl creates a child window of parent with the given control id.
func (d *Desktop) CreateControl(parent HWND, class, text string, id int) (HWND, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	p, ok := d.windows[parent]
	if !ok {
		return 0, fmt.Errorf("creating %s control under %s: %w", class, parent, ErrInvalidWindow)
	}
	h := d.alloc(&simWindow{class: class, text: text, parent: parent, id: id})
	p.children = append(p.children, h)
	return h, nil
}

// SetCommandHandler installs fn as the WM_COMMAND handler of h.
func (d *Desktop) SetCommandHandler(h HWND, fn CommandHandler) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	w, ok := d.windows[h]
	if !ok {
		return ErrInvalidWindow
	}
	w.handler = fn
	return nil
}

// SetText replaces the caption of h.
func (d *Desktop) SetText(h HWND, text string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	w, ok := d.windows[h]
	if !ok {
		return ErrInvalidWindow
	}
	w.text = text
	return nil
}

// DestroyWindow destroys h and all of its children.
func (d *Desktop) DestroyWindow(h HWND) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.destroy(h)
}

func (d *Desktop) destroy(h HWND) {
	w, ok := d.windows[h]
	if !ok {
		return
	}
	kids := append([]HWND(nil), w.children...)
	for _, c := range kids {
		d.destroy(c)
	}
	delete(d.windows, h)
	if p, ok := d.windows[w.parent]; ok {
		for i, c := range p.children {
			if c == h {
				p.children = append(p.children[:i], p.children[i+1:]...)
				break
			}
		}
	}
}

// Messages returns a copy of every message posted so far.
func (d *Desktop) Messages() []Message {
	d.mu.Lock()
	defer d.mu.Unlock()

	out := make([]Message, len(d.posted))
	copy(out, d.posted)
	return out
}

func (d *Desktop) topLevel(match func(*simWindow) bool) []HWND {
	var out []HWND
	for h, w := range d.windows {
		if w.parent == 0 && match(w) {
			out = append(out, h)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// TopLevel implements Manager.
func (d *Desktop) TopLevel() ([]HWND, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.topLevel(func(*simWindow) bool { return true }), nil
}

// Owned implements Manager.
func (d *Desktop) Owned(owner HWND) ([]HWND, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.topLevel(func(w *simWindow) bool { return w.owner == owner }), nil
}

// Children implements Manager.
func (d *Desktop) Children(parent HWND) ([]HWND, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	w, ok := d.windows[parent]
	if !ok {
		return nil, ErrInvalidWindow
	}
	out := make([]HWND, len(w.children))
	copy(out, w.children)
	return out, nil
}

func (d *Desktop) lookup(h HWND) (simWindow, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	w, ok := d.windows[h]
	if !ok {
		return simWindow{}, ErrInvalidWindow
	}
	return *w, nil
}

// ClassName implements Manager.
func (d *Desktop) ClassName(h HWND) (string, error) {
	w, err := d.lookup(h)
	return w.class, err
}

// Text implements Manager.
func (d *Desktop) Text(h HWND) (string, error) {
	w, err := d.lookup(h)
	return w.text, err
}

// ControlID implements Manager.
func (d *Desktop) ControlID(h HWND) (int, error) {
	w, err := d.lookup(h)
	return w.id, err
}

// IsWindow implements Manager.
func (d *Desktop) IsWindow(h HWND) bool {
	_, err := d.lookup(h)
	return err == nil
}

// PostMessage implements Manager. A WM_COMMAND is delivered to the window's
// command handler before PostMessage returns.
func (d *Desktop) PostMessage(h HWND, msg uint32, wParam, lParam uintptr) error {
	d.mu.Lock()
	w, ok := d.windows[h]
	if !ok {
		d.mu.Unlock()
		return fmt.Errorf("posting 0x%04X to %s: %w", msg, h, ErrInvalidWindow)
	}
	d.posted = append(d.posted, Message{HWND: h, Msg: msg, WParam: wParam, LParam: lParam})
	handler := w.handler
	d.mu.Unlock()

	if msg == WMCommand && handler != nil {
		handler(int(wParam & 0xFFFF))
	}
	return nil
}
