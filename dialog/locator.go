// Package dialog finds and inspects the controls of native modal dialogs.
package dialog

import (
	"strings"

	"github.com/liuxd6825/iedriver/log"
	"github.com/liuxd6825/iedriver/window"
)

// Role is the intent of a dialog button.
type Role int

// Button roles.
const (
	Accept Role = iota
	Cancel
)

func (r Role) String() string {
	if r == Cancel {
		return "Cancel"
	}
	return "OK"
}

type roleMatch struct {
	ids      []int
	captions []string
}

var roles = map[Role]roleMatch{
	Accept: {ids: []int{window.IDOK, window.IDYES}, captions: []string{"ok", "yes"}},
	Cancel: {ids: []int{window.IDCANCEL, window.IDNO}, captions: []string{"cancel", "no"}},
}

// ButtonInfo describes the button found for a role.
type ButtonInfo struct {
	Exists    bool
	ControlID int
	HWND      window.HWND
}

// Locator finds dialog buttons through a window manager.
type Locator struct {
	wm     window.Manager
	logger *log.Logger
}

// NewLocator returns a locator that enumerates controls through wm.
func NewLocator(wm window.Manager, logger *log.Logger) *Locator {
	return &Locator{wm: wm, logger: logger}
}

type button struct {
	hwnd    window.HWND
	id      int
	caption string
}

// LocateButton returns the button of dlg that plays role. Standard control
// ids win over captions. A missing button is reported with Exists false.
func (l *Locator) LocateButton(dlg window.HWND, role Role) ButtonInfo {
	buttons := l.buttons(dlg)
	match := roles[role]

	for _, id := range match.ids {
		for _, b := range buttons {
			if b.id == id {
				return ButtonInfo{Exists: true, ControlID: b.id, HWND: b.hwnd}
			}
		}
	}
	for _, caption := range match.captions {
		for _, b := range buttons {
			if b.caption == caption {
				return ButtonInfo{Exists: true, ControlID: b.id, HWND: b.hwnd}
			}
		}
	}

	l.logger.Debugf("Locator:LocateButton", "hwnd:%s role:%s buttons:%d not found", dlg, role, len(buttons))
	return ButtonInfo{}
}

func (l *Locator) buttons(dlg window.HWND) []button {
	handles, err := window.ChildrenOfClass(l.wm, dlg, window.ButtonClass)
	if err != nil {
		l.logger.Warnf("Locator:LocateButton", "hwnd:%s enumerating controls: %v", dlg, err)
		return nil
	}
	out := make([]button, 0, len(handles))
	for _, h := range handles {
		id, err := l.wm.ControlID(h)
		if err != nil {
			l.logger.Warnf("Locator:LocateButton", "hwnd:%s control id: %v", h, err)
			continue
		}
		text, err := l.wm.Text(h)
		if err != nil {
			l.logger.Warnf("Locator:LocateButton", "hwnd:%s caption: %v", h, err)
		}
		out = append(out, button{hwnd: h, id: id, caption: normalizeCaption(text)})
	}
	return out
}

// normalizeCaption strips accelerator markers so "&Yes" matches "yes".
func normalizeCaption(s string) string {
	s = strings.ReplaceAll(s, "&&", "\x00")
	s = strings.ReplaceAll(s, "&", "")
	s = strings.ReplaceAll(s, "\x00", "&")
	return strings.ToLower(strings.TrimSpace(s))
}

// MessageText returns the caption of the dialog's first non-empty static
// control, which holds the alert message.
func MessageText(wm window.Manager, dlg window.HWND) (string, error) {
	statics, err := window.ChildrenOfClass(wm, dlg, window.StaticClass)
	if err != nil {
		return "", err
	}
	for _, h := range statics {
		text, err := wm.Text(h)
		if err != nil {
			return "", err
		}
		if text != "" {
			return text, nil
		}
	}
	return "", nil
}
