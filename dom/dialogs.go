package dom

import (
	"github.com/dop251/goja"

	"github.com/liuxd6825/iedriver/window"
)

// DialogKind is the script function that opened a dialog.
type DialogKind string

// Dialog kinds.
const (
	DialogAlert   DialogKind = "alert"
	DialogConfirm DialogKind = "confirm"
	DialogPrompt  DialogKind = "prompt"
)

const (
	dialogTitle = "Message from webpage"
	// promptEditID is the control id of the prompt's text field.
	promptEditID = 1001
)

// DialogResult records how a dialog was closed.
type DialogResult struct {
	Kind     DialogKind
	Message  string
	Accepted bool
	// Value is the prompt text when a prompt was accepted.
	Value string
}

// installDialogs defines alert, confirm and prompt on the document's global
// object. The dialogs do not block the script; the answer is recorded on the
// browser and passed to an optional callback argument.
func (b *Browser) installDialogs(d *Document) error {
	global := d.vm.GlobalObject()
	open := func(kind DialogKind, callbackArg int) func(goja.FunctionCall) goja.Value {
		return func(call goja.FunctionCall) goja.Value {
			message := ""
			if arg := call.Argument(0); !goja.IsUndefined(arg) {
				message = arg.String()
			}
			defaultText := ""
			if kind == DialogPrompt {
				if arg := call.Argument(1); !goja.IsUndefined(arg) {
					defaultText = arg.String()
				}
			}
			callback, _ := goja.AssertFunction(call.Argument(callbackArg))
			if err := b.openDialog(d, kind, message, defaultText, callback); err != nil {
				d.throw("%s: %v", kind, err)
			}
			return goja.Undefined()
		}
	}
	for name, fn := range map[string]func(goja.FunctionCall) goja.Value{
		"alert":   open(DialogAlert, 1),
		"confirm": open(DialogConfirm, 1),
		"prompt":  open(DialogPrompt, 2),
	} {
		if err := global.Set(name, fn); err != nil {
			return err
		}
	}
	return nil
}

type dialogControl struct {
	class, text string
	id          int
}

type errDialogOpen struct{ hwnd window.HWND }

func (e errDialogOpen) Error() string {
	return "a modal dialog is already open (" + e.hwnd.String() + ")"
}

func (b *Browser) openDialog(d *Document, kind DialogKind, message, defaultText string, callback goja.Callable) error {
	if b.dialog != 0 && b.desktop.IsWindow(b.dialog) {
		return errDialogOpen{b.dialog}
	}

	dlg := b.desktop.CreateWindow(window.DialogClass, dialogTitle, b.hwnd)
	controls := []dialogControl{{window.StaticClass, message, window.IDStatic}}
	if kind == DialogPrompt {
		controls = append(controls, dialogControl{window.EditClass, defaultText, promptEditID})
	}
	controls = append(controls, dialogControl{window.ButtonClass, "OK", window.IDOK})
	if kind != DialogAlert {
		controls = append(controls, dialogControl{window.ButtonClass, "Cancel", window.IDCANCEL})
	}

	var edit window.HWND
	for _, c := range controls {
		h, err := b.desktop.CreateControl(dlg, c.class, c.text, c.id)
		if err != nil {
			b.desktop.DestroyWindow(dlg)
			return err
		}
		if c.id == promptEditID {
			edit = h
		}
	}

	err := b.desktop.SetCommandHandler(dlg, func(id int) {
		if id != window.IDOK && id != window.IDCANCEL {
			return
		}
		result := DialogResult{Kind: kind, Message: message, Accepted: id == window.IDOK}
		if kind == DialogPrompt && result.Accepted {
			result.Value, _ = b.desktop.Text(edit)
		}
		b.desktop.DestroyWindow(dlg)
		if b.dialog == dlg {
			b.dialog = 0
		}
		b.results = append(b.results, result)
		b.logger.Debugf("Browser:dialog", "hwnd:%s kind:%s accepted:%t", dlg, kind, result.Accepted)

		if callback != nil && !d.closed {
			if _, err := callback(goja.Undefined(), b.dialogAnswer(d, result)...); err != nil {
				b.logger.Warnf("Browser:dialog", "hwnd:%s callback: %v", dlg, err)
			}
		}
	})
	if err != nil {
		b.desktop.DestroyWindow(dlg)
		return err
	}

	b.dialog = dlg
	b.logger.Debugf("Browser:dialog", "hwnd:%s kind:%s opened", dlg, kind)
	return nil
}

func (b *Browser) dialogAnswer(d *Document, r DialogResult) []goja.Value {
	switch r.Kind {
	case DialogConfirm:
		return []goja.Value{d.vm.ToValue(r.Accepted)}
	case DialogPrompt:
		if !r.Accepted {
			return []goja.Value{goja.Null()}
		}
		return []goja.Value{d.vm.ToValue(r.Value)}
	default:
		return nil
	}
}

// closeDialog dismisses an open dialog without recording an answer.
func (b *Browser) closeDialog() {
	if b.dialog != 0 {
		b.desktop.DestroyWindow(b.dialog)
		b.dialog = 0
	}
}

// SetPromptText replaces the text of the open prompt's input field.
func (b *Browser) SetPromptText(text string) error {
	if b.dialog == 0 {
		return window.ErrInvalidWindow
	}
	edits, err := window.ChildrenOfClass(b.desktop, b.dialog, window.EditClass)
	if err != nil {
		return err
	}
	if len(edits) == 0 {
		return window.ErrInvalidWindow
	}
	return b.desktop.SetText(edits[0], text)
}
