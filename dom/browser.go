package dom

import (
	"fmt"

	"github.com/liuxd6825/iedriver/common"
	"github.com/liuxd6825/iedriver/log"
	"github.com/liuxd6825/iedriver/window"
)

// FrameClass is the window class of the hosted browser's top-level window.
const FrameClass = "IEFrame"

const frameTitleSuffix = " - Internet Explorer"

// Browser is a hosted browser window on a simulated desktop.
type Browser struct {
	desktop *window.Desktop
	hwnd    window.HWND
	doc     *Document
	logger  *log.Logger

	dialog  window.HWND
	results []DialogResult
}

var _ common.Browser = &Browser{}

// NewBrowser opens a browser window on desktop with an empty document.
func NewBrowser(desktop *window.Desktop, logger *log.Logger) (*Browser, error) {
	b := &Browser{
		desktop: desktop,
		logger:  logger,
	}
	b.hwnd = desktop.CreateWindow(FrameClass, "about:blank"+frameTitleSuffix, 0)
	if _, err := b.Load(""); err != nil {
		desktop.DestroyWindow(b.hwnd)
		return nil, err
	}
	return b, nil
}

// Load replaces the current document with markup and runs its inline
// scripts. The previous document becomes unusable and any open dialog is
// closed.
func (b *Browser) Load(markup string) (*Document, error) {
	if b.hwnd == 0 {
		return nil, fmt.Errorf("loading document: %w", common.ErrNoSuchWindow)
	}
	b.closeDialog()

	doc, err := newDocument(b, markup)
	if err != nil {
		return nil, err
	}
	if b.doc != nil {
		b.doc.close()
	}
	b.doc = doc

	title := doc.Title()
	if title == "" {
		title = "about:blank"
	}
	if err := b.desktop.SetText(b.hwnd, title+frameTitleSuffix); err != nil {
		return nil, err
	}

	b.logger.Debugf("Browser:Load", "hwnd:%s doc:%s title:%q", b.hwnd, doc.id, title)
	doc.runInlineScripts()
	return doc, nil
}

// HWND returns the browser's top-level window.
func (b *Browser) HWND() window.HWND { return b.hwnd }

// Document returns the current document, or nil once the browser is closed.
func (b *Browser) Document() *Document { return b.doc }

// GetDocument implements common.Browser.
func (b *Browser) GetDocument() (common.Document, error) {
	if b.doc == nil || b.doc.closed {
		return nil, common.ErrDocumentGone
	}
	return b.doc, nil
}

// GetActiveDialogWindowHandle implements common.Browser.
func (b *Browser) GetActiveDialogWindowHandle() (window.HWND, bool) {
	return window.FindOwnedDialog(b.desktop, b.hwnd)
}

// WindowManager implements common.Browser.
func (b *Browser) WindowManager() window.Manager { return b.desktop }

// DialogResults returns how every closed dialog was answered, oldest first.
func (b *Browser) DialogResults() []DialogResult {
	out := make([]DialogResult, len(b.results))
	copy(out, b.results)
	return out
}

// Close destroys the browser window and its document.
func (b *Browser) Close() {
	if b.hwnd == 0 {
		return
	}
	b.closeDialog()
	if b.doc != nil {
		b.doc.close()
	}
	b.desktop.DestroyWindow(b.hwnd)
	b.logger.Debugf("Browser:Close", "hwnd:%s", b.hwnd)
	b.hwnd = 0
}
