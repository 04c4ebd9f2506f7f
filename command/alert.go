package command

import (
	"context"
	"errors"

	"github.com/tidwall/gjson"

	"github.com/liuxd6825/iedriver/common"
	"github.com/liuxd6825/iedriver/dialog"
	"github.com/liuxd6825/iedriver/log"
)

// AcceptAlert presses the button of the active dialog that plays its role.
type AcceptAlert struct {
	role   dialog.Role
	logger *log.Logger
}

// NewAcceptAlert returns the command that presses OK.
func NewAcceptAlert(logger *log.Logger) *AcceptAlert {
	return &AcceptAlert{role: dialog.Accept, logger: logger}
}

// DismissAlert is AcceptAlert pressing Cancel.
type DismissAlert struct {
	AcceptAlert
}

// NewDismissAlert returns the command that presses Cancel.
func NewDismissAlert(logger *log.Logger) *DismissAlert {
	return &DismissAlert{AcceptAlert{role: dialog.Cancel, logger: logger}}
}

// ExecuteInternal implements Command. The button press is posted to the
// dialog and not waited on.
func (a *AcceptAlert) ExecuteInternal(ctx context.Context, sess Session, _ Parameters, _ gjson.Result, resp *Response) {
	browser, err := sess.GetCurrentBrowser()
	if err != nil {
		resp.SetErrorResponse(common.NoSuchWindow, "Unable to get browser")
		return
	}
	dlg, ok := browser.GetActiveDialogWindowHandle()
	if !ok {
		resp.SetErrorResponse(common.NoAlertOpen, "No alert is active")
		return
	}

	_, err = dialog.NewLocator(browser.WindowManager(), a.logger).Press(ctx, dlg, a.role, sess.Options().DialogReady)
	switch {
	case errors.Is(err, common.ErrButtonNotFound):
		resp.SetErrorResponse(common.UnhandledError, "Could not find "+a.role.String()+" button")
	case err != nil:
		resp.SetErrorResponse(common.UnhandledError, err.Error())
	default:
		resp.SetSuccessResponse(nil)
	}
}

// GetAlertText reads the message of the active dialog.
type GetAlertText struct{}

// ExecuteInternal implements Command.
func (GetAlertText) ExecuteInternal(_ context.Context, sess Session, _ Parameters, _ gjson.Result, resp *Response) {
	browser, err := sess.GetCurrentBrowser()
	if err != nil {
		resp.SetErrorResponse(common.NoSuchWindow, "Unable to get browser")
		return
	}
	dlg, ok := browser.GetActiveDialogWindowHandle()
	if !ok {
		resp.SetErrorResponse(common.NoAlertOpen, "No alert is active")
		return
	}
	text, err := dialog.MessageText(browser.WindowManager(), dlg)
	if err != nil {
		resp.SetErrorResponse(common.UnhandledError, err.Error())
		return
	}
	resp.SetSuccessResponse(text)
}
