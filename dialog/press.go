package dialog

import (
	"context"
	"fmt"

	"github.com/liuxd6825/iedriver/common"
	"github.com/liuxd6825/iedriver/window"
)

// Press waits for dlg to show its buttons and posts WM_COMMAND for the button
// playing role. The dialog processes the command on its own; Press does not
// wait for it to close.
func (l *Locator) Press(ctx context.Context, dlg window.HWND, role Role, opts ReadyOptions) (ButtonInfo, error) {
	if !WaitReady(ctx, l.wm, dlg, opts) {
		l.logger.Debugf("Locator:Press", "hwnd:%s no buttons after readiness poll", dlg)
	}

	button := l.LocateButton(dlg, role)
	if !button.Exists {
		return button, fmt.Errorf("could not find %s button: %w", role, common.ErrButtonNotFound)
	}
	if err := l.wm.PostMessage(dlg, window.WMCommand, uintptr(button.ControlID), 0); err != nil {
		return button, fmt.Errorf("pressing %s on %s: %w", role, dlg, err)
	}
	l.logger.Debugf("Locator:Press", "hwnd:%s role:%s control:%d", dlg, role, button.ControlID)
	return button, nil
}
