package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/liuxd6825/iedriver/common"
	"github.com/liuxd6825/iedriver/dialog"
	"github.com/liuxd6825/iedriver/errext"
	"github.com/liuxd6825/iedriver/errext/exitcodes"
	"github.com/liuxd6825/iedriver/log"
	"github.com/liuxd6825/iedriver/window"
)

type alertAction struct {
	use, short string
	role       dialog.Role
}

//nolint:gochecknoglobals
var (
	acceptAlert  = alertAction{"accept", "Press OK on the open dialog", dialog.Accept}
	dismissAlert = alertAction{"dismiss", "Press Cancel on the open dialog", dialog.Cancel}
)

type alertCmd struct {
	gs      *globalState
	action  alertAction
	timeout time.Duration
}

func (c *alertCmd) run(_ *cobra.Command, _ []string) error {
	wm, err := c.gs.windows()
	if err != nil {
		return errext.WithHint(
			errext.WithExitCodeIfNone(err, exitcodes.Unsupported),
			"native dialogs can only be handled on Windows",
		)
	}

	logger := log.New(c.gs.logger, nil)
	pressed, err := pressDialogButton(c.gs.ctx, wm, c.action.role, dialog.ReadyOptions{Timeout: c.timeout}, logger)
	if err != nil {
		return err
	}
	printToStdout(c.gs, fmt.Sprintf("pressed %s on dialog %s: %q\n", c.action.role, pressed.dialog, pressed.text))
	return nil
}

type pressedButton struct {
	dialog window.HWND
	text   string
}

// pressDialogButton presses the button playing role on the first dialog on
// the desktop.
func pressDialogButton(
	ctx context.Context, wm window.Manager, role dialog.Role, opts dialog.ReadyOptions, logger *log.Logger,
) (pressedButton, error) {
	dlg, ok := window.FindDialog(wm)
	if !ok {
		return pressedButton{}, errext.WithExitCodeIfNone(common.ErrNoAlertOpen, exitcodes.NoAlertOpen)
	}
	dialog.WaitReady(ctx, wm, dlg, opts)
	text, err := dialog.MessageText(wm, dlg)
	if err != nil {
		logger.Warnf("Alert:press", "hwnd:%s reading message: %v", dlg, err)
	}

	if _, err := dialog.NewLocator(wm, logger).Press(ctx, dlg, role, opts); err != nil {
		if errors.Is(err, common.ErrButtonNotFound) {
			return pressedButton{}, errext.WithExitCodeIfNone(err, exitcodes.ButtonNotFound)
		}
		return pressedButton{}, err
	}
	return pressedButton{dialog: dlg, text: text}, nil
}

func getCmdAlert(gs *globalState, action alertAction) *cobra.Command {
	c := &alertCmd{gs: gs, action: action}

	cmd := &cobra.Command{
		Use:   action.use,
		Short: action.short,
		Long: action.short + `.

The first dialog box on the desktop is used, whichever process owns it.`,
		Args: cobra.NoArgs,
		RunE: c.run,
	}
	cmd.Flags().DurationVar(&c.timeout, "timeout", dialog.DefaultReadyTimeout, "how long to wait for the dialog buttons")
	return cmd
}
