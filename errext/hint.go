package errext

import (
	"errors"

	"github.com/liuxd6825/iedriver/errext/exitcodes"
)

// HasHint is an error with a human-readable suggestion on how to fix it.
type HasHint interface {
	error
	Hint() string
}

// WithHint attaches hint to err. A nil error stays nil. When err already has
// a hint the result reads "new hint (old hint)".
func WithHint(err error, hint string) error {
	if err == nil {
		return nil
	}
	return withHint{err, hint}
}

type withHint struct {
	error
	hint string
}

func (wh withHint) Unwrap() error {
	return wh.error
}

func (wh withHint) Hint() string {
	var inner HasHint
	if errors.As(wh.error, &inner) {
		return wh.hint + " (" + inner.Hint() + ")"
	}
	return wh.hint
}

var _ HasHint = withHint{}

// exitCodeHints are shown for errors that end the process with the code and
// carry no hint of their own.
var exitCodeHints = map[exitcodes.ExitCode]string{
	exitcodes.InvalidConfig:     "check the flags, the IEDRIVER_* environment variables and the config file",
	exitcodes.CannotStartServer: "the address may be in use or malformed; pick another one with --address",
	exitcodes.NoAlertOpen:       "no dialog box is open; run the command while the page shows one",
	exitcodes.ButtonNotFound:    "an alert only has an OK button and can only be accepted",
}

// ExitCodeHint returns the generic hint for errors ending with code.
func ExitCodeHint(code exitcodes.ExitCode) (string, bool) {
	hint, ok := exitCodeHints[code]
	return hint, ok
}
