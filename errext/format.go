package errext

import "errors"

// Format returns the message to log for err and the fields to log with it.
// An [Exception] is logged with its stack trace. The fields hold the exit
// code when err carries one, and the hint: the error's own or, failing that,
// the generic hint for its exit code.
func Format(err error) (string, map[string]interface{}) {
	if err == nil {
		return "", nil
	}

	errText := err.Error()
	var xerr Exception
	if errors.As(err, &xerr) {
		errText = xerr.StackTrace()
	}

	fields := make(map[string]interface{})
	var ecerr HasExitCode
	if errors.As(err, &ecerr) {
		fields["exit_code"] = int(ecerr.ExitCode())
	}
	var herr HasHint
	if errors.As(err, &herr) {
		fields["hint"] = herr.Hint()
	} else if ecerr != nil {
		if hint, ok := ExitCodeHint(ecerr.ExitCode()); ok {
			fields["hint"] = hint
		}
	}

	return errText, fields
}
