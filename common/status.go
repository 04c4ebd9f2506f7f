package common

import (
	"errors"
	"strconv"
)

// Status is a JSON wire protocol status code.
type Status int

// Status codes returned in command responses.
const (
	Success               Status = 0
	NoSuchDriver          Status = 6
	NoSuchElement         Status = 7
	UnknownCommand        Status = 9
	StaleElementReference Status = 10
	UnhandledError        Status = 13
	JavascriptError       Status = 17
	NoSuchWindow          Status = 23
	NoAlertOpen           Status = 27
)

var statusNames = map[Status]string{
	Success:               "success",
	NoSuchDriver:          "no such driver",
	NoSuchElement:         "no such element",
	UnknownCommand:        "unknown command",
	StaleElementReference: "stale element reference",
	UnhandledError:        "unhandled error",
	JavascriptError:       "javascript error",
	NoSuchWindow:          "no such window",
	NoAlertOpen:           "no alert open",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "status " + strconv.Itoa(int(s))
}

// StatusFromError maps err to the status code reported on the wire.
// A nil error is Success.
func StatusFromError(err error) Status {
	switch {
	case err == nil:
		return Success
	case errors.Is(err, ErrNoSuchElement):
		return NoSuchElement
	case errors.Is(err, ErrWrongDocument), errors.Is(err, ErrStaleElement):
		return StaleElementReference
	case errors.Is(err, ErrScriptExecution):
		return JavascriptError
	case errors.Is(err, ErrNoSuchWindow):
		return NoSuchWindow
	case errors.Is(err, ErrNoAlertOpen):
		return NoAlertOpen
	default:
		return UnhandledError
	}
}
