// Package exitcodes contains the constants representing possible driver exit codes.
package exitcodes

// ExitCode is just a type representing a process exit code for the driver
type ExitCode uint8

// list of exit codes used by the driver
const (
	GenericError      ExitCode = 1
	InvalidConfig     ExitCode = 104
	ExternalAbort     ExitCode = 105
	CannotStartServer ExitCode = 106
	NoAlertOpen       ExitCode = 108
	ButtonNotFound    ExitCode = 109
	Unsupported       ExitCode = 110
)
